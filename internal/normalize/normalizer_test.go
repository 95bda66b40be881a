package normalize

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/cleanops/backend-go/internal/domain"
)

type fakeCatalog struct {
	supplies []domain.Supply
	aliases  []domain.SupplyAlias
	err      error
}

func (f *fakeCatalog) ListSupplies(_ context.Context, tenantID string, activeOnly bool) ([]domain.Supply, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Supply
	for _, s := range f.supplies {
		if s.TenantID != tenantID || (activeOnly && !s.Active) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeCatalog) ListAliases(_ context.Context, tenantID string) ([]domain.SupplyAlias, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.SupplyAlias
	for _, a := range f.aliases {
		if a.TenantID == tenantID {
			out = append(out, a)
		}
	}
	return out, nil
}

func testCatalog() *fakeCatalog {
	return &fakeCatalog{
		supplies: []domain.Supply{
			{ID: "s-domestos", TenantID: "t1", Name: "Domestos", Unit: "ks", Active: true},
			{ID: "s-kapsle", TenantID: "t1", Name: "Kávové kapsle", Unit: "ks", Active: true},
			{ID: "s-papir", TenantID: "t1", Name: "Toaletní papír", Unit: "role", Active: true},
			{ID: "s-old", TenantID: "t1", Name: "Savo", Unit: "l", Active: false},
			{ID: "s-other", TenantID: "t2", Name: "Domestos", Unit: "ks", Active: true},
		},
		aliases: []domain.SupplyAlias{
			{ID: "a1", TenantID: "t1", Alias: "modrej cistic", SupplyID: "s-domestos"},
			{ID: "a2", TenantID: "t1", Alias: "stary savo", SupplyID: "s-old"},
		},
	}
}

func newTestNormalizer(t *testing.T, catalog CatalogReader) *Normalizer {
	t.Helper()
	dict, err := DefaultDictionary()
	require.NoError(t, err)
	return NewNormalizer(catalog, dict)
}

func mentions(texts ...string) []domain.ItemMention {
	out := make([]domain.ItemMention, len(texts))
	for i, text := range texts {
		out[i] = domain.ItemMention{Text: text, Quantity: 1}
	}
	return out
}

func TestNormalizeDictionaryTerms(t *testing.T) {
	n := newTestNormalizer(t, testCatalog())

	items := n.Normalize(context.Background(), "t1", mentions("Domestos", "kapsle kafe", "toaletak"))
	require.Len(t, items, 3)

	wantIDs := []string{"s-domestos", "s-kapsle", "s-papir"}
	for i, item := range items {
		require.NotNil(t, item.SupplyID, item.OriginalText)
		assert.Equal(t, wantIDs[i], *item.SupplyID)
		assert.Equal(t, 1.0, item.Quantity)
		assert.Equal(t, DictionaryConfidence, item.Confidence)
		assert.Equal(t, domain.MatchDictionary, item.MatchSource)
		assert.False(t, item.NeedsMapping)
	}
	assert.Equal(t, "Kávové kapsle", items[1].SupplyName)
	assert.Equal(t, "kapsle kafe", items[1].OriginalText)
}

func TestNormalizeAlias(t *testing.T) {
	n := newTestNormalizer(t, testCatalog())

	items := n.Normalize(context.Background(), "t1", mentions("  Modrej Cistic "))
	require.Len(t, items, 1)
	require.NotNil(t, items[0].SupplyID)
	assert.Equal(t, "s-domestos", *items[0].SupplyID)
	assert.Equal(t, AliasConfidence, items[0].Confidence)
	assert.Equal(t, domain.MatchAlias, items[0].MatchSource)
}

func TestNormalizeAliasToInactiveSupplyIsIgnored(t *testing.T) {
	n := newTestNormalizer(t, testCatalog())

	items := n.Normalize(context.Background(), "t1", mentions("stary savo"))
	require.Len(t, items, 1)
	assert.True(t, items[0].NeedsMapping)
}

func TestNormalizeFuzzy(t *testing.T) {
	n := newTestNormalizer(t, testCatalog())

	items := n.Normalize(context.Background(), "t1", mentions("domestoss"))
	require.Len(t, items, 1)
	require.NotNil(t, items[0].SupplyID)
	assert.Equal(t, "s-domestos", *items[0].SupplyID)
	assert.Equal(t, domain.MatchFuzzy, items[0].MatchSource)
	assert.InDelta(t, 1-1.0/9, items[0].Confidence, 1e-9)
}

func TestNormalizeNeedsMapping(t *testing.T) {
	n := newTestNormalizer(t, testCatalog())

	// "savo" is a dictionary term but the tenant only has it deactivated.
	items := n.Normalize(context.Background(), "t1", mentions("lightsaber", "savo", ""))
	require.Len(t, items, 3)
	for _, item := range items {
		assert.True(t, item.NeedsMapping, item.OriginalText)
		assert.Nil(t, item.SupplyID)
		assert.Zero(t, item.Confidence)
		assert.Equal(t, domain.MatchNone, item.MatchSource)
	}
}

func TestNormalizeIsTenantScoped(t *testing.T) {
	n := newTestNormalizer(t, testCatalog())

	items := n.Normalize(context.Background(), "t2", mentions("toaletak", "domestos"))
	require.Len(t, items, 2)
	assert.True(t, items[0].NeedsMapping)
	require.NotNil(t, items[1].SupplyID)
	assert.Equal(t, "s-other", *items[1].SupplyID)
}

func TestNormalizeCatalogFailureDegrades(t *testing.T) {
	n := newTestNormalizer(t, &fakeCatalog{err: errors.New("connection refused")})

	items := n.Normalize(context.Background(), "t1", mentions("Domestos", "toaletak"))
	require.Len(t, items, 2)
	for _, item := range items {
		assert.True(t, item.NeedsMapping)
		assert.Zero(t, item.Confidence)
	}
}

func TestNormalizeNote(t *testing.T) {
	n := newTestNormalizer(t, testCatalog())

	items := n.NormalizeNote(context.Background(), "t1", "3x Domestos, toaletak\n2× kapsle kafe")
	require.Len(t, items, 3)
	assert.Equal(t, 3.0, items[0].Quantity)
	assert.Equal(t, "Domestos", items[0].OriginalText)
	assert.Equal(t, 1.0, items[1].Quantity)
	assert.Equal(t, 2.0, items[2].Quantity)
	for _, item := range items {
		assert.False(t, item.NeedsMapping, item.OriginalText)
	}
}

func TestThresholdsStayDistinct(t *testing.T) {
	assert.NotEqual(t, MatchThreshold, MinConfidence)
	assert.Greater(t, DictionaryConfidence, AliasConfidence)
}
