package normalize

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/cleanops/backend-go/internal/domain"
)

const (
	DictionaryConfidence = 0.9
	AliasConfidence      = 0.8

	// MatchThreshold gates whether a fuzzy score is considered a match at all.
	MatchThreshold = 0.6
	// MinConfidence is the lowest confidence a fuzzy match may be reported with.
	MinConfidence = 0.5
)

// CatalogReader is the read side of the supply catalog the normalizer needs.
type CatalogReader interface {
	ListSupplies(ctx context.Context, tenantID string, activeOnly bool) ([]domain.Supply, error)
	ListAliases(ctx context.Context, tenantID string) ([]domain.SupplyAlias, error)
}

type Normalizer struct {
	catalog CatalogReader
	dict    *Dictionary
}

func NewNormalizer(catalog CatalogReader, dict *Dictionary) *Normalizer {
	return &Normalizer{catalog: catalog, dict: dict}
}

// catalogIndex is a per-call view of the tenant catalog.
type catalogIndex struct {
	supplies []domain.Supply
	byName   map[string]*domain.Supply
	byID     map[string]*domain.Supply
	aliases  map[string]string
}

func (n *Normalizer) loadCatalog(ctx context.Context, tenantID string) (*catalogIndex, error) {
	supplies, err := n.catalog.ListSupplies(ctx, tenantID, true)
	if err != nil {
		return nil, err
	}
	aliases, err := n.catalog.ListAliases(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	idx := &catalogIndex{
		supplies: supplies,
		byName:   make(map[string]*domain.Supply, len(supplies)),
		byID:     make(map[string]*domain.Supply, len(supplies)),
		aliases:  make(map[string]string, len(aliases)),
	}
	for i := range supplies {
		s := &supplies[i]
		idx.byID[s.ID] = s
		name := normalizeText(s.Name)
		if _, exists := idx.byName[name]; !exists {
			idx.byName[name] = s
		}
	}
	for _, a := range aliases {
		idx.aliases[normalizeText(a.Alias)] = a.SupplyID
	}
	return idx, nil
}

// Normalize resolves each mention to a supply of the tenant. The output has
// one item per mention in input order. A catalog read failure is logged and
// turns every item into a needs-mapping item.
func (n *Normalizer) Normalize(ctx context.Context, tenantID string, mentions []domain.ItemMention) []domain.NormalizedItem {
	items := make([]domain.NormalizedItem, len(mentions))

	idx, err := n.loadCatalog(ctx, tenantID)
	if err != nil {
		log.Error().Err(err).Str("tenant_id", tenantID).Int("items", len(mentions)).
			Msg("catalog unavailable, all items need mapping")
		for i, m := range mentions {
			items[i] = unmapped(m)
		}
		return items
	}

	for i, m := range mentions {
		items[i] = n.resolve(idx, m)
	}
	return items
}

// NormalizeNote splits a free-text note, extracts counts and resolves every
// fragment.
func (n *Normalizer) NormalizeNote(ctx context.Context, tenantID, note string) []domain.NormalizedItem {
	return n.Normalize(ctx, tenantID, MentionsFromNote(note))
}

// MentionsFromNote turns "3x Domestos, toaletak" into item mentions.
func MentionsFromNote(note string) []domain.ItemMention {
	parts := SplitNote(note)
	mentions := make([]domain.ItemMention, 0, len(parts))
	for _, p := range parts {
		qty, name := ExtractQuantity(p)
		mentions = append(mentions, domain.ItemMention{Text: name, Quantity: float64(qty)})
	}
	return mentions
}

func (n *Normalizer) resolve(idx *catalogIndex, m domain.ItemMention) domain.NormalizedItem {
	text := normalizeText(m.Text)
	if text == "" {
		return unmapped(m)
	}

	// 1. Static dictionary, only when the canonical supply exists for the tenant
	if canonical, ok := n.dict.Lookup(text); ok {
		if s, found := idx.byName[canonical]; found {
			return matched(m, s, DictionaryConfidence, domain.MatchDictionary)
		}
	}

	// 2. Learned aliases
	if supplyID, ok := idx.aliases[text]; ok {
		if s, found := idx.byID[supplyID]; found {
			return matched(m, s, AliasConfidence, domain.MatchAlias)
		}
	}

	// 3. Fuzzy match against active supply names
	var (
		best      *domain.Supply
		bestScore float64
	)
	for i := range idx.supplies {
		score := Similarity(text, normalizeText(idx.supplies[i].Name))
		if score > bestScore {
			best, bestScore = &idx.supplies[i], score
		}
	}
	if best != nil && bestScore >= MatchThreshold && bestScore >= MinConfidence {
		return matched(m, best, bestScore, domain.MatchFuzzy)
	}

	return unmapped(m)
}

func matched(m domain.ItemMention, s *domain.Supply, confidence float64, source domain.MatchSource) domain.NormalizedItem {
	id := s.ID
	return domain.NormalizedItem{
		SupplyID:     &id,
		SupplyName:   s.Name,
		Quantity:     m.Quantity,
		OriginalText: m.Text,
		Confidence:   confidence,
		MatchSource:  source,
	}
}

func unmapped(m domain.ItemMention) domain.NormalizedItem {
	return domain.NormalizedItem{
		Quantity:     m.Quantity,
		OriginalText: strings.TrimSpace(m.Text),
		Confidence:   0,
		NeedsMapping: true,
		MatchSource:  domain.MatchNone,
	}
}
