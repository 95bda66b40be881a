package normalize

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

//go:embed common_terms.yaml
var defaultCommonTerms []byte

// Dictionary maps colloquial terms to canonical supply names. It is built
// once at startup and never mutated afterwards.
type Dictionary struct {
	terms map[string]string
}

// DefaultDictionary returns the dictionary shipped with the binary.
func DefaultDictionary() (*Dictionary, error) {
	return parseDictionary(viper.New(), func(v *viper.Viper) error {
		return v.ReadConfig(bytes.NewReader(defaultCommonTerms))
	})
}

// LoadDictionary reads a common-terms file. An empty path falls back to the
// embedded default.
func LoadDictionary(path string) (*Dictionary, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultDictionary()
	}
	return parseDictionary(viper.New(), func(v *viper.Viper) error {
		v.SetConfigFile(path)
		return v.ReadInConfig()
	})
}

func parseDictionary(v *viper.Viper, read func(*viper.Viper) error) (*Dictionary, error) {
	v.SetConfigType("yaml")
	if err := read(v); err != nil {
		return nil, fmt.Errorf("failed to read common terms: %w", err)
	}

	locales := v.GetStringMap("locales")
	if len(locales) == 0 {
		return nil, fmt.Errorf("common terms file has no locales")
	}

	terms := make(map[string]string)
	for locale := range locales {
		for term, canonical := range v.GetStringMapString("locales." + locale) {
			key := normalizeText(term)
			value := normalizeText(canonical)
			if key == "" || value == "" {
				continue
			}
			terms[key] = value
		}
	}
	return &Dictionary{terms: terms}, nil
}

// Lookup returns the canonical name for an already normalized term.
func (d *Dictionary) Lookup(term string) (string, bool) {
	if d == nil {
		return "", false
	}
	canonical, ok := d.terms[term]
	return canonical, ok
}

func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.terms)
}

func normalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
