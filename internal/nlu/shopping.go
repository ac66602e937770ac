package nlu

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/MrSnakeDoc/voicelist/internal/catalog"
	"github.com/MrSnakeDoc/voicelist/internal/domain"
	"github.com/MrSnakeDoc/voicelist/internal/locale"
)

// ProductLookup finds a catalog product by exact short name.
type ProductLookup interface {
	Lookup(shortName string) (catalog.Product, bool)
}

// ShoppingExtractor turns "buy milk, bread and eggs" into shopping items.
type ShoppingExtractor struct {
	prefix   string
	split    *regexp.Regexp
	products ProductLookup
}

// NewShoppingExtractor builds an extractor for the locale's buy verb and
// separators. products may be nil (no enrichment).
func NewShoppingExtractor(cfg locale.Shopping, products ProductLookup) *ShoppingExtractor {
	return &ShoppingExtractor{
		prefix:   strings.ToLower(cfg.BuyVerb) + " ",
		split:    splitPattern(cfg.Separators),
		products: products,
	}
}

// splitPattern builds `,|\sand\s|\sas well as\s|\s+`. Alternatives are tried
// left to right, so longer separators come first and bare whitespace last.
func splitPattern(separators []string) *regexp.Regexp {
	seps := append([]string(nil), separators...)
	sort.SliceStable(seps, func(i, j int) bool {
		return utf8.RuneCountInString(seps[i]) > utf8.RuneCountInString(seps[j])
	})

	alts := []string{","}
	for _, s := range seps {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		alts = append(alts, `\s`+strings.ReplaceAll(regexp.QuoteMeta(s), " ", `\s`)+`\s`)
	}
	alts = append(alts, `\s+`)
	return regexp.MustCompile(strings.Join(alts, "|"))
}

// Extract returns the items of a shopping utterance, or nil when the
// utterance does not start with the buy verb or names no items.
func (e *ShoppingExtractor) Extract(utterance string) []domain.ShoppingItem {
	text := strings.ToLower(strings.TrimSpace(utterance))
	if !strings.HasPrefix(text, e.prefix) {
		return nil
	}
	rest := strings.TrimSpace(text[len(e.prefix):])

	var items []domain.ShoppingItem
	for _, frag := range e.split.Split(rest, -1) {
		name := strings.ToLower(strings.TrimSpace(frag))
		if name == "" {
			continue
		}
		items = append(items, e.enrich(name))
	}
	return items
}

func (e *ShoppingExtractor) enrich(name string) domain.ShoppingItem {
	if e.products != nil {
		if p, ok := e.products.Lookup(name); ok {
			return domain.ShoppingItem{
				ShortName:     p.ShortName,
				FullName:      p.FullName,
				Price:         p.Price,
				PriceWithCard: p.PriceWithCard,
				URL:           p.URL,
				ImageURL:      p.ImageURL,
			}
		}
	}
	return domain.ShoppingItem{ShortName: domain.Capitalize(name)}
}
