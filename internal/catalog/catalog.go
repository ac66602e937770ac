package catalog

import "strings"

// Product is one pre-scraped retail listing.
type Product struct {
	ProductID     string `json:"product_id,omitempty" yaml:"product_id,omitempty"`
	ShortName     string `json:"short_name" yaml:"short_name"`
	FullName      string `json:"full_name" yaml:"full_name"`
	Description   string `json:"description,omitempty" yaml:"description,omitempty"`
	URL           string `json:"url" yaml:"url"`
	Price         string `json:"price" yaml:"price"`
	PriceWithCard string `json:"price_with_card" yaml:"price_with_card"`
	ImageURL      string `json:"image_url" yaml:"image_url"`
}

// Catalog is an immutable short name -> product mapping.
// It is never modified after construction and is safe for concurrent reads.
type Catalog struct {
	byName   map[string]Product // lower-cased short name -> product
	products []Product          // file order, duplicates removed
}

// New builds a catalog. Products without a short name are skipped; on duplicate
// short names the first entry wins.
func New(products []Product) *Catalog {
	c := &Catalog{
		byName:   make(map[string]Product, len(products)),
		products: make([]Product, 0, len(products)),
	}
	for _, p := range products {
		key := normalize(p.ShortName)
		if key == "" {
			continue
		}
		if _, dup := c.byName[key]; dup {
			continue
		}
		c.byName[key] = p
		c.products = append(c.products, p)
	}
	return c
}

// Empty returns a catalog with no products.
func Empty() *Catalog {
	return New(nil)
}

// Lookup finds a product by exact (case-insensitive) short name.
func (c *Catalog) Lookup(shortName string) (Product, bool) {
	if c == nil {
		return Product{}, false
	}
	p, ok := c.byName[normalize(shortName)]
	return p, ok
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.products)
}

// Search returns products whose short or full name contains query,
// case-insensitively, in file order. limit <= 0 means no limit.
func (c *Catalog) Search(query string, limit int) []Product {
	q := normalize(query)
	if c == nil || q == "" {
		return nil
	}

	var out []Product
	for _, p := range c.products {
		if strings.Contains(strings.ToLower(p.ShortName), q) ||
			strings.Contains(strings.ToLower(p.FullName), q) {
			out = append(out, p)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
