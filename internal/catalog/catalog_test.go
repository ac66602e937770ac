package catalog

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/MrSnakeDoc/voicelist/internal/logger"
)

const sampleJSON = `{
  "results": [
    {"product_id": "101", "short_name": "Milk", "full_name": "Milk 3.2% 1L", "url": "https://ozon.ru/product/101", "price": "89 ₽", "price_with_card": "79 ₽", "image_url": "https://cdn/101.jpg"},
    {"product_id": "102", "short_name": "Butter", "full_name": "Butter 82% 180g", "url": "https://ozon.ru/product/102", "price": "199 ₽", "price_with_card": "189 ₽", "image_url": "https://cdn/102.jpg"},
    {"product_id": "103", "short_name": "", "full_name": "nameless"},
    {"product_id": "104", "short_name": "milk", "full_name": "duplicate"}
  ]
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

func TestLoadJSON(t *testing.T) {
	c, err := Load(writeFile(t, "result.json", sampleJSON))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 (nameless and duplicate skipped)", c.Len())
	}

	p, ok := c.Lookup("MILK")
	if !ok {
		t.Fatal("Lookup(MILK) should be case-insensitive")
	}
	if p.FullName != "Milk 3.2% 1L" {
		t.Errorf("duplicate short name overwrote the first entry: %q", p.FullName)
	}
}

func TestLoadYAML(t *testing.T) {
	content := `results:
  - short_name: Tea
    full_name: Green tea 100 bags
    url: https://ozon.ru/product/7
    price: "250 ₽"
    price_with_card: "230 ₽"
    image_url: https://cdn/7.jpg
`
	c, err := Load(writeFile(t, "catalog.yaml", content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, ok := c.Lookup("tea"); !ok {
		t.Error("Lookup(tea) failed on YAML catalog")
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load("/nonexistent/result.json"); err == nil {
		t.Error("Load() with missing file should return error")
	}
	if _, err := Load(writeFile(t, "bad.json", "{not json")); err == nil {
		t.Error("Load() with malformed json should return error")
	}
}

func TestLoadOrEmptyDegrades(t *testing.T) {
	log := logger.New("error", false)

	tests := []struct {
		name string
		path string
	}{
		{"missing file", "/nonexistent/result.json"},
		{"malformed file", writeFile(t, "bad.json", `{"results": 42}`)},
		{"not configured", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := LoadOrEmpty(tt.path, log)
			if c == nil {
				t.Fatal("LoadOrEmpty() returned nil")
			}
			if c.Len() != 0 {
				t.Errorf("LoadOrEmpty() = %d products, want 0", c.Len())
			}
		})
	}
}

func TestSearch(t *testing.T) {
	c := New([]Product{
		{ShortName: "Milk", FullName: "Milk 3.2%"},
		{ShortName: "Oat milk", FullName: "Oat drink"},
		{ShortName: "Bread", FullName: "Rye bread"},
	})

	tests := []struct {
		name     string
		query    string
		limit    int
		expected int
	}{
		{"substring in short name", "milk", 0, 2},
		{"substring in full name", "rye", 0, 1},
		{"limit applied", "milk", 1, 1},
		{"no match", "cheese", 0, 0},
		{"empty query", "  ", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Search(tt.query, tt.limit)
			if len(got) != tt.expected {
				t.Errorf("Search(%q, %d) = %d results, want %d", tt.query, tt.limit, len(got), tt.expected)
			}
		})
	}
}

func TestHolderSwap(t *testing.T) {
	h := NewHolder(nil)
	if h.Count() != 0 {
		t.Fatalf("NewHolder(nil) should serve an empty catalog, got %d", h.Count())
	}
	if !h.GetLastReload().IsZero() {
		t.Error("GetLastReload() should be zero before the first swap")
	}

	h.Swap(New([]Product{{ShortName: "Milk"}}))
	if _, ok := h.Lookup("milk"); !ok {
		t.Error("Lookup() after Swap() did not see the new catalog")
	}
	if h.GetLastReload().IsZero() {
		t.Error("GetLastReload() should be set after Swap()")
	}
}

func TestHolderConcurrentAccess(t *testing.T) {
	h := NewHolder(New([]Product{{ShortName: "Milk"}}))

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = h.Lookup("milk")
		}()
		go func() {
			defer wg.Done()
			h.Swap(New([]Product{{ShortName: "Milk"}}))
		}()
	}
	wg.Wait()

	if _, ok := h.Lookup("milk"); !ok {
		t.Error("Lookup() failed after concurrent swaps")
	}
}
