package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/voicelist/internal/logger"
)

// document is the on-disk shape produced by the scraper: {"results": [...]}.
type document struct {
	Results []Product `json:"results" yaml:"results"`
}

// Load reads and parses a catalog file. Files ending in .yaml or .yml are
// decoded as YAML, everything else as JSON.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var doc document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse catalog yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse catalog json: %w", err)
		}
	}

	return New(doc.Results), nil
}

// LoadOrEmpty loads the catalog and degrades to an empty one on any failure.
func LoadOrEmpty(path string, log logger.Logger) *Catalog {
	if path == "" {
		log.Info("catalog file not configured, shopping items will not be enriched")
		return Empty()
	}

	c, err := Load(path)
	if err != nil {
		log.Error("failed to load product catalog, using empty catalog",
			logger.String("file", path),
			logger.Error(err))
		return Empty()
	}

	log.Info("product catalog loaded",
		logger.String("file", path),
		logger.Int("products", c.Len()))
	return c
}
