package catalog

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultCatalog []byte

type catalogFile struct {
	Products []productEntry `yaml:"products"`
}

type productEntry struct {
	ID          int    `yaml:"id"`
	Name        string `yaml:"name"`
	Price       string `yaml:"price"`
	Description string `yaml:"description"`
	Image       string `yaml:"image"`
}

var loadDefault = sync.OnceValue(func() *Catalog {
	c, err := Decode(strings.NewReader(string(defaultCatalog)))
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded default is invalid: %v", err))
	}
	return c
})

// Default returns the built-in collection. The value is shared and read-only.
func Default() *Catalog { return loadDefault() }

// LoadFile reads a YAML catalog from disk. An empty path yields the default collection.
func LoadFile(path string) (*Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	defer f.Close()
	c, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("catalog: %s: %w", path, err)
	}
	return c, nil
}

// Decode parses a YAML catalog document.
func Decode(r io.Reader) (*Catalog, error) {
	var doc catalogFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, &LoadError{Problems: []string{"document is empty"}}
		}
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	products := make([]Product, 0, len(doc.Products))
	var problems []string
	for _, e := range doc.Products {
		price, err := decimal.NewFromString(strings.TrimSpace(e.Price))
		if err != nil {
			problems = append(problems, fmt.Sprintf("product %d: price %q is not a decimal", e.ID, e.Price))
			continue
		}
		products = append(products, Product{
			ID:          e.ID,
			Name:        e.Name,
			Price:       price,
			Description: e.Description,
			Image:       e.Image,
		})
	}
	if len(problems) > 0 {
		return nil, &LoadError{Problems: problems}
	}
	return New(products)
}
