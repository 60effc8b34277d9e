package mockcatalog

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/yanqian/agentic-commerce/internal/domain/shopping"
)

//go:embed catalog.json
var catalogJSON []byte

// Catalog serves the embedded offline product set.
type Catalog struct {
	products map[shopping.Category][]shopping.Product
}

// New decodes the embedded catalog.
func New() (*Catalog, error) {
	return parse(catalogJSON)
}

func parse(data []byte) (*Catalog, error) {
	var products map[shopping.Category][]shopping.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("decode mock catalog: %w", err)
	}
	for category := range products {
		if !category.Valid() {
			return nil, fmt.Errorf("mock catalog has unknown category %q", category)
		}
	}
	return &Catalog{products: products}, nil
}

// Products returns a copy of the products listed for category.
func (c *Catalog) Products(category shopping.Category) []shopping.Product {
	src := c.products[category]
	out := make([]shopping.Product, len(src))
	copy(out, src)
	return out
}
