// Package catalog holds the static investable-product reference data.
package catalog

import (
	_ "embed"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// AssetClass identifies the broad asset category of a product.
type AssetClass string

const (
	AssetGold      AssetClass = "Gold"
	AssetSilver    AssetClass = "Silver"
	AssetPlatinum  AssetClass = "Platinum"
	AssetEquityETF AssetClass = "EquityETF"
)

// RiskTier is the qualitative risk rating of a product.
type RiskTier string

const (
	RiskLow    RiskTier = "Low"
	RiskMedium RiskTier = "Medium"
	RiskHigh   RiskTier = "High"
)

// Product is one investable product. Products are immutable after load.
type Product struct {
	ID             string     `yaml:"id" json:"id"`
	Name           string     `yaml:"name" json:"name"`
	AssetClass     AssetClass `yaml:"asset_class" json:"asset_class"`
	RiskTier       RiskTier   `yaml:"risk_tier" json:"risk_tier"`
	MinInvestment  float64    `yaml:"min_investment" json:"min_investment"`
	ExpectedReturn string     `yaml:"expected_return" json:"expected_return"`
	Description    string     `yaml:"description" json:"description"`
}

// Catalog is the loaded product set, queryable by id.
type Catalog struct {
	products []Product
	byID     map[string]Product
}

//go:embed products.yaml
var productsYAML []byte

var validAssetClasses = map[AssetClass]bool{
	AssetGold:      true,
	AssetSilver:    true,
	AssetPlatinum:  true,
	AssetEquityETF: true,
}

var validRiskTiers = map[RiskTier]bool{
	RiskLow:    true,
	RiskMedium: true,
	RiskHigh:   true,
}

// Load parses the embedded product list. Called once at process start.
func Load() (*Catalog, error) {
	return load(productsYAML)
}

func load(data []byte) (*Catalog, error) {
	var raw struct {
		Products []Product `yaml:"products"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrap(err, "catalog: parse products")
	}
	if len(raw.Products) == 0 {
		return nil, eris.New("catalog: no products defined")
	}

	byID := make(map[string]Product, len(raw.Products))
	for _, p := range raw.Products {
		if p.ID == "" {
			return nil, eris.New("catalog: product with empty id")
		}
		if _, dup := byID[p.ID]; dup {
			return nil, eris.Errorf("catalog: duplicate product id %q", p.ID)
		}
		if !validAssetClasses[p.AssetClass] {
			return nil, eris.Errorf("catalog: product %q has unknown asset class %q", p.ID, p.AssetClass)
		}
		if !validRiskTiers[p.RiskTier] {
			return nil, eris.Errorf("catalog: product %q has unknown risk tier %q", p.ID, p.RiskTier)
		}
		if p.MinInvestment < 0 {
			return nil, eris.Errorf("catalog: product %q has negative minimum investment", p.ID)
		}
		byID[p.ID] = p
	}

	return &Catalog{products: raw.Products, byID: byID}, nil
}

// Lookup returns the product with the given id.
func (c *Catalog) Lookup(id string) (Product, bool) {
	p, ok := c.byID[id]
	return p, ok
}

// Has reports whether a product id exists.
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Products returns the full product list in file order.
func (c *Catalog) Products() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

// ByAssetClass returns the first product of the given asset class.
// The default allocation maps engine asset buckets onto concrete products
// through this.
func (c *Catalog) ByAssetClass(class AssetClass) (Product, bool) {
	for _, p := range c.products {
		if p.AssetClass == class {
			return p, true
		}
	}
	return Product{}, false
}
