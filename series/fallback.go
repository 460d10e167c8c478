package series

import (
	_ "embed"
	"fmt"
	"math/rand"
	"time"

	"smartagri/models"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed base_prices.yaml
var basePricesYAML []byte

const dateLayout = "2006-01-02"

// Bounds of the multiplicative noise applied to synthesized prices.
const (
	fallbackLow    = 0.97
	fallbackSpread = 0.06
	expandLow      = 0.90
	expandSpread   = 0.20
	minPriceFactor = 0.95
	maxPriceFactor = 1.05
)

// PriceTable maps crop names to a base price.
type PriceTable struct {
	Default float64            `yaml:"default"`
	Crops   map[string]float64 `yaml:"crops"`
}

// ParsePriceTable decodes a YAML base price table.
func ParsePriceTable(data []byte) (*PriceTable, error) {
	var t PriceTable
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse price table: %w", err)
	}
	if t.Default <= 0 {
		return nil, fmt.Errorf("price table default must be > 0, got %v", t.Default)
	}
	return &t, nil
}

var defaultTable = mustParsePriceTable(basePricesYAML)

func mustParsePriceTable(data []byte) *PriceTable {
	t, err := ParsePriceTable(data)
	if err != nil {
		panic(err)
	}
	return t
}

// DefaultPriceTable is the built-in table.
func DefaultPriceTable() *PriceTable { return defaultTable }

// BasePrice returns the crop's base price, or the table default for unknown crops.
func (t *PriceTable) BasePrice(crop string) float64 {
	if p, ok := t.Crops[crop]; ok && p > 0 {
		return p
	}
	return t.Default
}

// Synthesizer produces demo series. The output is random per call; only its
// shape and bounds are guaranteed.
type Synthesizer struct {
	Table *PriceTable
	// Now and Float64 default to time.Now and math/rand/v2.Float64.
	Now     func() time.Time
	Float64 func() float64
}

// NewSynthesizer returns a Synthesizer over the built-in price table.
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{Table: DefaultPriceTable()}
}

// Synthesize returns exactly days records, one per calendar day, oldest
// first and ending today. Every record is tagged source "Demo".
func (s *Synthesizer) Synthesize(crop string, days int) []models.PricePoint {
	if days <= 0 {
		return []models.PricePoint{}
	}

	base := s.table().BasePrice(crop)
	today := s.today()

	out := make([]models.PricePoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		price := Round2(base * (fallbackLow + s.random()*fallbackSpread))
		out = append(out, models.PricePoint{
			Date:     today.AddDate(0, 0, -i).Format(dateLayout),
			Price:    price,
			MinPrice: Round2(price * minPriceFactor),
			MaxPrice: Round2(price * maxPriceFactor),
			Source:   models.SourceDemo,
		})
	}
	return out
}

// Expand spreads a single observed record over days calendar days ending
// today, varying its price by up to ±10%. Market, source and category are kept.
func (s *Synthesizer) Expand(p models.PricePoint, days int) []models.PricePoint {
	if days <= 1 {
		return []models.PricePoint{p}
	}

	today := s.today()
	out := make([]models.PricePoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		price := Round2(p.Price * (expandLow + s.random()*expandSpread))
		out = append(out, models.PricePoint{
			Date:     today.AddDate(0, 0, -i).Format(dateLayout),
			Price:    price,
			MinPrice: Round2(price * minPriceFactor),
			MaxPrice: Round2(price * maxPriceFactor),
			Market:   p.Market,
			Source:   p.Source,
			Category: p.Category,
		})
	}
	return out
}

func (s *Synthesizer) table() *PriceTable {
	if s.Table == nil {
		return defaultTable
	}
	return s.Table
}

func (s *Synthesizer) today() time.Time {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	t := now()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func (s *Synthesizer) random() float64 {
	if s.Float64 != nil {
		return s.Float64()
	}
	return rand.Float64()
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
