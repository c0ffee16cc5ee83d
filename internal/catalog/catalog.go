package catalog

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultPrices is the INR price per tier.
var DefaultPrices = map[Tier]decimal.Decimal{
	TierVIP:      decimal.NewFromInt(800),
	TierPremium:  decimal.NewFromInt(500),
	TierStandard: decimal.NewFromInt(300),
}

// DefaultSections: VIP rows A-B, Premium rows C-E, Standard rows F-J.
var DefaultSections = []Section{
	{Tier: TierVIP, Rows: []string{"A", "B"}, SeatsPerRow: 8},
	{Tier: TierPremium, Rows: []string{"C", "D", "E"}, SeatsPerRow: 10},
	{Tier: TierStandard, Rows: []string{"F", "G", "H", "I", "J"}, SeatsPerRow: 12},
}

// Catalog holds the named layouts a showtime can reference.
type Catalog struct {
	layouts map[string]*Layout
}

func New(layouts ...*Layout) *Catalog {
	c := &Catalog{layouts: make(map[string]*Layout, len(layouts))}
	for _, l := range layouts {
		c.layouts[l.Name] = l
	}
	return c
}

// NewDefault returns a catalog with the standard auditorium layout.
func NewDefault() *Catalog {
	l, err := NewLayout(DefaultLayout, DefaultSections, DefaultPrices)
	if err != nil {
		panic(err)
	}
	return New(l)
}

func (c *Catalog) Layout(name string) (*Layout, error) {
	l, ok := c.layouts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLayout, name)
	}
	return l, nil
}

func (c *Catalog) Has(name string) bool {
	_, ok := c.layouts[name]
	return ok
}
