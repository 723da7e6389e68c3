package roulette

import (
	"fmt"
	"strconv"
	"strings"
)

// BetFamily groups bet placements that share a layout shape.
type BetFamily string

const (
	FamilyStraight BetFamily = "straight"
	FamilySplit    BetFamily = "split"
	FamilyStreet   BetFamily = "street"
	FamilyTrio     BetFamily = "trio"
	FamilyBasket   BetFamily = "basket"
	FamilyCorner   BetFamily = "corner"
	FamilySixLine  BetFamily = "sixline"
	FamilyColumn   BetFamily = "column"
	FamilyDozen    BetFamily = "dozen"
	FamilySnake    BetFamily = "snake"
	FamilyLowHigh  BetFamily = "lowhigh"
	FamilyOddEven  BetFamily = "oddeven"
	FamilyColor    BetFamily = "color"
)

// BasketMultiplier is the house rule for the five-number bet.
const BasketMultiplier = 7

// multiplierOverrides holds table rules that do not follow 36/len(pockets).
var multiplierOverrides = map[BetFamily]int{
	FamilyBasket: BasketMultiplier,
}

// multiplierFor returns the payout multiplier of a bet covering n pockets.
func multiplierFor(family BetFamily, n int) int {
	if m, ok := multiplierOverrides[family]; ok {
		return m
	}
	return 36 / n
}

// BetDefinition describes one bet placement. It is immutable once the catalog
// is built.
type BetDefinition struct {
	Family     BetFamily
	Label      string
	Aliases    []string
	Pockets    []Pocket
	Multiplier int

	covered [PocketCount]bool
}

// Covers reports whether the bet wins when p is drawn.
func (b *BetDefinition) Covers(p Pocket) bool {
	if !p.Valid() {
		return false
	}
	return b.covered[p]
}

// String returns the bet's label.
func (b *BetDefinition) String() string {
	return b.Label
}

// Catalog maps lower-case aliases to bet definitions.
// It has no mutation API once NewCatalog returns.
type Catalog struct {
	byAlias map[string]*BetDefinition
	defs    []*BetDefinition
}

// NewCatalog builds the full double-zero bet taxonomy.
func NewCatalog() (*Catalog, error) {
	c := &Catalog{byAlias: make(map[string]*BetDefinition)}
	b := &catalogBuilder{catalog: c}

	// Straight up
	for n := 1; n <= 36; n++ {
		b.add(FamilyStraight, fmt.Sprintf("Straight %d", n), pockets(n), strconv.Itoa(n))
	}
	b.add(FamilyStraight, "Straight 0", []Pocket{Zero}, "0")
	b.add(FamilyStraight, "Straight 00", []Pocket{DoubleZero}, "00")

	// Splits
	for n := 1; n <= 36; n++ {
		if n%3 != 0 {
			b.add(FamilySplit, fmt.Sprintf("Split %d-%d", n, n+1), pockets(n, n+1),
				fmt.Sprintf("%d|%d", n, n+1), fmt.Sprintf("%d-%d", n, n+1))
		}
		if n <= 33 {
			b.add(FamilySplit, fmt.Sprintf("Split %d-%d", n, n+3), pockets(n, n+3),
				fmt.Sprintf("%d_%d", n, n+3), fmt.Sprintf("%d-%d", n, n+3))
		}
	}

	// Streets
	for n := 1; n <= 34; n += 3 {
		b.add(FamilyStreet, fmt.Sprintf("Street %d-%d", n, n+2), pockets(n, n+1, n+2),
			fmt.Sprintf("|%d", n), fmt.Sprintf("%d|", n+2), fmt.Sprintf("%d-%d", n, n+2))
	}

	// Trios and basket
	b.add(FamilyTrio, "Trio 0-1-2", []Pocket{Zero, 1, 2}, "0-1-2")
	b.add(FamilyTrio, "Trio 00-2-3", []Pocket{DoubleZero, 2, 3}, "00-2-3")
	b.add(FamilyTrio, "Trio 0-00-2", []Pocket{Zero, DoubleZero, 2}, "0-00-2")
	b.add(FamilyBasket, "Basket", []Pocket{Zero, DoubleZero, 1, 2, 3}, "0-00-1-2-3", "BASKET")

	// Corners
	for n := 1; n <= 32; n++ {
		if n%3 == 1 {
			b.add(FamilyCorner, fmt.Sprintf("Corner %d-%d", n, n+4), pockets(n, n+1, n+3, n+4),
				fmt.Sprintf("%d+%d", n, n+4), fmt.Sprintf("%d-%d", n, n+4))
		}
	}

	// Six lines
	for n := 1; n <= 31; n += 3 {
		b.add(FamilySixLine, fmt.Sprintf("Six line %d-%d", n, n+5), pocketRange(n, n+5),
			fmt.Sprintf("%d-%d", n, n+5))
	}

	// Columns
	b.add(FamilyColumn, "Column 1", pocketStep(1, 34, 3), "COL1", "colL", "C1", "1-34")
	b.add(FamilyColumn, "Column 2", pocketStep(2, 35, 3), "COL2", "colM", "C2", "2-35")
	b.add(FamilyColumn, "Column 3", pocketStep(3, 36, 3), "COL3", "colR", "C3", "3-36")

	// Dozens
	b.add(FamilyDozen, "Dozen 1-12", pocketRange(1, 12), "1D", "D1", "1-12", "12P")
	b.add(FamilyDozen, "Dozen 13-24", pocketRange(13, 24), "2D", "D13", "13-24", "12M")
	b.add(FamilyDozen, "Dozen 25-36", pocketRange(25, 36), "3D", "D25", "25-36", "12D")

	b.add(FamilySnake, "Snake", pockets(1, 5, 9, 12, 14, 16, 19, 23, 27, 30, 32, 34), "SNAKE")

	// Even chances
	b.add(FamilyLowHigh, "Low 1-18", pocketRange(1, 18), "1-18", "LOW")
	b.add(FamilyLowHigh, "High 19-36", pocketRange(19, 36), "19-36", "HIGH")
	b.add(FamilyOddEven, "Odd", pocketStep(1, 35, 2), "ODD")
	b.add(FamilyOddEven, "Even", pocketStep(2, 36, 2), "EVEN")
	b.add(FamilyColor, "Red", append([]Pocket(nil), redNumbers[:]...), "RED")
	b.add(FamilyColor, "Black", append([]Pocket(nil), blackNumbers[:]...), "BLACK")

	if b.err != nil {
		return nil, b.err
	}
	return c, nil
}

// Resolve looks up a bet placement by alias, ignoring case and surrounding space.
func (c *Catalog) Resolve(alias string) (*BetDefinition, error) {
	bet, ok := c.byAlias[normalizeAlias(alias)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlias, alias)
	}
	return bet, nil
}

// Definitions returns every bet in registration order.
func (c *Catalog) Definitions() []*BetDefinition {
	out := make([]*BetDefinition, len(c.defs))
	copy(out, c.defs)
	return out
}

// Aliases returns the number of registered aliases.
func (c *Catalog) Aliases() int {
	return len(c.byAlias)
}

// Red returns the definition of the red even-money bet.
func (c *Catalog) Red() *BetDefinition {
	bet, _ := c.Resolve("red")
	return bet
}

// catalogBuilder accumulates definitions and keeps the first registration error.
type catalogBuilder struct {
	catalog *Catalog
	err     error
}

func (b *catalogBuilder) add(family BetFamily, label string, covered []Pocket, aliases ...string) {
	if b.err != nil {
		return
	}
	if len(covered) == 0 {
		b.err = fmt.Errorf("bet %q covers no pockets", label)
		return
	}

	def := &BetDefinition{
		Family:     family,
		Label:      label,
		Pockets:    covered,
		Multiplier: multiplierFor(family, len(covered)),
	}
	for _, p := range covered {
		if !p.Valid() || def.covered[p] {
			b.err = fmt.Errorf("bet %q has invalid or repeated pocket %d", label, int(p))
			return
		}
		def.covered[p] = true
	}

	for _, alias := range aliases {
		key := normalizeAlias(alias)
		if key == "" {
			b.err = fmt.Errorf("bet %q has an empty alias", label)
			return
		}
		if existing, ok := b.catalog.byAlias[key]; ok {
			b.err = fmt.Errorf("%w: %q used by %q and %q", ErrDuplicateAlias, key, existing.Label, label)
			return
		}
		b.catalog.byAlias[key] = def
		def.Aliases = append(def.Aliases, key)
	}
	b.catalog.defs = append(b.catalog.defs, def)
}

func normalizeAlias(alias string) string {
	return strings.ToLower(strings.TrimSpace(alias))
}

func pockets(ns ...int) []Pocket {
	out := make([]Pocket, len(ns))
	for i, n := range ns {
		out[i] = Pocket(n)
	}
	return out
}

func pocketRange(from, to int) []Pocket {
	return pocketStep(from, to, 1)
}

func pocketStep(from, to, step int) []Pocket {
	out := make([]Pocket, 0, (to-from)/step+1)
	for n := from; n <= to; n += step {
		out = append(out, Pocket(n))
	}
	return out
}
