// Package roulette implements a double-zero roulette table: the bet catalog,
// the wheel, per-table betting rounds and the house statistics.
package roulette

import (
	"fmt"
	"strconv"
)

// Pocket identifies one slot on the wheel: 0, 00 or 1..36.
type Pocket int8

const (
	// Zero is the single-zero pocket.
	Zero Pocket = 0
	// DoubleZero is the 00 pocket. It lives outside 0..36 so it can never be
	// mistaken for Zero.
	DoubleZero Pocket = 37
)

// PocketCount is the number of pockets on a double-zero wheel.
const PocketCount = 38

// Valid reports whether p is one of the 38 wheel pockets.
func (p Pocket) Valid() bool {
	return p >= Zero && p <= DoubleZero
}

// IsZero reports whether p is 0 or 00.
func (p Pocket) IsZero() bool {
	return p == Zero || p == DoubleZero
}

// String returns the table notation of the pocket.
func (p Pocket) String() string {
	if p == DoubleZero {
		return "00"
	}
	return strconv.Itoa(int(p))
}

// MarshalText encodes the pocket in table notation so snapshots keep 00 distinct.
func (p Pocket) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid pocket %d", int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText decodes table notation.
func (p *Pocket) UnmarshalText(text []byte) error {
	parsed, err := ParsePocket(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePocket parses "0", "00" or "1".."36".
func ParsePocket(s string) (Pocket, error) {
	if s == "00" {
		return DoubleZero, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 36 {
		return 0, fmt.Errorf("invalid pocket %q", s)
	}
	return Pocket(n), nil
}

// Color is the colour of a pocket.
type Color string

const (
	Red   Color = "red"
	Black Color = "black"
	Green Color = "green"
)

// Colors lists the colours in report order.
var Colors = []Color{Red, Black, Green}

// redNumbers is the fixed set of red pockets on a standard layout.
var redNumbers = [...]Pocket{1, 3, 5, 7, 9, 12, 14, 16, 18, 19, 21, 23, 25, 27, 30, 32, 34, 36}

// blackNumbers is the complement of redNumbers over 1..36.
var blackNumbers = [...]Pocket{2, 4, 6, 8, 10, 11, 13, 15, 17, 20, 22, 24, 26, 28, 29, 31, 33, 35}
