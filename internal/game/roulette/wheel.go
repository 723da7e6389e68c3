package roulette

import (
	"math/rand/v2"
	"sync"
)

// wheelOrder is the physical pocket order of an American wheel, clockwise from 0.
var wheelOrder = [PocketCount]Pocket{
	0, 28, 9, 26, 30, 11, 7, 20, 32, 17, 5, 22, 34, 15, 3, 24, 36, 13, 1,
	DoubleZero, 27, 10, 25, 29, 12, 8, 19, 31, 18, 6, 21, 33, 16, 4, 23, 35, 14, 2,
}

// IntSource produces uniform integers in [0, n).
// *rand.Rand from math/rand/v2 satisfies it.
type IntSource interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// Wheel holds the fixed pocket sequence and draws from it.
type Wheel struct {
	order    [PocketCount]Pocket
	position [PocketCount]int
	red      [PocketCount]bool

	mu  sync.Mutex
	src IntSource
}

// NewWheel creates a wheel drawing from src. A nil src uses the
// process-wide math/rand/v2 generator.
func NewWheel(src IntSource) *Wheel {
	if src == nil {
		src = globalSource{}
	}
	w := &Wheel{order: wheelOrder, src: src}
	for i, p := range w.order {
		w.position[p] = i
	}
	for _, p := range redNumbers {
		w.red[p] = true
	}
	return w
}

// Draw returns one pocket with probability 1/38, independent of previous draws.
func (w *Wheel) Draw() Pocket {
	w.mu.Lock()
	i := w.src.IntN(PocketCount)
	w.mu.Unlock()
	return w.order[i]
}

// ColorOf classifies a pocket.
func (w *Wheel) ColorOf(p Pocket) Color {
	switch {
	case p.IsZero():
		return Green
	case p.Valid() && w.red[p]:
		return Red
	default:
		return Black
	}
}

// Pockets returns the pockets in physical order.
func (w *Wheel) Pockets() []Pocket {
	out := make([]Pocket, PocketCount)
	copy(out, w.order[:])
	return out
}

// IndexOf returns the physical position of p, or -1 for an invalid pocket.
func (w *Wheel) IndexOf(p Pocket) int {
	if !p.Valid() {
		return -1
	}
	return w.position[p]
}

// Neighbors returns the n pockets on each side of p, counter-clockwise side
// first, nearest first within each side.
func (w *Wheel) Neighbors(p Pocket, n int) (left, right []Pocket) {
	i := w.IndexOf(p)
	if i < 0 || n <= 0 {
		return nil, nil
	}
	if n > PocketCount/2 {
		n = PocketCount / 2
	}
	left = make([]Pocket, n)
	right = make([]Pocket, n)
	for k := 1; k <= n; k++ {
		left[k-1] = w.order[(i-k+PocketCount)%PocketCount]
		right[k-1] = w.order[(i+k)%PocketCount]
	}
	return left, right
}
