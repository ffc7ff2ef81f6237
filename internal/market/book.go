// Package market owns the shared per-symbol series mapping.
//
// The book is written by the bulk fetch path and the live-tick patch path and
// read by the analysis engine. Writes are applied as whole-object
// replacements (copy-on-write) so a reader holding a snapshot never observes
// a half-updated series.
package market

import (
	"sync"

	"coinsniper/internal/model"
)

// Book is the copy-on-write holder for the symbol → series mapping.
type Book struct {
	mu     sync.RWMutex
	series model.SeriesMap
}

// NewBook creates an empty book.
func NewBook() *Book {
	return &Book{series: model.SeriesMap{}}
}

// Replace swaps in a freshly fetched mapping. The caller must not mutate the
// map after handing it over.
func (b *Book) Replace(m model.SeriesMap) {
	if m == nil {
		m = model.SeriesMap{}
	}
	b.mu.Lock()
	b.series = m
	b.mu.Unlock()
}

// Snapshot returns the current mapping. The returned map and its series are
// immutable by convention — every writer swaps in fresh objects.
func (b *Book) Snapshot() model.SeriesMap {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.series
}

// ApplyTick patches the most recent candle of one symbol with a live price:
// close is replaced, high/low are widened if the price escapes the bar's
// range. The patch builds a fresh series and a fresh map so concurrent
// readers keep their consistent snapshot. Returns false when the symbol has
// no series to patch.
func (b *Book) ApplyTick(symbol string, price float64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	old, ok := b.series[symbol]
	if !ok || len(old) == 0 {
		return false
	}

	patched := make(model.Series, len(old))
	copy(patched, old)
	head := patched[0]
	head.Close = price
	if price > head.High {
		head.High = price
	}
	if price < head.Low {
		head.Low = price
	}
	patched[0] = head

	next := make(model.SeriesMap, len(b.series))
	for sym, s := range b.series {
		next[sym] = s
	}
	next[symbol] = patched
	b.series = next
	return true
}
