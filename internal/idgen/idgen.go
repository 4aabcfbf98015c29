// Package idgen issues human-readable identifiers with a monotonic counter per kind.
package idgen

import (
	"fmt"
	"regexp"
	"strconv"
	"sync"

	"stock-service/internal/clock"
)

type Kind string

const (
	KindProduct     Kind = "product"
	KindSupplier    Kind = "supplier"
	KindTransaction Kind = "transaction"
	KindAlert       Kind = "alert"
)

const transactionStampLayout = "20060102150405"

var trailingDigits = regexp.MustCompile(`(\d+)$`)

// Generator is safe for concurrent use. Identifiers are unique per kind for
// the lifetime of the generator; Seed lets a restarted process continue
// after identifiers already persisted.
type Generator struct {
	mu       sync.Mutex
	counters map[Kind]int
	clock    clock.Clock
}

func New(clk clock.Clock) *Generator {
	if clk == nil {
		clk = clock.System{}
	}
	return &Generator{counters: make(map[Kind]int), clock: clk}
}

func (g *Generator) Next(kind Kind) string {
	g.mu.Lock()
	g.counters[kind]++
	n := g.counters[kind]
	g.mu.Unlock()

	switch kind {
	case KindProduct:
		return fmt.Sprintf("P%04d", n)
	case KindSupplier:
		return fmt.Sprintf("S%04d", n)
	case KindTransaction:
		return fmt.Sprintf("T%s-%04d", g.clock.Now().Format(transactionStampLayout), n)
	case KindAlert:
		return fmt.Sprintf("A%06d", n)
	default:
		return fmt.Sprintf("%s-%d", kind, n)
	}
}

// Seed raises the counter for kind to the highest numeric suffix found in ids.
// It never lowers a counter.
func (g *Generator) Seed(kind Kind, ids []string) {
	highest := 0
	for _, id := range ids {
		m := trailingDigits.FindStringSubmatch(id)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err == nil && n > highest {
			highest = n
		}
	}

	g.mu.Lock()
	if highest > g.counters[kind] {
		g.counters[kind] = highest
	}
	g.mu.Unlock()
}
