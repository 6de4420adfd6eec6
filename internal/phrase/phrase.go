// Package phrase turns structured risk and report facts into user-facing
// text. Decision logic never depends on it; swapping the Provider changes
// wording only.
package phrase

import (
	"math/rand/v2"
	"strings"
	"sync"
)

// Key addresses a group of interchangeable phrases. Kind is a report kind or
// one of the risk kinds; ID is a reason, suggestion or band identifier.
type Key struct {
	Kind string
	ID   string
}

// Risk phrase kinds.
const (
	KindRiskReason     = "risk_reason"
	KindRiskSuggestion = "risk_suggestion"
)

// Provider returns one phrase for key, or false when it has none.
type Provider interface {
	Phrase(key Key) (string, bool)
}

// Catalog is a Provider backed by an in-memory table. By default it picks the
// first entry of each group; Random makes it pick uniformly instead.
type Catalog struct {
	entries map[Key][]string

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures a Catalog.
type Option func(*Catalog)

// Deterministic always returns the first phrase of a group.
func Deterministic() Option {
	return func(c *Catalog) { c.rng = nil }
}

// Random picks phrases with r. Catalogs are safe for concurrent use even
// though r is not.
func Random(r *rand.Rand) Option {
	return func(c *Catalog) { c.rng = r }
}

// NewCatalog builds a catalog from entries. Empty groups are dropped.
func NewCatalog(entries map[Key][]string, opts ...Option) *Catalog {
	c := &Catalog{entries: make(map[Key][]string, len(entries))}
	for k, v := range entries {
		if len(v) > 0 {
			c.entries[k] = append([]string(nil), v...)
		}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Default returns the built-in English catalog.
func Default(opts ...Option) *Catalog {
	return NewCatalog(english, opts...)
}

func (c *Catalog) Phrase(key Key) (string, bool) {
	group, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if c.rng == nil || len(group) == 1 {
		return group[0], true
	}
	c.mu.Lock()
	i := c.rng.IntN(len(group))
	c.mu.Unlock()
	return group[i], true
}

// Vars fills {name} placeholders in a phrase.
type Vars map[string]string

func fill(s string, vars Vars) string {
	if len(vars) == 0 || !strings.Contains(s, "{") {
		return s
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(s)
}
