package catalog

import "strings"

// Chain is an ordered, duplicate-free list of backends. The first entry is
// the most preferred. Chains are never modified in place; Append returns a
// new chain.
type Chain struct {
	items []Descriptor
}

// NewChain builds a chain from descriptors in priority order. Later
// descriptors whose ID already appeared are dropped.
func NewChain(ds ...Descriptor) Chain {
	seen := make(map[string]struct{}, len(ds))
	items := make([]Descriptor, 0, len(ds))
	for _, d := range ds {
		if _, dup := seen[d.ID]; dup {
			continue
		}
		seen[d.ID] = struct{}{}
		items = append(items, d)
	}
	return Chain{items: items}
}

// Len returns the number of backends in the chain.
func (c Chain) Len() int { return len(c.items) }

// Empty reports whether the chain has no backends.
func (c Chain) Empty() bool { return len(c.items) == 0 }

// At returns the i-th descriptor.
func (c Chain) At(i int) Descriptor { return c.items[i] }

// Descriptors returns a copy of the chain contents.
func (c Chain) Descriptors() []Descriptor {
	out := make([]Descriptor, len(c.items))
	copy(out, c.items)
	return out
}

// IDs returns the backend identifiers in priority order.
func (c Chain) IDs() []string {
	out := make([]string, len(c.items))
	for i, d := range c.items {
		out[i] = d.ID
	}
	return out
}

// Append returns a new chain with ds added at the tail, skipping duplicates.
func (c Chain) Append(ds ...Descriptor) Chain {
	all := make([]Descriptor, 0, len(c.items)+len(ds))
	all = append(all, c.items...)
	all = append(all, ds...)
	return NewChain(all...)
}

// String renders the chain as "a > b > c".
func (c Chain) String() string {
	return strings.Join(c.IDs(), " > ")
}
