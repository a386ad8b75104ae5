// Package index holds the in-memory token sequences the rankers score. A
// Collection maps item identifiers (file names or sentence strings) to their
// token sequences and remembers the order in which identifiers were first
// added, so ranking ties resolve the same way on every run.
package index

// Item is a single identifier with its token sequence.
type Item struct {
	ID     string
	Tokens []string
}

// Collection is an insertion-ordered mapping from identifier to tokens.
// It is not safe for concurrent mutation; build it once, then share it
// read-only.
type Collection struct {
	order []string
	items map[string][]string
}

// NewCollection returns an empty Collection with room for size items.
func NewCollection(size int) *Collection {
	return &Collection{
		order: make([]string, 0, size),
		items: make(map[string][]string, size),
	}
}

// Add stores tokens under id. Re-adding an existing id replaces its tokens
// but keeps the position of the first insertion, so identical sentences from
// different places collapse into one entry.
func (c *Collection) Add(id string, tokens []string) {
	if _, exists := c.items[id]; !exists {
		c.order = append(c.order, id)
	}
	c.items[id] = tokens
}

// Tokens returns the token sequence stored under id.
func (c *Collection) Tokens(id string) ([]string, bool) {
	tokens, ok := c.items[id]
	return tokens, ok
}

// Contains reports whether id is present.
func (c *Collection) Contains(id string) bool {
	_, ok := c.items[id]
	return ok
}

// IDs returns the identifiers in insertion order.
func (c *Collection) IDs() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Items returns every entry in insertion order.
func (c *Collection) Items() []Item {
	out := make([]Item, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, Item{ID: id, Tokens: c.items[id]})
	}
	return out
}

// Len returns the number of distinct identifiers.
func (c *Collection) Len() int {
	return len(c.order)
}

// TokenCount returns the total number of tokens across all items.
func (c *Collection) TokenCount() int {
	total := 0
	for _, tokens := range c.items {
		total += len(tokens)
	}
	return total
}
