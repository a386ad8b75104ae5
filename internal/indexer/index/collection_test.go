package index

import (
	"reflect"
	"testing"
)

func TestCollectionPreservesInsertionOrder(t *testing.T) {
	c := NewCollection(3)
	c.Add("b.txt", []string{"x"})
	c.Add("a.txt", []string{"y", "z"})
	c.Add("c.txt", nil)

	if got, want := c.IDs(), []string{"b.txt", "a.txt", "c.txt"}; !reflect.DeepEqual(got, want) {
		t.Errorf("IDs = %v, want %v", got, want)
	}
	if c.Len() != 3 {
		t.Errorf("Len = %d, want 3", c.Len())
	}
	if c.TokenCount() != 3 {
		t.Errorf("TokenCount = %d, want 3", c.TokenCount())
	}
}

func TestCollectionCollapsesDuplicateIDs(t *testing.T) {
	c := NewCollection(0)
	c.Add("Same sentence.", []string{"same", "sentence"})
	c.Add("Other.", []string{"other"})
	c.Add("Same sentence.", []string{"sentence"})

	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
	items := c.Items()
	if items[0].ID != "Same sentence." {
		t.Errorf("first item = %q, want original position kept", items[0].ID)
	}
	tokens, ok := c.Tokens("Same sentence.")
	if !ok || !reflect.DeepEqual(tokens, []string{"sentence"}) {
		t.Errorf("Tokens = %v, %v; want latest tokens", tokens, ok)
	}
}

func TestCollectionIDsIsCopy(t *testing.T) {
	c := NewCollection(1)
	c.Add("a", nil)
	ids := c.IDs()
	ids[0] = "mutated"
	if !c.Contains("a") || c.IDs()[0] != "a" {
		t.Error("IDs must not expose internal state")
	}
}

func TestTermCountsAndSet(t *testing.T) {
	tokens := []string{"cat", "cat", "dog"}
	if got := TermCounts(tokens); got["cat"] != 2 || got["dog"] != 1 {
		t.Errorf("TermCounts = %v", got)
	}
	if got := TermSet(tokens); len(got) != 2 {
		t.Errorf("TermSet = %v", got)
	}
}
