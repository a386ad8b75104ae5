package idf

import (
	"math"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/questions/internal/indexer/index"
)

const epsilon = 1e-12

func TestComputeTwoDocuments(t *testing.T) {
	c := index.NewCollection(2)
	c.Add("A", []string{"cat", "dog"})
	c.Add("B", []string{"cat", "cat"})

	table := Compute(c)
	if got, want := table.Weight("dog"), math.Log(2); math.Abs(got-want) > epsilon {
		t.Errorf("idf(dog) = %v, want %v", got, want)
	}
	if got := table.Weight("cat"); got != 0 {
		t.Errorf("idf(cat) = %v, want 0", got)
	}
	if table.Len() != 2 {
		t.Errorf("Len = %d, want 2", table.Len())
	}
	if table.Items() != 2 {
		t.Errorf("Items = %d, want 2", table.Items())
	}
}

func TestComputeCountsMembershipNotFrequency(t *testing.T) {
	c := index.NewCollection(3)
	c.Add("a", []string{"x", "x", "x", "x"})
	c.Add("b", []string{"y"})
	c.Add("c", []string{"y"})

	table := Compute(c)
	if got, want := table.Weight("x"), math.Log(3); math.Abs(got-want) > epsilon {
		t.Errorf("idf(x) = %v, want %v", got, want)
	}
	if got, want := table.Weight("y"), math.Log(3.0/2.0); math.Abs(got-want) > epsilon {
		t.Errorf("idf(y) = %v, want %v", got, want)
	}
}

func TestComputeEmptyItemCountsTowardsN(t *testing.T) {
	c := index.NewCollection(2)
	c.Add("full", []string{"term"})
	c.Add("empty", []string{})

	table := Compute(c)
	if got, want := table.Weight("term"), math.Log(2); math.Abs(got-want) > epsilon {
		t.Errorf("idf(term) = %v, want %v", got, want)
	}
	if table.Len() != 1 {
		t.Errorf("Len = %d, want 1", table.Len())
	}
}

func TestComputeKeysMatchVocabulary(t *testing.T) {
	c := index.NewCollection(2)
	c.Add("a", []string{"alpha", "beta"})
	c.Add("b", []string{"gamma"})

	table := Compute(c)
	for _, term := range []string{"alpha", "beta", "gamma"} {
		v, ok := table.values[term]
		if !ok {
			t.Errorf("missing term %q", term)
		}
		if v < 0 {
			t.Errorf("idf(%q) = %v, want non-negative", term, v)
		}
	}
	if _, ok := table.values["delta"]; ok {
		t.Error("unseen term must not be present")
	}
	if table.Weight("delta") != 0 {
		t.Error("unseen term must weigh 0")
	}
}

func TestComputeEmptyCollection(t *testing.T) {
	table := Compute(index.NewCollection(0))
	if table.Len() != 0 || table.Items() != 0 {
		t.Errorf("expected empty table, got len=%d items=%d", table.Len(), table.Items())
	}
}

func TestFromMapCopies(t *testing.T) {
	src := map[string]float64{"dog": 1}
	table := FromMap(src)
	src["dog"] = 5
	if table.Weight("dog") != 1 {
		t.Error("FromMap must copy its input")
	}
}
