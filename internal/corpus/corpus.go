// Package corpus supplies the documents the engine answers from: an ordered
// mapping from document identifier to raw text, loaded once per run.
package corpus

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/zeebo/blake3"

	apperrors "github.com/Adithya-Monish-Kumar-K/questions/pkg/errors"
)

// Document is a single corpus entry.
type Document struct {
	ID   string
	Text string
}

// Corpus is an immutable, ordered set of documents with unique identifiers.
type Corpus struct {
	docs []Document
	byID map[string]int
}

// Loader produces a corpus from some backing store.
type Loader interface {
	Load(ctx context.Context) (*Corpus, error)
}

// New builds a corpus from docs, keeping their order. Duplicate identifiers
// are rejected.
func New(docs ...Document) (*Corpus, error) {
	c := &Corpus{
		docs: make([]Document, 0, len(docs)),
		byID: make(map[string]int, len(docs)),
	}
	for _, d := range docs {
		if _, exists := c.byID[d.ID]; exists {
			return nil, apperrors.Newf(apperrors.ErrInvalidInput, 0, "duplicate document id %q", d.ID)
		}
		c.byID[d.ID] = len(c.docs)
		c.docs = append(c.docs, d)
	}
	return c, nil
}

// FromMap builds a corpus from a map; documents are ordered by identifier.
func FromMap(texts map[string]string) *Corpus {
	ids := make([]string, 0, len(texts))
	for id := range texts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	docs := make([]Document, 0, len(ids))
	for _, id := range ids {
		docs = append(docs, Document{ID: id, Text: texts[id]})
	}
	c, _ := New(docs...)
	return c
}

// Documents returns the documents in corpus order.
func (c *Corpus) Documents() []Document {
	out := make([]Document, len(c.docs))
	copy(out, c.docs)
	return out
}

// Text returns the raw text of the document id.
func (c *Corpus) Text(id string) (string, bool) {
	i, ok := c.byID[id]
	if !ok {
		return "", false
	}
	return c.docs[i].Text, true
}

// Len returns the number of documents.
func (c *Corpus) Len() int {
	return len(c.docs)
}

// Size returns the total byte length of all document texts.
func (c *Corpus) Size() int {
	total := 0
	for _, d := range c.docs {
		total += len(d.Text)
	}
	return total
}

// Digest returns a BLAKE3 fingerprint of the identifiers and texts, in
// order. Two corpora with the same digest answer every query identically.
func (c *Corpus) Digest() string {
	h := blake3.New()
	var lenBuf [8]byte
	write := func(s string) {
		binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(s)))
		h.Write(lenBuf[:])
		h.Write([]byte(s))
	}
	for _, d := range c.docs {
		write(d.ID)
		write(d.Text)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (c *Corpus) String() string {
	return fmt.Sprintf("corpus(%d documents, %d bytes)", c.Len(), c.Size())
}
