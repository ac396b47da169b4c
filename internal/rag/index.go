package rag

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/wanderplan/concierge/models"
)

// Document is one indexed travel record. Immutable after indexing; the index
// owns the only copy carrying an embedding.
type Document struct {
	ID       string
	Type     models.ItemKind
	Content  string
	Metadata map[string]string
	Vector   []float32
}

// Hit pairs a document with its cosine similarity to the query vector.
// Higher is more relevant; the score range is [-1, 1].
type Hit struct {
	Document Document
	Score    float64
}

// Index is the nearest-neighbour capability behind the retrieval engine.
// Exactly one strategy is compiled in; the in-process linear scan below is
// sufficient for a small static corpus.
type Index interface {
	// Index stores the documents. Idempotent: a non-empty index ignores the
	// call so startup can be triggered from multiple paths without duplicate
	// documents.
	Index(ctx context.Context, docs []Document) error
	Count() int
	// Query returns up to topK documents ordered by descending similarity.
	Query(ctx context.Context, vec []float32, topK int) ([]Hit, error)
}

// MemoryIndex is a linear-scan cosine index.
type MemoryIndex struct {
	mu   sync.RWMutex
	docs []Document
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{}
}

func (m *MemoryIndex) Index(ctx context.Context, docs []Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.docs) > 0 {
		return nil
	}
	m.docs = append(m.docs, docs...)
	return nil
}

func (m *MemoryIndex) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}

func (m *MemoryIndex) Query(ctx context.Context, vec []float32, topK int) ([]Hit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	hits := make([]Hit, 0, len(m.docs))
	for _, d := range m.docs {
		hits = append(hits, Hit{Document: d, Score: cosine(vec, d.Vector)})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if topK > 0 && len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		ai := float64(a[i])
		bi := float64(b[i])
		dot += ai * bi
		na += ai * ai
		nb += bi * bi
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
