package rag

import (
	"sort"
	"sync"

	"github.com/blevesearch/bleve"
)

const rrfK = 60 // reciprocal-rank-fusion constant

// ConversationRecord is one embeddable transcript line, keyed by
// (session id, message ordinal).
type ConversationRecord struct {
	DocID     string `json:"doc_id"`
	Content   string `json:"content"`
	SessionID string `json:"session_id"`
	Role      string `json:"role"`
	Timestamp string `json:"timestamp"`
}

// ConversationHit is a fused search result with the record's metadata.
type ConversationHit struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
	Score    float64           `json:"score"`
	Rank     int               `json:"rank"`
}

// ConversationIndex holds transcript lines in two legs: a mem-only bleve
// index for keyword search and an in-memory vector table for similarity
// search. Results are fused with reciprocal-rank fusion.
type ConversationIndex struct {
	mu      sync.RWMutex
	bleve   bleve.Index
	vectors map[string][]float32
	meta    map[string]ConversationRecord
}

func NewConversationIndex() (*ConversationIndex, error) {
	index, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, err
	}
	return &ConversationIndex{
		bleve:   index,
		vectors: make(map[string][]float32),
		meta:    make(map[string]ConversationRecord),
	}, nil
}

// Upsert stores the record under its doc id. Re-indexing the same ordinal
// overwrites both legs, never duplicates.
func (c *ConversationIndex) Upsert(rec ConversationRecord, vec []float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.meta[rec.DocID] = rec
	if vec != nil {
		c.vectors[rec.DocID] = vec
	}
	return c.bleve.Index(rec.DocID, rec)
}

func (c *ConversationIndex) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.meta)
}

type scoredHit struct {
	docID string
	score float64
	rank  int
}

// Search runs both legs (the vector leg only when a query vector is given),
// fuses them, and optionally filters to one session.
func (c *ConversationIndex) Search(query string, vec []float32, sessionID string, topK int) ([]ConversationHit, error) {
	keyword, err := c.keywordSearch(query, sessionID, topK)
	if err != nil && vec == nil {
		return nil, err
	}
	var vector []scoredHit
	if vec != nil {
		vector = c.vectorSearch(vec, sessionID, topK)
	}
	fused := fuseRRF(keyword, vector, topK)

	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]ConversationHit, 0, len(fused))
	for i, h := range fused {
		rec, ok := c.meta[h.docID]
		if !ok {
			continue
		}
		out = append(out, ConversationHit{
			Content: rec.Content,
			Metadata: map[string]string{
				"session_id": rec.SessionID,
				"role":       rec.Role,
				"timestamp":  rec.Timestamp,
			},
			Score: h.score,
			Rank:  i + 1,
		})
	}
	return out, nil
}

func (c *ConversationIndex) keywordSearch(query, sessionID string, k int) ([]scoredHit, error) {
	q := bleve.NewQueryStringQuery(query)
	req := bleve.NewSearchRequestOptions(q, k*3, 0, false)
	res, err := c.bleve.Search(req)
	if err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []scoredHit
	for _, hit := range res.Hits {
		rec, ok := c.meta[hit.ID]
		if !ok {
			continue
		}
		if sessionID != "" && rec.SessionID != sessionID {
			continue
		}
		out = append(out, scoredHit{docID: hit.ID, score: hit.Score, rank: len(out) + 1})
		if len(out) >= k {
			break
		}
	}
	return out, nil
}

func (c *ConversationIndex) vectorSearch(vec []float32, sessionID string, k int) []scoredHit {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []scoredHit
	for id, v := range c.vectors {
		rec, ok := c.meta[id]
		if !ok {
			continue
		}
		if sessionID != "" && rec.SessionID != sessionID {
			continue
		}
		out = append(out, scoredHit{docID: id, score: cosine(vec, v)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].score > out[j].score })
	if len(out) > k {
		out = out[:k]
	}
	for i := range out {
		out[i].rank = i + 1
	}
	return out
}

func fuseRRF(a, b []scoredHit, k int) []scoredHit {
	fused := map[string]*scoredHit{}
	add := func(list []scoredHit) {
		for _, h := range list {
			x, ok := fused[h.docID]
			if !ok {
				fused[h.docID] = &scoredHit{docID: h.docID}
				x = fused[h.docID]
			}
			x.score += 1.0 / float64(rrfK+h.rank)
		}
	}
	add(a)
	add(b)
	out := make([]scoredHit, 0, len(fused))
	for _, v := range fused {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].score > out[j].score })
	if len(out) > k {
		out = out[:k]
	}
	for i := range out {
		out[i].rank = i + 1
	}
	return out
}
