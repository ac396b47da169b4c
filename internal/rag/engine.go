// Package rag turns free-text queries into ranked travel context: it embeds
// the static catalog once at startup, answers per-turn context lookups with
// a thresholded similarity search, and keeps a separate best-effort index of
// conversation transcripts for admin lookups.
package rag

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/wanderplan/concierge/catalog"
	"github.com/wanderplan/concierge/models"
)

// Embedder maps texts to fixed-length vectors. tools/embedding satisfies it;
// tests supply deterministic fakes.
type Embedder interface {
	EmbedMany(ctx context.Context, texts []string) ([][]float32, error)
	EmbedOne(ctx context.Context, text string) ([]float32, error)
}

// Options tune retrieval. The similarity threshold is an empirically chosen
// constant; the equivalent distance-based convention (accept < 1.5) applies
// when a vector database returns distances instead.
type Options struct {
	TopK                int
	ConversationTopK    int
	SimilarityThreshold float64
}

const (
	DefaultTopK                = 5
	DefaultConversationTopK    = 10
	DefaultSimilarityThreshold = 0.3
)

func (o Options) withDefaults() Options {
	if o.TopK <= 0 {
		o.TopK = DefaultTopK
	}
	if o.ConversationTopK <= 0 {
		o.ConversationTopK = DefaultConversationTopK
	}
	if o.SimilarityThreshold == 0 {
		o.SimilarityThreshold = DefaultSimilarityThreshold
	}
	return o
}

// Engine orchestrates indexing, query embedding, ranking and context
// assembly over a document index and the conversation index.
type Engine struct {
	index    Index
	conv     *ConversationIndex
	embedder Embedder
	opts     Options
	logger   *log.Logger
}

func NewEngine(embedder Embedder, index Index, opts Options, logger *log.Logger) (*Engine, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if index == nil {
		index = NewMemoryIndex()
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[RAG] ", log.LstdFlags)
	}
	conv, err := NewConversationIndex()
	if err != nil {
		return nil, fmt.Errorf("conversation index: %w", err)
	}
	return &Engine{index: index, conv: conv, embedder: embedder, opts: opts.withDefaults(), logger: logger}, nil
}

// IndexCatalog embeds and indexes every catalog item. It is a one-time,
// idempotent startup operation: if the index already holds documents the
// embedding calls are skipped entirely.
func (e *Engine) IndexCatalog(ctx context.Context) error {
	if n := e.index.Count(); n > 0 {
		e.logger.Printf("catalog index already has %d documents", n)
		return nil
	}

	var docs []Document
	for _, f := range catalog.Flights {
		docs = append(docs, Document{
			ID: "flight_" + f.ID, Type: models.ItemKindFlight, Content: f.Render(),
			Metadata: map[string]string{"item_id": f.ID},
		})
	}
	for _, h := range catalog.Hotels {
		docs = append(docs, Document{
			ID: "hotel_" + h.ID, Type: models.ItemKindHotel, Content: h.Render(),
			Metadata: map[string]string{"item_id": h.ID},
		})
	}
	for _, a := range catalog.Activities {
		docs = append(docs, Document{
			ID: "activity_" + a.ID, Type: models.ItemKindActivity, Content: a.Render(),
			Metadata: map[string]string{"item_id": a.ID},
		})
	}
	for _, g := range catalog.Guides {
		docs = append(docs, Document{
			ID: "guide_" + strings.ToLower(g.City), Type: models.ItemKindGuide, Content: g.Render(),
			Metadata: map[string]string{"item_id": strings.ToLower(g.City)},
		})
	}

	contents := make([]string, len(docs))
	for i, d := range docs {
		contents[i] = d.Content
	}
	vecs, err := e.embedder.EmbedMany(ctx, contents)
	if err != nil {
		return fmt.Errorf("embed catalog: %w", err)
	}
	if len(vecs) != len(docs) {
		return fmt.Errorf("embed catalog: got %d vectors for %d documents", len(vecs), len(docs))
	}
	for i := range docs {
		docs[i].Vector = vecs[i]
	}
	if err := e.index.Index(ctx, docs); err != nil {
		return fmt.Errorf("index catalog: %w", err)
	}
	e.logger.Printf("indexed %d catalog documents", len(docs))
	return nil
}

// GetContext retrieves the context block for a query. found=false means no
// document passed the relevance threshold and the caller should fall back to
// other context sources; retrieval failures are folded into found=false
// because this path must never block a turn.
func (e *Engine) GetContext(ctx context.Context, query string) (string, bool) {
	vec, err := e.embedder.EmbedOne(ctx, query)
	if err != nil {
		e.logger.Printf("query embedding failed: %v", err)
		return "", false
	}
	hits, err := e.index.Query(ctx, vec, e.opts.TopK)
	if err != nil {
		e.logger.Printf("index query failed: %v", err)
		return "", false
	}

	var parts []string
	for _, h := range hits {
		if h.Score < e.opts.SimilarityThreshold {
			continue
		}
		parts = append(parts, fmt.Sprintf("[%s] %s", strings.ToUpper(string(h.Document.Type)), h.Document.Content))
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, "\n\n"), true
}

// IndexConversation upserts one record per message into the conversation
// index, keyed by (sessionID, ordinal) so re-indexing a session overwrites
// rather than duplicates. Failures are soft: a message whose embedding call
// fails is skipped and logged.
func (e *Engine) IndexConversation(ctx context.Context, sessionID string, messages []models.Message) error {
	var firstErr error
	for i, msg := range messages {
		content := fmt.Sprintf("%s: %s", msg.Role, msg.Content)
		vec, err := e.embedder.EmbedOne(ctx, content)
		if err != nil {
			e.logger.Printf("conversation embedding failed for %s_%d: %v", sessionID, i, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		rec := ConversationRecord{
			DocID:     fmt.Sprintf("%s_%d", sessionID, i),
			Content:   content,
			SessionID: sessionID,
			Role:      msg.Role,
			Timestamp: msg.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
		}
		if err := e.conv.Upsert(rec, vec); err != nil {
			e.logger.Printf("conversation upsert failed for %s: %v", rec.DocID, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// SearchConversations is best-effort admin tooling: any retrieval failure
// yields an empty result set rather than an error.
func (e *Engine) SearchConversations(ctx context.Context, query, sessionID string, topK int) []ConversationHit {
	if topK <= 0 {
		topK = e.opts.ConversationTopK
	}
	var vec []float32
	if v, err := e.embedder.EmbedOne(ctx, query); err == nil {
		vec = v
	} else {
		e.logger.Printf("conversation query embedding failed: %v", err)
	}
	hits, err := e.conv.Search(query, vec, sessionID, topK)
	if err != nil {
		e.logger.Printf("conversation search failed: %v", err)
		return nil
	}
	return hits
}
