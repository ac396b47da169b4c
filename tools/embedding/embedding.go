package embedding

import (
	"context"
	"fmt"

	"github.com/wanderplan/concierge/models"
	"github.com/wanderplan/concierge/provider"
)

type Embedding struct {
	provider provider.Provider
}

func NewEmbedding(provider provider.Provider) *Embedding {
	return &Embedding{
		provider: provider,
	}
}

func (e Embedding) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vecs, err := e.provider.CreateEmbedding(ctx, texts)
	if err != nil {
		// Callers match the sentinel to tell a provider outage apart
		// from a broken index.
		return nil, fmt.Errorf("%w: %v", models.ErrRetrievalUnavailable, err)
	}

	return vecs, nil
}

// EmbedOne embeds a single text, returning its vector.
func (e Embedding) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedMany(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, nil
	}
	return vecs[0], nil
}
