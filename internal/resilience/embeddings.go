package resilience

import (
	"context"

	"github.com/auriga-voice/auriga/pkg/provider/embeddings"
)

var _ embeddings.Provider = (*EmbeddingsFailover)(nil)

// EmbeddingsFailover exposes a [Failover] chain of embedding backends as a
// single embeddings.Provider, so the semantic oracle never needs to know
// whether the primary or a fallback answered.
type EmbeddingsFailover struct {
	group *Failover[embeddings.Provider]
}

// NewEmbeddingsFailover builds the adapter around primary.
func NewEmbeddingsFailover(primaryName string, primary embeddings.Provider, breaker BreakerConfig) *EmbeddingsFailover {
	return &EmbeddingsFailover{group: NewFailover(primaryName, primary, breaker)}
}

// AddFallback appends a fallback backend.
func (e *EmbeddingsFailover) AddFallback(name string, p embeddings.Provider) {
	e.group.Add(name, p)
}

// Embed implements embeddings.Provider.
func (e *EmbeddingsFailover) Embed(ctx context.Context, text string) ([]float32, error) {
	return DoValue(e.group, func(p embeddings.Provider) ([]float32, error) {
		return p.Embed(ctx, text)
	})
}

// EmbedBatch implements embeddings.Provider.
func (e *EmbeddingsFailover) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return DoValue(e.group, func(p embeddings.Provider) ([][]float32, error) {
		return p.EmbedBatch(ctx, texts)
	})
}

// Dimensions implements embeddings.Provider, reporting the primary's
// dimension. Fallbacks are expected to share it; mixing dimensions would
// make cached vectors incomparable.
func (e *EmbeddingsFailover) Dimensions() int {
	return e.group.entries[0].value.Dimensions()
}

// ModelID implements embeddings.Provider, reporting the primary's model.
func (e *EmbeddingsFailover) ModelID() string {
	return e.group.entries[0].value.ModelID()
}
