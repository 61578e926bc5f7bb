// Package mock provides a test double for the embeddings.Provider
// interface. It returns canned or computed vectors without a live model and
// records every text submitted for embedding.
//
// Example:
//
//	p := &mock.Provider{
//	    EmbedFunc: func(text string) ([]float32, error) {
//	        return []float32{float32(len(text)), 1, 0}, nil
//	    },
//	    DimensionsValue: 3,
//	}
//	vec, _ := p.Embed(ctx, "bonjour")
package mock

import (
	"context"
	"sync"

	"github.com/auriga-voice/auriga/pkg/provider/embeddings"
)

var _ embeddings.Provider = (*Provider)(nil)

// Provider is a mock implementation of embeddings.Provider. The zero value
// is usable; all fields are optional.
type Provider struct {
	mu sync.Mutex

	// EmbedFunc, when set, computes the vector for each text. It takes
	// precedence over EmbedResult and is also used by EmbedBatch.
	EmbedFunc func(text string) ([]float32, error)

	// EmbedResult is returned by Embed when EmbedFunc is nil.
	EmbedResult []float32

	// EmbedErr, if non-nil, is returned from Embed and EmbedBatch.
	EmbedErr error

	// DimensionsValue is returned by Dimensions.
	DimensionsValue int

	// ModelIDValue is returned by ModelID. Empty defaults to "mock".
	ModelIDValue string

	// EmbedCalls records every text passed to Embed or EmbedBatch, in order.
	EmbedCalls []string
}

// Embed implements embeddings.Provider.
func (p *Provider) Embed(_ context.Context, text string) ([]float32, error) {
	p.mu.Lock()
	p.EmbedCalls = append(p.EmbedCalls, text)
	p.mu.Unlock()

	if p.EmbedErr != nil {
		return nil, p.EmbedErr
	}
	if p.EmbedFunc != nil {
		return p.EmbedFunc(text)
	}
	return p.EmbedResult, nil
}

// EmbedBatch implements embeddings.Provider by applying the same rules as
// Embed to each text.
func (p *Provider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := p.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// Dimensions implements embeddings.Provider.
func (p *Provider) Dimensions() int { return p.DimensionsValue }

// ModelID implements embeddings.Provider.
func (p *Provider) ModelID() string {
	if p.ModelIDValue == "" {
		return "mock"
	}
	return p.ModelIDValue
}

// Calls returns a copy of the recorded embed texts.
func (p *Provider) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.EmbedCalls))
	copy(out, p.EmbedCalls)
	return out
}
