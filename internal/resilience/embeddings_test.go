package resilience

import (
	"context"
	"testing"

	"github.com/auriga-voice/auriga/pkg/provider/embeddings/mock"
)

func TestEmbeddingsFailover_PrefersPrimary(t *testing.T) {
	t.Parallel()

	primary := &mock.Provider{EmbedResult: []float32{1}, DimensionsValue: 1, ModelIDValue: "local"}
	fallback := &mock.Provider{EmbedResult: []float32{2}, DimensionsValue: 1, ModelIDValue: "hosted"}

	ef := NewEmbeddingsFailover("local", primary, BreakerConfig{})
	ef.AddFallback("hosted", fallback)

	vec, err := ef.Embed(context.Background(), "bonjour")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if vec[0] != 1 {
		t.Errorf("Embed = %v, want primary's vector", vec)
	}
	if got := ef.ModelID(); got != "local" {
		t.Errorf("ModelID = %q, want local", got)
	}
	if len(fallback.Calls()) != 0 {
		t.Error("fallback was called while primary healthy")
	}
}

func TestEmbeddingsFailover_UsesFallbackOnError(t *testing.T) {
	t.Parallel()

	primary := &mock.Provider{EmbedErr: errBoom, DimensionsValue: 2}
	fallback := &mock.Provider{EmbedResult: []float32{2}, DimensionsValue: 2}

	ef := NewEmbeddingsFailover("local", primary, BreakerConfig{})
	ef.AddFallback("hosted", fallback)

	vec, err := ef.Embed(context.Background(), "bonjour")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if vec[0] != 2 {
		t.Errorf("Embed = %v, want fallback's vector", vec)
	}

	vecs, err := ef.EmbedBatch(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(vecs) != 2 {
		t.Errorf("EmbedBatch returned %d vectors, want 2", len(vecs))
	}
}
