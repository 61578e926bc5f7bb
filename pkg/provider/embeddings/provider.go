// Package embeddings defines the Provider interface for sentence-embedding
// backends.
//
// An embeddings provider maps text strings to dense float32 vectors. Auriga
// uses these vectors for two things: scoring how word-like a merge candidate
// is during text repair, and matching cleaned utterances against the wake
// word and command trigger registries. The provider is consumed as a black
// box — for a fixed model and input the vector is assumed deterministic.
//
// Implementations must be safe for concurrent use. Callers that cannot
// guarantee the underlying engine tolerates concurrent inference must
// serialize calls themselves (see internal/semantic).
package embeddings

import "context"

// Provider is the abstraction over any sentence-embedding backend.
//
// All vectors returned by one Provider instance share the same
// dimensionality (Dimensions). Vectors from different instances must not be
// mixed in a similarity computation unless both use the same model.
type Provider interface {
	// Embed computes the embedding vector for a single text string. Returns
	// a float32 slice of length Dimensions() or an error if the request
	// fails or ctx is cancelled.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch computes embedding vectors for a slice of texts in one
	// backend call. The returned slice has the same length and order as
	// texts. On error no partial results are returned. Used to precompute
	// the trigger-phrase registries in one round trip.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the fixed length of every vector produced by this
	// provider. Constant for the lifetime of the instance.
	Dimensions() int

	// ModelID returns the provider-specific model identifier, for logging
	// and for verifying that cached vectors match the active model.
	ModelID() string
}
