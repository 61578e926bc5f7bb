// Package stt defines the speech-to-text provider contract.
package stt

import "context"

// Transcriber converts captured audio into text.
type Transcriber interface {
	// Transcribe converts mono 16 kHz float32 samples to raw text. The
	// output may still contain decoder sentinel tags; callers are expected
	// to clean it before further processing.
	Transcribe(ctx context.Context, samples []float32) (string, error)

	// Close releases backend resources.
	Close() error
}
