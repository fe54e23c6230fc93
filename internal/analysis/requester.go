// Package analysis asks a generative model for a narrative summary of an
// interview record.
package analysis

import "context"

// Requester sends one prompt to a model.
type Requester interface {
	Summarize(ctx context.Context, prompt string) (string, error)
	// SummarizeStream calls onChunk with each text delta as it arrives and
	// returns the full text.
	SummarizeStream(ctx context.Context, prompt string, onChunk func(string)) (string, error)
}
