package driven

import (
	"context"
)

// Generator provides large language model text generation for the
// question-answering pipeline
type Generator interface {
	// Generate maps a prompt to a completion string
	// May fail on quota or timeout
	Generate(ctx context.Context, prompt string) (string, error)

	// Model returns the model name being used
	Model() string

	// Ping verifies the generation service is available
	Ping(ctx context.Context) error

	// Close releases resources held by the generation service
	Close() error
}
