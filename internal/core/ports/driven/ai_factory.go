package driven

import (
	"github.com/mailsage-labs/mailsage-core/internal/core/domain"
)

// AIServiceFactory creates AI services based on configuration
type AIServiceFactory interface {
	// CreateEmbeddingService creates an embedding service from settings
	// Returns nil, nil if settings are not configured
	CreateEmbeddingService(settings *domain.EmbeddingSettings) (EmbeddingService, error)

	// CreateGenerator creates a text generation service from settings
	// Returns nil, nil if settings are not configured
	CreateGenerator(settings *domain.GeneratorSettings) (Generator, error)
}
