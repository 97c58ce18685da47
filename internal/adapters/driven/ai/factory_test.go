package ai

import (
	"errors"
	"testing"

	"github.com/mailsage-labs/mailsage-core/internal/core/domain"
)

func TestFactory_CreateEmbeddingService_NilSettings(t *testing.T) {
	factory := NewFactory()

	svc, err := factory.CreateEmbeddingService(nil)
	if err != nil {
		t.Errorf("expected no error for nil settings, got %v", err)
	}
	if svc != nil {
		t.Error("expected nil service for nil settings")
	}
}

func TestFactory_CreateEmbeddingService_NotConfigured(t *testing.T) {
	factory := NewFactory()

	svc, err := factory.CreateEmbeddingService(&domain.EmbeddingSettings{})
	if err != nil {
		t.Errorf("expected no error for unconfigured settings, got %v", err)
	}
	if svc != nil {
		t.Error("expected nil service for unconfigured settings")
	}
}

func TestFactory_CreateEmbeddingService_OpenAI(t *testing.T) {
	factory := NewFactory()

	svc, err := factory.CreateEmbeddingService(&domain.EmbeddingSettings{
		Provider: domain.AIProviderOpenAI,
		Model:    "text-embedding-3-small",
		APIKey:   "sk-test",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc == nil {
		t.Fatal("expected non-nil service")
	}
	if svc.Model() != "text-embedding-3-small" {
		t.Errorf("unexpected model %s", svc.Model())
	}
}

func TestFactory_CreateEmbeddingService_Ollama(t *testing.T) {
	factory := NewFactory()

	// Ollama needs no API key
	svc, err := factory.CreateEmbeddingService(&domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		Model:    "nomic-embed-text",
		BaseURL:  "http://localhost:11434",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc == nil {
		t.Fatal("expected non-nil service")
	}
	if svc.Dimensions() != 768 {
		t.Errorf("unexpected dimensions %d", svc.Dimensions())
	}
}

func TestFactory_CreateEmbeddingService_UnknownProvider(t *testing.T) {
	factory := NewFactory()

	_, err := factory.CreateEmbeddingService(&domain.EmbeddingSettings{
		Provider: "acme",
		APIKey:   "key",
	})
	if !errors.Is(err, domain.ErrInvalidProvider) {
		t.Errorf("expected ErrInvalidProvider, got %v", err)
	}
}

func TestFactory_CreateGenerator_NilSettings(t *testing.T) {
	factory := NewFactory()

	gen, err := factory.CreateGenerator(nil)
	if err != nil {
		t.Errorf("expected no error for nil settings, got %v", err)
	}
	if gen != nil {
		t.Error("expected nil generator for nil settings")
	}
}

func TestFactory_CreateGenerator_OpenAI(t *testing.T) {
	factory := NewFactory()

	gen, err := factory.CreateGenerator(&domain.GeneratorSettings{
		Provider: domain.AIProviderOpenAI,
		Model:    "gpt-4o-mini",
		APIKey:   "sk-test",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gen == nil || gen.Model() != "gpt-4o-mini" {
		t.Errorf("unexpected generator %+v", gen)
	}
}

func TestFactory_CreateGenerator_Ollama(t *testing.T) {
	factory := NewFactory()

	gen, err := factory.CreateGenerator(&domain.GeneratorSettings{
		Provider: domain.AIProviderOllama,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gen == nil || gen.Model() != "llama3.1" {
		t.Error("expected default Ollama model")
	}
}

func TestFactory_CreateGenerator_UnknownProvider(t *testing.T) {
	factory := NewFactory()

	_, err := factory.CreateGenerator(&domain.GeneratorSettings{
		Provider: "acme",
		APIKey:   "key",
	})
	if !errors.Is(err, domain.ErrInvalidProvider) {
		t.Errorf("expected ErrInvalidProvider, got %v", err)
	}
}
