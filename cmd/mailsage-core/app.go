package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/mailsage-labs/mailsage-core/internal/adapters/driven/ai"
	"github.com/mailsage-labs/mailsage-core/internal/adapters/driven/bolt"
	"github.com/mailsage-labs/mailsage-core/internal/adapters/driven/imap"
	"github.com/mailsage-labs/mailsage-core/internal/adapters/driven/jsonfile"
	"github.com/mailsage-labs/mailsage-core/internal/adapters/driven/memory"
	redisadapter "github.com/mailsage-labs/mailsage-core/internal/adapters/driven/redis"
	"github.com/mailsage-labs/mailsage-core/internal/adapters/driven/secrets"
	"github.com/mailsage-labs/mailsage-core/internal/core/domain"
	"github.com/mailsage-labs/mailsage-core/internal/core/ports/driven"
	"github.com/mailsage-labs/mailsage-core/internal/core/services"
	"github.com/mailsage-labs/mailsage-core/internal/textproc"
)

// app bundles the wired service graph for one process.
type app struct {
	cfg       domain.Config
	assistant *services.Assistant
	embedder  driven.EmbeddingService
	generator driven.Generator
	lock      *redisadapter.Lock
	redis     *redis.Client
	logger    *slog.Logger
}

// buildApp assembles adapters and services from environment configuration.
func buildApp(logger *slog.Logger) (*app, error) {
	cfg := configFromEnv()

	password, err := mailboxPassword()
	if err != nil {
		return nil, err
	}
	mailbox := domain.MailboxSettings{
		Host:     getEnv("IMAP_HOST", ""),
		Port:     getEnvInt("IMAP_PORT", 993),
		Username: getEnv("IMAP_USERNAME", ""),
		Password: password,
		Folder:   getEnv("IMAP_FOLDER", "INBOX"),
	}
	fetcher, err := imap.NewFetcher(mailbox, logger)
	if err != nil {
		return nil, fmt.Errorf("mailbox configuration: %w (set IMAP_HOST, IMAP_USERNAME, IMAP_PASSWORD)", err)
	}

	records, err := jsonfile.NewRecordStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("record store: %w", err)
	}
	store := services.NewMessageStore(fetcher, records, logger)

	factory := ai.NewFactory()

	embSettings := embeddingSettingsFromEnv()
	embedder, err := factory.CreateEmbeddingService(&embSettings)
	if err != nil {
		return nil, fmt.Errorf("embedding service: %w", err)
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedding service not configured (set EMBEDDING_PROVIDER and OPENAI_API_KEY or OLLAMA_URL)")
	}

	genSettings := generatorSettingsFromEnv()
	generator, err := factory.CreateGenerator(&genSettings)
	if err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}
	if generator == nil {
		return nil, fmt.Errorf("generator not configured (set GENERATOR_PROVIDER and OPENAI_API_KEY or OLLAMA_URL)")
	}

	index := services.NewRetrievalIndex(services.RetrievalIndexConfig{
		Config:   cfg,
		Embedder: embedder,
		Chunker:  textproc.NewChunker(),
		StoreOpener: func() (driven.VectorStore, error) {
			return bolt.NewVectorStore(cfg.IndexPath)
		},
		Logger: logger,
	})

	// Transcript memory lives in Redis when available, so conversation
	// context survives restarts and is shared across replicas.
	var (
		transcripts driven.TranscriptStore
		redisClient *redis.Client
		lock        *redisadapter.Lock
	)
	if redisURL := getEnv("REDIS_URL", ""); redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		redisClient = redis.NewClient(opts)
		transcripts = redisadapter.NewTranscriptStore(redisClient, "")
		lock = redisadapter.NewLock(redisClient)
		logger.Info("using redis transcript store")
	} else {
		transcripts = memory.NewTranscriptStore()
		logger.Info("using in-memory transcript store")
	}

	conversation := services.NewConversationMemory(transcripts, cfg.MaxTranscriptEntries, logger)

	assistant := services.NewAssistant(services.AssistantConfig{
		Config:    cfg,
		Store:     store,
		Index:     index,
		Memory:    conversation,
		Generator: generator,
		Logger:    logger,
	})

	return &app{
		cfg:       cfg,
		assistant: assistant,
		embedder:  embedder,
		generator: generator,
		lock:      lock,
		redis:     redisClient,
		logger:    logger,
	}, nil
}

// close releases the app's external connections.
func (a *app) close() {
	if a.embedder != nil {
		if err := a.embedder.Close(); err != nil {
			a.logger.Warn("failed to close embedding service", "error", err)
		}
	}
	if a.generator != nil {
		if err := a.generator.Close(); err != nil {
			a.logger.Warn("failed to close generator", "error", err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis client", "error", err)
		}
	}
}

// mailboxPassword resolves the IMAP password. IMAP_PASSWORD wins; an
// encrypted blob (IMAP_PASSWORD_ENCRYPTED + MAILSAGE_SECRET_KEY) is the
// alternative for env files that should not hold the plaintext.
func mailboxPassword() (string, error) {
	if plain := getEnv("IMAP_PASSWORD", ""); plain != "" {
		return plain, nil
	}

	blob := getEnv("IMAP_PASSWORD_ENCRYPTED", "")
	if blob == "" {
		return "", nil
	}

	key, err := secrets.KeyFromString(getEnv("MAILSAGE_SECRET_KEY", ""))
	if err != nil {
		return "", fmt.Errorf("MAILSAGE_SECRET_KEY: %w", err)
	}
	enc, err := secrets.NewEncryptor(key)
	if err != nil {
		return "", err
	}
	password, err := enc.DecryptString(blob)
	if err != nil {
		return "", fmt.Errorf("IMAP_PASSWORD_ENCRYPTED: %w", err)
	}
	return password, nil
}

func configFromEnv() domain.Config {
	cfg := domain.DefaultConfig()
	cfg.DataDir = getEnv("DATA_DIR", cfg.DataDir)
	cfg.IndexPath = getEnv("INDEX_PATH", cfg.IndexPath)
	cfg.ChunkSize = getEnvInt("CHUNK_SIZE", cfg.ChunkSize)
	cfg.ChunkOverlap = getEnvInt("CHUNK_OVERLAP", cfg.ChunkOverlap)
	cfg.RelevantK = getEnvInt("RELEVANT_K", cfg.RelevantK)
	cfg.CountK = getEnvInt("COUNT_K", cfg.CountK)
	cfg.MaxContextEmails = getEnvInt("MAX_CONTEXT_EMAILS", cfg.MaxContextEmails)
	cfg.MaxTranscriptEntries = getEnvInt("MAX_TRANSCRIPT_ENTRIES", cfg.MaxTranscriptEntries)
	return cfg
}

func embeddingSettingsFromEnv() domain.EmbeddingSettings {
	provider := domain.AIProvider(getEnv("EMBEDDING_PROVIDER", "openai"))
	return domain.EmbeddingSettings{
		Provider: provider,
		Model:    getEnv("EMBEDDING_MODEL", ""),
		APIKey:   getEnv("OPENAI_API_KEY", ""),
		BaseURL:  baseURLFor(provider, "EMBEDDING_BASE_URL"),
	}
}

func generatorSettingsFromEnv() domain.GeneratorSettings {
	provider := domain.AIProvider(getEnv("GENERATOR_PROVIDER", "openai"))
	return domain.GeneratorSettings{
		Provider: provider,
		Model:    getEnv("GENERATOR_MODEL", ""),
		APIKey:   getEnv("OPENAI_API_KEY", ""),
		BaseURL:  baseURLFor(provider, "GENERATOR_BASE_URL"),
	}
}

func baseURLFor(provider domain.AIProvider, envKey string) string {
	if provider == domain.AIProviderOllama {
		return getEnv("OLLAMA_URL", getEnv(envKey, ""))
	}
	return getEnv(envKey, "")
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}
