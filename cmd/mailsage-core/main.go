// Command mailsage-core answers natural-language questions about a
// mailbox. It serves a JSON API or runs one-shot pipeline operations
// from the command line.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mailsage-labs/mailsage-core/internal/adapters/driven/secrets"
	httpadapter "github.com/mailsage-labs/mailsage-core/internal/adapters/driving/http"
	"github.com/mailsage-labs/mailsage-core/internal/core/ports/driven"
	"github.com/mailsage-labs/mailsage-core/internal/worker"
)

var version = "dev"

func main() {
	logger := newLogger()
	slog.SetDefault(logger)

	root := &cobra.Command{
		Use:           "mailsage-core",
		Short:         "Question answering over your mailbox",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(logger),
		newAskCmd(logger),
		newFetchCmd(logger),
		newIndexCmd(logger),
		newSummarizeCmd(logger),
		newSenderCmd(logger),
		newMemoryCmd(logger),
		newSecretCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newServeCmd(logger *slog.Logger) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server with the background mailbox refresher",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(logger)
			if err != nil {
				return err
			}
			defer a.close()

			var redisPinger httpadapter.Pinger
			if a.lock != nil {
				redisPinger = a.lock
			}

			server := httpadapter.NewServer(httpadapter.Config{
				Host:    getEnv("HOST", "0.0.0.0"),
				Port:    port,
				Version: version,
				Logger:  logger,
			}, a.assistant, a.generator, redisPinger)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			if getEnvBool("REFRESH_ENABLED", true) {
				var lock driven.DistributedLock
				if a.lock != nil {
					lock = a.lock
				}
				refresher := worker.NewRefresher(worker.RefresherConfig{
					Assistant: a.assistant,
					Lock:      lock,
					Logger:    logger,
					Interval:  time.Duration(getEnvInt("REFRESH_INTERVAL_MIN", 15)) * time.Minute,
				})
				refresher.Start(ctx)
				defer refresher.Stop()
			}

			logger.Info("starting server", "port", port, "version", version)
			return server.Start()
		},
	}

	cmd.Flags().IntVar(&port, "port", getEnvInt("PORT", 8080), "listen port")
	return cmd
}

func newAskCmd(logger *slog.Logger) *cobra.Command {
	var showDetails bool

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question about today's emails",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(logger)
			if err != nil {
				return err
			}
			defer a.close()

			result := a.assistant.AnswerQuestion(cmd.Context(), strings.Join(args, " "))

			if showDetails {
				fmt.Printf("Resolved question: %s\n", result.ResolvedQuestion)
				fmt.Printf("Scope: %s, emails retrieved: %d\n\n", result.ScopeUsed, result.EmailsRetrieved)
			}
			fmt.Println(result.Answer)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&showDetails, "details", "d", false, "show retrieval details")
	return cmd
}

func newFetchCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Fetch and persist today's emails",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(logger)
			if err != nil {
				return err
			}
			defer a.close()

			n, err := a.assistant.FetchToday(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Fetched %d emails\n", n)
			return nil
		},
	}
}

func newIndexCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Rebuild the retrieval index from today's emails",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(logger)
			if err != nil {
				return err
			}
			defer a.close()

			n, err := a.assistant.BuildIndex(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Indexed %d chunks\n", n)
			return nil
		},
	}
}

func newSummarizeCmd(logger *slog.Logger) *cobra.Command {
	var bullets int

	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize today's emails",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(logger)
			if err != nil {
				return err
			}
			defer a.close()

			summary, err := a.assistant.Summarize(cmd.Context(), bullets)
			if err != nil {
				return err
			}
			fmt.Println(summary)
			return nil
		},
	}

	cmd.Flags().IntVarP(&bullets, "bullets", "b", 5, "number of summary bullets")
	return cmd
}

func newSenderCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "sender <name-or-address>",
		Short: "Check whether mail arrived today from a sender",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(logger)
			if err != nil {
				return err
			}
			defer a.close()

			query := strings.Join(args, " ")
			found, matches, err := a.assistant.CheckSender(cmd.Context(), query)
			if err != nil {
				return err
			}
			if !found {
				fmt.Printf("No emails from %q today\n", query)
				return nil
			}
			fmt.Printf("%d emails from %q today:\n", len(matches), query)
			for _, rec := range matches {
				fmt.Printf("  - %s: %s\n", rec.From, rec.Subject)
			}
			return nil
		},
	}
}

func newMemoryCmd(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Manage the conversation transcript",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Erase the conversation transcript",
		RunE: func(c *cobra.Command, args []string) error {
			a, err := buildApp(logger)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.assistant.ClearMemory(c.Context()); err != nil {
				return err
			}
			fmt.Println("Conversation memory cleared")
			return nil
		},
	})

	return cmd
}

func newSecretCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Work with encrypted credentials",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "encrypt <value>",
		Short: "Encrypt a credential with MAILSAGE_SECRET_KEY for use in env files",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			key, err := secrets.KeyFromString(getEnv("MAILSAGE_SECRET_KEY", ""))
			if err != nil {
				return fmt.Errorf("MAILSAGE_SECRET_KEY: %w", err)
			}
			enc, err := secrets.NewEncryptor(key)
			if err != nil {
				return err
			}
			blob, err := enc.EncryptString(args[0])
			if err != nil {
				return err
			}
			fmt.Println(blob)
			return nil
		},
	})

	return cmd
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(getEnv("LOG_LEVEL", "info")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
