package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"

	"github.com/leycura/curabot/internal/api/handlers"
	"github.com/leycura/curabot/internal/config"
	"github.com/leycura/curabot/internal/embedding"
	"github.com/leycura/curabot/internal/llm"
	"github.com/leycura/curabot/internal/mailer"
	"github.com/leycura/curabot/internal/server"
	"github.com/leycura/curabot/internal/service"
	"github.com/leycura/curabot/internal/telemetry"
	"github.com/leycura/curabot/internal/vector"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the curabot API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")

	return cmd
}

// resolvePort picks the listen port: an explicitly passed --port wins over
// the environment, the flag default does not.
func resolvePort(envPort, flagPort string, flagSet bool) string {
	if flagSet {
		return flagPort
	}
	return envPort
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	cfg.Port = resolvePort(cfg.Port, portFlag, cmd.Flags().Changed("port"))

	// Every provider is optional. A missing one degrades the pipeline
	// instead of failing startup, mirroring how requests degrade at runtime.
	var embedder service.Embedder
	if cfg.HasEmbedding() {
		client, err := embedding.NewClient(embedding.Config{
			APIKey:     cfg.EmbeddingAPIKey,
			BaseURL:    cfg.EmbeddingBaseURL,
			Model:      openai.EmbeddingModel(cfg.EmbeddingModel),
			Dimensions: cfg.EmbeddingDimensions,
			MaxChars:   cfg.EmbeddingMaxChars,
		})
		if err != nil {
			return fmt.Errorf("failed to create embedding client: %w", err)
		}
		embedder = client
		log.Printf("embedding provider configured (model: %s)", cfg.EmbeddingModel)
	} else {
		log.Println("embedding provider not configured, fallback vectors will be used")
	}

	var searcher service.Searcher
	if cfg.HasVector() {
		switch cfg.VectorProvider {
		case "qdrant":
			store, err := vector.NewQdrantStore(cfg.VectorHost, cfg.VectorNamespace)
			if err != nil {
				return fmt.Errorf("failed to connect to qdrant: %w", err)
			}
			defer store.Close()
			searcher = store
			log.Printf("vector index configured (qdrant, collection: %s)", cfg.VectorNamespace)
		default:
			searcher = vector.NewPineconeClient(vector.PineconeConfig{
				Host:      cfg.VectorHost,
				APIKey:    cfg.VectorAPIKey,
				Namespace: cfg.VectorNamespace,
			})
			log.Printf("vector index configured (pinecone, namespace: %s)", cfg.VectorNamespace)
		}
	} else {
		log.Println("vector index not configured, answers will be ungrounded")
	}

	var generator service.Generator
	if cfg.HasChat() {
		client, err := llm.NewClient(llm.Config{
			Provider:    cfg.ChatProvider,
			Model:       cfg.ChatModel,
			APIKey:      cfg.ChatAPIKey,
			BaseURL:     cfg.ChatBaseURL,
			Temperature: cfg.ChatTemperature,
			MaxTokens:   cfg.ChatMaxTokens,
			Referer:     cfg.ChatReferer,
			Title:       cfg.ChatTitle,
		})
		if err != nil {
			return fmt.Errorf("failed to create chat client: %w", err)
		}
		generator = client
		log.Printf("chat provider configured (%s, model: %s)", cfg.ChatProvider, cfg.ChatModel)
	} else {
		log.Println("chat provider not configured, requests will receive the apology answer")
	}

	chatCfg := service.ChatConfig{
		TopK:            cfg.VectorTopK,
		MinScore:        cfg.VectorMinScore,
		MaxContextChars: cfg.ContextMaxChars,
		JSONContract:    cfg.JSONContract,
	}
	if cfg.ScriptedAnswers {
		chatCfg.ScriptedAnswers = service.DefaultScriptedAnswers()
	}
	chatSvc := service.NewChatService(embedder, searcher, generator, chatCfg)

	var formsMailer handlers.Mailer
	if cfg.HasBrevo() {
		formsMailer = mailer.NewClient(mailer.Config{
			BaseURL:        cfg.BrevoBaseURL,
			APIKey:         cfg.BrevoAPIKey,
			SenderEmail:    cfg.ContactRecipient,
			SenderName:     cfg.ContactName,
			RecipientEmail: cfg.ContactRecipient,
			RecipientName:  cfg.ContactName,
		})
		log.Println("email provider configured")
	} else {
		log.Println("email provider not configured, form submissions will fail")
	}

	routerCfg := server.RouterConfig{
		ChatHandler: handlers.NewChatHandler(chatSvc),
		FormsHandler: handlers.NewFormsHandler(formsMailer, handlers.FormsConfig{
			NewsletterListID: int64(cfg.NewsletterListID),
			SumateListID:     int64(cfg.SumateListID),
		}),
	}

	router := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}
