package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/lhyphendixon/sidekick-forge/internal/api/handlers"
	"github.com/lhyphendixon/sidekick-forge/internal/config"
	"github.com/lhyphendixon/sidekick-forge/internal/database"
	"github.com/lhyphendixon/sidekick-forge/internal/domain"
	"github.com/lhyphendixon/sidekick-forge/internal/jobs"
	"github.com/lhyphendixon/sidekick-forge/internal/livekit"
	"github.com/lhyphendixon/sidekick-forge/internal/providers"
	"github.com/lhyphendixon/sidekick-forge/internal/ratelimit"
	"github.com/lhyphendixon/sidekick-forge/internal/repository"
	"github.com/lhyphendixon/sidekick-forge/internal/resilience"
	"github.com/lhyphendixon/sidekick-forge/internal/server"
	"github.com/lhyphendixon/sidekick-forge/internal/service"
	"github.com/lhyphendixon/sidekick-forge/internal/storage"
	"github.com/lhyphendixon/sidekick-forge/internal/telemetry"
	"github.com/lhyphendixon/sidekick-forge/internal/worker"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the sidekick-forge API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Malformed provider keys abort startup rather than failing per request.
	if err := cfg.ValidateProviders(); err != nil {
		return err
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
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("connected to database")

	// Run migrations unless --no-migrate flag is set
	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	pools := database.NewPoolManager(pool)
	defer pools.Close()

	clientRepo := repository.NewClientRepository(pool)
	apiKeyRepo := repository.NewAPIKeyRepository(pool)
	embeddingJobRepo := repository.NewEmbeddingJobRepository(pool)
	resolver := repository.NewResolver(pools, clientRepo)

	uuidGen := &service.DefaultUUIDGenerator{}
	authSvc := service.NewAuthService(clientRepo, apiKeyRepo, uuidGen)

	if cfg.InitClientSlug != "" {
		if err := bootstrapInitialClient(ctx, cfg, clientRepo, authSvc); err != nil {
			return fmt.Errorf("failed to bootstrap initial client: %w", err)
		}
	}

	breakers := resilience.NewRegistry(resilience.Settings{
		FailureThreshold: cfg.BreakerFailureThreshold,
		SuccessThreshold: cfg.BreakerSuccessThreshold,
		OpenTimeout:      time.Duration(cfg.BreakerOpenTimeoutS) * time.Second,
	})

	registry := providers.NewRegistry(cfg, breakers)
	if err := registry.ValidateAll(ctx); err != nil {
		return fmt.Errorf("provider validation failed: %w", err)
	}

	var storageClient service.StorageClientInterface
	var fetcher service.ObjectTextFetcher
	if cfg.HasS3() {
		s3Config := storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		}
		s3Client, err := storage.NewS3Client(ctx, s3Config)
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
		storageClient = &s3StorageAdapter{client: s3Client}
		fetcher = s3Client
	}

	var embeddingWorker *jobs.Worker
	if cfg.HasOpenAI() {
		embeddingSvc := service.NewEmbeddingService(resolver, registry, fetcher)
		embeddingProcessor := jobs.NewEmbeddingWorker(embeddingJobRepo, embeddingSvc)
		embeddingWorker = jobs.NewWorker(embeddingProcessor, 10*time.Second)
		go embeddingWorker.Start(ctx)
		log.Println("embedding worker started")
	}

	var rooms service.RoomClient
	if cfg.HasLiveKit() {
		rooms = livekit.NewClient(cfg.LiveKitURL, cfg.LiveKitAPIKey, cfg.LiveKitAPISecret).WithBreakers(breakers)
	}
	workerManager := worker.NewManager(cfg.WorkerBinary)

	agentSvc := service.NewAgentService(resolver)
	documentSvc := service.NewDocumentService(resolver, storageClient, embeddingJobRepo)
	searchSvc := service.NewSearchService(resolver, registry)
	transcriptSvc := service.NewTranscriptService(resolver, embeddingJobRepo)
	triggerSvc := service.NewTriggerService(resolver, rooms, workerManager, cfg.LiveKitURL)
	previewSvc := service.NewPreviewService(resolver, registry, registry)

	limiter := ratelimit.NewLimiter(cfg.RateLimitRequests, time.Duration(cfg.RateLimitWindowS)*time.Second)

	routerCfg := server.RouterConfig{
		AuthValidator:     authSvc,
		RateLimiter:       limiter,
		ClientHandler:     handlers.NewClientHandler(authSvc),
		AgentHandler:      handlers.NewAgentHandler(agentSvc),
		TriggerHandler:    handlers.NewTriggerHandler(triggerSvc, previewSvc),
		DocumentHandler:   handlers.NewDocumentHandler(documentSvc),
		SearchHandler:     handlers.NewSearchHandler(searchSvc),
		TranscriptHandler: handlers.NewTranscriptHandler(transcriptSvc),
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

	if embeddingWorker != nil {
		embeddingWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	workerManager.StopAll(shutdownCtx)

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// s3StorageAdapter narrows the S3 client to the document service's view of
// object storage.
type s3StorageAdapter struct {
	client *storage.S3Client
}

func (a *s3StorageAdapter) GenerateUploadURL(ctx context.Context, key string, contentType string) (string, error) {
	return a.client.GenerateUploadURL(ctx, key, contentType)
}

func (a *s3StorageAdapter) GenerateDownloadURL(ctx context.Context, key string) (string, error) {
	return a.client.GenerateDownloadURL(ctx, key)
}

func (a *s3StorageAdapter) DeleteObject(ctx context.Context, key string) error {
	return a.client.DeleteObject(ctx, key)
}

func (a *s3StorageAdapter) HeadObject(ctx context.Context, key string) (*service.ObjectMetadata, error) {
	meta, err := a.client.HeadObject(ctx, key)
	if err != nil {
		return nil, err
	}
	return &service.ObjectMetadata{
		ContentLength: meta.ContentLength,
		ContentType:   meta.ContentType,
		ETag:          meta.ETag,
	}, nil
}

func bootstrapInitialClient(ctx context.Context, cfg *config.Config, clientRepo *repository.ClientRepository, authSvc *service.AuthService) error {
	client, err := clientRepo.GetBySlug(ctx, cfg.InitClientSlug)
	if err != nil && !errors.Is(err, domain.ErrClientNotFound) {
		return fmt.Errorf("failed to check existing client: %w", err)
	}

	if client == nil {
		client, err = authSvc.CreateClient(ctx, cfg.InitClientSlug, cfg.InitClientSlug, domain.HostingTierShared, "")
		if err != nil {
			return fmt.Errorf("failed to create client: %w", err)
		}
		log.Printf("bootstrap: created client '%s' (id: %s)", client.Slug, client.ID)
	} else {
		log.Printf("bootstrap: client '%s' already exists (id: %s)", client.Slug, client.ID)
	}

	if cfg.InitAPIKey != "" {
		if !service.IsValidAPIToken(cfg.InitAPIKey) {
			return fmt.Errorf("invalid FORGE_INIT_API_KEY format (expected 'sf_<64 hex chars>')")
		}

		if _, err := authSvc.ValidateAPIKey(ctx, cfg.InitAPIKey); err == nil {
			log.Printf("bootstrap: API key already exists")
			return nil
		}

		if err := authSvc.CreateAPIKeyWithToken(ctx, client.ID, "bootstrap", cfg.InitAPIKey); err != nil {
			return fmt.Errorf("failed to create API key: %w", err)
		}
		log.Printf("bootstrap: created API key")
	}

	return nil
}

func runMigrations(databaseURL string) error {
	// Create a sql.DB connection for golang-migrate
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if err == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
