package main

import (
	"context"
	"crypto/rand"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/budgetly/budgetly/backend/internal/config"
	"github.com/budgetly/budgetly/backend/internal/handler"
	"github.com/budgetly/budgetly/backend/internal/metrics"
	"github.com/budgetly/budgetly/backend/internal/middleware"
	"github.com/budgetly/budgetly/backend/internal/service/account"
	"github.com/budgetly/budgetly/backend/internal/service/ai"
	"github.com/budgetly/budgetly/backend/internal/service/conversation"
	"github.com/budgetly/budgetly/backend/internal/service/currency"
	"github.com/budgetly/budgetly/backend/internal/service/insights"
	"github.com/budgetly/budgetly/backend/internal/service/ledger"
	"github.com/budgetly/budgetly/backend/internal/storage"
	"github.com/budgetly/budgetly/backend/internal/store"
)

const janitorInterval = time.Minute

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := store.NewBoltStore(cfg.Storage.DatabasePath())
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	secret := []byte(cfg.Storage.SigningSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			log.Fatalf("failed to generate signing secret: %v", err)
		}
		log.Println("warning: STORAGE_SIGNING_SECRET not set, signed URLs will not survive a restart")
	}
	bucket, err := storage.NewBucket(cfg.Storage.BucketDir, secret, cfg.Storage.PublicBaseURL)
	if err != nil {
		log.Fatalf("failed to open storage bucket: %v", err)
	}
	defer bucket.Close()

	collector := metrics.NewCollector()

	// Initialize text generation; the API keeps serving without it
	var generator ai.Generator
	if cfg.AI.Enabled() {
		g, err := ai.NewGenerator(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize %s generator: %v", cfg.AI.Provider, err)
			log.Println("continuing without AI functionality")
		} else {
			generator = ai.Instrument(g, collector)
			log.Printf("AI generator initialized: provider=%s model=%s", cfg.AI.Provider, cfg.AI.Model)
		}
	} else {
		log.Printf("%s credentials not configured, AI routes will answer 503", cfg.AI.Provider)
	}

	var insightOpts []insights.Option
	var locker *conversation.Locker
	if cfg.AI.SerializeExchanges {
		locker = conversation.NewLocker()
		insightOpts = append(insightOpts, insights.WithSerializedExchanges(locker))
	}
	conversations := conversation.NewStore(cfg.AI.MaxConversationLength)
	insightSvc := insights.NewService(generator, conversations, insightOpts...)

	if locker != nil {
		go runJanitor(ctx, locker)
	}

	router := handler.NewRouter(handler.Dependencies{
		Insights:         insightSvc,
		Accounts:         account.NewService(db, cfg.Storage.UploadsDir),
		Ledger:           ledger.NewService(db, db, db, bucket, cfg.Storage.SignedURLTTL),
		Rates:            currency.NewClient(cfg.Currency.APIKey, cfg.Currency.BaseURL, nil),
		CurrencyDefaults: cfg.Currency.DefaultCurrencies,
		Bucket:           bucket,
		SignedURLTTL:     cfg.Storage.SignedURLTTL,
		UploadsDir:       cfg.Storage.UploadsDir,
		Metrics:          collector,
		RateLimit:        middleware.RateLimit(cfg.RateLimit.Max, cfg.RateLimit.Window),
	})

	startServer(ctx, cfg.Server, router)
}

// runJanitor drops idle per-user conversation locks.
func runJanitor(ctx context.Context, locker *conversation.Locker) {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := locker.Cleanup(10 * time.Minute); n > 0 {
				log.Printf("[janitor] released %d idle conversation locks", n)
			}
		}
	}
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Budgetly backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
