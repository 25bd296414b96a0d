package handler

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	currencyHandler "github.com/budgetly/budgetly/backend/internal/handler/currency"
	insightsHandler "github.com/budgetly/budgetly/backend/internal/handler/insights"
	ledgerHandler "github.com/budgetly/budgetly/backend/internal/handler/ledger"
	storageHandler "github.com/budgetly/budgetly/backend/internal/handler/storage"
	usersHandler "github.com/budgetly/budgetly/backend/internal/handler/users"
	"github.com/budgetly/budgetly/backend/internal/metrics"
	middlewarePkg "github.com/budgetly/budgetly/backend/internal/middleware"
	"github.com/budgetly/budgetly/backend/internal/service/account"
	insightsService "github.com/budgetly/budgetly/backend/internal/service/insights"
	ledgerService "github.com/budgetly/budgetly/backend/internal/service/ledger"
	"github.com/budgetly/budgetly/backend/internal/storage"
	"github.com/budgetly/budgetly/backend/pkg/utils"
)

// Dependencies 路由所需的服务集合
type Dependencies struct {
	Insights *insightsService.Service
	Accounts *account.Service
	Ledger   *ledgerService.Service

	Rates            currencyHandler.RateSource
	CurrencyDefaults string

	Bucket       *storage.Bucket
	SignedURLTTL time.Duration
	UploadsDir   string

	Metrics   *metrics.Collector
	RateLimit func(http.Handler) http.Handler
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)
	r.Use(middlewarePkg.SecureHeaders)
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"ai":     deps.Insights.Available(),
		})
	})

	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(filesOnly{http.Dir(deps.UploadsDir)})))

	insights := insightsHandler.New(deps.Insights)
	users := usersHandler.New(deps.Accounts)
	ledger := ledgerHandler.New(deps.Ledger)
	currency := currencyHandler.New(deps.Rates, deps.CurrencyDefaults)
	objects := storageHandler.New(deps.Bucket, deps.SignedURLTTL)

	r.Route("/api", func(api chi.Router) {
		api.Route("/users", users.RegisterRoutes)
		api.Route("/transactions", func(tr chi.Router) {
			tr.Get("/currency", currency.Latest)
			ledger.TransactionRoutes(tr)
		})
		api.Route("/budgets", ledger.BudgetRoutes)
		api.Route("/savings", ledger.SavingRoutes)
		api.Route("/currency", currency.RegisterRoutes)
		api.Route("/ai", func(ai chi.Router) {
			if deps.RateLimit != nil {
				ai.Use(deps.RateLimit)
			}
			insights.RegisterRoutes(ai)
		})
		objects.UploadRoutes(api)
		objects.ObjectRoutes(api)
	})

	return r
}

// filesOnly hides directories so the file server never renders a listing.
type filesOnly struct {
	http.FileSystem
}

func (fs filesOnly) Open(name string) (http.File, error) {
	f, err := fs.FileSystem.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}
