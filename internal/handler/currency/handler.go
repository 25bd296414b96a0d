package currency

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	currencyService "github.com/budgetly/budgetly/backend/internal/service/currency"
	"github.com/budgetly/budgetly/backend/pkg/utils"
)

// RateSource returns exchange rates for a comma separated currency list.
type RateSource interface {
	Latest(ctx context.Context, currencies string) ([]currencyService.Rate, error)
}

// Handler 汇率接口
type Handler struct {
	rates    RateSource
	defaults string
}

func New(rates RateSource, defaults string) *Handler {
	return &Handler{rates: rates, defaults: defaults}
}

// RegisterRoutes 注册 /api/currency 路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Latest)
}

// Latest answers with the latest rates; ?currencies= overrides the default list.
func (h *Handler) Latest(w http.ResponseWriter, r *http.Request) {
	currencies := r.URL.Query().Get("currencies")
	if currencies == "" {
		currencies = h.defaults
	}

	rates, err := h.rates.Latest(r.Context(), currencies)
	if errors.Is(err, currencyService.ErrMissingAPIKey) {
		utils.RespondError(w, http.StatusInternalServerError, "API Key tidak ditemukan.")
		return
	}
	if err != nil {
		log.Printf("[currency] fetch failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Gagal mengambil data mata uang.")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string][]currencyService.Rate{"currencies": rates})
}
