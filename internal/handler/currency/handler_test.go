package currency

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	currencyService "github.com/budgetly/budgetly/backend/internal/service/currency"
)

type stubRates struct {
	asked string
	rates []currencyService.Rate
	err   error
}

func (s *stubRates) Latest(_ context.Context, currencies string) ([]currencyService.Rate, error) {
	s.asked = currencies
	return s.rates, s.err
}

func serve(h *Handler, target string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, target, nil))
	return resp
}

func TestLatestUsesDefaults(t *testing.T) {
	rates := &stubRates{rates: []currencyService.Rate{{Currency: "IDR", Rate: 15600}}}
	resp := serve(New(rates, "EUR,USD,CAD,IDR"), "/")

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if rates.asked != "EUR,USD,CAD,IDR" {
		t.Fatalf("unexpected currencies %q", rates.asked)
	}
	var body map[string][]currencyService.Rate
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil || len(body["currencies"]) != 1 {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
}

func TestLatestQueryOverride(t *testing.T) {
	rates := &stubRates{}
	serve(New(rates, "EUR"), "/?currencies=JPY,SGD")

	if rates.asked != "JPY,SGD" {
		t.Fatalf("unexpected currencies %q", rates.asked)
	}
}

func TestLatestErrors(t *testing.T) {
	cases := map[error]string{
		currencyService.ErrMissingAPIKey: "API Key tidak ditemukan.",
		errors.New("boom"):               "Gagal mengambil data mata uang.",
	}
	for err, want := range cases {
		resp := serve(New(&stubRates{err: err}, "EUR"), "/")
		if resp.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", resp.Code)
		}
		var body map[string]string
		_ = json.Unmarshal(resp.Body.Bytes(), &body)
		if body["error"] != want {
			t.Fatalf("expected %q, got %q", want, body["error"])
		}
	}
}
