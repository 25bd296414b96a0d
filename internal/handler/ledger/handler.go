package ledger

import (
	"errors"
	"log"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/budgetly/budgetly/backend/internal/model/finance"
	ledgerService "github.com/budgetly/budgetly/backend/internal/service/ledger"
	"github.com/budgetly/budgetly/backend/pkg/utils"
)

const (
	maxUploadMemory = 32 << 20
	maxPhotos       = 10
	msgFieldsNeeded = "Field wajib diisi."
)

// Handler 交易、预算、储蓄接口
type Handler struct {
	ledger *ledgerService.Service
}

func New(ledger *ledgerService.Service) *Handler {
	return &Handler{ledger: ledger}
}

// TransactionRoutes 注册 /api/transactions 下的路由
func (h *Handler) TransactionRoutes(r chi.Router) {
	r.Post("/add", h.handleAddTransaction)
	r.Get("/{transactionId}", h.handleGetTransaction)
	r.Put("/{transactionId}", h.handleUpdateTransaction)
	r.Delete("/{transactionId}", h.handleDeleteTransaction)
	r.Get("/{transactionId}/photos", h.handlePhotos)
}

// BudgetRoutes 注册 /api/budgets 下的路由
func (h *Handler) BudgetRoutes(r chi.Router) {
	r.Post("/", h.handleAddBudget)
}

// SavingRoutes 注册 /api/savings 下的路由
func (h *Handler) SavingRoutes(r chi.Router) {
	r.Post("/", h.handleAddSaving)
}

func requireFields(f utils.Fields, keys ...string) bool {
	for _, key := range keys {
		if !f.Truthy(key) {
			return false
		}
	}
	return true
}

func transactionInput(f utils.Fields) ledgerService.TransactionInput {
	return ledgerService.TransactionInput{
		UserID:      f.String("userId"),
		Type:        f.String("type"),
		Amount:      f.String("amount"),
		Category:    f.String("category"),
		Date:        f.String("date"),
		Description: f.Optional("description"),
		Currency:    f.String("currency"),
		Account:     f.String("account"),
		Note:        f.Optional("note"),
	}
}

// respondInputError reports amount and date errors; it returns false for any
// other error so the caller can answer with its own 500 message.
func respondInputError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, ledgerService.ErrInvalidAmount):
		utils.RespondError(w, http.StatusBadRequest, "Amount harus berupa angka valid.")
	case errors.Is(err, ledgerService.ErrInvalidDate):
		utils.RespondError(w, http.StatusBadRequest, "Tanggal tidak valid.")
	default:
		return false
	}
	return true
}

func (h *Handler) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	f, form, err := utils.ParseFields(w, r, maxUploadMemory)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !requireFields(f, "userId", "type", "amount", "category", "date", "currency", "account") {
		utils.RespondError(w, http.StatusBadRequest, msgFieldsNeeded)
		return
	}

	in := transactionInput(f)
	if form != nil {
		headers := form.File["photos"]
		if len(headers) > maxPhotos {
			utils.RespondError(w, http.StatusBadRequest, "Maksimal 10 foto.")
			return
		}
		photos, closeAll, err := openUploads(headers)
		defer closeAll()
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		in.Photos = photos
	}

	id, err := h.ledger.AddTransaction(r.Context(), in)
	if err != nil {
		if respondInputError(w, err) {
			return
		}
		log.Printf("[ledger] add transaction failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Gagal mencatat transaksi.")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]string{
		"message":       "Transaksi berhasil dicatat!",
		"transactionId": id,
	})
}

func openUploads(headers []*multipart.FileHeader) ([]finance.Upload, func(), error) {
	files := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}

	uploads := make([]finance.Upload, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			return nil, closeAll, err
		}
		files = append(files, file)
		uploads = append(uploads, finance.Upload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Body:        file,
		})
	}
	return uploads, closeAll, nil
}

func (h *Handler) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	f, _, err := utils.ParseFields(w, r, maxUploadMemory)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !requireFields(f, "type", "amount", "category", "date", "currency", "account") {
		utils.RespondError(w, http.StatusBadRequest, msgFieldsNeeded)
		return
	}

	err = h.ledger.UpdateTransaction(chi.URLParam(r, "transactionId"), transactionInput(f))
	if err != nil {
		if respondInputError(w, err) {
			return
		}
		if errors.Is(err, ledgerService.ErrTransactionNotFound) {
			utils.RespondError(w, http.StatusNotFound, "Transaksi tidak ditemukan.")
			return
		}
		log.Printf("[ledger] update transaction failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Gagal mengupdate transaksi.")
		return
	}
	utils.RespondMessage(w, http.StatusOK, "Transaksi berhasil diupdate.")
}

func (h *Handler) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.DeleteTransaction(chi.URLParam(r, "transactionId")); err != nil {
		log.Printf("[ledger] delete transaction failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Gagal menghapus transaksi.")
		return
	}
	utils.RespondMessage(w, http.StatusOK, "Transaksi berhasil dihapus.")
}

func (h *Handler) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := h.ledger.GetTransaction(chi.URLParam(r, "transactionId"))
	if errors.Is(err, ledgerService.ErrTransactionNotFound) {
		utils.RespondError(w, http.StatusNotFound, "Transaksi tidak ditemukan.")
		return
	}
	if err != nil {
		log.Printf("[ledger] get transaction failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Gagal mengambil data transaksi.")
		return
	}
	utils.RespondJSON(w, http.StatusOK, t)
}

func (h *Handler) handlePhotos(w http.ResponseWriter, r *http.Request) {
	urls, err := h.ledger.PhotoURLs(r.Context(), chi.URLParam(r, "transactionId"))
	if errors.Is(err, ledgerService.ErrTransactionNotFound) {
		utils.RespondError(w, http.StatusNotFound, "Transaksi tidak ditemukan.")
		return
	}
	if err != nil {
		log.Printf("[ledger] sign photos failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Gagal mendapatkan Signed URL foto.")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string][]string{"signedUrls": urls})
}

func (h *Handler) handleAddBudget(w http.ResponseWriter, r *http.Request) {
	f, _, err := utils.ParseFields(w, r, maxUploadMemory)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !requireFields(f, "userId", "category", "amount", "monthYear") {
		utils.RespondError(w, http.StatusBadRequest, msgFieldsNeeded)
		return
	}

	id, err := h.ledger.AddBudget(ledgerService.BudgetInput{
		UserID:    f.String("userId"),
		Category:  f.String("category"),
		Amount:    f["amount"],
		MonthYear: f.String("monthYear"),
	})
	if err != nil {
		log.Printf("[ledger] add budget failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Gagal menambahkan anggaran.")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]string{
		"message":  "Anggaran berhasil ditambahkan!",
		"budgetId": id,
	})
}

func (h *Handler) handleAddSaving(w http.ResponseWriter, r *http.Request) {
	f, _, err := utils.ParseFields(w, r, maxUploadMemory)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !requireFields(f, "userId", "goal", "targetAmount", "deadline") {
		utils.RespondError(w, http.StatusBadRequest, msgFieldsNeeded)
		return
	}

	in := ledgerService.SavingInput{
		UserID:       f.String("userId"),
		Goal:         f.String("goal"),
		TargetAmount: f["targetAmount"],
		Deadline:     f.String("deadline"),
	}
	if f.Truthy("currentAmount") {
		in.CurrentAmount = f["currentAmount"]
	}

	id, err := h.ledger.AddSaving(in)
	if err != nil {
		if respondInputError(w, err) {
			return
		}
		log.Printf("[ledger] add saving failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Gagal menambahkan tabungan.")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]string{
		"message":  "Tabungan berhasil ditambahkan!",
		"savingId": id,
	})
}
