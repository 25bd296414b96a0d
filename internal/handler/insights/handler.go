package insights

import (
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	insightsService "github.com/budgetly/budgetly/backend/internal/service/insights"
	"github.com/budgetly/budgetly/backend/pkg/utils"
)

// Handler AI 洞察接口的HTTP处理器
type Handler struct {
	svc      *insightsService.Service
	upgrader websocket.Upgrader

	pongWait   time.Duration
	pingPeriod time.Duration
}

// New 创建AI洞察处理器
func New(svc *insightsService.Service) *Handler {
	return &Handler{
		svc: svc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		pongWait:   60 * time.Second,
		pingPeriod: 54 * time.Second,
	}
}

// RegisterRoutes 注册AI洞察相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/generate", h.handleGenerate)
	r.Post("/reset-conversation", h.handleResetConversation)
	r.Post("/predict-budget", h.handlePredictBudget)
	r.Post("/suggest-savings", h.handleSuggestSavings)
	r.Post("/chat-finance", h.handleChatFinance)
	r.Get("/ws", h.handleWebSocket)
}

func (h *Handler) readFields(w http.ResponseWriter, r *http.Request) (utils.Fields, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, utils.MaxBodyBytes))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	f, err := utils.DecodeFields(body)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	return f, true
}

// handleGenerate 多轮对话
func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	f, ok := h.readFields(w, r)
	if !ok {
		return
	}

	userID, prompt, message := validateGenerate(f)
	if message != "" {
		utils.RespondError(w, http.StatusBadRequest, message)
		return
	}

	response, err := h.svc.Generate(r.Context(), userID, prompt)
	if err != nil {
		h.respondGenerationError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"response": response})
}

// handleResetConversation 清空对话历史
func (h *Handler) handleResetConversation(w http.ResponseWriter, r *http.Request) {
	f, ok := h.readFields(w, r)
	if !ok {
		return
	}

	if !f.Truthy("userId") {
		utils.RespondError(w, http.StatusBadRequest, "userId is required")
		return
	}

	h.svc.Reset(f.String("userId"))
	utils.RespondMessage(w, http.StatusOK, "Conversation reset successfully")
}

func (h *Handler) handlePredictBudget(w http.ResponseWriter, r *http.Request) {
	f, ok := h.readFields(w, r)
	if !ok {
		return
	}

	items, hasItems := utils.Entries(f["spendingHistory"])
	if !f.Truthy("userId") || !hasItems {
		utils.RespondError(w, http.StatusBadRequest, "UserId and spendingHistory are required.")
		return
	}

	history := make([]insightsService.SpendingEntry, len(items))
	for i, item := range items {
		history[i] = insightsService.SpendingEntry{
			Date:     item.String("date"),
			Category: item.String("category"),
			Amount:   item.String("amount"),
		}
	}

	response, err := h.svc.PredictBudget(r.Context(), history)
	if err != nil {
		h.respondGenerationError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"response": response})
}

func (h *Handler) handleSuggestSavings(w http.ResponseWriter, r *http.Request) {
	f, ok := h.readFields(w, r)
	if !ok {
		return
	}

	items, hasItems := utils.Entries(f["spendingData"])
	if !f.Truthy("userId") || !hasItems {
		utils.RespondError(w, http.StatusBadRequest, "UserId and spendingData are required.")
		return
	}

	data := make([]insightsService.SpendingEntry, len(items))
	for i, item := range items {
		data[i] = insightsService.SpendingEntry{
			Category: item.String("category"),
			Amount:   item.String("amount"),
		}
	}

	response, err := h.svc.SuggestSavings(r.Context(), data)
	if err != nil {
		h.respondGenerationError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"response": response})
}

func (h *Handler) handleChatFinance(w http.ResponseWriter, r *http.Request) {
	f, ok := h.readFields(w, r)
	if !ok {
		return
	}

	if !f.Truthy("userId") || !f.Truthy("question") {
		utils.RespondError(w, http.StatusBadRequest, "UserId and question are required.")
		return
	}

	response, err := h.svc.ChatFinance(r.Context(), f.String("question"))
	if err != nil {
		h.respondGenerationError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"response": response})
}

func (h *Handler) respondGenerationError(w http.ResponseWriter, err error) {
	if errors.Is(err, insightsService.ErrGeneratorUnavailable) {
		utils.RespondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	log.Printf("[insights] generation error: %v", err)
	utils.RespondError(w, http.StatusInternalServerError, err.Error())
}
