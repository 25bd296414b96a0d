package users

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/budgetly/budgetly/backend/internal/model/finance"
	"github.com/budgetly/budgetly/backend/internal/service/account"
	"github.com/budgetly/budgetly/backend/pkg/utils"
)

const maxUploadMemory = 32 << 20

// Handler 用户相关接口
type Handler struct {
	accounts *account.Service
}

func New(accounts *account.Service) *Handler {
	return &Handler{accounts: accounts}
}

// RegisterRoutes 注册用户路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.Post("/login", h.handleLogin)
	r.Get("/user/{userId}", h.handleGetUser)
	r.Put("/user/{userId}", h.handleUpdateUser)
	r.Delete("/user/{userId}", h.handleDeleteUser)
	r.Get("/", h.handleListUsers)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	f, form, err := utils.ParseFields(w, r, maxUploadMemory)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !f.Truthy("displayName") || !f.Truthy("email") || !f.Truthy("password") {
		utils.RespondError(w, http.StatusBadRequest, "Email, displayName, dan password wajib diisi.")
		return
	}

	reg := account.Registration{
		DisplayName: f.String("displayName"),
		Email:       f.String("email"),
		Password:    f.String("password"),
	}

	if form != nil && len(form.File["profilePic"]) > 0 {
		header := form.File["profilePic"][0]
		file, err := header.Open()
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		defer file.Close()
		reg.ProfilePic = &finance.Upload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Body:        file,
		}
	}

	user, err := h.accounts.Register(reg)
	if errors.Is(err, account.ErrEmailTaken) {
		utils.RespondError(w, http.StatusBadRequest, "Email sudah digunakan.")
		return
	}
	if err != nil {
		log.Printf("[users] register failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]string{
		"message":    "Registrasi berhasil!",
		"userId":     user.ID,
		"profilePic": user.ProfilePic,
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	f, _, err := utils.ParseFields(w, r, maxUploadMemory)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !f.Truthy("email") || !f.Truthy("password") {
		utils.RespondError(w, http.StatusBadRequest, "Email dan password wajib diisi.")
		return
	}

	user, err := h.accounts.Login(f.String("email"), f.String("password"))
	switch {
	case errors.Is(err, account.ErrUserNotFound):
		utils.RespondError(w, http.StatusNotFound, "Pengguna tidak ditemukan.")
		return
	case errors.Is(err, account.ErrWrongPassword):
		utils.RespondError(w, http.StatusUnauthorized, "Password salah.")
		return
	case err != nil:
		log.Printf("[users] login failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"message":     "Login berhasil!",
		"displayName": user.DisplayName,
		"userId":      user.ID,
		"email":       user.Email,
		"profilePic":  user.ProfilePic,
	})
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.accounts.Get(chi.URLParam(r, "userId"))
	if errors.Is(err, account.ErrUserNotFound) {
		utils.RespondError(w, http.StatusNotFound, "Pengguna tidak ditemukan.")
		return
	}
	if err != nil {
		log.Printf("[users] get user failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, user)
}

func (h *Handler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	f, _, err := utils.ParseFields(w, r, maxUploadMemory)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !f.Truthy("displayName") || !f.Truthy("email") {
		utils.RespondError(w, http.StatusBadRequest, "User ID, displayName, dan email wajib diisi.")
		return
	}

	err = h.accounts.Update(chi.URLParam(r, "userId"), f.String("displayName"), f.String("email"))
	if errors.Is(err, account.ErrUserNotFound) {
		utils.RespondError(w, http.StatusNotFound, "Pengguna tidak ditemukan.")
		return
	}
	if err != nil {
		log.Printf("[users] update user failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.RespondMessage(w, http.StatusOK, "Data pengguna berhasil diupdate.")
}

func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.Delete(chi.URLParam(r, "userId")); err != nil {
		log.Printf("[users] delete user failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.RespondMessage(w, http.StatusOK, "Data pengguna berhasil dihapus.")
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.accounts.List()
	if err != nil {
		log.Printf("[users] list users failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, users)
}
