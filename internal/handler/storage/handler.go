package storage

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/budgetly/budgetly/backend/internal/storage"
	"github.com/budgetly/budgetly/backend/pkg/utils"
)

const maxUploadMemory = 32 << 20

// Handler 文件上传与签名下载
type Handler struct {
	bucket *storage.Bucket
	ttl    time.Duration
	now    func() time.Time
}

func New(bucket *storage.Bucket, ttl time.Duration) *Handler {
	return &Handler{bucket: bucket, ttl: ttl, now: time.Now}
}

// UploadRoutes 注册 POST /upload
func (h *Handler) UploadRoutes(r chi.Router) {
	r.Post("/upload", h.handleUpload)
}

// ObjectRoutes 注册签名对象下载路由，需挂载在 /api 下
func (h *Handler) ObjectRoutes(r chi.Router) {
	r.Get(strings.TrimPrefix(storage.ObjectsPath, "/api"), h.handleDownload)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	f, form, err := utils.ParseFields(w, r, maxUploadMemory)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if form == nil || len(form.File["file"]) == 0 || !f.Truthy("userId") {
		utils.RespondError(w, http.StatusBadRequest, "File dan userId wajib diisi.")
		return
	}

	header := form.File["file"][0]
	file, err := header.Open()
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	defer file.Close()

	name := fmt.Sprintf("profiles/%s/%d-%s", f.String("userId"), h.now().UnixMilli(), filepath.Base(header.Filename))
	if err := h.bucket.Save(r.Context(), name, file, header.Header.Get("Content-Type")); err != nil {
		log.Printf("[storage] upload failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	fileURL, err := h.bucket.SignedURL(r.Context(), name, h.ttl)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"message": "File berhasil diunggah!",
		"fileUrl": fileURL,
	})
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	name, err := h.bucket.Resolve(r.Context(), r.URL)
	if err != nil {
		utils.RespondError(w, http.StatusForbidden, err.Error())
		return
	}

	body, meta, err := h.bucket.Open(r.Context(), name)
	if errors.Is(err, storage.ErrObjectNotFound) || errors.Is(err, storage.ErrInvalidObjectName) {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		log.Printf("[storage] open %s failed: %v", name, err)
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", meta.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(meta.Size, 10))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		log.Printf("[storage] streaming %s failed: %v", name, err)
	}
}
