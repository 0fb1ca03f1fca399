package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sweetshop/apiserver/internal/services"
	"github.com/sweetshop/apiserver/internal/storage"
	"github.com/sweetshop/apiserver/internal/store"
	"github.com/sweetshop/apiserver/types"
)

const (
	maxImageMemory = 8 << 20
	maxImageBytes  = 8 << 20
	formFieldImage = "image"
)

// SweetHandler provides HTTP handlers for the sweets catalog and its
// stock operations.
type SweetHandler struct {
	sweetService     *services.SweetService
	inventoryService *services.InventoryService
	images           *storage.ImageStore
}

// NewSweetHandler constructs a handler with the provided services.
// images may be nil when no object storage is configured.
func NewSweetHandler(sweetService *services.SweetService, inventoryService *services.InventoryService, images *storage.ImageStore) *SweetHandler {
	return &SweetHandler{
		sweetService:     sweetService,
		inventoryService: inventoryService,
		images:           images,
	}
}

// SweetRouter registers sweet routes on the given router. Every route
// requires authentication; writes additionally require the admin role.
func SweetRouter(
	r chi.Router,
	sweetService *services.SweetService,
	inventoryService *services.InventoryService,
	images *storage.ImageStore,
	authMiddleware func(http.Handler) http.Handler,
) {
	handler := NewSweetHandler(sweetService, inventoryService, images)

	r.Use(authMiddleware)
	r.Get("/", handler.ListSweets)
	r.Get("/search", handler.SearchSweets)
	r.With(RequireAdmin).Post("/", handler.CreateSweet)
	r.Route("/{sweetID}", func(r chi.Router) {
		r.Get("/", handler.GetSweet)
		r.With(RequireAdmin).Put("/", handler.UpdateSweet)
		r.With(RequireAdmin).Delete("/", handler.DeleteSweet)
		r.Post("/purchase", handler.PurchaseSweet)
		r.With(RequireAdmin).Post("/restock", handler.RestockSweet)
		if images != nil {
			r.Get("/image", handler.GetImage)
			r.With(RequireAdmin).Put("/image", handler.UploadImage)
		}
	})
}

func (h *SweetHandler) ListSweets(w http.ResponseWriter, r *http.Request) {
	sweets, err := h.sweetService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list sweets")
		return
	}
	writeJSON(w, http.StatusOK, sweets)
}

func (h *SweetHandler) SearchSweets(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("query")
	sweets, err := h.sweetService.Search(r.Context(), term)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to search sweets")
		return
	}
	writeJSON(w, http.StatusOK, sweets)
}

func (h *SweetHandler) GetSweet(w http.ResponseWriter, r *http.Request) {
	id, err := parseSweetID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sweet, err := h.sweetService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "sweet not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch sweet")
		return
	}
	writeJSON(w, http.StatusOK, sweet)
}

func (h *SweetHandler) CreateSweet(w http.ResponseWriter, r *http.Request) {
	var req SweetCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	created, err := h.sweetService.Create(r.Context(), types.Sweet{
		Name:     req.Name,
		Category: req.Category,
		Price:    req.Price,
		Quantity: req.Quantity,
	})
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create sweet")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *SweetHandler) UpdateSweet(w http.ResponseWriter, r *http.Request) {
	id, err := parseSweetID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req SweetUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	updated, err := h.sweetService.Update(r.Context(), id, services.SweetPatch{
		Name:     req.Name,
		Category: req.Category,
		Price:    req.Price,
		Quantity: req.Quantity,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "sweet not found")
		case errors.Is(err, services.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to update sweet")
		}
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *SweetHandler) DeleteSweet(w http.ResponseWriter, r *http.Request) {
	id, err := parseSweetID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.sweetService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "sweet not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete sweet")
		return
	}

	if h.images != nil {
		_ = h.images.DeleteImage(r.Context(), id)
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "sweet deleted"})
}

func (h *SweetHandler) PurchaseSweet(w http.ResponseWriter, r *http.Request) {
	id, err := parseSweetID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sweet, err := h.inventoryService.Purchase(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "sweet not found")
		case errors.Is(err, store.ErrOutOfStock):
			writeError(w, http.StatusBadRequest, "out of stock")
		default:
			writeError(w, http.StatusInternalServerError, "failed to purchase sweet")
		}
		return
	}

	writeJSON(w, http.StatusOK, sweet)
}

func (h *SweetHandler) RestockSweet(w http.ResponseWriter, r *http.Request) {
	id, err := parseSweetID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req RestockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	sweet, err := h.inventoryService.Restock(r.Context(), id, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAmount):
			writeError(w, http.StatusBadRequest, "amount must be a positive integer")
		case errors.Is(err, store.ErrQuantityOverflow):
			writeError(w, http.StatusBadRequest, "restock amount too large")
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "sweet not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to restock sweet")
		}
		return
	}

	writeJSON(w, http.StatusOK, sweet)
}

// UploadImage stores or replaces the sweet's image in object storage.
func (h *SweetHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := parseSweetID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.sweetService.Get(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "sweet not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch sweet")
		return
	}

	if err := r.ParseMultipartForm(maxImageMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	files := r.MultipartForm.File[formFieldImage]
	if len(files) != 1 {
		writeError(w, http.StatusBadRequest, "exactly one image file is required")
		return
	}

	fileHeader := files[0]
	if fileHeader.Size > maxImageBytes {
		writeError(w, http.StatusBadRequest, "image too large")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read image")
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if err := h.images.PutImage(r.Context(), id, file, fileHeader.Size, contentType); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store image")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "image uploaded"})
}

// GetImage streams the sweet's image from object storage.
func (h *SweetHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, err := parseSweetID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	reader, err := h.images.GetImage(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "image not found")
		return
	}
	defer reader.Close()

	if _, err := io.Copy(w, reader); err != nil {
		// Response is already partially written; nothing sensible to send.
		return
	}
}

type SweetCreateRequest struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Quantity int64   `json:"quantity"`
}

type SweetUpdateRequest struct {
	Name     *string  `json:"name"`
	Category *string  `json:"category"`
	Price    *float64 `json:"price"`
	Quantity *int64   `json:"quantity"`
}

type RestockRequest struct {
	Amount int64 `json:"amount"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
