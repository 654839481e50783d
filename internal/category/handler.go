package category

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/frahmantamala/catalog-connector/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	GetAllCategories() ([]CategoryResponse, error)
	CategoriesForAge(age int) ([]CategoryResponse, error)
	GetCategory(id string) (*CategoryResponse, error)
	Create(dto CreateCategoryDTO) (*Category, error)
	Update(id string, dto UpdateCategoryDTO) (*Category, error)
	Delete(id string) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request) {
	var (
		categories []CategoryResponse
		err        error
	)

	if ageStr := r.URL.Query().Get("age"); ageStr != "" {
		age, convErr := strconv.Atoi(ageStr)
		if convErr != nil {
			h.WriteError(w, http.StatusBadRequest, "age must be an integer")
			return
		}
		categories, err = h.Service.CategoriesForAge(age)
	} else {
		categories, err = h.Service.GetAllCategories()
	}

	if err != nil {
		h.Logger.Error("GetCategories: failed to get categories", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, CategoriesResponse{
		Categories: categories,
	})
}

func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	c, err := h.Service.GetCategory(id)
	if err != nil {
		h.Logger.Error("GetCategory: service error", "error", err, "id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var dto CreateCategoryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateCategory: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.Service.Create(dto)
	if err != nil {
		h.Logger.Error("CreateCategory: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, c.ToResponse())
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var dto UpdateCategoryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdateCategory: invalid request body", "error", err, "id", id)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.Service.Update(id, dto)
	if err != nil {
		h.Logger.Error("UpdateCategory: service error", "error", err, "id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, c.ToResponse())
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Service.Delete(id); err != nil {
		h.Logger.Error("DeleteCategory: service error", "error", err, "id", id)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
