package settings

import (
	"encoding/json"
	"net/http"

	"github.com/frahmantamala/catalog-connector/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	AsMap() (map[string]string, error)
	Get(key string) (*Setting, error)
	Set(key, value string) (*Setting, error)
	Delete(key string) error
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

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	m, err := h.Service.AsMap()
	if err != nil {
		h.Logger.Error("GetSettings: failed to get settings", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, m)
}

func (h *Handler) GetSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	st, err := h.Service.Get(key)
	if err != nil {
		h.Logger.Error("GetSetting: service error", "error", err, "key", key)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, st.ToResponse())
}

func (h *Handler) PutSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var dto SetSettingDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("PutSetting: invalid request body", "error", err, "key", key)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	st, err := h.Service.Set(key, *dto.Value)
	if err != nil {
		h.Logger.Error("PutSetting: service error", "error", err, "key", key)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, st.ToResponse())
}

func (h *Handler) DeleteSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	if err := h.Service.Delete(key); err != nil {
		h.Logger.Error("DeleteSetting: service error", "error", err, "key", key)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
