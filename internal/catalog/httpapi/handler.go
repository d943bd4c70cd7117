package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dwikikusuma/storefront/internal/catalog/app"
	"github.com/dwikikusuma/storefront/pkg/httpx"
	"github.com/gorilla/mux"
)

type Handler struct {
	svc *app.Service
}

func NewHandler(svc *app.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/api/products", h.ListProducts).Methods(http.MethodGet)
	r.HandleFunc("/api/products/{id}", h.GetProduct).Methods(http.MethodGet)
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.svc.Products())
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		httpx.WriteJSONError(w, http.StatusBadRequest, "invalid_argument", "product id must be an integer")
		return
	}

	p, err := h.svc.GetProduct(r.Context(), id)
	if err != nil {
		status, code := mapErr(err)
		httpx.WriteJSONError(w, status, code, err.Error())
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func mapErr(err error) (int, string) {
	if errors.Is(err, app.ErrInvalidInput) {
		return http.StatusBadRequest, "invalid_argument"
	}
	if errors.Is(err, app.ErrNotFound) {
		return http.StatusNotFound, "not_found"
	}
	return http.StatusInternalServerError, "internal"
}
