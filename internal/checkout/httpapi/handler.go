package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	"github.com/dwikikusuma/storefront/internal/checkout/app"
	"github.com/dwikikusuma/storefront/internal/checkout/domain"
	"github.com/dwikikusuma/storefront/pkg/httpx"
	"github.com/gorilla/mux"
)

type Handler struct {
	svc *app.Service
	log *slog.Logger
}

func NewHandler(svc *app.Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/api/checkout", h.Quote).Methods(http.MethodPost)
}

type money struct {
	Currency string `json:"currency"`
	Amount   string `json:"amount"`
}

type quoteLine struct {
	ProductID int    `json:"productId"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice money  `json:"unitPrice"`
	LineTotal money  `json:"lineTotal"`
}

type quoteResponse struct {
	Lines      []quoteLine `json:"lines"`
	TotalItems int         `json:"totalItems"`
	Total      money       `json:"total"`
}

func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	q, err := h.svc.Quote(r.Context(), httpx.SessionIDFromContext(r.Context()))
	if err != nil {
		status, code := mapErr(err)
		if status >= http.StatusInternalServerError {
			h.log.Error("checkout quote failed",
				slog.String("request_id", httpx.RequestIDFromContext(r.Context())),
				slog.Any("err", err),
			)
		}
		httpx.WriteJSONError(w, status, code, err.Error())
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toResponse(q))
}

func toMoney(m domain.Money) money {
	return money{Currency: m.Currency, Amount: m.Amount.StringFixed(2)}
}

func toResponse(q domain.Quote) quoteResponse {
	lines := make([]quoteLine, 0, len(q.Lines))
	for _, ln := range q.Lines {
		lines = append(lines, quoteLine{
			ProductID: ln.ProductID,
			Name:      ln.Name,
			Quantity:  ln.Quantity,
			UnitPrice: toMoney(ln.UnitPrice),
			LineTotal: toMoney(ln.LineTotal),
		})
	}

	return quoteResponse{
		Lines:      lines,
		TotalItems: q.TotalItems,
		Total:      toMoney(q.Total),
	}
}

func mapErr(err error) (int, string) {
	switch {
	case errors.Is(err, app.ErrEmptyCart):
		return http.StatusConflict, "empty_cart"
	case errors.Is(err, app.ErrUnknownProduct):
		return http.StatusUnprocessableEntity, "unknown_product"
	case errors.Is(err, cartapp.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_argument"
	case errors.Is(err, cartapp.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
