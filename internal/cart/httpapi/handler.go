package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dwikikusuma/storefront/internal/cart/app"
	"github.com/dwikikusuma/storefront/internal/cart/domain"
	"github.com/dwikikusuma/storefront/pkg/httpx"
	"github.com/gorilla/mux"
)

const heartbeatInterval = 25 * time.Second

type Handler struct {
	svc *app.Service
	log *slog.Logger
}

func NewHandler(svc *app.Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/api/cart", h.GetCart).Methods(http.MethodGet)
	r.HandleFunc("/api/cart/items", h.AddItem).Methods(http.MethodPost)
	r.HandleFunc("/api/cart/items/{id}/increase", h.Increase).Methods(http.MethodPost)
	r.HandleFunc("/api/cart/items/{id}/decrease", h.Decrease).Methods(http.MethodPost)
	r.HandleFunc("/api/cart/events", h.Events).Methods(http.MethodGet)
}

type cartResponse struct {
	Items      []domain.CartItem `json:"items"`
	TotalItems int               `json:"totalItems"`
	Total      float64           `json:"total"`
}

func toResponse(c domain.Cart) cartResponse {
	items := c.Items
	if items == nil {
		items = []domain.CartItem{}
	}
	return cartResponse{Items: items, TotalItems: c.TotalItems(), Total: c.Total()}
}

type addItemRequest struct {
	ProductID int `json:"productId"`
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.svc.Cart(r.Context(), httpx.SessionIDFromContext(r.Context()))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toResponse(cart))
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10))
	if err := dec.Decode(&req); err != nil {
		httpx.WriteJSONError(w, http.StatusBadRequest, "invalid_argument", "body must be {\"productId\": <int>}")
		return
	}

	cart, err := h.svc.AddProduct(r.Context(), httpx.SessionIDFromContext(r.Context()), req.ProductID)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toResponse(cart))
}

func (h *Handler) Increase(w http.ResponseWriter, r *http.Request) {
	h.changeQuantity(w, r, h.svc.IncreaseQuantity)
}

func (h *Handler) Decrease(w http.ResponseWriter, r *http.Request) {
	h.changeQuantity(w, r, h.svc.DecreaseQuantity)
}

func (h *Handler) changeQuantity(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, sessionID string, productID int) (domain.Cart, error)) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		httpx.WriteJSONError(w, http.StatusBadRequest, "invalid_argument", "product id must be an integer")
		return
	}

	cart, err := op(r.Context(), httpx.SessionIDFromContext(r.Context()), id)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toResponse(cart))
}

// Events streams a "cart" event with the current snapshot and then one per
// published snapshot. A slow client only ever misses intermediate
// snapshots: the latest one always gets through.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	st, err := h.svc.Store(ctx, httpx.SessionIDFromContext(ctx))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	rc := http.NewResponseController(w)
	_ = rc.SetWriteDeadline(time.Time{})

	updates := make(chan domain.Cart, 1)
	unsubscribe := st.Subscribe(func(c domain.Cart) {
		select {
		case updates <- c:
		default:
			// replace the pending snapshot with the newer one
			select {
			case <-updates:
			default:
			}
			select {
			case updates <- c:
			default:
			}
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, rc, st.Cart()); err != nil {
		return
	}

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-updates:
			if err := writeEvent(w, rc, c); err != nil {
				h.log.Debug("cart event stream closed", slog.Any("err", err))
				return
			}
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, rc *http.ResponseController, c domain.Cart) error {
	b, err := json.Marshal(toResponse(c))
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: cart\ndata: %s\n\n", b); err != nil {
		return err
	}
	return rc.Flush()
}

func (h *Handler) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	status, code := mapErr(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("cart request failed",
			slog.String("path", r.URL.Path),
			slog.String("request_id", httpx.RequestIDFromContext(r.Context())),
			slog.Any("err", err),
		)
	}
	httpx.WriteJSONError(w, status, code, err.Error())
}

func mapErr(err error) (int, string) {
	if errors.Is(err, app.ErrInvalidInput) {
		return http.StatusBadRequest, "invalid_argument"
	}
	if errors.Is(err, app.ErrUnknownProduct) {
		return http.StatusNotFound, "not_found"
	}
	if errors.Is(err, app.ErrStorageUnavailable) {
		return http.StatusServiceUnavailable, "unavailable"
	}
	return http.StatusInternalServerError, "internal"
}
