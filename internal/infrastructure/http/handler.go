package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	appOrder "github.com/paylab/orderpay/internal/application/order"
	domainOrder "github.com/paylab/orderpay/internal/domain/order"
)

type Handler struct {
	createOrder *appOrder.CreateOrderUseCase
	payOrder    *appOrder.PayOrderUseCase
}

func NewHandler(createOrder *appOrder.CreateOrderUseCase, payOrder *appOrder.PayOrderUseCase) *Handler {
	return &Handler{
		createOrder: createOrder,
		payOrder:    payOrder,
	}
}

func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/order", h.method(http.MethodPost, h.handleCreateOrder))
	mux.HandleFunc("/order/pay", h.method(http.MethodPost, h.handlePayOrder))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return mux
}

type orderLineRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Currency  string `json:"currency,omitempty"`
}

type createOrderRequest struct {
	CustomerID string             `json:"customer_id"`
	Lines      []orderLineRequest `json:"lines"`
}

type createOrderResponse struct {
	OrderID string             `json:"order_id"`
	Status  domainOrder.Status `json:"status"`
	Total   string             `json:"total"`
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	lines := make([]appOrder.OrderLineInput, 0, len(req.Lines))
	for _, line := range req.Lines {
		price, err := domainOrder.MoneyFromString(line.UnitPrice, line.Currency)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		lines = append(lines, appOrder.OrderLineInput{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: price,
		})
	}

	result, err := h.createOrder.Execute(r.Context(), appOrder.CreateOrderInput{
		CustomerID: req.CustomerID,
		Lines:      lines,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, createOrderResponse{
		OrderID: result.OrderID,
		Status:  result.Status,
		Total:   result.Total.String(),
	})
}

type payOrderRequest struct {
	OrderID string `json:"order_id"`
}

type payOrderResponse struct {
	Success       bool   `json:"success"`
	OrderID       string `json:"order_id"`
	TransactionID string `json:"transaction_id,omitempty"`
	ErrorMessage  string `json:"error_message,omitempty"`
}

func (h *Handler) handlePayOrder(w http.ResponseWriter, r *http.Request) {
	var req payOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result := h.payOrder.Execute(r.Context(), appOrder.PayOrderCommand{OrderID: req.OrderID})

	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, payOrderResponse{
		Success:       result.Success,
		OrderID:       result.OrderID,
		TransactionID: result.TransactionID,
		ErrorMessage:  result.ErrorMessage,
	})
}

func (h *Handler) method(method string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
			return
		}
		handler(w, r)
	}
}

func decodeJSON(r *http.Request, dst any) error {
	defer func() { _ = r.Body.Close() }()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appOrder.ErrValidation):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, domainOrder.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}
