package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mgiraldo/storefront/internal/core/domain"
	"github.com/mgiraldo/storefront/internal/core/service"
)

type HTTPHandler struct {
	catalog  *service.CatalogService
	carts    *service.CartService
	coupons  *service.CouponService
	checkout *service.CheckoutService
	orders   *service.OrderService
}

func NewHTTPHandler(
	catalog *service.CatalogService,
	carts *service.CartService,
	coupons *service.CouponService,
	checkout *service.CheckoutService,
	orders *service.OrderService,
) *HTTPHandler {
	return &HTTPHandler{
		catalog:  catalog,
		carts:    carts,
		coupons:  coupons,
		checkout: checkout,
		orders:   orders,
	}
}

// Register wires every route onto the mux.
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.HealthCheck)

	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("GET /api/products/{id}", h.GetProduct)

	mux.HandleFunc("GET /api/cart", h.GetCart)
	mux.HandleFunc("POST /api/cart/items", h.AddCartItem)
	mux.HandleFunc("PUT /api/cart/items", h.UpdateCartItem)
	mux.HandleFunc("DELETE /api/cart/items", h.RemoveCartItem)
	mux.HandleFunc("DELETE /api/cart", h.ClearCart)

	mux.HandleFunc("POST /api/coupons/validate", h.ValidateCoupon)
	mux.HandleFunc("POST /api/checkout", h.Checkout)
	mux.HandleFunc("GET /api/orders/{id}", h.GetOrder)
	mux.HandleFunc("POST /api/orders/confirm", h.ConfirmOrder)
	mux.HandleFunc("POST /api/orders/status", h.UpdateOrderStatus)

	mux.HandleFunc("GET /api/admin/coupons", h.ListCoupons)
	mux.HandleFunc("POST /api/admin/coupons", h.CreateCoupon)
	mux.HandleFunc("PUT /api/admin/coupons/{id}", h.UpdateCoupon)
	mux.HandleFunc("POST /api/admin/coupons/{id}/active", h.SetCouponActive)
	mux.HandleFunc("DELETE /api/admin/coupons/{id}", h.DeleteCoupon)
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ---- catalog ----

func (h *HTTPHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *HTTPHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// ---- cart ----

type cartResponse struct {
	Lines   []domain.CartLine `json:"lines"`
	Visible bool              `json:"visible"`
	Total   decimal.Decimal   `json:"total"`
}

func newCartResponse(cart *domain.Cart) cartResponse {
	lines := cart.Lines
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return cartResponse{Lines: lines, Visible: cart.Visible, Total: cart.Total()}
}

func sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.Header.Get("X-Session-ID")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "missing X-Session-ID header"})
		return "", false
	}
	return id, true
}

func (h *HTTPHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionID(w, r)
	if !ok {
		return
	}
	cart, err := h.carts.Get(r.Context(), session)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(cart))
}

type cartItemRequest struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

func (h *HTTPHandler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionID(w, r)
	if !ok {
		return
	}

	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	cart, added, err := h.carts.AddItem(r.Context(), session, req.ProductID, req.Size, req.Quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !added {
		writeJSON(w, http.StatusConflict, errorResponse{Message: "requested quantity exceeds available stock"})
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(cart))
}

func (h *HTTPHandler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionID(w, r)
	if !ok {
		return
	}

	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}

	cart, err := h.carts.UpdateQuantity(r.Context(), session, req.ProductID, req.Quantity, req.Size)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(cart))
}

func (h *HTTPHandler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionID(w, r)
	if !ok {
		return
	}

	productID := r.URL.Query().Get("product_id")
	if productID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "missing product_id"})
		return
	}

	cart, err := h.carts.RemoveItem(r.Context(), session, productID, r.URL.Query().Get("size"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(cart))
}

func (h *HTTPHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionID(w, r)
	if !ok {
		return
	}
	cart, err := h.carts.Clear(r.Context(), session)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(cart))
}

// ---- coupons ----

type validateCouponRequest struct {
	Code      string          `json:"code"`
	CartTotal decimal.Decimal `json:"cart_total"`
}

func (h *HTTPHandler) ValidateCoupon(w http.ResponseWriter, r *http.Request) {
	var req validateCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}

	redemption, err := h.coupons.Validate(r.Context(), req.Code, req.CartTotal)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, redemption)
}

// ---- checkout / orders ----

type checkoutRequest struct {
	OrderRef        string                 `json:"order_ref"`
	Items           []service.CheckoutItem `json:"items"`
	CustomerName    string                 `json:"customer_name"`
	CustomerEmail   string                 `json:"customer_email"`
	CustomerPhone   string                 `json:"customer_phone"`
	ShippingAddress string                 `json:"shipping_address"`
	Language        string                 `json:"language"`
	CouponCode      string                 `json:"coupon_code"`
}

type checkoutResponse struct {
	OrderID     string          `json:"order_id"`
	RedirectURL string          `json:"redirect_url"`
	Total       decimal.Decimal `json:"total"`
	Discount    decimal.Decimal `json:"discount"`
}

func (h *HTTPHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}
	for _, item := range req.Items {
		if item.ProductID == "" || item.Quantity <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Message: "missing required fields"})
			return
		}
	}

	result, err := h.checkout.Checkout(r.Context(), service.CheckoutRequest{
		OrderRef:        req.OrderRef,
		Items:           req.Items,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		ShippingAddress: req.ShippingAddress,
		Language:        req.Language,
		CouponCode:      req.CouponCode,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, checkoutResponse{
		OrderID:     result.OrderID,
		RedirectURL: result.RedirectURL,
		Total:       result.Total,
		Discount:    result.Discount,
	})
}

func (h *HTTPHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.GetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

type confirmOrderRequest struct {
	OrderID string `json:"order_id"`
}

func (h *HTTPHandler) ConfirmOrder(w http.ResponseWriter, r *http.Request) {
	var req confirmOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OrderID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}

	if err := h.orders.ConfirmPayment(r.Context(), req.OrderID); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Success: true})
}

type updateStatusRequest struct {
	OrderID        string `json:"order_id"`
	Status         string `json:"status"`
	Carrier        string `json:"carrier"`
	TrackingNumber string `json:"tracking_number"`
}

type statusResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// UpdateOrderStatus is the staff endpoint: a success flag on the happy path,
// a human-readable reason otherwise.
func (h *HTTPHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OrderID == "" || req.Status == "" {
		writeJSON(w, http.StatusBadRequest, statusResponse{Error: "invalid request body"})
		return
	}

	err := h.orders.UpdateStatus(r.Context(), bearerToken(r), req.OrderID,
		domain.OrderStatus(req.Status), req.Carrier, req.TrackingNumber)
	if err != nil {
		status, message := mapError(err)
		writeJSON(w, status, statusResponse{Success: false, Error: message})
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Success: true})
}

// ---- staff coupon management ----

func (h *HTTPHandler) ListCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.coupons.List(r.Context(), bearerToken(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if coupons == nil {
		coupons = []domain.Coupon{}
	}
	writeJSON(w, http.StatusOK, coupons)
}

func (h *HTTPHandler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	var c domain.Coupon
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}
	if err := h.coupons.Create(r.Context(), bearerToken(r), &c); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *HTTPHandler) UpdateCoupon(w http.ResponseWriter, r *http.Request) {
	var c domain.Coupon
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}
	c.ID = r.PathValue("id")
	if err := h.coupons.Update(r.Context(), bearerToken(r), &c); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

func (h *HTTPHandler) SetCouponActive(w http.ResponseWriter, r *http.Request) {
	var req setActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}
	if err := h.coupons.SetActive(r.Context(), bearerToken(r), r.PathValue("id"), req.Active); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Success: true})
}

func (h *HTTPHandler) DeleteCoupon(w http.ResponseWriter, r *http.Request) {
	if err := h.coupons.Delete(r.Context(), bearerToken(r), r.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Success: true})
}

// ---- plumbing ----

type errorResponse struct {
	Message     string `json:"message"`
	Reason      string `json:"reason,omitempty"`
	ProductID   string `json:"product_id,omitempty"`
	Size        string `json:"size,omitempty"`
	Available   *int   `json:"available,omitempty"`
	MinPurchase string `json:"min_purchase,omitempty"`
}

func bearerToken(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	var stockErr *domain.StockError
	if errors.As(err, &stockErr) {
		available := stockErr.Available
		writeJSON(w, http.StatusConflict, errorResponse{
			Message:   "insufficient stock",
			ProductID: stockErr.ProductID,
			Size:      stockErr.Size,
			Available: &available,
		})
		return
	}

	var rejection *domain.CouponRejection
	if errors.As(err, &rejection) {
		resp := errorResponse{Message: "coupon rejected", Reason: string(rejection.Reason)}
		if rejection.Reason == domain.RejectMinPurchase {
			resp.MinPurchase = rejection.MinPurchase.String()
		}
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}

	status, message := mapError(err)
	writeJSON(w, status, errorResponse{Message: message})
}

// mapError converts core errors to an HTTP status and a non-leaking message.
func mapError(err error) (int, string) {
	var (
		transErr  *domain.TransitionError
		stockErr  *domain.StockError
		rejection *domain.CouponRejection
	)
	switch {
	case errors.As(err, &transErr):
		return http.StatusConflict, transErr.Error()
	case errors.As(err, &stockErr):
		return http.StatusConflict, stockErr.Error()
	case errors.As(err, &rejection):
		return http.StatusUnprocessableEntity, rejection.Error()
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, service.ErrOrderNotFound):
		return http.StatusNotFound, "order not found"
	case errors.Is(err, service.ErrProductNotFound):
		return http.StatusNotFound, "product not found"
	case errors.Is(err, service.ErrDuplicateRequest):
		return http.StatusConflict, "duplicate request"
	case errors.Is(err, service.ErrEmptyCart):
		return http.StatusBadRequest, "no items in cart"
	case errors.Is(err, service.ErrInvalidCoupon):
		return http.StatusBadRequest, "invalid coupon definition"
	case errors.Is(err, service.ErrPaymentUnavailable):
		return http.StatusBadGateway, "payment initialization failed"
	default:
		log.Printf("internal error: %v", err)
		return http.StatusInternalServerError, "internal error"
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
