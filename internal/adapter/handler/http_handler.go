package handler

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/rafaelpierri/andela-assessment/internal/config"
	"github.com/rafaelpierri/andela-assessment/internal/core/domain"
	"github.com/rafaelpierri/andela-assessment/internal/core/service"
	"github.com/rafaelpierri/andela-assessment/internal/port"
)

type HTTPHandler struct {
	cfg            config.Config
	productService *service.ProductService
	orderService   *service.OrderService
	logger         *zap.Logger
}

func NewHTTPHandler(cfg config.Config, products *service.ProductService, orders *service.OrderService, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{cfg: cfg, productService: products, orderService: orders, logger: logger}
}

// NewRouter registers routes and wraps them with request-id and logging
// middleware.
func NewRouter(h *HTTPHandler, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.HealthCheck)
	mux.HandleFunc("POST /api/products", h.CreateProduct)
	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("PATCH /api/products/{id}", h.RestockProduct)
	mux.HandleFunc("POST /api/orders", h.ProcessOrder)
	return WithRequestID(WithLogging(logger, mux))
}

type productData struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type productResponse struct {
	Data productData `json:"data"`
}

type productListResponse struct {
	Data []productData     `json:"data"`
	Meta domain.Pagination `json:"meta"`
}

type createProductRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
}

type restockRequest struct {
	Stock     *int       `json:"stock"`
	UpdatedAt *time.Time `json:"updatedAt"`
}

type orderRequest struct {
	Items []orderItemRequest `json:"items"`
}

type orderItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type orderResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type jsonError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (h *HTTPHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	if req.Name == "" || req.Category == "" || req.Price == nil || req.Stock == nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error",
			"name, category, price and stock are required")
		return
	}
	if *req.Price < 0 || !hasAtMostTwoDecimals(*req.Price) {
		writeJSONError(w, http.StatusBadRequest, "validation_error",
			"price must be >= 0 with at most 2 decimal places")
		return
	}
	if *req.Stock < 0 {
		writeJSONError(w, http.StatusBadRequest, "validation_error", "stock must be >= 0")
		return
	}

	created, err := h.productService.Create(r.Context(), &domain.Product{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       *req.Price,
		Stock:       *req.Stock,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, productResponse{Data: toProductData(created)})
}

func (h *HTTPHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query, ok := h.parseListQuery(w, r)
	if !ok {
		return
	}

	products, meta, err := h.productService.FindAll(r.Context(), query)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	data := make([]productData, 0, len(products))
	for _, product := range products {
		data = append(data, toProductData(product))
	}
	writeJSON(w, http.StatusOK, productListResponse{Data: data, Meta: meta})
}

func (h *HTTPHandler) RestockProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", "id must be an integer")
		return
	}

	var req restockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.Stock == nil || req.UpdatedAt == nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", "stock and updatedAt are required")
		return
	}
	if *req.Stock < 0 {
		writeJSONError(w, http.StatusBadRequest, "validation_error", "stock must be >= 0")
		return
	}

	product, err := h.productService.Restock(r.Context(), service.RestockInput{
		ID:        id,
		Stock:     *req.Stock,
		UpdatedAt: *req.UpdatedAt,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, productResponse{Data: toProductData(product)})
}

func (h *HTTPHandler) ProcessOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	items := make([]domain.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		if item.ProductID < 0 || item.Quantity < 0 {
			writeJSONError(w, http.StatusBadRequest, "validation_error",
				"productId and quantity must be >= 0")
			return
		}
		items = append(items, domain.OrderItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	if err := h.orderService.Process(r.Context(), items); err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, orderResponse{Success: true, Message: "order processed successfully"})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) parseListQuery(w http.ResponseWriter, r *http.Request) (port.ListQuery, bool) {
	q := r.URL.Query()
	query := port.ListQuery{
		Page:       1,
		PageSize:   h.cfg.DefaultPageSize,
		Order:      port.SortAsc,
		Category:   q.Get("category"),
		NamePrefix: q.Get("name"),
	}

	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			writeJSONError(w, http.StatusBadRequest, "validation_error", "page must be an integer >= 1")
			return port.ListQuery{}, false
		}
		query.Page = page
	}
	if v := q.Get("pageSize"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size < 1 || size > h.cfg.MaxPageSize {
			writeJSONError(w, http.StatusBadRequest, "validation_error",
				"pageSize must be an integer between 1 and "+strconv.Itoa(h.cfg.MaxPageSize))
			return port.ListQuery{}, false
		}
		query.PageSize = size
	}
	if v := q.Get("order"); v != "" {
		switch port.SortOrder(v) {
		case port.SortAsc, port.SortDesc:
			query.Order = port.SortOrder(v)
		default:
			writeJSONError(w, http.StatusBadRequest, "validation_error", "order must be ASC or DESC")
			return port.ListQuery{}, false
		}
	}
	if v := q.Get("minPrice"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "validation_error", "minPrice must be a number")
			return port.ListQuery{}, false
		}
		query.MinPrice = &price
	}
	if v := q.Get("maxPrice"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "validation_error", "maxPrice must be a number")
			return port.ListQuery{}, false
		}
		query.MaxPrice = &price
	}

	return query, true
}

func (h *HTTPHandler) writeDomainError(w http.ResponseWriter, err error) {
	var notFound *domain.NotFoundError
	var insufficient *domain.InsufficientStockError
	var conflict *domain.VersionConflictError

	switch {
	case errors.Is(err, domain.ErrEmptyOrder) || errors.Is(err, domain.ErrDuplicateItems):
		writeJSONError(w, http.StatusBadRequest, "invalid_order", err.Error())
	case errors.As(err, &notFound):
		writeJSONError(w, http.StatusNotFound, "product_not_found", err.Error())
	case errors.As(err, &insufficient):
		writeJSONError(w, http.StatusConflict, "insufficient_stock", err.Error())
	case errors.As(err, &conflict):
		writeJSONError(w, http.StatusConflict, "version_conflict", err.Error())
	default:
		h.logger.Error("internal_error", zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "")
	}
}

func hasAtMostTwoDecimals(price float64) bool {
	cents := price * 100
	return math.Abs(cents-math.Round(cents)) < 1e-6
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeJSONError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, jsonError{Error: message, Details: details})
}

func toProductData(p *domain.Product) productData {
	return productData{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
		Stock:       p.Stock,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
