package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/rafaelpierri/andela-assessment/internal/adapter/storage"
	"github.com/rafaelpierri/andela-assessment/internal/config"
	"github.com/rafaelpierri/andela-assessment/internal/core/domain"
	"github.com/rafaelpierri/andela-assessment/internal/core/service"
)

func setupRouter(t *testing.T) (*storage.MemoryAdapter, http.Handler) {
	t.Helper()
	repo := storage.NewMemoryAdapter()
	logger := zap.NewNop()
	cfg := config.Config{DefaultPageSize: 10, MaxPageSize: 1000}
	h := NewHTTPHandler(cfg,
		service.NewProductService(repo, nil, logger),
		service.NewOrderService(repo, nil, logger),
		logger)
	return repo, NewRouter(h, logger)
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func seedProduct(t *testing.T, repo *storage.MemoryAdapter, name string, stock int) *domain.Product {
	t.Helper()
	created, err := repo.Create(context.Background(), &domain.Product{
		Name: name, Category: "test", Price: 10, Stock: stock,
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return created
}

func TestHealth(t *testing.T) {
	_, router := setupRouter(t)

	w := doJSON(t, router, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("X-Request-Id") == "" {
		t.Error("expected request id header")
	}
}

func TestCreateProduct(t *testing.T) {
	_, router := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/products",
		`{"name":"keyboard","description":"mechanical","category":"peripherals","price":150.50,"stock":10}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			ID        int64     `json:"id"`
			Name      string    `json:"name"`
			Price     float64   `json:"price"`
			Stock     int       `json:"stock"`
			CreatedAt time.Time `json:"createdAt"`
			UpdatedAt time.Time `json:"updatedAt"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data.ID == 0 || resp.Data.Name != "keyboard" || resp.Data.Price != 150.50 {
		t.Errorf("unexpected response: %+v", resp.Data)
	}
	if !resp.Data.CreatedAt.Equal(resp.Data.UpdatedAt) {
		t.Errorf("expected createdAt == updatedAt, got %v / %v", resp.Data.CreatedAt, resp.Data.UpdatedAt)
	}
}

func TestCreateProduct_Validation(t *testing.T) {
	_, router := setupRouter(t)

	cases := []struct {
		name string
		body string
	}{
		{"missing name", `{"category":"c","price":1,"stock":1}`},
		{"missing price", `{"name":"n","category":"c","stock":1}`},
		{"negative price", `{"name":"n","category":"c","price":-1,"stock":1}`},
		{"three decimals", `{"name":"n","category":"c","price":1.999,"stock":1}`},
		{"negative stock", `{"name":"n","category":"c","price":1,"stock":-1}`},
		{"bad json", `{`},
	}

	for _, c := range cases {
		w := doJSON(t, router, http.MethodPost, "/api/products", c.body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", c.name, w.Code)
		}
	}
}

func TestListProducts(t *testing.T) {
	repo, router := setupRouter(t)
	for _, name := range []string{"apple", "beer", "carrot", "dice", "energy drink"} {
		seedProduct(t, repo, name, 1)
	}

	w := doJSON(t, router, http.MethodGet, "/api/products?page=2&pageSize=2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data []struct {
			Name string `json:"name"`
		} `json:"data"`
		Meta domain.Pagination `json:"meta"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Data) != 2 || resp.Data[0].Name != "carrot" || resp.Data[1].Name != "dice" {
		t.Errorf("unexpected page: %+v", resp.Data)
	}
	want := domain.Pagination{Page: 2, PerPage: 2, Total: 5, TotalPages: 3}
	if resp.Meta != want {
		t.Errorf("expected meta %+v, got %+v", want, resp.Meta)
	}
}

func TestListProducts_QueryValidation(t *testing.T) {
	_, router := setupRouter(t)

	for _, path := range []string{
		"/api/products?page=0",
		"/api/products?page=abc",
		"/api/products?pageSize=0",
		"/api/products?pageSize=1001",
		"/api/products?order=SIDEWAYS",
		"/api/products?minPrice=abc",
	} {
		w := doJSON(t, router, http.MethodGet, path, "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", path, w.Code)
		}
	}
}

func TestListProducts_Filters(t *testing.T) {
	repo, router := setupRouter(t)
	seedProduct(t, repo, "Razer keyboard", 1)
	seedProduct(t, repo, "Logitech mouse", 1)

	w := doJSON(t, router, http.MethodGet, "/api/products?name=Razer", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Data []struct {
			Name string `json:"name"`
		} `json:"data"`
		Meta domain.Pagination `json:"meta"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Meta.Total != 1 || len(resp.Data) != 1 || resp.Data[0].Name != "Razer keyboard" {
		t.Errorf("unexpected filtered result: %+v", resp)
	}
}

func TestRestock(t *testing.T) {
	repo, router := setupRouter(t)
	created := seedProduct(t, repo, "restock-me", 3)

	body := fmt.Sprintf(`{"stock":50,"updatedAt":%q}`, created.UpdatedAt.Format(time.RFC3339Nano))
	w := doJSON(t, router, http.MethodPatch, fmt.Sprintf("/api/products/%d", created.ID), body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			Stock     int       `json:"stock"`
			UpdatedAt time.Time `json:"updatedAt"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data.Stock != 50 {
		t.Errorf("expected stock 50, got %d", resp.Data.Stock)
	}
	if !resp.Data.UpdatedAt.After(created.UpdatedAt) {
		t.Errorf("expected newer updatedAt, got %v (was %v)", resp.Data.UpdatedAt, created.UpdatedAt)
	}
}

func TestRestock_StaleToken(t *testing.T) {
	repo, router := setupRouter(t)
	created := seedProduct(t, repo, "stale-restock", 3)

	stale := created.UpdatedAt.Add(-time.Second)
	body := fmt.Sprintf(`{"stock":50,"updatedAt":%q}`, stale.Format(time.RFC3339Nano))
	w := doJSON(t, router, http.MethodPatch, fmt.Sprintf("/api/products/%d", created.ID), body)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Error string `json:"error"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error != "version_conflict" {
		t.Errorf("expected version_conflict, got %q", resp.Error)
	}

	product, _ := repo.FindOne(context.Background(), created.ID)
	if product.Stock != 3 {
		t.Errorf("stock changed on conflicted restock: %d", product.Stock)
	}
}

func TestRestock_NotFound(t *testing.T) {
	_, router := setupRouter(t)

	body := fmt.Sprintf(`{"stock":1,"updatedAt":%q}`, time.Now().Format(time.RFC3339Nano))
	w := doJSON(t, router, http.MethodPatch, "/api/products/9999", body)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestProcessOrder(t *testing.T) {
	repo, router := setupRouter(t)
	a := seedProduct(t, repo, "order-a", 10)
	b := seedProduct(t, repo, "order-b", 5)

	body := fmt.Sprintf(`{"items":[{"productId":%d,"quantity":6},{"productId":%d,"quantity":5}]}`, a.ID, b.ID)
	w := doJSON(t, router, http.MethodPost, "/api/orders", body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	first, _ := repo.FindOne(context.Background(), a.ID)
	if first.Stock != 4 {
		t.Errorf("expected stock 4, got %d", first.Stock)
	}
	second, _ := repo.FindOne(context.Background(), b.ID)
	if second.Stock != 0 {
		t.Errorf("expected stock 0, got %d", second.Stock)
	}
}

func TestProcessOrder_Failures(t *testing.T) {
	repo, router := setupRouter(t)
	a := seedProduct(t, repo, "fail-a", 2)

	cases := []struct {
		name      string
		body      string
		status    int
		errorCode string
	}{
		{"empty order", `{"items":[]}`, http.StatusBadRequest, "invalid_order"},
		{"duplicate items",
			fmt.Sprintf(`{"items":[{"productId":%d,"quantity":1},{"productId":%d,"quantity":1}]}`, a.ID, a.ID),
			http.StatusBadRequest, "invalid_order"},
		{"unknown product", `{"items":[{"productId":9999,"quantity":1}]}`,
			http.StatusNotFound, "product_not_found"},
		{"insufficient stock",
			fmt.Sprintf(`{"items":[{"productId":%d,"quantity":3}]}`, a.ID),
			http.StatusConflict, "insufficient_stock"},
		{"negative quantity",
			fmt.Sprintf(`{"items":[{"productId":%d,"quantity":-1}]}`, a.ID),
			http.StatusBadRequest, "validation_error"},
	}

	for _, c := range cases {
		w := doJSON(t, router, http.MethodPost, "/api/orders", c.body)
		if w.Code != c.status {
			t.Errorf("%s: expected %d, got %d: %s", c.name, c.status, w.Code, w.Body.String())
			continue
		}
		var resp struct {
			Error string `json:"error"`
		}
		json.Unmarshal(w.Body.Bytes(), &resp)
		if resp.Error != c.errorCode {
			t.Errorf("%s: expected error %q, got %q", c.name, c.errorCode, resp.Error)
		}
	}

	// No rejected order touched the stock.
	product, _ := repo.FindOne(context.Background(), a.ID)
	if product.Stock != 2 {
		t.Errorf("stock changed by rejected orders: %d", product.Stock)
	}
}
