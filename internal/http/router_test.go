package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/motorline/marketplace/internal/config"
	apphttp "github.com/motorline/marketplace/internal/http"
	"github.com/motorline/marketplace/internal/repo/memory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()

	catalog := memory.NewCatalog()

	cfg := config.Config{
		Env:             "test",
		JWTSecret:       "router-test-secret",
		TokenTTL:        time.Hour,
		BcryptCost:      4,
		LoginRateLimit:  100,
		LoginRateWindow: time.Minute,
	}

	return apphttp.NewRouter(apphttp.RouterDeps{
		Log: slog.New(slog.NewJSONHandler(io.Discard, nil)),
		Cfg: cfg,
		Stores: apphttp.Stores{
			Users:      catalog.Users(),
			Categories: catalog.Categories(),
			Products:   catalog.Products(),
			Tags:       catalog.Tags(),
		},
	})
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader

	if body != "" {
		reader = bytes.NewBufferString(body)
	}

	req := httptest.NewRequest(method, path, reader)

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func decodeData(t *testing.T, body []byte, out interface{}) {
	t.Helper()

	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}

	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("bad envelope: %v (%s)", err, body)
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		t.Fatalf("bad data payload: %v (%s)", err, envelope.Data)
	}
}

func TestRootAnswersSuccessForAnyVerb(t *testing.T) {
	r := testRouter(t)

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete} {
		w := doJSON(t, r, method, "/", "", nil)

		if w.Code != http.StatusOK {
			t.Fatalf("%s /: got status %d, want 200", method, w.Code)
		}

		if w.Body.String() != "Success" {
			t.Fatalf("%s /: got body %q, want %q", method, w.Body.String(), "Success")
		}
	}
}

func TestUnknownRouteReturnsNotFoundMessage(t *testing.T) {
	r := testRouter(t)

	w := doJSON(t, r, http.MethodGet, "/nope", "", nil)

	if w.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404", w.Code)
	}

	var resp struct {
		Message string `json:"message"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}

	if resp.Message != "Could not find this route." {
		t.Fatalf("got message %q", resp.Message)
	}
}

func TestWriteWithoutJSONContentTypeIsRejected(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/categories/addone", bytes.NewBufferString("name=SUV"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("got status %d, want 415", w.Code)
	}
}

func TestHealthz(t *testing.T) {
	r := testRouter(t)

	w := doJSON(t, r, http.MethodGet, "/healthz", "", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", w.Code)
	}
}

func TestSignupLoginMe(t *testing.T) {
	r := testRouter(t)

	// signup
	w := doJSON(t, r, http.MethodPost, "/users/create",
		`{"username": "nadia", "email": "nadia@example.com", "password": "pw"}`, nil)

	if w.Code != http.StatusCreated {
		t.Fatalf("signup: got status %d, body=%s", w.Code, w.Body.String())
	}

	// duplicate signup conflicts
	w = doJSON(t, r, http.MethodPost, "/users/create",
		`{"username": "nadia2", "email": "nadia@example.com", "password": "pw"}`, nil)

	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate signup: got status %d, want 409", w.Code)
	}

	// login
	w = doJSON(t, r, http.MethodPost, "/users/login",
		`{"email": "nadia@example.com", "password": "pw"}`, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("login: got status %d, body=%s", w.Code, w.Body.String())
	}

	var auth struct {
		UserID string `json:"userId"`
		Token  string `json:"token"`
	}
	decodeData(t, w.Body.Bytes(), &auth)

	if auth.Token == "" {
		t.Fatal("login returned no token")
	}

	// wrong password
	w = doJSON(t, r, http.MethodPost, "/users/login",
		`{"email": "nadia@example.com", "password": "nope"}`, nil)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: got status %d, want 401", w.Code)
	}

	// /users/me with the token
	w = doJSON(t, r, http.MethodGet, "/users/me", "", map[string]string{
		"Authorization": "Bearer " + auth.Token,
	})

	if w.Code != http.StatusOK {
		t.Fatalf("me: got status %d, body=%s", w.Code, w.Body.String())
	}

	var me struct {
		UserID   string `json:"userId"`
		UserName string `json:"userName"`
		Email    string `json:"email"`
	}
	decodeData(t, w.Body.Bytes(), &me)

	if me.UserID != auth.UserID || me.Email != "nadia@example.com" {
		t.Fatalf("me payload mismatch: %+v", me)
	}

	// /users/me without a token
	w = doJSON(t, r, http.MethodGet, "/users/me", "", nil)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("me without token: got status %d, want 401", w.Code)
	}
}

func TestCatalogFlow(t *testing.T) {
	r := testRouter(t)

	// create category
	w := doJSON(t, r, http.MethodPost, "/categories/addone", `{"name": "SUV"}`, nil)

	if w.Code != http.StatusCreated {
		t.Fatalf("create category: got status %d, body=%s", w.Code, w.Body.String())
	}

	// fetch its id from the listing
	w = doJSON(t, r, http.MethodGet, "/categories", "", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("list categories: got status %d", w.Code)
	}

	var categories []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	decodeData(t, w.Body.Bytes(), &categories)

	if len(categories) != 1 {
		t.Fatalf("got %d categories, want 1", len(categories))
	}

	categoryID := categories[0].ID

	// create products in that category
	for i := 1; i <= 3; i++ {
		body := fmt.Sprintf(`{
			"name": "Car %02d",
			"description": "listing",
			"categoryId": %q,
			"price": %d,
			"tags": ["v8"]
		}`, i, categoryID, i*50000)

		w = doJSON(t, r, http.MethodPost, "/products/addone", body, nil)

		if w.Code != http.StatusCreated {
			t.Fatalf("create product %d: got status %d, body=%s", i, w.Code, w.Body.String())
		}
	}

	// unknown category is rejected
	w = doJSON(t, r, http.MethodPost, "/products/addone",
		`{"name": "Ghost", "description": "listing", "categoryId": "missing"}`, nil)

	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown category: got status %d, want 404", w.Code)
	}

	// list with a price floor
	w = doJSON(t, r, http.MethodGet, "/products?minPrice=100000", "", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("list products: got status %d, body=%s", w.Code, w.Body.String())
	}

	var products []struct {
		Name  string  `json:"name"`
		Price float64 `json:"price"`
		Tags  []struct {
			Name string `json:"name"`
		} `json:"tags"`
	}
	decodeData(t, w.Body.Bytes(), &products)

	if len(products) != 2 {
		t.Fatalf("got %d products over the floor, want 2", len(products))
	}

	if len(products[0].Tags) != 1 || products[0].Tags[0].Name != "v8" {
		t.Fatalf("tags not returned with listing: %+v", products[0])
	}

	// invalid pagination is a 400
	w = doJSON(t, r, http.MethodGet, "/products?page=0", "", nil)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("page=0: got status %d, want 400", w.Code)
	}

	// the upserted tag shows up in the tag listing
	w = doJSON(t, r, http.MethodGet, "/products/tags", "", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("list tags: got status %d", w.Code)
	}

	var tags []struct {
		Name string `json:"name"`
	}
	decodeData(t, w.Body.Bytes(), &tags)

	if len(tags) != 1 || tags[0].Name != "v8" {
		t.Fatalf("got tags %+v, want just v8", tags)
	}
}
