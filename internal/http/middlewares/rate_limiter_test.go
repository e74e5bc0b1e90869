package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/motorline/marketplace/internal/http/middlewares"
)

func TestRateLimiterBlocksOverLimit(t *testing.T) {
	rl := middlewares.NewRateLimiter(middlewares.NewMemoryCounterStore(), 3, time.Minute)

	r := gin.New()
	r.POST("/login", rl.Middleware(func(*gin.Context) string { return "fixed-key" }), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("request %d got status %d, want 200", i+1, w.Code)
		}
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("got status %d, want 429", w.Code)
	}

	if w.Header().Get("Retry-After") == "" {
		t.Fatal("missing Retry-After header")
	}
}

func TestMemoryCounterStoreResetsWindow(t *testing.T) {
	store := middlewares.NewMemoryCounterStore()

	count, _, err := store.IncrWindow(t.Context(), "k", 10*time.Millisecond)

	if err != nil || count != 1 {
		t.Fatalf("first incr: count=%d err=%v", count, err)
	}

	count, _, err = store.IncrWindow(t.Context(), "k", 10*time.Millisecond)

	if err != nil || count != 2 {
		t.Fatalf("second incr: count=%d err=%v", count, err)
	}

	time.Sleep(15 * time.Millisecond)

	count, _, err = store.IncrWindow(t.Context(), "k", 10*time.Millisecond)

	if err != nil || count != 1 {
		t.Fatalf("incr after window: count=%d err=%v", count, err)
	}
}
