package middlewares_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/motorline/marketplace/internal/domain/user"
	"github.com/motorline/marketplace/internal/http/middlewares"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeVerifier struct {
	verifyFn func(token string) (string, error)
}

func (f *fakeVerifier) Verify(token string) (string, error) {
	return f.verifyFn(token)
}

type fakeResolver struct {
	getFn func(ctx context.Context, id string) (user.User, error)
}

func (f *fakeResolver) GetByID(ctx context.Context, id string) (user.User, error) {
	return f.getFn(ctx, id)
}

func TestRequireAuth(t *testing.T) {
	knownUser := user.User{ID: "u-1", Username: "nadia", Email: "nadia@example.com"}

	tests := []struct {
		name           string
		header         string
		verifyFn       func(string) (string, error)
		getFn          func(context.Context, string) (user.User, error)
		wantStatusCode int
		wantDownstream bool
	}{
		{
			name:           "missing_header",
			header:         "",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "wrong_scheme",
			header:         "Basic abc123",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "empty_token",
			header:         "Bearer ",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:   "verify_fails",
			header: "Bearer sometoken",
			verifyFn: func(string) (string, error) {
				return "", errors.New("bad signature")
			},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:   "user_not_found",
			header: "Bearer sometoken",
			verifyFn: func(string) (string, error) {
				return "ghost", nil
			},
			getFn: func(_ context.Context, id string) (user.User, error) {
				return user.User{}, user.ErrNotFound
			},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:   "success",
			header: "Bearer sometoken",
			verifyFn: func(string) (string, error) {
				return knownUser.ID, nil
			},
			getFn: func(_ context.Context, id string) (user.User, error) {
				if id != knownUser.ID {
					t.Fatalf("resolver got id %q, want %q", id, knownUser.ID)
				}
				return knownUser, nil
			},
			wantStatusCode: http.StatusOK,
			wantDownstream: true,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			mw := middlewares.NewAuthMiddleware(
				&fakeVerifier{verifyFn: tt.verifyFn},
				&fakeResolver{getFn: tt.getFn},
			)

			downstreamCalls := 0

			r := gin.New()
			r.GET("/protected", mw.RequireAuth(), func(c *gin.Context) {
				downstreamCalls++

				u, ok := middlewares.UserFromContext(c)

				if !ok {
					t.Fatal("no user attached to context")
				}

				if u.ID != knownUser.ID {
					t.Fatalf("context user %q, want %q", u.ID, knownUser.ID)
				}

				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)

			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			wantCalls := 0

			if tt.wantDownstream {
				wantCalls = 1
			}

			if downstreamCalls != wantCalls {
				t.Fatalf("downstream called %d times, want %d", downstreamCalls, wantCalls)
			}
		})
	}
}
