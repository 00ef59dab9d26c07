package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rumahkopi/api/internal/auth"
	"github.com/rumahkopi/api/internal/middleware"
)

const testJWTSecret = "test-secret-for-handlers"

func customerClaims() *auth.Claims {
	return &auth.Claims{UserID: uuid.New(), Role: "customer"}
}

func adminClaims() *auth.Claims {
	return &auth.Claims{UserID: uuid.New(), Role: "admin"}
}

// authRouter returns a router that authenticates every request with
// testJWTSecret, like the protected group in production.
func authRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret))
	return r
}

func doAuthRequest(t *testing.T, router http.Handler, method, path string, body interface{}, claims *auth.Claims) *httptest.ResponseRecorder {
	t.Helper()

	token, err := auth.GenerateToken(testJWTSecret, claims.UserID, claims.Role)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	req := newRequest(t, method, path, body)
	req.Header.Set("Authorization", "Bearer "+token)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, newRequest(t, method, path, body))
	return rr
}

func newRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	if body == nil {
		return httptest.NewRequest(method, path, nil)
	}
	var b []byte
	switch v := body.(type) {
	case string:
		b = []byte(v)
	default:
		var err error
		if b, err = json.Marshal(body); err != nil {
			t.Fatalf("marshal request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func decodeArray(t *testing.T, rr *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var resp []map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, rr.Code, rr.Body.String())
	}
}

func expectError(t *testing.T, rr *httptest.ResponseRecorder, want string) {
	t.Helper()
	resp := decodeResponse(t, rr)
	if resp["error"] != want {
		t.Errorf("expected error %q, got %v", want, resp["error"])
	}
}
