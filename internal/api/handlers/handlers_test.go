package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hackpoint/server/internal/api/middleware"
	"github.com/hackpoint/server/internal/auth"
)

var testJWT = auth.NewJWTManager("handlers-test-secret", time.Hour, "hackpoint-test")

// authedRequest builds a request carrying a valid token and runs it
// through the auth middleware so claims land in the context the same
// way they do in production.
func authedRequest(t *testing.T, userID int64, role auth.Role, handler http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	token, err := testJWT.Generate(userID, string(role))
	if err != nil {
		t.Fatal(err)
	}
	r.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	middleware.Authenticate(testJWT)(handler).ServeHTTP(w, r)
	return w
}
