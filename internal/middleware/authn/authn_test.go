package authn_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"user_service/internal/auth"
	"user_service/internal/lib/logger/handlers/slogdiscard"
	"user_service/internal/middleware/authn"
	"user_service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthenticator struct {
	claims models.Claims
	err    error
	got    string
}

func (f *fakeAuthenticator) Authenticate(authorization string) (models.Claims, error) {
	f.got = authorization
	return f.claims, f.err
}

func serve(t *testing.T, a *fakeAuthenticator, header string) (*httptest.ResponseRecorder, models.Claims, bool) {
	t.Helper()

	var (
		seen   models.Claims
		called bool
	)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, called = authn.ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/user-service/info", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rr := httptest.NewRecorder()
	authn.New(slogdiscard.NewDiscardLogger(), a)(next).ServeHTTP(rr, req)

	return rr, seen, called
}

func TestAuthn_PassesClaims(t *testing.T) {
	want := models.Claims{Email: "a@b.com", UserType: models.UserTypeUser, UserID: "uid-1"}
	a := &fakeAuthenticator{claims: want}

	rr, claims, called := serve(t, a, "Bearer access")

	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, called)
	assert.Equal(t, want, claims)
	assert.Equal(t, "Bearer access", a.got)
}

func TestAuthn_Rejects(t *testing.T) {
	cases := []struct {
		name   string
		header string
		err    error
		msg    string
	}{
		{"missing header", "", auth.ErrMissingBearer, "authorization header is required"},
		{"bad token", "Bearer refresh", auth.ErrInvalidBearer, "invalid token"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr, _, called := serve(t, &fakeAuthenticator{err: tc.err}, tc.header)

			require.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.False(t, called)

			var out struct {
				Status string `json:"status"`
				Error  string `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
			assert.Equal(t, tc.msg, out.Error)
		})
	}
}

func TestClaimsFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := authn.ClaimsFromContext(req.Context())
	assert.False(t, ok)

	claims := models.Claims{Email: "a@b.com"}
	got, ok := authn.ClaimsFromContext(authn.WithClaims(req.Context(), claims))
	require.True(t, ok)
	assert.Equal(t, claims, got)
}
