package login_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"user_service/internal/auth"
	"user_service/internal/http_server/handlers/login"
	"user_service/internal/lib/api/validate"
	"user_service/internal/lib/logger/handlers/slogdiscard"
	"user_service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLogin struct {
	pair models.TokenPair
	err  error
	got  []string
}

func (f *fakeLogin) Login(_ context.Context, email, password, userType string) (models.TokenPair, error) {
	f.got = []string{email, password, userType}
	return f.pair, f.err
}

type loginResponse struct {
	Status  string           `json:"status"`
	Error   string           `json:"error"`
	Payload models.TokenPair `json:"payload"`
}

func doLogin(t *testing.T, f *fakeLogin, body string) (int, loginResponse) {
	t.Helper()

	h := login.New(slogdiscard.NewDiscardLogger(), validate.New(), f)
	req := httptest.NewRequest(http.MethodPost, "/user-service/login", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var out loginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))

	return rr.Code, out
}

func TestLoginHandler_OK(t *testing.T) {
	f := &fakeLogin{pair: models.TokenPair{AccessToken: "at", RefreshToken: "rt"}}

	code, out := doLogin(t, f, `{"email":"a@b.com","password":"pw","userType":"seller"}`)

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "OK", out.Status)
	assert.Equal(t, f.pair, out.Payload)
	assert.Equal(t, []string{"a@b.com", "pw", "seller"}, f.got)
}

func TestLoginHandler_Errors(t *testing.T) {
	code, out := doLogin(t, &fakeLogin{err: auth.ErrInvalidCredentials},
		`{"email":"a@b.com","password":"pw","userType":"user"}`)
	require.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "invalid credentials", out.Error)

	f := &fakeLogin{}
	code, out = doLogin(t, f, `{"email":"a@b.com","password":"pw","userType":"admin"}`)
	require.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "field userType must be one of [user seller]", out.Error)
	assert.Nil(t, f.got)
}
