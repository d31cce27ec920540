package accountInfo_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"user_service/internal/auth"
	accountInfo "user_service/internal/http_server/handlers/account_info"
	"user_service/internal/lib/logger/handlers/slogdiscard"
	"user_service/internal/middleware/authn"
	"user_service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	claims models.Claims
	info   models.AccountInfo
	err    error
}

func (f *fakeProvider) AccountInfo(_ context.Context, claims models.Claims) (models.AccountInfo, error) {
	f.claims = claims
	return f.info, f.err
}

type infoResponse struct {
	Status  string              `json:"status"`
	Error   string              `json:"error"`
	Payload accountInfo.Payload `json:"payload"`
}

func get(t *testing.T, f *fakeProvider, claims *models.Claims) (int, infoResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/user-service/info", nil)
	if claims != nil {
		req = req.WithContext(authn.WithClaims(req.Context(), *claims))
	}
	rr := httptest.NewRecorder()
	accountInfo.New(slogdiscard.NewDiscardLogger(), f).ServeHTTP(rr, req)

	var out infoResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))

	return rr.Code, out
}

func TestAccountInfo_User(t *testing.T) {
	claims := models.Claims{Email: "a@b.com", UserType: models.UserTypeUser, UserID: "uid-1"}
	f := &fakeProvider{info: models.AccountInfo{
		ExternalID: "uid-1",
		Email:      "a@b.com",
		Type:       models.UserTypeUser,
		Nickname:   "traveler",
		Birthdate:  time.Date(1995, 4, 2, 0, 0, 0, 0, time.UTC),
	}}

	code, out := get(t, f, &claims)

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, claims, f.claims)
	assert.Equal(t, "uid-1", out.Payload.ID)
	assert.Equal(t, "user", out.Payload.UserType)
	assert.Equal(t, "1995-04-02", out.Payload.Birthdate)
	assert.Empty(t, out.Payload.SellerName)
}

func TestAccountInfo_Seller(t *testing.T) {
	claims := models.Claims{Email: "shop@b.com", UserType: models.UserTypeSeller, UserID: "sid-1"}
	f := &fakeProvider{info: models.AccountInfo{
		ExternalID: "sid-1",
		Email:      "shop@b.com",
		Type:       models.UserTypeSeller,
		SellerName: "Shop",
		SellerLogo: []byte{0x89, 0x50},
	}}

	code, out := get(t, f, &claims)

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "seller", out.Payload.UserType)
	assert.Equal(t, "Shop", out.Payload.SellerName)
	assert.Equal(t, []byte{0x89, 0x50}, out.Payload.SellerLogo)
	assert.Empty(t, out.Payload.Birthdate)
}

func TestAccountInfo_Errors(t *testing.T) {
	code, out := get(t, &fakeProvider{}, nil)
	require.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "authorization header is required", out.Error)

	claims := models.Claims{Email: "gone@b.com", UserType: models.UserTypeUser}
	code, out = get(t, &fakeProvider{err: auth.ErrAccountNotFound}, &claims)
	require.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "account not found", out.Error)
}
