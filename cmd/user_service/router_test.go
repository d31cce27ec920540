package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"user_service/internal/auth"
	"user_service/internal/lib/api/validate"
	"user_service/internal/lib/logger/handlers/slogdiscard"
	"user_service/internal/models"

	"github.com/stretchr/testify/assert"
)

type stubAuth struct {
	calls []string
}

func (s *stubAuth) Refresh(context.Context, string) (models.TokenPair, error) {
	s.calls = append(s.calls, "refresh")
	return models.TokenPair{AccessToken: "a", RefreshToken: "r"}, nil
}

func (s *stubAuth) Logout(context.Context, string, string) error {
	s.calls = append(s.calls, "logout")
	return nil
}

func (s *stubAuth) Login(context.Context, string, string, string) (models.TokenPair, error) {
	s.calls = append(s.calls, "login")
	return models.TokenPair{}, nil
}

func (s *stubAuth) SendVerificationCode(context.Context, string) error {
	s.calls = append(s.calls, "send")
	return nil
}

func (s *stubAuth) VerifyCode(context.Context, string, string) error {
	s.calls = append(s.calls, "verify")
	return nil
}

func (s *stubAuth) RegisterUser(context.Context, auth.RegisterUserInput) (models.User, error) {
	s.calls = append(s.calls, "user_join")
	return models.User{UserID: "u"}, nil
}

func (s *stubAuth) RegisterSeller(context.Context, auth.RegisterSellerInput) (models.Seller, error) {
	s.calls = append(s.calls, "seller_join")
	return models.Seller{SellerID: "s"}, nil
}

func (s *stubAuth) Authenticate(authorization string) (models.Claims, error) {
	if authorization != "Bearer access" {
		return models.Claims{}, auth.ErrInvalidBearer
	}
	return models.Claims{Email: "a@b.com", UserType: models.UserTypeUser, UserID: "u"}, nil
}

func (s *stubAuth) AccountInfo(context.Context, models.Claims) (models.AccountInfo, error) {
	s.calls = append(s.calls, "info")
	return models.AccountInfo{ExternalID: "u", Type: models.UserTypeUser}, nil
}

func (s *stubAuth) UpdateNickname(context.Context, models.Claims, string) (time.Time, error) {
	s.calls = append(s.calls, "user_update")
	return time.Now(), nil
}

func (s *stubAuth) UpdateSellerName(context.Context, models.Claims, string) (time.Time, error) {
	s.calls = append(s.calls, "seller_update")
	return time.Now(), nil
}

func (s *stubAuth) UpdatePassword(context.Context, models.Claims, string, string) error {
	s.calls = append(s.calls, "password")
	return nil
}

func TestRouterMountsRoutes(t *testing.T) {
	cases := []struct {
		path string
		body string
		code int
		call string
	}{
		{"/user-service/refresh", `{"refreshToken":"rt"}`, http.StatusOK, "refresh"},
		{"/user-service/logout", `{"refreshToken":"rt"}`, http.StatusOK, "logout"},
		{"/user-service/login", `{"email":"a@b.com","password":"pw","userType":"user"}`, http.StatusOK, "login"},
		{"/user-service/mail/send-verification-code", `{"email":"a@b.com"}`, http.StatusOK, "send"},
		{"/user-service/mail/verify-code", `{"email":"a@b.com","verificationCode":"123456"}`, http.StatusOK, "verify"},
		{"/user-service/users/join", `{"email":"a@b.com","password":"s3cret-pass","nickname":"n","birthdate":"1990-01-01"}`, http.StatusCreated, "user_join"},
		{"/user-service/sellers/join", `{"email":"a@b.com","password":"s3cret-pass","sellerName":"Shop"}`, http.StatusCreated, "seller_join"},
	}

	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			stub := &stubAuth{}
			r := setupRouter(slogdiscard.NewDiscardLogger(), validate.New(), stub)

			req := httptest.NewRequest(http.MethodPost, tc.path, strings.NewReader(tc.body))
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			assert.Equal(t, tc.code, rr.Code)
			assert.Equal(t, []string{tc.call}, stub.calls)
		})
	}
}

func TestRouterAuthenticatedRoutes(t *testing.T) {
	cases := []struct {
		method string
		path   string
		body   string
		call   string
	}{
		{http.MethodGet, "/user-service/info", "", "info"},
		{http.MethodPut, "/user-service/users/update", `{"nickname":"n"}`, "user_update"},
		{http.MethodPut, "/user-service/sellers/update", `{"sellerName":"Shop"}`, "seller_update"},
		{http.MethodPut, "/user-service/password", `{"oldPassword":"old-pass","newPassword":"n3w-pass-123"}`, "password"},
	}

	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			stub := &stubAuth{}
			r := setupRouter(slogdiscard.NewDiscardLogger(), validate.New(), stub)

			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.Empty(t, stub.calls)

			req = httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			req.Header.Set("Authorization", "Bearer access")
			rr = httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, []string{tc.call}, stub.calls)
		})
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	r := setupRouter(slogdiscard.NewDiscardLogger(), validate.New(), &stubAuth{})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/refresh", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/user-service/refresh", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
