package verifyCode_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"user_service/internal/auth"
	verifyCode "user_service/internal/http_server/handlers/verify_code"
	resp "user_service/internal/lib/api/response"
	"user_service/internal/lib/api/validate"
	"user_service/internal/lib/logger/handlers/slogdiscard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// codeStore accepts each code once, like the redis consume script.
type codeStore struct {
	pending map[string]string
}

func (c *codeStore) VerifyCode(_ context.Context, email, code string) error {
	if c.pending[email] != code {
		return auth.ErrCodeMismatch
	}
	delete(c.pending, email)
	return nil
}

func post(t *testing.T, h http.Handler, body string) (int, resp.Response) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/user-service/mail/verify-code", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var out resp.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))

	return rr.Code, out
}

func TestVerifyCodeHandler_SingleUse(t *testing.T) {
	store := &codeStore{pending: map[string]string{"a@b.com": "482913"}}
	h := verifyCode.New(slogdiscard.NewDiscardLogger(), validate.New(), store)

	code, out := post(t, h, `{"email":"a@b.com","verificationCode":"111111"}`)
	require.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "verification code mismatch", out.Error)

	code, out = post(t, h, `{"email":"a@b.com","verificationCode":"482913"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, resp.StatusOK, out.Status)

	code, _ = post(t, h, `{"email":"a@b.com","verificationCode":"482913"}`)
	require.Equal(t, http.StatusBadRequest, code)
}

func TestVerifyCodeHandler_Validation(t *testing.T) {
	h := verifyCode.New(slogdiscard.NewDiscardLogger(), validate.New(), &codeStore{})

	cases := []string{
		`{"email":"a@b.com"}`,
		`{"email":"a@b.com","verificationCode":"12ab56"}`,
		`{"email":"nope","verificationCode":"123456"}`,
		`not json`,
	}

	for _, body := range cases {
		code, out := post(t, h, body)
		assert.Equal(t, http.StatusBadRequest, code, body)
		assert.Equal(t, resp.StatusError, out.Status)
	}
}
