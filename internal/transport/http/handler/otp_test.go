package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/email-otp-api/internal/application/otp"
	"github.com/email-otp-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mock ---

type mockOTPSvc struct{ mock.Mock }

func (m *mockOTPSvc) RequestCode(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockOTPSvc) VerifyCode(ctx context.Context, email, code string) error {
	return m.Called(ctx, email, code).Error(0)
}

// --- helpers ---

func postJSON(target string, body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, target, bytes.NewBufferString(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp
}

// --- Send ---

func TestSend_InvalidBody(t *testing.T) {
	svc := &mockOTPSvc{}
	h := NewOTPHandler(svc)
	rr := httptest.NewRecorder()
	h.Send(rr, postJSON("/api/send-otp", "not-json"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid request body", decode(t, rr)["message"])
	svc.AssertNotCalled(t, "RequestCode", mock.Anything, mock.Anything)
}

func TestSend_HappyPath(t *testing.T) {
	svc := &mockOTPSvc{}
	svc.On("RequestCode", mock.Anything, "a@b.com").Return(nil)
	h := NewOTPHandler(svc)
	rr := httptest.NewRecorder()
	h.Send(rr, postJSON("/api/send-otp", `{"email":"a@b.com"}`))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, map[string]interface{}{"message": "OTP sent successfully!"}, decode(t, rr))
	svc.AssertExpectations(t)
}

func TestSend_MissingEmail(t *testing.T) {
	svc := &mockOTPSvc{}
	svc.On("RequestCode", mock.Anything, "").Return(domain.NewError(domain.ErrInvalidInput, otp.MsgEmailRequired))
	h := NewOTPHandler(svc)
	rr := httptest.NewRecorder()
	h.Send(rr, postJSON("/api/send-otp", `{}`))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Email is required", decode(t, rr)["message"])
}

func TestSend_DeliveryFailure(t *testing.T) {
	svc := &mockOTPSvc{}
	svc.On("RequestCode", mock.Anything, "a@b.com").Return(
		domain.WrapError(domain.ErrDeliveryFailed, otp.MsgDeliveryFailed, errors.New("sendgrid send: status 401: bad key")))
	h := NewOTPHandler(svc)
	rr := httptest.NewRecorder()
	h.Send(rr, postJSON("/api/send-otp", `{"email":"a@b.com"}`))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Failed to send OTP", decode(t, rr)["message"])
	assert.NotContains(t, rr.Body.String(), "bad key")
}

func TestSend_UnknownErrorIsGeneric(t *testing.T) {
	svc := &mockOTPSvc{}
	svc.On("RequestCode", mock.Anything, "a@b.com").Return(errors.New("boom"))
	h := NewOTPHandler(svc)
	rr := httptest.NewRecorder()
	h.Send(rr, postJSON("/api/send-otp", `{"email":"a@b.com"}`))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Internal server error", decode(t, rr)["message"])
}

func TestSend_EmptyBodyReachesService(t *testing.T) {
	svc := &mockOTPSvc{}
	svc.On("RequestCode", mock.Anything, "").Return(domain.NewError(domain.ErrInvalidInput, otp.MsgEmailRequired))
	h := NewOTPHandler(svc)
	rr := httptest.NewRecorder()
	h.Send(rr, postJSON("/api/send-otp", ""))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Email is required", decode(t, rr)["message"])
	svc.AssertExpectations(t)
}

// --- Verify ---

func TestVerify_InvalidBody(t *testing.T) {
	svc := &mockOTPSvc{}
	h := NewOTPHandler(svc)
	rr := httptest.NewRecorder()
	h.Verify(rr, postJSON("/api/verify-otp", `{"email":"a@b.com","otp":482913}`))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decode(t, rr)
	assert.Equal(t, "Invalid request body", resp["message"])
	assert.Equal(t, false, resp["success"])
}

func TestVerify_EmptyBodyReachesService(t *testing.T) {
	svc := &mockOTPSvc{}
	svc.On("VerifyCode", mock.Anything, "", "").Return(domain.NewError(domain.ErrInvalidInput, otp.MsgEmailRequired))
	h := NewOTPHandler(svc)
	rr := httptest.NewRecorder()
	h.Verify(rr, postJSON("/api/verify-otp", ""))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decode(t, rr)
	assert.Equal(t, "Email is required", resp["message"])
	assert.Equal(t, false, resp["success"])
}

func TestVerify_HappyPath(t *testing.T) {
	svc := &mockOTPSvc{}
	svc.On("VerifyCode", mock.Anything, "a@b.com", "482913").Return(nil)
	h := NewOTPHandler(svc)
	rr := httptest.NewRecorder()
	h.Verify(rr, postJSON("/api/verify-otp", `{"email":"a@b.com","otp":"482913"}`))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, map[string]interface{}{"message": "OTP verified successfully!", "success": true}, decode(t, rr))
	svc.AssertExpectations(t)
}

func TestVerify_FailureKinds(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"missing otp", domain.NewError(domain.ErrInvalidInput, otp.MsgOTPRequired), http.StatusBadRequest, "OTP is required"},
		{"not found", domain.NewError(domain.ErrNotFound, otp.MsgNotFound), http.StatusBadRequest, "No OTP found for this email"},
		{"expired", domain.NewError(domain.ErrExpired, otp.MsgExpired), http.StatusBadRequest, "OTP has expired"},
		{"mismatch", domain.NewError(domain.ErrMismatch, otp.MsgMismatch), http.StatusBadRequest, "Invalid OTP"},
		{"internal", domain.WrapError(domain.ErrInternal, otp.MsgInternal, errors.New("dynamo timeout")), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockOTPSvc{}
			svc.On("VerifyCode", mock.Anything, "a@b.com", "000000").Return(tt.err)
			h := NewOTPHandler(svc)
			rr := httptest.NewRecorder()
			h.Verify(rr, postJSON("/api/verify-otp", `{"email":"a@b.com","otp":"000000"}`))

			assert.Equal(t, tt.status, rr.Code)
			resp := decode(t, rr)
			assert.Equal(t, tt.msg, resp["message"])
			assert.Equal(t, false, resp["success"])
		})
	}
}

// --- Health ---

func TestHealth(t *testing.T) {
	at := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
	h := NewHealthHandler(func() time.Time { return at })
	rr := httptest.NewRecorder()
	h.Health(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp HealthEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "OK", resp.Status)
	assert.Equal(t, "2026-10-17T09:30:00Z", resp.Timestamp)
}

func TestRoot(t *testing.T) {
	h := NewHealthHandler(nil)
	rr := httptest.NewRecorder()
	h.Root(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Backend is running!", rr.Body.String())
}
