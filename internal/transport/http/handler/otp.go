package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/email-otp-api/internal/application/otp"
)

const msgInvalidBody = "Invalid request body"

// SendOTPRequest is the body of POST /api/send-otp.
type SendOTPRequest struct {
	Email string `json:"email"`
}

// VerifyOTPRequest is the body of POST /api/verify-otp.
type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// OTPHandler handles the OTP request and verification endpoints.
type OTPHandler struct {
	svc otp.Service
}

func NewOTPHandler(svc otp.Service) *OTPHandler {
	return &OTPHandler{svc: svc}
}

func (h *OTPHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req SendOTPRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if err := h.svc.RequestCode(r.Context(), req.Email); err != nil {
		httpError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: otp.MsgSent})
}

func (h *OTPHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyOTPRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, MessageEnvelope{Message: msgInvalidBody, Success: boolPtr(false)})
		return
	}
	if err := h.svc.VerifyCode(r.Context(), req.Email, req.OTP); err != nil {
		httpError(w, r, err, boolPtr(false))
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: otp.MsgVerified, Success: boolPtr(true)})
}

// decodeBody reads a JSON body into dst. An empty body leaves dst zero so the
// service reports the missing fields.
func decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
