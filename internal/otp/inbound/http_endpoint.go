package inbound

import (
	"github.com/shandysiswandi/otpgate/internal/otp/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
)

// errInvalidCode is the HTTP answer to a verify that did not match.
var errInvalidCode = goerror.NewBusiness("Code is invalid or expired", goerror.CodeInvalidCode)

// HTTPEndpoint exposes the OTP lifecycle over HTTP.
type HTTPEndpoint struct {
	uc uc
}

// Send issues a code to a recipient over the requested channel.
func (h *HTTPEndpoint) Send(r *router.Request) (any, error) {
	var req SendRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.Send(r.Context(), usecase.SendInput{
		Recipient: req.Recipient,
		Channel:   req.Channel,
	}); err != nil {
		return nil, err
	}

	return StatusResponse{Status: "sent"}, nil
}

// Verify checks and consumes a code.
func (h *HTTPEndpoint) Verify(r *router.Request) (any, error) {
	var req VerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	ok, err := h.uc.Verify(r.Context(), usecase.VerifyInput{
		Recipient: req.Recipient,
		Code:      req.Code,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errInvalidCode
	}

	return StatusResponse{Status: "verified"}, nil
}

func (h *HTTPEndpoint) ResetAttempts(r *router.Request) (any, error) {
	var req ResetAttemptsRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.ResetAttempts(r.Context(), usecase.ResetAttemptsInput{Recipient: req.Recipient}); err != nil {
		return nil, err
	}

	return StatusResponse{Status: "reset"}, nil
}

func (h *HTTPEndpoint) Health(r *router.Request) (any, error) {
	out := h.uc.Health(r.Context())
	return HealthResponse{Status: out.Status, Store: out.Store.String()}, nil
}
