package router

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

const maxBodyBytes = 64 * 1024

// Request is the inbound view handed to a Handler.
type Request struct {
	*http.Request
}

// DecodeBody reads exactly one JSON object into dst. Unknown fields, trailing
// data and bodies over 64KiB are rejected as CodeInvalidFormat.
func (r *Request) DecodeBody(dst any) error {
	if r == nil || r.Body == nil || r.Body == http.NoBody {
		return goerror.NewInvalidFormat()
	}

	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err == nil {
		if _, errTail := dec.Token(); !errors.Is(errTail, io.EOF) {
			err = errors.New("trailing data after json object")
		}
	}

	var tooLarge *http.MaxBytesError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &tooLarge):
		return goerror.NewInvalidFormat("Request body too large")
	default:
		return goerror.NewInvalidFormat()
	}
}
