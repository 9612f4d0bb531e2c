package genx

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/googleapis/gax-go/v2/apierror"
	"github.com/openai/openai-go"
	"google.golang.org/genai"
)

var (
	ErrNoChoices   = errors.New("genx: no choices")
	ErrNoContent   = errors.New("genx: no content")
	ErrTruncated   = errors.New("genx: generate truncated")
	ErrNoInvoke    = errors.New("genx: json output or tool calls are required")
	ErrNoGenerator = errors.New("genx: generator not found")
)

// BlockedError is returned when the provider refuses to answer.
type BlockedError struct {
	Refusal string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("genx: generate blocked: %s", e.Refusal)
}

// MalformedError is returned when the model's arguments cannot be decoded,
// even after repair.
type MalformedError struct {
	Name      string
	Arguments string
	Err       error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("genx: malformed %s arguments %q: %v", e.Name, truncate(e.Arguments, 256), e.Err)
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

// FinishReasonError reports an unexpected finish reason.
type FinishReasonError struct {
	Want, Got string
}

func (e *FinishReasonError) Error() string {
	return fmt.Sprintf("genx: want %s, got unexpected finish reason: %s", e.Want, e.Got)
}

// IsRetryable reports whether err is a transient provider failure worth
// another attempt: throttling, server errors, request timeouts, network
// timeouts, empty or malformed output. Cancellation of the caller's context
// is never retryable.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, ErrNoChoices) || errors.Is(err, ErrNoContent) || errors.Is(err, ErrTruncated) {
		return true
	}
	var malformed *MalformedError
	if errors.As(err, &malformed) {
		return true
	}
	if code, ok := statusCode(err); ok {
		return retryableStatus(code)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

func statusCode(err error) (int, bool) {
	var oaiErr *openai.Error
	if errors.As(err, &oaiErr) {
		return oaiErr.StatusCode, true
	}
	var gErr genai.APIError
	if errors.As(err, &gErr) {
		return gErr.Code, true
	}
	var gErrPtr *genai.APIError
	if errors.As(err, &gErrPtr) {
		return gErrPtr.Code, true
	}
	var gaxErr *apierror.APIError
	if errors.As(err, &gaxErr) && gaxErr.HTTPCode() > 0 {
		return gaxErr.HTTPCode(), true
	}
	return 0, false
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusRequestTimeout, http.StatusConflict, http.StatusTooManyRequests:
		return true
	}
	return code >= 500
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
