package httpclient

import (
	"context"
	"fmt"
	"net/http"
)

type BaseResponse struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// IsSuccess reports a 2xx status.
func (r *BaseResponse) IsSuccess() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// StatusError is returned by callers that treat a non-2xx answer as a failure.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d: %s", e.StatusCode, e.Body)
}

// CheckStatus turns a non-2xx response into a *StatusError.
func CheckStatus(resp *BaseResponse) error {
	if resp.IsSuccess() {
		return nil
	}
	if resp == nil {
		return &StatusError{}
	}
	body := string(resp.Body)
	if len(body) > 256 {
		body = body[:256]
	}
	return &StatusError{StatusCode: resp.StatusCode, Body: body}
}

type HTTPClient interface {
	Get(ctx context.Context, endpoint string, queryParams map[string]string, headers map[string]string, result interface{}) (*BaseResponse, error)
	Post(ctx context.Context, endpoint string, body interface{}, headers map[string]string, result interface{}) (*BaseResponse, error)
	Put(ctx context.Context, endpoint string, body interface{}, headers map[string]string, result interface{}) (*BaseResponse, error)
	Delete(ctx context.Context, endpoint string, headers map[string]string, result interface{}) (*BaseResponse, error)
}
