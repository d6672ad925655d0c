package httpclient

import "context"

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
}

// Client abstracts HTTP calls so callers can inject mocks or different
// transports. Do sends an optional JSON body with the given verb; Get fetches
// without a body.
type Client interface {
	Do(ctx context.Context, method, url string, headers map[string]string, body any) (Response, error)
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
}
