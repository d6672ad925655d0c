package endpoint

import (
	"context"
	"io"
	"time"

	"github.com/go-resty/resty/v2"
)

// Invoker opens a connection to the endpoint described by d, writes the
// serialized request body, and hands back the raw response stream plus the
// HTTP status code. The caller owns the stream and must close it on every
// exit path.
type Invoker interface {
	Invoke(ctx context.Context, d Descriptor, body []byte) (io.ReadCloser, int, error)
}

// RestyInvoker implements Invoker on a single resty client so connections are
// reused across calls.
type RestyInvoker struct {
	client *resty.Client
}

// NewRestyInvoker returns the default transport implementation. The timeout
// applies to every request issued through this invoker.
func NewRestyInvoker(timeout time.Duration) *RestyInvoker {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetDoNotParseResponse(true)
	return &RestyInvoker{client: client}
}

// Invoke performs the HTTP exchange. The response body is left unparsed so
// streaming responses can be consumed line by line.
func (ri *RestyInvoker) Invoke(ctx context.Context, d Descriptor, body []byte) (io.ReadCloser, int, error) {
	req := ri.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body)
	if d.Auth != nil {
		req.SetHeader("Authorization", d.Auth.HeaderValue())
	}

	resp, err := req.Execute(d.Method, d.URL())
	if err != nil {
		return nil, 0, &TransportError{Op: "request", Cause: err}
	}
	return resp.RawBody(), resp.StatusCode(), nil
}
