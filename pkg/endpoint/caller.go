// Package endpoint implements the request/response engine shared by all
// streaming endpoints: it posts a JSON payload, classifies the HTTP status,
// folds the newline-delimited response into a single result, and exposes
// blocking and background calling modes.
package endpoint

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/samvad-hq/samvad-llm-client/pkg/jsoncodec"
)

// Result is the completed outcome of one call.
type Result struct {
	Response           string
	ResponseTimeMillis int64
	HTTPStatusCode     int
}

// Caller drives one endpoint: it serializes payloads with the injected codec,
// sends them through the invoker, and reduces the streamed response using the
// endpoint's line decoder.
type Caller struct {
	desc    Descriptor
	invoker Invoker
	codec   jsoncodec.Codec
	decoder LineDecoder
	log     *zap.SugaredLogger
}

// NewCaller builds a caller for one endpoint. A nil invoker, codec, or logger
// falls back to the defaults.
func NewCaller(desc Descriptor, decoder LineDecoder, invoker Invoker, codec jsoncodec.Codec, log *zap.SugaredLogger) *Caller {
	if invoker == nil {
		invoker = NewRestyInvoker(desc.Timeout)
	}
	if codec == nil {
		codec = jsoncodec.New()
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Caller{
		desc:    desc,
		invoker: invoker,
		codec:   codec,
		decoder: decoder,
		log:     log,
	}
}

// CallSync performs the call and blocks until the response is complete.
func (c *Caller) CallSync(ctx context.Context, payload any) (*Result, error) {
	return c.CallStreaming(ctx, payload, nil)
}

// CallStreaming performs the call, additionally invoking sink on the calling
// goroutine for every success-path fragment as it is decoded.
func (c *Caller) CallStreaming(ctx context.Context, payload any, sink FragmentSink) (*Result, error) {
	var emit FragmentSink
	if sink != nil {
		emit = func(f Fragment) {
			if !f.Err {
				sink(f)
			}
		}
	}
	return c.run(ctx, payload, emit)
}

// run executes the whole protocol: serialize, invoke, classify, reduce. Every
// decoded fragment (error lines included) is forwarded to emit. The response
// stream is closed on every exit path.
func (c *Caller) run(ctx context.Context, payload any, emit FragmentSink) (*Result, error) {
	start := time.Now()

	body, err := c.codec.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}

	stream, status, err := c.invoker.Invoke(ctx, c.desc, body)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	var accumulated string
	if status == http.StatusUnauthorized {
		// The server does not reliably send a structured body for 401, so a
		// fixed message stands in and the body is left unread.
		if emit != nil {
			emit(Fragment{Text: unauthorizedMessage, Err: true})
		}
		accumulated = unauthorizedMessage
	} else {
		accumulated, err = reduceLines(stream, status, c.decoder, c.codec, emit)
		if err != nil {
			return nil, err
		}
	}

	if status != http.StatusOK {
		c.log.Warnf("endpoint %s returned status %d", c.desc.Suffix, status)
		return nil, &ProtocolError{StatusCode: status, Message: accumulated}
	}

	result := &Result{
		Response:           strings.TrimSpace(accumulated),
		ResponseTimeMillis: time.Since(start).Milliseconds(),
		HTTPStatusCode:     status,
	}
	if c.desc.Verbose {
		c.log.Infof("endpoint %s responded in %dms", c.desc.Suffix, result.ResponseTimeMillis)
	}
	return result, nil
}
