package endpoint

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/samvad-hq/samvad-llm-client/pkg/jsoncodec"
)

// testDecoder decodes the completion-style stream shape used by the mocked
// servers in this file.
type testDecoder struct{}

func (testDecoder) DecodeLine(codec jsoncodec.Codec, line []byte) (Fragment, error) {
	var parsed struct {
		Response string `json:"response"`
		Done     bool   `json:"done"`
	}
	if err := codec.Unmarshal(line, &parsed); err != nil {
		return Fragment{}, err
	}
	return Fragment{Text: parsed.Response, Final: parsed.Done}, nil
}

// countingStream wraps a reader and counts Close calls.
type countingStream struct {
	io.Reader
	closed int
}

func (s *countingStream) Close() error {
	s.closed++
	return nil
}

// stubInvoker serves a fresh body per call and records the streams it handed
// out so tests can verify release behavior.
type stubInvoker struct {
	status  int
	body    func() io.Reader
	err     error
	calls   int
	streams []*countingStream
	lastGot []byte
}

func (s *stubInvoker) Invoke(_ context.Context, _ Descriptor, body []byte) (io.ReadCloser, int, error) {
	s.calls++
	s.lastGot = body
	if s.err != nil {
		return nil, 0, s.err
	}
	stream := &countingStream{Reader: s.body()}
	s.streams = append(s.streams, stream)
	return stream, s.status, nil
}

func newTestCaller(inv Invoker) *Caller {
	desc := Descriptor{
		Host:    "http://127.0.0.1:11434",
		Suffix:  "/api/generate",
		Method:  "POST",
		Timeout: 2 * time.Second,
	}
	return NewCaller(desc, testDecoder{}, inv, nil, nil)
}

func linesBody(lines ...string) func() io.Reader {
	return func() io.Reader { return strings.NewReader(strings.Join(lines, "\n") + "\n") }
}

func TestCallSyncConcatenatesStreamedFragments(t *testing.T) {
	inv := &stubInvoker{status: 200, body: linesBody(
		`{"response":"Hello","done":false}`,
		`{"response":" world","done":false}`,
		`{"response":"","done":true}`,
	)}

	result, err := newTestCaller(inv).CallSync(context.Background(), map[string]string{"prompt": "hi"})
	if err != nil {
		t.Fatalf("CallSync: %v", err)
	}
	if result.Response != "Hello world" {
		t.Fatalf("unexpected response %q", result.Response)
	}
	if result.HTTPStatusCode != 200 {
		t.Fatalf("unexpected status %d", result.HTTPStatusCode)
	}
	if inv.streams[0].closed != 1 {
		t.Fatalf("stream closed %d times, want 1", inv.streams[0].closed)
	}
}

// chunkReader serves one prepared chunk per Read call so a test can observe
// exactly how far the stream was consumed.
type chunkReader struct {
	chunks []string
	next   int
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if r.next >= len(r.chunks) {
		return 0, io.EOF
	}
	n := copy(p, r.chunks[r.next])
	r.next++
	return n, nil
}

func TestCallSyncStopsReadingAtFinalMarker(t *testing.T) {
	reader := &chunkReader{chunks: []string{
		"{\"response\":\"a\",\"done\":false}\n",
		"{\"response\":\"b\",\"done\":true}\n",
		"{\"trailing\":\"metadata\"}\n",
	}}
	inv := &stubInvoker{status: 200, body: func() io.Reader { return reader }}

	result, err := newTestCaller(inv).CallSync(context.Background(), nil)
	if err != nil {
		t.Fatalf("CallSync: %v", err)
	}
	if result.Response != "ab" {
		t.Fatalf("unexpected response %q", result.Response)
	}
	if reader.next != 2 {
		t.Fatalf("consumed %d chunks, want 2 (trailing line must stay unread)", reader.next)
	}
}

func TestCallSyncSkipsFinalEmptyFragmentAndBlankLines(t *testing.T) {
	inv := &stubInvoker{status: 200, body: linesBody(
		`{"response":"token","done":false}`,
		``,
		`{"response":"","done":true}`,
	)}

	result, err := newTestCaller(inv).CallSync(context.Background(), nil)
	if err != nil {
		t.Fatalf("CallSync: %v", err)
	}
	if result.Response != "token" {
		t.Fatalf("unexpected response %q", result.Response)
	}
}

func TestCallSyncNotFoundRaisesProtocolError(t *testing.T) {
	inv := &stubInvoker{status: 404, body: linesBody(`{"error":"model 'x' not found"}`)}

	_, err := newTestCaller(inv).CallSync(context.Background(), nil)
	var protoErr *ProtocolError
	if !errors.As(err, &protoErr) {
		t.Fatalf("expected ProtocolError, got %v", err)
	}
	if protoErr.StatusCode != 404 {
		t.Fatalf("unexpected status %d", protoErr.StatusCode)
	}
	if !strings.Contains(protoErr.Message, "not found") {
		t.Fatalf("message %q does not mention not found", protoErr.Message)
	}
	if inv.streams[0].closed != 1 {
		t.Fatalf("stream closed %d times, want 1", inv.streams[0].closed)
	}
}

func TestCallSyncBadRequestConcatenatesErrorLines(t *testing.T) {
	inv := &stubInvoker{status: 400, body: linesBody(
		`{"error":"invalid option"}`,
		`{"error":"; missing prompt"}`,
	)}

	_, err := newTestCaller(inv).CallSync(context.Background(), nil)
	var protoErr *ProtocolError
	if !errors.As(err, &protoErr) {
		t.Fatalf("expected ProtocolError, got %v", err)
	}
	if protoErr.Message != "invalid option; missing prompt" {
		t.Fatalf("unexpected message %q", protoErr.Message)
	}
}

// mustNotRead fails the test on any read attempt.
type mustNotRead struct{ t *testing.T }

func (m mustNotRead) Read([]byte) (int, error) {
	m.t.Fatalf("response body must not be read")
	return 0, io.EOF
}

func TestCallSyncUnauthorizedIgnoresBody(t *testing.T) {
	inv := &stubInvoker{status: 401}
	inv.body = func() io.Reader { return mustNotRead{t: t} }

	_, err := newTestCaller(inv).CallSync(context.Background(), nil)
	var protoErr *ProtocolError
	if !errors.As(err, &protoErr) {
		t.Fatalf("expected ProtocolError, got %v", err)
	}
	if protoErr.Message != "Unauthorized" {
		t.Fatalf("unexpected message %q", protoErr.Message)
	}
	if inv.streams[0].closed != 1 {
		t.Fatalf("stream closed %d times, want 1", inv.streams[0].closed)
	}
}

func TestCallSyncOtherStatusAccumulatesRawLines(t *testing.T) {
	inv := &stubInvoker{status: 500, body: linesBody("internal failure")}

	_, err := newTestCaller(inv).CallSync(context.Background(), nil)
	var protoErr *ProtocolError
	if !errors.As(err, &protoErr) {
		t.Fatalf("expected ProtocolError, got %v", err)
	}
	if protoErr.Message != "internal failure" {
		t.Fatalf("unexpected message %q", protoErr.Message)
	}
}

func TestCallSyncCorruptLineFailsWholeCall(t *testing.T) {
	inv := &stubInvoker{status: 200, body: linesBody(
		`{"response":"ok","done":false}`,
		`{"response": truncated`,
	)}

	_, err := newTestCaller(inv).CallSync(context.Background(), nil)
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if inv.streams[0].closed != 1 {
		t.Fatalf("stream closed %d times, want 1", inv.streams[0].closed)
	}
}

// failingReader breaks mid-stream.
type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

func TestCallSyncBrokenStreamIsTransportError(t *testing.T) {
	inv := &stubInvoker{status: 200, body: func() io.Reader {
		return io.MultiReader(
			strings.NewReader("{\"response\":\"a\",\"done\":false}\n"),
			failingReader{err: errors.New("connection reset")},
		)
	}}

	_, err := newTestCaller(inv).CallSync(context.Background(), nil)
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if inv.streams[0].closed != 1 {
		t.Fatalf("stream closed %d times, want 1", inv.streams[0].closed)
	}
}

func TestCallSyncTransportFailurePropagates(t *testing.T) {
	inv := &stubInvoker{err: &TransportError{Op: "request", Cause: errors.New("connection refused")}}

	_, err := newTestCaller(inv).CallSync(context.Background(), nil)
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

func TestCallSyncIsIdempotent(t *testing.T) {
	inv := &stubInvoker{status: 200, body: linesBody(
		`{"response":"same","done":false}`,
		`{"response":" answer","done":true}`,
	)}
	caller := newTestCaller(inv)

	first, err := caller.CallSync(context.Background(), nil)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := caller.CallSync(context.Background(), nil)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if first.Response != second.Response || first.HTTPStatusCode != second.HTTPStatusCode {
		t.Fatalf("results differ: %q/%d vs %q/%d",
			first.Response, first.HTTPStatusCode, second.Response, second.HTTPStatusCode)
	}
	for i, stream := range inv.streams {
		if stream.closed != 1 {
			t.Fatalf("stream %d closed %d times, want 1", i, stream.closed)
		}
	}
}

func TestCallStreamingInvokesSinkPerFragment(t *testing.T) {
	inv := &stubInvoker{status: 200, body: linesBody(
		`{"response":"a","done":false}`,
		`{"response":"b","done":false}`,
		`{"response":"","done":true}`,
	)}

	var seen []string
	sink := func(f Fragment) { seen = append(seen, f.Text) }

	result, err := newTestCaller(inv).CallStreaming(context.Background(), nil, sink)
	if err != nil {
		t.Fatalf("CallStreaming: %v", err)
	}
	if result.Response != "ab" {
		t.Fatalf("unexpected response %q", result.Response)
	}
	want := []string{"a", "b", ""}
	if len(seen) != len(want) {
		t.Fatalf("sink saw %d fragments, want %d", len(seen), len(want))
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("fragment %d = %q, want %q", i, seen[i], want[i])
		}
	}
}

func TestCallStreamingSinkSkipsErrorFragments(t *testing.T) {
	inv := &stubInvoker{status: 404, body: linesBody(`{"error":"model 'x' not found"}`)}

	called := false
	_, err := newTestCaller(inv).CallStreaming(context.Background(), nil, func(Fragment) { called = true })
	if err == nil {
		t.Fatalf("expected protocol error")
	}
	if called {
		t.Fatalf("sink must not receive error fragments")
	}
}
