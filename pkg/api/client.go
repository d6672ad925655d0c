// Package api exposes the user-facing client for a model server: model
// management, embeddings, and the streaming generate/chat operations built on
// the endpoint engine.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/samvad-hq/samvad-llm-client/pkg/endpoint"
	"github.com/samvad-hq/samvad-llm-client/pkg/httpclient"
	"github.com/samvad-hq/samvad-llm-client/pkg/jsoncodec"
	"github.com/samvad-hq/samvad-llm-client/pkg/ollama"
)

// DefaultHost is used when no host is configured.
const DefaultHost = "http://127.0.0.1:11434"

const defaultRequestTimeout = 10 * time.Second

// ModelCache stores show-model responses so repeated lookups can skip the
// server. Implementations decide retention.
type ModelCache interface {
	GetModelDetail(name string) (*ollama.ModelDetail, bool, error)
	PutModelDetail(name string, detail *ollama.ModelDetail) error
}

// Config holds client construction options. Zero values fall back to
// defaults; the interface fields exist so tests and embedders can inject
// their own transport, codec, logger and cache.
type Config struct {
	Host           string
	RequestTimeout time.Duration
	Verbose        bool
	Username       string
	Password       string

	HTTPClient httpclient.Client
	Invoker    endpoint.Invoker
	Codec      jsoncodec.Codec
	Logger     *zap.SugaredLogger
	ModelCache ModelCache
}

// Client talks to one model server.
type Client struct {
	host    string
	timeout time.Duration
	verbose bool
	auth    *endpoint.BasicAuth

	http    httpclient.Client
	invoker endpoint.Invoker
	codec   jsoncodec.Codec
	log     *zap.SugaredLogger
	cache   ModelCache
}

// NewClient builds a client from cfg, filling in defaults for any zero
// values.
func NewClient(cfg Config) *Client {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = httpclient.NewRestyClient(cfg.RequestTimeout)
	}
	if cfg.Invoker == nil {
		cfg.Invoker = endpoint.NewRestyInvoker(cfg.RequestTimeout)
	}
	if cfg.Codec == nil {
		cfg.Codec = jsoncodec.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop().Sugar()
	}

	var auth *endpoint.BasicAuth
	if cfg.Username != "" {
		auth = &endpoint.BasicAuth{Username: cfg.Username, Password: cfg.Password}
	}

	return &Client{
		host:    strings.TrimSuffix(cfg.Host, "/"),
		timeout: cfg.RequestTimeout,
		verbose: cfg.Verbose,
		auth:    auth,
		http:    cfg.HTTPClient,
		invoker: cfg.Invoker,
		codec:   cfg.Codec,
		log:     cfg.Logger,
		cache:   cfg.ModelCache,
	}
}

// caller builds the streaming engine for one endpoint suffix.
func (c *Client) caller(suffix string, decoder endpoint.LineDecoder) *endpoint.Caller {
	desc := endpoint.Descriptor{
		Host:    c.host,
		Suffix:  suffix,
		Method:  http.MethodPost,
		Auth:    c.auth,
		Timeout: c.timeout,
		Verbose: c.verbose,
	}
	return endpoint.NewCaller(desc, decoder, c.invoker, c.codec, c.log)
}

// headers returns the shared headers for one-shot management calls.
func (c *Client) headers() map[string]string {
	h := map[string]string{"Accept": "application/json"}
	if c.auth != nil {
		h["Authorization"] = c.auth.HeaderValue()
	}
	return h
}

// Ping reports whether the server is reachable.
func (c *Client) Ping(ctx context.Context) bool {
	resp, err := c.http.Get(ctx, c.host+"/api/tags", c.headers())
	return err == nil && resp.StatusCode() == http.StatusOK
}

// ListModels returns the models available on the server.
func (c *Client) ListModels(ctx context.Context) ([]ollama.ModelInfo, error) {
	resp, err := c.http.Get(ctx, c.host+"/api/tags", c.headers())
	if err != nil {
		return nil, &endpoint.TransportError{Op: "list models", Cause: err}
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, &endpoint.ProtocolError{StatusCode: resp.StatusCode(), Message: string(resp.Body())}
	}
	var listing ollama.ListModelsResponse
	if err := c.codec.Unmarshal(resp.Body(), &listing); err != nil {
		return nil, fmt.Errorf("decode model listing: %w", err)
	}
	return listing.Models, nil
}

// PullModel downloads a model from the library onto the server.
func (c *Client) PullModel(ctx context.Context, name string) error {
	resp, err := c.http.Do(ctx, http.MethodPost, c.host+"/api/pull", c.headers(), ollama.ModelRequest{Name: name})
	if err != nil {
		return &endpoint.TransportError{Op: "pull model", Cause: err}
	}
	if resp.StatusCode() != http.StatusOK {
		return &endpoint.ProtocolError{StatusCode: resp.StatusCode(), Message: string(resp.Body())}
	}
	return nil
}

// GetModelDetails fetches model metadata, consulting the configured cache
// first.
func (c *Client) GetModelDetails(ctx context.Context, name string) (*ollama.ModelDetail, error) {
	if c.cache != nil {
		detail, ok, err := c.cache.GetModelDetail(name)
		if err != nil {
			c.log.Warnf("model cache lookup failed for %q: %v", name, err)
		} else if ok {
			return detail, nil
		}
	}

	resp, err := c.http.Do(ctx, http.MethodPost, c.host+"/api/show", c.headers(), ollama.ModelRequest{Name: name})
	if err != nil {
		return nil, &endpoint.TransportError{Op: "show model", Cause: err}
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, &endpoint.ProtocolError{StatusCode: resp.StatusCode(), Message: string(resp.Body())}
	}
	var detail ollama.ModelDetail
	if err := c.codec.Unmarshal(resp.Body(), &detail); err != nil {
		return nil, fmt.Errorf("decode model detail: %w", err)
	}

	if c.cache != nil {
		if err := c.cache.PutModelDetail(name, &detail); err != nil {
			c.log.Warnf("model cache store failed for %q: %v", name, err)
		}
	}
	return &detail, nil
}

// CreateModelWithFilePath creates a custom model from a modelfile present on
// the server.
func (c *Client) CreateModelWithFilePath(ctx context.Context, name, modelFilePath string) error {
	return c.createModel(ctx, ollama.CreateModelFilePathRequest{Name: name, Path: modelFilePath})
}

// CreateModelWithModelFileContents creates a custom model from inline
// modelfile contents.
func (c *Client) CreateModelWithModelFileContents(ctx context.Context, name, modelFileContents string) error {
	return c.createModel(ctx, ollama.CreateModelContentsRequest{Name: name, Modelfile: modelFileContents})
}

func (c *Client) createModel(ctx context.Context, payload any) error {
	resp, err := c.http.Do(ctx, http.MethodPost, c.host+"/api/create", c.headers(), payload)
	if err != nil {
		return &endpoint.TransportError{Op: "create model", Cause: err}
	}
	body := string(resp.Body())
	if resp.StatusCode() != http.StatusOK {
		return &endpoint.ProtocolError{StatusCode: resp.StatusCode(), Message: body}
	}
	// The server streams progress objects and reports failures inline with a
	// 200 status, so the body has to be inspected as well.
	if strings.Contains(body, "error") {
		return &endpoint.ProtocolError{StatusCode: resp.StatusCode(), Message: body}
	}
	if c.verbose {
		c.log.Infof("create model %s", strings.TrimSpace(body))
	}
	return nil
}

// DeleteModel removes a model from the server. When ignoreIfNotPresent is
// set, a missing model is not an error.
func (c *Client) DeleteModel(ctx context.Context, name string, ignoreIfNotPresent bool) error {
	resp, err := c.http.Do(ctx, http.MethodDelete, c.host+"/api/delete", c.headers(), ollama.ModelRequest{Name: name})
	if err != nil {
		return &endpoint.TransportError{Op: "delete model", Cause: err}
	}
	body := string(resp.Body())
	if resp.StatusCode() == http.StatusNotFound && ignoreIfNotPresent && strings.Contains(body, "not found") {
		return nil
	}
	if resp.StatusCode() != http.StatusOK {
		return &endpoint.ProtocolError{StatusCode: resp.StatusCode(), Message: body}
	}
	return nil
}

// GenerateEmbeddings embeds the prompt with the given model.
func (c *Client) GenerateEmbeddings(ctx context.Context, model, prompt string) ([]float64, error) {
	payload := ollama.EmbeddingsRequest{Model: model, Prompt: prompt}
	resp, err := c.http.Do(ctx, http.MethodPost, c.host+"/api/embeddings", c.headers(), payload)
	if err != nil {
		return nil, &endpoint.TransportError{Op: "embeddings", Cause: err}
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, &endpoint.ProtocolError{StatusCode: resp.StatusCode(), Message: string(resp.Body())}
	}
	var parsed ollama.EmbeddingsResponse
	if err := c.codec.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, fmt.Errorf("decode embeddings: %w", err)
	}
	return parsed.Embedding, nil
}

// Generate asks the model to complete the prompt. When sink is non-nil the
// reply is streamed and sink receives each fragment on the calling goroutine;
// otherwise the server sends the whole reply at once.
func (c *Client) Generate(ctx context.Context, model, prompt string, opts ollama.Options, sink endpoint.FragmentSink) (*endpoint.Result, error) {
	req := ollama.GenerateRequest{Model: model, Prompt: prompt, Options: opts}
	return c.generate(ctx, req, sink)
}

// GenerateWithImages completes a prompt with base64-encoded images attached.
func (c *Client) GenerateWithImages(ctx context.Context, model, prompt string, images []string, opts ollama.Options, sink endpoint.FragmentSink) (*endpoint.Result, error) {
	req := ollama.GenerateRequest{Model: model, Prompt: prompt, Images: images, Options: opts}
	return c.generate(ctx, req, sink)
}

// GenerateWithImageFiles encodes the given local images and completes the
// prompt with them.
func (c *Client) GenerateWithImageFiles(ctx context.Context, model, prompt string, imagePaths []string, opts ollama.Options, sink endpoint.FragmentSink) (*endpoint.Result, error) {
	images := make([]string, 0, len(imagePaths))
	for _, path := range imagePaths {
		encoded, err := ollama.EncodeImageFile(path)
		if err != nil {
			return nil, err
		}
		images = append(images, encoded)
	}
	return c.GenerateWithImages(ctx, model, prompt, images, opts, sink)
}

// GenerateWithImageURLs fetches and encodes the given images and completes
// the prompt with them.
func (c *Client) GenerateWithImageURLs(ctx context.Context, model, prompt string, imageURLs []string, opts ollama.Options, sink endpoint.FragmentSink) (*endpoint.Result, error) {
	images := make([]string, 0, len(imageURLs))
	for _, url := range imageURLs {
		encoded, err := ollama.EncodeImageURL(ctx, c.http, url)
		if err != nil {
			return nil, err
		}
		images = append(images, encoded)
	}
	return c.GenerateWithImages(ctx, model, prompt, images, opts, sink)
}

func (c *Client) generate(ctx context.Context, req ollama.GenerateRequest, sink endpoint.FragmentSink) (*endpoint.Result, error) {
	caller := c.caller("/api/generate", ollama.GenerateDecoder{})
	if sink != nil {
		req.Stream = true
		return caller.CallStreaming(ctx, req, sink)
	}
	return caller.CallSync(ctx, req)
}

// GenerateAsync starts a completion on a background goroutine and returns a
// handle for polling progress and the final result.
func (c *Client) GenerateAsync(ctx context.Context, model, prompt string) *endpoint.AsyncHandle {
	req := ollama.GenerateRequest{Model: model, Prompt: prompt, Stream: true}
	return c.caller("/api/generate", ollama.GenerateDecoder{}).CallAsync(ctx, req)
}

// Chat sends a message history to the model and returns the reply along with
// the updated history. A non-nil sink switches the call to streaming.
func (c *Client) Chat(ctx context.Context, req ollama.ChatRequest, sink endpoint.FragmentSink) (*ollama.ChatResult, error) {
	caller := c.caller("/api/chat", ollama.ChatDecoder{})
	var result *endpoint.Result
	var err error
	if sink != nil {
		req.Stream = true
		result, err = caller.CallStreaming(ctx, req, sink)
	} else {
		result, err = caller.CallSync(ctx, req)
	}
	if err != nil {
		return nil, err
	}
	return ollama.NewChatResult(result, req.Messages), nil
}

// ChatAsync starts a chat call on a background goroutine.
func (c *Client) ChatAsync(ctx context.Context, req ollama.ChatRequest) *endpoint.AsyncHandle {
	req.Stream = true
	return c.caller("/api/chat", ollama.ChatDecoder{}).CallAsync(ctx, req)
}
