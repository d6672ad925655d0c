package ollama

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"

	"github.com/samvad-hq/samvad-llm-client/pkg/httpclient"
)

// EncodeImageFile reads a local image and returns its base64 encoding, ready
// to be attached to a request's Images field.
func EncodeImageFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image file: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// EncodeImageURL fetches an image over HTTP and returns its base64 encoding.
func EncodeImageURL(ctx context.Context, client httpclient.Client, url string) (string, error) {
	resp, err := client.Get(ctx, url, nil)
	if err != nil {
		return "", fmt.Errorf("fetch image: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("fetch image: status %d from %s", resp.StatusCode(), url)
	}
	return base64.StdEncoding.EncodeToString(resp.Body()), nil
}
