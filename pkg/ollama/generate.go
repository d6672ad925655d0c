// Package ollama defines the request and response payloads of the model
// server's API, the per-endpoint stream decoders, and small builders for
// assembling requests.
package ollama

import (
	"github.com/samvad-hq/samvad-llm-client/pkg/endpoint"
	"github.com/samvad-hq/samvad-llm-client/pkg/jsoncodec"
)

// GenerateRequest is the payload for the completion endpoint.
type GenerateRequest struct {
	Model   string   `json:"model"`
	Prompt  string   `json:"prompt"`
	Images  []string `json:"images,omitempty"`
	Options Options  `json:"options,omitempty"`
	Stream  bool     `json:"stream"`
}

// generateStreamLine is one line of a streamed completion response.
type generateStreamLine struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// GenerateDecoder decodes completion stream lines.
type GenerateDecoder struct{}

// DecodeLine extracts the response token and the done marker from one line.
func (GenerateDecoder) DecodeLine(codec jsoncodec.Codec, line []byte) (endpoint.Fragment, error) {
	var parsed generateStreamLine
	if err := codec.Unmarshal(line, &parsed); err != nil {
		return endpoint.Fragment{}, err
	}
	return endpoint.Fragment{Text: parsed.Response, Final: parsed.Done}, nil
}
