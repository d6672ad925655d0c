package ollama

import (
	"github.com/samvad-hq/samvad-llm-client/pkg/endpoint"
	"github.com/samvad-hq/samvad-llm-client/pkg/jsoncodec"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of a chat history.
type Message struct {
	Role    Role     `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

// ChatRequest is the payload for the chat endpoint.
type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Options  Options   `json:"options,omitempty"`
	Stream   bool      `json:"stream"`
}

// ChatResult pairs the completed call outcome with the updated message
// history: the request messages plus the newly produced assistant message.
type ChatResult struct {
	Response           string
	ResponseTimeMillis int64
	HTTPStatusCode     int
	History            []Message
}

// NewChatResult extends the request history with the assistant's reply.
func NewChatResult(result *endpoint.Result, requestMessages []Message) *ChatResult {
	history := make([]Message, 0, len(requestMessages)+1)
	history = append(history, requestMessages...)
	history = append(history, Message{Role: RoleAssistant, Content: result.Response})
	return &ChatResult{
		Response:           result.Response,
		ResponseTimeMillis: result.ResponseTimeMillis,
		HTTPStatusCode:     result.HTTPStatusCode,
		History:            history,
	}
}

// chatStreamLine is one line of a streamed chat response.
type chatStreamLine struct {
	Message Message `json:"message"`
	Done    bool    `json:"done"`
}

// ChatDecoder decodes chat stream lines.
type ChatDecoder struct{}

// DecodeLine extracts the assistant content delta and the done marker from
// one line.
func (ChatDecoder) DecodeLine(codec jsoncodec.Codec, line []byte) (endpoint.Fragment, error) {
	var parsed chatStreamLine
	if err := codec.Unmarshal(line, &parsed); err != nil {
		return endpoint.Fragment{}, err
	}
	return endpoint.Fragment{Text: parsed.Message.Content, Final: parsed.Done}, nil
}

// ChatRequestBuilder assembles a chat request message by message.
type ChatRequestBuilder struct {
	req ChatRequest
}

// NewChatRequestBuilder starts a request for the given model.
func NewChatRequestBuilder(model string) *ChatRequestBuilder {
	return &ChatRequestBuilder{req: ChatRequest{Model: model}}
}

// WithMessage appends a message with the given role and content.
func (b *ChatRequestBuilder) WithMessage(role Role, content string, images ...string) *ChatRequestBuilder {
	b.req.Messages = append(b.req.Messages, Message{Role: role, Content: content, Images: images})
	return b
}

// WithMessages replaces the message history.
func (b *ChatRequestBuilder) WithMessages(messages []Message) *ChatRequestBuilder {
	b.req.Messages = messages
	return b
}

// WithOptions attaches model parameters.
func (b *ChatRequestBuilder) WithOptions(opts Options) *ChatRequestBuilder {
	b.req.Options = opts
	return b
}

// WithStreaming requests an incrementally streamed reply.
func (b *ChatRequestBuilder) WithStreaming(stream bool) *ChatRequestBuilder {
	b.req.Stream = stream
	return b
}

// Build returns the assembled request.
func (b *ChatRequestBuilder) Build() ChatRequest { return b.req }
