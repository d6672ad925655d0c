package endpoint

import (
	"bufio"
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/samvad-hq/samvad-llm-client/pkg/jsoncodec"
)

// Fragment is one decoded unit of a streamed response: a partial text token
// on the success path, or an error message on the error path.
type Fragment struct {
	Text  string
	Final bool
	Err   bool
}

// FragmentSink receives fragments as they are decoded, before they are folded
// into the accumulated response.
type FragmentSink func(Fragment)

// LineDecoder decodes one success-path response line into a fragment. Each
// endpoint supplies its own implementation since the response schema differs
// between them.
type LineDecoder interface {
	DecodeLine(codec jsoncodec.Codec, line []byte) (Fragment, error)
}

// errorEnvelope is the body shape the server uses for 404 and 400 responses.
type errorEnvelope struct {
	Error string `json:"error"`
}

const unauthorizedMessage = "Unauthorized"

// maxLineBytes bounds a single response line; model outputs can carry large
// context fields on the terminal line.
const maxLineBytes = 1 << 20

// reduceLines consumes the response stream line by line and folds it into the
// accumulated text. The status code selects the decoding policy once for the
// whole stream: 200 delegates to the endpoint's LineDecoder, 404/400 decode
// the error envelope, anything else accumulates raw line text. Reading stops
// at the first fragment marked final; trailing lines are intentionally left
// unread. A fragment that is final and carries no text is not appended.
func reduceLines(r io.Reader, status int, dec LineDecoder, codec jsoncodec.Codec, emit FragmentSink) (string, error) {
	var acc strings.Builder

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		if status != http.StatusOK {
			msg, err := errorLineText(codec, status, line)
			if err != nil {
				return "", err
			}
			if emit != nil {
				emit(Fragment{Text: msg, Err: true})
			}
			acc.WriteString(msg)
			continue
		}

		frag, err := dec.DecodeLine(codec, line)
		if err != nil {
			return "", &DecodeError{Line: string(line), Cause: err}
		}
		if emit != nil {
			emit(frag)
		}
		if !(frag.Final && frag.Text == "") {
			acc.WriteString(frag.Text)
		}
		if frag.Final {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return "", &TransportError{Op: "read response", Cause: err}
	}
	return acc.String(), nil
}

// errorLineText extracts the error message from one error-path line. 401 never
// reaches here: its body is not read at all.
func errorLineText(codec jsoncodec.Codec, status int, line []byte) (string, error) {
	switch status {
	case http.StatusNotFound, http.StatusBadRequest:
		var envelope errorEnvelope
		if err := codec.Unmarshal(line, &envelope); err != nil {
			return "", &DecodeError{Line: string(line), Cause: err}
		}
		return envelope.Error, nil
	default:
		return string(line), nil
	}
}
