package ollama

import (
	"testing"

	"github.com/samvad-hq/samvad-llm-client/pkg/jsoncodec"
)

func TestGenerateDecoderExtractsTokenAndDoneMarker(t *testing.T) {
	codec := jsoncodec.New()

	frag, err := GenerateDecoder{}.DecodeLine(codec, []byte(`{"response":"Hi","done":false}`))
	if err != nil {
		t.Fatalf("DecodeLine: %v", err)
	}
	if frag.Text != "Hi" || frag.Final {
		t.Fatalf("unexpected fragment %+v", frag)
	}

	frag, err = GenerateDecoder{}.DecodeLine(codec, []byte(`{"response":"","done":true,"total_duration":12}`))
	if err != nil {
		t.Fatalf("DecodeLine: %v", err)
	}
	if frag.Text != "" || !frag.Final {
		t.Fatalf("unexpected terminal fragment %+v", frag)
	}

	if _, err = (GenerateDecoder{}).DecodeLine(codec, []byte(`{"response": oops`)); err == nil {
		t.Fatalf("expected decode error for corrupt line")
	}
}

func TestChatDecoderExtractsAssistantDelta(t *testing.T) {
	codec := jsoncodec.New()

	frag, err := ChatDecoder{}.DecodeLine(codec, []byte(`{"message":{"role":"assistant","content":"Hey"},"done":false}`))
	if err != nil {
		t.Fatalf("DecodeLine: %v", err)
	}
	if frag.Text != "Hey" || frag.Final {
		t.Fatalf("unexpected fragment %+v", frag)
	}
}

func TestChatRequestBuilder(t *testing.T) {
	opts := NewOptionsBuilder().SetTemperature(0.2).SetNumCtx(2048).Build()

	req := NewChatRequestBuilder("tinyllama").
		WithMessage(RoleSystem, "be brief").
		WithMessage(RoleUser, "hello").
		WithOptions(opts).
		WithStreaming(true).
		Build()

	if req.Model != "tinyllama" {
		t.Fatalf("unexpected model %q", req.Model)
	}
	if len(req.Messages) != 2 || req.Messages[0].Role != RoleSystem || req.Messages[1].Content != "hello" {
		t.Fatalf("unexpected messages %+v", req.Messages)
	}
	if !req.Stream {
		t.Fatalf("expected streaming request")
	}
	if req.Options["temperature"] != 0.2 || req.Options["num_ctx"] != 2048 {
		t.Fatalf("unexpected options %+v", req.Options)
	}
}

func TestOptionsBuilderKeepsArbitraryExtras(t *testing.T) {
	opts := NewOptionsBuilder().
		SetTopK(40).
		SetTopP(0.9).
		Set("stop", []string{"###"}).
		Build()

	if opts["top_k"] != 40 || opts["top_p"] != 0.9 {
		t.Fatalf("unexpected options %+v", opts)
	}
	if _, ok := opts["stop"]; !ok {
		t.Fatalf("custom key missing from %+v", opts)
	}
}
