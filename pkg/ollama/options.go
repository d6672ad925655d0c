package ollama

// Options is the opaque model-parameter map sent with generate and chat
// requests. Keys follow the server's modelfile parameter names.
type Options map[string]any

// OptionsBuilder assembles an Options map with the commonly used parameters.
type OptionsBuilder struct {
	opts Options
}

// NewOptionsBuilder starts an empty options map.
func NewOptionsBuilder() *OptionsBuilder {
	return &OptionsBuilder{opts: Options{}}
}

// SetTemperature controls sampling creativity; higher values answer more
// creatively.
func (b *OptionsBuilder) SetTemperature(v float64) *OptionsBuilder {
	b.opts["temperature"] = v
	return b
}

// SetTopK limits sampling to the k most likely tokens.
func (b *OptionsBuilder) SetTopK(v int) *OptionsBuilder {
	b.opts["top_k"] = v
	return b
}

// SetTopP enables nucleus sampling with the given cumulative probability.
func (b *OptionsBuilder) SetTopP(v float64) *OptionsBuilder {
	b.opts["top_p"] = v
	return b
}

// SetRepeatPenalty penalizes repeated tokens.
func (b *OptionsBuilder) SetRepeatPenalty(v float64) *OptionsBuilder {
	b.opts["repeat_penalty"] = v
	return b
}

// SetSeed fixes the sampling seed for reproducible output.
func (b *OptionsBuilder) SetSeed(v int) *OptionsBuilder {
	b.opts["seed"] = v
	return b
}

// SetNumCtx sets the context window size in tokens.
func (b *OptionsBuilder) SetNumCtx(v int) *OptionsBuilder {
	b.opts["num_ctx"] = v
	return b
}

// SetMirostat enables mirostat sampling (0, 1 or 2).
func (b *OptionsBuilder) SetMirostat(v int) *OptionsBuilder {
	b.opts["mirostat"] = v
	return b
}

// Set stores any additional parameter not covered by the typed setters.
func (b *OptionsBuilder) Set(key string, value any) *OptionsBuilder {
	b.opts[key] = value
	return b
}

// Build returns the assembled options map.
func (b *OptionsBuilder) Build() Options { return b.opts }
