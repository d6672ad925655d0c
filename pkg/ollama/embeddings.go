package ollama

// EmbeddingsRequest asks a model to embed the given prompt.
type EmbeddingsRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// EmbeddingsResponse carries the resulting vector.
type EmbeddingsResponse struct {
	Embedding []float64 `json:"embedding"`
}
