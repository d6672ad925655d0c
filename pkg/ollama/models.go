package ollama

import "time"

// ModelInfo is one entry of the server's model listing.
type ModelInfo struct {
	Name       string    `json:"name"`
	Model      string    `json:"model"`
	ModifiedAt time.Time `json:"modified_at"`
	Size       int64     `json:"size"`
	Digest     string    `json:"digest"`
}

// ListModelsResponse is the body of the model listing endpoint.
type ListModelsResponse struct {
	Models []ModelInfo `json:"models"`
}

// ModelDetail is the body of the show-model endpoint.
type ModelDetail struct {
	License    string `json:"license"`
	Modelfile  string `json:"modelfile"`
	Parameters string `json:"parameters"`
	Template   string `json:"template"`
	System     string `json:"system"`
}

// ModelRequest addresses a single model by name for pull, show and delete.
type ModelRequest struct {
	Name string `json:"name"`
}

// CreateModelFilePathRequest creates a custom model from a modelfile that
// already exists on the server.
type CreateModelFilePathRequest struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// CreateModelContentsRequest creates a custom model from inline modelfile
// contents.
type CreateModelContentsRequest struct {
	Name      string `json:"name"`
	Modelfile string `json:"modelfile"`
}
