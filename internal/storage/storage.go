// Package storage provides the local model-detail cache abstraction.
package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-llm-client/pkg/ollama"
)

// Store caches show-model responses keyed by model name.
type Store interface {
	Close() error
	GetModelDetail(name string) (*ollama.ModelDetail, bool, error)
	PutModelDetail(name string, detail *ollama.ModelDetail) error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	DetailTTL       time.Duration
	CleanupInterval time.Duration
}

const (
	defaultDetailTTL       = 24 * time.Hour
	defaultCleanupInterval = 6 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.DetailTTL <= 0 {
		opts.DetailTTL = defaultDetailTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error { return nil }

func (noopStore) GetModelDetail(string) (*ollama.ModelDetail, bool, error) { return nil, false, nil }

func (noopStore) PutModelDetail(string, *ollama.ModelDetail) error { return nil }
