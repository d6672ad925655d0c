// Package profiles loads named server profiles (YAML/JSON) so one tool can
// target several model servers.
package profiles

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Profile describes one server a client can be pointed at.
type Profile struct {
	ID             string `json:"id" yaml:"id"`
	Host           string `json:"host" yaml:"host"`
	Username       string `json:"username" yaml:"username"`
	Password       string `json:"password" yaml:"password"`
	TimeoutSeconds int64  `json:"timeout_seconds" yaml:"timeout_seconds"`
	DefaultModel   string `json:"default_model" yaml:"default_model"`
	Verbose        bool   `json:"verbose" yaml:"verbose"`
	Default        bool   `json:"default" yaml:"default"`
}

type registryFile struct {
	Profiles []Profile `json:"profiles" yaml:"profiles"`
}

// Registry holds the loaded profiles indexed by id.
type Registry struct {
	profiles []Profile
	index    map[string]Profile
}

// Load reads a profile registry from a YAML or JSON file.
func Load(path string) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("profiles file path is empty")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profiles file: %w", err)
	}

	var reg registryFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(raw, &reg)
	default:
		err = yaml.Unmarshal(raw, &reg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse profiles file: %w", err)
	}
	if len(reg.Profiles) == 0 {
		return nil, errors.New("profiles file contains no profile entries")
	}

	idx := make(map[string]Profile, len(reg.Profiles))
	for i, p := range reg.Profiles {
		p.ID = strings.TrimSpace(p.ID)
		p.Host = strings.TrimSpace(p.Host)
		if p.ID == "" {
			return nil, fmt.Errorf("profile[%d]: id is empty", i)
		}
		if p.Host == "" {
			return nil, fmt.Errorf("profile %q: host is empty", p.ID)
		}
		if _, exists := idx[p.ID]; exists {
			return nil, fmt.Errorf("duplicate profile id %q", p.ID)
		}
		reg.Profiles[i] = p
		idx[p.ID] = p
	}

	return &Registry{profiles: reg.Profiles, index: idx}, nil
}

// All returns a copy of the loaded profiles.
func (r *Registry) All() []Profile {
	if r == nil || len(r.profiles) == 0 {
		return nil
	}
	out := make([]Profile, len(r.profiles))
	copy(out, r.profiles)
	return out
}

// Get returns the profile with the given id.
func (r *Registry) Get(id string) (Profile, bool) {
	if r == nil {
		return Profile{}, false
	}
	p, ok := r.index[strings.TrimSpace(id)]
	return p, ok
}

// Default returns the profile marked default, falling back to the first
// entry.
func (r *Registry) Default() (Profile, bool) {
	if r == nil || len(r.profiles) == 0 {
		return Profile{}, false
	}
	for _, p := range r.profiles {
		if p.Default {
			return p, true
		}
	}
	return r.profiles[0], true
}
