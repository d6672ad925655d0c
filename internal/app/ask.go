package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/samvad-hq/samvad-llm-client/internal/config"
	"github.com/samvad-hq/samvad-llm-client/internal/storage"
	"github.com/samvad-hq/samvad-llm-client/pkg/api"
	"github.com/samvad-hq/samvad-llm-client/pkg/endpoint"
	"github.com/samvad-hq/samvad-llm-client/pkg/ollama"
	"github.com/samvad-hq/samvad-llm-client/pkg/profiles"
)

// Runner wires config, profiles, the model cache and the API client into the
// ask command.
type Runner struct {
	cfg          *config.Config
	log          *zap.SugaredLogger
	client       *api.Client
	store        storage.Store
	defaultModel string
}

// NewRunner builds the runner. profileID selects an entry from the configured
// profiles file; when empty, either the file's default profile or the plain
// config values are used.
func NewRunner(cfg *config.Config, log *zap.SugaredLogger, profileID string) (*Runner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	host := cfg.Host
	timeout := cfg.RequestTimeout
	username := cfg.AuthUsername
	password := cfg.AuthPassword
	verbose := cfg.Verbose
	defaultModel := ""

	if cfg.ProfilesFile != "" {
		reg, err := profiles.Load(cfg.ProfilesFile)
		if err != nil {
			return nil, fmt.Errorf("load profiles: %w", err)
		}
		var profile profiles.Profile
		var ok bool
		if profileID != "" {
			if profile, ok = reg.Get(profileID); !ok {
				return nil, fmt.Errorf("unknown profile %q", profileID)
			}
		} else {
			profile, ok = reg.Default()
		}
		if ok {
			host = profile.Host
			if profile.TimeoutSeconds > 0 {
				timeout = time.Duration(profile.TimeoutSeconds) * time.Second
			}
			if profile.Username != "" {
				username = profile.Username
				password = profile.Password
			}
			verbose = verbose || profile.Verbose
			defaultModel = profile.DefaultModel
			log.Infow("profile selected", "profile", profile.ID, "host", host)
		}
	} else if profileID != "" {
		return nil, fmt.Errorf("profile %q requested but no profiles file configured", profileID)
	}

	store, err := storage.NewStore(cfg.CacheType, cfg.BBoltPath, storage.Options{
		DetailTTL:       cfg.CacheTTL,
		CleanupInterval: cfg.CacheCleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("init model cache: %w", err)
	}

	client := api.NewClient(api.Config{
		Host:           host,
		RequestTimeout: timeout,
		Verbose:        verbose,
		Username:       username,
		Password:       password,
		Logger:         log,
		ModelCache:     store,
	})

	return &Runner{
		cfg:          cfg,
		log:          log,
		client:       client,
		store:        store,
		defaultModel: defaultModel,
	}, nil
}

// Run sends the prompt and streams the reply to stdout. chatMode routes the
// prompt through the chat endpoint as a single user turn.
func (r *Runner) Run(ctx context.Context, model, prompt string, chatMode bool) error {
	if r == nil || r.client == nil {
		return fmt.Errorf("runner is not initialized")
	}
	if model == "" {
		model = r.defaultModel
	}
	if model == "" {
		return fmt.Errorf("no model given and no default model configured")
	}

	sink := func(f endpoint.Fragment) {
		fmt.Fprint(os.Stdout, f.Text)
	}

	var elapsed int64
	if chatMode {
		req := ollama.NewChatRequestBuilder(model).
			WithMessage(ollama.RoleUser, prompt).
			Build()
		result, err := r.client.Chat(ctx, req, sink)
		if err != nil {
			return fmt.Errorf("chat: %w", err)
		}
		elapsed = result.ResponseTimeMillis
	} else {
		result, err := r.client.Generate(ctx, model, prompt, nil, sink)
		if err != nil {
			return fmt.Errorf("generate: %w", err)
		}
		elapsed = result.ResponseTimeMillis
	}
	fmt.Fprintln(os.Stdout)

	r.log.Debugw("call finished", "model", model, "elapsed_ms", elapsed)
	return nil
}

// Close releases the model cache.
func (r *Runner) Close() {
	if r == nil || r.store == nil {
		return
	}
	if err := r.store.Close(); err != nil {
		r.log.Errorw("model cache close failed", "error", err)
	}
}
