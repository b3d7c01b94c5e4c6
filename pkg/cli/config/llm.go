package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/m-mizutani/gollem/llm/openai"
	"github.com/urfave/cli/v3"
)

// LLM providers
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// LLM holds configuration for the language model client
type LLM struct {
	provider  string
	projectID string
	location  string
	apiKey    string
	model     string
}

// Flags returns CLI flags for LLM configuration
func (x *LLM) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "llm-provider",
			Usage:       "LLM provider (gemini or openai). Empty disables the language model",
			Category:    "LLM",
			Sources:     cli.EnvVars("KAIROS_LLM_PROVIDER"),
			Destination: &x.provider,
		},
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini API",
			Category:    "LLM",
			Sources:     cli.EnvVars("KAIROS_GEMINI_PROJECT"),
			Destination: &x.projectID,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini API",
			Category:    "LLM",
			Value:       "us-central1",
			Sources:     cli.EnvVars("KAIROS_GEMINI_LOCATION"),
			Destination: &x.location,
		},
		&cli.StringFlag{
			Name:        "openai-api-key",
			Usage:       "OpenAI API key",
			Category:    "LLM",
			Sources:     cli.EnvVars("KAIROS_OPENAI_API_KEY"),
			Destination: &x.apiKey,
		},
		&cli.StringFlag{
			Name:        "llm-model",
			Usage:       "Model name. Empty uses the provider default",
			Category:    "LLM",
			Sources:     cli.EnvVars("KAIROS_LLM_MODEL"),
			Destination: &x.model,
		},
	}
}

func (x LLM) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("provider", x.provider),
		slog.String("project_id", x.projectID),
		slog.String("location", x.location),
		slog.Int("api_key.len", len(x.apiKey)),
		slog.String("model", x.model),
	)
}

// Configure creates the LLM client for the configured provider.
// Returns nil if no provider is configured (language features are disabled).
func (x *LLM) Configure(ctx context.Context) (gollem.LLMClient, error) {
	switch x.provider {
	case "":
		return nil, nil

	case ProviderGemini:
		if x.projectID == "" {
			return nil, goerr.Wrap(ErrMissingRequired, "gemini-project is required for gemini provider", goerr.V(FieldKey, "gemini-project"))
		}
		var opts []gemini.Option
		if x.model != "" {
			opts = append(opts, gemini.WithModel(x.model))
		}
		client, err := gemini.New(ctx, x.projectID, x.location, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create Gemini client")
		}
		return client, nil

	case ProviderOpenAI:
		if x.apiKey == "" {
			return nil, goerr.Wrap(ErrMissingRequired, "openai-api-key is required for openai provider", goerr.V(FieldKey, "openai-api-key"))
		}
		var opts []openai.Option
		if x.model != "" {
			opts = append(opts, openai.WithModel(x.model))
		}
		client, err := openai.New(ctx, x.apiKey, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create OpenAI client")
		}
		return client, nil

	default:
		return nil, goerr.Wrap(ErrInvalidProvider, "unknown LLM provider", goerr.V(ValueKey, x.provider))
	}
}
