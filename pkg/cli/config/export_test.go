package config

// NewSlackForTest creates a Slack config for testing purposes
func NewSlackForTest(botToken, signingSecret string) *Slack {
	return &Slack{
		botToken:      botToken,
		signingSecret: signingSecret,
	}
}

// NewLLMForTest creates an LLM config for testing purposes
func NewLLMForTest(provider, projectID, apiKey string) *LLM {
	return &LLM{
		provider:  provider,
		projectID: projectID,
		location:  "us-central1",
		apiKey:    apiKey,
	}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, dataURL string) *Repository {
	return &Repository{
		backend: backend,
		dataURL: dataURL,
	}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: output,
	}
}

// SetPath sets the --config value
func (a *AppConfig) SetPath(path string) {
	a.path = path
}
