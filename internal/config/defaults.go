package config

const (
	defaultAPIBaseURL      = "https://api.bilibili.com"
	defaultPassportBaseURL = "https://passport.bilibili.com"
	defaultPageSize        = 20
	defaultRequestDelayMS  = 500
	defaultLLMBaseURL      = "https://api.openai.com/v1"
	defaultLLMModel        = "gpt-4o-mini"
	defaultLLMTimeout      = 60
	defaultBatchSize       = 10
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultStateDir        = "~/.local/share/favsort"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Bilibili: Bilibili{
			APIBaseURL:      defaultAPIBaseURL,
			PassportBaseURL: defaultPassportBaseURL,
			PageSize:        defaultPageSize,
			RequestDelayMS:  defaultRequestDelayMS,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			TimeoutSeconds: defaultLLMTimeout,
			BatchSize:      defaultBatchSize,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Paths: Paths{
			StateDir: defaultStateDir,
		},
	}
}
