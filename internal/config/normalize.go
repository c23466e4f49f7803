package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeBilibili()
	c.normalizeLLM()
	c.normalizeLogging()
	return c.normalizePaths()
}

func (c *Config) normalizeBilibili() {
	c.Bilibili.Cookie = strings.TrimSpace(c.Bilibili.Cookie)
	if cookie := strings.TrimSpace(os.Getenv("BILIBILI_COOKIE")); cookie != "" {
		c.Bilibili.Cookie = cookie
	}
	c.Bilibili.APIBaseURL = normalizeBaseURL(c.Bilibili.APIBaseURL, defaultAPIBaseURL)
	c.Bilibili.PassportBaseURL = normalizeBaseURL(c.Bilibili.PassportBaseURL, defaultPassportBaseURL)
	if c.Bilibili.PageSize <= 0 {
		c.Bilibili.PageSize = defaultPageSize
	}
	if c.Bilibili.RequestDelayMS < 0 {
		c.Bilibili.RequestDelayMS = defaultRequestDelayMS
	}
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if key := strings.TrimSpace(os.Getenv("FAVSORT_LLM_API_KEY")); key != "" {
		c.LLM.APIKey = key
	}
	c.LLM.BaseURL = normalizeBaseURL(c.LLM.BaseURL, defaultLLMBaseURL)
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeout
	}
	if c.LLM.BatchSize <= 0 {
		c.LLM.BatchSize = defaultBatchSize
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	expanded, err := ExpandPath(c.Paths.StateDir)
	if err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	c.Paths.StateDir = expanded
	return nil
}

func normalizeBaseURL(value, fallback string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(value), "/")
	if trimmed == "" {
		return fallback
	}
	return trimmed
}
