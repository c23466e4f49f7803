package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable. Credential and LLM key
// presence are checked at the commands that need them, so 'favsort login'
// can run against an empty config.
func (c *Config) Validate() error {
	if err := c.validateBilibili(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateBilibili() error {
	if c.Bilibili.PageSize < 1 || c.Bilibili.PageSize > 50 {
		return errors.New("bilibili.page_size must be between 1 and 50")
	}
	if !strings.HasPrefix(c.Bilibili.APIBaseURL, "http") {
		return fmt.Errorf("bilibili.api_base_url %q is not an http(s) URL", c.Bilibili.APIBaseURL)
	}
	if !strings.HasPrefix(c.Bilibili.PassportBaseURL, "http") {
		return fmt.Errorf("bilibili.passport_base_url %q is not an http(s) URL", c.Bilibili.PassportBaseURL)
	}
	return nil
}

func (c *Config) validateLLM() error {
	if !strings.HasPrefix(c.LLM.BaseURL, "http") {
		return fmt.Errorf("llm.base_url %q is not an http(s) URL", c.LLM.BaseURL)
	}
	if c.LLM.BatchSize > 100 {
		return errors.New("llm.batch_size must be 100 or fewer; the prompt embeds every item in the batch")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
