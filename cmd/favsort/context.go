package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"favsort/internal/config"
	"favsort/internal/logging"
	"favsort/internal/services/bilibili"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
		})
	})
	return c.logger, c.loggerErr
}

// resolveCookie returns the active login cookie: the persisted credential
// from a prior `favsort login` wins, the configured cookie is the fallback.
func (c *commandContext) resolveCookie() (string, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	store := bilibili.NewCredentialStore(cfg.CredentialStatePath())
	cookie, err := store.Load()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(cookie) == "" {
		cookie = cfg.Bilibili.Cookie
	}
	if strings.TrimSpace(cookie) == "" {
		return "", fmt.Errorf("no login credential found; run 'favsort login' or set bilibili.cookie in the config")
	}
	return cookie, nil
}

func (c *commandContext) catalogClient() (*bilibili.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	cookie, err := c.resolveCookie()
	if err != nil {
		return nil, err
	}
	cred, err := bilibili.ParseCookie(cookie)
	if err != nil {
		return nil, fmt.Errorf("parse login cookie: %w", err)
	}
	return bilibili.NewClient(cred, logger,
		bilibili.WithBaseURL(cfg.Bilibili.APIBaseURL),
		bilibili.WithPageSize(cfg.Bilibili.PageSize),
		bilibili.WithRequestDelay(time.Duration(cfg.Bilibili.RequestDelayMS)*time.Millisecond),
	)
}
