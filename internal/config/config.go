// Package config provides YAML-based configuration loading for the task bot.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level bot configuration, loaded from taskbot.yaml.
type Config struct {
	Platform     string          `yaml:"platform"` // "discord", "slack", or "mock"
	Discord      DiscordConfig   `yaml:"discord"`
	Slack        SlackConfig     `yaml:"slack"`
	Roles        RolesConfig     `yaml:"roles"`
	DB           DBConfig        `yaml:"db"`
	Dashboard    DashboardConfig `yaml:"dashboard"`
	ReminderCron string          `yaml:"reminder_cron"` // 5-field cron; empty disables the daily reminder
}

// DiscordConfig holds Discord bot credentials.
type DiscordConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

// SlackConfig holds Slack Socket Mode credentials.
type SlackConfig struct {
	AppToken  string `yaml:"app_token"`
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

// RolesConfig maps the fixed roles to their actor channels. Doers are not
// listed here; they live in the doer directory and bind their own channel
// at registration time.
type RolesConfig struct {
	BossChannel string   `yaml:"boss_channel"`
	EAChannels  []string `yaml:"ea_channels"`
}

// DBConfig holds database connection settings.
type DBConfig struct {
	Driver   string `yaml:"driver"` // "mysql" (default) or "sqlite"
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	DSN      string `yaml:"dsn"` // overrides the assembled DSN when set
}

// DashboardConfig holds the REST dashboard settings.
type DashboardConfig struct {
	Port int `yaml:"port"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.DB.Driver == "" {
		c.DB.Driver = "mysql"
	}
	if c.DB.Host == "" {
		c.DB.Host = "127.0.0.1"
	}
	if c.DB.Port == 0 {
		c.DB.Port = 3306
	}
	if c.DB.User == "" {
		c.DB.User = "root"
	}
	if c.DB.Database == "" {
		c.DB.Database = "taskbot"
	}
	if c.Dashboard.Port == 0 {
		c.Dashboard.Port = 8080
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	switch c.Platform {
	case "discord":
		if c.Discord.BotToken == "" {
			errs = append(errs, "discord.bot_token is required")
		}
	case "slack":
		if c.Slack.AppToken == "" {
			errs = append(errs, "slack.app_token is required")
		}
		if c.Slack.BotToken == "" {
			errs = append(errs, "slack.bot_token is required")
		}
	case "mock":
		// No credentials needed; used in tests and dry runs.
	case "":
		errs = append(errs, "platform is required")
	default:
		errs = append(errs, fmt.Sprintf("unknown platform %q", c.Platform))
	}
	if c.Roles.BossChannel == "" {
		errs = append(errs, "roles.boss_channel is required")
	}
	if c.DB.Driver != "mysql" && c.DB.Driver != "sqlite" {
		errs = append(errs, fmt.Sprintf("unknown db driver %q", c.DB.Driver))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
