package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/zulandar/parkyard/internal/city"
	"github.com/zulandar/parkyard/internal/config"
	"github.com/zulandar/parkyard/internal/logging"
	"github.com/zulandar/parkyard/internal/notify"
	"github.com/zulandar/parkyard/internal/notify/discord"
	"github.com/zulandar/parkyard/internal/notify/slack"
)

const defaultConfigPath = "parkyard.yaml"

// loadConfig reads path, or returns the defaults when path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	return logging.NewWriter(w, logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
}

// buildDirectory returns the configured city, or the sample city when the
// config lists no zones.
func buildDirectory(cfg *config.Config) (*city.Directory, error) {
	if len(cfg.City.Zones) == 0 {
		return city.Sample(), nil
	}
	return city.Build(cfg.City.Zones)
}

// buildAdapters creates a chat adapter for each fully configured destination.
func buildAdapters(cfg config.NotifyConfig) ([]notify.Adapter, error) {
	var adapters []notify.Adapter
	if cfg.Slack.Enabled() {
		a, err := slack.New(slack.AdapterOpts{BotToken: cfg.Slack.BotToken, ChannelID: cfg.Slack.ChannelID})
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, a)
	}
	if cfg.Discord.Enabled() {
		a, err := discord.New(discord.AdapterOpts{BotToken: cfg.Discord.BotToken, ChannelID: cfg.Discord.ChannelID})
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, a)
	}
	return adapters, nil
}
