// Package config provides YAML-based configuration loading for Parkyard.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// DefaultLedgerDepth is the rollback ledger capacity used when none is configured.
const DefaultLedgerDepth = 100

// Config is the top-level Parkyard configuration, loaded from parkyard.yaml.
type Config struct {
	Name      string          `yaml:"name"`
	City      CityConfig      `yaml:"city"`
	Ledger    LedgerConfig    `yaml:"ledger"`
	Journal   JournalConfig   `yaml:"journal"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Report    ReportConfig    `yaml:"report"`
	Notify    NotifyConfig    `yaml:"notify"`
	Log       LogConfig       `yaml:"log"`
}

// CityConfig describes the zone hierarchy. An empty zone list means the
// built-in sample city is used.
type CityConfig struct {
	Zones []ZoneConfig `yaml:"zones"`
}

// ZoneConfig defines one zone, its areas and its outgoing adjacency list.
type ZoneConfig struct {
	ID       string       `yaml:"id"`
	Name     string       `yaml:"name"`
	Adjacent []string     `yaml:"adjacent"`
	Areas    []AreaConfig `yaml:"areas"`
}

// AreaConfig defines an area. Slots are either listed explicitly or
// generated from SlotCount and SlotPrefix.
type AreaConfig struct {
	ID         string   `yaml:"id"`
	Slots      []string `yaml:"slots"`
	SlotCount  int      `yaml:"slot_count"`
	SlotPrefix string   `yaml:"slot_prefix"`
}

// LedgerConfig bounds the rollback history.
type LedgerConfig struct {
	MaxDepth int `yaml:"max_depth"`
}

// JournalConfig selects the database that receives lifecycle events.
type JournalConfig struct {
	Driver string      `yaml:"driver"` // sqlite or mysql
	Path   string      `yaml:"path"`   // sqlite file, ":memory:" by default
	MySQL  MySQLConfig `yaml:"mysql"`
}

// MySQLConfig holds connection settings for a MySQL-compatible server (MySQL, Dolt).
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// DashboardConfig holds HTTP settings for the dashboard.
type DashboardConfig struct {
	Port int `yaml:"port"`
}

// ReportConfig schedules periodic analytics snapshots.
type ReportConfig struct {
	Schedule string `yaml:"schedule"` // 5-field cron expression
}

// NotifyConfig holds optional chat alert destinations.
type NotifyConfig struct {
	Slack   ChatConfig `yaml:"slack"`
	Discord ChatConfig `yaml:"discord"`
}

// ChatConfig is a bot token plus the channel alerts are posted to.
type ChatConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

// Enabled reports whether both token and channel are set.
func (c ChatConfig) Enabled() bool {
	return c.BotToken != "" && c.ChannelID != ""
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
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

// Default returns a configuration with every default applied and no zones.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = "parkyard"
	}
	if c.Ledger.MaxDepth == 0 {
		c.Ledger.MaxDepth = DefaultLedgerDepth
	}
	if c.Journal.Driver == "" {
		c.Journal.Driver = "sqlite"
	}
	if c.Journal.Driver == "sqlite" && c.Journal.Path == "" {
		c.Journal.Path = ":memory:"
	}
	if c.Journal.MySQL.Host == "" {
		c.Journal.MySQL.Host = "127.0.0.1"
	}
	if c.Journal.MySQL.Port == 0 {
		c.Journal.MySQL.Port = 3306
	}
	if c.Journal.MySQL.User == "" {
		c.Journal.MySQL.User = "root"
	}
	if c.Journal.MySQL.Database == "" {
		c.Journal.MySQL.Database = c.Name
	}
	if c.Dashboard.Port == 0 {
		c.Dashboard.Port = 8080
	}
	if c.Report.Schedule == "" {
		c.Report.Schedule = "*/5 * * * *"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	for i := range c.City.Zones {
		z := &c.City.Zones[i]
		for j := range z.Areas {
			if z.Areas[j].SlotPrefix == "" {
				z.Areas[j].SlotPrefix = defaultSlotPrefix(z.ID)
			}
		}
	}
}

// defaultSlotPrefix derives "SA" from zone "ZA": the zone id with a leading
// Z replaced by S.
func defaultSlotPrefix(zoneID string) string {
	if strings.HasPrefix(zoneID, "Z") && len(zoneID) > 1 {
		return "S" + zoneID[1:]
	}
	return zoneID + "-S"
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.Ledger.MaxDepth < 0 {
		errs = append(errs, "ledger.max_depth must not be negative")
	}
	switch c.Journal.Driver {
	case "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Sprintf("journal.driver %q is not supported (sqlite, mysql)", c.Journal.Driver))
	}
	if c.Dashboard.Port < 0 || c.Dashboard.Port > 65535 {
		errs = append(errs, fmt.Sprintf("dashboard.port %d is out of range", c.Dashboard.Port))
	}
	if _, err := cron.ParseStandard(c.Report.Schedule); err != nil {
		errs = append(errs, fmt.Sprintf("report.schedule %q is invalid: %v", c.Report.Schedule, err))
	}

	seen := make(map[string]bool)
	for i, z := range c.City.Zones {
		if z.ID == "" {
			errs = append(errs, fmt.Sprintf("city.zones[%d].id is required", i))
		} else if seen[z.ID] {
			errs = append(errs, fmt.Sprintf("city.zones[%d].id %q is duplicated", i, z.ID))
		}
		seen[z.ID] = true
		if z.Name == "" {
			errs = append(errs, fmt.Sprintf("city.zones[%d].name is required", i))
		}
		for j, a := range z.Areas {
			if a.ID == "" {
				errs = append(errs, fmt.Sprintf("city.zones[%d].areas[%d].id is required", i, j))
			}
			if len(a.Slots) == 0 && a.SlotCount <= 0 {
				errs = append(errs, fmt.Sprintf("city.zones[%d].areas[%d] needs slots or slot_count", i, j))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
