package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const fullYAML = `
name: metro

city:
  zones:
    - id: ZA
      name: Downtown
      adjacent: [ZB, ZC]
      areas:
        - id: AA1
          slots: [SA1, SA2, SA3]
        - id: AA2
          slot_count: 3
    - id: ZB
      name: Uptown
      adjacent: [ZA]
      areas:
        - id: AB1
          slot_count: 4
          slot_prefix: UP-

ledger:
  max_depth: 25

journal:
  driver: mysql
  mysql:
    host: 10.0.0.5
    port: 3307
    database: parkyard_metro

dashboard:
  port: 9090

report:
  schedule: "0 * * * *"

notify:
  slack:
    bot_token: xoxb-test
    channel_id: C01

log:
  level: debug
  format: json
`

const minimalYAML = `
city:
  zones:
    - id: ZA
      name: Downtown
      areas:
        - id: AA1
          slot_count: 2
`

func TestParse_FullConfig(t *testing.T) {
	cfg, err := Parse([]byte(fullYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Name != "metro" {
		t.Errorf("Name = %q, want %q", cfg.Name, "metro")
	}
	if len(cfg.City.Zones) != 2 {
		t.Fatalf("len(Zones) = %d, want 2", len(cfg.City.Zones))
	}
	za := cfg.City.Zones[0]
	if za.ID != "ZA" || za.Name != "Downtown" {
		t.Errorf("Zones[0] = %s/%s, want ZA/Downtown", za.ID, za.Name)
	}
	if len(za.Adjacent) != 2 || za.Adjacent[0] != "ZB" || za.Adjacent[1] != "ZC" {
		t.Errorf("Zones[0].Adjacent = %v, want [ZB ZC]", za.Adjacent)
	}
	if len(za.Areas[0].Slots) != 3 {
		t.Errorf("Areas[0].Slots = %v, want 3 ids", za.Areas[0].Slots)
	}
	if za.Areas[1].SlotCount != 3 {
		t.Errorf("Areas[1].SlotCount = %d, want 3", za.Areas[1].SlotCount)
	}
	if za.Areas[1].SlotPrefix != "SA" {
		t.Errorf("Areas[1].SlotPrefix = %q, want %q (derived)", za.Areas[1].SlotPrefix, "SA")
	}
	if got := cfg.City.Zones[1].Areas[0].SlotPrefix; got != "UP-" {
		t.Errorf("explicit SlotPrefix = %q, want %q", got, "UP-")
	}
	if cfg.Ledger.MaxDepth != 25 {
		t.Errorf("Ledger.MaxDepth = %d, want 25", cfg.Ledger.MaxDepth)
	}
	if cfg.Journal.Driver != "mysql" {
		t.Errorf("Journal.Driver = %q, want mysql", cfg.Journal.Driver)
	}
	if cfg.Journal.MySQL.Host != "10.0.0.5" || cfg.Journal.MySQL.Port != 3307 {
		t.Errorf("Journal.MySQL = %+v", cfg.Journal.MySQL)
	}
	if cfg.Journal.MySQL.User != "root" {
		t.Errorf("Journal.MySQL.User = %q, want root (default)", cfg.Journal.MySQL.User)
	}
	if cfg.Dashboard.Port != 9090 {
		t.Errorf("Dashboard.Port = %d, want 9090", cfg.Dashboard.Port)
	}
	if cfg.Report.Schedule != "0 * * * *" {
		t.Errorf("Report.Schedule = %q", cfg.Report.Schedule)
	}
	if !cfg.Notify.Slack.Enabled() {
		t.Error("Notify.Slack should be enabled")
	}
	if cfg.Notify.Discord.Enabled() {
		t.Error("Notify.Discord should be disabled")
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v", cfg.Log)
	}
}

func TestParse_MinimalConfig_AppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Name != "parkyard" {
		t.Errorf("Name = %q, want parkyard (default)", cfg.Name)
	}
	if cfg.Ledger.MaxDepth != DefaultLedgerDepth {
		t.Errorf("Ledger.MaxDepth = %d, want %d (default)", cfg.Ledger.MaxDepth, DefaultLedgerDepth)
	}
	if cfg.Journal.Driver != "sqlite" {
		t.Errorf("Journal.Driver = %q, want sqlite (default)", cfg.Journal.Driver)
	}
	if cfg.Journal.Path != ":memory:" {
		t.Errorf("Journal.Path = %q, want :memory: (default)", cfg.Journal.Path)
	}
	if cfg.Journal.MySQL.Port != 3306 {
		t.Errorf("Journal.MySQL.Port = %d, want 3306 (default)", cfg.Journal.MySQL.Port)
	}
	if cfg.Journal.MySQL.Database != "parkyard" {
		t.Errorf("Journal.MySQL.Database = %q, want parkyard (derived from name)", cfg.Journal.MySQL.Database)
	}
	if cfg.Dashboard.Port != 8080 {
		t.Errorf("Dashboard.Port = %d, want 8080 (default)", cfg.Dashboard.Port)
	}
	if cfg.Report.Schedule != "*/5 * * * *" {
		t.Errorf("Report.Schedule = %q, want default", cfg.Report.Schedule)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("Log = %+v, want info/text", cfg.Log)
	}
}

func TestParse_EmptyDocumentIsValid(t *testing.T) {
	cfg, err := Parse([]byte(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.City.Zones) != 0 {
		t.Errorf("Zones = %v, want none", cfg.City.Zones)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Ledger.MaxDepth != DefaultLedgerDepth {
		t.Errorf("Ledger.MaxDepth = %d, want %d", cfg.Ledger.MaxDepth, DefaultLedgerDepth)
	}
	if cfg.Journal.Path != ":memory:" {
		t.Errorf("Journal.Path = %q, want :memory:", cfg.Journal.Path)
	}
}

func TestDefaultSlotPrefix(t *testing.T) {
	tests := []struct {
		zone string
		want string
	}{
		{"ZA", "SA"},
		{"ZNorth", "SNorth"},
		{"Z", "Z-S"},
		{"harbor", "harbor-S"},
	}
	for _, tt := range tests {
		if got := defaultSlotPrefix(tt.zone); got != tt.want {
			t.Errorf("defaultSlotPrefix(%q) = %q, want %q", tt.zone, got, tt.want)
		}
	}
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "zone missing id",
			yaml: `
city:
  zones:
    - name: Downtown
      areas: [{id: A1, slot_count: 1}]
`,
			want: "city.zones[0].id is required",
		},
		{
			name: "zone missing name",
			yaml: `
city:
  zones:
    - id: ZA
      areas: [{id: A1, slot_count: 1}]
`,
			want: "city.zones[0].name is required",
		},
		{
			name: "duplicate zone",
			yaml: `
city:
  zones:
    - {id: ZA, name: A, areas: [{id: A1, slot_count: 1}]}
    - {id: ZA, name: B, areas: [{id: A2, slot_count: 1}]}
`,
			want: `city.zones[1].id "ZA" is duplicated`,
		},
		{
			name: "area without slots",
			yaml: `
city:
  zones:
    - {id: ZA, name: A, areas: [{id: A1}]}
`,
			want: "city.zones[0].areas[0] needs slots or slot_count",
		},
		{
			name: "area missing id",
			yaml: `
city:
  zones:
    - {id: ZA, name: A, areas: [{slot_count: 2}]}
`,
			want: "city.zones[0].areas[0].id is required",
		},
		{
			name: "negative ledger depth",
			yaml: "ledger:\n  max_depth: -1\n",
			want: "ledger.max_depth must not be negative",
		},
		{
			name: "unknown driver",
			yaml: "journal:\n  driver: postgres\n",
			want: `journal.driver "postgres" is not supported`,
		},
		{
			name: "bad cron",
			yaml: "report:\n  schedule: every minute\n",
			want: "report.schedule",
		},
		{
			name: "port out of range",
			yaml: "dashboard:\n  port: 70000\n",
			want: "dashboard.port 70000 is out of range",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want to contain %q", err.Error(), tt.want)
			}
			if !strings.HasPrefix(err.Error(), "config: validation failed:") {
				t.Errorf("error = %q, want config: validation failed prefix", err.Error())
			}
		})
	}
}

func TestParse_MultipleValidationErrors(t *testing.T) {
	yaml := `
ledger:
  max_depth: -5
city:
  zones:
    - areas: [{id: A1}]
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	for _, want := range []string{
		"ledger.max_depth must not be negative",
		"city.zones[0].id is required",
		"city.zones[0].name is required",
		"city.zones[0].areas[0] needs slots or slot_count",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("error missing %q: %s", want, msg)
		}
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte(":::invalid"))
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
	if !strings.Contains(err.Error(), "config: parse:") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "config: parse:")
	}
}

func TestLoad_ValidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "parkyard.yaml")
	if err := os.WriteFile(path, []byte(minimalYAML), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.City.Zones[0].ID != "ZA" {
		t.Errorf("Zones[0].ID = %q, want ZA", cfg.City.Zones[0].ID)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/parkyard.yaml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "config: read") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "config: read")
	}
}

func TestChatConfig_Enabled(t *testing.T) {
	tests := []struct {
		cfg  ChatConfig
		want bool
	}{
		{ChatConfig{}, false},
		{ChatConfig{BotToken: "t"}, false},
		{ChatConfig{ChannelID: "c"}, false},
		{ChatConfig{BotToken: "t", ChannelID: "c"}, true},
	}
	for _, tt := range tests {
		if got := tt.cfg.Enabled(); got != tt.want {
			t.Errorf("%+v.Enabled() = %v, want %v", tt.cfg, got, tt.want)
		}
	}
}
