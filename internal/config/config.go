// Package config handles loading todomvc.toml configuration files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/amonks/todomvc/internal/paths"
)

// ProjectFilename is the config file read from the working directory.
const ProjectFilename = "todomvc.toml"

// Config represents the todomvc.toml configuration file.
type Config struct {
	Server  Server  `toml:"server"`
	Store   Store   `toml:"store"`
	Session Session `toml:"session"`
}

// Server contains web server configuration.
type Server struct {
	// Addr is the listen address, such as ":8080".
	Addr string `toml:"addr"`

	// ActionDelay is added before every submitted action runs, to make
	// pending states visible.
	ActionDelay Duration `toml:"action-delay"`

	// SettleWait bounds how long a form post waits for its action.
	SettleWait Duration `toml:"settle-wait"`

	// PageTTL is how long an idle browser keeps its page state.
	PageTTL Duration `toml:"page-ttl"`

	// DebugReconcile logs how each render moved the todo list.
	DebugReconcile bool `toml:"debug-reconcile"`
}

// Store contains data store configuration.
type Store struct {
	// Path is the JSON file holding users and todos.
	Path string `toml:"path"`

	// SaveDelay coalesces writes.
	SaveDelay Duration `toml:"save-delay"`

	// Seed is a YAML file used to create the store.
	Seed string `toml:"seed"`

	// BcryptCost is the cost for new password hashes.
	BcryptCost int `toml:"bcrypt-cost"`
}

// Session contains login session configuration.
type Session struct {
	SecretFile  string   `toml:"secret-file"`
	TTL         Duration `toml:"ttl"`
	RememberTTL Duration `toml:"remember-ttl"`
	Secure      bool     `toml:"secure"`
}

// Duration is a time.Duration written as a string, like "500ms".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	if parsed < 0 {
		return fmt.Errorf("invalid duration %q: must not be negative", text)
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Load loads configuration from dir and the global config file. Relative
// paths are resolved against the directory of the file that sets them.
// Returns an empty config if no config files exist.
func Load(dir string) (*Config, error) {
	globalDir, err := paths.DefaultConfigDir()
	if err != nil {
		return nil, err
	}

	globalCfg, globalMeta, err := loadConfigFile(filepath.Join(globalDir, "config.toml"))
	if err != nil {
		return nil, err
	}
	resolvePaths(globalCfg, globalDir)

	projectCfg, projectMeta, err := loadConfigFile(filepath.Join(dir, ProjectFilename))
	if err != nil {
		return nil, err
	}
	resolvePaths(projectCfg, dir)

	merged := mergeConfigs(globalCfg, projectCfg, globalMeta, projectMeta)
	return merged, nil
}

func loadConfigFile(path string) (*Config, toml.MetaData, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, toml.MetaData{}, nil
	}
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	var cfg Config
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, toml.MetaData{}, fmt.Errorf("parse config file %s: unknown key %q", path, undecoded[0].String())
	}

	return &cfg, meta, nil
}

func resolvePaths(cfg *Config, base string) {
	cfg.Store.Path = resolvePath(base, cfg.Store.Path)
	cfg.Store.Seed = resolvePath(base, cfg.Store.Seed)
	cfg.Session.SecretFile = resolvePath(base, cfg.Session.SecretFile)
}

func resolvePath(base, path string) string {
	path = strings.TrimSpace(path)
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

func mergeConfigs(globalCfg, projectCfg *Config, globalMeta, projectMeta toml.MetaData) *Config {
	if globalCfg == nil {
		globalCfg = &Config{}
	}
	if projectCfg == nil {
		projectCfg = &Config{}
	}

	merged := Config{}
	merged.Server.Addr = mergeString(projectMeta.IsDefined("server", "addr"), projectCfg.Server.Addr, globalCfg.Server.Addr)
	merged.Server.ActionDelay = mergeValue(projectMeta.IsDefined("server", "action-delay"), projectCfg.Server.ActionDelay, globalCfg.Server.ActionDelay)
	merged.Server.SettleWait = mergeValue(projectMeta.IsDefined("server", "settle-wait"), projectCfg.Server.SettleWait, globalCfg.Server.SettleWait)
	merged.Server.PageTTL = mergeValue(projectMeta.IsDefined("server", "page-ttl"), projectCfg.Server.PageTTL, globalCfg.Server.PageTTL)
	merged.Server.DebugReconcile = mergeValue(projectMeta.IsDefined("server", "debug-reconcile"), projectCfg.Server.DebugReconcile, globalCfg.Server.DebugReconcile)

	merged.Store.Path = mergeString(projectMeta.IsDefined("store", "path"), projectCfg.Store.Path, globalCfg.Store.Path)
	merged.Store.SaveDelay = mergeValue(projectMeta.IsDefined("store", "save-delay"), projectCfg.Store.SaveDelay, globalCfg.Store.SaveDelay)
	merged.Store.Seed = mergeString(projectMeta.IsDefined("store", "seed"), projectCfg.Store.Seed, globalCfg.Store.Seed)
	merged.Store.BcryptCost = mergeValue(projectMeta.IsDefined("store", "bcrypt-cost"), projectCfg.Store.BcryptCost, globalCfg.Store.BcryptCost)

	merged.Session.SecretFile = mergeString(projectMeta.IsDefined("session", "secret-file"), projectCfg.Session.SecretFile, globalCfg.Session.SecretFile)
	merged.Session.TTL = mergeValue(projectMeta.IsDefined("session", "ttl"), projectCfg.Session.TTL, globalCfg.Session.TTL)
	merged.Session.RememberTTL = mergeValue(projectMeta.IsDefined("session", "remember-ttl"), projectCfg.Session.RememberTTL, globalCfg.Session.RememberTTL)
	merged.Session.Secure = mergeValue(projectMeta.IsDefined("session", "secure"), projectCfg.Session.Secure, globalCfg.Session.Secure)

	return &merged
}

func mergeString(projectDefined bool, projectValue, globalValue string) string {
	return strings.TrimSpace(mergeValue(projectDefined, projectValue, globalValue))
}

func mergeValue[T any](projectDefined bool, projectValue, globalValue T) T {
	if projectDefined {
		return projectValue
	}
	return globalValue
}
