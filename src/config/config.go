package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/sprintrstudio/openCap/src/output"
)

const (
	ConfigPathEnvVar = "OPENCAP_CONFIG"
	appDirName       = "opencap"
	envFileName      = ".env"

	DefaultHotkey    = "Ctrl+Shift+S"
	DefaultSelection = "full"
	DefaultFilter    = "lanczos3"
	// HistoryDisabled as HISTORY_DB turns the capture index off.
	HistoryDisabled = "off"
)

const (
	keyCopyToClipboard   = "COPY_TO_CLIPBOARD"
	keyAutoOpen          = "AUTO_OPEN"
	keySaveLocally       = "SAVE_LOCALLY"
	keySavePath          = "SAVE_PATH"
	keyOpenWithProgram   = "OPEN_WITH_PROGRAM"
	keyHotkey            = "HOTKEY"
	keyDefaultSelection  = "DEFAULT_SELECTION"
	keyResampleFilter    = "RESAMPLE_FILTER"
	keyEnableFileLogging = "ENABLE_FILE_LOGGING"
	keyHistoryDB         = "HISTORY_DB"
)

// Keys lists every setting read from the environment or the .env file.
var Keys = []string{
	keyCopyToClipboard, keyAutoOpen, keySaveLocally, keySavePath, keyOpenWithProgram,
	keyHotkey, keyDefaultSelection, keyResampleFilter, keyEnableFileLogging, keyHistoryDB,
}

var ErrNoOutput = errors.New("At least one option must be enabled")

type LoadOptions struct {
	ConfigPathOverride       string
	SavePathOverride         string
	DefaultSelectionOverride string
}

type Config struct {
	CopyToClipboard bool
	AutoOpen        bool
	SaveLocally     bool
	SavePath        string
	OpenWithProgram string

	Hotkey           string
	DefaultSelection string
	ResampleFilter   string

	EnableFileLogging bool
	// HistoryDB is the sqlite path, empty when history is disabled.
	HistoryDB string

	// Path is the .env file the values came from, or where Save writes by default.
	Path string
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

// LoadWithOptions reads settings with environment variables taking priority
// over the .env file. The file is the first that exists of:
// 1) opts.ConfigPathOverride or OPENCAP_CONFIG
// 2) .env in the application (executable) directory
// 3) .env in the user config directory
func LoadWithOptions(opts LoadOptions) (*Config, error) {
	envPath, err := resolveEnvPath(opts.ConfigPathOverride)
	if err != nil {
		return nil, err
	}
	dotenvValues := readDotenvValues(envPath)
	if envPath != "" {
		_ = godotenv.Load(envPath)
	}
	get := func(key string) string {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
		return strings.TrimSpace(dotenvValues[key])
	}

	cfg := &Config{
		CopyToClipboard:   parseBool(get(keyCopyToClipboard), true),
		AutoOpen:          parseBool(get(keyAutoOpen), true),
		SaveLocally:       parseBool(get(keySaveLocally), true),
		SavePath:          get(keySavePath),
		OpenWithProgram:   withDefault(get(keyOpenWithProgram), output.DefaultProgram),
		Hotkey:            withDefault(get(keyHotkey), DefaultHotkey),
		DefaultSelection:  withDefault(get(keyDefaultSelection), DefaultSelection),
		ResampleFilter:    strings.ToLower(withDefault(get(keyResampleFilter), DefaultFilter)),
		EnableFileLogging: parseBool(get(keyEnableFileLogging), false),
		HistoryDB:         resolveHistoryDB(get(keyHistoryDB)),
		Path:              envPath,
	}
	if override := strings.TrimSpace(opts.SavePathOverride); override != "" {
		cfg.SavePath = override
	}
	if override := strings.TrimSpace(opts.DefaultSelectionOverride); override != "" {
		cfg.DefaultSelection = override
	}
	if cfg.SavePath == "" {
		if dir, err := output.DefaultDir(); err == nil {
			cfg.SavePath = dir
		}
	}
	if cfg.Path == "" {
		if dir, err := Dir(); err == nil {
			cfg.Path = filepath.Join(dir, envFileName)
		}
	}
	return cfg, nil
}

// Validate rejects a configuration that would discard every capture.
func (c *Config) Validate() error {
	if !c.CopyToClipboard && !c.AutoOpen && !c.SaveLocally {
		return ErrNoOutput
	}
	return nil
}

// HistoryEnabled reports whether finalized captures are indexed.
func (c *Config) HistoryEnabled() bool { return c.HistoryDB != "" }

// Save writes the user-editable settings to path as a .env file.
func Save(cfg *Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(path) == "" {
		return errors.New("config path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	history := cfg.HistoryDB
	if history == "" {
		history = HistoryDisabled
	}
	values := map[string]string{
		keyCopyToClipboard:   strconv.FormatBool(cfg.CopyToClipboard),
		keyAutoOpen:          strconv.FormatBool(cfg.AutoOpen),
		keySaveLocally:       strconv.FormatBool(cfg.SaveLocally),
		keySavePath:          cfg.SavePath,
		keyOpenWithProgram:   cfg.OpenWithProgram,
		keyHotkey:            cfg.Hotkey,
		keyDefaultSelection:  cfg.DefaultSelection,
		keyResampleFilter:    cfg.ResampleFilter,
		keyEnableFileLogging: strconv.FormatBool(cfg.EnableFileLogging),
		keyHistoryDB:         history,
	}
	if err := godotenv.Write(values, path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Dir is the per-user directory for the config file, log and history.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appDirName), nil
}

func resolveEnvPath(override string) (string, error) {
	explicit := strings.TrimSpace(override)
	if explicit == "" {
		explicit = strings.TrimSpace(os.Getenv(ConfigPathEnvVar))
	}
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file %s: %w", explicit, err)
		}
		return explicit, nil
	}

	if execPath, err := os.Executable(); err == nil {
		exeEnv := filepath.Join(filepath.Dir(execPath), envFileName)
		if _, err := os.Stat(exeEnv); err == nil {
			return exeEnv, nil
		}
	}

	if dir, err := Dir(); err == nil {
		userEnv := filepath.Join(dir, envFileName)
		if _, err := os.Stat(userEnv); err == nil {
			return userEnv, nil
		}
	}
	return "", nil
}

func readDotenvValues(envPath string) map[string]string {
	if envPath == "" {
		return map[string]string{}
	}
	values, err := godotenv.Read(envPath)
	if err != nil {
		return map[string]string{}
	}
	return values
}

func resolveHistoryDB(value string) string {
	switch strings.ToLower(value) {
	case HistoryDisabled, "false", "0", "none":
		return ""
	case "":
		dir, err := Dir()
		if err != nil {
			return ""
		}
		return filepath.Join(dir, "history.db")
	default:
		return value
	}
}

func parseBool(value string, def bool) bool {
	if value == "" {
		return def
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return def
	}
	return b
}

func withDefault(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
