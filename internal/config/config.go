package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains input and output locations.
type Paths struct {
	InputFile    string `toml:"input_file"`
	TemplateFile string `toml:"template_file"`
	OutputDir    string `toml:"output_dir"`
	StateDir     string `toml:"state_dir"`
}

// Raster contains configuration for the external vector-to-raster converter.
type Raster struct {
	Enabled bool   `toml:"enabled"`
	Binary  string `toml:"binary"`
	// Args are passed to the binary. {input} and {output} are replaced with the
	// derived SVG path and the target raster path.
	Args           []string `toml:"args"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
	Extension      string   `toml:"extension"`
}

// Template contains substitution settings.
type Template struct {
	EscapeMarkup bool `toml:"escape_markup"`
}

// Address contains address decomposition settings.
type Address struct {
	Enrich bool `toml:"enrich"`
}

// Manifest contains manifest and summary file names, relative to the output directory.
type Manifest struct {
	NoEmailFile   string `toml:"no_email_file"`
	WithEmailFile string `toml:"with_email_file"`
	AllFile       string `toml:"all_file"`
	SummaryFile   string `toml:"summary_file"`
	XLSX          bool   `toml:"xlsx"`
	XLSXFile      string `toml:"xlsx_file"`
}

// History contains configuration for the run ledger.
type History struct {
	Enabled bool `toml:"enabled"`
}

// Email contains configuration for card delivery through Amazon SES.
type Email struct {
	Enabled     bool   `toml:"enabled"`
	Region      string `toml:"region"`
	FromAddress string `toml:"from_address"`
	FromName    string `toml:"from_name"`
	Subject     string `toml:"subject"`
	Body        string `toml:"body"`
}

// Storage contains configuration for archiving cards to S3.
type Storage struct {
	Enabled   bool   `toml:"enabled"`
	Bucket    string `toml:"bucket"`
	Region    string `toml:"region"`
	Prefix    string `toml:"prefix"`
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
}

// Notifications contains configuration for ntfy run notifications.
type Notifications struct {
	NtfyTopic             string `toml:"ntfy_topic"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	// File is the diagnostic log, relative to the output directory unless absolute.
	File string `toml:"file"`
}

// Config encapsulates all configuration values for qslgen.
//
// Configuration sections by subsystem:
//   - Paths: ADIF input, SVG template, output and state directories
//   - Raster: external converter command line and timeout
//   - Template: substitution options
//   - Address: ADDRESS field decomposition
//   - Manifest: CSV/XLSX manifest and summary names
//   - History: sqlite run ledger
//   - Email: SES delivery of rendered cards
//   - Storage: S3 archive of rendered cards
//   - Notifications: ntfy topic for run milestones
//   - Logging: log format, level, and diagnostic file
type Config struct {
	Paths         Paths         `toml:"paths"`
	Raster        Raster        `toml:"raster"`
	Template      Template      `toml:"template"`
	Address       Address       `toml:"address"`
	Manifest      Manifest      `toml:"manifest"`
	History       History       `toml:"history"`
	Email         Email         `toml:"email"`
	Storage       Storage       `toml:"storage"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/qslgen/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("qslgen.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the output and state directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.StateDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// OutputPath joins name onto the output directory unless it is already absolute.
func (c *Config) OutputPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Paths.OutputDir, name)
}

// LogFilePath returns the diagnostic log location.
func (c *Config) LogFilePath() string {
	return c.OutputPath(c.Logging.File)
}

// HistoryDBPath returns the run ledger database location.
func (c *Config) HistoryDBPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// RasterTimeout returns the converter timeout, zero meaning unbounded.
func (c *Config) RasterTimeout() time.Duration {
	if c.Raster.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Raster.TimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultStateDir() string {
	if base, ok := os.LookupEnv("XDG_STATE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "qslgen")
	}
	return "~/.local/state/qslgen"
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

const redacted = "<redacted>"

// Encode writes the effective configuration as TOML. Stored credentials are
// replaced with a placeholder.
func (c *Config) Encode(w io.Writer) error {
	out := *c
	if out.Storage.AccessKey != "" {
		out.Storage.AccessKey = redacted
	}
	if out.Storage.SecretKey != "" {
		out.Storage.SecretKey = redacted
	}
	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}
