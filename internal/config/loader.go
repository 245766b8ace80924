package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "seedtrace"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "SEEDTRACE"
)

// Loader resolves a Config from defaults, a YAML file, environment
// variables and whatever flags were bound to its viper instance.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader backed by v. A nil v gets a fresh instance, so
// command trees built in the same process never share bindings.
func NewLoader(v *viper.Viper) *Loader {
	if v == nil {
		v = viper.New()
	}
	return &Loader{v: v}
}

// Load searches the standard paths for seedtrace.yaml and validates the result.
func (l *Loader) Load() (*Config, error) {
	return l.load("", true)
}

// LoadWithoutValidation is Load without the final Validate call.
func (l *Loader) LoadWithoutValidation() (*Config, error) {
	return l.load("", false)
}

// LoadWithFile reads configFile instead of searching; "" means search.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	return l.load(configFile, true)
}

// LoadWithFileWithoutValidation is LoadWithFile without the final Validate call.
func (l *Loader) LoadWithFileWithoutValidation(configFile string) (*Config, error) {
	return l.load(configFile, false)
}

func (l *Loader) load(configFile string, validate bool) (*Config, error) {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	// SEEDTRACE_TRACE_MAX_LENGTH maps to trace.max_length
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	setDefaults(l.v)

	if err := l.readFile(configFile); err != nil {
		return nil, err
	}

	var config Config
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if validate {
		if err := config.Validate(); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}

	return &config, nil
}

func (l *Loader) readFile(configFile string) error {
	if configFile != "" {
		if _, err := os.Stat(configFile); os.IsNotExist(err) {
			return fmt.Errorf("config file does not exist: %s", configFile)
		}
		l.v.SetConfigFile(configFile)
		if err := l.v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
		return nil
	}

	l.v.SetConfigName(ConfigFileName)
	l.v.SetConfigType("yaml")
	for _, p := range SearchPaths() {
		l.v.AddConfigPath(p)
	}

	// A missing file is fine; defaults and environment still apply.
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// ConfigFileUsed returns the path of the file that was read, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// Viper returns the underlying viper instance.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// defaultValues flattens DefaultConfig into viper keys. Every key must be
// present, otherwise viper ignores environment variables for it on Unmarshal.
func defaultValues() map[string]any {
	d := DefaultConfig()
	return map[string]any{
		"log_level": d.LogLevel,
		"verbose":   d.Verbose,

		"trace.clockwise":       d.Trace.Clockwise,
		"trace.suppress_border": d.Trace.SuppressBorder,
		"trace.chain_approx":    d.Trace.ChainApprox,
		"trace.max_length":      d.Trace.MaxLength,
		"trace.holes":           d.Trace.Holes,
		"trace.min_pixels":      d.Trace.MinPixels,
		"trace.simplify":        d.Trace.Simplify,
		"trace.hull":            d.Trace.Hull,

		"image.threshold": d.Image.Threshold,
		"image.invert":    d.Image.Invert,
		"image.packed":    d.Image.Packed,

		"output.format":        d.Output.Format,
		"output.file":          d.Output.File,
		"output.overlay_dir":   d.Output.OverlayDir,
		"output.overlay_color": d.Output.OverlayColor,
		"output.hole_color":    d.Output.HoleColor,
		"output.overlay_scale": d.Output.OverlayScale,

		"server.host":             d.Server.Host,
		"server.port":             d.Server.Port,
		"server.cors_origin":      d.Server.CORSOrigin,
		"server.max_upload_mb":    d.Server.MaxUploadMB,
		"server.timeout_sec":      d.Server.TimeoutSec,
		"server.shutdown_timeout": d.Server.ShutdownTimeout,
		"server.chunk_size":       d.Server.ChunkSize,

		"batch.workers":           d.Batch.Workers,
		"batch.recursive":         d.Batch.Recursive,
		"batch.continue_on_error": d.Batch.ContinueOnError,
	}
}

func setDefaults(v *viper.Viper) {
	for key, value := range defaultValues() {
		v.SetDefault(key, value)
	}
}

// GenerateDefaultConfigFile writes the defaults as YAML to filename, or to
// seedtrace.yaml in the working directory when filename is empty.
func GenerateDefaultConfigFile(filename string) error {
	v := viper.New()
	setDefaults(v)

	if filename == "" {
		filename = ConfigFileName + ".yaml"
	}
	return v.WriteConfigAs(filename)
}

// SearchPaths returns the directories searched for seedtrace.yaml, in order.
func SearchPaths() []string {
	paths := []string{"."}

	home, homeErr := os.UserHomeDir()
	if homeErr == nil {
		paths = append(paths, home)
	}

	paths = append(paths, filepath.Join("/etc", ConfigFileName))

	if configDir, exists := os.LookupEnv("XDG_CONFIG_HOME"); exists {
		paths = append(paths, filepath.Join(configDir, ConfigFileName))
	} else if homeErr == nil {
		paths = append(paths, filepath.Join(home, ".config", ConfigFileName))
	}

	return paths
}

// PrintConfigInfo reports where configuration came from.
func (l *Loader) PrintConfigInfo(w io.Writer) {
	used := l.ConfigFileUsed()
	if used == "" {
		used = "(none)"
	}
	_, _ = fmt.Fprintf(w, "Configuration file used: %s\n", used)
	_, _ = fmt.Fprintf(w, "Configuration search paths: %v\n", SearchPaths())
	_, _ = fmt.Fprintf(w, "Environment prefix: %s\n", EnvPrefix)
}
