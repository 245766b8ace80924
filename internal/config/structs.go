//nolint:lll
package config

// Config represents the complete configuration for the seedtrace application.
// It includes settings for all commands (trace, blobs, batch, serve) and
// supports loading from configuration files, environment variables, and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Tracing configuration
	Trace TraceConfig `mapstructure:"trace" yaml:"trace" json:"trace"`

	// Image decoding and binarization
	Image ImageConfig `mapstructure:"image" yaml:"image" json:"image"`

	// Output configuration
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`

	// Batch processing configuration
	Batch BatchConfig `mapstructure:"batch" yaml:"batch" json:"batch"`
}

// TraceConfig contains boundary tracing settings.
type TraceConfig struct {
	Clockwise      bool `mapstructure:"clockwise" yaml:"clockwise" json:"clockwise"`
	SuppressBorder bool `mapstructure:"suppress_border" yaml:"suppress_border" json:"suppress_border"`
	ChainApprox    bool `mapstructure:"chain_approx" yaml:"chain_approx" json:"chain_approx"`
	MaxLength      int  `mapstructure:"max_length" yaml:"max_length" json:"max_length"`
	Holes          bool `mapstructure:"holes" yaml:"holes" json:"holes"`
	MinPixels      int  `mapstructure:"min_pixels" yaml:"min_pixels" json:"min_pixels"`
	// Simplify is the Douglas-Peucker tolerance for blob contours.
	Simplify float64 `mapstructure:"simplify" yaml:"simplify" json:"simplify"`
	Hull     bool    `mapstructure:"hull" yaml:"hull" json:"hull"`
}

// ImageConfig contains binarization settings.
type ImageConfig struct {
	Threshold int  `mapstructure:"threshold" yaml:"threshold" json:"threshold"`
	Invert    bool `mapstructure:"invert" yaml:"invert" json:"invert"`
	Packed    bool `mapstructure:"packed" yaml:"packed" json:"packed"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format       string `mapstructure:"format" yaml:"format" json:"format"`
	File         string `mapstructure:"file" yaml:"file" json:"file"`
	OverlayDir   string `mapstructure:"overlay_dir" yaml:"overlay_dir" json:"overlay_dir"`
	OverlayColor string `mapstructure:"overlay_color" yaml:"overlay_color" json:"overlay_color"`
	HoleColor    string `mapstructure:"hole_color" yaml:"hole_color" json:"hole_color"`
	OverlayScale int    `mapstructure:"overlay_scale" yaml:"overlay_scale" json:"overlay_scale"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB     int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
	ChunkSize       int    `mapstructure:"chunk_size" yaml:"chunk_size" json:"chunk_size"`
}

// BatchConfig contains batch processing settings.
type BatchConfig struct {
	Workers         int  `mapstructure:"workers" yaml:"workers" json:"workers"`
	Recursive       bool `mapstructure:"recursive" yaml:"recursive" json:"recursive"`
	ContinueOnError bool `mapstructure:"continue_on_error" yaml:"continue_on_error" json:"continue_on_error"`
}
