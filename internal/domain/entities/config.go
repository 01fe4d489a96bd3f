package entities

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Output   OutputConfig  `toml:"output"`
	Table    TableConfig   `toml:"table"`
	Debug    DebugConfig   `toml:"debug"`
	Server   ServerConfig  `toml:"server"`
	Browser  BrowserConfig `toml:"browser"`
	Watcher  WatcherConfig `toml:"watcher"`
	Metadata Metadata      `toml:"metadata"`
	Logging  LoggingConfig `toml:"logging"`

	// keys lists the dotted keys present in the file the config was read
	// from; nil means every field counts as set
	keys map[string]bool
}

// MarkSet records keys such as "browser.auto_open" as present in the source
// file. Once any key is marked, IsSet reports false for unmarked keys.
func (c *Config) MarkSet(keys ...string) {
	if c.keys == nil {
		c.keys = make(map[string]bool, len(keys))
	}
	for _, k := range keys {
		c.keys[k] = true
	}
}

// IsSet reports whether key was present in the source file. Configs built in
// code report every key as set.
func (c *Config) IsSet(key string) bool {
	if c.keys == nil {
		return true
	}
	return c.keys[key]
}

// Validate checks every section, naming the first that fails
func (c *Config) Validate() error {
	sections := []struct {
		name     string
		validate func() error
	}{
		{"output", c.Output.Validate},
		{"table", c.Table.Validate},
		{"debug", c.Debug.Validate},
		{"server", c.Server.Validate},
		{"browser", c.Browser.Validate},
		{"watcher", c.Watcher.Validate},
		{"logging", c.Logging.Validate},
	}
	for _, sec := range sections {
		if err := sec.validate(); err != nil {
			return fmt.Errorf("%s config: %w", sec.name, err)
		}
	}
	return nil
}

// Engine names a presentation writer implementation
type Engine string

const (
	EngineOOXML Engine = "ooxml"
	EngineGoPPT Engine = "goppt"
)

// OutputConfig controls how presentations are written
type OutputConfig struct {
	Engine      string `toml:"engine"`
	SlideWidth  string `toml:"slide_width"`
	SlideHeight string `toml:"slide_height"`
	Overwrite   bool   `toml:"overwrite"`
}

// Validate validates output configuration
func (o OutputConfig) Validate() error {
	switch Engine(o.Engine) {
	case "", EngineOOXML, EngineGoPPT:
	default:
		return fmt.Errorf("invalid engine: %s (must be ooxml or goppt)", o.Engine)
	}

	if (o.SlideWidth == "") != (o.SlideHeight == "") {
		return errors.New("slide_width and slide_height must be set together")
	}

	if o.SlideWidth != "" {
		if _, _, err := (SlideSize{Width: o.SlideWidth, Height: o.SlideHeight}).Resolve(); err != nil {
			return err
		}
	}

	return nil
}

// GetEngine returns the engine with default
func (o OutputConfig) GetEngine() Engine {
	if o.Engine == "" {
		return EngineOOXML
	}
	return Engine(o.Engine)
}

// GetSlideSize returns the configured slide size, or the template default
func (o OutputConfig) GetSlideSize() (Length, Length) {
	if o.SlideWidth == "" {
		return DefaultSlideWidth, DefaultSlideHeight
	}
	w, h, err := (SlideSize{Width: o.SlideWidth, Height: o.SlideHeight}).Resolve()
	if err != nil {
		return DefaultSlideWidth, DefaultSlideHeight
	}
	return w, h
}

// TableConfig controls the automatic font sizing of tables
type TableConfig struct {
	MaxFontSize float64 `toml:"max_font_size"` // points
	MinFontSize float64 `toml:"min_font_size"` // points
	Step        float64 `toml:"step"`          // points
	HeaderFill  string  `toml:"header_fill"`
	HeaderBold  bool    `toml:"header_bold"`
	CellMargin  float64 `toml:"cell_margin"` // points
	// FontFile is a TrueType or OpenType file used to measure cell text
	FontFile string `toml:"font_file"`
	// CacheMB bounds the table data kept between rebuilds
	CacheMB int `toml:"cache_mb"`
}

// Validate validates table configuration
func (t TableConfig) Validate() error {
	if t.MaxFontSize < 0 || t.MinFontSize < 0 || t.Step < 0 || t.CellMargin < 0 {
		return errors.New("font sizes, step and margin must be non-negative")
	}

	if t.CacheMB < 0 {
		return errors.New("cache size must be non-negative")
	}

	if t.MaxFontSize > 0 && t.MinFontSize > t.MaxFontSize {
		return fmt.Errorf("min font size %.1f exceeds max font size %.1f", t.MinFontSize, t.MaxFontSize)
	}

	if t.HeaderFill != "" {
		if _, err := RGBColorFromString(t.HeaderFill); err != nil {
			return fmt.Errorf("header fill: %w", err)
		}
	}

	return nil
}

// GetCacheSize returns the table cache budget in bytes (64MB)
func (t TableConfig) GetCacheSize() int64 {
	if t.CacheMB <= 0 {
		return 64 << 20
	}
	return int64(t.CacheMB) << 20
}

// GetMaxFontSize returns the largest font size tried (40pt)
func (t TableConfig) GetMaxFontSize() Length {
	if t.MaxFontSize <= 0 {
		return Points(40)
	}
	return Points(t.MaxFontSize)
}

// GetMinFontSize returns the smallest font size tried (1pt)
func (t TableConfig) GetMinFontSize() Length {
	if t.MinFontSize <= 0 {
		return Points(1)
	}
	return Points(t.MinFontSize)
}

// GetStep returns the font size decrement (1pt)
func (t TableConfig) GetStep() Length {
	if t.Step <= 0 {
		return Points(1)
	}
	return Points(t.Step)
}

// GetCellMargin returns the inner cell margin (left/right 0.1in, top/bottom 0.05in in PowerPoint)
func (t TableConfig) GetCellMargin() Length {
	if t.CellMargin <= 0 {
		return Inches(0.05)
	}
	return Points(t.CellMargin)
}

// DebugConfig controls debug outlines
type DebugConfig struct {
	LineColor string  `toml:"line_color"`
	LineWidth float64 `toml:"line_width"` // points
	Fill      string  `toml:"fill"`
	// HideLabels drops the "(row, col) - name" text from debug outlines
	HideLabels bool `toml:"hide_labels"`
}

// Validate validates debug configuration
func (d DebugConfig) Validate() error {
	for name, value := range map[string]string{"line_color": d.LineColor, "fill": d.Fill} {
		if value == "" {
			continue
		}
		if _, err := RGBColorFromString(value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	if d.LineWidth < 0 {
		return errors.New("line width must be non-negative")
	}

	return nil
}

// GetLineColor returns the outline color (red)
func (d DebugConfig) GetLineColor() string {
	if d.LineColor == "" {
		return "FF0000"
	}
	return d.LineColor
}

// GetLineWidth returns the outline width (1pt)
func (d DebugConfig) GetLineWidth() Length {
	if d.LineWidth <= 0 {
		return DefaultLineWidth
	}
	return Points(d.LineWidth)
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string   `toml:"host"`
	Port            int      `toml:"port"`
	ReadTimeout     int      `toml:"read_timeout"`
	WriteTimeout    int      `toml:"write_timeout"`
	ShutdownTimeout int      `toml:"shutdown_timeout"`
	Environment     string   `toml:"environment"`
	CORSOrigins     []string `toml:"cors_origins"`
}

// Validate validates server configuration
func (s ServerConfig) Validate() error {
	if s.Port < 0 || s.Port > 65535 {
		return errors.New("port must be between 0 and 65535")
	}

	if s.Host != "" {
		if ip := net.ParseIP(s.Host); ip == nil {
			if _, err := net.LookupHost(s.Host); err != nil {
				return fmt.Errorf("invalid host: %w", err)
			}
		}
	}

	for name, secs := range map[string]int{"read": s.ReadTimeout, "write": s.WriteTimeout, "shutdown": s.ShutdownTimeout} {
		if secs < 0 {
			return fmt.Errorf("%s timeout must be non-negative", name)
		}
	}

	for _, origin := range s.CORSOrigins {
		if origin == "" {
			return errors.New("CORS origin cannot be empty")
		}
		if origin == "*" {
			continue
		}
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("invalid CORS origin format: %s (must start with http:// or https://)", origin)
		}
	}

	return nil
}

// GetReadTimeout returns the read timeout (30s)
func (s ServerConfig) GetReadTimeout() time.Duration {
	return seconds(s.ReadTimeout, 30)
}

// GetWriteTimeout returns the write timeout (30s)
func (s ServerConfig) GetWriteTimeout() time.Duration {
	return seconds(s.WriteTimeout, 30)
}

// GetShutdownTimeout returns how long Stop waits for open requests (5s)
func (s ServerConfig) GetShutdownTimeout() time.Duration {
	return seconds(s.ShutdownTimeout, 5)
}

func seconds(n, def int) time.Duration {
	if n <= 0 {
		n = def
	}
	return time.Duration(n) * time.Second
}

// GetCORSOrigins returns CORS origins with localhost defaults
func (s ServerConfig) GetCORSOrigins() []string {
	if len(s.CORSOrigins) == 0 {
		return []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			"http://localhost:8080",
			"http://127.0.0.1:8080",
		}
	}
	return s.CORSOrigins
}

// IsDevelopment returns true if the server is running in development mode
func (s ServerConfig) IsDevelopment() bool {
	return s.Environment == "development" || s.Environment == ""
}

// BrowserConfig contains browser launch configuration
type BrowserConfig struct {
	AutoOpen bool   `toml:"auto_open"`
	Browser  string `toml:"browser"`
}

// Validate validates browser configuration
func (b BrowserConfig) Validate() error {
	return nil
}

// WatcherMode selects the file watching strategy
type WatcherMode string

const (
	WatcherModePoll   WatcherMode = "poll"
	WatcherModeNotify WatcherMode = "notify"
)

// WatcherConfig contains file watcher configuration
type WatcherConfig struct {
	Mode         string `toml:"mode"`
	IntervalMs   int    `toml:"interval_ms"`
	DebounceMs   int    `toml:"debounce_ms"`
	MaxRetries   int    `toml:"max_retries"`
	RetryDelayMs int    `toml:"retry_delay_ms"`
}

// Validate validates watcher configuration
func (w WatcherConfig) Validate() error {
	switch WatcherMode(w.Mode) {
	case "", WatcherModePoll, WatcherModeNotify:
	default:
		return fmt.Errorf("invalid watcher mode: %s (must be poll or notify)", w.Mode)
	}

	if w.IntervalMs != 0 && w.IntervalMs < 50 {
		return errors.New("watcher interval must be at least 50ms")
	}

	if w.DebounceMs < 0 || w.MaxRetries < 0 || w.RetryDelayMs < 0 {
		return errors.New("debounce, retries and retry delay must be non-negative")
	}

	return nil
}

// GetMode returns the watcher mode with default
func (w WatcherConfig) GetMode() WatcherMode {
	if w.Mode == "" {
		return WatcherModePoll
	}
	return WatcherMode(w.Mode)
}

// GetInterval returns the polling interval (200ms)
func (w WatcherConfig) GetInterval() time.Duration {
	return millis(w.IntervalMs, 200)
}

// GetDebounce returns how long a file must stay quiet before a rebuild (500ms)
func (w WatcherConfig) GetDebounce() time.Duration {
	return millis(w.DebounceMs, 500)
}

// GetRetryDelay returns the pause between failed reads (100ms)
func (w WatcherConfig) GetRetryDelay() time.Duration {
	return millis(w.RetryDelayMs, 100)
}

func millis(n, def int) time.Duration {
	if n <= 0 {
		n = def
	}
	return time.Duration(n) * time.Millisecond
}

// Metadata contains presentation metadata defaults
type Metadata struct {
	Author  string            `toml:"author"`
	Company string            `toml:"company"`
	Custom  map[string]string `toml:"custom"`
}

// LogLevel represents logging level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `toml:"level"`       // debug, info, warn, error
	Verbose    bool   `toml:"verbose"`     // Enable verbose logging
	JSONFormat bool   `toml:"json_format"` // Output logs in JSON format
	File       string `toml:"file"`        // Log to file (optional)
}

// Validate validates logging configuration
func (l LoggingConfig) Validate() error {
	switch LogLevel(l.Level) {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	case "":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", l.Level)
	}

	if l.File != "" {
		if !filepath.IsAbs(l.File) {
			return errors.New("log file path must be absolute")
		}

		dir := filepath.Dir(l.File)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("log file directory does not exist: %s", dir)
		}
	}

	return nil
}

// GetLevel returns the log level with default
func (l LoggingConfig) GetLevel() LogLevel {
	if l.Verbose {
		return LogLevelDebug
	}
	if l.Level == "" {
		return LogLevelInfo
	}
	return LogLevel(l.Level)
}
