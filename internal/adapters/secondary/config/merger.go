package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/fredcamaral/pptgrid/internal/domain/entities"
	"github.com/fredcamaral/pptgrid/internal/domain/ports"
)

// EnvPrefix starts the name of every environment override
const EnvPrefix = "PPTGRID_"

// ConfigMerger implements the ConfigMerger interface
type ConfigMerger struct {
	getenv func(string) string
}

// NewConfigMerger creates a new configuration merger
func NewConfigMerger() *ConfigMerger {
	return &ConfigMerger{getenv: os.Getenv}
}

// Merge merges multiple configurations with later configs taking precedence
func (m *ConfigMerger) Merge(configs ...*entities.Config) *entities.Config {
	if len(configs) == 0 {
		return GetDefaultConfig()
	}

	result := deepCopy(configs[0])
	if result == nil {
		result = GetDefaultConfig()
	}

	for i := 1; i < len(configs); i++ {
		if configs[i] != nil {
			m.mergeInto(result, configs[i])
		}
	}

	return result
}

// ApplyFlags applies CLI flag overrides to a configuration
func (m *ConfigMerger) ApplyFlags(config *entities.Config, flags map[string]interface{}) *entities.Config {
	result := deepCopy(config)

	if port, ok := flags["port"].(int); ok && port > 0 {
		result.Server.Port = port
	}

	if host, ok := flags["host"].(string); ok && host != "" {
		result.Server.Host = host
	}

	if engine, ok := flags["engine"].(string); ok && engine != "" {
		result.Output.Engine = engine
	}

	if noBrowser, ok := flags["no-browser"].(bool); ok && noBrowser {
		result.Browser.AutoOpen = false
	}

	if mode, ok := flags["watch-mode"].(string); ok && mode != "" {
		result.Watcher.Mode = mode
	}

	if verbose, ok := flags["verbose"].(bool); ok && verbose {
		result.Logging.Verbose = true
	}

	return result
}

// ApplyEnvVars applies PPTGRID_* environment variable overrides
func (m *ConfigMerger) ApplyEnvVars(config *entities.Config) *entities.Config {
	result := deepCopy(config)

	// Output
	m.str("ENGINE", &result.Output.Engine)
	m.str("SLIDE_WIDTH", &result.Output.SlideWidth)
	m.str("SLIDE_HEIGHT", &result.Output.SlideHeight)
	m.boolean("OVERWRITE", &result.Output.Overwrite)

	// Table
	m.float("TABLE_MAX_FONT_SIZE", &result.Table.MaxFontSize)
	m.float("TABLE_MIN_FONT_SIZE", &result.Table.MinFontSize)
	m.str("TABLE_FONT_FILE", &result.Table.FontFile)
	m.integer("TABLE_CACHE_MB", &result.Table.CacheMB)

	// Debug
	m.str("DEBUG_LINE_COLOR", &result.Debug.LineColor)

	// Server
	m.str("HOST", &result.Server.Host)
	m.integer("PORT", &result.Server.Port)
	m.list("CORS_ORIGINS", &result.Server.CORSOrigins)

	// Browser
	if noBrowserStr := m.getenv(EnvPrefix + "NO_BROWSER"); noBrowserStr != "" {
		if noBrowser, err := strconv.ParseBool(noBrowserStr); err == nil {
			result.Browser.AutoOpen = !noBrowser
		}
	}
	m.str("BROWSER", &result.Browser.Browser)

	// Watcher
	m.str("WATCH_MODE", &result.Watcher.Mode)
	m.integer("WATCH_INTERVAL", &result.Watcher.IntervalMs)
	m.integer("WATCH_DEBOUNCE", &result.Watcher.DebounceMs)

	// Metadata
	m.str("AUTHOR", &result.Metadata.Author)
	m.str("COMPANY", &result.Metadata.Company)

	// Logging
	m.str("LOG_LEVEL", &result.Logging.Level)
	m.boolean("LOG_JSON", &result.Logging.JSONFormat)
	m.str("LOG_FILE", &result.Logging.File)

	return result
}

func (m *ConfigMerger) str(name string, dst *string) {
	if value := m.getenv(EnvPrefix + name); value != "" {
		*dst = value
	}
}

func (m *ConfigMerger) integer(name string, dst *int) {
	if value := m.getenv(EnvPrefix + name); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n >= 0 {
			*dst = n
		}
	}
}

func (m *ConfigMerger) float(name string, dst *float64) {
	if value := m.getenv(EnvPrefix + name); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil && f >= 0 {
			*dst = f
		}
	}
}

func (m *ConfigMerger) boolean(name string, dst *bool) {
	if value := m.getenv(EnvPrefix + name); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			*dst = b
		}
	}
}

// list splits a comma separated variable, ignoring blank items
func (m *ConfigMerger) list(name string, dst *[]string) {
	value := m.getenv(EnvPrefix + name)
	if value == "" {
		return
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) > 0 {
		*dst = result
	}
}

// mergeInto merges source configuration into target configuration. Zero
// values never override; booleans override only when the source file set them.
func (m *ConfigMerger) mergeInto(target, source *entities.Config) {
	// Output config
	if source.Output.Engine != "" {
		target.Output.Engine = source.Output.Engine
	}
	if source.Output.SlideWidth != "" {
		target.Output.SlideWidth = source.Output.SlideWidth
		target.Output.SlideHeight = source.Output.SlideHeight
	}
	if source.IsSet("output.overwrite") {
		target.Output.Overwrite = source.Output.Overwrite
	}

	// Table config
	if source.Table.MaxFontSize != 0 {
		target.Table.MaxFontSize = source.Table.MaxFontSize
	}
	if source.Table.MinFontSize != 0 {
		target.Table.MinFontSize = source.Table.MinFontSize
	}
	if source.Table.Step != 0 {
		target.Table.Step = source.Table.Step
	}
	if source.Table.CellMargin != 0 {
		target.Table.CellMargin = source.Table.CellMargin
	}
	if source.Table.HeaderFill != "" {
		target.Table.HeaderFill = source.Table.HeaderFill
	}
	if source.IsSet("table.header_bold") {
		target.Table.HeaderBold = source.Table.HeaderBold
	}
	if source.Table.FontFile != "" {
		target.Table.FontFile = source.Table.FontFile
	}
	if source.Table.CacheMB != 0 {
		target.Table.CacheMB = source.Table.CacheMB
	}

	// Debug config
	if source.Debug.LineColor != "" {
		target.Debug.LineColor = source.Debug.LineColor
	}
	if source.Debug.LineWidth != 0 {
		target.Debug.LineWidth = source.Debug.LineWidth
	}
	if source.Debug.Fill != "" {
		target.Debug.Fill = source.Debug.Fill
	}
	if source.IsSet("debug.hide_labels") {
		target.Debug.HideLabels = source.Debug.HideLabels
	}

	// Server config
	if source.Server.Port != 0 {
		target.Server.Port = source.Server.Port
	}
	if source.Server.Host != "" {
		target.Server.Host = source.Server.Host
	}
	if source.Server.ReadTimeout != 0 {
		target.Server.ReadTimeout = source.Server.ReadTimeout
	}
	if source.Server.WriteTimeout != 0 {
		target.Server.WriteTimeout = source.Server.WriteTimeout
	}
	if source.Server.ShutdownTimeout != 0 {
		target.Server.ShutdownTimeout = source.Server.ShutdownTimeout
	}
	if source.Server.Environment != "" {
		target.Server.Environment = source.Server.Environment
	}
	if len(source.Server.CORSOrigins) > 0 {
		target.Server.CORSOrigins = append([]string(nil), source.Server.CORSOrigins...)
	}

	// Browser config
	if source.Browser.Browser != "" {
		target.Browser.Browser = source.Browser.Browser
	}
	if source.IsSet("browser.auto_open") {
		target.Browser.AutoOpen = source.Browser.AutoOpen
	}

	// Watcher config
	if source.Watcher.Mode != "" {
		target.Watcher.Mode = source.Watcher.Mode
	}
	if source.Watcher.IntervalMs != 0 {
		target.Watcher.IntervalMs = source.Watcher.IntervalMs
	}
	if source.Watcher.DebounceMs != 0 {
		target.Watcher.DebounceMs = source.Watcher.DebounceMs
	}
	if source.Watcher.MaxRetries != 0 {
		target.Watcher.MaxRetries = source.Watcher.MaxRetries
	}
	if source.Watcher.RetryDelayMs != 0 {
		target.Watcher.RetryDelayMs = source.Watcher.RetryDelayMs
	}

	// Metadata config
	if source.Metadata.Author != "" {
		target.Metadata.Author = source.Metadata.Author
	}
	if source.Metadata.Company != "" {
		target.Metadata.Company = source.Metadata.Company
	}
	if len(source.Metadata.Custom) > 0 {
		if target.Metadata.Custom == nil {
			target.Metadata.Custom = make(map[string]string)
		}
		for k, v := range source.Metadata.Custom {
			target.Metadata.Custom[k] = v
		}
	}

	// Logging config
	if source.Logging.Level != "" {
		target.Logging.Level = source.Logging.Level
	}
	if source.IsSet("logging.verbose") {
		target.Logging.Verbose = source.Logging.Verbose
	}
	if source.IsSet("logging.json_format") {
		target.Logging.JSONFormat = source.Logging.JSONFormat
	}
	if source.Logging.File != "" {
		target.Logging.File = source.Logging.File
	}
}

// deepCopy creates a deep copy of a configuration. The copy counts every
// field as set.
func deepCopy(src *entities.Config) *entities.Config {
	if src == nil {
		return nil
	}

	dst := &entities.Config{
		Output:   src.Output,
		Table:    src.Table,
		Debug:    src.Debug,
		Server:   src.Server,
		Browser:  src.Browser,
		Watcher:  src.Watcher,
		Metadata: src.Metadata,
		Logging:  src.Logging,
	}

	if src.Server.CORSOrigins != nil {
		dst.Server.CORSOrigins = append([]string(nil), src.Server.CORSOrigins...)
	}

	if src.Metadata.Custom != nil {
		dst.Metadata.Custom = make(map[string]string, len(src.Metadata.Custom))
		for k, v := range src.Metadata.Custom {
			dst.Metadata.Custom[k] = v
		}
	}

	return dst
}

var _ ports.ConfigMerger = (*ConfigMerger)(nil)
