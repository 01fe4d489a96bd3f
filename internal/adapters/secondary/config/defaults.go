package config

import (
	"github.com/fredcamaral/pptgrid/internal/domain/entities"
)

// GetDefaultConfig returns the built-in configuration
func GetDefaultConfig() *entities.Config {
	return &entities.Config{
		Output: entities.OutputConfig{
			Engine:      string(entities.EngineOOXML),
			SlideWidth:  "10in",
			SlideHeight: "7.5in",
			Overwrite:   true,
		},
		Table: entities.TableConfig{
			MaxFontSize: 40,
			MinFontSize: 1,
			Step:        1,
			CellMargin:  3.6,
			CacheMB:     64,
		},
		Debug: entities.DebugConfig{
			LineColor: "FF0000",
			LineWidth: 1,
		},
		Server: entities.ServerConfig{
			Host:            "localhost",
			Port:            3000,
			ReadTimeout:     30,
			WriteTimeout:    30,
			ShutdownTimeout: 5,
			Environment:     "development",
			CORSOrigins: []string{
				"http://localhost:3000",
				"http://127.0.0.1:3000",
			},
		},
		Browser: entities.BrowserConfig{
			AutoOpen: true,
			Browser:  "default",
		},
		Watcher: entities.WatcherConfig{
			Mode:         string(entities.WatcherModePoll),
			IntervalMs:   200,
			DebounceMs:   500,
			MaxRetries:   3,
			RetryDelayMs: 100,
		},
		Metadata: entities.Metadata{
			Custom: make(map[string]string),
		},
		Logging: entities.LoggingConfig{
			Level: string(entities.LogLevelInfo),
		},
	}
}
