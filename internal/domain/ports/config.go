package ports

import (
	"context"

	"github.com/fredcamaral/pptgrid/internal/domain/entities"
)

// ConfigLoader reads and writes TOML configuration files
type ConfigLoader interface {
	// LoadGlobal reads the per-user file, writing the defaults there first
	// when it does not exist
	LoadGlobal(ctx context.Context) (*entities.Config, error)
	// LoadLocal reads pptgrid.toml in dir; nil when there is none
	LoadLocal(ctx context.Context, dir string) (*entities.Config, error)
	// LoadFile reads a file named on the command line; it must exist
	LoadFile(ctx context.Context, path string) (*entities.Config, error)
	// CreateDefaults writes the default configuration to path
	CreateDefaults(ctx context.Context, path string) error

	GetGlobalPath() string
	GetLocalPath(dir string) string
}

// ConfigMerger combines configuration layers
type ConfigMerger interface {
	// Merge overlays configs left to right on the defaults; keys absent from a
	// layer leave earlier values alone
	Merge(configs ...*entities.Config) *entities.Config
	// ApplyFlags applies command line overrides such as "port" or "engine"
	ApplyFlags(config *entities.Config, flags map[string]interface{}) *entities.Config
	// ApplyEnvVars applies PPTGRID_* overrides
	ApplyEnvVars(config *entities.Config) *entities.Config
}

// ConfigService resolves the configuration a command runs with
type ConfigService interface {
	LoadConfig(ctx context.Context, deckDir string, flags map[string]interface{}) (*entities.Config, error)
	GetDefaultConfig() *entities.Config
	ValidateConfig(config *entities.Config) error
	CreateGlobalConfig(ctx context.Context) error
}
