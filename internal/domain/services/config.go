package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/fredcamaral/pptgrid/internal/domain/entities"
	"github.com/fredcamaral/pptgrid/internal/domain/ports"
)

// ConfigService resolves the configuration a command runs with. Layers are
// applied in order: defaults, the global file, the deck's pptgrid.toml (or the
// file named by --config), PPTGRID_* variables and finally flags.
type ConfigService struct {
	loader     ports.ConfigLoader
	merger     ports.ConfigMerger
	configFile string
}

// NewConfigService creates a configuration service
func NewConfigService(loader ports.ConfigLoader, merger ports.ConfigMerger) *ConfigService {
	return &ConfigService{loader: loader, merger: merger}
}

// WithConfigFile makes LoadConfig read path instead of the local pptgrid.toml
func (s *ConfigService) WithConfigFile(path string) *ConfigService {
	s.configFile = path
	return s
}

// LoadConfig resolves the configuration for a deck in deckDir
func (s *ConfigService) LoadConfig(ctx context.Context, deckDir string, flags map[string]interface{}) (*entities.Config, error) {
	global, err := s.loader.LoadGlobal(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading global config: %w", err)
	}
	deck, err := s.deckConfig(ctx, deckDir)
	if err != nil {
		return nil, err
	}

	layers := []*entities.Config{s.GetDefaultConfig()}
	for _, c := range []*entities.Config{global, deck} {
		if c != nil {
			layers = append(layers, c)
		}
	}

	cfg := s.merger.ApplyFlags(s.merger.ApplyEnvVars(s.merger.Merge(layers...)), flags)
	if err := s.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("final config validation: %w", err)
	}
	return cfg, nil
}

// deckConfig reads --config when given, else the optional pptgrid.toml in dir
func (s *ConfigService) deckConfig(ctx context.Context, dir string) (*entities.Config, error) {
	if s.configFile != "" {
		cfg, err := s.loader.LoadFile(ctx, s.configFile)
		if err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		return cfg, nil
	}
	cfg, err := s.loader.LoadLocal(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("loading local config: %w", err)
	}
	return cfg, nil
}

// GetDefaultConfig returns the built-in defaults
func (s *ConfigService) GetDefaultConfig() *entities.Config {
	return s.merger.Merge()
}

// ValidateConfig rejects a nil or invalid configuration
func (s *ConfigService) ValidateConfig(config *entities.Config) error {
	if config == nil {
		return errors.New("config cannot be nil")
	}
	return config.Validate()
}

// CreateGlobalConfig writes the defaults to the global configuration file
func (s *ConfigService) CreateGlobalConfig(ctx context.Context) error {
	return s.loader.CreateDefaults(ctx, s.loader.GetGlobalPath())
}

// CreateLocalConfig writes a default pptgrid.toml into dir
func (s *ConfigService) CreateLocalConfig(ctx context.Context, dir string) (string, error) {
	path := s.loader.GetLocalPath(dir)
	if err := s.loader.CreateDefaults(ctx, path); err != nil {
		return "", err
	}
	return path, nil
}

// Paths returns the global and local configuration paths for dir
func (s *ConfigService) Paths(dir string) (global, local string) {
	if s.configFile != "" {
		return s.loader.GetGlobalPath(), s.configFile
	}
	return s.loader.GetGlobalPath(), s.loader.GetLocalPath(dir)
}

var _ ports.ConfigService = (*ConfigService)(nil)
