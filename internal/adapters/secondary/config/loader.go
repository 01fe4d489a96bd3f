package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/fredcamaral/pptgrid/internal/domain/entities"
	"github.com/fredcamaral/pptgrid/internal/domain/ports"
)

// LocalFileName is the per-project configuration file looked up next to a deck
const LocalFileName = "pptgrid.toml"

// TOMLLoader reads configuration layers from TOML files
type TOMLLoader struct {
	globalPath string
}

// NewTOMLLoader reads the global layer from $XDG_CONFIG_HOME/pptgrid/config.toml,
// falling back to ~/.config when XDG_CONFIG_HOME is unset.
func NewTOMLLoader() *TOMLLoader {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".config")
	}
	return NewTOMLLoaderAt(filepath.Join(base, "pptgrid", "config.toml"))
}

// NewTOMLLoaderAt reads the global layer from globalPath
func NewTOMLLoaderAt(globalPath string) *TOMLLoader {
	return &TOMLLoader{globalPath: globalPath}
}

// LoadGlobal reads the global file, writing the defaults there first when
// it does not exist yet.
func (l *TOMLLoader) LoadGlobal(ctx context.Context) (*entities.Config, error) {
	cfg, err := l.decode(l.globalPath)
	if !errors.Is(err, fs.ErrNotExist) {
		return cfg, err
	}
	if err := l.CreateDefaults(ctx, l.globalPath); err != nil {
		return nil, fmt.Errorf("creating defaults: %w", err)
	}
	return l.decode(l.globalPath)
}

// LoadLocal reads pptgrid.toml from dir. A missing file yields nil, nil.
func (l *TOMLLoader) LoadLocal(_ context.Context, dir string) (*entities.Config, error) {
	cfg, err := l.decode(l.GetLocalPath(dir))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return cfg, err
}

// LoadFile reads a file named on the command line; it must exist
func (l *TOMLLoader) LoadFile(_ context.Context, path string) (*entities.Config, error) {
	return l.decode(path)
}

// CreateDefaults writes the default configuration to path, creating its
// directory as needed.
func (l *TOMLLoader) CreateDefaults(_ context.Context, path string) error {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = "  "
	if err := enc.Encode(GetDefaultConfig()); err != nil {
		return fmt.Errorf("encoding defaults: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

// GetGlobalPath returns the global configuration path
func (l *TOMLLoader) GetGlobalPath() string {
	return l.globalPath
}

// GetLocalPath returns where the local configuration for dir lives
func (l *TOMLLoader) GetLocalPath(dir string) string {
	return filepath.Join(dir, LocalFileName)
}

// decode parses and validates path. Keys present in the file are marked on
// the result so that merging can tell an explicit false from an absent key.
// Unknown keys are rejected.
func (l *TOMLLoader) decode(path string) (*entities.Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 - one of the configuration layers
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg entities.Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing TOML from %s: %w", path, err)
	}
	if extra := md.Undecoded(); len(extra) > 0 {
		return nil, fmt.Errorf("unknown key %q in %s", extra[0].String(), path)
	}

	keys := make([]string, 0, len(md.Keys()))
	for _, key := range md.Keys() {
		keys = append(keys, key.String())
	}
	cfg.MarkSet(keys...)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config in %s: %w", path, err)
	}
	return &cfg, nil
}

var _ ports.ConfigLoader = (*TOMLLoader)(nil)
