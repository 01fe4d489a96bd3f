package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/pptgrid/internal/domain/entities"
)

func validServiceConfig(port int) *entities.Config {
	return &entities.Config{
		Server:  entities.ServerConfig{Host: "127.0.0.1", Port: port},
		Watcher: entities.WatcherConfig{IntervalMs: 200},
	}
}

func TestConfigService_LoadConfig(t *testing.T) {
	t.Run("merges defaults, global and local in order", func(t *testing.T) {
		loader := &MockConfigLoader{}
		merger := &MockConfigMerger{}

		defaultConfig := validServiceConfig(3000)
		globalConfig := validServiceConfig(4000)
		localConfig := validServiceConfig(5000)
		mergedConfig := validServiceConfig(5000)
		envConfig := validServiceConfig(6000)
		finalConfig := validServiceConfig(7000)
		flags := map[string]interface{}{"port": 7000}

		merger.On("Merge", []*entities.Config(nil)).Return(defaultConfig).Once()
		loader.On("LoadGlobal", mock.Anything).Return(globalConfig, nil)
		loader.On("LoadLocal", mock.Anything, "/test/dir").Return(localConfig, nil)
		merger.On("Merge", []*entities.Config{defaultConfig, globalConfig, localConfig}).Return(mergedConfig).Once()
		merger.On("ApplyEnvVars", mergedConfig).Return(envConfig)
		merger.On("ApplyFlags", envConfig, flags).Return(finalConfig)

		service := NewConfigService(loader, merger)
		result, err := service.LoadConfig(context.Background(), "/test/dir", flags)

		require.NoError(t, err)
		assert.Same(t, finalConfig, result)
		loader.AssertExpectations(t)
		merger.AssertExpectations(t)
	})

	t.Run("explicit config file replaces local config", func(t *testing.T) {
		loader := &MockConfigLoader{}
		merger := &MockConfigMerger{}
		cfg := validServiceConfig(3000)
		fileConfig := validServiceConfig(8080)

		merger.On("Merge", []*entities.Config(nil)).Return(cfg).Once()
		loader.On("LoadGlobal", mock.Anything).Return(nil, nil)
		loader.On("LoadFile", mock.Anything, "/etc/pptgrid.toml").Return(fileConfig, nil)
		merger.On("Merge", []*entities.Config{cfg, fileConfig}).Return(fileConfig).Once()
		merger.On("ApplyEnvVars", fileConfig).Return(fileConfig)
		merger.On("ApplyFlags", fileConfig, map[string]interface{}(nil)).Return(fileConfig)

		service := NewConfigService(loader, merger).WithConfigFile("/etc/pptgrid.toml")
		result, err := service.LoadConfig(context.Background(), "/test/dir", nil)

		require.NoError(t, err)
		assert.Equal(t, 8080, result.Server.Port)
		loader.AssertNotCalled(t, "LoadLocal", mock.Anything, mock.Anything)
	})

	t.Run("global config error", func(t *testing.T) {
		loader := &MockConfigLoader{}
		merger := &MockConfigMerger{}

		merger.On("Merge", mock.Anything).Return(&entities.Config{})
		loader.On("LoadGlobal", mock.Anything).Return(nil, errors.New("global config error"))

		_, err := NewConfigService(loader, merger).LoadConfig(context.Background(), "/test/dir", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "loading global config")
	})

	t.Run("local config error", func(t *testing.T) {
		loader := &MockConfigLoader{}
		merger := &MockConfigMerger{}

		merger.On("Merge", mock.Anything).Return(&entities.Config{})
		loader.On("LoadGlobal", mock.Anything).Return(&entities.Config{}, nil)
		loader.On("LoadLocal", mock.Anything, "/test/dir").Return(nil, errors.New("local config error"))

		_, err := NewConfigService(loader, merger).LoadConfig(context.Background(), "/test/dir", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "loading local config")
	})

	t.Run("final validation error", func(t *testing.T) {
		loader := &MockConfigLoader{}
		merger := &MockConfigMerger{}
		invalid := validServiceConfig(3000)
		invalid.Output.Engine = "pdf"

		loader.On("LoadGlobal", mock.Anything).Return(&entities.Config{}, nil)
		loader.On("LoadLocal", mock.Anything, "/test/dir").Return(nil, nil)
		merger.On("Merge", mock.Anything).Return(&entities.Config{})
		merger.On("ApplyEnvVars", mock.Anything).Return(&entities.Config{})
		merger.On("ApplyFlags", mock.Anything, mock.Anything).Return(invalid)

		_, err := NewConfigService(loader, merger).LoadConfig(context.Background(), "/test/dir", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "final config validation")
	})
}

func TestConfigService_ValidateConfig(t *testing.T) {
	service := NewConfigService(&MockConfigLoader{}, &MockConfigMerger{})

	assert.NoError(t, service.ValidateConfig(validServiceConfig(3000)))
	assert.EqualError(t, service.ValidateConfig(nil), "config cannot be nil")
	assert.Error(t, service.ValidateConfig(validServiceConfig(-1)))
}

func TestConfigService_CreateConfigFiles(t *testing.T) {
	t.Run("global", func(t *testing.T) {
		loader := &MockConfigLoader{}
		loader.On("GetGlobalPath").Return("/home/u/.config/pptgrid/config.toml")
		loader.On("CreateDefaults", mock.Anything, "/home/u/.config/pptgrid/config.toml").Return(nil)

		err := NewConfigService(loader, &MockConfigMerger{}).CreateGlobalConfig(context.Background())
		require.NoError(t, err)
		loader.AssertExpectations(t)
	})

	t.Run("local", func(t *testing.T) {
		loader := &MockConfigLoader{}
		loader.On("GetLocalPath", "/decks").Return("/decks/pptgrid.toml")
		loader.On("CreateDefaults", mock.Anything, "/decks/pptgrid.toml").Return(errors.New("read-only"))

		_, err := NewConfigService(loader, &MockConfigMerger{}).CreateLocalConfig(context.Background(), "/decks")
		assert.EqualError(t, err, "read-only")
	})

	t.Run("paths", func(t *testing.T) {
		loader := &MockConfigLoader{}
		loader.On("GetGlobalPath").Return("/g.toml")
		loader.On("GetLocalPath", "/decks").Return("/decks/pptgrid.toml")

		service := NewConfigService(loader, &MockConfigMerger{})
		global, local := service.Paths("/decks")
		assert.Equal(t, "/g.toml", global)
		assert.Equal(t, "/decks/pptgrid.toml", local)

		_, local = service.WithConfigFile("/x.toml").Paths("/decks")
		assert.Equal(t, "/x.toml", local)
	})
}
