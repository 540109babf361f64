package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/piwi3910/sheetnest/internal/engine"
	"github.com/piwi3910/sheetnest/internal/model"
)

// EnvPrefix is prepended to every environment override, e.g.
// SHEETNEST_NEST_KERF or SHEETNEST_SERVER_PORT.
const EnvPrefix = "SHEETNEST"

// ConfigName is the base name searched for when no explicit path is given.
const ConfigName = "sheetnest"

// DefaultConfigDir returns the default directory for application configuration.
// On all platforms this is ~/.sheetnest/
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".sheetnest")
}

// DefaultConfigPath returns the default path for the application config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), ConfigName+".yaml")
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, model.DefaultAppConfig())
	return v
}

// setDefaults registers every leaf key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, cfg model.AppConfig) {
	v.SetDefault("nest.kerf", cfg.Nest.Kerf)
	v.SetDefault("nest.default_sheet.width", cfg.Nest.DefaultSheet.Width)
	v.SetDefault("nest.default_sheet.height", cfg.Nest.DefaultSheet.Height)
	v.SetDefault("nest.max_sheets_per_material", cfg.Nest.MaxSheetsPerMaterial)
	v.SetDefault("nest.parallel", cfg.Nest.Parallel)

	v.SetDefault("sheet_sizes", cfg.SheetSizes)

	v.SetDefault("server.port", cfg.Server.Port)
	v.SetDefault("server.mode", cfg.Server.Mode)
	v.SetDefault("server.read_timeout", cfg.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", cfg.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", cfg.Server.ShutdownTimeout)
	v.SetDefault("server.max_body_bytes", cfg.Server.MaxBodyBytes)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.output", cfg.Log.Output)
	v.SetDefault("log.file_path", cfg.Log.FilePath)
	v.SetDefault("log.max_size", cfg.Log.MaxSize)
	v.SetDefault("log.max_backups", cfg.Log.MaxBackups)
	v.SetDefault("log.max_age", cfg.Log.MaxAge)
	v.SetDefault("log.compress", cfg.Log.Compress)
}

// LoadAppConfig reads the application config. With an empty path it searches
// the working directory and DefaultConfigDir for sheetnest.yaml. A missing
// file is not an error: defaults plus environment overrides are returned.
func LoadAppConfig(path string) (model.AppConfig, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(ConfigName)
		v.AddConfigPath(".")
		v.AddConfigPath(DefaultConfigDir())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return model.AppConfig{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg model.AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return model.AppConfig{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.SheetSizes == nil {
		cfg.SheetSizes = []model.MaterialSheet{}
	}

	if err := engine.ValidateSettings(cfg.Nest); err != nil {
		return model.AppConfig{}, err
	}
	if err := engine.ValidateSheetSizes(cfg.SheetSizeTable()); err != nil {
		return model.AppConfig{}, err
	}
	return cfg, nil
}

// SaveAppConfig persists an AppConfig to the given path as YAML.
// It creates any missing parent directories automatically.
func SaveAppConfig(path string, cfg model.AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.Set("nest", map[string]interface{}{
		"kerf": cfg.Nest.Kerf,
		"default_sheet": map[string]interface{}{
			"width":  cfg.Nest.DefaultSheet.Width,
			"height": cfg.Nest.DefaultSheet.Height,
		},
		"max_sheets_per_material": cfg.Nest.MaxSheetsPerMaterial,
		"parallel":                cfg.Nest.Parallel,
	})
	sheets := make([]map[string]interface{}, 0, len(cfg.SheetSizes))
	for _, s := range cfg.SheetSizes {
		sheets = append(sheets, map[string]interface{}{
			"material": s.Material,
			"width":    s.Width,
			"height":   s.Height,
		})
	}
	v.Set("sheet_sizes", sheets)
	v.Set("server", map[string]interface{}{
		"port":             cfg.Server.Port,
		"mode":             cfg.Server.Mode,
		"read_timeout":     cfg.Server.ReadTimeout.String(),
		"write_timeout":    cfg.Server.WriteTimeout.String(),
		"shutdown_timeout": cfg.Server.ShutdownTimeout.String(),
		"max_body_bytes":   cfg.Server.MaxBodyBytes,
	})
	v.Set("log", map[string]interface{}{
		"level":       cfg.Log.Level,
		"format":      cfg.Log.Format,
		"output":      cfg.Log.Output,
		"file_path":   cfg.Log.FilePath,
		"max_size":    cfg.Log.MaxSize,
		"max_backups": cfg.Log.MaxBackups,
		"max_age":     cfg.Log.MaxAge,
		"compress":    cfg.Log.Compress,
	})

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
