package model

import (
	"sort"
	"time"
)

// AppConfig holds application-wide configuration loaded from file and environment.
type AppConfig struct {
	Nest       NestSettings    `json:"nest" mapstructure:"nest" yaml:"nest"`
	SheetSizes []MaterialSheet `json:"sheet_sizes" mapstructure:"sheet_sizes" yaml:"sheet_sizes"`
	Server     ServerConfig    `json:"server" mapstructure:"server" yaml:"server"`
	Log        LogConfig       `json:"log" mapstructure:"log" yaml:"log"`
}

// MaterialSheet is one configured sheet size. Config files hold a list of
// these rather than a map so material names keep their case.
type MaterialSheet struct {
	Material string  `json:"material" mapstructure:"material" yaml:"material"`
	Width    float64 `json:"width" mapstructure:"width" yaml:"width"`
	Height   float64 `json:"height" mapstructure:"height" yaml:"height"`
}

// SheetSizeTable converts the configured list into a lookup map. Later
// entries win over earlier ones for the same material.
func (c AppConfig) SheetSizeTable() SheetSizeConfig {
	table := make(SheetSizeConfig, len(c.SheetSizes))
	for _, s := range c.SheetSizes {
		table[s.Material] = SheetSize{Width: s.Width, Height: s.Height}
	}
	return table
}

// MaterialSheets converts a lookup map into a list sorted by material.
func MaterialSheets(sizes SheetSizeConfig) []MaterialSheet {
	out := make([]MaterialSheet, 0, len(sizes))
	for m, s := range sizes {
		out = append(out, MaterialSheet{Material: m, Width: s.Width, Height: s.Height})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Material < out[j].Material })
	return out
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port            int           `json:"port" mapstructure:"port" yaml:"port"`
	Mode            string        `json:"mode" mapstructure:"mode" yaml:"mode"` // gin mode: "debug", "release", "test"
	ReadTimeout     time.Duration `json:"read_timeout" mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout" mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `json:"max_body_bytes" mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level      string `json:"level" mapstructure:"level" yaml:"level"`
	Format     string `json:"format" mapstructure:"format" yaml:"format"` // "json" or "console"
	Output     string `json:"output" mapstructure:"output" yaml:"output"` // "stdout" or "stderr"
	FilePath   string `json:"file_path" mapstructure:"file_path" yaml:"file_path"`
	MaxSize    int    `json:"max_size" mapstructure:"max_size" yaml:"max_size"` // MB
	MaxBackups int    `json:"max_backups" mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge     int    `json:"max_age" mapstructure:"max_age" yaml:"max_age"` // days
	Compress   bool   `json:"compress" mapstructure:"compress" yaml:"compress"`
}

// DefaultAppConfig returns an AppConfig populated with the defaults used
// when no config file is present.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Nest:       DefaultSettings(),
		SheetSizes: []MaterialSheet{},
		Server: ServerConfig{
			Port:            8080,
			Mode:            "release",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    8 << 20,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			Output:     "stderr",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		},
	}
}
