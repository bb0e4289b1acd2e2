package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	DefaultImage    = "zmkfirmware/zmk-build-arm:stable"
	DefaultOutput   = "zmk-target"
	DefaultBaudRate = 115200
)

// Settings holds tool-level options that are not part of the build
// definition: container image, output directory, serial port defaults.
type Settings struct {
	Image      string `mapstructure:"image"`
	OutputDir  string `mapstructure:"output_dir"`
	Jobs       int    `mapstructure:"jobs"`
	SerialPort string `mapstructure:"serial_port"`
	BaudRate   int    `mapstructure:"baud_rate"`
}

// LoadSettings merges settings in order: defaults, the global config file
// (~/.config/lfz/config.yaml), the project config file (<root>/.lfz/
// config.yaml), then LFZ_* environment variables. Missing files are fine.
func LoadSettings(projectRoot string) Settings {
	v := viper.New()
	v.SetDefault("image", DefaultImage)
	v.SetDefault("output_dir", DefaultOutput)
	v.SetDefault("jobs", 0) // 0 = one job per target
	v.SetDefault("serial_port", "")
	v.SetDefault("baud_rate", DefaultBaudRate)

	v.SetEnvPrefix("lfz")
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "lfz"))
	}
	_ = v.ReadInConfig() // absent global config is not an error

	if projectRoot != "" {
		v.SetConfigFile(filepath.Join(projectRoot, ".lfz", "config.yaml"))
		_ = v.MergeInConfig()
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{
			Image:     DefaultImage,
			OutputDir: DefaultOutput,
			BaudRate:  DefaultBaudRate,
		}
	}
	return s
}
