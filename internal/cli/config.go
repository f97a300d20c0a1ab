package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables read as defaults, e.g.
// SHEETQ_FORMAT=json.
const EnvPrefix = "SHEETQ"

// Settings are the defaults for flags the user did not set.
type Settings struct {
	Format  string `mapstructure:"format"`
	Trim    string `mapstructure:"trim"`
	Strict  string `mapstructure:"strict"`
	Verbose bool   `mapstructure:"verbose"`
}

// LoadSettings reads defaults from the optional config file at path (any
// format viper understands: yaml, json, toml) overlaid by SHEETQ_*
// environment variables.
func LoadSettings(path string) (Settings, error) {
	v := viper.New()
	v.SetDefault("format", "text")
	v.SetDefault("trim", "none")
	v.SetDefault("strict", "none")
	v.SetDefault("verbose", false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return s, nil
}
