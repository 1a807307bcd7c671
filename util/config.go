package util

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

const Name = "don"
const ConfigFileName = "config.yaml"

//go:embed config_default.yaml
var embeddedConfig []byte

type AppConfig struct {
	Conf struct {
		Host     string
		SshPort  int    `yaml:"sshPort"`
		HttpPort int    `yaml:"httpPort"`
		ApiUrl   string `yaml:"apiUrl"`
		WithSsh  bool   `yaml:"withSsh"`
		WithWeb  bool   `yaml:"withWeb"`
		LogLevel string `yaml:"logLevel"`
		DbPath   string `yaml:"dbPath"`
		PageSize int    `yaml:"pageSize"`
	}
}

func ReadConf() (*AppConfig, error) {
	c := &AppConfig{}

	// Try to resolve config file path (local first, then user dir)
	configPath := ResolveFilePath(ConfigFileName)

	buf, err := os.ReadFile(configPath)
	if err != nil {
		log.Info("Config file not found, using embedded defaults", "path", configPath)
		buf = embeddedConfig

		configDir, dirErr := GetConfigDir()
		if dirErr == nil {
			userConfigPath := configDir + "/" + ConfigFileName
			if writeErr := os.WriteFile(userConfigPath, embeddedConfig, 0644); writeErr != nil {
				log.Warn("Could not write default config", "path", userConfigPath, "err", writeErr)
			} else {
				log.Info("Created default config file", "path", userConfigPath)
			}
		}
	}

	if err := yaml.Unmarshal(buf, c); err != nil {
		return nil, fmt.Errorf("in config file: %w", err)
	}

	applyEnv(c)

	if c.Conf.PageSize <= 0 {
		c.Conf.PageSize = 20
	}

	return c, nil
}

func applyEnv(c *AppConfig) {
	if v := os.Getenv("DON_HOST"); v != "" {
		c.Conf.Host = v
	}
	if v := os.Getenv("DON_SSHPORT"); v != "" {
		c.Conf.SshPort = envInt("DON_SSHPORT", v, c.Conf.SshPort)
	}
	if v := os.Getenv("DON_HTTPPORT"); v != "" {
		c.Conf.HttpPort = envInt("DON_HTTPPORT", v, c.Conf.HttpPort)
	}
	if v, ok := os.LookupEnv("DON_API_URL"); ok {
		c.Conf.ApiUrl = v
	}
	if v := os.Getenv("DON_WITH_SSH"); v != "" {
		c.Conf.WithSsh = v == "true"
	}
	if v := os.Getenv("DON_WITH_WEB"); v != "" {
		c.Conf.WithWeb = v == "true"
	}
	if v := os.Getenv("DON_LOG_LEVEL"); v != "" {
		c.Conf.LogLevel = v
	}
	if v := os.Getenv("DON_DB_PATH"); v != "" {
		c.Conf.DbPath = v
	}
}

// envInt keeps the configured value when the variable is not a number
func envInt(name, value string, fallback int) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Warn("Ignoring invalid environment value", "var", name, "value", value)
		return fallback
	}
	return n
}
