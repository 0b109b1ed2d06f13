package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/intellimanage/platform/internal/database"
	"github.com/intellimanage/platform/internal/logger"
)

// Config is the full server configuration, loaded from environment
// variables with the INTELLIMANAGE_ prefix and an optional .env file.
type Config struct {
	Port       string          `mapstructure:"port"`
	CORSOrigin string          `mapstructure:"corsorigin"`
	DB         database.Config `mapstructure:"db"`
	Log        logger.Config   `mapstructure:"log"`
	AI         AIConfig        `mapstructure:"ai"`
	SMTP       SMTPConfig      `mapstructure:"smtp"`
	Storage    StorageConfig   `mapstructure:"storage"`
}

// AIConfig holds the external generation API settings.
type AIConfig struct {
	URL string `mapstructure:"url"`
	Key string `mapstructure:"key"`
}

// SMTPConfig holds mail delivery settings. Empty Host disables mail.
type SMTPConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	User string `mapstructure:"user"`
	Pass string `mapstructure:"pass"`
	From string `mapstructure:"from"`
}

// StorageConfig holds MinIO settings. Empty Endpoint disables storage.
type StorageConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"accesskey"`
	SecretKey string `mapstructure:"secretkey"`
	UseSSL    bool   `mapstructure:"usessl"`
}

// Load loads configuration from .env file and environment variables.
// prefix: environment variable prefix (e.g. "INTELLIMANAGE_")
// target: pointer to the config struct to load into
func Load(prefix string, target interface{}) error {
	v := viper.New()

	// 1. Load from .env file (if exists)
	v.SetConfigFile(".env")
	if err := v.ReadInConfig(); err != nil {
		// Ignore error if file doesn't exist, it's optional
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Parsing errors surface later during Unmarshal if critical.
		}
	}

	// 2. Load from environment variables.
	// Viper's AutomaticEnv doesn't work well with Unmarshal if keys
	// aren't known, so iterate env vars and populate viper directly.
	prefixUpper := strings.ToUpper(prefix)
	for _, envStr := range os.Environ() {
		pair := strings.SplitN(envStr, "=", 2)
		key, value := pair[0], pair[1]

		if strings.HasPrefix(key, prefixUpper) {
			// INTELLIMANAGE_DB_HOST -> db.host
			propKey := strings.TrimPrefix(key, prefixUpper)
			propKey = strings.ToLower(strings.ReplaceAll(propKey, "_", "."))
			propKey = strings.TrimPrefix(propKey, ".")

			v.Set(propKey, value)
		}
	}

	// 3. Unmarshal into struct
	if err := v.Unmarshal(target); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return nil
}
