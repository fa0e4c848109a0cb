package config

import (
	"errors"
	"path/filepath"
	"reflect"
	"strings"

	"mod-sync/core/database"
	"mod-sync/core/logger"
	"mod-sync/core/selfupdate"
	"mod-sync/core/server"
	"mod-sync/core/settings"
	"mod-sync/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// HistoryFileName is the sqlite ledger created in the application folder
// when no database name is configured.
const HistoryFileName = "history.db"

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Sync holds the mod synchronization settings.
	Sync settings.Config `mapstructure:"sync"`
	// Server holds configuration for the local HTTP control surface.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the object-storage mod mirror.
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the transfer history ledger.
	Database database.Config `mapstructure:"database"`
	// Update holds configuration for the release feed check.
	Update selfupdate.Config `mapstructure:"update"`
}

// LoadConfig loads configuration from an optional config file in path,
// environment variables and the .env file.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env file if it exists
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// 2. Optional config.yaml / config.toml
	v.SetConfigName("config")
	v.AddConfigPath(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	// Map environment variables to nested keys (e.g. SYNC_SERVER_IP -> sync.server_ip)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.Database.Driver == database.DriverSQLite && config.Database.Name == "" {
		config.Database.Name = filepath.Join(config.Sync.ResolvedCacheDir(), HistoryFileName)
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		// Build the key
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
