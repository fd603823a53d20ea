package config

import (
	"reflect"
	"strings"

	"payment-integrator/core/database"
	"payment-integrator/core/logger"
	"payment-integrator/core/models"
	"payment-integrator/core/reconcile"
	"payment-integrator/core/server"
	"payment-integrator/core/storage"
	"payment-integrator/feature/importer"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the dashboard HTTP server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the report archive (S3/MinIO).
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Ledger is the accounting database (students, invoices, payments).
	Ledger database.Config `mapstructure:"ledger"`
	// Xendit is the Xendit gateway database.
	Xendit database.Config `mapstructure:"xendit"`
	// PaperID is the Paper.id gateway database.
	PaperID database.Config `mapstructure:"paperid"`
	// Reconcile holds reconciliation run settings.
	Reconcile reconcile.Config `mapstructure:"reconcile"`
	// Importer holds CSV import settings.
	Importer importer.Config `mapstructure:"importer"`
}

// storeNames are the default database names of each store.
var storeNames = map[string]string{
	"ledger":  "ledger",
	"xendit":  "xendit",
	"paperid": "paperid",
}

// Gateway returns the database configuration of a payment gateway.
func (c *Config) Gateway(source models.Source) (database.Config, bool) {
	switch source {
	case models.SourceXendit:
		return c.Xendit, true
	case models.SourcePaperID:
		return c.PaperID, true
	default:
		return database.Config{}, false
	}
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")
	for section, name := range storeNames {
		v.SetDefault(section+".name", name)
	}

	// Map environment variables to nested keys (e.g. LEDGER_HOST -> ledger.host)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
