package config

import (
	"github.com/caarlos0/env/v11"
)

// Config is the process-wide configuration, provisioned once at startup.
// API credentials and the signing secret are read-only and never logged.
type Config struct {
	Port         string `env:"PORT" envDefault:"8080"`
	AppURL       string `env:"APP_URL" envDefault:"http://localhost:8080"`
	DashboardURL string `env:"DASHBOARD_URL" envDefault:"http://localhost:5173"`

	MongoURI      string `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGODB_DATABASE" envDefault:"shopbridge"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	ShopifyAPIKey    string   `env:"SHOPIFY_API_KEY,required"`
	ShopifyAPISecret string   `env:"SHOPIFY_API_SECRET,required"`
	Scopes           []string `env:"SHOPIFY_SCOPES" envSeparator:"," envDefault:"read_products,write_products,read_orders,write_orders,read_customers"`

	RetentionWindow    int `env:"PII_RETENTION_WINDOW" envDefault:"100"`
	RedactionBatchSize int `env:"PII_REDACTION_BATCH_SIZE" envDefault:"200"`
	RedactionWorkers   int `env:"PII_REDACTION_WORKERS" envDefault:"4"`
}

// Read parses configuration from the environment.
func Read() (Config, error) {
	return env.ParseAs[Config]()
}
