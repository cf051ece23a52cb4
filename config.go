package recipebrowser

import (
	"errors"
	"time"

	"github.com/joeshaw/envdecode"
)

type CatalogConfig struct {
	BaseURL           string        `env:"CATALOG_BASE_URL,default=https://www.themealdb.com/api/json/v1/1"`
	RequestsPerSecond float64       `env:"CATALOG_RPS,default=10"`
	Burst             int           `env:"CATALOG_BURST,default=5"`
	Timeout           time.Duration `env:"CATALOG_TIMEOUT,default=15s"`
}

type ListConfig struct {
	PageSize       int           `env:"LIST_PAGE_SIZE,default=12"`
	SearchDebounce time.Duration `env:"LIST_SEARCH_DEBOUNCE,default=500ms"`
	Freshness      time.Duration `env:"LIST_FRESHNESS,default=5m"`
	FanOutLimit    int           `env:"LIST_FANOUT_LIMIT,default=8"`
	RetryAfter     time.Duration `env:"LIST_RETRY_AFTER,default=15s"`
}

type FavoritesConfig struct {
	Path     string `env:"FAVORITES_PATH,default=artifacts/favorites.json"`
	S3Bucket string `env:"FAVORITES_S3_BUCKET"`
	S3Key    string `env:"FAVORITES_S3_KEY,default=favorites.json"`
}

type ShareConfig struct {
	SlackWebhookURL string `env:"SLACK_WEBHOOK_URL"`
	SlackChannel    string `env:"SLACK_CHANNEL,default=#groceries"`
}

// LoadConfig decodes the environment into cfg. A struct whose variables are all
// unset and have no defaults is not an error.
func LoadConfig(cfg any) error {
	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return err
	}
	return nil
}
