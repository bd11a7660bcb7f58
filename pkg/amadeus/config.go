package amadeus

import "time"

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://test.api.amadeus.com"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	APISecret          string        `envconfig:"API_SECRET" split_words:"true" required:"true"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	TokenRetryAttempts uint64        `envconfig:"TOKEN_RETRY_ATTEMPTS" split_words:"true" default:"3"`
	TokenRetryBase     time.Duration `envconfig:"TOKEN_RETRY_BASE" split_words:"true" default:"1s"`
	TokenRetryCap      time.Duration `envconfig:"TOKEN_RETRY_CAP" split_words:"true" default:"8s"`
}
