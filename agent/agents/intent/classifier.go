package intent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/flightdesk/agent/contract"
	logx "github.com/tanpawarit/flightdesk/pkg/logger"
)

type Config struct {
	Timeout time.Duration
}

// Classifier maps free text onto the closed intent set through a Predictor.
type Classifier struct {
	predictor Predictor
	timeout   time.Duration
	validate  *validator.Validate
	log       zerolog.Logger
}

var _ contractx.Classifier = (*Classifier)(nil)

func New(predictor Predictor, cfg Config) (*Classifier, error) {
	if predictor == nil {
		return nil, fmt.Errorf("%w: predictor is required", contractx.ErrValidation)
	}
	return &Classifier{
		predictor: predictor,
		timeout:   cfg.Timeout,
		validate:  validator.New(),
		log:       logx.WithComponent("intent_classifier"),
	}, nil
}

func (c *Classifier) Classify(ctx context.Context, text string) (contractx.IntentClassification, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	out, err := c.predictor.Predict(ctx, text)
	if err != nil {
		c.log.Warn().Err(err).Msg("intent prediction failed")
		return contractx.IntentClassification{}, err
	}

	if err := c.validate.Struct(out); err != nil {
		return contractx.IntentClassification{}, fmt.Errorf("%w: %v", contractx.ErrMalformedClassification, err)
	}

	result := contractx.IntentClassification{
		Intent:     contractx.Intent(strings.ToUpper(strings.TrimSpace(out.Intent))),
		Confidence: *out.Confidence,
	}
	if err := result.Validate(); err != nil {
		return contractx.IntentClassification{}, err
	}

	c.log.Debug().Str("intent", string(result.Intent)).Float64("confidence", result.Confidence).Msg("intent classified")
	return result, nil
}
