package contract

import "errors"

var (
	ErrModelInvoke             = errors.New("model invoke failed")
	ErrSchemaViolation         = errors.New("model response violates schema")
	ErrMalformedClassification = errors.New("malformed intent classification")
	ErrPromptMissing           = errors.New("required prompt is missing")
	ErrValidation              = errors.New("validation failed")
	ErrUnknownCapability       = errors.New("unknown capability")
	ErrLoopAborted             = errors.New("capability loop aborted")
)
