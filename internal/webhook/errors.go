package webhook

import "errors"

// Verification errors
var (
	ErrMissingHeaders      = errors.New("missing svix headers")
	ErrInvalidTimestamp    = errors.New("invalid svix timestamp")
	ErrTimestampOutOfRange = errors.New("svix timestamp outside tolerance")
	ErrNoMatchingSignature = errors.New("no matching signature")
	ErrInvalidSecret       = errors.New("invalid webhook secret")
)

// Payload errors
var (
	ErrInvalidPayload = errors.New("invalid webhook payload")
	ErrNoEmailAddress = errors.New("user has no email address")
)
