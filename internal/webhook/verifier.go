package webhook

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	svix "github.com/svix/svix-webhooks/go"
)

// Svix delivery headers
const (
	HeaderID        = "svix-id"
	HeaderTimestamp = "svix-timestamp"
	HeaderSignature = "svix-signature"
)

// Verifier checks Svix signatures on incoming deliveries
type Verifier struct {
	wh *svix.Webhook
}

// NewVerifier decodes a whsec_ signing secret
func NewVerifier(secret string) (*Verifier, error) {
	secret = strings.TrimSpace(secret)
	if strings.TrimPrefix(secret, "whsec_") == "" {
		return nil, ErrInvalidSecret
	}
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSecret, err)
	}
	return &Verifier{wh: wh}, nil
}

// Verify authenticates body against the svix-* headers. Signature and
// tolerance checks run in the svix SDK.
func (v *Verifier) Verify(headers http.Header, body []byte) error {
	msgID := headers.Get(HeaderID)
	timestamp := headers.Get(HeaderTimestamp)
	if msgID == "" || timestamp == "" || headers.Get(HeaderSignature) == "" {
		return ErrMissingHeaders
	}
	if _, err := strconv.ParseInt(timestamp, 10, 64); err != nil {
		return ErrInvalidTimestamp
	}

	err := v.wh.Verify(body, headers)
	if err == nil {
		return nil
	}
	// a signature that only fails the tolerance window is stale, not forged
	if v.wh.VerifyIgnoringTimestamp(body, headers) == nil {
		return ErrTimestampOutOfRange
	}
	return fmt.Errorf("%w: %v", ErrNoMatchingSignature, err)
}

// Sign returns the svix-signature header value ("v1,<base64>") for a message
func (v *Verifier) Sign(msgID string, ts time.Time, body []byte) (string, error) {
	return v.wh.Sign(msgID, ts, body)
}
