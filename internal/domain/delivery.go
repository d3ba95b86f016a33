package domain

import "context"

// DeliveryLog remembers webhook deliveries that were already reconciled so
// redeliveries of the same message can be acknowledged without side effects.
type DeliveryLog interface {
	Seen(ctx context.Context, deliveryID string) (bool, error)
	MarkProcessed(ctx context.Context, deliveryID string) error
}

// NoopDeliveryLog never reports a delivery as seen.
// Reconciliation is idempotent, so running without a log is still correct.
type NoopDeliveryLog struct{}

func (NoopDeliveryLog) Seen(context.Context, string) (bool, error) { return false, nil }

func (NoopDeliveryLog) MarkProcessed(context.Context, string) error { return nil }
