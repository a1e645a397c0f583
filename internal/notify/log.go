package notify

import (
	"context"

	"storefront-be/internal/logger"
	"storefront-be/internal/order"

	"go.uber.org/zap"
)

// LogSink records the order in the application log. It is the fallback
// when no outbound channel is configured.
type LogSink struct{}

func (LogSink) Name() string { return "log" }

func (LogSink) Send(ctx context.Context, o order.Order) error {
	logger.FromCtx(ctx).Info("new order",
		zap.String("layer", "notify"),
		zap.String("order_id", o.ID.String()),
		zap.String("customer", o.CustomerName()),
		zap.String("email", o.Email),
		zap.Int("line_items", len(o.Products)),
		zap.String("total", o.Total.StringFixed(2)),
	)
	return nil
}
