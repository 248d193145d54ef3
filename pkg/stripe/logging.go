package stripe

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v84"

	"github.com/Coco120903/BananaMeow-sub000/pkg/logger"
)

// gatewayLogger feeds stripe-go's internal request logging into the service
// logger. Request level chatter is demoted to debug.
type gatewayLogger struct {
	ctx  context.Context
	logg *logger.Logger
}

var _ stripe.LeveledLoggerInterface = (*gatewayLogger)(nil)

func newGatewayLogger(ctx context.Context, logg *logger.Logger) stripe.LeveledLoggerInterface {
	if logg == nil {
		return &stripe.LeveledLogger{Level: stripe.LevelNull}
	}
	return &gatewayLogger{ctx: logg.WithField(ctx, "component", "stripe"), logg: logg}
}

func (g *gatewayLogger) Debugf(format string, v ...any) {
	g.logg.Debug(g.ctx, fmt.Sprintf(format, v...))
}

func (g *gatewayLogger) Infof(format string, v ...any) {
	g.logg.Debug(g.ctx, fmt.Sprintf(format, v...))
}

func (g *gatewayLogger) Warnf(format string, v ...any) {
	g.logg.Warn(g.ctx, fmt.Sprintf(format, v...))
}

func (g *gatewayLogger) Errorf(format string, v ...any) {
	g.logg.Error(g.ctx, fmt.Sprintf(format, v...), nil)
}
