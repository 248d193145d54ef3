package notifications

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/Coco120903/BananaMeow-sub000/pkg/logger"
)

const defaultSendTimeout = 10 * time.Second

type deliveryRecorder interface {
	Record(kind string, err error)
}

// DispatcherOptions configures a Dispatcher.
type DispatcherOptions struct {
	Enabled   bool
	Timeout   time.Duration
	FromEmail string
	Logger    *logger.Logger
	Metrics   deliveryRecorder
}

// Dispatcher sends notifications off the request path. A failed send is
// logged and counted; it never reaches the caller.
type Dispatcher struct {
	sender  Sender
	enabled bool
	timeout time.Duration
	from    string
	logg    *logger.Logger
	metrics deliveryRecorder
	wg      sync.WaitGroup
}

// NewDispatcher wraps sender.
func NewDispatcher(sender Sender, opts DispatcherOptions) (*Dispatcher, error) {
	if sender == nil {
		return nil, errors.New("notification sender required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultSendTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &Dispatcher{
		sender:  sender,
		enabled: opts.Enabled,
		timeout: opts.Timeout,
		from:    strings.TrimSpace(opts.FromEmail),
		logg:    opts.Logger,
		metrics: opts.Metrics,
	}, nil
}

// Dispatch schedules n for delivery and reports whether a send was started.
// Notifications without a recipient are skipped.
func (d *Dispatcher) Dispatch(ctx context.Context, n Notification) bool {
	if d == nil || !d.enabled {
		return false
	}
	if strings.TrimSpace(n.To) == "" {
		d.logg.Info(d.logg.WithSessionID(ctx, n.SessionID), "no payer email; skipping notification")
		return false
	}
	if n.From == "" {
		n.From = d.from
	}

	sendCtx := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.send(sendCtx, n)
	}()
	return true
}

func (d *Dispatcher) send(ctx context.Context, n Notification) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	err := d.sender.Send(ctx, n)
	if d.metrics != nil {
		d.metrics.Record(n.Kind.String(), err)
	}

	logCtx := d.logg.WithFields(ctx, map[string]any{
		"session_id": n.SessionID,
		"kind":       n.Kind.String(),
	})
	if err != nil {
		d.logg.Error(logCtx, "notification delivery failed", err)
		return
	}
	d.logg.Info(logCtx, "notification sent")
}

// Wait blocks until every scheduled send has finished.
func (d *Dispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}
