package uow

import (
	"context"
	"fmt"
	"log/slog"

	"auditkit/audit"
)

// dispatch drains the event buffer of every committed entity and publishes
// the drained events in buffer order. Buffers are cleared before publishing:
// a subscriber failure after the clear means the event is gone from the
// entity, which is why delivery is at most once.
func (u *UnitOfWork) dispatch(ctx context.Context, committed []change) error {
	var failures []error
	for _, c := range committed {
		if c.skip {
			continue
		}
		holder, ok := c.entity.(audit.EventHolder)
		if !ok {
			continue
		}
		events := holder.Events()
		if len(events) == 0 {
			continue
		}
		holder.ClearEvents()
		for _, e := range events {
			if err := u.bus.Publish(ctx, e); err != nil {
				failures = append(failures, fmt.Errorf("publish %s: %w", e.EventName(), err))
				continue
			}
			u.logger.LogAttrs(ctx, slog.LevelDebug, "domain event dispatched",
				slog.String("event", e.EventName()))
		}
	}
	if len(failures) > 0 {
		return &DispatchError{Errs: failures}
	}
	return nil
}
