package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/totalfitness/kiosk-dispatch/internal/calllog"
	"github.com/totalfitness/kiosk-dispatch/internal/metrics"
	"github.com/totalfitness/kiosk-dispatch/internal/types"
)

// ErrAlreadyResolved is returned when a staff response arrives for a call
// another staff member has already handled.
var ErrAlreadyResolved = errors.New("call already resolved")

// Dialer places an outbound call through the voice provider
type Dialer interface {
	PlaceCall(ctx context.Context, to string) (sid string, err error)
}

// Notifier delivers push notifications to registered staff devices
type Notifier interface {
	NotifyIncomingCall(ctx context.Context) error
}

// Broadcaster fans an event out to every connected staff client
type Broadcaster interface {
	BroadcastEvent(event any)
}

// Coordinator orchestrates call placement and call resolution end to end
type Coordinator struct {
	dialer   Dialer
	notifier Notifier
	hub      Broadcaster
	tracker  *ResolutionTracker
	log      *calllog.CallLog
	kiosk    string
	logger   zerolog.Logger
	now      func() time.Time
}

// NewCoordinator creates a Coordinator. kiosk is the source label attached
// to broadcast events and log entries.
func NewCoordinator(dialer Dialer, notifier Notifier, hub Broadcaster, tracker *ResolutionTracker, log *calllog.CallLog, kiosk string, logger zerolog.Logger) *Coordinator {
	return &Coordinator{
		dialer:   dialer,
		notifier: notifier,
		hub:      hub,
		tracker:  tracker,
		log:      log,
		kiosk:    kiosk,
		logger:   logger.With().Str("component", "dispatch").Logger(),
		now:      time.Now,
	}
}

// StartCall places a call to the given number and notifies staff. The
// provider failure is the only error path; push delivery is fire-and-forget
// and a push failure never fails the placement.
func (c *Coordinator) StartCall(ctx context.Context, to string) (string, error) {
	sid, err := c.dialer.PlaceCall(ctx, to)
	if err != nil {
		metrics.Get().RecordCallPlacementError()
		return "", fmt.Errorf("failed to place call: %w", err)
	}

	c.logger.Info().Str("sid", sid).Str("to", to).Msg("call initiated")
	metrics.Get().RecordCallPlaced()

	c.hub.BroadcastEvent(types.NewIncomingCallEvent(c.kiosk, sid))

	go func() {
		if err := c.notifier.NotifyIncomingCall(context.Background()); err != nil {
			metrics.Get().RecordPushError()
			c.logger.Error().Err(err).Str("sid", sid).Msg("push notification failed")
		}
	}()

	c.log.Append(types.CallLogEntry{
		SID:        sid,
		Resolution: types.ResolutionPending,
		Time:       c.now().UTC().Format(time.RFC3339),
		Source:     c.kiosk,
	})

	return sid, nil
}

// RespondCall records the first staff decision for sid. The log update
// happens before the resolved broadcast so a client querying the log right
// after the event sees the updated record. Losing the claim race returns
// ErrAlreadyResolved with no state change.
func (c *Coordinator) RespondCall(sid string, accepted bool) error {
	if !c.tracker.Claim(sid) {
		metrics.Get().RecordDuplicateResponse()
		return ErrAlreadyResolved
	}

	c.log.Resolve(sid, accepted, c.now(), c.kiosk)

	c.hub.BroadcastEvent(types.NewCallResolvedEvent(sid, accepted))

	metrics.Get().RecordCallResolved()
	c.logger.Info().
		Str("sid", sid).
		Bool("accepted", accepted).
		Msg("staff responded to call")

	return nil
}
