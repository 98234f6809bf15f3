package scheduler

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/pitwall-dev/pitwall/log"
	"github.com/pitwall-dev/pitwall/pkg/live"
	"github.com/pitwall-dev/pitwall/pkg/render"
)

// updateLoop keeps one chat's live message up to date until the session ends
// or the loop is cancelled. A failing iteration is logged and retried after a
// backoff; only cancellation or session end terminates the loop. Termination
// always attempts one final edit replacing the dashboard with a static notice.
func (s *Service) updateLoop(ctx context.Context, chatID int64, messageID int, sessionKey int) {
	l := s.l.Named("update").With(
		log.String("task", uuid.NewString()),
		log.Int64("chatId", chatID))
	l.Info("live update loop started", log.Int("sessionKey", sessionKey))

	defer func() {
		// best effort; the chat may have deleted the message
		editCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.transport.Edit(editCtx, chatID, messageID, render.LiveEnded()); err != nil {
			l.Debug("final edit failed", log.ErrorField(err))
		}
		l.Info("live update loop finished")
	}()

	if !sleepCtx(ctx, s.startupDelay) {
		return
	}
	for {
		delay := s.updateInterval
		switch err := s.updateOnce(ctx, chatID, messageID, sessionKey); {
		case err == nil:
		case ctx.Err() != nil:
			return
		case errors.Is(err, errSessionOver):
			l.Info("session over")
			return
		default:
			l.Error("update iteration failed", log.ErrorField(err))
			delay = s.updateBackoff
		}
		if !sleepCtx(ctx, delay) {
			return
		}
	}
}

var errSessionOver = errors.New("session over")

// updateOnce runs a single poll-render-edit cycle. Panics are converted to
// errors so one bad payload never kills the loop.
func (s *Service) updateOnce(ctx context.Context, chatID int64, messageID, sessionKey int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in update iteration: %v", r)
		}
	}()

	session := s.session.GetSoft(ctx)
	if !live.IsLive(s.clock, session) {
		return errSessionOver
	}

	positions, err := s.timing.Positions(ctx, sessionKey)
	if err != nil {
		return err
	}
	// per-driver feeds are best effort; a missing map renders as placeholders
	laps, _ := s.timing.Laps(ctx, sessionKey)
	tyres, _ := s.timing.Stints(ctx, sessionKey)
	fastest, _ := s.timing.FastestLap(ctx, sessionKey)
	gaps := s.intervals.GetSoft(ctx, sessionKey)
	retired := lo.SliceToMap(live.RetiredDrivers(s.resultSet.GetSoft(ctx, sessionKey)),
		func(num int) (int, bool) { return num, true })

	text := render.Dashboard{
		Session:   session,
		Positions: positions,
		LapTimes:  laps,
		Tyres:     tyres,
		Gaps:      gaps,
		Retired:   retired,
		Fastest:   fastest,
		Favorite:  s.favorite(chatID),
		Live:      true,
		Now:       s.clock(),
		CodeFor:   s.codeFor(ctx),
	}.Render()

	return s.transport.Edit(ctx, chatID, messageID, text)
}

// commentaryLoop polls race control, the event endpoints, and the result feed,
// and pushes every previously unseen item as its own message. Same fail-soft
// policy as the update loop, with a shorter backoff.
func (s *Service) commentaryLoop(ctx context.Context, chatID int64, sessionKey int) {
	l := s.l.Named("commentary").With(
		log.String("task", uuid.NewString()),
		log.Int64("chatId", chatID))
	l.Info("commentary loop started", log.Int("sessionKey", sessionKey))
	defer l.Info("commentary loop finished")

	// warm the lineup so the first notifications resolve driver codes
	if _, err := s.lineup.Get(ctx); err != nil {
		l.Debug("lineup warmup failed", log.ErrorField(err))
	}

	for {
		delay := s.commentaryInterval
		if err := s.commentaryOnce(ctx, chatID, sessionKey); err != nil {
			if ctx.Err() != nil {
				return
			}
			l.Error("commentary iteration failed", log.ErrorField(err))
			delay = s.commentaryBackoff
		}
		if !sleepCtx(ctx, delay) {
			return
		}
	}
}

func (s *Service) commentaryOnce(ctx context.Context, chatID int64, sessionKey int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in commentary iteration: %v", r)
		}
	}()

	codeFor := s.codeFor(ctx)

	// race control arrives newest first; deliver in chronological order
	rc := s.raceCtrl.GetSoft(ctx, sessionKey)
	for _, msg := range lo.Reverse(slices.Clone(rc)) {
		if !s.dedup.IsNew(chatID, live.Fingerprint(msg)) {
			continue
		}
		if _, err := s.transport.Send(ctx, chatID, render.RaceControlNotice(msg)); err != nil {
			return err
		}
	}

	for _, raw := range s.timing.SessionEvents(ctx, sessionKey) {
		ev := live.Classify(raw)
		if !s.dedup.IsNew(chatID, ev.Fingerprint) {
			continue
		}
		if _, err := s.transport.Send(ctx, chatID, render.Notification(ev, codeFor)); err != nil {
			return err
		}
	}

	// result-feed DNFs use their own fingerprint namespace so they neither
	// suppress nor duplicate race-control retirements for the same driver
	for _, num := range live.RetiredDrivers(s.resultSet.GetSoft(ctx, sessionKey)) {
		if !s.dedup.IsNew(chatID, live.DNFFingerprint(num)) {
			continue
		}
		if _, err := s.transport.Send(ctx, chatID, render.DNFNotice(num, codeFor)); err != nil {
			return err
		}
	}
	return nil
}

// sleepCtx sleeps for d, returning false when ctx is cancelled first.
// Cancellation is only observed here and at upstream calls.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
