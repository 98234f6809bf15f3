package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/pitwall-dev/pitwall/log"
	"github.com/pitwall-dev/pitwall/pkg/calendar"
	"github.com/pitwall-dev/pitwall/pkg/ergast"
	"github.com/pitwall-dev/pitwall/pkg/fetch"
	"github.com/pitwall-dev/pitwall/pkg/live"
	"github.com/pitwall-dev/pitwall/pkg/model"
	"github.com/pitwall-dev/pitwall/pkg/openf1"
	"github.com/pitwall-dev/pitwall/pkg/render"
)

// Transport delivers rendered messages to one chat. Both operations are
// assumed fallible; callers degrade gracefully instead of crashing a loop.
type Transport interface {
	Send(ctx context.Context, chatID int64, text string) (int, error)
	Edit(ctx context.Context, chatID int64, messageID int, text string) error
}

type Option func(*Service)

func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

func WithLogger(arg *log.Logger) Option {
	return func(s *Service) {
		s.l = arg
	}
}

func WithUpdateInterval(arg time.Duration) Option {
	return func(s *Service) {
		s.updateInterval = arg
	}
}

func WithCommentaryInterval(arg time.Duration) Option {
	return func(s *Service) {
		s.commentaryInterval = arg
	}
}

func WithStartupDelay(arg time.Duration) Option {
	return func(s *Service) {
		s.startupDelay = arg
	}
}

func WithBackoffs(update, commentary time.Duration) Option {
	return func(s *Service) {
		s.updateBackoff = update
		s.commentaryBackoff = commentary
	}
}

// Service owns the per-chat polling loops and the shared upstream caches. It
// is constructed once at startup with all collaborators injected; there is no
// package-level state.
type Service struct {
	timing    *openf1.Client
	results   *ergast.Client
	weekends  *calendar.Client
	transport Transport
	clock     func() time.Time
	l         *log.Logger

	startupDelay       time.Duration
	updateInterval     time.Duration
	updateBackoff      time.Duration
	commentaryInterval time.Duration
	commentaryBackoff  time.Duration

	// cross-chat caches, refreshed per the TTL of each upstream concern
	session   *fetch.Single[*model.Session]
	lineup    *fetch.Single[map[int]string]
	standings *fetch.Single[[]model.Standing]
	summary   *fetch.Single[*model.SessionSummary]
	weekend   *fetch.Cache[int, *model.Weekend]
	raceCtrl  *fetch.Cache[int, []map[string]any]
	intervals *fetch.Cache[int, map[int]string]
	resultSet *fetch.Cache[int, []model.SessionResult]
	history   *fetch.Cache[string, *model.CircuitHistory]

	dedup *live.Dedup

	mutex sync.Mutex
	chats map[int64]*chatState
}

// chatState tracks the loop tasks and preferences of one chat. At most one
// update loop and one commentary loop run per chat; starting a new one cancels
// its predecessor first.
type chatState struct {
	updateCancel     context.CancelFunc
	updateDone       chan struct{}
	commentaryCancel context.CancelFunc
	commentaryDone   chan struct{}
	liveMessageID    int
	favorite         int
	autoCommentary   bool
}

func NewService(timing *openf1.Client, results *ergast.Client, weekends *calendar.Client,
	transport Transport, opts ...Option,
) *Service {
	s := &Service{
		timing:    timing,
		results:   results,
		weekends:  weekends,
		transport: transport,
		clock:     time.Now,
		l:         log.Default().Named("scheduler"),

		startupDelay:       3 * time.Second,
		updateInterval:     15 * time.Second,
		updateBackoff:      30 * time.Second,
		commentaryInterval: 10 * time.Second,
		commentaryBackoff:  15 * time.Second,

		dedup: live.NewDedup(),
		chats: make(map[int64]*chatState),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.session = fetch.NewSingle(timing.LatestSession,
		fetch.WithTTL[struct{}, *model.Session](5*time.Minute),
		fetch.WithClock[struct{}, *model.Session](s.clock))
	s.lineup = fetch.NewSingle(results.DriverLineup,
		fetch.WithTTL[struct{}, map[int]string](24*time.Hour),
		fetch.WithClock[struct{}, map[int]string](s.clock))
	s.standings = fetch.NewSingle(results.DriverStandings,
		fetch.WithTTL[struct{}, []model.Standing](time.Hour),
		fetch.WithClock[struct{}, []model.Standing](s.clock))
	s.summary = fetch.NewSingle(results.LastRaceSummary,
		fetch.WithTTL[struct{}, *model.SessionSummary](time.Hour),
		fetch.WithClock[struct{}, *model.SessionSummary](s.clock))
	s.weekend = fetch.New(func(ctx context.Context, year int) (*model.Weekend, error) {
		return weekends.NextWeekend(ctx, year, s.clock())
	}, fetch.WithTTL[int, *model.Weekend](time.Hour),
		fetch.WithClock[int, *model.Weekend](s.clock))
	s.raceCtrl = fetch.New(timing.RaceControl,
		fetch.WithTTL[int, []map[string]any](30*time.Second),
		fetch.WithClock[int, []map[string]any](s.clock))
	s.intervals = fetch.New(timing.Intervals,
		fetch.WithTTL[int, map[int]string](15*time.Second),
		fetch.WithClock[int, map[int]string](s.clock))
	s.resultSet = fetch.New(timing.SessionResults,
		fetch.WithTTL[int, []model.SessionResult](30*time.Second),
		fetch.WithClock[int, []model.SessionResult](s.clock))
	s.history = fetch.New(results.CircuitHistory,
		fetch.WithTTL[string, *model.CircuitHistory](time.Hour),
		fetch.WithClock[string, *model.CircuitHistory](s.clock))
	return s
}

func (s *Service) state(chatID int64) *chatState {
	st, ok := s.chats[chatID]
	if !ok {
		st = &chatState{}
		s.chats[chatID] = st
	}
	return st
}

// StartLive begins live dashboard updates for a chat. When no session is live
// it sends the last-session summary instead. Any previous update loop for the
// chat is cancelled before the new one starts.
func (s *Service) StartLive(ctx context.Context, chatID int64) error {
	session, err := s.session.Get(ctx)
	if err != nil && session == nil {
		s.l.Error("session lookup failed", log.ErrorField(err))
	}
	if !live.IsLive(s.clock, session) {
		text := render.NoLiveSession(render.SessionSummary(s.summary.GetSoft(ctx)))
		if _, err := s.transport.Send(ctx, chatID, text); err != nil {
			return err
		}
		return nil
	}

	messageID, err := s.transport.Send(ctx, chatID, render.LiveStarted(session))
	if err != nil {
		return err
	}

	s.mutex.Lock()
	st := s.state(chatID)
	cancelUpdate(st)
	loopCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	st.updateCancel = cancel
	st.updateDone = done
	st.liveMessageID = messageID
	auto := st.autoCommentary && st.commentaryCancel == nil
	s.mutex.Unlock()

	go func() {
		defer close(done)
		s.updateLoop(loopCtx, chatID, messageID, session.Key)
	}()

	if auto {
		if err := s.StartCommentary(ctx, chatID); err != nil {
			s.l.Error("auto-commentary start failed",
				log.Int64("chatId", chatID), log.ErrorField(err))
		}
	}
	return nil
}

// StopLive cancels the update loop of a chat, if any.
func (s *Service) StopLive(chatID int64) {
	s.mutex.Lock()
	st, ok := s.chats[chatID]
	if ok {
		cancelUpdate(st)
	}
	s.mutex.Unlock()
}

// StartCommentary begins event commentary for a chat, replacing any running
// commentary loop.
func (s *Service) StartCommentary(ctx context.Context, chatID int64) error {
	session := s.session.GetSoft(ctx)
	if session == nil {
		_, err := s.transport.Send(ctx, chatID, "⚠️ No session data available right now.")
		return err
	}

	s.mutex.Lock()
	st := s.state(chatID)
	cancelCommentary(st)
	loopCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	st.commentaryCancel = cancel
	st.commentaryDone = done
	s.mutex.Unlock()

	go func() {
		defer close(done)
		s.commentaryLoop(loopCtx, chatID, session.Key)
	}()
	return nil
}

// StopCommentary cancels the commentary loop of a chat and clears its seen
// fingerprints, so a later restart replays the session's events fresh.
func (s *Service) StopCommentary(chatID int64) {
	s.mutex.Lock()
	st, ok := s.chats[chatID]
	if ok {
		cancelCommentary(st)
	}
	s.mutex.Unlock()
	s.dedup.Clear(chatID)
}

// ToggleAutoCommentary flips the per-chat auto-commentary preference and
// returns the new value.
func (s *Service) ToggleAutoCommentary(chatID int64) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	st := s.state(chatID)
	st.autoCommentary = !st.autoCommentary
	return st.autoCommentary
}

// SetFavorite marks one driver number as the chat's favorite; 0 clears it.
func (s *Service) SetFavorite(chatID int64, driverNumber int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.state(chatID).favorite = driverNumber
}

// StopAll cancels every loop and waits for them to finish. Used on shutdown.
func (s *Service) StopAll() {
	s.mutex.Lock()
	var pending []chan struct{}
	for _, st := range s.chats {
		cancelUpdate(st)
		cancelCommentary(st)
		if st.updateDone != nil {
			pending = append(pending, st.updateDone)
		}
		if st.commentaryDone != nil {
			pending = append(pending, st.commentaryDone)
		}
	}
	s.mutex.Unlock()
	for _, done := range pending {
		<-done
	}
}

func cancelUpdate(st *chatState) {
	if st.updateCancel != nil {
		st.updateCancel()
		st.updateCancel = nil
	}
}

func cancelCommentary(st *chatState) {
	if st.commentaryCancel != nil {
		st.commentaryCancel()
		st.commentaryCancel = nil
	}
}

// Standings returns the formatted championship table. An upstream failure
// yields the unavailable notice, never an error message.
func (s *Service) Standings(ctx context.Context) string {
	return render.Standings(s.standings.GetSoft(ctx))
}

// Schedule returns the formatted schedule of the next race weekend, with
// session times shifted by tzOffset.
func (s *Service) Schedule(ctx context.Context, tzOffset time.Duration) string {
	return render.Schedule(s.weekend.GetSoft(ctx, s.clock().Year()), tzOffset)
}

// RaceControl returns the formatted latest race control messages of the
// current session.
func (s *Service) RaceControl(ctx context.Context) string {
	session := s.session.GetSoft(ctx)
	if session == nil {
		return render.RaceControl(nil)
	}
	return render.RaceControl(s.raceCtrl.GetSoft(ctx, session.Key))
}

// History returns the formatted multi-year record of one circuit.
func (s *Service) History(ctx context.Context, circuitID string) string {
	return render.CircuitHistory(s.history.GetSoft(ctx, circuitID))
}

// Summary returns the formatted classification of the most recent finished
// session.
func (s *Service) Summary(ctx context.Context) string {
	return render.SessionSummary(s.summary.GetSoft(ctx))
}

// SessionLive reports whether a session is currently live per the shared
// session cache.
func (s *Service) SessionLive(ctx context.Context) bool {
	return live.IsLive(s.clock, s.session.GetSoft(ctx))
}

// LiveActive reports whether an update loop is currently running for a chat.
func (s *Service) LiveActive(chatID int64) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	st, ok := s.chats[chatID]
	if !ok || st.updateCancel == nil {
		return false
	}
	select {
	case <-st.updateDone:
		return false
	default:
		return true
	}
}

func (s *Service) favorite(chatID int64) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if st, ok := s.chats[chatID]; ok {
		return st.favorite
	}
	return 0
}

// codeFor resolves driver numbers through the shared lineup mapping;
// unresolved numbers keep their DR<n> form.
func (s *Service) codeFor(ctx context.Context) func(int) string {
	lineup := s.lineup.GetSoft(ctx)
	return func(num int) string {
		if code, ok := lineup[num]; ok {
			return code
		}
		return render.FallbackCode(num)
	}
}
