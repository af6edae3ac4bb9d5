// Package battle drives a focus session from countdown to catch.
//
// An Orchestrator is owned by a single event loop. Every method must be
// called from that loop; the only asynchronous piece is the delayed reveal,
// whose callback is handed to a Dispatch function that marshals it back.
package battle

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/pomodex/internal/catch"
	"github.com/verte-zerg/pomodex/internal/encounter"
	"github.com/verte-zerg/pomodex/internal/model"
	"github.com/verte-zerg/pomodex/internal/rarity"
	"github.com/verte-zerg/pomodex/internal/timer"
)

// DefaultRevealDelay is the pause between a completed session and the
// arrival of the next creature.
const DefaultRevealDelay = 2 * time.Second

const storeTimeout = 3 * time.Second

// ErrSessionActive rejects a re-roll while a battle is in progress.
var ErrSessionActive = errors.New("session in progress")

// Reveal identifies a scheduled reveal. Tokens of cancelled or superseded
// reveals are ignored by ApplyReveal.
type Reveal struct {
	Token uint64
}

// Completion describes the end of a session.
type Completion struct {
	Outcome      model.Outcome
	Notification Notification
	Reveal       Reveal
}

// Deps are the collaborators of an Orchestrator. Store and Prefs are
// required; everything else has a default.
type Deps struct {
	Store       CollectionStore
	Prefs       Prefs
	Sampler     *encounter.Sampler
	CatchSource encounter.Source
	Scheduler   Scheduler
	Logger      *zap.Logger
	Now         func() time.Time
	RevealDelay time.Duration
	// Dispatch receives fired reveals on the scheduler's goroutine. When nil
	// the reveal is applied in place, so a wall-clock Scheduler is swapped
	// for one that runs the reveal at once on the completing goroutine.
	Dispatch func(Reveal)
}

// SessionContext is the state of the trainer's current battle.
type SessionContext struct {
	Creature    model.CreatureID
	Config      model.SessionConfig
	Collection  model.Collection
	Stats       model.Stats
	Rerolls     Limiter
	LastOutcome *model.Outcome
}

type pendingReveal struct {
	token  uint64
	caught bool
	handle Handle
}

// Orchestrator coordinates the timer, sampler, catch resolver and stores.
type Orchestrator struct {
	store     CollectionStore
	prefs     Prefs
	sampler   *encounter.Sampler
	resolver  *catch.Resolver
	scheduler Scheduler
	log       *zap.Logger
	now       func() time.Time
	delay     time.Duration
	dispatch  func(Reveal)

	sess      SessionContext
	timer     *timer.Timer
	pending   *pendingReveal
	revealSeq uint64
}

// New builds an Orchestrator. Call Start before use.
func New(deps Deps) *Orchestrator {
	o := &Orchestrator{
		store:     deps.Store,
		prefs:     deps.Prefs,
		sampler:   deps.Sampler,
		scheduler: deps.Scheduler,
		log:       deps.Logger,
		now:       deps.Now,
		delay:     deps.RevealDelay,
		dispatch:  deps.Dispatch,
	}
	if o.sampler == nil {
		o.sampler = encounter.New(rarity.Default(), encounter.NewRandomSource())
	}
	src := deps.CatchSource
	if src == nil {
		src = encounter.NewRandomSource()
	}
	o.resolver = catch.NewResolver(src)
	if o.scheduler == nil {
		o.scheduler = ClockScheduler{}
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.delay < 0 {
		o.delay = 0
	}
	if o.dispatch == nil {
		if _, ok := o.scheduler.(ClockScheduler); ok {
			o.scheduler = inlineScheduler{}
		}
		o.dispatch = func(r Reveal) { o.ApplyReveal(context.Background(), r) }
	}
	o.sess = SessionContext{
		Config:     model.SessionConfig{DurationMinutes: model.DefaultDurationMinutes},
		Collection: model.NewCollection(),
		Rerolls:    NewLimiter("", 0),
	}
	o.timer = timer.New(model.DefaultDurationMinutes)
	return o
}

// Start restores preferences and the trainer's collection. Store failures
// are logged and leave the affected state at its zero value.
func (o *Orchestrator) Start(ctx context.Context) {
	minutes := model.DefaultDurationMinutes
	if v, ok := o.prefInt(ctx, PrefDuration); ok {
		minutes = v
	}
	minutes = model.ClampDuration(minutes)
	o.sess.Config.DurationMinutes = minutes
	o.timer = timer.New(minutes)

	date, _ := o.prefString(ctx, PrefRerollDate)
	used, _ := o.prefInt(ctx, PrefRerollUsed)
	o.sess.Rerolls = NewLimiter(date, used)

	if err := o.withStore(ctx, "load collection", func(ctx context.Context) error {
		col, err := o.store.LoadCollection(ctx)
		if err != nil {
			return err
		}
		o.sess.Collection = col
		return nil
	}); err != nil {
		o.sess.Collection = model.NewCollection()
	}
	if err := o.withStore(ctx, "load stats", func(ctx context.Context) error {
		st, err := o.store.LoadStats(ctx)
		if err != nil {
			return err
		}
		o.sess.Stats = st
		return nil
	}); err != nil {
		o.sess.Stats = model.Stats{}
	}

	id, ok := o.prefInt(ctx, PrefCreature)
	if ok && model.ValidCreature(model.CreatureID(id)) {
		o.sess.Creature = model.CreatureID(id)
		return
	}
	o.assign(ctx, o.sampler.Sample())
}

// Session returns the current session context. Its maps are shared and
// must not be modified.
func (o *Orchestrator) Session() SessionContext { return o.sess }

// Creature returns the currently assigned creature.
func (o *Orchestrator) Creature() model.CreatureID { return o.sess.Creature }

// Timer returns the session timer for display. Callers must not mutate it.
func (o *Orchestrator) Timer() *timer.Timer { return o.timer }

// RerollsLeft returns today's remaining re-rolls.
func (o *Orchestrator) RerollsLeft() int { return o.sess.Rerolls.Remaining(o.now()) }

// RevealPending reports whether a reveal is scheduled.
func (o *Orchestrator) RevealPending() bool { return o.pending != nil }

// Toggle starts, resumes or pauses the countdown. It returns the run token
// to tag ticks with when the timer starts running.
func (o *Orchestrator) Toggle() (timer.Token, bool) {
	return o.timer.Toggle()
}

// Reset stops the countdown and voids any pending reveal.
func (o *Orchestrator) Reset() Notification {
	o.Cancel()
	o.timer.Reset()
	return resetNotification()
}

// SetDuration clamps and stores a new session length. It returns the
// applied value.
func (o *Orchestrator) SetDuration(ctx context.Context, minutes int) int {
	applied := o.timer.SetDuration(minutes)
	if applied == o.sess.Config.DurationMinutes {
		return applied
	}
	o.sess.Config.DurationMinutes = applied
	o.setPref(ctx, PrefDuration, strconv.Itoa(applied))
	return applied
}

// Tick applies one countdown second for run. It returns a Completion exactly
// once, on the tick that ends the session.
func (o *Orchestrator) Tick(ctx context.Context, run timer.Token) *Completion {
	if !o.timer.Tick(run) {
		return nil
	}
	return o.complete(ctx)
}

func (o *Orchestrator) complete(ctx context.Context) *Completion {
	minutes := o.timer.Minutes()
	id := o.sess.Creature

	o.sess.Stats.RecordCompletion(minutes)
	_ = o.withStore(ctx, "record completion", func(ctx context.Context) error {
		return o.store.RecordSessionCompletion(ctx, minutes)
	})

	out := o.resolver.Attempt(id, minutes)
	o.sess.LastOutcome = &out
	if out.Caught {
		o.sess.Collection.MarkCaught(id)
		_ = o.withStore(ctx, "mark caught", func(ctx context.Context) error {
			return o.store.MarkCaught(ctx, id)
		})
	}
	if h, ok := o.store.(History); ok {
		rec := model.SessionRecord{
			EndedAt:         o.now(),
			DurationMinutes: minutes,
			Creature:        id,
			Caught:          out.Caught,
			ChancePercent:   out.ChancePercent,
		}
		_ = o.withStore(ctx, "append session", func(ctx context.Context) error {
			return h.AppendSession(ctx, rec)
		})
	}
	o.log.Info("session completed",
		zap.Int("creature", int(id)),
		zap.Int("minutes", minutes),
		zap.Bool("caught", out.Caught),
		zap.Float64("chance", out.ChancePercent),
	)

	reveal := o.schedule(out)
	return &Completion{Outcome: out, Notification: outcomeNotification(out), Reveal: reveal}
}

func (o *Orchestrator) schedule(out model.Outcome) Reveal {
	o.Cancel()
	o.revealSeq++
	r := Reveal{Token: o.revealSeq}
	p := &pendingReveal{token: r.Token, caught: out.Caught}
	o.pending = p
	p.handle = o.scheduler.After(o.delay, func() { o.dispatch(r) })
	return r
}

// ApplyReveal finishes a completed session: a caught creature is replaced
// by a fresh encounter and the timer returns to Idle. Stale reveals are
// ignored and report false.
func (o *Orchestrator) ApplyReveal(ctx context.Context, r Reveal) (Notification, bool) {
	p := o.pending
	if p == nil || p.token != r.Token {
		return Notification{}, false
	}
	o.pending = nil
	o.timer.Finish()
	if !p.caught {
		return Notification{}, true
	}
	id := o.sampler.Sample()
	o.assign(ctx, id)
	return appearedNotification(id), true
}

// Cancel voids the pending reveal, if any.
func (o *Orchestrator) Cancel() {
	if o.pending == nil {
		return
	}
	o.pending.handle.Cancel()
	o.pending = nil
}

// Reroll replaces the current creature without a session. It is limited to
// DailyRerolls per local day and refused while a battle is in progress. The
// returned Notification is meant for the user in every case.
func (o *Orchestrator) Reroll(ctx context.Context) (Notification, error) {
	if o.timer.State() == timer.Running || o.pending != nil {
		return busyNotification(), ErrSessionActive
	}
	now := o.now()
	if !o.sess.Rerolls.Allow(now) {
		return rateLimitedNotification(), fmt.Errorf("%w: %d per day", model.ErrRateLimited, DailyRerolls)
	}
	o.setPref(ctx, PrefRerollDate, o.sess.Rerolls.Date)
	o.setPref(ctx, PrefRerollUsed, strconv.Itoa(o.sess.Rerolls.Used))

	id := o.sampler.Sample()
	o.assign(ctx, id)
	return rerollNotification(id, o.sess.Rerolls.Remaining(now)), nil
}

func (o *Orchestrator) assign(ctx context.Context, id model.CreatureID) {
	o.sess.Creature = id
	o.sess.Collection.MarkSeen(id)
	_ = o.withStore(ctx, "mark seen", func(ctx context.Context) error {
		return o.store.MarkSeen(ctx, id)
	})
	o.setPref(ctx, PrefCreature, strconv.Itoa(int(id)))
}

func (o *Orchestrator) withStore(ctx context.Context, op string, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		o.log.Warn("collection store call failed", zap.String("op", op), zap.Error(err))
		return err
	}
	return nil
}

func (o *Orchestrator) prefString(ctx context.Context, key string) (string, bool) {
	v, ok, err := o.prefs.Pref(ctx, key)
	if err != nil {
		o.log.Warn("failed to read preference", zap.String("key", key), zap.Error(err))
		return "", false
	}
	return v, ok
}

func (o *Orchestrator) prefInt(ctx context.Context, key string) (int, bool) {
	v, ok := o.prefString(ctx, key)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		o.log.Warn("ignoring malformed preference", zap.String("key", key), zap.String("value", v))
		return 0, false
	}
	return n, true
}

func (o *Orchestrator) setPref(ctx context.Context, key, value string) {
	if err := o.prefs.SetPref(ctx, key, value); err != nil {
		o.log.Warn("failed to write preference", zap.String("key", key), zap.Error(err))
	}
}
