// Package app provides the core business logic of the chat economy: the action engine.
// It validates and applies the daily, work, pay, rob, buy, sell and use actions against
// the ledger store, gates them with cooldowns, resolves item effects and records every
// successful mutation in the audit log.
// Validation failures come back as rejected outcomes; only infrastructure failures are errors.
package app

import (
	"context"
	"errors"
	"time"

	"chat_economy/internal/audit"
	"chat_economy/internal/cooldown"
	"chat_economy/internal/effects"
	"chat_economy/internal/inventory"
	"chat_economy/internal/metrics"
	"chat_economy/internal/models"
	"chat_economy/internal/pkg/logger"
	"chat_economy/internal/progression"
	"chat_economy/internal/storage"

	"go.uber.org/zap"
)

// Predefined errors for malformed invocations.
var (
	// ErrUnknownAction indicates that the action name is not one of models.Actions().
	ErrUnknownAction = errors.New("app: unknown action")
	// ErrMissingAccount indicates that no account id was provided.
	ErrMissingAccount = errors.New("app: missing account id")
	// ErrInvalidDispatcherKey indicates that the dispatcher key does not match the configured hash.
	ErrInvalidDispatcherKey = errors.New("app: invalid dispatcher key")
	// ErrUnknownMetric indicates an unsupported leaderboard metric.
	ErrUnknownMetric = errors.New("app: unknown leaderboard metric")
	// ErrUnknownCategory indicates an unsupported catalog category.
	ErrUnknownCategory = errors.New("app: unknown item category")
)

const (
	defaultStartingCoins   = 1000
	defaultMutationTimeout = 10 * time.Second
)

// call is the state an action handler starts from.
type call struct {
	account  *models.Account
	params   models.Params
	settings models.Settings
	now      time.Time
}

type handler func(app *App, ctx context.Context, c call) (*models.Outcome, error)

// handlers maps every action to its implementation.
var handlers = map[models.Action]handler{
	models.ActionDaily: (*App).daily,
	models.ActionWork:  (*App).work,
	models.ActionPay:   (*App).pay,
	models.ActionRob:   (*App).rob,
	models.ActionBuy:   (*App).buy,
	models.ActionSell:  (*App).sell,
	models.ActionUse:   (*App).use,
}

// App encapsulates the application logic and dependencies required to process requests.
type App struct {
	db      storage.Storage   // Ledger store holding accounts, items, inventory and settings.
	tracker cooldown.Tracker  // Cooldown gate for daily, work and rob.
	audit   *audit.Logger     // Best-effort audit sink.
	log     *logger.Logger    // Logger for logging application events and errors.
	inv     *inventory.Ledger // Inventory reads and single-unit changes.
	effects *effects.Resolver // Item effect interpretation.

	rng               Roller
	now               func() time.Time
	defaults          models.Settings
	startingCoins     int64
	strict            bool
	mutationTimeout   time.Duration
	dispatcherKeyHash string
}

// Option configures an App.
type Option func(*App)

// WithRoller replaces the random source.
func WithRoller(r Roller) Option {
	return func(app *App) { app.rng = r }
}

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(app *App) { app.now = now }
}

// WithDefaultSettings sets the settings used when the store holds none.
func WithDefaultSettings(s models.Settings) Option {
	return func(app *App) { app.defaults = s }
}

// WithStartingCoins sets the balance of lazily created accounts.
func WithStartingCoins(coins int64) Option {
	return func(app *App) { app.startingCoins = coins }
}

// WithStrictInvariants makes invariant violations panic instead of being logged.
func WithStrictInvariants(strict bool) Option {
	return func(app *App) { app.strict = strict }
}

// WithMutationTimeout bounds how long one action may run once started.
func WithMutationTimeout(d time.Duration) Option {
	return func(app *App) { app.mutationTimeout = d }
}

// WithDispatcherKeyHash requires dispatchers to present a key matching the bcrypt hash.
// An empty hash disables the check.
func WithDispatcherKeyHash(hash string) Option {
	return func(app *App) { app.dispatcherKeyHash = hash }
}

// NewApp creates and returns a new instance of App with the provided dependencies.
func NewApp(db storage.Storage, tracker cooldown.Tracker, auditLog *audit.Logger, log *logger.Logger, opts ...Option) *App {
	app := &App{
		db:              db,
		tracker:         tracker,
		audit:           auditLog,
		log:             log,
		inv:             inventory.NewLedger(db),
		effects:         effects.NewResolver(),
		rng:             NewRoller(time.Now().UnixNano()),
		now:             time.Now,
		startingCoins:   defaultStartingCoins,
		mutationTimeout: defaultMutationTimeout,
	}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

// Invoke runs one action for an account and returns its outcome.
// The account is created with the starting balance on first use. The action runs to
// completion even if ctx is cancelled, bounded by the mutation timeout.
func (app *App) Invoke(ctx context.Context, accountID string, action models.Action, params models.Params) (*models.Outcome, error) {
	h, ok := handlers[action]
	if !ok {
		return nil, ErrUnknownAction
	}
	if accountID == "" {
		return nil, ErrMissingAccount
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), app.mutationTimeout)
	defer cancel()

	account, err := app.EnsureAccount(ctx, accountID, "")
	if err != nil {
		metrics.ActionsTotal.WithLabelValues(string(action), "error").Inc()
		return nil, err
	}
	settings, err := app.Settings(ctx)
	if err != nil {
		metrics.ActionsTotal.WithLabelValues(string(action), "error").Inc()
		return nil, err
	}

	out, err := h(app, ctx, call{account: account, params: params, settings: settings, now: app.now().UTC()})
	if err != nil {
		metrics.ActionsTotal.WithLabelValues(string(action), "error").Inc()
		app.log.ForAccount(accountID, string(action)).Error("action failed", zap.Error(err))
		return nil, err
	}

	if out.Rejected() {
		metrics.ActionsTotal.WithLabelValues(string(action), models.StatusRejected).Inc()
		metrics.RejectionsTotal.WithLabelValues(string(action), string(out.Rejection.Reason)).Inc()
		return out, nil
	}

	metrics.ActionsTotal.WithLabelValues(string(action), models.StatusOK).Inc()
	app.checkInvariants(out.Account, out.Target)
	return out, nil
}

// Settings returns the stored settings, or the configured defaults when none are stored.
func (app *App) Settings(ctx context.Context) (models.Settings, error) {
	s, err := app.db.GetSettings(ctx)
	if errors.Is(err, storage.ErrSettingsNotFound) {
		return app.defaults, nil
	}
	if err != nil {
		return models.Settings{}, err
	}
	return *s, nil
}

// checkInvariants verifies the level formula on accounts an action returned.
func (app *App) checkInvariants(accounts ...*models.Account) {
	for _, a := range accounts {
		if a == nil {
			continue
		}
		err := progression.CheckLevel(a)
		if err == nil && a.Coins < 0 {
			err = errors.New("app: negative balance on account " + a.ID)
		}
		if err == nil {
			continue
		}
		if app.strict {
			panic(err)
		}
		app.log.Error("invariant violated", zap.String("account_id", a.ID), zap.Error(err))
	}
}

// claim arms the cooldown for command, returning a rejection when it is already active.
func (app *App) claim(ctx context.Context, action models.Action, c call, command models.Command, d time.Duration) (*models.Outcome, error) {
	remaining, ok, err := app.tracker.TryArm(ctx, c.account.ID, command, c.now, d)
	if err != nil {
		return nil, err
	}
	if !ok {
		return rejected(action, c.account, models.CooldownRejection(remaining)), nil
	}
	return nil, nil
}

// gate returns a rejection when command is still cooling down.
func (app *App) gate(ctx context.Context, action models.Action, c call, command models.Command) (*models.Outcome, error) {
	remaining, err := app.tracker.Check(ctx, c.account.ID, command, c.now)
	if err != nil {
		return nil, err
	}
	if remaining > 0 {
		return rejected(action, c.account, models.CooldownRejection(remaining)), nil
	}
	return nil, nil
}

// release undoes a cooldown claim after the mutation it guarded failed.
func (app *App) release(ctx context.Context, action models.Action, accountID string, command models.Command) {
	metrics.CompensationsTotal.WithLabelValues(string(action)).Inc()
	if err := app.tracker.Release(ctx, accountID, command); err != nil {
		app.log.Error("failed to release cooldown claim",
			zap.String("account_id", accountID),
			zap.String("command", string(command)),
			zap.Error(err))
	}
}

func rejected(action models.Action, account *models.Account, r *models.Rejection) *models.Outcome {
	return &models.Outcome{Action: action, Status: models.StatusRejected, Account: account, Rejection: r}
}

func rejectWith(action models.Action, account *models.Account, reason models.RejectionReason, message string) *models.Outcome {
	return rejected(action, account, &models.Rejection{Reason: reason, Message: message})
}

func succeeded(action models.Action, account *models.Account, coins, xp int64, details map[string]any) *models.Outcome {
	return &models.Outcome{
		Action:     action,
		Status:     models.StatusOK,
		Account:    account,
		CoinsDelta: coins,
		XPDelta:    xp,
		Details:    details,
	}
}

func ptr[T any](v T) *T {
	return &v
}
