package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"cuentas/internal/amqp"
	"cuentas/internal/cache"
	"cuentas/internal/core"
	"cuentas/internal/log"
	"cuentas/internal/metrics"
	"cuentas/internal/state"
)

// Repository persists and restores the whole tracker state.
type Repository interface {
	SaveDebtors(ctx context.Context, records []core.DebtRecordSnapshot) error
	SaveCreditors(ctx context.Context, records []core.DebtRecordSnapshot) error
	SaveFixedExpenses(ctx context.Context, expenses []core.FixedExpenseSnapshot) error
	LoadAll(ctx context.Context) (core.StateSnapshot, error)
}

// Publisher announces completed mutations. May be nil when messaging
// is not configured.
type Publisher interface {
	PublishStateChanged(ctx context.Context, msg *amqp.StateChangedMessage) error
}

const (
	overviewCacheSize  = 24
	overviewCacheTTL   = 30 * time.Second
	overviewSweepEvery = time.Minute
)

// Tracker owns the in-memory state and serializes all access to it.
// Every successful mutation is persisted before it is announced.
type Tracker struct {
	mu        sync.Mutex
	state     *state.State
	repo      Repository
	publisher Publisher
	logger    *log.Logger
	overviews *cache.LRUCache[core.MonthlyBalance]
	sweeper   *cache.Manager
}

func NewTracker(repo Repository, publisher Publisher, logger *log.Logger) *Tracker {
	t := &Tracker{
		state:     state.New(),
		repo:      repo,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentTracker),
		overviews: cache.NewLRUCache[core.MonthlyBalance](overviewCacheSize, overviewCacheTTL),
		sweeper:   cache.NewManager(),
	}
	t.sweeper.Register(t.overviews)
	t.sweeper.StartCleanup(overviewSweepEvery)
	return t
}

// Close stops the tracker's background routines.
func (t *Tracker) Close() {
	t.sweeper.Stop()
}

// Load restores the state from the repository, recomputing all derived
// values.
func (t *Tracker) Load(ctx context.Context) error {
	snap, err := t.repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	restored, err := state.FromSnapshot(snap)
	if err != nil {
		return fmt.Errorf("restore state: %w", err)
	}

	t.mu.Lock()
	t.state = restored
	t.mu.Unlock()
	t.overviews.Purge()

	t.logger.InfoContext(ctx, "state loaded",
		"debtors", len(restored.Debtors),
		"creditors", len(restored.Creditors),
		"expenses", len(restored.FixedExpenses))
	return nil
}

// CreateDebtor adds a new debtor record.
func (t *Tracker) CreateDebtor(ctx context.Context, name, details string) (core.DebtRecordSnapshot, error) {
	return t.createRecord(ctx, state.SideDebtor, name, details)
}

// CreateCreditor adds a new creditor record.
func (t *Tracker) CreateCreditor(ctx context.Context, name, details string) (core.DebtRecordSnapshot, error) {
	return t.createRecord(ctx, state.SideCreditor, name, details)
}

func (t *Tracker) createRecord(ctx context.Context, side state.Side, name, details string) (core.DebtRecordSnapshot, error) {
	entity := entityForSide(side)

	t.mu.Lock()
	defer t.mu.Unlock()

	r, err := core.NewDebtRecord(name, details)
	if err != nil {
		metrics.MutationErrorsTotal.WithLabelValues(entity, amqp.ActionCreated).Inc()
		return core.DebtRecordSnapshot{}, err
	}
	t.state.AddRecord(side, r)

	if err := t.saveAll(ctx); err != nil {
		return core.DebtRecordSnapshot{}, err
	}
	t.finishMutation(ctx, entity, r.ID, amqp.ActionCreated, "")
	return r.Snapshot(), nil
}

// DeleteRecord removes a record and everything it owns.
func (t *Tracker) DeleteRecord(ctx context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	side, err := t.state.DeleteRecord(id)
	if err != nil {
		return err
	}
	if err := t.saveAll(ctx); err != nil {
		return err
	}
	t.finishMutation(ctx, entityForSide(side), id, amqp.ActionDeleted, "")
	return nil
}

// AddLoan creates a loan under a record. A nil installments pointer
// makes a manual loan; a value makes a fixed-schedule one.
func (t *Tracker) AddLoan(ctx context.Context, recordID string, principal core.Money, startDate core.Date, description string, installments *int) (core.LoanSnapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, side, err := t.state.Record(recordID)
	if err != nil {
		return core.LoanSnapshot{}, err
	}
	entity := entityForSide(side)

	var l *core.Loan
	if installments != nil {
		l, err = r.AddInstallmentLoan(principal, startDate, description, *installments)
	} else {
		l, err = r.AddLoan(principal, startDate, description)
	}
	if err != nil {
		metrics.MutationErrorsTotal.WithLabelValues(entity, amqp.ActionLoanAdded).Inc()
		return core.LoanSnapshot{}, err
	}

	if err := t.saveAll(ctx); err != nil {
		return core.LoanSnapshot{}, err
	}
	t.finishMutation(ctx, entity, recordID, amqp.ActionLoanAdded, core.MonthOf(startDate).String())
	return l.Snapshot(), nil
}

// RegisterLoanPayment records a payment against a loan of a record.
func (t *Tracker) RegisterLoanPayment(ctx context.Context, recordID, loanID string, amount core.Money, date core.Date, details string) (core.PaymentSnapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, side, err := t.state.Record(recordID)
	if err != nil {
		return core.PaymentSnapshot{}, err
	}
	entity := entityForSide(side)

	p, err := r.AddPaymentToLoan(loanID, amount, date, details)
	if err != nil {
		metrics.MutationErrorsTotal.WithLabelValues(entity, amqp.ActionPaymentAdded).Inc()
		return core.PaymentSnapshot{}, err
	}

	if err := t.saveAll(ctx); err != nil {
		return core.PaymentSnapshot{}, err
	}
	t.finishMutation(ctx, entity, recordID, amqp.ActionPaymentAdded, core.MonthOf(date).String())
	return core.PaymentSnapshot{
		ID:      p.ID,
		Cents:   p.Amount.Cents,
		Date:    p.Date.String(),
		Details: p.Details,
	}, nil
}

// CreateFixedExpense adds a recurring monthly expense.
func (t *Tracker) CreateFixedExpense(ctx context.Context, name string, amount core.Money, paymentDay int, details string) (core.FixedExpenseSnapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := core.NewFixedExpense(name, amount, paymentDay, details)
	if err != nil {
		metrics.MutationErrorsTotal.WithLabelValues(amqp.EntityExpense, amqp.ActionCreated).Inc()
		return core.FixedExpenseSnapshot{}, err
	}
	t.state.AddExpense(f)

	if err := t.saveAll(ctx); err != nil {
		return core.FixedExpenseSnapshot{}, err
	}
	t.finishMutation(ctx, amqp.EntityExpense, f.ID, amqp.ActionCreated, "")
	return f.Snapshot(), nil
}

// UpdateExpenseAmount changes the current amount, keeping history.
func (t *Tracker) UpdateExpenseAmount(ctx context.Context, id string, amount core.Money) (core.FixedExpenseSnapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := t.state.Expense(id)
	if err != nil {
		return core.FixedExpenseSnapshot{}, err
	}
	if err := f.UpdateAmount(amount); err != nil {
		metrics.MutationErrorsTotal.WithLabelValues(amqp.EntityExpense, amqp.ActionAmountUpdated).Inc()
		return core.FixedExpenseSnapshot{}, err
	}

	if err := t.saveAll(ctx); err != nil {
		return core.FixedExpenseSnapshot{}, err
	}
	t.finishMutation(ctx, amqp.EntityExpense, id, amqp.ActionAmountUpdated, "")
	return f.Snapshot(), nil
}

// RegisterExpensePayment marks a month of an expense as paid. A zero
// amount defaults to the expense's current amount.
func (t *Tracker) RegisterExpensePayment(ctx context.Context, id string, mk core.MonthKey, date core.Date, amount core.Money) (core.ExpensePaymentSnapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := t.state.Expense(id)
	if err != nil {
		return core.ExpensePaymentSnapshot{}, err
	}
	p, err := f.RegisterPayment(mk, date, amount)
	if err != nil {
		metrics.MutationErrorsTotal.WithLabelValues(amqp.EntityExpense, amqp.ActionMonthRegistered).Inc()
		return core.ExpensePaymentSnapshot{}, err
	}

	if err := t.saveAll(ctx); err != nil {
		return core.ExpensePaymentSnapshot{}, err
	}
	t.finishMutation(ctx, amqp.EntityExpense, id, amqp.ActionMonthRegistered, mk.String())
	return core.ExpensePaymentSnapshot{Date: p.Date.String(), Cents: p.Amount.Cents}, nil
}

// DeleteFixedExpense removes a recurring expense.
func (t *Tracker) DeleteFixedExpense(ctx context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.state.DeleteExpense(id); err != nil {
		return err
	}
	if err := t.saveAll(ctx); err != nil {
		return err
	}
	t.finishMutation(ctx, amqp.EntityExpense, id, amqp.ActionDeleted, "")
	return nil
}

// Overview computes the monthly balance, serving repeated reads of the
// same month from cache until the next mutation.
func (t *Tracker) Overview(ctx context.Context, mk core.MonthKey) core.MonthlyBalance {
	key := mk.String()
	if b, ok := t.overviews.Get(key); ok {
		metrics.OverviewRequestsTotal.WithLabelValues("hit").Inc()
		return b
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	b := t.state.MonthlyBalance(mk)
	// Insert under the state lock. A mutation purges the cache while
	// holding it, so an entry set outside the lock could re-surface a
	// pre-mutation balance.
	t.overviews.Set(key, b)
	metrics.OverviewRequestsTotal.WithLabelValues("miss").Inc()
	return b
}

// Record returns one record's snapshot.
func (t *Tracker) Record(ctx context.Context, id string) (core.DebtRecordSnapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, _, err := t.state.Record(id)
	if err != nil {
		return core.DebtRecordSnapshot{}, err
	}
	return r.Snapshot(), nil
}

// Snapshot returns the full current state.
func (t *Tracker) Snapshot(ctx context.Context) core.StateSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Snapshot()
}

// saveAll persists the three collections in parallel. Called with the
// state lock held, so the snapshots are taken consistently.
func (t *Tracker) saveAll(ctx context.Context) error {
	snap := t.state.Snapshot()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return t.repo.SaveDebtors(gctx, snap.Debtors) })
	g.Go(func() error { return t.repo.SaveCreditors(gctx, snap.Creditors) })
	g.Go(func() error { return t.repo.SaveFixedExpenses(gctx, snap.FixedExpenses) })

	if err := g.Wait(); err != nil {
		metrics.PersistenceErrorsTotal.Inc()
		t.logger.ErrorContext(ctx, "failed to persist state", log.FieldError, err)
		return fmt.Errorf("persist state: %w", err)
	}
	return nil
}

// finishMutation invalidates derived views, counts the mutation and
// announces it. Publish failures are logged, never fatal.
func (t *Tracker) finishMutation(ctx context.Context, entity, id, action, month string) {
	t.overviews.Purge()
	metrics.MutationsTotal.WithLabelValues(entity, action).Inc()

	if t.publisher == nil {
		return
	}
	msg := amqp.NewStateChangedMessage(entity, id, action, month)
	if err := t.publisher.PublishStateChanged(ctx, msg); err != nil {
		metrics.PublishErrorsTotal.Inc()
		t.logger.WarnContext(ctx, "failed to publish state change",
			log.FieldError, err,
			log.FieldEntity, entity,
			log.FieldAction, action)
	}
}

func entityForSide(side state.Side) string {
	if side == state.SideCreditor {
		return amqp.EntityCreditor
	}
	return amqp.EntityDebtor
}
