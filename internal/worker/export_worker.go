// Package worker re-exports monthly overviews whenever the tracker
// state changes.
package worker

import (
	"context"
	"fmt"
	"time"

	"cuentas/internal/amqp"
	"cuentas/internal/core"
	"cuentas/internal/log"
	"cuentas/internal/state"
)

// StateLoader reads the persisted tracker state.
type StateLoader interface {
	LoadAll(ctx context.Context) (core.StateSnapshot, error)
}

// OverviewExporter writes one monthly overview row to the external
// sink.
type OverviewExporter interface {
	AppendOverview(ctx context.Context, b core.MonthlyBalance) error
}

// ExportWorker recomputes and exports the overview of the month a
// state change touched. A periodic pass re-exports the current month
// as a backstop for lost messages.
type ExportWorker struct {
	loader   StateLoader
	exporter OverviewExporter
	logger   *log.Logger
}

func NewExportWorker(loader StateLoader, exporter OverviewExporter, logger *log.Logger) *ExportWorker {
	return &ExportWorker{
		loader:   loader,
		exporter: exporter,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// HandleStateChanged exports the overview for the month named in the
// message, defaulting to the current month when the mutation was not
// month-scoped.
func (w *ExportWorker) HandleStateChanged(ctx context.Context, msg *amqp.StateChangedMessage) error {
	mk := currentMonth()
	if msg.Month != "" {
		parsed, err := core.ParseMonthKey(msg.Month)
		if err != nil {
			return fmt.Errorf("message month: %w", err)
		}
		mk = parsed
	}

	w.logger.InfoContext(ctx, "exporting overview for state change",
		log.FieldEntity, msg.Entity,
		log.FieldAction, msg.Action,
		log.FieldMonth, mk.String())

	return w.exportMonth(ctx, mk)
}

// RunPeriodic re-exports the current month at the given interval until
// the context is canceled.
func (w *ExportWorker) RunPeriodic(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "stopping periodic export", "reason", ctx.Err())
			return
		case <-ticker.C:
			if err := w.exportMonth(ctx, currentMonth()); err != nil {
				w.logger.ErrorContext(ctx, "periodic export failed", log.FieldError, err)
			}
		}
	}
}

func (w *ExportWorker) exportMonth(ctx context.Context, mk core.MonthKey) error {
	snap, err := w.loader.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	st, err := state.FromSnapshot(snap)
	if err != nil {
		return fmt.Errorf("restore state: %w", err)
	}

	b := st.MonthlyBalance(mk)
	if err := w.exporter.AppendOverview(ctx, b); err != nil {
		return fmt.Errorf("export overview %s: %w", mk, err)
	}
	return nil
}

func currentMonth() core.MonthKey {
	now := time.Now().UTC()
	return core.MonthKey{Year: now.Year(), Month: now.Month()}
}
