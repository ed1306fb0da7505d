package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"cuentas/internal/amqp"
	"cuentas/internal/core"
	"cuentas/internal/log"
)

type fakeLoader struct {
	snap core.StateSnapshot
	err  error
}

func (l *fakeLoader) LoadAll(ctx context.Context) (core.StateSnapshot, error) {
	return l.snap, l.err
}

type fakeExporter struct {
	exported []core.MonthlyBalance
	err      error
}

func (e *fakeExporter) AppendOverview(ctx context.Context, b core.MonthlyBalance) error {
	if e.err != nil {
		return e.err
	}
	e.exported = append(e.exported, b)
	return nil
}

func TestHandleStateChangedExportsNamedMonth(t *testing.T) {
	loader := &fakeLoader{
		snap: core.StateSnapshot{
			Debtors: []core.DebtRecordSnapshot{
				{
					ID:   "d1",
					Name: "Marco",
					Loans: []core.LoanSnapshot{
						{ID: "l1", Cents: 120000, StartDate: "2025-01-01", Installments: 12},
					},
				},
			},
		},
	}
	exporter := &fakeExporter{}
	w := NewExportWorker(loader, exporter, log.New(log.DefaultConfig()))

	msg := amqp.NewStateChangedMessage(amqp.EntityDebtor, "d1", amqp.ActionPaymentAdded, "2025-02")
	require.NoError(t, w.HandleStateChanged(context.Background(), msg))

	require.Len(t, exporter.exported, 1)
	b := exporter.exported[0]
	require.Equal(t, "2025-02", b.Month.String())
	require.Equal(t, int64(120000), b.TotalOwedIncoming.Cents)
	require.Equal(t, int64(10000), b.IncomingDue.Cents)
}

func TestHandleStateChangedRejectsBadMonth(t *testing.T) {
	w := NewExportWorker(&fakeLoader{}, &fakeExporter{}, log.New(log.DefaultConfig()))
	msg := amqp.NewStateChangedMessage(amqp.EntityDebtor, "d1", amqp.ActionCreated, "02-2025")
	require.Error(t, w.HandleStateChanged(context.Background(), msg))
}

func TestHandleStateChangedSurfacesFailures(t *testing.T) {
	loadErr := errors.New("db gone")
	w := NewExportWorker(&fakeLoader{err: loadErr}, &fakeExporter{}, log.New(log.DefaultConfig()))
	msg := amqp.NewStateChangedMessage(amqp.EntityExpense, "e1", amqp.ActionCreated, "2025-02")
	require.ErrorIs(t, w.HandleStateChanged(context.Background(), msg), loadErr)

	exportErr := errors.New("sheet unavailable")
	w = NewExportWorker(&fakeLoader{}, &fakeExporter{err: exportErr}, log.New(log.DefaultConfig()))
	require.ErrorIs(t, w.HandleStateChanged(context.Background(), msg), exportErr)
}
