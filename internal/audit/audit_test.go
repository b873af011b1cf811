package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
)

type fakeLedger struct {
	groups  []*models.Group
	listErr error
	results map[int64]error
}

func (f *fakeLedger) ListGroups(context.Context) ([]*models.Group, error) {
	return f.groups, f.listErr
}

func (f *fakeLedger) AuditGroup(_ context.Context, groupID int64) error {
	return f.results[groupID]
}

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAuditor_Run(t *testing.T) {
	fake := &fakeLedger{
		groups: []*models.Group{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}},
		results: map[int64]error{
			2: &calculator.InvariantViolationError{Sum: decimal.RequireFromString("0.50")},
			3: ledger.ErrGroupNotFound,
			4: errors.New("disk on fire"),
		},
	}
	m := metrics.New()

	report, err := New(fake, quiet(), m).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Checked)
	assert.Equal(t, []int64{2}, report.Violations)
	assert.Equal(t, []int64{4}, report.Failed)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InvariantViolations))
}

func TestAuditor_RunListError(t *testing.T) {
	fake := &fakeLedger{listErr: errors.New("boom")}

	_, err := New(fake, quiet(), nil).Run(context.Background())
	assert.ErrorContains(t, err, "boom")
}

func TestAuditor_RunCanceled(t *testing.T) {
	fake := &fakeLedger{groups: []*models.Group{{ID: 1}}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := New(fake, quiet(), nil).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, report.Checked)
}

func TestAuditor_Start(t *testing.T) {
	a := New(&fakeLedger{}, quiet(), nil)

	_, err := a.Start("not a schedule")
	assert.Error(t, err)

	c, err := a.Start("@every 1h")
	require.NoError(t, err)
	require.Len(t, c.Entries(), 1)
	<-c.Stop().Done()
}
