// Package audit periodically re-checks that every group's balances sum to zero.
package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
)

// runTimeout bounds one audit pass.
const runTimeout = 5 * time.Minute

// Ledger is the part of ledger.Service the auditor calls.
type Ledger interface {
	ListGroups(ctx context.Context) ([]*models.Group, error)
	AuditGroup(ctx context.Context, groupID int64) error
}

// Report summarizes one audit pass.
type Report struct {
	Checked    int
	Violations []int64 // group ids whose balances do not sum to zero
	Failed     []int64 // group ids that could not be read
}

// Auditor checks the zero-sum invariant for all groups.
type Auditor struct {
	ledger  Ledger
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New creates an Auditor. m may be nil.
func New(l Ledger, logger *slog.Logger, m *metrics.Metrics) *Auditor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Auditor{ledger: l, logger: logger.With("component", "audit"), metrics: m}
}

// Run audits every group once. A failure on one group does not stop the pass.
func (a *Auditor) Run(ctx context.Context) (*Report, error) {
	groups, err := a.ledger.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	report := &Report{}
	for _, group := range groups {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		err := a.ledger.AuditGroup(ctx, group.ID)
		var violation *calculator.InvariantViolationError
		switch {
		case err == nil:
			report.Checked++
		case errors.As(err, &violation):
			report.Checked++
			report.Violations = append(report.Violations, group.ID)
			a.metrics.InvariantViolated()
			a.logger.Error("Balance invariant violated",
				"group_id", group.ID,
				"sum", violation.Sum.String(),
			)
		case errors.Is(err, ledger.ErrGroupNotFound):
			// deleted since listing
		default:
			report.Failed = append(report.Failed, group.ID)
			a.logger.Warn("Audit failed for group", "group_id", group.ID, "error", err)
		}
	}

	return report, nil
}

// Start schedules Run on a cron schedule (standard five-field expression or a
// descriptor such as "@every 1h"). Stop the returned cron to end it.
func (a *Auditor) Start(schedule string) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()

		start := time.Now()
		report, err := a.Run(ctx)
		if err != nil {
			a.logger.Error("Audit run failed", "error", err)
			return
		}
		a.logger.Info("Audit run finished",
			"groups", report.Checked,
			"violations", len(report.Violations),
			"failed", len(report.Failed),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule audit %q: %w", schedule, err)
	}

	c.Start()
	a.logger.Info("Audit job started", "schedule", schedule)
	return c, nil
}
