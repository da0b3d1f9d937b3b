// Package worker scans stored plans for alerts and handles the alert
// messages published for them.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"debtpilot/internal/amqp"
	"debtpilot/internal/core"
	"debtpilot/internal/log"
)

// AlertSource lists stored plans and evaluates their alerts.
type AlertSource interface {
	ListPlanIDs(ctx context.Context) ([]string, error)
	PlanAlerts(ctx context.Context, planID string) (core.Plan, []core.Alert, error)
}

// Publisher delivers alert messages to consumers.
type Publisher interface {
	PublishAlerts(ctx context.Context, msg *amqp.AlertMessage) error
}

// ScanResult summarises one pass over the stored plans.
type ScanResult struct {
	Plans     int
	Published int
	Failed    int
}

type AlertWorker struct {
	source    AlertSource
	publisher Publisher
	workers   int
	now       func() time.Time
}

// NewAlertWorker builds a worker evaluating up to workers plans at once.
// With a nil publisher alerts are handled in process instead of being
// published.
func NewAlertWorker(source AlertSource, publisher Publisher, workers int) *AlertWorker {
	if workers < 1 {
		workers = 1
	}
	return &AlertWorker{
		source:    source,
		publisher: publisher,
		workers:   workers,
		now:       time.Now,
	}
}

// Scan evaluates every stored plan and publishes the plans that raised at
// least one alert. A failing plan is logged and counted without stopping
// the scan.
func (w *AlertWorker) Scan(ctx context.Context) (ScanResult, error) {
	ids, err := w.source.ListPlanIDs(ctx)
	if err != nil {
		return ScanResult{}, fmt.Errorf("list plans: %w", err)
	}

	var published, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.workers)

	for _, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sent, err := w.scanPlan(gctx, id)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				failed.Add(1)
				slog.WarnContext(gctx, "Plan alert scan failed",
					log.FieldComponent, log.ComponentWorker,
					log.FieldPlanID, id,
					log.FieldError, err)
				return nil
			}
			if sent {
				published.Add(1)
			}
			return nil
		})
	}

	res := ScanResult{Plans: len(ids)}
	err = g.Wait()
	res.Published = int(published.Load())
	res.Failed = int(failed.Load())
	if err != nil {
		return res, fmt.Errorf("scan plans: %w", err)
	}
	return res, nil
}

func (w *AlertWorker) scanPlan(ctx context.Context, planID string) (bool, error) {
	plan, alerts, err := w.source.PlanAlerts(ctx, planID)
	if err != nil {
		return false, err
	}
	if len(alerts) == 0 {
		return false, nil
	}

	msg := amqp.NewAlertMessage(plan.ID, plan.Name, alerts, w.now())
	if w.publisher == nil {
		return true, w.HandleAlertMessage(ctx, msg)
	}
	if err := w.publisher.PublishAlerts(ctx, msg); err != nil {
		return false, fmt.Errorf("publish alerts: %w", err)
	}
	return true, nil
}

// Run scans immediately and then every interval until ctx is done.
func (w *AlertWorker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *AlertWorker) runOnce(ctx context.Context) {
	start := w.now()
	res, err := w.Scan(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Alert scan failed", log.FieldComponent, log.ComponentWorker, log.FieldError, err)
		return
	}
	slog.InfoContext(ctx, "Alert scan complete",
		log.FieldComponent, log.ComponentWorker,
		"plans", res.Plans,
		"published", res.Published,
		"failed", res.Failed,
		log.FieldDuration, w.now().Sub(start).Milliseconds())
}

// HandleAlertMessage logs each alert at a level matching its type.
func (w *AlertWorker) HandleAlertMessage(ctx context.Context, msg *amqp.AlertMessage) error {
	for _, a := range msg.Alerts {
		level := slog.LevelInfo
		switch a.Type {
		case core.AlertError:
			level = slog.LevelError
		case core.AlertWarning:
			level = slog.LevelWarn
		}
		slog.Log(ctx, level, a.Title,
			log.FieldComponent, log.ComponentWorker,
			log.FieldPlanID, msg.PlanID,
			log.FieldPlanName, msg.PlanName,
			"alert_type", a.Type,
			"message", a.Message,
			"action", a.Action)
	}
	return nil
}
