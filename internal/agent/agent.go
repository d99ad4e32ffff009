// Package agent implements the healthwatch fleet agent: platform posture
// probes, change detection against the last-sent snapshot, and report
// transmission with retry.
package agent

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"healthwatch/internal/shared"
)

type Agent struct {
	Cfg       *shared.AgentConfig
	MachineID string
	Tx        *Transmitter
	Log       *logrus.Logger

	// snapshot mirrors the on-disk last-sent state. Only one cycle runs at
	// a time, so no locking is needed.
	snapshot *Snapshot

	collect func(context.Context) shared.CheckSet
	now     func() time.Time
}

func New(configPath string, log *logrus.Logger) (*Agent, error) {
	cfg, err := shared.LoadAgentConfig(configPath)
	if err != nil {
		return nil, err
	}

	machineID, err := ensureMachineID(cfg.StateDir)
	if err != nil {
		return nil, err
	}

	snap, err := loadSnapshot(cfg.StateDir)
	if err != nil {
		return nil, err
	}

	return &Agent{
		Cfg:       cfg,
		MachineID: machineID,
		Tx:        NewTransmitter(cfg.Transmit, cfg.Server.URL, log),
		Log:       log,
		snapshot:  snap,
		collect:   CollectChecks,
		now:       time.Now,
	}, nil
}

// RunCycle performs one check-and-send cycle: probe, decide, transmit.
// The snapshot is only advanced after the server accepts the report, so a
// failed transmission leaves the next cycle to re-detect the same change.
func (a *Agent) RunCycle(ctx context.Context) error {
	now := a.now().UTC()
	checks := a.collect(ctx)

	maxInterval := time.Duration(a.Cfg.Checks.MaxReportIntervalSec) * time.Second
	send, reason := ShouldSend(a.snapshot, checks, now, maxInterval)
	if !send {
		a.Log.Debug("no changes detected, skipping report")
		return nil
	}

	a.Log.WithFields(logrus.Fields{
		"reason": reason,
		"status": checks.Status(),
	}).Info("sending health report")

	return a.send(ctx, now, checks)
}

// ReportNow collects and sends a report unconditionally, bypassing change
// detection. Used by the one-shot CLI mode.
func (a *Agent) ReportNow(ctx context.Context) error {
	return a.send(ctx, a.now().UTC(), a.collect(ctx))
}

// send transmits a report and, only on success, advances the snapshot.
func (a *Agent) send(ctx context.Context, now time.Time, checks shared.CheckSet) error {
	report := &shared.HealthReport{
		MachineID: a.MachineID,
		Timestamp: now.Format(time.RFC3339Nano),
		OSName:    osName(),
		OSVersion: osVersion(ctx),
		Checks:    &checks,
	}
	if err := a.Tx.Send(ctx, report); err != nil {
		return err
	}

	a.snapshot = &Snapshot{Checks: checks, SentAt: now}
	if err := saveSnapshot(a.Cfg.StateDir, a.snapshot); err != nil {
		a.Log.Warnf("failed to persist snapshot: %v", err)
	}
	return nil
}

// Run executes an immediate first cycle and then one cycle per interval
// until the context is cancelled. Cycles never overlap.
func (a *Agent) Run(ctx context.Context) error {
	if err := a.RunCycle(ctx); err != nil {
		a.Log.Errorf("cycle failed: %v", err)
	}

	ticker := time.NewTicker(time.Duration(a.Cfg.Checks.IntervalSec) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := a.RunCycle(ctx); err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				a.Log.Errorf("cycle failed: %v", err)
			}
		}
	}
}

// osName reports the platform the way the dashboard filters expect it.
func osName() string {
	switch runtime.GOOS {
	case "darwin":
		return "Darwin"
	case "windows":
		return "Windows"
	case "linux":
		return "Linux"
	default:
		return runtime.GOOS
	}
}

func osVersion(ctx context.Context) string {
	var out string
	var err error
	switch runtime.GOOS {
	case "windows":
		out, err = runCommand(ctx, "cmd.exe", "/C", "ver")
	default:
		out, err = runCommand(ctx, "uname", "-r")
	}
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(out)
}
