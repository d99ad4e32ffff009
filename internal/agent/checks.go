package agent

import (
	"bytes"
	"context"
	"os/exec"
	"time"

	"healthwatch/internal/shared"
)

// perProbeTimeout bounds each platform command so one hung probe cannot
// stall the whole cycle.
const perProbeTimeout = 60 * time.Second

// CollectChecks runs the four platform probes. A failing probe yields
// Unknown for its check only; the other three are still collected.
func CollectChecks(ctx context.Context) shared.CheckSet {
	return shared.CheckSet{
		DiskEncryption:  runProbe(ctx, probeDiskEncryption),
		OSUpdated:       runProbe(ctx, probeOSUpdated),
		AntivirusActive: runProbe(ctx, probeAntivirus),
		SleepSettingsOK: runProbe(ctx, probeSleepSettings),
	}
}

func runProbe(ctx context.Context, probe func(context.Context) (bool, error)) shared.CheckResult {
	pctx, cancel := context.WithTimeout(ctx, perProbeTimeout)
	defer cancel()
	return shared.FromProbe(probe(pctx))
}

// runCommand executes a probe command and returns its combined output.
func runCommand(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.String(), err
}
