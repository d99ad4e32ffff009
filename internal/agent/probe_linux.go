//go:build linux

package agent

import (
	"context"
	"errors"
	"os/exec"
	"strconv"
	"strings"
)

func probeDiskEncryption(ctx context.Context) (bool, error) {
	out, err := runCommand(ctx, "lsblk", "-f")
	if err != nil {
		return false, err
	}
	return strings.Contains(out, "LUKS") || strings.Contains(out, "crypto"), nil
}

func probeOSUpdated(ctx context.Context) (bool, error) {
	// apt-based distros first: refresh the package lists so the simulated
	// upgrade counts against current state, then dry-run the upgrade. Both
	// commands share the probe timeout.
	if _, err := runCommand(ctx, "apt-get", "update", "-qq"); err == nil {
		if out, err := runCommand(ctx, "apt-get", "-s", "upgrade"); err == nil {
			return aptAllUpdated(out), nil
		}
	}

	// yum exits 0 when current and 100 when updates are pending.
	_, err := runCommand(ctx, "yum", "check-update", "--quiet")
	if err == nil {
		return true, nil
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) && ee.ExitCode() == 100 {
		return false, nil
	}
	return false, err
}

// aptAllUpdated reads the summary line of a simulated `apt-get upgrade`.
func aptAllUpdated(out string) bool {
	return strings.Contains(out, "0 upgraded, 0 newly installed")
}

func probeAntivirus(ctx context.Context) (bool, error) {
	scanners := [][]string{
		{"clamscan", "--version"},
		{"freshclam", "--version"},
		{"rkhunter", "--version"},
		{"chkrootkit", "-V"},
	}
	for _, argv := range scanners {
		if _, err := runCommand(ctx, argv[0], argv[1:]...); err == nil {
			return true, nil
		}
	}
	return false, nil
}

// probeSleepSettings requires an inactivity sleep timeout of 10 minutes or
// less, via GNOME settings first and DPMS as a fallback.
func probeSleepSettings(ctx context.Context) (bool, error) {
	out, err := runCommand(ctx, "gsettings", "get",
		"org.gnome.settings-daemon.plugins.power", "sleep-inactive-ac-timeout")
	if err == nil {
		seconds, perr := strconv.Atoi(strings.TrimSpace(out))
		if perr != nil {
			return false, perr
		}
		return seconds > 0 && seconds <= 600, nil
	}

	out, err = runCommand(ctx, "xset", "q")
	if err != nil {
		return false, err
	}
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, "timeout:") {
			continue
		}
		fields := strings.Fields(line)
		for i, f := range fields {
			if f == "timeout:" && i+1 < len(fields) {
				seconds, perr := strconv.Atoi(fields[i+1])
				if perr != nil {
					return false, perr
				}
				return seconds > 0 && seconds <= 600, nil
			}
		}
	}
	return false, errors.New("no sleep timeout found in xset output")
}
