//go:build darwin

package agent

import (
	"context"
	"strconv"
	"strings"
)

func probeDiskEncryption(ctx context.Context) (bool, error) {
	out, err := runCommand(ctx, "diskutil", "apfs", "list")
	if err != nil {
		return false, err
	}
	return strings.Contains(out, "Encrypted"), nil
}

func probeOSUpdated(ctx context.Context) (bool, error) {
	out, err := runCommand(ctx, "softwareupdate", "-l")
	if err != nil {
		// softwareupdate exits non-zero when nothing is available on some
		// versions; the message is still authoritative.
		if strings.Contains(out, "No new software available") {
			return true, nil
		}
		return false, err
	}
	return strings.Contains(out, "No new software available"), nil
}

func probeAntivirus(ctx context.Context) (bool, error) {
	// XProtect ships with macOS and cannot be uninstalled.
	return true, nil
}

// probeSleepSettings requires the display sleep timeout to be 10 minutes
// or less.
func probeSleepSettings(ctx context.Context) (bool, error) {
	out, err := runCommand(ctx, "pmset", "-g")
	if err != nil {
		return false, err
	}
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[0] == "displaysleep" {
			minutes, err := strconv.Atoi(fields[1])
			if err != nil {
				return false, err
			}
			return minutes > 0 && minutes <= 10, nil
		}
	}
	return false, nil
}
