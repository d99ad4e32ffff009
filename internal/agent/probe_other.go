//go:build !darwin && !linux && !windows

package agent

import (
	"context"
	"errors"
)

var errUnsupportedPlatform = errors.New("posture checks not supported on this platform")

func probeDiskEncryption(ctx context.Context) (bool, error) { return false, errUnsupportedPlatform }
func probeOSUpdated(ctx context.Context) (bool, error)      { return false, errUnsupportedPlatform }
func probeAntivirus(ctx context.Context) (bool, error)      { return false, errUnsupportedPlatform }
func probeSleepSettings(ctx context.Context) (bool, error)  { return false, errUnsupportedPlatform }
