//go:build windows

package agent

import (
	"context"
	"strconv"
	"strings"
)

func powershell(ctx context.Context, script string) (string, error) {
	return runCommand(ctx, "powershell.exe", "-NoProfile", "-NonInteractive", "-Command", script)
}

func probeDiskEncryption(ctx context.Context) (bool, error) {
	out, err := runCommand(ctx, "manage-bde", "-status")
	if err != nil {
		return false, err
	}
	return strings.Contains(out, "Protection On"), nil
}

func probeOSUpdated(ctx context.Context) (bool, error) {
	out, err := powershell(ctx,
		`(New-Object -ComObject Microsoft.Update.AutoUpdate).Results.UpdateCount -eq 0`)
	if err != nil {
		return false, err
	}
	return strings.Contains(out, "True"), nil
}

func probeAntivirus(ctx context.Context) (bool, error) {
	out, err := powershell(ctx,
		`Get-MpComputerStatus | Select-Object -ExpandProperty AntivirusEnabled`)
	if err == nil && strings.Contains(out, "True") {
		return true, nil
	}

	// Third-party products register in SecurityCenter2.
	out, err = powershell(ctx,
		`Get-CimInstance -Namespace root/SecurityCenter2 -ClassName AntiVirusProduct | ForEach-Object { $_.displayName }`)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// probeSleepSettings reads the AC display sleep timeout from the power
// settings registry hive and requires it to be 10 minutes or less.
func probeSleepSettings(ctx context.Context) (bool, error) {
	out, err := powershell(ctx,
		`(Get-ItemProperty -Path 'HKLM:\SYSTEM\CurrentControlSet\Control\Power\PowerSettings\238C9FA8-0AAD-41ED-83F4-97BE242C8F20\7bc4a2f9-d8fc-4469-b07b-33eb785aaca0' -Name 'ACSettingIndex').ACSettingIndex / 60`)
	if err != nil {
		return false, err
	}
	minutes, perr := strconv.ParseFloat(strings.TrimSpace(out), 64)
	if perr != nil {
		return false, perr
	}
	return minutes > 0 && minutes <= 10, nil
}
