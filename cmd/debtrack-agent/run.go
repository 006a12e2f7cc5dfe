package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/debtrack/agent/internal/apt"
	"github.com/debtrack/agent/internal/delivery"
	"github.com/debtrack/agent/internal/hook"
	"github.com/debtrack/agent/internal/inventory"
	"github.com/debtrack/agent/internal/logging"
	"github.com/debtrack/agent/internal/mtls"
	"github.com/debtrack/agent/internal/updater"
)

// runReport scans the apt catalog and reports the package state. A full
// scan walks every installed package; with upgradableOnly only pending
// upgrades are collected and the update is tagged partial.
func runReport(upgradableOnly bool) error {
	catalog, err := apt.Open()
	if err != nil {
		return err
	}

	snap := inventory.Collect(catalog, upgradableOnly, logging.L("collector"))

	updateType := inventory.UpdateFull
	if upgradableOnly {
		updateType = inventory.UpdatePartial
	}
	return deliver(snap, updateType)
}

// runHook parses a dpkg Pre-Install-Pkgs stream and reports the resulting
// delta. Hook-derived updates are always partial.
func runHook(lines []string) error {
	catalog, err := apt.OpenIndex()
	if err != nil {
		return err
	}

	snap, err := hook.Parse(lines, catalog, logging.L("hook"))
	if err != nil {
		return err
	}
	return deliver(snap, inventory.UpdatePartial)
}

// deliver attaches host facts to the snapshot and hands the payload to the
// server, or prints it on a dry run. An empty snapshot means there is
// nothing to report and no request is made.
func deliver(snap inventory.Snapshot, updateType inventory.UpdateType) error {
	if snap.Empty() {
		logging.L("delivery").Info("nothing to report")
		return nil
	}

	host, err := inventory.CollectHost()
	if err != nil {
		return fmt.Errorf("failed to collect host facts: %w", err)
	}
	report := inventory.BuildReport(snap, updateType, host, cfg.APIVersion)

	if dryRun {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "    ")
		return enc.Encode(report)
	}

	tlsConfig, err := mtls.BuildTLSConfig(cfg.CertFile, cfg.KeyFile)
	if err != nil {
		return err
	}

	timeout := time.Duration(cfg.HTTPTimeoutSeconds) * time.Second
	client := delivery.New(cfg.Server, cfg.Port, tlsConfig, timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return client.Send(ctx, report)
}

// runSelfUpdate replaces this binary when the server publishes a different
// version.
func runSelfUpdate(ctx context.Context) error {
	binaryPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("unable to locate own binary: %w", err)
	}

	u := updater.New(&updater.Config{
		ServerURL:      fmt.Sprintf("https://%s:%d", cfg.Server, cfg.Port),
		CurrentVersion: version,
		BinaryPath:     binaryPath,
	}, nil)

	if ctx == nil {
		ctx = context.Background()
	}
	updated, err := u.Run(ctx)
	if err != nil {
		return err
	}
	if !updated {
		fmt.Println("already up to date")
	}
	return nil
}
