// Package updater implements the agent's self-update: a version probe
// against the server's /client endpoint followed by a checksum-verified
// binary replacement.
package updater

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/debtrack/agent/internal/httputil"
	"github.com/debtrack/agent/internal/logging"
)

var log = logging.L("updater")

// Headers the DebTrack server attaches to /client responses.
const (
	VersionHeader  = "X-Debtrack-Client-Version"
	ChecksumHeader = "X-Debtrack-Client-Checksum"
)

// Config holds updater configuration.
type Config struct {
	// ServerURL is the DebTrack base URL, e.g. https://debtrack.example.com:443.
	ServerURL      string
	CurrentVersion string
	BinaryPath     string
	BackupPath     string
}

// Updater handles agent self-updates.
type Updater struct {
	config *Config
	client *httputil.Client
}

// New creates a new Updater using the given retrying HTTP client
// (nil = a client with default retry policy).
func New(cfg *Config, client *httputil.Client) *Updater {
	if client == nil {
		client = httputil.NewClient(nil)
	}
	if cfg.BackupPath == "" {
		cfg.BackupPath = cfg.BinaryPath + ".backup"
	}
	return &Updater{config: cfg, client: client}
}

// Run checks the server for a newer agent binary and installs it when the
// remote version differs. Returns true when the binary was replaced.
func (u *Updater) Run(ctx context.Context) (bool, error) {
	remote, err := u.remoteVersion(ctx)
	if err != nil {
		return false, err
	}
	if remote == u.config.CurrentVersion {
		log.Debug("agent is up to date", "version", remote)
		return false, nil
	}

	log.Info("remote agent version differs, updating", "current", u.config.CurrentVersion, "remote", remote)

	tempPath, err := u.download(ctx)
	if err != nil {
		return false, err
	}
	defer os.Remove(tempPath)

	if err := u.backupCurrentBinary(); err != nil {
		return false, fmt.Errorf("failed to backup current binary: %w", err)
	}

	if err := u.replaceBinary(tempPath); err != nil {
		if rbErr := u.Rollback(); rbErr != nil {
			log.Error("rollback also failed after replace error", "replaceError", err, "rollbackError", rbErr)
			return false, fmt.Errorf("failed to replace binary: %w (rollback also failed: %v)", err, rbErr)
		}
		return false, fmt.Errorf("failed to replace binary (rolled back): %w", err)
	}

	log.Info("agent updated", "version", remote)
	return true, nil
}

func (u *Updater) clientURL() string {
	return u.config.ServerURL + "/client"
}

// remoteVersion probes the server with a HEAD request and returns the
// version it advertises.
func (u *Updater) remoteVersion(ctx context.Context) (string, error) {
	resp, err := u.client.Do(ctx, http.MethodHead, u.clientURL(), nil, nil)
	if err != nil {
		return "", fmt.Errorf("unable to check remote agent version: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unable to check remote agent version: status %d", resp.StatusCode)
	}

	version := resp.Header.Get(VersionHeader)
	if version == "" {
		return "", fmt.Errorf("no %s header in server response", VersionHeader)
	}
	return version, nil
}

// download fetches the new binary to a temp file and verifies its SHA-256
// against the checksum header.
func (u *Updater) download(ctx context.Context) (string, error) {
	resp, err := u.client.Do(ctx, http.MethodGet, u.clientURL(), nil, nil)
	if err != nil {
		return "", fmt.Errorf("unable to download remote agent: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unable to download remote agent: status %d", resp.StatusCode)
	}
	checksum := resp.Header.Get(ChecksumHeader)
	if checksum == "" {
		return "", fmt.Errorf("no %s header in server response", ChecksumHeader)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(u.config.BinaryPath), ".debtrack-agent-*")
	if err != nil {
		return "", err
	}
	defer tempFile.Close()

	if _, err := io.Copy(tempFile, resp.Body); err != nil {
		os.Remove(tempFile.Name())
		return "", err
	}

	if err := u.verifyChecksum(tempFile.Name(), checksum); err != nil {
		os.Remove(tempFile.Name())
		return "", err
	}
	return tempFile.Name(), nil
}

// verifyChecksum verifies the SHA-256 checksum of a file.
func (u *Updater) verifyChecksum(path, expectedChecksum string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return err
	}

	actualChecksum := hex.EncodeToString(hasher.Sum(nil))
	if actualChecksum != expectedChecksum {
		return fmt.Errorf("checksum of the downloaded agent does not match the %s header: expected %s, got %s",
			ChecksumHeader, expectedChecksum, actualChecksum)
	}

	return nil
}

// backupCurrentBinary creates a backup of the current binary.
func (u *Updater) backupCurrentBinary() error {
	// Remove old backup if exists
	os.Remove(u.config.BackupPath)

	src, err := os.Open(u.config.BinaryPath)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(u.config.BackupPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return err
	}

	info, err := os.Stat(u.config.BinaryPath)
	if err != nil {
		return err
	}
	return os.Chmod(u.config.BackupPath, info.Mode())
}

// replaceBinary atomically moves the verified temp file over the current
// binary. Both live in the same directory so the rename cannot cross
// filesystems.
func (u *Updater) replaceBinary(newPath string) error {
	if err := os.Chmod(newPath, 0755); err != nil {
		return err
	}
	return os.Rename(newPath, u.config.BinaryPath)
}

// Rollback restores the backup binary.
func (u *Updater) Rollback() error {
	log.Info("rolling back to previous version")

	if _, err := os.Stat(u.config.BackupPath); os.IsNotExist(err) {
		return fmt.Errorf("no backup found at %s", u.config.BackupPath)
	}

	src, err := os.Open(u.config.BackupPath)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(u.config.BinaryPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return err
	}

	return os.Chmod(u.config.BinaryPath, 0755)
}
