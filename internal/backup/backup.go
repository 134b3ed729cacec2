package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/dailyfix/internal/constants"
	"github.com/julianstephens/dailyfix/internal/logger"
)

// ErrInvalidBackup is returned for files that are not a JSON document.
var ErrInvalidBackup = errors.New("backup file is not a valid snapshot")

// BackupInfo contains information about a backup file
type BackupInfo struct {
	Path      string
	Timestamp time.Time
	Size      int64
}

// Name is the file name without its directory.
func (b BackupInfo) Name() string {
	return filepath.Base(b.Path)
}

// Manager writes, lists, rotates and reads snapshot backups in
// <configDir>/backups.
type Manager struct {
	backupDir string
	now       func() time.Time
}

// NewManager creates a manager for the backups of configDir.
func NewManager(configDir string) *Manager {
	return &Manager{
		backupDir: filepath.Join(configDir, constants.BackupDirName),
		now:       time.Now,
	}
}

// GetBackupDir returns the backup directory path
func (m *Manager) GetBackupDir() string {
	return m.backupDir
}

// CreateBackup writes snapshot to a new timestamped file and prunes the
// oldest backups beyond the retention limit.
func (m *Manager) CreateBackup(snapshot []byte) (string, error) {
	return m.createBackup(snapshot, false)
}

func (m *Manager) createBackup(snapshot []byte, skipRotation bool) (string, error) {
	if !json.Valid(snapshot) {
		return "", ErrInvalidBackup
	}
	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	path, err := m.nextPath()
	if err != nil {
		return "", err
	}
	// O_EXCL so two writers racing on one name cannot clobber each other
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return "", fmt.Errorf("failed to create backup: %w", err)
	}
	if _, err := f.Write(snapshot); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}

	if !skipRotation {
		if err := m.rotateBackups(); err != nil {
			logger.Warn("Failed to rotate old backups", "error", err)
		}
	}
	logger.Info("Backup created", "path", path, "bytes", len(snapshot))
	return path, nil
}

// nextPath picks dailyfix-YYYYMMDD-HHMM.json, falling back to seconds and
// then a counter when the name is taken.
func (m *Manager) nextPath() (string, error) {
	now := m.now()
	candidate := func(stamp string, n int) string {
		name := constants.BackupFilePrefix + stamp
		if n > 0 {
			name += fmt.Sprintf("-%d", n)
		}
		return filepath.Join(m.backupDir, name+constants.BackupFileSuffix)
	}

	path := candidate(now.Format("20060102-1504"), 0)
	if !exists(path) {
		return path, nil
	}
	stamp := now.Format("20060102-150405")
	for n := 0; n <= 100; n++ {
		path = candidate(stamp, n)
		if !exists(path) {
			return path, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique backup filename")
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ListBackups returns a list of all available backups, sorted by timestamp (newest first)
func (m *Manager) ListBackups() ([]BackupInfo, error) {
	entries, err := os.ReadDir(m.backupDir)
	if os.IsNotExist(err) {
		return []BackupInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := []BackupInfo{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ts, ok := parseName(entry.Name())
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{
			Path:      filepath.Join(m.backupDir, entry.Name()),
			Timestamp: ts,
			Size:      info.Size(),
		})
	}

	// name breaks ties so counter-suffixed files keep creation order
	sort.Slice(backups, func(i, j int) bool {
		if backups[i].Timestamp.Equal(backups[j].Timestamp) {
			return backups[i].Name() > backups[j].Name()
		}
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}

// parseName extracts the local timestamp from a backup file name.
func parseName(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, constants.BackupFilePrefix) || !strings.HasSuffix(name, constants.BackupFileSuffix) {
		return time.Time{}, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, constants.BackupFilePrefix), constants.BackupFileSuffix)

	// drop a trailing -N counter; time parts are always 4 or 6 digits
	if parts := strings.Split(stamp, "-"); len(parts) == 3 && len(parts[2]) != 4 && len(parts[2]) != 6 && isDigits(parts[2]) {
		stamp = parts[0] + "-" + parts[1]
	}

	for _, layout := range []string{"20060102-1504", "20060102-150405"} {
		if ts, err := time.ParseInLocation(layout, stamp, time.Local); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// rotateBackups removes old backups beyond the retention limit
func (m *Manager) rotateBackups() error {
	backups, err := m.ListBackups()
	if err != nil {
		return err
	}
	for i := constants.MaxBackups; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
		logger.Debug("Removed old backup", "path", backups[i].Path)
	}
	return nil
}

// Resolve accepts a backup file name from ListBackups or a path.
func (m *Manager) Resolve(nameOrPath string) string {
	if filepath.Base(nameOrPath) == nameOrPath {
		if candidate := filepath.Join(m.backupDir, nameOrPath); exists(candidate) {
			return candidate
		}
	}
	return nameOrPath
}

// ReadBackup returns the contents of a backup after checking it is JSON.
// Shape problems are left to store migration.
func (m *Manager) ReadBackup(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("backup file does not exist: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidBackup, filepath.Base(path))
	}
	return data, nil
}

// PreRestore saves current before a restore replaces it. It skips
// rotation so the backup being restored cannot be pruned.
func (m *Manager) PreRestore(current []byte) (string, error) {
	return m.createBackup(current, true)
}
