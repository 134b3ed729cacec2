// Package lock guards the store against concurrent writers with a pid
// lockfile. Locks left by processes that no longer exist are reclaimed.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/dailyfix/internal/constants"
	"github.com/julianstephens/dailyfix/internal/logger"
)

var (
	// ErrLocked is returned when a live process holds the lock.
	ErrLocked = errors.New("store is locked by another dailyfix process")

	findProcessFunc = ps.FindProcess
	getpidFunc      = os.Getpid
)

// Lock is a held lockfile.
type Lock struct {
	path  string
	token string
}

// Holder describes the lockfile owner.
type Holder struct {
	PID        int
	Token      string
	Executable string
	Alive      bool

	content string
}

// Path returns the lockfile location for dir.
func Path(dir string) string {
	return filepath.Join(dir, constants.LockfileName)
}

// Acquire takes the lock in dir. A lockfile whose pid is gone, or is now
// some other program, is treated as stale and replaced. A holder whose
// process cannot be looked up counts as alive.
func Acquire(dir string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}
	path := Path(dir)
	token := uuid.NewString()
	content := fmt.Sprintf("%d|%s", getpidFunc(), token)

	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
		if err == nil {
			_, werr := f.WriteString(content)
			cerr := f.Close()
			if werr != nil || cerr != nil {
				os.Remove(path)
				return nil, fmt.Errorf("failed to write lockfile: %w", errors.Join(werr, cerr))
			}
			return &Lock{path: path, token: token}, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to create lockfile: %w", err)
		}

		holder, herr := Inspect(dir)
		if errors.Is(herr, os.ErrNotExist) {
			continue
		}
		if holder.Alive {
			return nil, fmt.Errorf("%w (pid %d)", ErrLocked, holder.PID)
		}
		logger.Warn("Reclaiming stale lockfile", "path", path, "error", herr)
		if err := removeIfUnchanged(path, holder.content); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: lockfile keeps reappearing", ErrLocked)
}

// Inspect reads the lockfile in dir and checks whether its owner is still
// running. os.ErrNotExist means there is no lock. When the process lookup
// fails the holder is reported alive along with the error.
func Inspect(dir string) (Holder, error) {
	data, err := os.ReadFile(Path(dir))
	if err != nil {
		return Holder{}, err
	}
	h := Holder{content: string(data)}

	pidStr, token, ok := strings.Cut(strings.TrimSpace(string(data)), "|")
	if !ok || token == "" {
		return h, errors.New("lockfile is malformed")
	}
	pid, err := strconv.Atoi(pidStr)
	if err != nil || pid <= 0 {
		return h, errors.New("invalid process ID in lockfile")
	}

	h.PID, h.Token = pid, token
	proc, err := findProcessFunc(pid)
	if err != nil {
		h.Alive = true
		return h, fmt.Errorf("failed to look up pid %d: %w", pid, err)
	}
	if proc == nil {
		return h, nil
	}
	h.Executable = proc.Executable()
	h.Alive = strings.HasPrefix(h.Executable, constants.AppName) || pid == getpidFunc()
	return h, nil
}

// removeIfUnchanged deletes a stale lockfile only if it still holds want.
// A different content means another process reclaimed it first.
func removeIfUnchanged(path, want string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read lockfile: %w", err)
	}
	if string(data) != want {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove stale lockfile: %w", err)
	}
	return nil
}

// Release removes the lockfile if it is still ours.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	data, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read lockfile: %w", err)
	}
	if !strings.HasSuffix(strings.TrimSpace(string(data)), "|"+l.token) {
		logger.Warn("Lockfile was taken over, leaving it in place", "path", l.path)
		return nil
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lockfile: %w", err)
	}
	return nil
}
