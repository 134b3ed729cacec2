package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"

	"github.com/julianstephens/dailyfix/internal/backup"
	"github.com/julianstephens/dailyfix/internal/calendar"
	"github.com/julianstephens/dailyfix/internal/catalog"
	dferrors "github.com/julianstephens/dailyfix/internal/errors"
	"github.com/julianstephens/dailyfix/internal/lock"
	"github.com/julianstephens/dailyfix/internal/logger"
	"github.com/julianstephens/dailyfix/internal/models"
	"github.com/julianstephens/dailyfix/internal/session"
	"github.com/julianstephens/dailyfix/internal/storage"
)

// Options are the global flags shared by every command.
type Options struct {
	Config         string
	Catalog        string
	Language       string
	CatalogTimeout time.Duration
	Debug          bool
}

// Context is handed to every kong command. Storage, catalog and session
// are opened on first use so commands such as keyring and init work
// without a readable store or catalog.
type Context struct {
	Options

	Clock calendar.Clock

	// Confirm asks a yes/no question. Tests replace it.
	Confirm func(title, description string) (bool, error)
	// Interactive reports whether prompts can be shown.
	Interactive func() bool

	provider  storage.Provider
	challenge []models.Challenge
	session   *session.Session
	lock      *lock.Lock
}

// NewContext returns a context for opts using the system clock and huh
// prompts.
func NewContext(opts Options) *Context {
	if opts.Language == "" {
		opts.Language = "py"
	}
	return &Context{
		Options:     opts,
		Clock:       calendar.SystemClock{},
		Confirm:     confirmPrompt,
		Interactive: stdinIsTerminal,
	}
}

func confirmPrompt(title, description string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}

func stdinIsTerminal() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

// ConfigDir holds logs, backups and the lockfile.
func (c *Context) ConfigDir() string {
	return storage.ConfigDir(c.Config)
}

// Storage returns the persistence backend selected by --config.
func (c *Context) Storage() (storage.Provider, error) {
	if c.provider != nil {
		return c.provider, nil
	}
	p, err := storage.New(c.Config)
	if err != nil {
		return nil, storageHint(err)
	}
	c.provider = p
	return p, nil
}

func storageHint(err error) error {
	switch {
	case storage.IsKeyringError(err):
		return dferrors.WithHint(err, "store a connection string with 'dailyfix keyring set'")
	case storage.IsCredentialError(err):
		return dferrors.WithHint(err, "move the password to ~/.pgpass, PGPASSWORD or the OS keyring ('--config keyring')")
	}
	return err
}

// Challenges loads and filters the catalog for --language.
func (c *Context) Challenges(ctx context.Context) ([]models.Challenge, error) {
	if c.challenge != nil {
		return c.challenge, nil
	}
	p := catalog.Resolve(c.Catalog, c.CatalogTimeout)
	all, err := catalog.Load(ctx, p, c.Language)
	if err != nil {
		if errors.Is(err, catalog.ErrEmptyCatalog) {
			return nil, dferrors.WithHint(err, "check --catalog and --language")
		}
		return nil, err
	}
	c.challenge = all
	return all, nil
}

// Session opens storage, loads the catalog and returns the shared session.
func (c *Context) Session() (*session.Session, error) {
	if c.session != nil {
		return c.session, nil
	}
	p, err := c.Storage()
	if err != nil {
		return nil, err
	}
	challenges, err := c.Challenges(context.Background())
	if err != nil {
		return nil, err
	}
	sess, err := session.Open(session.Options{Storage: p, Clock: c.Clock, Catalog: challenges})
	if err != nil {
		return nil, err
	}
	c.session = sess
	return sess, nil
}

// Backups returns the backup manager for the config directory.
func (c *Context) Backups() *backup.Manager {
	return backup.NewManager(c.ConfigDir())
}

// PerformAutomaticBackup snapshots the current store and silently handles
// errors.
func (c *Context) PerformAutomaticBackup() {
	sess, err := c.Session()
	if err != nil {
		logger.Warn("Automatic backup skipped", "error", err)
		return
	}
	data, err := sess.Snapshot()
	if err != nil {
		logger.Warn("Automatic backup failed", "error", err)
		return
	}
	if _, err := c.Backups().CreateBackup(data); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// Lock takes the single-writer lock for the rest of the command.
func (c *Context) Lock() error {
	if c.lock != nil {
		return nil
	}
	l, err := lock.Acquire(c.ConfigDir())
	if err != nil {
		if errors.Is(err, lock.ErrLocked) {
			return dferrors.WithHint(err, "another dailyfix process is changing the store; try again when it exits")
		}
		return err
	}
	c.lock = l
	return nil
}

// Close releases the lock and closes the store.
func (c *Context) Close() error {
	var errs []error
	if c.lock != nil {
		errs = append(errs, c.lock.Release())
		c.lock = nil
	}
	if c.session != nil {
		errs = append(errs, c.session.Close())
		c.session = nil
		c.provider = nil
	} else if c.provider != nil {
		errs = append(errs, c.provider.Close())
		c.provider = nil
	}
	return errors.Join(errs...)
}

// Confirmed asks for confirmation unless yes is already set. Without a
// terminal the answer is no.
func (c *Context) Confirmed(yes bool, title, description string) (bool, error) {
	if yes {
		return true, nil
	}
	if !c.Interactive() {
		return false, fmt.Errorf("confirmation required; re-run with --yes")
	}
	return c.Confirm(title, description)
}
