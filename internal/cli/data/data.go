package data

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/dailyfix/internal/cli"
	"github.com/julianstephens/dailyfix/internal/logger"
	"github.com/julianstephens/dailyfix/internal/storage"
)

// ExportCmd writes the snapshot as indented JSON.
type ExportCmd struct {
	File string `arg:"" optional:"" type:"path" help:"Destination file (stdout when omitted)."`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Session()
	if err != nil {
		return err
	}
	if c.File == "" {
		return sess.Export(os.Stdout)
	}

	data, err := sess.Snapshot()
	if err != nil {
		return err
	}
	if err := storage.WriteFileAtomic(c.File, data, 0600); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	fmt.Printf("✓ Exported %d completions to %s\n", sess.Stats().Total, c.File)
	return nil
}

// ImportCmd replaces the store with a migrated copy of a snapshot file.
// The current store is backed up first.
type ImportCmd struct {
	File string `arg:"" type:"existingfile" help:"Snapshot to import."`
	Yes  bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *ImportCmd) Run(ctx *cli.Context) error {
	if err := ctx.Lock(); err != nil {
		return err
	}
	sess, err := ctx.Session()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("failed to read import: %w", err)
	}

	ok, err := ctx.Confirmed(c.Yes, "Replace your progress with "+filepath.Base(c.File)+"?",
		"A backup of the current store is made first.")
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("Import cancelled.")
		return nil
	}

	if err := backupCurrent(ctx); err != nil {
		return err
	}
	if err := sess.Import(bytes.NewReader(data)); err != nil {
		return err
	}
	st := sess.Stats()
	fmt.Printf("✓ Imported %d completions; current streak %d, best %d\n", st.Total, st.Current, st.Best)
	return nil
}

// ResetCmd clears streak, settings and history.
type ResetCmd struct {
	Yes bool `short:"y" help:"Do not ask for confirmation."`
}

func (c *ResetCmd) Run(ctx *cli.Context) error {
	if err := ctx.Lock(); err != nil {
		return err
	}
	sess, err := ctx.Session()
	if err != nil {
		return err
	}

	ok, err := ctx.Confirmed(c.Yes, "Reset all progress?",
		fmt.Sprintf("This clears a %d-day streak and %d completions. A backup is made first.", sess.Stats().Current, sess.Stats().Total))
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("Reset cancelled.")
		return nil
	}

	if err := backupCurrent(ctx); err != nil {
		return err
	}
	if err := sess.Reset(); err != nil {
		return err
	}
	fmt.Println("✓ Progress reset.")
	return nil
}

func backupCurrent(ctx *cli.Context) error {
	sess, err := ctx.Session()
	if err != nil {
		return err
	}
	if sess.Stats().Total == 0 && sess.Stats().Best == 0 {
		return nil
	}
	snapshot, err := sess.Snapshot()
	if err != nil {
		return err
	}
	path, err := ctx.Backups().CreateBackup(snapshot)
	if err != nil {
		return fmt.Errorf("failed to back up current store: %w", err)
	}
	logger.Info("Backed up store before replacing it", "path", path)
	fmt.Printf("Backed up current store to %s\n", filepath.Base(path))
	return nil
}
