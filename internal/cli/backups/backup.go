package backups

import (
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/julianstephens/dailyfix/internal/cli"
	"github.com/julianstephens/dailyfix/internal/constants"
)

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Session()
	if err != nil {
		return err
	}
	snapshot, err := sess.Snapshot()
	if err != nil {
		return err
	}

	backupPath, err := ctx.Backups().CreateBackup(snapshot)
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}

	fmt.Printf("✓ Backup created: %s\n", filepath.Base(backupPath))
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	mgr := ctx.Backups()
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) == 0 {
		fmt.Println("No backups found.")
		fmt.Printf("Backups are stored in: %s\n", mgr.GetBackupDir())
		return nil
	}

	fmt.Printf("Available backups (%d total, keeping most recent %d):\n\n", len(backups), constants.MaxBackups)
	for _, b := range backups {
		fmt.Printf("  %s  %-32s %8s  %s\n",
			b.Timestamp.Format("2006-01-02 15:04:05"),
			b.Name(),
			humanize.Bytes(uint64(b.Size)),
			cli.DimStyle.Render(humanize.Time(b.Timestamp)))
	}
	fmt.Printf("\nBackup directory: %s\n", mgr.GetBackupDir())

	return nil
}

type BackupRestoreCmd struct {
	BackupFile string `arg:"" help:"Path or filename of the backup to restore."`
	Yes        bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *BackupRestoreCmd) Run(ctx *cli.Context) error {
	if err := ctx.Lock(); err != nil {
		return err
	}
	sess, err := ctx.Session()
	if err != nil {
		return err
	}

	mgr := ctx.Backups()
	backupPath := mgr.Resolve(c.BackupFile)
	data, err := mgr.ReadBackup(backupPath)
	if err != nil {
		return err
	}

	ok, err := ctx.Confirmed(c.Yes,
		"Restore from "+filepath.Base(backupPath)+"?",
		"This replaces your current progress. A backup of the current store is created before restoring.")
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("Restore cancelled.")
		return nil
	}

	current, err := sess.Snapshot()
	if err != nil {
		return err
	}
	safety, err := mgr.PreRestore(current)
	if err != nil {
		return fmt.Errorf("failed to back up current store: %w", err)
	}
	fmt.Printf("Current store saved to %s\n", filepath.Base(safety))

	if err := sess.ImportBytes(data); err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}

	st := sess.Stats()
	fmt.Println("✓ Store restored successfully!")
	fmt.Printf("  Streak %d, best %d, %d completions\n", st.Current, st.Best, st.Total)
	return nil
}
