package system

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/julianstephens/dailyfix/internal/cli"
	dferrors "github.com/julianstephens/dailyfix/internal/errors"
	"github.com/julianstephens/dailyfix/internal/models"
)

// ErrAlreadyInitialized is returned by init when a snapshot exists and
// --force was not given.
var ErrAlreadyInitialized = errors.New("store is already initialized")

type InitCmd struct {
	Force bool `help:"Replace an existing store with an empty one (a backup is made first)."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	store, err := ctx.Storage()
	if err != nil {
		return err
	}
	if err := ctx.Lock(); err != nil {
		return err
	}
	if err := store.Init(); err != nil {
		return err
	}

	existing, err := store.Load()
	if err != nil {
		return fmt.Errorf("failed to read existing store: %w", err)
	}
	if existing != nil {
		if !c.Force {
			return dferrors.WithHint(
				fmt.Errorf("%w at %s", ErrAlreadyInitialized, store.GetConfigPath()),
				"use 'dailyfix init --force' to start over")
		}
		if json.Valid(existing) {
			path, err := ctx.Backups().PreRestore(existing)
			if err != nil {
				return fmt.Errorf("failed to back up existing store: %w", err)
			}
			fmt.Printf("Backed up existing store to %s\n", filepath.Base(path))
		}
	}

	if err := store.Save(models.DefaultStore()); err != nil {
		return err
	}
	fmt.Printf("Initialized dailyfix storage at: %s\n", store.GetConfigPath())
	return nil
}
