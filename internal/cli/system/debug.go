package system

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/julianstephens/dailyfix/internal/calendar"
	"github.com/julianstephens/dailyfix/internal/cli"
	"github.com/julianstephens/dailyfix/internal/constants"
	"github.com/julianstephens/dailyfix/internal/lock"
	"github.com/julianstephens/dailyfix/internal/selector"
	"github.com/julianstephens/dailyfix/internal/storage"
)

type DebugCmd struct {
	Paths DebugPathsCmd `cmd:"" help:"Show storage, log, backup and lock locations."`
	Pick  DebugPickCmd  `cmd:"" help:"Show how a challenge is picked for a day."`
}

type DebugPathsCmd struct{}

func (cmd *DebugPathsCmd) Run(ctx *cli.Context) error {
	dir := ctx.ConfigDir()
	output := map[string]string{
		"backend":   storage.KindOf(ctx.Config).String(),
		"configDir": dir,
		"backups":   ctx.Backups().GetBackupDir(),
		"log":       filepath.Join(dir, constants.LogDirName, constants.LogFileName),
		"lock":      lock.Path(dir),
	}
	if store, err := ctx.Storage(); err == nil {
		output["storage"] = store.GetConfigPath()
	}
	return printJSON(output)
}

type DebugPickCmd struct {
	Day     string `arg:"" optional:"" help:"Day to pick for (YYYY-MM-DD or 'today')." default:"today"`
	Ordinal int    `help:"Completion ordinal within the day (0 for the first challenge)."`
}

type pickOutput struct {
	Day         calendar.Day `json:"day"`
	Ordinal     int          `json:"ordinal"`
	Seed        string       `json:"seed"`
	Hash        uint32       `json:"hash"`
	CatalogSize int          `json:"catalogSize"`
	Index       int          `json:"index"`
	ChallengeID string       `json:"challengeId"`
}

func (cmd *DebugPickCmd) Run(ctx *cli.Context) error {
	day := calendar.Today(ctx.Clock)
	if cmd.Day != "today" {
		d, err := calendar.Parse(cmd.Day)
		if err != nil {
			return fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD or 'today')", cmd.Day)
		}
		day = d
	}
	if cmd.Ordinal < 0 {
		return fmt.Errorf("ordinal must not be negative")
	}

	challenges, err := ctx.Challenges(context.Background())
	if err != nil {
		return err
	}
	seed := selector.Seed(day, cmd.Ordinal)
	idx := selector.Select(day, cmd.Ordinal, len(challenges))
	return printJSON(pickOutput{
		Day:         day,
		Ordinal:     cmd.Ordinal,
		Seed:        seed,
		Hash:        selector.Hash(seed),
		CatalogSize: len(challenges),
		Index:       idx,
		ChallengeID: challenges[idx].ID,
	})
}

func printJSON(v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(jsonBytes))
	return nil
}
