package main

import (
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/dailyfix/internal/cli"
	"github.com/julianstephens/dailyfix/internal/cli/backups"
	"github.com/julianstephens/dailyfix/internal/cli/data"
	"github.com/julianstephens/dailyfix/internal/cli/practice"
	"github.com/julianstephens/dailyfix/internal/cli/settings"
	"github.com/julianstephens/dailyfix/internal/cli/system"
	"github.com/julianstephens/dailyfix/internal/constants"
	"github.com/julianstephens/dailyfix/internal/errors"
	"github.com/julianstephens/dailyfix/internal/logger"
	"github.com/julianstephens/dailyfix/internal/storage"
)

// App is the command grammar.
type App struct {
	Version        kong.VersionFlag
	Config         string        `help:"Store path (.json or .db) or PostgreSQL connection string. Use 'keyring' to read the connection string from the OS keyring." env:"DAILYFIX_CONFIG" default:"${config}"`
	Catalog        string        `help:"Challenge catalog: a JSON file or an http(s) URL. Defaults to the built-in catalog." env:"DAILYFIX_CATALOG"`
	Language       string        `help:"Language to practice." env:"DAILYFIX_LANGUAGE" default:"${language}"`
	CatalogTimeout time.Duration `help:"Timeout for fetching a remote catalog." env:"DAILYFIX_CATALOG_TIMEOUT" default:"${catalogTimeout}"`
	Debug          bool          `help:"Write debug logs to stderr." env:"DAILYFIX_DEBUG"`

	Init     system.InitCmd       `cmd:"" help:"Initialize dailyfix storage."`
	Tui      system.TuiCmd        `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Today    practice.TodayCmd    `cmd:"" help:"Show and answer today's challenge."`
	Check    practice.CheckCmd    `cmd:"" help:"Check an answer for today's challenge."`
	Hint     practice.HintCmd     `cmd:"" help:"Show a hint for today's challenge."`
	Solution practice.SolutionCmd `cmd:"" help:"Show the solution for today's challenge."`
	Status   practice.StatusCmd   `cmd:"" help:"Show streak and completion totals."`
	History  practice.HistoryCmd  `cmd:"" help:"List recent days with completions."`
	Grace    practice.GraceCmd    `cmd:"" help:"Use the one-time grace to keep a streak after a missed day."`
	Settings settings.SettingsCmd `cmd:"" help:"View or change settings."`
	Export   data.ExportCmd       `cmd:"" help:"Export progress as JSON."`
	Import   data.ImportCmd       `cmd:"" help:"Replace progress with an exported JSON file."`
	Reset    data.ResetCmd        `cmd:"" help:"Erase all progress."`
	Backup   struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage backups."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string with credentials masked."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check OS keyring availability." default:"1"`
	} `cmd:"" help:"Manage the database connection string in the OS keyring."`
	Doctor   system.DoctorCmd `cmd:"" help:"Run health checks and diagnostics."`
	DebugCmd system.DebugCmd  `cmd:"" name:"debug" help:"Debug commands for troubleshooting."`
}

var CLI App

func parserOptions() []kong.Option {
	return []kong.Option{
		kong.Name(constants.AppName),
		kong.Description("A daily coding practice exercise with streaks."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":        constants.Version,
			"config":         constants.DefaultConfigPath,
			"language":       constants.DefaultLanguage,
			"catalogTimeout": constants.DefaultCatalogTimeout.String(),
		},
	}
}

func newContext(app App) *cli.Context {
	return cli.NewContext(cli.Options{
		Config:         storage.ExpandHome(app.Config),
		Catalog:        app.Catalog,
		Language:       app.Language,
		CatalogTimeout: app.CatalogTimeout,
		Debug:          app.Debug,
	})
}

func main() {
	ctx := kong.Parse(&CLI, parserOptions()...)
	appCtx := newContext(CLI)

	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: appCtx.ConfigDir()}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}
	logger.Debug("Starting", "command", ctx.Command(), "version", constants.Version, "backend", storage.KindOf(appCtx.Config))

	err := ctx.Run(appCtx)
	if closeErr := appCtx.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	errors.Fatal(err)
	_ = logger.Close()
}
