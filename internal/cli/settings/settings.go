package settings

import (
	"fmt"

	"github.com/julianstephens/dailyfix/internal/cli"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	Grace *bool `help:"Enable or disable the one-time grace for a missed day." negatable:""`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	if c.Grace != nil {
		if err := ctx.Lock(); err != nil {
			return err
		}
	}
	sess, err := ctx.Session()
	if err != nil {
		return err
	}

	if c.List || c.Grace == nil {
		st := sess.Stats()
		fmt.Println("Current Settings:")
		fmt.Printf("  Grace Enabled:   %v\n", st.GraceEnabled)
		fmt.Printf("  Grace Available: %v\n", st.GraceAvailable)
		fmt.Println("\nStorage:")
		fmt.Printf("  Config:          %s\n", ctx.Config)
		fmt.Printf("  Language:        %s\n", ctx.Language)
		if c.Grace == nil {
			if !c.List {
				fmt.Println("\nNo changes specified. Use --grace or --no-grace to update.")
			}
			return nil
		}
	}

	if err := sess.SetGraceEnabled(*c.Grace); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	state := "disabled"
	if *c.Grace {
		state = "enabled"
	}
	fmt.Printf("Grace %s.\n", state)
	if *c.Grace && !sess.Stats().GraceAvailable {
		fmt.Println(cli.WarningStyle.Render("Grace has already been used and does not come back."))
	}
	return nil
}
