package practice

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/julianstephens/dailyfix/internal/cli"
	dferrors "github.com/julianstephens/dailyfix/internal/errors"
	"github.com/julianstephens/dailyfix/internal/session"
)

// ErrGraceDisabled is returned by grace when the setting is off.
var ErrGraceDisabled = errors.New("grace is disabled")

// StatusCmd prints streak and progress.
type StatusCmd struct{}

func (c *StatusCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Session()
	if err != nil {
		return err
	}
	st := sess.Stats()
	today := sess.Today()

	fmt.Println(cli.TitleStyle.Render("dailyfix"))
	fmt.Printf("  Current streak:   %s\n", days(st.Current))
	fmt.Printf("  Best streak:      %s\n", days(st.Best))
	fmt.Printf("  Completed today:  %d\n", st.Today)
	fmt.Printf("  Total completed:  %s across %s\n", humanize.Comma(int64(st.Total)), days(st.Days))
	if last := lastCompletion(sess.History(1)); !last.IsZero() {
		fmt.Printf("  Last completion:  %s\n", humanize.Time(last))
	}

	grace := "off"
	switch {
	case st.GraceEnabled && st.GracePending != nil:
		grace = fmt.Sprintf("armed for %s", *st.GracePending)
	case st.GraceEnabled && st.GraceAvailable:
		grace = "on, available"
	case st.GraceEnabled:
		grace = "on, used"
	}
	fmt.Printf("  Grace:            %s\n", grace)

	if notices := cli.Notices(today); len(notices) > 0 {
		fmt.Println()
		for _, n := range notices {
			fmt.Println(n)
		}
	}
	return nil
}

func days(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

// lastCompletion is the newest parseable completedAt in rows.
func lastCompletion(rows []session.DaySummary) time.Time {
	var last time.Time
	for _, row := range rows {
		for _, rec := range row.Records {
			t, err := time.Parse(time.RFC3339Nano, rec.CompletedAt)
			if err == nil && t.After(last) {
				last = t
			}
		}
	}
	return last
}

// HistoryCmd lists completions per day, newest first.
type HistoryCmd struct {
	Limit   int  `help:"Number of days to show (0 for all)." default:"14"`
	Verbose bool `short:"v" help:"List each completion."`
}

func (c *HistoryCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Session()
	if err != nil {
		return err
	}
	rows := sess.History(c.Limit)
	if len(rows) == 0 {
		fmt.Println("No completions yet. Run 'dailyfix today' to start.")
		return nil
	}

	for _, row := range rows {
		ids := make([]string, len(row.Records))
		for i, rec := range row.Records {
			ids[i] = rec.ChallengeID
		}
		fmt.Printf("%s  %2d completed  %s\n", row.Day, len(row.Records), cli.DimStyle.Render(strings.Join(ids, ", ")))
		if !c.Verbose {
			continue
		}
		for _, rec := range row.Records {
			when := rec.CompletedAt
			if t, err := time.Parse(time.RFC3339Nano, rec.CompletedAt); err == nil {
				when = t.Local().Format("15:04:05")
			}
			fmt.Printf("    %s  %-14s %-10s %s\n", when, rec.ChallengeID, rec.Type, rec.Difficulty)
		}
	}
	return nil
}

// GraceCmd arms the one-time grace for today.
type GraceCmd struct{}

func (c *GraceCmd) Run(ctx *cli.Context) error {
	if err := ctx.Lock(); err != nil {
		return err
	}
	sess, err := ctx.Session()
	if err != nil {
		return err
	}
	st := sess.Stats()
	if !st.GraceEnabled {
		return dferrors.WithHint(ErrGraceDisabled, "enable it with 'dailyfix settings --grace'")
	}

	armed, err := sess.ArmGrace()
	if err != nil {
		return err
	}
	if armed {
		fmt.Println(cli.SuccessStyle.Render("✓ Grace armed for today."))
		fmt.Println("Complete today's challenge to keep your streak going.")
		return nil
	}

	switch {
	case st.GracePending != nil:
		fmt.Printf("Grace is already armed for %s.\n", *st.GracePending)
	case !st.GraceAvailable:
		fmt.Println("Grace has already been used.")
	default:
		fmt.Println("Grace is not needed today: your streak is not at risk.")
	}
	return nil
}

func readInput(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read answer: %w", err)
	}
	return string(data), nil
}
