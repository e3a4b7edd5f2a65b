package commands

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/DauSyQuan/marin-portal/internal/printer"
)

type WhoamiCmd struct {
	flags *Flags
}

// NewWhoamiCmd creates a new whoami command
func NewWhoamiCmd(flags *Flags) *WhoamiCmd {
	return &WhoamiCmd{flags: flags}
}

// Register adds the whoami command to the application
func (cmd *WhoamiCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "whoami",
		Usage:     "Show the current session",
		UsageText: "marin whoami",
		Action:    cmd.run,
	})

	return app
}

func (cmd *WhoamiCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	sess, err := cmd.flags.Portal.Creds.Get(ctx)
	if err != nil {
		return err
	}

	if !sess.IsAuthenticated() {
		p.Infof("Not logged in")
		return nil
	}

	p.Successf("Logged in as %s (%s)", sess.User.Name, sess.User.Role)
	p.Infof("Backend: %s", cmd.flags.Config.API.BaseURL)
	return nil
}
