package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/DauSyQuan/marin-portal/internal/printer"
)

type LogoutCmd struct {
	flags *Flags
}

// NewLogoutCmd creates a new logout command
func NewLogoutCmd(flags *Flags) *LogoutCmd {
	return &LogoutCmd{flags: flags}
}

// Register adds the logout command to the application
func (cmd *LogoutCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "logout",
		Usage:       "End the current session",
		UsageText:   "marin logout",
		Description: "Clears the persisted session. Safe to run when not logged in.",
		Action:      cmd.run,
	})

	return app
}

func (cmd *LogoutCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if err := cmd.flags.Portal.Auth.Logout(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	p.Successf("Logged out")
	return nil
}
