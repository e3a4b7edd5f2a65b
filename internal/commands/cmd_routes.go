package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/DauSyQuan/marin-portal/internal/nav"
	"github.com/DauSyQuan/marin-portal/internal/printer"
)

type RoutesCmd struct {
	flags *Flags
}

// NewRoutesCmd creates a new routes command
func NewRoutesCmd(flags *Flags) *RoutesCmd {
	return &RoutesCmd{flags: flags}
}

// Register adds the routes command to the application
func (cmd *RoutesCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "routes",
		Usage:     "Show the route table and what the guard decides for the current session",
		UsageText: "marin routes",
		Action:    cmd.run,
	})

	return app
}

func (cmd *RoutesCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	sess, err := cmd.flags.Portal.Creds.Get(ctx)
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}

	if sess.IsAuthenticated() {
		p.Section(fmt.Sprintf("Routes as %s (%s)", sess.User.Name, sess.User.Role))
	} else {
		p.Section("Routes as anonymous")
	}

	for _, route := range nav.DefaultRoutes() {
		detail := route.Pattern
		if route.RequiresAuth {
			detail += " (auth)"
		}

		decision := nav.Decide(route, sess)
		switch {
		case decision.Allow:
			p.CheckItem(route.Name, detail)
		default:
			p.FailItem(route.Name, fmt.Sprintf("%s -> %s", detail, decision.RedirectTo))
		}
	}

	current := cmd.flags.Portal.Router.Current()
	p.Infof("Current view: %s", current.Name)
	return nil
}
