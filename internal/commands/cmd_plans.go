package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/DauSyQuan/marin-portal/internal/bandwidth"
	"github.com/DauSyQuan/marin-portal/internal/core/validate"
	"github.com/DauSyQuan/marin-portal/internal/printer"
)

type PlansCmd struct {
	flags *Flags

	planID  uint
	newPlan bandwidth.Plan
}

// NewPlansCmd creates a new plans command
func NewPlansCmd(flags *Flags) *PlansCmd {
	return &PlansCmd{flags: flags}
}

// Register adds the plans command and its subcommands to the application
func (cmd *PlansCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "plans",
		Usage:     "Manage bandwidth plans",
		UsageText: "marin plans <command>",
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List bandwidth plans",
				UsageText: "marin plans ls",
				Action:    cmd.runLs,
			},
			{
				Name:      "add",
				Usage:     "Create a bandwidth plan",
				UsageText: "marin plans add --name <name> --up <kbps> --down <kbps> [options]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "plan name", Required: true, Destination: &cmd.newPlan.Name},
					&cli.IntFlag{Name: "up", Usage: "upload speed in Kbps", Required: true, Destination: &cmd.newPlan.UploadSpeed},
					&cli.IntFlag{Name: "down", Usage: "download speed in Kbps", Required: true, Destination: &cmd.newPlan.DownloadSpeed},
					&cli.IntFlag{Name: "priority", Usage: "queue priority", Value: 8, Destination: &cmd.newPlan.Priority},
				},
				Action: cmd.runAdd,
			},
			{
				Name:      "rm",
				Usage:     "Delete a bandwidth plan",
				UsageText: "marin plans rm --id <plan id>",
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "id", Usage: "plan id", Required: true, Destination: &cmd.planID},
				},
				Action: cmd.runRm,
			},
		},
	})

	return app
}

func (cmd *PlansCmd) runLs(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if err := cmd.flags.requireView(ctx, "/settings"); err != nil {
		return err
	}

	store := cmd.flags.Portal.Plans
	if err := store.FetchAll(ctx); err != nil {
		if len(store.Plans()) == 0 {
			return err
		}
		p.Warnf("Refresh failed (%v), showing cached data", err)
	}

	plans := store.Plans()
	if len(plans) == 0 {
		p.Infof("No bandwidth plans configured")
		return nil
	}

	out := c.Root().Writer
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tUP (Kbps)\tDOWN (Kbps)\tPRIORITY\tSTATUS")

	for _, plan := range plans {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%s\n",
			plan.ID, plan.Name, plan.UploadSpeed, plan.DownloadSpeed, plan.Priority, plan.Status)
	}

	return w.Flush()
}

func (cmd *PlansCmd) runAdd(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if err := validate.Name(cmd.newPlan.Name); err != nil {
		return err
	}

	if err := cmd.flags.requireView(ctx, "/settings"); err != nil {
		return err
	}

	created, err := cmd.flags.Portal.Plans.Create(ctx, cmd.newPlan)
	if err != nil {
		return err
	}

	p.Success(fmt.Sprintf("Created plan %s", created.Name),
		fmt.Sprintf("id %d, %d/%d Kbps", created.ID, created.UploadSpeed, created.DownloadSpeed))
	return nil
}

func (cmd *PlansCmd) runRm(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if err := cmd.flags.requireView(ctx, "/settings"); err != nil {
		return err
	}

	if err := cmd.flags.Portal.Plans.Delete(ctx, cmd.planID); err != nil {
		return err
	}

	p.Successf("Deleted plan %d", cmd.planID)
	return nil
}
