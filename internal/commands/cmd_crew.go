package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/DauSyQuan/marin-portal/internal/core/validate"
	"github.com/DauSyQuan/marin-portal/internal/fleet"
	"github.com/DauSyQuan/marin-portal/internal/printer"
)

type CrewCmd struct {
	flags *Flags

	shipID  string
	crewID  uint
	newCrew fleet.Crew
}

// NewCrewCmd creates a new crew command
func NewCrewCmd(flags *Flags) *CrewCmd {
	return &CrewCmd{flags: flags}
}

// Register adds the crew command and its subcommands to the application
func (cmd *CrewCmd) Register(app *cli.Command) *cli.Command {
	shipFlag := &cli.StringFlag{
		Name:        "ship",
		Usage:       "ship id",
		Required:    true,
		Destination: &cmd.shipID,
	}

	app.Commands = append(app.Commands, &cli.Command{
		Name:      "crew",
		Usage:     "Manage crew members of a ship",
		UsageText: "marin crew <command>",
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List crew of a ship",
				UsageText: "marin crew ls --ship <id>",
				Flags:     []cli.Flag{shipFlag},
				Action:    cmd.runLs,
			},
			{
				Name:      "add",
				Usage:     "Add a crew member",
				UsageText: "marin crew add --ship <id> --name <full name> [options]",
				Flags: []cli.Flag{
					shipFlag,
					&cli.StringFlag{Name: "name", Usage: "full name", Required: true, Destination: &cmd.newCrew.FullName},
					&cli.StringFlag{Name: "rank", Usage: "rank on board", Destination: &cmd.newCrew.Rank},
					&cli.StringFlag{Name: "nationality", Usage: "nationality", Destination: &cmd.newCrew.Nationality},
					&cli.StringFlag{Name: "username", Usage: "hotspot username", Destination: &cmd.newCrew.Username},
					&cli.StringFlag{Name: "plan", Usage: "data plan", Destination: &cmd.newCrew.DataPlan},
				},
				Action: cmd.runAdd,
			},
			{
				Name:      "update",
				Usage:     "Update a crew member",
				UsageText: "marin crew update --ship <id> --id <crew id> [options]",
				Flags: []cli.Flag{
					shipFlag,
					&cli.UintFlag{Name: "id", Usage: "crew id", Required: true, Destination: &cmd.crewID},
					&cli.StringFlag{Name: "name", Usage: "full name", Destination: &cmd.newCrew.FullName},
					&cli.StringFlag{Name: "rank", Usage: "rank on board", Destination: &cmd.newCrew.Rank},
					&cli.StringFlag{Name: "nationality", Usage: "nationality", Destination: &cmd.newCrew.Nationality},
					&cli.StringFlag{Name: "username", Usage: "hotspot username", Destination: &cmd.newCrew.Username},
					&cli.StringFlag{Name: "plan", Usage: "data plan", Destination: &cmd.newCrew.DataPlan},
					&cli.StringFlag{Name: "status", Usage: "account status", Destination: &cmd.newCrew.Status},
				},
				Action: cmd.runUpdate,
			},
			{
				Name:      "rm",
				Usage:     "Remove a crew member",
				UsageText: "marin crew rm --ship <id> --id <crew id>",
				Flags: []cli.Flag{
					shipFlag,
					&cli.UintFlag{Name: "id", Usage: "crew id", Required: true, Destination: &cmd.crewID},
				},
				Action: cmd.runRm,
			},
		},
	})

	return app
}

func (cmd *CrewCmd) prepare(ctx context.Context) error {
	if err := validate.ShipID(cmd.shipID); err != nil {
		return err
	}

	if err := cmd.flags.requireView(ctx, "/ship/"+cmd.shipID); err != nil {
		return err
	}

	return cmd.flags.Portal.Crew.FetchCrew(ctx, cmd.shipID)
}

func (cmd *CrewCmd) runLs(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if err := cmd.prepare(ctx); err != nil {
		return err
	}

	crews := cmd.flags.Portal.Crew.Crews()
	if len(crews) == 0 {
		p.Infof("No crew on %s", cmd.shipID)
		return nil
	}

	out := c.Root().Writer
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tRANK\tUSERNAME\tPLAN\tUSAGE\tSTATUS")

	for _, m := range crews {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%.2f\t%s\n",
			m.ID, m.FullName, m.Rank, m.Username, m.DataPlan, m.DataUsage, m.Status)
	}

	return w.Flush()
}

func (cmd *CrewCmd) runAdd(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if err := validate.Name(cmd.newCrew.FullName); err != nil {
		return err
	}

	if err := cmd.prepare(ctx); err != nil {
		return err
	}

	cmd.newCrew.ShipID = cmd.shipID

	created, err := cmd.flags.Portal.Crew.AddCrew(ctx, cmd.newCrew)
	if err != nil {
		return err
	}

	p.Success(fmt.Sprintf("Added %s", created.FullName), fmt.Sprintf("id %d, plan %s", created.ID, created.DataPlan))
	return nil
}

func (cmd *CrewCmd) runUpdate(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if err := cmd.prepare(ctx); err != nil {
		return err
	}

	updated, err := cmd.flags.Portal.Crew.UpdateCrew(ctx, cmd.crewID, cmd.newCrew)
	if err != nil {
		return err
	}

	p.Successf("Updated %s", updated.FullName)
	return nil
}

func (cmd *CrewCmd) runRm(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if err := cmd.prepare(ctx); err != nil {
		return err
	}

	if err := cmd.flags.Portal.Crew.DeleteCrew(ctx, cmd.crewID); err != nil {
		return err
	}

	p.Successf("Removed crew member %d", cmd.crewID)
	return nil
}
