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

type ShipsCmd struct {
	flags *Flags

	search  string
	newShip fleet.Ship
}

// NewShipsCmd creates a new ships command
func NewShipsCmd(flags *Flags) *ShipsCmd {
	return &ShipsCmd{flags: flags}
}

// Register adds the ships command and its subcommands to the application
func (cmd *ShipsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "ships",
		Usage:     "Inspect and manage the fleet",
		UsageText: "marin ships <command>",
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List ships",
				UsageText: "marin ships ls [--search <term>]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "search",
						Aliases:     []string{"s"},
						Usage:       "filter by name, id, or company (case-insensitive)",
						Destination: &cmd.search,
					},
				},
				Action: cmd.runLs,
			},
			{
				Name:      "stats",
				Usage:     "Show fleet status counts and health",
				UsageText: "marin ships stats",
				Action:    cmd.runStats,
			},
			{
				Name:      "add",
				Usage:     "Register a new ship",
				UsageText: "marin ships add --id <id> --name <name> [options]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "unique ship id", Required: true, Destination: &cmd.newShip.ID},
					&cli.StringFlag{Name: "name", Usage: "ship name", Required: true, Destination: &cmd.newShip.Name},
					&cli.StringFlag{Name: "company", Usage: "operating company", Destination: &cmd.newShip.Company},
					&cli.StringFlag{Name: "type", Usage: "vessel type", Destination: &cmd.newShip.Type},
					&cli.StringFlag{Name: "ip", Usage: "terminal IP address", Destination: &cmd.newShip.IP},
					&cli.StringFlag{Name: "satellite", Usage: "assigned satellite", Destination: &cmd.newShip.Satellite},
					&cli.StringFlag{Name: "beam", Usage: "assigned beam", Destination: &cmd.newShip.Beam},
				},
				Action: cmd.runAdd,
			},
		},
	})

	return app
}

func (cmd *ShipsCmd) runLs(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if err := cmd.flags.requireView(ctx, "/"); err != nil {
		return err
	}

	store := cmd.flags.Portal.Fleet
	if err := store.FetchAll(ctx); err != nil {
		// Stale data survives a failed fetch; show it with a warning
		// rather than nothing at all.
		if len(store.Ships()) == 0 {
			return err
		}
		p.Warnf("Refresh failed (%v), showing cached data", err)
	}

	store.SetSearch(cmd.search)
	ships := store.FilteredShips()

	if len(ships) == 0 {
		p.Infof("No ships found")
		return nil
	}

	out := c.Root().Writer
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tCOMPANY\tSTATUS\tSNR")

	for _, s := range ships {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1f\n", s.ID, s.Name, s.Company, s.Status, s.SNR)
	}

	return w.Flush()
}

func (cmd *ShipsCmd) runStats(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if err := cmd.flags.requireView(ctx, "/"); err != nil {
		return err
	}

	store := cmd.flags.Portal.Fleet
	if err := store.FetchAll(ctx); err != nil {
		return err
	}

	stats := store.Stats()

	p.Section("Fleet Status")
	p.CheckItem("Online", fmt.Sprintf("%d", stats.Online))
	p.WarnItem("Warning", fmt.Sprintf("%d", stats.Warning))
	p.FailItem("Offline", fmt.Sprintf("%d", stats.Offline))
	if stats.Blockage > 0 {
		p.FailItem("Blockage", fmt.Sprintf("%d", stats.Blockage))
	}
	p.Printf("")
	p.Printf("Total %d ships, fleet health %.1f%%", stats.Total, stats.Health)

	return nil
}

func (cmd *ShipsCmd) runAdd(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if err := validate.ShipID(cmd.newShip.ID); err != nil {
		return err
	}
	if err := validate.Name(cmd.newShip.Name); err != nil {
		return err
	}

	if err := cmd.flags.requireView(ctx, "/"); err != nil {
		return err
	}

	created, err := cmd.flags.Portal.Fleet.AddShip(ctx, cmd.newShip)
	if err != nil {
		return err
	}

	p.Success(fmt.Sprintf("Registered %s", created.Name), fmt.Sprintf("id %s, status %s", created.ID, created.Status))
	return nil
}
