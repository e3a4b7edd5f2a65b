package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/DauSyQuan/marin-portal/internal/auth"
	"github.com/DauSyQuan/marin-portal/internal/core/validate"
	"github.com/DauSyQuan/marin-portal/internal/printer"
)

type LoginCmd struct {
	flags *Flags

	username string
	password string
}

// NewLoginCmd creates a new login command
func NewLoginCmd(flags *Flags) *LoginCmd {
	return &LoginCmd{flags: flags}
}

// Register adds the login command to the application
func (cmd *LoginCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "login",
		Usage:       "Authenticate against the fleet backend",
		UsageText:   "marin login --username <name>",
		Description: "Exchanges credentials for a session. The session persists across invocations until logout or expiry.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "username",
				Aliases:     []string{"u"},
				Usage:       "operator username",
				Destination: &cmd.username,
				Required:    true,
			},
			&cli.StringFlag{
				Name:        "password",
				Usage:       "operator password (prompted when omitted)",
				Sources:     cli.EnvVars("MARIN_PASSWORD"),
				Destination: &cmd.password,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *LoginCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if err := validate.Username(cmd.username); err != nil {
		return err
	}

	password := cmd.password
	if password == "" {
		var err error
		password, err = promptPassword()
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
	}

	if err := cmd.flags.Portal.Auth.Login(ctx, cmd.username, password); err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			return fmt.Errorf("login failed: invalid username or password")
		case errors.Is(err, auth.ErrNoConnection):
			return fmt.Errorf("login failed: cannot reach %s (is the backend up?)", cmd.flags.Config.API.BaseURL)
		case errors.Is(err, auth.ErrMalformedLogin):
			return fmt.Errorf("login failed: the backend returned an unusable response")
		default:
			return fmt.Errorf("login failed: %w", err)
		}
	}

	sess, err := cmd.flags.Portal.Creds.Get(ctx)
	if err != nil {
		return err
	}

	p.Successf("Logged in as %s (%s)", sess.User.Name, sess.User.Role)
	return nil
}

// promptPassword reads the password without echo when stdin is a
// terminal, and as a plain line otherwise (pipes, CI).
func promptPassword() (string, error) {
	fd := int(os.Stdin.Fd())

	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, "Password: ")
		data, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
