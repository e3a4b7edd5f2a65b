package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/DauSyQuan/marin-portal/internal/core/config"
	"github.com/DauSyQuan/marin-portal/internal/nav"
	"github.com/DauSyQuan/marin-portal/internal/portal"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string
	APIURL     string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config

	// Portal is the wired client core
	Portal *portal.Client
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "marin", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "marin")
}

// requireView navigates to the view backing a command and fails when the
// guard bounces the transition to login.
func (f *Flags) requireView(ctx context.Context, path string) error {
	route, err := f.Portal.Router.Navigate(ctx, path)
	if err != nil {
		return err
	}

	if route.Name == nav.RouteLogin {
		return fmt.Errorf("not logged in. Run 'marin login' first")
	}

	return nil
}
