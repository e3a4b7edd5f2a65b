// Package portal wires the client core together: credential store,
// gateway, router, auth controller, and the entity stores.
package portal

import (
	"github.com/rs/zerolog"

	"github.com/DauSyQuan/marin-portal/internal/auth"
	"github.com/DauSyQuan/marin-portal/internal/bandwidth"
	"github.com/DauSyQuan/marin-portal/internal/core/config"
	"github.com/DauSyQuan/marin-portal/internal/core/session"
	"github.com/DauSyQuan/marin-portal/internal/fleet"
	"github.com/DauSyQuan/marin-portal/internal/gateway"
	"github.com/DauSyQuan/marin-portal/internal/nav"
	"github.com/DauSyQuan/marin-portal/internal/store/credfile"
)

// Client bundles the portal core. The CLI layer consumes its read models
// and action functions; nothing else in the module reaches around it.
type Client struct {
	Creds   session.Store
	Gateway *gateway.Client
	Router  *nav.Router
	Auth    *auth.Controller
	Fleet   *fleet.Store
	Crew    *fleet.CrewStore
	Plans   *bandwidth.Store
}

// New builds a fully wired Client from configuration.
func New(cfg *config.Config, log zerolog.Logger) *Client {
	creds := credfile.New(cfg.CredentialsFile(), log.With().Str("component", "credfile").Logger())

	router := nav.NewRouter(nav.DefaultRoutes(), creds, log.With().Str("component", "nav").Logger())

	gw := gateway.New(
		cfg.API.BaseURL,
		log.With().Str("component", "gateway").Logger(),
		gateway.WithTimeout(cfg.API.Timeout()),
	)

	ctrl := auth.NewController(creds, gw, router, log.With().Str("component", "auth").Logger())

	// Interceptor order matters: credentials are attached on the way
	// out, and a 401 tears the session down before any caller sees it.
	gw.Use(gateway.BearerAuth(creds))
	gw.UseResponse(gateway.SessionTeardown(ctrl, log.With().Str("component", "gateway").Logger()))

	return &Client{
		Creds:   creds,
		Gateway: gw,
		Router:  router,
		Auth:    ctrl,
		Fleet:   fleet.NewStore(gw, ctrl, log.With().Str("component", "fleet").Logger()),
		Crew:    fleet.NewCrewStore(gw, ctrl, log.With().Str("component", "crew").Logger()),
		Plans:   bandwidth.NewStore(gw, ctrl, log.With().Str("component", "bandwidth").Logger()),
	}
}
