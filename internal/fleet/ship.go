// Package fleet caches the ship collection and its crew sub-resource and
// derives the dashboard read models from them.
package fleet

import (
	"strings"
	"time"
)

// ShipStatus is the reported link state of a ship.
type ShipStatus string

const (
	StatusOnline   ShipStatus = "Online"
	StatusOffline  ShipStatus = "Offline"
	StatusWarning  ShipStatus = "Warning"
	StatusBlockage ShipStatus = "Blockage"
)

// Ship is one vessel record. The backend is the authority; the client
// holds a read-through cache.
type Ship struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Company   string     `json:"company"`
	Type      string     `json:"type"`
	IP        string     `json:"ip"`
	Satellite string     `json:"satellite"`
	Beam      string     `json:"beam"`
	Status    ShipStatus `json:"status"`
	Lat       float64    `json:"lat"`
	Lon       float64    `json:"lon"`
	SNR       float64    `json:"snr"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// searchText returns the precomputed haystack for substring search:
// name, id and company, lowercased once per snapshot rather than on
// every keystroke.
func (s Ship) searchText() string {
	return strings.ToLower(s.Name + " " + s.ID + " " + s.Company)
}

// Crew is one crew-member record attached to a ship.
type Crew struct {
	ID          uint      `json:"id"`
	ShipID      string    `json:"ship_id"`
	FullName    string    `json:"full_name"`
	Rank        string    `json:"rank"`
	Nationality string    `json:"nationality"`
	Username    string    `json:"username"`
	DataPlan    string    `json:"data_plan"`
	DataUsage   float64   `json:"data_usage"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// Stats are the per-status counts derived from the cached fleet, plus a
// weighted health percentage where a warning counts as half a healthy
// link.
type Stats struct {
	Total    int
	Online   int
	Offline  int
	Warning  int
	Blockage int
	Health   float64
}
