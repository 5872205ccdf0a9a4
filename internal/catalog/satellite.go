// Package catalog holds the static satellite registry that seeds the globe
// scene. Records are immutable once the registry is built; the engine only
// reads them.
package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// Status is the operational state reported for a satellite.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusWarning  Status = "warning"
)

// Well-known mission types. The set is open; unknown values are allowed and
// get a neutral style in the scene.
const (
	TypeEarthObservation = "Earth Observation"
	TypeWeather          = "Weather"
	TypeCommunications   = "Communications"
	TypeMilitary         = "Military"
	TypeScientific       = "Scientific"
)

// Satellite describes one tracked satellite and its reference position on
// the globe. Mission, Owner and LaunchDate are passed through to clients
// untouched.
type Satellite struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Altitude    float64 `json:"altitude"`    // km
	Velocity    float64 `json:"velocity"`    // km/h
	Inclination float64 `json:"inclination"` // degrees
	Status      Status  `json:"status"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Mission     string  `json:"mission,omitempty"`
	Owner       string  `json:"owner,omitempty"`
	LaunchDate  string  `json:"launchDate,omitempty"`
}

// Satellites is the compiled-in dashboard catalog.
var Satellites = []Satellite{
	{
		ID: "sat-001", Name: "GlobalSat-1", Type: TypeEarthObservation,
		Altitude: 705, Velocity: 27600, Inclination: 98.2, Status: StatusActive,
		Longitude: 45.3, Latitude: 67.2,
		Mission: "Environmental monitoring", Owner: "Global Space Agency", LaunchDate: "2022-05-14",
	},
	{
		ID: "sat-002", Name: "OceanMonitor-3", Type: TypeWeather,
		Altitude: 824, Velocity: 27100, Inclination: 35.6, Status: StatusActive,
		Longitude: -120.4, Latitude: 25.7,
		Mission: "Ocean temperature mapping", Owner: "Oceanic Research Institute", LaunchDate: "2023-02-28",
	},
	{
		ID: "sat-003", Name: "CommRelay-7", Type: TypeCommunications,
		Altitude: 780, Velocity: 27300, Inclination: 45.1, Status: StatusWarning,
		Longitude: 10.9, Latitude: -35.4,
		Mission: "Global internet coverage", Owner: "TechComm Systems", LaunchDate: "2021-11-15",
	},
	{
		ID: "sat-004", Name: "DefenseSat-2", Type: TypeMilitary,
		Altitude: 410, Velocity: 28100, Inclination: 51.6, Status: StatusInactive,
		Longitude: 150.5, Latitude: 80.3,
		Mission: "Surveillance", Owner: "Defense Network", LaunchDate: "2020-07-22",
	},
	{
		ID: "sat-005", Name: "ScienceOrb-1", Type: TypeScientific,
		Altitude: 620, Velocity: 27800, Inclination: 62.3, Status: StatusActive,
		Longitude: -60.2, Latitude: -15.8,
		Mission: "Atmospheric research", Owner: "International Space Coalition", LaunchDate: "2023-08-10",
	},
}

var (
	ErrMissingID   = errors.New("satellite record has no id")
	ErrDuplicateID = errors.New("duplicate satellite id")
)

// Registry is an ordered, id-indexed view over a fixed set of records.
type Registry struct {
	list  []Satellite
	index map[string]int
}

// NewRegistry copies sats into a registry, rejecting empty or repeated ids.
func NewRegistry(sats []Satellite) (*Registry, error) {
	r := &Registry{
		list:  make([]Satellite, len(sats)),
		index: make(map[string]int, len(sats)),
	}
	copy(r.list, sats)

	for i, s := range r.list {
		if strings.TrimSpace(s.ID) == "" {
			return nil, fmt.Errorf("record %d (%q): %w", i, s.Name, ErrMissingID)
		}
		if _, dup := r.index[s.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, s.ID)
		}
		r.index[s.ID] = i
	}
	return r, nil
}

// MustRegistry is NewRegistry for compiled-in tables, where a bad id is a
// programming error.
func MustRegistry(sats []Satellite) *Registry {
	r, err := NewRegistry(sats)
	if err != nil {
		panic("catalog: " + err.Error())
	}
	return r
}

// Default returns the registry over the compiled-in catalog.
func Default() *Registry {
	return MustRegistry(Satellites)
}

// Len returns the number of records.
func (r *Registry) Len() int { return len(r.list) }

// All returns a copy of the records in registry order.
func (r *Registry) All() []Satellite {
	out := make([]Satellite, len(r.list))
	copy(out, r.list)
	return out
}

// Lookup returns the record with the given id.
func (r *Registry) Lookup(id string) (Satellite, bool) {
	i, ok := r.index[id]
	if !ok {
		return Satellite{}, false
	}
	return r.list[i], true
}

// ByName returns the record with the given name (case-insensitive).
func (r *Registry) ByName(name string) (Satellite, bool) {
	upper := strings.ToUpper(name)
	for _, s := range r.list {
		if strings.ToUpper(s.Name) == upper {
			return s, true
		}
	}
	return Satellite{}, false
}

// Extend returns a new registry holding r's records followed by extra.
func (r *Registry) Extend(extra []Satellite) (*Registry, error) {
	all := make([]Satellite, 0, len(r.list)+len(extra))
	all = append(all, r.list...)
	all = append(all, extra...)
	return NewRegistry(all)
}
