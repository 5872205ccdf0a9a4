package catalog

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/akhenakh/sgp4"
)

const (
	earthRadiusKm = 6371.0
	earthMu       = 398600.4418 // km^3/s^2

	// inclinationSamples spreads position samples over one revolution when
	// estimating inclination from peak latitude.
	inclinationSamples = 96
)

// typeKeywords maps name fragments to a mission type for TLE-seeded records.
var typeKeywords = []struct {
	fragment string
	kind     string
}{
	{"NOAA", TypeWeather},
	{"METEOR", TypeWeather},
	{"GOES", TypeWeather},
	{"STARLINK", TypeCommunications},
	{"IRIDIUM", TypeCommunications},
	{"INTELSAT", TypeCommunications},
	{"LANDSAT", TypeEarthObservation},
	{"SENTINEL", TypeEarthObservation},
}

// LoadTLEFile reads a three-line TLE file and converts every parseable
// element set into a record positioned at ref.
func LoadTLEFile(path string, ref time.Time) ([]Satellite, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tle file: %w", err)
	}
	return FromTLE(string(b), ref)
}

// FromTLE converts a bulk TLE dump in 3-line format (name, line 1, line 2)
// into static records. Each record's latitude, longitude and altitude come
// from SGP4 at ref; inclination is the peak |latitude| seen over one sampled
// revolution and velocity is circular speed for the altitude. Groups that
// fail to parse or propagate are skipped.
func FromTLE(raw string, ref time.Time) ([]Satellite, error) {
	lines := strings.Split(strings.TrimSpace(raw), "\n")

	var out []Satellite
	for i := 0; i+2 < len(lines); i += 3 {
		group := strings.TrimSpace(lines[i]) + "\n" +
			strings.TrimSpace(lines[i+1]) + "\n" +
			strings.TrimSpace(lines[i+2])

		tle, err := sgp4.ParseTLE(group)
		if err != nil {
			continue
		}

		sat, err := recordFromTLE(tle, ref)
		if err != nil {
			continue
		}
		out = append(out, sat)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no usable TLEs found in %d lines of input", len(lines))
	}
	return out, nil
}

func recordFromTLE(tle *sgp4.TLE, ref time.Time) (Satellite, error) {
	eci, err := tle.FindPositionAtTime(ref)
	if err != nil {
		return Satellite{}, err
	}
	lat, lon, alt := eci.ToGeodetic()
	if alt <= 0 || math.IsNaN(alt) {
		return Satellite{}, fmt.Errorf("tle %d: implausible altitude %.1f km", tle.SatelliteNumber, alt)
	}

	r := earthRadiusKm + alt
	period := 2 * math.Pi * math.Sqrt(r*r*r/earthMu) // seconds
	step := time.Duration(period / inclinationSamples * float64(time.Second))

	peak := math.Abs(lat)
	for k := 1; k <= inclinationSamples; k++ {
		e, err := tle.FindPositionAtTime(ref.Add(time.Duration(k) * step))
		if err != nil {
			break
		}
		sLat, _, _ := e.ToGeodetic()
		peak = math.Max(peak, math.Abs(sLat))
	}

	name := strings.TrimSpace(tle.Name)
	if name == "" {
		name = fmt.Sprintf("NORAD %d", tle.SatelliteNumber)
	}

	return Satellite{
		ID:          fmt.Sprintf("tle-%d", tle.SatelliteNumber),
		Name:        name,
		Type:        typeFromName(name),
		Altitude:    math.Round(alt*10) / 10,
		Velocity:    math.Round(math.Sqrt(earthMu/r) * 3600),
		Inclination: math.Round(peak*10) / 10,
		Status:      StatusActive,
		Latitude:    lat,
		Longitude:   normalizeLongitude(lon),
		Mission:     "TLE snapshot " + ref.UTC().Format(time.RFC3339),
	}, nil
}

func typeFromName(name string) string {
	upper := strings.ToUpper(name)
	for _, k := range typeKeywords {
		if strings.Contains(upper, k.fragment) {
			return k.kind
		}
	}
	return TypeScientific
}

func normalizeLongitude(lon float64) float64 {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}
