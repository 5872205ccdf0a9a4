package scene

const (
	highlightEmissive    = 1.0
	highlightGlowOpacity = 0.8
)

// Emphasis is the visual emphasis currently applied to one satellite.
type Emphasis struct {
	Highlighted       bool    `json:"highlighted"`
	EmissiveIntensity float64 `json:"emissiveIntensity"`
	GlowOpacity       float64 `json:"glowOpacity"`
	Scale             float64 `json:"scale"`
}

// SetHighlighted emphasizes the satellite with the given id and resets every
// other satellite to its status baseline. An empty or unknown id clears all
// emphasis. Calling it again with the same id changes nothing.
func (s *Scene) SetHighlighted(id string) {
	s.highlighted = ""
	for _, sat := range s.Satellites {
		on := id != "" && sat.Record.ID == id
		sat.setEmphasis(on, s.opts.HighlightScale)
		if on {
			s.highlighted = id
		}
	}
}

// Highlighted returns the emphasized satellite id, or "".
func (s *Scene) Highlighted() string { return s.highlighted }

// Emphasis reports the emphasis state of id.
func (s *Scene) Emphasis(id string) (Emphasis, bool) {
	sat, ok := s.byID[id]
	if !ok {
		return Emphasis{}, false
	}
	return Emphasis{
		Highlighted:       sat.Highlighted,
		EmissiveIntensity: sat.Body.Mesh.Material.EmissiveIntensity,
		GlowOpacity:       sat.GlowBase,
		Scale:             sat.Body.Scale,
	}, true
}

func (sat *SceneSatellite) setEmphasis(on bool, scale float64) {
	sat.Highlighted = on
	body := sat.Body.Mesh.Material
	if on {
		body.EmissiveIntensity = highlightEmissive
		sat.GlowBase = highlightGlowOpacity
		sat.Body.Scale = scale
	} else {
		body.EmissiveIntensity = sat.Baseline.EmissiveIntensity
		sat.GlowBase = sat.Baseline.GlowOpacity
		sat.Body.Scale = 1
	}
	sat.GlowMesh.Mesh.Material.Opacity = sat.GlowBase
}
