package report

import "encoding/json"

// JSONFormatter renders a Snapshot as JSON lines, one object per real, for
// piping into another tool.
type JSONFormatter struct{}

// NewJSONFormatter creates a JSONFormatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

type jsonEntry struct {
	ID              uint32  `json:"id"`
	Name            string  `json:"name,omitempty"`
	Weight          uint32  `json:"weight"`
	Enabled         bool    `json:"enabled"`
	ConfiguredCells int     `json:"configured_cells"`
	EffectiveCells  int     `json:"effective_cells"`
	Deviation       float64 `json:"deviation"`
}

func (f *JSONFormatter) Format(buf []byte, snap Snapshot) []byte {
	for _, e := range snap.Entries {
		je := jsonEntry{
			ID:              e.ID,
			Name:            e.Name,
			Weight:          uint32(e.Weight),
			Enabled:         e.Enabled,
			ConfiguredCells: e.ConfiguredCells,
			EffectiveCells:  e.EffectiveCells,
			Deviation:       e.Deviation,
		}
		data, _ := json.Marshal(je)
		buf = append(buf, data...)
		buf = append(buf, '\n')
	}
	return buf
}

var _ Formatter = (*JSONFormatter)(nil)
