package meidoc

import "sort"

// Meter is a time signature: Count beats of note value Unit.
type Meter struct {
	Count int `json:"count"`
	Unit  int `json:"unit"`
}

// DocInfo is the per-measure index of meter changes and staff-group labels.
// Keys of Staves and Beats are 0-based measure positions in document order.
type DocInfo struct {
	MeasureCount  int              `json:"measures"`
	MeasureLabels []string         `json:"measure_labels"`
	Staves        map[int][]string `json:"staves"`
	Beats         map[int]Meter    `json:"beats"`
}

// MeterAt returns the meter governing the 1-based measure number: the latest
// change at or before it.
func (d *DocInfo) MeterAt(measure int) (Meter, bool) {
	var meter Meter
	found := false
	for _, idx := range sortedKeys(d.Beats) {
		if idx+1 > measure {
			break
		}
		meter = d.Beats[idx]
		found = true
	}
	return meter, found
}

// StavesAt returns the staff labels of the staff group governing the 1-based
// measure number, or nil when no staff group precedes it.
func (d *DocInfo) StavesAt(measure int) []string {
	var staves []string
	for _, idx := range sortedKeys(d.Staves) {
		if idx+1 > measure {
			break
		}
		staves = d.Staves[idx]
	}
	return staves
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
