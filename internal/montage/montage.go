// Package montage carries fixed tables of standard electrode placements.
// Recordings often arrive without usable channel locations; applying a named
// montage backfills approximate positions so the scalp renderer has a
// geometry to project.
package montage

import (
	"fmt"
	"sort"
	"strings"

	"github.com/neuroviz-data/scalpview/internal/headmap"
)

// Info summarises one available montage.
type Info struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	ChannelCount int    `json:"channel_count"`
}

// Positions are approximate head-sphere coordinates; the projector
// normalises them, so only direction matters. +X right, +Y anterior,
// +Z superior.
var standard1020 = map[string]headmap.Position3D{
	"FP1": {X: -0.31, Y: 0.95, Z: 0},
	"FPZ": {X: 0, Y: 1, Z: 0},
	"FP2": {X: 0.31, Y: 0.95, Z: 0},
	"F7":  {X: -0.81, Y: 0.59, Z: 0},
	"F3":  {X: -0.55, Y: 0.67, Z: 0.5},
	"FZ":  {X: 0, Y: 0.71, Z: 0.71},
	"F4":  {X: 0.55, Y: 0.67, Z: 0.5},
	"F8":  {X: 0.81, Y: 0.59, Z: 0},
	"T3":  {X: -1, Y: 0, Z: 0},
	"C3":  {X: -0.71, Y: 0, Z: 0.71},
	"CZ":  {X: 0, Y: 0, Z: 1},
	"C4":  {X: 0.71, Y: 0, Z: 0.71},
	"T4":  {X: 1, Y: 0, Z: 0},
	"T5":  {X: -0.81, Y: -0.59, Z: 0},
	"P3":  {X: -0.55, Y: -0.67, Z: 0.5},
	"PZ":  {X: 0, Y: -0.71, Z: 0.71},
	"P4":  {X: 0.55, Y: -0.67, Z: 0.5},
	"T6":  {X: 0.81, Y: -0.59, Z: 0},
	"O1":  {X: -0.31, Y: -0.95, Z: 0},
	"OZ":  {X: 0, Y: -1, Z: 0},
	"O2":  {X: 0.31, Y: -0.95, Z: 0},
	"A1":  {X: -0.95, Y: 0, Z: -0.25},
	"A2":  {X: 0.95, Y: 0, Z: -0.25},
}

// standard1005 extends the 10-20 set with the intermediate 10-10 sites the
// viewer most commonly meets in dense-array recordings.
var standard1005Extra = map[string]headmap.Position3D{
	"AF3": {X: -0.40, Y: 0.85, Z: 0.28},
	"AF4": {X: 0.40, Y: 0.85, Z: 0.28},
	"FC1": {X: -0.35, Y: 0.35, Z: 0.87},
	"FC2": {X: 0.35, Y: 0.35, Z: 0.87},
	"FC5": {X: -0.80, Y: 0.35, Z: 0.42},
	"FC6": {X: 0.80, Y: 0.35, Z: 0.42},
	"CP1": {X: -0.35, Y: -0.35, Z: 0.87},
	"CP2": {X: 0.35, Y: -0.35, Z: 0.87},
	"CP5": {X: -0.80, Y: -0.35, Z: 0.42},
	"CP6": {X: 0.80, Y: -0.35, Z: 0.42},
	"PO3": {X: -0.40, Y: -0.85, Z: 0.28},
	"PO4": {X: 0.40, Y: -0.85, Z: 0.28},
}

var montages = map[string]map[string]headmap.Position3D{
	"standard_1020": standard1020,
	"standard_1005": merged(standard1020, standard1005Extra),
	// BioSemi caps label the same scalp sites; serve them from the dense table.
	"biosemi64": merged(standard1020, standard1005Extra),
}

var descriptions = map[string]string{
	"standard_1020": "International 10-20 placement (21 sites + ears)",
	"standard_1005": "10-20 extended with intermediate 10-10 sites",
	"biosemi64":     "BioSemi cap sites mapped onto the 10-10 layout",
}

func merged(maps ...map[string]headmap.Position3D) map[string]headmap.Position3D {
	out := make(map[string]headmap.Position3D)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// Available lists the montages, sorted by name.
func Available() []Info {
	infos := make([]Info, 0, len(montages))
	for name, table := range montages {
		infos = append(infos, Info{
			Name:         name,
			Description:  descriptions[name],
			ChannelCount: len(table),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// Positions returns the electrode table for a montage name.
func Positions(name string) (map[string]headmap.Position3D, error) {
	table, ok := montages[name]
	if !ok {
		return nil, fmt.Errorf("montage: unknown montage %q", name)
	}
	return table, nil
}

// Lookup builds zero-valued samples for the named channels with positions
// filled from the montage. Channels the montage does not cover come back
// without a position.
func Lookup(name string, channelNames []string) ([]headmap.SensorSample, error) {
	samples := make([]headmap.SensorSample, len(channelNames))
	for i, ch := range channelNames {
		samples[i] = headmap.SensorSample{Name: ch}
	}
	return Apply(name, samples)
}

// Apply backfills positions for samples whose channel names (matched
// case-insensitively) appear in the montage. Samples that already carry a
// position keep it; unknown channels are left without one, which the
// projector then excludes.
func Apply(name string, samples []headmap.SensorSample) ([]headmap.SensorSample, error) {
	table, err := Positions(name)
	if err != nil {
		return nil, err
	}

	out := make([]headmap.SensorSample, len(samples))
	for i, s := range samples {
		out[i] = s
		if s.Pos != nil {
			continue
		}
		if pos, ok := table[strings.ToUpper(s.Name)]; ok {
			p := pos
			out[i].Pos = &p
		}
	}
	return out, nil
}
