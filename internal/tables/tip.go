package tables

import (
	"fmt"
	"os"
	"strings"

	"github.com/alexiusacademia/gorotor/internal/blade"
)

// TipData holds the structural table with the TIP X/Z axes already mapped to
// beam-local y/z. Downstream code only ever sees the (y, z)-based names.
type TipData struct {
	STA []float64 // span stations (m)
	DM  []float64 // line mass density, from WEIGHT

	YCG []float64 // from ZCG
	ZCG []float64 // from XCG

	RotAPI []float64 // pitch-axis rotation (deg)
	RotAN  []float64 // section rotation (deg)

	DJX []float64 // polar inertia density, from JP
	DJY []float64 // from JZ
	DJZ []float64 // from JX

	EA  []float64
	EJY []float64 // from EJX
	EJZ []float64
	GJ  []float64

	YNA []float64 // from ZNA
	ZNA []float64 // from XNA
	YCT []float64 // from ZCT
	ZCT []float64 // from XCT

	UnitsRow []string // units row of the chosen table block
}

// tipColumns is the TIP header vocabulary in the fixed XV-15 order, used
// both for name mapping and for the positional fallback.
var tipColumns = []string{
	"SEC", "STA", "WEIGHT", "XCG", "ZCG", "ROTAPI", "JX", "JZ", "JP",
	"EA", "XNA", "ZNA", "ROTAN", "EJZ", "EJX", "GJ", "XCT", "ZCT",
}

type tipBlock struct {
	header []string
	units  []string
	rows   [][]float64
}

// LoadTip reads an XV-15 style .tip file: it locates the BLADE STRUCT Y
// TABLE blocks, prefers the SI-units block, maps columns by normalized
// substring match with a fixed-order fallback, sorts and deduplicates by
// station, and applies the X/Z to y/z remap once.
func LoadTip(path string) (*TipData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tip file: %w", err)
	}
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")

	blocks := findStructBlocks(lines)
	if len(blocks) == 0 {
		return nil, fmt.Errorf("no BLADE STRUCT Y table found in %s", path)
	}

	chosen := blocks[0]
	for _, b := range blocks {
		if isSIUnits(b.units) {
			chosen = b
			break
		}
	}

	idx := mapTipHeader(chosen.header)
	if _, okSta := idx["STA"]; !okSta {
		idx = fallbackTipIndex(chosen.rows)
	} else if _, okW := idx["WEIGHT"]; !okW {
		idx = fallbackTipIndex(chosen.rows)
	}
	if idx == nil {
		return nil, fmt.Errorf("tip header mapping failed: cannot locate STA/WEIGHT columns")
	}

	col := func(name string) []float64 {
		j, ok := idx[name]
		out := make([]float64, len(chosen.rows))
		if !ok {
			return out
		}
		for i, row := range chosen.rows {
			if j < len(row) {
				out[i] = row[j]
			}
		}
		return out
	}

	sta := col("STA")
	cols := [][]float64{
		col("WEIGHT"), col("XCG"), col("ZCG"), col("ROTAPI"),
		col("JX"), col("JZ"), col("JP"), col("EA"),
		col("XNA"), col("ZNA"), col("ROTAN"), col("EJZ"),
		col("EJX"), col("GJ"), col("XCT"), col("ZCT"),
	}
	sta, cols = sortDedupe(sta, cols)
	weight, xcg, zcg, rotapi := cols[0], cols[1], cols[2], cols[3]
	jx, jz, jp, ea := cols[4], cols[5], cols[6], cols[7]
	xna, zna, rotan, ejz := cols[8], cols[9], cols[10], cols[11]
	ejx, gj, xct, zct := cols[12], cols[13], cols[14], cols[15]

	// X/Z -> y/z mapping, done once here
	return &TipData{
		STA:      sta,
		DM:       weight,
		YCG:      zcg,
		ZCG:      xcg,
		RotAPI:   rotapi,
		RotAN:    rotan,
		DJX:      jp,
		DJY:      jz,
		DJZ:      jx,
		EA:       ea,
		EJY:      ejx,
		EJZ:      ejz,
		GJ:       gj,
		YNA:      zna,
		ZNA:      xna,
		YCT:      zct,
		ZCT:      xct,
		UnitsRow: chosen.units,
	}, nil
}

// findStructBlocks scans for BLADE STRUCT Y markers and collects each
// following TABLE..ENDTABLE region as header line, units line and data rows.
func findStructBlocks(lines []string) []tipBlock {
	var blocks []tipBlock
	i := 0
	for i < len(lines) {
		up := strings.ToUpper(lines[i])
		if !(strings.Contains(up, "BLADE") && strings.Contains(up, "STRUCT") && strings.Contains(up, "Y")) {
			i++
			continue
		}
		j := i + 1
		for j < len(lines) && !strings.Contains(strings.ToUpper(lines[j]), "TABLE") {
			j++
		}
		if j >= len(lines) {
			break
		}
		var header, units []string
		if j+1 < len(lines) {
			header = tokenize(lines[j+1])
		}
		if j+2 < len(lines) {
			units = tokenize(lines[j+2])
		}
		var rows [][]float64
		k := j + 3
		for k < len(lines) && !strings.Contains(strings.ToUpper(lines[k]), "ENDTABLE") {
			line := strings.TrimSpace(lines[k])
			if line != "" && !strings.HasPrefix(line, "#") && !strings.HasPrefix(line, "!") && !strings.HasPrefix(line, "//") {
				toks := tokenize(line)
				if isNumericRow(toks) {
					rows = append(rows, parseFloats(toks))
				}
			}
			k++
		}
		if len(rows) > 0 {
			blocks = append(blocks, tipBlock{header: header, units: units, rows: rows})
		}
		i = k + 1
	}
	return blocks
}

// isSIUnits checks the units row of a block: second token metres, third
// kg/m. Imperial blocks fail both.
func isSIUnits(units []string) bool {
	if len(units) < 3 {
		return false
	}
	u1, u2 := normToken(units[1]), normToken(units[2])
	return strings.Contains(u1, "M") && strings.Contains(u2, "KGM")
}

// mapTipHeader maps the wanted column names onto header positions by
// normalized substring match, tolerating ellipsis drift like "...ROTAN".
func mapTipHeader(header []string) map[string]int {
	norm := make([]string, len(header))
	for i, h := range header {
		norm[i] = normToken(h)
	}
	idx := make(map[string]int)
	for _, want := range tipColumns {
		for j, h := range norm {
			if strings.Contains(h, want) {
				idx[want] = j
				break
			}
		}
	}
	return idx
}

// fallbackTipIndex assumes the fixed XV-15 SI column order when the header
// could not be mapped but the rows are wide enough to carry all columns.
func fallbackTipIndex(rows [][]float64) map[string]int {
	if len(rows) == 0 {
		return nil
	}
	for _, r := range rows {
		if len(r) < len(tipColumns) {
			return nil
		}
	}
	idx := make(map[string]int, len(tipColumns))
	for i, name := range tipColumns {
		idx[name] = i
	}
	return idx
}

// Interpolator binds every tip quantity to a clamped-linear interpolator
// over STA.
func (t *TipData) Interpolator() (*blade.Interpolator, error) {
	return blade.NewInterpolator(t.STA, map[string][]float64{
		"EA":     t.EA,
		"EJY":    t.EJY,
		"EJZ":    t.EJZ,
		"GJ":     t.GJ,
		"YNA":    t.YNA,
		"ZNA":    t.ZNA,
		"YCT":    t.YCT,
		"ZCT":    t.ZCT,
		"ROTAN":  t.RotAN,
		"ROTAPI": t.RotAPI,
		"DM":     t.DM,
		"DJX":    t.DJX,
		"DJY":    t.DJY,
		"DJZ":    t.DJZ,
		"YCG":    t.YCG,
		"ZCG":    t.ZCG,
	})
}

// Signals returns the stiffness measures tracked by the section selector,
// each on its native station grid.
func (t *TipData) Signals() (map[string]blade.Series, error) {
	out := make(map[string]blade.Series, 4)
	for name, col := range map[string][]float64{
		"EA":  t.EA,
		"EJY": t.EJY,
		"EJZ": t.EJZ,
		"GJ":  t.GJ,
	} {
		s, err := blade.NewSeries(t.STA, col)
		if err != nil {
			return nil, fmt.Errorf("signal %s: %w", name, err)
		}
		out[name] = s
	}
	return out, nil
}
