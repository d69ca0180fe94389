// Package rotors parses the multi-rotor description XML. The files come from
// an upstream Chinese-language toolchain, so element names are Chinese tags
// and the values may use full-width commas; both are normalized here.
package rotors

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/alexiusacademia/gorotor/internal/tables"
)

// Rotor is the configuration extracted for a single rotor.
type Rotor struct {
	Index      int
	Name       string
	Center     [3]float64 // hub position (m)
	Attitude   [3]float64 // roll, pitch, yaw (deg)
	BladeCount int
	RPM        float64
	Direction  string

	TipPath   string      // resolved structural table path, may be empty
	AeroStart *[3]float64 // airfoil start point, nil when absent
	AeroBlock string      // raw aero CSV block from the XML
}

type xmlAeroProfile struct {
	Direction string `xml:"旋翼旋向"`
	Start     string `xml:"翼型起始位置"`
	Data      string `xml:"气动数据"`
}

type xmlStructProfile struct {
	Shape string `xml:"形状系数"`
}

type xmlProfile struct {
	Struct xmlStructProfile `xml:"结构剖面"`
	Aero   xmlAeroProfile   `xml:"气动剖面"`
}

type xmlRotor struct {
	Name       string     `xml:"旋翼名称"`
	Center     string     `xml:"中心点坐标"`
	Attitude   string     `xml:"姿态角"`
	BladeCount string     `xml:"桨叶片数"`
	RPM        string     `xml:"转速"`
	Direction  string     `xml:"旋翼旋向"`
	Shape      string     `xml:"形状系数"`
	Profile    xmlProfile `xml:"桨叶剖面"`
}

type xmlRoot struct {
	Rotors []xmlRotor `xml:",any"`
}

// some upstream exports close 形状系数 with an opening tag
var malformedShapeTag = regexp.MustCompile(`<形状系数>([^<]+)<形状系数>`)

func fixMalformedTags(text string) string {
	return malformedShapeTag.ReplaceAllString(text, "<形状系数>$1</形状系数>")
}

// Parse reads the rotors XML and returns one Rotor per top-level child, in
// document order.
func Parse(path string) ([]Rotor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rotors XML: %w", err)
	}

	var root xmlRoot
	if err := xml.Unmarshal([]byte(fixMalformedTags(string(data))), &root); err != nil {
		return nil, fmt.Errorf("parsing rotors XML %s: %w", path, err)
	}

	out := make([]Rotor, 0, len(root.Rotors))
	for i, rn := range root.Rotors {
		r := Rotor{Index: i + 1}

		r.Name = strings.TrimSpace(rn.Name)
		if r.Name == "" {
			r.Name = fmt.Sprintf("rotor_%d", r.Index)
		}
		r.Center = parseTriplet(rn.Center)
		r.Attitude = parseTriplet(rn.Attitude)

		r.BladeCount = 2
		if v, err := strconv.ParseFloat(strings.TrimSpace(rn.BladeCount), 64); err == nil {
			r.BladeCount = int(v)
		}
		if v, err := strconv.ParseFloat(strings.TrimSpace(rn.RPM), 64); err == nil {
			r.RPM = v
		}

		r.Direction = firstNonEmpty(rn.Profile.Aero.Direction, rn.Direction, "逆时针")

		if raw := firstNonEmpty(rn.Profile.Struct.Shape, rn.Shape); raw != "" {
			r.TipPath = resolveTipPath(path, raw)
		}

		if s := strings.TrimSpace(rn.Profile.Aero.Start); s != "" {
			start := parseTriplet(s)
			r.AeroStart = &start
		}
		r.AeroBlock = strings.TrimSpace(rn.Profile.Aero.Data)

		out = append(out, r)
	}
	return out, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

// parseTriplet parses up to three comma-separated floats, tolerating
// full-width commas and padding missing components with zero.
func parseTriplet(value string) [3]float64 {
	var out [3]float64
	parts := strings.Split(strings.ReplaceAll(value, "，", ","), ",")
	i := 0
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if i >= 3 {
			break
		}
		if v, err := strconv.ParseFloat(p, 64); err == nil {
			out[i] = v
		}
		i++
	}
	return out
}

var windowsAbs = regexp.MustCompile(`^[A-Za-z]:[\\/].*`)

func looksWindowsAbsolute(path string) bool {
	if path == "" {
		return false
	}
	if strings.HasPrefix(path, `\\`) || strings.HasPrefix(path, "//") {
		return true
	}
	return windowsAbs.MatchString(path)
}

// resolveTipPath resolves a structural table path from the XML: absolute
// paths are taken as-is when they exist, relative ones are tried against the
// XML's directory, and the basename next to the XML is the last resort.
func resolveTipPath(xmlPath, raw string) string {
	xmlDir := filepath.Dir(absOrSelf(xmlPath))
	candidate := strings.ReplaceAll(strings.TrimSpace(raw), `\`, string(filepath.Separator))

	looksAbs := filepath.IsAbs(candidate) || looksWindowsAbsolute(raw)
	if looksAbs && isFile(candidate) {
		return absOrSelf(candidate)
	}
	if !looksAbs {
		if rel := filepath.Join(xmlDir, candidate); isFile(rel) {
			return absOrSelf(rel)
		}
	}
	if fb := filepath.Join(xmlDir, filepath.Base(candidate)); isFile(fb) {
		return absOrSelf(fb)
	}
	if looksAbs {
		return filepath.Clean(candidate)
	}
	return absOrSelf(candidate)
}

func absOrSelf(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// YSign maps the rotation direction to the lateral mirroring sign: clockwise
// rotors get -1, everything else +1.
func YSign(direction string) float64 {
	d := strings.ToLower(strings.TrimSpace(direction))
	if strings.Contains(d, "顺时") || d == "cw" {
		return -1.0
	}
	return 1.0
}

// AeroSeg is one row of the XML aero CSV block.
type AeroSeg struct {
	Chord    float64
	TwistDeg float64
	C81      string
	DR       float64
	HasDR    bool
	Sweep    float64
	Anhedral float64
	Divs     int
	HasDivs  bool
	DivType  string
}

// ParseAeroSegments splits an aero CSV block into segments. Rows are
// separated by semicolons (half- or full-width), columns by commas.
func ParseAeroSegments(block string) []AeroSeg {
	text := strings.TrimSpace(block)
	if text == "" {
		return nil
	}

	var segs []AeroSeg
	for _, row := range splitRows(text) {
		row = strings.TrimSpace(row)
		if row == "" {
			continue
		}
		cols := strings.Split(strings.ReplaceAll(row, "，", ","), ",")
		for len(cols) < 9 {
			cols = append(cols, "")
		}
		for i := range cols {
			cols[i] = strings.TrimSpace(cols[i])
		}

		seg := AeroSeg{
			Chord:    floatOrZero(cols[1]),
			TwistDeg: floatOrZero(cols[2]),
			C81:      cols[3],
			Sweep:    floatOrZero(cols[5]),
			Anhedral: floatOrZero(cols[6]),
			DivType:  cols[8],
		}
		if cols[4] != "" {
			if v, err := strconv.ParseFloat(cols[4], 64); err == nil {
				seg.DR, seg.HasDR = v, true
			}
		}
		if cols[7] != "" {
			if v, err := strconv.ParseFloat(cols[7], 64); err == nil {
				seg.Divs, seg.HasDivs = int(v), true
			}
		}
		segs = append(segs, seg)
	}
	return segs
}

func splitRows(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool { return r == ';' || r == '；' })
}

func floatOrZero(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// BuildAeroData converts the XML aero block into a planform table. Radial
// positions accumulate each segment's span length starting from the airfoil
// start point's y component; a missing start yields radius zero.
func BuildAeroData(start *[3]float64, block string) *tables.AeroData {
	segs := ParseAeroSegments(block)
	if len(segs) == 0 {
		return nil
	}

	r0 := 0.0
	if start != nil {
		r0 = start[1]
	}

	a := &tables.AeroData{}
	acc := r0
	for i, seg := range segs {
		if i > 0 {
			prev := segs[i-1]
			if prev.HasDR && prev.DR > 0 {
				acc += prev.DR
			}
		}
		a.Radial = append(a.Radial, acc)
		a.Chord = append(a.Chord, seg.Chord)
		a.Twist = append(a.Twist, seg.TwistDeg)
		a.Sweep = append(a.Sweep, seg.Sweep)
		a.Anhedral = append(a.Anhedral, seg.Anhedral)
	}
	return a
}
