package blade

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// ChordSignal is the aerodynamic signal used for start detection and
// planform vertex capture.
const ChordSignal = "Chord"

const (
	// mergeEps is the distance below which two section positions collapse.
	mergeEps = 1e-12
	// structStartFrac scales the global maximum magnitude when auto-detecting
	// the start from structural stiffness data.
	structStartFrac = 1e-6
	// vertexFrac scales the maximum chord when filtering slope-sign changes.
	vertexFrac = 1e-3
	// maxSweeps bounds every fixed-point loop; an overrun is reported as a
	// non-convergence warning instead of looping.
	maxSweeps = 1000
)

// Config tunes the control section selection.
type Config struct {
	// Start forces the blade start position. NaN auto-detects it from chord
	// data when available, otherwise from the structural signals.
	Start float64

	// ErrTol is the relative midpoint-interpolation-error threshold.
	ErrTol float64

	// JumpTol is the relative discontinuity threshold between adjacent
	// raw stations.
	JumpTol float64

	// MaxElems is the hard cap on element count.
	MaxElems int

	// MaxSeg and MinSeg bound the element span. Zero disables a bound.
	MaxSeg float64
	MinSeg float64

	// ChordEps is the chord magnitude above which the blade is considered
	// to have started.
	ChordEps float64
}

// DefaultConfig returns the selection defaults.
func DefaultConfig() Config {
	return Config{
		Start:    math.NaN(),
		ErrTol:   0.05,
		JumpTol:  0.10,
		MaxElems: 40,
		ChordEps: 1e-3,
	}
}

// Validate checks the configuration before use.
func (c Config) Validate() error {
	if c.ErrTol <= 0 {
		return fmt.Errorf("error tolerance must be positive, got %g", c.ErrTol)
	}
	if c.JumpTol <= 0 {
		return fmt.Errorf("jump tolerance must be positive, got %g", c.JumpTol)
	}
	if c.MaxElems < 1 {
		return fmt.Errorf("max elements must be at least 1, got %d", c.MaxElems)
	}
	if c.MaxSeg < 0 || c.MinSeg < 0 {
		return fmt.Errorf("segment bounds must be non-negative, got max=%g min=%g", c.MaxSeg, c.MinSeg)
	}
	if c.MaxSeg > 0 && c.MinSeg > 0 && c.MinSeg > c.MaxSeg {
		return fmt.Errorf("min segment length %g exceeds max segment length %g", c.MinSeg, c.MaxSeg)
	}
	if c.ChordEps <= 0 {
		return fmt.Errorf("chord epsilon must be positive, got %g", c.ChordEps)
	}
	return nil
}

// ReasonKind classifies why a control section exists.
type ReasonKind int

const (
	ReasonStart ReasonKind = iota
	ReasonEnd
	ReasonJump
	ReasonVertex
	ReasonMaxSeg
	ReasonError
)

// Reason is one provenance tag on a control section. Signal names the
// driving signal for Jump, Vertex and Error kinds; Tol carries the exceeded
// tolerance for Error.
type Reason struct {
	Kind   ReasonKind
	Signal string
	Tol    float64
}

// String renders the audit-log form of the tag.
func (r Reason) String() string {
	switch r.Kind {
	case ReasonStart:
		return "START"
	case ReasonEnd:
		return "END"
	case ReasonJump:
		return "JUMP:" + r.Signal
	case ReasonVertex:
		return "VERTEX:" + r.Signal
	case ReasonMaxSeg:
		return "MAX_DR"
	case ReasonError:
		return fmt.Sprintf("ERR>%.3f:%s", r.Tol, r.Signal)
	default:
		return "UNKNOWN"
	}
}

// protected reports whether the tag shields its section from removal.
// Physical discontinuities take precedence over size hygiene and the
// element cap.
func (r Reason) protected() bool {
	switch r.Kind {
	case ReasonStart, ReasonEnd, ReasonJump, ReasonVertex:
		return true
	}
	return false
}

// Report is the human-auditable outcome of a selection run.
type Report struct {
	Sections  []float64
	Reasons   map[float64][]Reason
	StartUsed float64
	Elems     int
	Nodes     int
	Warnings  []string
	Notes     []string
}

// signal pairs a name with its native sample series. Tracked signals sweep
// in a fixed order so error attribution is deterministic.
type signal struct {
	name   string
	series Series
}

// Select chooses the control sections for the given structural and optional
// aerodynamic signals. It returns the strictly increasing section positions
// together with a report of why each one exists.
//
// Tolerance and bound conflicts never fail the selection; they degrade to
// warnings with a documented precedence: discontinuities beat size bounds,
// size bounds beat the element cap.
func Select(structural, aero map[string]Series, cfg Config) ([]float64, *Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	if len(structural) == 0 {
		return nil, nil, fmt.Errorf("%w: no structural signals", ErrInsufficientDomain)
	}

	structSigs := sortedSignals(structural)

	// Domain from structural data.
	rmin, rmax := math.Inf(1), math.Inf(-1)
	maxSamples := 0
	for _, sg := range structSigs {
		if sg.series.Min() < rmin {
			rmin = sg.series.Min()
		}
		if sg.series.Max() > rmax {
			rmax = sg.series.Max()
		}
		if len(sg.series.X) > maxSamples {
			maxSamples = len(sg.series.X)
		}
	}
	if maxSamples < 2 {
		return nil, nil, fmt.Errorf("%w: need at least 2 stations, got %d", ErrInsufficientDomain, maxSamples)
	}

	var chord *Series
	if aero != nil {
		if c, ok := aero[ChordSignal]; ok && len(c.X) > 0 {
			chord = &c
		}
	}

	tracked := append([]signal(nil), structSigs...)
	if chord != nil {
		tracked = append(tracked, signal{name: ChordSignal, series: *chord})
	}

	start := detectStart(cfg, structSigs, chord, rmin, rmax)

	var warns []string
	set := newSectionSet()
	set.tag(set.mustAdd(start), Reason{Kind: ReasonStart})
	set.tag(set.mustAdd(rmax), Reason{Kind: ReasonEnd})

	detectHardConstraints(set, tracked, chord, start, rmax, cfg)
	enforceMaxSeg(set, cfg, &warns)
	refineByError(set, tracked, cfg, &warns)
	enforceMinSeg(set, cfg, &warns)
	enforceCap(set, cfg, &warns)

	sections := append([]float64(nil), set.pos...)
	k := len(sections)

	names := make([]string, len(tracked))
	for i, sg := range tracked {
		names[i] = sg.name
	}
	report := &Report{
		Sections:  sections,
		Reasons:   set.copyReasons(),
		StartUsed: start,
		Elems:     k - 1,
		Nodes:     2*k - 1,
		Warnings:  dedupeStrings(warns),
		Notes: []string{
			"signals=" + strings.Join(names, ","),
			fmt.Sprintf("err_tol=%g, jump_tol=%g, max_elems=%d, max_dr=%g, min_dr=%g",
				cfg.ErrTol, cfg.JumpTol, cfg.MaxElems, cfg.MaxSeg, cfg.MinSeg),
		},
	}
	return sections, report, nil
}

// ───────────────────────── pipeline steps ─────────────────────────

// detectStart resolves the usable blade start: forced override, first chord
// exceeding ChordEps, or the first structural station with meaningful
// stiffness. Falls back to the domain minimum.
func detectStart(cfg Config, structSigs []signal, chord *Series, rmin, rmax float64) float64 {
	if !math.IsNaN(cfg.Start) {
		return clampStart(cfg.Start, rmin, rmax)
	}
	if chord != nil {
		if r0, ok := startFromChord(*chord, cfg.ChordEps); ok {
			return clampStart(r0, rmin, rmax)
		}
	}
	return clampStart(startFromStructure(structSigs, rmin), rmin, rmax)
}

func clampStart(r, rmin, rmax float64) float64 {
	hi := math.Max(rmin, rmax-mergeEps)
	return math.Max(rmin, math.Min(r, hi))
}

func startFromChord(chord Series, chordEps float64) (float64, bool) {
	anyNonzero := false
	for _, c := range chord.Y {
		if !math.IsNaN(c) && !math.IsInf(c, 0) && math.Abs(c) > 0 {
			anyNonzero = true
			break
		}
	}
	if !anyNonzero {
		return 0, false
	}
	for i, c := range chord.Y {
		if c > chordEps {
			return chord.X[i], true
		}
	}
	return 0, false
}

// startFromStructure scans the union of structural stations for the first
// one where any tracked signal exceeds a tiny fraction of the global maximum
// magnitude. The relative threshold guards against spurious root noise.
func startFromStructure(structSigs []signal, rmin float64) float64 {
	maxv := 0.0
	for _, sg := range structSigs {
		for _, v := range sg.series.Y {
			if math.Abs(v) > maxv {
				maxv = math.Abs(v)
			}
		}
	}
	thr := structStartFrac * math.Max(1.0, maxv)

	stations := unionStations(structSigs)
	for _, x := range stations {
		for _, sg := range structSigs {
			if sg.series.At(x) > thr {
				return x
			}
		}
	}
	return rmin
}

// detectHardConstraints inserts JUMP sections wherever a tracked signal
// changes by more than the jump tolerance between adjacent raw stations, and
// VERTEX sections at chord planform corners that error-based refinement
// alone might smooth over.
func detectHardConstraints(set *sectionSet, tracked []signal, chord *Series, start, rmax float64, cfg Config) {
	for _, sg := range tracked {
		for _, r := range detectJumps(sg.series, start, cfg.JumpTol) {
			if r >= start && r <= rmax {
				set.tag(set.mustAdd(r), Reason{Kind: ReasonJump, Signal: sg.name})
			}
		}
	}
	if chord != nil {
		for _, r := range detectChordVertices(*chord, start) {
			if r >= start && r <= rmax {
				set.tag(set.mustAdd(r), Reason{Kind: ReasonVertex, Signal: ChordSignal})
			}
		}
	}
}

func detectJumps(s Series, start, jumpTol float64) []float64 {
	var out []float64
	for i := 1; i < len(s.X); i++ {
		if s.X[i] < start {
			continue
		}
		y0, y1 := s.Y[i-1], s.Y[i]
		base := math.Max(math.Max(math.Abs(y0), math.Abs(y1)), mergeEps)
		if math.Abs(y1-y0)/base >= jumpTol {
			out = append(out, s.X[i])
		}
	}
	return out
}

func detectChordVertices(chord Series, start float64) []float64 {
	if len(chord.X) < 3 {
		return nil
	}
	maxC := 0.0
	for _, c := range chord.Y {
		if math.Abs(c) > maxC {
			maxC = math.Abs(c)
		}
	}
	if maxC <= 0 {
		return nil
	}
	thr := vertexFrac * maxC

	var out []float64
	for i := 1; i < len(chord.X)-1; i++ {
		if chord.X[i] < start {
			continue
		}
		dL := chord.Y[i] - chord.Y[i-1]
		dR := chord.Y[i+1] - chord.Y[i]
		if dL*dR <= 0 && math.Max(math.Abs(dL), math.Abs(dR)) > thr {
			out = append(out, chord.X[i])
		}
	}
	return out
}

// enforceMaxSeg subdivides any interval longer than MaxSeg into the minimum
// number of equal parts satisfying the bound, repeating until stable or the
// element cap is reached.
func enforceMaxSeg(set *sectionSet, cfg Config, warns *[]string) {
	if cfg.MaxSeg <= 0 {
		return
	}
	for sweep := 0; ; sweep++ {
		if sweep >= maxSweeps {
			*warns = append(*warns, "max segment enforcement did not converge; partial subdivision kept")
			return
		}
		var newPts []float64
		for i := 0; i < len(set.pos)-1; i++ {
			a, b := set.pos[i], set.pos[i+1]
			dr := b - a
			if dr > cfg.MaxSeg+mergeEps {
				n := int(math.Ceil(dr / cfg.MaxSeg))
				for k := 1; k < n; k++ {
					newPts = append(newPts, a+dr*float64(k)/float64(n))
				}
			}
		}
		if len(newPts) == 0 {
			return
		}
		for _, rp := range newPts {
			if key, created := set.add(rp); created {
				set.tag(key, Reason{Kind: ReasonMaxSeg})
			}
		}
		if set.elems() >= cfg.MaxElems {
			return
		}
	}
}

// refineByError is the iterative core: while below the element cap, bisect
// every interval whose worst-case relative midpoint error across the tracked
// signals exceeds the tolerance. All qualifying splits of one sweep apply
// simultaneously.
func refineByError(set *sectionSet, tracked []signal, cfg Config, warns *[]string) {
	type split struct {
		r   float64
		why Reason
	}
	for sweep := 0; ; sweep++ {
		if set.elems() >= cfg.MaxElems {
			return
		}
		if sweep >= maxSweeps {
			*warns = append(*warns, "error refinement did not converge; partial refinement kept")
			return
		}
		var splits []split
		for i := 0; i < len(set.pos)-1; i++ {
			a, b := set.pos[i], set.pos[i+1]
			// never refine sub-minimum segments
			if cfg.MinSeg > 0 && b-a <= cfg.MinSeg+mergeEps {
				continue
			}
			emax, name := worstMidError(tracked, a, b)
			if emax > cfg.ErrTol {
				splits = append(splits, split{
					r:   0.5 * (a + b),
					why: Reason{Kind: ReasonError, Signal: name, Tol: cfg.ErrTol},
				})
			}
		}
		if len(splits) == 0 {
			return
		}
		for _, sp := range splits {
			set.tag(set.mustAdd(sp.r), sp.why)
		}
	}
}

// worstMidError returns the maximum relative midpoint error across the
// tracked signals for [a, b] and the name of the driving signal. Ties keep
// the earliest signal in sweep order.
func worstMidError(tracked []signal, a, b float64) (float64, string) {
	best, name := -1.0, "NA"
	for _, sg := range tracked {
		if e := midError(sg.series, a, b); e > best {
			best, name = e, sg.name
		}
	}
	if best < 0 {
		return 0, name
	}
	return best, name
}

// midError is the relative deviation between the interpolated value at the
// interval midpoint and the endpoint-linear estimate, both taken from the
// signal's native sample series.
func midError(s Series, a, b float64) float64 {
	if b <= a+mergeEps {
		return 0
	}
	rm := 0.5 * (a + b)
	ya, yb, ym := s.At(a), s.At(b), s.At(rm)
	ylin := ya + (yb-ya)*(rm-a)/(b-a)
	denom := math.Max(math.Max(math.Abs(ym), math.Abs(ya)), math.Max(math.Abs(yb), mergeEps))
	return math.Abs(ym-ylin) / denom
}

// enforceMinSeg removes unprotected interior sections that leave a
// neighboring interval shorter than MinSeg, restarting the scan after every
// removal. Protected sections stay; any interval left short because of them
// is recorded as a warning, not an error.
func enforceMinSeg(set *sectionSet, cfg Config, warns *[]string) {
	if cfg.MinSeg <= 0 {
		return
	}
	removed := true
	for sweep := 0; removed; sweep++ {
		if sweep >= maxSweeps {
			*warns = append(*warns, "min segment enforcement did not converge; partial merge kept")
			break
		}
		removed = false
		if len(set.pos) <= 2 {
			break
		}
		for i := 1; i < len(set.pos)-1; i++ {
			left := set.pos[i] - set.pos[i-1]
			right := set.pos[i+1] - set.pos[i]
			if math.Min(left, right) < cfg.MinSeg-mergeEps && !set.protected(i) {
				*warns = append(*warns, fmt.Sprintf("min segment merge: removed section at r=%.6f", set.pos[i]))
				set.remove(i)
				removed = true
				break
			}
		}
	}
	for i := 0; i < len(set.pos)-1; i++ {
		if set.pos[i+1]-set.pos[i] < cfg.MinSeg-mergeEps {
			*warns = append(*warns, fmt.Sprintf(
				"interval [%.6f, %.6f] below min segment length; protected sections retained",
				set.pos[i], set.pos[i+1]))
		}
	}
}

// enforceCap drops the unprotected interior section closest to the domain
// midpoint (lowest index on ties) until the element cap holds. If only
// protected sections remain the cap is reported unsatisfiable.
func enforceCap(set *sectionSet, cfg Config, warns *[]string) {
	for set.elems() > cfg.MaxElems {
		mid := 0.5 * (set.pos[0] + set.pos[len(set.pos)-1])
		bestIdx, bestDist := -1, math.Inf(1)
		for i := 1; i < len(set.pos)-1; i++ {
			if set.protected(i) {
				continue
			}
			if d := math.Abs(set.pos[i] - mid); d < bestDist {
				bestIdx, bestDist = i, d
			}
		}
		if bestIdx < 0 {
			*warns = append(*warns, "max elements cap reached but cannot drop protected sections")
			return
		}
		set.remove(bestIdx)
	}
}

// ───────────────────────── section set ─────────────────────────

// sectionSet is the working state of the pipeline: sorted strictly
// increasing positions plus the accumulated reason tags per position.
type sectionSet struct {
	pos     []float64
	reasons map[float64][]Reason
}

func newSectionSet() *sectionSet {
	return &sectionSet{reasons: make(map[float64][]Reason)}
}

// add inserts r, merging with an existing position closer than mergeEps.
// It returns the canonical position and whether a new section was created.
func (s *sectionSet) add(r float64) (float64, bool) {
	j := sort.SearchFloat64s(s.pos, r)
	if j < len(s.pos) && s.pos[j]-r <= mergeEps {
		return s.pos[j], false
	}
	if j > 0 && r-s.pos[j-1] <= mergeEps {
		return s.pos[j-1], false
	}
	s.pos = append(s.pos, 0)
	copy(s.pos[j+1:], s.pos[j:])
	s.pos[j] = r
	return r, true
}

// mustAdd is add for callers that tag regardless of whether the position
// already existed.
func (s *sectionSet) mustAdd(r float64) float64 {
	key, _ := s.add(r)
	return key
}

// tag appends a reason to the section at key, dropping exact duplicates.
func (s *sectionSet) tag(key float64, why Reason) {
	for _, have := range s.reasons[key] {
		if have == why {
			return
		}
	}
	s.reasons[key] = append(s.reasons[key], why)
}

func (s *sectionSet) remove(i int) {
	delete(s.reasons, s.pos[i])
	s.pos = append(s.pos[:i], s.pos[i+1:]...)
}

func (s *sectionSet) protected(i int) bool {
	for _, r := range s.reasons[s.pos[i]] {
		if r.protected() {
			return true
		}
	}
	return false
}

func (s *sectionSet) elems() int { return len(s.pos) - 1 }

func (s *sectionSet) copyReasons() map[float64][]Reason {
	out := make(map[float64][]Reason, len(s.reasons))
	for k, v := range s.reasons {
		out[k] = append([]Reason(nil), v...)
	}
	return out
}

// ───────────────────────── helpers ─────────────────────────

// sortedSignals flattens the signal map in name order so sweeps are
// deterministic regardless of map iteration.
func sortedSignals(m map[string]Series) []signal {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]signal, len(names))
	for i, name := range names {
		out[i] = signal{name: name, series: m[name]}
	}
	return out
}

// unionStations merges the native stations of all signals into one sorted,
// deduplicated scan grid.
func unionStations(sigs []signal) []float64 {
	var all []float64
	for _, sg := range sigs {
		all = append(all, sg.series.X...)
	}
	sort.Float64s(all)
	var out []float64
	for _, x := range all {
		if len(out) == 0 || x-out[len(out)-1] > mergeEps {
			out = append(out, x)
		}
	}
	return out
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	var out []string
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
