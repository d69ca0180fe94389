package mbd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// RotorOut is the per-rotor output metadata needed to assemble main.mbd.
type RotorOut struct {
	Index      int
	Name       string
	OutDir     string
	BladeCount int
	HasAero    bool
}

// SimParams are the simulation controls for the initial value block.
type SimParams struct {
	TimeStep        float64
	T0              float64
	TEnd            float64
	MaxIters        int
	Tol             float64
	DerivTol        float64
	DerivMaxIters   int
	DerivCoeff      float64
	LinearSolver    string
	Method          string
}

// DefaultSimParams returns the stock integrator settings.
func DefaultSimParams() SimParams {
	return SimParams{
		TimeStep:      1.0e-3,
		T0:            0.0,
		TEnd:          10.0,
		MaxIters:      100,
		Tol:           1.0e-1,
		DerivTol:      1.0e38,
		DerivMaxIters: 30,
		DerivCoeff:    1.0,
		LinearSolver:  "naive, colamd, pivot factor, 1.e0",
		Method:        "ms, 0.2",
	}
}

// ControlVars are the control-data counters; the blade-related ones are
// derived by scanning the emitted fragment files.
type ControlVars struct {
	BladeNodes       int
	BladeBodies      int
	Beams            int
	AeroBeams        int
	RotorStaticNodes int
	RotorDynBodies   int
	Forces           int
	JointsRotor      int
	JointsBladeYoke  int
}

// MainOptions configures WriteMain beyond the rotor outputs.
type MainOptions struct {
	Sim           SimParams
	ThetaCollDeg  float64
	C81Pairs      [][2]string // airfoil name, relative path
	ExtraIncludes []string    // emitted before the blade includes
	ExtraElements []string    // emitted inside the elements block
}

// DefaultMainOptions returns the stock settings with a 5 degree collective.
func DefaultMainOptions() MainOptions {
	return MainOptions{Sim: DefaultSimParams(), ThetaCollDeg: 5.0}
}

func countTokenLines(path, token string) int {
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()
	n := 0
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		if strings.Contains(sc.Text(), token) {
			n++
		}
	}
	return n
}

func scanBladeCounts(routs []RotorOut) ControlVars {
	var cv ControlVars
	for _, r := range routs {
		cv.BladeNodes += countTokenLines(filepath.Join(r.OutDir, "blade.nod"), "structural:")
		cv.BladeBodies += countTokenLines(filepath.Join(r.OutDir, "blade.body"), "body:")
		cv.Beams += countTokenLines(filepath.Join(r.OutDir, "blade.beam"), "beam3:")
		cv.AeroBeams += countTokenLines(filepath.Join(r.OutDir, "blade.aerobeam"), "aerodynamic beam3:")
	}
	return cv
}

func relInclude(fromDir, toPath string) string {
	rel, err := filepath.Rel(fromDir, toPath)
	if err != nil {
		rel = toPath
	}
	return filepath.ToSlash(filepath.Clean(rel))
}

// WriteMain assembles main.mbd under projectDir from the per-rotor fragment
// files and returns its path. Counters in the control data block are scanned
// from the fragments so the file stays consistent with what was emitted.
func WriteMain(projectDir string, routs []RotorOut, opts MainOptions) (string, error) {
	if err := os.MkdirAll(projectDir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", projectDir, err)
	}
	sim := opts.Sim
	if sim == (SimParams{}) {
		sim = DefaultSimParams()
	}

	cv := scanBladeCounts(routs)

	var lines []string
	add := func(ls ...string) { lines = append(lines, ls...) }

	add(
		"begin: data;",
		"    problem: initial value;",
		"end: data;",
		"",
	)

	add(
		"begin: initial value;",
		fmt.Sprintf("    time step: %s;", e6(sim.TimeStep)),
		fmt.Sprintf("    initial time: %.6f;", sim.T0),
		fmt.Sprintf("    final time: %.6f ;", sim.TEnd),
		fmt.Sprintf("    max iterations: %d;", sim.MaxIters),
		fmt.Sprintf("    tolerance: %s;", e6(sim.Tol)),
		fmt.Sprintf("    derivatives tolerance: %s;", e6(sim.DerivTol)),
		fmt.Sprintf("    derivatives max iterations: %d;", sim.DerivMaxIters),
		fmt.Sprintf("    derivatives coefficient: %s;", e6(sim.DerivCoeff)),
		fmt.Sprintf("    linear solver: %s;", sim.LinearSolver),
		fmt.Sprintf("    method: %s;", sim.Method),
		"    #output: residual;",
		"    output: counter;",
		"    /*",
		"    eigenanalysis: 0.10000,",
		"        output matrices,",
		"        output eigenvectors,",
		"        output geometry,",
		"        upper frequency limit, 400,",
		"        lower frequency limit, 1,",
		"        use lapack;*/",
		"end: initial value;",
		"",
	)

	add(
		"# CONTROL DATA SECTION",
		"begin: control data;",
		fmt.Sprintf("set: const integer num_blade        = %d;      # blade structural nodes (auto)", cv.BladeNodes),
		fmt.Sprintf("set: const integer num_blade_dynamic= %d;     # blade bodies (auto)", cv.BladeBodies),
		fmt.Sprintf("set: const integer num_beam         = %d;             # blade beams (auto)", cv.Beams),
		fmt.Sprintf("set: const integer num_aerobeam     = %d;         # blade aerodynamic beams (auto)", cv.AeroBeams),
		fmt.Sprintf("set: const integer num_rotor        = %d;   # rotor static nodes (TBD)", cv.RotorStaticNodes),
		fmt.Sprintf("set: const integer num_rotor_dynamic= %d; # yoke/motor bodies (TBD)", cv.RotorDynBodies),
		fmt.Sprintf("set: const integer num_force        = %d;            # external forces (TBD)", cv.Forces),
		fmt.Sprintf("set: const integer num_joint_rotor  = %d;     # rotor joints (TBD)", cv.JointsRotor),
		fmt.Sprintf("set: const integer num_joint_by     = %d;# blade-yoke joints (TBD)", cv.JointsBladeYoke),
		"",
		"    structural nodes:",
		"        num_blade +              # Blade nodes",
		"        num_rotor                # Rotor static nodes",
		"        ;",
		"    rigid bodies:",
		"        num_blade_dynamic +      # Blade bodies",
		"        num_rotor_dynamic        # Yoke/Motor bodies",
		"        ;",
		"    aerodynamic elements:",
		"        num_aerobeam             # Blade aerodynamic beams",
		"        ;",
		"    forces: num_force;",
		"",
		"    beams:",
		"        num_beam +               # Blade Beams",
		"        ;",
		"    joints:",
		"        num_blade +              # Connection Blade-Yoke (TBD)",
		"        num_rotor                # Rotor joint (TBD)",
		"        ;",
		"    inertia: 1;",
		"    air properties;",
		"    gravity;",
		"    induced velocity elements:+1",
		"    ;",
		"    output results: netcdf;",
		"    default output: reference frames;",
		"    default orientation: orientation vector;",
		"    print: equation description;",
		"end: control data;",
		"",
	)

	if len(opts.C81Pairs) > 0 {
		for _, pair := range opts.C81Pairs {
			add(fmt.Sprintf("c81 data: %s, %q;", pair[0], pair[1]))
		}
		add("")
	}

	add(
		fmt.Sprintf("set: const real THETA_COLL =  %.1f; # input collective angle in deg", opts.ThetaCollDeg),
		"set: const real COLLECTIVE_VERTICAL = 0.000000244350555*THETA_COLL^3 + "+
			"0.000061328077169*THETA_COLL^2 - 0.004217073403049*THETA_COLL + 0.000000119676574;",
		"",
		"#defining nodes data",
		"# Reference frame ",
		`include: "GCS.ref";`,
		"",
		"# Blades",
	)

	if len(opts.ExtraIncludes) > 0 {
		add(opts.ExtraIncludes...)
		add("")
	}

	for _, r := range routs {
		add(fmt.Sprintf("include: %q;", relInclude(projectDir, filepath.Join(r.OutDir, "blade.ref"))))
	}
	add("", "begin: nodes;", "")

	for _, r := range routs {
		add(fmt.Sprintf("    include: %q;", relInclude(projectDir, filepath.Join(r.OutDir, "blade.nod"))))
	}
	add("", "end: nodes;", "", "begin: elements;", "")

	for _, r := range routs {
		add(fmt.Sprintf("    # --- %s ---", r.Name))
		add(fmt.Sprintf("    include: %q;", relInclude(projectDir, filepath.Join(r.OutDir, "blade.beam"))))
		add(fmt.Sprintf("    include: %q;", relInclude(projectDir, filepath.Join(r.OutDir, "blade.body"))))
		if aero := filepath.Join(r.OutDir, "blade.aerobeam"); fileExists(aero) {
			add(fmt.Sprintf("    include: %q;", relInclude(projectDir, aero)))
		}
		add("")
	}

	add(
		"    air properties: 1.225, 340.0,",
		"        -1., 0., 0., const,0;",
		"        #cosine, 15., pi/10, WIND_SPEED/2, half, 0.;",
		"",
	)

	if len(opts.ExtraElements) > 0 {
		for _, ln := range opts.ExtraElements {
			add(strings.TrimRight(ln, " \t"))
		}
		add("")
	}

	add("end: elements;", "")

	outPath := filepath.Join(projectDir, "main.mbd")
	if err := os.WriteFile(outPath, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", outPath, err)
	}
	return outPath, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
