package cmd

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/gorotor/internal/blade"
	"github.com/alexiusacademia/gorotor/internal/mbd"
	"github.com/alexiusacademia/gorotor/internal/rotors"
	"github.com/alexiusacademia/gorotor/internal/tables"
)

var (
	genRotorsXML string
	genOutDir    string
	genStart     float64
	genErrTol    float64
	genJumpTol   float64
	genMaxElems  int
	genMaxDr     float64
	genMinDr     float64
	genChordEps  float64
	genNu        float64
	genThetaColl float64
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate blade models for every rotor in an XML project",
	Long: `Generate a complete multibody model from a multi-rotor XML file.

For each rotor carrying a structural table, the tool selects control
sections, builds the beam grid and writes the blade.ref/nod/beam/body
fragments plus aero panels when the XML carries planform data. A GCS.ref
with the rotor origins and a project-level main.mbd tie it all together.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate()
	},
}

func init() {
	generateCmd.Flags().StringVar(&genRotorsXML, "rotors-xml", "", "Path to the multi-rotor XML file (required)")
	generateCmd.Flags().StringVar(&genOutDir, "out", "", "Output directory (required)")
	addTuningFlags(generateCmd, &genStart, &genErrTol, &genJumpTol, &genMaxElems, &genMaxDr, &genMinDr, &genChordEps)
	generateCmd.Flags().Float64Var(&genNu, "nu", 0.33, "Poisson ratio for the shear stiffness")
	generateCmd.Flags().Float64Var(&genThetaColl, "theta-coll", 5.0, "Collective pitch angle in degrees")
	generateCmd.MarkFlagRequired("rotors-xml")
	generateCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(generateCmd)
}

// addTuningFlags registers the section selection knobs shared by the
// generate and sections commands. A negative start means auto-detect.
func addTuningFlags(cmd *cobra.Command, start, errTol, jumpTol *float64, maxElems *int, maxDr, minDr, chordEps *float64) {
	cmd.Flags().Float64Var(start, "start", -1, "Blade start position; negative auto-detects it")
	cmd.Flags().Float64Var(errTol, "err-tol", 0.05, "Relative midpoint interpolation error tolerance")
	cmd.Flags().Float64Var(jumpTol, "jump-tol", 0.10, "Relative jump tolerance between raw stations")
	cmd.Flags().IntVar(maxElems, "max-elems", 40, "Hard cap on element count")
	cmd.Flags().Float64Var(maxDr, "max-dr", 0, "Maximum element span; 0 disables")
	cmd.Flags().Float64Var(minDr, "min-dr", 0, "Minimum element span; 0 disables")
	cmd.Flags().Float64Var(chordEps, "chord-eps", 1e-3, "Chord magnitude treated as blade start")
}

func selectionConfig(start, errTol, jumpTol float64, maxElems int, maxDr, minDr, chordEps float64) blade.Config {
	cfg := blade.Config{
		Start:    math.NaN(),
		ErrTol:   errTol,
		JumpTol:  jumpTol,
		MaxElems: maxElems,
		MaxSeg:   maxDr,
		MinSeg:   minDr,
		ChordEps: chordEps,
	}
	if start >= 0 {
		cfg.Start = start
	}
	return cfg
}

func sanitizeName(name, fallback string) string {
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	cleaned := strings.Trim(b.String(), "_")
	if cleaned == "" {
		return fallback
	}
	return cleaned
}

func runGenerate() error {
	if err := os.MkdirAll(genOutDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	rs, err := rotors.Parse(genRotorsXML)
	if err != nil {
		return fmt.Errorf("loading rotors XML %s: %w", genRotorsXML, err)
	}
	if len(rs) == 0 {
		fmt.Printf("[WARN] No rotors defined in %s\n", genRotorsXML)
	}

	if err := mbd.WriteGCS(rs, filepath.Join(genOutDir, "GCS.ref")); err != nil {
		return err
	}

	cfg := selectionConfig(genStart, genErrTol, genJumpTol, genMaxElems, genMaxDr, genMinDr, genChordEps)
	if err := cfg.Validate(); err != nil {
		return err
	}

	var routs []mbd.RotorOut
	for _, rotor := range rs {
		if rotor.TipPath == "" {
			fmt.Printf("[WARN] Rotor %d '%s' missing structural table; skipping.\n", rotor.Index, rotor.Name)
			continue
		}

		name := sanitizeName(rotor.Name, fmt.Sprintf("rotor_%d", rotor.Index))
		dir := filepath.Join(genOutDir, name)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating rotor directory: %w", err)
		}

		hasAero, err := generateBlade(rotor, name, dir, cfg)
		if err != nil {
			return fmt.Errorf("rotor %d '%s': %w", rotor.Index, rotor.Name, err)
		}

		routs = append(routs, mbd.RotorOut{
			Index:      rotor.Index,
			Name:       name,
			OutDir:     dir,
			BladeCount: maxInt(1, rotor.BladeCount),
			HasAero:    hasAero,
		})
	}

	opts := mbd.DefaultMainOptions()
	opts.ThetaCollDeg = genThetaColl
	mainPath, err := mbd.WriteMain(genOutDir, routs, opts)
	if err != nil {
		return err
	}
	fmt.Printf("Done. Outputs in: %s (%s)\n", genOutDir, mainPath)
	return nil
}

// generateBlade runs the full single-blade pipeline: section selection, grid
// construction and every emitter. It reports whether aero panels were
// written.
func generateBlade(rotor rotors.Rotor, name, dir string, cfg blade.Config) (bool, error) {
	tip, err := tables.LoadTip(rotor.TipPath)
	if err != nil {
		return false, err
	}

	structural, err := tip.Signals()
	if err != nil {
		return false, err
	}

	aeroData := rotors.BuildAeroData(rotor.AeroStart, rotor.AeroBlock)
	var aeroSignals map[string]blade.Series
	if aeroData != nil {
		aeroSignals, err = aeroData.Signals()
		if err != nil {
			return false, err
		}
	}

	sections, report, err := blade.Select(structural, aeroSignals, cfg)
	if err != nil {
		return false, err
	}

	grid, err := blade.BuildGrid(sections)
	if err != nil {
		return false, err
	}

	tipInterp, err := tip.Interpolator()
	if err != nil {
		return false, err
	}
	var aeroInterp *blade.Interpolator
	if aeroData != nil {
		aeroInterp, err = aeroData.Interpolator()
		if err != nil {
			return false, err
		}
	}
	grid.AttachInterpolators(tipInterp, aeroInterp)

	ySign := rotors.YSign(rotor.Direction)

	if err := mbd.WriteRefs(grid, name, filepath.Join(dir, "blade.ref"), ySign); err != nil {
		return false, err
	}
	if err := mbd.WriteNodes(grid, name, filepath.Join(dir, "blade.nod")); err != nil {
		return false, err
	}
	if err := mbd.WriteBeams(grid, name, genNu, filepath.Join(dir, "blade.beam"), ySign); err != nil {
		return false, err
	}
	if _, err := mbd.WriteBodies(grid, name, filepath.Join(dir, "blade.body")); err != nil {
		return false, err
	}
	if err := mbd.WriteAeroRefs(grid, name, filepath.Join(dir, "blade_aero.ref")); err != nil {
		return false, err
	}
	hasAero := false
	if aeroInterp != nil {
		if err := mbd.WriteAeroBeams(grid, name, filepath.Join(dir, "blade.aerobeam")); err != nil {
			return false, err
		}
		hasAero = true
	}

	extra := []string{
		fmt.Sprintf("rotor_index=%d", rotor.Index),
		fmt.Sprintf("blade_count=%d", rotor.BladeCount),
		fmt.Sprintf("direction=%s", rotor.Direction),
	}
	if err := mbd.WriteReport(filepath.Join(dir, "blade.report.txt"), name, cfg, genNu, report, extra); err != nil {
		return false, err
	}
	return hasAero, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
