package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/gorotor/internal/blade"
	"github.com/alexiusacademia/gorotor/internal/diagram"
	"github.com/alexiusacademia/gorotor/internal/mbd"
	"github.com/alexiusacademia/gorotor/internal/tables"
)

var (
	secTipPath  string
	secAeroPath string
	secName     string
	secStart    float64
	secErrTol   float64
	secJumpTol  float64
	secMaxElems int
	secMaxDr    float64
	secMinDr    float64
	secChordEps float64
	secAscii    bool
	secDiagram  string
	secOutDir   string
)

var sectionsCmd = &cobra.Command{
	Use:   "sections",
	Short: "Select control sections from blade property tables",
	Long: `Run the adaptive control section selection on a structural table and
an optional aerodynamic planform table, then print the audit report.

Sections are seeded at the blade start and end, pinned at stiffness jumps
and chord vertices, capped in span length, refined where linear
interpolation between sections misses the raw data, and merged where
intervals fall below the minimum span.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSections()
	},
}

func init() {
	sectionsCmd.Flags().StringVar(&secTipPath, "tip", "", "Path to the structural .tip table (required)")
	sectionsCmd.Flags().StringVar(&secAeroPath, "aero", "", "Path to the aerodynamic .dat table")
	sectionsCmd.Flags().StringVar(&secName, "name", "BLADE", "Blade name used in the report")
	addTuningFlags(sectionsCmd, &secStart, &secErrTol, &secJumpTol, &secMaxElems, &secMaxDr, &secMinDr, &secChordEps)
	sectionsCmd.Flags().BoolVar(&secAscii, "ascii", false, "Print ASCII spanwise profiles")
	sectionsCmd.Flags().StringVar(&secDiagram, "diagram", "", "Export a span diagram image (png/svg/pdf)")
	sectionsCmd.Flags().StringVar(&secOutDir, "output", "", "Also write blade.report.txt into this directory")
	sectionsCmd.MarkFlagRequired("tip")

	rootCmd.AddCommand(sectionsCmd)
}

func runSections() error {
	cfg := selectionConfig(secStart, secErrTol, secJumpTol, secMaxElems, secMaxDr, secMinDr, secChordEps)
	if err := cfg.Validate(); err != nil {
		return err
	}

	tip, err := tables.LoadTip(secTipPath)
	if err != nil {
		return err
	}
	structural, err := tip.Signals()
	if err != nil {
		return err
	}

	var aeroSignals map[string]blade.Series
	if secAeroPath != "" {
		aero, err := tables.LoadAero(secAeroPath)
		if err != nil {
			return err
		}
		for _, w := range aero.Warnings {
			fmt.Printf("[WARN] %s\n", w)
		}
		aeroSignals, err = aero.Signals()
		if err != nil {
			return err
		}
	}

	sections, report, err := blade.Select(structural, aeroSignals, cfg)
	if err != nil {
		return err
	}

	summary := []string{
		fmt.Sprintf("Sections  K = %d", len(sections)),
		fmt.Sprintf("Elements    = %d", report.Elems),
		fmt.Sprintf("Nodes       = %d", report.Nodes),
		fmt.Sprintf("Start used  = %.6f", report.StartUsed),
	}
	fmt.Println(diagram.DrawSummaryBox("SECTION SELECTION - "+secName, summary))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  r\tdr\treasons")
	for i, r := range sections {
		dr := "-"
		if i > 0 {
			dr = fmt.Sprintf("%.6f", r-sections[i-1])
		}
		tags := make([]string, 0, len(report.Reasons[r]))
		for _, reason := range report.Reasons[r] {
			tags = append(tags, reason.String())
		}
		fmt.Fprintf(w, "  %.6f\t%s\t%s\n", r, dr, strings.Join(tags, ", "))
	}
	w.Flush()

	if len(report.Warnings) > 0 {
		fmt.Println("\n  Warnings:")
		for _, warn := range report.Warnings {
			fmt.Printf("    - %s\n", warn)
		}
	}

	if secAscii {
		all := make(map[string]blade.Series, len(structural)+len(aeroSignals))
		for n, s := range structural {
			all[n] = s
		}
		for n, s := range aeroSignals {
			all[n] = s
		}
		fmt.Println()
		fmt.Print(diagram.ProfileAll(all, sections, 70, 10))
	}

	if secDiagram != "" {
		grid, err := blade.BuildGrid(sections)
		if err != nil {
			return err
		}
		all := make(map[string]blade.Series, len(structural)+len(aeroSignals))
		for n, s := range structural {
			all[n] = s
		}
		for n, s := range aeroSignals {
			all[n] = s
		}
		if err := diagram.ExportSpanDiagram(all, sections, grid.EvalPoints, secDiagram); err != nil {
			return err
		}
		fmt.Printf("\n  Span diagram written to %s\n", secDiagram)
	}

	if secOutDir != "" {
		if err := os.MkdirAll(secOutDir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
		path := filepath.Join(secOutDir, "blade.report.txt")
		if err := mbd.WriteReport(path, secName, cfg, 0.33, report, nil); err != nil {
			return err
		}
		fmt.Printf("  Report written to %s\n", path)
	}
	return nil
}
