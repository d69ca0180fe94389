package cmd

import (
	"fmt"
	"os"

	"github.com/alexiusacademia/gorotor/internal/version"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gorotor",
	Short: "Rotor Blade Model Generator",
	Long: `gorotor - Go Rotor Blade Model Generator

A CLI tool that turns tabulated rotor blade properties into multibody
dynamics beam models.

This tool helps rotor dynamicists:
  - Select control sections adaptively from structural and aero tables
  - Discretize the blade into beam3 elements with Gauss stations
  - Emit MBDyn-style reference, node, beam, body and aero panel files
  - Assemble a project-level main input file from multi-rotor XML

Sections are placed where the data demands them: discontinuities, planform
vertices and interpolation-error hot spots.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println()
		fmt.Println("  ╔═══════════════════════════════════════════════════════════╗")
		fmt.Println("  ║                                                           ║")
		fmt.Printf("  ║   gorotor v%-47s║\n", version.Version)
		fmt.Println("  ║   Go Rotor Blade Model Generator                          ║")
		fmt.Println("  ║   Alexius S. Academia ©  2025                             ║")
		fmt.Println("  ║                                                           ║")
		fmt.Println("  ╚═══════════════════════════════════════════════════════════╝")
		fmt.Println()
		fmt.Println("  A CLI tool that turns tabulated rotor blade properties into")
		fmt.Println("  multibody dynamics beam models.")
		fmt.Println()
		fmt.Println("  Features:")
		fmt.Println("    • Adaptive control section selection with audit reports")
		fmt.Println("    • End-mid-end beam grids with two-point Gauss stations")
		fmt.Println("    • MBDyn-style reference, beam, body and aero panel output")
		fmt.Println("    • Multi-rotor XML project assembly")
		fmt.Println()
		fmt.Println("  Use 'gorotor --help' to see available commands.")
		fmt.Println()
		fmt.Println("  ─────────────────────────────────────────────────────────────")
		fmt.Printf("  Copyright © %s %s. All rights reserved.\n", version.Year, version.Author)
		fmt.Println()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
