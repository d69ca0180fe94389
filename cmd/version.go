package cmd

import (
	"fmt"

	"github.com/alexiusacademia/gorotor/internal/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of gorotor",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gorotor v%s\n", version.Version)
		fmt.Println("Rotor Blade Model Generator")
		fmt.Println("MBDyn-style beam models from tabulated blade properties")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
