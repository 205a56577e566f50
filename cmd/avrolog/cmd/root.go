package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "avrolog",
	Short: "avrolog - appendable Avro object container files",
	Long: `avrolog writes Avro object container files with hand-rolled binary
encoding and extends existing containers by appending framed blocks,
without re-reading or rewriting prior content.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("data-dir", "d", "./data", "Data directory for container files")
	rootCmd.PersistentFlags().String("catalog-dir", "./data/catalog", "Directory for the marker catalog")
	rootCmd.PersistentFlags().String("config", "", "Configuration file (default: the path avrolog init writes)")
}
