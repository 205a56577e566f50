package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ssargent/avrolog/pkg/container"
	"github.com/ssargent/avrolog/pkg/fake"
)

// readCmd represents the read command
var readCmd = &cobra.Command{
	Use:   "read <file>",
	Short: "Read a container file and print its records",
	Long: `Read a container file and print each decoded record as JSON, one per
line.

Example:
  avrolog read ./data/2026-08-31T12:00:00.real.avro`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		strict, _ := cmd.Flags().GetBool("strict")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg != nil {
			strict = flagOrConfigBool(cmd, "strict", cfg.Defaults.StrictMarkers)
		}

		reader, err := container.NewReader(container.ReaderConfig{
			Path:          filepath.Clean(args[0]),
			Schema:        fake.UserSchema(),
			StrictMarkers: strict,
		})
		if err != nil {
			return err
		}
		defer reader.Close()

		it := reader.Iterator()
		for it.Next() {
			line, err := json.Marshal(it.Record())
			if err != nil {
				return err
			}
			fmt.Println(string(line))
		}
		if err := it.Err(); err != nil {
			return err
		}
		if n := reader.Desyncs(); n > 0 {
			cmd.PrintErrf("Warning: %d blocks carried a mismatched sync marker\n", n)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(readCmd)
	readCmd.Flags().Bool("strict", false, "Fail on sync marker mismatches instead of counting them")
}
