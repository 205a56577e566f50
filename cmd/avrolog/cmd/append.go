package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ssargent/avrolog/pkg/catalog"
	"github.com/ssargent/avrolog/pkg/container"
	"github.com/ssargent/avrolog/pkg/fake"
)

// appendCmd represents the append command
var appendCmd = &cobra.Command{
	Use:   "append <file>",
	Short: "Append generated records to an existing container",
	Long: `Append generated records to an existing container file without reading
it. The sync marker comes from the catalog entry registered when the file
was written, or from --marker.

The marker must equal the one in the file's header; the appender trusts
the caller on this and never verifies it against the file.

Examples:
  avrolog append ./data/2026-08-31T12:00:00.fake.avro --count 3
  avrolog append mydata.avro --marker 30313233343536373839616263646566`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		catalogDir, _ := cmd.Flags().GetString("catalog-dir")
		count, _ := cmd.Flags().GetInt("count")
		seed, _ := cmd.Flags().GetInt64("seed")
		batchSize, _ := cmd.Flags().GetInt("batch-size")
		markerHex, _ := cmd.Flags().GetString("marker")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg != nil {
			catalogDir = flagOrConfigString(cmd, "catalog-dir", cfg.CatalogDir)
			batchSize = flagOrConfigInt(cmd, "batch-size", cfg.Defaults.BatchSize)
		}

		path := filepath.Clean(args[0])

		var marker container.SyncMarker
		if markerHex != "" {
			m, err := container.MarkerFromHex(markerHex)
			if err != nil {
				return err
			}
			marker = m
		} else {
			cat, err := catalog.Open(catalogDir)
			if err != nil {
				return err
			}
			entry, err := cat.Lookup(path)
			if err != nil {
				_ = cat.Close()
				return fmt.Errorf("no catalog entry for %s (pass --marker to append anyway): %w", path, err)
			}
			if err := cat.Close(); err != nil {
				return err
			}
			m, err := entry.SyncMarker()
			if err != nil {
				return err
			}
			marker = m
		}

		records := fake.New(seed).Records(count)
		if err := container.AppendAll(container.AppenderConfig{
			Path:        path,
			Schema:      fake.UserSchema(),
			Marker:      marker,
			Granularity: container.Batch(batchSize),
		}, records); err != nil {
			return err
		}

		cmd.Printf("Appended %d records to %s\n", count, path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(appendCmd)
	appendCmd.Flags().Int("count", 3, "Number of records to generate and append")
	appendCmd.Flags().Int64("seed", 1, "Seed for the record generator")
	appendCmd.Flags().Int("batch-size", 1, "Records per appended block (0 = single block)")
	appendCmd.Flags().String("marker", "", "Sync marker hex, overriding the catalog")
}
