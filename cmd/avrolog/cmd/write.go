package cmd

import (
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ssargent/avrolog/pkg/catalog"
	"github.com/ssargent/avrolog/pkg/codec"
	"github.com/ssargent/avrolog/pkg/container"
	"github.com/ssargent/avrolog/pkg/fake"
)

// writeCmd represents the write command
var writeCmd = &cobra.Command{
	Use:   "write",
	Short: "Write a pair of timestamped container files",
	Long: `Write two container files named by the current timestamp, both holding
the same generated records and sharing one sync marker.

The .real.avro file is written in a single pass with one record per block.
The .fake.avro file starts as a header-only container and then grows by
repeated appends, one block at a time, the way a long-lived container
accumulates data. Both files decode identically.

Both files are registered in the marker catalog so later appends can look
the sync marker up instead of re-reading the header.

Example:
  avrolog write --count 128 --seed 42`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		catalogDir, _ := cmd.Flags().GetString("catalog-dir")
		count, _ := cmd.Flags().GetInt("count")
		seed, _ := cmd.Flags().GetInt64("seed")

		codecName := container.CodecNull
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg != nil {
			dataDir = flagOrConfigString(cmd, "data-dir", cfg.DataDir)
			catalogDir = flagOrConfigString(cmd, "catalog-dir", cfg.CatalogDir)
			if cfg.Defaults.Codec != "" {
				codecName = cfg.Defaults.Codec
			}
		}

		schema := fake.UserSchema()
		records := fake.New(seed).Records(count)

		marker, err := container.NewSyncMarker()
		if err != nil {
			return err
		}
		schemaJSON, err := schema.JSON()
		if err != nil {
			return err
		}

		cat, err := catalog.Open(catalogDir)
		if err != nil {
			return err
		}
		defer cat.Close()

		name := time.Now().Format("2006-01-02T15:04:05")
		realPath := filepath.Clean(filepath.Join(dataDir, name+".real.avro"))
		fakePath := filepath.Clean(filepath.Join(dataDir, name+".fake.avro"))

		// Single pass, one record per block.
		if err := container.WriteAll(container.WriterConfig{
			Path:        realPath,
			Schema:      schema,
			Marker:      marker,
			Codec:       codecName,
			Granularity: container.PerRecord,
		}, records); err != nil {
			return err
		}
		if _, err := cat.Register(realPath, marker, schemaJSON, codecName); err != nil {
			return err
		}

		// Header only, then grown by appends.
		if err := container.WriteAll(container.WriterConfig{
			Path:   fakePath,
			Schema: schema,
			Marker: marker,
			Codec:  codecName,
		}, nil); err != nil {
			return err
		}
		if _, err := cat.Register(fakePath, marker, schemaJSON, codecName); err != nil {
			return err
		}

		appender, err := container.NewAppender(container.AppenderConfig{
			Path:   fakePath,
			Schema: schema,
			Marker: marker,
		})
		if err != nil {
			return err
		}
		for _, rec := range records {
			if err := appender.AppendRecords([]codec.Record{rec}); err != nil {
				_ = appender.Close()
				return err
			}
		}
		if err := appender.Close(); err != nil {
			return err
		}

		cmd.Printf("Wrote %d records to %s and %s (marker %s)\n", count, realPath, fakePath, marker.Hex())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(writeCmd)
	writeCmd.Flags().Int("count", 128, "Number of records to generate")
	writeCmd.Flags().Int64("seed", 1, "Seed for the record generator")
}
