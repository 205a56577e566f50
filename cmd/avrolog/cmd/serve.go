package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/avrolog/pkg/api"
	"github.com/ssargent/avrolog/pkg/catalog"
	"github.com/ssargent/avrolog/pkg/container"
	"github.com/ssargent/avrolog/pkg/fake"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the avrolog REST API server.

The server lists registered containers, serves their decoded records, and
appends new records using the sync markers held in the catalog.

Examples:
  avrolog serve --api-key=mysecretkey --port=8080
  avrolog serve --api-key=mysecretkey --data-dir=./data --strict`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")
		apiKey, _ := cmd.Flags().GetString("api-key")
		dataDir, _ := cmd.Flags().GetString("data-dir")
		catalogDir, _ := cmd.Flags().GetString("catalog-dir")
		batchSize, _ := cmd.Flags().GetInt("batch-size")
		strict, _ := cmd.Flags().GetBool("strict")

		// A config written by `avrolog init` fills in whatever the command
		// line left at its default, the API key above all.
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg != nil {
			port = flagOrConfigInt(cmd, "port", cfg.Port)
			dataDir = flagOrConfigString(cmd, "data-dir", cfg.DataDir)
			catalogDir = flagOrConfigString(cmd, "catalog-dir", cfg.CatalogDir)
			batchSize = flagOrConfigInt(cmd, "batch-size", cfg.Defaults.BatchSize)
			strict = flagOrConfigBool(cmd, "strict", cfg.Defaults.StrictMarkers)
			if apiKey == "" {
				apiKey = cfg.Security.APIKey
			}
		}

		if apiKey == "" {
			cmd.Println("Error: an API key is required (--api-key or avrolog init)")
			os.Exit(1)
		}

		if err := os.MkdirAll(dataDir, 0750); err != nil {
			return err
		}

		cat, err := catalog.Open(catalogDir)
		if err != nil {
			return err
		}
		defer cat.Close()

		svc := api.NewService(dataDir, cat, fake.UserSchema(), container.Batch(batchSize), strict)
		return api.StartServer(svc, api.ServerConfig{
			Port:          port,
			APIKey:        apiKey,
			DataDir:       dataDir,
			CatalogDir:    catalogDir,
			StrictMarkers: strict,
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Int("port", 8080, "Port for the REST API server")
	serveCmd.Flags().String("api-key", "", "API key clients must present")
	serveCmd.Flags().Int("batch-size", 1, "Records per appended block (0 = single block)")
	serveCmd.Flags().Bool("strict", false, "Fail reads on sync marker mismatches")
}
