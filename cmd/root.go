package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/eqsource/internal/config"
	"github.com/sells-group/eqsource/internal/layer"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "eqsource",
	Short: "Earthquake source attribution",
	Long:  "Classifies an earthquake epicenter as on land or at sea, finds the nearest fault segment and attributes the likely seismic source.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// newLayerCache builds a layer cache from the loaded configuration.
func newLayerCache(c *config.Config) *layer.Cache {
	f := c.Faults.Fields
	loader := layer.NewLoader(layer.Options{
		CacheDir:    c.Layers.CacheDir,
		LoadTimeout: c.Layers.LoadTimeout(),
		Fields: layer.FaultFields{
			ID:           f.ID,
			Name:         f.Name,
			Type:         f.Type,
			MaxMagnitude: f.MaxMagnitude,
			SlipRate:     f.SlipRate,
		},
	})
	return layer.NewCache(loader, layer.WithMaxEntries(c.Layers.MaxCached))
}

// orDefault returns flag when set, otherwise the configured value.
func orDefault(flag, configured string) string {
	if flag != "" {
		return flag
	}
	return configured
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
