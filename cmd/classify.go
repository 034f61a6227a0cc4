package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/eqsource/internal/model"
	"github.com/sells-group/eqsource/internal/source"
)

var (
	classifyLat          string
	classifyLon          string
	classifyDepth        string
	classifyLand         string
	classifyFault        string
	classifyOutput       string
	classifyAllDistances bool
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Attribute the source of one earthquake",
	Long:  "Determines whether the epicenter is on land or at sea, finds the nearest fault segment and prints the attributed source.",
	Example: `  eqsource classify --lat -3.57 --lon 100.56 --depth 10 \
    --land data/land.shp --fault data/faults.zip --output text`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkOutputFormat(classifyOutput); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Layers.LoadTimeout())
		defer cancel()

		cache := newLayerCache(cfg)
		var (
			land   *model.LandLayer
			faults *model.FaultLayer
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			land, err = cache.Land(gctx, orDefault(classifyLand, cfg.Layers.Land))
			return err
		})
		g.Go(func() error {
			var err error
			faults, err = cache.Faults(gctx, orDefault(classifyFault, cfg.Layers.Fault))
			return err
		})
		// Domain errors are returned as-is so callers can match them.
		if err := g.Wait(); err != nil {
			return err
		}

		ep := model.ParseEpicenter(classifyLat, classifyLon, classifyDepth)
		res, err := source.NewClassifier(land, faults).Classify(cmd.Context(), ep)
		if err != nil {
			return err
		}

		return renderClassification(cmd.OutOrStdout(), res, classifyOutput, classifyAllDistances)
	},
}

func checkOutputFormat(format string) error {
	switch format {
	case "json", "yaml", "text":
		return nil
	default:
		return eris.Errorf("classify: unknown output format %q (want json, yaml or text)", format)
	}
}

// renderClassification writes res to w in the given format. The per-fault
// distance table is included only when all is set.
func renderClassification(w io.Writer, res *source.Classification, format string, all bool) error {
	out := *res
	if !all {
		out.Distances = nil
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(out), "classify: encode json")
	case "yaml":
		b, err := yaml.Marshal(out)
		if err != nil {
			return eris.Wrap(err, "classify: encode yaml")
		}
		_, err = w.Write(b)
		return err
	default:
		formatText(w, out)
		return nil
	}
}

func formatText(out io.Writer, res source.Classification) {
	_, _ = fmt.Fprintln(out, res.Summary())
	if res.Nearest != nil {
		_, _ = fmt.Fprintf(out, "nearest fault: %s (%.2f km), depth %.1f km\n",
			res.Nearest.Name, res.Nearest.DistanceKM, res.DepthKM)
	}
	if len(res.Distances) == 0 {
		return
	}

	_, _ = fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSEGMENT\tTYPE\tMMAX\tSLIP_RATE\tDISTANCE_KM")
	_, _ = fmt.Fprintln(w, "--\t-------\t----\t----\t---------\t-----------")
	for _, d := range res.Distances {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%.1f\t%.2f\t%.2f\n",
			d.ID, d.Name, d.Type, d.MaxMagnitude, d.SlipRate, d.DistanceKM)
	}
	_ = w.Flush()
}

func init() {
	f := classifyCmd.Flags()
	f.StringVar(&classifyLat, "lat", "", "epicenter latitude in decimal degrees")
	f.StringVar(&classifyLon, "lon", "", "epicenter longitude in decimal degrees")
	f.StringVar(&classifyDepth, "depth", "", "focal depth in km")
	f.StringVar(&classifyLand, "land", "", "land layer path or URL (default from config)")
	f.StringVar(&classifyFault, "fault", "", "fault layer path or URL (default from config)")
	f.StringVarP(&classifyOutput, "output", "o", "text", "output format: json, yaml or text")
	f.BoolVar(&classifyAllDistances, "all-distances", false, "include the distance to every fault")
	rootCmd.AddCommand(classifyCmd)
}
