package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/eqsource/internal/geo"
	"github.com/sells-group/eqsource/internal/model"
)

var (
	layersKind    string
	layersPreview int
)

var layersCmd = &cobra.Command{
	Use:   "layers [ref]",
	Short: "Inspect a land or fault layer",
	Long:  "Loads a layer the same way classify does and reports its source CRS, feature count, extent and a WKT preview of the first features.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Layers.LoadTimeout())
		defer cancel()

		cache := newLayerCache(cfg)
		out := cmd.OutOrStdout()

		switch layersKind {
		case "land":
			ref := cfg.Layers.Land
			if len(args) == 1 {
				ref = args[0]
			}
			land, err := cache.Land(ctx, ref)
			if err != nil {
				return eris.Wrap(err, "layers: load land")
			}
			return describeLand(out, land, layersPreview)
		case "fault":
			ref := cfg.Layers.Fault
			if len(args) == 1 {
				ref = args[0]
			}
			faults, err := cache.Faults(ctx, ref)
			if err != nil {
				return eris.Wrap(err, "layers: load faults")
			}
			return describeFaults(out, faults, layersPreview)
		default:
			return eris.Errorf("layers: unknown kind %q (want land or fault)", layersKind)
		}
	},
}

func describeLand(out io.Writer, land *model.LandLayer, preview int) error {
	gs := make([]geom.T, len(land.Polygons))
	for i, p := range land.Polygons {
		gs[i] = p
	}
	writeLayerHeader(out, land.Ref, "land", land.SourceEPSG, len(gs), gs)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tRINGS\tWKT")
	for i := 0; i < len(land.Polygons) && i < preview; i++ {
		p := land.Polygons[i]
		s, err := geo.WKT(p)
		if err != nil {
			return eris.Wrap(err, "layers: render wkt")
		}
		_, _ = fmt.Fprintf(w, "%d\t%d\t%s\n", i, p.NumLinearRings(), truncate(s, 80))
	}
	return w.Flush()
}

func describeFaults(out io.Writer, faults *model.FaultLayer, preview int) error {
	gs := make([]geom.T, len(faults.Records))
	for i, r := range faults.Records {
		gs[i] = r.Geometry
	}
	writeLayerHeader(out, faults.Ref, "fault", faults.SourceEPSG, len(gs), gs)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSEGMENT\tTYPE\tMMAX\tWKT")
	for i := 0; i < len(faults.Records) && i < preview; i++ {
		r := faults.Records[i]
		s, err := geo.WKT(r.Geometry)
		if err != nil {
			return eris.Wrap(err, "layers: render wkt")
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%.1f\t%s\n", r.ID, r.Name, r.Type, r.MaxMagnitude, truncate(s, 80))
	}
	return w.Flush()
}

func writeLayerHeader(out io.Writer, ref, kind string, sourceEPSG, count int, gs []geom.T) {
	b := geom.NewBounds(geom.XY)
	for _, g := range gs {
		b.Extend(g)
	}
	_, _ = fmt.Fprintf(out, "layer:   %s\n", ref)
	_, _ = fmt.Fprintf(out, "kind:    %s\n", kind)
	_, _ = fmt.Fprintf(out, "crs:     %s (normalized to %s)\n", geo.CRSName(sourceEPSG), geo.CRSName(geo.EPSGWGS84))
	_, _ = fmt.Fprintf(out, "count:   %d\n", count)
	if len(gs) > 0 {
		_, _ = fmt.Fprintf(out, "extent:  %.4f %.4f, %.4f %.4f\n", b.Min(0), b.Min(1), b.Max(0), b.Max(1))
	}
	_, _ = fmt.Fprintln(out)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func init() {
	layersCmd.Flags().StringVar(&layersKind, "kind", "land", "layer kind: land or fault")
	layersCmd.Flags().IntVar(&layersPreview, "preview", 3, "number of features to preview as WKT")
	rootCmd.AddCommand(layersCmd)
}
