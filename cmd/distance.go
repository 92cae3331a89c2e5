package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/KaramelBytes/atmscope/internal/atm"
	"github.com/KaramelBytes/atmscope/internal/distance"
	"github.com/KaramelBytes/atmscope/internal/geo"
	"github.com/KaramelBytes/atmscope/internal/report"
	"github.com/KaramelBytes/atmscope/internal/store"
	"github.com/KaramelBytes/atmscope/internal/utils"
	"github.com/paulmach/orb"
	"github.com/spf13/cobra"
)

var distOutputDir string

var distanceCmd = &cobra.Command{
	Use:   "distance <name>",
	Short: "Map every ATM with the given name and report distances between them",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()
		if notLoaded(cmd, sess) {
			return nil
		}
		conv, err := newConverter()
		if err != nil {
			return err
		}
		m := &nameMapper{sess: sess, conv: conv, out: cmd.OutOrStdout(), dir: distOutputDir}
		return m.run(cmd.Context(), args[0])
	},
}

// nameMapper runs the per-name analysis: fetch, convert, distance stats, map.
type nameMapper struct {
	sess *store.Session
	conv *geo.Converter
	out  io.Writer
	dir  string
}

func (m *nameMapper) run(ctx context.Context, name string) error {
	out := m.out
	recs, err := m.sess.ByName(ctx, name)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Fprintln(out, "No matching ATMs found.")
		return nil
	}
	fmt.Fprintf(out, "Found %d '%s' ATMs.\n", len(recs), name)

	planar := make([]orb.Point, len(recs))
	for i, r := range recs {
		planar[i] = r.Planar()
	}
	report.ExtentText(out, "Coordinate ranges before conversion:", "X", "Y", geo.Describe(planar))
	located, st := m.conv.Locate(recs)
	report.ExtentText(out, "Coordinate ranges after conversion:", "longitude", "latitude", geo.Describe(atm.Points(located)))
	if st.Dropped() > 0 {
		fmt.Fprintf(out, "⚠ %d of %d ATMs have invalid coordinates and were skipped\n", st.Dropped(), st.Before)
	}

	switch len(located) {
	case 0:
		fmt.Fprintln(out, "Not enough valid ATMs to calculate distances.")
		return nil
	case 1:
		fmt.Fprintln(out, "Not enough valid ATMs to calculate distances.")
		fmt.Fprintln(out, "Creating map with single ATM location...")
	default:
		res := distance.Analyze(atm.Points(located), log)
		report.DistanceText(out, res)
	}

	path, err := outputPath(m.dir, report.MapFilename(name))
	if err != nil {
		return err
	}
	if err := utils.WriteWith(path, func(w io.Writer) error {
		return report.NameMap(w, name, located)
	}); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n✓ Map saved as '%s'. Open it in a browser to view.\n", path)
	log.Info("name map written", "name", name, "atms", len(located), "path", path)
	return nil
}

func init() {
	rootCmd.AddCommand(distanceCmd)
	distanceCmd.Flags().StringVarP(&distOutputDir, "output-dir", "o", "", "directory for the HTML map (default from config)")
}
