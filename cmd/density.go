package cmd

import (
	"fmt"
	"io"

	"github.com/KaramelBytes/atmscope/internal/density"
	"github.com/KaramelBytes/atmscope/internal/report"
	"github.com/KaramelBytes/atmscope/internal/utils"
	"github.com/spf13/cobra"
)

var (
	denOutputDir string
	denXLSX      string
	denGeoJSON   string
	denZipTop    int
)

var densityCmd = &cobra.Command{
	Use:   "density",
	Short: "Report ATM density by ward and ZIP code and write a heat map",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Starting ATM Density Analysis...")

		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()
		ctx := cmd.Context()
		if notLoaded(cmd, sess) {
			return nil
		}
		recs, err := sess.ForDensity(ctx)
		if err != nil {
			return err
		}
		conv, err := newConverter()
		if err != nil {
			return err
		}
		located, st := conv.Locate(recs)
		fmt.Fprintf(out, "Converted %d of %d records from %s\n", st.After, st.Before, conv.Projection().Name())
		if st.Dropped() > 0 {
			fmt.Fprintf(out, "⚠ %d records with invalid coordinates were skipped\n", st.Dropped())
		}
		if len(located) == 0 {
			fmt.Fprintln(out, "No ATM records with valid coordinates, ward and ZIP code.")
			return nil
		}

		wards := density.ByKey(located, density.Ward)
		zips := density.ByKey(located, density.ZipCode)
		topN := cfg.ZipTopN
		if cmd.Flags().Changed("zip-top") && denZipTop > 0 {
			topN = denZipTop
		}
		report.WardTable(out, wards)
		report.ZipTable(out, zips, topN)
		report.CrosstabTable(out, "ATM TYPES BY WARD", density.WardCrosstab(located, cfg.CrosstabRows))
		report.CrosstabTable(out, fmt.Sprintf("ATM TYPES BY ZIP CODE (Top %d ZIPs)", cfg.CrosstabRows), density.ZipCrosstab(located, cfg.CrosstabRows))

		mapPath, err := outputPath(denOutputDir, report.DensityMapFile)
		if err != nil {
			return err
		}
		opt := report.MapOptions{HeatRadius: cfg.HeatRadius, HeatBlur: cfg.HeatBlur}
		if err := utils.WriteWith(mapPath, func(w io.Writer) error {
			return report.DensityMap(w, located, wards, opt)
		}); err != nil {
			return err
		}
		fmt.Fprintf(out, "\n✓ Density heatmap saved as '%s'\n", mapPath)

		summary := density.Summarize(len(located), wards, zips)
		report.SummaryText(out, summary)

		artifacts := []string{fmt.Sprintf("- %s: Interactive density map", mapPath)}
		if denXLSX != "" {
			if err := report.WriteWorkbook(denXLSX, wards, zips, summary); err != nil {
				return err
			}
			artifacts = append(artifacts, fmt.Sprintf("- %s: Ward and ZIP workbook", denXLSX))
		}
		if denGeoJSON != "" {
			if err := report.WriteGeoJSON(denGeoJSON, located, wards); err != nil {
				return err
			}
			artifacts = append(artifacts, fmt.Sprintf("- %s: GeoJSON of ATM locations", denGeoJSON))
		}
		writeArtifacts(out, artifacts)
		log.Info("density analysis complete", "records", len(located), "wards", len(wards), "zips", len(zips))
		return nil
	},
}

func writeArtifacts(out io.Writer, lines []string) {
	report.Banner(out, "Analysis complete! Check the generated files:")
	for _, l := range lines {
		fmt.Fprintln(out, l)
	}
}

func init() {
	rootCmd.AddCommand(densityCmd)
	densityCmd.Flags().StringVarP(&denOutputDir, "output-dir", "o", "", "directory for the HTML map (default from config)")
	densityCmd.Flags().StringVar(&denXLSX, "xlsx", "", "also export ward and ZIP tables to this .xlsx file")
	densityCmd.Flags().StringVar(&denGeoJSON, "geojson", "", "also export located ATMs to this GeoJSON file")
	densityCmd.Flags().IntVar(&denZipTop, "zip-top", 0, "number of ZIP codes to list (default from config)")
}
