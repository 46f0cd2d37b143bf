package commands

import (
	"fmt"
	"log/slog"

	"alamos-extract/internal/alamos"
	"alamos-extract/internal/export"

	"github.com/spf13/cobra"
)

var (
	searchVirus   *string
	searchSubtype *string
	searchRegion  *string
	searchMaxRows *int
	searchOut     *string
)

func init() {
	flags := searchCmd.Flags()
	searchVirus = flags.StringP("virus", "t", "HIV-1", fmt.Sprintf("Virus, one of %v.", alamos.Viruses.Names()))
	searchSubtype = flags.StringP("subtype", "s", "any", fmt.Sprintf("Subtype, one of %v.", alamos.Subtypes.Names()))
	searchRegion = flags.StringP("region", "r", "any", fmt.Sprintf("Genomic region, one of %v.", alamos.Regions.Names()))
	searchMaxRows = flags.IntP("max-rows", "m", 100, "Maximum number of records returned.")
	searchOut = flags.String("out", ".", "The directory the tsv file is written to.")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search [--virus <virus>] [--subtype <subtype>] [--region <region>] [--max-rows <n>]",
	Short: "Searches the sequence database and writes the matching records to a tsv file.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		virus, err := alamos.Viruses.Value(*searchVirus)
		if err != nil {
			return err
		}
		subtype, err := alamos.Subtypes.Value(*searchSubtype)
		if err != nil {
			return err
		}
		region, err := alamos.Regions.Value(*searchRegion)
		if err != nil {
			return err
		}

		result, err := session.assembler.Search(cmd.Context(), alamos.SearchQuery{
			MaxRecords: *searchMaxRows,
			Virus:      virus,
			Subtype:    subtype,
			Region:     region,
		})
		if err != nil {
			return err
		}

		path, err := export.WriteSearch(*searchOut, *searchRegion, result, session.tel)
		if err != nil {
			return err
		}

		patients := map[string]struct{}{}
		for _, r := range result.Records {
			patients[r.String("patient_id")] = struct{}{}
		}
		slog.Info("search complete", "records", result.Len(), "patients", len(patients))
		fmt.Fprintf(cmd.OutOrStdout(), "%d records of %d patients written to %s\n", result.Len(), len(patients), path)
		return nil
	},
}
