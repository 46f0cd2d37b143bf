package commands

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var patientCode *string

func init() {
	patientCode = patientCmd.Flags().String("code", "", "The display code of the patient.")
	rootCmd.AddCommand(patientCmd)
}

var patientCmd = &cobra.Command{
	Use:   "patient <patient_id> [--code <code>]",
	Short: "Extracts a single patient and prints its description and accession timeline.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("patient id %q is not an integer", args[0])
		}

		patient, err := session.assembler.AssemblePatient(cmd.Context(), id, *patientCode)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fields := table.NewWriter()
		fields.SetOutputMirror(w)
		fields.AppendHeader(table.Row{"Field", "Value"})
		for _, f := range patient.Description {
			fields.AppendRow(table.Row{f.Key, f.Value})
		}
		fields.SetStyle(table.StyleRounded)
		fields.Render()

		timeline := table.NewWriter()
		timeline.SetOutputMirror(w)
		timeline.AppendHeader(table.Row{"Accession", "Sampling year", "Days from first sample", "Region", "Pos"})
		for _, row := range patient.Timeline {
			timeline.AppendRow(table.Row{row.AccessionId, row.SamplingYear, row.DaysFromFirstSample, row.GenomicRegion, row.Pos})
		}
		timeline.SetStyle(table.StyleRounded)
		timeline.Render()

		for _, c := range patient.Clusters {
			fmt.Fprintf(w, "Cluster %s (%d)\n", c.Label, c.Id)
		}
		return nil
	},
}
