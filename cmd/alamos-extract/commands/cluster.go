package commands

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"alamos-extract/internal/alamos"
	"alamos-extract/internal/export"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	clusterOut *string
	clusterDb  *string
)

func init() {
	clusterOut = clusterCmd.Flags().String("out", ".", "The directory the tsv files are written to.")
	clusterDb = clusterCmd.Flags().String("db", "", "A sqlite database to also write the cluster to.")
	rootCmd.AddCommand(clusterCmd)
}

var clusterCmd = &cobra.Command{
	Use:   "cluster <cluster_id> [--out <dir>] [--db <path/to/output.db>]",
	Short: "Extracts a cluster with all of its patients and accessions.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("cluster id %q is not an integer", args[0])
		}

		slog.Debug("assembling cluster", "id", id)
		cluster, err := session.assembler.AssembleCluster(cmd.Context(), id)
		if err != nil {
			return err
		}

		paths, err := export.WriteCluster(*clusterOut, cluster, session.tel)
		if err != nil {
			return err
		}

		dbcfg := session.cfg.Database
		if *clusterDb != "" {
			dbcfg.File = *clusterDb
			dbcfg.Url = ""
		}
		if dbcfg.File != "" || dbcfg.Url != "" {
			db, err := export.OpenDB(dbcfg)
			if err != nil {
				return err
			}
			defer db.Close()
			store, err := export.NewStore(cmd.Context(), db, session.tel)
			if err != nil {
				return err
			}
			runId, err := store.SaveCluster(cmd.Context(), cluster)
			if err != nil {
				return err
			}
			slog.Info("saved cluster to database", "run", runId)
		}

		printCluster(cmd.OutOrStdout(), cluster, paths)
		return nil
	},
}

func printCluster(w io.Writer, cluster alamos.Cluster, paths []string) {
	fmt.Fprintf(w, "Cluster: %s\n", cluster.Name)
	fmt.Fprintf(w, "Description: %s\n", cluster.Description)
	codes := make([]string, len(cluster.Patients))
	for i, p := range cluster.Patients {
		codes[i] = p.Code
	}
	fmt.Fprintf(w, "%d patients: %s\n", len(cluster.Patients), strings.Join(codes, ", "))
	fmt.Fprintf(w, "%d accessions.\n", len(cluster.Accessions))
	if len(paths) == 2 {
		fmt.Fprintf(w, "Accession data written to %s\n", paths[0])
		fmt.Fprintf(w, "Clinical data written to %s\n", paths[1])
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Patient", "Code", "Accessions", "Clusters"})
	for _, p := range cluster.Patients {
		t.AppendRow(table.Row{p.Id, p.Code, len(p.Timeline), len(p.Clusters)})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}
