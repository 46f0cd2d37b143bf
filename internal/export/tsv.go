// Package export writes assembled clusters and search results out as tab
// separated files or into a sqlite/libsql database.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"alamos-extract/internal/alamos"
	"alamos-extract/internal/components/assert"
	"alamos-extract/internal/components/telemetry"
	"alamos-extract/internal/extract"
)

const (
	report_tsv_stage  = "tsv.stage"
	report_tsv_commit = "tsv.commit"
)

func AccessionsFile(clusterId int64) string {
	return fmt.Sprintf("cluster_%d_accessions.tsv", clusterId)
}

func ClinicalFile(clusterId int64) string {
	return fmt.Sprintf("cluster_%d_clinical.tsv", clusterId)
}

func SearchFile(region string) string {
	if region == "" {
		region = "any"
	}
	return fmt.Sprintf("search_%s_info.tsv", strings.ToLower(region))
}

type staged struct {
	temp string
	dest string
}

// Batch stages files under temporary names, none of them appear under their
// final name until Commit.
type Batch struct {
	dir    string
	tel    telemetry.API
	staged []staged
}

func NewBatch(dir string, tel telemetry.API) *Batch {
	assert.NotNil(tel)
	return &Batch{dir: dir, tel: telemetry.NewScopedAPI("export", tel)}
}

// Stage writes header and rows to a temporary file next to name.
func (b *Batch) Stage(name string, header []string, rows [][]string) error {
	dest := filepath.Join(b.dir, name)
	file, err := os.CreateTemp(b.dir, "."+name+".*")
	if err != nil {
		b.tel.ReportBroken(report_tsv_stage, err, dest)
		return err
	}

	w := csv.NewWriter(file)
	w.Comma = '\t'
	err = w.Write(header)
	if err == nil {
		err = w.WriteAll(rows)
	}
	err = errors.Join(err, file.Close())
	if err != nil {
		os.Remove(file.Name())
		b.tel.ReportBroken(report_tsv_stage, err, dest)
		return fmt.Errorf("write %s: %w", dest, err)
	}

	b.staged = append(b.staged, staged{temp: file.Name(), dest: dest})
	return nil
}

// Commit renames every staged file to its final name and returns those names.
func (b *Batch) Commit() ([]string, error) {
	var paths []string
	for i, s := range b.staged {
		err := os.Rename(s.temp, s.dest)
		if err != nil {
			b.tel.ReportBroken(report_tsv_commit, err, s.dest)
			// a partial batch is not left behind under final names
			for _, p := range paths {
				os.Remove(p)
			}
			b.staged = b.staged[i:]
			b.Discard()
			return nil, err
		}
		paths = append(paths, s.dest)
	}
	b.staged = nil
	return paths, nil
}

// Discard removes the staged files that were not committed.
func (b *Batch) Discard() {
	for _, s := range b.staged {
		os.Remove(s.temp)
	}
	b.staged = nil
}

// WriteCluster writes the accession and clinical tables of cluster to dir.
func WriteCluster(dir string, cluster alamos.Cluster, tel telemetry.API) ([]string, error) {
	b := NewBatch(dir, tel)
	defer b.Discard()

	rows := make([][]string, len(cluster.Accessions))
	for i, row := range cluster.Accessions {
		rows[i] = row.Strings()
	}
	err := b.Stage(AccessionsFile(cluster.Id), alamos.TimelineColumns, rows)
	if err != nil {
		return nil, err
	}
	err = b.Stage(ClinicalFile(cluster.Id), cluster.Clinical.Header(), cluster.Clinical.Rows())
	if err != nil {
		return nil, err
	}
	return b.Commit()
}

// WriteSearch writes normalized search results to dir.
func WriteSearch(dir, region string, result extract.Table, tel telemetry.API) (string, error) {
	b := NewBatch(dir, tel)
	defer b.Discard()

	rows := make([][]string, len(result.Records))
	for i, r := range result.Records {
		row := make([]string, len(result.Columns))
		for j, column := range result.Columns {
			row[j] = r.String(column)
		}
		rows[i] = row
	}
	err := b.Stage(SearchFile(region), result.Columns, rows)
	if err != nil {
		return "", err
	}
	paths, err := b.Commit()
	if err != nil {
		return "", err
	}
	return paths[0], nil
}
