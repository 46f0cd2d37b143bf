package export

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"net/url"
	"time"

	"alamos-extract/internal/alamos"
	"alamos-extract/internal/components/assert"
	"alamos-extract/internal/components/telemetry"
	"alamos-extract/internal/config"

	"github.com/google/uuid"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

const (
	report_db_schema       = "db.schema"
	report_db_save_cluster = "db.save-cluster"
)

//go:embed schema.sql
var Schema string

// OpenDB opens the libsql server at Url when it is set, otherwise the local
// sqlite File.
func OpenDB(cfg config.Database) (*sql.DB, error) {
	if cfg.Url == "" {
		if cfg.File == "" {
			return nil, fmt.Errorf("database: neither url nor file is configured")
		}
		return sql.Open("sqlite", cfg.File)
	}

	dsn := cfg.Url
	if cfg.AuthToken != "" {
		u, err := url.Parse(cfg.Url)
		if err != nil {
			return nil, fmt.Errorf("database url: %w", err)
		}
		q := u.Query()
		q.Set("authToken", cfg.AuthToken)
		u.RawQuery = q.Encode()
		dsn = u.String()
	}
	return sql.Open("libsql", dsn)
}

type Store struct {
	db  *sql.DB
	tel telemetry.API
}

// NewStore creates the export tables in db if they do not exist yet.
func NewStore(ctx context.Context, db *sql.DB, tel telemetry.API) (Store, error) {
	assert.NotNil(db)
	assert.NotNil(tel)
	tel = telemetry.NewScopedAPI("export", tel)

	_, err := db.ExecContext(ctx, Schema)
	if err != nil {
		tel.ReportBroken(report_db_schema, err)
		return Store{}, fmt.Errorf("create schema: %w", err)
	}
	return Store{db: db, tel: tel}, nil
}

func (s Store) makeTx(ctx context.Context) (tx *sql.Tx, discard, commit func() error, err error) {
	tx, err = s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	return tx, tx.Rollback, tx.Commit, nil
}

// SaveCluster writes cluster as a new export run in a single transaction and
// returns the run id.
func (s Store) SaveCluster(ctx context.Context, cluster alamos.Cluster) (string, error) {
	runId := uuid.NewString()

	tx, discard, commit, err := s.makeTx(ctx)
	if err != nil {
		s.tel.ReportBroken(report_db_save_cluster, err, cluster.Id)
		return "", err
	}
	defer discard()

	err = saveCluster(ctx, tx, runId, cluster)
	if err != nil {
		s.tel.ReportBroken(report_db_save_cluster, err, cluster.Id)
		return "", fmt.Errorf("save cluster %d: %w", cluster.Id, err)
	}
	err = commit()
	if err != nil {
		s.tel.ReportBroken(report_db_save_cluster, err, cluster.Id)
		return "", err
	}
	return runId, nil
}

func saveCluster(ctx context.Context, tx *sql.Tx, runId string, cluster alamos.Cluster) error {
	_, err := tx.ExecContext(ctx,
		"insert into export_runs (id, started_at, kind) values (?, ?, ?)",
		runId, time.Now().Unix(), "cluster",
	)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		"insert into clusters (run_id, id, name, description) values (?, ?, ?, ?)",
		runId, cluster.Id, cluster.Name, cluster.Description,
	)
	if err != nil {
		return err
	}

	for i, p := range cluster.Patients {
		_, err = tx.ExecContext(ctx,
			"insert into patients (run_id, cluster_id, id, code, position) values (?, ?, ?, ?, ?)",
			runId, cluster.Id, p.Id, p.Code, i,
		)
		if err != nil {
			return err
		}
		for j, f := range p.Description {
			_, err = tx.ExecContext(ctx,
				"insert into patient_fields (run_id, patient_id, position, key, value) values (?, ?, ?, ?, ?)",
				runId, p.Id, j, f.Key, f.Value,
			)
			if err != nil {
				return err
			}
		}
	}

	for _, a := range cluster.Accessions {
		_, err = tx.ExecContext(ctx,
			`insert into accessions (
				run_id, cluster_id, accession_id, row_id, patient_id, patient_code,
				blast_ssam_se_id, seq_name, subtype, country, sampling_year,
				days_from_first_sample, fiebig_stage, days_from_treatment_end,
				days_from_treatment_start, days_from_infection, days_from_seroconversion,
				genomic_region, seq_length, organism, pos, ncbi_url
			) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runId, cluster.Id, a.AccessionId, a.RowId, a.PatientId, a.PatientCode,
			a.BlastSsamSeId, a.SeqName, a.Subtype, a.Country, a.SamplingYear,
			a.DaysFromFirstSample, a.FiebigStage, a.DaysFromTreatmentEnd,
			a.DaysFromTreatmentStart, a.DaysFromInfection, a.DaysFromSeroconversion,
			a.GenomicRegion, a.SeqLength, a.Organism, a.Pos, a.NcbiUrl,
		)
		if err != nil {
			return err
		}
	}
	return nil
}
