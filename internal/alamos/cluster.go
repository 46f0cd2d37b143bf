package alamos

import (
	"context"
	"fmt"
	"strings"

	"alamos-extract/internal/extract"
	"alamos-extract/internal/fetch"
	"alamos-extract/lib/ordered"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

const (
	clusterNameKey        = "Cluster Name"
	clusterDescriptionKey = "Cluster Description"
)

// AssembleCluster builds the cluster with the given id along with every
// patient it references. Any failure aborts the whole cluster.
func (a Assembler) AssembleCluster(ctx context.Context, id int64) (cluster Cluster, err error) {
	ctx, span := startSpan(ctx, "AssembleCluster", attribute.Int64("cluster_id", id))
	defer func() { endSpan(span, err) }()

	cluster, codes, err := a.clusterPage(ctx, id)
	if err != nil {
		return Cluster{}, err
	}
	ids := codes.Keys()

	patients := make([]Patient, len(ids))
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(a.concurrency)
	for i, patientId := range ids {
		code, _ := codes.Get(patientId)
		group.Go(func() error {
			p, err := a.AssemblePatient(gctx, patientId, code)
			if err != nil {
				return err
			}
			patients[i] = p
			return nil
		})
	}
	err = group.Wait()
	if err != nil {
		a.tel.ReportBroken(report_assemble_cluster, err, id)
		return Cluster{}, fmt.Errorf("cluster %d: %w", id, err)
	}

	accessions, err := aggregateAccessions(patients)
	if err != nil {
		a.tel.ReportBroken(report_assemble_cluster, err, id)
		return Cluster{}, fmt.Errorf("cluster %d: %w", id, err)
	}

	cluster.Patients = patients
	cluster.Accessions = accessions
	cluster.Clinical = NewClinicalTable(patients)

	a.tel.ReportCount(report_assemble_cluster, int64(len(accessions)))
	return cluster, nil
}

// clusterPage reads the cluster summary. The returned codes map every
// distinct linked patient id to its label, a patient linked under several
// labels keeps the label seen last.
func (a Assembler) clusterPage(ctx context.Context, id int64) (Cluster, *ordered.Map[int64, string], error) {
	root, err := a.page(ctx, fetch.Request{Url: ClusterUrl(id)})
	if err != nil {
		return Cluster{}, nil, fmt.Errorf("cluster %d: %w", id, err)
	}

	fail := func(err error) (Cluster, *ordered.Map[int64, string], error) {
		a.tel.ReportBroken(report_assemble_cluster, err, id)
		return Cluster{}, nil, fmt.Errorf("cluster %d: %w", id, err)
	}

	table, err := extract.LocateTable(root, extract.ContainsText(clusterNameKey))
	if err != nil {
		return fail(err)
	}
	var (
		name, description       string
		hasName, hasDescription bool
	)
	for _, f := range extract.KeyValues(table) {
		switch f.Key {
		case clusterNameKey:
			name, hasName = f.Value, true
		case clusterDescriptionKey:
			description, hasDescription = strings.Trim(f.Value, ` '"`), true
		}
	}
	missing := ""
	switch {
	case !hasName:
		missing = clusterNameKey
	case !hasDescription:
		missing = clusterDescriptionKey
	}
	if missing != "" {
		return fail(&extract.UnexpectedLayoutError{
			Schema: "cluster summary",
			Reason: fmt.Sprintf("no %q row", missing),
		})
	}

	patients, err := extract.ExtractReferences(root, clusterPatientRef)
	if err != nil {
		return fail(err)
	}
	accessions, err := extract.ExtractReferences(root, clusterAccessionRef)
	if err != nil {
		return fail(err)
	}

	codes := ordered.NewMap[int64, string]()
	for _, ref := range patients {
		codes.Put(ref.Id, ref.Label)
	}

	return Cluster{
		Id:            id,
		Name:          name,
		Description:   description,
		PatientRefs:   labelMap(patients),
		AccessionRefs: labelMap(accessions),
	}, codes, nil
}

// labelMap folds refs into a label to id map, a repeated label keeps its
// first position and its last id.
func labelMap(refs []extract.Reference) *ordered.Map[string, int64] {
	out := ordered.NewMap[string, int64]()
	for _, ref := range refs {
		out.Put(ref.Label, ref.Id)
	}
	return out
}

// aggregateAccessions concatenates the patient timelines, an accession may
// only belong to one of them.
func aggregateAccessions(patients []Patient) ([]AccessionRow, error) {
	var out []AccessionRow
	owner := map[string]int64{}
	for _, p := range patients {
		for _, row := range p.Timeline {
			if other, ok := owner[row.AccessionId]; ok {
				return nil, &extract.ConsistencyError{
					Entity: fmt.Sprintf("accession %s", row.AccessionId),
					Reason: fmt.Sprintf("listed for patients %d and %d", other, p.Id),
				}
			}
			owner[row.AccessionId] = p.Id
			out = append(out, row)
		}
	}
	return out, nil
}
