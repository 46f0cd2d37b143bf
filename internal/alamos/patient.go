package alamos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"alamos-extract/internal/extract"
	"alamos-extract/internal/fetch"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
)

const accessionsKey = "Accession(s)"

type patientSummary struct {
	description []extract.Field
	accessions  []extract.Reference
	clusters    []extract.Reference
}

// AssemblePatient builds the patient with the given id from its summary and
// timeline pages. code is the display code the patient was referenced by.
func (a Assembler) AssemblePatient(ctx context.Context, id int64, code string) (patient Patient, err error) {
	ctx, span := startSpan(ctx, "AssemblePatient", attribute.Int64("patient_id", id))
	defer func() { endSpan(span, err) }()

	var (
		wg          sync.WaitGroup
		summary     patientSummary
		timeline    []AccessionRow
		summaryErr  error
		timelineErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		summary, summaryErr = a.patientSummary(ctx, id)
	}()
	go func() {
		defer wg.Done()
		timeline, timelineErr = a.patientTimeline(ctx, id)
	}()
	wg.Wait()

	err = errors.Join(summaryErr, timelineErr)
	if err != nil {
		return Patient{}, fmt.Errorf("patient %d: %w", id, err)
	}

	if len(summary.accessions) != len(timeline) {
		err = &extract.ConsistencyError{
			Entity: fmt.Sprintf("patient %d", id),
			Reason: fmt.Sprintf(
				"summary page lists %d accessions, timeline has %d rows",
				len(summary.accessions), len(timeline),
			),
		}
		a.tel.ReportBroken(report_assemble_patient, err, id)
		return Patient{}, err
	}

	a.tel.ReportCount(report_patient_timeline, int64(len(timeline)))

	return Patient{
		Id:          id,
		Code:        strings.TrimSpace(code),
		Description: summary.description,
		Accessions:  summary.accessions,
		Clusters:    summary.clusters,
		Timeline:    timeline,
	}, nil
}

func (a Assembler) patientSummary(ctx context.Context, id int64) (patientSummary, error) {
	root, err := a.page(ctx, fetch.Request{Url: PatientUrl(id)})
	if err != nil {
		return patientSummary{}, fmt.Errorf("summary: %w", err)
	}

	table, err := extract.LocateTable(root, extract.ContainsText(accessionsKey))
	if err != nil {
		a.tel.ReportBroken(report_patient_summary, err, id)
		return patientSummary{}, fmt.Errorf("summary: %w", err)
	}
	description, err := descriptionFields(table)
	if err != nil {
		a.tel.ReportBroken(report_patient_summary, err, id)
		return patientSummary{}, fmt.Errorf("summary: %w", err)
	}

	accessions, err := extract.ExtractReferences(root, patientAccessionRef)
	if err != nil {
		a.tel.ReportBroken(report_patient_summary, err, id)
		return patientSummary{}, fmt.Errorf("summary: %w", err)
	}
	clusters, err := extract.ExtractReferences(root, patientClusterRef)
	if err != nil {
		a.tel.ReportBroken(report_patient_summary, err, id)
		return patientSummary{}, fmt.Errorf("summary: %w", err)
	}

	return patientSummary{
		description: description,
		accessions:  accessions,
		clusters:    clusters,
	}, nil
}

// descriptionFields returns the key/value rows of the summary table that come
// before the accession list.
func descriptionFields(table *goquery.Selection) ([]extract.Field, error) {
	fields := extract.KeyValues(table)
	for i, f := range fields {
		if f.Key == accessionsKey {
			return fields[:i], nil
		}
	}
	return nil, &extract.UnexpectedLayoutError{
		Schema: "patient summary",
		Reason: fmt.Sprintf("no %q row", accessionsKey),
	}
}

func (a Assembler) patientTimeline(ctx context.Context, id int64) ([]AccessionRow, error) {
	root, err := a.page(ctx, fetch.Request{Url: TimelineUrl(id)})
	if err != nil {
		return nil, fmt.Errorf("timeline: %w", err)
	}

	table, err := extract.LocateTable(root, extract.AncestorOfLinks(recordListRef))
	if err != nil {
		a.tel.ReportBroken(report_patient_timeline, err, id)
		return nil, fmt.Errorf("timeline: %w", err)
	}
	normalized, err := extract.Normalize(table, TimelineSchema)
	if err != nil {
		a.tel.ReportBroken(report_patient_timeline, err, id)
		return nil, fmt.Errorf("timeline: %w", err)
	}

	rows := make([]AccessionRow, len(normalized.Records))
	for i, r := range normalized.Records {
		rows[i] = accessionFromRecord(r)
	}
	return rows, nil
}
