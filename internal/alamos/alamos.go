// Package alamos assembles clusters, patients and accession timelines out of
// the pages of the Los Alamos HIV sequence database.
package alamos

import (
	"context"
	"fmt"

	"alamos-extract/internal/components/assert"
	"alamos-extract/internal/components/telemetry"
	"alamos-extract/internal/extract"
	"alamos-extract/internal/fetch"
	"alamos-extract/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	report_page_parse       = "page.parse"
	report_assemble_cluster = "assemble.cluster"
	report_assemble_patient = "assemble.patient"
	report_patient_summary  = "patient.summary"
	report_patient_timeline = "patient.timeline"
	report_search           = "search"
)

var tracer = otel.Tracer("alamos-extract/internal/alamos")

// urls relative to the sequence database root
const (
	clusterUrl  = "search/cluster.comp?clu_id=%d"
	patientUrl  = "search/patient.comp?pat_id=%d"
	timelineUrl = "search/d_search.comp?ssam_pat_id=%d" +
		"&ssam_postfirstsample_days=*&ssam_poststarttreatment_days=*" +
		"&ssam_postendtreatment_days=*&ssam_postseroconv_days=*" +
		"&ssam_postinfect_days=*&ssam_fiebig=*"
	searchUrl = "search/search.comp"
)

func ClusterUrl(id int64) string {
	return fmt.Sprintf(clusterUrl, id)
}

func PatientUrl(id int64) string {
	return fmt.Sprintf(patientUrl, id)
}

func TimelineUrl(patientId int64) string {
	return fmt.Sprintf(timelineUrl, patientId)
}

var (
	clusterPatientRef   = extract.MustRefPattern(`patient.comp\?pat_id=(\d+)`)
	clusterAccessionRef = extract.MustRefPattern(`query_one.comp\?se_id=(\d+)`)
	patientAccessionRef = extract.MustRefPattern(`asearch/query_one.*?[?&]se_id=(\d+)`)
	patientClusterRef   = extract.MustRefPattern(`cluster\.comp.*?[?&]clu_id=(\d+)`)
	recordListRef       = extract.MustRefPattern(`(patient\.comp)`)
)

type Options struct {
	// charset label of fetched pages, empty means detect
	Encoding string
	// patients of a cluster assembled at once, values below 1 mean 1
	Concurrency int
}

type Assembler struct {
	fetcher     fetch.Fetcher
	tel         telemetry.API
	encoding    string
	concurrency int
}

func NewAssembler(fetcher fetch.Fetcher, opts Options, tel telemetry.API) Assembler {
	assert.NotNil(fetcher)
	assert.NotNil(tel)

	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return Assembler{
		fetcher:     fetcher,
		tel:         telemetry.NewScopedAPI("alamos", tel),
		encoding:    opts.Encoding,
		concurrency: concurrency,
	}
}

// page fetches and parses a single page.
func (a Assembler) page(ctx context.Context, req fetch.Request) (*goquery.Selection, error) {
	raw, err := a.fetcher.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	doc, err := htmlutil.Parse(raw, a.encoding)
	if err != nil {
		a.tel.ReportBroken(report_page_parse, err, req.Url)
		return nil, fmt.Errorf("%s: %w", req.Url, err)
	}
	return doc.Selection, nil
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
