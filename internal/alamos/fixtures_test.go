package alamos

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"

	"alamos-extract/internal/components/telemetry"
	"alamos-extract/internal/fetch"
)

// fakeFetcher serves pages from memory, unknown urls fail like a 404.
type fakeFetcher struct {
	mutex    sync.Mutex
	pages    map[string]string
	requests []fetch.Request
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{pages: map[string]string{}}
}

func (f *fakeFetcher) Fetch(ctx context.Context, req fetch.Request) ([]byte, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.requests = append(f.requests, req)

	page, ok := f.pages[req.Url]
	if !ok {
		return nil, &fetch.TransportError{
			Method: req.Method,
			Url:    req.Url,
			Status: http.StatusNotFound,
		}
	}
	return []byte(page), nil
}

type fixtureAccession struct {
	name  string
	seId  int64
	ssam  int64
	title string
}

type fixturePatient struct {
	id     int64
	code   string
	fields [][2]string
	// accessions listed on the summary page
	summary []fixtureAccession
	// rows of the timeline table
	timeline []fixtureAccession
}

func newFixturePatient(id int64, code string, accessions ...string) fixturePatient {
	p := fixturePatient{
		id:   id,
		code: code,
		fields: [][2]string{
			{"Patient Code", code},
			{"Sex", "F"},
			{"Country", "US"},
		},
	}
	for i, name := range accessions {
		acc := fixtureAccession{
			name:  name,
			seId:  id*100 + int64(i),
			ssam:  id*1000 + int64(i),
			title: fmt.Sprintf("Start: %d Stop: %d. Link to NCBI sequence viewer", 1+i*10, 500+i*10),
		}
		p.summary = append(p.summary, acc)
		p.timeline = append(p.timeline, acc)
	}
	return p
}

func clusterPage(name, description string, patients ...fixturePatient) string {
	var patientLinks, accessionLinks strings.Builder
	for _, p := range patients {
		fmt.Fprintf(&patientLinks, `<a href="patient.comp?pat_id=%d">%s</a> `, p.id, p.code)
		for _, acc := range p.summary {
			fmt.Fprintf(&accessionLinks, `<a href="../asearch/query_one.comp?se_id=%d">%s</a> `, acc.seId, acc.name)
		}
	}
	return fmt.Sprintf(`<html><body>
<table><tr><td><a href="/index.html">Home</a></td></tr></table>
<table>
	<tr><td>Cluster Name</td><td>%s</td></tr>
	<tr><td>Cluster Description</td><td>"%s" </td></tr>
	<tr><td>Patient(s)</td><td>%s</td></tr>
	<tr><td>Accession(s)</td><td>%s</td></tr>
</table>
</body></html>`, name, description, patientLinks.String(), accessionLinks.String())
}

func patientPage(p fixturePatient, clusterId int64) string {
	var rows strings.Builder
	for _, f := range p.fields {
		fmt.Fprintf(&rows, "<tr><td>%s</td><td>%s</td></tr>\n", f[0], f[1])
	}
	var links strings.Builder
	for _, acc := range p.summary {
		fmt.Fprintf(&links, `<a href="../asearch/query_one.comp?se_id=%d">%s</a> `, acc.seId, acc.name)
	}
	fmt.Fprintf(&rows, "<tr><td>Accession(s)</td><td>%s</td></tr>\n", links.String())
	fmt.Fprintf(&rows, `<tr><td>Cluster(s)</td><td><a href="cluster.comp?clu_id=%d">cluster %d</a></td></tr>`, clusterId, clusterId)

	return fmt.Sprintf(`<html><body>
<table><tr><td><a href="/tools">Tools</a></td></tr></table>
<table>
%s
</table>
</body></html>`, rows.String())
}

func timelinePage(p fixturePatient) string {
	var rows strings.Builder
	rows.WriteString("<tr><td>#</td><td>Select</td>" + strings.Repeat("<td></td>", 15) + "</tr>\n")
	for i, acc := range p.timeline {
		fmt.Fprintf(&rows, `<tr>
	<td>%d</td>
	<td><a href="/cgi-bin/BASIC_BLAST/basic_blast_pg.cgi?SSAM_SE_id=%d">blast</a></td>
	<td><a href="patient.comp?pat_id=%d">%s(%d)</a></td>
	<td><a href="http://www.ncbi.nlm.nih.gov/nuccore/%s"><img title="%s"></a>%s</td>
	<td>seq%d</td><td>B</td><td>US</td><td>2001</td>
	<td>%d</td><td>V</td><td></td><td></td><td>%d</td><td>%d</td>
	<td>ENV</td><td>2600</td><td>HIV-1</td>
</tr>
`, i+1, acc.ssam, p.id, p.code, p.id, acc.name, acc.title, acc.name, i, i*30, i*30+15, i*30+40)
	}
	return fmt.Sprintf(`<html><body>
<form><table>
%s
</table></form>
</body></html>`, rows.String())
}

// serveCluster registers the cluster page and the pages of every patient.
func (f *fakeFetcher) serveCluster(id int64, name, description string, patients ...fixturePatient) {
	f.pages[ClusterUrl(id)] = clusterPage(name, description, patients...)
	for _, p := range patients {
		f.servePatient(p, id)
	}
}

func (f *fakeFetcher) servePatient(p fixturePatient, clusterId int64) {
	f.pages[PatientUrl(p.id)] = patientPage(p, clusterId)
	f.pages[TimelineUrl(p.id)] = timelinePage(p)
}

func newTestAssembler(t testing.TB, fetcher fetch.Fetcher, concurrency int) (Assembler, *telemetry.Recorder) {
	t.Helper()
	rec := &telemetry.Recorder{}
	return NewAssembler(fetcher, Options{Encoding: "utf-8", Concurrency: concurrency}, rec), rec
}

func replaceOnce(s, old, new string) string {
	return strings.Replace(s, old, new, 1)
}
