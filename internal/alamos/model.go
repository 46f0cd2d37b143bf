package alamos

import (
	"strconv"

	"alamos-extract/internal/extract"
	"alamos-extract/lib/ordered"
)

type Cluster struct {
	Id          int64
	Name        string
	Description string
	// display name to id, as linked from the cluster page
	PatientRefs   *ordered.Map[string, int64]
	AccessionRefs *ordered.Map[string, int64]
	// one per distinct patient id, in discovery order
	Patients []Patient
	// the timelines of all patients, concatenated
	Accessions []AccessionRow
	Clinical   ClinicalTable
}

type Patient struct {
	Id   int64
	Code string
	// summary page fields preceding the accession list
	Description []extract.Field
	Accessions  []extract.Reference
	Clusters    []extract.Reference
	Timeline    []AccessionRow
}

// AccessionRow is one sequence sample of a patient.
type AccessionRow struct {
	RowId                  string
	Blast                  string
	PatientId              int64
	PatientCode            string
	BlastSsamSeId          int64
	AccessionId            string
	SeqName                string
	Subtype                string
	Country                string
	SamplingYear           string
	DaysFromFirstSample    string
	FiebigStage            string
	DaysFromTreatmentEnd   string
	DaysFromTreatmentStart string
	DaysFromInfection      string
	DaysFromSeroconversion string
	GenomicRegion          string
	SeqLength              string
	Organism               string
	Pos                    string
	NcbiUrl                string
}

func accessionFromRecord(r extract.Record) AccessionRow {
	patientId, _ := r.Int("patient_id")
	seId, _ := r.Int("blast_ssam_se_id")
	return AccessionRow{
		RowId:                  r.String("row_id"),
		Blast:                  r.String("blast"),
		PatientId:              patientId,
		PatientCode:            r.String("patient_code"),
		BlastSsamSeId:          seId,
		AccessionId:            r.String("accession_id"),
		SeqName:                r.String("seq_name"),
		Subtype:                r.String("subtype"),
		Country:                r.String("country"),
		SamplingYear:           r.String("sampling_year"),
		DaysFromFirstSample:    r.String("days_from_first_sample"),
		FiebigStage:            r.String("fiebig_stage"),
		DaysFromTreatmentEnd:   r.String("days_from_treatment_end"),
		DaysFromTreatmentStart: r.String("days_from_treatment_start"),
		DaysFromInfection:      r.String("days_from_infection"),
		DaysFromSeroconversion: r.String("days_from_seroconversion"),
		GenomicRegion:          r.String("genomic_region"),
		SeqLength:              r.String("seq_length"),
		Organism:               r.String("organism"),
		Pos:                    r.String("pos"),
		NcbiUrl:                r.String("ncbi_url"),
	}
}

// Strings returns the row in TimelineColumns order.
func (a AccessionRow) Strings() []string {
	return []string{
		a.RowId,
		a.Blast,
		strconv.FormatInt(a.PatientId, 10),
		a.PatientCode,
		strconv.FormatInt(a.BlastSsamSeId, 10),
		a.AccessionId,
		a.SeqName,
		a.Subtype,
		a.Country,
		a.SamplingYear,
		a.DaysFromFirstSample,
		a.FiebigStage,
		a.DaysFromTreatmentEnd,
		a.DaysFromTreatmentStart,
		a.DaysFromInfection,
		a.DaysFromSeroconversion,
		a.GenomicRegion,
		a.SeqLength,
		a.Organism,
		a.Pos,
		a.NcbiUrl,
	}
}

// ClinicalTable lays the descriptions of several patients side by side: one
// row per field name, one column per patient.
type ClinicalTable struct {
	PatientIds []int64
	fields     *ordered.Map[string, map[int64]string]
}

func NewClinicalTable(patients []Patient) ClinicalTable {
	table := ClinicalTable{fields: ordered.NewMap[string, map[int64]string]()}
	for _, p := range patients {
		table.PatientIds = append(table.PatientIds, p.Id)
		for _, f := range p.Description {
			values, ok := table.fields.Get(f.Key)
			if !ok {
				values = map[int64]string{}
				table.fields.Put(f.Key, values)
			}
			values[p.Id] = f.Value
		}
	}
	return table
}

// Vars lists the field names in the order they first appear.
func (c ClinicalTable) Vars() []string {
	return c.fields.Keys()
}

func (c ClinicalTable) Value(field string, patientId int64) (string, bool) {
	values, ok := c.fields.Get(field)
	if !ok {
		return "", false
	}
	v, ok := values[patientId]
	return v, ok
}

// Header is "var" followed by the patient ids.
func (c ClinicalTable) Header() []string {
	header := []string{"var"}
	for _, id := range c.PatientIds {
		header = append(header, strconv.FormatInt(id, 10))
	}
	return header
}

// Rows returns one line per field, fields a patient lacks are empty.
func (c ClinicalTable) Rows() [][]string {
	var rows [][]string
	c.fields.Each(func(field string, values map[int64]string) {
		row := []string{field}
		for _, id := range c.PatientIds {
			row = append(row, values[id])
		}
		rows = append(rows, row)
	})
	return rows
}
