package alamos

import "alamos-extract/internal/extract"

// record list tables start with an empty selection row: "#" then "Select"
var selectSentinel = extract.Sentinel{Width: 2, Value: "#Select"}

var recordListDerivations = []extract.Derivation{
	extract.CombinedIdentifier("patient_comb", "patient_id", "patient_code", 2),
	extract.LinkPosition("nuccore", "pos", "ncbi_url"),
	extract.SecondaryReference("blast", "_SE_id=", "blast_ssam_se_id", 5, true),
}

// TimelineSchema is the accession table of a patient's d_search page.
var TimelineSchema = extract.Schema{
	Name: "accession timeline",
	Columns: []string{
		"row_id",
		"blast",
		"patient_comb",
		"accession_id",
		"seq_name",
		"subtype",
		"country",
		"sampling_year",
		"days_from_first_sample",
		"fiebig_stage",
		"days_from_treatment_end",
		"days_from_treatment_start",
		"days_from_infection",
		"days_from_seroconversion",
		"genomic_region",
		"seq_length",
		"organism",
	},
	Sentinel:    selectSentinel,
	Derivations: recordListDerivations,
	Drop:        []string{"patient_comb"},
}

// SearchSchema is the result table of the database search form. The
// combined patient column is kept.
var SearchSchema = extract.Schema{
	Name: "search results",
	Columns: []string{
		"row_id",
		"blast",
		"patient_comb",
		"accession",
		"seq_name",
		"subtype",
		"country",
		"sampling_year",
		"genomic_region",
		"seq_length",
		"organism",
	},
	Sentinel:    selectSentinel,
	Derivations: recordListDerivations,
}

// TimelineColumns is the column order of every accession timeline row.
var TimelineColumns = TimelineSchema.OutputColumns()
