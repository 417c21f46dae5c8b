package model

import "time"

// ReleaseSet is the root element of a ClinVar full release
type ReleaseSet struct {
	ReleaseDate time.Time `json:"release_date"`
}

// ClinVarSet is one top-level record of the release
type ClinVarSet struct {
	ID           uint32                     `json:"id"`
	RecordStatus string                     `json:"record_status"`
	Title        string                     `json:"title"`
	RefAssertion *ReferenceClinVarAssertion `json:"ref_assertion,omitempty"` // RCV, if any
	Assertions   []ClinVarAssertion         `json:"assertions,omitempty"`    // SCVs in encounter order
}

// Assessment holds the values derived from the first clinical significance
// of an assertion by the vocabulary normalizer.
type Assessment struct {
	GoldStars     GoldStars     `json:"gold_stars"`
	ReviewStatus  ReviewStatus  `json:"review_status"`
	Pathogenicity Pathogenicity `json:"pathogenicity"`
}

// ReferenceClinVarAssertion is the aggregated (RCV) assertion of a set
type ReferenceClinVarAssertion struct {
	ID           uint32     `json:"id"`
	RecordStatus string     `json:"record_status"`
	DateCreated  *time.Time `json:"date_created,omitempty"`
	DateUpdated  *time.Time `json:"date_updated,omitempty"`

	Accession string `json:"accession"`
	Version   uint32 `json:"version"`

	ObservedIn   *ObservedIn            `json:"observed_in,omitempty"`
	GenotypeSets []GenotypeSet          `json:"genotype_sets,omitempty"`
	TraitSets    []TraitSet             `json:"trait_sets,omitempty"`
	ClinSigs     []ClinicalSignificance `json:"clin_sigs,omitempty"`

	Assessment
}

// ClinVarAssertion is a single submitter (SCV) assertion
type ClinVarAssertion struct {
	ID            uint32     `json:"id"`
	RecordStatus  string     `json:"record_status"`
	SubmitterDate *time.Time `json:"submitter_date,omitempty"`

	Accession string `json:"accession"`
	Version   uint32 `json:"version"`

	ObservedIn   *ObservedIn            `json:"observed_in,omitempty"`
	GenotypeSets []GenotypeSet          `json:"genotype_sets,omitempty"`
	TraitSets    []TraitSet             `json:"trait_sets,omitempty"`
	ClinSigs     []ClinicalSignificance `json:"clin_sigs,omitempty"`

	Assessment
}

// ObservedIn describes the sample a variant was observed in
type ObservedIn struct {
	Origin          string                   `json:"origin"`
	Species         string                   `json:"species"`
	AffectedStatus  string                   `json:"affected_status"`
	DataDescription *ObservedDataDescription `json:"data_description,omitempty"`
	Comments        []string                 `json:"comments,omitempty"`
}

// ObservedDataDescription is the relevant part of ObservedData/Attribute[@Type="Description"]
type ObservedDataDescription struct {
	Description *string  `json:"description,omitempty"`
	PubMedIDs   []uint32 `json:"pubmed_ids,omitempty"`
	OMIMIDs     []uint32 `json:"omim_ids,omitempty"`
}

// GenotypeSet wraps the measure sets of an assertion.
//
// Non-compound variants are wrapped in a synthesized single-element set so
// that every measure set is reachable through exactly one genotype set.
type GenotypeSet struct {
	SetType     string       `json:"set_type"`
	Accession   string       `json:"accession"`
	MeasureSets []MeasureSet `json:"measure_sets"`
}

// MeasureSet groups the measures describing one variant
type MeasureSet struct {
	SetType   string    `json:"set_type"`
	Accession string    `json:"accession"`
	Measures  []Measure `json:"measures"`
}

// Measure is a single described variant
type Measure struct {
	MeasureType string                      `json:"measure_type"` // e.g. "single nucleotide variant", "copy number loss"
	Symbols     []string                    `json:"symbols,omitempty"`
	HGNCIDs     []string                    `json:"hgnc_ids,omitempty"`
	Locations   map[string]SequenceLocation `json:"locations,omitempty"` // keyed by assembly label
	Comments    []string                    `json:"comments,omitempty"`
}

// SequenceLocation is a variant position in one assembly
type SequenceLocation struct {
	Assembly    string  `json:"assembly"`
	Chrom       string  `json:"chrom"`
	ChromAcc    string  `json:"chrom_acc"`
	Start       *uint32 `json:"start,omitempty"`
	Stop        *uint32 `json:"stop,omitempty"`
	OuterStart  *uint32 `json:"outer_start,omitempty"`
	OuterStop   *uint32 `json:"outer_stop,omitempty"`
	InnerStart  *uint32 `json:"inner_start,omitempty"`
	InnerStop   *uint32 `json:"inner_stop,omitempty"`
	Reference   *string `json:"reference,omitempty"`
	Alternative *string `json:"alternative,omitempty"`
}

// TraitSet groups the traits (conditions) of an assertion
type TraitSet struct {
	SetType string  `json:"set_type"`
	ID      *uint32 `json:"id,omitempty"`
	Traits  []Trait `json:"traits"`
}

// Trait is a single condition
type Trait struct {
	PreferredName  *string  `json:"preferred_name,omitempty"`
	AlternateNames []string `json:"alternate_names,omitempty"`
}

// ClinicalSignificance is one significance call of an assertion
type ClinicalSignificance struct {
	DateEvaluated *time.Time `json:"date_evaluated,omitempty"`
	ReviewStatus  string     `json:"review_status"` // raw phrase, e.g. "criteria provided, single submitter"
	Description   *string    `json:"description,omitempty"`
	Comments      []string   `json:"comments,omitempty"`
}
