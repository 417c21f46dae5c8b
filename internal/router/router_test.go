package router

import (
	"errors"
	"testing"
	"time"

	"github.com/ppiankov/clinvar-tsv/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recordingSink struct {
	rows []Row
	err  error
}

func (s *recordingSink) Write(row *Row) error {
	if s.err != nil {
		return s.err
	}
	s.rows = append(s.rows, *row)
	return nil
}

type countingObserver struct {
	routed  map[string]int
	skipped map[string]int
}

func (c *countingObserver) RowRouted(bucket string)       { c.routed[bucket]++ }
func (c *countingObserver) LocationSkipped(reason string) { c.skipped[reason]++ }

func newRouter(t *testing.T, log *zap.Logger) (*Router, map[Bucket]*recordingSink, *countingObserver) {
	t.Helper()
	recs := make(map[Bucket]*recordingSink)
	sinks := make(map[Bucket]Sink)
	for _, b := range Buckets {
		recs[b] = &recordingSink{}
		sinks[b] = recs[b]
	}
	obs := &countingObserver{routed: map[string]int{}, skipped: map[string]int{}}
	r, err := New(sinks, model.DefaultConfig().Router.StructuralTypes, log, time.Hour, obs)
	require.NoError(t, err)
	return r, recs, obs
}

func location(assembly string) model.SequenceLocation {
	start := uint32(100)
	return model.SequenceLocation{Assembly: assembly, Chrom: "1", Start: &start, Stop: &start}
}

func measure(typ string, assemblies ...string) model.Measure {
	m := model.Measure{MeasureType: typ, Locations: map[string]model.SequenceLocation{}}
	for _, a := range assemblies {
		m.Locations[a] = location(a)
	}
	return m
}

func wrap(measures ...model.Measure) []model.GenotypeSet {
	return []model.GenotypeSet{{
		SetType:     "Variant",
		MeasureSets: []model.MeasureSet{{SetType: "Variant", Measures: measures}},
	}}
}

func TestRoute_SingleSmallVariantGRCh37(t *testing.T) {
	r, recs, obs := newRouter(t, zap.NewNop())

	set := &model.ClinVarSet{
		ID: 1,
		Assertions: []model.ClinVarAssertion{{
			Accession:    "SCV000000001",
			GenotypeSets: wrap(measure("single nucleotide variant", "GRCh37")),
		}},
	}

	n, err := r.Route(time.Time{}, set)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	for _, b := range Buckets {
		if b == (Bucket{GRCh37, Small}) {
			assert.Len(t, recs[b].rows, 1, b.String())
		} else {
			assert.Empty(t, recs[b].rows, b.String())
		}
	}
	assert.Equal(t, map[string]int{"b37.seqvars": 1}, obs.routed)
}

func TestRoute_Buckets(t *testing.T) {
	tests := []struct {
		name        string
		measureType string
		assembly    string
		want        Bucket
	}{
		{"snv 37", "single nucleotide variant", "GRCh37", Bucket{GRCh37, Small}},
		{"snv 38", "single nucleotide variant", "GRCh38", Bucket{GRCh38, Small}},
		{"deletion is small", "Deletion", "GRCh38", Bucket{GRCh38, Small}},
		{"copy number loss 37", "copy number loss", "GRCh37", Bucket{GRCh37, Structural}},
		{"case-insensitive type", "Copy Number Gain", "GRCh38", Bucket{GRCh38, Structural}},
		{"patch release", "inversion", "GRCh38.p14", Bucket{GRCh38, Structural}},
		{"ucsc alias", "indel", "hg19", Bucket{GRCh37, Small}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, recs, _ := newRouter(t, zap.NewNop())
			set := &model.ClinVarSet{RefAssertion: &model.ReferenceClinVarAssertion{
				GenotypeSets: wrap(measure(tt.measureType, tt.assembly)),
			}}

			_, err := r.Route(time.Time{}, set)
			require.NoError(t, err)
			for _, b := range Buckets {
				want := 0
				if b == tt.want {
					want = 1
				}
				assert.Len(t, recs[b].rows, want, b.String())
			}
		})
	}
}

func TestRoute_RowFields(t *testing.T) {
	r, recs, _ := newRouter(t, zap.NewNop())
	release := time.Date(2023, 1, 7, 0, 0, 0, 0, time.UTC)
	desc := "Pathogenic"

	set := &model.ClinVarSet{
		ID:    9,
		Title: "title",
		RefAssertion: &model.ReferenceClinVarAssertion{
			Accession:  "RCV000000009",
			Version:    3,
			ClinSigs:   []model.ClinicalSignificance{{Description: &desc}, {}},
			TraitSets:  []model.TraitSet{{SetType: "Disease"}},
			Assessment: model.Assessment{GoldStars: 2, Pathogenicity: model.Pathogenic},
			GenotypeSets: wrap(
				measure("single nucleotide variant", "GRCh38", "GRCh37"),
				measure("copy number loss", "GRCh38"),
			),
		},
		// not routed while a reference assertion exists
		Assertions: []model.ClinVarAssertion{{GenotypeSets: wrap(measure("single nucleotide variant", "GRCh37"))}},
	}

	n, err := r.Route(release, set)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	small37 := recs[Bucket{GRCh37, Small}].rows
	require.Len(t, small37, 1)
	row := small37[0]
	assert.Equal(t, release, row.Release)
	assert.Equal(t, uint32(9), row.Set.ID)
	assert.Equal(t, "RCV000000009", row.Accession)
	assert.Equal(t, uint32(3), row.Version)
	assert.Equal(t, model.Pathogenic, row.Assessment.Pathogenicity)
	require.NotNil(t, row.ClinSig)
	assert.Equal(t, &desc, row.ClinSig.Description)
	assert.Len(t, row.TraitSets, 1)
	assert.Equal(t, "GRCh37", row.Location.Assembly)
	assert.Equal(t, "single nucleotide variant", row.Measure.MeasureType)

	assert.Len(t, recs[Bucket{GRCh38, Small}].rows, 1)
	assert.Len(t, recs[Bucket{GRCh38, Structural}].rows, 1)
	assert.Empty(t, recs[Bucket{GRCh37, Structural}].rows)
}

func TestRoute_SubmitterAssertionsWithoutReference(t *testing.T) {
	r, recs, _ := newRouter(t, zap.NewNop())
	set := &model.ClinVarSet{Assertions: []model.ClinVarAssertion{
		{Accession: "SCV1", GenotypeSets: wrap(measure("single nucleotide variant", "GRCh38"))},
		{Accession: "SCV2", GenotypeSets: wrap(measure("single nucleotide variant", "GRCh38"))},
	}}

	n, err := r.Route(time.Time{}, set)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows := recs[Bucket{GRCh38, Small}].rows
	require.Len(t, rows, 2)
	assert.Equal(t, "SCV1", rows[0].Accession)
	assert.Equal(t, "SCV2", rows[1].Accession)
}

func TestRoute_UnsupportedAssemblySkipped(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	r, recs, obs := newRouter(t, zap.New(core))

	set := &model.ClinVarSet{RefAssertion: &model.ReferenceClinVarAssertion{
		Accession:    "RCV1",
		GenotypeSets: wrap(measure("single nucleotide variant", "NCBI36", "GRCh38"), measure("deletion", "NCBI36")),
	}}

	n, err := r.Route(time.Time{}, set)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, recs[Bucket{GRCh38, Small}].rows, 1)
	assert.Equal(t, 2, obs.skipped["assembly"])
	// same assembly reported once
	assert.Equal(t, 1, logs.FilterMessage("skipping location on unsupported assembly").Len())
}

func TestRoute_SinkError(t *testing.T) {
	r, recs, _ := newRouter(t, zap.NewNop())
	boom := errors.New("disk full")
	recs[Bucket{GRCh38, Small}].err = boom

	set := &model.ClinVarSet{RefAssertion: &model.ReferenceClinVarAssertion{
		Accession:    "RCV1",
		GenotypeSets: wrap(measure("single nucleotide variant", "GRCh37", "GRCh38")),
	}}

	n, err := r.Route(time.Time{}, set)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "RCV1")
	assert.Equal(t, 1, n)
}

func TestNew_MissingSink(t *testing.T) {
	_, err := New(map[Bucket]Sink{{GRCh37, Small}: &recordingSink{}}, nil, nil, 0, nil)
	assert.Error(t, err)
}

func TestAssemblyOf(t *testing.T) {
	tests := []struct {
		label string
		want  Assembly
		ok    bool
	}{
		{"GRCh37", GRCh37, true},
		{"GRCh37.p13", GRCh37, true},
		{" grch38 ", GRCh38, true},
		{"hg38", GRCh38, true},
		{"NCBI36", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := AssemblyOf(tt.label)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBucketString(t *testing.T) {
	var names []string
	for _, b := range Buckets {
		names = append(names, b.String())
	}
	assert.Equal(t, []string{"b37.seqvars", "b37.strucvars", "b38.seqvars", "b38.strucvars"}, names)
}

func TestShapeOf_Defaults(t *testing.T) {
	r, _, _ := newRouter(t, zap.NewNop())

	tests := map[string]Shape{
		"single nucleotide variant": Small,
		"Deletion":                  Small,
		"Duplication":               Small,
		"copy number loss":          Structural,
		"Copy number gain":          Structural,
		" Tandem duplication ":      Structural,
		"Inversion":                 Structural,
	}
	for typ, want := range tests {
		assert.Equal(t, want, r.ShapeOf(typ), typ)
	}
}

func TestShapeOf_ConfiguredTypes(t *testing.T) {
	sinks := make(map[Bucket]Sink)
	for _, b := range Buckets {
		sinks[b] = &recordingSink{}
	}
	r, err := New(sinks, []string{"deletion", "duplication"}, zap.NewNop(), time.Hour, nil)
	require.NoError(t, err)

	assert.Equal(t, Structural, r.ShapeOf("Deletion"))
	assert.Equal(t, Structural, r.ShapeOf("Duplication"))
	assert.Equal(t, Small, r.ShapeOf("copy number loss"))
}
