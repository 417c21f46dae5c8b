// Package router flattens finished ClinVarSet records into one row per
// measure and sequence location and dispatches each row to the sink of its
// (assembly, shape) bucket.
package router

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/clinvar-tsv/internal/logging"
	"github.com/ppiankov/clinvar-tsv/internal/model"
	"go.uber.org/zap"
)

// Assembly is a genome release family
type Assembly int

const (
	GRCh37 Assembly = iota + 1
	GRCh38
)

func (a Assembly) String() string {
	switch a {
	case GRCh37:
		return "b37"
	case GRCh38:
		return "b38"
	default:
		return "unknown"
	}
}

// Shape separates small sequence variants from structural variants
type Shape int

const (
	Small Shape = iota + 1
	Structural
)

func (s Shape) String() string {
	switch s {
	case Small:
		return "seqvars"
	case Structural:
		return "strucvars"
	default:
		return "unknown"
	}
}

// Bucket is one of the four output destinations
type Bucket struct {
	Assembly Assembly
	Shape    Shape
}

func (b Bucket) String() string {
	return b.Assembly.String() + "." + b.Shape.String()
}

// Buckets lists every bucket in output order
var Buckets = [4]Bucket{
	{GRCh37, Small},
	{GRCh37, Structural},
	{GRCh38, Small},
	{GRCh38, Structural},
}

// Row is one flattened (measure, location) pair of a routed assertion.
// Its pointers reference the record being routed and are only valid during
// the Write call.
type Row struct {
	Release     time.Time
	Set         *model.ClinVarSet
	Accession   string
	Version     uint32
	Assessment  model.Assessment
	ClinSig     *model.ClinicalSignificance // first one, nil if none
	TraitSets   []model.TraitSet
	GenotypeSet *model.GenotypeSet
	MeasureSet  *model.MeasureSet
	Measure     *model.Measure
	Location    *model.SequenceLocation
}

// Sink receives the rows of one bucket
type Sink interface {
	Write(row *Row) error
}

// Observer is notified about routing decisions
type Observer interface {
	RowRouted(bucket string)
	LocationSkipped(reason string)
}

// Router dispatches rows to the four sinks
type Router struct {
	sinks      map[Bucket]Sink
	structural map[string]struct{}
	warner     *logging.Warner
	observer   Observer
}

// New creates a Router. sinks must hold a sink for every bucket.
// structuralTypes lists the measure types routed as structural variants,
// compared case-insensitively.
func New(sinks map[Bucket]Sink, structuralTypes []string, log *zap.Logger, window time.Duration, observer Observer) (*Router, error) {
	for _, b := range Buckets {
		if sinks[b] == nil {
			return nil, fmt.Errorf("no sink for bucket %s", b)
		}
	}

	structural := make(map[string]struct{}, len(structuralTypes))
	for _, t := range structuralTypes {
		structural[normalizeType(t)] = struct{}{}
	}

	return &Router{
		sinks:      sinks,
		structural: structural,
		warner:     logging.NewWarner(log, window),
		observer:   observer,
	}, nil
}

// AssemblyOf maps an assembly label to its family. Patch releases and the
// common UCSC aliases are accepted.
func AssemblyOf(label string) (Assembly, bool) {
	l := strings.ToLower(strings.TrimSpace(label))
	switch {
	case strings.HasPrefix(l, "grch37"), l == "hg19", l == "b37":
		return GRCh37, true
	case strings.HasPrefix(l, "grch38"), l == "hg38", l == "b38":
		return GRCh38, true
	default:
		return 0, false
	}
}

// ShapeOf classifies a measure type
func (r *Router) ShapeOf(measureType string) Shape {
	if _, ok := r.structural[normalizeType(measureType)]; ok {
		return Structural
	}
	return Small
}

func normalizeType(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

// Route writes the rows of set. Rows come from the reference assertion;
// sets without one fall back to each submitter assertion. It returns the
// number of rows written.
func (r *Router) Route(release time.Time, set *model.ClinVarSet) (int, error) {
	if rcv := set.RefAssertion; rcv != nil {
		return r.routeAssertion(&Row{
			Release:    release,
			Set:        set,
			Accession:  rcv.Accession,
			Version:    rcv.Version,
			Assessment: rcv.Assessment,
			ClinSig:    first(rcv.ClinSigs),
			TraitSets:  rcv.TraitSets,
		}, rcv.GenotypeSets)
	}

	total := 0
	for i := range set.Assertions {
		scv := &set.Assertions[i]
		n, err := r.routeAssertion(&Row{
			Release:    release,
			Set:        set,
			Accession:  scv.Accession,
			Version:    scv.Version,
			Assessment: scv.Assessment,
			ClinSig:    first(scv.ClinSigs),
			TraitSets:  scv.TraitSets,
		}, scv.GenotypeSets)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// routeAssertion emits one row per measure location below genotypeSets,
// filling in the per-row fields of base.
func (r *Router) routeAssertion(base *Row, genotypeSets []model.GenotypeSet) (int, error) {
	written := 0
	for gi := range genotypeSets {
		gs := &genotypeSets[gi]
		for mi := range gs.MeasureSets {
			ms := &gs.MeasureSets[mi]
			for i := range ms.Measures {
				m := &ms.Measures[i]
				shape := r.ShapeOf(m.MeasureType)

				for _, key := range sortedKeys(m.Locations) {
					loc := m.Locations[key]
					asm, ok := AssemblyOf(loc.Assembly)
					if !ok {
						r.skip("assembly", loc.Assembly, base.Accession)
						continue
					}

					bucket := Bucket{asm, shape}
					row := *base
					row.GenotypeSet, row.MeasureSet, row.Measure, row.Location = gs, ms, m, &loc
					if err := r.sinks[bucket].Write(&row); err != nil {
						return written, fmt.Errorf("write %s row for %s: %w", bucket, base.Accession, err)
					}
					written++
					if r.observer != nil {
						r.observer.RowRouted(bucket.String())
					}
				}
			}
		}
	}
	return written, nil
}

func (r *Router) skip(reason, value, accession string) {
	if r.observer != nil {
		r.observer.LocationSkipped(reason)
	}
	r.warner.Warn(reason, value, "skipping location on unsupported assembly", zap.String("accession", accession))
}

func first(sigs []model.ClinicalSignificance) *model.ClinicalSignificance {
	if len(sigs) == 0 {
		return nil
	}
	return &sigs[0]
}

// sortedKeys fixes the row order of a measure's locations
func sortedKeys(m map[string]model.SequenceLocation) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
