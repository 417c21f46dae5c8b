// Package vocab maps free-text ClinVar labels onto fixed enumerations.
//
// The lookup tables are package-level values built once at init and never
// written afterwards, so a Normalizer is safe for concurrent use.
package vocab

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/clinvar-tsv/internal/logging"
	"github.com/ppiankov/clinvar-tsv/internal/model"
	"go.uber.org/zap"
)

var (
	// ErrUnknownReviewStatus is returned for review status labels outside the closed set
	ErrUnknownReviewStatus = errors.New("unknown review status")
	// ErrUnknownGoldStars is returned for review phrases without a gold star score
	ErrUnknownGoldStars = errors.New("unknown review status phrase")
)

// UnknownLabelObserver is notified about labels that fell back to a default
type UnknownLabelObserver interface {
	UnknownLabel(kind string)
}

// Normalizer converts labels and annotates finished records
type Normalizer struct {
	warner   *logging.Warner
	observer UnknownLabelObserver
}

// NewNormalizer creates a normalizer logging unknown labels to log.
// Repeated unknown labels are reported once per window.
func NewNormalizer(log *zap.Logger, window time.Duration, observer UnknownLabelObserver) *Normalizer {
	return &Normalizer{
		warner:   logging.NewWarner(log, window),
		observer: observer,
	}
}

// Pathogenicity maps a label to a Pathogenicity. Lookup is case-sensitive.
// Unknown labels are logged and map to Uncertain.
func (n *Normalizer) Pathogenicity(label string) model.Pathogenicity {
	if p, ok := pathogenicityLabels[label]; ok {
		return p
	}
	if n.observer != nil {
		n.observer.UnknownLabel("pathogenicity")
	}
	n.warner.Warn("label", label, "cannot decode pathogenicity, using uncertain significance")
	return model.Uncertain
}

// ReviewStatus maps a label to a ReviewStatus. Unknown labels are an error.
func ReviewStatus(label string) (model.ReviewStatus, error) {
	if rs, ok := reviewStatusLabels[label]; ok {
		return rs, nil
	}
	return model.NoAssertionCriteriaProvided, fmt.Errorf("%w: %q", ErrUnknownReviewStatus, label)
}

// GoldStars maps a full review status phrase to its gold star score
func GoldStars(phrase string) (model.GoldStars, error) {
	if gs, ok := goldStarPhrases[phrase]; ok {
		return gs, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownGoldStars, phrase)
}

// ReviewStatusFromPhrase derives the review status of a full phrase such as
// "criteria provided, multiple submitters, no conflicts". The last
// comma-separated qualifier is the most specific one and decides.
func ReviewStatusFromPhrase(phrase string) (model.ReviewStatus, error) {
	parts := strings.Split(phrase, ",")
	return ReviewStatus(strings.TrimSpace(parts[len(parts)-1]))
}

// Annotate fills the derived assessment of every assertion in set.
// An unknown review status or gold star phrase fails the record.
func (n *Normalizer) Annotate(set *model.ClinVarSet) error {
	if rcv := set.RefAssertion; rcv != nil {
		a, err := n.assess(rcv.ClinSigs)
		if err != nil {
			return fmt.Errorf("clinvar set %d: reference assertion %s: %w", set.ID, rcv.Accession, err)
		}
		rcv.Assessment = a
	}
	for i := range set.Assertions {
		scv := &set.Assertions[i]
		a, err := n.assess(scv.ClinSigs)
		if err != nil {
			return fmt.Errorf("clinvar set %d: assertion %s: %w", set.ID, scv.Accession, err)
		}
		scv.Assessment = a
	}
	return nil
}

// assess derives the assessment from the first clinical significance.
// Assertions without one, or with an empty review status, keep the defaults.
func (n *Normalizer) assess(sigs []model.ClinicalSignificance) (model.Assessment, error) {
	var a model.Assessment
	if len(sigs) == 0 {
		return a, nil
	}
	cs := sigs[0]

	if phrase := strings.TrimSpace(cs.ReviewStatus); phrase != "" {
		stars, err := GoldStars(phrase)
		if err != nil {
			return a, err
		}
		status, err := ReviewStatusFromPhrase(phrase)
		if err != nil {
			return a, err
		}
		a.GoldStars = stars
		a.ReviewStatus = status
	}

	if cs.Description != nil {
		a.Pathogenicity = n.Pathogenicity(strings.ToLower(strings.TrimSpace(*cs.Description)))
	}
	return a, nil
}
