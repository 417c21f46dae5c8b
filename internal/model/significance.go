package model

// Pathogenicity is the clinical significance call on a five-level scale.
// Values are ordered from benign to pathogenic; the zero value is Uncertain.
type Pathogenicity int

const (
	Benign           Pathogenicity = -2
	LikelyBenign     Pathogenicity = -1
	Uncertain        Pathogenicity = 0
	LikelyPathogenic Pathogenicity = 1
	Pathogenic       Pathogenicity = 2
)

func (p Pathogenicity) String() string {
	switch p {
	case Benign:
		return "benign"
	case LikelyBenign:
		return "likely benign"
	case Uncertain:
		return "uncertain significance"
	case LikelyPathogenic:
		return "likely pathogenic"
	case Pathogenic:
		return "pathogenic"
	default:
		return "unknown"
	}
}

// MarshalText encodes the pathogenicity as its label
func (p Pathogenicity) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// ReviewStatus describes how a call was reviewed. The set is closed and
// unordered; the zero value is NoAssertionCriteriaProvided.
type ReviewStatus int

const (
	NoAssertionCriteriaProvided ReviewStatus = iota
	ConflictingInterpretations
	CriteriaProvided
	MultipleSubmitters
	NoAssertionProvided
	NoConflicts
	PracticeGuideline
	ExpertPanel
	SingleSubmitter
)

func (r ReviewStatus) String() string {
	switch r {
	case NoAssertionCriteriaProvided:
		return "no assertion criteria provided"
	case ConflictingInterpretations:
		return "conflicting interpretations"
	case CriteriaProvided:
		return "criteria provided"
	case MultipleSubmitters:
		return "multiple submitters"
	case NoAssertionProvided:
		return "no assertion provided"
	case NoConflicts:
		return "no conflicts"
	case PracticeGuideline:
		return "practice guideline"
	case ExpertPanel:
		return "reviewed by expert panel"
	case SingleSubmitter:
		return "single submitter"
	default:
		return "unknown"
	}
}

// MarshalText encodes the review status as its label
func (r ReviewStatus) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// GoldStars is the 0-4 confidence score shown by ClinVar
type GoldStars uint32
