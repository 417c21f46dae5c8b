package vocab

import "github.com/ppiankov/clinvar-tsv/internal/model"

type pathogenicityLabel struct {
	label string
	value model.Pathogenicity
}

// pathogenicityRegistrations lists labels in registration order. Some labels
// ("association", "confers sensitivity", "protective", "risk factor") appear
// twice with different values; the later registration wins. Which value was
// intended for them is not known, so the order here must not be changed.
var pathogenicityRegistrations = []pathogenicityLabel{
	{"benign", model.Benign},
	{"no known pathogenicity", model.Benign},
	{"non-pathogenic", model.Benign},
	{"poly", model.Benign},

	{"likely benign", model.LikelyBenign},
	{"probable-non-pathogenic", model.LikelyBenign},
	{"probably not pathogenic", model.LikelyBenign},
	{"protective", model.LikelyBenign},
	{"suspected benign", model.LikelyBenign},

	{"uncertain significance", model.Uncertain},
	{"association", model.Uncertain},
	{"association not found", model.Uncertain},
	{"cancer", model.Uncertain},
	{"confers sensitivity", model.Uncertain},
	{"drug response", model.Uncertain},
	{"drug-response", model.Uncertain},
	{"histocompatibility", model.Uncertain},
	{"not provided", model.Uncertain},
	{"other", model.Uncertain},
	{"protective", model.Uncertain},
	{"risk factor", model.Uncertain},
	{"uncertain", model.Uncertain},
	{"unknown", model.Uncertain},
	{"untested", model.Uncertain},
	{"variant of unknown significance", model.Uncertain},
	{"associated with leiomyomas", model.Uncertain},

	{"likely pathogenic", model.LikelyPathogenic},
	{"affects", model.LikelyPathogenic},
	{"association", model.LikelyPathogenic},
	{"confers sensitivity", model.LikelyPathogenic},
	{"conflicting interpretations of pathogenicity", model.LikelyPathogenic},
	{"probable-pathogenic", model.LikelyPathogenic},
	{"probably pathogenic", model.LikelyPathogenic},
	{"risk factor", model.LikelyPathogenic},
	{"suspected pathogenic", model.LikelyPathogenic},

	{"pathogenic", model.Pathogenic},
	{"moderate", model.Pathogenic},
	{"mut", model.Pathogenic},
	{"pathologic", model.Pathogenic},
}

var reviewStatusLabels = map[string]model.ReviewStatus{
	"conflicting interpretations":                  model.ConflictingInterpretations,
	"conflicting interpretations of pathogenicity": model.ConflictingInterpretations,
	"criteria provided":                            model.CriteriaProvided,
	"multiple submitters":                          model.MultipleSubmitters,
	"no assertion criteria provided":               model.NoAssertionCriteriaProvided,
	"no assertion provided":                        model.NoAssertionProvided,
	"no conflicts":                                 model.NoConflicts,
	"practice guideline":                           model.PracticeGuideline,
	"reviewed by expert panel":                     model.ExpertPanel,
	"single submitter":                             model.SingleSubmitter,
}

var goldStarPhrases = map[string]model.GoldStars{
	"no assertion provided":                                0,
	"no assertion criteria provided":                       0,
	"criteria provided, single submitter":                  1,
	"criteria provided, multiple submitters, no conflicts": 2,
	"criteria provided, conflicting interpretations":       1,
	"reviewed by expert panel":                             3,
	"practice guideline":                                   4,
}

// pathogenicityLabels is built once from the ordered registrations
var pathogenicityLabels = buildPathogenicityTable(pathogenicityRegistrations)

func buildPathogenicityTable(entries []pathogenicityLabel) map[string]model.Pathogenicity {
	table := make(map[string]model.Pathogenicity, len(entries))
	for _, e := range entries {
		table[e.label] = e.value // last registration wins
	}
	return table
}
