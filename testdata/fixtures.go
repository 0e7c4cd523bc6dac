// Package testdata provides golden document pairs for the plagiarism
// detector. Each fixture carries the two raw texts and the expected
// vocabulary statistics, used to validate the analysis session, the HTTP
// API and report recording.
package testdata

// Fixture represents a single golden comparison scenario.
type Fixture struct {
	Name            string   // human-readable scenario name
	TextA           string   // first document
	TextB           string   // second document
	ExpectedTotalA  int      // tokens in TextA
	ExpectedTotalB  int      // tokens in TextB
	ExpectedCommon  int      // |vocab(A) ∩ vocab(B)|
	ExpectedUnion   int      // |vocab(A) ∪ vocab(B)|
	ExpectedPercent float64  // 100 × common / union
	ExpectedFlagged bool     // at the default 50% threshold
	ExpectedWords   []string // common words, sorted
}

// CatAndDog is the textbook partial-overlap pair.
func CatAndDog() Fixture {
	return Fixture{
		Name:            "cat_and_dog",
		TextA:           "The cat sat on the mat",
		TextB:           "The dog sat on the rug",
		ExpectedTotalA:  6,
		ExpectedTotalB:  6,
		ExpectedCommon:  3,
		ExpectedUnion:   7,
		ExpectedPercent: 300.0 / 7.0,
		ExpectedFlagged: false,
		ExpectedWords:   []string{"on", "sat", "the"},
	}
}

// Identical compares a document with itself.
func Identical() Fixture {
	text := "To be, or not to be, that is the question."
	return Fixture{
		Name:            "identical",
		TextA:           text,
		TextB:           text,
		ExpectedTotalA:  10,
		ExpectedTotalB:  10,
		ExpectedCommon:  8,
		ExpectedUnion:   8,
		ExpectedPercent: 100,
		ExpectedFlagged: true,
		ExpectedWords:   []string{"be", "is", "not", "or", "question", "that", "the", "to"},
	}
}

// Disjoint has no shared vocabulary.
func Disjoint() Fixture {
	return Fixture{
		Name:            "disjoint",
		TextA:           "Alpha beta gamma",
		TextB:           "delta epsilon zeta",
		ExpectedTotalA:  3,
		ExpectedTotalB:  3,
		ExpectedCommon:  0,
		ExpectedUnion:   6,
		ExpectedPercent: 0,
		ExpectedFlagged: false,
	}
}

// Empty has no indexable words on either side.
func Empty() Fixture {
	return Fixture{
		Name:            "empty",
		TextA:           "",
		TextB:           "1 2 3 ... ! ? a",
		ExpectedPercent: 0,
		ExpectedFlagged: false,
	}
}

// CaseAndPunctuation differs only in case, punctuation and digits.
func CaseAndPunctuation() Fixture {
	return Fixture{
		Name:            "case_and_punctuation",
		TextA:           "Hello, World! It's 2024.",
		TextB:           "hello world -- it S",
		ExpectedTotalA:  3,
		ExpectedTotalB:  3,
		ExpectedCommon:  3,
		ExpectedUnion:   3,
		ExpectedPercent: 100,
		ExpectedFlagged: true,
		ExpectedWords:   []string{"hello", "it", "world"},
	}
}

// Paraphrase is a reworded essay paragraph that lands just under the
// default threshold.
func Paraphrase() Fixture {
	return Fixture{
		Name: "paraphrase",
		TextA: `Climate change is one of the most pressing issues of our time. Rising global
temperatures threaten ecosystems, agriculture, and coastal cities. Governments
must act now to reduce carbon emissions and invest in renewable energy.`,
		TextB: `Climate change remains one of the most urgent issues of our generation. Rising
temperatures threaten farming, wildlife, and cities along the coast. Nations
must act quickly to cut carbon emissions and invest in clean energy.`,
		ExpectedTotalA:  34,
		ExpectedTotalB:  35,
		ExpectedCommon:  21,
		ExpectedUnion:   43,
		ExpectedPercent: 2100.0 / 43.0,
		ExpectedFlagged: false,
		ExpectedWords: []string{
			"act", "and", "carbon", "change", "cities", "climate", "emissions",
			"energy", "in", "invest", "issues", "most", "must", "of", "one",
			"our", "rising", "temperatures", "the", "threaten", "to",
		},
	}
}

// AllFixtures returns every golden scenario.
func AllFixtures() []Fixture {
	return []Fixture{
		CatAndDog(),
		Identical(),
		Disjoint(),
		Empty(),
		CaseAndPunctuation(),
		Paraphrase(),
	}
}
