package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const tolerance = 1e-9

func TestEditSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "zettelkasten", "zettelkasten", 1},
		{"both empty", "", "", 1},
		{"one empty", "habit", "", 0},
		{"kitten sitting", "kitten", "sitting", 1 - 3.0/7},
		{"case and spacing ignored", "Habit Loop", "habit   loop", 1},
		{"disjoint", "abc", "xyz", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, EditSimilarity(tt.a, tt.b), tolerance)
		})
	}
}

func TestJaroWinklerKnownValues(t *testing.T) {
	// Published values for the standard algorithm.
	assert.InDelta(t, 0.9611111111, JaroWinkler("martha", "marhta"), 1e-6)
	assert.InDelta(t, 0.8400000000, JaroWinkler("dwayne", "duane"), 1e-6)
	assert.Equal(t, 1.0, JaroWinkler("same", "same"))
	assert.Equal(t, 1.0, JaroWinkler("", ""))
	assert.Equal(t, 0.0, JaroWinkler("abc", ""))
}

func TestJaroWinklerPrefixBoost(t *testing.T) {
	// A pair sharing a prefix must beat an equally-distant pair that
	// differs at the front.
	shared := JaroWinkler("mindmap", "mindmup")
	unshared := JaroWinkler("mindmap", "nindmap")
	assert.Greater(t, shared, unshared)
}

func TestTFIDFCosine(t *testing.T) {
	assert.Equal(t, 0.0, TFIDFCosine("", "anything"))
	assert.Equal(t, 0.0, TFIDFCosine("anything", ""))
	assert.Equal(t, 0.0, TFIDFCosine("...", "anything"))
	assert.InDelta(t, 1.0, TFIDFCosine("spaced repetition schedules reviews", "spaced repetition schedules reviews"), tolerance)
	assert.Equal(t, 0.0, TFIDFCosine("alpha beta", "gamma delta"))

	partial := TFIDFCosine(
		"a method for spaced repetition of flashcards",
		"a method for interleaved practice of problems",
	)
	assert.Greater(t, partial, 0.0)
	assert.Less(t, partial, 1.0)
}

func TestMetricBounds(t *testing.T) {
	pairs := [][2]string{
		{"Zettelkasten", "Evergreen Notes"},
		{"PARA Method", "para method"},
		{"", "x"},
		{"a", "a"},
		{"habit loop", "loop habit"},
		{"deep work", "shallow work but much longer text entirely"},
	}
	for _, p := range pairs {
		for _, sim := range []float64{
			EditSimilarity(p[0], p[1]),
			JaroWinkler(p[0], p[1]),
			TFIDFCosine(p[0], p[1]),
		} {
			assert.GreaterOrEqual(t, sim, 0.0, "pair %v", p)
			assert.LessOrEqual(t, sim, 1.0, "pair %v", p)
		}
	}
}

func TestMetricSymmetry(t *testing.T) {
	pairs := [][2]string{
		{"Zettelkasten", "Zettelkasten Method"},
		{"habit loop", "feedback loop"},
		{"spaced repetition reviews", "spacing out repetition"},
		{"", "nonempty"},
	}
	for _, p := range pairs {
		assert.InDelta(t, EditSimilarity(p[0], p[1]), EditSimilarity(p[1], p[0]), tolerance, "edit %v", p)
		assert.InDelta(t, JaroWinkler(p[0], p[1]), JaroWinkler(p[1], p[0]), tolerance, "jw %v", p)
		assert.InDelta(t, TFIDFCosine(p[0], p[1]), TFIDFCosine(p[1], p[0]), tolerance, "tfidf %v", p)
	}
}
