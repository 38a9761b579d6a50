package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "Zettelkasten", "zettelkasten"},
		{"trims", "  habit loop  ", "habit loop"},
		{"collapses whitespace", "spaced\t\nrepetition", "spaced repetition"},
		{"strips punctuation", "PARA (Projects, Areas...)", "para projects areas"},
		{"keeps hyphens", "mind-mapping", "mind-mapping"},
		{"keeps digits", "5 Whys", "5 whys"},
		{"empty", "", ""},
		{"only punctuation", "?!.,", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Zettelkasten ",
		"  Getting  Things   DONE!",
		"mind-mapping",
		"",
		"Évergreen Notes",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}
