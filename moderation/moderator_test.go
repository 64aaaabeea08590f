package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const replacementChar = '*'

// The dictionary uses specific words to avoid partial collisions
// (e.g., "he" inside "The").
func TestModerator_Censor(t *testing.T) {
	req := require.New(t)
	dictionary := []string{"badger", "snake", "mushroom"}
	mod, err := NewModerator(dictionary, replacementChar)
	req.NoError(err)

	tests := []struct {
		name     string
		input    string
		expected string
		words    []string
	}{
		{
			name:     "Simple word and space preservation",
			input:    "The badger is here",
			expected: "The ****** is here",
			words:    []string{"badger"},
		},
		{
			name:     "Multiple occurrences and preserved spacing",
			input:    "badger badger badger",
			expected: "****** ****** ******",
			words:    []string{"badger", "badger", "badger"},
		},
		{
			name: "Leet speak and internal punctuation",
			// B (index 8) . 4 . d . g . e r -> blanked as one span
			input:    "Look at B.4.d.g.3r !",
			expected: "Look at ********** !",
			words:    []string{"badger"},
		},
		{
			name:     "Uppercase is still matched",
			input:    "a SNAKE appears",
			expected: "a ***** appears",
			words:    []string{"snake"},
		},
		{
			name:     "Clean text is untouched",
			input:    "nothing to see here",
			expected: "nothing to see here",
			words:    nil,
		},
		{
			name:     "Word adjacent to trailing punctuation",
			input:    "I saw a mushroom!",
			expected: "I saw a ********!",
			words:    []string{"mushroom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			censored, found := mod.Censor(tt.input)
			req.Equal(tt.expected, censored)
			req.Len(found, len(tt.words))
		})
	}
}

func TestModerator_Sanitize_DetectsLanguage(t *testing.T) {
	req := require.New(t)
	mod, err := NewModerator([]string{"badger"}, replacementChar)
	req.NoError(err)

	clean, lang := mod.Sanitize("This badger sentence is clearly written in the English language")
	req.Contains(clean, "******")
	req.Equal("en", lang)
}

func TestLoadEmbedded_SkipsCommentsAndDeduplicates(t *testing.T) {
	req := require.New(t)

	data, err := LoadEmbedded()
	req.NoError(err)
	req.NotEmpty(data.Words)
	req.ElementsMatch([]string{"en", "fr"}, data.Languages)

	for _, w := range data.Words {
		req.NotEmpty(w)
		req.NotContains(w, "#")
	}

	// "idiot" appears in both lists but is loaded once
	count := 0
	for _, w := range data.Words {
		if w == "idiot" {
			count++
		}
	}
	req.Equal(1, count)
}
