package service

import (
	"testing"

	"k12_curriculum_backend/internal/model"
	"k12_curriculum_backend/internal/util"

	"github.com/stretchr/testify/require"
)

func TestPlaceholderPromptUsesModuleTitle(t *testing.T) {
	row := model.ModuleGapRow{
		ModuleSlug:  "fractions-number-line",
		ModuleTitle: "Fractions on a Number Line",
		GradeBand:   "3",
		Subject:     util.SubjectMathematics,
	}

	got := PlaceholderItems{}.Prompt(row, 4)
	require.Equal(t, "Practice question 4 for Fractions on a Number Line (Grade 3 Mathematics)", got)
}

func TestPlaceholderPromptHumanizesSlugWithoutTitle(t *testing.T) {
	row := model.ModuleGapRow{
		ModuleSlug: "fractions-number-line",
		GradeBand:  "3",
		Subject:    util.SubjectMathematics,
	}

	got := PlaceholderItems{}.Prompt(row, 1)
	require.Equal(t, "Practice question 1 for Fractions Number Line (Grade 3 Mathematics)", got)
}

func TestPlaceholderOptionsHaveOneCorrect(t *testing.T) {
	opts := PlaceholderItems{}.Options(model.ModuleGapRow{}, 1)
	require.Len(t, opts, 4)

	correct := 0
	for _, o := range opts {
		if o.Correct {
			correct++
		}
	}
	require.Equal(t, 1, correct)
}
