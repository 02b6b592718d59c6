package service

import (
	"fmt"
	"strings"

	"k12_curriculum_backend/internal/model"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ItemTextStrategy produces the prompt and answer options for backfilled
// practice items. The numeric backfill contract is fixed; the text itself is
// deliberately pluggable so placeholder copy can be swapped for generated or
// authored content without touching the gap filler.
type ItemTextStrategy interface {
	Prompt(row model.ModuleGapRow, seq int) string
	Options(row model.ModuleGapRow, seq int) []model.PracticeOption
}

// PlaceholderItems emits low-fidelity placeholder text: a generic on-grade
// prompt with one correct and three plausible-wrong options.
type PlaceholderItems struct{}

func (PlaceholderItems) Prompt(row model.ModuleGapRow, seq int) string {
	return fmt.Sprintf("Practice question %d for %s (Grade %s %s)",
		seq, moduleDisplayTitle(row), row.GradeBand, row.Subject)
}

func (PlaceholderItems) Options(row model.ModuleGapRow, seq int) []model.PracticeOption {
	return []model.PracticeOption{
		{Text: "Correct answer (on-grade)", Correct: true},
		{Text: "Plausible distractor A", Correct: false},
		{Text: "Plausible distractor B", Correct: false},
		{Text: "Plausible distractor C", Correct: false},
	}
}

func moduleDisplayTitle(row model.ModuleGapRow) string {
	if row.ModuleTitle != "" {
		return row.ModuleTitle
	}
	// Fall back to a humanized slug for modules imported without titles.
	return cases.Title(language.English).String(strings.ReplaceAll(row.ModuleSlug, "-", " "))
}
