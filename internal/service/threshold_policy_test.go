package service

import (
	"testing"

	"k12_curriculum_backend/internal/model"
	"k12_curriculum_backend/internal/util"

	"github.com/stretchr/testify/require"
)

func TestThresholdsDefaults(t *testing.T) {
	p := NewThresholdPolicy()

	got := p.Thresholds("5", util.SubjectMathematics)
	require.Equal(t, model.CoverageThresholds{
		MinLessonsPerStrand:   3,
		MinQuestionsPerLesson: 4,
		MinTotalLessons:       20,
		MinModules:            5,
	}, got)
}

func TestThresholdsEarlyGradeOverride(t *testing.T) {
	p := NewThresholdPolicy()

	for _, grade := range []string{"K", "1", "2"} {
		for _, subject := range []string{util.SubjectMathematics, util.SubjectELA} {
			got := p.Thresholds(grade, subject)
			require.Equal(t, 2, got.MinLessonsPerStrand, "%s %s", grade, subject)
			require.Equal(t, 12, got.MinTotalLessons, "%s %s", grade, subject)
			// Untouched components keep the defaults.
			require.Equal(t, 4, got.MinQuestionsPerLesson, "%s %s", grade, subject)
			require.Equal(t, 5, got.MinModules, "%s %s", grade, subject)
		}
	}

	// The override targets Math and ELA only.
	require.Equal(t, 3, p.Thresholds("K", util.SubjectScience).MinLessonsPerStrand)
}

func TestThresholdsSpecializedSubjectOverride(t *testing.T) {
	p := NewThresholdPolicy()

	for _, grade := range []string{"11", "12"} {
		for _, subject := range []string{"Statistics", "Economics"} {
			got := p.Thresholds(grade, subject)
			require.Equal(t, 3, got.MinModules, "%s %s", grade, subject)
			require.Equal(t, 20, got.MinTotalLessons, "%s %s", grade, subject)
		}
	}
}

func TestBetaThresholdsFromDefaults(t *testing.T) {
	p := NewThresholdPolicy()

	got := p.BetaThresholds("5", util.SubjectMathematics)
	require.Equal(t, model.CoverageThresholds{
		MinLessonsPerStrand:   2,
		MinQuestionsPerLesson: 2,
		MinTotalLessons:       8,
		MinModules:            3,
	}, got)
}

func TestBetaNeverExceedsFull(t *testing.T) {
	p := NewThresholdPolicy()

	for _, cell := range p.ScopedCells() {
		full := p.Thresholds(cell.GradeBand, cell.Subject)
		beta := p.BetaThresholds(cell.GradeBand, cell.Subject)

		require.LessOrEqual(t, beta.MinLessonsPerStrand, full.MinLessonsPerStrand, "%s %s", cell.GradeBand, cell.Subject)
		require.LessOrEqual(t, beta.MinQuestionsPerLesson, full.MinQuestionsPerLesson, "%s %s", cell.GradeBand, cell.Subject)
		require.LessOrEqual(t, beta.MinTotalLessons, full.MinTotalLessons, "%s %s", cell.GradeBand, cell.Subject)
		require.LessOrEqual(t, beta.MinModules, full.MinModules, "%s %s", cell.GradeBand, cell.Subject)
	}
}

func TestInScope(t *testing.T) {
	p := NewThresholdPolicy()

	require.True(t, p.InScope("K", util.SubjectSocialStudies))
	require.True(t, p.InScope("8", util.SubjectSocialStudies))
	require.True(t, p.InScope("9", util.SubjectScience))
	require.True(t, p.InScope("11", "Economics"))
	require.True(t, p.InScope("12", "Statistics"))

	// Social Studies ends at grade 8; Statistics starts at grade 11.
	require.False(t, p.InScope("9", util.SubjectSocialStudies))
	require.False(t, p.InScope("10", "Statistics"))
	require.False(t, p.InScope("13", util.SubjectMathematics))
	require.False(t, p.InScope("5", "Art"))
}

func TestScopedCellCount(t *testing.T) {
	p := NewThresholdPolicy()

	// K-8 x 4 subjects, 9-10 x 3, 11-12 x 5.
	require.Len(t, p.ScopedCells(), 9*4+2*3+2*5)
}
