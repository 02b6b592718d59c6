package service

import (
	"fmt"

	"k12_curriculum_backend/internal/model"
)

// strandCoverageRatio is the share of strands that must meet the per-strand
// lesson minimum for the full tier. Cells without strand data pass vacuously.
const strandCoverageRatio = 0.70

// EvaluateCoverageStatus classifies one cell from its raw counts. The status
// is recomputed on every call; nothing is stored. Tiers are checked in order
// ready → beta → thin, with empty as the terminal floor. Cells below ready
// also get a list of their specific shortfalls against the full tier.
func EvaluateCoverageStatus(counts model.GradeSubjectCounts, full, beta model.CoverageThresholds) (model.CoverageStatus, []string) {
	if counts.ModuleCount == 0 || counts.LessonCount == 0 {
		return model.CoverageEmpty, emptyDetails(counts)
	}

	if meetsTier(counts, full) && meetsStrandCoverage(counts) {
		return model.CoverageReady, nil
	}

	details := shortfallDetails(counts, full)

	if meetsTier(counts, beta) {
		return model.CoverageBeta, details
	}
	return model.CoverageThin, details
}

// meetsTier checks module count, total lessons and average questions per
// lesson against one tier. Strand coverage is checked separately because it
// only applies to the full tier.
func meetsTier(counts model.GradeSubjectCounts, t model.CoverageThresholds) bool {
	return counts.ModuleCount >= t.MinModules &&
		counts.LessonCount >= t.MinTotalLessons &&
		counts.AvgQuestionsPerLesson() >= float64(t.MinQuestionsPerLesson)
}

func meetsStrandCoverage(counts model.GradeSubjectCounts) bool {
	if counts.TotalStrands == 0 {
		return true
	}
	ratio := float64(counts.StrandsWithContent) / float64(counts.TotalStrands)
	return ratio >= strandCoverageRatio
}

func emptyDetails(counts model.GradeSubjectCounts) []string {
	if counts.ModuleCount == 0 {
		return []string{"No modules"}
	}
	return []string{"No lessons"}
}

func shortfallDetails(counts model.GradeSubjectCounts, full model.CoverageThresholds) []string {
	var details []string
	if counts.ModuleCount < full.MinModules {
		details = append(details, fmt.Sprintf("Only %d/%d modules", counts.ModuleCount, full.MinModules))
	}
	if counts.LessonCount < full.MinTotalLessons {
		details = append(details, fmt.Sprintf("Only %d/%d lessons", counts.LessonCount, full.MinTotalLessons))
	}
	if avg := counts.AvgQuestionsPerLesson(); avg < float64(full.MinQuestionsPerLesson) {
		details = append(details, fmt.Sprintf("Avg %.1f questions per lesson (need %d)", avg, full.MinQuestionsPerLesson))
	}
	if !meetsStrandCoverage(counts) {
		details = append(details, fmt.Sprintf("Strand coverage %d/%d (need 70%%)", counts.StrandsWithContent, counts.TotalStrands))
	}
	return details
}
