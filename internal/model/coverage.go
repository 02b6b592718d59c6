package model

// CoverageStatus classifies one grade/subject cell. It is recomputed from raw
// counts on every evaluation and never persisted.
type CoverageStatus string

const (
	CoverageReady CoverageStatus = "ready"
	CoverageBeta  CoverageStatus = "beta"
	CoverageThin  CoverageStatus = "thin"
	CoverageEmpty CoverageStatus = "empty"
)

// CoverageThresholds is one tier (full or beta) for a grade/subject cell.
type CoverageThresholds struct {
	MinLessonsPerStrand   int `json:"minLessonsPerStrand"`
	MinQuestionsPerLesson int `json:"minQuestionsPerLesson"`
	MinTotalLessons       int `json:"minTotalLessons"`
	MinModules            int `json:"minModules"`
}

// GradeSubjectCounts is the raw aggregate input to the evaluator.
type GradeSubjectCounts struct {
	GradeBand          string `json:"gradeBand"`
	Subject            string `json:"subject"`
	ModuleCount        int    `json:"moduleCount"`
	LessonCount        int    `json:"lessonCount"`
	QuestionCount      int    `json:"questionCount"`
	StrandsWithContent int    `json:"strandsWithContent"`
	TotalStrands       int    `json:"totalStrands"`
}

// AvgQuestionsPerLesson is 0 when the cell has no lessons.
func (c GradeSubjectCounts) AvgQuestionsPerLesson() float64 {
	if c.LessonCount == 0 {
		return 0
	}
	return float64(c.QuestionCount) / float64(c.LessonCount)
}

// CellAggregate is the pre-policy aggregate for one cell: raw counts plus the
// lesson tally per strand. StrandsWithContent is derived from StrandLessons
// once the per-strand lesson minimum for the cell is known.
type CellAggregate struct {
	GradeBand     string
	Subject       string
	ModuleCount   int
	LessonCount   int
	QuestionCount int
	StrandLessons map[string]int
}

// GradeSubjectCoverage is the derived readiness record for one cell.
// swagger:model GradeSubjectCoverage
type GradeSubjectCoverage struct {
	GradeBand string             `json:"gradeBand"`
	Subject   string             `json:"subject"`
	Status    CoverageStatus     `json:"status"`
	Counts    GradeSubjectCounts `json:"counts"`
	Details   []string           `json:"details,omitempty"`
}

// swagger:model CoverageSummary
type CoverageSummary struct {
	Ready            int      `json:"ready"`
	Beta             int      `json:"beta"`
	Thin             int      `json:"thin"`
	Empty            int      `json:"empty"`
	InScopeCells     int      `json:"inScopeCells"`
	ReadinessPercent float64  `json:"readinessPercent"`
	TopGaps          []string `json:"topGaps"`
}

// ModuleCell locates a module inside the coverage grid.
type ModuleCell struct {
	ModuleID  uint   `json:"moduleId"`
	GradeBand string `json:"gradeBand"`
	Subject   string `json:"subject"`
}

// ModuleGapRow is one row of the "below baseline" view consumed by the gap
// filler: a deficient module with its baseline flags and current practice
// count. A module may appear under several standard codes.
type ModuleGapRow struct {
	ModuleID       uint   `json:"moduleId"`
	ModuleSlug     string `json:"moduleSlug"`
	ModuleTitle    string `json:"moduleTitle"`
	Subject        string `json:"subject"`
	GradeBand      string `json:"gradeBand"`
	StandardCode   string `json:"standardCode"`
	PracticeCount  int    `json:"practiceCount"`
	PracticeTarget int    `json:"practiceTarget"`
	HasPractice    bool   `json:"hasPractice"`
	HasAssessment  bool   `json:"hasAssessment"`
	HasExternal    bool   `json:"hasExternal"`
}
