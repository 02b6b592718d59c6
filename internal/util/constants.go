package util

const (
	SubjectMathematics   = "Mathematics"
	SubjectELA           = "English Language Arts"
	SubjectScience       = "Science"
	SubjectSocialStudies = "Social Studies"
)

// GradeOrder fixes the display and reporting order of grade bands.
var GradeOrder = []string{"K", "1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12"}

var gradeRank = func() map[string]int {
	m := make(map[string]int, len(GradeOrder))
	for i, g := range GradeOrder {
		m[g] = i
	}
	return m
}()

// GradeRank returns the sort position of a grade band; unknown bands sort last.
func GradeRank(grade string) int {
	if r, ok := gradeRank[grade]; ok {
		return r
	}
	return len(GradeOrder)
}
