package repository

import (
	"fmt"

	"k12_curriculum_backend/internal/model"
	"k12_curriculum_backend/pkg/pagination"

	"gorm.io/gorm"
)

// CoverageRepository owns the bulk aggregation queries behind the coverage
// reporter and the gap filler's "below baseline" view. Bulk reads go through
// the paginated fetcher so a flaky connection cannot yield a partial grid.
type CoverageRepository struct {
	DB       *gorm.DB
	fetchCfg pagination.Config
}

func NewCoverageRepository(db *gorm.DB, fetchCfg pagination.Config) *CoverageRepository {
	return &CoverageRepository{DB: db, fetchCfg: fetchCfg}
}

func (r *CoverageRepository) allModules() ([]model.CurriculumModule, error) {
	return pagination.FetchAll("curriculum modules", r.fetchCfg, func(from, to int) ([]model.CurriculumModule, error) {
		var rows []model.CurriculumModule
		err := r.DB.Order("id asc").Offset(from).Limit(to - from + 1).Find(&rows).Error
		return rows, err
	})
}

func (r *CoverageRepository) lessonCountsByModule() (map[uint]int, error) {
	var rows []struct {
		ModuleID uint
		N        int
	}
	err := r.DB.Model(&model.Lesson{}).
		Select("module_id, COUNT(*) AS n").
		Group("module_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int, len(rows))
	for _, row := range rows {
		counts[row.ModuleID] = row.N
	}
	return counts, nil
}

func (r *CoverageRepository) questionCountsByModule() (map[string]int, error) {
	var rows []struct {
		ModuleSlug string
		N          int
	}
	err := r.DB.Model(&model.PracticeItem{}).
		Select("module_slug, COUNT(*) AS n").
		Where("module_slug <> ''").
		Group("module_slug").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.ModuleSlug] = row.N
	}
	return counts, nil
}

// CellAggregates joins module, lesson and question counts into one aggregate
// per grade/subject cell.
func (r *CoverageRepository) CellAggregates() ([]model.CellAggregate, error) {
	modules, err := r.allModules()
	if err != nil {
		return nil, err
	}
	lessonCounts, err := r.lessonCountsByModule()
	if err != nil {
		return nil, fmt.Errorf("aggregating lesson counts: %w", err)
	}
	questionCounts, err := r.questionCountsByModule()
	if err != nil {
		return nil, fmt.Errorf("aggregating question counts: %w", err)
	}

	type cellKey struct{ grade, subject string }
	cells := make(map[cellKey]*model.CellAggregate)

	for _, m := range modules {
		key := cellKey{m.GradeBand, m.Subject}
		agg, ok := cells[key]
		if !ok {
			agg = &model.CellAggregate{
				GradeBand:     m.GradeBand,
				Subject:       m.Subject,
				StrandLessons: make(map[string]int),
			}
			cells[key] = agg
		}

		lessons := lessonCounts[m.ID]
		agg.ModuleCount++
		agg.LessonCount += lessons
		agg.QuestionCount += questionCounts[m.Slug]
		if m.Strand != "" {
			agg.StrandLessons[m.Strand] += lessons
		}
	}

	out := make([]model.CellAggregate, 0, len(cells))
	for _, agg := range cells {
		out = append(out, *agg)
	}
	return out, nil
}

type gapRow struct {
	ModuleID       uint   `gorm:"column:module_id"`
	ModuleSlug     string `gorm:"column:module_slug"`
	ModuleTitle    string `gorm:"column:module_title"`
	Subject        string `gorm:"column:subject"`
	GradeBand      string `gorm:"column:grade_band"`
	StandardCode   string `gorm:"column:standard_code"`
	PracticeTarget int    `gorm:"column:practice_target"`
	PracticeCount  int    `gorm:"column:practice_count"`
	HasAssessment  bool   `gorm:"column:has_assessment"`
	HasExternal    bool   `gorm:"column:has_external"`
}

// BelowBaseline materializes the gap filler's input view: every module that
// misses at least one baseline (practice count, baseline assessment, external
// resource), optionally restricted to a set of grade bands. defaultTarget
// applies when a module carries no practice_target override.
func (r *CoverageRepository) BelowBaseline(gradeBands []string, defaultTarget int) ([]model.ModuleGapRow, error) {
	rows, err := pagination.FetchAll("below-baseline modules", r.fetchCfg, func(from, to int) ([]gapRow, error) {
		q := r.DB.Table("curriculum_modules AS m").
			Select(`m.id AS module_id,
				m.slug AS module_slug,
				m.title AS module_title,
				m.subject,
				m.grade_band,
				m.standard_code,
				m.practice_target,
				(SELECT COUNT(*) FROM practice_items p
					WHERE p.module_slug = m.slug AND p.deleted_at IS NULL) AS practice_count,
				EXISTS(SELECT 1 FROM assessments a
					WHERE a.module_id = m.id AND a.deleted_at IS NULL) AS has_assessment,
				EXISTS(SELECT 1 FROM enrichment_assets e
					WHERE e.module_id = m.id AND e.storage_mode IN ('link','embed')
					AND e.deleted_at IS NULL) AS has_external`).
			Where("m.deleted_at IS NULL")
		if len(gradeBands) > 0 {
			q = q.Where("m.grade_band IN ?", gradeBands)
		}

		var page []gapRow
		err := q.Order("m.id asc").Offset(from).Limit(to - from + 1).Scan(&page).Error
		return page, err
	})
	if err != nil {
		return nil, err
	}

	var out []model.ModuleGapRow
	for _, row := range rows {
		target := row.PracticeTarget
		if target <= 0 {
			target = defaultTarget
		}
		gap := model.ModuleGapRow{
			ModuleID:       row.ModuleID,
			ModuleSlug:     row.ModuleSlug,
			ModuleTitle:    row.ModuleTitle,
			Subject:        row.Subject,
			GradeBand:      row.GradeBand,
			StandardCode:   row.StandardCode,
			PracticeCount:  row.PracticeCount,
			PracticeTarget: target,
			HasPractice:    row.PracticeCount >= target,
			HasAssessment:  row.HasAssessment,
			HasExternal:    row.HasExternal,
		}
		if gap.HasPractice && gap.HasAssessment && gap.HasExternal {
			continue
		}
		out = append(out, gap)
	}
	return out, nil
}
