package service

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"k12_curriculum_backend/internal/config"
	"k12_curriculum_backend/internal/model"
	"k12_curriculum_backend/internal/util"
	"k12_curriculum_backend/pkg/cache"
	"k12_curriculum_backend/pkg/logger"
	"k12_curriculum_backend/pkg/monitoring"

	"go.uber.org/zap"
)

const coverageCacheKey = "coverage:snapshot"

// filterDegradeMode documents the failure policy of FilterModulesByReadiness:
// when the cell lookup fails, the candidate set passes through unfiltered.
// Readiness filtering gates recommendation surfacing, not correctness, so the
// choice favors availability over strict gating.
const filterDegradeMode = "pass_through"

// CoverageSource supplies the raw per-cell aggregates.
type CoverageSource interface {
	CellAggregates() ([]model.CellAggregate, error)
}

// CellLookup resolves module ids onto their grade/subject cell.
type CellLookup interface {
	Cells(ids []uint) (map[uint]model.ModuleCell, error)
}

// CoverageService assembles, caches and serves the coverage snapshot. It
// never returns an error to its callers: on a failed recompute it degrades to
// the last good cached snapshot, or an empty grid if none exists yet.
type CoverageService struct {
	source CoverageSource
	cells  CellLookup
	policy *ThresholdPolicy
	cache  cache.Cache

	mu      sync.RWMutex
	ttl     time.Duration
	topGaps int
}

func NewCoverageService(source CoverageSource, cells CellLookup, policy *ThresholdPolicy, c cache.Cache, cfg config.CoverageConfig) *CoverageService {
	ttl := time.Duration(cfg.CacheTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	topGaps := cfg.TopGaps
	if topGaps <= 0 {
		topGaps = 5
	}
	return &CoverageService{
		source:  source,
		cells:   cells,
		policy:  policy,
		cache:   c,
		ttl:     ttl,
		topGaps: topGaps,
	}
}

// UpdateSettings applies reloaded configuration. Only the tunables change;
// the cache backend is fixed at construction.
func (s *CoverageService) UpdateSettings(cfg config.CoverageConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cfg.CacheTTLMinutes > 0 {
		s.ttl = time.Duration(cfg.CacheTTLMinutes) * time.Minute
	}
	if cfg.TopGaps > 0 {
		s.topGaps = cfg.TopGaps
	}
}

func (s *CoverageService) settings() (time.Duration, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ttl, s.topGaps
}

// GetContentCoverage returns the readiness snapshot for every in-scope cell,
// sorted by grade order then subject. The snapshot is cached; forceRefresh
// bypasses the cache.
func (s *CoverageService) GetContentCoverage(forceRefresh bool) []model.GradeSubjectCoverage {
	cached, fresh := s.cache.Get(coverageCacheKey)
	if !forceRefresh && fresh && cached != nil {
		if snapshot, err := decodeSnapshot(cached); err == nil {
			return snapshot
		}
	}

	start := time.Now()
	aggs, err := s.source.CellAggregates()
	if err != nil {
		monitoring.SnapshotDegraded.Inc()
		logger.Log.Warn("coverage recompute failed, serving last good snapshot", zap.Error(err))
		if cached != nil {
			if snapshot, decErr := decodeSnapshot(cached); decErr == nil {
				return snapshot
			}
		}
		return []model.GradeSubjectCoverage{}
	}
	monitoring.SnapshotDuration.Observe(time.Since(start).Seconds())

	snapshot := s.buildSnapshot(aggs)

	ttl, _ := s.settings()
	if data, err := json.Marshal(snapshot); err == nil {
		s.cache.Set(coverageCacheKey, data, ttl)
	}
	return snapshot
}

func (s *CoverageService) buildSnapshot(aggs []model.CellAggregate) []model.GradeSubjectCoverage {
	snapshot := make([]model.GradeSubjectCoverage, 0, len(aggs))
	for _, agg := range aggs {
		if !s.policy.InScope(agg.GradeBand, agg.Subject) {
			continue
		}

		full := s.policy.Thresholds(agg.GradeBand, agg.Subject)
		beta := s.policy.BetaThresholds(agg.GradeBand, agg.Subject)

		counts := model.GradeSubjectCounts{
			GradeBand:     agg.GradeBand,
			Subject:       agg.Subject,
			ModuleCount:   agg.ModuleCount,
			LessonCount:   agg.LessonCount,
			QuestionCount: agg.QuestionCount,
			TotalStrands:  len(agg.StrandLessons),
		}
		for _, lessons := range agg.StrandLessons {
			if lessons >= full.MinLessonsPerStrand {
				counts.StrandsWithContent++
			}
		}

		status, details := EvaluateCoverageStatus(counts, full, beta)
		snapshot = append(snapshot, model.GradeSubjectCoverage{
			GradeBand: agg.GradeBand,
			Subject:   agg.Subject,
			Status:    status,
			Counts:    counts,
			Details:   details,
		})
	}

	sort.Slice(snapshot, func(i, j int) bool {
		ri, rj := util.GradeRank(snapshot[i].GradeBand), util.GradeRank(snapshot[j].GradeBand)
		if ri != rj {
			return ri < rj
		}
		return snapshot[i].Subject < snapshot[j].Subject
	})
	return snapshot
}

// IsGradeSubjectReady gates a cell: it must be in scope and at or above the
// requested tier.
func (s *CoverageService) IsGradeSubjectReady(grade, subject string, allowBeta bool) bool {
	if !s.policy.InScope(grade, subject) {
		return false
	}
	for _, cell := range s.GetContentCoverage(false) {
		if cell.GradeBand == grade && cell.Subject == subject {
			return cell.Status == model.CoverageReady ||
				(allowBeta && cell.Status == model.CoverageBeta)
		}
	}
	return false
}

var statusSeverity = map[model.CoverageStatus]int{
	model.CoverageEmpty: 0,
	model.CoverageThin:  1,
	model.CoverageBeta:  2,
	model.CoverageReady: 3,
}

// GetCoverageSummary condenses the snapshot into per-status counts, an
// in-scope readiness percentage, and the worst gaps by first reported detail.
func (s *CoverageService) GetCoverageSummary() model.CoverageSummary {
	snapshot := s.GetContentCoverage(false)
	_, topGaps := s.settings()

	summary := model.CoverageSummary{InScopeCells: len(snapshot)}
	for _, cell := range snapshot {
		switch cell.Status {
		case model.CoverageReady:
			summary.Ready++
		case model.CoverageBeta:
			summary.Beta++
		case model.CoverageThin:
			summary.Thin++
		case model.CoverageEmpty:
			summary.Empty++
		}
	}
	if summary.InScopeCells > 0 {
		summary.ReadinessPercent = float64(summary.Ready) / float64(summary.InScopeCells) * 100
	}

	gaps := make([]model.GradeSubjectCoverage, 0, len(snapshot))
	for _, cell := range snapshot {
		if cell.Status != model.CoverageReady {
			gaps = append(gaps, cell)
		}
	}
	sort.SliceStable(gaps, func(i, j int) bool {
		return statusSeverity[gaps[i].Status] < statusSeverity[gaps[j].Status]
	})
	if len(gaps) > topGaps {
		gaps = gaps[:topGaps]
	}
	for _, cell := range gaps {
		detail := "below readiness bar"
		if len(cell.Details) > 0 {
			detail = cell.Details[0]
		}
		summary.TopGaps = append(summary.TopGaps, fmt.Sprintf("Grade %s %s: %s", cell.GradeBand, cell.Subject, detail))
	}
	return summary
}

// FilterModulesByReadiness restricts candidate module ids to those whose cell
// is in scope and ready (or beta when allowed). On a lookup failure the input
// passes through unfiltered; see filterDegradeMode.
func (s *CoverageService) FilterModulesByReadiness(moduleIDs []uint, allowBeta bool) []uint {
	if len(moduleIDs) == 0 {
		return moduleIDs
	}

	cells, err := s.cells.Cells(moduleIDs)
	if err != nil {
		logger.Log.Warn("module cell lookup failed, degrading readiness filter",
			zap.String("mode", filterDegradeMode),
			zap.Error(err),
		)
		return moduleIDs
	}

	statusByCell := make(map[cellKey]model.CoverageStatus)
	for _, cell := range s.GetContentCoverage(false) {
		statusByCell[cellKey{cell.GradeBand, cell.Subject}] = cell.Status
	}

	filtered := make([]uint, 0, len(moduleIDs))
	for _, id := range moduleIDs {
		cell, ok := cells[id]
		if !ok {
			continue
		}
		if !s.policy.InScope(cell.GradeBand, cell.Subject) {
			continue
		}
		status := statusByCell[cellKey{cell.GradeBand, cell.Subject}]
		if status == model.CoverageReady || (allowBeta && status == model.CoverageBeta) {
			filtered = append(filtered, id)
		}
	}
	return filtered
}

func decodeSnapshot(data []byte) ([]model.GradeSubjectCoverage, error) {
	var snapshot []model.GradeSubjectCoverage
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}
