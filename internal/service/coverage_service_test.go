package service

import (
	"errors"
	"testing"
	"time"

	"k12_curriculum_backend/internal/config"
	"k12_curriculum_backend/internal/model"
	"k12_curriculum_backend/internal/util"
	"k12_curriculum_backend/pkg/cache"

	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	aggs  []model.CellAggregate
	err   error
	calls int
}

func (f *fakeSource) CellAggregates() ([]model.CellAggregate, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.aggs, nil
}

type fakeCells struct {
	cells map[uint]model.ModuleCell
	err   error
}

func (f *fakeCells) Cells(ids []uint) (map[uint]model.ModuleCell, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[uint]model.ModuleCell, len(ids))
	for _, id := range ids {
		if cell, ok := f.cells[id]; ok {
			out[id] = cell
		}
	}
	return out, nil
}

func readyAggregate(grade, subject string) model.CellAggregate {
	return model.CellAggregate{
		GradeBand:     grade,
		Subject:       subject,
		ModuleCount:   6,
		LessonCount:   24,
		QuestionCount: 120,
		StrandLessons: map[string]int{"A": 8, "B": 8, "C": 8},
	}
}

func thinAggregate(grade, subject string) model.CellAggregate {
	return model.CellAggregate{
		GradeBand:     grade,
		Subject:       subject,
		ModuleCount:   1,
		LessonCount:   2,
		QuestionCount: 2,
	}
}

type coverageHarness struct {
	svc    *CoverageService
	source *fakeSource
	cells  *fakeCells
	now    time.Time
}

func newCoverageHarness(t *testing.T, source *fakeSource, cells *fakeCells) *coverageHarness {
	t.Helper()
	h := &coverageHarness{
		source: source,
		cells:  cells,
		now:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	mem := cache.NewMemoryWithClock(func() time.Time { return h.now })
	h.svc = NewCoverageService(source, cells, NewThresholdPolicy(), mem, config.CoverageConfig{
		CacheTTLMinutes: 5,
		TopGaps:         5,
	})
	return h
}

func TestSnapshotCachedWithinTTL(t *testing.T) {
	source := &fakeSource{aggs: []model.CellAggregate{readyAggregate("3", util.SubjectMathematics)}}
	h := newCoverageHarness(t, source, &fakeCells{})

	first := h.svc.GetContentCoverage(false)
	require.Len(t, first, 1)
	require.Equal(t, model.CoverageReady, first[0].Status)
	require.Equal(t, 1, source.calls)

	h.now = h.now.Add(4 * time.Minute)
	second := h.svc.GetContentCoverage(false)
	require.Equal(t, first, second)
	require.Equal(t, 1, source.calls, "fresh cache must not recompute")

	h.now = h.now.Add(2 * time.Minute)
	h.svc.GetContentCoverage(false)
	require.Equal(t, 2, source.calls, "stale cache must recompute")
}

func TestSnapshotForceRefresh(t *testing.T) {
	source := &fakeSource{aggs: []model.CellAggregate{readyAggregate("3", util.SubjectMathematics)}}
	h := newCoverageHarness(t, source, &fakeCells{})

	h.svc.GetContentCoverage(false)
	h.svc.GetContentCoverage(true)
	require.Equal(t, 2, source.calls)
}

func TestSnapshotDegradesToLastGood(t *testing.T) {
	source := &fakeSource{aggs: []model.CellAggregate{readyAggregate("3", util.SubjectMathematics)}}
	h := newCoverageHarness(t, source, &fakeCells{})

	good := h.svc.GetContentCoverage(false)
	require.Len(t, good, 1)

	source.err = errors.New("db gone")
	h.now = h.now.Add(10 * time.Minute)

	degraded := h.svc.GetContentCoverage(false)
	require.Equal(t, good, degraded, "stale snapshot beats no snapshot")
}

func TestSnapshotEmptyWhenNothingCached(t *testing.T) {
	source := &fakeSource{err: errors.New("db gone")}
	h := newCoverageHarness(t, source, &fakeCells{})

	got := h.svc.GetContentCoverage(false)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestSnapshotExcludesOutOfScopeCells(t *testing.T) {
	source := &fakeSource{aggs: []model.CellAggregate{
		readyAggregate("9", util.SubjectSocialStudies),
		readyAggregate("9", util.SubjectScience),
	}}
	h := newCoverageHarness(t, source, &fakeCells{})

	got := h.svc.GetContentCoverage(false)
	require.Len(t, got, 1)
	require.Equal(t, util.SubjectScience, got[0].Subject)
}

func TestSnapshotOrderedByGradeThenSubject(t *testing.T) {
	source := &fakeSource{aggs: []model.CellAggregate{
		readyAggregate("10", util.SubjectMathematics),
		readyAggregate("2", util.SubjectScience),
		readyAggregate("2", util.SubjectMathematics),
		readyAggregate("K", util.SubjectELA),
	}}
	h := newCoverageHarness(t, source, &fakeCells{})

	got := h.svc.GetContentCoverage(false)
	require.Len(t, got, 4)
	require.Equal(t, "K", got[0].GradeBand)
	require.Equal(t, "2", got[1].GradeBand)
	require.Equal(t, util.SubjectMathematics, got[1].Subject)
	require.Equal(t, "2", got[2].GradeBand)
	require.Equal(t, util.SubjectScience, got[2].Subject)
	require.Equal(t, "10", got[3].GradeBand)
}

func TestIsGradeSubjectReady(t *testing.T) {
	source := &fakeSource{aggs: []model.CellAggregate{
		readyAggregate("3", util.SubjectMathematics),
		{GradeBand: "3", Subject: util.SubjectScience, ModuleCount: 3, LessonCount: 8, QuestionCount: 16},
	}}
	h := newCoverageHarness(t, source, &fakeCells{})

	require.True(t, h.svc.IsGradeSubjectReady("3", util.SubjectMathematics, false))

	// Beta cells surface only when the caller opts in.
	require.False(t, h.svc.IsGradeSubjectReady("3", util.SubjectScience, false))
	require.True(t, h.svc.IsGradeSubjectReady("3", util.SubjectScience, true))

	// No aggregate at all means not ready.
	require.False(t, h.svc.IsGradeSubjectReady("4", util.SubjectMathematics, true))

	// Out-of-scope cells never pass, whatever their content volume.
	require.False(t, h.svc.IsGradeSubjectReady("9", util.SubjectSocialStudies, true))
}

func TestCoverageSummary(t *testing.T) {
	source := &fakeSource{aggs: []model.CellAggregate{
		readyAggregate("3", util.SubjectMathematics),
		readyAggregate("4", util.SubjectMathematics),
		{GradeBand: "3", Subject: util.SubjectScience, ModuleCount: 3, LessonCount: 8, QuestionCount: 16},
		thinAggregate("5", util.SubjectELA),
		{GradeBand: "5", Subject: util.SubjectScience},
	}}
	h := newCoverageHarness(t, source, &fakeCells{})

	summary := h.svc.GetCoverageSummary()
	require.Equal(t, 2, summary.Ready)
	require.Equal(t, 1, summary.Beta)
	require.Equal(t, 1, summary.Thin)
	require.Equal(t, 1, summary.Empty)
	require.Equal(t, 5, summary.InScopeCells)
	require.InDelta(t, 40.0, summary.ReadinessPercent, 0.001)

	// Worst cells first: empty, then thin, then beta.
	require.Len(t, summary.TopGaps, 3)
	require.Equal(t, "Grade 5 Science: No modules", summary.TopGaps[0])
	require.Equal(t, "Grade 5 English Language Arts: Only 1/5 modules", summary.TopGaps[1])
	require.Equal(t, "Grade 3 Science: Only 3/5 modules", summary.TopGaps[2])
}

func TestFilterModulesByReadiness(t *testing.T) {
	source := &fakeSource{aggs: []model.CellAggregate{
		readyAggregate("3", util.SubjectMathematics),
		{GradeBand: "3", Subject: util.SubjectScience, ModuleCount: 3, LessonCount: 8, QuestionCount: 16},
		thinAggregate("5", util.SubjectELA),
	}}
	cells := &fakeCells{cells: map[uint]model.ModuleCell{
		1: {ModuleID: 1, GradeBand: "3", Subject: util.SubjectMathematics},
		2: {ModuleID: 2, GradeBand: "3", Subject: util.SubjectScience},
		3: {ModuleID: 3, GradeBand: "5", Subject: util.SubjectELA},
		4: {ModuleID: 4, GradeBand: "9", Subject: util.SubjectSocialStudies},
	}}
	h := newCoverageHarness(t, source, cells)

	require.Equal(t, []uint{1}, h.svc.FilterModulesByReadiness([]uint{1, 2, 3, 4}, false))
	require.Equal(t, []uint{1, 2}, h.svc.FilterModulesByReadiness([]uint{1, 2, 3, 4}, true))

	// Unknown module ids drop out.
	require.Equal(t, []uint{1}, h.svc.FilterModulesByReadiness([]uint{1, 99}, false))
}

func TestFilterPassesThroughOnLookupFailure(t *testing.T) {
	source := &fakeSource{aggs: []model.CellAggregate{readyAggregate("3", util.SubjectMathematics)}}
	cells := &fakeCells{err: errors.New("db gone")}
	h := newCoverageHarness(t, source, cells)

	ids := []uint{7, 8, 9}
	require.Equal(t, ids, h.svc.FilterModulesByReadiness(ids, false))
}

func TestUpdateSettingsShortensTTL(t *testing.T) {
	source := &fakeSource{aggs: []model.CellAggregate{readyAggregate("3", util.SubjectMathematics)}}
	h := newCoverageHarness(t, source, &fakeCells{})

	h.svc.UpdateSettings(config.CoverageConfig{CacheTTLMinutes: 1})

	h.svc.GetContentCoverage(false)
	h.now = h.now.Add(2 * time.Minute)
	h.svc.GetContentCoverage(false)
	require.Equal(t, 2, source.calls)
}
