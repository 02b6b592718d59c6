package service

import (
	"errors"
	"testing"

	"k12_curriculum_backend/internal/config"
	"k12_curriculum_backend/internal/model"
	"k12_curriculum_backend/internal/util"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type fakeGaps struct {
	rows []model.ModuleGapRow
	err  error
}

func (f *fakeGaps) BelowBaseline(gradeBands []string, defaultTarget int) ([]model.ModuleGapRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

type fakePractice struct {
	items     map[string][]model.PracticeItem
	nextID    uint
	listErr   map[string]error
	createErr error

	standardsUpdates int
}

func newFakePractice() *fakePractice {
	return &fakePractice{
		items:   make(map[string][]model.PracticeItem),
		nextID:  1000,
		listErr: make(map[string]error),
	}
}

func (f *fakePractice) seed(slug string, n int, standards ...string) {
	for i := 0; i < n; i++ {
		f.nextID++
		f.items[slug] = append(f.items[slug], model.PracticeItem{
			BaseModel:  model.BaseModel{ID: f.nextID},
			ModuleSlug: slug,
			Prompt:     "authored question",
			Standards:  model.EncodeStandards(standards),
		})
	}
}

func (f *fakePractice) ListByModule(slug string) ([]model.PracticeItem, error) {
	if err := f.listErr[slug]; err != nil {
		return nil, err
	}
	return append([]model.PracticeItem{}, f.items[slug]...), nil
}

func (f *fakePractice) CreateBatch(items []model.PracticeItem) ([]model.PracticeItem, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	out := make([]model.PracticeItem, 0, len(items))
	for _, item := range items {
		f.nextID++
		item.ID = f.nextID
		f.items[item.ModuleSlug] = append(f.items[item.ModuleSlug], item)
		out = append(out, item)
	}
	return out, nil
}

func (f *fakePractice) UpdateStandards(ids []uint, standards datatypes.JSON) error {
	f.standardsUpdates++
	return nil
}

type fakeAssessments struct {
	byModule map[uint]*model.Assessment
	nextID   uint
	creates  int
	updates  int
}

func newFakeAssessments() *fakeAssessments {
	return &fakeAssessments{byModule: make(map[uint]*model.Assessment), nextID: 5000}
}

func (f *fakeAssessments) FindByModule(moduleID uint) (*model.Assessment, error) {
	return f.byModule[moduleID], nil
}

func (f *fakeAssessments) Create(a *model.Assessment) error {
	f.nextID++
	a.ID = f.nextID
	f.byModule[*a.ModuleID] = a
	f.creates++
	return nil
}

func (f *fakeAssessments) Update(a *model.Assessment) error {
	f.byModule[*a.ModuleID] = a
	f.updates++
	return nil
}

type fakeAssets struct {
	linked  map[uint]bool
	creates int
}

func newFakeAssets() *fakeAssets {
	return &fakeAssets{linked: make(map[uint]bool)}
}

func (f *fakeAssets) HasLinked(moduleID uint, slug string) (bool, error) {
	return f.linked[moduleID], nil
}

func (f *fakeAssets) Create(asset *model.EnrichmentAsset) error {
	f.linked[asset.ModuleID] = true
	f.creates++
	return nil
}

type fillerHarness struct {
	filler      *GapFiller
	gaps        *fakeGaps
	practice    *fakePractice
	assessments *fakeAssessments
	assets      *fakeAssets
}

func newFillerHarness(rows ...model.ModuleGapRow) *fillerHarness {
	h := &fillerHarness{
		gaps:        &fakeGaps{rows: rows},
		practice:    newFakePractice(),
		assessments: newFakeAssessments(),
		assets:      newFakeAssets(),
	}
	h.filler = NewGapFiller(h.gaps, h.practice, h.assessments, h.assets, PlaceholderItems{}, NewThresholdPolicy(), config.GapFillConfig{})
	return h
}

func gapRow(moduleID uint, slug string) model.ModuleGapRow {
	return model.ModuleGapRow{
		ModuleID:       moduleID,
		ModuleSlug:     slug,
		ModuleTitle:    "Fractions on a Number Line",
		Subject:        util.SubjectMathematics,
		GradeBand:      "3",
		StandardCode:   "3.NF.A.2",
		PracticeTarget: 10,
	}
}

func TestRunTopsUpPracticeShortfall(t *testing.T) {
	row := gapRow(1, "fractions-number-line")
	row.PracticeTarget = 20
	h := newFillerHarness(row)
	h.practice.seed(row.ModuleSlug, 5, "3.NF.A.1")

	processed, err := h.filler.Run(nil)
	require.NoError(t, err)
	require.Equal(t, 1, processed)
	require.Len(t, h.practice.items[row.ModuleSlug], 20)

	// Generated items carry provenance and the merged standards list.
	created := h.practice.items[row.ModuleSlug][5:]
	for _, item := range created {
		require.Equal(t, model.GeneratedByGapFiller, item.GeneratedBy)
		require.Equal(t, []string{"3.NF.A.1", "3.NF.A.2"}, item.StandardList())
		require.NotEmpty(t, item.Prompt)
	}
	require.Contains(t, created[0].Prompt, "Practice question 6")
}

func TestRunIsIdempotent(t *testing.T) {
	row := gapRow(1, "fractions-number-line")
	h := newFillerHarness(row)

	_, err := h.filler.Run(nil)
	require.NoError(t, err)
	require.Len(t, h.practice.items[row.ModuleSlug], 10)
	require.Equal(t, 1, h.assessments.creates)
	require.Equal(t, 1, h.assets.creates)

	// A second pass over the same gap rows must not insert anything.
	processed, err := h.filler.Run(nil)
	require.NoError(t, err)
	require.Equal(t, 1, processed)
	require.Len(t, h.practice.items[row.ModuleSlug], 10)
	require.Equal(t, 1, h.assessments.creates)
	require.Equal(t, 1, h.assets.creates)
}

func TestRunCreatesBaselineAssessment(t *testing.T) {
	row := gapRow(1, "fractions-number-line")
	h := newFillerHarness(row)
	h.practice.seed(row.ModuleSlug, 2, "3.NF.A.1")

	_, err := h.filler.Run(nil)
	require.NoError(t, err)

	a := h.assessments.byModule[1]
	require.NotNil(t, a)
	require.Equal(t, "Fractions on a Number Line Baseline Assessment", a.Title)
	require.Equal(t, model.PurposeBaseline, a.Purpose)
	require.Equal(t, model.GeneratedByGapFiller, a.GeneratedBy)
	require.Equal(t, []string{"3.NF.A.1", "3.NF.A.2"}, a.StandardList())

	require.Len(t, a.Sections, 1)
	require.Equal(t, "Section 1", a.Sections[0].Title)

	// Five linked items, newly created ones ahead of the authored pair.
	items := a.Sections[0].Items
	require.Len(t, items, 5)
	allItems := h.practice.items[row.ModuleSlug]
	createdIDs := make(map[uint]bool)
	for _, item := range allItems[2:] {
		createdIDs[item.ID] = true
	}
	for i, link := range items {
		require.Equal(t, i+1, link.Position)
		require.True(t, createdIDs[link.PracticeItemID], "link %d should prefer generated items", i)
	}
}

func TestRunMergesExistingAssessment(t *testing.T) {
	row := gapRow(1, "fractions-number-line")
	h := newFillerHarness(row)

	moduleID := uint(1)
	h.assessments.byModule[1] = &model.Assessment{
		BaseModel: model.BaseModel{ID: 42},
		ModuleID:  &moduleID,
		Title:     "Unit 3 Check-In",
		Standards: model.EncodeStandards([]string{"3.NF.A.3"}),
	}

	_, err := h.filler.Run(nil)
	require.NoError(t, err)

	require.Equal(t, 0, h.assessments.creates)
	require.Equal(t, 1, h.assessments.updates)

	a := h.assessments.byModule[1]
	require.Equal(t, "Unit 3 Check-In", a.Title, "authored title must survive the merge")
	require.Equal(t, model.PurposeBaseline, a.Purpose)
	require.Equal(t, []string{"3.NF.A.2", "3.NF.A.3"}, a.StandardList())
}

func TestRunSkipsAssessmentWithoutItems(t *testing.T) {
	row := gapRow(1, "empty-module")
	row.PracticeTarget = 0
	h := newFillerHarness(row)

	processed, err := h.filler.Run(nil)
	require.NoError(t, err)
	require.Equal(t, 1, processed)
	require.Equal(t, 0, h.assessments.creates)
}

func TestRunLinksSubjectCatalogAsset(t *testing.T) {
	row := gapRow(1, "fractions-number-line")
	h := newFillerHarness(row)

	_, err := h.filler.Run(nil)
	require.NoError(t, err)
	require.True(t, h.assets.linked[1])
	require.Equal(t, 1, h.assets.creates)
}

func TestRunSkipsExternalWhenFlagged(t *testing.T) {
	row := gapRow(1, "fractions-number-line")
	row.HasExternal = true
	row.HasAssessment = true
	h := newFillerHarness(row)

	_, err := h.filler.Run(nil)
	require.NoError(t, err)
	require.Equal(t, 0, h.assets.creates)
	require.Equal(t, 0, h.assessments.creates)
}

func TestRunProcessesModuleOncePerRun(t *testing.T) {
	rowA := gapRow(1, "fractions-number-line")
	rowB := gapRow(1, "fractions-number-line")
	rowB.StandardCode = "3.NF.A.3"
	h := newFillerHarness(rowA, rowB)

	processed, err := h.filler.Run(nil)
	require.NoError(t, err)
	require.Equal(t, 1, processed)
	require.Len(t, h.practice.items[rowA.ModuleSlug], 10)
	require.Equal(t, 1, h.assessments.creates)
}

func TestRunNeverTouchesOutOfScopeCells(t *testing.T) {
	// Social Studies is not launched past grade 8; its modules must stay
	// untouched no matter how far below baseline they sit.
	row := gapRow(1, "reconstruction-era")
	row.GradeBand = "9"
	row.Subject = util.SubjectSocialStudies
	h := newFillerHarness(row)

	processed, err := h.filler.Run(nil)
	require.NoError(t, err)
	require.Equal(t, 0, processed)
	require.Empty(t, h.practice.items[row.ModuleSlug])
	require.Equal(t, 0, h.assessments.creates)
	require.Equal(t, 0, h.assets.creates)
}

func TestRunFillsOnlyInScopeRows(t *testing.T) {
	outRow := gapRow(1, "reconstruction-era")
	outRow.GradeBand = "10"
	outRow.Subject = util.SubjectSocialStudies
	inRow := gapRow(2, "fractions-number-line")
	h := newFillerHarness(outRow, inRow)

	processed, err := h.filler.Run(nil)
	require.NoError(t, err)
	require.Equal(t, 1, processed)
	require.Empty(t, h.practice.items[outRow.ModuleSlug])
	require.Len(t, h.practice.items[inRow.ModuleSlug], 10)
	require.Equal(t, 1, h.assessments.creates)
	require.Equal(t, 1, h.assets.creates)
}

func TestRunSkipsModuleOnLookupFailure(t *testing.T) {
	rowA := gapRow(1, "broken-module")
	rowB := gapRow(2, "healthy-module")
	h := newFillerHarness(rowA, rowB)
	h.practice.listErr["broken-module"] = errors.New("timeout")

	processed, err := h.filler.Run(nil)
	require.NoError(t, err, "lookup failures skip, they do not abort")
	require.Equal(t, 1, processed)
	require.Empty(t, h.practice.items["broken-module"])
	require.Len(t, h.practice.items["healthy-module"], 10)
}

func TestRunAbortsOnCreateFailure(t *testing.T) {
	rowA := gapRow(1, "module-a")
	rowB := gapRow(2, "module-b")
	h := newFillerHarness(rowA, rowB)
	h.practice.createErr = errors.New("disk full")

	processed, err := h.filler.Run(nil)
	require.Error(t, err)
	require.Equal(t, 0, processed)
	require.Equal(t, 0, h.assessments.creates)
}

func TestRunFailsWhenGapViewUnavailable(t *testing.T) {
	h := newFillerHarness()
	h.gaps.err = errors.New("db gone")

	processed, err := h.filler.Run(nil)
	require.Error(t, err)
	require.Equal(t, 0, processed)
}

func TestRunRefreshesStandardsWhenTargetMet(t *testing.T) {
	row := gapRow(1, "fractions-number-line")
	row.PracticeTarget = 3
	row.HasAssessment = true
	row.HasExternal = true
	h := newFillerHarness(row)
	h.practice.seed(row.ModuleSlug, 3, "3.NF.A.1")

	_, err := h.filler.Run(nil)
	require.NoError(t, err)
	require.Len(t, h.practice.items[row.ModuleSlug], 3)
	require.Equal(t, 1, h.practice.standardsUpdates)
}
