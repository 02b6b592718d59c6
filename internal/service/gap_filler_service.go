package service

import (
	"errors"
	"fmt"
	"sort"

	"k12_curriculum_backend/internal/config"
	"k12_curriculum_backend/internal/model"
	"k12_curriculum_backend/internal/util"
	"k12_curriculum_backend/pkg/logger"
	"k12_curriculum_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// GapSource supplies the pre-filtered "below baseline" view. The gap filler
// never recomputes coverage itself.
type GapSource interface {
	BelowBaseline(gradeBands []string, defaultTarget int) ([]model.ModuleGapRow, error)
}

type PracticeStore interface {
	ListByModule(slug string) ([]model.PracticeItem, error)
	CreateBatch(items []model.PracticeItem) ([]model.PracticeItem, error)
	UpdateStandards(ids []uint, standards datatypes.JSON) error
}

type AssessmentStore interface {
	FindByModule(moduleID uint) (*model.Assessment, error)
	Create(a *model.Assessment) error
	Update(a *model.Assessment) error
}

type AssetStore interface {
	HasLinked(moduleID uint, slug string) (bool, error)
	Create(asset *model.EnrichmentAsset) error
}

// GapFiller brings deficient modules up to the baseline bar exactly once per
// run. Every mutation is guarded by an existence check keyed on the module's
// identity, so re-running against an unchanged module inserts nothing.
// Modules in unlaunched grade/subject cells are never touched.
type GapFiller struct {
	gaps        GapSource
	practice    PracticeStore
	assessments AssessmentStore
	assets      AssetStore
	items       ItemTextStrategy
	policy      *ThresholdPolicy
	cfg         config.GapFillConfig
}

func NewGapFiller(gaps GapSource, practice PracticeStore, assessments AssessmentStore, assets AssetStore, items ItemTextStrategy, policy *ThresholdPolicy, cfg config.GapFillConfig) *GapFiller {
	if cfg.PracticeTarget <= 0 {
		cfg.PracticeTarget = 10
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 25
	}
	if cfg.MaxLinkedItems <= 0 {
		cfg.MaxLinkedItems = 5
	}
	if items == nil {
		items = PlaceholderItems{}
	}
	if policy == nil {
		policy = NewThresholdPolicy()
	}
	return &GapFiller{
		gaps:        gaps,
		practice:    practice,
		assessments: assessments,
		assets:      assets,
		items:       items,
		policy:      policy,
		cfg:         cfg,
	}
}

// Run executes one backfill pass, optionally restricted to grade bands, and
// returns the number of modules processed. Lookup failures skip the affected
// module and continue; a failed create aborts the run (already-committed work
// stays, and re-running is safe).
func (s *GapFiller) Run(gradeBands []string) (int, error) {
	rows, err := s.gaps.BelowBaseline(gradeBands, s.cfg.PracticeTarget)
	if err != nil {
		return 0, fmt.Errorf("loading below-baseline view: %w", err)
	}

	// A module can appear under several standard-code rows; process it once.
	seen := make(map[uint]bool, len(rows))
	processed := 0
	for _, row := range rows {
		if seen[row.ModuleID] {
			continue
		}
		seen[row.ModuleID] = true

		// Unlaunched cells are off limits, however deficient their modules.
		if !s.policy.InScope(row.GradeBand, row.Subject) {
			continue
		}

		if err := s.fillModule(row); err != nil {
			if errors.Is(err, util.ErrLookupFailed) {
				monitoring.GapFillSkipped.Inc()
				logger.Log.Warn("skipping module after lookup failure",
					zap.String("module", row.ModuleSlug),
					zap.Error(err),
				)
				continue
			}
			return processed, err
		}
		processed++
	}
	return processed, nil
}

type ensuredPractice struct {
	created   []uint
	existing  []uint
	standards []string
}

// allIDs orders newly created ids ahead of pre-existing ones, which is the
// preference order for assessment linking.
func (e ensuredPractice) allIDs() []uint {
	return append(append([]uint{}, e.created...), e.existing...)
}

func (s *GapFiller) fillModule(row model.ModuleGapRow) error {
	ensured, err := s.ensurePractice(row)
	if err != nil {
		return err
	}
	if !row.HasAssessment {
		if err := s.ensureAssessment(row, ensured); err != nil {
			return err
		}
	}
	if !row.HasExternal {
		if err := s.ensureExternal(row); err != nil {
			return err
		}
	}
	return nil
}

// ensurePractice tops the module up to its practice target, inserting only
// the shortfall in fixed-size batches. When the module already has enough
// items their standards metadata is refreshed (union, not replace) so the
// returned id set is always usable for assessment building.
func (s *GapFiller) ensurePractice(row model.ModuleGapRow) (ensuredPractice, error) {
	existing, err := s.practice.ListByModule(row.ModuleSlug)
	if err != nil {
		return ensuredPractice{}, fmt.Errorf("%w: practice items for %s: %v", util.ErrLookupFailed, row.ModuleSlug, err)
	}

	standardSet := make(map[string]bool)
	if row.StandardCode != "" {
		standardSet[row.StandardCode] = true
	}
	existingIDs := make([]uint, 0, len(existing))
	for _, item := range existing {
		existingIDs = append(existingIDs, item.ID)
		for _, code := range item.StandardList() {
			standardSet[code] = true
		}
	}
	standards := sortedKeys(standardSet)

	ensured := ensuredPractice{existing: existingIDs, standards: standards}

	shortfall := row.PracticeTarget - len(existing)
	if shortfall <= 0 {
		if err := s.practice.UpdateStandards(existingIDs, model.EncodeStandards(standards)); err != nil {
			return ensuredPractice{}, fmt.Errorf("refreshing standards on %s: %w", row.ModuleSlug, err)
		}
		return ensured, nil
	}

	for start := 0; start < shortfall; start += s.cfg.BatchSize {
		n := s.cfg.BatchSize
		if start+n > shortfall {
			n = shortfall - start
		}

		batch := make([]model.PracticeItem, 0, n)
		for i := 0; i < n; i++ {
			seq := len(existing) + start + i + 1
			batch = append(batch, model.PracticeItem{
				ModuleSlug:  row.ModuleSlug,
				Prompt:      s.items.Prompt(row, seq),
				Options:     model.EncodeOptions(s.items.Options(row, seq)),
				GeneratedBy: model.GeneratedByGapFiller,
				Standards:   model.EncodeStandards(standards),
			})
		}

		inserted, err := s.practice.CreateBatch(batch)
		if err != nil {
			return ensuredPractice{}, fmt.Errorf("inserting practice items for %s: %w", row.ModuleSlug, err)
		}
		for _, item := range inserted {
			ensured.created = append(ensured.created, item.ID)
		}
	}

	monitoring.GapFillCreated.WithLabelValues("practice_item").Add(float64(shortfall))
	logger.Log.Info("backfilled practice items",
		zap.String("module", row.ModuleSlug),
		zap.Int("created", shortfall),
		zap.Int("target", row.PracticeTarget),
	)
	return ensured, nil
}

// ensureAssessment guarantees one baseline assessment per module. An existing
// assessment is merged into, never duplicated.
func (s *GapFiller) ensureAssessment(row model.ModuleGapRow, ensured ensuredPractice) error {
	existing, err := s.assessments.FindByModule(row.ModuleID)
	if err != nil {
		return fmt.Errorf("%w: assessment for %s: %v", util.ErrLookupFailed, row.ModuleSlug, err)
	}

	if existing != nil {
		merged := unionStrings(existing.StandardList(), ensured.standards)
		existing.Standards = model.EncodeStandards(merged)
		if existing.Purpose == "" {
			existing.Purpose = model.PurposeBaseline
		}
		if err := s.assessments.Update(existing); err != nil {
			return fmt.Errorf("merging assessment metadata on %s: %w", row.ModuleSlug, err)
		}
		return nil
	}

	itemIDs := ensured.allIDs()
	if len(itemIDs) == 0 {
		logger.Log.Warn("no practice items available, skipping assessment",
			zap.String("module", row.ModuleSlug),
		)
		return nil
	}
	if len(itemIDs) > s.cfg.MaxLinkedItems {
		itemIDs = itemIDs[:s.cfg.MaxLinkedItems]
	}

	links := make([]model.AssessmentItemLink, 0, len(itemIDs))
	for i, id := range itemIDs {
		links = append(links, model.AssessmentItemLink{
			PracticeItemID: id,
			Position:       i + 1,
		})
	}

	moduleID := row.ModuleID
	assessment := &model.Assessment{
		ModuleID:    &moduleID,
		Title:       fmt.Sprintf("%s Baseline Assessment", moduleDisplayTitle(row)),
		Purpose:     model.PurposeBaseline,
		GeneratedBy: model.GeneratedByGapFiller,
		Standards:   model.EncodeStandards(ensured.standards),
		Sections: []model.AssessmentSection{
			{Title: "Section 1", Position: 1, Items: links},
		},
	}
	if err := s.assessments.Create(assessment); err != nil {
		return fmt.Errorf("creating baseline assessment for %s: %w", row.ModuleSlug, err)
	}

	monitoring.GapFillCreated.WithLabelValues("assessment").Inc()
	logger.Log.Info("created baseline assessment",
		zap.String("module", row.ModuleSlug),
		zap.Int("linkedItems", len(links)),
	)
	return nil
}

type catalogEntry struct {
	title    string
	url      string
	provider string
}

// externalCatalog holds one vetted external resource per launched subject.
var externalCatalog = map[string]catalogEntry{
	util.SubjectMathematics: {
		title:    "Khan Academy Math Practice",
		url:      "https://www.khanacademy.org/math",
		provider: "Khan Academy",
	},
	util.SubjectELA: {
		title:    "CommonLit Reading Library",
		url:      "https://www.commonlit.org/en/library",
		provider: "CommonLit",
	},
	util.SubjectScience: {
		title:    "PhET Interactive Simulations",
		url:      "https://phet.colorado.edu/en/simulations",
		provider: "PhET",
	},
	util.SubjectSocialStudies: {
		title:    "Library of Congress Classroom Materials",
		url:      "https://www.loc.gov/classroom-materials",
		provider: "Library of Congress",
	},
}

// ensureExternal guarantees one linked or embedded enrichment resource per
// module, drawn from the fixed per-subject catalog.
func (s *GapFiller) ensureExternal(row model.ModuleGapRow) error {
	has, err := s.assets.HasLinked(row.ModuleID, row.ModuleSlug)
	if err != nil {
		return fmt.Errorf("%w: enrichment assets for %s: %v", util.ErrLookupFailed, row.ModuleSlug, err)
	}
	if has {
		return nil
	}

	entry, ok := externalCatalog[row.Subject]
	if !ok {
		entry = externalCatalog[util.SubjectMathematics]
	}

	asset := &model.EnrichmentAsset{
		ModuleID:    row.ModuleID,
		Title:       entry.title,
		URL:         entry.url,
		Provider:    entry.provider,
		StorageMode: model.StorageModeLink,
		GeneratedBy: model.GeneratedByGapFiller,
	}
	if err := s.assets.Create(asset); err != nil {
		return fmt.Errorf("creating enrichment asset for %s: %w", row.ModuleSlug, err)
	}

	monitoring.GapFillCreated.WithLabelValues("enrichment_asset").Inc()
	return nil
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func unionStrings(a, b []string) []string {
	set := make(map[string]bool, len(a)+len(b))
	for _, v := range a {
		set[v] = true
	}
	for _, v := range b {
		set[v] = true
	}
	return sortedKeys(set)
}
