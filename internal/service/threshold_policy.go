package service

import (
	"k12_curriculum_backend/internal/model"
	"k12_curriculum_backend/internal/util"
)

// Beta-tier hard floors. The derived beta value for a component is never
// above its floor, so beta stays uniformly softer than the full tier.
const (
	betaFloorLessonsPerStrand   = 2
	betaFloorQuestionsPerLesson = 2
	betaFloorTotalLessons       = 8
	betaFloorModules            = 3
)

type cellKey struct {
	grade   string
	subject string
}

// thresholdOverride adjusts individual components of the default tuple.
// Zero fields fall back to the default.
type thresholdOverride struct {
	minLessonsPerStrand   int
	minQuestionsPerLesson int
	minTotalLessons       int
	minModules            int
}

// ThresholdPolicy maps grade/subject cells onto coverage thresholds and owns
// the launched-scope table. It is pure and safe for concurrent use.
type ThresholdPolicy struct {
	defaults  model.CoverageThresholds
	overrides map[cellKey]thresholdOverride
	scope     map[cellKey]bool
}

func NewThresholdPolicy() *ThresholdPolicy {
	p := &ThresholdPolicy{
		defaults: model.CoverageThresholds{
			MinLessonsPerStrand:   3,
			MinQuestionsPerLesson: 4,
			MinTotalLessons:       20,
			MinModules:            5,
		},
		overrides: make(map[cellKey]thresholdOverride),
		scope:     make(map[cellKey]bool),
	}

	// Early grades carry fewer lessons overall; don't hold K-2 to the
	// middle-grade volume bar.
	for _, grade := range []string{"K", "1", "2"} {
		for _, subject := range []string{util.SubjectMathematics, util.SubjectELA} {
			p.overrides[cellKey{grade, subject}] = thresholdOverride{
				minLessonsPerStrand: 2,
				minTotalLessons:     12,
			}
		}
	}

	// Specialized high-school subjects have narrower catalogs.
	for _, grade := range []string{"11", "12"} {
		for _, subject := range []string{"Statistics", "Economics"} {
			p.overrides[cellKey{grade, subject}] = thresholdOverride{
				minModules: 3,
			}
		}
	}

	coreSubjects := []string{
		util.SubjectMathematics,
		util.SubjectELA,
		util.SubjectScience,
		util.SubjectSocialStudies,
	}
	for _, grade := range []string{"K", "1", "2", "3", "4", "5", "6", "7", "8"} {
		for _, subject := range coreSubjects {
			p.scope[cellKey{grade, subject}] = true
		}
	}
	for _, grade := range []string{"9", "10"} {
		for _, subject := range []string{util.SubjectMathematics, util.SubjectELA, util.SubjectScience} {
			p.scope[cellKey{grade, subject}] = true
		}
	}
	for _, grade := range []string{"11", "12"} {
		for _, subject := range []string{util.SubjectMathematics, util.SubjectELA, util.SubjectScience, "Statistics", "Economics"} {
			p.scope[cellKey{grade, subject}] = true
		}
	}

	return p
}

// Thresholds returns the full ("ready") tier for a cell: the default tuple
// with any per-cell override merged on top.
func (p *ThresholdPolicy) Thresholds(grade, subject string) model.CoverageThresholds {
	t := p.defaults
	o, ok := p.overrides[cellKey{grade, subject}]
	if !ok {
		return t
	}
	if o.minLessonsPerStrand > 0 {
		t.MinLessonsPerStrand = o.minLessonsPerStrand
	}
	if o.minQuestionsPerLesson > 0 {
		t.MinQuestionsPerLesson = o.minQuestionsPerLesson
	}
	if o.minTotalLessons > 0 {
		t.MinTotalLessons = o.minTotalLessons
	}
	if o.minModules > 0 {
		t.MinModules = o.minModules
	}
	return t
}

// BetaThresholds derives the relaxed tier from the full tier: each component
// is the minimum of its hard floor and roughly half the full value (40% for
// total lessons). Beta is therefore ≤ full by construction.
func (p *ThresholdPolicy) BetaThresholds(grade, subject string) model.CoverageThresholds {
	full := p.Thresholds(grade, subject)
	return model.CoverageThresholds{
		MinLessonsPerStrand:   minInt(betaFloorLessonsPerStrand, ceilHalf(full.MinLessonsPerStrand)),
		MinQuestionsPerLesson: minInt(betaFloorQuestionsPerLesson, ceilHalf(full.MinQuestionsPerLesson)),
		MinTotalLessons:       minInt(betaFloorTotalLessons, atLeastOne(full.MinTotalLessons*2/5, full.MinTotalLessons)),
		MinModules:            minInt(betaFloorModules, ceilHalf(full.MinModules)),
	}
}

// InScope reports whether the cell is part of the current launch. Out-of-scope
// content is never evaluated or backfilled.
func (p *ThresholdPolicy) InScope(grade, subject string) bool {
	return p.scope[cellKey{grade, subject}]
}

// ScopedCells returns every launched cell, unordered.
func (p *ThresholdPolicy) ScopedCells() []model.ModuleCell {
	out := make([]model.ModuleCell, 0, len(p.scope))
	for key := range p.scope {
		out = append(out, model.ModuleCell{GradeBand: key.grade, Subject: key.subject})
	}
	return out
}

func ceilHalf(v int) int {
	return (v + 1) / 2
}

func atLeastOne(v, full int) int {
	if v < 1 && full >= 1 {
		return 1
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
