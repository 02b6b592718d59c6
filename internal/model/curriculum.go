package model

import "gorm.io/datatypes"

// CurriculumModule is one teachable unit of a grade/subject cell. Modules are
// authored upstream; the readiness pipeline treats them as read-only.
// swagger:model CurriculumModule
type CurriculumModule struct {
	BaseModel
	Slug         string `gorm:"size:120;uniqueIndex;not null" json:"slug"`
	Title        string `gorm:"size:255;not null" json:"title"`
	Subject      string `gorm:"size:80;index:idx_modules_cell" json:"subject"`
	GradeBand    string `gorm:"size:20;index:idx_modules_cell" json:"gradeBand"`
	Strand       string `gorm:"size:120;index" json:"strand"`
	Topic        string `gorm:"size:160" json:"topic"`
	StandardCode string `gorm:"size:60;index" json:"standardCode"`

	// PracticeTarget overrides the configured default practice-item floor
	// for this module. Zero means "use the default".
	PracticeTarget int `gorm:"default:0" json:"practiceTarget"`

	Metadata datatypes.JSON `gorm:"type:json" json:"metadata,omitempty"`
}

func (CurriculumModule) TableName() string {
	return "curriculum_modules"
}

// swagger:model Lesson
type Lesson struct {
	BaseModel
	ModuleID uint   `gorm:"index;not null" json:"moduleId"`
	Title    string `gorm:"size:255;not null" json:"title"`
	Position int    `gorm:"default:0" json:"position"`
}

func (Lesson) TableName() string {
	return "lessons"
}
