package model

import (
	"encoding/json"

	"gorm.io/datatypes"
)

const PurposeBaseline = "baseline"

// swagger:model Assessment
type Assessment struct {
	BaseModel
	ModuleID    *uint          `gorm:"index" json:"moduleId,omitempty"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Purpose     string         `gorm:"size:40;index" json:"purpose,omitempty"`
	GeneratedBy string         `gorm:"size:40" json:"generatedBy,omitempty"`
	Standards   datatypes.JSON `gorm:"type:json" json:"standards,omitempty"`
	Metadata    datatypes.JSON `gorm:"type:json" json:"metadata,omitempty"`

	Sections []AssessmentSection `gorm:"foreignKey:AssessmentID" json:"sections,omitempty"`
}

func (Assessment) TableName() string {
	return "assessments"
}

func (a *Assessment) StandardList() []string {
	if len(a.Standards) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(a.Standards, &out); err != nil {
		return nil
	}
	return out
}

// swagger:model AssessmentSection
type AssessmentSection struct {
	BaseModel
	AssessmentID uint   `gorm:"index;not null" json:"assessmentId"`
	Title        string `gorm:"size:255" json:"title"`
	Position     int    `gorm:"default:0" json:"position"`

	Items []AssessmentItemLink `gorm:"foreignKey:SectionID" json:"items,omitempty"`
}

func (AssessmentSection) TableName() string {
	return "assessment_sections"
}

// AssessmentItemLink attaches a practice item to a section in order.
type AssessmentItemLink struct {
	BaseModel
	SectionID      uint `gorm:"index;not null" json:"sectionId"`
	PracticeItemID uint `gorm:"index;not null" json:"practiceItemId"`
	Position       int  `gorm:"default:0" json:"position"`
}

func (AssessmentItemLink) TableName() string {
	return "assessment_item_links"
}
