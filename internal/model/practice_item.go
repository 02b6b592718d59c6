package model

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// GeneratedByGapFiller marks content inserted by the backfill job so a later
// audit can separate authored material from placeholders.
const GeneratedByGapFiller = "gap_filler"

// PracticeOption is one answer choice on a multiple-choice practice item.
type PracticeOption struct {
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// swagger:model PracticeItem
type PracticeItem struct {
	BaseModel
	ModuleSlug string         `gorm:"size:120;index" json:"moduleSlug"`
	Prompt     string         `gorm:"type:text;not null" json:"prompt"`
	Options    datatypes.JSON `gorm:"type:json" json:"options"`

	// Provenance is structured rather than buried in the metadata bag:
	// GeneratedBy is empty for authored items, Standards is a JSON string list.
	GeneratedBy string         `gorm:"size:40;index" json:"generatedBy,omitempty"`
	Standards   datatypes.JSON `gorm:"type:json" json:"standards,omitempty"`

	Tags     datatypes.JSON `gorm:"type:json" json:"tags,omitempty"`
	Metadata datatypes.JSON `gorm:"type:json" json:"metadata,omitempty"`
}

func (PracticeItem) TableName() string {
	return "practice_items"
}

// StandardList decodes the standards column. A missing or malformed column
// decodes to nil rather than an error; standards are advisory metadata.
func (p *PracticeItem) StandardList() []string {
	if len(p.Standards) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(p.Standards, &out); err != nil {
		return nil
	}
	return out
}

func EncodeStandards(standards []string) datatypes.JSON {
	if len(standards) == 0 {
		return nil
	}
	b, err := json.Marshal(standards)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}

func EncodeOptions(options []PracticeOption) datatypes.JSON {
	b, err := json.Marshal(options)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}
