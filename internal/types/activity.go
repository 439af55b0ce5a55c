package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Activity is a single teachable unit with a fixed duration, content tags,
// and target curriculum outcomes. OrderIndex values within one milestone are
// always a contiguous 0..N-1 permutation, maintained by the sequence service.
type Activity struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	MilestoneID  uuid.UUID      `gorm:"type:uuid;not null;index:idx_activity_order,priority:1" json:"milestone_id"`
	Milestone    *Milestone     `gorm:"constraint:OnDelete:CASCADE;foreignKey:MilestoneID;references:ID" json:"milestone,omitempty"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Title        string         `gorm:"column:title;not null" json:"title"`
	DurationMins int            `gorm:"column:duration_mins;not null" json:"duration_mins"`
	Tags         datatypes.JSON `gorm:"column:tags" json:"tags"`
	OutcomeIDs   datatypes.JSON `gorm:"column:outcome_ids" json:"outcome_ids"`
	OrderIndex   int            `gorm:"column:order_index;not null;index:idx_activity_order,priority:2" json:"order_index"`
	CreatedAt    time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null" json:"updated_at"`
}

func (Activity) TableName() string { return "activity" }

func (a *Activity) TagList() []string {
	return decodeStringList(a.Tags)
}

func (a *Activity) OutcomeList() []string {
	return decodeStringList(a.OutcomeIDs)
}

func (a *Activity) SetTags(tags []string) {
	a.Tags = encodeStringList(tags)
}

func (a *Activity) SetOutcomes(outcomeIDs []string) {
	a.OutcomeIDs = encodeStringList(outcomeIDs)
}

func decodeStringList(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func encodeStringList(vals []string) datatypes.JSON {
	if vals == nil {
		vals = []string{}
	}
	raw, err := json.Marshal(vals)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(raw)
}
