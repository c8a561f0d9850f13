package models

import "time"

// EntitySequence tracks the last applied event sequence per entity. The
// appliers gate on it: a line whose sequence is behind the last applied one
// for its entity is skipped and logged, never applied. Unique constraint:
// (entity_type, entity_key).
type EntitySequence struct {
	ID             int       `gorm:"primary_key" json:"id"`
	EntityType     string    `gorm:"size:20;not null;index:uniq_entity_seq,unique" json:"entity_type"`
	EntityKey      string    `gorm:"size:100;not null;index:uniq_entity_seq,unique" json:"entity_key"`
	LastSequenceId int64     `gorm:"not null" json:"last_sequence_id"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
