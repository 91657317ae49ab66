package persistence

import "time"

// EntityModel is the archived form of a graph entity; properties are stored
// as a JSON document.
type EntityModel struct {
	ID        string `gorm:"primaryKey"`
	Kind      string `gorm:"index"`
	CreatedAt time.Time
	Props     []byte `gorm:"type:jsonb"`
}

func (EntityModel) TableName() string {
	return "entities"
}

// EdgeModel is the archived form of a graph edge. The (family, day) index
// mirrors the arena's day buckets.
type EdgeModel struct {
	ID        string `gorm:"primaryKey"`
	FromID    string `gorm:"index"`
	ToID      string `gorm:"index"`
	Family    string `gorm:"index:idx_edges_family_day"`
	Day       int64  `gorm:"index:idx_edges_family_day"`
	CreatedAt time.Time
	Props     []byte `gorm:"type:jsonb"`
}

func (EdgeModel) TableName() string {
	return "edges"
}
