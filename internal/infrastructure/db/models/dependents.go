package models

import "time"

// Assignment and Attendance reference a member and must outlive its presence in the registry.
type Assignment struct {
	ID        uint   `gorm:"primaryKey"`
	MemberID  uint   `gorm:"not null;index"`
	ListName  string `gorm:"size:120;not null"`
	CreatedAt time.Time
}

func (Assignment) TableName() string {
	return "assignments"
}

type Attendance struct {
	ID          uint   `gorm:"primaryKey"`
	MemberID    uint   `gorm:"not null;index"`
	Event       string `gorm:"size:120;not null"`
	CheckedInAt time.Time
}

func (Attendance) TableName() string {
	return "attendances"
}

// DependentSnapshot is a per-job copy of dependent rows taken before members are marked stale.
type DependentSnapshot struct {
	ID         uint   `gorm:"primaryKey"`
	JobID      string `gorm:"size:36;not null;index"`
	Relation   string `gorm:"size:40;not null"`
	RecordID   uint   `gorm:"not null"`
	MemberID   uint   `gorm:"not null"`
	NationalID string `gorm:"size:20;not null"`
	TakenAt    time.Time
}

func (DependentSnapshot) TableName() string {
	return "dependent_snapshots"
}
