package models

import "time"

// ImportJob is the completion record of one import run.
type ImportJob struct {
	ID             string  `gorm:"size:36;primaryKey"`
	SubmittedBy    string  `gorm:"size:120;not null"`
	Outcome        string  `gorm:"size:20;not null;index"`
	ErrorMessage   *string `gorm:"type:text"`
	TotalRows      int64   `gorm:"not null;default:0"`
	ImportedCount  int64   `gorm:"not null;default:0"`
	NewCount       int64   `gorm:"not null;default:0"`
	UpdatedCount   int64   `gorm:"not null;default:0"`
	ErrorCount     int64   `gorm:"not null;default:0"`
	DuplicateCount int64   `gorm:"not null;default:0"`
	MissingID      int64   `gorm:"not null;default:0"`
	MissingName    int64   `gorm:"not null;default:0"`
	BlankRows      int64   `gorm:"not null;default:0"`
	HardDeleted    int64   `gorm:"not null;default:0"`
	SoftRetained   int64   `gorm:"not null;default:0"`
	ElapsedMs      int64   `gorm:"not null;default:0"`
	StartedAt      time.Time
	FinishedAt     time.Time
	CreatedAt      time.Time
}

func (ImportJob) TableName() string {
	return "import_jobs"
}

// StagedMember is one row of the unlogged COPY target used by batch upserts.
type StagedMember struct {
	JobID            string `gorm:"size:36;not null;index"`
	RowIndex         int64  `gorm:"not null"`
	MemberNumber     string `gorm:"type:text;not null"`
	NationalID       string `gorm:"type:text;not null"`
	FullName         string `gorm:"type:text;not null"`
	Phone            string `gorm:"type:text;not null"`
	BranchID         *int64
	FlagContribution bool `gorm:"not null"`
	FlagSolidarity   bool `gorm:"not null"`
	FlagLoans        bool `gorm:"not null"`
	FlagCards        bool `gorm:"not null"`
	FlagSavings      bool `gorm:"not null"`
}

func (StagedMember) TableName() string {
	return "stg_members"
}
