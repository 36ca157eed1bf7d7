package models

import "time"

type Member struct {
	ID               uint    `gorm:"primaryKey"`
	MemberNumber     string  `gorm:"size:40;not null;uniqueIndex"`
	NationalID       string  `gorm:"size:20;not null;uniqueIndex"`
	FullName         string  `gorm:"size:255;not null"`
	Phone            string  `gorm:"size:32;not null;default:''"`
	BranchID         *uint   `gorm:"index"`
	FlagContribution bool    `gorm:"not null"`
	FlagSolidarity   bool    `gorm:"not null"`
	FlagLoans        bool    `gorm:"not null"`
	FlagCards        bool    `gorm:"not null"`
	FlagSavings      bool    `gorm:"not null"`
	InRegistry       bool    `gorm:"not null;index"`
	LastImportJobID  *string `gorm:"size:36"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (Member) TableName() string {
	return "members"
}

type Branch struct {
	ID        uint    `gorm:"primaryKey"`
	Code      string  `gorm:"size:20;not null;uniqueIndex"`
	Name      string  `gorm:"size:120;not null"`
	City      *string `gorm:"size:120"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Branch) TableName() string {
	return "branches"
}
