package models

import "time"

type StaffMember struct {
	ID         uint   `gorm:"primaryKey"`
	NationalID string `gorm:"size:20;not null;uniqueIndex"`
	Role       string `gorm:"size:40;not null;default:'operator'"`
	CreatedAt  time.Time
}

func (StaffMember) TableName() string {
	return "staff_registry"
}

type OperatorAccount struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"size:40;not null;uniqueIndex"`
	FullName     string `gorm:"size:255;not null"`
	PasswordHash string `gorm:"size:72;not null"`
	MustChange   bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (OperatorAccount) TableName() string {
	return "operator_accounts"
}

type AuditLog struct {
	ID         uint   `gorm:"primaryKey"`
	Module     string `gorm:"size:40;not null;index"`
	Action     string `gorm:"size:40;not null"`
	Detail     string `gorm:"type:text;not null"`
	Actor      string `gorm:"size:120;not null"`
	Origin     string `gorm:"size:120;not null"`
	RecordedAt time.Time
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// All lists every table owned by the service, in dependency order.
func All() []any {
	return []any{
		&Branch{},
		&Member{},
		&Assignment{},
		&Attendance{},
		&DependentSnapshot{},
		&ImportJob{},
		&StagedMember{},
		&StaffMember{},
		&OperatorAccount{},
		&AuditLog{},
	}
}
