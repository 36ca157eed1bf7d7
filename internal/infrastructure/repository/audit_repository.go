package repository

import (
	"context"
	"fmt"
	"time"

	domain "github.com/mohammadpnp/padron-import/internal/domain/member"
	"github.com/mohammadpnp/padron-import/internal/infrastructure/db/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

type GormAuditRepository struct {
	db *gorm.DB
}

func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

func (r *GormAuditRepository) Record(ctx context.Context, entry domain.AuditEntry) error {
	row := models.AuditLog{
		Module:     entry.Module,
		Action:     entry.Action,
		Detail:     entry.Detail,
		Actor:      entry.Actor,
		Origin:     entry.Origin,
		RecordedAt: recordedAt(entry.At),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

const auditCollection = "audit_logs"

// MongoAuditRepository appends audit entries to a MongoDB collection.
type MongoAuditRepository struct {
	collection *mongo.Collection
}

func NewMongoAuditRepository(db *mongo.Database) *MongoAuditRepository {
	return &MongoAuditRepository{collection: db.Collection(auditCollection)}
}

func (r *MongoAuditRepository) Record(ctx context.Context, entry domain.AuditEntry) error {
	doc := bson.M{
		"module":      entry.Module,
		"action":      entry.Action,
		"detail":      entry.Detail,
		"actor":       entry.Actor,
		"origin":      entry.Origin,
		"recorded_at": recordedAt(entry.At),
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert audit document: %w", err)
	}
	return nil
}

func recordedAt(at time.Time) time.Time {
	if at.IsZero() {
		return time.Now().UTC()
	}
	return at.UTC()
}
