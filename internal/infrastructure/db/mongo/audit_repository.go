package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/crmhub/crm-system/internal/core/domain"
	"github.com/crmhub/crm-system/internal/core/ports"
)

// AuditRepository implements ports.AuditRepository using MongoDB.
type AuditRepository struct {
	db *mongo.Database
}

func NewAuditRepository(db *mongo.Database) ports.AuditRepository {
	return &AuditRepository{db: db}
}

// InsertLoginEvent persists a login attempt to the login_events collection.
func (r *AuditRepository) InsertLoginEvent(ctx context.Context, event *domain.LoginEvent) error {
	doc := bson.M{
		"username":    event.Username,
		"outcome":     string(event.Outcome),
		"state":       event.State.String(),
		"at":          event.At.UTC(),
		"recorded_at": time.Now().UTC(),
	}
	if event.Role != "" {
		doc["role"] = string(event.Role)
	}

	_, err := r.db.Collection(collectionLoginEvents).InsertOne(ctx, doc)
	return err
}
