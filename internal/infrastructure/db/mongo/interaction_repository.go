package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/crmhub/crm-system/internal/core/domain"
	"github.com/crmhub/crm-system/internal/core/ports"
)

type InteractionRepository struct {
	col *mongo.Collection
}

var _ ports.InteractionRepository = (*InteractionRepository)(nil)

func NewInteractionRepository(db *mongo.Database) *InteractionRepository {
	return &InteractionRepository{col: db.Collection(collectionInteractions)}
}

type interactionDoc struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	CustomerID      string             `bson:"customer_id"`
	InteractionType string             `bson:"interaction_type"`
	Description     string             `bson:"description,omitempty"`
	Status          string             `bson:"status"`
	InteractionDate time.Time          `bson:"interaction_date"`
}

func toInteractionDoc(i *domain.Interaction) interactionDoc {
	return interactionDoc{
		CustomerID:      i.CustomerID,
		InteractionType: string(i.InteractionType),
		Description:     i.Description,
		Status:          string(i.Status),
		InteractionDate: i.InteractionDate.UTC(),
	}
}

func (d interactionDoc) toDomain() *domain.Interaction {
	return &domain.Interaction{
		ID:              d.ID.Hex(),
		CustomerID:      d.CustomerID,
		InteractionType: domain.InteractionType(d.InteractionType),
		Description:     d.Description,
		Status:          domain.InteractionStatus(d.Status),
		InteractionDate: d.InteractionDate.UTC(),
	}
}

func (r *InteractionRepository) Create(ctx context.Context, i *domain.Interaction) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, toInteractionDoc(i))
	if err != nil {
		return fmt.Errorf("insert interaction: %w", err)
	}
	i.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

func (r *InteractionRepository) FindByID(ctx context.Context, id string) (*domain.Interaction, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, domain.ErrInteractionNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc interactionDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrInteractionNotFound
		}
		return nil, fmt.Errorf("find interaction: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *InteractionRepository) find(ctx context.Context, filter bson.M) ([]*domain.Interaction, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "interaction_date", Value: -1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find interactions: %w", err)
	}
	var docs []interactionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode interactions: %w", err)
	}

	out := make([]*domain.Interaction, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// FindByCustomerID returns the customer's interactions, newest first.
func (r *InteractionRepository) FindByCustomerID(ctx context.Context, customerID string) ([]*domain.Interaction, error) {
	return r.find(ctx, bson.M{"customer_id": customerID})
}

func (r *InteractionRepository) FindAll(ctx context.Context) ([]*domain.Interaction, error) {
	return r.find(ctx, bson.M{})
}

func (r *InteractionRepository) Update(ctx context.Context, i *domain.Interaction) error {
	oid, ok := parseID(i.ID)
	if !ok {
		return domain.ErrInteractionNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toInteractionDoc(i)
	doc.ID = oid
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		return fmt.Errorf("replace interaction: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrInteractionNotFound
	}
	return nil
}

func (r *InteractionRepository) Delete(ctx context.Context, id string) error {
	oid, ok := parseID(id)
	if !ok {
		return domain.ErrInteractionNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete interaction: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrInteractionNotFound
	}
	return nil
}

func (r *InteractionRepository) DeleteByCustomerID(ctx context.Context, customerID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteMany(ctx, bson.M{"customer_id": customerID})
	if err != nil {
		return 0, fmt.Errorf("delete interactions: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *InteractionRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count interactions: %w", err)
	}
	return n, nil
}

func (r *InteractionRepository) CountByStatus(ctx context.Context, status domain.InteractionStatus) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"status": string(status)})
	if err != nil {
		return 0, fmt.Errorf("count interactions by status: %w", err)
	}
	return n, nil
}
