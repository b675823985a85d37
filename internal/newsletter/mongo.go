package newsletter

import (
	"context"
	"time"

	"github.com/newsdesk/newsdesk/internal/models"
	"github.com/newsdesk/newsdesk/pkg/pagination"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, s *models.Subscriber) error {
	now := time.Now().UTC()
	if s.ID == "" {
		s.ID = models.NewID()
	}
	s.CreatedAt = now
	s.UpdatedAt = now
	if _, err := r.col.InsertOne(ctx, s); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.M) (*models.Subscriber, error) {
	var s models.Subscriber
	if err := r.col.FindOne(ctx, filter).Decode(&s); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *MongoRepository) GetByEmail(ctx context.Context, email string) (*models.Subscriber, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoRepository) GetByToken(ctx context.Context, token string) (*models.Subscriber, error) {
	return r.findOne(ctx, bson.M{"token": token})
}

func (r *MongoRepository) Update(ctx context.Context, s *models.Subscriber) error {
	s.UpdatedAt = time.Now().UTC()
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": s.ID}, s)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func filterDoc(f Filter) bson.M {
	q := bson.M{}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.Edition != "" {
		q["edition"] = f.Edition
	}
	return q
}

func (r *MongoRepository) List(ctx context.Context, f Filter, p pagination.Params) ([]*models.Subscriber, int, error) {
	q := filterDoc(f)
	total, err := r.col.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(p.Skip()).
		SetLimit(int64(p.Limit))
	cur, err := r.col.Find(ctx, q, opts)
	if err != nil {
		return nil, 0, err
	}
	out := []*models.Subscriber{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, int(total), nil
}

func (r *MongoRepository) Count(ctx context.Context, f Filter) (int, error) {
	n, err := r.col.CountDocuments(ctx, filterDoc(f))
	return int(n), err
}
