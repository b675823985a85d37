package ads

import (
	"context"
	"time"

	"github.com/newsdesk/newsdesk/internal/models"
	"github.com/newsdesk/newsdesk/pkg/pagination"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepository implements Repository using MongoDB. Money fields are
// stored as decimal strings (see database.Registry).
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

var byWeight = bson.D{{Key: "weight", Value: -1}, {Key: "createdAt", Value: 1}}

func (r *MongoRepository) Create(ctx context.Context, a *models.Ad) error {
	now := time.Now().UTC()
	if a.ID == "" {
		a.ID = models.NewID()
	}
	a.CreatedAt = now
	a.UpdatedAt = now
	_, err := r.col.InsertOne(ctx, a)
	return err
}

func (r *MongoRepository) Get(ctx context.Context, id string) (*models.Ad, error) {
	var a models.Ad
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func filterDoc(f Filter) bson.M {
	q := bson.M{}
	if f.Placement != "" {
		q["placement"] = f.Placement
	}
	if f.Edition != "" {
		q["edition"] = f.Edition
	}
	if f.Active != nil {
		q["active"] = *f.Active
	}
	return q
}

func (r *MongoRepository) List(ctx context.Context, f Filter, p pagination.Params) ([]*models.Ad, int, error) {
	q := filterDoc(f)
	total, err := r.col.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().SetSort(byWeight).SetSkip(p.Skip()).SetLimit(int64(p.Limit))
	cur, err := r.col.Find(ctx, q, opts)
	if err != nil {
		return nil, 0, err
	}
	out := []*models.Ad{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, int(total), nil
}

func (r *MongoRepository) Update(ctx context.Context, a *models.Ad) error {
	a.UpdatedAt = time.Now().UTC()
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": a.ID}, a)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) Candidates(ctx context.Context, placement models.Placement, edition models.Edition, now time.Time) ([]*models.Ad, error) {
	q := bson.M{
		"placement": placement,
		"edition":   edition,
		"active":    true,
		"startsAt":  bson.M{"$lte": now},
		"endsAt":    bson.M{"$gt": now},
	}
	cur, err := r.col.Find(ctx, q, options.Find().SetSort(byWeight).SetLimit(50))
	if err != nil {
		return nil, err
	}
	out := []*models.Ad{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// impressionPipeline adds cost to spent with Decimal128 arithmetic and turns
// the ad off once a positive budget is used up.
func impressionPipeline(cost decimal.Decimal, now time.Time) mongo.Pipeline {
	spent := bson.M{"$toDecimal": "$spent"}
	budget := bson.M{"$toDecimal": "$budget"}
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"spent":       bson.M{"$toString": bson.M{"$add": bson.A{spent, bson.M{"$toDecimal": cost.String()}}}},
			"impressions": bson.M{"$add": bson.A{"$impressions", 1}},
			"updatedAt":   now,
		}}},
		{{Key: "$set", Value: bson.M{
			"active": bson.M{"$cond": bson.A{
				bson.M{"$and": bson.A{
					bson.M{"$gt": bson.A{budget, 0}},
					bson.M{"$gte": bson.A{spent, budget}},
				}},
				false,
				"$active",
			}},
		}}},
	}
}

func (r *MongoRepository) findAndUpdate(ctx context.Context, id string, update interface{}) (*models.Ad, error) {
	var a models.Ad
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&a); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *MongoRepository) RecordImpression(ctx context.Context, id string, cost decimal.Decimal) (*models.Ad, error) {
	return r.findAndUpdate(ctx, id, impressionPipeline(cost, time.Now().UTC()))
}

func (r *MongoRepository) RecordClick(ctx context.Context, id string) (*models.Ad, error) {
	return r.findAndUpdate(ctx, id, bson.M{"$inc": bson.M{"clicks": 1}})
}
