package sections

import (
	"context"
	"time"

	"github.com/newsdesk/newsdesk/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepository implements Repository using MongoDB
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, s *models.Section) error {
	now := time.Now().UTC()
	if s.ID == "" {
		s.ID = models.NewID()
	}
	if s.PostIDs == nil {
		s.PostIDs = []string{}
	}
	s.CreatedAt = now
	s.UpdatedAt = now
	_, err := r.col.InsertOne(ctx, s)
	return err
}

func (r *MongoRepository) Get(ctx context.Context, id string) (*models.Section, error) {
	var s models.Section
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&s); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *MongoRepository) List(ctx context.Context, f Filter) ([]*models.Section, error) {
	filter := bson.M{}
	if f.Edition != "" {
		filter["edition"] = f.Edition
	}
	if f.PageID != "" {
		filter["pageId"] = f.PageID
	} else if f.Unassigned {
		filter["pageId"] = bson.M{"$in": bson.A{"", nil}}
	}
	opts := options.Find().SetSort(bson.D{{Key: "position", Value: 1}, {Key: "name", Value: 1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*models.Section{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoRepository) Update(ctx context.Context, s *models.Section) error {
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

func (r *MongoRepository) updateOne(ctx context.Context, id string, update bson.M) error {
	update["$set"] = bson.M{"updatedAt": time.Now().UTC()}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) AppendPost(ctx context.Context, sectionID, postID string) error {
	return r.updateOne(ctx, sectionID, bson.M{"$addToSet": bson.M{"postIds": postID}})
}

func (r *MongoRepository) PullPost(ctx context.Context, sectionID, postID string) error {
	return r.updateOne(ctx, sectionID, bson.M{"$pull": bson.M{"postIds": postID}})
}

func (r *MongoRepository) PullPostEverywhere(ctx context.Context, postID string) error {
	_, err := r.col.UpdateMany(ctx, bson.M{"postIds": postID}, bson.M{
		"$pull": bson.M{"postIds": postID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
	return err
}

func (r *MongoRepository) SetPositions(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	now := time.Now().UTC()
	writes := make([]mongo.WriteModel, len(ids))
	for i, id := range ids {
		writes[i] = mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": id}).
			SetUpdate(bson.M{"$set": bson.M{"position": i, "updatedAt": now}})
	}
	_, err := r.col.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	return err
}

func (r *MongoRepository) DetachPage(ctx context.Context, pageID string) error {
	_, err := r.col.UpdateMany(ctx, bson.M{"pageId": pageID}, bson.M{
		"$set": bson.M{"pageId": "", "updatedAt": time.Now().UTC()},
	})
	return err
}
