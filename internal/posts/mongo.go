package posts

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/newsdesk/newsdesk/internal/models"
	"github.com/newsdesk/newsdesk/pkg/pagination"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
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

var newestFirst = bson.D{{Key: "publishedAt", Value: -1}, {Key: "createdAt", Value: -1}}

func (r *MongoRepository) Create(ctx context.Context, p *models.Post) error {
	now := time.Now().UTC()
	if p.ID == "" {
		p.ID = models.NewID()
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := r.col.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.M) (*models.Post, error) {
	var p models.Post
	if err := r.col.FindOne(ctx, filter).Decode(&p); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *MongoRepository) Get(ctx context.Context, id string) (*models.Post, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoRepository) GetBySlug(ctx context.Context, edition models.Edition, slug string) (*models.Post, error) {
	return r.findOne(ctx, bson.M{"edition": edition, "slug": slug})
}

func (r *MongoRepository) SlugTaken(ctx context.Context, edition models.Edition, slug, excludeID string) (bool, error) {
	filter := bson.M{"edition": edition, "slug": slug}
	if excludeID != "" {
		filter["_id"] = bson.M{"$ne": excludeID}
	}
	n, err := r.col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	return n > 0, err
}

func (r *MongoRepository) GetMany(ctx context.Context, ids []string) (map[string]*models.Post, error) {
	out := make(map[string]*models.Post, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var p models.Post
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		out[p.ID] = &p
	}
	return out, cur.Err()
}

func listFilter(f Filter) bson.M {
	filter := bson.M{}
	if f.Edition != "" {
		filter["edition"] = f.Edition
	}
	if f.Language != "" {
		filter["language"] = f.Language
	}
	if f.SectionID != "" {
		filter["sectionId"] = f.SectionID
	}
	if f.AuthorID != "" {
		filter["authorId"] = f.AuthorID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Tag != "" {
		filter["tags"] = f.Tag
	}
	return filter
}

func (r *MongoRepository) List(ctx context.Context, f Filter, p pagination.Params) ([]*models.Post, int, error) {
	filter := listFilter(f)
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(newestFirst).
		SetSkip(p.Skip()).
		SetLimit(int64(p.Limit)).
		SetProjection(bson.M{"searchText": 0})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	out := []*models.Post{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, int(total), nil
}

func (r *MongoRepository) Update(ctx context.Context, p *models.Post) error {
	p.UpdatedAt = time.Now().UTC()
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
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

func (r *MongoRepository) IncrementViews(ctx context.Context, id string) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"views": 1}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// tokenPattern builds one case-insensitive alternation of the escaped tokens.
func tokenPattern(tokens []string) string {
	quoted := make([]string, len(tokens))
	for i, t := range tokens {
		quoted[i] = regexp.QuoteMeta(t)
	}
	return strings.Join(quoted, "|")
}

func (r *MongoRepository) Search(ctx context.Context, f SearchFilter) ([]*models.Post, error) {
	filter := bson.M{"status": models.PostPublished}
	if f.Edition != "" {
		filter["edition"] = f.Edition
	}
	if f.Language != "" {
		filter["language"] = f.Language
	}
	if f.SectionID != "" {
		filter["sectionId"] = f.SectionID
	}
	if f.From != nil || f.To != nil {
		window := bson.M{}
		if f.From != nil {
			window["$gte"] = *f.From
		}
		if f.To != nil {
			window["$lte"] = *f.To
		}
		filter["publishedAt"] = window
	}
	if len(f.Tokens) > 0 {
		filter["searchText"] = primitive.Regex{Pattern: tokenPattern(f.Tokens), Options: "i"}
	}
	opts := options.Find().SetSort(newestFirst)
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*models.Post{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
