package pages

import (
	"context"
	"time"

	"github.com/newsdesk/newsdesk/internal/database"
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

func (r *MongoRepository) Create(ctx context.Context, p *models.Page) error {
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

func (r *MongoRepository) findOne(ctx context.Context, filter bson.M) (*models.Page, error) {
	var p models.Page
	if err := r.col.FindOne(ctx, filter).Decode(&p); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *MongoRepository) Get(ctx context.Context, id string) (*models.Page, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoRepository) GetBySlug(ctx context.Context, edition models.Edition, slug string) (*models.Page, error) {
	return r.findOne(ctx, bson.M{"edition": edition, "slug": slug})
}

func (r *MongoRepository) List(ctx context.Context, edition models.Edition) ([]*models.Page, error) {
	filter := bson.M{}
	if edition != "" {
		filter["edition"] = edition
	}
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "slug", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*models.Page{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoRepository) Update(ctx context.Context, p *models.Page) error {
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

// MongoComposer joins sections, posts and authors in one aggregation over the
// sections collection.
type MongoComposer struct {
	sections *mongo.Collection
}

func NewMongoComposer(db *mongo.Database) *MongoComposer {
	return &MongoComposer{sections: db.Collection(database.SectionsCollection)}
}

// sectionWithCards is one row of the composition pipeline.
type sectionWithCards struct {
	models.Section `bson:",inline"`
	Cards          []models.PostCard `bson:"cards"`
}

// composePipeline selects the page's sections in position order and, per
// section, its published posts in manual postIds order with the author profile
// embedded.
func composePipeline(pageID string) mongo.Pipeline {
	authorLookup := bson.D{{Key: "$lookup", Value: bson.M{
		"from": database.AuthorsCollection,
		"let":  bson.M{"aid": "$authorId"},
		"pipeline": bson.A{
			bson.M{"$match": bson.M{"$expr": bson.M{"$eq": bson.A{"$_id", "$$aid"}}}},
			bson.M{"$project": bson.M{"name": 1, "bio": 1, "avatarUrl": 1}},
		},
		"as": "author",
	}}}
	postLookup := bson.D{{Key: "$lookup", Value: bson.M{
		"from": database.PostsCollection,
		"let":  bson.M{"ids": "$postIds"},
		"pipeline": bson.A{
			bson.M{"$match": bson.M{
				"$expr":  bson.M{"$in": bson.A{"$_id", "$$ids"}},
				"status": models.PostPublished,
			}},
			bson.M{"$addFields": bson.M{"order": bson.M{"$indexOfArray": bson.A{"$$ids", "$_id"}}}},
			bson.M{"$sort": bson.M{"order": 1}},
			authorLookup,
			bson.M{"$set": bson.M{"author": bson.M{"$arrayElemAt": bson.A{"$author", 0}}}},
			bson.M{"$project": bson.M{
				"slug": 1, "title": 1, "summary": 1, "coverImage": 1, "tags": 1,
				"language": 1, "publishedAt": 1, "author": 1,
			}},
		},
		"as": "cards",
	}}}
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"pageId": pageID}}},
		{{Key: "$sort", Value: bson.D{{Key: "position", Value: 1}, {Key: "name", Value: 1}}}},
		postLookup,
		{{Key: "$set", Value: bson.M{"cards": bson.M{"$cond": bson.A{
			bson.M{"$gt": bson.A{"$limit", 0}},
			bson.M{"$slice": bson.A{"$cards", "$limit"}},
			"$cards",
		}}}}},
	}
}

func (c *MongoComposer) Compose(ctx context.Context, page *models.Page) (*models.ComposedPage, error) {
	cur, err := c.sections.Aggregate(ctx, composePipeline(page.ID))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var rows []sectionWithCards
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	out := &models.ComposedPage{Page: *page, Sections: make([]models.ComposedSection, 0, len(rows))}
	for _, row := range rows {
		out.Sections = append(out.Sections, Arrange(row.Section, row.Cards))
	}
	return out, nil
}
