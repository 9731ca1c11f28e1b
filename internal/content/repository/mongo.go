package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chatmarkmap/chatmarkmap/api/internal/content"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ByAuthorIndex serves ListByAuthor without a collection scan.
const ByAuthorIndex = "by_author"

type mongoContent struct {
	ID        primitive.ObjectID `bson:"_id"`
	Title     string             `bson:"title,omitempty"`
	Author    string             `bson:"author"`
	Prompt    string             `bson:"prompt"`
	Content   string             `bson:"content"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d *mongoContent) toContent() *content.Content {
	return &content.Content{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		Author:    d.Author,
		Prompt:    d.Prompt,
		Content:   d.Content,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// MongoRepo implements Repository on a MongoDB collection. Ids are
// ObjectIDs rendered as hex; ordering uses createdAt with _id as tie-breaker.
type MongoRepo struct {
	col *mongo.Collection
}

// NewMongoRepo ensures the by_author index exists and returns the repo.
func NewMongoRepo(ctx context.Context, col *mongo.Collection) (*MongoRepo, error) {
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "author", Value: 1}, {Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
		Options: options.Index().SetName(ByAuthorIndex),
	}
	if _, err := col.Indexes().CreateOne(ctx, idx); err != nil {
		return nil, fmt.Errorf("create %s index: %w", ByAuthorIndex, err)
	}
	return &MongoRepo{col: col}, nil
}

func (m *MongoRepo) Insert(ctx context.Context, c *content.Content) (string, error) {
	now := time.Now().UTC()
	doc := mongoContent{
		ID:        primitive.NewObjectID(),
		Title:     c.Title,
		Author:    c.Author,
		Prompt:    c.Prompt,
		Content:   c.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := m.col.InsertOne(ctx, doc); err != nil {
		return "", err
	}
	return doc.ID.Hex(), nil
}

func (m *MongoRepo) Get(ctx context.Context, id string) (*content.Content, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// not an id this store could have issued
		return nil, nil
	}
	var d mongoContent
	if err := m.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return d.toContent(), nil
}

func (m *MongoRepo) ListByAuthor(ctx context.Context, author string) ([]*content.Content, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetHint(ByAuthorIndex)
	cur, err := m.col.Find(ctx, bson.M{"author": author}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*content.Content{}
	for cur.Next(ctx) {
		var d mongoContent
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, d.toContent())
	}
	return out, cur.Err()
}

func (m *MongoRepo) Patch(ctx context.Context, id string, p content.Patch) (*content.Content, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, content.ErrNotFound
	}
	set := bson.M{"updatedAt": time.Now().UTC()}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Content != nil {
		set["content"] = *p.Content
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var d mongoContent
	err = m.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, content.ErrNotFound
		}
		return nil, err
	}
	return d.toContent(), nil
}

func (m *MongoRepo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return content.ErrNotFound
	}
	res, err := m.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return content.ErrNotFound
	}
	return nil
}
