package export

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Record describes the latest snapshot of a content's mind-map source.
type Record struct {
	ContentID string    `bson:"contentId" json:"contentId"`
	Author    string    `bson:"author" json:"-"`
	Key       string    `bson:"key" json:"key"`
	Size      int64     `bson:"size" json:"size"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	URL       string    `bson:"-" json:"url,omitempty"`
}

// Ledger remembers the latest export per content id.
type Ledger interface {
	Save(ctx context.Context, r *Record) error
	// Latest returns (nil, nil) when nothing was exported.
	Latest(ctx context.Context, contentID string) (*Record, error)
	Forget(ctx context.Context, contentID string) error
}

// MongoLedger upserts one record per content id.
type MongoLedger struct {
	col *mongo.Collection
}

func NewMongoLedger(col *mongo.Collection) *MongoLedger {
	return &MongoLedger{col: col}
}

func (l *MongoLedger) Save(ctx context.Context, r *Record) error {
	opts := options.Update().SetUpsert(true)
	if _, err := l.col.UpdateOne(ctx, bson.M{"contentId": r.ContentID}, bson.M{"$set": r}, opts); err != nil {
		return fmt.Errorf("save export record: %w", err)
	}
	return nil
}

func (l *MongoLedger) Latest(ctx context.Context, contentID string) (*Record, error) {
	var r Record
	if err := l.col.FindOne(ctx, bson.M{"contentId": contentID}).Decode(&r); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

func (l *MongoLedger) Forget(ctx context.Context, contentID string) error {
	_, err := l.col.DeleteOne(ctx, bson.M{"contentId": contentID})
	return err
}

// MemoryLedger is used when MongoDB is not configured.
type MemoryLedger struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{records: map[string]Record{}}
}

func (l *MemoryLedger) Save(ctx context.Context, r *Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records[r.ContentID] = *r
	return nil
}

func (l *MemoryLedger) Latest(ctx context.Context, contentID string) (*Record, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	r, ok := l.records[contentID]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (l *MemoryLedger) Forget(ctx context.Context, contentID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.records, contentID)
	return nil
}
