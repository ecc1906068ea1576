package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"legacy-migrator/models"
)

type AttachmentRepository struct {
	col      *mongo.Collection
	counters *mongo.Collection
}

func NewAttachmentRepository(db *mongo.Database) *AttachmentRepository {
	return &AttachmentRepository{
		col:      db.Collection("attachments"),
		counters: db.Collection("counters"),
	}
}

// AttachmentURL returns the public URL of an attachment, or "" when it does not exist.
func (r *AttachmentRepository) AttachmentURL(ctx context.Context, id int64) (string, error) {
	var a models.Attachment
	opts := options.FindOne().SetProjection(bson.M{"url": 1})
	if err := r.col.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", nil
		}
		return "", err
	}
	return a.URL, nil
}

// Insert registers a new attachment and returns its id.
// Ids come from the "attachments" sequence in the counters collection.
func (r *AttachmentRepository) Insert(ctx context.Context, a *models.Attachment) (int64, error) {
	id, err := r.nextID(ctx, "attachments")
	if err != nil {
		return 0, err
	}
	a.ID = id
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	if _, err := r.col.InsertOne(ctx, a); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *AttachmentRepository) nextID(ctx context.Context, name string) (int64, error) {
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := r.counters.FindOneAndUpdate(ctx, bson.M{"_id": name}, bson.M{"$inc": bson.M{"seq": int64(1)}}, opts).Decode(&doc)
	if err != nil {
		return 0, err
	}
	return doc.Seq, nil
}
