package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"legacy-migrator/models"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// VideoRepository stores catalog records and reusable fragments. It also
// resolves attachment ids so it can serve as the parser's resolver.
type VideoRepository struct {
	col *mongo.Collection
	*AttachmentRepository
}

func NewVideoRepository(db *mongo.Database) *VideoRepository {
	return &VideoRepository{
		col:                  db.Collection("posts"),
		AttachmentRepository: NewAttachmentRepository(db),
	}
}

// GetVideo returns any record by id, whatever its post type.
func (r *VideoRepository) GetVideo(ctx context.Context, id int64) (*models.Video, error) {
	var v models.Video
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&v); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	v.Meta = normalizeMeta(v.Meta)
	return &v, nil
}

// ListVideos returns all video records in a candidate status, ordered by id.
func (r *VideoRepository) ListVideos(ctx context.Context) ([]*models.Video, error) {
	filter := bson.M{
		"post_type":   models.PostTypeVideo,
		"post_status": bson.M{"$in": models.CandidateStatuses},
	}
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var results []*models.Video
	for cur.Next(ctx) {
		var v models.Video
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		v.Meta = normalizeMeta(v.Meta)
		results = append(results, &v)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// GetField reads one structured field from the record meta.
func (r *VideoRepository) GetField(ctx context.Context, id int64, f models.Field) (models.Value, bool, error) {
	key := "meta." + f.MetaKey()
	var doc struct {
		Meta map[string]any `bson:"meta"`
	}
	opts := options.FindOne().SetProjection(bson.M{key: 1})
	if err := r.col.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Value{}, false, ErrNotFound
		}
		return models.Value{}, false, err
	}
	raw, ok := normalizeMeta(doc.Meta)[f.MetaKey()]
	if !ok {
		return models.Value{}, false, nil
	}
	v, ok := models.ValueOf(raw)
	return v, ok, nil
}

// SetField overwrites one structured field and touches updated_at.
func (r *VideoRepository) SetField(ctx context.Context, id int64, f models.Field, v models.Value) error {
	res, err := r.col.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{
			"meta." + f.MetaKey(): v.Interface(),
			"updated_at":          time.Now(),
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ReusableBlock returns the content of a reusable fragment, or "" when id is
// not a fragment.
func (r *VideoRepository) ReusableBlock(ctx context.Context, id int64) (string, error) {
	var doc struct {
		Content string `bson:"content"`
	}
	filter := bson.M{"_id": id, "post_type": models.PostTypeReusableBlock}
	opts := options.FindOne().SetProjection(bson.M{"content": 1})
	if err := r.col.FindOne(ctx, filter, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", nil
		}
		return "", err
	}
	return doc.Content, nil
}

// normalizeMeta turns decoded bson arrays into []any so models.ValueOf can read them.
func normalizeMeta(meta map[string]any) map[string]any {
	for k, v := range meta {
		if arr, ok := v.(primitive.A); ok {
			meta[k] = []any(arr)
		}
	}
	return meta
}
