package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OptionStore persists named values. Get reports false when the key was never written.
type OptionStore interface {
	Get(ctx context.Context, key string, out any) (bool, error)
	Put(ctx context.Context, key string, value any) error
}

// MongoOptionStore keeps one document per key: {_id: key, value: ..., updated_at}.
type MongoOptionStore struct {
	col *mongo.Collection
}

func NewMongoOptionStore(db *mongo.Database) *MongoOptionStore {
	return &MongoOptionStore{col: db.Collection("options")}
}

func (s *MongoOptionStore) Get(ctx context.Context, key string, out any) (bool, error) {
	var doc struct {
		Value bson.RawValue `bson:"value"`
	}
	if err := s.col.FindOne(ctx, bson.M{"_id": key}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, err
	}
	if err := doc.Value.Unmarshal(out); err != nil {
		return false, err
	}
	return true, nil
}

func (s *MongoOptionStore) Put(ctx context.Context, key string, value any) error {
	_, err := s.col.UpdateByID(ctx, key, bson.M{
		"$set": bson.M{"value": value, "updated_at": time.Now()},
	}, options.Update().SetUpsert(true))
	return err
}

// Option is the row type of the SQL option store.
type Option struct {
	Key       string `gorm:"column:option_key;primaryKey"`
	Value     string `gorm:"column:option_value;type:text"`
	UpdatedAt time.Time
}

func (Option) TableName() string { return "migration_options" }

// SQLOptionStore keeps JSON encoded values in a gorm table.
type SQLOptionStore struct {
	db *gorm.DB
}

func NewSQLOptionStore(db *gorm.DB) *SQLOptionStore {
	return &SQLOptionStore{db: db}
}

func (s *SQLOptionStore) Get(ctx context.Context, key string, out any) (bool, error) {
	var opt Option
	err := s.db.WithContext(ctx).Where("option_key = ?", key).First(&opt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(opt.Value), out); err != nil {
		return false, err
	}
	return true, nil
}

func (s *SQLOptionStore) Put(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	opt := Option{Key: key, Value: string(data), UpdatedAt: time.Now()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "option_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"option_value", "updated_at"}),
	}).Create(&opt).Error
}

// MemoryOptionStore is a process-local OptionStore; values are stored JSON encoded
// so readers never share memory with writers.
type MemoryOptionStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewMemoryOptionStore() *MemoryOptionStore {
	return &MemoryOptionStore{values: map[string][]byte{}}
}

func (s *MemoryOptionStore) Get(_ context.Context, key string, out any) (bool, error) {
	s.mu.RLock()
	data, ok := s.values[key]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, out)
}

func (s *MemoryOptionStore) Put(_ context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.values[key] = data
	s.mu.Unlock()
	return nil
}
