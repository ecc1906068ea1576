package models

import "time"

const (
	PostTypeVideo         = "video"
	PostTypeReusableBlock = "wp_block"
)

// Video is a catalog record. Reusable block fragments share the collection
// and are told apart by PostType.
// Collection: posts
type Video struct {
	ID        int64          `bson:"_id" json:"id"`
	PostType  string         `bson:"post_type" json:"post_type"`
	Status    string         `bson:"post_status" json:"post_status"`
	Title     string         `bson:"title" json:"title"`
	Content   string         `bson:"content" json:"content"`
	CreatedAt time.Time      `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time      `bson:"updated_at" json:"updated_at"`
	Meta      map[string]any `bson:"meta,omitempty" json:"meta,omitempty"`
}

// IsVideo reports whether the record can be migrated.
func (v *Video) IsVideo() bool {
	return v != nil && v.PostType == PostTypeVideo
}

// CandidateStatuses are the post statuses considered for migration.
var CandidateStatuses = []string{"publish", "draft", "pending", "private", "future"}

// Field returns the stored value of f from the record meta.
func (v *Video) Field(f Field) (Value, bool) {
	if v == nil || v.Meta == nil {
		return Value{}, false
	}
	raw, ok := v.Meta[f.MetaKey()]
	if !ok {
		return Value{}, false
	}
	return ValueOf(raw)
}

// HasEnhancedMeta reports whether any persisted target field already holds a value.
func (v *Video) HasEnhancedMeta() bool {
	for _, f := range EnhancedMarkerFields {
		if val, ok := v.Field(f); ok && !val.IsEmpty() {
			return true
		}
	}
	return false
}
