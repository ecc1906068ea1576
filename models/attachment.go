package models

import "time"

// Attachment is an uploaded media file owned by a record.
// Collection: attachments
type Attachment struct {
	ID        int64     `bson:"_id" json:"id"`
	ParentID  int64     `bson:"parent_id" json:"parent_id"`
	URL       string    `bson:"url" json:"url"`
	Path      string    `bson:"path" json:"path"`
	MimeType  string    `bson:"mime_type" json:"mime_type"`
	Title     string    `bson:"title" json:"title"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
