package models

import "time"

// Attachment is embedded in its owning Task; it has no independent lifecycle.
// StoragePath locates the binary in the blob store, URL is how clients fetch it.
type Attachment struct {
	ID          string    `json:"id" bson:"id"`
	Name        string    `json:"name" bson:"name"`
	Type        string    `json:"type" bson:"type"`
	URL         string    `json:"url" bson:"url"`
	StoragePath string    `json:"storagePath" bson:"storagePath"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}
