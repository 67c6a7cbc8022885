package model

import (
	"fmt"
	"time"
)

// Access controls who besides the owner may view a document.
type Access string

const (
	AccessPublic  Access = "public"
	AccessPrivate Access = "private"
)

// ParseAccess validates a raw access level. An empty value means public.
func ParseAccess(s string) (Access, error) {
	switch Access(s) {
	case "", AccessPublic:
		return AccessPublic, nil
	case AccessPrivate:
		return AccessPrivate, nil
	default:
		return "", fmt.Errorf("invalid access level %q", s)
	}
}

// Document is a user-owned text document. Its body lives in object storage under StoragePath;
// Content is only populated when a single document is fetched.
type Document struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content,omitempty"`
	Owner       int64     `json:"owner"`
	Access      Access    `json:"access"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	StoragePath string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
