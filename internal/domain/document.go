package domain

import (
	"fmt"
	"time"
)

// DocumentStatus represents the ingestion state of a document
type DocumentStatus string

const (
	DocumentStatusPending  DocumentStatus = "pending"
	DocumentStatusUploaded DocumentStatus = "uploaded"
	DocumentStatusIndexed  DocumentStatus = "indexed"
	DocumentStatusFailed   DocumentStatus = "failed"
)

// Document represents a knowledge-base document owned by a client. Raw files
// live in object storage; the row holds metadata plus extracted text.
type Document struct {
	ID          string
	ClientID    string
	AgentID     string // optional: scope the document to a single agent
	Title       string
	ContentType string
	StorageKey  string
	SHA256      string
	SizeBytes   int64
	Text        string
	Status      DocumentStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DocumentChunk is one embeddable slice of a document.
type DocumentChunk struct {
	ID         string
	DocumentID string
	ClientID   string
	ChunkIndex int
	Content    string
	Embedding  []float32
	CreatedAt  time.Time
}

// ValidateDocument validates a Document instance
func ValidateDocument(d *Document) error {
	if d == nil {
		return fmt.Errorf("document cannot be nil")
	}
	if d.ID == "" {
		return fmt.Errorf("document ID is required")
	}
	if d.ClientID == "" {
		return fmt.Errorf("document ClientID is required")
	}
	if d.Title == "" {
		return fmt.Errorf("document Title is required")
	}
	if !isValidDocumentStatus(d.Status) {
		return fmt.Errorf("document Status is invalid: %s", d.Status)
	}
	return nil
}

func isValidDocumentStatus(s DocumentStatus) bool {
	switch s {
	case DocumentStatusPending, DocumentStatusUploaded, DocumentStatusIndexed, DocumentStatusFailed:
		return true
	}
	return false
}
