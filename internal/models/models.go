package models

import "time"

// DocumentStatus tracks a document through the ingestion lifecycle.
type DocumentStatus string

const (
	DocumentPending    DocumentStatus = "pending"    // uploaded, not yet ingested
	DocumentProcessing DocumentStatus = "processing" // ingestion in flight
	DocumentProcessed  DocumentStatus = "processed"  // chunks indexed
	DocumentFailed     DocumentStatus = "failed"     // ingestion failed, nothing indexed
)

// Message roles. The set is closed; nothing else is ever persisted.
const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
)

// Document is an uploaded source file and its processing state. VectorRef
// links the record to its batch of vector index entries once ingestion
// succeeds.
type Document struct {
	ID        uint           `gorm:"primaryKey"`
	UserID    string         `gorm:"index;not null;size:255"`
	Filename  string         `gorm:"not null;size:255"`
	FilePath  string         `gorm:"not null;size:512"` // storage path or object key
	FileType  string         `gorm:"not null;size:50"`  // declared extension without the dot
	Status    DocumentStatus `gorm:"type:varchar(20);default:'pending';not null"`
	VectorRef string         `gorm:"size:255"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Chat is one conversation owned by a user. It is created lazily on the
// first message and never deleted by this service.
type Chat struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    string `gorm:"index;not null;size:255"`
	CreatedAt time.Time

	Messages []ChatMessage `gorm:"constraint:OnDelete:CASCADE"`
}

// ChatMessage is one turn of a conversation. Messages are append-only and
// ordered by creation time, ties broken by insertion order (id).
type ChatMessage struct {
	ID        uint   `gorm:"primaryKey"`
	ChatID    uint   `gorm:"index;not null"`
	Role      string `gorm:"type:varchar(20);not null"` // user or assistant
	Content   string `gorm:"type:text;not null"`
	CreatedAt time.Time
}
