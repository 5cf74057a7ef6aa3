package models

import "time"

// EmbeddingRecord is one persisted vector. At most one record exists per
// (verse, language, model); regenerating with the same model overwrites,
// while a new model identifier coexists alongside the old one.
type EmbeddingRecord struct {
	VerseID   int64     `json:"verse_id" db:"verse_id"`
	Language  string    `json:"language" db:"language"`
	Model     string    `json:"model" db:"model"`
	Embedding []float32 `json:"embedding"`
	Dimension int       `json:"dimension" db:"dimension"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// BatchEmbedRequest is the request for POST /embeddings/batch. An empty
// VerseIDs list means "all verses of the given language". AfterID is a
// resumption cursor: verses with id <= AfterID are not revisited.
type BatchEmbedRequest struct {
	VerseIDs []int64 `json:"verse_ids,omitempty"`
	Language string  `json:"language" validate:"required"`
	Force    bool    `json:"force"`
	AfterID  int64   `json:"after_id"`
}

// BatchFailure records one verse that could not be embedded.
type BatchFailure struct {
	VerseID int64  `json:"verse_id"`
	Reason  string `json:"reason"`
}

// BatchEmbedSummary reports the outcome of one batch embedding run. Verses
// skipped because they already carry a current-model record are not counted
// as attempted.
type BatchEmbedSummary struct {
	Attempted int            `json:"attempted"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Failures  []BatchFailure `json:"failures"`
	LastID    int64          `json:"last_id"`
}
