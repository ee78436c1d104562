package dto

import (
	"time"

	"golang-stock-tracker/internal/entity"
)

// BatchTrigger tells who started a batch.
type BatchTrigger string

const (
	TriggerUser      BatchTrigger = "user"
	TriggerScheduled BatchTrigger = "scheduled"
)

// BatchStatus is the outcome of a batch.
type BatchStatus string

const (
	BatchStatusCompleted BatchStatus = "completed"
	BatchStatusCancelled BatchStatus = "cancelled"
)

// PostResultCode classifies what happened to one post in a batch.
type PostResultCode string

const (
	PostResultUpdated          PostResultCode = "updated"
	PostResultUnchanged        PostResultCode = "unchanged"
	PostResultPriceUnavailable PostResultCode = "price_unavailable"
	PostResultStaleQuote       PostResultCode = "stale_quote"
	PostResultPersistConflict  PostResultCode = "persist_conflict"
	PostResultClosedSkipped    PostResultCode = "closed_skipped"
	PostResultFailed           PostResultCode = "failed"
)

// RunBatchParam is the input of one batch run.
type RunBatchParam struct {
	OwnerID uint
	Trigger BatchTrigger
}

// PostChanges lists the flags that flipped during this run.
type PostChanges struct {
	TargetReached     bool `json:"target_reached"`
	StopLossTriggered bool `json:"stop_loss_triggered"`
	Closed            bool `json:"closed"`
}

// Any reports whether at least one flag changed.
func (c PostChanges) Any() bool {
	return c.TargetReached || c.StopLossTriggered || c.Closed
}

// PostResult describes what one evaluation did to a post.
type PostResult struct {
	PostID           uint              `json:"post_id"`
	Symbol           string            `json:"symbol"`
	Exchange         string            `json:"exchange"`
	CompanyName      string            `json:"company_name"`
	Code             PostResultCode    `json:"code"`
	Status           entity.PostStatus `json:"status"`
	PreviousPrice    float64           `json:"previous_price"`
	CurrentPrice     float64           `json:"current_price"`
	InitialPrice     float64           `json:"initial_price"`
	TargetPrice      *float64          `json:"target_price,omitempty"`
	StopLossPrice    *float64          `json:"stop_loss_price,omitempty"`
	QuoteDate        string            `json:"quote_date,omitempty"`
	HistoryAppended  bool              `json:"history_appended"`
	PriceUpdated     bool              `json:"price_updated"`
	Changes          PostChanges       `json:"changes"`
	PercentChange    *float64          `json:"percent_change,omitempty"`
	ProgressToTarget *float64          `json:"progress_to_target,omitempty"`
	Error            string            `json:"error,omitempty"`
}

// BatchResult summarises one batch run. It is not persisted in the database.
type BatchResult struct {
	BatchID            string       `json:"batch_id"`
	OwnerID            uint         `json:"owner_id"`
	Trigger            BatchTrigger `json:"trigger"`
	Status             BatchStatus  `json:"status"`
	CheckedPosts       int          `json:"checked_posts"`
	UpdatedPosts       int          `json:"updated_posts"`
	ClosedPostsSkipped int          `json:"closed_posts_skipped"`
	FailedPosts        int          `json:"failed_posts"`
	SkippedPosts       int          `json:"skipped_posts"`
	PendingPosts       int          `json:"pending_posts"`
	StartedAt          time.Time    `json:"started_at"`
	FinishedAt         time.Time    `json:"finished_at"`
	Results            []PostResult `json:"results"`
}

// Cancelled reports whether the batch stopped early.
func (r *BatchResult) Cancelled() bool {
	return r.Status == BatchStatusCancelled
}

// StreamDataPriceCheck is the payload enqueued for scheduled batches.
type StreamDataPriceCheck struct {
	OwnerID uint         `json:"owner_id"`
	Trigger BatchTrigger `json:"trigger"`
}

// PostStatusEvent is published when a post's flags change.
type PostStatusEvent struct {
	EventType    string            `json:"event_type"`
	PostID       uint              `json:"post_id"`
	OwnerID      uint              `json:"owner_id"`
	BatchID      string            `json:"batch_id"`
	Symbol       string            `json:"symbol"`
	Status       entity.PostStatus `json:"status"`
	Changes      PostChanges       `json:"changes"`
	CurrentPrice float64           `json:"current_price"`
	Timestamp    time.Time         `json:"timestamp"`
}

// UsageResponse is the current period's quota view.
type UsageResponse struct {
	OwnerID   uint   `json:"owner_id"`
	Period    string `json:"period"`
	Limit     int    `json:"limit"`
	Used      int    `json:"used"`
	Remaining int    `json:"remaining"`
}
