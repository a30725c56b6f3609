package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is directional: the sender is always an admin, the receiver an
// active employee. ReadAt is set exactly once, when ReadStatus flips to true.
type Message struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	SenderID   primitive.ObjectID `json:"sender_id" bson:"sender_id"`
	ReceiverID primitive.ObjectID `json:"receiver_id" bson:"receiver_id"`
	Subject    string             `json:"subject,omitempty" bson:"subject,omitempty"`
	Content    string             `json:"content" bson:"content"`
	ReadStatus bool               `json:"read_status" bson:"read_status"`
	ReadAt     *time.Time         `json:"read_at,omitempty" bson:"read_at,omitempty"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
}

// MessageView joins sender and receiver display names onto a message.
type MessageView struct {
	Message      `bson:",inline"`
	SenderName   string `json:"sender_name" bson:"sender_name"`
	ReceiverName string `json:"receiver_name" bson:"receiver_name"`
}

// MessageSummary is the inbox list shape: the "other party" name and a
// truncated content preview.
type MessageSummary struct {
	ID             string    `json:"id"`
	Subject        string    `json:"subject,omitempty"`
	ContentPreview string    `json:"content_preview"`
	SenderName     string    `json:"sender_name"`
	ReadStatus     bool      `json:"read_status"`
	CreatedAt      time.Time `json:"created_at"`
}

type MessageStats struct {
	TotalMessages    int `json:"total_messages"`
	UnreadMessages   int `json:"unread_messages"`
	MessagesThisWeek int `json:"messages_this_week"`
}

// ActivityItem is one entry of the dashboard recent-activity feed.
type ActivityItem struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

type DashboardStats struct {
	TotalMessages  int            `json:"total_messages"`
	UnreadMessages int            `json:"unread_messages"`
	TotalReports   int            `json:"total_reports"`
	PendingReports int            `json:"pending_reports"`
	RecentActivity []ActivityItem `json:"recent_activity"`
}
