package models

import "time"

// NotificationTypeFollow marks a "started watching you" notification
const NotificationTypeFollow = "follow"

// Notification represents a user notification (PostgreSQL)
type Notification struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Type        string    `json:"type" gorm:"size:30;index"`
	ActorID     uint      `json:"actor_id" gorm:"index"`
	RecipientID uint      `json:"recipient_id" gorm:"index"`
	EventID     string    `json:"event_id" gorm:"size:36"`
	Message     string    `json:"message"`
	IsRead      bool      `json:"is_read" gorm:"default:false;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}

// FollowEvent is the document persisted for every new follower in MongoDB
type FollowEvent struct {
	EventID    string    `json:"event_id" bson:"event_id"`
	FollowerID uint      `json:"follower_id" bson:"follower_id"`
	FollowedID uint      `json:"followed_id" bson:"followed_id"`
	OccurredAt time.Time `json:"occurred_at" bson:"occurred_at"`
}
