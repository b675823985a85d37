package models

import "time"

type SubscriberStatus string

const (
	SubscriberPending      SubscriberStatus = "pending"
	SubscriberActive       SubscriberStatus = "active"
	SubscriberUnsubscribed SubscriberStatus = "unsubscribed"
)

// Subscriber is a newsletter signup.
type Subscriber struct {
	ID          string           `bson:"_id" json:"id"`
	Email       string           `bson:"email" json:"email"`
	Edition     Edition          `bson:"edition" json:"edition"`
	Topics      []string         `bson:"topics" json:"topics"`
	Status      SubscriberStatus `bson:"status" json:"status"`
	Token       string           `bson:"token" json:"-"`
	ConfirmedAt *time.Time       `bson:"confirmedAt,omitempty" json:"confirmedAt,omitempty"`
	CreatedAt   time.Time        `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time        `bson:"updatedAt" json:"updatedAt"`
}
