package models

import "time"

// Provider is an actor offering bookable services, keyed by the stable
// external identity handed to us by the front end.
type Provider struct {
	ID         int64     `bson:"_id" json:"id"`
	ExternalID string    `bson:"externalId" json:"externalId"` // unique, never changes after registration
	Name       string    `bson:"name" json:"name"`
	Active     bool      `bson:"active" json:"active"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}
