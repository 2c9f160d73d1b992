package models

import "time"

// Service is a bookable offering owned by exactly one provider.
type Service struct {
	ID              int64     `bson:"_id" json:"id"`
	ProviderID      int64     `bson:"providerId" json:"providerId"`
	Name            string    `bson:"name" json:"name"`
	Description     string    `bson:"description" json:"description"`
	DurationMinutes int       `bson:"durationMinutes" json:"durationMinutes"`
	Price           float64   `bson:"price" json:"price"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
}

// Duration returns the length of one slot of this service.
func (s Service) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}

// ServicePatch carries the optional fields of a service update.
type ServicePatch struct {
	Name            *string  `json:"name,omitempty"`
	Description     *string  `json:"description,omitempty"`
	DurationMinutes *int     `json:"durationMinutes,omitempty"`
	Price           *float64 `json:"price,omitempty"`
}

// PublicService is a service listed to clients together with its provider.
type PublicService struct {
	Service      `bson:",inline"`
	ProviderName string `bson:"providerName" json:"providerName"`
}
