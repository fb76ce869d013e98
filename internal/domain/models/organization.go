// internal/domain/models/organization.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Organization includes case/diacritic-insensitive fields for search/sort.
//
// TimeZone is an IANA name; the individual-program start-date cutoff is
// evaluated in this zone.
type Organization struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Name     string             `bson:"name" json:"name"`
	NameCI   string             `bson:"name_ci" json:"name_ci"`
	TimeZone string             `bson:"time_zone" json:"time_zone"`

	// AlumniDiscountEnabled gates the reserved ALUMNI code.
	AlumniDiscountEnabled bool  `bson:"alumni_discount_enabled" json:"alumni_discount_enabled"`
	AlumniDiscountPercent int64 `bson:"alumni_discount_percent" json:"alumni_discount_percent"`

	Status    string    `bson:"status" json:"status"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
