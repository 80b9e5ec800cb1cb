package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ActivityStatus string

const (
	ActivityStatusDraft     ActivityStatus = "draft"
	ActivityStatusPublished ActivityStatus = "published"
	ActivityStatusArchived  ActivityStatus = "archived"
)

type Activity struct {
	Base
	CompanyID   uuid.UUID       `db:"company_id"`
	Title       string          `db:"title"`
	Description *string         `db:"description"`
	Location    *string         `db:"location"`
	StartAt     *time.Time      `db:"start_at"`
	EndAt       *time.Time      `db:"end_at"`
	Capacity    *int            `db:"capacity"` // nil = unlimited
	Price       decimal.Decimal `db:"price"`
	Currency    string          `db:"currency"`
	Status      ActivityStatus  `db:"status"`
	AvgRating   float64         `db:"avg_rating"`
	RatingCount int             `db:"rating_count"`
}
