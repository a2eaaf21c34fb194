package course

import (
	"math"
	"time"
)

type Course struct {
	ID          string    `json:"id" db:"course_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	ImageURL    string    `json:"imageUrl" db:"image_url"`
	Price       float64   `json:"price" db:"price"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

type CourseNew struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description" validate:"required"`
	Price       float64 `json:"price" validate:"gte=0,lte=10000"`
	ImageURL    string  `json:"imageUrl" validate:"required"`
}

// MinorUnits converts the dollar price to the payment provider's integer
// cent representation, rounding half away from zero.
func (c Course) MinorUnits() int64 {
	return int64(math.Round(c.Price * 100))
}
