package course

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/udahili/core"
	"github.com/trezcool/udahili/core/grading"
)

// Course status, derived from seat availability.
const (
	StatusActive = "active"
	StatusFull   = "full"
)

// StatusFor derives the course status from its seat availability:
// active iff at least one seat is free.
func StatusFor(availableSeats int) string {
	if availableSeats > 0 {
		return StatusActive
	}
	return StatusFull
}

type Course struct {
	ID          string `json:"id"`
	InstituteID string `json:"institute_id"`
	Title       string `json:"title"`
	Description string `json:"description"`

	// Seat invariant: 0 <= AvailableSeats <= Seats. AvailableSeats only
	// decreases on an admission commit and only increases on its reversal.
	Seats          int `json:"seats"`
	AvailableSeats int `json:"available_seats"`

	Requirements []grading.Requirement `json:"requirements"`
	Status       string                `json:"status"`
	CreatedAt    time.Time             `json:"created_at"` // UTC
	UpdatedAt    time.Time             `json:"updated_at"` // UTC
}

// NewCourse contains information needed to publish a new Course.
type NewCourse struct {
	Title        string                `json:"title" validate:"required"`
	Description  string                `json:"description"`
	Seats        int                   `json:"seats" validate:"required,min=1"`
	Requirements []grading.Requirement `json:"requirements" validate:"omitempty,dive"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	for i, req := range nc.Requirements {
		nc.Requirements[i].Subject = core.CleanString(req.Subject)
		nc.Requirements[i].MinimumGrade = core.CleanString(req.MinimumGrade)
	}
	return validate.Struct(nc)
}

// UpdateCourse defines what information may be provided to modify an existing
// Course. Seats and requirements are immutable once published; admissions
// already decided against them.
type UpdateCourse struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (uc *UpdateCourse) Validate(validate *validator.Validate) error {
	uc.Title = core.CleanString(uc.Title)
	uc.Description = core.CleanString(uc.Description)
	return validate.Struct(uc)
}

type QueryFilter struct {
	InstituteID string `query:"institute_id"`
	Status      string `query:"status"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.InstituteID == "" && qf.Status == ""
}
