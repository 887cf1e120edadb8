package admission

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/udahili/core/grading"
)

// Application status lifecycle:
//
//	pending      -> under_review | admitted | rejected | waitlisted
//	under_review -> admitted | rejected | waitlisted
//	admitted     -> accepted (student) | rejected (institution reversal)
//	rejected, accepted: terminal
type Status string

const (
	StatusPending     Status = "pending"
	StatusUnderReview Status = "under_review"
	StatusAdmitted    Status = "admitted"
	StatusRejected    Status = "rejected"
	StatusWaitlisted  Status = "waitlisted"
	StatusAccepted    Status = "accepted"
)

// OpenStatuses are the statuses counting against the per-institution
// application limit; terminal rejected/accepted do not.
var OpenStatuses = []Status{StatusPending, StatusUnderReview, StatusAdmitted, StatusWaitlisted}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusUnderReview, StatusAdmitted, StatusRejected, StatusWaitlisted, StatusAccepted:
		return true
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusAccepted
}

func (s Status) Open() bool {
	for _, open := range OpenStatuses {
		if s == open {
			return true
		}
	}
	return false
}

// canTransition is the raw reachability table; guards (qualification, seats,
// ownership) are enforced by the service on top of it.
func canTransition(from, to Status) bool {
	switch from {
	case StatusPending, StatusUnderReview:
		switch to {
		case StatusUnderReview, StatusAdmitted, StatusRejected, StatusWaitlisted:
			return from != to
		}
	case StatusAdmitted:
		return to == StatusAccepted || to == StatusRejected
	}
	return false
}

// StatusChange is one audit line of an application's history.
type StatusChange struct {
	From      Status    `json:"from"`
	To        Status    `json:"to"`
	ActorID   string    `json:"actor_id"`
	ActorRole string    `json:"actor_role"`
	At        time.Time `json:"at"` // UTC
}

type Application struct {
	ID        string `json:"id"`
	StudentID string `json:"student_id"`
	CourseID  string `json:"course_id"`
	// copied from the course at creation so later transitions need no course
	// lookup for ownership checks
	InstituteID string `json:"institute_id"`

	Status Status `json:"status"`

	// Qualification is evaluated once at submission and never rewritten.
	Qualification grading.Verdict `json:"qualification"`

	// WaitlistPosition is only set while waitlisted: a positive integer,
	// unique among the course's still-waitlisted applications, assigned in
	// first-come order and never reissued.
	WaitlistPosition int `json:"waitlist_position,omitempty"`

	History   []StatusChange `json:"history"`
	CreatedAt time.Time      `json:"created_at"` // UTC
	UpdatedAt time.Time      `json:"updated_at"` // UTC
}

// record appends an audit line and moves the application to the new status.
func (app *Application) record(to Status, actorID, actorRole string, at time.Time) {
	app.History = append(app.History, StatusChange{
		From:      app.Status,
		To:        to,
		ActorID:   actorID,
		ActorRole: actorRole,
		At:        at,
	})
	app.Status = to
	app.UpdatedAt = at
}

// NewApplication contains information needed to submit a course application.
// The student is the acting identity.
type NewApplication struct {
	CourseID string `json:"course_id" validate:"required"`
}

func (na *NewApplication) Validate(validate *validator.Validate) error {
	return validate.Struct(na)
}

// QueryFilter applies AND over its set fields.
type QueryFilter struct {
	StudentID   string   `query:"student_id"`
	CourseID    string   `query:"course_id"`
	InstituteID string   `query:"institute_id"`
	Statuses    []Status `query:"status"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.StudentID == "" && qf.CourseID == "" && qf.InstituteID == "" && len(qf.Statuses) == 0
}
