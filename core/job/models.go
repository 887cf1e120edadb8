package job

import (
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/udahili/core"
)

type Job struct {
	ID          string `json:"id"`
	CompanyID   string `json:"company_id"`
	Title       string `json:"title"`
	Description string `json:"description"`

	// free-text skill tokens, e.g. "React", "Node"
	Skills         []string `json:"skills"`
	Qualifications []string `json:"qualifications"`
	// free-text experience requirement, e.g. "2+ years"
	Experience string `json:"experience"`

	// Deadline is immutable once posted; expired jobs are excluded from
	// listings and refuse new applications.
	Deadline  time.Time `json:"deadline"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

func (j *Job) Expired(now time.Time) bool {
	return !j.Deadline.IsZero() && j.Deadline.Before(now)
}

// RequiredYears extracts the leading integer of the experience requirement;
// 0 when none is stated.
func (j *Job) RequiredYears() int {
	fields := strings.FieldsFunc(j.Experience, func(r rune) bool {
		return r < '0' || r > '9'
	})
	if len(fields) == 0 {
		return 0
	}
	years, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0
	}
	return years
}

// JobApplication records a student's interest in a job, with the match score
// frozen at application time. Jobs are not capacity-bounded: there are no
// seat semantics on this track.
type JobApplication struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	JobID     string    `json:"job_id"`
	CompanyID string    `json:"company_id"`
	Score     float64   `json:"score"` // 0-1
	CreatedAt time.Time `json:"created_at"` // UTC
}

// NewJob contains information needed to post a new Job.
type NewJob struct {
	Title          string    `json:"title" validate:"required"`
	Description    string    `json:"description"`
	Skills         []string  `json:"skills"`
	Qualifications []string  `json:"qualifications"`
	Experience     string    `json:"experience"`
	Deadline       time.Time `json:"deadline"`
}

func (nj *NewJob) Validate(validate *validator.Validate) error {
	nj.Title = core.CleanString(nj.Title)
	nj.Description = core.CleanString(nj.Description)
	nj.Experience = core.CleanString(nj.Experience)
	for i, s := range nj.Skills {
		nj.Skills[i] = core.CleanString(s)
	}
	for i, q := range nj.Qualifications {
		nj.Qualifications[i] = core.CleanString(q)
	}
	return validate.Struct(nj)
}

type QueryFilter struct {
	CompanyID      string `query:"company_id"`
	IncludeExpired bool   `query:"include_expired"`
}

type ApplicationQueryFilter struct {
	StudentID string `query:"student_id"`
	JobID     string `query:"job_id"`
	CompanyID string `query:"company_id"`
}
