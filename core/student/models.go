package student

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/udahili/core"
	"github.com/trezcool/udahili/core/grading"
)

// SubjectGrade is one entry of a student's transcript. Order is preserved as
// entered by the student.
type SubjectGrade struct {
	Subject string `json:"subject" validate:"required"`
	Grade   string `json:"grade" validate:"required,grade"`
}

type Student struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Email           string         `json:"email"`
	Grades          []SubjectGrade `json:"grades"`
	Skills          []string       `json:"skills"`
	ExperienceYears int            `json:"experience_years"`
	Qualifications  []string       `json:"qualifications"`
	CreatedAt       time.Time      `json:"created_at"` // UTC
	UpdatedAt       time.Time      `json:"updated_at"` // UTC
}

// GPA is derived from the transcript on every read; it is never stored
// authoritatively.
func (s *Student) GPA() float64 {
	if len(s.Grades) == 0 {
		return 0
	}
	var total float64
	for _, sg := range s.Grades {
		total += grading.Points(sg.Grade)
	}
	return total / float64(len(s.Grades))
}

// GradeMap returns the transcript as a subject lookup for evaluation.
func (s *Student) GradeMap() map[string]string {
	grades := make(map[string]string, len(s.Grades))
	for _, sg := range s.Grades {
		grades[sg.Subject] = sg.Grade
	}
	return grades
}

// NewStudent contains information needed to register a new Student.
type NewStudent struct {
	Name            string         `json:"name" validate:"required"`
	Email           string         `json:"email" validate:"required,email"`
	Grades          []SubjectGrade `json:"grades" validate:"omitempty,dive"`
	Skills          []string       `json:"skills"`
	ExperienceYears int            `json:"experience_years" validate:"omitempty,min=0"`
	Qualifications  []string       `json:"qualifications"`
}

func (ns *NewStudent) Validate(validate *validator.Validate, svc *Service) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	cleanGrades(ns.Grades)

	if err := validate.Struct(ns); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(ns.Email)
}

// UpdateStudent defines what information may be provided to modify an existing
// Student. Nil slices leave the stored value untouched.
type UpdateStudent struct {
	Name            string         `json:"name"`
	Grades          []SubjectGrade `json:"grades" validate:"omitempty,dive"`
	Skills          []string       `json:"skills"`
	ExperienceYears *int           `json:"experience_years" validate:"omitempty,min=0"`
	Qualifications  []string       `json:"qualifications"`
}

func (us *UpdateStudent) Validate(validate *validator.Validate) error {
	us.Name = core.CleanString(us.Name)
	cleanGrades(us.Grades)
	return validate.Struct(us)
}

func cleanGrades(grades []SubjectGrade) {
	for i, sg := range grades {
		grades[i].Subject = core.CleanString(sg.Subject)
		grades[i].Grade = core.CleanString(sg.Grade)
	}
}
