package student

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/udahili/core"
)

var (
	// errors
	ErrNotFound    = errors.New("student not found")
	ErrEmailExists = errors.New("a student with this email already exists")
)

type (
	Repository interface {
		CreateStudent(std Student) (Student, error)
		GetStudentByID(id string) (Student, error)
		GetStudentByEmail(email string) (Student, error)
		QueryAllStudents() ([]Student, error)
		UpdateStudent(std Student) (Student, error)
		DeleteStudent(id string) error
	}

	Service struct {
		repo Repository
		now  func() time.Time
	}
)

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

func (svc *Service) CheckEmailUniqueness(email string) error {
	if _, err := svc.repo.GetStudentByEmail(email); err == nil {
		return core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
	} else if errors.Cause(err) != ErrNotFound {
		return err
	}
	return nil
}

func (svc *Service) Create(ns NewStudent) (Student, error) {
	now := svc.now().UTC()
	std := Student{
		ID:              uuid.New().String(),
		Name:            ns.Name,
		Email:           ns.Email,
		Grades:          ns.Grades,
		Skills:          ns.Skills,
		ExperienceYears: ns.ExperienceYears,
		Qualifications:  ns.Qualifications,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	return svc.repo.CreateStudent(std)
}

func (svc *Service) QueryAll() ([]Student, error) {
	return svc.repo.QueryAllStudents()
}

func (svc *Service) GetByID(id string) (Student, error) {
	return svc.repo.GetStudentByID(id)
}

func (svc *Service) GetByEmail(email string) (Student, error) {
	return svc.repo.GetStudentByEmail(core.CleanString(email, true /* lower */))
}

// Update applies us to the student's own profile. Only the profile owner (or
// an admin) may mutate it.
func (svc *Service) Update(actor core.Actor, id string, us UpdateStudent) (Student, error) {
	if !(actor.IsAdmin() || (actor.IsStudent() && actor.ID == id)) {
		return Student{}, core.ErrUnauthorized
	}

	std, err := svc.repo.GetStudentByID(id)
	if err != nil {
		return Student{}, err
	}

	if us.Name != "" {
		std.Name = us.Name
	}
	if us.Grades != nil {
		std.Grades = us.Grades
	}
	if us.Skills != nil {
		std.Skills = us.Skills
	}
	if us.ExperienceYears != nil {
		std.ExperienceYears = *us.ExperienceYears
	}
	if us.Qualifications != nil {
		std.Qualifications = us.Qualifications
	}
	std.UpdatedAt = svc.now().UTC()

	return svc.repo.UpdateStudent(std)
}

func (svc *Service) Delete(actor core.Actor, id string) error {
	if !(actor.IsAdmin() || (actor.IsStudent() && actor.ID == id)) {
		return core.ErrUnauthorized
	}
	return svc.repo.DeleteStudent(id)
}
