package course

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/udahili/core"
)

var (
	// errors
	ErrNotFound         = errors.New("course not found")
	ErrNoSeatsAvailable = errors.New("no seats available")
	ErrCourseInUse      = errors.New("course is referenced by applications")
)

type (
	Repository interface {
		CreateCourse(crs Course) (Course, error)
		GetCourseByID(id string) (Course, error)
		FilterCourses(filter QueryFilter) ([]Course, error)
		UpdateCourse(crs Course) (Course, error)
		DeleteCourse(id string) error

		// ReserveSeat atomically decrements the course's available seats if
		// any remain, flipping the status to full on the last one; it fails
		// with ErrNoSeatsAvailable otherwise. Must be a single guarded
		// read-modify-write on the course record: concurrent reservations
		// must never drive the count negative.
		ReserveSeat(id string) (Course, error)

		// ReleaseSeat atomically increments the course's available seats,
		// capped at the total, flipping the status back to active.
		ReleaseSeat(id string) (Course, error)
	}

	// ApplicationCounter reports how many applications reference a course;
	// satisfied by the admission repository.
	ApplicationCounter interface {
		CountApplicationsForCourse(courseID string) (int, error)
	}

	Service struct {
		repo Repository
		apps ApplicationCounter
		now  func() time.Time
	}
)

func NewService(repo Repository, apps ApplicationCounter) *Service {
	return &Service{
		repo: repo,
		apps: apps,
		now:  time.Now,
	}
}

func (svc *Service) Create(actor core.Actor, nc NewCourse) (Course, error) {
	if !(actor.IsInstitute() || actor.IsAdmin()) {
		return Course{}, core.ErrUnauthorized
	}

	now := svc.now().UTC()
	crs := Course{
		ID:             uuid.New().String(),
		InstituteID:    actor.ID,
		Title:          nc.Title,
		Description:    nc.Description,
		Seats:          nc.Seats,
		AvailableSeats: nc.Seats,
		Requirements:   nc.Requirements,
		Status:         StatusFor(nc.Seats),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return svc.repo.CreateCourse(crs)
}

func (svc *Service) GetByID(id string) (Course, error) {
	return svc.repo.GetCourseByID(id)
}

func (svc *Service) Filter(filter QueryFilter) ([]Course, error) {
	return svc.repo.FilterCourses(filter)
}

func (svc *Service) Update(actor core.Actor, id string, uc UpdateCourse) (Course, error) {
	crs, err := svc.repo.GetCourseByID(id)
	if err != nil {
		return Course{}, err
	}
	if !(actor.IsAdmin() || (actor.IsInstitute() && actor.ID == crs.InstituteID)) {
		return Course{}, core.ErrUnauthorized
	}

	if uc.Title != "" {
		crs.Title = uc.Title
	}
	if uc.Description != "" {
		crs.Description = uc.Description
	}
	crs.UpdatedAt = svc.now().UTC()

	return svc.repo.UpdateCourse(crs)
}

// Delete removes a course. It is blocked while any application still
// references the course; deleting it would corrupt seat accounting.
func (svc *Service) Delete(actor core.Actor, id string) error {
	crs, err := svc.repo.GetCourseByID(id)
	if err != nil {
		return err
	}
	if !(actor.IsAdmin() || (actor.IsInstitute() && actor.ID == crs.InstituteID)) {
		return core.ErrUnauthorized
	}

	count, err := svc.apps.CountApplicationsForCourse(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCourseInUse
	}
	return svc.repo.DeleteCourse(id)
}

// ReserveSeat consumes one seat of the course; called on admission commit.
func (svc *Service) ReserveSeat(id string) (Course, error) {
	return svc.repo.ReserveSeat(id)
}

// ReleaseSeat returns one seat to the course; called on admission reversal.
func (svc *Service) ReleaseSeat(id string) (Course, error) {
	return svc.repo.ReleaseSeat(id)
}
