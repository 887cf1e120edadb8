package dummydb

import (
	"github.com/trezcool/udahili/core/course"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) CreateCourse(crs course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.courses[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) GetCourseByID(id string) (course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if crs, ok := repo.db.courses[id]; ok {
		return *crs, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) FilterCourses(filter course.QueryFilter) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	courses := make([]course.Course, 0, len(repo.db.courses))
	for _, crs := range repo.db.courses {
		if filter.InstituteID != "" && crs.InstituteID != filter.InstituteID {
			continue
		}
		if filter.Status != "" && crs.Status != filter.Status {
			continue
		}
		courses = append(courses, *crs)
	}
	return courses, nil
}

func (repo *courseRepository) UpdateCourse(crs course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.courses[crs.ID]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}
	// seat counters are owned by Reserve/ReleaseSeat
	crs.Seats = orig.Seats
	crs.AvailableSeats = orig.AvailableSeats
	crs.Status = orig.Status

	repo.db.courses[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) DeleteCourse(id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.courses, id)
	return nil
}

func (repo *courseRepository) ReserveSeat(id string) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	return reserveSeat(repo.db, id)
}

func (repo *courseRepository) ReleaseSeat(id string) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	return releaseSeat(repo.db, id)
}

// reserveSeat and releaseSeat are the guarded read-modify-writes; callers
// must hold the DB write lock.

func reserveSeat(db *DB, id string) (course.Course, error) {
	crs, ok := db.courses[id]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}
	if crs.AvailableSeats <= 0 {
		return course.Course{}, course.ErrNoSeatsAvailable
	}
	crs.AvailableSeats--
	crs.Status = course.StatusFor(crs.AvailableSeats)
	return *crs, nil
}

func releaseSeat(db *DB, id string) (course.Course, error) {
	crs, ok := db.courses[id]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}
	if crs.AvailableSeats < crs.Seats { // never exceed capacity
		crs.AvailableSeats++
	}
	crs.Status = course.StatusFor(crs.AvailableSeats)
	return *crs, nil
}
