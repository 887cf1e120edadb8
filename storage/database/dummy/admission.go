package dummydb

import (
	"github.com/trezcool/udahili/core/admission"
	"github.com/trezcool/udahili/core/course"
)

type admissionRepository struct {
	db *DB
}

var _ admission.Repository = (*admissionRepository)(nil) // interface compliance check

func NewAdmissionRepository(db *DB) admission.Repository {
	return &admissionRepository{db: db}
}

func (repo *admissionRepository) CreateApplication(app admission.Application) (admission.Application, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.applications[app.ID] = &app
	return app, nil
}

func (repo *admissionRepository) GetApplicationByID(id string) (admission.Application, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if app, ok := repo.db.applications[id]; ok {
		return *app, nil
	}
	return admission.Application{}, admission.ErrNotFound
}

func (repo *admissionRepository) FilterApplications(filter admission.QueryFilter) ([]admission.Application, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	apps := make([]admission.Application, 0)
	for _, app := range repo.db.applications {
		if matchesFilter(*app, filter) {
			apps = append(apps, *app)
		}
	}
	return apps, nil
}

func (repo *admissionRepository) CountOpenApplications(studentID, instituteID string) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var count int
	for _, app := range repo.db.applications {
		if app.StudentID == studentID && app.InstituteID == instituteID && app.Status.Open() {
			count++
		}
	}
	return count, nil
}

func (repo *admissionRepository) CountApplicationsForCourse(courseID string) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var count int
	for _, app := range repo.db.applications {
		if app.CourseID == courseID {
			count++
		}
	}
	return count, nil
}

func (repo *admissionRepository) HasApplication(studentID, courseID string) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, app := range repo.db.applications {
		if app.StudentID == studentID && app.CourseID == courseID {
			return true, nil
		}
	}
	return false, nil
}

func (repo *admissionRepository) UpdateApplication(app admission.Application, from admission.Status) (admission.Application, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	stored, ok := repo.db.applications[app.ID]
	if !ok {
		return admission.Application{}, admission.ErrNotFound
	}
	if stored.Status != from { // a concurrent transition got here first
		return admission.Application{}, admission.ErrStatusConflict
	}
	repo.db.applications[app.ID] = &app
	return app, nil
}

func (repo *admissionRepository) WaitlistApplication(app admission.Application, from admission.Status) (admission.Application, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	stored, ok := repo.db.applications[app.ID]
	if !ok {
		return admission.Application{}, admission.ErrNotFound
	}
	if stored.Status != from {
		return admission.Application{}, admission.ErrStatusConflict
	}

	// live waitlisted state of the course, under the same lock as the write
	var count, maxHeld int
	for _, other := range repo.db.applications {
		if other.ID == app.ID || other.CourseID != app.CourseID {
			continue
		}
		if other.Status == admission.StatusWaitlisted {
			count++
			if other.WaitlistPosition > maxHeld {
				maxHeld = other.WaitlistPosition
			}
		}
	}
	app.WaitlistPosition = admission.NextWaitlistPosition(count, maxHeld)

	repo.db.applications[app.ID] = &app
	return app, nil
}

func (repo *admissionRepository) CommitAcceptance(accepted admission.Application, rejected []admission.Application, releaseCourseIDs []string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	// validate everything before mutating anything: every application in the
	// cascade must still be admitted, or a concurrent commit beat this one
	stored, ok := repo.db.applications[accepted.ID]
	if !ok {
		return admission.ErrNotFound
	}
	if stored.Status != admission.StatusAdmitted {
		return admission.ErrStatusConflict
	}
	for _, app := range rejected {
		stored, ok = repo.db.applications[app.ID]
		if !ok {
			return admission.ErrNotFound
		}
		if stored.Status != admission.StatusAdmitted {
			return admission.ErrStatusConflict
		}
	}
	for _, courseID := range releaseCourseIDs {
		if _, ok := repo.db.courses[courseID]; !ok {
			return course.ErrNotFound
		}
	}

	repo.db.applications[accepted.ID] = &accepted
	for i := range rejected {
		repo.db.applications[rejected[i].ID] = &rejected[i]
	}
	for _, courseID := range releaseCourseIDs {
		_, _ = releaseSeat(repo.db, courseID) // existence checked above
	}
	return nil
}

func matchesFilter(app admission.Application, filter admission.QueryFilter) bool {
	if filter.StudentID != "" && app.StudentID != filter.StudentID {
		return false
	}
	if filter.CourseID != "" && app.CourseID != filter.CourseID {
		return false
	}
	if filter.InstituteID != "" && app.InstituteID != filter.InstituteID {
		return false
	}
	if len(filter.Statuses) > 0 {
		var found bool
		for _, s := range filter.Statuses {
			if app.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
