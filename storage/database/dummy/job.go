package dummydb

import (
	"github.com/trezcool/udahili/core/job"
)

type jobRepository struct {
	db *DB
}

var _ job.Repository = (*jobRepository)(nil) // interface compliance check

func NewJobRepository(db *DB) job.Repository {
	return &jobRepository{db: db}
}

func (repo *jobRepository) CreateJob(j job.Job) (job.Job, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.jobs[j.ID] = &j
	return j, nil
}

func (repo *jobRepository) GetJobByID(id string) (job.Job, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if j, ok := repo.db.jobs[id]; ok {
		return *j, nil
	}
	return job.Job{}, job.ErrNotFound
}

func (repo *jobRepository) FilterJobs(filter job.QueryFilter) ([]job.Job, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	jobs := make([]job.Job, 0, len(repo.db.jobs))
	for _, j := range repo.db.jobs {
		if filter.CompanyID != "" && j.CompanyID != filter.CompanyID {
			continue
		}
		jobs = append(jobs, *j)
	}
	return jobs, nil
}

func (repo *jobRepository) UpdateJob(j job.Job) (job.Job, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.jobs[j.ID]; !ok {
		return job.Job{}, job.ErrNotFound
	}
	repo.db.jobs[j.ID] = &j
	return j, nil
}

func (repo *jobRepository) DeleteJob(id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.jobs, id)
	return nil
}

func (repo *jobRepository) CreateJobApplication(app job.JobApplication) (job.JobApplication, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.jobApplications[app.ID] = &app
	return app, nil
}

func (repo *jobRepository) HasJobApplication(studentID, jobID string) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, app := range repo.db.jobApplications {
		if app.StudentID == studentID && app.JobID == jobID {
			return true, nil
		}
	}
	return false, nil
}

func (repo *jobRepository) FilterJobApplications(filter job.ApplicationQueryFilter) ([]job.JobApplication, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	apps := make([]job.JobApplication, 0)
	for _, app := range repo.db.jobApplications {
		if filter.StudentID != "" && app.StudentID != filter.StudentID {
			continue
		}
		if filter.JobID != "" && app.JobID != filter.JobID {
			continue
		}
		if filter.CompanyID != "" && app.CompanyID != filter.CompanyID {
			continue
		}
		apps = append(apps, *app)
	}
	return apps, nil
}
