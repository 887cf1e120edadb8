package job

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/udahili/core"
	"github.com/trezcool/udahili/core/student"
	dummynotif "github.com/trezcool/udahili/services/notify/dummy"
)

// fakeRepository keeps everything in maps; the dummy store cannot be used here
// without an import cycle.
type fakeRepository struct {
	jobs map[string]Job
	apps map[string]JobApplication
}

var _ Repository = (*fakeRepository)(nil)

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		jobs: make(map[string]Job),
		apps: make(map[string]JobApplication),
	}
}

func (repo *fakeRepository) CreateJob(j Job) (Job, error) {
	repo.jobs[j.ID] = j
	return j, nil
}

func (repo *fakeRepository) GetJobByID(id string) (Job, error) {
	if j, ok := repo.jobs[id]; ok {
		return j, nil
	}
	return Job{}, ErrNotFound
}

func (repo *fakeRepository) FilterJobs(filter QueryFilter) ([]Job, error) {
	jobs := make([]Job, 0, len(repo.jobs))
	for _, j := range repo.jobs {
		if filter.CompanyID != "" && j.CompanyID != filter.CompanyID {
			continue
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}

func (repo *fakeRepository) UpdateJob(j Job) (Job, error) {
	if _, ok := repo.jobs[j.ID]; !ok {
		return Job{}, ErrNotFound
	}
	repo.jobs[j.ID] = j
	return j, nil
}

func (repo *fakeRepository) DeleteJob(id string) error {
	delete(repo.jobs, id)
	return nil
}

func (repo *fakeRepository) CreateJobApplication(app JobApplication) (JobApplication, error) {
	repo.apps[app.ID] = app
	return app, nil
}

func (repo *fakeRepository) HasJobApplication(studentID, jobID string) (bool, error) {
	for _, app := range repo.apps {
		if app.StudentID == studentID && app.JobID == jobID {
			return true, nil
		}
	}
	return false, nil
}

func (repo *fakeRepository) FilterJobApplications(filter ApplicationQueryFilter) ([]JobApplication, error) {
	apps := make([]JobApplication, 0)
	for _, app := range repo.apps {
		if filter.StudentID != "" && app.StudentID != filter.StudentID {
			continue
		}
		if filter.JobID != "" && app.JobID != filter.JobID {
			continue
		}
		if filter.CompanyID != "" && app.CompanyID != filter.CompanyID {
			continue
		}
		apps = append(apps, app)
	}
	return apps, nil
}

type fakeDirectory struct {
	students map[string]student.Student
}

func (d *fakeDirectory) GetByID(id string) (student.Student, error) {
	if std, ok := d.students[id]; ok {
		return std, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (d *fakeDirectory) QueryAll() ([]student.Student, error) {
	students := make([]student.Student, 0, len(d.students))
	for _, std := range d.students {
		students = append(students, std)
	}
	return students, nil
}

var testNow = time.Date(2021, time.June, 1, 12, 0, 0, 0, time.UTC)

func newTestService(students ...student.Student) (*Service, *fakeRepository, *dummynotif.Service) {
	repo := newFakeRepository()
	dir := &fakeDirectory{students: make(map[string]student.Student)}
	for _, std := range students {
		dir.students[std.ID] = std
	}
	notifs := dummynotif.NewService()
	conf := &core.Config{TestMode: true, QualifiedMatchThreshold: 0.6, GoodMatchThreshold: 0.7}
	svc := NewService(repo, dir, notifs, conf)
	svc.now = func() time.Time { return testNow }
	return svc, repo, notifs
}

func strongCandidate(id string) student.Student {
	return student.Student{
		ID:    id,
		Name:  "Candidate " + id,
		Email: id + "@test.com",
		Grades: []student.SubjectGrade{
			{Subject: "math", Grade: "A"},
			{Subject: "physics", Grade: "A"},
		},
		Skills:          []string{"go", "sql"},
		ExperienceYears: 3,
	}
}

func postJob(t *testing.T, svc *Service, companyID string, deadline time.Time) Job {
	t.Helper()
	j, err := svc.Create(core.Actor{ID: companyID, Role: core.RoleCompany}, NewJob{
		Title:      "Backend Engineer",
		Skills:     []string{"go", "sql"},
		Experience: "2 years",
		Deadline:   deadline,
	})
	require.NoError(t, err)
	return j
}

func TestCreateAuthorization(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(core.Actor{ID: "std1", Role: core.RoleStudent}, NewJob{Title: "nope"})
	assert.Equal(t, core.ErrUnauthorized, errors.Cause(err))

	j, err := svc.Create(core.Actor{ID: "co1", Role: core.RoleCompany}, NewJob{Title: "ok"})
	require.NoError(t, err)
	assert.Equal(t, "co1", j.CompanyID)
}

func TestApply(t *testing.T) {
	svc, _, notifs := newTestService(strongCandidate("std1"))
	j := postJob(t, svc, "co1", testNow.Add(24*time.Hour))

	app, err := svc.Apply(core.Actor{ID: "std1", Role: core.RoleStudent}, j.ID)
	require.NoError(t, err)
	assert.Equal(t, "std1", app.StudentID)
	assert.Equal(t, "co1", app.CompanyID)
	assert.True(t, app.Score >= 0.6, "score %v", app.Score)

	// the company hears about qualified candidates
	sent := notifs.SentTo("co1")
	require.Len(t, sent, 1)
	assert.Equal(t, core.EventQualifiedCandidate, sent[0].Event)
	assert.Equal(t, app.Score, sent[0].Payload["score"])
}

func TestApplyDeadlinePassed(t *testing.T) {
	svc, _, _ := newTestService(strongCandidate("std1"))
	j := postJob(t, svc, "co1", testNow.Add(-time.Hour))

	_, err := svc.Apply(core.Actor{ID: "std1", Role: core.RoleStudent}, j.ID)
	assert.Equal(t, ErrDeadlinePassed, errors.Cause(err))
}

func TestApplyDuplicate(t *testing.T) {
	svc, _, _ := newTestService(strongCandidate("std1"))
	j := postJob(t, svc, "co1", testNow.Add(24*time.Hour))

	_, err := svc.Apply(core.Actor{ID: "std1", Role: core.RoleStudent}, j.ID)
	require.NoError(t, err)
	_, err = svc.Apply(core.Actor{ID: "std1", Role: core.RoleStudent}, j.ID)
	assert.Equal(t, ErrDuplicateApplication, errors.Cause(err))
}

func TestApplyWeakCandidateNoNotification(t *testing.T) {
	svc, _, notifs := newTestService(student.Student{ID: "std1", Name: "N", Email: "n@test.com"})
	j := postJob(t, svc, "co1", testNow.Add(24*time.Hour))

	app, err := svc.Apply(core.Actor{ID: "std1", Role: core.RoleStudent}, j.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(0), app.Score)
	assert.Empty(t, notifs.SentTo("co1"))
}

func TestFilterExcludesExpired(t *testing.T) {
	svc, _, _ := newTestService()
	open := postJob(t, svc, "co1", testNow.Add(24*time.Hour))
	postJob(t, svc, "co1", testNow.Add(-24*time.Hour))

	jobs, err := svc.Filter(QueryFilter{})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, open.ID, jobs[0].ID)

	jobs, err = svc.Filter(QueryFilter{IncludeExpired: true})
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
}

func TestFilterApplicationsScoping(t *testing.T) {
	svc, _, _ := newTestService(strongCandidate("std1"), strongCandidate("std2"))
	j1 := postJob(t, svc, "co1", testNow.Add(24*time.Hour))
	j2 := postJob(t, svc, "co2", testNow.Add(24*time.Hour))

	for _, id := range []string{"std1", "std2"} {
		_, err := svc.Apply(core.Actor{ID: id, Role: core.RoleStudent}, j1.ID)
		require.NoError(t, err)
	}
	_, err := svc.Apply(core.Actor{ID: "std1", Role: core.RoleStudent}, j2.ID)
	require.NoError(t, err)

	apps, err := svc.FilterApplications(core.Actor{ID: "std1", Role: core.RoleStudent}, ApplicationQueryFilter{})
	require.NoError(t, err)
	assert.Len(t, apps, 2)

	apps, err = svc.FilterApplications(core.Actor{ID: "co1", Role: core.RoleCompany}, ApplicationQueryFilter{})
	require.NoError(t, err)
	assert.Len(t, apps, 2)

	apps, err = svc.FilterApplications(core.Actor{ID: "boss", Role: core.RoleAdmin}, ApplicationQueryFilter{})
	require.NoError(t, err)
	assert.Len(t, apps, 3)
}

func TestMatchingStudents(t *testing.T) {
	weak := student.Student{ID: "weak", Name: "W", Email: "w@test.com"}
	svc, _, _ := newTestService(strongCandidate("std1"), strongCandidate("std2"), weak)
	j := postJob(t, svc, "co1", testNow.Add(24*time.Hour))

	// only the posting company (or admin) may search
	_, err := svc.MatchingStudents(core.Actor{ID: "co2", Role: core.RoleCompany}, j.ID)
	assert.Equal(t, core.ErrUnauthorized, errors.Cause(err))

	matches, err := svc.MatchingStudents(core.Actor{ID: "co1", Role: core.RoleCompany}, j.ID)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	for _, m := range matches {
		assert.True(t, m.Score >= 0.6)
	}
}

func TestDelete(t *testing.T) {
	svc, repo, _ := newTestService()
	j := postJob(t, svc, "co1", testNow.Add(24*time.Hour))

	err := svc.Delete(core.Actor{ID: "co2", Role: core.RoleCompany}, j.ID)
	assert.Equal(t, core.ErrUnauthorized, errors.Cause(err))

	require.NoError(t, svc.Delete(core.Actor{ID: "co1", Role: core.RoleCompany}, j.ID))
	_, ok := repo.jobs[j.ID]
	assert.False(t, ok)
}
