package job

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/udahili/core"
	"github.com/trezcool/udahili/core/student"
)

var (
	// errors
	ErrNotFound             = errors.New("job not found")
	ErrDeadlinePassed       = errors.New("the application deadline has passed")
	ErrDuplicateApplication = errors.New("an application for this job already exists")
)

type (
	Repository interface {
		CreateJob(j Job) (Job, error)
		GetJobByID(id string) (Job, error)
		FilterJobs(filter QueryFilter) ([]Job, error)
		UpdateJob(j Job) (Job, error)
		DeleteJob(id string) error

		CreateJobApplication(app JobApplication) (JobApplication, error)
		HasJobApplication(studentID, jobID string) (bool, error)
		FilterJobApplications(filter ApplicationQueryFilter) ([]JobApplication, error)
	}

	// StudentDirectory is the read surface of the student service needed for
	// matching; satisfied by *student.Service.
	StudentDirectory interface {
		GetByID(id string) (student.Student, error)
		QueryAll() ([]student.Student, error)
	}

	// Match pairs a student with their score against a job.
	Match struct {
		Student student.Student `json:"student"`
		Score   float64         `json:"score"`
		Good    bool            `json:"is_good_match"`
	}

	Service struct {
		repo     Repository
		students StudentDirectory
		notifSvc core.NotificationService
		conf     *core.Config
		weights  Weights
		now      func() time.Time
	}
)

func NewService(repo Repository, students StudentDirectory, notifSvc core.NotificationService, conf *core.Config) *Service {
	return &Service{
		repo:     repo,
		students: students,
		notifSvc: notifSvc,
		conf:     conf,
		weights:  DefaultWeights,
		now:      time.Now,
	}
}

func (svc *Service) Create(actor core.Actor, nj NewJob) (Job, error) {
	if !(actor.IsCompany() || actor.IsAdmin()) {
		return Job{}, core.ErrUnauthorized
	}

	now := svc.now().UTC()
	j := Job{
		ID:             uuid.New().String(),
		CompanyID:      actor.ID,
		Title:          nj.Title,
		Description:    nj.Description,
		Skills:         nj.Skills,
		Qualifications: nj.Qualifications,
		Experience:     nj.Experience,
		Deadline:       nj.Deadline,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return svc.repo.CreateJob(j)
}

func (svc *Service) GetByID(id string) (Job, error) {
	return svc.repo.GetJobByID(id)
}

// Filter lists jobs; expired postings are excluded unless asked for.
func (svc *Service) Filter(filter QueryFilter) ([]Job, error) {
	jobs, err := svc.repo.FilterJobs(filter)
	if err != nil {
		return nil, err
	}
	if filter.IncludeExpired {
		return jobs, nil
	}

	now := svc.now().UTC()
	open := jobs[:0]
	for _, j := range jobs {
		if !j.Expired(now) {
			open = append(open, j)
		}
	}
	return open, nil
}

func (svc *Service) Delete(actor core.Actor, id string) error {
	j, err := svc.repo.GetJobByID(id)
	if err != nil {
		return err
	}
	if !(actor.IsAdmin() || (actor.IsCompany() && actor.ID == j.CompanyID)) {
		return core.ErrUnauthorized
	}
	return svc.repo.DeleteJob(id)
}

// Apply creates a JobApplication with the match score frozen at application
// time. The posting company is notified when the candidate clears the
// qualified threshold.
func (svc *Service) Apply(actor core.Actor, jobID string) (JobApplication, error) {
	if !actor.IsStudent() {
		return JobApplication{}, core.ErrUnauthorized
	}

	j, err := svc.repo.GetJobByID(jobID)
	if err != nil {
		return JobApplication{}, err
	}
	if j.Expired(svc.now().UTC()) {
		return JobApplication{}, ErrDeadlinePassed
	}

	if exists, err := svc.repo.HasJobApplication(actor.ID, jobID); err != nil {
		return JobApplication{}, err
	} else if exists {
		return JobApplication{}, ErrDuplicateApplication
	}

	std, err := svc.students.GetByID(actor.ID)
	if err != nil {
		return JobApplication{}, errors.Wrap(err, "getting applicant")
	}

	app := JobApplication{
		ID:        uuid.New().String(),
		StudentID: std.ID,
		JobID:     j.ID,
		CompanyID: j.CompanyID,
		Score:     svc.weights.Score(&std, &j),
		CreatedAt: svc.now().UTC(),
	}
	app, err = svc.repo.CreateJobApplication(app)
	if err != nil {
		return JobApplication{}, err
	}

	if app.Score >= svc.conf.QualifiedMatchThreshold {
		svc.notifSvc.Notify(j.CompanyID, core.EventQualifiedCandidate, map[string]interface{}{
			"job_id":     j.ID,
			"student_id": std.ID,
			"score":      app.Score,
		})
	}
	return app, nil
}

func (svc *Service) FilterApplications(actor core.Actor, filter ApplicationQueryFilter) ([]JobApplication, error) {
	switch {
	case actor.IsAdmin():
	case actor.IsStudent():
		filter.StudentID = actor.ID
	case actor.IsCompany():
		filter.CompanyID = actor.ID
	default:
		return nil, core.ErrUnauthorized
	}
	return svc.repo.FilterJobApplications(filter)
}

// MatchingStudents scores every student profile against the job and returns
// those at or above the qualified threshold, for the posting company's use.
func (svc *Service) MatchingStudents(actor core.Actor, jobID string) ([]Match, error) {
	j, err := svc.repo.GetJobByID(jobID)
	if err != nil {
		return nil, err
	}
	if !(actor.IsAdmin() || (actor.IsCompany() && actor.ID == j.CompanyID)) {
		return nil, core.ErrUnauthorized
	}

	students, err := svc.students.QueryAll()
	if err != nil {
		return nil, err
	}

	matches := make([]Match, 0)
	for _, std := range students {
		score := svc.weights.Score(&std, &j)
		if score < svc.conf.QualifiedMatchThreshold {
			continue
		}
		matches = append(matches, Match{
			Student: std,
			Score:   score,
			Good:    score >= svc.conf.GoodMatchThreshold,
		})
	}
	return matches, nil
}
