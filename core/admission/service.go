package admission

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/udahili/core"
	"github.com/trezcool/udahili/core/course"
	"github.com/trezcool/udahili/core/grading"
	"github.com/trezcool/udahili/core/student"
)

var (
	// errors
	ErrNotFound             = errors.New("application not found")
	ErrLimitExceeded        = errors.New("application limit reached for this institution")
	ErrDuplicateApplication = errors.New("an application for this course already exists")
	ErrUnqualifiedAdmission = errors.New("student does not meet the mandatory requirements")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrStatusConflict       = errors.New("application status changed concurrently")
)

type (
	Repository interface {
		CreateApplication(app Application) (Application, error)
		GetApplicationByID(id string) (Application, error)
		// FilterApplications applies AND operation on available QueryFilter fields.
		FilterApplications(filter QueryFilter) ([]Application, error)
		// CountOpenApplications counts the student's applications to the
		// institution whose status is in OpenStatuses.
		CountOpenApplications(studentID, instituteID string) (int, error)
		CountApplicationsForCourse(courseID string) (int, error)
		HasApplication(studentID, courseID string) (bool, error)

		// UpdateApplication persists app only while the stored status still
		// is from, in a single guarded write; a concurrent status change
		// fails it with ErrStatusConflict and persists nothing.
		UpdateApplication(app Application, from Status) (Application, error)

		// WaitlistApplication persists app with the next free waitlist
		// position for its course (NextWaitlistPosition over live state),
		// serialized per course so two concurrent waitlist transitions never
		// share a position. Guarded on from like UpdateApplication.
		WaitlistApplication(app Application, from Status) (Application, error)

		// CommitAcceptance persists the accepted application along with every
		// rejected one and releases one seat per course in releaseCourseIDs,
		// all in a single atomic commit. Partial failures roll back entirely.
		// Every application involved must still be admitted in the store;
		// the commit aborts with ErrStatusConflict otherwise.
		CommitAcceptance(accepted Application, rejected []Application, releaseCourseIDs []string) error
	}

	// StudentDirectory is the read surface of the student service needed at
	// submission; satisfied by *student.Service.
	StudentDirectory interface {
		GetByID(id string) (student.Student, error)
	}

	// SeatManager reserves and releases course capacity; satisfied by
	// *course.Service.
	SeatManager interface {
		GetByID(id string) (course.Course, error)
		ReserveSeat(id string) (course.Course, error)
		ReleaseSeat(id string) (course.Course, error)
	}

	Service struct {
		repo     Repository
		students StudentDirectory
		courses  SeatManager
		notifSvc core.NotificationService
		logger   core.Logger
		conf     *core.Config
		now      func() time.Time
	}
)

func NewService(
	repo Repository,
	students StudentDirectory,
	courses SeatManager,
	notifSvc core.NotificationService,
	logger core.Logger,
	conf *core.Config,
) *Service {
	return &Service{
		repo:     repo,
		students: students,
		courses:  courses,
		notifSvc: notifSvc,
		logger:   logger,
		conf:     conf,
		now:      time.Now,
	}
}

// Submit gates a new application through the duplicate and per-institution
// limit checks, freezes the qualification verdict and creates it pending.
// The verdict is advisory at this point: an unqualified student may still
// submit, they just can never be admitted.
func (svc *Service) Submit(actor core.Actor, na NewApplication) (Application, error) {
	if !actor.IsStudent() {
		return Application{}, core.ErrUnauthorized
	}

	crs, err := svc.courses.GetByID(na.CourseID)
	if err != nil {
		return Application{}, err
	}
	std, err := svc.students.GetByID(actor.ID)
	if err != nil {
		return Application{}, errors.Wrap(err, "getting applicant")
	}

	// one application per (student, course), regardless of status
	if exists, err := svc.repo.HasApplication(std.ID, crs.ID); err != nil {
		return Application{}, err
	} else if exists {
		return Application{}, ErrDuplicateApplication
	}

	count, err := svc.repo.CountOpenApplications(std.ID, crs.InstituteID)
	if err != nil {
		return Application{}, err
	}
	if count >= svc.conf.MaxOpenApplications {
		return Application{}, ErrLimitExceeded
	}

	now := svc.now().UTC()
	app := Application{
		ID:            uuid.New().String(),
		StudentID:     std.ID,
		CourseID:      crs.ID,
		InstituteID:   crs.InstituteID,
		Status:        StatusPending,
		Qualification: grading.Evaluate(std.GradeMap(), crs.Requirements),
		History: []StatusChange{
			{To: StatusPending, ActorID: actor.ID, ActorRole: actor.Role, At: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	app, err = svc.repo.CreateApplication(app)
	if err != nil {
		return Application{}, err
	}

	svc.notify(app.StudentID, core.EventApplicationReceived, app)
	return app, nil
}

func (svc *Service) GetByID(actor core.Actor, id string) (Application, error) {
	app, err := svc.repo.GetApplicationByID(id)
	if err != nil {
		return Application{}, err
	}
	if !svc.mayView(actor, app) {
		return Application{}, core.ErrUnauthorized
	}
	return app, nil
}

// Filter lists applications scoped to what the actor may see: students their
// own, institutions their institution's, admins everything.
func (svc *Service) Filter(actor core.Actor, filter QueryFilter) ([]Application, error) {
	switch {
	case actor.IsAdmin():
	case actor.IsStudent():
		filter.StudentID = actor.ID
	case actor.IsInstitute():
		filter.InstituteID = actor.ID
	default:
		return nil, core.ErrUnauthorized
	}
	return svc.repo.FilterApplications(filter)
}

// Transition drives an institution-initiated status change. Retrying an
// already-applied transition is a no-op: the current-status guard detects it
// before any side effect runs, and a racing duplicate that slips past the
// guard loses the guarded status write instead of applying its side effects
// twice.
func (svc *Service) Transition(actor core.Actor, id string, to Status) (Application, error) {
	if !to.Valid() {
		return Application{}, core.NewValidationError(errors.New("unknown status"),
			core.FieldError{Field: "status", Error: "unknown status"})
	}

	app, err := svc.repo.GetApplicationByID(id)
	if err != nil {
		return Application{}, err
	}
	if !(actor.IsAdmin() || (actor.IsInstitute() && actor.ID == app.InstituteID)) {
		return Application{}, core.ErrUnauthorized
	}
	if to == StatusAccepted {
		// only the owning student accepts, via Accept
		return Application{}, errors.Wrap(ErrInvalidTransition, "acceptance is up to the student")
	}
	if app.Status == to { // retried transition; side effects already applied
		return app, nil
	}
	if !canTransition(app.Status, to) {
		return Application{}, errors.Wrapf(ErrInvalidTransition, "%s to %s", app.Status, to)
	}

	switch to {
	case StatusUnderReview:
		from := app.Status
		app.record(StatusUnderReview, actor.ID, actor.Role, svc.now().UTC())
		updated, err := svc.repo.UpdateApplication(app, from)
		if errors.Cause(err) == ErrStatusConflict {
			return svc.resolveConflict(app.ID, StatusUnderReview)
		}
		return updated, err
	case StatusAdmitted:
		return svc.admit(actor, app)
	case StatusRejected:
		return svc.reject(actor, app)
	case StatusWaitlisted:
		return svc.waitlist(actor, app)
	}
	return Application{}, errors.Wrapf(ErrInvalidTransition, "%s to %s", app.Status, to)
}

// admit reserves a seat then commits the status with a write guarded on the
// prior one: of two racing admits only one keeps its seat, the other hands
// its reservation back and resolves as a retry. Admitting an unqualified
// application is a hard failure, never a warning.
func (svc *Service) admit(actor core.Actor, app Application) (Application, error) {
	if !app.Qualification.Qualified {
		return Application{}, ErrUnqualifiedAdmission
	}

	from := app.Status
	if _, err := svc.courses.ReserveSeat(app.CourseID); err != nil {
		return Application{}, err
	}

	app.record(StatusAdmitted, actor.ID, actor.Role, svc.now().UTC())
	updated, err := svc.repo.UpdateApplication(app, from)
	if err != nil {
		// hand the seat back; this admission never happened
		if _, relErr := svc.courses.ReleaseSeat(app.CourseID); relErr != nil {
			svc.logger.Error("seat reservation leaked on failed admission", relErr, app.ID)
		}
		if errors.Cause(err) == ErrStatusConflict {
			return svc.resolveConflict(app.ID, StatusAdmitted)
		}
		return Application{}, err
	}

	svc.notify(updated.StudentID, core.EventApplicationAdmitted, updated)
	return updated, nil
}

// reject commits the status first; an admitted application being rejected is
// an institution-initiated reversal, and only the caller whose guarded write
// won returns the seat.
func (svc *Service) reject(actor core.Actor, app Application) (Application, error) {
	from := app.Status
	app.record(StatusRejected, actor.ID, actor.Role, svc.now().UTC())
	updated, err := svc.repo.UpdateApplication(app, from)
	if err != nil {
		if errors.Cause(err) == ErrStatusConflict {
			return svc.resolveConflict(app.ID, StatusRejected)
		}
		return Application{}, err
	}

	if from == StatusAdmitted {
		if _, err := svc.courses.ReleaseSeat(app.CourseID); err != nil {
			svc.logger.Error("seat release leaked on rejection", err, app.ID)
		}
	}

	svc.notify(updated.StudentID, core.EventApplicationRejected, updated)
	return updated, nil
}

func (svc *Service) waitlist(actor core.Actor, app Application) (Application, error) {
	from := app.Status
	app.record(StatusWaitlisted, actor.ID, actor.Role, svc.now().UTC())
	updated, err := svc.repo.WaitlistApplication(app, from)
	if err != nil {
		if errors.Cause(err) == ErrStatusConflict {
			return svc.resolveConflict(app.ID, StatusWaitlisted)
		}
		return Application{}, err
	}

	svc.notify(updated.StudentID, core.EventApplicationWaitlisted, updated)
	return updated, nil
}

// resolveConflict re-reads an application after a lost guarded write. A
// concurrent identical transition makes this call a no-op retry; anything
// else is an invalid transition from whatever state won.
func (svc *Service) resolveConflict(id string, to Status) (Application, error) {
	app, err := svc.repo.GetApplicationByID(id)
	if err != nil {
		return Application{}, err
	}
	if app.Status == to {
		return app, nil
	}
	return Application{}, errors.Wrapf(ErrInvalidTransition, "%s to %s", app.Status, to)
}

// Accept is the one student-initiated transition: the owning student takes an
// admitted offer. Every other admitted application of the student is rejected
// and its seat released, in the same atomic commit; the student is never
// observable as accepted in two places nor accepted nowhere.
func (svc *Service) Accept(actor core.Actor, id string) (Application, error) {
	app, err := svc.repo.GetApplicationByID(id)
	if err != nil {
		return Application{}, err
	}
	if !(actor.IsStudent() && actor.ID == app.StudentID) {
		return Application{}, core.ErrUnauthorized
	}
	if app.Status == StatusAccepted { // retried acceptance
		return app, nil
	}
	if app.Status != StatusAdmitted {
		return Application{}, errors.Wrapf(ErrInvalidTransition, "%s to %s", app.Status, StatusAccepted)
	}

	// a student holds at most one accepted offer, ever
	accepted, err := svc.repo.FilterApplications(QueryFilter{StudentID: app.StudentID, Statuses: []Status{StatusAccepted}})
	if err != nil {
		return Application{}, err
	}
	if len(accepted) > 0 {
		return Application{}, errors.Wrap(ErrInvalidTransition, "an offer was already accepted")
	}

	others, err := svc.repo.FilterApplications(QueryFilter{StudentID: app.StudentID, Statuses: []Status{StatusAdmitted}})
	if err != nil {
		return Application{}, err
	}

	now := svc.now().UTC()
	app.record(StatusAccepted, actor.ID, actor.Role, now)

	rejected := make([]Application, 0, len(others))
	releaseCourseIDs := make([]string, 0, len(others))
	for _, other := range others {
		if other.ID == app.ID {
			continue
		}
		other.record(StatusRejected, actor.ID, actor.Role, now)
		rejected = append(rejected, other)
		releaseCourseIDs = append(releaseCourseIDs, other.CourseID)
	}

	if err := svc.repo.CommitAcceptance(app, rejected, releaseCourseIDs); err != nil {
		if errors.Cause(err) == ErrStatusConflict {
			// a concurrent accept of this offer is a retry; any other
			// concurrent change invalidated the cascade before it committed
			current, gerr := svc.repo.GetApplicationByID(app.ID)
			if gerr != nil {
				return Application{}, gerr
			}
			if current.Status == StatusAccepted {
				return current, nil
			}
		}
		return Application{}, err
	}

	svc.notify(app.StudentID, core.EventOfferAccepted, app)
	for _, r := range rejected {
		svc.notify(r.StudentID, core.EventApplicationRejected, r)
	}
	return app, nil
}

func (svc *Service) mayView(actor core.Actor, app Application) bool {
	switch {
	case actor.IsAdmin():
		return true
	case actor.IsStudent():
		return actor.ID == app.StudentID
	case actor.IsInstitute():
		return actor.ID == app.InstituteID
	}
	return false
}

func (svc *Service) notify(studentID string, event core.NotificationEvent, app Application) {
	payload := map[string]interface{}{
		"application_id": app.ID,
		"course_id":      app.CourseID,
		"status":         string(app.Status),
	}
	if app.Status == StatusWaitlisted {
		payload["waitlist_position"] = app.WaitlistPosition
	}
	svc.notifSvc.Notify(studentID, event, payload)
}
