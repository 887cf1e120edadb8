package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/trezcool/udahili/core"
	"github.com/trezcool/udahili/core/admission"
	"github.com/trezcool/udahili/core/course"
	"github.com/trezcool/udahili/core/grading"
)

type applicationDoc struct {
	ID               string            `bson:"_id"`
	StudentID        string            `bson:"student_id"`
	CourseID         string            `bson:"course_id"`
	InstituteID      string            `bson:"institute_id"`
	Status           string            `bson:"status"`
	Qualification    verdictDoc        `bson:"qualification"`
	WaitlistPosition int               `bson:"waitlist_position,omitempty"`
	History          []statusChangeDoc `bson:"history"`
	CreatedAt        time.Time         `bson:"created_at"`
	UpdatedAt        time.Time         `bson:"updated_at"`
}

type verdictDoc struct {
	Qualified bool        `bson:"is_qualified"`
	Score     float64     `bson:"score"`
	Details   []detailDoc `bson:"details"`
}

type detailDoc struct {
	Subject       string `bson:"subject"`
	RequiredGrade string `bson:"required_grade"`
	StudentGrade  string `bson:"student_grade"`
	Met           bool   `bson:"met"`
	Mandatory     bool   `bson:"is_mandatory"`
}

type statusChangeDoc struct {
	From      string    `bson:"from"`
	To        string    `bson:"to"`
	ActorID   string    `bson:"actor_id"`
	ActorRole string    `bson:"actor_role"`
	At        time.Time `bson:"at"`
}

func newApplicationDoc(app admission.Application) applicationDoc {
	details := make([]detailDoc, 0, len(app.Qualification.Details))
	for _, d := range app.Qualification.Details {
		details = append(details, detailDoc(d))
	}
	history := make([]statusChangeDoc, 0, len(app.History))
	for _, h := range app.History {
		history = append(history, statusChangeDoc{
			From:      string(h.From),
			To:        string(h.To),
			ActorID:   h.ActorID,
			ActorRole: h.ActorRole,
			At:        h.At,
		})
	}
	return applicationDoc{
		ID:          app.ID,
		StudentID:   app.StudentID,
		CourseID:    app.CourseID,
		InstituteID: app.InstituteID,
		Status:      string(app.Status),
		Qualification: verdictDoc{
			Qualified: app.Qualification.Qualified,
			Score:     app.Qualification.Score,
			Details:   details,
		},
		WaitlistPosition: app.WaitlistPosition,
		History:          history,
		CreatedAt:        app.CreatedAt,
		UpdatedAt:        app.UpdatedAt,
	}
}

func (doc applicationDoc) toApplication() admission.Application {
	details := make([]grading.RequirementDetail, 0, len(doc.Qualification.Details))
	for _, d := range doc.Qualification.Details {
		details = append(details, grading.RequirementDetail(d))
	}
	history := make([]admission.StatusChange, 0, len(doc.History))
	for _, h := range doc.History {
		history = append(history, admission.StatusChange{
			From:      admission.Status(h.From),
			To:        admission.Status(h.To),
			ActorID:   h.ActorID,
			ActorRole: h.ActorRole,
			At:        h.At,
		})
	}
	return admission.Application{
		ID:          doc.ID,
		StudentID:   doc.StudentID,
		CourseID:    doc.CourseID,
		InstituteID: doc.InstituteID,
		Status:      admission.Status(doc.Status),
		Qualification: grading.Verdict{
			Qualified: doc.Qualification.Qualified,
			Score:     doc.Qualification.Score,
			Details:   details,
		},
		WaitlistPosition: doc.WaitlistPosition,
		History:          history,
		CreatedAt:        doc.CreatedAt,
		UpdatedAt:        doc.UpdatedAt,
	}
}

func statusStrings(statuses []admission.Status) []string {
	ss := make([]string, 0, len(statuses))
	for _, s := range statuses {
		ss = append(ss, string(s))
	}
	return ss
}

type admissionRepository struct {
	db      *DB
	col     *mongo.Collection
	courses *mongo.Collection
}

var _ admission.Repository = (*admissionRepository)(nil) // interface compliance check

func NewAdmissionRepository(db *DB) admission.Repository {
	return &admissionRepository{
		db:      db,
		col:     db.db.Collection(colApplications),
		courses: db.db.Collection(colCourses),
	}
}

func (repo *admissionRepository) CreateApplication(app admission.Application) (admission.Application, error) {
	ctx, cancel := repo.db.ctx()
	defer cancel()

	if _, err := repo.col.InsertOne(ctx, newApplicationDoc(app)); err != nil {
		return admission.Application{}, storeErr(err)
	}
	return app, nil
}

func (repo *admissionRepository) GetApplicationByID(id string) (admission.Application, error) {
	ctx, cancel := repo.db.ctx()
	defer cancel()

	var doc applicationDoc
	if err := repo.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return admission.Application{}, admission.ErrNotFound
		}
		return admission.Application{}, storeErr(err)
	}
	return doc.toApplication(), nil
}

func (repo *admissionRepository) FilterApplications(filter admission.QueryFilter) ([]admission.Application, error) {
	ctx, cancel := repo.db.ctx()
	defer cancel()

	query := bson.M{}
	if filter.StudentID != "" {
		query["student_id"] = filter.StudentID
	}
	if filter.CourseID != "" {
		query["course_id"] = filter.CourseID
	}
	if filter.InstituteID != "" {
		query["institute_id"] = filter.InstituteID
	}
	if len(filter.Statuses) > 0 {
		query["status"] = bson.M{"$in": statusStrings(filter.Statuses)}
	}

	cursor, err := repo.col.Find(ctx, query)
	if err != nil {
		return nil, storeErr(err)
	}
	var docs []applicationDoc
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, storeErr(err)
	}

	apps := make([]admission.Application, 0, len(docs))
	for _, doc := range docs {
		apps = append(apps, doc.toApplication())
	}
	return apps, nil
}

func (repo *admissionRepository) CountOpenApplications(studentID, instituteID string) (int, error) {
	ctx, cancel := repo.db.ctx()
	defer cancel()

	count, err := repo.col.CountDocuments(ctx, bson.M{
		"student_id":   studentID,
		"institute_id": instituteID,
		"status":       bson.M{"$in": statusStrings(admission.OpenStatuses)},
	})
	if err != nil {
		return 0, storeErr(err)
	}
	return int(count), nil
}

func (repo *admissionRepository) CountApplicationsForCourse(courseID string) (int, error) {
	ctx, cancel := repo.db.ctx()
	defer cancel()

	count, err := repo.col.CountDocuments(ctx, bson.M{"course_id": courseID})
	if err != nil {
		return 0, storeErr(err)
	}
	return int(count), nil
}

func (repo *admissionRepository) HasApplication(studentID, courseID string) (bool, error) {
	ctx, cancel := repo.db.ctx()
	defer cancel()

	count, err := repo.col.CountDocuments(ctx, bson.M{"student_id": studentID, "course_id": courseID})
	if err != nil {
		return false, storeErr(err)
	}
	return count > 0, nil
}

// UpdateApplication replaces the document through a filter on both id and
// the expected prior status, so a replace that raced a concurrent transition
// matches nothing instead of overwriting it.
func (repo *admissionRepository) UpdateApplication(app admission.Application, from admission.Status) (admission.Application, error) {
	ctx, cancel := repo.db.ctx()
	defer cancel()

	res, err := repo.col.ReplaceOne(ctx,
		bson.M{"_id": app.ID, "status": string(from)}, newApplicationDoc(app))
	if err != nil {
		return admission.Application{}, storeErr(err)
	}
	if res.MatchedCount == 0 {
		return admission.Application{}, repo.missedGuard(ctx, app.ID)
	}
	return app, nil
}

// missedGuard tells a vanished document apart from one whose status moved on.
func (repo *admissionRepository) missedGuard(ctx context.Context, id string) error {
	count, err := repo.col.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return storeErr(err)
	}
	if count == 0 {
		return admission.ErrNotFound
	}
	return admission.ErrStatusConflict
}

// WaitlistApplication reads the course's live waitlisted state and persists
// the application with its position inside one transaction, so concurrent
// waitlist transitions for a course serialize on the store. The final write
// is guarded on the expected prior status like UpdateApplication.
func (repo *admissionRepository) WaitlistApplication(app admission.Application, from admission.Status) (admission.Application, error) {
	err := repo.db.inTransaction(func(sc mongo.SessionContext) error {
		cursor, err := repo.col.Find(sc, bson.M{
			"course_id": app.CourseID,
			"status":    string(admission.StatusWaitlisted),
			"_id":       bson.M{"$ne": app.ID},
		})
		if err != nil {
			return err
		}
		var waitlisted []applicationDoc
		if err = cursor.All(sc, &waitlisted); err != nil {
			return err
		}

		var maxHeld int
		for _, doc := range waitlisted {
			if doc.WaitlistPosition > maxHeld {
				maxHeld = doc.WaitlistPosition
			}
		}
		app.WaitlistPosition = admission.NextWaitlistPosition(len(waitlisted), maxHeld)

		res, err := repo.col.ReplaceOne(sc,
			bson.M{"_id": app.ID, "status": string(from)}, newApplicationDoc(app))
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return repo.missedGuard(sc, app.ID)
		}
		return nil
	})
	if err != nil {
		return admission.Application{}, passThrough(err)
	}
	return app, nil
}

// CommitAcceptance commits the acceptance, every cascade rejection and the
// seat releases in a single transaction: all of it or none of it. Every
// replace is guarded on its document still being admitted, so a cascade whose
// inputs were invalidated by a concurrent commit aborts whole.
func (repo *admissionRepository) CommitAcceptance(accepted admission.Application, rejected []admission.Application, releaseCourseIDs []string) error {
	err := repo.db.inTransaction(func(sc mongo.SessionContext) error {
		apps := append([]admission.Application{accepted}, rejected...)
		for _, app := range apps {
			res, err := repo.col.ReplaceOne(sc,
				bson.M{"_id": app.ID, "status": string(admission.StatusAdmitted)}, newApplicationDoc(app))
			if err != nil {
				return err
			}
			if res.MatchedCount == 0 {
				return repo.missedGuard(sc, app.ID)
			}
		}
		for _, courseID := range releaseCourseIDs {
			if _, err := releaseSeat(sc, repo.courses, courseID); err != nil {
				return err
			}
		}
		return nil
	})
	return passThrough(err)
}

// passThrough keeps domain errors raised inside a transaction intact and
// wraps everything else as a store failure.
func passThrough(err error) error {
	if err == nil {
		return nil
	}
	switch errors.Cause(err) {
	case admission.ErrNotFound, admission.ErrStatusConflict,
		course.ErrNotFound, course.ErrNoSeatsAvailable, core.ErrStoreUnavailable:
		return err
	}
	return storeErr(err)
}
