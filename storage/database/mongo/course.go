package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/udahili/core/course"
	"github.com/trezcool/udahili/core/grading"
)

type courseDoc struct {
	ID             string           `bson:"_id"`
	InstituteID    string           `bson:"institute_id"`
	Title          string           `bson:"title"`
	Description    string           `bson:"description"`
	Seats          int              `bson:"seats"`
	AvailableSeats int              `bson:"available_seats"`
	Requirements   []requirementDoc `bson:"requirements"`
	Status         string           `bson:"status"`
	CreatedAt      time.Time        `bson:"created_at"`
	UpdatedAt      time.Time        `bson:"updated_at"`
}

type requirementDoc struct {
	Subject      string `bson:"subject"`
	MinimumGrade string `bson:"minimum_grade"`
	Mandatory    bool   `bson:"is_mandatory"`
}

func newCourseDoc(crs course.Course) courseDoc {
	reqs := make([]requirementDoc, 0, len(crs.Requirements))
	for _, req := range crs.Requirements {
		reqs = append(reqs, requirementDoc(req))
	}
	return courseDoc{
		ID:             crs.ID,
		InstituteID:    crs.InstituteID,
		Title:          crs.Title,
		Description:    crs.Description,
		Seats:          crs.Seats,
		AvailableSeats: crs.AvailableSeats,
		Requirements:   reqs,
		Status:         crs.Status,
		CreatedAt:      crs.CreatedAt,
		UpdatedAt:      crs.UpdatedAt,
	}
}

func (doc courseDoc) toCourse() course.Course {
	reqs := make([]grading.Requirement, 0, len(doc.Requirements))
	for _, req := range doc.Requirements {
		reqs = append(reqs, grading.Requirement(req))
	}
	return course.Course{
		ID:             doc.ID,
		InstituteID:    doc.InstituteID,
		Title:          doc.Title,
		Description:    doc.Description,
		Seats:          doc.Seats,
		AvailableSeats: doc.AvailableSeats,
		Requirements:   reqs,
		Status:         doc.Status,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}
}

// statusStage derives the status field from the just-updated seat count;
// appended to pipeline updates so the flip commits with the decrement.
var statusStage = bson.M{"$set": bson.M{
	"status": bson.M{"$cond": bson.A{
		bson.M{"$gt": bson.A{"$available_seats", 0}},
		course.StatusActive,
		course.StatusFull,
	}},
}}

type courseRepository struct {
	db  *DB
	col *mongo.Collection
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db, col: db.db.Collection(colCourses)}
}

func (repo *courseRepository) CreateCourse(crs course.Course) (course.Course, error) {
	ctx, cancel := repo.db.ctx()
	defer cancel()

	if _, err := repo.col.InsertOne(ctx, newCourseDoc(crs)); err != nil {
		return course.Course{}, storeErr(err)
	}
	return crs, nil
}

func (repo *courseRepository) GetCourseByID(id string) (course.Course, error) {
	ctx, cancel := repo.db.ctx()
	defer cancel()

	var doc courseDoc
	if err := repo.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, storeErr(err)
	}
	return doc.toCourse(), nil
}

func (repo *courseRepository) FilterCourses(filter course.QueryFilter) ([]course.Course, error) {
	ctx, cancel := repo.db.ctx()
	defer cancel()

	query := bson.M{}
	if filter.InstituteID != "" {
		query["institute_id"] = filter.InstituteID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	cursor, err := repo.col.Find(ctx, query)
	if err != nil {
		return nil, storeErr(err)
	}
	var docs []courseDoc
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, storeErr(err)
	}

	courses := make([]course.Course, 0, len(docs))
	for _, doc := range docs {
		courses = append(courses, doc.toCourse())
	}
	return courses, nil
}

func (repo *courseRepository) UpdateCourse(crs course.Course) (course.Course, error) {
	ctx, cancel := repo.db.ctx()
	defer cancel()

	// seat counters are owned by Reserve/ReleaseSeat
	res, err := repo.col.UpdateOne(ctx, bson.M{"_id": crs.ID}, bson.M{"$set": bson.M{
		"title":       crs.Title,
		"description": crs.Description,
		"updated_at":  crs.UpdatedAt,
	}})
	if err != nil {
		return course.Course{}, storeErr(err)
	}
	if res.MatchedCount == 0 {
		return course.Course{}, course.ErrNotFound
	}
	return repo.GetCourseByID(crs.ID)
}

func (repo *courseRepository) DeleteCourse(id string) error {
	ctx, cancel := repo.db.ctx()
	defer cancel()

	if _, err := repo.col.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return storeErr(err)
	}
	return nil
}

// ReserveSeat is a single guarded read-modify-write: the availability check,
// the decrement and the status flip commit atomically on the course document.
func (repo *courseRepository) ReserveSeat(id string) (course.Course, error) {
	ctx, cancel := repo.db.ctx()
	defer cancel()
	return reserveSeat(ctx, repo.col, id)
}

func (repo *courseRepository) ReleaseSeat(id string) (course.Course, error) {
	ctx, cancel := repo.db.ctx()
	defer cancel()
	return releaseSeat(ctx, repo.col, id)
}

func reserveSeat(ctx context.Context, col *mongo.Collection, id string) (course.Course, error) {
	update := bson.A{
		bson.M{"$set": bson.M{"available_seats": bson.M{"$subtract": bson.A{"$available_seats", 1}}}},
		statusStage,
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc courseDoc
	err := col.FindOneAndUpdate(ctx, bson.M{"_id": id, "available_seats": bson.M{"$gt": 0}}, update, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		// no seats left, or no such course
		if err = col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
			if err == mongo.ErrNoDocuments {
				return course.Course{}, course.ErrNotFound
			}
			return course.Course{}, storeErr(err)
		}
		return course.Course{}, course.ErrNoSeatsAvailable
	}
	if err != nil {
		return course.Course{}, storeErr(err)
	}
	return doc.toCourse(), nil
}

func releaseSeat(ctx context.Context, col *mongo.Collection, id string) (course.Course, error) {
	update := bson.A{
		bson.M{"$set": bson.M{"available_seats": bson.M{"$add": bson.A{"$available_seats", 1}}}},
		statusStage,
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc courseDoc
	filter := bson.M{"_id": id, "$expr": bson.M{"$lt": bson.A{"$available_seats", "$seats"}}}
	err := col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		// already at capacity, or no such course; never exceed capacity
		if err = col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
			if err == mongo.ErrNoDocuments {
				return course.Course{}, course.ErrNotFound
			}
			return course.Course{}, storeErr(err)
		}
		return doc.toCourse(), nil
	}
	if err != nil {
		return course.Course{}, storeErr(err)
	}
	return doc.toCourse(), nil
}
