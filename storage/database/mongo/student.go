package mongodb

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/trezcool/udahili/core/student"
)

type studentDoc struct {
	ID              string            `bson:"_id"`
	Name            string            `bson:"name"`
	Email           string            `bson:"email"`
	Grades          []subjectGradeDoc `bson:"grades"`
	Skills          []string          `bson:"skills"`
	ExperienceYears int               `bson:"experience_years"`
	Qualifications  []string          `bson:"qualifications"`
	CreatedAt       time.Time         `bson:"created_at"`
	UpdatedAt       time.Time         `bson:"updated_at"`
}

type subjectGradeDoc struct {
	Subject string `bson:"subject"`
	Grade   string `bson:"grade"`
}

func newStudentDoc(std student.Student) studentDoc {
	grades := make([]subjectGradeDoc, 0, len(std.Grades))
	for _, sg := range std.Grades {
		grades = append(grades, subjectGradeDoc(sg))
	}
	return studentDoc{
		ID:              std.ID,
		Name:            std.Name,
		Email:           std.Email,
		Grades:          grades,
		Skills:          std.Skills,
		ExperienceYears: std.ExperienceYears,
		Qualifications:  std.Qualifications,
		CreatedAt:       std.CreatedAt,
		UpdatedAt:       std.UpdatedAt,
	}
}

func (doc studentDoc) toStudent() student.Student {
	grades := make([]student.SubjectGrade, 0, len(doc.Grades))
	for _, sg := range doc.Grades {
		grades = append(grades, student.SubjectGrade(sg))
	}
	return student.Student{
		ID:              doc.ID,
		Name:            doc.Name,
		Email:           doc.Email,
		Grades:          grades,
		Skills:          doc.Skills,
		ExperienceYears: doc.ExperienceYears,
		Qualifications:  doc.Qualifications,
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
	}
}

type studentRepository struct {
	db  *DB
	col *mongo.Collection
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db, col: db.db.Collection(colStudents)}
}

func (repo *studentRepository) CreateStudent(std student.Student) (student.Student, error) {
	ctx, cancel := repo.db.ctx()
	defer cancel()

	if _, err := repo.col.InsertOne(ctx, newStudentDoc(std)); err != nil {
		return student.Student{}, storeErr(err)
	}
	return std, nil
}

func (repo *studentRepository) GetStudentByID(id string) (student.Student, error) {
	return repo.getOne(bson.M{"_id": id})
}

func (repo *studentRepository) GetStudentByEmail(email string) (student.Student, error) {
	return repo.getOne(bson.M{"email": email})
}

func (repo *studentRepository) getOne(filter bson.M) (student.Student, error) {
	ctx, cancel := repo.db.ctx()
	defer cancel()

	var doc studentDoc
	if err := repo.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, storeErr(err)
	}
	return doc.toStudent(), nil
}

func (repo *studentRepository) QueryAllStudents() ([]student.Student, error) {
	ctx, cancel := repo.db.ctx()
	defer cancel()

	cursor, err := repo.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, storeErr(err)
	}
	var docs []studentDoc
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, storeErr(err)
	}

	students := make([]student.Student, 0, len(docs))
	for _, doc := range docs {
		students = append(students, doc.toStudent())
	}
	return students, nil
}

func (repo *studentRepository) UpdateStudent(std student.Student) (student.Student, error) {
	ctx, cancel := repo.db.ctx()
	defer cancel()

	res, err := repo.col.ReplaceOne(ctx, bson.M{"_id": std.ID}, newStudentDoc(std))
	if err != nil {
		return student.Student{}, storeErr(err)
	}
	if res.MatchedCount == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return std, nil
}

func (repo *studentRepository) DeleteStudent(id string) error {
	ctx, cancel := repo.db.ctx()
	defer cancel()

	if _, err := repo.col.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return storeErr(err)
	}
	return nil
}
