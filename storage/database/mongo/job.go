package mongodb

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/trezcool/udahili/core/job"
)

type jobDoc struct {
	ID             string    `bson:"_id"`
	CompanyID      string    `bson:"company_id"`
	Title          string    `bson:"title"`
	Description    string    `bson:"description"`
	Skills         []string  `bson:"skills"`
	Qualifications []string  `bson:"qualifications"`
	Experience     string    `bson:"experience"`
	Deadline       time.Time `bson:"deadline"`
	CreatedAt      time.Time `bson:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at"`
}

type jobApplicationDoc struct {
	ID        string    `bson:"_id"`
	StudentID string    `bson:"student_id"`
	JobID     string    `bson:"job_id"`
	CompanyID string    `bson:"company_id"`
	Score     float64   `bson:"score"`
	CreatedAt time.Time `bson:"created_at"`
}

func newJobDoc(j job.Job) jobDoc {
	return jobDoc(j)
}

func (doc jobDoc) toJob() job.Job {
	return job.Job(doc)
}

type jobRepository struct {
	db      *DB
	col     *mongo.Collection
	appsCol *mongo.Collection
}

var _ job.Repository = (*jobRepository)(nil) // interface compliance check

func NewJobRepository(db *DB) job.Repository {
	return &jobRepository{
		db:      db,
		col:     db.db.Collection(colJobs),
		appsCol: db.db.Collection(colJobApplications),
	}
}

func (repo *jobRepository) CreateJob(j job.Job) (job.Job, error) {
	ctx, cancel := repo.db.ctx()
	defer cancel()

	if _, err := repo.col.InsertOne(ctx, newJobDoc(j)); err != nil {
		return job.Job{}, storeErr(err)
	}
	return j, nil
}

func (repo *jobRepository) GetJobByID(id string) (job.Job, error) {
	ctx, cancel := repo.db.ctx()
	defer cancel()

	var doc jobDoc
	if err := repo.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return job.Job{}, job.ErrNotFound
		}
		return job.Job{}, storeErr(err)
	}
	return doc.toJob(), nil
}

func (repo *jobRepository) FilterJobs(filter job.QueryFilter) ([]job.Job, error) {
	ctx, cancel := repo.db.ctx()
	defer cancel()

	query := bson.M{}
	if filter.CompanyID != "" {
		query["company_id"] = filter.CompanyID
	}

	cursor, err := repo.col.Find(ctx, query)
	if err != nil {
		return nil, storeErr(err)
	}
	var docs []jobDoc
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, storeErr(err)
	}

	jobs := make([]job.Job, 0, len(docs))
	for _, doc := range docs {
		jobs = append(jobs, doc.toJob())
	}
	return jobs, nil
}

func (repo *jobRepository) UpdateJob(j job.Job) (job.Job, error) {
	ctx, cancel := repo.db.ctx()
	defer cancel()

	res, err := repo.col.ReplaceOne(ctx, bson.M{"_id": j.ID}, newJobDoc(j))
	if err != nil {
		return job.Job{}, storeErr(err)
	}
	if res.MatchedCount == 0 {
		return job.Job{}, job.ErrNotFound
	}
	return j, nil
}

func (repo *jobRepository) DeleteJob(id string) error {
	ctx, cancel := repo.db.ctx()
	defer cancel()

	if _, err := repo.col.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return storeErr(err)
	}
	return nil
}

func (repo *jobRepository) CreateJobApplication(app job.JobApplication) (job.JobApplication, error) {
	ctx, cancel := repo.db.ctx()
	defer cancel()

	if _, err := repo.appsCol.InsertOne(ctx, jobApplicationDoc(app)); err != nil {
		return job.JobApplication{}, storeErr(err)
	}
	return app, nil
}

func (repo *jobRepository) HasJobApplication(studentID, jobID string) (bool, error) {
	ctx, cancel := repo.db.ctx()
	defer cancel()

	count, err := repo.appsCol.CountDocuments(ctx, bson.M{"student_id": studentID, "job_id": jobID})
	if err != nil {
		return false, storeErr(err)
	}
	return count > 0, nil
}

func (repo *jobRepository) FilterJobApplications(filter job.ApplicationQueryFilter) ([]job.JobApplication, error) {
	ctx, cancel := repo.db.ctx()
	defer cancel()

	query := bson.M{}
	if filter.StudentID != "" {
		query["student_id"] = filter.StudentID
	}
	if filter.JobID != "" {
		query["job_id"] = filter.JobID
	}
	if filter.CompanyID != "" {
		query["company_id"] = filter.CompanyID
	}

	cursor, err := repo.appsCol.Find(ctx, query)
	if err != nil {
		return nil, storeErr(err)
	}
	var docs []jobApplicationDoc
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, storeErr(err)
	}

	apps := make([]job.JobApplication, 0, len(docs))
	for _, doc := range docs {
		apps = append(apps, job.JobApplication(doc))
	}
	return apps, nil
}
