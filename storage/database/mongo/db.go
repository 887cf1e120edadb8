// Package mongodb implements the repositories against mongo: per-document
// atomic updates for seat accounting and multi-document transactions for the
// acceptance cascade and waitlist assignment.
package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/trezcool/udahili/core"
)

// collections
const (
	colStudents        = "students"
	colCourses         = "courses"
	colJobs            = "jobs"
	colJobApplications = "job_applications"
	colApplications    = "applications"
)

type DB struct {
	client  *mongo.Client
	db      *mongo.Database
	timeout time.Duration
}

func Open(conf *core.Config) (*DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), conf.Database.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(conf.Database.URI))
	if err != nil {
		return nil, errors.Wrap(err, "connecting to mongo")
	}
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, errors.Wrap(err, "pinging mongo")
	}

	return &DB{
		client:  client,
		db:      client.Database(conf.Database.Name),
		timeout: conf.Database.Timeout,
	}, nil
}

func (db *DB) Close() error {
	ctx, cancel := db.ctx()
	defer cancel()
	return db.client.Disconnect(ctx)
}

// ctx returns a call context carrying the store timeout: no operation may
// block indefinitely.
func (db *DB) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), db.timeout)
}

// inTransaction runs fn in a single multi-document transaction; everything it
// writes commits together or not at all.
func (db *DB) inTransaction(fn func(sc mongo.SessionContext) error) error {
	ctx, cancel := db.ctx()
	defer cancel()

	sess, err := db.client.StartSession()
	if err != nil {
		return storeErr(err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// storeErr surfaces driver failures as the retryable store error; domain
// not-found translations happen at the repository call sites.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(core.ErrStoreUnavailable, err.Error())
}
