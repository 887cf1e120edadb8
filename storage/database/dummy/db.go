// Package dummydb is an in-memory implementation of every repository, used by
// tests and local development in place of mongo.
package dummydb

import (
	"sync"

	"github.com/trezcool/udahili/core/admission"
	"github.com/trezcool/udahili/core/course"
	"github.com/trezcool/udahili/core/job"
	"github.com/trezcool/udahili/core/student"
)

// DB guards all tables behind a single lock: the acceptance cascade commits
// across applications and courses, so per-table locking would not give the
// all-or-nothing semantics the repositories promise.
type DB struct {
	sync.RWMutex

	students        map[string]*student.Student
	courses         map[string]*course.Course
	jobs            map[string]*job.Job
	jobApplications map[string]*job.JobApplication
	applications    map[string]*admission.Application
}

func Open() (*DB, error) {
	db := &DB{
		students:        make(map[string]*student.Student),
		courses:         make(map[string]*course.Course),
		jobs:            make(map[string]*job.Job),
		jobApplications: make(map[string]*job.JobApplication),
		applications:    make(map[string]*admission.Application),
	}
	return db, nil
}
