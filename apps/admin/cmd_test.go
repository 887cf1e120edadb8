package main

import (
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/udahili/core/course"
	dummydb "github.com/trezcool/udahili/storage/database/dummy"
)

func newTestCLI(t *testing.T) *commandLine {
	t.Helper()
	logger = log.New(io.Discard, "", 0)
	db, err := dummydb.Open()
	require.NoError(t, err)
	return &commandLine{
		studentRepo:   dummydb.NewStudentRepository(db),
		courseRepo:    dummydb.NewCourseRepository(db),
		admissionRepo: dummydb.NewAdmissionRepository(db),
		jobRepo:       dummydb.NewJobRepository(db),
	}
}

func TestRunUsage(t *testing.T) {
	cli := newTestCLI(t)

	assert.Equal(t, errHelp, cli.run([]string{"admin"}))
	assert.Equal(t, errHelp, cli.run([]string{"admin", "bogus"}))
	assert.Equal(t, errHelp, cli.run([]string{"admin", "addcourse", "-institute", "inst1"}))
}

func TestAddCourse(t *testing.T) {
	cli := newTestCLI(t)

	err := cli.run([]string{"admin", "addcourse", "-institute", "inst1", "-title", "Intro to Go", "-seats", "25"})
	require.NoError(t, err)

	courses, err := cli.courseRepo.FilterCourses(course.QueryFilter{InstituteID: "inst1"})
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "Intro to Go", courses[0].Title)
	assert.Equal(t, 25, courses[0].Seats)
	assert.Equal(t, 25, courses[0].AvailableSeats)
	assert.Equal(t, course.StatusActive, courses[0].Status)
}
