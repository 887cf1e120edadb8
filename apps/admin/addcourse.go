package main

import (
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/udahili/core"
	"github.com/trezcool/udahili/core/course"
)

// addCourse publishes a course on behalf of an institution; used to bootstrap
// institutions that have no API access yet.
func (cli *commandLine) addCourse(instituteID, title string, seats int) error {
	now := time.Now().UTC()
	crs, err := cli.courseRepo.CreateCourse(course.Course{
		ID:             uuid.New().String(),
		InstituteID:    instituteID,
		Title:          core.CleanString(title),
		Seats:          seats,
		AvailableSeats: seats,
		Status:         course.StatusFor(seats),
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return err
	}
	logger.Printf("course %q created: %s", crs.Title, crs.ID)
	return nil
}
