package main

import (
	"fmt"

	"github.com/trezcool/udahili/core/admission"
	"github.com/trezcool/udahili/core/course"
	"github.com/trezcool/udahili/core/job"
)

func (cli *commandLine) stats() error {
	students, err := cli.studentRepo.QueryAllStudents()
	if err != nil {
		return err
	}
	courses, err := cli.courseRepo.FilterCourses(course.QueryFilter{})
	if err != nil {
		return err
	}
	apps, err := cli.admissionRepo.FilterApplications(admission.QueryFilter{})
	if err != nil {
		return err
	}
	jobs, err := cli.jobRepo.FilterJobs(job.QueryFilter{})
	if err != nil {
		return err
	}

	byStatus := make(map[admission.Status]int)
	for _, app := range apps {
		byStatus[app.Status]++
	}

	fmt.Printf("students:     %d\n", len(students))
	fmt.Printf("courses:      %d\n", len(courses))
	fmt.Printf("jobs:         %d\n", len(jobs))
	fmt.Printf("applications: %d\n", len(apps))
	for _, status := range []admission.Status{
		admission.StatusPending, admission.StatusUnderReview, admission.StatusAdmitted,
		admission.StatusWaitlisted, admission.StatusAccepted, admission.StatusRejected,
	} {
		if n := byStatus[status]; n > 0 {
			fmt.Printf("  %-13s %d\n", status+":", n)
		}
	}
	return nil
}
