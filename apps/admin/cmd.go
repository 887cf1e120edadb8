package main

import (
	"errors"
	"flag"
	"fmt"

	"github.com/trezcool/udahili/core/admission"
	"github.com/trezcool/udahili/core/course"
	"github.com/trezcool/udahili/core/job"
	"github.com/trezcool/udahili/core/student"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	studentRepo   student.Repository
	courseRepo    course.Repository
	admissionRepo admission.Repository
	jobRepo       job.Repository
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  stats - print store counts")
	fmt.Println("  addcourse -institute ID -title TITLE -seats N - publish a course on behalf of an institution")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addCourseCmd := flag.NewFlagSet("addcourse", flag.ExitOnError)
	addCourseInstitute := addCourseCmd.String("institute", "", "The owning institution's ID.")
	addCourseTitle := addCourseCmd.String("title", "", "The course title.")
	addCourseSeats := addCourseCmd.Int("seats", 0, "The course capacity.")

	switch args[1] {
	case "stats":
		return cli.stats()
	case "addcourse":
		if err := addCourseCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addCourseInstitute == "" || *addCourseTitle == "" || *addCourseSeats < 1 {
			addCourseCmd.Usage()
			return errHelp
		}
		return cli.addCourse(*addCourseInstitute, *addCourseTitle, *addCourseSeats)
	default:
		cli.printUsage()
		return errHelp
	}
}
