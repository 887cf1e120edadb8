package main

import (
	"log"
	"os"

	"github.com/trezcool/udahili/core"
	mongodb "github.com/trezcool/udahili/storage/database/mongo"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	db, err := mongodb.Open(conf)
	errAndDie(err)
	defer db.Close()

	cli := commandLine{
		studentRepo:   mongodb.NewStudentRepository(db),
		courseRepo:    mongodb.NewCourseRepository(db),
		admissionRepo: mongodb.NewAdmissionRepository(db),
		jobRepo:       mongodb.NewJobRepository(db),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
