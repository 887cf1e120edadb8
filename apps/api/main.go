package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"net/mail"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	echoapi "github.com/trezcool/udahili/apps/api/echo"
	"github.com/trezcool/udahili/core"
	"github.com/trezcool/udahili/core/admission"
	"github.com/trezcool/udahili/core/course"
	"github.com/trezcool/udahili/core/job"
	"github.com/trezcool/udahili/core/student"
	logsvc "github.com/trezcool/udahili/services/logger"
	notifsvc "github.com/trezcool/udahili/services/notify"
	sendgridnotif "github.com/trezcool/udahili/services/notify/sendgrid"
	dummydb "github.com/trezcool/udahili/storage/database/dummy"
	mongodb "github.com/trezcool/udahili/storage/database/mongo"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up repositories
	var (
		studentRepo   student.Repository
		courseRepo    course.Repository
		admissionRepo admission.Repository
		jobRepo       job.Repository
	)
	if conf.Debug {
		db, err := dummydb.Open()
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
		}
		studentRepo = dummydb.NewStudentRepository(db)
		courseRepo = dummydb.NewCourseRepository(db)
		admissionRepo = dummydb.NewAdmissionRepository(db)
		jobRepo = dummydb.NewJobRepository(db)
	} else {
		db, err := mongodb.Open(conf)
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
		}
		defer func() {
			if err = db.Close(); err != nil {
				dbLogger.Fatal("Failed to close", err)
			}
		}()
		studentRepo = mongodb.NewStudentRepository(db)
		courseRepo = mongodb.NewCourseRepository(db)
		admissionRepo = mongodb.NewAdmissionRepository(db)
		jobRepo = mongodb.NewJobRepository(db)
	}

	// set up services
	studentSvc := student.NewService(studentRepo)

	var notifSvc core.NotificationService
	if conf.Debug {
		notifSvc = notifsvc.NewConsoleService(logger)
	} else {
		notifSvc = sendgridnotif.NewService(conf, studentAddressResolver{svc: studentSvc}, logger)
	}

	courseSvc := course.NewService(courseRepo, admissionRepo)
	admissionSvc := admission.NewService(admissionRepo, studentSvc, courseSvc, notifSvc, logger, conf)
	jobSvc := job.NewService(jobRepo, studentSvc, notifSvc, conf)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	student.InitValidators(validate, translator)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.
	// /metrics - Prometheus scrape endpoint.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	http.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:         conf,
			Logger:       logger,
			StudentSvc:   studentSvc,
			CourseSvc:    courseSvc,
			AdmissionSvc: admissionSvc,
			JobSvc:       jobSvc,
			Validate:     validate,
			Translator:   translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

// studentAddressResolver resolves student recipients; other roles have no
// address book yet and their notifications are dropped by the email sink.
type studentAddressResolver struct {
	svc *student.Service
}

func (r studentAddressResolver) AddressFor(userID string) (mail.Address, error) {
	std, err := r.svc.GetByID(userID)
	if err != nil {
		return mail.Address{}, err
	}
	return mail.Address{Name: std.Name, Address: std.Email}, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
