package echoapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/udahili/core"
	"github.com/trezcool/udahili/core/admission"
	"github.com/trezcool/udahili/core/course"
	"github.com/trezcool/udahili/core/job"
	"github.com/trezcool/udahili/core/student"
	dummynotif "github.com/trezcool/udahili/services/notify/dummy"
	dummydb "github.com/trezcool/udahili/storage/database/dummy"
)

type noopLogger struct{}

func (noopLogger) Enable(bool)                  {}
func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) Fatal(string, ...interface{}) {}

type testServer struct {
	*Server
	studentRepo student.Repository
	courseRepo  course.Repository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := dummydb.Open()
	require.NoError(t, err)

	conf := &core.Config{
		TestMode:                true,
		MaxOpenApplications:     2,
		QualifiedMatchThreshold: 0.6,
		GoodMatchThreshold:      0.7,
	}

	studentRepo := dummydb.NewStudentRepository(db)
	courseRepo := dummydb.NewCourseRepository(db)
	admissionRepo := dummydb.NewAdmissionRepository(db)
	jobRepo := dummydb.NewJobRepository(db)

	studentSvc := student.NewService(studentRepo)
	courseSvc := course.NewService(courseRepo, admissionRepo)
	notifs := dummynotif.NewService()
	admissionSvc := admission.NewService(admissionRepo, studentSvc, courseSvc, notifs, noopLogger{}, conf)
	jobSvc := job.NewService(jobRepo, studentSvc, notifs, conf)

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	student.InitValidators(validate, translator)

	return &testServer{
		Server: NewServer(ServerDeps{
			Conf:           conf,
			Logger:         noopLogger{},
			StudentSvc:     studentSvc,
			CourseSvc:      courseSvc,
			AdmissionSvc:   admissionSvc,
			JobSvc:         jobSvc,
			Validate:       validate,
			Translator:     translator,
			DisableReqLogs: true,
		}),
		studentRepo: studentRepo,
		courseRepo:  courseRepo,
	}
}

func (srv *testServer) request(t *testing.T, method, path string, actor *core.Actor, data interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if data != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(data))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if actor != nil {
		req.Header.Set(actorIDHeader, actor.ID)
		req.Header.Set(actorRoleHeader, actor.Role)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func (srv *testServer) createStudent(t *testing.T, id string) student.Student {
	t.Helper()
	std, err := srv.studentRepo.CreateStudent(student.Student{
		ID:     id,
		Name:   "Student " + id,
		Email:  id + "@test.com",
		Grades: []student.SubjectGrade{{Subject: "math", Grade: "A"}},
	})
	require.NoError(t, err)
	return std
}

func (srv *testServer) createCourse(t *testing.T, id, instituteID string, seats int) course.Course {
	t.Helper()
	crs, err := srv.courseRepo.CreateCourse(course.Course{
		ID:             id,
		InstituteID:    instituteID,
		Title:          "Course " + id,
		Seats:          seats,
		AvailableSeats: seats,
		Status:         course.StatusActive,
	})
	require.NoError(t, err)
	return crs
}

func TestHome(t *testing.T) {
	srv := newTestServer(t)
	rec := srv.request(t, http.MethodGet, "/", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIdentityRequired(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.request(t, http.MethodGet, "/v1/courses", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// bogus role
	rec = srv.request(t, http.MethodGet, "/v1/courses", &core.Actor{ID: "x", Role: "root"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSubmitApplication(t *testing.T) {
	srv := newTestServer(t)
	srv.createStudent(t, "std1")
	srv.createCourse(t, "crs1", "inst1", 5)
	actor := &core.Actor{ID: "std1", Role: core.RoleStudent}

	rec := srv.request(t, http.MethodPost, "/v1/applications", actor, echo.Map{"course_id": "crs1"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var app admission.Application
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &app))
	assert.Equal(t, admission.StatusPending, app.Status)
	assert.Equal(t, "inst1", app.InstituteID)

	// duplicate -> conflict
	rec = srv.request(t, http.MethodPost, "/v1/applications", actor, echo.Map{"course_id": "crs1"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// unknown course -> not found
	rec = srv.request(t, http.MethodPost, "/v1/applications", actor, echo.Map{"course_id": "nope"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// missing course_id -> validation error
	rec = srv.request(t, http.MethodPost, "/v1/applications", actor, echo.Map{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// wrong role
	rec = srv.request(t, http.MethodPost, "/v1/applications", &core.Actor{ID: "inst1", Role: core.RoleInstitute}, echo.Map{"course_id": "crs1"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestTransitionEndpoint(t *testing.T) {
	srv := newTestServer(t)
	srv.createStudent(t, "std1")
	srv.createCourse(t, "crs1", "inst1", 1)
	stdActor := &core.Actor{ID: "std1", Role: core.RoleStudent}
	instActor := &core.Actor{ID: "inst1", Role: core.RoleInstitute}

	rec := srv.request(t, http.MethodPost, "/v1/applications", stdActor, echo.Map{"course_id": "crs1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var app admission.Application
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &app))

	rec = srv.request(t, http.MethodPut, "/v1/applications/"+app.ID+"/status", instActor, echo.Map{"status": "admitted"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &app))
	assert.Equal(t, admission.StatusAdmitted, app.Status)

	// another institution may not touch it
	rec = srv.request(t, http.MethodPut, "/v1/applications/"+app.ID+"/status", &core.Actor{ID: "inst2", Role: core.RoleInstitute}, echo.Map{"status": "rejected"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// terminal guard -> conflict
	rec = srv.request(t, http.MethodPost, "/v1/applications/"+app.ID+"/accept", stdActor, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = srv.request(t, http.MethodPut, "/v1/applications/"+app.ID+"/status", instActor, echo.Map{"status": "waitlisted"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCourseEndpoints(t *testing.T) {
	srv := newTestServer(t)
	instActor := &core.Actor{ID: "inst1", Role: core.RoleInstitute}

	rec := srv.request(t, http.MethodPost, "/v1/courses", instActor, echo.Map{"title": "Algorithms", "seats": 30})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var crs course.Course
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &crs))
	assert.Equal(t, "inst1", crs.InstituteID)
	assert.Equal(t, 30, crs.AvailableSeats)
	assert.Equal(t, course.StatusActive, crs.Status)

	// students may browse but not publish
	stdActor := &core.Actor{ID: "std1", Role: core.RoleStudent}
	rec = srv.request(t, http.MethodGet, "/v1/courses", stdActor, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = srv.request(t, http.MethodPost, "/v1/courses", stdActor, echo.Map{"title": "Nope", "seats": 1})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
