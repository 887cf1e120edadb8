package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/udahili/core"
	"github.com/trezcool/udahili/core/job"
	"github.com/trezcool/udahili/services/metrics"
)

type jobApi struct {
	svc      *job.Service
	validate *validator.Validate
}

func registerJobAPI(g *echo.Group, actor echo.MiddlewareFunc, svc *job.Service, validate *validator.Validate) {
	api := jobApi{svc: svc, validate: validate}

	jg := g.Group("/jobs", actor)
	jg.POST("", api.create, roleMiddleware(core.RoleCompany))
	jg.GET("", api.query)
	jg.GET("/applications", api.queryApplications)

	dg := jg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.DELETE("", api.destroy, roleMiddleware(core.RoleCompany))
	dg.POST("/apply", api.apply, roleMiddleware(core.RoleStudent))
	dg.GET("/matches", api.matches, roleMiddleware(core.RoleCompany))
}

func (api *jobApi) create(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	var data job.NewJob
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewJob")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	j, err := api.svc.Create(actor, data)
	if err != nil {
		return errors.Wrap(err, "creating job")
	}
	return ctx.JSON(http.StatusCreated, j)
}

func (api *jobApi) query(ctx echo.Context) error {
	filter := new(job.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []job.Job{})
	}

	jobs, err := api.svc.Filter(*filter)
	if err != nil {
		return errors.Wrap(err, "querying jobs")
	}
	if jobs == nil {
		jobs = []job.Job{}
	}
	return ctx.JSON(http.StatusOK, jobs)
}

func (api *jobApi) retrieve(ctx echo.Context) error {
	j, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding job by ID")
	}
	return ctx.JSON(http.StatusOK, j)
}

func (api *jobApi) destroy(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	if err := api.svc.Delete(actor, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting job")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *jobApi) apply(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	app, err := api.svc.Apply(actor, ctx.Param("id"))
	if err != nil {
		metrics.ApplicationsSubmitted.WithLabelValues("job", "rejected").Inc()
		return errors.Wrap(err, "applying to job")
	}
	metrics.ApplicationsSubmitted.WithLabelValues("job", "ok").Inc()
	metrics.MatchScore.WithLabelValues("application").Observe(app.Score)
	return ctx.JSON(http.StatusCreated, app)
}

func (api *jobApi) queryApplications(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	filter := new(job.ApplicationQueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []job.JobApplication{})
	}

	apps, err := api.svc.FilterApplications(actor, *filter)
	if err != nil {
		return errors.Wrap(err, "querying job applications")
	}
	if apps == nil {
		apps = []job.JobApplication{}
	}
	return ctx.JSON(http.StatusOK, apps)
}

func (api *jobApi) matches(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	matches, err := api.svc.MatchingStudents(actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "matching students")
	}
	for _, m := range matches {
		metrics.MatchScore.WithLabelValues("search").Observe(m.Score)
	}
	if matches == nil {
		matches = []job.Match{}
	}
	return ctx.JSON(http.StatusOK, matches)
}
