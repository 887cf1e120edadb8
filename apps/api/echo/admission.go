package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/udahili/core"
	"github.com/trezcool/udahili/core/admission"
	"github.com/trezcool/udahili/services/metrics"
)

type admissionApi struct {
	svc      *admission.Service
	validate *validator.Validate
}

func registerAdmissionAPI(g *echo.Group, actor echo.MiddlewareFunc, svc *admission.Service, validate *validator.Validate) {
	api := admissionApi{svc: svc, validate: validate}

	ag := g.Group("/applications", actor)
	ag.POST("", api.submit, roleMiddleware(core.RoleStudent))
	ag.GET("", api.query)

	dg := ag.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("/status", api.updateStatus, roleMiddleware(core.RoleInstitute))
	dg.POST("/accept", api.accept, roleMiddleware(core.RoleStudent))
}

func (api *admissionApi) submit(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	var data admission.NewApplication
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewApplication")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	app, err := api.svc.Submit(actor, data)
	if err != nil {
		metrics.ApplicationsSubmitted.WithLabelValues("course", "rejected").Inc()
		return errors.Wrap(err, "submitting application")
	}
	metrics.ApplicationsSubmitted.WithLabelValues("course", "ok").Inc()
	return ctx.JSON(http.StatusCreated, app)
}

func (api *admissionApi) query(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	filter := new(admission.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []admission.Application{})
	}

	apps, err := api.svc.Filter(actor, *filter)
	if err != nil {
		return errors.Wrap(err, "querying applications")
	}
	if apps == nil {
		apps = []admission.Application{}
	}
	return ctx.JSON(http.StatusOK, apps)
}

func (api *admissionApi) retrieve(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	app, err := api.svc.GetByID(actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding application by ID")
	}
	return ctx.JSON(http.StatusOK, app)
}

func (api *admissionApi) updateStatus(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	var data StatusUpdateRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StatusUpdateRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	to := admission.Status(data.Status)
	app, err := api.svc.Transition(actor, ctx.Param("id"), to)
	if err != nil {
		metrics.StatusTransitions.WithLabelValues(string(to), "rejected").Inc()
		return errors.Wrap(err, "transitioning application")
	}
	metrics.StatusTransitions.WithLabelValues(string(to), "ok").Inc()
	return ctx.JSON(http.StatusOK, app)
}

func (api *admissionApi) accept(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	app, err := api.svc.Accept(actor, ctx.Param("id"))
	if err != nil {
		metrics.StatusTransitions.WithLabelValues(string(admission.StatusAccepted), "rejected").Inc()
		return errors.Wrap(err, "accepting offer")
	}
	metrics.StatusTransitions.WithLabelValues(string(admission.StatusAccepted), "ok").Inc()
	return ctx.JSON(http.StatusOK, app)
}

type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required"`
}

func (sr *StatusUpdateRequest) Validate(validate *validator.Validate) error {
	sr.Status = core.CleanString(sr.Status, true /* lower */)
	return validate.Struct(sr)
}
