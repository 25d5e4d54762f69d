package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/haid/charityconnect/core/needy"
)

var needyOrderingFields = []string{"created_at", "name", "age", "city", "status"}

type needyApi struct {
	svc      *needy.Service
	validate *validator.Validate
}

func registerNeedyAPI(g *echo.Group, svc *needy.Service, validate *validator.Validate) {
	api := needyApi{
		svc:      svc,
		validate: validate,
	}

	ng := g.Group("/needy")
	ng.POST("", api.register)
	ng.GET("", api.query)
	ng.GET("/:id", api.retrieve)
	for _, action := range []string{
		needy.ActionVerify, needy.ActionReject, needy.ActionHelped,
		needy.ActionUnhelp, needy.ActionUnverify, needy.ActionUnreject,
	} {
		ng.POST("/:id/"+action, api.transition(action))
	}
}

type (
	PersonResponse struct {
		Success bool         `json:"success"`
		Person  needy.Person `json:"person"`
	}

	TransitionResponse struct {
		Success bool         `json:"success"`
		Person  needy.Person `json:"person"`
		Message string       `json:"message"`
	}
)

// Handlers

func (api *needyApi) register(ctx echo.Context) error {
	var data needy.NewPerson
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPerson")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	p, err := api.svc.Register(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering needy person")
	}
	return ctx.JSON(http.StatusOK, PersonResponse{Success: true, Person: p})
}

func (api *needyApi) query(ctx echo.Context) error {
	var filter needy.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []needy.Person{})
	}
	var ord Ordering
	ord.Bind(ctx, needyOrderingFields...)

	persons, err := api.svc.Query(ctx.Request().Context(), filter, ord.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying needy persons")
	}
	return ctx.JSON(http.StatusOK, persons)
}

func (api *needyApi) retrieve(ctx echo.Context) error {
	p, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting needy person")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *needyApi) transition(action string) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		p, err := api.svc.Apply(ctx.Request().Context(), ctx.Param("id"), action)
		if err != nil {
			return errors.Wrap(err, action)
		}
		return ctx.JSON(http.StatusOK, TransitionResponse{
			Success: true,
			Person:  p,
			Message: needy.ActionMessage(action),
		})
	}
}
