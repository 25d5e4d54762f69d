package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/haid/charityconnect/core/analytics"
)

type analyticsApi struct {
	svc *analytics.Service
}

func registerAnalyticsAPI(g *echo.Group, svc *analytics.Service) {
	api := analyticsApi{svc: svc}
	g.GET("/analytics", api.summary, noCache)
}

func (api *analyticsApi) summary(ctx echo.Context) error {
	s, err := api.svc.Summarize(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "computing analytics")
	}
	return ctx.JSON(http.StatusOK, s)
}
