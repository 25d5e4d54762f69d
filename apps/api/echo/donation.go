package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/haid/charityconnect/core"
	"github.com/haid/charityconnect/core/donor"
)

type donationApi struct {
	svc      *donor.Service
	validate *validator.Validate
}

func registerDonationAPI(g *echo.Group, svc *donor.Service, validate *validator.Validate) {
	api := donationApi{
		svc:      svc,
		validate: validate,
	}

	g.POST("/create-payment-intent", api.createPaymentIntent)

	dg := g.Group("/donations")
	dg.GET("", api.query)
	dg.POST("/items", api.submitItem)
	dg.POST("/money", api.submitMoney)
	dg.PUT("/items/:id/status", api.updateItemStatus)
}

type (
	PaymentIntentResponse struct {
		ClientSecret string `json:"clientSecret"`
	}

	ItemDonationResponse struct {
		Success  bool               `json:"success"`
		Donation donor.ItemDonation `json:"donation"`
	}

	MonetaryDonationResponse struct {
		Success  bool                   `json:"success"`
		Donation donor.MonetaryDonation `json:"donation"`
	}

	DonationsResponse struct {
		ItemDonations     []donor.ItemDonationView     `json:"itemDonations"`
		MonetaryDonations []donor.MonetaryDonationView `json:"monetaryDonations"`
	}
)

// Handlers

func (api *donationApi) createPaymentIntent(ctx echo.Context) error {
	var data donor.NewPaymentIntent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPaymentIntent")
	}
	if err := data.Validate(api.validate); err != nil {
		return core.NewValidationError(errors.New("Invalid amount"))
	}

	intent, err := api.svc.CreatePaymentIntent(ctx.Request().Context(), data.Amount)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, PaymentIntentResponse{ClientSecret: intent.ClientSecret})
}

func (api *donationApi) submitItem(ctx echo.Context) error {
	var data donor.NewItemDonation
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewItemDonation")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	dn, err := api.svc.SubmitItem(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "submitting item donation")
	}
	return ctx.JSON(http.StatusOK, ItemDonationResponse{Success: true, Donation: dn})
}

func (api *donationApi) submitMoney(ctx echo.Context) error {
	var data donor.NewMonetaryDonation
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMonetaryDonation")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	dn, err := api.svc.SubmitMonetary(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "submitting monetary donation")
	}
	return ctx.JSON(http.StatusOK, MonetaryDonationResponse{Success: true, Donation: dn})
}

func (api *donationApi) updateItemStatus(ctx echo.Context) error {
	var data donor.UpdateItemStatus
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateItemStatus")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	dn, err := api.svc.UpdateItemStatus(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating item donation status")
	}
	return ctx.JSON(http.StatusOK, ItemDonationResponse{Success: true, Donation: dn})
}

func (api *donationApi) query(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	items, err := api.svc.QueryItems(reqCtx, donor.DonationFilter{})
	if err != nil {
		return errors.Wrap(err, "querying item donations")
	}
	monetary, err := api.svc.QueryMonetary(reqCtx, donor.DonationFilter{})
	if err != nil {
		return errors.Wrap(err, "querying monetary donations")
	}
	return ctx.JSON(http.StatusOK, DonationsResponse{ItemDonations: items, MonetaryDonations: monetary})
}
