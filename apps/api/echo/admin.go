package echoapi

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/haid/charityconnect/core/donor"
	"github.com/haid/charityconnect/core/needy"
	"github.com/haid/charityconnect/core/notify"
)

// Search types
const (
	searchAll       = "all"
	searchDonations = "donations"
	searchNeedy     = "needy"
)

// Export types and formats
const (
	exportDonations = "donations"
	exportNeedy     = "needy"
	exportDonors    = "donors"
	exportSMSLogs   = "sms-logs"

	formatJSON = "json"
	formatCSV  = "csv"
)

type (
	adminDeps struct {
		donorSvc  *donor.Service
		needySvc  *needy.Service
		notifySvc *notify.Service
		env       string
		storage   string
		startedAt time.Time
	}

	adminApi struct {
		adminDeps
	}
)

func registerAdminAPI(g *echo.Group, deps adminDeps) {
	api := adminApi{deps}

	g.GET("/sms-logs", api.smsLogs)
	g.GET("/donors/:email", api.donorHistory)
	g.GET("/search", api.search)
	g.GET("/export/:type", api.export)
	g.GET("/health", api.health)
}

type (
	SearchResponse struct {
		Items    []donor.ItemDonationView     `json:"items"`
		Monetary []donor.MonetaryDonationView `json:"monetary"`
		Needy    []needy.Person               `json:"needy"`
	}

	HealthResponse struct {
		Status      string       `json:"status"`
		Timestamp   time.Time    `json:"timestamp"`
		Uptime      string       `json:"uptime"`
		Memory      HealthMemory `json:"memory"`
		Environment string       `json:"environment"`
		Storage     string       `json:"storage"`
	}

	HealthMemory struct {
		Used  string `json:"used"`
		Total string `json:"total"`
	}
)

// Handlers

func (api *adminApi) smsLogs(ctx echo.Context) error {
	logs, err := api.notifySvc.QueryLogs(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying sms logs")
	}
	return ctx.JSON(http.StatusOK, logs)
}

func (api *adminApi) donorHistory(ctx echo.Context) error {
	h, err := api.donorSvc.History(ctx.Request().Context(), ctx.Param("email"))
	if err != nil {
		return errors.Wrap(err, "getting donor history")
	}
	h.Donor = h.Donor.Masked()
	return ctx.JSON(http.StatusOK, h)
}

func (api *adminApi) search(ctx echo.Context) error {
	q := strings.TrimSpace(ctx.QueryParam("q"))
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Search query is required")
	}
	typ := ctx.QueryParam("type")
	if typ == "" {
		typ = searchAll
	}
	if typ != searchAll && typ != searchDonations && typ != searchNeedy {
		return echo.NewHTTPError(http.StatusBadRequest, "type must be one of all, donations, needy")
	}

	reqCtx := ctx.Request().Context()
	resp := SearchResponse{
		Items:    []donor.ItemDonationView{},
		Monetary: []donor.MonetaryDonationView{},
		Needy:    []needy.Person{},
	}
	var err error
	if typ == searchAll || typ == searchDonations {
		filter := donor.DonationFilter{Search: q}
		if resp.Items, err = api.donorSvc.QueryItems(reqCtx, filter); err != nil {
			return errors.Wrap(err, "searching item donations")
		}
		if resp.Monetary, err = api.donorSvc.QueryMonetary(reqCtx, filter); err != nil {
			return errors.Wrap(err, "searching monetary donations")
		}
	}
	if typ == searchAll || typ == searchNeedy {
		if resp.Needy, err = api.needySvc.Query(reqCtx, needy.QueryFilter{Search: q}); err != nil {
			return errors.Wrap(err, "searching needy persons")
		}
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *adminApi) export(ctx echo.Context) error {
	typ := ctx.Param("type")
	format := ctx.QueryParam("format")
	if format == "" {
		format = formatJSON
	}
	if format != formatJSON && format != formatCSV {
		return echo.NewHTTPError(http.StatusBadRequest, "format must be one of json, csv")
	}

	reqCtx := ctx.Request().Context()
	var data interface{}
	var table exportTable

	switch typ {
	case exportDonations:
		items, err := api.donorSvc.QueryItems(reqCtx, donor.DonationFilter{})
		if err != nil {
			return errors.Wrap(err, "querying item donations")
		}
		monetary, err := api.donorSvc.QueryMonetary(reqCtx, donor.DonationFilter{})
		if err != nil {
			return errors.Wrap(err, "querying monetary donations")
		}
		data = DonationsResponse{ItemDonations: items, MonetaryDonations: monetary}
		table = donationsTable(items, monetary)
	case exportNeedy:
		persons, err := api.needySvc.QueryAll(reqCtx)
		if err != nil {
			return errors.Wrap(err, "querying needy persons")
		}
		data = persons
		table = needyTable(persons)
	case exportDonors:
		donors, err := api.donorSvc.QueryDonors(reqCtx)
		if err != nil {
			return errors.Wrap(err, "querying donors")
		}
		data = donors
		table = donorsTable(donors)
	case exportSMSLogs:
		logs, err := api.notifySvc.QueryLogs(reqCtx)
		if err != nil {
			return errors.Wrap(err, "querying sms logs")
		}
		data = logs
		table = smsLogsTable(logs)
	default:
		return errHttpNotFound
	}

	filename := fmt.Sprintf("haid-%s-%s.%s", typ, time.Now().UTC().Format("2006-01-02"), format)
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))

	if format == formatJSON {
		return ctx.JSON(http.StatusOK, data)
	}
	b, err := table.csv()
	if err != nil {
		return errors.Wrap(err, "writing csv")
	}
	return ctx.Blob(http.StatusOK, "text/csv; charset=utf-8", b)
}

func (api *adminApi) health(ctx echo.Context) error {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	uptime := time.Since(api.startedAt)
	return ctx.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Uptime:    fmt.Sprintf("%dm %ds", int(uptime.Minutes()), int(uptime.Seconds())%60),
		Memory: HealthMemory{
			Used:  fmt.Sprintf("%dMB", mem.HeapAlloc/1024/1024),
			Total: fmt.Sprintf("%dMB", mem.HeapSys/1024/1024),
		},
		Environment: api.env,
		Storage:     api.storage,
	})
}

// CSV export

type exportTable struct {
	header []string
	rows   [][]string
}

func (t exportTable) csv() ([]byte, error) {
	var buff bytes.Buffer
	w := csv.NewWriter(&buff)
	if err := w.Write(t.header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(t.rows); err != nil { // flushes
		return nil, err
	}
	return buff.Bytes(), nil
}

func donationsTable(items []donor.ItemDonationView, monetary []donor.MonetaryDonationView) exportTable {
	t := exportTable{
		header: []string{"type", "id", "donor_name", "donor_email", "category", "description", "amount", "status", "created_at"},
	}
	for _, d := range items {
		t.rows = append(t.rows, []string{
			"item", d.ID, d.DonorName, d.DonorEmail, d.Category, d.Description, "", d.Status, formatTime(d.CreatedAt),
		})
	}
	for _, d := range monetary {
		t.rows = append(t.rows, []string{
			"monetary", d.ID, d.DonorName, d.DonorEmail, d.Purpose, d.Message.String, d.Amount, d.Status, formatTime(d.CreatedAt),
		})
	}
	return t
}

func needyTable(persons []needy.Person) exportTable {
	t := exportTable{
		header: []string{
			"id", "name", "age", "gender", "city", "state", "pincode", "family_size",
			"needs", "situation", "verified", "status", "reporter_name", "created_at",
		},
	}
	for _, p := range persons {
		t.rows = append(t.rows, []string{
			p.ID, p.Name, strconv.Itoa(p.Age), p.Gender, p.City, p.State, p.Pincode, nullIntStr(p.FamilySize),
			strings.Join(p.Needs, ";"), p.Situation, strconv.FormatBool(p.Verified), p.Status, p.ReporterName,
			formatTime(p.CreatedAt),
		})
	}
	return t
}

func donorsTable(donors []donor.Donor) exportTable {
	t := exportTable{
		header: []string{"id", "name", "email", "phone", "city", "state", "pincode", "created_at"},
	}
	for _, d := range donors {
		t.rows = append(t.rows, []string{
			d.ID, d.Name, d.Email, d.Phone, d.City.String, d.State.String, d.Pincode.String, formatTime(d.CreatedAt),
		})
	}
	return t
}

func smsLogsTable(logs []notify.SmsLog) exportTable {
	t := exportTable{
		header: []string{"id", "phone", "message", "status", "twilio_sid", "created_at"},
	}
	for _, l := range logs {
		t.rows = append(t.rows, []string{
			l.ID, l.Phone, l.Message, l.Status, l.TwilioSID.String, formatTime(l.CreatedAt),
		})
	}
	return t
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func nullIntStr(i null.Int) string {
	if !i.Valid {
		return ""
	}
	return strconv.Itoa(i.Int)
}
