package echoapi

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-reports/core/report"
)

type (
	ExportRequest struct {
		Type   string `param:"type" validate:"required,slug"`
		Format string `query:"format"` // anything but "csv" is a PDF
	}

	SlipRequest struct {
		StudentID string `param:"studentId" validate:"required,slug"`
	}
)

func (r ExportRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}

func (r SlipRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}

type reportApi struct {
	svc      report.Service
	validate *validator.Validate
}

func registerReportAPI(g *echo.Group, svc report.Service, validate *validator.Validate) {
	api := reportApi{
		svc:      svc,
		validate: validate,
	}

	rg := g.Group("/reports")
	rg.GET("/result-slip/:studentId", api.resultSlip)
	rg.GET("/:type", api.export)
}

// Handlers

// export streams a whole collection report: GET /v1/reports/:type?format=pdf|csv
func (api *reportApi) export(ctx echo.Context) error {
	var data ExportRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ExportRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	format := report.ParseFormat(data.Format)
	return api.svc.Export(ctx.Request().Context(), ctx.Response(), data.Type, format)
}

// resultSlip streams a student's result slip: GET /v1/reports/result-slip/:studentId
func (api *reportApi) resultSlip(ctx echo.Context) error {
	var data SlipRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SlipRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	return api.svc.ResultSlip(ctx.Request().Context(), ctx.Response(), data.StudentID)
}
