package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"agencycrm/internal/services"
)

type ReceivablesSource interface {
	Receivables(ctx context.Context, asOf time.Time) (*services.ReceivablesReport, error)
}

type ReportHandler struct {
	Service ReceivablesSource
	log     *zap.Logger
}

func NewReportHandler(service ReceivablesSource, log *zap.Logger) *ReportHandler {
	return &ReportHandler{Service: service, log: log.Named("reports")}
}

// @Summary  Receivables across active contracts
// @Tags     Reports
// @Produce  json
// @Param    as_of  query     string  false  "YYYY-MM-DD, default today"
// @Success  200    {object}  services.ReceivablesReport
// @Router   /reports/receivables [get]
func (h *ReportHandler) Receivables(c *gin.Context) {
	asOf, ok := asOfParam(c)
	if !ok {
		return
	}
	report, err := h.Service.Receivables(c.Request.Context(), asOf)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// @Summary  Receivables as an Excel workbook
// @Tags     Reports
// @Produce  application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param    as_of  query  string  false  "YYYY-MM-DD, default today"
// @Success  200
// @Router   /reports/receivables.xlsx [get]
func (h *ReportHandler) ReceivablesXLSX(c *gin.Context) {
	asOf, ok := asOfParam(c)
	if !ok {
		return
	}
	report, err := h.Service.Receivables(c.Request.Context(), asOf)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	out, err := services.ReceivablesWorkbook(report)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	name := "receivables-" + asOf.Format("2006-01-02") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", out)
}
