package controllers

import (
	"github.com/smartshelf/shelfweb/app/services"
	"github.com/smartshelf/shelfweb/pkg/ctx"
)

type ReportController struct{ base }

func NewReportController(deps services.Deps) *ReportController {
	return &ReportController{base{deps: deps}}
}

func (h *ReportController) Sales(c *ctx.Context) {
	page, err := h.services(c).Reports.Sales(c.Context(), c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Success(page)
}

// Export downloads the range as a spreadsheet.
func (h *ReportController) Export(c *ctx.Context) {
	x, err := h.services(c).Reports.Export(c.Context(), c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Attachment(x.FileName, x.ContentType, x.Data)
}

func (h *ReportController) Analytics(c *ctx.Context) {
	page, err := h.services(c).Analytics.Page(c.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.Success(page)
}
