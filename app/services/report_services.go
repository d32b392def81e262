package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/smartshelf/shelfweb/app/models"
	"github.com/smartshelf/shelfweb/app/repositories"
	"github.com/smartshelf/shelfweb/pkg/export"
	"github.com/smartshelf/shelfweb/pkg/metrics"
	"github.com/smartshelf/shelfweb/pkg/validate"
	"github.com/smartshelf/shelfweb/pkg/workerpool"
)

const (
	dateLayout = "2006-01-02"

	// DefaultReportDays is the length of the range shown when none is given.
	DefaultReportDays = 30

	// ExportSheet names the worksheet of a sales export.
	ExportSheet = "Sales Data"
)

// ReportRange is an inclusive YYYY-MM-DD date range.
type ReportRange struct {
	Start string `json:"startDate" validate:"required,date"`
	End   string `json:"endDate"   validate:"required,date"`
}

// SalesReportPage is the sales report: revenue per day and overall.
type SalesReportPage struct {
	ReportRange
	Daily          []models.DailyRevenue `json:"daily"`
	Records        int                   `json:"records"`
	TotalRevenue   decimal.Decimal       `json:"totalRevenue"`
	FormattedTotal string                `json:"totalRevenueFormatted"`
	ExportEnabled  bool                  `json:"exportEnabled"`
}

// Export is a rendered spreadsheet.
type Export struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ReportService builds the sales report and its export.
type ReportService struct {
	base
	sales *repositories.SaleRepository
	pool  *workerpool.Pool
	loc   *time.Location
	now   func() time.Time
}

// Range fills in missing bounds (the last DefaultReportDays days ending
// today) and validates the result.
func (s *ReportService) Range(start, end string) (ReportRange, error) {
	today := s.now().In(s.loc)
	if end == "" {
		end = today.Format(dateLayout)
	}
	if start == "" {
		start = today.AddDate(0, 0, -DefaultReportDays).Format(dateLayout)
	}

	r := ReportRange{Start: start, End: end}
	if err := validate.Check(r); err != nil {
		return r, err
	}
	// Equal-width layouts compare correctly as strings.
	if r.Start > r.End {
		return r, validate.Field("startDate", "The start date must not be after the end date.")
	}
	return r, nil
}

func (s *ReportService) load(ctx context.Context, r ReportRange) ([]models.Sale, error) {
	return fetch(ctx, s.base, repositories.EndpointReport, repositories.ReportParams(r.Start, r.End),
		func(ctx context.Context) ([]models.Sale, error) { return s.sales.Report(ctx, r.Start, r.End) })
}

// Sales aggregates the sales between start and end by calendar day.
func (s *ReportService) Sales(ctx context.Context, start, end string) (SalesReportPage, error) {
	r, err := s.Range(start, end)
	if err != nil {
		return SalesReportPage{}, err
	}

	sales, err := s.load(ctx, r)
	if err != nil {
		return SalesReportPage{}, err
	}

	total := models.TotalRevenue(sales)
	daily := models.RevenueByDate(sales, s.loc)
	if daily == nil {
		daily = []models.DailyRevenue{}
	}
	return SalesReportPage{
		ReportRange:    r,
		Daily:          daily,
		Records:        len(sales),
		TotalRevenue:   total,
		FormattedTotal: models.FormatCurrency(total),
		ExportEnabled:  len(sales) > 0,
	}, nil
}

// Export renders the sales between start and end as a workbook. An empty
// range yields ErrNothingToExport.
func (s *ReportService) Export(ctx context.Context, start, end string) (Export, error) {
	r, err := s.Range(start, end)
	if err != nil {
		return Export{}, err
	}

	sales, err := s.load(ctx, r)
	if err != nil {
		return Export{}, err
	}
	if len(sales) == 0 {
		metrics.ExportsBuilt.WithLabelValues("empty").Inc()
		return Export{}, ErrNothingToExport
	}

	rows := models.ExportRows(sales, s.loc)
	table := export.Table{Sheet: ExportSheet, Headers: models.ExportHeaders, Rows: make([][]interface{}, len(rows))}
	for i, row := range rows {
		table.Rows[i] = row.Cells()
	}

	var data []byte
	render := func(context.Context) error {
		var err error
		data, err = export.Workbook(table)
		return err
	}
	if s.pool != nil {
		err = s.pool.Do(ctx, render)
	} else {
		err = render(ctx)
	}
	if err != nil {
		metrics.ExportsBuilt.WithLabelValues("error").Inc()
		return Export{}, err
	}
	metrics.ExportsBuilt.WithLabelValues("ok").Inc()

	return Export{
		FileName:    models.ExportFileName(s.now().In(s.loc)),
		ContentType: export.ContentType,
		Data:        data,
	}, nil
}
