package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/food-ordering-app/models"
	"github.com/yeremiapane/food-ordering-app/services"
	"github.com/yeremiapane/food-ordering-app/utils"
)

type AdminController struct {
	Reports *services.ReportService
	Exports *services.ExportService
}

func NewAdminController(reports *services.ReportService, exports *services.ExportService) *AdminController {
	return &AdminController{Reports: reports, Exports: exports}
}

func reportFilter(c *gin.Context) (services.ReportFilter, error) {
	f := services.ReportFilter{
		Status: models.OrderStatus(c.Query("status")),
		Period: services.ParsePeriod(c.Query("period")),
		Top:    queryInt(c, "top", 10),
	}
	if f.Status != "" && !f.Status.Valid() {
		return f, services.ErrInvalidStatus
	}
	var err error
	if f.From, err = queryDate(c, "from"); err != nil {
		return f, err
	}
	if f.To, err = queryDate(c, "to"); err != nil {
		return f, err
	}
	if f.CategoryID, err = queryUint(c, "category_id"); err != nil {
		return f, err
	}
	// default 30 hari terakhir
	if f.To == nil {
		to := time.Now()
		f.To = &to
	}
	if f.From == nil {
		from := f.To.AddDate(0, 0, -30)
		f.From = &from
	}
	return f, nil
}

// GetDashboardStats
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	stats, err := ac.Reports.Dashboard(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dashboard statistics", stats)
}

func (ac *AdminController) revenue(c *gin.Context) (*services.RevenueReport, services.ReportFilter, bool) {
	f, err := reportFilter(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return nil, f, false
	}
	report, err := ac.Reports.Revenue(c.Request.Context(), f)
	if err != nil {
		respondServiceError(c, err)
		return nil, f, false
	}
	return report, f, true
}

// RevenueReport
func (ac *AdminController) RevenueReport(c *gin.Context) {
	if report, _, ok := ac.revenue(c); ok {
		utils.RespondJSON(c, http.StatusOK, "Revenue report", report)
	}
}

// BestSellingReport
func (ac *AdminController) BestSellingReport(c *gin.Context) {
	f, err := reportFilter(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	report, err := ac.Reports.BestSelling(c.Request.Context(), f)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Best selling report", report)
}

// CustomerReport
func (ac *AdminController) CustomerReport(c *gin.Context) {
	f, err := reportFilter(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	report, err := ac.Reports.Customers(c.Request.Context(), f)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Customer report", report)
}

func rangeLabel(f services.ReportFilter) string {
	return fmt.Sprintf("%s_%s", f.From.Format("20060102"), f.To.Format("20060102"))
}

// ExportRevenueExcel
func (ac *AdminController) ExportRevenueExcel(c *gin.Context) {
	report, f, ok := ac.revenue(c)
	if !ok {
		return
	}
	data, err := ac.Exports.RevenueXLSX(report)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	sendFile(c, services.ContentTypeXLSX, "revenue_"+rangeLabel(f)+".xlsx", data)
}

// ExportRevenuePDF
func (ac *AdminController) ExportRevenuePDF(c *gin.Context) {
	report, f, ok := ac.revenue(c)
	if !ok {
		return
	}
	title := fmt.Sprintf("Revenue report %s - %s", f.From.Format("02/01/2006"), f.To.Format("02/01/2006"))
	data, err := ac.Exports.RevenuePDF(report, title)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	sendFile(c, services.ContentTypePDF, "revenue_"+rangeLabel(f)+".pdf", data)
}

// RevenueChart -> PNG, 404 jika tidak ada data
func (ac *AdminController) RevenueChart(c *gin.Context) {
	report, _, ok := ac.revenue(c)
	if !ok {
		return
	}
	if len(report.Buckets) == 0 {
		utils.RespondError(c, http.StatusNotFound, fmt.Errorf("no revenue data in range"))
		return
	}
	data, err := ac.Exports.RevenueChartPNG(report)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.Data(http.StatusOK, services.ContentTypePNG, data)
}
