package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/xuri/excelize/v2"
	"github.com/yeremiapane/food-ordering-app/models"
	"github.com/yeremiapane/food-ordering-app/utils"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePDF  = "application/pdf"
	ContentTypePNG  = "image/png"

	qrSize = 256
)

type ExportService struct {
	baseURL string
}

func NewExportService(baseURL string) *ExportService {
	return &ExportService{baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *ExportService) TrackingURL(code string) string {
	return fmt.Sprintf("%s/orders/track/%s", s.baseURL, code)
}

// TrackingQR -> PNG QR code menuju halaman tracking order
func (s *ExportService) TrackingQR(code string) ([]byte, error) {
	return qrcode.Encode(s.TrackingURL(code), qrcode.Medium, qrSize)
}

func money(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// writeSheet menulis header tebal lalu baris data mulai dari baris ke-2.
func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]interface{}) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0EBF5"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}

	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	return f.SetColWidth(sheet, "A", lastCol, 18)
}

func newWorkbook(sheet string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func workbookBytes(f *excelize.File) ([]byte, error) {
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *ExportService) OrdersXLSX(orders []models.Order) ([]byte, error) {
	const sheet = "Orders"
	f, err := newWorkbook(sheet)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	headers := []string{"Code", "Order Date", "Customer", "Phone", "Email", "Address",
		"Items", "Subtotal", "Shipping Fee", "Total", "Status"}
	rows := make([][]interface{}, 0, len(orders))
	for _, o := range orders {
		items := 0
		for _, l := range o.Lines {
			items += l.Quantity
		}
		rows = append(rows, []interface{}{
			o.Code, o.OrderDate.Format("2006-01-02 15:04"), o.CustomerName, o.PhoneNumber, o.Email,
			o.DeliveryAddress, items, money(o.TotalAmount), money(o.ShippingFee), money(o.FinalTotal),
			o.Status.DisplayName(),
		})
	}
	if err := writeSheet(f, sheet, headers, rows); err != nil {
		return nil, err
	}
	return workbookBytes(f)
}

func (s *ExportService) RevenueXLSX(report *RevenueReport) ([]byte, error) {
	const sheet = "Revenue"
	f, err := newWorkbook(sheet)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	headers := []string{"Period", "Orders", "Revenue", "Shipping Fee", "Net Revenue", "Completed", "Cancelled"}
	rows := make([][]interface{}, 0, len(report.Buckets)+1)
	for _, b := range report.Buckets {
		rows = append(rows, []interface{}{
			b.Label, b.TotalOrders, money(b.TotalRevenue), money(b.TotalShipping), money(b.NetRevenue),
			b.CompletedOrders, b.CancelledOrders,
		})
	}
	sum := report.Summary
	rows = append(rows, []interface{}{
		"Total", sum.TotalOrders, money(sum.TotalRevenue), money(sum.TotalShipping), money(sum.NetRevenue),
		sum.CompletedOrders, sum.CancelledOrders,
	})
	if err := writeSheet(f, sheet, headers, rows); err != nil {
		return nil, err
	}

	const statusSheet = "By Status"
	if _, err := f.NewSheet(statusSheet); err != nil {
		return nil, err
	}
	statusRows := make([][]interface{}, 0, len(report.ByStatus))
	for _, st := range report.ByStatus {
		statusRows = append(statusRows, []interface{}{st.StatusText, st.Count, money(st.TotalAmount), st.Percentage})
	}
	if err := writeSheet(f, statusSheet, []string{"Status", "Orders", "Amount", "Percentage"}, statusRows); err != nil {
		return nil, err
	}
	return workbookBytes(f)
}

// core font PDF tidak punya glyph "đ"
func pdfAmount(d decimal.Decimal) string {
	return strings.TrimSuffix(utils.FormatCurrency(d), " đ") + " VND"
}

func (s *ExportService) RevenuePDF(report *RevenueReport, title string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	sum := report.Summary
	pdf.SetFont("Arial", "", 11)
	summary := [][2]string{
		{"Total orders", fmt.Sprintf("%d", sum.TotalOrders)},
		{"Revenue", pdfAmount(sum.TotalRevenue)},
		{"Shipping fees", pdfAmount(sum.TotalShipping)},
		{"Net revenue", pdfAmount(sum.NetRevenue)},
		{"Average order value", pdfAmount(sum.AverageOrderValue)},
		{"Completion rate", fmt.Sprintf("%.2f%%", sum.CompletionRate)},
	}
	for _, kv := range summary {
		pdf.CellFormat(60, 7, kv[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, kv[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	widths := []float64{40, 22, 42, 42, 44}
	headers := []string{"Period", "Orders", "Revenue", "Shipping", "Net"}
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(224, 235, 245)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, b := range report.Buckets {
		cells := []string{b.Label, fmt.Sprintf("%d", b.TotalOrders), pdfAmount(b.TotalRevenue),
			pdfAmount(b.TotalShipping), pdfAmount(b.NetRevenue)}
		for i, c := range cells {
			align := "R"
			if i == 0 {
				align = "L"
			}
			pdf.CellFormat(widths[i], 7, c, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RevenueChartPNG -> bar chart net revenue per periode
func (s *ExportService) RevenueChartPNG(report *RevenueReport) ([]byte, error) {
	if len(report.Buckets) == 0 {
		return nil, fmt.Errorf("no revenue data to chart")
	}

	const width, height = 1024, 512
	bars := make([]chart.Value, 0, len(report.Buckets))
	max := 0.0
	for _, b := range report.Buckets {
		v := money(b.NetRevenue)
		if v > max {
			max = v
		}
		bars = append(bars, chart.Value{Label: b.Period, Value: v})
	}

	spacing := 10
	barWidth := (width-120)/len(bars) - spacing
	if barWidth < 4 {
		barWidth, spacing = 4, 2
	}
	graph := chart.BarChart{
		Title:      "Net revenue",
		Width:      width,
		Height:     height,
		BarWidth:   barWidth,
		BarSpacing: spacing,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		Bars:       bars,
	}
	if max == 0 {
		graph.YAxis.Range = &chart.ContinuousRange{Min: 0, Max: 1}
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
