package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

// InterfaceExportService defines the export service interface
type InterfaceExportService interface {
	ExportEntriesExcel(p Principal, filter EntryFilter) (*bytes.Buffer, string, error)
	ExportEntriesPDF(p Principal, filter EntryFilter) (*bytes.Buffer, string, error)
}

// ExportService 检索结果的Excel/PDF导出
type ExportService struct {
	Logbook InterfaceLogbookService
}

// NewExportService 创建一个新的导出服务
func NewExportService(logbook InterfaceLogbookService) InterfaceExportService {
	return &ExportService{Logbook: logbook}
}

// exportLimit 导出时一次取的最大行数
const exportLimit = 200

var exportHeaders = []string{
	"ID", "变电站", "事件时间", "严重度", "事件类别", "设备", "技术员", "内容",
	"电压(kV)", "电流(A)", "功率(MW)",
}

// fetch 按过滤条件取导出数据
func (s *ExportService) fetch(p Principal, filter EntryFilter) ([]EntryDetail, error) {
	filter.Page = 1
	filter.Limit = exportLimit
	entries, _, err := s.Logbook.SearchEntries(p, filter)
	return entries, err
}

func formatReading(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *v)
}

// 1 ExportEntriesExcel 导出为xlsx
func (s *ExportService) ExportEntriesExcel(p Principal, filter EntryFilter) (*bytes.Buffer, string, error) {
	entries, err := s.fetch(p, filter)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Logbook"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"1F4E78"}, Pattern: 1},
	})
	if err != nil {
		return nil, "", err
	}

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}
	endCell, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	f.SetCellStyle(sheet, "A1", endCell, headerStyle)

	for row, entry := range entries {
		values := []interface{}{
			entry.ID,
			entry.SubstationName,
			entry.EntryDatetime.Format("2006-01-02 15:04"),
			entry.Severity,
			entry.EventCategory,
			entry.Equipment,
			entry.Technicians,
			entry.Message,
			formatReading(entry.VoltageKV),
			formatReading(entry.CurrentA),
			formatReading(entry.PowerMW),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	f.SetColWidth(sheet, "B", "B", 18)
	f.SetColWidth(sheet, "C", "C", 18)
	f.SetColWidth(sheet, "G", "G", 24)
	f.SetColWidth(sheet, "H", "H", 50)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("logbook-%s.xlsx", time.Now().Format("2006-01-02"))
	return buf, filename, nil
}

// 2 ExportEntriesPDF 导出为PDF，横向A4表格
func (s *ExportService) ExportEntriesPDF(p Principal, filter EntryFilter) (*bytes.Buffer, string, error) {
	entries, err := s.fetch(p, filter)
	if err != nil {
		return nil, "", err
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, "Substation Logbook Export")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s  Entries: %d", time.Now().Format("2006-01-02 15:04"), len(entries)))
	pdf.Ln(10)

	colWidths := []float64{12, 35, 30, 20, 30, 30, 110}
	headers := []string{"ID", "Substation", "Datetime", "Severity", "Category", "Technicians", "Message"}

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(31, 78, 120)
	pdf.SetTextColor(255, 255, 255)
	for i, header := range headers {
		pdf.CellFormat(colWidths[i], 8, header, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	pdf.SetTextColor(0, 0, 0)
	fill := false
	for _, entry := range entries {
		pdf.SetFillColor(240, 244, 248)
		message := entry.Message
		if len(message) > 140 {
			message = message[:140] + "..."
		}
		row := []string{
			fmt.Sprintf("%d", entry.ID),
			entry.SubstationName,
			entry.EntryDatetime.Format("2006-01-02 15:04"),
			entry.Severity,
			entry.EventCategory,
			entry.Technicians,
			message,
		}
		for i, value := range row {
			pdf.CellFormat(colWidths[i], 7, value, "1", 0, "L", fill, 0, "")
		}
		pdf.Ln(-1)
		fill = !fill
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("logbook-%s.pdf", time.Now().Format("2006-01-02"))
	return &buf, filename, nil
}
