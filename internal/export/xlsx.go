// Package export renders priced invoices into documents.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/ledgerbridge/faktura/internal/domain/entity"
	"github.com/ledgerbridge/faktura/internal/invoice"
)

const (
	// SheetName is the worksheet the invoice is written to.
	SheetName = "Faktura"

	// XLSXContentType is the MIME type of the rendered workbook.
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	dateLayout = "2006-01-02"

	// first row of the line table
	itemsHeaderRow = 13
)

var itemColumns = []string{"Lp.", "Nazwa", "Ilość", "J.m.", "Cena netto", "Stawka VAT", "Wartość netto", "VAT", "Wartość brutto"}

// MPPNote is printed on invoices subject to the split payment mechanism.
const MPPNote = "Mechanizm podzielonej płatności"

// XLSXRenderer writes invoices as Excel workbooks.
// Amounts come from the invoice view; nothing is recomputed here.
type XLSXRenderer struct {
	templatePath string
	logger       *zap.Logger
}

// NewXLSXRenderer creates a renderer. With an empty templatePath a blank
// workbook is used, otherwise the template's cells are overwritten.
func NewXLSXRenderer(templatePath string, logger *zap.Logger) *XLSXRenderer {
	return &XLSXRenderer{templatePath: templatePath, logger: logger}
}

// ContentType implements port.InvoiceRenderer.
func (r *XLSXRenderer) ContentType() string { return XLSXContentType }

// Extension implements port.InvoiceRenderer.
func (r *XLSXRenderer) Extension() string { return ".xlsx" }

// Render writes view to w.
func (r *XLSXRenderer) Render(view *invoice.View, w io.Writer) error {
	if view == nil || view.Invoice == nil {
		return fmt.Errorf("render xlsx: no invoice")
	}
	inv := view.Invoice

	f, err := r.open()
	if err != nil {
		return err
	}
	defer f.Close()

	sheet := &sheetWriter{f: f, logger: r.logger}
	if sheet.amountStyle, err = f.NewStyle(&excelize.Style{NumFmt: 2}); err != nil {
		return fmt.Errorf("failed to create amount style: %w", err)
	}
	if sheet.boldStyle, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	sheet.text("A1", "Faktura VAT nr")
	sheet.text("B1", inv.Number)
	sheet.bold("A1", "B1")
	sheet.text("A2", "Data wystawienia")
	sheet.text("B2", inv.IssueDate.Format(dateLayout))
	sheet.text("A3", "Data sprzedaży")
	sheet.text("B3", formatDate(inv.SaleDate, inv.IssueDate))
	if inv.DueDate != nil {
		sheet.text("A4", "Termin płatności")
		sheet.text("B4", inv.DueDate.Format(dateLayout))
	}

	sheet.party("A", "Sprzedawca", inv.Seller)
	sheet.party("E", "Nabywca", inv.Buyer)

	for i, title := range itemColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, itemsHeaderRow)
		sheet.text(cell, title)
		sheet.bold(cell, cell)
	}

	row := itemsHeaderRow + 1
	for i, item := range inv.Items {
		line := view.Lines[i]
		sheet.value(cellAt("A", row), i+1)
		sheet.text(cellAt("B", row), item.Name)
		sheet.text(cellAt("C", row), item.Quantity.String())
		sheet.text(cellAt("D", row), item.Unit)
		sheet.amount(cellAt("E", row), item.UnitPriceNet)
		sheet.text(cellAt("F", row), item.VATRate.Label())
		sheet.amount(cellAt("G", row), line.Net)
		sheet.amount(cellAt("H", row), line.VAT)
		sheet.amount(cellAt("I", row), line.Gross)
		row++
	}

	row++
	sheet.text(cellAt("F", row), "Stawka VAT")
	sheet.text(cellAt("G", row), "Netto")
	sheet.text(cellAt("H", row), "VAT")
	sheet.text(cellAt("I", row), "Brutto")
	sheet.bold(cellAt("F", row), cellAt("I", row))
	row++
	for _, label := range view.Totals.RateLabels() {
		sheet.rateRow(row, label, view.Totals.Breakdown[label])
		row++
	}
	sheet.rateRow(row, "Razem", view.Totals.Amounts)
	sheet.bold(cellAt("F", row), cellAt("I", row))
	row += 2

	sheet.text(cellAt("A", row), "Do zapłaty")
	sheet.text(cellAt("B", row), fmt.Sprintf("%s %s", view.Totals.Gross.StringFixed(2), inv.Currency))
	row++
	sheet.text(cellAt("A", row), "Słownie")
	sheet.text(cellAt("B", row), AmountInWords(view.Totals.Gross, inv.Currency))
	row++
	if inv.MPP {
		sheet.text(cellAt("A", row), MPPNote)
		sheet.bold(cellAt("A", row), cellAt("A", row))
		row++
	}
	if inv.Notes != "" {
		sheet.text(cellAt("A", row), "Uwagi")
		sheet.text(cellAt("B", row), inv.Notes)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	r.logger.Info("Invoice rendered",
		zap.String("number", inv.Number),
		zap.Int("items", len(inv.Items)))
	return nil
}

func (r *XLSXRenderer) open() (*excelize.File, error) {
	if r.templatePath == "" {
		f := excelize.NewFile()
		if err := f.SetSheetName("Sheet1", SheetName); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to name sheet: %w", err)
		}
		return f, nil
	}

	f, err := excelize.OpenFile(r.templatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open template: %w", err)
	}
	if idx, _ := f.GetSheetIndex(SheetName); idx == -1 {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			f.Close()
			return nil, fmt.Errorf("template has no sheets")
		}
		if err := f.SetSheetName(sheets[0], SheetName); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to name sheet: %w", err)
		}
	}
	return f, nil
}

type sheetWriter struct {
	f           *excelize.File
	logger      *zap.Logger
	amountStyle int
	boldStyle   int
}

func (s *sheetWriter) value(cell string, v interface{}) {
	if err := s.f.SetCellValue(SheetName, cell, v); err != nil {
		s.logger.Warn("Failed to set cell value",
			zap.String("cell", cell),
			zap.Error(err))
	}
}

func (s *sheetWriter) text(cell, v string) {
	s.value(cell, v)
}

func (s *sheetWriter) amount(cell string, d decimal.Decimal) {
	s.value(cell, d.InexactFloat64())
	s.style(cell, cell, s.amountStyle)
}

func (s *sheetWriter) bold(from, to string) {
	s.style(from, to, s.boldStyle)
}

func (s *sheetWriter) style(from, to string, style int) {
	if err := s.f.SetCellStyle(SheetName, from, to, style); err != nil {
		s.logger.Warn("Failed to set cell style",
			zap.String("cell", from),
			zap.Error(err))
	}
}

func (s *sheetWriter) party(col, title string, p entity.Party) {
	s.text(cellAt(col, 6), title)
	s.bold(cellAt(col, 6), cellAt(col, 6))
	s.text(cellAt(col, 7), p.Name)
	if p.NIP != "" {
		s.text(cellAt(col, 8), "NIP: "+p.NIP)
	}
	s.text(cellAt(col, 9), p.Address)
	s.text(cellAt(col, 10), p.PostalCode)
	if p.BankAccount != "" {
		s.text(cellAt(col, 11), "Konto: "+p.BankAccount)
	}
}

func (s *sheetWriter) rateRow(row int, label string, a entity.Amounts) {
	s.text(cellAt("F", row), label)
	s.amount(cellAt("G", row), a.Net)
	s.amount(cellAt("H", row), a.VAT)
	s.amount(cellAt("I", row), a.Gross)
}

func cellAt(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func formatDate(t *time.Time, fallback time.Time) string {
	if t == nil {
		return fallback.Format(dateLayout)
	}
	return t.Format(dateLayout)
}
