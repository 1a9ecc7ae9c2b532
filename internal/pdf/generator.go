package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/oakhaven/contracts/internal/model"
)

type Generator struct {
	fontName string
}

func NewGenerator() (*Generator, error) {
	return &Generator{fontName: "Helvetica"}, nil
}

// Generate renders the printable statement of goods and services.
func (g *Generator) Generate(doc model.Contract) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, "Statement of Goods and Services", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Contract No. %s (%s)", doc.ContractNumber, string(doc.NeedType)), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Location %s, status %s", doc.LocationID, string(doc.Meta.Status)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	if buyer, ok := findRole(doc, model.RolePrimaryBuyer); ok {
		addPersonBlock(pdf, g.fontName, "Buyer", buyer)
		pdf.Ln(2)
	}
	if beneficiary, ok := findRole(doc, model.RolePrimaryBeneficiary); ok {
		addPersonBlock(pdf, g.fontName, "Beneficiary", beneficiary)
		pdf.Ln(2)
	}
	pdf.Ln(2)

	headers := []string{"Description", "Qty", "Unit Price", "Tax", "Total"}
	colWidths := []float64{85, 15, 28, 26, 26}
	drawTableRow(pdf, g.fontName, headers, colWidths, true)

	for _, sale := range doc.Sales {
		for _, item := range sale.Items {
			if item.IsCancelled {
				continue
			}
			var tax float64
			for _, t := range item.SalesTax {
				tax += t.TaxAmount
			}
			var discounts float64
			for _, d := range item.Discounts {
				discounts += d.Amount
			}
			row := []string{
				item.Description,
				fmt.Sprintf("%d", item.Quantity),
				formatAmount(item.UnitPrice),
				formatAmount(tax),
				formatAmount(float64(item.Quantity)*item.UnitPrice + tax - discounts),
			}
			drawTableRow(pdf, g.fontName, row, colWidths, false)
		}

		pdf.Ln(3)
		pdf.SetFont(g.fontName, "B", 11)
		pdf.CellFormat(0, 6, fmt.Sprintf("Subtotal %s    Tax %s    Discounts %s    Grand Total %s",
			formatAmount(sale.Subtotal), formatAmount(sale.TaxTotal),
			formatAmount(sale.DiscountTotal), formatAmount(sale.GrandTotal)), "", 1, "R", false, 0, "")
	}

	if len(doc.Payments) > 0 {
		pdf.Ln(4)
		pdf.SetFont(g.fontName, "B", 12)
		pdf.CellFormat(0, 8, "Payments", "", 1, "L", false, 0, "")
		pdf.SetFont(g.fontName, "", 10)
		var total float64
		for _, p := range doc.Payments {
			pdf.CellFormat(0, 5, fmt.Sprintf("%s  %s  %s", formatDate(p.Date), string(p.Method), formatAmount(p.Amount)), "", 1, "L", false, 0, "")
			total += p.Amount
		}
		pdf.SetFont(g.fontName, "B", 10)
		pdf.CellFormat(0, 6, fmt.Sprintf("Total paid %s", formatAmount(total)), "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func findRole(doc model.Contract, role model.Role) (model.ContractPerson, bool) {
	for _, p := range doc.People {
		if p.Roles.Has(role) {
			return p, true
		}
	}
	return model.ContractPerson{}, false
}

func addPersonBlock(pdf *gofpdf.Fpdf, font, label string, p model.ContractPerson) {
	pdf.SetFont(font, "B", 11)
	pdf.CellFormat(0, 6, label, "", 1, "L", false, 0, "")
	pdf.SetFont(font, "", 10)
	name := p.Name.First
	if p.Name.Last != "" {
		name += " " + p.Name.Last
	}
	pdf.CellFormat(0, 5, name, "", 1, "L", false, 0, "")
	if len(p.Addresses) > 0 {
		a := p.Addresses[0]
		pdf.CellFormat(0, 5, fmt.Sprintf("%s, %s, %s %s", a.Line1, a.City, a.State, a.PostalCode), "", 1, "L", false, 0, "")
	}
	if len(p.Phones) > 0 {
		pdf.CellFormat(0, 5, p.Phones[0].Number, "", 1, "L", false, 0, "")
	}
}

func drawTableRow(pdf *gofpdf.Fpdf, font string, cells []string, widths []float64, header bool) {
	if header {
		pdf.SetFont(font, "B", 10)
	} else {
		pdf.SetFont(font, "", 10)
	}
	for i, cell := range cells {
		align := "L"
		if i > 0 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 7, cell, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
