package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/oakhaven/contracts/internal/model"
)

// Generator renders the itemized statement of goods and services for a
// persisted contract.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(doc model.Contract) ([]byte, error) {
	file := excelize.NewFile()

	statementSheet := "Statement"
	file.SetSheetName("Sheet1", statementSheet)
	if err := g.writeStatement(file, statementSheet, doc); err != nil {
		return nil, err
	}

	paymentsSheet := "Payments"
	file.NewSheet(paymentsSheet)
	if err := g.writePayments(file, paymentsSheet, doc); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeStatement(file *excelize.File, sheet string, doc model.Contract) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Statement of Goods and Services")
	set("A2", "Contract No.")
	set("B2", doc.ContractNumber)
	set("A3", "Location")
	set("B3", doc.LocationID)
	set("A4", "Need Type")
	set("B4", string(doc.NeedType))
	set("A5", "Status")
	set("B5", string(doc.Meta.Status))
	if buyer, ok := primaryPerson(doc, model.RolePrimaryBuyer); ok {
		set("A6", "Buyer")
		set("B6", displayName(buyer))
	}
	if beneficiary, ok := primaryPerson(doc, model.RolePrimaryBeneficiary); ok {
		set("A7", "Beneficiary")
		set("B7", displayName(beneficiary))
	}

	row := 9
	headers := []string{"Description", "Qty", "Unit Price", "Tax", "Discounts", "Line Total"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		set(cell, header)
	}
	row++

	for _, sale := range doc.Sales {
		for _, item := range sale.Items {
			if item.IsCancelled {
				continue
			}
			var tax, discounts float64
			for _, t := range item.SalesTax {
				tax += t.TaxAmount
			}
			for _, d := range item.Discounts {
				discounts += d.Amount
			}
			line := float64(item.Quantity)*item.UnitPrice + tax - discounts

			set(fmt.Sprintf("A%d", row), item.Description)
			set(fmt.Sprintf("B%d", row), item.Quantity)
			set(fmt.Sprintf("C%d", row), item.UnitPrice)
			set(fmt.Sprintf("D%d", row), tax)
			set(fmt.Sprintf("E%d", row), discounts)
			set(fmt.Sprintf("F%d", row), line)
			row++
		}

		row++
		set(fmt.Sprintf("E%d", row), "Subtotal")
		set(fmt.Sprintf("F%d", row), sale.Subtotal)
		row++
		set(fmt.Sprintf("E%d", row), "Tax")
		set(fmt.Sprintf("F%d", row), sale.TaxTotal)
		row++
		set(fmt.Sprintf("E%d", row), "Discounts")
		set(fmt.Sprintf("F%d", row), sale.DiscountTotal)
		row++
		set(fmt.Sprintf("E%d", row), "Grand Total")
		set(fmt.Sprintf("F%d", row), sale.GrandTotal)
		row += 2
	}
	return nil
}

func (g *Generator) writePayments(file *excelize.File, sheet string, doc model.Contract) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	headers := []string{"Date", "Method", "Amount", "Reference", "Notes"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		set(cell, header)
	}

	var total float64
	row := 2
	for _, p := range doc.Payments {
		set(fmt.Sprintf("A%d", row), p.Date.Format("2006-01-02"))
		set(fmt.Sprintf("B%d", row), string(p.Method))
		set(fmt.Sprintf("C%d", row), p.Amount)
		set(fmt.Sprintf("D%d", row), p.Reference)
		set(fmt.Sprintf("E%d", row), p.Notes)
		total += p.Amount
		row++
	}
	row++
	set(fmt.Sprintf("B%d", row), "Total Paid")
	set(fmt.Sprintf("C%d", row), total)
	return nil
}

func primaryPerson(doc model.Contract, role model.Role) (model.ContractPerson, bool) {
	for _, p := range doc.People {
		if p.Roles.Has(role) {
			return p, true
		}
	}
	return model.ContractPerson{}, false
}

func displayName(p model.ContractPerson) string {
	name := p.Name.First
	if p.Name.Last != "" {
		if name != "" {
			name += " "
		}
		name += p.Name.Last
	}
	return name
}
