package reports

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	sheetLines     = "Transactions"
	sheetInvestors = "Investors"
)

var lineHeader = []interface{}{"ID", "Investor", "Date", "Amount", "Rate %", "Interest", "Total"}
var investorHeader = []interface{}{"Investor ID", "Investor", "Contribution", "Interest", "Total"}

// WriteYearlyInvestmentsXLSX renders the report as a two-sheet workbook.
func WriteYearlyInvestmentsXLSX(w io.Writer, rep *YearlyInvestments) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetLines); err != nil {
		return err
	}
	if _, err := f.NewSheet(sheetInvestors); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	if err := f.SetSheetRow(sheetLines, "A1", &lineHeader); err != nil {
		return err
	}
	for i, l := range rep.Transactions {
		row := []interface{}{
			l.ID,
			l.InvestorName,
			l.Date.Format("2006-01-02"),
			l.Amount.InexactFloat64(),
			l.InterestRate.InexactFloat64(),
			l.InterestAmount.InexactFloat64(),
			l.TotalWithInterest.InexactFloat64(),
		}
		if err := f.SetSheetRow(sheetLines, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	last := len(rep.Transactions) + 2
	summary := []interface{}{
		"", fmt.Sprintf("Total %d", rep.Year), "",
		rep.Summary.TotalContribution.InexactFloat64(), "",
		rep.Summary.TotalInterest.InexactFloat64(),
		rep.Summary.TotalWithInterest.InexactFloat64(),
	}
	if err := f.SetSheetRow(sheetLines, fmt.Sprintf("A%d", last), &summary); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetLines, "A1", "G1", bold); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetLines, fmt.Sprintf("A%d", last), fmt.Sprintf("G%d", last), bold); err != nil {
		return err
	}
	if err := f.SetColWidth(sheetLines, "B", "B", 28); err != nil {
		return err
	}

	if err := f.SetSheetRow(sheetInvestors, "A1", &investorHeader); err != nil {
		return err
	}
	for i, t := range rep.InvestorTotals {
		row := []interface{}{
			t.InvestorID,
			t.InvestorName,
			t.TotalContribution.InexactFloat64(),
			t.TotalInterest.InexactFloat64(),
			t.TotalWithInterest.InexactFloat64(),
		}
		if err := f.SetSheetRow(sheetInvestors, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheetInvestors, "A1", "E1", bold); err != nil {
		return err
	}
	if err := f.SetColWidth(sheetInvestors, "B", "B", 28); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	return f.Write(w)
}
