package transaction

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"bullion-backend/internal/httpx"
	"bullion-backend/internal/ledger"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GET /transactions/by-nominee/:nomineeId/export?startDate=...&endDate=...
func (h *Handler) Export() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "nomineeId")
		if err != nil {
			return err
		}
		r, err := httpx.DateRange(c)
		if err != nil {
			return err
		}
		l, err := h.svc.ListTransactions(c.UserContext(), id, r)
		if err != nil {
			return err
		}

		buf, err := Statement(l)
		if err != nil {
			return err
		}

		name := fmt.Sprintf("statement_%d_%s.xlsx", l.NomineeID, time.Now().UTC().Format("20060102_150405"))
		c.Set(fiber.HeaderContentType, xlsxContentType)
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
		return c.Send(buf.Bytes())
	}
}

// Statement renders a nominee ledger as a single sheet workbook, oldest
// transaction first.
func Statement(l *ledger.NomineeLedger) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	rows := [][]interface{}{
		{"Nominee", l.NomineeName, string(l.NomineeType)},
		{"Period", rangeLabel(l.Range.Start), rangeLabel(l.Range.End)},
		{},
		{"Date", "Kind", "Details", "Fine", "Amount", "Balance fine", "Balance amount"},
		{"", "Opening balance", "", "", "", l.OpeningBalance.Fine.InexactFloat64(), l.OpeningBalance.Amount.InexactFloat64()},
	}
	for i := len(l.Transactions) - 1; i >= 0; i-- {
		e := l.Transactions[i]
		row := []interface{}{
			e.Date.UTC().Format("2006-01-02"),
			string(e.Kind),
			details(e),
			e.Contribution.Fine.InexactFloat64(),
			e.Contribution.Amount.InexactFloat64(),
		}
		if e.Running != nil {
			row = append(row, e.Running.Fine.InexactFloat64(), e.Running.Amount.InexactFloat64())
		}
		rows = append(rows, row)
	}
	rows = append(rows,
		[]interface{}{"", "Period total", "", l.PeriodTotals.Fine.InexactFloat64(), l.PeriodTotals.Amount.InexactFloat64()},
		[]interface{}{"", "Closing balance", "", "", "", l.ClosingBalance.Fine.InexactFloat64(), l.ClosingBalance.Amount.InexactFloat64()},
	)

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func details(e ledger.Entry) string {
	switch {
	case e.Material != nil:
		m := e.Material
		return strings.TrimSpace(fmt.Sprintf("%s %s (%s) %s", m.TransType, m.Product, m.Mode, m.Description))
	case e.ProductGive != nil:
		names := make([]string, 0, len(e.ProductGive.Products))
		for _, p := range e.ProductGive.Products {
			names = append(names, p.Name)
		}
		return strings.TrimSpace(strings.Join(names, ", ") + " " + e.ProductGive.Description)
	case e.ProductTake != nil:
		return e.ProductTake.Description
	}
	return ""
}

func rangeLabel(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format("2006-01-02")
}
