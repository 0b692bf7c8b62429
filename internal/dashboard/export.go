package dashboard

import (
	"encoding/csv"
	"io"
	"strconv"
)

// WriteCSV serialises the snapshot as two sections: the headline figures and
// the monthly series.
func WriteCSV(w io.Writer, snap Snapshot) error {
	writer := csv.NewWriter(w)
	records := [][]string{
		{"Metric", "Value"},
		{"Total Revenue", snap.TotalRevenue.StringFixed(2)},
		{"Total Expenses", snap.TotalExpenses.StringFixed(2)},
		{"Net Profit", snap.NetProfit.StringFixed(2)},
		{"Items In Stock", strconv.FormatInt(snap.TotalItemsInStock, 10)},
		{"Receivables Outstanding", snap.ReceivablesOutstanding.StringFixed(2)},
		{"Payables Outstanding", snap.PayablesOutstanding.StringFixed(2)},
		{},
		{"Month", "Sales", "Purchases"},
	}
	for _, p := range snap.SalesVsPurchases {
		records = append(records, []string{p.Month, p.Sales.StringFixed(2), p.Purchases.StringFixed(2)})
	}
	if err := writer.WriteAll(records); err != nil {
		return err
	}
	return writer.Error()
}
