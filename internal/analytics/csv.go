package analytics

import (
	"encoding/csv"
	"io"
	"strconv"
)

var exportHeader = []string{"date", "views", "sales", "revenue", "savedCount"}

// WriteCSV renders rows under the fixed export header.
func WriteCSV(w io.Writer, rows []DayRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.Date,
			strconv.FormatInt(row.Views, 10),
			strconv.FormatInt(row.Sales, 10),
			row.Revenue.String(),
			strconv.FormatInt(row.SavedCount, 10),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
