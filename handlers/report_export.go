package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"p9e.in/transportpro/config"
	"p9e.in/transportpro/middleware"
	"p9e.in/transportpro/models"
)

var reportHeader = []string{
	"Sl No", "Branch", "Date", "Car Number", "Name", "Phone",
	"Vendor", "Trip", "Wheels", "CFT", "Cost", "Cash", "UPI",
}

// ExportReport streams the caller's visible, filtered entries as a
// downloadable report. format=csv or format=xlsx, default csv. A
// totals row closes the sheet.
func ExportReport(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	filter, err := parseScopedFilter(r, user)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var entries []models.Entry
	q := filter.Apply(config.DB.Scopes(middleware.EntryScope(user)))
	if err := q.Find(&entries).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load entries")
		return
	}

	names := branchNameMap()
	stamp := time.Now().Format("2006-01-02")

	switch r.URL.Query().Get("format") {
	case "xlsx":
		exportXLSX(w, entries, names, stamp)
	case "", "csv":
		exportCSV(w, entries, names, stamp)
	default:
		respondError(w, http.StatusBadRequest, "format must be csv or xlsx")
	}
}

func rowValues(e models.Entry, branchName string) []string {
	vendor := e.COVendor
	if vendor == "" {
		vendor = e.Vendor
	}
	return []string{
		strconv.Itoa(e.SlNo),
		branchName,
		e.DateTime.Time().Format("2006-01-02 15:04"),
		e.CarNumber,
		e.Name,
		e.PhoneNumber,
		vendor,
		e.Trip,
		strconv.Itoa(e.Wheels),
		strconv.FormatFloat(e.Cft, 'f', 2, 64),
		strconv.FormatFloat(e.Cost, 'f', 2, 64),
		strconv.FormatFloat(e.Cash, 'f', 2, 64),
		strconv.FormatFloat(e.Upi, 'f', 2, 64),
	}
}

func totalsRow(entries []models.Entry) []string {
	var cft, cost, cash, upi float64
	for _, e := range entries {
		cft += e.Cft
		cost += e.Cost
		cash += e.Cash
		upi += e.Upi
	}
	return []string{
		"", "Total", "", "", "", "", "", "",
		strconv.Itoa(len(entries)),
		strconv.FormatFloat(cft, 'f', 2, 64),
		strconv.FormatFloat(cost, 'f', 2, 64),
		strconv.FormatFloat(cash, 'f', 2, 64),
		strconv.FormatFloat(upi, 'f', 2, 64),
	}
}

func exportCSV(w http.ResponseWriter, entries []models.Entry, names map[uuid.UUID]string, stamp string) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="transport-report-%s.csv"`, stamp))

	cw := csv.NewWriter(w)
	cw.Write(reportHeader)
	for _, e := range entries {
		cw.Write(rowValues(e, names[e.BranchID]))
	}
	cw.Write(totalsRow(entries))
	cw.Flush()
}

func exportXLSX(w http.ResponseWriter, entries []models.Entry, names map[uuid.UUID]string, stamp string) {
	f := excelize.NewFile()
	sheet := "Report"
	f.SetSheetName("Sheet1", sheet)

	writeRow := func(rowIdx int, values []string) {
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowIdx)
			f.SetCellValue(sheet, cell, v)
		}
	}

	writeRow(1, reportHeader)
	for i, e := range entries {
		writeRow(i+2, rowValues(e, names[e.BranchID]))
	}
	writeRow(len(entries)+2, totalsRow(entries))

	buf, err := f.WriteToBuffer()
	if err != nil {
		zap.L().Error("xlsx export failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to build report")
		return
	}

	w.Header().Set("Content-Type",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="transport-report-%s.xlsx"`, stamp))
	w.Write(buf.Bytes())
}
