// Package csvexport writes tabular exports with an explicit
// field-to-column mapping per row type. No reflection: the column
// table below is the single source of truth for header names, order
// and cell rendering.
package csvexport

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RequestRow is one flattened (request, detail line) pair.
type RequestRow struct {
	RefNo                uuid.UUID
	RequestStatus        string
	UserEmail            string
	Qty                  int64
	ProductDisplayName   string
	ProductPrice         decimal.Decimal
	ProductPriceCurrency string
}

type requestColumn struct {
	header string
	value  func(RequestRow) string
}

var requestColumns = []requestColumn{
	{"ref_no", func(r RequestRow) string { return r.RefNo.String() }},
	{"request_status", func(r RequestRow) string { return r.RequestStatus }},
	{"user_email", func(r RequestRow) string { return r.UserEmail }},
	{"quantity", func(r RequestRow) string { return strconv.FormatInt(r.Qty, 10) }},
	{"product_name", func(r RequestRow) string { return r.ProductDisplayName }},
	{"product_price", func(r RequestRow) string { return r.ProductPrice.String() }},
	{"product_currency", func(r RequestRow) string { return r.ProductPriceCurrency }},
}

// WriteRequests renders the header row followed by one record per row.
func WriteRequests(w io.Writer, rows []RequestRow) error {
	cw := csv.NewWriter(w)

	header := make([]string, len(requestColumns))
	for i, col := range requestColumns {
		header[i] = col.header
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	record := make([]string, len(requestColumns))
	for _, row := range rows {
		for i, col := range requestColumns {
			record[i] = col.value(row)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
