package csvexport

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRequestsHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRequests(&buf, nil))
	assert.Equal(t, "ref_no,request_status,user_email,quantity,product_name,product_price,product_currency\n", buf.String())
}

func TestWriteRequestsRows(t *testing.T) {
	ref := uuid.MustParse("e6f6ddb0-02dd-4106-8716-e6ffa329c664")
	rows := []RequestRow{
		{
			RefNo:                ref,
			RequestStatus:        "Pending",
			UserEmail:            "a@x.com",
			Qty:                  9,
			ProductDisplayName:   "Product1",
			ProductPrice:         decimal.RequireFromString("5.99"),
			ProductPriceCurrency: "Euro",
		},
		{
			RefNo:                ref,
			RequestStatus:        "Pending",
			UserEmail:            "a@x.com",
			Qty:                  2,
			ProductDisplayName:   "Product2",
			ProductPrice:         decimal.NewFromInt(15),
			ProductPriceCurrency: "Euro",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRequests(&buf, rows))

	want := "ref_no,request_status,user_email,quantity,product_name,product_price,product_currency\n" +
		ref.String() + ",Pending,a@x.com,9,Product1,5.99,Euro\n" +
		ref.String() + ",Pending,a@x.com,2,Product2,15,Euro\n"
	assert.Equal(t, want, buf.String())
}
