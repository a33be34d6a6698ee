package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sweetdreams-bakery/storefront/database/dbtest"
	"github.com/sweetdreams-bakery/storefront/models"
)

func TestStockReportFiltersLowStock(t *testing.T) {
	db := dbtest.Seeded(t)

	var out bytes.Buffer
	require.NoError(t, runStock(context.Background(), db, []string{"-low", "8"}, &out))

	report := out.String()
	assert.Contains(t, report, "Red Velvet Cake")
	assert.Contains(t, report, "Orange Cake")
	assert.NotContains(t, report, "Croissant")
}

func TestOrdersReport(t *testing.T) {
	db := dbtest.Seeded(t)
	require.NoError(t, db.Create(&models.Order{
		OrderRef:      "20261016-abc",
		Status:        models.OrderStatusPending,
		CustomerName:  "Somchai",
		CustomerPhone: "0812345678",
		TotalAmount:   decimal.RequireFromString("90.00"),
	}).Error)

	var out bytes.Buffer
	require.NoError(t, runOrders(context.Background(), db, []string{"-status", "pending"}, &out))
	assert.Contains(t, out.String(), "20261016-abc")
	assert.Contains(t, out.String(), "90.00")

	out.Reset()
	require.NoError(t, runOrders(context.Background(), db, []string{"-status", "completed"}, &out))
	assert.NotContains(t, out.String(), "20261016-abc")

	assert.Error(t, runOrders(context.Background(), db, []string{"-status", "shipped"}, &out))
}
