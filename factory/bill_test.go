package factory_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/bill-engine/billing"
	"github.com/warp/bill-engine/factory"
)

func TestParseBill_CurrentSchema(t *testing.T) {
	f := factory.NewBillFactory()

	bill, err := f.ParseBill(`{
		"schema_version": 2,
		"name": "Electric",
		"due_date": "2025-03-01",
		"billing_cycle": "monthly",
		"reminder_days": 10,
		"category": "Utilities",
		"payment_method": "Auto-Pay",
		"amount": "84.50",
		"account_number": "ACCT-1"
	}`)
	require.NoError(t, err)

	assert.Equal(t, "Electric", bill.Name)
	assert.Equal(t, billing.CycleMonthly, bill.Cycle)
	assert.Equal(t, 10, bill.ReminderDays)
	assert.True(t, bill.DueDate.Equal(billing.NewDate(2025, time.March, 1)))
	assert.False(t, bill.Paid)
	assert.Equal(t, "Utilities", bill.Payload.Category)
	assert.Equal(t, "84.5", bill.Payload.Amount.String())
	assert.NotEmpty(t, bill.ID, "factory must assign an ID when none is given")
}

func TestParseBill_LegacySchema_DefaultsAndNormalizes(t *testing.T) {
	f := factory.NewBillFactory()

	tests := []struct {
		name      string
		jsonStr   string
		wantCycle billing.Cycle
	}{
		{"missing cycle defaults to monthly", `{"name":"A","due_date":"2025-01-01"}`, billing.CycleMonthly},
		{"bi-weekly normalized", `{"name":"B","due_date":"2025-01-01","billing_cycle":"bi-weekly"}`, billing.CycleBiweekly},
		{"semi-annually normalized", `{"name":"C","due_date":"2025-01-01","billing_cycle":"semi-annually"}`, billing.CycleSemiannual},
		{"annually normalized", `{"name":"D","due_date":"2025-01-01","billing_cycle":"annually"}`, billing.CycleAnnual},
		{"one-time normalized", `{"name":"E","due_date":"2025-01-01","billing_cycle":"one-time"}`, billing.CycleOneTime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bill, err := f.ParseBill(tt.jsonStr)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCycle, bill.Cycle)
			assert.Equal(t, billing.DefaultReminderDays, bill.ReminderDays)
		})
	}
}

func TestParseBill_CurrentSchema_RejectsLegacyAndMissing(t *testing.T) {
	f := factory.NewBillFactory()

	_, err := f.ParseBill(`{"schema_version":2,"name":"A","due_date":"2025-01-01","billing_cycle":"annually","reminder_days":7}`)
	assert.Error(t, err, "legacy spelling must be rejected at current schema")

	_, err = f.ParseBill(`{"schema_version":2,"name":"A","due_date":"2025-01-01","billing_cycle":"annual"}`)
	assert.Error(t, err, "missing reminder_days must be rejected at current schema")
}

func TestParseBill_Validation(t *testing.T) {
	f := factory.NewBillFactory()

	tests := []struct {
		name    string
		jsonStr string
	}{
		{"empty name", `{"name":"  ","due_date":"2025-01-01"}`},
		{"name too long", `{"name":"` + strings.Repeat("x", 101) + `","due_date":"2025-01-01"}`},
		{"unsafe character", `{"name":"Rent|March","due_date":"2025-01-01"}`},
		{"impossible date", `{"name":"A","due_date":"2025-02-30"}`},
		{"unknown cycle", `{"name":"A","due_date":"2025-01-01","billing_cycle":"fortnightly"}`},
		{"reminder below range", `{"name":"A","due_date":"2025-01-01","reminder_days":0}`},
		{"reminder above range", `{"name":"A","due_date":"2025-01-01","reminder_days":366}`},
		{"bad amount", `{"name":"A","due_date":"2025-01-01","amount":"12.x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ParseBill(tt.jsonStr)
			assert.Error(t, err)
		})
	}
}

func TestFromTemplate_FreshIdentityAndUnpaid(t *testing.T) {
	f := factory.NewBillFactory()

	tpl, err := f.ParseBill(`{"name":"Netflix","due_date":"2025-01-05","billing_cycle":"monthly","category":"Streaming"}`)
	require.NoError(t, err)
	tpl.Paid = true // templates may carry any state; instantiation resets it

	got := f.FromTemplate(tpl, billing.NewDate(2025, time.June, 5))
	assert.NotEqual(t, tpl.ID, got.ID)
	assert.False(t, got.Paid)
	assert.True(t, got.DueDate.Equal(billing.NewDate(2025, time.June, 5)))
	assert.Equal(t, "Streaming", got.Payload.Category)
}

func TestToJSON_RoundTrip(t *testing.T) {
	f := factory.NewBillFactory()

	bill, err := f.ParseBill(`{"schema_version":2,"name":"Water","due_date":"2025-04-10","billing_cycle":"quarterly","reminder_days":14,"amount":"31.25"}`)
	require.NoError(t, err)

	bj := factory.ToJSON(bill)
	assert.Equal(t, factory.CurrentSchemaVersion, bj.SchemaVersion)

	back, err := f.FromJSON(bj)
	require.NoError(t, err)
	assert.Equal(t, bill, back)
}
