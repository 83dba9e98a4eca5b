package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventType_String(t *testing.T) {
	tests := []struct {
		name     string
		et       EventType
		expected string
	}{
		{"created", EventTypeCreated, "created"},
		{"updated", EventTypeUpdated, "updated"},
		{"deleted", EventTypeDeleted, "deleted"},
		{"recategorized", EventTypeRecategorized, "recategorized"},
		{"generated", EventTypeGenerated, "generated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.et))
		})
	}
}

func TestEntityType_String(t *testing.T) {
	tests := []struct {
		name     string
		et       EntityType
		expected string
	}{
		{"transaction", EntityTypeTransaction, "transaction"},
		{"receipt", EntityTypeReceipt, "receipt"},
		{"rule", EntityTypeRule, "rule"},
		{"report", EntityTypeReport, "report"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.et))
		})
	}
}

func TestNewEvent(t *testing.T) {
	payload := map[string]interface{}{
		"id":          1,
		"description": "Fuel",
		"amount":      "-80.00",
	}

	before := time.Now()
	evt := NewEvent(EventTypeCreated, EntityTypeTransaction, payload)
	after := time.Now()

	assert.Equal(t, "transaction.created", evt.Type)
	assert.Equal(t, EntityTypeTransaction, evt.Entity)
	assert.Equal(t, payload, evt.Payload)
	assert.True(t, !evt.Timestamp.Before(before) && !evt.Timestamp.After(after))
}

func TestEvent_JSON_Serialization(t *testing.T) {
	fixedTime := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
	payload := map[string]interface{}{
		"id":          float64(1),
		"description": "Fuel",
		"amount":      "-80.00",
	}

	evt := Event{
		Type:      "transaction.created",
		Entity:    EntityTypeTransaction,
		Payload:   payload,
		Timestamp: fixedTime,
	}

	data, err := json.Marshal(evt)
	require.NoError(t, err)

	var decoded Event
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)

	assert.Equal(t, evt.Type, decoded.Type)
	assert.Equal(t, evt.Entity, decoded.Entity)
	assert.Equal(t, fixedTime.UTC(), decoded.Timestamp.UTC())

	decodedPayload, ok := decoded.Payload.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), decodedPayload["id"])
	assert.Equal(t, "Fuel", decodedPayload["description"])
	assert.Equal(t, "-80.00", decodedPayload["amount"])
}

func TestEvent_ToJSON(t *testing.T) {
	payload := map[string]interface{}{
		"id": float64(42),
	}

	evt := NewEvent(EventTypeRecategorized, EntityTypeTransaction, payload)

	data, err := evt.ToJSON()
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	var decoded map[string]interface{}
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)

	assert.Equal(t, "transaction.recategorized", decoded["type"])
	assert.Equal(t, "transaction", decoded["entity"])
	assert.NotNil(t, decoded["payload"])
	assert.NotNil(t, decoded["timestamp"])
}

func TestTransactionEvent_Helpers(t *testing.T) {
	txPayload := map[string]interface{}{
		"id":          float64(1),
		"description": "Office chair",
		"amount":      "-350.00",
	}

	t.Run("TransactionCreated", func(t *testing.T) {
		evt := TransactionCreated(txPayload)
		assert.Equal(t, "transaction.created", evt.Type)
		assert.Equal(t, EntityTypeTransaction, evt.Entity)
		assert.Equal(t, txPayload, evt.Payload)
	})

	t.Run("TransactionUpdated", func(t *testing.T) {
		evt := TransactionUpdated(txPayload)
		assert.Equal(t, "transaction.updated", evt.Type)
		assert.Equal(t, EntityTypeTransaction, evt.Entity)
		assert.Equal(t, txPayload, evt.Payload)
	})

	t.Run("TransactionRecategorized", func(t *testing.T) {
		evt := TransactionRecategorized(txPayload)
		assert.Equal(t, "transaction.recategorized", evt.Type)
		assert.Equal(t, EntityTypeTransaction, evt.Entity)
		assert.Equal(t, txPayload, evt.Payload)
	})

	t.Run("TransactionDeleted", func(t *testing.T) {
		evt := TransactionDeleted(txPayload)
		assert.Equal(t, "transaction.deleted", evt.Type)
		assert.Equal(t, EntityTypeTransaction, evt.Entity)
		assert.Equal(t, txPayload, evt.Payload)
	})
}

func TestReceiptEvent_Helpers(t *testing.T) {
	payload := map[string]interface{}{
		"id":       float64(7),
		"merchant": "Officeworks",
	}

	t.Run("ReceiptCreated", func(t *testing.T) {
		evt := ReceiptCreated(payload)
		assert.Equal(t, "receipt.created", evt.Type)
		assert.Equal(t, EntityTypeReceipt, evt.Entity)
		assert.Equal(t, payload, evt.Payload)
	})

	t.Run("ReceiptImageAttached", func(t *testing.T) {
		evt := ReceiptImageAttached(payload)
		assert.Equal(t, "receipt.image_attached", evt.Type)
		assert.Equal(t, EntityTypeReceipt, evt.Entity)
		assert.Equal(t, payload, evt.Payload)
	})

	t.Run("ReceiptDeleted", func(t *testing.T) {
		evt := ReceiptDeleted(payload)
		assert.Equal(t, "receipt.deleted", evt.Type)
		assert.Equal(t, EntityTypeReceipt, evt.Entity)
		assert.Equal(t, payload, evt.Payload)
	})
}

func TestReportGenerated(t *testing.T) {
	payload := map[string]interface{}{
		"taxPeriod": "2024Q2",
		"netGST":    "-250.00",
	}

	evt := ReportGenerated(payload)
	assert.Equal(t, "report.generated", evt.Type)
	assert.Equal(t, EntityTypeReport, evt.Entity)
	assert.Equal(t, payload, evt.Payload)
}
