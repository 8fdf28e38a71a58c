package amqp

import (
	"testing"
	"time"
)

func TestExportRequestRoundTrip(t *testing.T) {
	msg := NewExportRequest(42)
	if msg.BatchID == "" {
		t.Fatal("batch id must be set")
	}
	if msg.TransactionCount != 42 {
		t.Fatalf("count: %d", msg.TransactionCount)
	}
	if time.Since(msg.RequestedAt) > time.Minute {
		t.Fatalf("requested_at: %v", msg.RequestedAt)
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := ExportRequestFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.BatchID != msg.BatchID || got.TransactionCount != msg.TransactionCount {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, msg)
	}
}

func TestExportRequestFromJSONInvalid(t *testing.T) {
	if _, err := ExportRequestFromJSON([]byte(`{"batch_id":`)); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}

func TestBatchIDsAreUnique(t *testing.T) {
	a := NewExportRequest(1)
	b := NewExportRequest(1)
	if a.BatchID == b.BatchID {
		t.Fatal("batch ids must differ")
	}
}
