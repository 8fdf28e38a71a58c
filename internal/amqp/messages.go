package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ExportRequest asks the export worker to mirror the current snapshot to the
// spreadsheets. The worker reads the dataset from storage, so the message
// stays lightweight.
type ExportRequest struct {
	BatchID          string    `json:"batch_id"`
	RequestedAt      time.Time `json:"requested_at"`
	TransactionCount int       `json:"transaction_count"`
}

func NewExportRequest(transactionCount int) *ExportRequest {
	return &ExportRequest{
		BatchID:          uuid.NewString(),
		RequestedAt:      time.Now().UTC(),
		TransactionCount: transactionCount,
	}
}

func (m *ExportRequest) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExportRequestFromJSON(data []byte) (*ExportRequest, error) {
	var msg ExportRequest
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
