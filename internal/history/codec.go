package history

import (
	"bytes"
	"encoding/json"
	"fmt"

	"textsummarizer/internal/domain"
)

func encodeRecords(records []domain.SummaryRecord) ([]byte, error) {
	if records == nil {
		records = []domain.SummaryRecord{}
	}

	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("marshal records: %w", err)
	}

	return data, nil
}

func decodeRecords(data []byte) ([]domain.SummaryRecord, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []domain.SummaryRecord{}, nil
	}

	var records []domain.SummaryRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("unmarshal records: %w", err)
	}

	if records == nil {
		records = []domain.SummaryRecord{}
	}

	return records, nil
}
