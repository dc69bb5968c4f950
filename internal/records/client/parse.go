package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"recordsync/internal/records/models"
)

// errorBody is the optional JSON body a store sends with a 4xx answer.
type errorBody struct {
	Error   string `json:"error"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// classifyStatus maps a store answer onto the error taxonomy. A 2xx answer
// is nil.
func classifyStatus(op string, id models.RecordID, status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}

	switch status {
	case http.StatusNotFound:
		switch op {
		case OpRemove:
			// already gone
			return nil
		case OpGet, OpUpdate:
			return models.NewNotFoundError(op, id)
		}
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		if op == OpCreate || op == OpUpdate {
			eb := decodeErrorBody(body)
			field, _ := models.ParseField(eb.Field)
			msg := eb.Message
			if msg == "" {
				msg = "rejected by record store"
			}
			verr := models.NewValidationError(op, field, msg)
			verr.StatusCode = status
			return verr
		}
	}

	msg := fmt.Sprintf("unexpected status %d", status)
	if eb := decodeErrorBody(body); eb.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, eb.Message)
	}
	return models.NewTransportError(op, status, msg, nil)
}

func decodeErrorBody(body []byte) errorBody {
	var eb errorBody
	if len(bytes.TrimSpace(body)) == 0 {
		return eb
	}
	_ = json.Unmarshal(body, &eb)
	eb.Field = strings.TrimSpace(eb.Field)
	return eb
}

func parseRecord(op string, body []byte) (models.Record, error) {
	var record models.Record
	if err := json.Unmarshal(body, &record); err != nil {
		return models.Record{}, models.NewTransportError(op, 0, "malformed record in response", err)
	}
	return record, nil
}

func parseRecords(op string, body []byte) ([]models.Record, error) {
	var records []models.Record
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, models.NewTransportError(op, 0, "malformed record list in response", err)
	}
	if records == nil {
		records = []models.Record{}
	}
	return records, nil
}
