package dto

import "github.com/recordbox/recordbox/internal/model"

// RecordRequest is the body for creating a record or fully replacing one.
type RecordRequest struct {
	Title string `json:"title"`
	Img   string `json:"img"`
}

// RecordPatchRequest carries only the fields present in a partial update.
type RecordPatchRequest struct {
	Title *string `json:"title,omitempty"`
	Img   *string `json:"img,omitempty"`
}

// RecordResponse represents a record in API responses.
type RecordResponse struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Img   string `json:"img"`
}

// ToRecordResponse converts a domain record to its API shape.
func ToRecordResponse(record *model.Record) RecordResponse {
	return RecordResponse{
		ID:    record.ID,
		Title: record.Title,
		Img:   record.Img,
	}
}

// ToRecordListResponse converts a page of records to its API shape.
func ToRecordListResponse(records []model.Record) []RecordResponse {
	out := make([]RecordResponse, len(records))
	for i := range records {
		out[i] = ToRecordResponse(&records[i])
	}
	return out
}
