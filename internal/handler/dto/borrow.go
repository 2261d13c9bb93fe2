package dto

import (
	"time"

	"github.com/biblio/biblio/internal/model"
)

// BorrowRecordResponse represents one ledger entry in API responses.
type BorrowRecordResponse struct {
	ID         string        `json:"id"`
	Book       *BookResponse `json:"book,omitempty"`
	BorrowedAt time.Time     `json:"borrowed_at"`
	ReturnedAt *time.Time    `json:"returned_at"`
}

// ToBorrowRecordResponse converts a BorrowRecord model.
func ToBorrowRecordResponse(record *model.BorrowRecord) *BorrowRecordResponse {
	response := &BorrowRecordResponse{
		ID:         record.ID,
		BorrowedAt: record.BorrowedAt,
		ReturnedAt: record.ReturnedAt,
	}
	if record.Book != nil {
		response.Book = ToBookResponse(record.Book)
	}
	return response
}

// ToBorrowHistoryResponse converts a slice of BorrowRecord models.
func ToBorrowHistoryResponse(records []*model.BorrowRecord) []BorrowRecordResponse {
	responses := make([]BorrowRecordResponse, len(records))
	for i, record := range records {
		responses[i] = *ToBorrowRecordResponse(record)
	}
	return responses
}
