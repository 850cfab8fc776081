package notificationapimodels

import (
	"time"

	dbmodels "glue-backend/models/db"
)

type NotificationView struct {
	ID        string     `json:"id"`
	RecordID  *string    `json:"record_id,omitempty"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func NotificationConvert(rec dbmodels.Notification) NotificationView {
	return NotificationView{
		ID:        rec.ID,
		RecordID:  rec.RecordID,
		Title:     rec.Title,
		Body:      rec.Body,
		ReadAt:    rec.ReadAt,
		CreatedAt: rec.CreatedAt,
	}
}
