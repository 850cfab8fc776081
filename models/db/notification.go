package dbmodels

import "time"

type Notification struct {
	BaseSpaceModel
	UserID   string  `gorm:"type:varchar(36);index"`
	RecordID *string `gorm:"type:varchar(36)"`
	Title    string  `gorm:"type:varchar(255)"`
	Body     string
	ReadAt   *time.Time
}
