package notificationstore

import (
	"time"

	"gorm.io/gorm"

	apimodels "glue-backend/models/api"
	dbmodels "glue-backend/models/db"
)

type Provider interface {
	Create(rec dbmodels.Notification) (id string, err error)
	List(spaceID, userID string, pg apimodels.Pagination) (list []dbmodels.Notification, err error)
	ListCount(spaceID, userID string) (count int64, err error)
	UnreadCount(spaceID, userID string) (count int64, err error)
	MarkRead(spaceID, userID, id string, at time.Time) error
	MarkAllRead(spaceID, userID string, at time.Time) error
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.Notification) (id string, err error) {
	err = i.db.
		Save(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) List(spaceID, userID string, pg apimodels.Pagination) (list []dbmodels.Notification, err error) {
	list = []dbmodels.Notification{}
	page, limit := pg.GetPage()
	err = i.db.
		Where("space_id = ?", spaceID).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) ListCount(spaceID, userID string) (count int64, err error) {
	err = i.db.
		Model(&dbmodels.Notification{}).
		Where("space_id = ?", spaceID).
		Where("user_id = ?", userID).
		Count(&count).
		Error
	return count, err
}

func (i impl) UnreadCount(spaceID, userID string) (count int64, err error) {
	err = i.db.
		Model(&dbmodels.Notification{}).
		Where("space_id = ?", spaceID).
		Where("user_id = ?", userID).
		Where("read_at IS NULL").
		Count(&count).
		Error
	return count, err
}

func (i impl) MarkRead(spaceID, userID, id string, at time.Time) error {
	return i.db.
		Model(&dbmodels.Notification{}).
		Where("id = ?", id).
		Where("space_id = ?", spaceID).
		Where("user_id = ?", userID).
		Where("read_at IS NULL").
		Update("read_at", at).
		Error
}

func (i impl) MarkAllRead(spaceID, userID string, at time.Time) error {
	return i.db.
		Model(&dbmodels.Notification{}).
		Where("space_id = ?", spaceID).
		Where("user_id = ?", userID).
		Where("read_at IS NULL").
		Update("read_at", at).
		Error
}
