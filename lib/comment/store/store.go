package commentstore

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"glue-backend/models"
	dbmodels "glue-backend/models/db"
)

type Provider interface {
	Create(rec dbmodels.RecordComment) (id string, err error)
	GetByID(spaceID, id string) (rec *dbmodels.RecordComment, err error)
	List(spaceID, recordID string) (list []dbmodels.RecordComment, err error)
	Resolve(spaceID, id string, at time.Time) error
	CountOpenBlockers(spaceID, recordID string) (count int64, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.RecordComment) (id string, err error) {
	err = i.db.
		Omit("Author").
		Save(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) GetByID(spaceID, id string) (*dbmodels.RecordComment, error) {
	rec := dbmodels.RecordComment{}
	err := i.db.
		Where("id = ?", id).
		Where("space_id = ?", spaceID).
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (i impl) List(spaceID, recordID string) (list []dbmodels.RecordComment, err error) {
	list = []dbmodels.RecordComment{}
	err = i.db.
		Where("space_id = ?", spaceID).
		Where("record_id = ?", recordID).
		Order("created_at ASC").
		Preload("Author").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) Resolve(spaceID, id string, at time.Time) error {
	return i.db.
		Model(&dbmodels.RecordComment{}).
		Where("id = ?", id).
		Where("space_id = ?", spaceID).
		Where("resolved_at IS NULL").
		Update("resolved_at", at).
		Error
}

func (i impl) CountOpenBlockers(spaceID, recordID string) (count int64, err error) {
	err = i.db.
		Model(&dbmodels.RecordComment{}).
		Where("space_id = ?", spaceID).
		Where("record_id = ?", recordID).
		Where("kind = ?", models.CommentKindBlocker).
		Where("resolved_at IS NULL").
		Count(&count).
		Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
