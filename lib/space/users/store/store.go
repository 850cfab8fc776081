package spaceusersstore

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	dbmodels "glue-backend/models/db"
)

type Provider interface {
	GetByID(id string) (rec *dbmodels.SpaceUser, err error)
	GetByEmail(spaceID, email string) (rec *dbmodels.SpaceUser, err error)
	ListByIDs(spaceID string, ids []string) (list []dbmodels.SpaceUser, err error)
	List(spaceID string) (list []dbmodels.SpaceUser, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) GetByID(id string) (*dbmodels.SpaceUser, error) {
	rec := dbmodels.SpaceUser{}
	err := i.db.
		Where("id = ?", id).
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

func (i impl) GetByEmail(spaceID, email string) (*dbmodels.SpaceUser, error) {
	rec := dbmodels.SpaceUser{}
	err := i.db.
		Where("space_id = ?", spaceID).
		Where("email = ?", email).
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

func (i impl) List(spaceID string) (list []dbmodels.SpaceUser, err error) {
	list = []dbmodels.SpaceUser{}
	err = i.db.
		Where("space_id = ?", spaceID).
		Order("last_name, first_name").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) ListByIDs(spaceID string, ids []string) (list []dbmodels.SpaceUser, err error) {
	list = []dbmodels.SpaceUser{}
	if len(ids) == 0 {
		return list, nil
	}
	err = i.db.
		Where("space_id = ?", spaceID).
		Where("id IN ?", ids).
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
