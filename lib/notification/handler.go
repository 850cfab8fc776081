package notificationhandler

import (
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"glue-backend/db"
	notificationstore "glue-backend/lib/notification/store"
	"glue-backend/lib/smtp"
	spaceusersstore "glue-backend/lib/space/users/store"
	apimodels "glue-backend/models/api"
	notificationapimodels "glue-backend/models/api/notification"
	dbmodels "glue-backend/models/db"
)

type Provider interface {
	// NotifyUsers создает по уведомлению на каждого получателя,
	// дубликаты в списке схлопываются
	NotifyUsers(spaceID string, userIDs []string, recordID *string, title, body string) (notified int)
	List(spaceID, userID string, pg apimodels.Pagination) ([]notificationapimodels.NotificationView, int64, error)
	UnreadCount(spaceID, userID string) (int64, error)
	MarkRead(spaceID, userID, id string) error
	MarkAllRead(spaceID, userID string) error
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		store:     notificationstore.NewInstance(db.DB),
		userStore: spaceusersstore.NewInstance(db.DB),
		emailOn:   true,
	}
}

func NewHandlerWithTx(tx *gorm.DB) Provider {
	return impl{
		store:     notificationstore.NewInstance(tx),
		userStore: spaceusersstore.NewInstance(tx),
	}
}

type impl struct {
	store     notificationstore.Provider
	userStore spaceusersstore.Provider
	emailOn   bool
}

func (i impl) NotifyUsers(spaceID string, userIDs []string, recordID *string, title, body string) (notified int) {
	logger := log.WithField("space_id", spaceID)
	seen := map[string]bool{}
	for _, userID := range userIDs {
		if userID == "" || seen[userID] {
			continue
		}
		seen[userID] = true
		rec := dbmodels.Notification{
			BaseSpaceModel: dbmodels.BaseSpaceModel{
				SpaceID: spaceID,
			},
			UserID:   userID,
			RecordID: recordID,
			Title:    title,
			Body:     body,
		}
		_, err := i.store.Create(rec)
		if err != nil {
			logger.
				WithField("user_id", userID).
				WithError(err).
				Error("ошибка создания уведомления")
			continue
		}
		notified++
		if i.emailOn {
			go i.sendEmail(spaceID, userID, title, body)
		}
	}
	return notified
}

// sendEmail - доставка поверх созданной записи, сбой не влияет на результат
func (i impl) sendEmail(spaceID, userID, title, body string) {
	if smtp.Instance == nil {
		return
	}
	logger := log.
		WithField("space_id", spaceID).
		WithField("user_id", userID)
	user, err := i.userStore.GetByID(userID)
	if err != nil || user == nil || user.Email == "" {
		return
	}
	if err = smtp.Instance.SendEMail(user.Email, title, body); err != nil {
		logger.WithError(err).Error("ошибка отправки письма с уведомлением")
	}
}

func (i impl) List(spaceID, userID string, pg apimodels.Pagination) ([]notificationapimodels.NotificationView, int64, error) {
	rowCount, err := i.store.ListCount(spaceID, userID)
	if err != nil {
		return nil, 0, err
	}
	recList, err := i.store.List(spaceID, userID, pg)
	if err != nil {
		return nil, 0, err
	}
	result := make([]notificationapimodels.NotificationView, 0, len(recList))
	for _, rec := range recList {
		result = append(result, notificationapimodels.NotificationConvert(rec))
	}
	return result, rowCount, nil
}

func (i impl) UnreadCount(spaceID, userID string) (int64, error) {
	return i.store.UnreadCount(spaceID, userID)
}

func (i impl) MarkRead(spaceID, userID, id string) error {
	return i.store.MarkRead(spaceID, userID, id, time.Now())
}

func (i impl) MarkAllRead(spaceID, userID string) error {
	return i.store.MarkAllRead(spaceID, userID, time.Now())
}
