package commenthandler

import (
	"fmt"
	"regexp"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"glue-backend/db"
	commentstore "glue-backend/lib/comment/store"
	notificationhandler "glue-backend/lib/notification"
	recordstore "glue-backend/lib/record/store"
	"glue-backend/lib/schema"
	spaceusersstore "glue-backend/lib/space/users/store"
	recordapimodels "glue-backend/models/api/record"
	dbmodels "glue-backend/models/db"
)

type Provider interface {
	Add(spaceID, recordID, userID string, data recordapimodels.CommentData) (id string, hMsg string, err error)
	Resolve(spaceID, recordID, commentID string) (hMsg string, err error)
	List(spaceID, recordID string) ([]recordapimodels.CommentView, error)
	OpenBlockers(spaceID, recordID string) (int64, error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		store:               commentstore.NewInstance(db.DB),
		recordStore:         recordstore.NewInstance(db.DB),
		userStore:           spaceusersstore.NewInstance(db.DB),
		notificationHandler: notificationhandler.Instance,
	}
}

func NewHandlerWithTx(tx *gorm.DB) Provider {
	return impl{
		store:               commentstore.NewInstance(tx),
		recordStore:         recordstore.NewInstance(tx),
		userStore:           spaceusersstore.NewInstance(tx),
		notificationHandler: notificationhandler.NewHandlerWithTx(tx),
	}
}

type impl struct {
	store               commentstore.Provider
	recordStore         recordstore.Provider
	userStore           spaceusersstore.Provider
	notificationHandler notificationhandler.Provider
}

func (i impl) Add(spaceID, recordID, userID string, data recordapimodels.CommentData) (id string, hMsg string, err error) {
	logger := log.
		WithField("space_id", spaceID).
		WithField("rec_id", recordID)
	record, err := i.recordStore.GetByID(spaceID, recordID)
	if err != nil {
		return "", "", err
	}
	if record == nil {
		return "", "Record not found", nil
	}
	rec := dbmodels.RecordComment{
		BaseSpaceModel: dbmodels.BaseSpaceModel{
			SpaceID: spaceID,
		},
		RecordID: recordID,
		AuthorID: userID,
		Kind:     data.Kind,
		Body:     data.Body,
	}
	if data.ParentID != "" {
		parent, err := i.store.GetByID(spaceID, data.ParentID)
		if err != nil {
			return "", "", err
		}
		if parent == nil || parent.RecordID != recordID {
			return "", "Parent comment not found", nil
		}
		// допускается один уровень вложенности
		if parent.ParentID != nil {
			return "", "Replies to replies are not allowed", nil
		}
		rec.ParentID = &data.ParentID
	}
	id, err = i.store.Create(rec)
	if err != nil {
		logger.WithError(err).Error("ошибка добавления комментария")
		return "", "", err
	}
	i.notifyMentions(record, rec)
	return id, "", nil
}

var mentionRe = regexp.MustCompile(`@([\w.+-]+@[\w.-]+\.\w+)`)

// notifyMentions создает уведомления для @упомянутых по email сотрудников
func (i impl) notifyMentions(record *dbmodels.Record, comment dbmodels.RecordComment) {
	logger := log.
		WithField("space_id", comment.SpaceID).
		WithField("rec_id", comment.RecordID)
	matches := mentionRe.FindAllStringSubmatch(comment.Body, -1)
	if len(matches) == 0 {
		return
	}
	title := i.recordTitle(record)
	userIDs := make([]string, 0, len(matches))
	for _, match := range matches {
		user, err := i.userStore.GetByEmail(comment.SpaceID, match[1])
		if err != nil {
			logger.WithError(err).Error("ошибка поиска упомянутого сотрудника")
			continue
		}
		if user == nil || user.ID == comment.AuthorID {
			continue
		}
		userIDs = append(userIDs, user.ID)
	}
	if len(userIDs) == 0 {
		return
	}
	i.notificationHandler.NotifyUsers(comment.SpaceID, userIDs, &comment.RecordID,
		"You were mentioned in a comment",
		fmt.Sprintf("You were mentioned in a comment on record \"%s\".", title))
}

func (i impl) recordTitle(record *dbmodels.Record) string {
	entitySchema := schema.EntitySchema{}
	if record.EntityType != nil {
		entitySchema = schema.ParseEntitySchema(record.EntityType.Schema)
	}
	return schema.RecordTitle(record.Data, entitySchema)
}

func (i impl) Resolve(spaceID, recordID, commentID string) (hMsg string, err error) {
	logger := log.
		WithField("space_id", spaceID).
		WithField("rec_id", recordID)
	rec, err := i.store.GetByID(spaceID, commentID)
	if err != nil {
		return "", err
	}
	if rec == nil || rec.RecordID != recordID {
		return "Comment not found", nil
	}
	if rec.ResolvedAt != nil {
		return "", nil
	}
	err = i.store.Resolve(spaceID, commentID, time.Now())
	if err != nil {
		logger.WithError(err).Error("ошибка резолва комментария")
		return "", err
	}
	return "", nil
}

func (i impl) List(spaceID, recordID string) ([]recordapimodels.CommentView, error) {
	recList, err := i.store.List(spaceID, recordID)
	if err != nil {
		return nil, err
	}
	result := make([]recordapimodels.CommentView, 0, len(recList))
	for _, rec := range recList {
		result = append(result, recordapimodels.CommentConvert(rec))
	}
	return result, nil
}

func (i impl) OpenBlockers(spaceID, recordID string) (int64, error) {
	return i.store.CountOpenBlockers(spaceID, recordID)
}
