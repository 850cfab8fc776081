package initializers

import (
	"context"
	"time"

	"glue-backend/config"
	"glue-backend/fiberlog"
	audithandler "glue-backend/lib/audit"
	automationhandler "glue-backend/lib/automation"
	commenthandler "glue-backend/lib/comment"
	entitytypehandler "glue-backend/lib/entity-type"
	xlsexport "glue-backend/lib/export/xls"
	notificationhandler "glue-backend/lib/notification"
	recordhandler "glue-backend/lib/record"
	slahandler "glue-backend/lib/sla"
	slaworker "glue-backend/lib/sla/worker"
	workflowhandler "glue-backend/lib/workflow"
)

var LoggerConfig *fiberlog.Config

func InitAllServices(ctx context.Context) {
	LoggerConfig = InitLogger()
	config.InitConfig()
	InitDBConnection()
	InitSmtp()

	// порядок важен: хендлеры ссылаются на Instance друг друга
	audithandler.NewHandler()
	notificationhandler.NewHandler()
	entitytypehandler.NewHandler()
	automationhandler.NewHandler()
	commenthandler.NewHandler()
	recordhandler.NewHandler()
	workflowhandler.NewHandler()
	slahandler.NewHandler()
	xlsexport.NewHandler()

	// фоновый скан SLA нужен только без внешнего планировщика
	if config.Conf.Sla.WorkerEnabled != nil && *config.Conf.Sla.WorkerEnabled {
		slaworker.Start(ctx, time.Duration(config.Conf.Sla.WorkerIntervalMin)*time.Minute)
	}
}
