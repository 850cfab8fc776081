package slaworker

import (
	"context"
	"time"

	slahandler "glue-backend/lib/sla"
	baseworker "glue-backend/lib/utils/base-worker"
	"glue-backend/lib/utils/helpers"
)

const workerName = "sla_scan"

type impl struct {
	baseworker.BaseImpl
}

// Start запускает периодический скан SLA. Используется, когда внешний
// планировщик не настроен и скан не дергают через API
func Start(ctx context.Context, interval time.Duration) {
	i := &impl{
		BaseImpl: *baseworker.NewInstance(workerName, time.Minute, interval),
	}
	go i.Run(ctx, i.run)
}

func (i impl) run(ctx context.Context) {
	if helpers.IsContextDone(ctx) {
		return
	}
	if _, err := slahandler.Instance.Scan(); err != nil {
		i.GetLogger().WithError(err).Error("ошибка скана SLA")
	}
}
