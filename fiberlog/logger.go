package fiberlog

import (
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

func getLogrusFields(ftm map[string]FuncTag, c *fiber.Ctx, d *data) log.Fields {
	f := make(log.Fields)
	for k, ft := range ftm {
		value := ft(c, d)
		if strValue, ok := value.(string); ok {
			if strValue != "" {
				f[k] = strValue
			}
		} else {
			f[k] = value
		}
	}
	return f
}

// New собирает middleware доступа: поля берутся из cfg.Tags,
// уровень определяется статусом ответа
func New(config ...Config) fiber.Handler {
	cfg := ConfigDefault
	if len(config) > 0 {
		cfg = config[0]
	}
	pid := os.Getpid()
	ftm := getFuncTagMap(cfg)
	return func(c *fiber.Ctx) error {
		// data на каждый запрос: времена нельзя делить между горутинами
		d := &data{pid: pid, start: time.Now()}
		err := c.Next()
		d.end = time.Now()
		if c.Method() == fiber.MethodOptions {
			return err
		}

		logger := cfg.Logger
		if logger == nil {
			logger = log.StandardLogger()
		}
		entry := logger.WithFields(getLogrusFields(ftm, c, d))
		status := c.Response().StatusCode()
		switch {
		case status >= fiber.StatusInternalServerError:
			entry.Error("запрос завершился ошибкой")
		case status >= fiber.StatusMultipleChoices:
			entry.Warn("запрос отклонен")
		default:
			entry.Info("запрос обработан")
		}
		return err
	}
}
