package fiberlog

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	TagPid      = "pid"
	TagStatus   = "status"
	TagLatency  = "latency"
	TagMethod   = "method"
	TagPath     = "path"
	TagIP       = "ip"
	TagBody     = "body"
	TagResBody  = "res_body"
	RequestID   = "request_id"
	TagUA       = "user_agent"
	TagReferer  = "referer"
	TagProtocol = "protocol"
)

type data struct {
	pid   int
	start time.Time
	end   time.Time
}

// FuncTag извлекает значение поля лога из контекста запроса
type FuncTag func(c *fiber.Ctx, d *data) any

var funcTagMap = map[string]FuncTag{
	TagPid: func(c *fiber.Ctx, d *data) any {
		return d.pid
	},
	TagStatus: func(c *fiber.Ctx, d *data) any {
		return c.Response().StatusCode()
	},
	TagLatency: func(c *fiber.Ctx, d *data) any {
		return d.end.Sub(d.start).String()
	},
	TagMethod: func(c *fiber.Ctx, d *data) any {
		return c.Method()
	},
	TagPath: func(c *fiber.Ctx, d *data) any {
		return c.Path()
	},
	TagIP: func(c *fiber.Ctx, d *data) any {
		return c.IP()
	},
	TagBody: func(c *fiber.Ctx, d *data) any {
		return string(c.Body())
	},
	TagResBody: func(c *fiber.Ctx, d *data) any {
		return string(c.Response().Body())
	},
	RequestID: func(c *fiber.Ctx, d *data) any {
		return c.Get(fiber.HeaderXRequestID)
	},
	TagUA: func(c *fiber.Ctx, d *data) any {
		return c.Get(fiber.HeaderUserAgent)
	},
	TagReferer: func(c *fiber.Ctx, d *data) any {
		return c.Get(fiber.HeaderReferer)
	},
	TagProtocol: func(c *fiber.Ctx, d *data) any {
		return c.Protocol()
	},
}

func getFuncTagMap(cfg Config) map[string]FuncTag {
	result := make(map[string]FuncTag, len(cfg.Tags))
	for _, tag := range cfg.Tags {
		if ft, exist := funcTagMap[tag]; exist {
			result[tag] = ft
		}
	}
	return result
}
