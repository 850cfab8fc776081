package fiberlog

import "github.com/sirupsen/logrus"

// Config настраивает middleware логирования запросов.
// Logger == nil означает стандартный логгер logrus
type Config struct {
	Logger *logrus.Logger
	Tags   []string
}

var ConfigDefault = Config{
	Tags: []string{
		TagStatus,
		TagLatency,
		TagMethod,
		TagPath,
		RequestID,
	},
}
