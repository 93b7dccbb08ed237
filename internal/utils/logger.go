package utils

import "go.uber.org/zap"

// NewLogger builds the process-wide zap logger. Development mode gets the
// human-readable console encoder, everything else gets production JSON.
func NewLogger(env string) *zap.Logger {
	var (
		log *zap.Logger
		err error
	)
	if env == "development" {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	return log
}

func NewSugaredLogger(env string) *zap.SugaredLogger {
	return NewLogger(env).Sugar()
}
