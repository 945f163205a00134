package job

import (
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// retryLogger sends retryablehttp's logging through zerolog.
type retryLogger struct{}

var _ retryablehttp.LeveledLogger = retryLogger{}

func (retryLogger) Error(msg string, keysAndValues ...interface{}) {
	logKV(log.Error(), msg, keysAndValues)
}

func (retryLogger) Info(msg string, keysAndValues ...interface{}) {
	logKV(log.Debug(), msg, keysAndValues)
}

func (retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	logKV(log.Trace(), msg, keysAndValues)
}

func (retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	logKV(log.Warn(), msg, keysAndValues)
}

func logKV(e *zerolog.Event, msg string, keysAndValues []interface{}) {
	e.Fields(keysAndValues).Msg(msg)
}

func newHTTPClient(retries int) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = retries
	client.Logger = retryLogger{}
	return client
}
