package loggerfx

import (
	"log"

	"github.com/sirupsen/logrus"
	"go.uber.org/fx/fxevent"
)

// DefaultLoggerAdapter is for consumers that only speak the standard logger.
func DefaultLoggerAdapter(logger *logrus.Logger) *log.Logger {
	return log.New(logger.WriterLevel(logrus.ErrorLevel), "", 0)
}

type fxLogger struct {
	logger logrus.FieldLogger
}

// FxEventLogger routes fx lifecycle events into logrus: failures as errors,
// everything else at debug level.
func FxEventLogger(logger *logrus.Logger) fxevent.Logger {
	return &fxLogger{logger: logger.WithField("component", "fx")}
}

func (l *fxLogger) LogEvent(event fxevent.Event) {
	switch e := event.(type) {
	case *fxevent.Provided:
		if e.Err != nil {
			l.logger.WithError(e.Err).WithField("constructor", e.ConstructorName).Error("Provide failed")
			return
		}
		l.logger.WithField("types", e.OutputTypeNames).Debug("Provided")
	case *fxevent.Invoked:
		if e.Err != nil {
			l.logger.WithError(e.Err).WithField("function", e.FunctionName).Error("Invoke failed")
			return
		}
		l.logger.WithField("function", e.FunctionName).Debug("Invoked")
	case *fxevent.OnStartExecuted:
		if e.Err != nil {
			l.logger.WithError(e.Err).WithField("callee", e.FunctionName).Error("OnStart hook failed")
			return
		}
		l.logger.WithField("callee", e.FunctionName).Debug("OnStart hook executed")
	case *fxevent.OnStopExecuted:
		if e.Err != nil {
			l.logger.WithError(e.Err).WithField("callee", e.FunctionName).Error("OnStop hook failed")
			return
		}
		l.logger.WithField("callee", e.FunctionName).Debug("OnStop hook executed")
	case *fxevent.Started:
		if e.Err != nil {
			l.logger.WithError(e.Err).Error("Start failed")
			return
		}
		l.logger.Debug("Started")
	default:
		l.logger.Debugf("%T", event)
	}
}
