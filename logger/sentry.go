package logger

import (
	"fmt"
	"io/ioutil"

	"github.com/ethereum/go-ethereum/log"
	"github.com/evalphobia/logrus_sentry"
	"github.com/sirupsen/logrus"
)

// SentryHandler forwards error and crit records to Sentry. Lower levels are
// dropped.
func SentryHandler(dsn string) (log.Handler, error) {
	hook, err := logrus_sentry.NewSentryHook(dsn, []logrus.Level{
		logrus.PanicLevel,
		logrus.FatalLevel,
		logrus.ErrorLevel,
	})
	if err != nil {
		return nil, err
	}
	l := logrus.New()
	l.Out = ioutil.Discard
	l.Hooks.Add(hook)
	return sentryHandler(l), nil
}

func sentryHandler(l *logrus.Logger) log.Handler {
	return log.FuncHandler(func(r *log.Record) error {
		if r.Lvl > log.LvlError {
			return nil
		}
		l.WithFields(recordFields(r)).Error(r.Msg)
		return nil
	})
}

// recordFields turns the key-value context of r into logrus fields.
func recordFields(r *log.Record) logrus.Fields {
	fields := logrus.Fields{"level": r.Lvl.String()}
	for i := 0; i+1 < len(r.Ctx); i += 2 {
		fields[fmt.Sprint(r.Ctx[i])] = r.Ctx[i+1]
	}
	return fields
}
