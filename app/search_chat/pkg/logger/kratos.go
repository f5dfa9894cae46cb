package logger

import (
	"fmt"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/sirupsen/logrus"
)

// kratosLogger 将 kratos 的日志输出到全局 logrus 实例
type kratosLogger struct{}

// NewKratosLogger 返回写入 logger.Log 的 kratos log.Logger
func NewKratosLogger() log.Logger {
	return kratosLogger{}
}

func (kratosLogger) Log(level log.Level, keyvals ...interface{}) error {
	fields := logrus.Fields{}
	msg := ""
	for i := 0; i < len(keyvals); i += 2 {
		key := fmt.Sprint(keyvals[i])
		var val interface{} = "(MISSING)"
		if i+1 < len(keyvals) {
			val = keyvals[i+1]
		}
		if key == log.DefaultMessageKey {
			msg = fmt.Sprint(val)
			continue
		}
		fields[key] = val
	}

	entry := Log.WithFields(fields)
	switch level {
	case log.LevelDebug:
		entry.Debug(msg)
	case log.LevelWarn:
		entry.Warn(msg)
	case log.LevelError, log.LevelFatal:
		entry.Error(msg)
	default:
		entry.Info(msg)
	}
	return nil
}
