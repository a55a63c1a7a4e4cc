package logger

import (
	"bytes"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

type stringer interface {
	String() string
}

type logPair struct {
	logFn func(...any)
	obj   string
	msg   string
}

const (
	logSize = 1000
	objSize = 20
)

var (
	logCh   = make(chan logPair, logSize)
	started atomic.Bool
	once    sync.Once
)

func objToString(obj any) (objStr string) {
	if obj == nil {
		objStr = "NIL"
	} else if stringerObj, ok := obj.(stringer); ok {
		objStr = stringerObj.String()
	} else if objStr, ok = obj.(string); ok {
	} else {
		objStr = reflect.TypeOf(obj).String()
	}
	if len(objStr) > objSize {
		objStr = objStr[:objSize]
	}
	return
}

func format(p logPair) string {
	return fmt.Sprintf("|%20s|%-100s", p.obj, p.msg)
}

// Configure sets the level and format. Messages stay synchronous, which
// suits short lived commands that exit right after their last log line.
func Configure(lvl logrus.Level) {
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{
		ForceColors:     true,
		FullTimestamp:   true,
		PadLevelText:    true,
		TimestampFormat: "2006/02/01 15:04:05",
	})
}

// Init configures logrus and starts the background writer. Before Init is
// called, enabled messages are written synchronously.
func Init(lvl logrus.Level) {
	Configure(lvl)

	once.Do(func() {
		go func() {
			sb := new(bytes.Buffer)
			for p := range logCh {
				sb.WriteString(format(p))
				p.logFn(sb.String())
				sb.Reset()
			}
		}()
		started.Store(true)
	})
}

// ParseLevel maps a level name to a logrus level, defaulting to info.
func ParseLevel(name string) logrus.Level {
	lvl, err := logrus.ParseLevel(name)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

func send(lvl logrus.Level, fn func(...any), object any, msg string) {
	if logrus.GetLevel() < lvl {
		return
	}
	p := logPair{logFn: fn, obj: objToString(object), msg: msg}
	if !started.Load() {
		fn(format(p))
		return
	}
	logCh <- p
}

func Trace(object any, message string) {
	send(logrus.TraceLevel, logrus.Trace, object, message)
}

func Tracef(object any, message string, args ...any) {
	if logrus.GetLevel() < logrus.TraceLevel {
		return
	}
	send(logrus.TraceLevel, logrus.Trace, object, fmt.Sprintf(message, args...))
}

func Debug(object any, message string) {
	send(logrus.DebugLevel, logrus.Debug, object, message)
}

func Debugf(object any, message string, args ...any) {
	if logrus.GetLevel() < logrus.DebugLevel {
		return
	}
	send(logrus.DebugLevel, logrus.Debug, object, fmt.Sprintf(message, args...))
}

func Info(object any, message string) {
	send(logrus.InfoLevel, logrus.Info, object, message)
}

func Infof(object any, message string, args ...any) {
	send(logrus.InfoLevel, logrus.Info, object, fmt.Sprintf(message, args...))
}

func Warning(object any, message string) {
	send(logrus.WarnLevel, logrus.Warning, object, message)
}

func Warningf(object any, message string, args ...any) {
	send(logrus.WarnLevel, logrus.Warning, object, fmt.Sprintf(message, args...))
}

func Error(object any, message string) {
	send(logrus.ErrorLevel, logrus.Error, object, message)
}

func Errorf(object any, message string, args ...any) {
	send(logrus.ErrorLevel, logrus.Error, object, fmt.Sprintf(message, args...))
}

func Fatal(object any, message string) {
	logrus.Fatal(format(logPair{obj: objToString(object), msg: message}))
}

func Fatalf(object any, message string, args ...any) {
	logrus.Fatal(format(logPair{obj: objToString(object), msg: fmt.Sprintf(message, args...)}))
}
