package logger

import (
	"io"
	"strings"
	"sync/atomic"

	"github.com/labstack/gommon/log"
	"go.uber.org/zap"
)

// EchoZapLogger는 echo.Logger 인터페이스를 zap 위에 구현합니다.
// SetLevel로 지정한 레벨 미만의 로그는 버립니다.
type EchoZapLogger struct {
	sugar  *zap.SugaredLogger
	level  atomic.Uint32
	prefix atomic.Value
}

// NewEchoZapLogger는 INFO 레벨의 EchoZapLogger를 생성합니다.
func NewEchoZapLogger(logger *zap.Logger) *EchoZapLogger {
	l := &EchoZapLogger{sugar: logger.WithOptions(zap.AddCallerSkip(1)).Sugar()}
	l.level.Store(uint32(log.INFO))
	l.prefix.Store("")
	return l
}

func (l *EchoZapLogger) enabled(v log.Lvl) bool {
	current := log.Lvl(l.level.Load())
	return current != log.OFF && v >= current
}

func (l *EchoZapLogger) Output() io.Writer { return zapWriter{sugar: l.sugar} }

// SetOutput은 무시합니다. 출력 대상은 zap 코어가 결정합니다.
func (l *EchoZapLogger) SetOutput(io.Writer) {}

func (l *EchoZapLogger) Prefix() string { return l.prefix.Load().(string) }

func (l *EchoZapLogger) SetPrefix(p string) { l.prefix.Store(p) }

func (l *EchoZapLogger) Level() log.Lvl { return log.Lvl(l.level.Load()) }

func (l *EchoZapLogger) SetLevel(v log.Lvl) { l.level.Store(uint32(v)) }

// SetHeader는 무시합니다. 포맷은 zap 인코더가 결정합니다.
func (l *EchoZapLogger) SetHeader(string) {}

func (l *EchoZapLogger) Print(i ...interface{}) { l.Info(i...) }

func (l *EchoZapLogger) Printf(format string, args ...interface{}) { l.Infof(format, args...) }

func (l *EchoZapLogger) Printj(j log.JSON) { l.Infoj(j) }

func (l *EchoZapLogger) Debug(i ...interface{}) {
	if l.enabled(log.DEBUG) {
		l.sugar.Debug(i...)
	}
}

func (l *EchoZapLogger) Debugf(format string, args ...interface{}) {
	if l.enabled(log.DEBUG) {
		l.sugar.Debugf(format, args...)
	}
}

func (l *EchoZapLogger) Debugj(j log.JSON) {
	if l.enabled(log.DEBUG) {
		l.sugar.Debugw("echo", jsonFields(j)...)
	}
}

func (l *EchoZapLogger) Info(i ...interface{}) {
	if l.enabled(log.INFO) {
		l.sugar.Info(i...)
	}
}

func (l *EchoZapLogger) Infof(format string, args ...interface{}) {
	if l.enabled(log.INFO) {
		l.sugar.Infof(format, args...)
	}
}

func (l *EchoZapLogger) Infoj(j log.JSON) {
	if l.enabled(log.INFO) {
		l.sugar.Infow("echo", jsonFields(j)...)
	}
}

func (l *EchoZapLogger) Warn(i ...interface{}) {
	if l.enabled(log.WARN) {
		l.sugar.Warn(i...)
	}
}

func (l *EchoZapLogger) Warnf(format string, args ...interface{}) {
	if l.enabled(log.WARN) {
		l.sugar.Warnf(format, args...)
	}
}

func (l *EchoZapLogger) Warnj(j log.JSON) {
	if l.enabled(log.WARN) {
		l.sugar.Warnw("echo", jsonFields(j)...)
	}
}

func (l *EchoZapLogger) Error(i ...interface{}) {
	if l.enabled(log.ERROR) {
		l.sugar.Error(i...)
	}
}

func (l *EchoZapLogger) Errorf(format string, args ...interface{}) {
	if l.enabled(log.ERROR) {
		l.sugar.Errorf(format, args...)
	}
}

func (l *EchoZapLogger) Errorj(j log.JSON) {
	if l.enabled(log.ERROR) {
		l.sugar.Errorw("echo", jsonFields(j)...)
	}
}

// Fatal과 Panic 계열은 레벨과 무관하게 기록합니다.
func (l *EchoZapLogger) Fatal(i ...interface{}) { l.sugar.Fatal(i...) }

func (l *EchoZapLogger) Fatalf(format string, args ...interface{}) { l.sugar.Fatalf(format, args...) }

func (l *EchoZapLogger) Fatalj(j log.JSON) { l.sugar.Fatalw("echo", jsonFields(j)...) }

func (l *EchoZapLogger) Panic(i ...interface{}) { l.sugar.Panic(i...) }

func (l *EchoZapLogger) Panicf(format string, args ...interface{}) { l.sugar.Panicf(format, args...) }

func (l *EchoZapLogger) Panicj(j log.JSON) { l.sugar.Panicw("echo", jsonFields(j)...) }

func jsonFields(j log.JSON) []interface{} {
	fields := make([]interface{}, 0, len(j)*2)
	for k, v := range j {
		fields = append(fields, k, v)
	}
	return fields
}

// zapWriter는 echo가 Output()에 쓰는 줄을 INFO 로그로 옮깁니다.
type zapWriter struct {
	sugar *zap.SugaredLogger
}

func (w zapWriter) Write(p []byte) (int, error) {
	if msg := strings.TrimRight(string(p), "\n"); msg != "" {
		w.sugar.Info(msg)
	}
	return len(p), nil
}
