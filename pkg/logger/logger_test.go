package logger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestNewZapLoggerFallsBackToInfo(t *testing.T) {
	logger, err := NewZapLogger(Config{Level: "verbose", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestGormLoggerTrace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Warn, 10*time.Millisecond, true)

	sql := func() (string, int64) { return "SELECT 1", 1 }

	gl.Trace(context.Background(), time.Now(), sql, gorm.ErrRecordNotFound)
	assert.Equal(t, 0, logs.Len(), "record not found is ignored")

	gl.Trace(context.Background(), time.Now(), sql, errors.New("syntax error"))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "GORM query error", logs.All()[0].Message)

	gl.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)
	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "GORM slow query", logs.All()[1].Message)

	gl.LogMode(gormlogger.Silent).Trace(context.Background(), time.Now(), sql, errors.New("x"))
	assert.Equal(t, 2, logs.Len())
}

func TestEchoErrorHandlerHidesInternals(t *testing.T) {
	e := echo.New()
	WithEchoLogger(e, zap.NewNop())
	e.GET("/boom", func(c echo.Context) error {
		return errors.New("pq: password authentication failed")
	})
	e.GET("/bad", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid period")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bad", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid period")
}

func TestRequestLoggerMasksSignature(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	e := echo.New()
	e.Use(NewEchoRequestLogger(zap.New(core)))
	e.POST("/webhook", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]bool{"received": true})
	})

	req := httptest.NewRequest(http.MethodPost, "/webhook", nil)
	req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, 1, logs.Len())
	headers, ok := logs.All()[0].ContextMap()["request.headers"].(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "[MASKED]", headers["Stripe-Signature"])
}

func TestEchoZapLoggerLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	e := echo.New()
	WithEchoLogger(e, zap.New(core))

	e.Logger.Debug("hidden")
	e.Logger.Infof("listening on %d", 8080)
	e.Logger.Warnj(log.JSON{"route": "/webhook"})
	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "listening on 8080", logs.All()[0].Message)
	assert.Equal(t, "/webhook", logs.All()[1].ContextMap()["route"])

	e.Logger.SetLevel(log.ERROR)
	assert.Equal(t, log.ERROR, e.Logger.Level())
	e.Logger.Warn("dropped")
	e.Logger.Error("kept")
	require.Equal(t, 3, logs.Len())
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[2].Level)

	_, err := e.Logger.Output().Write([]byte("raw line\n"))
	require.NoError(t, err)
	assert.Equal(t, "raw line", logs.All()[3].Message)
}
