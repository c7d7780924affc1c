package errors

import (
	"go.uber.org/zap"
)

// LogError는 에러를 구조화된 로그로 기록합니다
func LogError(logger *zap.Logger, err error, msg string, fields ...zap.Field) {
	if err == nil {
		return
	}

	allFields := make([]zap.Field, 0, len(fields)+3)
	allFields = append(allFields, zap.Error(err))

	var appErr *AppError
	if As(err, &appErr) {
		allFields = append(allFields,
			zap.String("error_code", appErr.Code()),
			zap.Bool("retryable", IsRetryable(appErr.Code())),
		)
	}

	allFields = append(allFields, fields...)

	// 재시도 가능한 장애는 경고, 그 외는 에러로 기록
	if appErr != nil && appErr.Code() == ErrUnavailable {
		logger.Warn(msg, allFields...)
		return
	}
	logger.Error(msg, allFields...)
}
