package errors

// CodePair는 프레임워크 간 코드 매핑을 위한 구조체입니다
type CodePair struct {
	HTTPStatus int
	GRPCCode   int
}

var codeMapping = map[string]CodePair{
	ErrInternal:           {500, 13}, // INTERNAL
	ErrNotFound:           {404, 5},  // NOT_FOUND
	ErrInvalidArgument:    {400, 3},  // INVALID_ARGUMENT
	ErrUnauthenticated:    {401, 16}, // UNAUTHENTICATED
	ErrUnauthorized:       {403, 7},  // PERMISSION_DENIED
	ErrConflict:           {409, 6},  // ALREADY_EXISTS
	ErrFailedPrecondition: {409, 9},  // FAILED_PRECONDITION
	ErrTimeout:            {504, 4},  // DEADLINE_EXCEEDED
	ErrUnavailable:        {503, 14}, // UNAVAILABLE
}

// GetCodeMapping은 특정 에러 코드에 대한 HTTP 및 gRPC 코드 매핑을 반환합니다
func GetCodeMapping(code string) (int, int) {
	if pair, ok := codeMapping[code]; ok {
		return pair.HTTPStatus, pair.GRPCCode
	}
	return 500, 13
}

// IsRetryable은 호출자가 같은 요청을 다시 시도해도 되는 코드인지 알려줍니다
func IsRetryable(code string) bool {
	switch code {
	case ErrUnavailable, ErrTimeout, ErrInternal:
		return true
	default:
		return false
	}
}
