package chat

import "errors"

// Semantic rejection categories. Operations wrap these with context via
// fmt.Errorf("...: %w", ...), so callers test with errors.Is.
var (
	ErrNotFound        = errors.New("not found")
	ErrNotMember       = errors.New("not a member")
	ErrDuplicateName   = errors.New("duplicate name")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Wire codes used in service responses across the module boundary.
const (
	CodeNotFound        = "not_found"
	CodeNotMember       = "not_member"
	CodeDuplicateName   = "duplicate_name"
	CodeInvalidArgument = "invalid_argument"
	CodeInternal        = "internal_error"
)

// ErrorCode maps a rejection to its wire code.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrNotMember):
		return CodeNotMember
	case errors.Is(err, ErrDuplicateName):
		return CodeDuplicateName
	case errors.Is(err, ErrInvalidArgument):
		return CodeInvalidArgument
	default:
		return CodeInternal
	}
}

// CodeError maps a wire code back to its sentinel error.
func CodeError(code string) error {
	switch code {
	case CodeNotFound:
		return ErrNotFound
	case CodeNotMember:
		return ErrNotMember
	case CodeDuplicateName:
		return ErrDuplicateName
	case CodeInvalidArgument:
		return ErrInvalidArgument
	default:
		return errors.New("internal error")
	}
}
