package types

// IsValidUsername reports whether s is an acceptable username:
// 1-50 characters, alphanumeric and underscore only.
func IsValidUsername(s string) bool {
	if len(s) == 0 || len(s) > 50 {
		return false
	}
	for _, c := range []byte(s) {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_':
		default:
			return false
		}
	}
	return true
}

// IsValidPassword reports whether s is an acceptable password:
// 4-100 characters, no character-class restrictions.
func IsValidPassword(s string) bool {
	return len(s) >= 4 && len(s) <= 100
}

// ValidateUsername returns ErrInvalidUsername if s is not a valid username.
func ValidateUsername(s string) error {
	if !IsValidUsername(s) {
		return ErrInvalidUsername
	}
	return nil
}

// ValidatePassword returns ErrInvalidPassword if s is not a valid password.
func ValidatePassword(s string) error {
	if !IsValidPassword(s) {
		return ErrInvalidPassword
	}
	return nil
}
