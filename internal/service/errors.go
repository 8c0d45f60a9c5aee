package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrUsernameTaken       = errors.New("user already exists")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrSessionInvalid      = errors.New("session is invalid or expired")
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("access denied")
	ErrValidation          = errors.New("validation failed")
	ErrUnsupportedFileType = errors.New("unsupported file type, only PDF, DOC, DOCX and TXT are allowed")
	ErrFolderCycle         = errors.New("folder cannot be moved into itself or its descendant")
	ErrFileConflict        = errors.New("a file with the same name is being uploaded, try again")
)

// invalid ошибка валидации с сообщением для клиента.
func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// notFound переводит gorm.ErrRecordNotFound в ErrNotFound, остальные ошибки оборачивает.
func notFound(what string, err error) error {
	if isRecordNotFound(err) {
		return fmt.Errorf("%s %w", what, ErrNotFound)
	}
	return fmt.Errorf("load %s: %w", what, err)
}

func isRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
