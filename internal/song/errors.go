package song

import (
	"errors"
	"fmt"
)

// Stage names the publish step that failed.
type Stage string

const (
	StageInvalidRequest Stage = "invalid_request"
	StageAudioWrite     Stage = "audio_write"
	StageImageWrite     Stage = "image_write"
	StageRecordInsert   Stage = "record_insert"
)

// Sentinels matched by PublishError.Is.
var (
	ErrInvalidRequest     = errors.New("invalid publish request")
	ErrAudioWriteFailed   = errors.New("audio upload failed")
	ErrImageWriteFailed   = errors.New("image upload failed")
	ErrRecordInsertFailed = errors.New("song record insert failed")
)

// PublishError is the only error type returned by Service.Publish. Stage is always
// the step that triggered the failure; compensation problems never replace it.
type PublishError struct {
	Stage Stage
	Err   error
}

func (e *PublishError) Error() string {
	if e.Err == nil {
		return e.sentinel().Error()
	}
	return fmt.Sprintf("%s: %v", e.sentinel(), e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's stage.
func (e *PublishError) Is(target error) bool {
	return target == e.sentinel()
}

func (e *PublishError) sentinel() error {
	switch e.Stage {
	case StageInvalidRequest:
		return ErrInvalidRequest
	case StageAudioWrite:
		return ErrAudioWriteFailed
	case StageImageWrite:
		return ErrImageWriteFailed
	case StageRecordInsert:
		return ErrRecordInsertFailed
	}
	return errors.New("publish failed")
}

// StageOf extracts the failing stage from err.
func StageOf(err error) (Stage, bool) {
	var pe *PublishError
	if errors.As(err, &pe) {
		return pe.Stage, true
	}
	return "", false
}
