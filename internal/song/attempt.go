package song

import "github.com/google/uuid"

// NewAttemptID returns a random version 4 UUID. Concurrent callers need no
// coordination to get distinct values.
func NewAttemptID() string {
	return uuid.NewString()
}

type attemptState int

const (
	stateStart attemptState = iota
	stateAudioWritten
	stateImageWritten
	stateRecordInserted
	stateCompensating
	stateFailed
)

func (s attemptState) String() string {
	switch s {
	case stateStart:
		return "start"
	case stateAudioWritten:
		return "audio_written"
	case stateImageWritten:
		return "image_written"
	case stateRecordInserted:
		return "record_inserted"
	case stateCompensating:
		return "compensating"
	case stateFailed:
		return "failed"
	}
	return "unknown"
}

// attempt is the state of one Publish call. It never outlives the call.
// audioKey and imageKey are set only after the matching write succeeded, so they are
// exactly the objects compensation has to remove.
type attempt struct {
	id       string
	state    attemptState
	audioKey string
	imageKey string
}

func newAttempt(id string) *attempt {
	return &attempt{id: id, state: stateStart}
}

func (a *attempt) audioWritten(key string) {
	a.audioKey = key
	a.state = stateAudioWritten
}

func (a *attempt) imageWritten(key string) {
	a.imageKey = key
	a.state = stateImageWritten
}

func (a *attempt) recordInserted() {
	a.state = stateRecordInserted
}

// written lists the objects created so far in reverse creation order.
func (a *attempt) written() []writtenObject {
	var objs []writtenObject
	if a.imageKey != "" {
		objs = append(objs, writtenObject{namespace: imageNamespace, key: a.imageKey})
	}
	if a.audioKey != "" {
		objs = append(objs, writtenObject{namespace: audioNamespace, key: a.audioKey})
	}
	return objs
}

func (a *attempt) fail(stage Stage, err error) *PublishError {
	a.state = stateFailed
	return &PublishError{Stage: stage, Err: err}
}

type writtenObject struct {
	namespace string
	key       string
}
