package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeNotice        = "portal.notice"
	EventTypeSessionOpened = "session.opened"
	EventTypeSessionClosed = "session.closed"
)

// NoticeEvent asks for a one-shot message on the next page the session renders.
type NoticeEvent struct {
	BaseEvent
	SessionID string `json:"session_id"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}

func NewNoticeEvent(sessionID, level, message string) *NoticeEvent {
	return &NoticeEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.NewString(),
			Type:      EventTypeNotice,
			Timestamp: time.Now(),
		},
		SessionID: sessionID,
		Level:     level,
		Message:   message,
	}
}

type SessionEvent struct {
	BaseEvent
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
}

func NewSessionOpenedEvent(sessionID, userID, role string) *SessionEvent {
	return newSessionEvent(EventTypeSessionOpened, sessionID, userID, role)
}

func NewSessionClosedEvent(sessionID, userID, role string) *SessionEvent {
	return newSessionEvent(EventTypeSessionClosed, sessionID, userID, role)
}

func newSessionEvent(eventType, sessionID, userID, role string) *SessionEvent {
	return &SessionEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.NewString(),
			Type:      eventType,
			Timestamp: time.Now(),
		},
		SessionID: sessionID,
		UserID:    userID,
		Role:      role,
	}
}
