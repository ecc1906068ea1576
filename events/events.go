package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType 이벤트 타입 정의
type EventType string

const (
	MigrationRecordProcessed EventType = "migration.record_processed"
	MigrationRunFinished     EventType = "migration.run_finished"
)

const (
	SourceMigrator = "legacy-migrator"
	Version        = "1"
)

// BaseEvent 모든 이벤트의 기본 구조
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
}

// NewBaseEvent 는 새 ID 와 현재 시각으로 BaseEvent 를 만든다.
func NewBaseEvent(t EventType) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      t,
		Timestamp: time.Now().UTC(),
		Source:    SourceMigrator,
		Version:   Version,
	}
}

// MigrationRecordProcessedEvent 레코드 하나가 종료 상태(migrated/failed/skipped/dry-run)에 도달했을 때 발행
type MigrationRecordProcessedEvent struct {
	BaseEvent
	RunID   string   `json:"run_id"`
	PostID  int64    `json:"post_id"`
	Mode    string   `json:"mode"`
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Fields  []string `json:"fields"`
}

// MigrationRunFinishedEvent run 하나가 끝났을 때 요약과 함께 발행
type MigrationRunFinishedEvent struct {
	BaseEvent
	RunID     string `json:"run_id"`
	Mode      string `json:"mode"`
	Processed int    `json:"processed"`
	Migrated  int    `json:"migrated"`
	Failed    int    `json:"failed"`
	Skipped   int    `json:"skipped"`
	DryRun    int    `json:"dry_run"`
}

// SerializeEvent 이벤트를 JSON으로 직렬화하고 타입 정보 반환
func SerializeEvent(event interface{}) ([]byte, EventType, error) {
	var eventType EventType

	switch e := event.(type) {
	case MigrationRecordProcessedEvent:
		eventType = e.Type
	case MigrationRunFinishedEvent:
		eventType = e.Type
	default:
		return nil, "", fmt.Errorf("unknown event type: %T", event)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal event: %w", err)
	}

	return data, eventType, nil
}

// DeserializeEvent 이벤트 타입에 따라 적절한 구조체로 역직렬화
func DeserializeEvent(eventType EventType, data []byte) (interface{}, error) {
	var event interface{}

	switch eventType {
	case MigrationRecordProcessed:
		event = &MigrationRecordProcessedEvent{}
	case MigrationRunFinished:
		event = &MigrationRunFinishedEvent{}
	default:
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}

	if err := json.Unmarshal(data, event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	return event, nil
}

// PeekType 은 JSON 페이로드의 type 필드만 읽는다.
func PeekType(data []byte) (EventType, error) {
	var base BaseEvent
	if err := json.Unmarshal(data, &base); err != nil {
		return "", fmt.Errorf("failed to read event type: %w", err)
	}
	return base.Type, nil
}
