package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// RetryDelays는 구독 핸들러 실패 시 같은 메시지를 다시 처리하기 전 대기 시간 목록입니다.
// 모두 소진하면 이벤트는 DLQ 토픽으로 보내집니다.
var RetryDelays = []time.Duration{
	1 * time.Second,
	5 * time.Second,
	15 * time.Second,
}

// Topic은 토픽의 기본 이름과 DLQ 토픽 이름을 관리합니다.
type Topic struct {
	base string
}

func NewTopic(base string) Topic {
	return Topic{base: base}
}

func (t Topic) Base() string {
	return t.base
}

// DLQ는 DLQ 토픽 이름을 반환합니다 (예: my_topic.dlq).
func (t Topic) DLQ() string {
	return t.base + ".dlq"
}

// Event는 Kafka 메시지의 페이로드로 사용되는 구조체입니다.
type Event struct {
	ID        string          `json:"id"`
	Payload   json.RawMessage `json:"payload"`
	Retry     int             `json:"retry"` // 현재 재시도 횟수 (0부터 시작)
	MaxRetry  int             `json:"max_retry"`
	LastError string          `json:"last_error,omitempty"`
}

// EventHandler는 이벤트 처리 함수의 시그니처입니다.
type EventHandler func(ctx context.Context, event Event) error

// EventBus 인터페이스는 이벤트 발행 및 구독의 추상화를 정의합니다.
type EventBus interface {
	Publish(ctx context.Context, topic string, event Event) error
	// Subscribe는 기본 토픽을 구독하여 ctx 가 끝날 때까지 handler 를 실행합니다.
	Subscribe(ctx context.Context, groupID string, topic Topic, handler EventHandler) error
	Close()
}

// ErrMaxRetryExceeded는 최대 재시도 횟수를 초과했을 때 반환되는 오류입니다.
var ErrMaxRetryExceeded = errors.New("최대 재시도 횟수 초과")

// ErrDisabled는 브로커가 설정되지 않아 구독할 수 없을 때 반환됩니다.
var ErrDisabled = errors.New("eventbus disabled: no kafka brokers configured")

// NopEventBus는 Kafka 가 설정되지 않은 환경에서 사용하는 구현체입니다. 발행은 버려집니다.
type NopEventBus struct{}

func (NopEventBus) Publish(context.Context, string, Event) error { return nil }

func (NopEventBus) Subscribe(context.Context, string, Topic, EventHandler) error {
	return ErrDisabled
}

func (NopEventBus) Close() {}
