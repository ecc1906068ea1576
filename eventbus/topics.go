package eventbus

// 전역 토픽 선언: 기본값이며 kafka.topic 설정으로 교체할 수 있습니다.

var (
	TopicMigrationEvents = NewTopic("legacy-migrator.migration.events")
)

// MigrationTopic은 설정된 토픽 이름이 있으면 그것을, 없으면 기본 토픽을 반환합니다.
func MigrationTopic(configured string) Topic {
	if configured == "" {
		return TopicMigrationEvents
	}
	return NewTopic(configured)
}
