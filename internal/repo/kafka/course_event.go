package kafka

import (
	"context"
	"ecourse-admin/internal/entity"
	"ecourse-admin/internal/repo"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/segmentio/kafka-go"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	CourseEventsTopic = "course-events"
	NumPartitions     = 3
)

// TopicConfig содержит настройки для создания топика
type TopicConfig struct {
	NumPartitions     int
	ReplicationFactor int
}

type CourseEventKafkaRepository struct {
	writer  *kafka.Writer
	brokers []string
	groupID string
}

// createTopicIfNotExists создает топик, если он не существует
func createTopicIfNotExists(ctx context.Context, brokers []string, topic string, config TopicConfig) error {
	conn, err := kafka.DialContext(ctx, "tcp", brokers[0])
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	partitions, err := conn.ReadPartitions(topic)
	switch {
	case err == nil && len(partitions) > 0:
		return nil
	case err != nil && !errors.Is(err, kafka.UnknownTopicOrPartition):
		return err
	}

	// Топики создаются только через контроллер кластера
	controller, err := conn.Controller()
	if err != nil {
		return err
	}
	controllerConn, err := kafka.DialContext(ctx, "tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return err
	}
	defer func() { _ = controllerConn.Close() }()

	return controllerConn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     config.NumPartitions,
		ReplicationFactor: config.ReplicationFactor,
	})
}

// getMaxReplicationFactor не дает запросить репликацию больше, чем брокеров в кластере
func getMaxReplicationFactor(ctx context.Context, brokers []string, desiredFactor int) (int, error) {
	conn, err := kafka.DialContext(ctx, "tcp", brokers[0])
	if err != nil {
		return 0, err
	}
	defer func() { _ = conn.Close() }()

	brokerMetadata, err := conn.Brokers()
	if err != nil {
		return 0, err
	}
	if len(brokerMetadata) == 0 {
		return min(len(brokers), desiredFactor), nil
	}
	return min(len(brokerMetadata), desiredFactor), nil
}

// NewCourseEventKafkaRepository подключается к брокерам и готовит топик событий курсов.
// groupID используется только подписчиками.
func NewCourseEventKafkaRepository(brokers []string, groupID string) (repo.CourseEvent, error) {
	if len(brokers) == 0 {
		return nil, errors.New("не предоставлены брокеры Kafka")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	replicationFactor, err := getMaxReplicationFactor(ctx, brokers, 3)
	if err != nil {
		return nil, fmt.Errorf("ошибка при определении фактора репликации: %w", err)
	}
	err = createTopicIfNotExists(ctx, brokers, CourseEventsTopic, TopicConfig{
		NumPartitions:     NumPartitions,
		ReplicationFactor: replicationFactor,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка при создании топика %s: %w", CourseEventsTopic, err)
	}

	return &CourseEventKafkaRepository{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        CourseEventsTopic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
		brokers: brokers,
		groupID: groupID,
	}, nil
}

func (r *CourseEventKafkaRepository) PublishCourseEvent(ctx context.Context, event *entity.CourseEvent) error {
	b, err := msgpack.Marshal(event)
	if err != nil {
		return err
	}
	// ключ по курсу сохраняет порядок событий одного курса внутри партиции
	key := event.CourseID
	if key == "" {
		key = event.PhotoLink
	}
	return r.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: b,
	})
}

func (r *CourseEventKafkaRepository) SubscribeCourseEvents(ctx context.Context) (<-chan *entity.CourseEvent, error) {
	if r.groupID == "" {
		return nil, errors.New("для подписки нужен groupID")
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     r.brokers,
		Topic:       CourseEventsTopic,
		GroupID:     r.groupID,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.FirstOffset,
	})

	ch := make(chan *entity.CourseEvent)
	go func() {
		defer close(ch)
		defer func() { _ = reader.Close() }()
		for {
			m, err := reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() == nil {
					log.Errorf("Ошибка чтения события курса: %v", err)
				}
				return
			}
			var event entity.CourseEvent
			if err := msgpack.Unmarshal(m.Value, &event); err != nil {
				log.Warnf("Пропущено нечитаемое событие курса (offset %d): %v", m.Offset, err)
				continue
			}
			select {
			case ch <- &event:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

func (r *CourseEventKafkaRepository) Close() error {
	return r.writer.Close()
}
