package events

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/fjod/go_checkout/internal/cart"
	"github.com/fjod/go_checkout/internal/storage"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
	"go.uber.org/zap"
)

func setupKafka(t *testing.T) string {
	ctx := context.Background()

	kafkaContainer, err := kafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate kafka container: %v", err)
		}
	})

	brokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers, "broker address should not be empty")
	return brokers[0]
}

func createTopic(t *testing.T, brokerAddr, topic string) {
	conn, err := kafkaGo.Dial("tcp", brokerAddr)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	controllerConn, err := kafkaGo.Dial("tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	require.NoError(t, err)
	defer controllerConn.Close()

	err = controllerConn.CreateTopics(kafkaGo.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1})
	if err != nil {
		t.Logf("topic creation error (may already exist): %v", err)
	}
}

func TestKafka_PublishedOrderClearsCart(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping kafka integration test in short mode")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker := setupKafka(t)
	createTopic(t, broker, DefaultTopic)

	mem := storage.NewMemoryStore()
	store := cart.NewStore(mem, "", zap.NewNop())
	require.NoError(t, mem.Set(ctx, "cart:t1:u1", `[{"productId":1,"quantity":1}]`))
	require.NoError(t, mem.Set(ctx, cart.DefaultSharedKey, `[{"productId":1,"quantity":1}]`))

	clearer := NewCartClearer(store, zap.NewNop(), DefaultTopic, broker)
	defer clearer.Close()
	go clearer.Run(ctx)

	publisher := NewKafkaPublisher(DefaultTopic, broker)
	defer publisher.Close()
	require.NoError(t, publisher.PublishOrderPlaced(ctx, OrderPlaced{
		EventID:  "e1",
		ClientID: "c1",
		TenantID: "t1",
		UserID:   "u1",
		CartKey:  "cart:t1:u1",
		PlacedAt: time.Now().UTC(),
	}))

	require.Eventually(t, func() bool {
		return len(mem.Keys()) == 0
	}, 30*time.Second, 500*time.Millisecond)
}
