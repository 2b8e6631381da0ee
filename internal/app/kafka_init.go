package app

import (
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/laundryos/internal/messaging/kafka"
)

// connectEventBus поднимает продьюсер событийной шины, если в конфиге
// указаны брокеры. Без брокеров и при недоступной Kafka касса работает
// дальше: события лежат в outbox, пока шина не появится.
func connectEventBus(brokers string, logger *log.Entry) *kafka.Producer {
	brokerList := splitBrokers(brokers)
	if len(brokerList) == 0 {
		return nil
	}

	producer, err := kafka.NewProducer(brokerList)
	if err != nil {
		logger.WithError(err).Warn("kafka unavailable, orders will queue in the outbox")
		return nil
	}

	logger.WithField("brokers", brokerList).Info("connected to event bus")
	return producer
}

// splitBrokers разбирает список брокеров из env: "host1:9092, host2:9092".
func splitBrokers(brokers string) []string {
	var list []string
	for _, broker := range strings.Split(brokers, ",") {
		broker = strings.TrimSpace(broker)
		if broker != "" {
			list = append(list, broker)
		}
	}
	return list
}

func disconnectEventBus(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}
	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
		return
	}
	logger.Info("event bus disconnected")
}
