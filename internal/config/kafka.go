package config

import (
	"strings"

	"github.com/ferdian3456/rosterbridge/internal/delivery/messaging"
	"github.com/knadh/koanf/v2"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// NewMemberUpdateReader returns nil when KAFKA_BROKERS is empty, which disables the consumer.
func NewMemberUpdateReader(config *koanf.Koanf, log *zap.Logger) *kafka.Reader {
	rawBrokers := config.String("KAFKA_BROKERS")
	if rawBrokers == "" {
		log.Info("KAFKA_BROKERS not set, member update consumer disabled")
		return nil
	}

	brokers := []string{}
	for _, broker := range strings.Split(rawBrokers, ",") {
		broker = strings.TrimSpace(broker)
		if broker != "" {
			brokers = append(brokers, broker)
		}
	}

	topic := config.String("KAFKA_MEMBER_UPDATE_TOPIC")
	if topic == "" {
		topic = "platform.member-updates"
	}

	groupId := config.String("KAFKA_GROUP_ID")
	if groupId == "" {
		groupId = "rosterbridge"
	}

	log.Info("member update consumer configured", zap.Strings("brokers", brokers), zap.String("topic", topic), zap.String("group_id", groupId))

	return messaging.NewMemberUpdateReader(brokers, topic, groupId)
}
