package websocket

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const busChannel = "chat:events"

// busEnvelope кадр вместе с ключом комнаты, которой он адресован
type busEnvelope struct {
	RoomKey string          `json:"room_key"`
	Payload json.RawMessage `json:"payload"`
}

// RedisBus шина рассылки на Redis pub/sub. Каждый экземпляр gateway
// публикует кадры и доставляет полученные своим локальным клиентам,
// поэтому контракт Broadcast не зависит от числа экземпляров.
type RedisBus struct {
	rdb *redis.Client
	log *logrus.Entry
}

func NewRedisBus(rdb *redis.Client) *RedisBus {
	return &RedisBus{
		rdb: rdb,
		log: logrus.WithField("component", "redis_bus"),
	}
}

func (b *RedisBus) Publish(ctx context.Context, roomKey string, payload []byte) error {
	data, err := json.Marshal(busEnvelope{RoomKey: roomKey, Payload: payload})
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, busChannel, data).Err()
}

// Subscribe читает шину до отмены контекста и передает каждый кадр
// в deliver. Некорректное сообщение пропускается.
func (b *RedisBus) Subscribe(ctx context.Context, deliver func(roomKey string, payload []byte)) error {
	pubsub := b.rdb.Subscribe(ctx, busChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var env busEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				b.log.WithError(err).Warn("malformed bus message")
				continue
			}
			deliver(env.RoomKey, env.Payload)
		}
	}
}
