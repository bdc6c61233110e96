package events

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// NATSPublisher publishes events as JSON on a NATS subject
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
	log     *logrus.Entry
}

func NewNATSPublisher(conn *nats.Conn, subject string, log *logrus.Entry) *NATSPublisher {
	return &NATSPublisher{conn: conn, subject: subject, log: log}
}

func (p *NATSPublisher) PublishNewFollower(_ context.Context, event NewFollower) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.log.WithError(err).Error("error marshaling follow event")
		return
	}
	if err := p.conn.Publish(p.subject, payload); err != nil {
		p.log.WithError(err).WithField("subject", p.subject).Error("failed to send follow event to NATS")
	}
}
