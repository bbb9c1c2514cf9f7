package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "cart-service/nats-publisher"

type MessagePublisher interface {
	Publish(ctx context.Context, subject string, message interface{}) error
}

// msgConn is the slice of *nats.Conn the publisher needs.
type msgConn interface {
	PublishMsg(msg *nats.Msg) error
}

type natsPublisher struct {
	conn   msgConn
	tracer trace.Tracer
}

func NewNATSPublisher(conn *nats.Conn) (MessagePublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("NATS connection cannot be nil")
	}
	return newPublisher(conn), nil
}

func newPublisher(conn msgConn) *natsPublisher {
	return &natsPublisher{conn: conn, tracer: otel.Tracer(tracerName)}
}

// Publish sends message as JSON with the caller's trace context in the
// message headers.
func (p *natsPublisher) Publish(ctx context.Context, subject string, message interface{}) error {
	ctx, span := p.tracer.Start(ctx, "NATS.Publish "+subject,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(attribute.String("messaging.destination.name", subject)),
	)
	defer span.End()

	data, err := json.Marshal(message)
	if err != nil {
		err = fmt.Errorf("failed to marshal message to JSON for subject %s: %w", subject, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := ctx.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	msg := nats.NewMsg(subject)
	msg.Data = data
	otel.GetTextMapPropagator().Inject(ctx, HeaderCarrier(msg.Header))

	if err := p.conn.PublishMsg(msg); err != nil {
		err = fmt.Errorf("failed to publish message to NATS subject %s: %w", subject, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// HeaderCarrier adapts nats.Header to propagation.TextMapCarrier.
type HeaderCarrier nats.Header

func (c HeaderCarrier) Get(key string) string {
	return nats.Header(c).Get(key)
}

func (c HeaderCarrier) Set(key string, value string) {
	nats.Header(c).Set(key, value)
}

func (c HeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}
