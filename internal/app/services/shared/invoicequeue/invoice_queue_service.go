package invoicequeue

import (
	"context"
	"fmt"
	"sync"

	"medledger-service/internal/app/models"
	"medledger-service/internal/pkg/constvars"
	"medledger-service/internal/pkg/exceptions"

	json "github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// InvoiceQueueMessage represents the payload stored in RabbitMQ.
type InvoiceQueueMessage struct {
	ID          string         `json:"id"`
	Invoice     models.Invoice `json:"invoice"`
	FailedCount int            `json:"failed_count"`
}

// Service manages the durable invoice delivery queue and its dead-letter
// queue. Delivery is best-effort; the ledger never waits on this path.
type Service struct {
	ch        *amqp.Channel
	log       *zap.Logger
	queueName string
	deadQueue string
	prefetch  int
	confirms  chan amqp.Confirmation
	mu        sync.Mutex
}

// NewService initializes the queue service, declares durable queues, enables confirms, and sets QoS.
func NewService(conn *amqp.Connection, log *zap.Logger, queueName, deadQueue string, prefetch int) (*Service, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	_, err = ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // autoDelete
		false,     // exclusive
		false,     // noWait
		nil,       // args
	)
	if err != nil {
		return nil, err
	}

	_, err = ch.QueueDeclare(
		deadQueue,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, err
	}

	// Limit unacked deliveries in-flight
	if prefetch <= 0 {
		prefetch = 1
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		return nil, err
	}

	// Publisher confirms for durability guarantees
	if err := ch.Confirm(false); err != nil {
		return nil, err
	}

	svc := &Service{
		ch:        ch,
		log:       log,
		queueName: queueName,
		deadQueue: deadQueue,
		prefetch:  prefetch,
		confirms:  ch.NotifyPublish(make(chan amqp.Confirmation, 1)),
	}

	return svc, nil
}

// EnqueueInput defines input for enqueue operation.
type EnqueueInput struct {
	Message InvoiceQueueMessage
}

// EnqueueOutput defines output for enqueue.
type EnqueueOutput struct{}

// EnqueueToDLQInput defines input for DLQ enqueue operation.
type EnqueueToDLQInput struct {
	Message InvoiceQueueMessage
}

// EnqueueToDLQOutput defines output for DLQ enqueue.
type EnqueueToDLQOutput struct{}

// ReenqueueInput defines input for reenqueueing a modified message back to the queue tail.
type ReenqueueInput struct {
	Message InvoiceQueueMessage
}

// ReenqueueOutput defines output for reenqueue.
type ReenqueueOutput struct{}

// FetchNInput specifies the maximum number of messages to fetch.
type FetchNInput struct {
	Max int
}

// QueuedItem represents a fetched delivery and its decoded payload.
type QueuedItem struct {
	DeliveryTag uint64
	Message     InvoiceQueueMessage
}

// FetchNOutput returns up to N messages.
type FetchNOutput struct {
	Items []QueuedItem
}

// AckMessageInput acknowledges a message so it is removed from the queue.
type AckMessageInput struct {
	DeliveryTag uint64
}

// AckMessageOutput is empty.
type AckMessageOutput struct{}

// Enqueue publishes a message to the delivery queue with persistence and waits for confirm.
func (s *Service) Enqueue(ctx context.Context, in *EnqueueInput) (*EnqueueOutput, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.log.Info("InvoiceQueue.Enqueue called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingInvoiceNumberKey, in.Message.Invoice.InvoiceNumber),
	)

	body, err := json.Marshal(in.Message)
	if err != nil {
		return nil, exceptions.ErrCannotMarshalJSON(err)
	}

	if err := s.publish(ctx, s.queueName, body); err != nil {
		return nil, err
	}
	return &EnqueueOutput{}, nil
}

// Reenqueue publishes the (possibly modified) message to the tail of the delivery queue and confirms.
func (s *Service) Reenqueue(ctx context.Context, in *ReenqueueInput) (*ReenqueueOutput, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.log.Info("InvoiceQueue.Reenqueue called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingInvoiceNumberKey, in.Message.Invoice.InvoiceNumber),
	)

	body, err := json.Marshal(in.Message)
	if err != nil {
		return nil, exceptions.ErrCannotMarshalJSON(err)
	}

	if err := s.publish(ctx, s.queueName, body); err != nil {
		return nil, err
	}
	return &ReenqueueOutput{}, nil
}

// EnqueueToDeadQueue publishes the message to DLQ and confirms.
func (s *Service) EnqueueToDeadQueue(ctx context.Context, in *EnqueueToDLQInput) (*EnqueueToDLQOutput, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.log.Info("InvoiceQueue.EnqueueToDeadQueue called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingInvoiceNumberKey, in.Message.Invoice.InvoiceNumber),
	)

	body, err := json.Marshal(in.Message)
	if err != nil {
		return nil, exceptions.ErrCannotMarshalJSON(err)
	}

	if err := s.publish(ctx, s.deadQueue, body); err != nil {
		return nil, err
	}
	return &EnqueueToDLQOutput{}, nil
}

// FetchN retrieves up to N messages using basic.get without auto-ack.
func (s *Service) FetchN(ctx context.Context, in *FetchNInput) (*FetchNOutput, error) {
	n := in.Max
	if n <= 0 {
		n = 1
	}
	items := make([]QueuedItem, 0, n)

	for i := 0; i < n; i++ {
		d, ok, err := s.ch.Get(s.queueName, false)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		var payload InvoiceQueueMessage
		if err := json.Unmarshal(d.Body, &payload); err != nil {
			// Invalid JSON moves to DLQ to avoid a poison message loop
			_ = d.Ack(false)
			_ = s.publish(ctx, s.deadQueue, d.Body)
			continue
		}
		items = append(items, QueuedItem{DeliveryTag: d.DeliveryTag, Message: payload})
	}

	return &FetchNOutput{Items: items}, nil
}

// AckMessage acknowledges a message by delivery tag.
func (s *Service) AckMessage(ctx context.Context, in *AckMessageInput) (*AckMessageOutput, error) {
	if err := s.ch.Ack(in.DeliveryTag, false); err != nil {
		return nil, err
	}
	return &AckMessageOutput{}, nil
}

func (s *Service) publish(ctx context.Context, queue string, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := amqp.Publishing{
		ContentType:  constvars.MIMEApplicationJSON,
		Body:         body,
		DeliveryMode: amqp.Persistent,
	}
	if err := s.ch.PublishWithContext(ctx, "", queue, false, false, msg); err != nil {
		return exceptions.ErrRabbitMQPublishMessage(err, queue)
	}

	select {
	case confirmed := <-s.confirms:
		if !confirmed.Ack {
			return exceptions.ErrRabbitMQPublishMessage(fmt.Errorf("message not confirmed"), queue)
		}
	case <-ctx.Done():
		return exceptions.ErrRabbitMQPublishMessage(ctx.Err(), queue)
	}
	return nil
}
