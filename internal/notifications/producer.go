package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
)

// Producer publishes notification events for the delivery collaborator.
type Producer interface {
	Publish(ctx context.Context, notification *Notification) error
	Close() error
}

// KafkaProducerConfig contains configuration for the Kafka notification producer
type KafkaProducerConfig struct {
	Brokers           []string
	NotificationTopic string
	RetryMax          int
	TimeoutMs         int
	RequiredAcks      sarama.RequiredAcks
	CompressionType   sarama.CompressionCodec
	IdempotentWrites  bool
	MaxMessageBytes   int
}

// DefaultKafkaProducerConfig returns a default producer configuration
func DefaultKafkaProducerConfig() *KafkaProducerConfig {
	return &KafkaProducerConfig{
		Brokers:           []string{"localhost:9092"},
		NotificationTopic: "notifications",
		RetryMax:          3,
		TimeoutMs:         10000,
		RequiredAcks:      sarama.WaitForAll,
		CompressionType:   sarama.CompressionSnappy,
		IdempotentWrites:  true,
		MaxMessageBytes:   1000000, // 1MB
	}
}

// KafkaProducer publishes notifications to Kafka
type KafkaProducer struct {
	producer sarama.SyncProducer
	config   *KafkaProducerConfig
}

// NewKafkaProducer creates a new Kafka notification producer
func NewKafkaProducer(config *KafkaProducerConfig) (Producer, error) {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Compression = config.CompressionType
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = time.Duration(config.TimeoutMs) * time.Millisecond
	saramaConfig.Producer.Idempotent = config.IdempotentWrites
	saramaConfig.Producer.MaxMessageBytes = config.MaxMessageBytes

	if config.IdempotentWrites {
		saramaConfig.Net.MaxOpenRequests = 1
	}

	// Hash partitioner keeps one recipient's notifications ordered
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &KafkaProducer{
		producer: producer,
		config:   config,
	}, nil
}

// Publish publishes a single notification to Kafka
func (kp *KafkaProducer) Publish(ctx context.Context, notification *Notification) error {
	notification.Status = NotificationStatusQueued
	notification.UpdatedAt = time.Now()

	messageBytes, err := notification.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     kp.config.NotificationTopic,
		Key:       sarama.StringEncoder(notification.GetPartitionKey()),
		Value:     sarama.ByteEncoder(messageBytes),
		Headers:   kp.createHeaders(notification),
		Timestamp: notification.CreatedAt,
	}

	if _, _, err := kp.producer.SendMessage(message); err != nil {
		notification.Status = NotificationStatusFailed
		errorStr := err.Error()
		notification.LastError = &errorStr
		return fmt.Errorf("failed to send notification to Kafka: %w", err)
	}

	return nil
}

func (kp *KafkaProducer) createHeaders(notification *Notification) []sarama.RecordHeader {
	headers := []sarama.RecordHeader{
		{Key: []byte("notification_id"), Value: []byte(notification.ID.String())},
		{Key: []byte("notification_type"), Value: []byte(notification.Type)},
		{Key: []byte("priority"), Value: []byte(notification.Priority)},
		{Key: []byte("recipient_email"), Value: []byte(notification.RecipientEmail)},
		{Key: []byte("producer"), Value: []byte("atlastours-backend")},
		{Key: []byte("created_at"), Value: []byte(notification.CreatedAt.Format(time.RFC3339))},
	}

	if notification.BookingID != nil {
		headers = append(headers, sarama.RecordHeader{
			Key:   []byte("booking_id"),
			Value: []byte(notification.BookingID.String()),
		})
	}

	if notification.PaymentID != nil {
		headers = append(headers, sarama.RecordHeader{
			Key:   []byte("payment_id"),
			Value: []byte(notification.PaymentID.String()),
		})
	}

	return headers
}

// Close closes the Kafka producer
func (kp *KafkaProducer) Close() error {
	if kp.producer != nil {
		if err := kp.producer.Close(); err != nil {
			return fmt.Errorf("failed to close Kafka producer: %w", err)
		}
	}
	return nil
}

// Publisher is the high-level interface the booking and payment services use.
type Publisher struct {
	producer Producer
}

// NewPublisher creates a new notification publisher
func NewPublisher(producer Producer) *Publisher {
	return &Publisher{producer: producer}
}

// PublishBookingConfirmed publishes a booking confirmation event
func (p *Publisher) PublishBookingConfirmed(ctx context.Context, email, name string,
	bookingID uuid.UUID, reservationNumber, invoiceNumber string, total float64, currency string) error {

	notification := NewNotificationBuilder().
		WithType(NotificationTypeBookingConfirmed).
		WithRecipient(email, name).
		WithBookingContext(bookingID).
		WithTemplateData(map[string]interface{}{
			"reservation_number": reservationNumber,
			"invoice_number":     invoiceNumber,
			"total":              total,
			"currency":           currency,
		}).
		WithSubject(fmt.Sprintf("Booking confirmed - reservation %s", reservationNumber)).
		Build()

	return p.producer.Publish(ctx, notification)
}

// PublishPaymentUnderReview publishes a payment-under-review event
func (p *Publisher) PublishPaymentUnderReview(ctx context.Context, email, name string,
	bookingID, paymentID uuid.UUID, method string) error {

	notification := NewNotificationBuilder().
		WithType(NotificationTypePaymentUnderReview).
		WithRecipient(email, name).
		WithBookingContext(bookingID).
		WithPaymentContext(paymentID).
		WithTemplateData(map[string]interface{}{
			"payment_method": method,
		}).
		WithSubject("Payment received - under review").
		Build()

	return p.producer.Publish(ctx, notification)
}

// PublishPaymentFailed publishes a payment-failed event
func (p *Publisher) PublishPaymentFailed(ctx context.Context, email, name string,
	bookingID, paymentID uuid.UUID, reason string) error {

	notification := NewNotificationBuilder().
		WithType(NotificationTypePaymentFailed).
		WithRecipient(email, name).
		WithBookingContext(bookingID).
		WithPaymentContext(paymentID).
		WithTemplateData(map[string]interface{}{
			"reason": reason,
		}).
		WithSubject("Payment failed - action required").
		Build()

	return p.producer.Publish(ctx, notification)
}

// PublishBookingReminder publishes a reminder for a booking awaiting payment
func (p *Publisher) PublishBookingReminder(ctx context.Context, email, name string,
	bookingID uuid.UUID, serviceName string) error {

	notification := NewNotificationBuilder().
		WithType(NotificationTypeBookingReminder).
		WithRecipient(email, name).
		WithBookingContext(bookingID).
		WithTemplateData(map[string]interface{}{
			"service_name": serviceName,
		}).
		WithSubject(fmt.Sprintf("Your booking for %s is awaiting payment", serviceName)).
		Build()

	return p.producer.Publish(ctx, notification)
}
