package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/emotion-tutor/internal/core/domain"
	"github.com/kirillkom/emotion-tutor/internal/infrastructure/resilience"
)

// Queue publishes audit records to <prefix>.documents and <prefix>.questions and
// lets the audit worker consume them.
type Queue struct {
	conn     *nats.Conn
	prefix   string
	executor *resilience.Executor
}

type Options struct {
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
}

func NewWithOptions(url, subjectPrefix string, options Options) (*Queue, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}

	conn, err := nats.Connect(
		url,
		nats.Name("emotion-tutor"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{
		conn:     conn,
		prefix:   normalizePrefix(subjectPrefix),
		executor: options.ResilienceExecutor,
	}, nil
}

func normalizePrefix(prefix string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), ".")
	if prefix == "" {
		return "tutor.audit"
	}
	return prefix
}

// Subject returns the subject carrying records of kind.
func Subject(prefix string, kind domain.AuditKind) string {
	switch kind {
	case domain.AuditKindDocument:
		return normalizePrefix(prefix) + ".documents"
	case domain.AuditKindQuestion:
		return normalizePrefix(prefix) + ".questions"
	default:
		return normalizePrefix(prefix) + ".unknown"
	}
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

// Write publishes record; it implements the audit sink contract.
func (q *Queue) Write(ctx context.Context, record domain.AuditRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}
	subject := Subject(q.prefix, record.Kind)

	call := func(_ context.Context) error {
		if err := q.conn.Publish(subject, payload); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}

	if q.executor != nil {
		err = q.executor.Execute(ctx, "nats.publish", call, classifyPublishError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return asTemporary(err)
	}
	return nil
}

// SubscribeAudit consumes both audit subjects in the "audit-writers" queue group
// until ctx is cancelled.
func (q *Queue) SubscribeAudit(ctx context.Context, handler func(context.Context, domain.AuditRecord) error) error {
	onMessage := func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}

		var record domain.AuditRecord
		if err := json.Unmarshal(msg.Data, &record); err != nil {
			slog.Error("audit_message_decode_failed", "subject", msg.Subject, "error", err)
			return
		}

		handlerCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if err := handler(handlerCtx, record); err != nil {
			slog.Error("audit_handler_failed", "subject", msg.Subject, "kind", string(record.Kind), "error", err)
		}
	}

	subs := make([]*nats.Subscription, 0, 2)
	for _, kind := range []domain.AuditKind{domain.AuditKindDocument, domain.AuditKindQuestion} {
		sub, err := q.conn.QueueSubscribe(Subject(q.prefix, kind), "audit-writers", onMessage)
		if err != nil {
			return fmt.Errorf("nats subscribe: %w", err)
		}
		subs = append(subs, sub)
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	for _, sub := range subs {
		if err := sub.Drain(); err != nil {
			return fmt.Errorf("nats drain subscription: %w", err)
		}
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}
