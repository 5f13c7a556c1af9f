package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kirillkom/emotion-tutor/internal/core/domain"
)

type blockingSink struct {
	release chan struct{}
	err     error

	mu      sync.Mutex
	written []domain.AuditRecord
}

func (s *blockingSink) Write(ctx context.Context, record domain.AuditRecord) error {
	select {
	case <-s.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	s.mu.Lock()
	s.written = append(s.written, record)
	s.mu.Unlock()
	return s.err
}

func TestSubmitDoesNotBlockCaller(t *testing.T) {
	sink := &blockingSink{release: make(chan struct{})}
	d := NewDispatcher("test", sink, time.Second, nil)

	start := time.Now()
	result := d.Submit(domain.NewDocumentAudit("text"))
	require.Less(t, time.Since(start), 100*time.Millisecond)

	close(sink.release)
	require.NoError(t, <-result)
	require.NoError(t, d.Close(context.Background()))
	require.Len(t, sink.written, 1)
}

func TestSubmitReportsSinkErrorOnlyOnChannel(t *testing.T) {
	sink := &blockingSink{release: make(chan struct{}), err: errors.New("permission denied")}
	close(sink.release)

	var (
		mu           sync.Mutex
		observedName string
		observedKind domain.AuditKind
		observed     error
	)
	d := NewDispatcher("test", sink, time.Second, func(name string, kind domain.AuditKind, err error) {
		mu.Lock()
		defer mu.Unlock()
		observedName, observedKind, observed = name, kind, err
	})

	err := <-d.Submit(domain.NewQuestionAudit("q", "happy", "a"))
	require.EqualError(t, err, "permission denied")
	require.NoError(t, d.Close(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, "test", observedName)
	require.Equal(t, domain.AuditKindQuestion, observedKind)
	require.EqualError(t, observed, "permission denied")
}

func TestSubmitTimesOut(t *testing.T) {
	sink := &blockingSink{release: make(chan struct{})}
	d := NewDispatcher("test", sink, 10*time.Millisecond, nil)

	err := <-d.Submit(domain.NewDocumentAudit("text"))
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDisabledDispatcherDropsRecords(t *testing.T) {
	d := Disabled()
	require.False(t, d.Enabled())

	err, ok := <-d.Submit(domain.NewDocumentAudit("text"))
	require.False(t, ok)
	require.NoError(t, err)
	require.NoError(t, d.Close(context.Background()))
}

func TestCloseHonoursContext(t *testing.T) {
	sink := &blockingSink{release: make(chan struct{})}
	d := NewDispatcher("test", sink, time.Minute, nil)
	d.Submit(domain.NewDocumentAudit("text"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, d.Close(ctx), context.DeadlineExceeded)

	close(sink.release)
	require.NoError(t, d.Close(context.Background()))
}
