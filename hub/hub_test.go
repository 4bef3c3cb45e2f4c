package hub

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/food-ordering-app/models"
)

type recordingConn struct {
	frames   [][]byte
	fail     bool
	closed   bool
	deadline time.Time
}

func (r *recordingConn) SetWriteDeadline(t time.Time) error {
	r.deadline = t
	return nil
}

func (r *recordingConn) WriteMessage(_ int, data []byte) error {
	if r.fail {
		return errors.New("broken pipe")
	}
	r.frames = append(r.frames, data)
	return nil
}

func (r *recordingConn) Close() error {
	r.closed = true
	return nil
}

func TestBroadcastDropsBrokenClients(t *testing.T) {
	h := New()
	good := &recordingConn{}
	bad := &recordingConn{fail: true}
	h.Register(good, "admin")
	h.Register(bad, "staff")

	order := &models.Order{ID: 1, Code: "DH1", Status: models.StatusShipping}
	require.NoError(t, h.NotifyStatusChange(context.Background(), order, models.StatusProcessing, "admin", ""))

	require.Len(t, good.frames, 1)
	var msg Message
	require.NoError(t, json.Unmarshal(good.frames[0], &msg))
	assert.Equal(t, EventOrderStatus, msg.Event)

	assert.True(t, bad.closed)
	assert.Equal(t, 1, h.Count())
}

// stalledConn: client yang tidak pernah membaca, tulis baru gagal saat deadline lewat
type stalledConn struct {
	mu       sync.Mutex
	deadline time.Time
	closed   bool
}

func (s *stalledConn) SetWriteDeadline(t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deadline = t
	return nil
}

func (s *stalledConn) WriteMessage(_ int, _ []byte) error {
	s.mu.Lock()
	deadline := s.deadline
	s.mu.Unlock()
	if deadline.IsZero() {
		return errors.New("write without deadline")
	}
	time.Sleep(time.Until(deadline))
	return os.ErrDeadlineExceeded
}

func (s *stalledConn) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func TestBroadcastHonoursContextDeadline(t *testing.T) {
	h := New()
	good := &recordingConn{}
	slow := &stalledConn{}
	h.Register(good, "admin")
	h.Register(slow, "staff")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	want, _ := ctx.Deadline()

	start := time.Now()
	order := &models.Order{ID: 1, Code: "DH1", Status: models.StatusProcessing}
	require.NoError(t, h.NotifyStatusChange(ctx, order, models.StatusPending, "admin", ""))
	assert.Less(t, time.Since(start), time.Second)

	assert.Len(t, good.frames, 1)
	assert.Equal(t, want, good.deadline)
	assert.True(t, slow.closed)
	assert.Equal(t, 1, h.Count())
}

func TestBroadcastDefaultsWriteDeadline(t *testing.T) {
	h := New()
	c := &recordingConn{}
	h.Register(c, "admin")

	h.Broadcast(context.Background(), Message{Event: EventOrderPlaced})
	require.Len(t, c.frames, 1)
	assert.WithinDuration(t, time.Now().Add(writeWait), c.deadline, time.Second)
}

func TestUnregister(t *testing.T) {
	h := New()
	c := &recordingConn{}
	h.Register(c, "admin")
	h.Unregister(c)
	assert.True(t, c.closed)
	assert.Equal(t, 0, h.Count())
}
