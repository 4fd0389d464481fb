package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carbon-chat-go/pkg/tasks"
)

type fetchResult struct {
	msg kafka.Message
	err error
}

// fakeReader 依次返回预置的结果，耗尽后取消 ctx 让 Run 退出。
type fakeReader struct {
	results   []fetchResult
	cancel    context.CancelFunc
	committed []int64
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.results) == 0 {
		r.cancel()
		return kafka.Message{}, ctx.Err()
	}
	next := r.results[0]
	r.results = r.results[1:]
	return next.msg, next.err
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

// fakeProcessor 对每个事件先失败 failures[EventID] 次，再成功。
type fakeProcessor struct {
	mu       sync.Mutex
	failures map[string]int
	calls    map[string]int
	order    []string
}

func (p *fakeProcessor) Process(_ context.Context, event tasks.FootprintEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.calls == nil {
		p.calls = make(map[string]int)
	}
	p.calls[event.EventID]++
	p.order = append(p.order, event.EventID)
	if p.calls[event.EventID] <= p.failures[event.EventID] {
		return errors.New("database unavailable")
	}
	return nil
}

func eventMessage(t *testing.T, offset int64, eventID string) fetchResult {
	t.Helper()
	value, err := json.Marshal(tasks.FootprintEvent{EventID: eventID, SessionID: "s1", Activity: "car", Quantity: 50, Unit: "km", KgCO2: 10})
	require.NoError(t, err)
	return fetchResult{msg: kafka.Message{Offset: offset, Value: value}}
}

func runConsumer(t *testing.T, rdb *redis.Client, processor EventProcessor, results ...fetchResult) *fakeReader {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	reader := &fakeReader{results: results, cancel: cancel}
	c := &Consumer{reader: reader, rdb: rdb, processor: processor}
	c.Run(ctx)
	return reader
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestConsumerRetriesBeforeCommitting(t *testing.T) {
	mr, rdb := newTestRedis(t)
	processor := &fakeProcessor{failures: map[string]int{"e1": 2}}

	reader := runConsumer(t, rdb, processor, eventMessage(t, 10, "e1"), eventMessage(t, 11, "e2"))

	assert.Equal(t, []string{"e1", "e1", "e1", "e2"}, processor.order)
	assert.Equal(t, []int64{10, 11}, reader.committed)
	assert.False(t, mr.Exists("kafka:attempts:e1"))
}

func TestConsumerGivesUpAfterMaxAttempts(t *testing.T) {
	_, rdb := newTestRedis(t)
	processor := &fakeProcessor{failures: map[string]int{"e1": 100}}

	reader := runConsumer(t, rdb, processor, eventMessage(t, 10, "e1"), eventMessage(t, 11, "e2"))

	assert.Equal(t, maxAttempts, processor.calls["e1"])
	assert.Equal(t, 1, processor.calls["e2"])
	assert.Equal(t, []int64{10, 11}, reader.committed)
}

func TestConsumerResumesAttemptCountFromRedis(t *testing.T) {
	mr, rdb := newTestRedis(t)
	require.NoError(t, mr.Set("kafka:attempts:e1", "2"))
	processor := &fakeProcessor{failures: map[string]int{"e1": 100}}

	reader := runConsumer(t, rdb, processor, eventMessage(t, 10, "e1"))

	assert.Equal(t, 1, processor.calls["e1"])
	assert.Equal(t, []int64{10}, reader.committed)
}

func TestConsumerCountsLocallyWithoutRedis(t *testing.T) {
	mr, rdb := newTestRedis(t)
	mr.Close()
	processor := &fakeProcessor{failures: map[string]int{"e1": 100}}

	reader := runConsumer(t, rdb, processor, eventMessage(t, 10, "e1"))

	assert.Equal(t, maxAttempts, processor.calls["e1"])
	assert.Equal(t, []int64{10}, reader.committed)
}

func TestConsumerSurvivesFetchErrors(t *testing.T) {
	_, rdb := newTestRedis(t)
	processor := &fakeProcessor{}

	reader := runConsumer(t, rdb, processor,
		fetchResult{err: errors.New("broker not available")},
		eventMessage(t, 10, "e1"),
	)

	assert.Equal(t, []string{"e1"}, processor.order)
	assert.Equal(t, []int64{10}, reader.committed)
}

func TestConsumerCommitsMalformedMessages(t *testing.T) {
	_, rdb := newTestRedis(t)
	processor := &fakeProcessor{}

	reader := runConsumer(t, rdb, processor,
		fetchResult{msg: kafka.Message{Offset: 7, Value: []byte("{not json")}},
		eventMessage(t, 8, "e1"),
	)

	assert.Equal(t, []string{"e1"}, processor.order)
	assert.Equal(t, []int64{7, 8}, reader.committed)
}
