package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muhammadolammi/interviewmate/internal/interview"
)

type published struct {
	exchange, key string
	msg           amqp.Publishing
}

type fakeChannel struct {
	exchanges []string
	queues    []string
	published []published
	closed    int
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, _, _, _, _ bool, _ amqp.Table) error {
	f.exchanges = append(f.exchanges, name+":"+kind)
	return nil
}

func (f *fakeChannel) QueueDeclare(name string, durable, _, _, _ bool, _ amqp.Table) (amqp.Queue, error) {
	if !durable {
		return amqp.Queue{}, errors.New("queue must be durable")
	}
	f.queues = append(f.queues, name)
	return amqp.Queue{Name: name}, nil
}

func (f *fakeChannel) Publish(exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.published = append(f.published, published{exchange, key, msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed++
	return nil
}

func opener(ch *fakeChannel) Opener {
	return func() (Channel, error) { return ch, nil }
}

func TestPublisherRoutesByRecord(t *testing.T) {
	ch := &fakeChannel{}
	p, err := NewAMQPPublisher(opener(ch))
	require.NoError(t, err)
	assert.Equal(t, []string{"interview_updates:topic"}, ch.exchanges)

	fixed := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	require.NoError(t, p.Publish(context.Background(), Update{RecordID: "abc", Event: EventSaved}))
	require.Len(t, ch.published, 1)
	msg := ch.published[0]
	assert.Equal(t, UpdatesExchange, msg.exchange)
	assert.Equal(t, "record.abc", msg.key)
	assert.Equal(t, "application/json", msg.msg.ContentType)

	var u Update
	require.NoError(t, json.Unmarshal(msg.msg.Body, &u))
	assert.Equal(t, "abc", u.RecordID)
	assert.Equal(t, EventSaved, u.Event)
	assert.True(t, fixed.Equal(u.Timestamp))
	assert.Equal(t, 2, ch.closed, "one channel for the declare and one per publish")
}

func TestPublisherOpenFailure(t *testing.T) {
	_, err := NewAMQPPublisher(func() (Channel, error) { return nil, errors.New("closed") })
	assert.Error(t, err)
}

func TestEnqueuePersistsJob(t *testing.T) {
	ch := &fakeChannel{}
	q := NewJobQueue(opener(ch))

	job := Job{RecordID: "rec-1", Type: interview.TypeHR, Language: interview.LangEN, RequestedBy: "u1"}
	require.NoError(t, q.Enqueue(context.Background(), job))

	assert.Equal(t, []string{AnalysisQueue}, ch.queues)
	require.Len(t, ch.published, 1)
	msg := ch.published[0]
	assert.Equal(t, "", msg.exchange)
	assert.Equal(t, AnalysisQueue, msg.key)
	assert.Equal(t, uint8(amqp.Persistent), msg.msg.DeliveryMode)

	got, err := DecodeJob(msg.msg.Body)
	require.NoError(t, err)
	assert.Equal(t, job, got)
}

func TestDecodeJob(t *testing.T) {
	j, err := DecodeJob([]byte(`{"record_id":"r1"}`))
	require.NoError(t, err)
	assert.Equal(t, interview.TypeStandard, j.Type)
	assert.Equal(t, interview.LangKO, j.Language)

	for _, body := range []string{`not json`, `{}`, `{"record_id":"r1","type":"PANEL"}`, `{"record_id":"r1","language":"FR"}`} {
		_, err := DecodeJob([]byte(body))
		assert.ErrorIs(t, err, ErrInvalidJob, body)
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), Update{RecordID: "x"}))
}
