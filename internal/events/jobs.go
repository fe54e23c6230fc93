package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/streadway/amqp"

	"github.com/muhammadolammi/interviewmate/internal/interview"
)

const AnalysisQueue = "analysis_jobs"

// Job asks a worker to analyze a stored record.
type Job struct {
	RecordID    string                  `json:"record_id"`
	Type        interview.InterviewType `json:"type"`
	Language    interview.Language      `json:"language"`
	RequestedBy string                  `json:"requested_by,omitempty"`
}

var ErrInvalidJob = errors.New("invalid analysis job")

// DecodeJob parses a queued job body, filling in the default type and
// language.
func DecodeJob(body []byte) (Job, error) {
	var j Job
	if err := json.Unmarshal(body, &j); err != nil {
		return Job{}, fmt.Errorf("%w: %v", ErrInvalidJob, err)
	}
	if j.RecordID == "" {
		return Job{}, fmt.Errorf("%w: missing record_id", ErrInvalidJob)
	}
	t, err := interview.ParseInterviewType(string(j.Type))
	if err != nil {
		return Job{}, fmt.Errorf("%w: %v", ErrInvalidJob, err)
	}
	lang, err := interview.ParseLanguage(string(j.Language))
	if err != nil {
		return Job{}, fmt.Errorf("%w: %v", ErrInvalidJob, err)
	}
	j.Type, j.Language = t, lang
	return j, nil
}

// DeclareQueue declares the durable analysis job queue.
func DeclareQueue(ch Channel) error {
	_, err := ch.QueueDeclare(
		AnalysisQueue, // queue name
		true,          // durable (survives broker restarts)
		false,         // auto-delete when unused
		false,         // exclusive
		false,         // no-wait
		nil,           // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	return nil
}

type Enqueuer interface {
	Enqueue(ctx context.Context, job Job) error
}

type JobQueue struct {
	open Opener
}

func NewJobQueue(open Opener) *JobQueue {
	return &JobQueue{open: open}
}

func (q *JobQueue) Enqueue(_ context.Context, job Job) error {
	ch, err := q.open()
	if err != nil {
		return err
	}
	defer ch.Close()
	if err := DeclareQueue(ch); err != nil {
		return err
	}
	body, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return ch.Publish(
		"", // default exchange
		AnalysisQueue,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}
