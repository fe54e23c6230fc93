package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/streadway/amqp"

	"github.com/muhammadolammi/interviewmate/internal/analysis"
	"github.com/muhammadolammi/interviewmate/internal/events"
	"github.com/muhammadolammi/interviewmate/internal/retry"
	"github.com/muhammadolammi/interviewmate/internal/store"
)

func (wc *WorkerConfig) publish(ctx context.Context, job events.Job, status, message string) {
	err := wc.Publisher.Publish(ctx, events.Update{
		RecordID: job.RecordID,
		Event:    events.EventAnalysis,
		Status:   status,
		Message:  message,
		UserID:   job.RequestedBy,
	})
	if err != nil {
		wc.Log.Warn("failed to publish update", "record_id", job.RecordID, "status", status, "error", err)
	}
}

// analyzeRecord loads the record, asks for a summary and stores it.
// Model failures are retried; a record without notes is not.
func (wc *WorkerConfig) analyzeRecord(ctx context.Context, job events.Job) error {
	rec, err := wc.Store.Get(ctx, store.System, job.RecordID)
	if err != nil {
		return fmt.Errorf("error getting record %s: %w", job.RecordID, err)
	}
	sc, err := wc.Catalog.Lookup(job.Type, job.Language)
	if err != nil {
		return err
	}

	res, err := retry.Do(ctx, 2, func() (analysis.Result, error) {
		res := wc.Analysis.Analyze(ctx, rec, sc)
		if res.Status == analysis.StatusFailed {
			return res, res.Err
		}
		return res, nil
	})
	if err != nil {
		return fmt.Errorf("agent failed: %w", err)
	}
	if !res.OK() {
		return fmt.Errorf("no summary for record %s: %s", rec.ID, res.Status)
	}

	_, err = retry.Do(ctx, 3, func() (struct{}, error) {
		return struct{}{}, wc.Store.SetSummary(ctx, store.System, rec.ID, res.Text)
	})
	if err != nil {
		return fmt.Errorf("failed to save summary after retries: %w", err)
	}
	return nil
}

// handleJob runs one queued job and publishes its progress.
func (wc *WorkerConfig) handleJob(ctx context.Context, workerID int, body []byte) error {
	job, err := events.DecodeJob(body)
	if err != nil {
		wc.Log.Error("error decoding job", "worker", workerID, "error", err)
		return err
	}
	wc.Log.Info("processing record", "worker", workerID, "record_id", job.RecordID)
	wc.publish(ctx, job, events.StatusProcessing, "analysis started")

	if err := wc.analyzeRecord(ctx, job); err != nil {
		wc.Log.Error("error analyzing record", "worker", workerID, "record_id", job.RecordID, "error", err)
		wc.publish(ctx, job, events.StatusFailed, "analysis failed")
		return err
	}
	wc.publish(ctx, job, events.StatusCompleted, "analysis completed")
	return nil
}

func worker(ctx context.Context, id int, wc *WorkerConfig, wg *sync.WaitGroup) {
	defer wg.Done()
	log := wc.Log.With("worker", id)

	conn, err := amqp.Dial(wc.RABBITMQUrl)
	if err != nil {
		log.Error("error dialling rabbitmq", "error", err)
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Error("error connecting to rabbitmq channel", "error", err)
		return
	}
	defer ch.Close()
	if err := events.DeclareQueue(ch); err != nil {
		log.Error("failed to declare queue", "error", err)
		return
	}

	msgs, err := ch.Consume(
		events.AnalysisQueue, // queue name
		"",                   // consumer tag
		true,                 // auto-ack
		false,                // exclusive
		false,                // no-local
		false,                // no-wait
		nil,                  // arguments
	)
	if err != nil {
		log.Error("error consuming rabbitmq messages", "error", err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				log.Warn("delivery channel closed")
				return
			}
			_ = wc.handleJob(ctx, id, msg.Body)
		}
	}
}

// StartConsumerWorkerPool blocks until every worker has stopped.
func (wc *WorkerConfig) StartConsumerWorkerPool(ctx context.Context, numWorkers int) {
	var wg sync.WaitGroup
	wg.Add(numWorkers)

	for i := range numWorkers {
		wc.Log.Info("worker started", "worker", i+1)
		go worker(ctx, i+1, wc, &wg)
	}
	wg.Wait()
}
