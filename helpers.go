package main

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/streadway/amqp"

	"github.com/muhammadolammi/interviewmate/internal/auth"
	"github.com/muhammadolammi/interviewmate/internal/config"
	"github.com/muhammadolammi/interviewmate/internal/database"
	"github.com/muhammadolammi/interviewmate/internal/events"
	"github.com/muhammadolammi/interviewmate/internal/logger"
	"github.com/muhammadolammi/interviewmate/internal/resume"
	"github.com/muhammadolammi/interviewmate/internal/schema"
	"github.com/muhammadolammi/interviewmate/internal/store"
)

func loadCatalog(cfg *config.Config, log *logger.Logger) (*schema.Catalog, error) {
	catalog, err := schema.NewCatalog()
	if err != nil {
		return nil, err
	}
	if cfg.SchemaDir != "" {
		if err := catalog.LoadDir(cfg.SchemaDir); err != nil {
			return nil, err
		}
		log.Info("loaded form schemas", "dir", cfg.SchemaDir)
	}
	return catalog, nil
}

// newApp connects every configured backend. Missing optional settings are
// logged and the matching feature falls back or is disabled.
func newApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	app := &App{Config: cfg, Log: log, Publisher: events.NopPublisher{}}

	catalog, err := loadCatalog(cfg, log)
	if err != nil {
		return nil, err
	}
	app.Catalog = catalog

	var base store.Store
	if cfg.DBURL == "" {
		log.Warn("empty DB_URL in environment, records are kept in memory")
		base = store.NewMemory()
		app.Directory = auth.NewMemoryDirectory(cfg.Whitelist())
	} else {
		db, err := sql.Open("postgres", cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("error opening db: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("error connecting to db: %w", err)
		}
		app.closers = append(app.closers, func() { db.Close() })
		app.DB = database.New(db)
		base = store.NewPostgres(app.DB, log)
		app.Directory = auth.NewPostgresDirectory(app.DB)
	}

	if cfg.RabbitMQURL == "" {
		log.Warn("empty RABBITMQ_URL in environment, record events and queued analysis are disabled")
	} else {
		conn, err := amqp.Dial(cfg.RabbitMQURL)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("error connecting to RabbitMQ: %w", err)
		}
		app.closers = append(app.closers, func() { conn.Close() })
		app.RabbitConn = conn
		open := events.ConnOpener(conn)
		pub, err := events.NewAMQPPublisher(open)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.Publisher = pub
		app.Jobs = events.NewJobQueue(open)
	}

	var archive store.Archiver
	if cfg.R2.Enabled() {
		a, err := resume.NewR2Archive(ctx, cfg.R2)
		if err != nil {
			app.Close()
			return nil, err
		}
		archive = a
	} else {
		log.Warn("R2 is not configured, resumes are not archived")
	}

	app.Store = store.NewNotifying(base, app.Publisher, archive, log)
	return app, nil
}
