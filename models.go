package main

import (
	"github.com/streadway/amqp"

	"github.com/muhammadolammi/interviewmate/internal/analysis"
	"github.com/muhammadolammi/interviewmate/internal/auth"
	"github.com/muhammadolammi/interviewmate/internal/config"
	"github.com/muhammadolammi/interviewmate/internal/database"
	"github.com/muhammadolammi/interviewmate/internal/events"
	"github.com/muhammadolammi/interviewmate/internal/logger"
	"github.com/muhammadolammi/interviewmate/internal/schema"
	"github.com/muhammadolammi/interviewmate/internal/store"
)

// App holds the dependencies shared by the serve and worker commands.
// Optional backends are nil when not configured.
type App struct {
	Config *config.Config
	Log    *logger.Logger

	DB         *database.Queries
	Store      store.Store
	Directory  auth.Directory
	Catalog    *schema.Catalog
	Publisher  events.Publisher
	Jobs       events.Enqueuer
	RabbitConn *amqp.Connection

	closers []func()
}

// Close releases connections in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

type WorkerConfig struct {
	Log         *logger.Logger
	Store       store.Store
	Catalog     *schema.Catalog
	Analysis    *analysis.Service
	Publisher   events.Publisher
	RABBITMQUrl string
}
