package app

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/niksmo/sweet-shop/config"
	"github.com/niksmo/sweet-shop/internal/adapter"
	"github.com/niksmo/sweet-shop/internal/adapter/authclient"
	"github.com/niksmo/sweet-shop/internal/adapter/httphandler"
	"github.com/niksmo/sweet-shop/internal/adapter/kafka"
	"github.com/niksmo/sweet-shop/internal/adapter/memstore"
	"github.com/niksmo/sweet-shop/internal/adapter/storage"
	"github.com/niksmo/sweet-shop/internal/core/port"
	"github.com/niksmo/sweet-shop/internal/core/service"
	"github.com/niksmo/sweet-shop/pkg/schema"
	"github.com/twmb/franz-go/pkg/sr"
)

type repositories struct {
	sweets port.SweetsRepository
	carts  port.CartsRepository
}

type App struct {
	ctx context.Context
	cfg config.Config

	signalSerde schema.Serde
	brokerTLS   *tls.Config

	sqldb       storage.SQLDB
	repos       repositories
	signalStore *memstore.SignalStore

	producer kafka.SignalsProducer
	consumer *kafka.SignalsConsumer
	popProc  *kafka.PopularityProcessor
	popView  *kafka.PopularityView

	httpServer httphandler.HTTPServer
}

func New(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg}

	app.initLogger()
	app.initBrokerTLS()
	app.initSerde()
	app.initStorage()
	app.initSignalPipeline()
	app.initHTTPServer()

	return app
}

func (app *App) initLogger() {
	opts := &slog.HandlerOptions{Level: app.cfg.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initBrokerTLS() {
	const op = "App.initBrokerTLS"

	if !app.cfg.Broker.TLS.Enabled() {
		return
	}
	t := app.cfg.Broker.TLS
	tlsConfig, err := adapter.MakeTLSConfig(t.CA, t.Cert, t.Key)
	if err != nil {
		app.fallDown(op, err)
	}
	app.brokerTLS = tlsConfig
}

func (app *App) initSerde() {
	const op = "App.initSerde"

	srClient, err := sr.NewClient(sr.URLs(app.cfg.Broker.SchemaRegistryURLs...))
	if err != nil {
		app.fallDown(op, err)
	}

	creater := schema.NewSchemaCreater(srClient)

	// identical schema text under both subjects resolves to one id
	viewSubject := app.cfg.Broker.Topics.ViewSignals + "-value"
	_, err = creater.DetermineID(
		app.ctx, viewSubject, schema.SignalEventSchemaTextV1)
	if err != nil {
		app.fallDown(op, err)
	}

	purchaseSubject := app.cfg.Broker.Topics.PurchaseSignals + "-value"
	signalSerde, err := schema.NewSerdeSignalEventV1(
		app.ctx,
		schema.SubjectOpt(purchaseSubject),
		schema.SchemaIdentifierOpt(creater),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	app.signalSerde = signalSerde
}

// initStorage wires the SQL repositories, or the in-memory set when no
// database is configured.
func (app *App) initStorage() {
	const op = "App.initStorage"

	if app.cfg.SQLDB == "" {
		slog.Warn("no sql_db configured, using in-memory storage")
		app.repos.sweets = memstore.NewSweetsRepository()
		app.repos.carts = memstore.NewCartsRepository()
		return
	}

	sqldb, err := storage.NewSQLDB(app.ctx, app.cfg.SQLDB)
	if err != nil {
		app.fallDown(op, err)
	}
	app.sqldb = sqldb
	app.repos.sweets = storage.NewSweetsRepository(sqldb)
	app.repos.carts = storage.NewCartsRepository(sqldb)
}

func (app *App) initSignalPipeline() {
	const op = "App.initSignalPipeline"

	cfgB := app.cfg.Broker

	producer, err := kafka.NewSignalsProducer(
		cfgB.Topics.ViewSignals,
		cfgB.Topics.PurchaseSignals,
		kafka.ProducerClientOpt(app.ctx, cfgB.SeedBrokers, app.brokerTLS),
		kafka.ProducerEncoderOpt(app.signalSerde),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.producer = producer

	app.signalStore = memstore.NewSignalStore()

	consumer, err := kafka.NewSignalsConsumer(
		kafka.ConsumerClientOpt(
			cfgB.SeedBrokers, app.brokerTLS, cfgB.Consumers.SignalsGroup,
			cfgB.Topics.ViewSignals, cfgB.Topics.PurchaseSignals,
		),
		kafka.ConsumerDecoderOpt(app.signalSerde),
		kafka.ConsumerSaverOpt(app.signalStore),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.consumer = consumer

	popProc, err := kafka.NewPopularityProcessor(
		cfgB.SeedBrokers,
		cfgB.Topics.PurchaseSignals,
		cfgB.Consumers.PopularityGroup,
		app.signalSerde,
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.popProc = popProc

	popView, err := kafka.NewPopularityView(
		cfgB.SeedBrokers, cfgB.Consumers.PopularityGroup)
	if err != nil {
		app.fallDown(op, err)
	}
	app.popView = popView
}

func (app *App) initHTTPServer() {
	stockService := service.NewStockService(app.repos.sweets, app.producer)
	cartService := service.NewCartService(app.repos.carts, app.repos.sweets)
	catalogService := service.NewCatalogService(app.repos.sweets)
	recommendService := service.NewRecommendService(
		app.repos.sweets, app.repos.carts,
		app.signalStore, app.popView, app.producer,
	)

	auth := authclient.New(app.cfg.AuthServiceAddr)

	mux := http.NewServeMux()
	httphandler.RegisterSweets(mux, auth,
		catalogService, catalogService, stockService, stockService,
		recommendService,
	)
	httphandler.RegisterCart(mux, auth, cartService, cartService)
	httphandler.RegisterRecommendations(mux, auth, recommendService)

	handler := httphandler.AllowJSON(mux)
	cfgS := app.cfg.HTTPServer
	app.httpServer = httphandler.NewHTTPServer(
		cfgS.Addr,
		httphandler.ServerTimeouts{
			Handler:    cfgS.HandlerTimeout,
			ReadHeader: cfgS.ReadHeaderTimeout,
			Idle:       cfgS.IdleTimeout,
		},
		handler,
	)
}

// Run starts the signal pipeline and, once it is ready, the HTTP
// server.
func (app *App) Run(stopFn context.CancelFunc) {
	var wg sync.WaitGroup
	wg.Add(2)
	go app.consumer.Run(app.ctx, stopFn, &wg)
	go app.popProc.Run(app.ctx, stopFn, &wg)
	go app.popView.Run(app.ctx)
	wg.Wait()

	go app.httpServer.Run(stopFn)

	slog.Info("application is running")
}

func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	app.httpServer.Close(ctx)
	app.consumer.Close()
	app.popProc.Close()
	app.producer.Close()
	if app.sqldb.DB != nil {
		app.sqldb.Close()
	}

	slog.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
