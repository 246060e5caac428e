package app

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/niksmo/storefront/config"
	"github.com/niksmo/storefront/internal/adapter"
	"github.com/niksmo/storefront/internal/adapter/httphandler"
	"github.com/niksmo/storefront/internal/adapter/kafka"
	"github.com/niksmo/storefront/internal/adapter/metrics"
	"github.com/niksmo/storefront/internal/adapter/restapi"
	"github.com/niksmo/storefront/internal/adapter/storage"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/internal/core/service"
	"github.com/niksmo/storefront/pkg/schema"
	"github.com/shopspring/decimal"
	"github.com/twmb/franz-go/pkg/sr"
)

type broker struct {
	tls               *tls.Config
	checkoutSerde     schema.Serde
	checkoutProducer  *kafka.CheckoutProducer
	spendingProcessor port.SpendingProcessor
	spendingView      *kafka.SpendingView
}

type coreService struct {
	ledger   *service.Ledger
	sessions *service.Sessions
	checkout *service.Checkout
	catalog  *service.Catalog
}

type App struct {
	ctx        context.Context
	cfg        config.Config
	store      storage.Store
	metrics    *metrics.Metrics
	broker     broker
	service    coreService
	httpServer httphandler.HTTPServer
	wg         *sync.WaitGroup
}

func New(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg, wg: &sync.WaitGroup{}}

	app.initLogger()
	app.initStorage()
	app.initBroker()
	app.initCoreService()
	app.initInboundAdapters()

	return app
}

func (app *App) initLogger() {
	opts := &slog.HandlerOptions{Level: app.cfg.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initStorage() {
	const op = "App.initStorage"

	store, err := storage.Open(app.ctx, storage.Config{
		Driver:     app.cfg.Storage.Driver,
		BadgerPath: app.cfg.Storage.BadgerPath,
		SQLDSN:     app.cfg.Storage.SQLDB,
	})
	if err != nil {
		app.fallDown(op, err)
	}
	app.store = store
	app.metrics = metrics.New()
}

// initBroker wires checkout publishing and spending aggregation.
// Without seed brokers both stay off.
func (app *App) initBroker() {
	const op = "App.initBroker"

	bc := app.cfg.Broker
	if !bc.Enabled() {
		slog.Info("broker is not configured, checkout events are off", "op", op)
		return
	}

	if bc.TLS.Enabled() {
		tlsConfig, err := adapter.MakeTLSConfig(bc.TLS.CA, bc.TLS.Cert, bc.TLS.Key)
		if err != nil {
			app.fallDown(op, err)
		}
		app.broker.tls = tlsConfig
		kafka.ApplyGokaTLS(tlsConfig)
	}

	app.initSerdes()
	app.initProducers()
	app.initProcessors()
}

func (app *App) initSerdes() {
	const op = "App.initSerdes"

	srOpts := []sr.ClientOpt{sr.URLs(app.cfg.Broker.SchemaRegistryURLs...)}
	if app.broker.tls != nil {
		srOpts = append(srOpts, sr.DialTLSConfig(app.broker.tls))
	}

	srClient, err := sr.NewClient(srOpts...)
	if err != nil {
		app.fallDown(op, err)
	}

	checkoutSubject := app.cfg.Broker.Topics.Checkouts + "-value"
	checkoutSerde, err := schema.NewSerdeCheckoutV1(
		app.ctx,
		schema.SubjectOpt(checkoutSubject),
		schema.SchemaIdentifierOpt(schema.NewSchemaCreater(srClient)),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	app.broker.checkoutSerde = checkoutSerde
}

func (app *App) initProducers() {
	const op = "App.initProducers"

	bc := app.cfg.Broker
	checkoutProducer, err := kafka.NewCheckoutProducer(
		kafka.ProducerClientOpt(
			app.ctx, bc.SeedBrokers, bc.Topics.Checkouts, app.broker.tls,
		),
		kafka.ProducerEncoderOpt(app.broker.checkoutSerde),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	app.broker.checkoutProducer = &checkoutProducer
}

func (app *App) initProcessors() {
	const op = "App.initProcessors"

	bc := app.cfg.Broker
	spendingProcessor, err := kafka.NewSpendingProcessor(
		bc.SeedBrokers,
		bc.Topics.Checkouts,
		bc.Consumers.SpendingGroup,
		app.broker.checkoutSerde,
	)
	if err != nil {
		app.fallDown(op, err)
	}

	spendingView, err := kafka.NewSpendingView(
		bc.SeedBrokers, bc.Consumers.SpendingGroup,
	)
	if err != nil {
		app.fallDown(op, err)
	}

	app.broker.spendingProcessor = spendingProcessor
	app.broker.spendingView = spendingView
}

func (app *App) initCoreService() {
	const op = "App.initCoreService"

	ledger := service.NewLedger(
		storage.NewBasketRepository(app.store), app.metrics,
	)

	var sessions *service.Sessions
	usersClient, err := restapi.NewClient(
		restAPIConfig(app.cfg.UsersAPI),
		restapi.TokenOpt(func() string {
			if app.cfg.UsersAPI.Token != "" {
				return app.cfg.UsersAPI.Token
			}
			if u, ok := sessions.Current(); ok {
				return u.ID
			}
			return ""
		}),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	sessions = service.NewSessions(
		storage.NewSessionRepository(app.store),
		restapi.NewUsersClient(usersClient),
		service.DefaultBudgetOpt(
			decimal.NewFromFloat(app.cfg.Session.DefaultBudget),
		),
	)

	catalogClient, err := restapi.NewClient(restAPIConfig(app.cfg.CatalogAPI))
	if err != nil {
		app.fallDown(op, err)
	}

	checkoutOpts := []service.CheckoutOpt{
		service.CheckoutRecorderOpt(app.metrics),
	}
	if app.broker.checkoutProducer != nil {
		checkoutOpts = append(checkoutOpts,
			service.CheckoutProducerOpt(app.broker.checkoutProducer))
	}

	ledger.Load(app.ctx)
	sessions.Load(app.ctx)

	app.service = coreService{
		ledger:   ledger,
		sessions: sessions,
		checkout: service.NewCheckout(ledger, sessions, checkoutOpts...),
		catalog: service.NewCatalog(
			restapi.NewCatalogClient(catalogClient), 0,
		),
	}
}

func (app *App) initInboundAdapters() {
	s := httphandler.Services{
		Basket:   app.service.ledger,
		Checkout: app.service.checkout,
		Auth:     app.service.sessions,
		Catalog:  app.service.catalog,
		Metrics:  app.metrics.Handler(),
	}
	// Spending stays nil without a broker.
	if app.broker.spendingView != nil {
		s.Spending = app.broker.spendingView
	}

	app.httpServer = httphandler.NewHTTPServer(
		app.cfg.HTTPServerAddr, httphandler.NewRouter(s),
	)
}

func (app *App) Run(stopFn context.CancelFunc) {
	if app.broker.spendingProcessor != nil {
		app.wg.Add(1)
		go app.broker.spendingProcessor.Run(app.ctx, stopFn, app.wg)
	}

	if app.broker.spendingView != nil {
		app.wg.Add(1)
		go func() {
			defer app.wg.Done()
			app.broker.spendingView.Run(app.ctx)
		}()
	}

	go app.httpServer.Run(stopFn)

	slog.Info("application is running")
}

func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	app.httpServer.Close(ctx)

	if app.broker.spendingProcessor != nil {
		app.broker.spendingProcessor.Close()
	}
	app.wg.Wait()

	if app.broker.checkoutProducer != nil {
		app.broker.checkoutProducer.Close()
	}
	app.store.Close()

	slog.Info("application is closed")
}

func restAPIConfig(c config.RestAPI) restapi.Config {
	return restapi.Config{
		BaseURL:   c.BaseURL,
		Timeout:   c.Timeout,
		RateLimit: c.RateLimit,
		Retries:   c.Retries,
	}
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
