package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"farmeasy/catalog"
	"farmeasy/database"
	"farmeasy/farm"
	"farmeasy/ledger"
	"farmeasy/market"
	"farmeasy/metrics"
	"farmeasy/notify"
	"farmeasy/predictor"
	"farmeasy/recommend"
	"farmeasy/scheduler"
	"farmeasy/store"
	"farmeasy/subsidy"
	"farmeasy/weather"
)

// Weather reads conditions from the provider.
type Weather interface {
	Current(ctx context.Context, loc weather.Location) (weather.Current, error)
	Forecast(ctx context.Context, loc weather.Location, days int) (weather.Forecast, error)
}

type App struct {
	cfg Config
	log zerolog.Logger

	db       *database.DB
	ledgerDB *database.DB
	mongo    *mongo.Client
	mqtt     mqtt.Client

	catalog   *catalog.Catalog
	store     *store.Store
	ledger    *ledger.Ledger
	model     *predictor.Coordinator
	recommend *recommend.Service
	market    *market.Service
	farms     *farm.Service
	matcher   *subsidy.Matcher
	weather   Weather
	notifier  notify.Notifier
	metrics   *metrics.Metrics
	sched     *scheduler.Scheduler
}

func newApp(ctx context.Context, cfg Config, log zerolog.Logger) (*App, error) {
	a := &App{
		cfg:     cfg,
		log:     log,
		catalog: catalog.Default(),
		metrics: metrics.New(),
	}
	if err := a.openStorage(ctx); err != nil {
		a.close(context.Background())
		return nil, err
	}
	if err := a.openNotifier(ctx); err != nil {
		a.close(context.Background())
		return nil, err
	}

	a.store = store.New(a.db.Conn(), log)
	if err := a.store.SeedSubsidies(ctx, a.catalog); err != nil {
		a.close(context.Background())
		return nil, fmt.Errorf("seed subsidies: %w", err)
	}

	l, err := ledger.Open(ctx, ledger.NewSQLJournal(a.ledgerDB.Conn()), log)
	if err != nil {
		a.close(context.Background())
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	a.ledger = l
	a.metrics.LedgerAudited(l.Height(), l.ValidateChain())

	a.model = predictor.NewCoordinator(
		predictor.NewFileRepository(cfg.ModelDir),
		predictor.NewTrainer(),
		a.datasetSource(),
		log,
	)
	a.model.OnTrained = func(predictor.Metrics) { a.metrics.ModelTrained() }

	farms, err := a.farmRepository(ctx)
	if err != nil {
		a.close(context.Background())
		return nil, err
	}

	a.weather = weather.NewClient(weather.Config{BaseURL: cfg.WeatherURL, APIKey: cfg.WeatherAPIKey}, log)
	a.wire(a.model, farms)

	a.sched = scheduler.New(log)
	audit := ledger.NewAuditJob(a.ledger, log, func(r ledger.AuditReport) {
		a.metrics.LedgerAudited(r.Height, r.Valid)
	})
	if err := a.sched.AddJob(cfg.LedgerAuditSchedule, audit); err != nil {
		a.close(context.Background())
		return nil, err
	}
	return a, nil
}

// wire builds the request-facing services from the opened infrastructure.
func (a *App) wire(p recommend.Predictor, farms farm.Repository) {
	a.recommend = recommend.NewService(a.store, p, a.catalog, a.notifier, a.log)
	a.recommend.Observe = a.metrics.Recommendation
	a.market = market.NewService(a.store, a.ledger, a.notifier, a.log)
	a.farms = farm.NewService(farms, a.catalog, a.log)
	a.matcher = subsidy.NewMatcher(a.catalog)
}

func (a *App) openStorage(ctx context.Context) error {
	db, err := database.New(database.Config{Path: a.cfg.DBPath, Profile: database.ProfileStandard, Name: database.SchemaApp})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	a.db = db
	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	ldb, err := database.New(database.Config{Path: a.cfg.LedgerDBPath, Profile: database.ProfileLedger, Name: database.SchemaLedger})
	if err != nil {
		return fmt.Errorf("open ledger database: %w", err)
	}
	a.ledgerDB = ldb
	if err := ldb.Migrate(); err != nil {
		return fmt.Errorf("migrate ledger database: %w", err)
	}

	if a.cfg.MongoURI != "" {
		client, err := database.ConnectMongo(ctx, a.cfg.MongoURI, 5, a.log)
		if err != nil {
			return err
		}
		a.mongo = client
	}
	return nil
}

func (a *App) farmRepository(ctx context.Context) (farm.Repository, error) {
	if a.mongo == nil {
		a.log.Warn().Msg("MONGO_URI not set, virtual farms are kept in memory")
		return farm.NewMemoryRepository(), nil
	}
	repo, err := store.NewFarmRepository(ctx, a.mongo.Database(a.cfg.MongoDB))
	if err != nil {
		return nil, fmt.Errorf("farm repository: %w", err)
	}
	return repo, nil
}

func (a *App) openNotifier(ctx context.Context) error {
	var n notify.Notifier
	channel := a.cfg.channel()
	switch channel {
	case notify.ChannelSMS:
		n = notify.NewTwilioNotifier(notify.TwilioConfig{
			BaseURL:    a.cfg.TwilioURL,
			AccountSID: a.cfg.TwilioAccountSID,
			AuthToken:  a.cfg.TwilioAuthToken,
			From:       a.cfg.TwilioPhoneNumber,
		}, a.log)
	case notify.ChannelMQTT:
		client, err := notify.ConnectMQTT(ctx, notify.MQTTConfig{Broker: a.cfg.MQTTBroker}, a.log)
		if err != nil {
			return err
		}
		a.mqtt = client
		n = notify.NewMQTTNotifier(client, a.cfg.MQTTTopic, a.log)
	default:
		n = notify.NewLogNotifier(a.log)
	}
	a.notifier = notify.Observe(n, channel, a.metrics.Notification)
	a.log.Info().Str("channel", channel).Msg("notifications configured")
	return nil
}

func (a *App) datasetSource() predictor.DatasetSource {
	return func() (predictor.Dataset, error) {
		if a.cfg.TrainingCSV != "" {
			return predictor.LoadCSVFile(a.cfg.TrainingCSV, a.catalog)
		}
		return predictor.Synthesize(a.catalog, a.cfg.TrainingPerCrop, predictor.DefaultSeed), nil
	}
}

// health pings every backing store.
func (a *App) health(ctx context.Context) map[string]string {
	out := map[string]string{}
	check := func(name string, err error) {
		if err != nil {
			out[name] = err.Error()
			return
		}
		out[name] = "ok"
	}
	check("database", a.db.HealthCheck(ctx))
	if a.ledgerDB != nil {
		check("ledger_database", a.ledgerDB.HealthCheck(ctx))
	}
	if a.mongo != nil {
		check("mongo", a.mongo.Ping(ctx, nil))
	}
	return out
}

func (a *App) close(ctx context.Context) {
	var errs []error
	if a.mqtt != nil {
		a.mqtt.Disconnect(250)
	}
	if a.mongo != nil {
		errs = append(errs, a.mongo.Disconnect(ctx))
	}
	if a.ledgerDB != nil {
		errs = append(errs, a.ledgerDB.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	if err := errors.Join(errs...); err != nil {
		a.log.Error().Err(err).Msg("shutdown")
	}
}

// warmup trains or loads the model off the request path.
func (a *App) warmup() {
	start := time.Now()
	if err := a.sched.RunNow(a.model); err != nil {
		a.log.Error().Err(err).Msg("crop model warm-up failed")
		return
	}
	a.log.Info().Dur("took", time.Since(start)).Msg("crop model ready")
}
