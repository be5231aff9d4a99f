package predictor

import (
	"context"
	"errors"
	"sync"

	"farmeasy/apperr"
	"farmeasy/models"

	"github.com/rs/zerolog"
)

// DatasetSource supplies training data on demand.
type DatasetSource func() (Dataset, error)

// Coordinator owns the live model. It loads the persisted bundle on first
// use, or trains and saves a new one when there is none or it is unreadable.
type Coordinator struct {
	repo    Repository
	trainer *Trainer
	source  DatasetSource
	log     zerolog.Logger

	// OnTrained, when set, is called after every successful fit.
	OnTrained func(Metrics)

	mu    sync.Mutex
	model *Model
}

func NewCoordinator(repo Repository, trainer *Trainer, source DatasetSource, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		repo:    repo,
		trainer: trainer,
		source:  source,
		log:     log.With().Str("component", "predictor").Logger(),
	}
}

// Model returns the live model, loading or training it if needed.
func (c *Coordinator) Model() (*Model, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.model != nil {
		return c.model, nil
	}

	m, err := c.repo.Load()
	switch {
	case err == nil:
		c.log.Info().Time("trained_at", m.TrainedAt).Msg("Loaded crop model")
		c.model = m
		return m, nil
	case errors.Is(err, ErrModelNotFound):
		c.log.Info().Msg("No crop model found, training")
	default:
		c.log.Warn().Err(err).Msg("Crop model unreadable, retraining")
	}
	return c.trainLocked()
}

// Retrain fits a fresh model and replaces the live one.
func (c *Coordinator) Retrain() (*Model, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.trainLocked()
}

func (c *Coordinator) trainLocked() (*Model, error) {
	d, err := c.source()
	if err != nil {
		return nil, apperr.ModelUnavailable(err)
	}
	m, err := c.trainer.Fit(d)
	if err != nil {
		return nil, apperr.ModelUnavailable(err)
	}
	c.log.Info().
		Float64("accuracy", m.Metrics.Accuracy).
		Float64("yield_rmse", m.Metrics.YieldRMSE).
		Float64("price_rmse", m.Metrics.PriceRMSE).
		Int("rows", d.Len()).
		Msg("Trained crop model")

	if err := c.repo.Save(m); err != nil {
		c.log.Error().Err(err).Msg("Failed to persist crop model, serving in-memory copy")
	}
	c.model = m
	if c.OnTrained != nil {
		c.OnTrained(m.Metrics)
	}
	return m, nil
}

// Predict ranks crops for s.
func (c *Coordinator) Predict(ctx context.Context, s models.SoilSample) ([]Prediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m, err := c.Model()
	if err != nil {
		return nil, err
	}
	preds, err := m.Predict(s)
	if err != nil {
		return nil, apperr.ModelUnavailable(err)
	}
	return preds, nil
}

// Run loads or trains the model ahead of the first request. It satisfies
// the scheduler's job interface.
func (c *Coordinator) Run() error {
	_, err := c.Model()
	return err
}

func (c *Coordinator) Name() string { return "crop_model_warmup" }
