// Package recommend turns a soil sample into a ranked list of crop
// recommendations enriched with soil health, profit and subsidy data, and
// records the result as an audit trail.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"farmeasy/apperr"
	"farmeasy/catalog"
	"farmeasy/metrics"
	"farmeasy/models"
	"farmeasy/notify"
	"farmeasy/predictor"
	"farmeasy/profit"
	"farmeasy/soil"
	"farmeasy/store"
	"farmeasy/subsidy"
)

const notifyTimeout = 10 * time.Second

// Predictor ranks crops for a sample.
type Predictor interface {
	Predict(ctx context.Context, s models.SoilSample) ([]predictor.Prediction, error)
}

type Entry struct {
	Crop                 string              `json:"crop"`
	CropID               int64               `json:"crop_id,omitempty"`
	Confidence           float64             `json:"confidence"`
	ConfidencePercentage float64             `json:"confidence_percentage"`
	PredictedYield       float64             `json:"predicted_yield"`
	PredictedPrice       float64             `json:"predicted_price"`
	Profit               profit.Analysis     `json:"profit_analysis"`
	Subsidies            []subsidy.Offer     `json:"subsidies"`
	Season               string              `json:"season"`
	SoilHealth           soil.Report         `json:"soil_health"`
	MarketTrend          catalog.MarketTrend `json:"market_trend"`
}

type Result struct {
	Recommendations []Entry     `json:"recommendations"`
	SoilHealth      soil.Report `json:"soil_health"`
	SoilTestID      int64       `json:"soil_test_id,omitempty"`
	FarmSize        float64     `json:"farm_size"`
	Location        string      `json:"location,omitempty"`
	Persisted       bool        `json:"persisted"`
}

type Service struct {
	store     *store.Store
	predictor Predictor
	catalog   *catalog.Catalog
	estimator *profit.Estimator
	matcher   *subsidy.Matcher
	notifier  notify.Notifier
	log       zerolog.Logger

	// Observe, when set, receives one metrics outcome per request.
	Observe func(outcome string)
}

func NewService(st *store.Store, p Predictor, c *catalog.Catalog, n notify.Notifier, log zerolog.Logger) *Service {
	return &Service{
		store:     st,
		predictor: p,
		catalog:   c,
		estimator: profit.NewEstimator(c),
		matcher:   subsidy.NewMatcher(c),
		notifier:  n,
		log:       log.With().Str("component", "recommend").Logger(),
	}
}

// Recommend predicts, enriches and persists the soil test with one
// recommendation row per crop, atomically. The top crop is then sent to
// the user's phone; delivery problems are only logged.
func (s *Service) Recommend(ctx context.Context, user models.User, sample models.SoilSample, farmSize float64, location string) (*Result, error) {
	res, err := s.recommend(ctx, user, sample, farmSize, location)
	s.observe(err)
	if err != nil {
		return nil, err
	}
	s.notifyTop(ctx, user, res)
	return res, nil
}

func (s *Service) recommend(ctx context.Context, user models.User, sample models.SoilSample, farmSize float64, location string) (*Result, error) {
	if err := validate(sample, farmSize); err != nil {
		return nil, err
	}
	res, err := s.build(ctx, sample, farmSize, location)
	if err != nil {
		return nil, err
	}

	err = s.store.WithTx(ctx, func(tx *store.Store) error {
		test, err := tx.CreateSoilTest(ctx, user.ID, sample)
		if err != nil {
			return err
		}
		res.SoilTestID = test.ID
		for i := range res.Recommendations {
			e := &res.Recommendations[i]
			proto := store.CropFromProfile(s.catalog, e.Crop)
			proto.ExpectedYield, proto.MarketPrice = e.PredictedYield, e.PredictedPrice
			crop, err := tx.GetOrCreateCrop(ctx, proto)
			if err != nil {
				return err
			}
			e.CropID = crop.ID
			if err := tx.CreateRecommendation(ctx, &models.Recommendation{
				UserID:     user.ID,
				SoilTestID: test.ID,
				CropID:     crop.ID,
				Confidence: e.Confidence,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	res.Persisted = true

	s.log.Info().
		Int64("user_id", user.ID).
		Int64("soil_test_id", res.SoilTestID).
		Str("top_crop", res.Recommendations[0].Crop).
		Msg("recommendation recorded")
	return res, nil
}

// Preview runs the same pipeline without writing anything.
func (s *Service) Preview(ctx context.Context, sample models.SoilSample, farmSize float64, location string) (*Result, error) {
	if err := validate(sample, farmSize); err != nil {
		return nil, err
	}
	return s.build(ctx, sample, farmSize, location)
}

func (s *Service) build(ctx context.Context, sample models.SoilSample, farmSize float64, location string) (*Result, error) {
	preds, err := s.predictor.Predict(ctx, sample)
	if err != nil {
		return nil, err
	}
	if len(preds) == 0 {
		return nil, apperr.ModelUnavailable(errors.New("no predictions"))
	}

	health := soil.Analyze(sample)
	res := &Result{
		Recommendations: make([]Entry, 0, len(preds)),
		SoilHealth:      health,
		FarmSize:        farmSize,
		Location:        location,
	}
	for _, p := range preds {
		res.Recommendations = append(res.Recommendations, Entry{
			Crop:                 p.Crop,
			Confidence:           p.Confidence,
			ConfidencePercentage: math.Round(p.Confidence*10000) / 100,
			PredictedYield:       p.Yield,
			PredictedPrice:       p.Price,
			Profit:               s.estimator.Estimate(p.Crop, p.Yield, p.Price, farmSize, sample),
			Subsidies:            s.matcher.Match(p.Crop, farmSize),
			Season:               s.catalog.SeasonFor(p.Crop),
			SoilHealth:           health,
			MarketTrend:          s.catalog.TrendFor(p.Crop),
		})
	}
	return res, nil
}

func (s *Service) notifyTop(ctx context.Context, user models.User, res *Result) {
	if s.notifier == nil {
		return
	}
	if user.Phone == "" {
		s.log.Debug().Int64("user_id", user.ID).Msg("no phone on file, skipping recommendation sms")
		return
	}
	// The request may already be finishing; delivery gets its own deadline.
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	top := res.Recommendations[0]
	ok, info := s.notifier.Send(nctx, user.Phone, notify.CropRecommendation(user.Username, top.Crop, top.Confidence))
	if !ok {
		s.log.Warn().Int64("user_id", user.ID).Str("reason", info).Msg("recommendation sms not delivered")
		return
	}
	s.log.Info().Int64("user_id", user.ID).Str("message_id", info).Msg("recommendation sms sent")
}

func (s *Service) observe(err error) {
	if s.Observe == nil {
		return
	}
	var ve *apperr.ValidationError
	switch {
	case err == nil:
		s.Observe(metrics.OutcomeOK)
	case errors.As(err, &ve):
		s.Observe(metrics.OutcomeInvalid)
	default:
		s.Observe(metrics.OutcomeError)
	}
}

// sampleRanges are the accepted bounds for each reading. Anything outside
// them, or not finite, cannot come from a real soil test.
var sampleRanges = []struct {
	field    string
	get      func(models.SoilSample) float64
	min, max float64
	msg      string
}{
	{"nitrogen", func(s models.SoilSample) float64 { return s.Nitrogen }, 0, 1000, "must be between 0 and 1000"},
	{"phosphorus", func(s models.SoilSample) float64 { return s.Phosphorus }, 0, 1000, "must be between 0 and 1000"},
	{"potassium", func(s models.SoilSample) float64 { return s.Potassium }, 0, 1000, "must be between 0 and 1000"},
	{"ph_level", func(s models.SoilSample) float64 { return s.PH }, 0, 14, "must be between 0 and 14"},
	{"organic_carbon", func(s models.SoilSample) float64 { return s.OrganicCarbon }, 0, 100, "must be between 0 and 100"},
	{"temperature", func(s models.SoilSample) float64 { return s.Temperature }, -50, 60, "must be between -50 and 60"},
	{"humidity", func(s models.SoilSample) float64 { return s.Humidity }, 0, 100, "must be between 0 and 100"},
	{"rainfall", func(s models.SoilSample) float64 { return s.Rainfall }, 0, 5000, "must be between 0 and 5000"},
}

func validate(s models.SoilSample, farmSize float64) error {
	fields := map[string]string{}
	for _, r := range sampleRanges {
		if v := r.get(s); !inRange(v, r.min, r.max) {
			fields[r.field] = r.msg
		}
	}
	if !inRange(farmSize, 0, models.MaxFarmHectares) {
		fields["farm_size"] = fmt.Sprintf("must be between 0 and %g hectares", models.MaxFarmHectares)
	}
	if len(fields) > 0 {
		return apperr.Validation("invalid soil sample", fields)
	}
	return nil
}

// inRange is false for NaN and infinities.
func inRange(v, lo, hi float64) bool {
	return !math.IsNaN(v) && v >= lo && v <= hi
}
