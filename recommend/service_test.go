package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmeasy/apperr"
	"farmeasy/catalog"
	"farmeasy/database"
	"farmeasy/database/dbtest"
	"farmeasy/logger"
	"farmeasy/metrics"
	"farmeasy/models"
	"farmeasy/predictor"
	"farmeasy/store"
)

type fakePredictor struct {
	preds []predictor.Prediction
	err   error
}

func (f fakePredictor) Predict(context.Context, models.SoilSample) ([]predictor.Prediction, error) {
	return f.preds, f.err
}

type sent struct{ to, msg string }

type fakeNotifier struct {
	mu   sync.Mutex
	ok   bool
	sent []sent
}

func (f *fakeNotifier) Send(_ context.Context, to, msg string) (bool, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sent{to, msg})
	if !f.ok {
		return false, "gateway down"
	}
	return true, "SM1"
}

var (
	healthy = models.SoilSample{Nitrogen: 90, Phosphorus: 42, Potassium: 43, PH: 6.5, OrganicCarbon: 2.5, Temperature: 24, Humidity: 80, Rainfall: 200}

	threePreds = []predictor.Prediction{
		{Crop: "rice", Confidence: 0.7, Yield: 4.5, Price: 25},
		{Crop: "cotton", Confidence: 0.2, Yield: 1.8, Price: 60},
		{Crop: "maize", Confidence: 0.1, Yield: 3.2, Price: 18},
	}
)

type fixture struct {
	db       *database.DB
	store    *store.Store
	user     models.User
	notifier *fakeNotifier
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := dbtest.NewTestDB(t, database.SchemaApp)
	st := store.New(db.Conn(), logger.Nop())
	u := models.User{Username: "asha", Email: "asha@example.com", PasswordHash: "x", Phone: "+911234567890"}
	require.NoError(t, st.CreateUser(context.Background(), &u))
	return fixture{db: db, store: st, user: u, notifier: &fakeNotifier{ok: true}}
}

func (f fixture) service(p Predictor) *Service {
	return NewService(f.store, p, catalog.Default(), f.notifier, logger.Nop())
}

func TestRecommendPersistsAuditTrail(t *testing.T) {
	f := newFixture(t)
	var outcomes []string
	svc := f.service(fakePredictor{preds: threePreds})
	svc.Observe = func(o string) { outcomes = append(outcomes, o) }

	res, err := svc.Recommend(t.Context(), f.user, healthy, 1.0, "Pune")
	require.NoError(t, err)

	assert.True(t, res.Persisted)
	assert.NotZero(t, res.SoilTestID)
	require.Len(t, res.Recommendations, 3)
	for i, e := range res.Recommendations {
		assert.NotZero(t, e.CropID, e.Crop)
		assert.Equal(t, threePreds[i].Crop, e.Crop)
		assert.Equal(t, "Excellent", e.SoilHealth.OverallHealth)
		assert.NotEmpty(t, e.Subsidies)
	}

	rice := res.Recommendations[0]
	assert.Equal(t, 70.0, rice.ConfidencePercentage)
	assert.Equal(t, 112500.0, rice.Profit.GrossIncome)
	assert.Equal(t, 66500.0, rice.Profit.NetProfit)
	assert.Equal(t, "Kharif (Jun–Oct)", rice.Season)

	history, err := f.store.RecommendationHistory(t.Context(), f.user.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, res.SoilTestID, history[0].SoilTest.ID)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, f.user.Phone, f.notifier.sent[0].to)
	assert.Contains(t, f.notifier.sent[0].msg, "we recommend: Rice")
	assert.Equal(t, []string{metrics.OutcomeOK}, outcomes)
}

func TestRecommendIgnoresNotificationFailure(t *testing.T) {
	f := newFixture(t)
	f.notifier.ok = false

	res, err := f.service(fakePredictor{preds: threePreds}).Recommend(t.Context(), f.user, healthy, 1.0, "")
	require.NoError(t, err)
	assert.True(t, res.Persisted)
	assert.Len(t, f.notifier.sent, 1)
}

func TestRecommendSkipsNotificationWithoutPhone(t *testing.T) {
	f := newFixture(t)
	f.user.Phone = ""

	_, err := f.service(fakePredictor{preds: threePreds}).Recommend(t.Context(), f.user, healthy, 1.0, "")
	require.NoError(t, err)
	assert.Empty(t, f.notifier.sent)
}

func TestRecommendRollsBackOnPartialFailure(t *testing.T) {
	f := newFixture(t)
	bad := []predictor.Prediction{
		{Crop: "rice", Confidence: 0.6, Yield: 4.5, Price: 25},
		{Crop: "wheat", Confidence: 1.5, Yield: 3, Price: 22}, // rejected by the schema
	}

	_, err := f.service(fakePredictor{preds: bad}).Recommend(t.Context(), f.user, healthy, 1.0, "")
	var pe *apperr.PersistenceError
	require.ErrorAs(t, err, &pe)

	history, err := f.store.RecommendationHistory(t.Context(), f.user.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, history)

	var soilTests int
	require.NoError(t, f.db.Conn().QueryRowContext(t.Context(), `SELECT COUNT(*) FROM soil_tests`).Scan(&soilTests))
	assert.Zero(t, soilTests)
	assert.Empty(t, f.notifier.sent)
}

func TestRecommendModelUnavailable(t *testing.T) {
	f := newFixture(t)
	var outcomes []string
	svc := f.service(fakePredictor{err: apperr.ModelUnavailable(errors.New("no data"))})
	svc.Observe = func(o string) { outcomes = append(outcomes, o) }

	_, err := svc.Recommend(t.Context(), f.user, healthy, 1.0, "")
	var mu *apperr.ModelUnavailableError
	require.ErrorAs(t, err, &mu)
	assert.Equal(t, []string{metrics.OutcomeError}, outcomes)
}

func TestRecommendRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	svc := f.service(fakePredictor{preds: threePreds})

	tests := []struct {
		name  string
		edit  func(*models.SoilSample)
		size  float64
		field string
	}{
		{"negative nitrogen", func(s *models.SoilSample) { s.Nitrogen = -1 }, 1, "nitrogen"},
		{"ph out of range", func(s *models.SoilSample) { s.PH = 15 }, 1, "ph_level"},
		{"humidity over 100", func(s *models.SoilSample) { s.Humidity = 120 }, 1, "humidity"},
		{"negative farm", func(*models.SoilSample) {}, -2, "farm_size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := healthy
			tt.edit(&s)
			_, err := svc.Recommend(t.Context(), f.user, s, tt.size, "")
			var ve *apperr.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Fields, tt.field)
		})
	}
}

func TestPreviewWritesNothing(t *testing.T) {
	f := newFixture(t)

	res, err := f.service(fakePredictor{preds: threePreds}).Preview(t.Context(), healthy, 2.0, "")
	require.NoError(t, err)
	assert.False(t, res.Persisted)
	assert.Zero(t, res.SoilTestID)
	assert.Len(t, res.Recommendations, 3)

	crops, err := f.store.ListCrops(t.Context())
	require.NoError(t, err)
	assert.Empty(t, crops)
	assert.Empty(t, f.notifier.sent)
}

func TestConcurrentRecommendationsShareCropRows(t *testing.T) {
	f := newFixture(t)
	svc := f.service(fakePredictor{preds: threePreds})

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.Recommend(context.Background(), f.user, healthy, 1.0, "")
		}()
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	crops, err := f.store.ListCrops(t.Context())
	require.NoError(t, err)
	assert.Len(t, crops, 3)
}

func TestPreviewRejectsExtremeReadings(t *testing.T) {
	f := newFixture(t)
	svc := f.service(fakePredictor{preds: threePreds})

	tests := []struct {
		name  string
		edit  func(*models.SoilSample)
		size  float64
		field string
	}{
		{"huge nitrogen", func(s *models.SoilSample) { s.Nitrogen = 1e200 }, 1, "nitrogen"},
		{"huge potassium", func(s *models.SoilSample) { s.Potassium = 1001 }, 1, "potassium"},
		{"infinite rainfall", func(s *models.SoilSample) { s.Rainfall = math.Inf(1) }, 1, "rainfall"},
		{"cold beyond range", func(s *models.SoilSample) { s.Temperature = math.Inf(-1) }, 1, "temperature"},
		{"hot beyond range", func(s *models.SoilSample) { s.Temperature = 75 }, 1, "temperature"},
		{"nan ph", func(s *models.SoilSample) { s.PH = math.NaN() }, 1, "ph_level"},
		{"organic carbon", func(s *models.SoilSample) { s.OrganicCarbon = 1e9 }, 1, "organic_carbon"},
		{"huge farm", func(*models.SoilSample) {}, 1e308, "farm_size"},
		{"infinite farm", func(*models.SoilSample) {}, math.Inf(1), "farm_size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := healthy
			tt.edit(&s)
			_, err := svc.Preview(t.Context(), s, tt.size, "")
			var ve *apperr.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Fields, tt.field)
		})
	}
}

func TestPreviewAtUpperBoundsIsEncodable(t *testing.T) {
	f := newFixture(t)
	s := models.SoilSample{Nitrogen: 1000, Phosphorus: 1000, Potassium: 1000, PH: 14, OrganicCarbon: 100, Temperature: 60, Humidity: 100, Rainfall: 5000}

	res, err := f.service(fakePredictor{preds: threePreds}).Preview(t.Context(), s, models.MaxFarmHectares, "")
	require.NoError(t, err)
	for _, e := range res.Recommendations {
		assert.False(t, math.IsInf(e.Profit.GrossIncome, 0), e.Crop)
	}
	_, err = json.Marshal(res)
	require.NoError(t, err)
}

func TestNewCropRowsTakePredictedYieldAndPrice(t *testing.T) {
	f := newFixture(t)

	_, err := f.service(fakePredictor{preds: threePreds}).Recommend(t.Context(), f.user, healthy, 1.0, "")
	require.NoError(t, err)

	rice, err := f.store.CropByName(t.Context(), "rice")
	require.NoError(t, err)
	assert.Equal(t, 4.5, rice.ExpectedYield)
	assert.Equal(t, 25.0, rice.MarketPrice)
}
