package farm

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"farmeasy/apperr"
	"farmeasy/catalog"
	"farmeasy/models"
	"farmeasy/profit"

	"github.com/rs/zerolog"
)

// Repository stores farms. Every method is scoped to the owner; a farm
// owned by someone else is reported as not found.
type Repository interface {
	Create(ctx context.Context, f *models.VirtualFarm) error
	ListByOwner(ctx context.Context, ownerID int64) ([]models.VirtualFarm, error)
	Get(ctx context.Context, ownerID int64, id string) (models.VirtualFarm, error)
	UpdateStages(ctx context.Context, ownerID int64, id string, stages []models.GrowthStage) error
	Delete(ctx context.Context, ownerID int64, id string) error
}

// CreateInput is a new farm request. Zero ExpectedYield/ExpectedProfit and
// empty GrowthStages are derived.
type CreateInput struct {
	LandSize       float64
	CropType       string
	Location       string
	PlantingDate   time.Time
	SoilData       map[string]float64
	GrowthStages   []models.GrowthStage
	ExpectedYield  float64
	ExpectedProfit float64
	ClimateRisks   []string
}

type Service struct {
	repo      Repository
	catalog   *catalog.Catalog
	estimator *profit.Estimator
	log       zerolog.Logger
	now       func() time.Time
}

func NewService(repo Repository, c *catalog.Catalog, log zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		catalog:   c,
		estimator: profit.NewEstimator(c),
		log:       log.With().Str("component", "farm").Logger(),
		now:       time.Now,
	}
}

func (s *Service) Create(ctx context.Context, ownerID int64, in CreateInput) (models.VirtualFarm, error) {
	fields := map[string]string{}
	if !(in.LandSize > 0) || in.LandSize > models.MaxFarmHectares {
		fields["land_size"] = fmt.Sprintf("must be greater than 0 and at most %g", models.MaxFarmHectares)
	}
	if strings.TrimSpace(in.CropType) == "" {
		fields["crop_type"] = "is required"
	}
	if strings.TrimSpace(in.Location) == "" {
		fields["location"] = "is required"
	}
	if in.PlantingDate.IsZero() {
		fields["planting_date"] = "is required"
	}
	if len(fields) > 0 {
		return models.VirtualFarm{}, apperr.Validation("Missing required fields", fields)
	}

	f := models.VirtualFarm{
		OwnerID:        ownerID,
		LandSize:       in.LandSize,
		CropType:       catalog.Normalize(in.CropType),
		Location:       strings.TrimSpace(in.Location),
		PlantingDate:   in.PlantingDate.UTC(),
		CreatedAt:      s.now().UTC(),
		SoilData:       in.SoilData,
		GrowthStages:   in.GrowthStages,
		ExpectedYield:  in.ExpectedYield,
		ExpectedProfit: in.ExpectedProfit,
		ClimateRisks:   in.ClimateRisks,
	}
	if len(f.GrowthStages) == 0 {
		f.GrowthStages = DefaultStages()
	}
	if f.ExpectedYield == 0 || f.ExpectedProfit == 0 {
		s.derive(&f)
	}

	if err := s.repo.Create(ctx, &f); err != nil {
		return models.VirtualFarm{}, err
	}
	s.log.Info().Int64("user_id", ownerID).Str("farm_id", f.ID.Hex()).Str("crop", f.CropType).Msg("Created virtual farm")
	return f, nil
}

// derive fills missing expectations from the crop's catalog averages.
func (s *Service) derive(f *models.VirtualFarm) {
	p, ok := s.catalog.Lookup(f.CropType)
	if !ok {
		return
	}
	if f.ExpectedYield == 0 {
		f.ExpectedYield = round2(p.AvgYieldPerHectare * f.LandSize)
	}
	if f.ExpectedProfit == 0 {
		a := s.estimator.Estimate(f.CropType, p.AvgYieldPerHectare, p.BasePricePerKg, f.LandSize, sampleFrom(f.SoilData))
		f.ExpectedProfit = a.NetProfit
	}
}

// sampleFrom reads soil_data keys, defaulting to a neutral, well-fed soil.
func sampleFrom(d map[string]float64) models.SoilSample {
	get := func(k string, def float64) float64 {
		if v, ok := d[k]; ok {
			return v
		}
		return def
	}
	return models.SoilSample{
		Nitrogen:    get("nitrogen", 50),
		Phosphorus:  get("phosphorus", 20),
		Potassium:   get("potassium", 30),
		PH:          get("ph_level", 7),
		Temperature: get("temperature", 25),
		Humidity:    get("humidity", 65),
		Rainfall:    get("rainfall", 200),
	}
}

func (s *Service) List(ctx context.Context, ownerID int64) ([]models.VirtualFarm, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *Service) Get(ctx context.Context, ownerID int64, id string) (models.VirtualFarm, error) {
	return s.repo.Get(ctx, ownerID, id)
}

// UpdateProgress advances the farm's stages to today and saves them.
func (s *Service) UpdateProgress(ctx context.Context, ownerID int64, id string) (models.VirtualFarm, error) {
	if strings.TrimSpace(id) == "" {
		return models.VirtualFarm{}, apperr.Validation("farm_id is required", map[string]string{"farm_id": "is required"})
	}
	f, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return models.VirtualFarm{}, err
	}
	f.GrowthStages = Advance(f.GrowthStages, f.PlantingDate, s.now())
	if err := s.repo.UpdateStages(ctx, ownerID, id, f.GrowthStages); err != nil {
		return models.VirtualFarm{}, err
	}
	return f, nil
}

func (s *Service) Delete(ctx context.Context, ownerID int64, id string) error {
	return s.repo.Delete(ctx, ownerID, id)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
