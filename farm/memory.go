package farm

import (
	"context"
	"sort"
	"sync"

	"farmeasy/apperr"
	"farmeasy/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepository keeps farms in process memory. It backs the service
// when no document store is configured.
type MemoryRepository struct {
	mu    sync.Mutex
	farms map[primitive.ObjectID]models.VirtualFarm
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{farms: make(map[primitive.ObjectID]models.VirtualFarm)}
}

func (m *MemoryRepository) Create(_ context.Context, f *models.VirtualFarm) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f.ID = primitive.NewObjectID()
	m.farms[f.ID] = copyFarm(*f)
	return nil
}

func (m *MemoryRepository) ListByOwner(_ context.Context, ownerID int64) ([]models.VirtualFarm, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.VirtualFarm{}
	for _, f := range m.farms {
		if f.OwnerID == ownerID {
			out = append(out, copyFarm(f))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryRepository) Get(_ context.Context, ownerID int64, id string) (models.VirtualFarm, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, err := m.lookup(ownerID, id)
	if err != nil {
		return models.VirtualFarm{}, err
	}
	return copyFarm(f), nil
}

func (m *MemoryRepository) UpdateStages(_ context.Context, ownerID int64, id string, stages []models.GrowthStage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, err := m.lookup(ownerID, id)
	if err != nil {
		return err
	}
	f.GrowthStages = append([]models.GrowthStage(nil), stages...)
	m.farms[f.ID] = f
	return nil
}

func (m *MemoryRepository) Delete(_ context.Context, ownerID int64, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, err := m.lookup(ownerID, id)
	if err != nil {
		return err
	}
	delete(m.farms, f.ID)
	return nil
}

func (m *MemoryRepository) lookup(ownerID int64, id string) (models.VirtualFarm, error) {
	oid, err := ParseID(id)
	if err != nil {
		return models.VirtualFarm{}, err
	}
	f, ok := m.farms[oid]
	if !ok || f.OwnerID != ownerID {
		return models.VirtualFarm{}, apperr.NotFound("farm", id)
	}
	return f, nil
}

// ParseID validates a farm id.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("bad id", map[string]string{"id": "must be a 24 character hex id"})
	}
	return oid, nil
}

func copyFarm(f models.VirtualFarm) models.VirtualFarm {
	f.GrowthStages = append([]models.GrowthStage(nil), f.GrowthStages...)
	f.ClimateRisks = append([]string(nil), f.ClimateRisks...)
	if f.SoilData != nil {
		soil := make(map[string]float64, len(f.SoilData))
		for k, v := range f.SoilData {
			soil[k] = v
		}
		f.SoilData = soil
	}
	return f
}
