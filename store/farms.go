package store

import (
	"context"
	"errors"
	"fmt"

	"farmeasy/apperr"
	"farmeasy/farm"
	"farmeasy/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FarmRepository stores virtual farms as documents in MongoDB.
type FarmRepository struct {
	farms *mongo.Collection
}

// NewFarmRepository uses the "virtual_farms" collection of db and ensures
// its owner index.
func NewFarmRepository(ctx context.Context, db *mongo.Database) (*FarmRepository, error) {
	r := &FarmRepository{farms: db.Collection("virtual_farms")}
	if _, err := r.farms.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "createdAt", Value: -1}},
	}); err != nil {
		return nil, err
	}
	return r, nil
}

var _ farm.Repository = (*FarmRepository)(nil)

func (r *FarmRepository) Create(ctx context.Context, f *models.VirtualFarm) error {
	res, err := r.farms.InsertOne(ctx, f)
	if err != nil {
		return apperr.Persistence("create farm", err)
	}
	if err := assignID(f, res.InsertedID); err != nil {
		return apperr.Persistence("create farm", err)
	}
	return nil
}

func (r *FarmRepository) ListByOwner(ctx context.Context, ownerID int64) ([]models.VirtualFarm, error) {
	cur, err := r.farms.Find(ctx, bson.M{"ownerId": ownerID}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, apperr.Persistence("list farms", err)
	}
	defer cur.Close(ctx)

	out := []models.VirtualFarm{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, apperr.Persistence("decode farms", err)
	}
	return out, nil
}

func (r *FarmRepository) Get(ctx context.Context, ownerID int64, id string) (models.VirtualFarm, error) {
	oid, err := farm.ParseID(id)
	if err != nil {
		return models.VirtualFarm{}, err
	}
	var f models.VirtualFarm
	err = r.farms.FindOne(ctx, bson.M{"_id": oid, "ownerId": ownerID}).Decode(&f)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.VirtualFarm{}, apperr.NotFound("farm", id)
	}
	if err != nil {
		return models.VirtualFarm{}, apperr.Persistence("get farm", err)
	}
	return f, nil
}

func (r *FarmRepository) UpdateStages(ctx context.Context, ownerID int64, id string, stages []models.GrowthStage) error {
	oid, err := farm.ParseID(id)
	if err != nil {
		return err
	}
	res, err := r.farms.UpdateOne(ctx,
		bson.M{"_id": oid, "ownerId": ownerID},
		bson.M{"$set": bson.M{"growthStages": stages}})
	if err != nil {
		return apperr.Persistence("update farm", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("farm", id)
	}
	return nil
}

func (r *FarmRepository) Delete(ctx context.Context, ownerID int64, id string) error {
	oid, err := farm.ParseID(id)
	if err != nil {
		return err
	}
	res, err := r.farms.DeleteOne(ctx, bson.M{"_id": oid, "ownerId": ownerID})
	if err != nil {
		return apperr.Persistence("delete farm", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("farm", id)
	}
	return nil
}

func assignID(f *models.VirtualFarm, inserted any) error {
	oid, ok := inserted.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("unexpected inserted id type %T", inserted)
	}
	f.ID = oid
	return nil
}
