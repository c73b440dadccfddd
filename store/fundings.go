package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	models "github.com/ZisanUlHaque/RedHope-Server/models"
)

type FundingStore struct {
	col     *mongo.Collection
	timeout time.Duration
}

func NewFundingStore(db *mongo.Database, timeout time.Duration) *FundingStore {
	return &FundingStore{col: db.Collection(FundingsCollection), timeout: timeout}
}

// Insert writes a funding record. A second record with the same transaction
// id fails with ErrDuplicate.
func (s *FundingStore) Insert(ctx context.Context, f *models.Funding) (primitive.ObjectID, error) {
	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.col.InsertOne(ctx, f); err != nil {
		return primitive.NilObjectID, translate(err)
	}
	return f.ID, nil
}

func (s *FundingStore) FindByTransactionID(ctx context.Context, transactionID string) (*models.Funding, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var f models.Funding
	if err := s.col.FindOne(ctx, bson.M{"transactionId": transactionID}).Decode(&f); err != nil {
		return nil, translate(err)
	}
	return &f, nil
}

func (s *FundingStore) List(ctx context.Context) ([]models.Funding, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cursor, err := s.col.Find(ctx, bson.M{}, newestFirst())
	if err != nil {
		return nil, err
	}
	fundings := []models.Funding{}
	if err := cursor.All(ctx, &fundings); err != nil {
		return nil, err
	}
	return fundings, nil
}

// SumAmount totals every funding amount; an empty collection sums to 0.
func (s *FundingStore) SumAmount(ctx context.Context) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$amount"}}},
		}}},
	}
	cursor, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}

	var out []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &out); err != nil {
		return 0, err
	}
	if len(out) == 0 {
		return 0, nil
	}
	return out[0].Total, nil
}
