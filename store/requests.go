package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	models "github.com/ZisanUlHaque/RedHope-Server/models"
)

type RequestStore struct {
	col     *mongo.Collection
	timeout time.Duration
}

func NewRequestStore(db *mongo.Database, timeout time.Duration) *RequestStore {
	return &RequestStore{col: db.Collection(RequestsCollection), timeout: timeout}
}

// RequestFilterDoc builds the conjunctive query for a request filter.
// District and upazila match the recipient's location.
func RequestFilterDoc(f models.RequestFilter) bson.M {
	filter := bson.M{}
	if f.RequesterEmail != "" {
		filter["requesterEmail"] = f.RequesterEmail
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.BloodGroup != "" {
		filter["bloodGroup"] = f.BloodGroup
	}
	if f.District != "" {
		filter["recipientDistrict"] = f.District
	}
	if f.Upazila != "" {
		filter["recipientUpazila"] = f.Upazila
	}
	return filter
}

func (s *RequestStore) Insert(ctx context.Context, r *models.DonationRequest) (primitive.ObjectID, error) {
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.col.InsertOne(ctx, r); err != nil {
		return primitive.NilObjectID, translate(err)
	}
	return r.ID, nil
}

func (s *RequestStore) Find(ctx context.Context, f models.RequestFilter) ([]models.DonationRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cursor, err := s.col.Find(ctx, RequestFilterDoc(f), newestFirst())
	if err != nil {
		return nil, err
	}
	requests := []models.DonationRequest{}
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

func (s *RequestStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.DonationRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var r models.DonationRequest
	if err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

func (s *RequestStore) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (models.UpdateResult, error) {
	return s.update(ctx, bson.M{"_id": id}, fields)
}

// UpdateIfStatus applies fields only while the request is still in status.
// A request that has moved on reports zero matched.
func (s *RequestStore) UpdateIfStatus(ctx context.Context, id primitive.ObjectID, status models.RequestStatus, fields bson.M) (models.UpdateResult, error) {
	return s.update(ctx, bson.M{"_id": id, "status": status}, fields)
}

func (s *RequestStore) update(ctx context.Context, filter, fields bson.M) (models.UpdateResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.col.UpdateOne(ctx, filter, bson.M{"$set": fields})
	if err != nil {
		return models.UpdateResult{}, translate(err)
	}
	return models.UpdateResult{MatchedCount: res.MatchedCount, ModifiedCount: res.ModifiedCount}, nil
}

func (s *RequestStore) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *RequestStore) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.col.CountDocuments(ctx, bson.M{})
}
