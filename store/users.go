package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	models "github.com/ZisanUlHaque/RedHope-Server/models"
)

type UserStore struct {
	col     *mongo.Collection
	timeout time.Duration
}

func NewUserStore(db *mongo.Database, timeout time.Duration) *UserStore {
	return &UserStore{col: db.Collection(UsersCollection), timeout: timeout}
}

func UserFilterDoc(f models.UserFilter) bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Role != "" {
		filter["role"] = f.Role
	}
	if f.BloodGroup != "" {
		filter["bloodGroup"] = f.BloodGroup
	}
	if f.District != "" {
		filter["district"] = f.District
	}
	if f.Upazila != "" {
		filter["upazila"] = f.Upazila
	}
	return filter
}

func (s *UserStore) Insert(ctx context.Context, u *models.User) (primitive.ObjectID, error) {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.col.InsertOne(ctx, u); err != nil {
		return primitive.NilObjectID, translate(err)
	}
	return u.ID, nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var u models.User
	if err := s.col.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *UserStore) Find(ctx context.Context, f models.UserFilter) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cursor, err := s.col.Find(ctx, UserFilterDoc(f), newestFirst())
	if err != nil {
		return nil, err
	}
	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *UserStore) UpdateByEmail(ctx context.Context, email string, fields bson.M) (models.UpdateResult, error) {
	return s.update(ctx, bson.M{"email": email}, fields)
}

func (s *UserStore) UpdateByID(ctx context.Context, id primitive.ObjectID, fields bson.M) (models.UpdateResult, error) {
	return s.update(ctx, bson.M{"_id": id}, fields)
}

func (s *UserStore) update(ctx context.Context, filter, fields bson.M) (models.UpdateResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.col.UpdateOne(ctx, filter, bson.M{"$set": fields})
	if err != nil {
		return models.UpdateResult{}, translate(err)
	}
	return models.UpdateResult{MatchedCount: res.MatchedCount, ModifiedCount: res.ModifiedCount}, nil
}

func (s *UserStore) CountByRole(ctx context.Context, role models.Role) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.col.CountDocuments(ctx, bson.M{"role": role})
}
