package services

import (
	"context"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/ZisanUlHaque/RedHope-Server/models"
	payments "github.com/ZisanUlHaque/RedHope-Server/payments"
)

type RequestStore interface {
	Insert(ctx context.Context, r *models.DonationRequest) (primitive.ObjectID, error)
	Find(ctx context.Context, f models.RequestFilter) ([]models.DonationRequest, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.DonationRequest, error)
	Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (models.UpdateResult, error)
	UpdateIfStatus(ctx context.Context, id primitive.ObjectID, status models.RequestStatus, fields bson.M) (models.UpdateResult, error)
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type FundingStore interface {
	Insert(ctx context.Context, f *models.Funding) (primitive.ObjectID, error)
	FindByTransactionID(ctx context.Context, transactionID string) (*models.Funding, error)
	List(ctx context.Context) ([]models.Funding, error)
	SumAmount(ctx context.Context) (float64, error)
}

type UserStore interface {
	Insert(ctx context.Context, u *models.User) (primitive.ObjectID, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Find(ctx context.Context, f models.UserFilter) ([]models.User, error)
	UpdateByEmail(ctx context.Context, email string, fields bson.M) (models.UpdateResult, error)
	UpdateByID(ctx context.Context, id primitive.ObjectID, fields bson.M) (models.UpdateResult, error)
	CountByRole(ctx context.Context, role models.Role) (int64, error)
}

// PaymentProvider is the hosted checkout collaborator.
type PaymentProvider interface {
	CreateSession(ctx context.Context, req payments.SessionRequest) (*payments.Session, error)
	RetrieveSession(ctx context.Context, id string) (*payments.Session, error)
}

// EventPublisher emits domain events. Publishing is best effort.
type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// Actor is the verified caller of an operation.
type Actor struct {
	Email string
	Role  models.Role
}

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

func publish(ctx context.Context, events EventPublisher, key string, v any) {
	if events == nil {
		return
	}
	if err := events.PublishJSON(ctx, key, v); err != nil {
		slog.Warn("event publish failed", "key", key, "error", err)
	}
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, errorf(ErrValidation, "invalid id %q", id)
	}
	return oid, nil
}
