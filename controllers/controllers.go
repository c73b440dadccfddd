package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	middleware "github.com/ZisanUlHaque/RedHope-Server/middleware"
	models "github.com/ZisanUlHaque/RedHope-Server/models"
	services "github.com/ZisanUlHaque/RedHope-Server/services"
)

type RequestService interface {
	Create(ctx context.Context, r *models.DonationRequest) (primitive.ObjectID, error)
	List(ctx context.Context, actor services.Actor, f models.RequestFilter) ([]models.DonationRequest, error)
	Get(ctx context.Context, id string) (*models.DonationRequest, error)
	Update(ctx context.Context, actor services.Actor, id string, patch models.RequestPatch) (models.UpdateResult, error)
	Delete(ctx context.Context, actor services.Actor, id string) (models.DeleteResult, error)
}

type FundingService interface {
	CreateCheckout(ctx context.Context, amount int64, donorName, donorEmail string) (string, error)
	ConfirmSession(ctx context.Context, sessionID string) (models.ConfirmResult, error)
	List(ctx context.Context) ([]models.Funding, error)
}

type StatsService interface {
	Dashboard(ctx context.Context) (models.DashboardStats, error)
}

type UserService interface {
	Register(ctx context.Context, u *models.User) (*models.User, bool, error)
	List(ctx context.Context, f models.UserFilter) ([]models.User, error)
	Profile(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, email string, patch models.ProfilePatch) (models.UpdateResult, error)
	Role(ctx context.Context, email string) (models.Role, error)
	SetRole(ctx context.Context, id string, role models.Role) (models.UpdateResult, error)
	SetStatus(ctx context.Context, id string, status models.UserStatus) (models.UpdateResult, error)
}

// WebhookVerifier authenticates provider callbacks.
type WebhookVerifier interface {
	WebhookEnabled() bool
	CompletedSessionID(payload []byte, signature string) (string, bool, error)
}

// ImageStore holds uploaded avatars.
type ImageStore interface {
	Upload(ctx context.Context, file multipart.File) (string, error)
	Delete(ctx context.Context, imageURL string) error
	Owns(imageURL string) bool
}

// actorFrom reads the verified caller set by the auth middleware.
func actorFrom(c *gin.Context) services.Actor {
	return services.Actor{
		Email: c.GetString(middleware.KeyEmail),
		Role:  models.Role(c.GetString(middleware.KeyRole)),
	}
}

// respondError maps service errors onto HTTP statuses. Server-side failures
// are logged and answered with a generic message.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrInvalidAmount):
		status = http.StatusBadRequest
	case errors.Is(err, middleware.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, services.ErrProvider):
		status = http.StatusBadGateway
	}

	_ = c.Error(err)
	if status < http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	slog.Error("request failed", "path", c.FullPath(), "status", status, "error", err)
	msg := "internal server error"
	if status == http.StatusBadGateway {
		msg = "payment provider unavailable"
	}
	c.JSON(status, gin.H{"error": msg})
}

// bindStrict decodes a JSON body and rejects fields outside dst's schema.
func bindStrict(c *gin.Context, dst any) error {
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", services.ErrValidation, err)
	}
	return nil
}
