package controllers

import (
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	middleware "github.com/ZisanUlHaque/RedHope-Server/middleware"
	models "github.com/ZisanUlHaque/RedHope-Server/models"
	services "github.com/ZisanUlHaque/RedHope-Server/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockRequests implements RequestService for testing.
type MockRequests struct {
	CreateFunc func(ctx context.Context, r *models.DonationRequest) (primitive.ObjectID, error)
	ListFunc   func(ctx context.Context, actor services.Actor, f models.RequestFilter) ([]models.DonationRequest, error)
	GetFunc    func(ctx context.Context, id string) (*models.DonationRequest, error)
	UpdateFunc func(ctx context.Context, actor services.Actor, id string, patch models.RequestPatch) (models.UpdateResult, error)
	DeleteFunc func(ctx context.Context, actor services.Actor, id string) (models.DeleteResult, error)
}

func (m *MockRequests) Create(ctx context.Context, r *models.DonationRequest) (primitive.ObjectID, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, r)
	}
	return primitive.NewObjectID(), nil
}

func (m *MockRequests) List(ctx context.Context, actor services.Actor, f models.RequestFilter) ([]models.DonationRequest, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, actor, f)
	}
	return nil, nil
}

func (m *MockRequests) Get(ctx context.Context, id string) (*models.DonationRequest, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, services.ErrNotFound
}

func (m *MockRequests) Update(ctx context.Context, actor services.Actor, id string, patch models.RequestPatch) (models.UpdateResult, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, actor, id, patch)
	}
	return models.UpdateResult{}, nil
}

func (m *MockRequests) Delete(ctx context.Context, actor services.Actor, id string) (models.DeleteResult, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, actor, id)
	}
	return models.DeleteResult{}, nil
}

// MockFundings implements FundingService for testing.
type MockFundings struct {
	CreateCheckoutFunc func(ctx context.Context, amount int64, donorName, donorEmail string) (string, error)
	ConfirmFunc        func(ctx context.Context, sessionID string) (models.ConfirmResult, error)
	ListFunc           func(ctx context.Context) ([]models.Funding, error)
}

func (m *MockFundings) CreateCheckout(ctx context.Context, amount int64, donorName, donorEmail string) (string, error) {
	if m.CreateCheckoutFunc != nil {
		return m.CreateCheckoutFunc(ctx, amount, donorName, donorEmail)
	}
	return "", nil
}

func (m *MockFundings) ConfirmSession(ctx context.Context, sessionID string) (models.ConfirmResult, error) {
	if m.ConfirmFunc != nil {
		return m.ConfirmFunc(ctx, sessionID)
	}
	return models.ConfirmResult{}, nil
}

func (m *MockFundings) List(ctx context.Context) ([]models.Funding, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

// MockStats implements StatsService for testing.
type MockStats struct {
	DashboardFunc func(ctx context.Context) (models.DashboardStats, error)
}

func (m *MockStats) Dashboard(ctx context.Context) (models.DashboardStats, error) {
	return m.DashboardFunc(ctx)
}

// MockUsers implements UserService for testing.
type MockUsers struct {
	RegisterFunc      func(ctx context.Context, u *models.User) (*models.User, bool, error)
	ListFunc          func(ctx context.Context, f models.UserFilter) ([]models.User, error)
	ProfileFunc       func(ctx context.Context, email string) (*models.User, error)
	UpdateProfileFunc func(ctx context.Context, email string, patch models.ProfilePatch) (models.UpdateResult, error)
	RoleFunc          func(ctx context.Context, email string) (models.Role, error)
	SetRoleFunc       func(ctx context.Context, id string, role models.Role) (models.UpdateResult, error)
	SetStatusFunc     func(ctx context.Context, id string, status models.UserStatus) (models.UpdateResult, error)
}

func (m *MockUsers) Register(ctx context.Context, u *models.User) (*models.User, bool, error) {
	return m.RegisterFunc(ctx, u)
}

func (m *MockUsers) List(ctx context.Context, f models.UserFilter) ([]models.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, f)
	}
	return nil, nil
}

func (m *MockUsers) Profile(ctx context.Context, email string) (*models.User, error) {
	if m.ProfileFunc != nil {
		return m.ProfileFunc(ctx, email)
	}
	return nil, services.ErrNotFound
}

func (m *MockUsers) UpdateProfile(ctx context.Context, email string, patch models.ProfilePatch) (models.UpdateResult, error) {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, email, patch)
	}
	return models.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (m *MockUsers) Role(ctx context.Context, email string) (models.Role, error) {
	if m.RoleFunc != nil {
		return m.RoleFunc(ctx, email)
	}
	return models.RoleDonor, nil
}

func (m *MockUsers) SetRole(ctx context.Context, id string, role models.Role) (models.UpdateResult, error) {
	return m.SetRoleFunc(ctx, id, role)
}

func (m *MockUsers) SetStatus(ctx context.Context, id string, status models.UserStatus) (models.UpdateResult, error) {
	return m.SetStatusFunc(ctx, id, status)
}

// MockImages implements ImageStore for testing.
type MockImages struct {
	UploadFunc func(ctx context.Context, file multipart.File) (string, error)
	deleted    chan string
}

func (m *MockImages) Upload(ctx context.Context, file multipart.File) (string, error) {
	return m.UploadFunc(ctx, file)
}

func (m *MockImages) Delete(_ context.Context, imageURL string) error {
	m.deleted <- imageURL
	return nil
}

func (m *MockImages) Owns(imageURL string) bool {
	return strings.Contains(imageURL, "/avatars/")
}

// asCaller stands in for the auth middleware.
func asCaller(email string, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.KeyEmail, email)
		c.Set(middleware.KeyRole, string(role))
		c.Next()
	}
}

func serve(r *gin.Engine, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
