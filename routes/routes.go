package routes

import (
	"github.com/gin-gonic/gin"

	controllers "github.com/ZisanUlHaque/RedHope-Server/controllers"
	middleware "github.com/ZisanUlHaque/RedHope-Server/middleware"
	models "github.com/ZisanUlHaque/RedHope-Server/models"
)

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	Verifier middleware.Verifier
	Users    controllers.UserService
	Requests controllers.RequestService
	Fundings controllers.FundingService
	Stats    controllers.StatsService
	Webhooks controllers.WebhookVerifier
	Images   controllers.ImageStore // nil disables avatar uploads
	DB       controllers.Pinger
}

func SetupRoutes(r *gin.Engine, d Deps) {
	// public
	r.GET("/", controllers.Root())
	r.GET("/healthz", controllers.Healthz(d.DB))
	r.POST("/users", controllers.RegisterUser(d.Users))

	// payments
	r.POST("/funding-checkout-session", controllers.CreateFundingCheckout(d.Fundings))
	r.GET("/funding-success", controllers.ConfirmFunding(d.Fundings))
	r.POST("/webhooks/stripe", controllers.StripeWebhook(d.Fundings, d.Webhooks))

	// protected
	auth := middleware.AuthMiddleware(d.Verifier, d.Users)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	users := r.Group("/users")
	users.Use(auth)
	{
		users.GET("", controllers.ListUsers(d.Users))
		users.GET("/profile/:email", controllers.GetProfile(d.Users))
		users.PATCH("/profile/:email", controllers.UpdateProfile(d.Users))
		users.POST("/avatar", controllers.UploadAvatar(d.Users, d.Images))
		users.GET("/:id/role", controllers.GetRole(d.Users))
		users.PATCH("/:id/status", adminOnly, controllers.SetUserStatus(d.Users))
		users.PATCH("/:id/role", adminOnly, controllers.SetUserRole(d.Users))
	}

	requests := r.Group("/donation-requests")
	requests.Use(auth)
	{
		requests.POST("", controllers.CreateDonationRequest(d.Requests))
		requests.GET("", controllers.ListDonationRequests(d.Requests))
		requests.GET("/:id", controllers.GetDonationRequest(d.Requests))
		requests.PATCH("/:id", controllers.UpdateDonationRequest(d.Requests))
		requests.DELETE("/:id", controllers.DeleteDonationRequest(d.Requests))
	}

	r.GET("/dashboard-stats", auth, controllers.DashboardStats(d.Stats))
	r.GET("/fundings", auth, controllers.ListFundings(d.Fundings))
}
