package controllers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	models "github.com/ZisanUlHaque/RedHope-Server/models"
	services "github.com/ZisanUlHaque/RedHope-Server/services"
)

const maxWebhookBody = 64 << 10

// ---------------- CHECKOUT ----------------
func CreateFundingCheckout(svc FundingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Amount     json.RawMessage `json:"amount"`
			DonorName  string          `json:"donorName"`
			DonorEmail string          `json:"donorEmail"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		amount, err := services.ParseAmount(input.Amount)
		if err != nil {
			respondError(c, err)
			return
		}

		url, err := svc.CreateCheckout(c.Request.Context(), amount, input.DonorName, input.DonorEmail)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"url": url})
	}
}

// ---------------- CONFIRM ----------------
func ConfirmFunding(svc FundingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := svc.ConfirmSession(c.Request.Context(), c.Query("session_id"))
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, res)
	}
}

// ---------------- LIST ----------------
func ListFundings(svc FundingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		fundings, err := svc.List(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		if fundings == nil {
			fundings = []models.Funding{}
		}

		c.JSON(http.StatusOK, fundings)
	}
}

// ---------------- WEBHOOK ----------------
// StripeWebhook confirms completed checkout sessions pushed by the provider.
// It shares the dedupe path of ConfirmFunding, so a webhook racing the
// redirect still yields one record.
func StripeWebhook(svc FundingService, verifier WebhookVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !verifier.WebhookEnabled() {
			c.JSON(http.StatusNotFound, gin.H{"error": "webhook not configured"})
			return
		}

		payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
		if err != nil {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "payload too large"})
			return
		}

		sessionID, ok, err := verifier.CompletedSessionID(payload, c.GetHeader("Stripe-Signature"))
		if err != nil {
			slog.Warn("webhook rejected", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
			return
		}
		if !ok {
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}

		res, err := svc.ConfirmSession(c.Request.Context(), sessionID)
		if err != nil {
			respondError(c, err)
			return
		}

		slog.Info("webhook confirmed session", "session", sessionID, "success", res.Success, "alreadyExists", res.AlreadyExists)
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}
