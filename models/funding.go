package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Funding is a settled payment. TransactionID is unique across the collection.
type Funding struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DonorName     string             `bson:"donorName" json:"donorName"`
	DonorEmail    string             `bson:"donorEmail" json:"donorEmail"`
	Amount        float64            `bson:"amount" json:"amount"`
	Currency      string             `bson:"currency" json:"currency"`
	TransactionID string             `bson:"transactionId" json:"transactionId"`
	PaymentStatus string             `bson:"paymentStatus" json:"paymentStatus"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}

// ConfirmResult is the outcome of settling a checkout session.
type ConfirmResult struct {
	Success       bool   `json:"success"`
	Message       string `json:"message,omitempty"`
	FundID        string `json:"fundId,omitempty"`
	TransactionID string `json:"transactionId,omitempty"`
	AlreadyExists bool   `json:"-"`
}

type DashboardStats struct {
	TotalDonors           int64   `json:"totalDonors"`
	TotalFunding          float64 `json:"totalFunding"`
	TotalDonationRequests int64   `json:"totalDonationRequests"`
}
