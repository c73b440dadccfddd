package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequestStatus is the lifecycle state of a donation request.
type RequestStatus string

const (
	StatusPending    RequestStatus = "pending"
	StatusInProgress RequestStatus = "inprogress"
	StatusDone       RequestStatus = "done"
	StatusCanceled   RequestStatus = "canceled"
)

// Valid reports whether s is one of the known request states.
func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusDone, StatusCanceled:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next follows
// pending -> inprogress -> done, with canceled reachable from pending and inprogress.
// Staying in the same state is always allowed.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case StatusPending:
		return next == StatusInProgress || next == StatusCanceled
	case StatusInProgress:
		return next == StatusDone || next == StatusCanceled
	}
	return false
}

type DonationRequest struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RequesterName     string             `bson:"requesterName,omitempty" json:"requesterName,omitempty"`
	RequesterEmail    string             `bson:"requesterEmail" json:"requesterEmail"`
	RecipientName     string             `bson:"recipientName,omitempty" json:"recipientName,omitempty"`
	RecipientDistrict string             `bson:"recipientDistrict,omitempty" json:"recipientDistrict,omitempty"`
	RecipientUpazila  string             `bson:"recipientUpazila,omitempty" json:"recipientUpazila,omitempty"`
	HospitalName      string             `bson:"hospitalName,omitempty" json:"hospitalName,omitempty"`
	FullAddress       string             `bson:"fullAddress,omitempty" json:"fullAddress,omitempty"`
	BloodGroup        string             `bson:"bloodGroup" json:"bloodGroup"`
	DonationDate      string             `bson:"donationDate,omitempty" json:"donationDate,omitempty"`
	DonationTime      string             `bson:"donationTime,omitempty" json:"donationTime,omitempty"`
	RequestMessage    string             `bson:"requestMessage,omitempty" json:"requestMessage,omitempty"`
	DonorName         string             `bson:"donorName,omitempty" json:"donorName,omitempty"`
	DonorEmail        string             `bson:"donorEmail,omitempty" json:"donorEmail,omitempty"`
	Status            RequestStatus      `bson:"status" json:"status"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// DonationRequestInput is the client-supplied part of a new request.
// Identity and timestamps are assigned by the server.
type DonationRequestInput struct {
	RequesterName     string        `json:"requesterName"`
	RequesterEmail    string        `json:"requesterEmail"`
	RecipientName     string        `json:"recipientName"`
	RecipientDistrict string        `json:"recipientDistrict"`
	RecipientUpazila  string        `json:"recipientUpazila"`
	HospitalName      string        `json:"hospitalName"`
	FullAddress       string        `json:"fullAddress"`
	BloodGroup        string        `json:"bloodGroup"`
	DonationDate      string        `json:"donationDate"`
	DonationTime      string        `json:"donationTime"`
	RequestMessage    string        `json:"requestMessage"`
	DonorName         string        `json:"donorName"`
	DonorEmail        string        `json:"donorEmail"`
	Status            RequestStatus `json:"status"`
}

func (in DonationRequestInput) Request() *DonationRequest {
	return &DonationRequest{
		RequesterName:     in.RequesterName,
		RequesterEmail:    in.RequesterEmail,
		RecipientName:     in.RecipientName,
		RecipientDistrict: in.RecipientDistrict,
		RecipientUpazila:  in.RecipientUpazila,
		HospitalName:      in.HospitalName,
		FullAddress:       in.FullAddress,
		BloodGroup:        in.BloodGroup,
		DonationDate:      in.DonationDate,
		DonationTime:      in.DonationTime,
		RequestMessage:    in.RequestMessage,
		DonorName:         in.DonorName,
		DonorEmail:        in.DonorEmail,
		Status:            in.Status,
	}
}

// RequestFilter holds the optional, conjunctive list filters.
type RequestFilter struct {
	RequesterEmail string
	Status         string
	BloodGroup     string
	District       string
	Upazila        string
}

// RequestPatch is a partial update. Nil fields are left untouched.
type RequestPatch struct {
	RequesterName     *string        `json:"requesterName"`
	RequesterEmail    *string        `json:"requesterEmail"`
	RecipientName     *string        `json:"recipientName"`
	RecipientDistrict *string        `json:"recipientDistrict"`
	RecipientUpazila  *string        `json:"recipientUpazila"`
	HospitalName      *string        `json:"hospitalName"`
	FullAddress       *string        `json:"fullAddress"`
	BloodGroup        *string        `json:"bloodGroup"`
	DonationDate      *string        `json:"donationDate"`
	DonationTime      *string        `json:"donationTime"`
	RequestMessage    *string        `json:"requestMessage"`
	DonorName         *string        `json:"donorName"`
	DonorEmail        *string        `json:"donorEmail"`
	Status            *RequestStatus `json:"status"`
}

// Fields returns the set fields keyed by their document names.
func (p RequestPatch) Fields() map[string]any {
	out := map[string]any{}
	set := func(key string, v *string) {
		if v != nil {
			out[key] = *v
		}
	}
	set("requesterName", p.RequesterName)
	set("requesterEmail", p.RequesterEmail)
	set("recipientName", p.RecipientName)
	set("recipientDistrict", p.RecipientDistrict)
	set("recipientUpazila", p.RecipientUpazila)
	set("hospitalName", p.HospitalName)
	set("fullAddress", p.FullAddress)
	set("bloodGroup", p.BloodGroup)
	set("donationDate", p.DonationDate)
	set("donationTime", p.DonationTime)
	set("requestMessage", p.RequestMessage)
	set("donorName", p.DonorName)
	set("donorEmail", p.DonorEmail)
	if p.Status != nil {
		out["status"] = *p.Status
	}
	return out
}

// UpdateResult mirrors the store's matched/modified counters.
type UpdateResult struct {
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

type DeleteResult struct {
	DeletedCount int64 `json:"deletedCount"`
}
