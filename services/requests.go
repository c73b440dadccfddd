package services

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/ZisanUlHaque/RedHope-Server/models"
	mq "github.com/ZisanUlHaque/RedHope-Server/mq"
	store "github.com/ZisanUlHaque/RedHope-Server/store"
)

// Patch fields each caller may set on a request. Admins may set any field in
// the patch schema. The owner may edit everything except the requester email.
// Volunteers move status. Other donors may only claim an unassigned request
// for themselves or update one already assigned to them.
var (
	ownerPatchFields = fieldSet(
		"requesterName", "recipientName", "recipientDistrict", "recipientUpazila",
		"hospitalName", "fullAddress", "bloodGroup", "donationDate", "donationTime",
		"requestMessage", "donorName", "donorEmail", "status",
	)
	donorPatchFields     = fieldSet("status", "donorName", "donorEmail")
	volunteerPatchFields = fieldSet("status")
)

func fieldSet(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// PatchAllowed reports the fields in fields that actor may not set on r.
func PatchAllowed(actor Actor, r *models.DonationRequest, fields map[string]any) []string {
	if actor.IsAdmin() {
		return nil
	}

	var denied []string
	switch {
	case actor.Email != "" && actor.Email == r.RequesterEmail:
		denied = outside(ownerPatchFields, fields)
	case actor.Role == models.RoleVolunteer:
		denied = outside(volunteerPatchFields, fields)
	default:
		denied = donorPatchDenied(actor, r, fields)
	}
	sort.Strings(denied)
	return denied
}

func outside(allowed map[string]bool, fields map[string]any) []string {
	var denied []string
	for k := range fields {
		if !allowed[k] {
			denied = append(denied, k)
		}
	}
	return denied
}

// donorPatchDenied applies the policy for a donor who does not own r.
func donorPatchDenied(actor Actor, r *models.DonationRequest, fields map[string]any) []string {
	if actor.Email == "" {
		return outside(nil, fields)
	}
	assigned := r.DonorEmail == actor.Email
	claim := r.DonorEmail == "" &&
		fields["status"] == models.StatusInProgress &&
		fields["donorEmail"] == actor.Email

	var denied []string
	for k, v := range fields {
		switch {
		case !donorPatchFields[k], !assigned && !claim:
			denied = append(denied, k)
		case k == "donorEmail" && v != actor.Email:
			denied = append(denied, k)
		}
	}
	return denied
}

// RequestService owns the donation request lifecycle.
type RequestService struct {
	store  RequestStore
	events EventPublisher
	strict bool
	now    func() time.Time
}

// NewRequestService builds the lifecycle manager. With strictTransitions set,
// status updates must follow the request state machine.
func NewRequestService(s RequestStore, events EventPublisher, strictTransitions bool) *RequestService {
	return &RequestService{store: s, events: events, strict: strictTransitions, now: time.Now}
}

// ---------------- CREATE ----------------
func (s *RequestService) Create(ctx context.Context, r *models.DonationRequest) (primitive.ObjectID, error) {
	r.RequesterEmail = strings.TrimSpace(r.RequesterEmail)
	r.BloodGroup = strings.TrimSpace(r.BloodGroup)
	if r.RequesterEmail == "" {
		return primitive.NilObjectID, errorf(ErrValidation, "requesterEmail is required")
	}
	if r.BloodGroup == "" {
		return primitive.NilObjectID, errorf(ErrValidation, "bloodGroup is required")
	}
	if !r.Status.Valid() {
		r.Status = models.StatusPending
	}

	now := s.now().UTC()
	r.ID = primitive.NilObjectID
	r.CreatedAt = now
	r.UpdatedAt = now

	id, err := s.store.Insert(ctx, r)
	if err != nil {
		return primitive.NilObjectID, wrap(ErrStore, "create donation request", err)
	}

	slog.Info("donation request created", "id", id.Hex(), "requester", r.RequesterEmail, "bloodGroup", r.BloodGroup)
	publish(ctx, s.events, mq.KeyRequestCreated, r)
	return id, nil
}

// ---------------- LIST ----------------
// List returns every matching request, newest first. A donor may only narrow
// the listing to their own email.
func (s *RequestService) List(ctx context.Context, actor Actor, f models.RequestFilter) ([]models.DonationRequest, error) {
	if f.RequesterEmail != "" && f.RequesterEmail != actor.Email && actor.Role == models.RoleDonor {
		return nil, errorf(ErrForbidden, "cannot list requests of another requester")
	}

	requests, err := s.store.Find(ctx, f)
	if err != nil {
		return nil, wrap(ErrStore, "list donation requests", err)
	}
	return requests, nil
}

// ---------------- GET ----------------
func (s *RequestService) Get(ctx context.Context, id string) (*models.DonationRequest, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	r, err := s.store.FindByID(ctx, oid)
	if errors.Is(err, store.ErrNotFound) {
		return nil, errorf(ErrNotFound, "donation request %s", id)
	}
	if err != nil {
		return nil, wrap(ErrStore, "get donation request", err)
	}
	return r, nil
}

// ---------------- UPDATE ----------------
// Update merges patch into the request. Updating a missing request reports
// zero matched rather than failing.
func (s *RequestService) Update(ctx context.Context, actor Actor, id string, patch models.RequestPatch) (models.UpdateResult, error) {
	oid, err := parseID(id)
	if err != nil {
		return models.UpdateResult{}, err
	}

	fields := patch.Fields()
	if len(fields) == 0 {
		return models.UpdateResult{}, errorf(ErrValidation, "no fields to update")
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return models.UpdateResult{}, errorf(ErrValidation, "unknown status %q", *patch.Status)
	}

	existing, err := s.store.FindByID(ctx, oid)
	if errors.Is(err, store.ErrNotFound) {
		return models.UpdateResult{}, nil
	}
	if err != nil {
		return models.UpdateResult{}, wrap(ErrStore, "load donation request", err)
	}

	if denied := PatchAllowed(actor, existing, fields); len(denied) > 0 {
		return models.UpdateResult{}, errorf(ErrForbidden, "may not update %s", strings.Join(denied, ", "))
	}
	if s.strict && patch.Status != nil && !existing.Status.CanTransitionTo(*patch.Status) {
		return models.UpdateResult{}, errorf(ErrValidation, "cannot move request from %s to %s", existing.Status, *patch.Status)
	}

	set := bson.M(fields)
	set["updatedAt"] = s.now().UTC()

	var res models.UpdateResult
	if s.strict && patch.Status != nil {
		res, err = s.store.UpdateIfStatus(ctx, oid, existing.Status, set)
	} else {
		res, err = s.store.Update(ctx, oid, set)
	}
	if err != nil {
		return models.UpdateResult{}, wrap(ErrStore, "update donation request", err)
	}
	if s.strict && patch.Status != nil && res.MatchedCount == 0 {
		return models.UpdateResult{}, errorf(ErrConflict, "request left %s before the update applied", existing.Status)
	}

	if patch.Status != nil && *patch.Status != existing.Status {
		slog.Info("donation request status changed", "id", id, "from", existing.Status, "to", *patch.Status, "by", actor.Email)
		publish(ctx, s.events, mq.KeyRequestStatusChanged, map[string]any{
			"id":             id,
			"requesterEmail": existing.RequesterEmail,
			"from":           existing.Status,
			"to":             *patch.Status,
			"by":             actor.Email,
		})
	}
	return res, nil
}

// ---------------- DELETE ----------------
// Delete removes a request owned by actor, or any request for admins.
// Deleting a missing request reports zero deleted.
func (s *RequestService) Delete(ctx context.Context, actor Actor, id string) (models.DeleteResult, error) {
	oid, err := parseID(id)
	if err != nil {
		return models.DeleteResult{}, err
	}

	existing, err := s.store.FindByID(ctx, oid)
	if errors.Is(err, store.ErrNotFound) {
		return models.DeleteResult{}, nil
	}
	if err != nil {
		return models.DeleteResult{}, wrap(ErrStore, "load donation request", err)
	}
	if !actor.IsAdmin() && existing.RequesterEmail != actor.Email {
		return models.DeleteResult{}, errorf(ErrForbidden, "only the requester or an admin may delete")
	}

	n, err := s.store.Delete(ctx, oid)
	if err != nil {
		return models.DeleteResult{}, wrap(ErrStore, "delete donation request", err)
	}
	return models.DeleteResult{DeletedCount: n}, nil
}
