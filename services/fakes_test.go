package services

import (
	"context"
	"errors"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/ZisanUlHaque/RedHope-Server/models"
	payments "github.com/ZisanUlHaque/RedHope-Server/payments"
	store "github.com/ZisanUlHaque/RedHope-Server/store"
)

var errBoom = errors.New("boom")

// memRequests is an in-memory RequestStore.
type memRequests struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]models.DonationRequest
	err  error
}

func newMemRequests() *memRequests {
	return &memRequests{docs: map[primitive.ObjectID]models.DonationRequest{}}
}

func (m *memRequests) Insert(_ context.Context, r *models.DonationRequest) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return primitive.NilObjectID, m.err
	}
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	m.docs[r.ID] = *r
	return r.ID, nil
}

func (m *memRequests) Find(_ context.Context, f models.RequestFilter) ([]models.DonationRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []models.DonationRequest{}
	for _, r := range m.docs {
		if f.RequesterEmail != "" && r.RequesterEmail != f.RequesterEmail {
			continue
		}
		if f.Status != "" && string(r.Status) != f.Status {
			continue
		}
		if f.BloodGroup != "" && r.BloodGroup != f.BloodGroup {
			continue
		}
		if f.District != "" && r.RecipientDistrict != f.District {
			continue
		}
		if f.Upazila != "" && r.RecipientUpazila != f.Upazila {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memRequests) FindByID(_ context.Context, id primitive.ObjectID) (*models.DonationRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	r, ok := m.docs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &r, nil
}

func (m *memRequests) Update(_ context.Context, id primitive.ObjectID, fields bson.M) (models.UpdateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return models.UpdateResult{}, m.err
	}
	return m.apply(id, fields)
}

func (m *memRequests) UpdateIfStatus(_ context.Context, id primitive.ObjectID, status models.RequestStatus, fields bson.M) (models.UpdateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return models.UpdateResult{}, m.err
	}
	if r, ok := m.docs[id]; !ok || r.Status != status {
		return models.UpdateResult{}, nil
	}
	return m.apply(id, fields)
}

// apply merges fields into the stored document. Callers hold m.mu.
func (m *memRequests) apply(id primitive.ObjectID, fields bson.M) (models.UpdateResult, error) {
	r, ok := m.docs[id]
	if !ok {
		return models.UpdateResult{}, nil
	}

	raw, err := bson.Marshal(r)
	if err != nil {
		return models.UpdateResult{}, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return models.UpdateResult{}, err
	}
	for k, v := range fields {
		doc[k] = v
	}
	raw, err = bson.Marshal(doc)
	if err != nil {
		return models.UpdateResult{}, err
	}
	var updated models.DonationRequest
	if err := bson.Unmarshal(raw, &updated); err != nil {
		return models.UpdateResult{}, err
	}
	m.docs[id] = updated
	return models.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (m *memRequests) Delete(_ context.Context, id primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	if _, ok := m.docs[id]; !ok {
		return 0, nil
	}
	delete(m.docs, id)
	return 1, nil
}

func (m *memRequests) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	return int64(len(m.docs)), nil
}

// memFundings is an in-memory FundingStore enforcing unique transaction ids.
type memFundings struct {
	mu        sync.Mutex
	docs      []models.Funding
	err       error
	hideLooks bool // FindByTransactionID always misses, as in a lost race
}

func (m *memFundings) Insert(_ context.Context, f *models.Funding) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return primitive.NilObjectID, m.err
	}
	for _, d := range m.docs {
		if d.TransactionID == f.TransactionID {
			return primitive.NilObjectID, store.ErrDuplicate
		}
	}
	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	m.docs = append(m.docs, *f)
	return f.ID, nil
}

func (m *memFundings) FindByTransactionID(_ context.Context, txID string) (*models.Funding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.hideLooks {
		return nil, store.ErrNotFound
	}
	for _, d := range m.docs {
		if d.TransactionID == txID {
			d := d
			return &d, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memFundings) List(_ context.Context) ([]models.Funding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := append([]models.Funding{}, m.docs...)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memFundings) SumAmount(_ context.Context) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	var total float64
	for _, d := range m.docs {
		total += d.Amount
	}
	return total, nil
}

func (m *memFundings) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}

// memUsers is an in-memory UserStore enforcing unique emails.
type memUsers struct {
	mu   sync.Mutex
	docs []models.User
	err  error
}

func (m *memUsers) Insert(_ context.Context, u *models.User) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return primitive.NilObjectID, m.err
	}
	for _, d := range m.docs {
		if d.Email == u.Email {
			return primitive.NilObjectID, store.ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	m.docs = append(m.docs, *u)
	return u.ID, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, d := range m.docs {
		if d.Email == email {
			d := d
			return &d, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memUsers) Find(_ context.Context, f models.UserFilter) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []models.User{}
	for _, d := range m.docs {
		if f.Role != "" && string(d.Role) != f.Role {
			continue
		}
		if f.Status != "" && string(d.Status) != f.Status {
			continue
		}
		if f.BloodGroup != "" && d.BloodGroup != f.BloodGroup {
			continue
		}
		if f.District != "" && d.District != f.District {
			continue
		}
		if f.Upazila != "" && d.Upazila != f.Upazila {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (m *memUsers) UpdateByEmail(_ context.Context, email string, fields bson.M) (models.UpdateResult, error) {
	return m.update(func(u models.User) bool { return u.Email == email }, fields)
}

func (m *memUsers) UpdateByID(_ context.Context, id primitive.ObjectID, fields bson.M) (models.UpdateResult, error) {
	return m.update(func(u models.User) bool { return u.ID == id }, fields)
}

func (m *memUsers) update(match func(models.User) bool, fields bson.M) (models.UpdateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return models.UpdateResult{}, m.err
	}
	for i, d := range m.docs {
		if !match(d) {
			continue
		}
		for k, v := range fields {
			switch k {
			case "name":
				d.Name = v.(string)
			case "avatar":
				d.Avatar = v.(string)
			case "bloodGroup":
				d.BloodGroup = v.(string)
			case "district":
				d.District = v.(string)
			case "upazila":
				d.Upazila = v.(string)
			case "role":
				d.Role = v.(models.Role)
			case "status":
				d.Status = v.(models.UserStatus)
			}
		}
		m.docs[i] = d
		return models.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
	}
	return models.UpdateResult{}, nil
}

func (m *memUsers) CountByRole(_ context.Context, role models.Role) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	var n int64
	for _, d := range m.docs {
		if d.Role == role {
			n++
		}
	}
	return n, nil
}

// fakeProvider serves canned sessions and records checkout requests.
type fakeProvider struct {
	mu          sync.Mutex
	sessions    map[string]*payments.Session
	requests    []payments.SessionRequest
	createErr   error
	retrieveErr error
	retrieves   int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{sessions: map[string]*payments.Session{}}
}

func (p *fakeProvider) CreateSession(_ context.Context, req payments.SessionRequest) (*payments.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.createErr != nil {
		return nil, p.createErr
	}
	p.requests = append(p.requests, req)
	id := "cs_test_" + primitive.NewObjectID().Hex()
	sess := &payments.Session{ID: id, URL: "https://checkout.example.com/" + id, PaymentStatus: "unpaid"}
	p.sessions[id] = sess
	return sess, nil
}

func (p *fakeProvider) RetrieveSession(_ context.Context, id string) (*payments.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.retrieves++
	if p.retrieveErr != nil {
		return nil, p.retrieveErr
	}
	sess, ok := p.sessions[id]
	if !ok {
		return nil, errors.New("no such checkout.session: " + id)
	}
	cp := *sess
	return &cp, nil
}

// recorder captures published events.
type recorder struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (r *recorder) PublishJSON(_ context.Context, key string, _ any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, key)
	return r.err
}

func (r *recorder) published() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.keys...)
}
