package service

import (
	"context"
	"fmt"
	"time"

	"healthyhowlz/backend/internal/domain"
	"healthyhowlz/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes. They mirror the mongo implementations'
// observable behavior (ErrNotFound on misses, owner-scoped deletes) so
// the services under test can't tell the difference.

// --- UserRepository fake ---

type fakeUserRepo struct {
	users map[primitive.ObjectID]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[primitive.ObjectID]*domain.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.ID == primitive.NilObjectID {
		user.ID = primitive.NewObjectID()
	}
	r.users[user.ID] = user
	return user.ID, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) AddClientIDToTrainer(_ context.Context, trainerID, clientID primitive.ObjectID) error {
	trainer, ok := r.users[trainerID]
	if !ok {
		return repository.ErrNotFound
	}
	trainer.ClientIDs = append(trainer.ClientIDs, clientID)
	return nil
}

func (r *fakeUserRepo) GetClientsByTrainerID(_ context.Context, trainerID primitive.ObjectID) ([]domain.User, error) {
	var clients []domain.User
	for _, u := range r.users {
		if u.TrainerID != nil && *u.TrainerID == trainerID {
			clients = append(clients, *u)
		}
	}
	return clients, nil
}

func (r *fakeUserRepo) SetTrainerForClient(_ context.Context, clientID, trainerID primitive.ObjectID) error {
	client, ok := r.users[clientID]
	if !ok {
		return repository.ErrNotFound
	}
	client.TrainerID = &trainerID
	return nil
}

func (r *fakeUserRepo) SetSessionAllotment(_ context.Context, clientID primitive.ObjectID, allotment int) error {
	client, ok := r.users[clientID]
	if !ok {
		return repository.ErrNotFound
	}
	client.SessionAllotment = allotment
	return nil
}

func (r *fakeUserRepo) UpdateName(_ context.Context, id primitive.ObjectID, name string) error {
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Name = name
	return nil
}

// --- PlanVersionRepository fake ---

type closeCall struct {
	id   primitive.ObjectID
	till time.Time
}

type fakePlanRepo struct {
	versions   []*domain.PlanVersion
	closeCalls []closeCall
}

func (r *fakePlanRepo) Create(_ context.Context, version *domain.PlanVersion) (primitive.ObjectID, error) {
	stored := *version
	stored.ID = primitive.NewObjectID()
	r.versions = append(r.versions, &stored)
	return stored.ID, nil
}

func (r *fakePlanRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.PlanVersion, error) {
	for _, v := range r.versions {
		if v.ID == id {
			copied := *v
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakePlanRepo) GetByClientAndType(_ context.Context, clientID primitive.ObjectID, planType domain.PlanType) ([]domain.PlanVersion, error) {
	var out []domain.PlanVersion
	for _, v := range r.versions {
		if v.ClientID == clientID && v.Type == planType {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *fakePlanRepo) CloseVersion(_ context.Context, id primitive.ObjectID, till time.Time) error {
	r.closeCalls = append(r.closeCalls, closeCall{id: id, till: till})
	for _, v := range r.versions {
		if v.ID == id && v.FollowedTill == nil {
			t := till
			v.FollowedTill = &t
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakePlanRepo) mustAdd(v domain.PlanVersion) *domain.PlanVersion {
	if v.ID == primitive.NilObjectID {
		v.ID = primitive.NewObjectID()
	}
	stored := v
	r.versions = append(r.versions, &stored)
	return &stored
}

// --- TemplateRepository fake ---

type fakeTemplateRepo struct {
	templates []*domain.PlanTemplate
}

func (r *fakeTemplateRepo) Create(_ context.Context, tpl *domain.PlanTemplate) (primitive.ObjectID, error) {
	stored := *tpl
	stored.ID = primitive.NewObjectID()
	r.templates = append(r.templates, &stored)
	return stored.ID, nil
}

func (r *fakeTemplateRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.PlanTemplate, error) {
	for _, tpl := range r.templates {
		if tpl.ID == id {
			copied := *tpl
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeTemplateRepo) GetByTrainerAndType(_ context.Context, trainerID primitive.ObjectID, planType domain.PlanType) ([]domain.PlanTemplate, error) {
	var out []domain.PlanTemplate
	for _, tpl := range r.templates {
		if tpl.TrainerID == trainerID && tpl.Type == planType {
			out = append(out, *tpl)
		}
	}
	return out, nil
}

func (r *fakeTemplateRepo) Update(_ context.Context, tpl *domain.PlanTemplate) error {
	for i, existing := range r.templates {
		if existing.ID == tpl.ID && existing.TrainerID == tpl.TrainerID {
			stored := *tpl
			r.templates[i] = &stored
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeTemplateRepo) Delete(_ context.Context, id, trainerID primitive.ObjectID) error {
	for i, tpl := range r.templates {
		if tpl.ID == id && tpl.TrainerID == trainerID {
			r.templates = append(r.templates[:i], r.templates[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeTemplateRepo) mustAdd(tpl domain.PlanTemplate) *domain.PlanTemplate {
	if tpl.ID == primitive.NilObjectID {
		tpl.ID = primitive.NewObjectID()
	}
	stored := tpl
	r.templates = append(r.templates, &stored)
	return &stored
}

// --- SessionRepository fake ---

type fakeSessionRepo struct {
	slots        []*domain.SessionSlot
	statusWrites int
}

func (r *fakeSessionRepo) CreateMany(_ context.Context, slots []domain.SessionSlot) ([]domain.SessionSlot, error) {
	now := time.Now().UTC()
	created := make([]domain.SessionSlot, len(slots))
	for i, s := range slots {
		s.ID = primitive.NewObjectID()
		s.CreatedAt = now
		s.UpdatedAt = now
		stored := s
		r.slots = append(r.slots, &stored)
		created[i] = s
	}
	return created, nil
}

func (r *fakeSessionRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.SessionSlot, error) {
	for _, s := range r.slots {
		if s.ID == id {
			copied := *s
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeSessionRepo) GetByTrainerAndRange(_ context.Context, trainerID primitive.ObjectID, dateRange domain.TimeRange) ([]domain.SessionSlot, error) {
	var out []domain.SessionSlot
	for _, s := range r.slots {
		if s.TrainerID == trainerID && dateRange.Contains(s.SessionDate) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) GetByClientAndRange(_ context.Context, clientID primitive.ObjectID, dateRange domain.TimeRange) ([]domain.SessionSlot, error) {
	var out []domain.SessionSlot
	for _, s := range r.slots {
		if s.ClientID == clientID && dateRange.Contains(s.SessionDate) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) GetByClient(_ context.Context, clientID primitive.ObjectID) ([]domain.SessionSlot, error) {
	var out []domain.SessionSlot
	for _, s := range r.slots {
		if s.ClientID == clientID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, status domain.SessionStatus) error {
	r.statusWrites++
	for _, s := range r.slots {
		if s.ID == id {
			s.Status = status
			s.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeSessionRepo) UpdateNotes(_ context.Context, id primitive.ObjectID, notes string) error {
	for _, s := range r.slots {
		if s.ID == id {
			s.Notes = notes
			s.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeSessionRepo) Delete(_ context.Context, id primitive.ObjectID, trainerID primitive.ObjectID) error {
	for i, s := range r.slots {
		if s.ID == id && s.TrainerID == trainerID {
			r.slots = append(r.slots[:i], r.slots[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeSessionRepo) mustAdd(s domain.SessionSlot) *domain.SessionSlot {
	if s.ID == primitive.NilObjectID {
		s.ID = primitive.NewObjectID()
	}
	stored := s
	r.slots = append(r.slots, &stored)
	return &stored
}

// --- MeasurementRepository fake ---

type fakeMeasurementRepo struct {
	measurements []*domain.Measurement
}

func (r *fakeMeasurementRepo) Create(_ context.Context, m *domain.Measurement) (primitive.ObjectID, error) {
	stored := *m
	stored.ID = primitive.NewObjectID()
	r.measurements = append(r.measurements, &stored)
	return stored.ID, nil
}

func (r *fakeMeasurementRepo) GetByClientAndRange(_ context.Context, clientID primitive.ObjectID, takenRange domain.TimeRange) ([]domain.Measurement, error) {
	var out []domain.Measurement
	for _, m := range r.measurements {
		if m.ClientID == clientID && takenRange.Contains(m.TakenAt) {
			out = append(out, *m)
		}
	}
	return out, nil
}

// --- FileStorage fake ---

type fakeFileStorage struct {
	failUpload   bool
	failDownload bool
}

func (f *fakeFileStorage) GeneratePresignedUploadURL(_ context.Context, objectKey, contentType string, _ time.Duration) (string, error) {
	if f.failUpload {
		return "", fmt.Errorf("presign failed")
	}
	return "https://storage.test/upload/" + objectKey + "?ct=" + contentType, nil
}

func (f *fakeFileStorage) GeneratePresignedDownloadURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	if f.failDownload {
		return "", fmt.Errorf("presign failed")
	}
	return "https://storage.test/download/" + objectKey, nil
}

func (f *fakeFileStorage) DeleteObject(_ context.Context, _ string) error {
	return nil
}

// --- Shared fixtures ---

func newTrainer() *domain.User {
	return &domain.User{
		ID:    primitive.NewObjectID(),
		Name:  "Trainer",
		Email: "trainer@example.com",
		Role:  domain.RoleTrainer,
	}
}

func newManagedClient(trainerID primitive.ObjectID, allotment int) *domain.User {
	return &domain.User{
		ID:               primitive.NewObjectID(),
		Name:             "Client",
		Email:            "client@example.com",
		Role:             domain.RoleClient,
		TrainerID:        &trainerID,
		SessionAllotment: allotment,
	}
}
