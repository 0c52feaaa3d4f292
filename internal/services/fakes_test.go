package services

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/brightkatongo/learn-hub/internal/models"
	"github.com/brightkatongo/learn-hub/internal/repositories"
)

// In-memory repository fakes. They mirror the conditional-update
// semantics of the Mongo implementations: every status transition
// re-checks the prior status under the lock and reports rejection
// through the boolean.

type fakeTransactionRepo struct {
	mu  sync.Mutex
	txs map[primitive.ObjectID]*models.Transaction
}

var _ repositories.TransactionRepository = (*fakeTransactionRepo)(nil)

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{txs: make(map[primitive.ObjectID]*models.Transaction)}
}

func (r *fakeTransactionRepo) Create(ctx context.Context, tx *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.txs {
		if existing.ReferenceCode == tx.ReferenceCode {
			return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
		}
	}
	if tx.ID.IsZero() {
		tx.ID = primitive.NewObjectID()
	}
	tx.UpdatedAt = time.Now()
	clone := *tx
	r.txs[tx.ID] = &clone
	return nil
}

func (r *fakeTransactionRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.txs[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	clone := *tx
	return &clone, nil
}

func (r *fakeTransactionRepo) FindByReferenceCode(ctx context.Context, code string) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tx := range r.txs {
		if tx.ReferenceCode == code {
			clone := *tx
			return &clone, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeTransactionRepo) FindPendingByReferenceCode(ctx context.Context, code string) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tx := range r.txs {
		if tx.ReferenceCode == code && tx.Status == models.StatusPending {
			clone := *tx
			return &clone, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeTransactionRepo) FindByReferenceCodeAndUser(ctx context.Context, code string, userID primitive.ObjectID) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tx := range r.txs {
		if tx.ReferenceCode == code && tx.UserID == userID {
			clone := *tx
			return &clone, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeTransactionRepo) FindActiveByUserAndCourse(ctx context.Context, userID, courseID primitive.ObjectID) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tx := range r.txs {
		if tx.UserID == userID && tx.CourseID == courseID &&
			(tx.Status == models.StatusInitiated || tx.Status == models.StatusPending) {
			clone := *tx
			return &clone, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeTransactionRepo) FindByUser(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Transaction
	for _, tx := range r.txs {
		if tx.UserID == userID {
			clone := *tx
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeTransactionRepo) ExistsByReferenceCode(ctx context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tx := range r.txs {
		if tx.ReferenceCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeTransactionRepo) transition(id primitive.ObjectID, from []string, apply func(*models.Transaction)) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.txs[id]
	if !ok {
		return false, nil
	}
	for _, status := range from {
		if tx.Status == status {
			apply(tx)
			tx.UpdatedAt = time.Now()
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeTransactionRepo) MarkPending(ctx context.Context, id primitive.ObjectID, at time.Time) (bool, error) {
	return r.transition(id, []string{models.StatusInitiated}, func(tx *models.Transaction) {
		tx.Status = models.StatusPending
	})
}

func (r *fakeTransactionRepo) Confirm(ctx context.Context, id primitive.ObjectID, at time.Time) (bool, error) {
	return r.transition(id, []string{models.StatusPending}, func(tx *models.Transaction) {
		tx.Status = models.StatusConfirmed
		tx.ConfirmedAt = &at
	})
}

func (r *fakeTransactionRepo) MarkFailed(ctx context.Context, id primitive.ObjectID, reason string, at time.Time) (bool, error) {
	return r.transition(id, []string{models.StatusPending}, func(tx *models.Transaction) {
		tx.Status = models.StatusFailed
		tx.FailureReason = reason
	})
}

func (r *fakeTransactionRepo) Cancel(ctx context.Context, id primitive.ObjectID, at time.Time) (bool, error) {
	return r.transition(id, []string{models.StatusInitiated, models.StatusPending}, func(tx *models.Transaction) {
		tx.Status = models.StatusCancelled
	})
}

func (r *fakeTransactionRepo) ExpirePending(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, tx := range r.txs {
		if tx.Status == models.StatusPending && tx.ExpiresAt.Before(cutoff) {
			tx.Status = models.StatusExpired
			tx.UpdatedAt = time.Now()
			count++
		}
	}
	return count, nil
}

func (r *fakeTransactionRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.txs)), nil
}

// get returns the stored transaction for assertions.
func (r *fakeTransactionRepo) get(id primitive.ObjectID) *models.Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx := r.txs[id]
	if tx == nil {
		return nil
	}
	clone := *tx
	return &clone
}

type fakeProviderRepo struct {
	providers map[string]*models.Provider
}

var _ repositories.ProviderRepository = (*fakeProviderRepo)(nil)

func newFakeProviderRepo(providers ...*models.Provider) *fakeProviderRepo {
	r := &fakeProviderRepo{providers: make(map[string]*models.Provider)}
	for _, p := range providers {
		if p.ID.IsZero() {
			p.ID = primitive.NewObjectID()
		}
		r.providers[p.Name] = p
	}
	return r
}

func (r *fakeProviderRepo) FindByName(ctx context.Context, name string) (*models.Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return p, nil
}

func (r *fakeProviderRepo) FindActive(ctx context.Context) ([]*models.Provider, error) {
	var out []*models.Provider
	for _, p := range r.providers {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProviderRepo) FindAll(ctx context.Context) ([]*models.Provider, error) {
	var out []*models.Provider
	for _, p := range r.providers {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeProviderRepo) Upsert(ctx context.Context, provider *models.Provider) (bool, error) {
	if _, ok := r.providers[provider.Name]; ok {
		return false, nil
	}
	r.providers[provider.Name] = provider
	return true, nil
}

type fakeVerificationRepo struct {
	mu            sync.Mutex
	verifications []*models.Verification
}

var _ repositories.VerificationRepository = (*fakeVerificationRepo)(nil)

func (r *fakeVerificationRepo) Create(ctx context.Context, v *models.Verification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v.ID.IsZero() {
		v.ID = primitive.NewObjectID()
	}
	r.verifications = append(r.verifications, v)
	return nil
}

func (r *fakeVerificationRepo) FindByTransactionID(ctx context.Context, transactionID primitive.ObjectID) ([]*models.Verification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Verification
	for _, v := range r.verifications {
		if v.TransactionID == transactionID {
			out = append(out, v)
		}
	}
	return out, nil
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []*models.Notification
}

var _ repositories.NotificationRepository = (*fakeNotificationRepo)(nil)

func (r *fakeNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	r.notifications = append(r.notifications, n)
	return nil
}

func (r *fakeNotificationRepo) UpdateDelivery(ctx context.Context, id primitive.ObjectID, delivered bool, status, messageID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.ID == id {
			n.Delivered = delivered
			n.DeliveryStatus = status
			n.MessageID = messageID
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (r *fakeNotificationRepo) FindByTransactionID(ctx context.Context, transactionID primitive.ObjectID) ([]*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Notification
	for _, n := range r.notifications {
		if n.TransactionID == transactionID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.notifications)), nil
}

type fakeEnrollmentRepo struct {
	mu          sync.Mutex
	enrollments []*models.Enrollment
}

var _ repositories.EnrollmentRepository = (*fakeEnrollmentRepo)(nil)

func (r *fakeEnrollmentRepo) FindByUserAndCourse(ctx context.Context, userID, courseID primitive.ObjectID) (*models.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.enrollments {
		if e.UserID == userID && e.CourseID == courseID {
			return e, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeEnrollmentRepo) GetOrCreate(ctx context.Context, enrollment *models.Enrollment) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.enrollments {
		if e.UserID == enrollment.UserID && e.CourseID == enrollment.CourseID {
			return false, nil
		}
	}
	if enrollment.ID.IsZero() {
		enrollment.ID = primitive.NewObjectID()
	}
	r.enrollments = append(r.enrollments, enrollment)
	return true, nil
}

func (r *fakeEnrollmentRepo) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Enrollment
	for _, e := range r.enrollments {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEnrollmentRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.enrollments)), nil
}

type fakeCourseRepo struct {
	courses map[primitive.ObjectID]*models.Course
}

var _ repositories.CourseRepository = (*fakeCourseRepo)(nil)

func newFakeCourseRepo(courses ...*models.Course) *fakeCourseRepo {
	r := &fakeCourseRepo{courses: make(map[primitive.ObjectID]*models.Course)}
	for _, c := range courses {
		if c.ID.IsZero() {
			c.ID = primitive.NewObjectID()
		}
		r.courses[c.ID] = c
	}
	return r
}

func (r *fakeCourseRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Course, error) {
	c, ok := r.courses[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return c, nil
}

type fakeUserRepo struct {
	users map[string]*models.User
}

var _ repositories.UserRepository = (*fakeUserRepo)(nil)

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		if u.ID.IsZero() {
			u.ID = primitive.NewObjectID()
		}
		r.users[u.Email] = u
	}
	return r
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	r.users[user.Email] = user
	return nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return u, nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}
