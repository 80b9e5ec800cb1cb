package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"activity-booking/internal/data/entity"
	"activity-booking/internal/data/repository"

	"github.com/google/uuid"
)

// memStore is a shared in-memory backing for the fake repositories, so a
// payment fake can flip the same reservation row the reservation fake
// created, mirroring the shared database.
type memStore struct {
	mu           sync.Mutex
	users        map[uuid.UUID]*entity.User
	companies    map[uuid.UUID]*entity.Company
	memberships  []*entity.EmployeeCompany
	activities   map[uuid.UUID]*entity.Activity
	reservations map[uuid.UUID]*entity.Reservation
	payments     map[uuid.UUID]*entity.Payment
	reviews      map[uuid.UUID]*entity.Review
}

func newMemStore() *memStore {
	return &memStore{
		users:        make(map[uuid.UUID]*entity.User),
		companies:    make(map[uuid.UUID]*entity.Company),
		activities:   make(map[uuid.UUID]*entity.Activity),
		reservations: make(map[uuid.UUID]*entity.Reservation),
		payments:     make(map[uuid.UUID]*entity.Payment),
		reviews:      make(map[uuid.UUID]*entity.Review),
	}
}

func newFakeRepository(store *memStore) *repository.Repository {
	return &repository.Repository{
		User:        &fakeUserRepo{store: store},
		Session:     &fakeSessionRepo{},
		Company:     &fakeCompanyRepo{store: store},
		Employee:    &fakeEmployeeRepo{store: store},
		Activity:    &fakeActivityRepo{store: store},
		Reservation: &fakeReservationRepo{store: store},
		Payment:     &fakePaymentRepo{store: store},
		Review:      &fakeReviewRepo{store: store},
	}
}

// --- users ---

type fakeUserRepo struct{ store *memStore }

func (f *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, u := range f.store.users {
		if u.Email == user.Email || u.Username == user.Username {
			return fmt.Errorf("user exists: %w", entity.ErrDuplicate)
		}
	}
	f.store.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	return f.store.users[id], nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, u := range f.store.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, u := range f.store.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) UpdateRole(_ context.Context, userID uuid.UUID, role entity.UserRole) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	user, ok := f.store.users[userID]
	if !ok {
		return entity.ErrNotFound
	}
	user.Role = role
	return nil
}

// --- sessions ---

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*entity.Session
}

func (f *fakeSessionRepo) Create(_ context.Context, session *entity.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sessions == nil {
		f.sessions = make(map[string]*entity.Session)
	}
	f.sessions[session.Token.String()] = session
	return nil
}

func (f *fakeSessionRepo) FindValidSession(_ context.Context, token string) (*entity.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session := f.sessions[token]
	if session == nil || session.RevokedAt != nil || session.ExpiresAt.Before(time.Now()) {
		return nil, nil
	}
	return session, nil
}

func (f *fakeSessionRepo) Revoke(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[token]
	if !ok {
		return entity.ErrNotFound
	}
	now := time.Now()
	session.RevokedAt = &now
	return nil
}

func (f *fakeSessionRepo) RevokeAllUserSessions(_ context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	for _, session := range f.sessions {
		if session.UserID == userID {
			session.RevokedAt = &now
		}
	}
	return nil
}

func (f *fakeSessionRepo) CleanExpiredSessions(_ context.Context) error { return nil }

// --- companies ---

type fakeCompanyRepo struct{ store *memStore }

func (f *fakeCompanyRepo) Create(_ context.Context, company *entity.Company) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, c := range f.store.companies {
		if c.OwnerUserID == company.OwnerUserID {
			return fmt.Errorf("owner has a company: %w", entity.ErrDuplicate)
		}
	}
	f.store.companies[company.ID] = company
	return nil
}

func (f *fakeCompanyRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Company, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	return f.store.companies[id], nil
}

func (f *fakeCompanyRepo) FindByOwnerUserID(_ context.Context, ownerUserID uuid.UUID) (*entity.Company, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, c := range f.store.companies {
		if c.OwnerUserID == ownerUserID && c.IsActive {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeCompanyRepo) Update(_ context.Context, company *entity.Company) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	if _, ok := f.store.companies[company.ID]; !ok {
		return entity.ErrNotFound
	}
	f.store.companies[company.ID] = company
	return nil
}

// --- employees ---

type fakeEmployeeRepo struct{ store *memStore }

func (f *fakeEmployeeRepo) AddMember(_ context.Context, membership *entity.EmployeeCompany) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, m := range f.store.memberships {
		if m.CompanyID == membership.CompanyID && m.UserID == membership.UserID {
			return fmt.Errorf("already a member: %w", entity.ErrDuplicate)
		}
	}
	f.store.memberships = append(f.store.memberships, membership)
	return nil
}

func (f *fakeEmployeeRepo) RemoveMember(_ context.Context, companyID, userID uuid.UUID) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for i, m := range f.store.memberships {
		if m.CompanyID == companyID && m.UserID == userID {
			f.store.memberships = append(f.store.memberships[:i], f.store.memberships[i+1:]...)
			return nil
		}
	}
	return entity.ErrNotFound
}

func (f *fakeEmployeeRepo) FindCompanyForUser(_ context.Context, userID uuid.UUID) (*entity.EmployeeCompany, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, m := range f.store.memberships {
		if m.UserID == userID {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeEmployeeRepo) ListMembers(_ context.Context, companyID uuid.UUID) ([]*entity.EmployeeCompany, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var members []*entity.EmployeeCompany
	for _, m := range f.store.memberships {
		if m.CompanyID == companyID {
			members = append(members, m)
		}
	}
	return members, nil
}

// --- activities ---

type fakeActivityRepo struct{ store *memStore }

func (f *fakeActivityRepo) Create(_ context.Context, activity *entity.Activity) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	f.store.activities[activity.ID] = activity
	return nil
}

func (f *fakeActivityRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Activity, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	return f.store.activities[id], nil
}

func (f *fakeActivityRepo) Update(_ context.Context, activity *entity.Activity) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	existing, ok := f.store.activities[activity.ID]
	if !ok {
		return entity.ErrNotFound
	}
	// avg_rating/rating_count stay with the aggregator
	activity.AvgRating = existing.AvgRating
	activity.RatingCount = existing.RatingCount
	f.store.activities[activity.ID] = activity
	return nil
}

func (f *fakeActivityRepo) Archive(_ context.Context, id uuid.UUID) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	activity, ok := f.store.activities[id]
	if !ok {
		return entity.ErrNotFound
	}
	activity.Status = entity.ActivityStatusArchived
	return nil
}

func (f *fakeActivityRepo) FindPublished(_ context.Context, _ string, limit, offset int) ([]*entity.Activity, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var out []*entity.Activity
	for _, a := range f.store.activities {
		if a.Status == entity.ActivityStatusPublished {
			out = append(out, a)
		}
	}
	return slicePage(out, limit, offset), nil
}

func (f *fakeActivityRepo) CountPublished(_ context.Context, _ string) (int64, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var n int64
	for _, a := range f.store.activities {
		if a.Status == entity.ActivityStatusPublished {
			n++
		}
	}
	return n, nil
}

func (f *fakeActivityRepo) FindByCompanyID(_ context.Context, companyID uuid.UUID, limit, offset int) ([]*entity.Activity, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var out []*entity.Activity
	for _, a := range f.store.activities {
		if a.CompanyID == companyID {
			out = append(out, a)
		}
	}
	return slicePage(out, limit, offset), nil
}

func (f *fakeActivityRepo) CountByCompanyID(_ context.Context, companyID uuid.UUID) (int64, error) {
	activities, _ := f.FindByCompanyID(context.Background(), companyID, 1<<30, 0)
	return int64(len(activities)), nil
}

func (f *fakeActivityRepo) FindAll(_ context.Context, limit, offset int) ([]*entity.Activity, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var out []*entity.Activity
	for _, a := range f.store.activities {
		out = append(out, a)
	}
	return slicePage(out, limit, offset), nil
}

func (f *fakeActivityRepo) CountAll(_ context.Context) (int64, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	return int64(len(f.store.activities)), nil
}

// --- reservations ---

type fakeReservationRepo struct{ store *memStore }

func (f *fakeReservationRepo) CreateReserved(_ context.Context, activityID, userID uuid.UUID, quantity int, reference string) (*entity.Reservation, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	activity, ok := f.store.activities[activityID]
	if !ok || activity.Status != entity.ActivityStatusPublished {
		return nil, fmt.Errorf("activity %s: %w", activityID.String(), entity.ErrNotFound)
	}

	reserved := 0
	for _, r := range f.store.reservations {
		if r.ActivityID == activityID && r.Status != entity.ReservationStatusCancelled {
			reserved += r.Quantity
		}
	}
	if activity.Capacity != nil && reserved+quantity > *activity.Capacity {
		return nil, fmt.Errorf("activity full: %w", entity.ErrCapacityExceeded)
	}

	now := time.Now()
	reservation := &entity.Reservation{
		Base:       entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Reference:  reference,
		ActivityID: activityID,
		UserID:     userID,
		Quantity:   quantity,
		UnitPrice:  activity.Price,
		Status:     entity.ReservationStatusPending,
		ReservedAt: now,
	}
	f.store.reservations[reservation.ID] = reservation
	return reservation, nil
}

func (f *fakeReservationRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Reservation, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	return f.store.reservations[id], nil
}

func (f *fakeReservationRepo) FindByUserID(_ context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Reservation, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var out []*entity.Reservation
	for _, r := range f.store.reservations {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return slicePage(out, limit, offset), nil
}

func (f *fakeReservationRepo) CountByUserID(_ context.Context, userID uuid.UUID) (int64, error) {
	reservations, _ := f.FindByUserID(context.Background(), userID, 1<<30, 0)
	return int64(len(reservations)), nil
}

func (f *fakeReservationRepo) FindByCompanyID(_ context.Context, companyID uuid.UUID, limit, offset int) ([]*entity.Reservation, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var out []*entity.Reservation
	for _, r := range f.store.reservations {
		if activity, ok := f.store.activities[r.ActivityID]; ok && activity.CompanyID == companyID {
			out = append(out, r)
		}
	}
	return slicePage(out, limit, offset), nil
}

func (f *fakeReservationRepo) CountByCompanyID(_ context.Context, companyID uuid.UUID) (int64, error) {
	reservations, _ := f.FindByCompanyID(context.Background(), companyID, 1<<30, 0)
	return int64(len(reservations)), nil
}

func (f *fakeReservationRepo) FindAll(_ context.Context, limit, offset int) ([]*entity.Reservation, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var out []*entity.Reservation
	for _, r := range f.store.reservations {
		out = append(out, r)
	}
	return slicePage(out, limit, offset), nil
}

func (f *fakeReservationRepo) CountAll(_ context.Context) (int64, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	return int64(len(f.store.reservations)), nil
}

func (f *fakeReservationRepo) Cancel(_ context.Context, id uuid.UUID) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	reservation, ok := f.store.reservations[id]
	if !ok {
		return entity.ErrNotFound
	}
	if reservation.Status != entity.ReservationStatusPending {
		return fmt.Errorf("reservation is %s: %w", reservation.Status, entity.ErrInvalidState)
	}
	reservation.Status = entity.ReservationStatusCancelled
	return nil
}

func (f *fakeReservationRepo) SumActiveQuantity(_ context.Context, activityID uuid.UUID) (int, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	total := 0
	for _, r := range f.store.reservations {
		if r.ActivityID == activityID && r.Status != entity.ReservationStatusCancelled {
			total += r.Quantity
		}
	}
	return total, nil
}

// --- payments ---

type fakePaymentRepo struct{ store *memStore }

func (f *fakePaymentRepo) ApplyCompleted(_ context.Context, payment *entity.Payment) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	for _, p := range f.store.payments {
		if p.Provider == payment.Provider && p.ProviderTxnID == payment.ProviderTxnID {
			return fmt.Errorf("payment recorded: %w", entity.ErrDuplicate)
		}
	}

	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	payment.Status = entity.PaymentStatusCompleted
	f.store.payments[payment.ID] = payment

	if reservation, ok := f.store.reservations[payment.ReservationID]; ok {
		if reservation.Status == entity.ReservationStatusPending && reservation.PaymentID == nil {
			reservation.Status = entity.ReservationStatusConfirmed
			id := payment.ID
			reservation.PaymentID = &id
		}
	}
	return nil
}

func (f *fakePaymentRepo) CreateFailed(_ context.Context, payment *entity.Payment) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, p := range f.store.payments {
		if p.Provider == payment.Provider && p.ProviderTxnID == payment.ProviderTxnID {
			return fmt.Errorf("payment recorded: %w", entity.ErrDuplicate)
		}
	}
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	payment.Status = entity.PaymentStatusFailed
	f.store.payments[payment.ID] = payment
	return nil
}

func (f *fakePaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Payment, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	return f.store.payments[id], nil
}

func (f *fakePaymentRepo) FindByProviderTxn(_ context.Context, provider, providerTxnID string) (*entity.Payment, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, p := range f.store.payments {
		if p.Provider == provider && p.ProviderTxnID == providerTxnID {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakePaymentRepo) FindByReservationID(_ context.Context, reservationID uuid.UUID) ([]*entity.Payment, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var out []*entity.Payment
	for _, p := range f.store.payments {
		if p.ReservationID == reservationID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePaymentRepo) FindUnreconciled(_ context.Context, limit int) ([]*entity.Payment, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var out []*entity.Payment
	for _, p := range f.store.payments {
		if p.Status != entity.PaymentStatusCompleted {
			continue
		}
		reservation, ok := f.store.reservations[p.ReservationID]
		if ok && reservation.Status == entity.ReservationStatusPending && reservation.PaymentID == nil {
			out = append(out, p)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakePaymentRepo) ApplyToReservation(_ context.Context, paymentID, reservationID uuid.UUID) (bool, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	reservation, ok := f.store.reservations[reservationID]
	if !ok || reservation.Status != entity.ReservationStatusPending || reservation.PaymentID != nil {
		return false, nil
	}
	reservation.Status = entity.ReservationStatusConfirmed
	id := paymentID
	reservation.PaymentID = &id
	return true, nil
}

// --- reviews ---

type fakeReviewRepo struct{ store *memStore }

func (f *fakeReviewRepo) CreateWithAggregate(_ context.Context, review *entity.Review) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	activity, ok := f.store.activities[review.ActivityID]
	if !ok {
		return fmt.Errorf("activity: %w", entity.ErrNotFound)
	}

	eligible := false
	for _, r := range f.store.reservations {
		if r.UserID == review.UserID && r.ActivityID == review.ActivityID && r.Status == entity.ReservationStatusConfirmed {
			eligible = true
			break
		}
	}
	if !eligible {
		return fmt.Errorf("no confirmed reservation: %w", entity.ErrInvalidState)
	}

	for _, existing := range f.store.reviews {
		if existing.UserID == review.UserID && existing.ActivityID == review.ActivityID {
			return fmt.Errorf("already reviewed: %w", entity.ErrDuplicate)
		}
	}

	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	review.CreatedAt = time.Now()
	f.store.reviews[review.ID] = review

	activity.AvgRating = (activity.AvgRating*float64(activity.RatingCount) + float64(review.Rating)) / float64(activity.RatingCount+1)
	activity.RatingCount++
	return nil
}

func (f *fakeReviewRepo) DeleteWithAggregate(_ context.Context, reviewID uuid.UUID) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	review, ok := f.store.reviews[reviewID]
	if !ok {
		return fmt.Errorf("review: %w", entity.ErrNotFound)
	}
	activity := f.store.activities[review.ActivityID]
	delete(f.store.reviews, reviewID)

	if activity == nil {
		return nil
	}

	sum, count := 0, 0
	for _, r := range f.store.reviews {
		if r.ActivityID == review.ActivityID {
			sum += r.Rating
			count++
		}
	}
	if count == 0 {
		activity.AvgRating = 0
	} else {
		activity.AvgRating = float64(sum) / float64(count)
	}
	activity.RatingCount = count
	return nil
}

func (f *fakeReviewRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Review, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	return f.store.reviews[id], nil
}

func (f *fakeReviewRepo) FindByUserAndActivity(_ context.Context, userID, activityID uuid.UUID) (*entity.Review, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, r := range f.store.reviews {
		if r.UserID == userID && r.ActivityID == activityID {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeReviewRepo) FindByActivityID(_ context.Context, activityID uuid.UUID, limit, offset int) ([]*entity.Review, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var out []*entity.Review
	for _, r := range f.store.reviews {
		if r.ActivityID == activityID {
			out = append(out, r)
		}
	}
	return slicePage(out, limit, offset), nil
}

func (f *fakeReviewRepo) CountByActivityID(_ context.Context, activityID uuid.UUID) (int64, error) {
	reviews, _ := f.FindByActivityID(context.Background(), activityID, 1<<30, 0)
	return int64(len(reviews)), nil
}

func slicePage[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit < len(items) {
		items = items[:limit]
	}
	return items
}
