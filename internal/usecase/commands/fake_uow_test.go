//go:build unit

package commands_test

import (
	"context"
	"sync"
	"time"

	"stayhub/internal/domain/booking"
	"stayhub/internal/infra"
	"stayhub/internal/infra/db"
	"stayhub/internal/usecase/queries"
	"stayhub/internal/usecase/shared"

	"github.com/google/uuid"
)

// fakeStore is an in-memory stand-in for the Postgres layer. It reproduces
// the two storage-level guards the write path depends on: the partial unique
// index on live pre-payment bookings and the paid-overlap exclusion
// constraint. Within serializes transactions on one mutex, which plays the
// role of the property row lock, and restores a snapshot of the state when
// the transaction function fails so partial writes never leak out.
type fakeStore struct {
	mu            sync.Mutex
	now           func() time.Time
	properties    map[uuid.UUID]*shared.PropertySnapshot
	bookings      map[uuid.UUID]*shared.BookingSnapshot
	idempotency   map[idemKey]*shared.IdempotencyRecord
	notifications []fakeNotification
}

type idemKey struct {
	key    uuid.UUID
	userID uuid.UUID
}

type fakeNotification struct {
	Kind  string
	Topic string
}

func newFakeStore(now func() time.Time) *fakeStore {
	return &fakeStore{
		now:         now,
		properties:  map[uuid.UUID]*shared.PropertySnapshot{},
		bookings:    map[uuid.UUID]*shared.BookingSnapshot{},
		idempotency: map[idemKey]*shared.IdempotencyRecord{},
	}
}

func (s *fakeStore) addProperty(p *shared.PropertySnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.properties[p.ID] = &cp
}

func (s *fakeStore) addBooking(b *shared.BookingSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *b
	s.bookings[b.ID] = &cp
}

func (s *fakeStore) booking(id uuid.UUID) *shared.BookingSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.bookings[id]; ok {
		cp := *b
		return &cp
	}
	return nil
}

func (s *fakeStore) notificationTopics() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	topics := make([]string, len(s.notifications))
	for i, n := range s.notifications {
		topics[i] = n.Topic
	}
	return topics
}

func (s *fakeStore) snapshot() *fakeStore {
	cp := newFakeStore(s.now)
	for k, v := range s.properties {
		p := *v
		cp.properties[k] = &p
	}
	for k, v := range s.bookings {
		b := *v
		cp.bookings[k] = &b
	}
	for k, v := range s.idempotency {
		r := *v
		cp.idempotency[k] = &r
	}
	cp.notifications = append([]fakeNotification(nil), s.notifications...)
	return cp
}

func (s *fakeStore) restore(from *fakeStore) {
	s.properties = from.properties
	s.bookings = from.bookings
	s.idempotency = from.idempotency
	s.notifications = from.notifications
}

// fakeUow runs each transaction under the store mutex.
type fakeUow struct {
	store *fakeStore
}

func newFakeUow(store *fakeStore) *fakeUow {
	return &fakeUow{store: store}
}

func (u *fakeUow) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	before := u.store.snapshot()
	if err := fn(ctx, &fakeTx{store: u.store}); err != nil {
		u.store.restore(before)
		return err
	}
	return nil
}

func (u *fakeUow) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	return fn(ctx, nil)
}

func (u *fakeUow) WithDB(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	return fn(ctx, nil)
}

func (u *fakeUow) CommandReads() shared.CommandReads {
	return &lockedReads{store: u.store}
}

type fakeTx struct {
	store *fakeStore
}

func (t *fakeTx) Bookings() shared.BookingRepository        { return &fakeBookingRepo{store: t.store} }
func (t *fakeTx) Properties() shared.PropertyRepository     { return &fakePropertyRepo{store: t.store} }
func (t *fakeTx) Idempotency() shared.IdempotencyRepository { return &fakeIdemRepo{store: t.store} }
func (t *fakeTx) Notifications() shared.NotificationRepository {
	return &fakeNotificationRepo{store: t.store}
}
func (t *fakeTx) Reads() shared.CommandReads { return &fakeReads{store: t.store} }
func (t *fakeTx) DB() db.DBTX                { return nil }

// fakeReads runs inside a transaction, where the store mutex is already held.
type fakeReads struct {
	store *fakeStore
}

func (r *fakeReads) PropertyByID(_ context.Context, id uuid.UUID) (*shared.PropertySnapshot, error) {
	if p, ok := r.store.properties[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, infra.WrapRepoErr("property not found", nil, infra.KindNotFound)
}

func (r *fakeReads) BookingByID(_ context.Context, id uuid.UUID) (*shared.BookingSnapshot, error) {
	if b, ok := r.store.bookings[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
}

func (r *fakeReads) OverlappingHolds(_ context.Context, propertyID uuid.UUID, stay booking.StayRange) ([]booking.Hold, error) {
	var holds []booking.Hold
	for _, b := range r.store.bookings {
		if b.PropertyID != propertyID || b.Status == booking.StatusCancelled.String() {
			continue
		}
		if b.CheckIn.Before(stay.CheckOut()) && stay.CheckIn().Before(b.CheckOut) {
			holds = append(holds, holdFromSnapshot(b))
		}
	}
	return holds, nil
}

func (r *fakeReads) IdempotencyByKey(_ context.Context, key, userID uuid.UUID) (*shared.IdempotencyRecord, error) {
	rec, ok := r.store.idempotency[idemKey{key, userID}]
	if !ok || !rec.ExpiresAt.After(r.store.now()) {
		return nil, infra.WrapRepoErr("idempotency key not found", nil, infra.KindNotFound)
	}
	cp := *rec
	return &cp, nil
}

// lockedReads is the out-of-transaction variant; it takes the mutex per call.
type lockedReads struct {
	store *fakeStore
}

func (r *lockedReads) PropertyByID(ctx context.Context, id uuid.UUID) (*shared.PropertySnapshot, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return (&fakeReads{store: r.store}).PropertyByID(ctx, id)
}

func (r *lockedReads) BookingByID(ctx context.Context, id uuid.UUID) (*shared.BookingSnapshot, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return (&fakeReads{store: r.store}).BookingByID(ctx, id)
}

func (r *lockedReads) OverlappingHolds(ctx context.Context, propertyID uuid.UUID, stay booking.StayRange) ([]booking.Hold, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return (&fakeReads{store: r.store}).OverlappingHolds(ctx, propertyID, stay)
}

func (r *lockedReads) IdempotencyByKey(ctx context.Context, key, userID uuid.UUID) (*shared.IdempotencyRecord, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return (&fakeReads{store: r.store}).IdempotencyByKey(ctx, key, userID)
}

type fakeBookingRepo struct {
	store *fakeStore
}

func (f *fakeBookingRepo) Create(_ context.Context, _ db.DBTX, b *booking.Booking) error {
	for _, existing := range f.store.bookings {
		if existing.PropertyID != b.PropertyID() {
			continue
		}
		if existing.UserID == b.UserID() &&
			existing.CheckIn.Equal(b.Stay().CheckIn()) && existing.CheckOut.Equal(b.Stay().CheckOut()) &&
			(existing.Status == booking.StatusPending.String() || existing.Status == booking.StatusPaymentPending.String()) {
			return infra.WrapRepoErr("duplicate pending booking", nil, infra.KindDuplicateKey)
		}
	}
	if err := f.checkPaidOverlap(snapFromDomain(b, f.store.now())); err != nil {
		return err
	}
	f.store.bookings[b.ID()] = snapFromDomain(b, f.store.now())
	return nil
}

func (f *fakeBookingRepo) LockByID(_ context.Context, _ db.DBTX, id uuid.UUID) (*shared.BookingSnapshot, error) {
	if b, ok := f.store.bookings[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
}

func (f *fakeBookingRepo) UpdateState(_ context.Context, _ db.DBTX, b *booking.Booking) error {
	existing, ok := f.store.bookings[b.ID()]
	if !ok {
		return infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
	}
	next := *existing
	next.Status = b.Status().String()
	next.PaymentStatus = b.PaymentStatus().String()
	next.PaymentIntentID = b.PaymentIntentID()
	next.PaymentAttempts = b.PaymentAttempts()
	next.ConfirmedAt = b.ConfirmedAt()
	next.UpdatedAt = f.store.now()

	if err := f.checkPaidOverlap(&next); err != nil {
		return err
	}
	f.store.bookings[b.ID()] = &next
	return nil
}

// checkPaidOverlap mirrors the bookings_no_paid_overlap exclusion constraint.
func (f *fakeBookingRepo) checkPaidOverlap(candidate *shared.BookingSnapshot) error {
	if candidate.PaymentStatus != booking.PaymentPaid.String() {
		return nil
	}
	for _, other := range f.store.bookings {
		if other.ID == candidate.ID || other.PropertyID != candidate.PropertyID {
			continue
		}
		if other.PaymentStatus != booking.PaymentPaid.String() {
			continue
		}
		if other.CheckIn.Before(candidate.CheckOut) && candidate.CheckIn.Before(other.CheckOut) {
			return infra.WrapRepoErr("paid overlap", nil, infra.KindConflict)
		}
	}
	return nil
}

type fakePropertyRepo struct {
	store *fakeStore
}

func (f *fakePropertyRepo) LockByID(_ context.Context, _ db.DBTX, id uuid.UUID) (*shared.PropertySnapshot, error) {
	if p, ok := f.store.properties[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, infra.WrapRepoErr("property not found", nil, infra.KindNotFound)
}

func (f *fakePropertyRepo) Create(_ context.Context, _ db.DBTX, p *shared.PropertySnapshot) error {
	cp := *p
	f.store.properties[p.ID] = &cp
	return nil
}

type fakeIdemRepo struct {
	store *fakeStore
}

func (f *fakeIdemRepo) TryInsert(_ context.Context, _ db.DBTX, key, userID uuid.UUID, _, requestHash string, expiresAt time.Time) error {
	k := idemKey{key, userID}
	if _, exists := f.store.idempotency[k]; exists {
		return infra.WrapRepoErr("idempotency key exists", nil, infra.KindDuplicateKey)
	}
	f.store.idempotency[k] = &shared.IdempotencyRecord{
		Key:         key,
		UserID:      userID,
		Status:      shared.IdempotencyStatusProcessing,
		RequestHash: requestHash,
		ExpiresAt:   expiresAt,
	}
	return nil
}

func (f *fakeIdemRepo) UpdateStatusCompleted(_ context.Context, _ db.DBTX, key, userID uuid.UUID, _ string, bookingID uuid.UUID) error {
	rec, ok := f.store.idempotency[idemKey{key, userID}]
	if !ok {
		return infra.WrapRepoErr("idempotency key not found", nil, infra.KindNotFound)
	}
	rec.Status = shared.IdempotencyStatusCompleted
	id := bookingID
	rec.ResultBookingID = &id
	return nil
}

func (f *fakeIdemRepo) ClaimExpiredKey(_ context.Context, _ db.DBTX, key, userID uuid.UUID, requestHash string, expiresAt time.Time) (int64, error) {
	rec, ok := f.store.idempotency[idemKey{key, userID}]
	if !ok || rec.ExpiresAt.After(f.store.now()) {
		return 0, nil
	}
	rec.Status = shared.IdempotencyStatusProcessing
	rec.RequestHash = requestHash
	rec.ResultBookingID = nil
	rec.ExpiresAt = expiresAt
	return 1, nil
}

func (f *fakeIdemRepo) DeleteExpired(_ context.Context) (int64, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var deleted int64
	for k, rec := range f.store.idempotency {
		if rec.Status == shared.IdempotencyStatusCompleted && !rec.ExpiresAt.After(f.store.now()) {
			delete(f.store.idempotency, k)
			deleted++
		}
	}
	return deleted, nil
}

type fakeNotificationRepo struct {
	store *fakeStore
}

func (f *fakeNotificationRepo) CreateJob(_ context.Context, _ db.DBTX, kind, topic string, _ []byte, _ time.Time) error {
	f.store.notifications = append(f.store.notifications, fakeNotification{Kind: kind, Topic: topic})
	return nil
}

// staleReadUow serves plain transactional reads from a snapshot captured
// earlier, the way a non-locking SELECT under read committed can once another
// transaction has committed in between. Locking reads still see the current
// row, so tests can pin that transitions never trust the stale view.
type staleReadUow struct {
	inner *fakeUow
	stale *shared.BookingSnapshot
}

func (u *staleReadUow) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.inner.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return fn(ctx, &staleReadTx{Tx: tx, stale: u.stale})
	})
}

func (u *staleReadUow) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	return u.inner.WithinReadOnly(ctx, fn)
}

func (u *staleReadUow) WithDB(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	return u.inner.WithDB(ctx, fn)
}

func (u *staleReadUow) CommandReads() shared.CommandReads {
	return &staleReads{inner: u.inner.CommandReads(), stale: u.stale}
}

type staleReadTx struct {
	shared.Tx
	stale *shared.BookingSnapshot
}

func (t *staleReadTx) Reads() shared.CommandReads {
	return &staleReads{inner: t.Tx.Reads(), stale: t.stale}
}

type staleReads struct {
	inner shared.CommandReads
	stale *shared.BookingSnapshot
}

func (r *staleReads) PropertyByID(ctx context.Context, id uuid.UUID) (*shared.PropertySnapshot, error) {
	return r.inner.PropertyByID(ctx, id)
}

func (r *staleReads) BookingByID(ctx context.Context, id uuid.UUID) (*shared.BookingSnapshot, error) {
	if id == r.stale.ID {
		cp := *r.stale
		return &cp, nil
	}
	return r.inner.BookingByID(ctx, id)
}

func (r *staleReads) OverlappingHolds(ctx context.Context, propertyID uuid.UUID, stay booking.StayRange) ([]booking.Hold, error) {
	return r.inner.OverlappingHolds(ctx, propertyID, stay)
}

func (r *staleReads) IdempotencyByKey(ctx context.Context, key, userID uuid.UUID) (*shared.IdempotencyRecord, error) {
	return r.inner.IdempotencyByKey(ctx, key, userID)
}

// fakeBookingQueries serves the read-after-write path from the same store.
type fakeBookingQueries struct {
	store *fakeStore
}

func (q *fakeBookingQueries) GetByID(ctx context.Context, _ uuid.UUID, _ string, id uuid.UUID) (*queries.BookingView, error) {
	return q.GetByIDSystem(ctx, id)
}

func (q *fakeBookingQueries) GetByIDSystem(_ context.Context, id uuid.UUID) (*queries.BookingView, error) {
	q.store.mu.Lock()
	defer q.store.mu.Unlock()
	b, ok := q.store.bookings[id]
	if !ok {
		return nil, queries.ErrBookingNotFound
	}
	return viewFromSnapshot(b), nil
}

func (q *fakeBookingQueries) ListByUser(context.Context, uuid.UUID, *queries.Cursor, int) ([]*queries.BookingListItem, *queries.Cursor, error) {
	return nil, nil, nil
}

func (q *fakeBookingQueries) ListByHost(context.Context, uuid.UUID, *queries.Cursor, int) ([]*queries.BookingListItem, *queries.Cursor, error) {
	return nil, nil, nil
}

func snapFromDomain(b *booking.Booking, now time.Time) *shared.BookingSnapshot {
	return &shared.BookingSnapshot{
		ID:              b.ID(),
		PropertyID:      b.PropertyID(),
		HostID:          b.HostID(),
		UserID:          b.UserID(),
		CheckIn:         b.Stay().CheckIn(),
		CheckOut:        b.Stay().CheckOut(),
		Guests:          b.Guests(),
		AmountCents:     b.Amount().Cents(),
		Status:          b.Status().String(),
		PaymentStatus:   b.PaymentStatus().String(),
		PaymentIntentID: b.PaymentIntentID(),
		PaymentAttempts: b.PaymentAttempts(),
		CreatedAt:       now,
		UpdatedAt:       now,
		ConfirmedAt:     b.ConfirmedAt(),
	}
}

func holdFromSnapshot(b *shared.BookingSnapshot) booking.Hold {
	stay, _ := booking.NewStayRange(b.CheckIn, b.CheckOut)
	return booking.Hold{
		BookingID:     b.ID,
		Stay:          stay,
		Status:        booking.Status(b.Status),
		PaymentStatus: booking.PaymentStatus(b.PaymentStatus),
	}
}

func viewFromSnapshot(b *shared.BookingSnapshot) *queries.BookingView {
	stay, _ := booking.NewStayRange(b.CheckIn, b.CheckOut)
	return &queries.BookingView{
		ID:              b.ID,
		PropertyID:      b.PropertyID,
		HostID:          b.HostID,
		UserID:          b.UserID,
		CheckIn:         b.CheckIn,
		CheckOut:        b.CheckOut,
		Nights:          stay.Nights(),
		Guests:          b.Guests,
		AmountCents:     b.AmountCents,
		Status:          b.Status,
		PaymentStatus:   b.PaymentStatus,
		PaymentIntentID: b.PaymentIntentID,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
		ConfirmedAt:     b.ConfirmedAt,
	}
}
