package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"pressing-booking/internal/data/entity"
	"pressing-booking/internal/data/repository"
	"pressing-booking/pkg/mailer"
	"pressing-booking/pkg/payment"
	"pressing-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Map-backed fakes for the repository interfaces. Conditional writes are
// guarded by a mutex so concurrency tests see the same semantics as the
// single-statement SQL they stand in for.

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*entity.Booking

	// auditTrail receives the rows the update-with-audit methods commit.
	auditTrail *fakeModificationRepo

	failCreate bool
	failAudit  bool
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]*entity.Booking)}
}

func (f *fakeBookingRepo) Create(ctx context.Context, booking *entity.Booking) error {
	if f.failCreate {
		return errors.New("storage unavailable")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *booking
	f.bookings[booking.ID] = &cp
	return nil
}

func (f *fakeBookingRepo) CreateIdempotent(ctx context.Context, booking *entity.Booking) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.PaymentIntentID != nil && booking.PaymentIntentID != nil && *b.PaymentIntentID == *booking.PaymentIntentID {
			return false, nil
		}
	}
	cp := *booking
	f.bookings[booking.ID] = &cp
	return true, nil
}

func (f *fakeBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookingRepo) FindByPaymentRef(ctx context.Context, ref string) (*entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if (b.PaymentIntentID != nil && *b.PaymentIntentID == ref) ||
			(b.PaymentSessionID != nil && *b.PaymentSessionID == ref) {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeBookingRepo) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Booking
	for _, b := range f.bookings {
		if b.UserID != nil && *b.UserID == userID {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, b := range f.bookings {
		if b.UserID != nil && *b.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (f *fakeBookingRepo) CountActiveByAddressID(ctx context.Context, addressID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, b := range f.bookings {
		if b.Status == entity.BookingStatusCompleted ||
			b.Status == entity.BookingStatusCancelled ||
			b.Status == entity.BookingStatusDelivered {
			continue
		}
		if (b.PickupAddressID != nil && *b.PickupAddressID == addressID) ||
			(b.DeliveryAddressID != nil && *b.DeliveryAddressID == addressID) {
			n++
		}
	}
	return n, nil
}

func (f *fakeBookingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.bookings, id)
	return nil
}

// The update-with-audit methods mirror the real repository's transactions:
// when the audit write fails nothing else changes either.

func (f *fakeBookingRepo) UpdateStatus(ctx context.Context, bookingID uuid.UUID, from, to entity.BookingStatus, mod *entity.BookingModification) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[bookingID]
	if !ok || b.Status != from {
		return false, nil
	}
	if f.failAudit {
		return false, errors.New("audit write failed")
	}
	b.Status = to
	f.auditTrail.append(mod)
	return true, nil
}

func (f *fakeBookingRepo) MarkCancelled(ctx context.Context, bookingID uuid.UUID, at time.Time, by, reason string, mod *entity.BookingModification) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[bookingID]
	if !ok {
		return false, nil
	}
	if b.Status != entity.BookingStatusPending && b.Status != entity.BookingStatusConfirmed {
		return false, nil
	}
	if f.failAudit {
		return false, errors.New("audit write failed")
	}
	b.Status = entity.BookingStatusCancelled
	b.CancelledAt = &at
	b.CancelledBy = &by
	b.CancellationReason = &reason
	f.auditTrail.append(mod)
	return true, nil
}

func (f *fakeBookingRepo) UpdateModifiable(ctx context.Context, booking *entity.Booking, mods []*entity.BookingModification) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[booking.ID]
	if !ok {
		return false, nil
	}
	if b.Status != entity.BookingStatusPending && b.Status != entity.BookingStatusConfirmed {
		return false, nil
	}
	if f.failAudit {
		return false, errors.New("audit write failed")
	}
	cp := *booking
	cp.Status = b.Status
	f.bookings[booking.ID] = &cp
	for _, mod := range mods {
		f.auditTrail.append(mod)
	}
	return true, nil
}

func (f *fakeBookingRepo) SetCreditUsage(ctx context.Context, bookingID uuid.UUID, discountCents, surplusCents int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.bookings[bookingID]; ok {
		b.UsedCredit = true
		b.CreditDiscountCents = &discountCents
		b.CreditSurplusCents = &surplusCents
	}
	return nil
}

func (f *fakeBookingRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.bookings)
}

type fakeItemRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID][]*entity.BookingItem

	failCreateBatch bool
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{items: make(map[uuid.UUID][]*entity.BookingItem)}
}

func (f *fakeItemRepo) CreateBatch(ctx context.Context, items []*entity.BookingItem) error {
	if f.failCreateBatch {
		return errors.New("storage unavailable")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range items {
		cp := *item
		f.items[item.BookingID] = append(f.items[item.BookingID], &cp)
	}
	return nil
}

func (f *fakeItemRepo) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.BookingItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*entity.BookingItem(nil), f.items[bookingID]...), nil
}

func (f *fakeItemRepo) DeleteByBookingID(ctx context.Context, bookingID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, bookingID)
	return nil
}

func (f *fakeItemRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, items := range f.items {
		n += len(items)
	}
	return n
}

type fakeModificationRepo struct {
	mu   sync.Mutex
	mods []*entity.BookingModification
}

// append stands in for the insert the real code runs inside the booking
// repository's transaction.
func (f *fakeModificationRepo) append(mod *entity.BookingModification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *mod
	f.mods = append(f.mods, &cp)
}

func (f *fakeModificationRepo) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.BookingModification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.BookingModification
	for _, m := range f.mods {
		if m.BookingID == bookingID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeReportRepo struct {
	reports []*entity.BookingReport
}

func (f *fakeReportRepo) Create(ctx context.Context, report *entity.BookingReport) error {
	cp := *report
	f.reports = append(f.reports, &cp)
	return nil
}

func (f *fakeReportRepo) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.BookingReport, error) {
	var out []*entity.BookingReport
	for _, r := range f.reports {
		if r.BookingID == bookingID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeAddressRepo struct {
	addresses map[uuid.UUID]*entity.Address
}

func newFakeAddressRepo() *fakeAddressRepo {
	return &fakeAddressRepo{addresses: make(map[uuid.UUID]*entity.Address)}
}

func (f *fakeAddressRepo) Create(ctx context.Context, address *entity.Address) error {
	cp := *address
	f.addresses[address.ID] = &cp
	return nil
}

func (f *fakeAddressRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Address, error) {
	a, ok := f.addresses[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAddressRepo) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Address, error) {
	var out []*entity.Address
	for _, a := range f.addresses {
		if a.UserID == userID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeAddressRepo) FindDefaultByUserID(ctx context.Context, userID uuid.UUID) (*entity.Address, error) {
	for _, a := range f.addresses {
		if a.UserID == userID && a.IsDefault {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeAddressRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.addresses, id)
	return nil
}

type fakeSlotRepo struct {
	slots map[uuid.UUID]*entity.LogisticSlot
}

func newFakeSlotRepo() *fakeSlotRepo {
	return &fakeSlotRepo{slots: make(map[uuid.UUID]*entity.LogisticSlot)}
}

func (f *fakeSlotRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.LogisticSlot, error) {
	s, ok := f.slots[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSlotRepo) FindAvailable(ctx context.Context, role entity.SlotRole, from, to time.Time) ([]*entity.LogisticSlot, error) {
	var out []*entity.LogisticSlot
	for _, s := range f.slots {
		if s.Role == role && s.IsOpen && !s.Date.Before(from) && !s.Date.After(to) {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeSubscriptionRepo struct {
	subs map[uuid.UUID]*entity.Subscription
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{subs: make(map[uuid.UUID]*entity.Subscription)}
}

func (f *fakeSubscriptionRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Subscription, error) {
	s, ok := f.subs[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSubscriptionRepo) FindEntitledByUserID(ctx context.Context, userID uuid.UUID) (*entity.Subscription, error) {
	for _, s := range f.subs {
		if s.UserID == userID && s.IsEntitled() {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeSubscriptionRepo) FindAllEntitled(ctx context.Context) ([]*entity.Subscription, error) {
	var out []*entity.Subscription
	for _, s := range f.subs {
		if s.IsEntitled() {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeCreditRepo struct {
	mu      sync.Mutex
	credits map[uuid.UUID]*entity.SubscriptionCredit
}

func newFakeCreditRepo() *fakeCreditRepo {
	return &fakeCreditRepo{credits: make(map[uuid.UUID]*entity.SubscriptionCredit)}
}

func (f *fakeCreditRepo) Create(ctx context.Context, credit *entity.SubscriptionCredit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.credits {
		if c.SubscriptionID == credit.SubscriptionID && c.WeekStartDate.Equal(credit.WeekStartDate) {
			return nil
		}
	}
	cp := *credit
	f.credits[credit.ID] = &cp
	return nil
}

func (f *fakeCreditRepo) FindForWeek(ctx context.Context, subscriptionID uuid.UUID, weekStart time.Time) (*entity.SubscriptionCredit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.credits {
		if c.SubscriptionID == subscriptionID && c.WeekStartDate.Equal(weekStart) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeCreditRepo) ConsumeOne(ctx context.Context, creditID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.credits[creditID]
	if !ok || c.CreditsRemaining <= 0 {
		return false, nil
	}
	c.CreditsRemaining--
	return true, nil
}

func (f *fakeCreditRepo) remaining(creditID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.credits[creditID].CreditsRemaining
}

type fakeCreditUsageRepo struct {
	mu     sync.Mutex
	usages []*entity.CreditUsage
}

func (f *fakeCreditUsageRepo) Create(ctx context.Context, usage *entity.CreditUsage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *usage
	f.usages = append(f.usages, &cp)
	return nil
}

func (f *fakeCreditUsageRepo) FindBySubscriptionID(ctx context.Context, subscriptionID uuid.UUID, limit, offset int) ([]*entity.CreditUsage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.CreditUsage
	for _, u := range f.usages {
		if u.SubscriptionID == subscriptionID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeCreditUsageRepo) SumDiscountBySubscriptionID(ctx context.Context, subscriptionID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum int64
	for _, u := range f.usages {
		if u.SubscriptionID == subscriptionID {
			sum += u.DiscountCents
		}
	}
	return sum, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*entity.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) CreateIfAbsent(ctx context.Context, user *entity.User) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return false, nil
		}
	}
	cp := *user
	f.users[user.ID] = &cp
	return true, nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

type fakeSessionRepo struct {
	sessions map[string]*entity.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*entity.Session)}
}

func (f *fakeSessionRepo) Create(ctx context.Context, session *entity.Session) error {
	cp := *session
	f.sessions[session.Token.String()] = &cp
	return nil
}

func (f *fakeSessionRepo) FindValidSession(ctx context.Context, token string) (*entity.Session, error) {
	s, ok := f.sessions[token]
	if !ok || s.RevokedAt != nil || s.ExpiresAt.Before(time.Now()) {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessionRepo) Revoke(ctx context.Context, token string) error {
	if s, ok := f.sessions[token]; ok {
		now := time.Now()
		s.RevokedAt = &now
	}
	return nil
}

func (f *fakeSessionRepo) RevokeAllUserSessions(ctx context.Context, userID uuid.UUID) error {
	now := time.Now()
	for _, s := range f.sessions {
		if s.UserID == userID {
			s.RevokedAt = &now
		}
	}
	return nil
}

type fakeServiceRepo struct {
	services map[uuid.UUID]*entity.Service
}

func newFakeServiceRepo() *fakeServiceRepo {
	return &fakeServiceRepo{services: make(map[uuid.UUID]*entity.Service)}
}

func (f *fakeServiceRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Service, error) {
	s, ok := f.services[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (f *fakeServiceRepo) FindAllActive(ctx context.Context) ([]*entity.Service, error) {
	var out []*entity.Service
	for _, s := range f.services {
		if s.IsActive {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

// fakePaymentClient returns a canned session per reference.
type fakePaymentClient struct {
	sessions map[string]*payment.Session
}

func (f *fakePaymentClient) RetrieveSession(ctx context.Context, ref string) (*payment.Session, error) {
	return f.sessions[ref], nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (f *fakeMailer) Send(ctx context.Context, msg mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return nil
}

// testEnv bundles fakes plus the services under test.
type testEnv struct {
	repo     *repository.Repository
	bookings *fakeBookingRepo
	items    *fakeItemRepo
	mods     *fakeModificationRepo
	reports  *fakeReportRepo
	addrs    *fakeAddressRepo
	slots    *fakeSlotRepo
	subs     *fakeSubscriptionRepo
	credits  *fakeCreditRepo
	usages   *fakeCreditUsageRepo
	users    *fakeUserRepo
	services *fakeServiceRepo
	payments *fakePaymentClient
	mails    *fakeMailer
	config   *utils.Config
}

func newTestEnv() *testEnv {
	env := &testEnv{
		bookings: newFakeBookingRepo(),
		items:    newFakeItemRepo(),
		mods:     &fakeModificationRepo{},
		reports:  &fakeReportRepo{},
		addrs:    newFakeAddressRepo(),
		slots:    newFakeSlotRepo(),
		subs:     newFakeSubscriptionRepo(),
		credits:  newFakeCreditRepo(),
		usages:   &fakeCreditUsageRepo{},
		users:    newFakeUserRepo(),
		services: newFakeServiceRepo(),
		payments: &fakePaymentClient{sessions: make(map[string]*payment.Session)},
		mails:    &fakeMailer{},
		config: &utils.Config{
			Credit: utils.CreditConfig{
				ThresholdKg:      15,
				SurplusRateCents: 300,
			},
			Session: utils.SessionConfig{ExpiryHours: 24},
			App:     utils.AppConfig{BaseURL: "http://localhost:8080"},
		},
	}
	env.bookings.auditTrail = env.mods
	env.repo = &repository.Repository{
		User:         env.users,
		Session:      newFakeSessionRepo(),
		Service:      env.services,
		Address:      env.addrs,
		Booking:      env.bookings,
		BookingItem:  env.items,
		Modification: env.mods,
		Report:       env.reports,
		Slot:         env.slots,
		Subscription: env.subs,
		Credit:       env.credits,
		CreditUsage:  env.usages,
	}
	return env
}

func (env *testEnv) addressService() AddressService {
	return NewAddressService(env.repo, zap.NewNop())
}

func (env *testEnv) slotService() SlotService {
	return NewSlotService(env.repo, zap.NewNop())
}

func (env *testEnv) creditService() CreditService {
	return NewCreditService(env.repo, env.config, zap.NewNop())
}

func (env *testEnv) bookingService() BookingService {
	return NewBookingService(env.repo, env.slotService(), zap.NewNop())
}

func (env *testEnv) checkoutService() CheckoutService {
	return NewCheckoutService(env.repo, env.slotService(), env.creditService(),
		env.payments, env.mails, env.config, zap.NewNop())
}

// Seed helpers

func (env *testEnv) seedService(t entity.ServiceType, priceCents int64) *entity.Service {
	svc := &entity.Service{
		Base:           entity.Base{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
		Name:           string(t) + " cleaning",
		Type:           t,
		UnitPriceCents: priceCents,
		IsActive:       true,
	}
	env.services.services[svc.ID] = svc
	return svc
}

func (env *testEnv) seedSlot(role entity.SlotRole, start time.Time, durationHours int) *entity.LogisticSlot {
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	slot := &entity.LogisticSlot{
		BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: time.Now()},
		Role:       role,
		Date:       day,
		StartTime:  time.Date(0, 1, 1, start.Hour(), start.Minute(), 0, 0, start.Location()),
		EndTime:    time.Date(0, 1, 1, start.Hour()+durationHours, start.Minute(), 0, 0, start.Location()),
		IsOpen:     true,
	}
	env.slots.slots[slot.ID] = slot
	return slot
}

func (env *testEnv) seedUserWithAddress() (*entity.User, *entity.Address) {
	user := &entity.User{
		Base:      entity.Base{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
		FirstName: "Marie",
		LastName:  "Dupont",
		Email:     "marie@example.com",
		Role:      entity.RoleCustomer,
		IsActive:  true,
	}
	env.users.users[user.ID] = user

	addr := &entity.Address{
		Base:       entity.Base{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
		UserID:     user.ID,
		Street:     "12 rue de la Paix",
		City:       "Paris",
		PostalCode: "75002",
		IsDefault:  true,
	}
	env.addrs.addresses[addr.ID] = addr
	return user, addr
}

func (env *testEnv) seedSubscriptionWithCredits(userID uuid.UUID, plan entity.SubscriptionPlan, remaining int) (*entity.Subscription, *entity.SubscriptionCredit) {
	sub := &entity.Subscription{
		Base:   entity.Base{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
		UserID: userID,
		Plan:   plan,
		Status: entity.SubscriptionStatusActive,
	}
	env.subs.subs[sub.ID] = sub

	credit := &entity.SubscriptionCredit{
		BaseSimple:       entity.BaseSimple{ID: uuid.New(), CreatedAt: time.Now()},
		SubscriptionID:   sub.ID,
		CreditsTotal:     plan.CreditsPerWeek(),
		CreditsRemaining: remaining,
		WeekStartDate:    entity.WeekStart(time.Now()),
		ResetAt:          time.Now(),
	}
	env.credits.credits[credit.ID] = credit
	return sub, credit
}
