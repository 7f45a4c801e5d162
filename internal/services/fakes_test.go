package services

import (
	"context"
	"mime/multipart"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/rentify/internal/models"
	"github.com/example/rentify/internal/repository"
)

func testURLs(name string) string {
	if name == "" {
		return ""
	}
	return "http://localhost:3000/uploads/" + name
}

// table is an in-memory stand-in for one GORM table.
type table[T any] struct {
	mu    sync.Mutex
	rows  map[uint]T
	next  uint
	idOf  func(*T) *uint
	reads int
}

func newTable[T any](idOf func(*T) *uint) *table[T] {
	return &table[T]{rows: make(map[uint]T), idOf: idOf}
}

func (t *table[T]) Create(_ context.Context, v *T) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	*t.idOf(v) = t.next
	t.rows[t.next] = *v
	return nil
}

func (t *table[T]) FindByID(_ context.Context, id uint) (*T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reads++
	v, ok := t.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &v, nil
}

func (t *table[T]) All(_ context.Context) ([]T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reads++
	return t.sorted(), nil
}

func (t *table[T]) List(_ context.Context, offset, limit int) ([]T, int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reads++
	all := t.sorted()
	return window(all, offset, limit), int64(len(all)), nil
}

func (t *table[T]) sorted() []T {
	ids := make([]uint, 0, len(t.rows))
	for id := range t.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.rows[id])
	}
	return out
}

func (t *table[T]) Save(_ context.Context, v *T) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := *t.idOf(v)
	if _, ok := t.rows[id]; !ok {
		return repository.ErrNotFound
	}
	t.rows[id] = *v
	return nil
}

func (t *table[T]) Delete(_ context.Context, id uint) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(t.rows, id)
	return nil
}

func (t *table[T]) put(v T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := *t.idOf(&v)
	t.rows[id] = v
	if id > t.next {
		t.next = id
	}
}

func (t *table[T]) get(id uint) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.rows[id]
	return v, ok
}

func (t *table[T]) update(id uint, fn func(*T)) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(&v)
	t.rows[id] = v
	return nil
}

// Users

type fakeUsers struct {
	*table[models.User]
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{newTable(func(u *models.User) *uint { return &u.ID })}
}

func (f *fakeUsers) Create(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if _, err := f.FindByEmail(ctx, u.Email); err == nil {
		return repository.ErrDuplicate
	}
	return f.table.Create(ctx, u)
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range f.rows {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) Update(_ context.Context, id uint, fields map[string]interface{}) error {
	return f.update(id, func(u *models.User) {
		for k, v := range fields {
			switch k {
			case "verification_status":
				u.VerificationStatus = v.(bool)
			case "account_disabled":
				u.AccountDisabled = v.(bool)
			case "password_hash":
				u.PasswordHash = v.(string)
			case "image":
				u.Image = v.(string)
			case "full_name":
				u.FullName = v.(string)
			case "phone_number":
				u.PhoneNumber = v.(string)
			case "preferred_currency":
				u.PreferredCurrency = v.(models.Currency)
			}
		}
	})
}

type fakeBlacklist struct {
	mu     sync.Mutex
	tokens map[string]time.Time
}

func newFakeBlacklist() *fakeBlacklist {
	return &fakeBlacklist{tokens: make(map[string]time.Time)}
}

func (f *fakeBlacklist) Add(_ context.Context, token string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token] = expiresAt
	return nil
}

func (f *fakeBlacklist) Exists(_ context.Context, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.tokens[token]
	return ok, nil
}

func (f *fakeBlacklist) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for token, exp := range f.tokens {
		if exp.Before(now) {
			delete(f.tokens, token)
			n++
		}
	}
	return n, nil
}

// Catalog

type fakeBrands struct {
	*table[models.Brand]
}

func newFakeBrands() *fakeBrands {
	return &fakeBrands{newTable(func(b *models.Brand) *uint { return &b.ID })}
}

func (f *fakeBrands) Create(ctx context.Context, b *models.Brand) error {
	for _, existing := range f.sorted() {
		if existing.Name == b.Name {
			return repository.ErrDuplicate
		}
	}
	return f.table.Create(ctx, b)
}

func newFakeLocations() *table[models.Location] {
	return newTable(func(l *models.Location) *uint { return &l.ID })
}

type fakeCars struct {
	*table[models.Car]
	discounts *fakeDiscounts
}

func newFakeCars(discounts *fakeDiscounts) *fakeCars {
	return &fakeCars{table: newTable(func(c *models.Car) *uint { return &c.ID }), discounts: discounts}
}

func (f *fakeCars) FindDetails(ctx context.Context, id uint) (*models.Car, error) {
	car, err := f.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.discounts != nil {
		for _, d := range f.discounts.sorted() {
			if d.CarID == id {
				car.Discounts = append(car.Discounts, d)
			}
		}
	}
	return car, nil
}

func (f *fakeCars) List(ctx context.Context, offset, limit int, availableOnly bool) ([]models.Car, int64, error) {
	if !availableOnly {
		return f.table.List(ctx, offset, limit)
	}
	var available []models.Car
	for _, c := range f.sorted() {
		if c.IsAvailable {
			available = append(available, c)
		}
	}
	return window(available, offset, limit), int64(len(available)), nil
}

func (f *fakeCars) LockAvailable(_ context.Context, id uint) (*models.Car, error) {
	car, ok := f.get(id)
	if !ok || !car.IsAvailable {
		return nil, repository.ErrNotFound
	}
	return &car, nil
}

func (f *fakeCars) MarkUnavailable(_ context.Context, id uint) (bool, error) {
	flipped := false
	err := f.update(id, func(c *models.Car) {
		if c.IsAvailable {
			c.IsAvailable = false
			flipped = true
		}
	})
	if err == repository.ErrNotFound {
		return false, nil
	}
	return flipped, err
}

func (f *fakeCars) MarkAvailable(_ context.Context, id uint) error {
	return f.update(id, func(c *models.Car) {
		if !c.Withdrawn {
			c.IsAvailable = true
		}
	})
}

func (f *fakeCars) AddImages(_ context.Context, carID uint, paths []string) ([]models.CarImage, error) {
	var images []models.CarImage
	err := f.update(carID, func(c *models.Car) {
		for _, p := range paths {
			img := models.CarImage{CarID: carID, ImagePath: p}
			c.Images = append(c.Images, img)
			images = append(images, img)
		}
	})
	return images, err
}

func (f *fakeCars) UpsertPolicy(_ context.Context, carID uint, text string) (*models.CarPolicy, error) {
	policy := &models.CarPolicy{CarID: carID, PoliciesText: text}
	err := f.update(carID, func(c *models.Car) { c.Policy = policy })
	return policy, err
}

type fakeDiscounts struct {
	*table[models.Discount]
}

func newFakeDiscounts() *fakeDiscounts {
	return &fakeDiscounts{newTable(func(d *models.Discount) *uint { return &d.ID })}
}

func (f *fakeDiscounts) ActivePercentage(_ context.Context, carID uint, now time.Time) (int, error) {
	best := 0
	for _, d := range f.sorted() {
		if d.CarID == carID && d.EndDate.After(now) && d.Percentage > best {
			best = d.Percentage
		}
	}
	return best, nil
}

type fakeReviews struct {
	*table[models.CarReview]
	averages int
}

func newFakeReviews() *fakeReviews {
	return &fakeReviews{table: newTable(func(r *models.CarReview) *uint { return &r.ID })}
}

func (f *fakeReviews) AverageRate(_ context.Context, carID uint) (float64, int64, error) {
	f.averages++
	var sum, n int
	for _, r := range f.sorted() {
		if r.CarID == carID {
			sum += r.ReviewRate
			n++
		}
	}
	if n == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(n), int64(n), nil
}

// Orders

type fakeOrders struct {
	*table[models.Order]
	users *fakeUsers
}

func newFakeOrders(users *fakeUsers) *fakeOrders {
	return &fakeOrders{table: newTable(func(o *models.Order) *uint { return &o.ID }), users: users}
}

func (f *fakeOrders) FindByID(ctx context.Context, id uint) (*models.Order, error) {
	order, err := f.table.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u, ok := f.users.get(order.UserID); ok {
		order.User = &u
	}
	return order, nil
}

func (f *fakeOrders) ListByUser(_ context.Context, userID uint) ([]models.Order, error) {
	var out []models.Order
	for _, o := range f.sorted() {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrders) Update(_ context.Context, id uint, fields map[string]interface{}) error {
	return f.update(id, func(o *models.Order) {
		if v, ok := fields["order_status"]; ok {
			o.OrderStatus = v.(models.OrderStatus)
		}
		if v, ok := fields["payment_state"]; ok {
			o.PaymentState = v.(models.PaymentState)
		}
	})
}

type fakeContacts struct {
	*table[models.ContactUs]
	users *fakeUsers
}

func newFakeContacts(users *fakeUsers) *fakeContacts {
	return &fakeContacts{table: newTable(func(m *models.ContactUs) *uint { return &m.ID }), users: users}
}

func (f *fakeContacts) withUser(m models.ContactUs) models.ContactUs {
	if u, ok := f.users.get(m.UserID); ok {
		m.User = &u
	}
	return m
}

func (f *fakeContacts) FindByID(ctx context.Context, id uint) (*models.ContactUs, error) {
	m, err := f.table.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	withUser := f.withUser(*m)
	return &withUser, nil
}

func (f *fakeContacts) List(ctx context.Context, offset, limit int) ([]models.ContactUs, int64, error) {
	rows, total, err := f.table.List(ctx, offset, limit)
	for i := range rows {
		rows[i] = f.withUser(rows[i])
	}
	return rows, total, err
}

func (f *fakeContacts) Update(_ context.Context, id uint, fields map[string]interface{}) error {
	return f.update(id, func(m *models.ContactUs) {
		if v, ok := fields["status"]; ok {
			m.Status = v.(models.ContactStatus)
		}
	})
}

// passthroughTx runs the function without a real transaction.
type passthroughTx struct{}

func (passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Side effects

type sentMail struct {
	To    string
	Code  string
	Order OrderMail
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *recordingMailer) SendActivation(email, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{To: email, Code: code})
	return m.err
}

func (m *recordingMailer) SendOrderStatus(email string, info OrderMail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{To: email, Order: info})
	return m.err
}

func (m *recordingMailer) last() sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentMail{}
	}
	return m.sent[len(m.sent)-1]
}

type recordingNotifier struct {
	newOrders []OrderNotification
	canceled  []uint
	messages  []string
}

func (n *recordingNotifier) NotifyNewOrder(order OrderNotification) error {
	n.newOrders = append(n.newOrders, order)
	return nil
}

func (n *recordingNotifier) NotifyOrderCanceled(orderID uint, _ string) error {
	n.canceled = append(n.canceled, orderID)
	return nil
}

func (n *recordingNotifier) NotifyContactMessage(_ string, subject string) error {
	n.messages = append(n.messages, subject)
	return nil
}

type recordingEvents struct {
	events []OrderEvent
}

func (e *recordingEvents) Publish(_ context.Context, event OrderEvent) error {
	e.events = append(e.events, event)
	return nil
}

func (e *recordingEvents) Close() error { return nil }

func (e *recordingEvents) types() []string {
	out := make([]string, 0, len(e.events))
	for _, ev := range e.events {
		out = append(out, ev.Type)
	}
	return out
}

type recordingRefresher struct {
	ids []uint
}

func (r *recordingRefresher) Refresh(_ context.Context, id uint) {
	r.ids = append(r.ids, id)
}

type fakeUploads struct {
	removed []string
}

func (u *fakeUploads) SaveImage(file *multipart.FileHeader) (string, error) {
	return "stored-" + file.Filename, nil
}

func (u *fakeUploads) Remove(name string) {
	if name != "" {
		u.removed = append(u.removed, name)
	}
}
