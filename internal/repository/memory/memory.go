// Package memory is an in-process implementation of the repository
// interfaces. It enforces the same uniqueness rules as the postgres schema
// and is used by service and handler tests.
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/javajoker/bizdir-backend/internal/listing"
	"github.com/javajoker/bizdir-backend/internal/models"
	"github.com/javajoker/bizdir-backend/internal/repository"
)

// DB holds every table. Calls counts repository method invocations by name.
type DB struct {
	mu         sync.Mutex
	users      map[uuid.UUID]models.User
	profiles   map[uuid.UUID]models.Profile
	categories map[uuid.UUID]models.Category
	businesses map[uuid.UUID]models.Business
	products   map[uuid.UUID]models.Product
	reviews    map[uuid.UUID]models.Review
	audit      []models.AuditLog

	Calls map[string]int

	// FailBusinessCreate makes the next business insert fail with this error.
	FailBusinessCreate error
	// BeforeBusinessCreate runs once, unlocked, ahead of the next business
	// insert. Tests use it to land a competing write first.
	BeforeBusinessCreate func()
}

func New() *DB {
	return &DB{
		users:      map[uuid.UUID]models.User{},
		profiles:   map[uuid.UUID]models.Profile{},
		categories: map[uuid.UUID]models.Category{},
		businesses: map[uuid.UUID]models.Business{},
		products:   map[uuid.UUID]models.Product{},
		reviews:    map[uuid.UUID]models.Review{},
		Calls:      map[string]int{},
	}
}

// Store exposes d through the repository interfaces.
func (d *DB) Store() *repository.Store {
	return &repository.Store{
		Users:      (*users)(d),
		Profiles:   (*profiles)(d),
		Categories: (*categories)(d),
		Businesses: (*businesses)(d),
		Products:   (*products)(d),
		Reviews:    (*reviews)(d),
		Audit:      (*audit)(d),
	}
}

// TotalCalls sums every recorded repository call.
func (d *DB) TotalCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, c := range d.Calls {
		n += c
	}
	return n
}

// CallsExcept sums recorded calls other than the named ones.
func (d *DB) CallsExcept(names ...string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for name, c := range d.Calls {
		if !slices.Contains(names, name) {
			n += c
		}
	}
	return n
}

func (d *DB) AuditLogs() []models.AuditLog {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]models.AuditLog(nil), d.audit...)
}

// AddCategory seeds a category directly.
func (d *DB) AddCategory(name, slug string) models.Category {
	d.mu.Lock()
	defer d.mu.Unlock()
	c := models.Category{Name: name, Slug: slug}
	stamp(&c.BaseModel)
	d.categories[c.ID] = c
	return c
}

func (d *DB) call(name string) func() {
	d.mu.Lock()
	d.Calls[name]++
	return d.mu.Unlock
}

func stamp(m *models.BaseModel) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	now := time.Now()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
}

type users DB

func (u *users) db() *DB { return (*DB)(u) }

func (u *users) Create(_ context.Context, user *models.User, profile *models.Profile) error {
	d := u.db()
	defer d.call("Users.Create")()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	for _, existing := range d.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	stamp(&user.BaseModel)
	if user.SessionVersion == 0 {
		user.SessionVersion = 1
	}
	d.users[user.ID] = *user
	if profile != nil {
		profile.ID = user.ID
		profile.CreatedAt, profile.UpdatedAt = user.CreatedAt, user.UpdatedAt
		d.profiles[profile.ID] = *profile
	}
	return nil
}

func (u *users) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	d := u.db()
	defer d.call("Users.FindByID")()
	user, ok := d.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (u *users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	d := u.db()
	defer d.call("Users.FindByEmail")()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, user := range d.users {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (u *users) RecordSignIn(_ context.Context, id uuid.UUID, at time.Time) error {
	d := u.db()
	defer d.call("Users.RecordSignIn")()
	user, ok := d.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.LastSignInAt = &at
	d.users[id] = user
	return nil
}

func (u *users) BumpSessionVersion(_ context.Context, id uuid.UUID) (int, error) {
	d := u.db()
	defer d.call("Users.BumpSessionVersion")()
	user, ok := d.users[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	user.SessionVersion++
	d.users[id] = user
	return user.SessionVersion, nil
}

// SetUserType overwrites the stored user_type, simulating rows written by
// older clients.
func (d *DB) SetUserType(id uuid.UUID, t models.UserType) {
	d.mu.Lock()
	defer d.mu.Unlock()
	user := d.users[id]
	user.UserType = t
	d.users[id] = user
}

type profiles DB

func (p *profiles) FindByID(_ context.Context, id uuid.UUID) (*models.Profile, error) {
	d := (*DB)(p)
	defer d.call("Profiles.FindByID")()
	profile, ok := d.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &profile, nil
}

func (p *profiles) Update(_ context.Context, id uuid.UUID, updates map[string]interface{}) error {
	d := (*DB)(p)
	defer d.call("Profiles.Update")()
	profile, ok := d.profiles[id]
	if !ok {
		return repository.ErrNotFound
	}
	for k, v := range updates {
		switch k {
		case "first_name":
			profile.FirstName = v.(string)
		case "last_name":
			profile.LastName = v.(string)
		case "avatar_url":
			profile.AvatarURL = v.(string)
		case "bio":
			profile.Bio = v.(string)
		case "phone":
			profile.Phone = v.(string)
		case "is_business_owner":
			profile.IsBusinessOwner = v.(bool)
		}
	}
	profile.UpdatedAt = time.Now()
	d.profiles[id] = profile
	return nil
}

type categories DB

func (c *categories) List(_ context.Context) ([]models.Category, error) {
	d := (*DB)(c)
	defer d.call("Categories.List")()
	out := make([]models.Category, 0, len(d.categories))
	for _, category := range d.categories {
		out = append(out, category)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type businesses DB

func (b *businesses) Create(_ context.Context, business *models.Business) error {
	d := (*DB)(b)
	if hook := d.BeforeBusinessCreate; hook != nil {
		d.BeforeBusinessCreate = nil
		hook()
	}
	defer d.call("Businesses.Create")()
	if err := d.FailBusinessCreate; err != nil {
		d.FailBusinessCreate = nil
		return err
	}
	for _, existing := range d.businesses {
		if existing.Slug == business.Slug || existing.OwnerID == business.OwnerID {
			return repository.ErrDuplicate
		}
	}
	if business.CategoryID != nil {
		if _, ok := d.categories[*business.CategoryID]; !ok {
			return repository.ErrInvalidRef
		}
	}
	if business.Status == "" {
		business.Status = models.BusinessStatusPending
	}
	stamp(&business.BaseModel)
	d.businesses[business.ID] = *business
	return nil
}

func (b *businesses) find(match func(models.Business) bool) (*models.Business, error) {
	d := (*DB)(b)
	for _, business := range d.businesses {
		if match(business) {
			return d.withCategory(business), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (d *DB) withCategory(business models.Business) *models.Business {
	if business.CategoryID != nil {
		if c, ok := d.categories[*business.CategoryID]; ok {
			business.Category = &c
		}
	}
	return &business
}

func (b *businesses) FindByID(_ context.Context, id uuid.UUID) (*models.Business, error) {
	defer (*DB)(b).call("Businesses.FindByID")()
	return b.find(func(x models.Business) bool { return x.ID == id })
}

func (b *businesses) FindBySlug(_ context.Context, slug string) (*models.Business, error) {
	defer (*DB)(b).call("Businesses.FindBySlug")()
	return b.find(func(x models.Business) bool { return x.Slug == slug })
}

func (b *businesses) FindByOwner(_ context.Context, ownerID uuid.UUID) (*models.Business, error) {
	defer (*DB)(b).call("Businesses.FindByOwner")()
	return b.find(func(x models.Business) bool { return x.OwnerID == ownerID })
}

func (b *businesses) FindAll(_ context.Context, filter repository.BusinessFilter) ([]models.Business, error) {
	d := (*DB)(b)
	defer d.call("Businesses.FindAll")()
	out := []models.Business{}
	for _, business := range d.businesses {
		if filter.Status != nil && business.Status != *filter.Status {
			continue
		}
		if filter.CategoryID != nil && (business.CategoryID == nil || *business.CategoryID != *filter.CategoryID) {
			continue
		}
		out = append(out, *d.withCategory(business))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (b *businesses) Update(_ context.Context, id uuid.UUID, updates map[string]interface{}) error {
	d := (*DB)(b)
	defer d.call("Businesses.Update")()
	business, ok := d.businesses[id]
	if !ok {
		return repository.ErrNotFound
	}
	for k, v := range updates {
		applyBusinessField(&business, k, v)
	}
	business.UpdatedAt = time.Now()
	d.businesses[id] = business
	return nil
}

func applyBusinessField(b *models.Business, column string, v interface{}) {
	switch column {
	case "name":
		b.Name = v.(string)
	case "description":
		b.Description = v.(string)
	case "address":
		b.Address = v.(string)
	case "city":
		b.City = v.(string)
	case "state":
		b.State = v.(string)
	case "pincode":
		b.Pincode = v.(string)
	case "phone":
		b.Phone = v.(string)
	case "email":
		b.Email = v.(string)
	case "website":
		b.Website = v.(string)
	case "logo_url":
		b.LogoURL = v.(string)
	case "cover_url":
		b.CoverURL = v.(string)
	case "category_id":
		id, _ := v.(*uuid.UUID)
		b.CategoryID = id
	case "average_rating":
		switch avg := v.(type) {
		case float64:
			b.AverageRating = &avg
		case *float64:
			b.AverageRating = avg
		default:
			b.AverageRating = nil
		}
	case "total_reviews":
		switch n := v.(type) {
		case int64:
			b.TotalReviews = n
		case int:
			b.TotalReviews = int64(n)
		}
	case "opening_hours":
		switch hours := v.(type) {
		case datatypes.JSONMap:
			b.OpeningHours = hours
		case map[string]interface{}:
			b.OpeningHours = hours
		}
	}
}

func (b *businesses) UpdateStatus(_ context.Context, id uuid.UUID, status models.BusinessStatus) error {
	d := (*DB)(b)
	defer d.call("Businesses.UpdateStatus")()
	business, ok := d.businesses[id]
	if !ok {
		return repository.ErrNotFound
	}
	business.Status = status
	business.UpdatedAt = time.Now()
	d.businesses[id] = business
	return nil
}

func (b *businesses) CountByStatus(_ context.Context) (map[models.BusinessStatus]int64, error) {
	d := (*DB)(b)
	defer d.call("Businesses.CountByStatus")()
	counts := map[models.BusinessStatus]int64{}
	for _, s := range models.BusinessStatuses {
		counts[s] = 0
	}
	for _, business := range d.businesses {
		counts[business.Status]++
	}
	return counts, nil
}

type products DB

func (p *products) Create(_ context.Context, product *models.Product) error {
	d := (*DB)(p)
	defer d.call("Products.Create")()
	if _, ok := d.businesses[product.BusinessID]; !ok {
		return repository.ErrInvalidRef
	}
	stamp(&product.BaseModel)
	d.products[product.ID] = *product
	return nil
}

func (p *products) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	d := (*DB)(p)
	defer d.call("Products.FindByID")()
	product, ok := d.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &product, nil
}

func (p *products) ListByBusiness(_ context.Context, businessID uuid.UUID) ([]models.Product, error) {
	d := (*DB)(p)
	defer d.call("Products.ListByBusiness")()
	out := []models.Product{}
	for _, product := range d.products {
		if product.BusinessID == businessID {
			out = append(out, product)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (p *products) Update(_ context.Context, id uuid.UUID, updates map[string]interface{}) error {
	d := (*DB)(p)
	defer d.call("Products.Update")()
	product, ok := d.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	for k, v := range updates {
		switch k {
		case "name":
			product.Name = v.(string)
		case "description":
			product.Description = v.(string)
		case "image_url":
			product.ImageURL = v.(string)
		case "is_available":
			product.IsAvailable = v.(bool)
		case "price":
			product.Price = toNullDecimal(v)
		}
	}
	product.UpdatedAt = time.Now()
	d.products[id] = product
	return nil
}

func (p *products) Delete(_ context.Context, id uuid.UUID) error {
	d := (*DB)(p)
	defer d.call("Products.Delete")()
	if _, ok := d.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(d.products, id)
	return nil
}

func (p *products) Count(_ context.Context) (int64, error) {
	d := (*DB)(p)
	defer d.call("Products.Count")()
	return int64(len(d.products)), nil
}

type reviews DB

func (r *reviews) Create(_ context.Context, review *models.Review) error {
	d := (*DB)(r)
	defer d.call("Reviews.Create")()
	if _, ok := d.businesses[review.BusinessID]; !ok {
		return repository.ErrNotFound
	}
	if review.Rating < 1 || review.Rating > 5 {
		return repository.ErrInvalidValue
	}
	for _, existing := range d.reviews {
		if existing.BusinessID == review.BusinessID && existing.UserID == review.UserID {
			return repository.ErrDuplicate
		}
	}
	stamp(&review.BaseModel)
	d.reviews[review.ID] = *review
	d.recompute(review.BusinessID)
	return nil
}

func (r *reviews) Update(_ context.Context, id uuid.UUID, rating int, comment string) error {
	d := (*DB)(r)
	defer d.call("Reviews.Update")()
	review, ok := d.reviews[id]
	if !ok {
		return repository.ErrNotFound
	}
	if rating < 1 || rating > 5 {
		return repository.ErrInvalidValue
	}
	review.Rating, review.Comment = rating, comment
	review.UpdatedAt = time.Now()
	d.reviews[id] = review
	d.recompute(review.BusinessID)
	return nil
}

func (r *reviews) Delete(_ context.Context, id uuid.UUID) error {
	d := (*DB)(r)
	defer d.call("Reviews.Delete")()
	review, ok := d.reviews[id]
	if !ok {
		return repository.ErrNotFound
	}
	delete(d.reviews, id)
	d.recompute(review.BusinessID)
	return nil
}

func (r *reviews) FindByID(_ context.Context, id uuid.UUID) (*models.Review, error) {
	d := (*DB)(r)
	defer d.call("Reviews.FindByID")()
	review, ok := d.reviews[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &review, nil
}

func (r *reviews) ListByBusiness(_ context.Context, businessID uuid.UUID) ([]models.Review, error) {
	d := (*DB)(r)
	defer d.call("Reviews.ListByBusiness")()
	return d.filterReviews(func(x models.Review) bool { return x.BusinessID == businessID }), nil
}

func (r *reviews) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Review, error) {
	d := (*DB)(r)
	defer d.call("Reviews.ListByUser")()
	out := d.filterReviews(func(x models.Review) bool { return x.UserID == userID })
	for i := range out {
		if b, ok := d.businesses[out[i].BusinessID]; ok {
			out[i].Business = &b
		}
	}
	return out, nil
}

func (r *reviews) RecomputeAll(_ context.Context) (int, error) {
	d := (*DB)(r)
	defer d.call("Reviews.RecomputeAll")()
	for id := range d.businesses {
		d.recompute(id)
	}
	return len(d.businesses), nil
}

func (d *DB) filterReviews(match func(models.Review) bool) []models.Review {
	out := []models.Review{}
	for _, review := range d.reviews {
		if match(review) {
			out = append(out, review)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (d *DB) recompute(businessID uuid.UUID) {
	business, ok := d.businesses[businessID]
	if !ok {
		return
	}
	var ratings []int
	for _, review := range d.reviews {
		if review.BusinessID == businessID {
			ratings = append(ratings, review.Rating)
		}
	}
	business.AverageRating, business.TotalReviews = listing.Aggregate(ratings)
	d.businesses[businessID] = business
}

type audit DB

func (a *audit) Create(_ context.Context, entry *models.AuditLog) error {
	d := (*DB)(a)
	defer d.call("Audit.Create")()
	stamp(&entry.BaseModel)
	d.audit = append(d.audit, *entry)
	return nil
}

func toNullDecimal(v interface{}) decimal.NullDecimal {
	if d, ok := v.(decimal.NullDecimal); ok {
		return d
	}
	return decimal.NullDecimal{}
}
