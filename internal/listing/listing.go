// Package listing holds the moderation and discovery rules for business
// listings. Nothing here touches storage; callers fetch records and apply
// these functions to the in-memory result set.
package listing

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/javajoker/bizdir-backend/internal/models"
)

var ErrInvalidStatus = errors.New("invalid business status")

// Slugify lower-cases name and joins its whitespace-separated words with a
// single hyphen. Punctuation is left untouched.
func Slugify(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}

func ParseStatus(s string) (models.BusinessStatus, error) {
	status := models.BusinessStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return status, nil
}

// CheckTransition validates an admin decision. Any state may be written
// over any other, including itself.
func CheckTransition(from, to models.BusinessStatus) error {
	if !to.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, to)
	}
	if from != "" && !from.Valid() {
		return fmt.Errorf("%w: current status %q", ErrInvalidStatus, from)
	}
	return nil
}

type SortKey string

const (
	SortByRating  SortKey = "rating"
	SortByReviews SortKey = "reviews"
)

// ParseSortKey falls back to rating for anything it does not recognise.
func ParseSortKey(s string) SortKey {
	if SortKey(strings.ToLower(s)) == SortByReviews {
		return SortByReviews
	}
	return SortByRating
}

// Query is the public discovery filter.
type Query struct {
	Search     string
	Location   string
	CategoryID *uuid.UUID
	Sort       SortKey
}

// Matches reports whether b belongs in the public result set for q.
func (q Query) Matches(b *models.Business) bool {
	if !b.IsPublic() {
		return false
	}
	if q.Search != "" && !containsFold(b.Name, q.Search) {
		return false
	}
	if q.Location != "" &&
		!containsFold(b.City, q.Location) &&
		!containsFold(b.State, q.Location) &&
		!containsFold(b.Pincode, q.Location) {
		return false
	}
	if q.CategoryID != nil && (b.CategoryID == nil || *b.CategoryID != *q.CategoryID) {
		return false
	}
	return true
}

// Apply filters businesses with q and sorts the survivors.
func (q Query) Apply(businesses []models.Business) []models.Business {
	out := make([]models.Business, 0, len(businesses))
	for i := range businesses {
		if q.Matches(&businesses[i]) {
			out = append(out, businesses[i])
		}
	}
	Sort(out, q.Sort)
	return out
}

// Sort orders businesses descending by key. Ties fall back to the other
// metric, then to name.
func Sort(businesses []models.Business, key SortKey) {
	slices.SortStableFunc(businesses, func(a, b models.Business) int {
		byRating := cmp.Compare(b.Rating(), a.Rating())
		byReviews := cmp.Compare(b.TotalReviews, a.TotalReviews)
		var c int
		if key == SortByReviews {
			c = cmp.Or(byReviews, byRating)
		} else {
			c = cmp.Or(byRating, byReviews)
		}
		return cmp.Or(c, strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)))
	})
}

// Partition splits businesses into the three moderation tabs. Every status
// key is present even when its tab is empty.
func Partition(businesses []models.Business) map[models.BusinessStatus][]models.Business {
	tabs := make(map[models.BusinessStatus][]models.Business, len(models.BusinessStatuses))
	for _, s := range models.BusinessStatuses {
		tabs[s] = []models.Business{}
	}
	for _, b := range businesses {
		tabs[b.Status] = append(tabs[b.Status], b)
	}
	return tabs
}

// ResolveCategory finds a category by slug or display name, ignoring case.
func ResolveCategory(categories []models.Category, key string) (*models.Category, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false
	}
	for i := range categories {
		if strings.EqualFold(categories[i].Slug, key) || strings.EqualFold(categories[i].Name, key) {
			return &categories[i], true
		}
	}
	return nil, false
}

// Aggregate returns the mean (rounded to two places) and count of ratings.
// The mean is nil when there are no ratings.
func Aggregate(ratings []int) (*float64, int64) {
	if len(ratings) == 0 {
		return nil, 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	avg := math.Round(float64(sum)/float64(len(ratings))*100) / 100
	return &avg, int64(len(ratings))
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(substr)))
}
