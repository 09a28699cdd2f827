// Package checklist holds the versioned technique checklist reference
// data: weighted categories and stable-id items per shot type. It is
// read-only after construction and safely shared across concurrent runs.
package checklist

import (
	"fmt"

	"github.com/hooplab/shotform/internal/domain/model"
)

// Category is a weighted group of checklist items. Weights of all
// categories for one shot type should sum to 100; violations are flagged
// by Validate but never block scoring.
type Category struct {
	ID            string
	Label         string
	WeightPercent float64
}

// Item is one discrete technique criterion. IDs are stable across
// versions.
type Item struct {
	ID          string
	Name        string
	Description string
	CategoryID  string
}

// Version is the checklist definition for one shot type at one revision.
type Version struct {
	ShotType   model.ShotType
	Revision   string
	Categories []Category
	Items      []Item

	itemIndex map[string]Item
}

// newVersion builds a version and its item index.
func newVersion(st model.ShotType, rev string, cats []Category, items []Item) Version {
	idx := make(map[string]Item, len(items))
	for _, it := range items {
		idx[it.ID] = it
	}
	return Version{ShotType: st, Revision: rev, Categories: cats, Items: items, itemIndex: idx}
}

// Item returns the item definition for an id, if known.
func (v Version) Item(id string) (Item, bool) {
	it, ok := v.itemIndex[id]
	return it, ok
}

// WeightSum returns the total category weight of the version.
func (v Version) WeightSum() float64 {
	sum := 0.0
	for _, c := range v.Categories {
		sum += c.WeightPercent
	}
	return sum
}

// Library resolves checklist versions by shot type.
type Library struct {
	versions map[model.ShotType]Version
}

// NewLibrary builds the library with the built-in v1 definitions.
func NewLibrary() *Library {
	return &Library{versions: builtinVersions()}
}

// ForShotType returns the active version for a shot type.
func (l *Library) ForShotType(st model.ShotType) (Version, error) {
	v, ok := l.versions[st]
	if !ok {
		return Version{}, fmt.Errorf("%w: %s", ErrUnknownShotType, st)
	}
	return v, nil
}

// Issue is one validation finding. Findings are informational: scoring
// proceeds regardless, with the issues recorded on the result.
type Issue struct {
	Code    string
	Message string
}

func (i Issue) String() string { return i.Code + ": " + i.Message }

// Validation issue codes.
const (
	IssueUnknownItem    = "unknown_item"
	IssueWeightMismatch = "weight_mismatch"
	IssueMissingRating  = "missing_rating"
)

// Validate flags results referencing unknown item ids, evaluated items
// without a rating, and category weights that do not sum to 100.
func (v Version) Validate(results []model.ItemResult) []Issue {
	var issues []Issue

	if sum := v.WeightSum(); !withinTolerance(sum, 100) {
		issues = append(issues, Issue{
			Code:    IssueWeightMismatch,
			Message: fmt.Sprintf("category weights for %s sum to %.2f, want 100", v.ShotType, sum),
		})
	}

	for _, r := range results {
		if _, ok := v.itemIndex[r.ItemID]; !ok {
			issues = append(issues, Issue{
				Code:    IssueUnknownItem,
				Message: fmt.Sprintf("item %q is not defined for %s %s", r.ItemID, v.ShotType, v.Revision),
			})
			continue
		}
		if r.Status == model.StatusEvaluated && r.Rating == nil {
			issues = append(issues, Issue{
				Code:    IssueMissingRating,
				Message: fmt.Sprintf("item %q is evaluated but carries no rating", r.ItemID),
			})
		}
	}
	return issues
}

const weightTolerance = 1e-6

func withinTolerance(got, want float64) bool {
	diff := got - want
	return diff < weightTolerance && diff > -weightTolerance
}
