package checklist_test

import (
	"errors"
	"testing"

	"github.com/hooplab/shotform/internal/domain/checklist"
	"github.com/hooplab/shotform/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLibrary(t *testing.T) {
	Convey("Given the built-in library", t, func() {
		lib := checklist.NewLibrary()

		Convey("Every shot type should resolve to a version", func() {
			for _, st := range []model.ShotType{model.ThreePoint, model.MidRange, model.FreeThrow} {
				v, err := lib.ForShotType(st)
				So(err, ShouldBeNil)
				So(v.ShotType, ShouldEqual, st)
				So(v.Revision, ShouldEqual, "v1")
				So(v.Categories, ShouldNotBeEmpty)
				So(v.Items, ShouldNotBeEmpty)
			}
		})

		Convey("An unknown shot type should fail with ErrUnknownShotType", func() {
			_, err := lib.ForShotType(model.ShotType("dunk"))
			So(errors.Is(err, checklist.ErrUnknownShotType), ShouldBeTrue)
		})

		Convey("Category weights should sum to 100 for every shot type", func() {
			for _, st := range []model.ShotType{model.ThreePoint, model.MidRange, model.FreeThrow} {
				v, _ := lib.ForShotType(st)
				So(v.WeightSum(), ShouldAlmostEqual, 100, 1e-9)
			}
		})

		Convey("Every item should reference an existing category", func() {
			v, _ := lib.ForShotType(model.ThreePoint)
			cats := map[string]bool{}
			for _, c := range v.Categories {
				cats[c.ID] = true
			}
			for _, it := range v.Items {
				So(cats[it.CategoryID], ShouldBeTrue)
			}
		})

		Convey("Item lookup should work by stable id", func() {
			v, _ := lib.ForShotType(model.FreeThrow)
			it, ok := v.Item("elbow_alignment")
			So(ok, ShouldBeTrue)
			So(it.CategoryID, ShouldEqual, "ascent")
		})
	})
}

func TestValidate(t *testing.T) {
	Convey("Given the three-point checklist", t, func() {
		lib := checklist.NewLibrary()
		v, _ := lib.ForShotType(model.ThreePoint)

		Convey("Known, well-formed results should produce no issues", func() {
			results := []model.ItemResult{
				model.Evaluated("elbow_alignment", 4, model.SourceAutomated),
				model.NotApplicable("landing_balance", "out of frame", model.SourceAutomated),
			}
			So(v.Validate(results), ShouldBeEmpty)
		})

		Convey("An unknown item id should be flagged, not rejected", func() {
			results := []model.ItemResult{
				model.Evaluated("hang_time", 5, model.SourceAutomated),
			}
			issues := v.Validate(results)
			So(issues, ShouldHaveLength, 1)
			So(issues[0].Code, ShouldEqual, checklist.IssueUnknownItem)
		})

		Convey("An evaluated item without a rating should be flagged", func() {
			results := []model.ItemResult{
				{ItemID: "wrist_snap", Status: model.StatusEvaluated, Source: model.SourceAutomated},
			}
			issues := v.Validate(results)
			So(issues, ShouldHaveLength, 1)
			So(issues[0].Code, ShouldEqual, checklist.IssueMissingRating)
		})
	})
}
