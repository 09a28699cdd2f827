package checklist

import "github.com/hooplab/shotform/internal/domain/model"

// Built-in v1 checklist definitions. Category ids are shared across shot
// types; weights differ where the shot mechanics differ.

func builtinVersions() map[model.ShotType]Version {
	return map[model.ShotType]Version{
		model.ThreePoint: newVersion(model.ThreePoint, "v1",
			[]Category{
				{ID: "preparation", Label: "Preparation", WeightPercent: 15},
				{ID: "load", Label: "Load", WeightPercent: 20},
				{ID: "ascent", Label: "Ascent", WeightPercent: 25},
				{ID: "release", Label: "Release", WeightPercent: 25},
				{ID: "follow_through", Label: "Follow-Through", WeightPercent: 15},
			},
			commonItems(),
		),
		model.MidRange: newVersion(model.MidRange, "v1",
			[]Category{
				{ID: "preparation", Label: "Preparation", WeightPercent: 15},
				{ID: "load", Label: "Load", WeightPercent: 20},
				{ID: "ascent", Label: "Ascent", WeightPercent: 20},
				{ID: "release", Label: "Release", WeightPercent: 30},
				{ID: "follow_through", Label: "Follow-Through", WeightPercent: 15},
			},
			commonItems(),
		),
		model.FreeThrow: newVersion(model.FreeThrow, "v1",
			[]Category{
				{ID: "preparation", Label: "Preparation", WeightPercent: 20},
				{ID: "load", Label: "Load", WeightPercent: 15},
				{ID: "ascent", Label: "Ascent", WeightPercent: 20},
				{ID: "release", Label: "Release", WeightPercent: 25},
				{ID: "follow_through", Label: "Follow-Through", WeightPercent: 20},
			},
			commonItems(),
		),
	}
}

func commonItems() []Item {
	return []Item{
		{ID: "stance_width", Name: "Stance width", CategoryID: "preparation",
			Description: "Feet shoulder-width apart, shooting foot slightly ahead"},
		{ID: "ball_grip", Name: "Ball grip", CategoryID: "preparation",
			Description: "Fingertip control with the guide hand on the side"},
		{ID: "knee_bend_depth", Name: "Knee bend depth", CategoryID: "load",
			Description: "Knees flex into the dip without collapsing forward"},
		{ID: "dip_timing", Name: "Dip timing", CategoryID: "load",
			Description: "Ball and hips dip together in one rhythm"},
		{ID: "elbow_alignment", Name: "Elbow alignment", CategoryID: "ascent",
			Description: "Shooting elbow stays under the ball through the rise"},
		{ID: "set_point_height", Name: "Set point height", CategoryID: "ascent",
			Description: "Ball reaches the set point above the eyebrow line"},
		{ID: "release_extension", Name: "Release extension", CategoryID: "release",
			Description: "Full elbow extension at the moment the ball leaves"},
		{ID: "wrist_snap", Name: "Wrist snap", CategoryID: "release",
			Description: "Wrist snaps forward producing backspin"},
		{ID: "follow_through_hold", Name: "Follow-through hold", CategoryID: "follow_through",
			Description: "Arm stays extended until the ball reaches the rim"},
		{ID: "landing_balance", Name: "Landing balance", CategoryID: "follow_through",
			Description: "Lands balanced on both feet near the takeoff spot"},
	}
}
