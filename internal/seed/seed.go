// Copyright (c) 2026 Lumen. All rights reserved.
// Author: e.karin.photo@gmail.com

// Package seed loads development fixtures: a handful of posts and
// collections so a fresh checkout has something to browse. It runs only
// against an empty store and never in production.
package seed

import (
	"context"
	"log/slog"
	"time"

	"github.com/evkarin/lumen/internal/blog"
	"github.com/evkarin/lumen/internal/gallery"
	"github.com/evkarin/lumen/pkg/pointer"
)

// Run inserts the fixtures unless either repository already has records.
func Run(ctx context.Context, posts *blog.Repository, collections *gallery.Repository, logger *slog.Logger) error {
	existingPosts, err := posts.Store().GetAll(ctx)
	if err != nil {
		return err
	}
	existingCollections, err := collections.Store().GetAll(ctx)
	if err != nil {
		return err
	}
	if len(existingPosts) > 0 || len(existingCollections) > 0 {
		logger.Info("seed_skipped", slog.String("reason", "store not empty"))
		return nil
	}

	for _, post := range seedPosts() {
		if _, err := posts.Create(ctx, post); err != nil {
			return err
		}
	}
	for _, collection := range seedCollections() {
		if _, err := collections.Create(ctx, collection); err != nil {
			return err
		}
	}

	logger.Info("seed_completed",
		slog.Int("posts", len(seedPosts())),
		slog.Int("collections", len(seedCollections())),
	)
	return nil
}

func seedPosts() []*blog.BlogPost {
	publishedA := pointer.To(time.Date(2026, time.June, 12, 9, 0, 0, 0, time.UTC))
	publishedB := pointer.To(time.Date(2026, time.July, 3, 18, 30, 0, 0, time.UTC))

	return []*blog.BlogPost{
		{
			Title:       "Chasing Golden Hour in the Dolomites",
			Subtitle:    "Five mornings above the tree line",
			Content:     "<p>The light in the Dolomites moves fast. You get maybe twenty minutes of usable gold before the valleys flatten out, which means scouting the night before and hiking in the dark. This trip I committed to five consecutive sunrises from five ridgelines, and the weather cooperated exactly twice.</p><p>What follows is the route, the gear that earned its weight, and the frames that made the cold worth it.</p>",
			Category:    "travel",
			Tags:        []string{"mountains", "landscape", "golden-hour"},
			Author:      "Elena Karin",
			Status:      blog.StatusPublished,
			PublishedAt: publishedA,
			CoverImage:  "https://images.lumen.example/posts/dolomites-cover.jpg",
		},
		{
			Title:       "Why I Still Carry a 50mm Prime",
			Content:     "<p>Every year a new zoom promises to retire the nifty fifty, and every year it stays in the bag. A fixed focal length is a constraint, and constraints are where composition starts: you move your feet, you commit to a distance, you stop negotiating with the frame.</p>",
			Category:    "gear",
			Tags:        []string{"lenses", "opinion"},
			Author:      "Elena Karin",
			Status:      blog.StatusPublished,
			PublishedAt: publishedB,
		},
		{
			Title:    "Notes Toward a Street Photography Series",
			Content:  "<p>Rough notes for the autumn series: shoot only between the end of the workday and full dark, only within two tram stops of home, and keep every frame that includes a stranger's gesture. Draft until the edit proves otherwise.</p>",
			Category: "process",
			Tags:     []string{"street", "work-in-progress"},
			Author:   "Elena Karin",
			Status:   blog.StatusDraft,
		},
	}
}

func seedCollections() []*gallery.GalleryCollection {
	return []*gallery.GalleryCollection{
		{
			Name:        "Dolomites at First Light",
			Description: "Sunrise frames from five ridgelines above the Val Gardena tree line.",
			CoverImage:  "https://images.lumen.example/collections/dolomites/cover.jpg",
			Category:    "landscape",
			IsPublic:    true,
			SortOrder:   1,
			Images: []*gallery.GalleryImage{
				{
					ID:        1,
					URL:       "https://images.lumen.example/collections/dolomites/seceda.jpg",
					Alt:       "Seceda ridgeline at sunrise",
					Tags:      []string{"mountains", "golden-hour"},
					Size:      gallery.Dimensions{Width: 6000, Height: 4000, AspectRatio: 1.5},
					SortOrder: 0,
				},
				{
					ID:        2,
					URL:       "https://images.lumen.example/collections/dolomites/odle.jpg",
					Alt:       "Odle peaks under morning fog",
					Tags:      []string{"mountains", "fog"},
					Size:      gallery.Dimensions{Width: 6000, Height: 4000, AspectRatio: 1.5},
					SortOrder: 1,
				},
			},
		},
		{
			Name:        "City After Rain",
			Description: "Night streets, wet asphalt, and whatever neon survives the district.",
			CoverImage:  "https://images.lumen.example/collections/city-rain/cover.jpg",
			Category:    "street",
			IsPublic:    true,
			SortOrder:   2,
			Images: []*gallery.GalleryImage{
				{
					ID:        1,
					URL:       "https://images.lumen.example/collections/city-rain/crossing.jpg",
					Alt:       "Pedestrian crossing reflected in rain",
					Tags:      []string{"night", "street", "rain"},
					SortOrder: 0,
				},
			},
		},
		{
			Name:        "Portrait Drafts",
			Description: "Unreleased portrait work pending subject approval.",
			CoverImage:  "https://images.lumen.example/collections/portraits/cover.jpg",
			Category:    "portrait",
			IsPublic:    false,
			SortOrder:   3,
			Images:      []*gallery.GalleryImage{},
		},
	}
}
