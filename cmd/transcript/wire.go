package main

import (
	"time"

	"github.com/user/transcript/internal/config"
	"github.com/user/transcript/internal/dispatch"
	"github.com/user/transcript/internal/fetch"
	"github.com/user/transcript/internal/sizing"
	"github.com/user/transcript/internal/timeline"
	"github.com/user/transcript/internal/types"
	"github.com/user/transcript/internal/viewsync"
)

// syncFactory builds every conversation's ViewSync from cfg.
func syncFactory(cfg *config.Config) (dispatch.SyncFactory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	threshold, err := cfg.SectionThreshold()
	if err != nil {
		return nil, err
	}

	storeOpts := []timeline.Option{timeline.WithThreshold(threshold)}
	if len(cfg.Timeline.SupportedKinds) > 0 {
		kinds := make([]types.EventKind, 0, len(cfg.Timeline.SupportedKinds))
		for _, k := range cfg.Timeline.SupportedKinds {
			kinds = append(kinds, types.EventKind(k))
		}
		storeOpts = append(storeOpts, timeline.WithSupportedKinds(kinds...))
	}

	metrics := renderMetrics(cfg)
	return func(surface viewsync.Surface) *viewsync.ViewSync {
		return viewsync.New(surface,
			viewsync.WithStore(timeline.New(storeOpts...)),
			viewsync.WithSizer(sizing.NewSizer(metrics)),
			viewsync.WithNearBottomTolerance(cfg.Scroll.NearBottomTolerance),
			viewsync.WithMergeTolerance(cfg.Scroll.MergeTolerance),
			viewsync.WithAnimations(cfg.Scroll.Animations),
			viewsync.WithWidth(cfg.Render.Width),
		)
	}, nil
}

func renderMetrics(cfg *config.Config) sizing.Metrics {
	m := sizing.DefaultMetrics()
	if cfg.Render.CharWidth > 0 {
		m.CharWidth = cfg.Render.CharWidth
	}
	if cfg.Render.LineHeight > 0 {
		m.LineHeight = cfg.Render.LineHeight
	}
	return m
}

// fetchRegistry routes cfg.Fetch.KeyPrefix conversations to the events API.
// It is empty when no base URL is configured.
func fetchRegistry(cfg *config.Config) *fetch.Registry {
	reg := fetch.NewRegistry()
	if cfg.Fetch.BaseURL == "" {
		return reg
	}
	policy := fetch.DefaultRetryPolicy()
	if cfg.Fetch.MaxAttempts > 0 {
		policy.MaxAttempts = cfg.Fetch.MaxAttempts
	}
	client := fetch.NewClient(cfg.Fetch.BaseURL,
		fetch.WithAPIKey(cfg.Fetch.APIKey),
		fetch.WithRetryPolicy(policy),
	)
	reg.Register(cfg.Fetch.KeyPrefix, client)
	return reg
}

// headerLabel formats a section header the way the sizer measures it.
func headerLabel(ts int64) string {
	return time.UnixMicro(ts).Format(sizing.HeaderLayout)
}
