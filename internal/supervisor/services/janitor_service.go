// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

package services

import (
	"context"
	"time"
)

// Janitor is satisfied by *cache.StatsCache.
type Janitor interface {
	RunJanitor(ctx context.Context, interval time.Duration) error
}

// CacheJanitorService runs the stats cache's garbage collection loop.
type CacheJanitorService struct {
	janitor  Janitor
	interval time.Duration
	name     string
}

// NewCacheJanitorService wraps janitor. A non-positive interval means one
// minute.
func NewCacheJanitorService(janitor Janitor, interval time.Duration) *CacheJanitorService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &CacheJanitorService{
		janitor:  janitor,
		interval: interval,
		name:     "stats-cache-janitor",
	}
}

// Serve implements suture.Service.
func (s *CacheJanitorService) Serve(ctx context.Context) error {
	return s.janitor.RunJanitor(ctx, s.interval)
}

func (s *CacheJanitorService) String() string {
	return s.name
}
