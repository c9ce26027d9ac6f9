package main

import (
	"math/rand"
	"testing"
	"time"

	"github.com/gamassss/utm-tracker/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestBuildRecord_HotTierIsBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	rec := buildRecord(tier{prefix: "hot", visitors: domain.HistoryLimit + 50, revisits: 2, createdBy: time.Minute}, 7, now, rng)

	assert.Equal(t, "hot0007", rec.ShortID)
	assert.Len(t, rec.VisitorDetails, domain.HistoryLimit)
	assert.Equal(t, int64(domain.HistoryLimit+50), rec.UniqueClicks)
	assert.GreaterOrEqual(t, rec.TotalClicks, rec.UniqueClicks)
	assert.True(t, rec.UpdatedAt.After(rec.CreatedAt))
}

func TestBuildRecord_ColdTierHasNoVisits(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	now := time.Now()

	rec := buildRecord(tier{prefix: "cold", createdBy: time.Second}, 3, now, rng)

	assert.Zero(t, rec.TotalClicks)
	assert.NotNil(t, rec.VisitorDetails)
	assert.Empty(t, rec.VisitorDetails)
	assert.Equal(t, now.Add(-3*time.Second), rec.CreatedAt)
}
