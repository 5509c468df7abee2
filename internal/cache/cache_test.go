package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"reportes-ciudadanos/internal/models"
)

func TestNewWithoutAddressDisablesCache(t *testing.T) {
	c := New("", "", time.Minute)
	assert.Nil(t, c)

	ctx := context.Background()
	c.Set(ctx, 0, models.Statistics{Total: 3})
	c.Invalidate(ctx)

	stats, gen, ok := c.Get(ctx)
	assert.False(t, ok)
	assert.Nil(t, stats)
	assert.Negative(t, gen)
	assert.NoError(t, c.Close())
}

func TestUnreachableServerIsAMiss(t *testing.T) {
	c := New("127.0.0.1:1", "", time.Minute)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, gen, ok := c.Get(ctx)
	assert.False(t, ok)
	assert.Negative(t, gen)
	c.Set(ctx, gen, models.Statistics{Total: 3})
}

func TestStatsKeyPerGeneration(t *testing.T) {
	assert.Equal(t, "reportes:estadisticas:0", statsKey(0))
	assert.NotEqual(t, statsKey(1), statsKey(2))
	assert.NotEqual(t, generationKey, statsKey(0))
}
