package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/freelist/pkg/freelist"
	"github.com/ajitpratap0/freelist/pkg/metrics"
)

// The collector must satisfy the pool's observer contract.
var _ freelist.Observer = (*metrics.Collector)(nil)

func TestCollectorTracksPoolTraffic(t *testing.T) {
	pool, err := freelist.New[int64](4,
		freelist.WithName[int64]("metrics-test"),
		freelist.WithObserver[int64](metrics.NewCollector()),
	)
	require.NoError(t, err)
	defer pool.Close()

	assert.Equal(t, 4.0, testutil.ToFloat64(metrics.CapacitySlots.WithLabelValues("metrics-test")))
	assert.Equal(t, 4.0, testutil.ToFloat64(metrics.FreeSlots.WithLabelValues("metrics-test")))

	a, err := pool.Acquire()
	require.NoError(t, err)
	b, err := pool.Acquire()
	require.NoError(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.AcquiresTotal.WithLabelValues("metrics-test")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.FreeSlots.WithLabelValues("metrics-test")))

	require.NoError(t, pool.Release(a))
	require.NoError(t, pool.Release(b))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.ReleasesTotal.WithLabelValues("metrics-test")))
	assert.Equal(t, 4.0, testutil.ToFloat64(metrics.FreeSlots.WithLabelValues("metrics-test")))
}

func TestCollectorCountsExhaustion(t *testing.T) {
	pool, err := freelist.New[int64](1,
		freelist.WithName[int64]("metrics-exhaust"),
		freelist.WithObserver[int64](metrics.NewCollector()),
	)
	require.NoError(t, err)
	defer pool.Close()

	_, err = pool.Acquire()
	require.NoError(t, err)
	_, err = pool.Acquire()
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ExhaustedTotal.WithLabelValues("metrics-exhaust")))
}
