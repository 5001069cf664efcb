// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopService(t *testing.T) {
	// before initialization everything is a no-op
	assert.NotPanics(t, func() {
		Counter("noop_count").Add(1)
		Gauge("noop_gauge").Set(5)
		Histogram("noop_histogram", nil).Observe(9)
		CounterVec("noop_count_vec", []string{"op"}).AddWithLabel(1, map[string]string{"op": "seal"})
	})
	assert.Nil(t, HTTPHandler())
}

func TestPrometheusService(t *testing.T) {
	InitializePrometheusMetrics()
	t.Cleanup(func() { service = &noopService{} })

	Counter("seal_total").Add(3)
	Gauge("active_validators").Set(7)
	GaugeVec("stake_by_status", []string{"status"}).SetWithLabel(100, map[string]string{"status": "active"})
	Histogram("seal_duration_ms", []int64{0, 10, 100}).Observe(42)

	// same name yields the same meter
	assert.Equal(t, Counter("seal_total"), Counter("seal_total"))

	server := httptest.NewServer(HTTPHandler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.True(t, strings.Contains(text, "orion_metrics_seal_total 3"))
	assert.True(t, strings.Contains(text, "orion_metrics_active_validators 7"))
}

func TestLazyLoad(t *testing.T) {
	calls := 0
	load := LazyLoad(func() int {
		calls++
		return 42
	})
	assert.Equal(t, 42, load())
	assert.Equal(t, 42, load())
	assert.Equal(t, 1, calls)
}
