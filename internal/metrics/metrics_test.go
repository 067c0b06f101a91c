// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

// histogramSamples reads the sample count and sum of a histogram series.
func histogramSamples(t *testing.T, o prometheus.Observer) (uint64, float64) {
	t.Helper()
	m, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("%T is not a prometheus.Metric", o)
	}
	var out dto.Metric
	if err := m.Write(&out); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return out.GetHistogram().GetSampleCount(), out.GetHistogram().GetSampleSum()
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/relay/stats", "200"))

	RecordAPIRequest("GET", "/api/v1/relay/stats", "200", 15*time.Millisecond)

	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/relay/stats", "200"))
	if after-before != 1 {
		t.Errorf("api_requests_total delta = %v, want 1", after-before)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("after inc = %v, want %v", got, before+1)
	}

	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("after dec = %v, want %v", got, before)
	}
}

func TestRecordBroadcast(t *testing.T) {
	received := testutil.ToFloat64(RelayFramesReceived)
	forwarded := testutil.ToFloat64(RelayFramesForwarded)

	count, sum := histogramSamples(t, RelayBroadcastFanout)

	RecordBroadcast(3)
	RecordBroadcast(0)

	if c, s := histogramSamples(t, RelayBroadcastFanout); c-count != 2 || s-sum != 3 {
		t.Errorf("fanout histogram delta = %d samples / %v recipients, want 2 / 3", c-count, s-sum)
	}
	if got := testutil.ToFloat64(RelayFramesReceived) - received; got != 2 {
		t.Errorf("frames received delta = %v, want 2", got)
	}
	if got := testutil.ToFloat64(RelayFramesForwarded) - forwarded; got != 3 {
		t.Errorf("frames forwarded delta = %v, want 3", got)
	}
}

func TestRecordPeerDropped(t *testing.T) {
	before := testutil.ToFloat64(RelayPeersDropped.WithLabelValues("send_buffer_full"))

	RecordPeerDropped("send_buffer_full")

	if got := testutil.ToFloat64(RelayPeersDropped.WithLabelValues("send_buffer_full")) - before; got != 1 {
		t.Errorf("peers dropped delta = %v, want 1", got)
	}
}

func TestRecordCacheLookup(t *testing.T) {
	hits := testutil.ToFloat64(CacheHits.WithLabelValues("geocode"))
	misses := testutil.ToFloat64(CacheMisses.WithLabelValues("geocode"))

	RecordCacheLookup("geocode", true)
	RecordCacheLookup("geocode", false)
	RecordCacheLookup("geocode", false)

	if got := testutil.ToFloat64(CacheHits.WithLabelValues("geocode")) - hits; got != 1 {
		t.Errorf("hits delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(CacheMisses.WithLabelValues("geocode")) - misses; got != 2 {
		t.Errorf("misses delta = %v, want 2", got)
	}
}

func TestRecordCollaboratorCall(t *testing.T) {
	before := testutil.CollectAndCount(CollaboratorCallDuration)

	RecordCollaboratorCall("osrm-test", "ok", 120*time.Millisecond)

	if got := testutil.CollectAndCount(CollaboratorCallDuration); got != before+1 {
		t.Errorf("collaborator series count = %d, want %d", got, before+1)
	}
	count, sum := histogramSamples(t, CollaboratorCallDuration.WithLabelValues("osrm-test", "ok"))
	if count != 1 || sum < 0.119 || sum > 0.121 {
		t.Errorf("osrm-test samples = %d, sum %v, want 1 sample of 0.12s", count, sum)
	}
}
