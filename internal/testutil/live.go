// internal/testutil/live.go
package testutil

import (
	"testing"
	"time"

	"github.com/dalemusser/eduflow/internal/app/store/records"
)

// SnapshotTimeout bounds how long helpers wait for a live emission.
const SnapshotTimeout = 5 * time.Second

// NextSnapshot waits for the next emission on sub.
func NextSnapshot(t *testing.T, sub *records.Subscription) records.Snapshot {
	t.Helper()
	select {
	case snap, ok := <-sub.C():
		if !ok {
			t.Fatalf("subscription closed: %v", sub.Err())
		}
		return snap
	case <-time.After(SnapshotTimeout):
		t.Fatalf("no snapshot within %s", SnapshotTimeout)
	}
	return records.Snapshot{}
}

// NoSnapshot fails if sub emits within d.
func NoSnapshot(t *testing.T, sub *records.Subscription, d time.Duration) {
	t.Helper()
	select {
	case snap, ok := <-sub.C():
		if ok {
			t.Fatalf("unexpected snapshot seq=%d with %d records", snap.Seq, len(snap.Records))
		}
	case <-time.After(d):
	}
}

// IDs returns the ids of recs in order.
func IDs(recs []records.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID()
	}
	return out
}
