package usecase

import (
	"errors"
	"testing"
	"time"

	outreachdomain "outreach-backend/internal/outreach/domain"
)

func pendingRecord(id string) *outreachdomain.EmailRecord {
	return &outreachdomain.EmailRecord{
		ID:     id,
		To:     id + "@example.com",
		Status: outreachdomain.StatusPendingApproval,
	}
}

func ids(records []*outreachdomain.EmailRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestRefreshOnceReplacesKnownSet(t *testing.T) {
	lists := [][]*outreachdomain.EmailRecord{
		{pendingRecord("a"), pendingRecord("b")},
		{pendingRecord("a"), pendingRecord("b"), pendingRecord("c")},
	}
	call := 0
	poller := NewQueuePoller(func() ([]*outreachdomain.EmailRecord, error) {
		list := lists[call]
		if call < len(lists)-1 {
			call++
		}
		return list, nil
	}, nil, time.Minute, nil)

	got, err := poller.RefreshOnce()
	if err != nil {
		t.Fatalf("RefreshOnce: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("first refresh = %v", ids(got))
	}

	got, err = poller.RefreshOnce()
	if err != nil {
		t.Fatalf("RefreshOnce: %v", err)
	}
	if len(got) != 3 || got[2].ID != "c" {
		t.Fatalf("second refresh = %v, want [a b c]", ids(got))
	}
}

func TestRefreshOnceExcludesInFlightRecords(t *testing.T) {
	inFlight := map[string]bool{"a": true}
	poller := NewQueuePoller(func() ([]*outreachdomain.EmailRecord, error) {
		return []*outreachdomain.EmailRecord{pendingRecord("a"), pendingRecord("b"), pendingRecord("c")}, nil
	}, func(id string) bool {
		return inFlight[id]
	}, time.Minute, nil)

	got, err := poller.RefreshOnce()
	if err != nil {
		t.Fatalf("RefreshOnce: %v", err)
	}
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "c" {
		t.Fatalf("reconciled = %v, want [b c]", ids(got))
	}

	// Once the action completes the record re-enters the view.
	delete(inFlight, "a")
	got, _ = poller.RefreshOnce()
	if len(got) != 3 {
		t.Fatalf("reconciled after release = %v, want [a b c]", ids(got))
	}
}

func TestRefreshOnceFiltersResolvedRecords(t *testing.T) {
	resolved := pendingRecord("b")
	resolved.Status = outreachdomain.StatusRejected

	poller := NewQueuePoller(func() ([]*outreachdomain.EmailRecord, error) {
		return []*outreachdomain.EmailRecord{pendingRecord("a"), resolved}, nil
	}, nil, time.Minute, nil)

	got, err := poller.RefreshOnce()
	if err != nil {
		t.Fatalf("RefreshOnce: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("reconciled = %v, want [a]", ids(got))
	}
}

func TestRefreshOnceKeepsKnownListOnError(t *testing.T) {
	healthy := true
	poller := NewQueuePoller(func() ([]*outreachdomain.EmailRecord, error) {
		if !healthy {
			return nil, errors.New("database unavailable")
		}
		return []*outreachdomain.EmailRecord{pendingRecord("a"), pendingRecord("b")}, nil
	}, nil, time.Minute, nil)

	if _, err := poller.RefreshOnce(); err != nil {
		t.Fatalf("RefreshOnce: %v", err)
	}

	healthy = false
	got, err := poller.RefreshOnce()
	if err == nil {
		t.Fatal("expected refresh error")
	}
	if len(got) != 2 {
		t.Fatalf("known list lost on error: %v", ids(got))
	}
	if pending := poller.Pending(); len(pending) != 2 {
		t.Fatalf("Pending() = %v, want previous list", ids(pending))
	}
}

func TestPollerNotifiesOnUpdate(t *testing.T) {
	var updates [][]*outreachdomain.EmailRecord
	poller := NewQueuePoller(func() ([]*outreachdomain.EmailRecord, error) {
		return []*outreachdomain.EmailRecord{pendingRecord("a")}, nil
	}, nil, time.Minute, func(records []*outreachdomain.EmailRecord) {
		updates = append(updates, records)
	})

	if _, err := poller.RefreshOnce(); err != nil {
		t.Fatalf("RefreshOnce: %v", err)
	}
	if len(updates) != 1 || len(updates[0]) != 1 {
		t.Fatalf("onUpdate calls = %d", len(updates))
	}
}

func TestPollerStartStop(t *testing.T) {
	refreshed := make(chan struct{}, 1)
	poller := NewQueuePoller(func() ([]*outreachdomain.EmailRecord, error) {
		select {
		case refreshed <- struct{}{}:
		default:
		}
		return nil, nil
	}, nil, time.Hour, nil)

	poller.Start()
	select {
	case <-refreshed:
	case <-time.After(2 * time.Second):
		t.Fatal("initial refresh did not fire")
	}

	// Stop twice must not panic.
	poller.Stop()
	poller.Stop()
}
