package usecase

import (
	"log"
	"sync"
	"time"

	outreachdomain "outreach-backend/internal/outreach/domain"
)

// QueuePoller maintains the reviewer-facing view of the approval queue by
// refreshing the pending list on a fixed interval. A refresh replaces the
// known set wholesale, except for records with a mutation in flight: those
// are excluded so the review surface never re-shows an action affordance
// for a record that is mid-approve or mid-reject.
type QueuePoller struct {
	list     func() ([]*outreachdomain.EmailRecord, error)
	inFlight func(id string) bool
	interval time.Duration
	onUpdate func([]*outreachdomain.EmailRecord)

	mu      sync.Mutex
	known   []*outreachdomain.EmailRecord
	started bool

	stopOnce sync.Once
	stopChan chan struct{}
}

// NewQueuePoller creates a new poller over the given pending-list source.
// onUpdate may be nil; when set it is invoked with every reconciled list.
func NewQueuePoller(
	list func() ([]*outreachdomain.EmailRecord, error),
	inFlight func(id string) bool,
	interval time.Duration,
	onUpdate func([]*outreachdomain.EmailRecord),
) *QueuePoller {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &QueuePoller{
		list:     list,
		inFlight: inFlight,
		interval: interval,
		onUpdate: onUpdate,
		known:    []*outreachdomain.EmailRecord{},
		stopChan: make(chan struct{}),
	}
}

// Start begins the refresh loop. The first refresh fires immediately, not
// after the first interval. Calling Start twice is a no-op.
func (p *QueuePoller) Start() {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	log.Printf("[QueuePoller] Starting approval queue poller (interval: %s)", p.interval)

	go func() {
		// Run immediately on start
		if _, err := p.RefreshOnce(); err != nil {
			log.Printf("[QueuePoller] Initial refresh failed: %v", err)
		}

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if _, err := p.RefreshOnce(); err != nil {
					// A failed tick is non-fatal; keep polling.
					log.Printf("[QueuePoller] Refresh failed: %v", err)
				}
			case <-p.stopChan:
				log.Println("[QueuePoller] Poller stopped")
				return
			}
		}
	}()
}

// Stop cancels the refresh loop. Safe to call multiple times.
func (p *QueuePoller) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopChan)
	})
}

// RefreshOnce fetches the pending list once and reconciles it. On error the
// previously known list is preserved and returned alongside the error.
func (p *QueuePoller) RefreshOnce() ([]*outreachdomain.EmailRecord, error) {
	fresh, err := p.list()
	if err != nil {
		return p.Pending(), err
	}

	reconciled := make([]*outreachdomain.EmailRecord, 0, len(fresh))
	for _, record := range fresh {
		// Defensive filter: a resolved record still reported by the list
		// source never re-enters the active view.
		if record.Status != outreachdomain.StatusPendingApproval {
			continue
		}
		if p.inFlight != nil && p.inFlight(record.ID) {
			continue
		}
		reconciled = append(reconciled, record)
	}

	p.mu.Lock()
	p.known = reconciled
	p.mu.Unlock()

	if p.onUpdate != nil {
		p.onUpdate(reconciled)
	}
	return reconciled, nil
}

// Pending returns a snapshot of the last reconciled pending list
func (p *QueuePoller) Pending() []*outreachdomain.EmailRecord {
	p.mu.Lock()
	defer p.mu.Unlock()

	snapshot := make([]*outreachdomain.EmailRecord, len(p.known))
	copy(snapshot, p.known)
	return snapshot
}
