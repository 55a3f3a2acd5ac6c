package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog/log"

	"github.com/Senpai-Sama7/Astro-sub000/internal/core"
)

// DefaultCapacity is the size of the in-memory hot window before
// entries overflow to the archive store.
const DefaultCapacity = 10_000

var _ core.Ledger = (*Ledger)(nil)

// Options tune the ledger's retention and notification behavior.
type Options struct {
	// Capacity bounds the in-memory ring. When full, the oldest entry is
	// evicted to Archive (or dropped with a warning if none is set).
	Capacity int

	// Archive receives evicted entries. Optional; memory-only mode is
	// meant for tests and development.
	Archive core.ArchiveStore

	// NotifyBuffer sizes the drop-oldest append notification channel.
	NotifyBuffer int
}

// Ledger is the append-only, signed audit record. Appends are serialized
// under the write lock, archive eviction included; queries share the
// read lock and see a consistent archive-plus-ring snapshot.
type Ledger struct {
	mu       sync.RWMutex
	signer   *Signer
	caps     core.CapabilityChecker
	entries  []core.AuditEntry
	capacity int
	archive  core.ArchiveStore
	seq      uint64
	notifier *Notifier
}

func New(signer *Signer, caps core.CapabilityChecker, opts Options) (*Ledger, error) {
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}

	l := &Ledger{
		signer:   signer,
		caps:     caps,
		capacity: opts.Capacity,
		archive:  opts.Archive,
		notifier: NewNotifier(opts.NotifyBuffer),
	}

	// resume the sequence after the last archived entry
	if l.archive != nil {
		archived, err := l.archive.All(context.Background())
		if err != nil {
			return nil, fmt.Errorf("reading archive: %w", err)
		}
		for _, e := range archived {
			if e.Seq > l.seq {
				l.seq = e.Seq
			}
		}
	}
	return l, nil
}

// Notifications returns the bounded channel of appended entry IDs.
func (l *Ledger) Notifications() <-chan string {
	return l.notifier.C()
}

// Append assigns id, sequence and timestamp, signs the entry and stores
// it. Eviction to the archive happens under the same lock, before the
// new entry commits: a failed archive write leaves both the ring and the
// sequence counter untouched, so no committed entry is ever lost and a
// rejected append really did not happen.
func (l *Ledger) Append(ctx context.Context, entry core.AuditEntry) (core.AuditEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry.Seq = l.seq + 1
	entry.ID = xid.New().String()
	entry.Time = time.Now().UTC()
	entry.KeyID, entry.Signature = l.signer.Sign(entry)

	if len(l.entries) >= l.capacity {
		evicted := l.entries[0]
		if l.archive != nil {
			if err := l.archive.Append(ctx, []core.AuditEntry{evicted}); err != nil {
				log.Error().Err(err).Str("entry", evicted.ID).Msg("archiving evicted audit entry failed")
				return core.AuditEntry{}, fmt.Errorf("%w: archive append: %v", core.ErrLedgerUnavailable, err)
			}
		} else {
			log.Warn().Str("entry", evicted.ID).Msg("audit ring full and no archive configured, dropping oldest entry")
		}
		l.entries = append(l.entries[:0], l.entries[1:]...)
	}
	l.entries = append(l.entries, entry)
	l.seq = entry.Seq

	l.notifier.Publish(entry.ID)
	return entry, nil
}

// Query returns entries matching the filter, in append order. A role
// without the view-audit capability receives an empty result rather than
// an error; missing visibility is not leaked through error shapes.
func (l *Ledger) Query(ctx context.Context, role core.Role, filter core.Filter) ([]core.AuditEntry, error) {
	if !l.caps.HasCapability(role, core.CapViewAudit) {
		return []core.AuditEntry{}, nil
	}

	all, err := l.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]core.AuditEntry, 0, len(all))
	for _, e := range all {
		if filter.Matches(e) {
			matched = append(matched, e)
		}
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[len(matched)-filter.Limit:]
	}
	return matched, nil
}

// VerifyIntegrity recomputes every stored signature, archive included,
// and reports mismatches. Repair is an operational action, never ours.
func (l *Ledger) VerifyIntegrity(ctx context.Context) (core.IntegrityReport, error) {
	all, err := l.snapshot(ctx)
	if err != nil {
		return core.IntegrityReport{}, err
	}

	report := core.IntegrityReport{Valid: true, Checked: len(all), TamperedIDs: []string{}}
	for _, e := range all {
		if !l.signer.Verify(e) {
			report.Valid = false
			report.TamperedIDs = append(report.TamperedIDs, e.ID)
		}
	}
	return report, nil
}

func (l *Ledger) Close() error {
	if l.archive != nil {
		return l.archive.Close()
	}
	return nil
}

// snapshot returns archived entries followed by a copy of the hot
// window, ordered by sequence. The read lock is held across both reads
// so an entry mid-eviction cannot fall between archive and ring.
func (l *Ledger) snapshot(ctx context.Context) ([]core.AuditEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var archived []core.AuditEntry
	if l.archive != nil {
		var err error
		archived, err = l.archive.All(ctx)
		if err != nil {
			return nil, fmt.Errorf("reading archive: %w", err)
		}
	}

	hot := make([]core.AuditEntry, len(l.entries))
	copy(hot, l.entries)

	return append(archived, hot...), nil
}
