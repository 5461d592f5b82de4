package metrics

import (
	"fmt"
	"sync/atomic"
)

// Registry holds the client's counters. All counters are monotonic and
// updated with atomics so the admission hot path never takes a lock here.
type Registry struct {
	admissionAllowed uint64
	admissionDenied  uint64
	fetchSuccess     uint64
	fetchFailure     uint64
	fetchUpToDate    uint64
	windowsEvicted   uint64
	forwarded        uint64
	forwardFailed    uint64
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) RecordAdmission(allowed bool) {
	if allowed {
		atomic.AddUint64(&r.admissionAllowed, 1)
	} else {
		atomic.AddUint64(&r.admissionDenied, 1)
	}
}

func (r *Registry) RecordFetchSuccess()  { atomic.AddUint64(&r.fetchSuccess, 1) }
func (r *Registry) RecordFetchFailure()  { atomic.AddUint64(&r.fetchFailure, 1) }
func (r *Registry) RecordFetchUpToDate() { atomic.AddUint64(&r.fetchUpToDate, 1) }
func (r *Registry) RecordForward()       { atomic.AddUint64(&r.forwarded, 1) }
func (r *Registry) RecordForwardFailed() { atomic.AddUint64(&r.forwardFailed, 1) }

func (r *Registry) RecordEvictions(n int) {
	if n > 0 {
		atomic.AddUint64(&r.windowsEvicted, uint64(n))
	}
}

// Export renders the counters in the plain key/value text format the status
// command prints.
func (r *Registry) Export() string {
	return fmt.Sprintf(
		"admission_allowed %d\nadmission_denied %d\nfetch_success %d\nfetch_failure %d\nfetch_up_to_date %d\nwindows_evicted %d\nmessages_forwarded %d\nforward_failures %d\n",
		atomic.LoadUint64(&r.admissionAllowed),
		atomic.LoadUint64(&r.admissionDenied),
		atomic.LoadUint64(&r.fetchSuccess),
		atomic.LoadUint64(&r.fetchFailure),
		atomic.LoadUint64(&r.fetchUpToDate),
		atomic.LoadUint64(&r.windowsEvicted),
		atomic.LoadUint64(&r.forwarded),
		atomic.LoadUint64(&r.forwardFailed),
	)
}

var GlobalRegistry *Registry

func InitGlobalRegistry() {
	GlobalRegistry = NewRegistry()
}

func GetRegistry() *Registry {
	if GlobalRegistry == nil {
		InitGlobalRegistry()
	}
	return GlobalRegistry
}
