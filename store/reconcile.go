package store

import "github.com/deemkeen/don/domain"

// reconciler keeps live arrivals consistent with fetched snapshots: an id is
// applied at most once, and activities that arrive while a fetch is in flight
// survive the snapshot that replaces them.
type reconciler struct {
	seen     map[string]struct{}
	pending  []domain.Activity
	inFlight bool
}

func newReconciler(activities []domain.Activity) *reconciler {
	r := &reconciler{}
	r.reset(activities)
	return r
}

func (r *reconciler) reset(activities []domain.Activity) {
	r.seen = make(map[string]struct{}, len(activities))
	for _, a := range activities {
		r.seen[a.ID] = struct{}{}
	}
}

func (r *reconciler) begin() {
	r.inFlight = true
}

// admit reports whether a live activity should be applied
func (r *reconciler) admit(a domain.Activity) bool {
	if _, ok := r.seen[a.ID]; ok {
		return false
	}
	r.seen[a.ID] = struct{}{}
	if r.inFlight {
		r.pending = append(r.pending, a)
	}
	return true
}

// loaded resets to the snapshot and returns the buffered activities the
// snapshot does not contain, in arrival order
func (r *reconciler) loaded(snapshot []domain.Activity) []domain.Activity {
	r.reset(snapshot)

	var missing []domain.Activity
	for _, a := range r.pending {
		if _, ok := r.seen[a.ID]; ok {
			continue
		}
		r.seen[a.ID] = struct{}{}
		missing = append(missing, a)
	}

	r.pending = nil
	r.inFlight = false
	return missing
}

func (r *reconciler) failed() {
	r.pending = nil
	r.inFlight = false
}
