package dispatch

import "github.com/petems/voice-processor/internal/listener"

// Deliver snapshots r and posts one independent unit per listener to p, in
// registration order. The registry lock is released before anything is posted,
// so listeners never run while it is held. It returns the number of units posted.
func Deliver[L comparable](p Poster, r *listener.Registry[L], call func(L)) int {
	posted := 0
	for _, l := range r.Snapshot() {
		if p.Post(func() { call(l) }) {
			posted++
		}
	}
	return posted
}
