package admission

// NextWaitlistPosition computes the position for a new waitlist entry from
// the course's live waitlisted state: count is how many applications are
// currently waitlisted, maxHeld the highest position still held by one of
// them. Positions grow in first-come order; a departed entry's slot shrinks
// the count so gaps refill over time, but a position still held is never
// reissued.
//
// Repositories must call this under the same serialization (transaction or
// lock) that persists the result: two concurrent waitlist transitions for one
// course must not both observe the same state.
func NextWaitlistPosition(count, maxHeld int) int {
	next := count + 1
	if next <= maxHeld {
		next = maxHeld + 1
	}
	return next
}
