// Package habit holds the habit domain model, the admission policy that
// decides whether an account may create another habit, and the progress
// rules that move a habit toward completion.
//
// The admission policy is a pure function over a role and a habit list; it
// performs no I/O and is safe to evaluate against a stale cached list. The
// two tiers count differently on purpose: the free tier counts every habit
// ever created (a completed habit still blocks a new one), while the pro
// tier counts only active habits, so completing one of five frees a slot.
package habit
