// Package businesshours models a recurring weekly opening schedule written as
// a compact rule, e.g.
//
//	wday{mon-fri} hr{9-18}, wday{sa} hr{10am-1pm} min{0-29}
//
// A rule is a comma separated union of clauses; a clause intersects at most one
// range per dimension (wday, hr, min). Ranges whose end precedes their start
// wrap around the dimension (hr{22-2} covers 22,23,0,1,2).
//
// Parsed schedules are immutable and safe for concurrent use. They answer
// whether a moment is open, how long until the next opening or closing, and
// which cron expressions mark every transition.
package businesshours
