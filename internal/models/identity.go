package models

import "strconv"

// Identity is the stable key all per-agent state is partitioned by:
// snapshots, daily counters and subscriber sessions.
type Identity int64

func (id Identity) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// SnapshotKey is the cache key holding the latest report for an identity.
func SnapshotKey(id Identity) string {
	return "status:latest:" + id.String()
}

// KeystrokesKey is the daily keystroke counter key. day is a calendar
// date in the form 2006-01-02, bucketed in server-local time.
func KeystrokesKey(id Identity, day string) string {
	return "metrics:keystrokes:" + id.String() + ":" + day
}

// ActiveMsKey is the daily active-duration counter key.
func ActiveMsKey(id Identity, day string) string {
	return "metrics:activeMs:" + id.String() + ":" + day
}
