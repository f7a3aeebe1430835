package domain

import "time"

// DefaultPollInterval throttles script modification checks.
const DefaultPollInterval = 500 * time.Millisecond

// ReloadPolicy controls when the reload supervisor polls the script source.
type ReloadPolicy struct {
	AutoReload   bool          `json:"auto_reload"`
	PollInterval time.Duration `json:"poll_interval"`
	LastPoll     time.Time     `json:"last_poll"`
}

// Due reports whether an auto-reload poll should run at now: auto-reload
// is on and more than PollInterval has elapsed since the last poll.
func (p ReloadPolicy) Due(now time.Time) bool {
	return p.AutoReload && now.Sub(p.LastPoll) > p.PollInterval
}
