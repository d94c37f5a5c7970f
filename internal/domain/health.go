package domain

import "time"

// Readiness states, from best to worst. A dependency is "degraded" when it
// answered with an error and "error" when it timed out or was unreachable.
const (
	HealthStatusOK       = "ok"
	HealthStatusDegraded = "degraded"
	HealthStatusError    = "error"
)

var healthRank = map[string]int{
	"":                   0,
	HealthStatusOK:       0,
	HealthStatusDegraded: 1,
	HealthStatusError:    2,
}

// WorseHealth returns whichever status is further from ok. Unknown values rank
// as errors.
func WorseHealth(a, b string) string {
	ra, okA := healthRank[a]
	rb, okB := healthRank[b]
	if !okA {
		ra = healthRank[HealthStatusError]
		a = HealthStatusError
	}
	if !okB {
		rb = healthRank[HealthStatusError]
		b = HealthStatusError
	}
	if rb > ra {
		return b
	}
	if a == "" {
		return HealthStatusOK
	}
	return a
}

// DependencyHealth is the outcome of probing firestore, redis, secret manager
// or the sites bucket.
type DependencyHealth struct {
	Status    string
	Detail    string
	Error     string
	Latency   time.Duration
	CheckedAt time.Time
}

// Healthy treats an unset status as ok.
func (d DependencyHealth) Healthy() bool {
	return d.Status == "" || d.Status == HealthStatusOK
}

type HealthReport struct {
	Status      string
	Checks      map[string]DependencyHealth
	Version     string
	CommitSHA   string
	Environment string
	Uptime      time.Duration
	GeneratedAt time.Time
}
