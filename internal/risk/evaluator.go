package risk

import (
	"fmt"
	"net"
	"strings"

	"github.com/Senpai-Sama7/Astro-sub000/internal/core"
)

// Weights are the scoring constants. They are documented policy
// configuration, not a calibrated statistical model; DefaultWeights
// carries the reference values.
type Weights struct {
	// BaseShare is the fraction of the final score contributed by the
	// classification base weight.
	BaseShare float64 `yaml:"base_share" json:"base_share"`

	// OffHours is the flat addition for requests outside business hours.
	OffHours      float64 `yaml:"off_hours" json:"off_hours"`
	OffHoursAfter int     `yaml:"off_hours_after" json:"off_hours_after"`
	OffHoursUntil int     `yaml:"off_hours_until" json:"off_hours_until"`

	// History scales the actor's rolling historical risk average.
	History float64 `yaml:"history" json:"history"`

	// LocalFactor and RemoteFactor multiply the running total when the
	// target resolves to a loopback or a network address respectively.
	LocalFactor  float64 `yaml:"local_factor" json:"local_factor"`
	RemoteFactor float64 `yaml:"remote_factor" json:"remote_factor"`

	// ScheduledFactor discounts pre-scheduled (non ad hoc) requests.
	ScheduledFactor float64 `yaml:"scheduled_factor" json:"scheduled_factor"`
}

func DefaultWeights() Weights {
	return Weights{
		BaseShare:       0.4,
		OffHours:        0.15,
		OffHoursAfter:   22,
		OffHoursUntil:   6,
		History:         0.2,
		LocalFactor:     0.7,
		RemoteFactor:    1.2,
		ScheduledFactor: 0.8,
	}
}

// Factor is one applied step of the scoring formula, for explain traces.
type Factor struct {
	Name    string  `json:"name"`
	Detail  string  `json:"detail,omitempty"`
	Applied bool    `json:"applied"`
	Running float64 `json:"running"`
}

// Evaluator computes normalized risk scores. Scoring is deterministic
// and side-effect-free: identical inputs always yield identical scores.
type Evaluator struct {
	weights Weights
}

func New(weights Weights) *Evaluator {
	return &Evaluator{weights: weights}
}

// Score folds the request context and the action's classification into a
// single score in [0,1]. Missing optional context fields are neutral,
// never zero or maximum.
func (e *Evaluator) Score(rc core.RiskContext, pol core.ActionPolicy) float64 {
	score, _ := e.Explain(rc, pol)
	return score
}

// Explain computes the score and returns the per-step factor trace.
func (e *Evaluator) Explain(rc core.RiskContext, pol core.ActionPolicy) (float64, []Factor) {
	w := e.weights
	factors := make([]Factor, 0, 6)

	score := pol.Classification.BaseWeight() * w.BaseShare
	factors = append(factors, Factor{
		Name:    "classification",
		Detail:  fmt.Sprintf("%s base %.2f x share %.2f", pol.Classification, pol.Classification.BaseWeight(), w.BaseShare),
		Applied: true,
		Running: score,
	})

	// temporal adjustment: flat, not scaled by the base share
	offHours := rc.HourOfDay != nil && (*rc.HourOfDay < w.OffHoursUntil || *rc.HourOfDay > w.OffHoursAfter)
	if offHours {
		score += w.OffHours
	}
	factors = append(factors, Factor{
		Name:    "off-hours",
		Detail:  fmt.Sprintf("+%.2f outside %02d:00-%02d:00", w.OffHours, w.OffHoursUntil, w.OffHoursAfter),
		Applied: offHours,
		Running: score,
	})

	if rc.HistoricalAvg != nil {
		score += *rc.HistoricalAvg * w.History
		factors = append(factors, Factor{
			Name:    "history",
			Detail:  fmt.Sprintf("avg %.2f x %.2f", *rc.HistoricalAvg, w.History),
			Applied: true,
			Running: score,
		})
	} else {
		factors = append(factors, Factor{Name: "history", Detail: "no rolling average", Running: score})
	}

	switch locality(rc.Target) {
	case localTarget:
		score *= w.LocalFactor
		factors = append(factors, Factor{
			Name:    "locality",
			Detail:  fmt.Sprintf("local target x %.2f", w.LocalFactor),
			Applied: true,
			Running: score,
		})
	case remoteTarget:
		score *= w.RemoteFactor
		factors = append(factors, Factor{
			Name:    "locality",
			Detail:  fmt.Sprintf("remote target x %.2f", w.RemoteFactor),
			Applied: true,
			Running: score,
		})
	default:
		factors = append(factors, Factor{Name: "locality", Detail: "target not network-shaped", Running: score})
	}

	if rc.Scheduled {
		score *= w.ScheduledFactor
	}
	factors = append(factors, Factor{
		Name:    "scheduled",
		Detail:  fmt.Sprintf("x %.2f for scheduled requests", w.ScheduledFactor),
		Applied: rc.Scheduled,
		Running: score,
	})

	score = clamp(score)
	if factors[len(factors)-1].Running != score {
		factors = append(factors, Factor{Name: "clamp", Applied: true, Running: score})
	} else {
		factors[len(factors)-1].Running = score
	}
	return score, factors
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

type targetLocality int

const (
	neutralTarget targetLocality = iota
	localTarget
	remoteTarget
)

// locality classifies the optional target string. Loopback hosts score
// local, anything that parses as an address or domain scores remote,
// and everything else (file paths, tool arguments) is neutral.
func locality(target string) targetLocality {
	if target == "" {
		return neutralTarget
	}

	host := target
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	if i := strings.IndexAny(host, "/?"); i >= 0 {
		host = host[:i]
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(strings.TrimSpace(host))

	switch {
	case host == "localhost", host == "::1", strings.HasPrefix(host, "127."):
		return localTarget
	}
	if ip := net.ParseIP(host); ip != nil {
		if ip.IsLoopback() {
			return localTarget
		}
		return remoteTarget
	}
	// domain-looking names are remote; bare words and paths are neutral
	if strings.HasPrefix(target, "/") || strings.HasPrefix(target, ".") {
		return neutralTarget
	}
	if strings.Contains(host, ".") {
		return remoteTarget
	}
	return neutralTarget
}
