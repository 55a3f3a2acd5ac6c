package risk

import (
	"math"
	"testing"

	"github.com/Senpai-Sama7/Astro-sub000/internal/core"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func policyWithClass(class core.RiskClass) core.ActionPolicy {
	return core.ActionPolicy{
		Action:         "test_action",
		AllowedRoles:   []core.Role{"developer"},
		Classification: class,
	}
}

func TestScoreDeterministic(t *testing.T) {
	e := New(DefaultWeights())
	rc := core.RiskContext{
		Action:        "test_action",
		Target:        "db.internal.example.com",
		HistoricalAvg: floatPtr(0.5),
		HourOfDay:     intPtr(23),
	}
	pol := policyWithClass(core.RiskHigh)

	first := e.Score(rc, pol)
	for i := 0; i < 100; i++ {
		if got := e.Score(rc, pol); got != first {
			t.Fatalf("score not deterministic: run %d got %v, want %v", i, got, first)
		}
	}
}

func TestScoreBounds(t *testing.T) {
	e := New(DefaultWeights())

	// worst case: critical, off-hours, max history, remote target
	rc := core.RiskContext{
		Target:        "10.0.0.5",
		HistoricalAvg: floatPtr(1.0),
		HourOfDay:     intPtr(3),
	}
	if got := e.Score(rc, policyWithClass(core.RiskCritical)); got < 0 || got > 1 {
		t.Errorf("worst-case score %v outside [0,1]", got)
	}

	// best case: low, scheduled, local target
	rc = core.RiskContext{
		Target:        "localhost:8080",
		HistoricalAvg: floatPtr(0),
		HourOfDay:     intPtr(12),
		Scheduled:     true,
	}
	if got := e.Score(rc, policyWithClass(core.RiskLow)); got < 0 || got > 1 {
		t.Errorf("best-case score %v outside [0,1]", got)
	}
}

func TestScoreBaseOnly(t *testing.T) {
	// no optional context: score is exactly base weight x share
	e := New(DefaultWeights())

	tests := []struct {
		class core.RiskClass
		want  float64
	}{
		{core.RiskLow, 0.1 * 0.4},
		{core.RiskMedium, 0.4 * 0.4},
		{core.RiskHigh, 0.7 * 0.4},
		{core.RiskCritical, 0.95 * 0.4},
	}
	for _, tt := range tests {
		t.Run(string(tt.class), func(t *testing.T) {
			got := e.Score(core.RiskContext{}, policyWithClass(tt.class))
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Score() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScoreMissingOptionalsNeutral(t *testing.T) {
	e := New(DefaultWeights())
	pol := policyWithClass(core.RiskMedium)

	base := e.Score(core.RiskContext{}, pol)

	// a zero-value history is NOT the same as an absent one; absent must
	// not change the score at all
	withZeroHistory := e.Score(core.RiskContext{HistoricalAvg: floatPtr(0)}, pol)
	if base != withZeroHistory {
		t.Errorf("zero history %v differs from absent history %v", withZeroHistory, base)
	}

	// business-hours request must match absent hour
	noon := e.Score(core.RiskContext{HourOfDay: intPtr(12)}, pol)
	if base != noon {
		t.Errorf("noon score %v differs from absent hour %v", noon, base)
	}
}

func TestScoreOffHours(t *testing.T) {
	e := New(DefaultWeights())
	pol := policyWithClass(core.RiskMedium)
	base := e.Score(core.RiskContext{}, pol)

	tests := []struct {
		name     string
		hour     int
		offHours bool
	}{
		{"midnight", 0, true},
		{"early morning", 5, true},
		{"boundary six", 6, false},
		{"noon", 12, false},
		{"boundary twenty-two", 22, false},
		{"late night", 23, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Score(core.RiskContext{HourOfDay: intPtr(tt.hour)}, pol)
			if tt.offHours && math.Abs(got-(base+0.15)) > 1e-9 {
				t.Errorf("hour %d: got %v, want %v", tt.hour, got, base+0.15)
			}
			if !tt.offHours && got != base {
				t.Errorf("hour %d: got %v, want base %v", tt.hour, got, base)
			}
		})
	}
}

func TestScoreLocality(t *testing.T) {
	e := New(DefaultWeights())
	pol := policyWithClass(core.RiskHigh)
	base := e.Score(core.RiskContext{}, pol)

	tests := []struct {
		name   string
		target string
		want   float64
	}{
		{"loopback host", "localhost", base * 0.7},
		{"loopback ip", "127.0.0.1:9000", base * 0.7},
		{"ipv6 loopback", "::1", base * 0.7},
		{"remote ip", "10.1.2.3", base * 1.2},
		{"domain", "api.example.com", base * 1.2},
		{"url", "https://api.example.com/v1/items", base * 1.2},
		{"file path", "/var/data/out.csv", base},
		{"bare word", "staging", base},
		{"empty", "", base},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Score(core.RiskContext{Target: tt.target}, pol)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Score(target=%q) = %v, want %v", tt.target, got, tt.want)
			}
		})
	}
}

func TestScoreScheduledDiscount(t *testing.T) {
	e := New(DefaultWeights())
	pol := policyWithClass(core.RiskHigh)

	adhoc := e.Score(core.RiskContext{}, pol)
	scheduled := e.Score(core.RiskContext{Scheduled: true}, pol)

	if math.Abs(scheduled-adhoc*0.8) > 1e-9 {
		t.Errorf("scheduled %v, want %v", scheduled, adhoc*0.8)
	}
}

func TestExplainTraceMatchesScore(t *testing.T) {
	e := New(DefaultWeights())
	rc := core.RiskContext{
		Target:        "api.example.com",
		HistoricalAvg: floatPtr(0.8),
		HourOfDay:     intPtr(2),
		Scheduled:     true,
	}
	pol := policyWithClass(core.RiskCritical)

	score, factors := e.Explain(rc, pol)
	if len(factors) == 0 {
		t.Fatal("Explain() returned no factors")
	}
	if got := factors[len(factors)-1].Running; got != score {
		t.Errorf("final factor running total %v differs from score %v", got, score)
	}
	if got := e.Score(rc, pol); got != score {
		t.Errorf("Score() = %v, Explain() = %v", got, score)
	}
}
