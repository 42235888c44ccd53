// Package conflict runs the rule groups that validate assignments in a
// registry snapshot.
package conflict

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/skyops/core/model"
	"github.com/kilianp07/skyops/core/registry"
	"github.com/kilianp07/skyops/core/rules"
)

// RuleGroup inspects one mission and reports conflicts into the pass.
type RuleGroup interface {
	Name() string
	Check(p *Pass, m model.Mission)
}

// RuleFunc adapts a function to RuleGroup.
type RuleFunc struct {
	Label string
	Fn    func(p *Pass, m model.Mission)
}

func (f RuleFunc) Name() string                   { return f.Label }
func (f RuleFunc) Check(p *Pass, m model.Mission) { f.Fn(p, m) }

// Pass is the state of a single detection run.
type Pass struct {
	Registry *registry.Registry
	Weather  rules.WeatherTable

	now       time.Time
	newID     func() string
	conflicts []model.Conflict
	seen      map[string]struct{}
}

// Report stamps c with an ID and creation time and records it.
func (p *Pass) Report(c model.Conflict) {
	c.ID = p.newID()
	c.CreatedAt = p.now
	p.conflicts = append(p.conflicts, c)
}

// Once returns true the first time key is seen during the pass.
func (p *Pass) Once(key string) bool {
	if _, ok := p.seen[key]; ok {
		return false
	}
	p.seen[key] = struct{}{}
	return true
}

// Result is the outcome of a detection pass.
type Result struct {
	Conflicts   []model.Conflict `json:"conflicts"`
	HasCritical bool             `json:"has_critical_issues"`
	Summary     string           `json:"summary"`
}

// ForMission keeps the conflicts that reference missionID.
func (r Result) ForMission(missionID string) Result {
	var out []model.Conflict
	for _, c := range r.Conflicts {
		if c.Involves(missionID) {
			out = append(out, c)
		}
	}
	return newResult(out)
}

// CountBySeverity tallies conflicts per severity.
func (r Result) CountBySeverity() map[model.Severity]int {
	counts := make(map[model.Severity]int, len(model.Severities))
	for _, c := range r.Conflicts {
		counts[c.Severity]++
	}
	return counts
}

// Option configures a Detector.
type Option func(*Detector)

// WithClock sets the time source used to stamp conflicts.
func WithClock(now func() time.Time) Option {
	return func(d *Detector) { d.now = now }
}

// WithIDGenerator sets the conflict ID generator.
func WithIDGenerator(gen func() string) Option {
	return func(d *Detector) { d.newID = gen }
}

// WithWeatherTable overrides the weather compatibility table.
func WithWeatherTable(t rules.WeatherTable) Option {
	return func(d *Detector) { d.weather = t }
}

// WithRuleGroups replaces the default rule groups.
func WithRuleGroups(groups ...RuleGroup) Option {
	return func(d *Detector) { d.groups = append([]RuleGroup(nil), groups...) }
}

// Detector evaluates rule groups in order over every mission.
// Register must not be called concurrently with Detect.
type Detector struct {
	groups  []RuleGroup
	weather rules.WeatherTable
	now     func() time.Time
	newID   func() string
}

// New returns a detector running DefaultRuleGroups.
func New(opts ...Option) *Detector {
	d := &Detector{
		groups:  DefaultRuleGroups(),
		weather: rules.DefaultWeatherTable(),
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Register appends a rule group after the existing ones.
func (d *Detector) Register(g RuleGroup) {
	d.groups = append(d.groups, g)
}

// Groups returns the names of the rule groups in evaluation order.
func (d *Detector) Groups() []string {
	names := make([]string, len(d.groups))
	for i, g := range d.groups {
		names[i] = g.Name()
	}
	return names
}

// Weather returns the compatibility table used by the detector.
func (d *Detector) Weather() rules.WeatherTable { return d.weather }

// Detect runs every rule group over every mission in registry order. The
// registry is never modified.
func (d *Detector) Detect(reg *registry.Registry) Result {
	p := &Pass{
		Registry: reg,
		Weather:  d.weather,
		now:      d.now(),
		newID:    d.newID,
		seen:     make(map[string]struct{}),
	}
	for _, m := range reg.Missions() {
		for _, g := range d.groups {
			g.Check(p, m)
		}
	}
	return newResult(p.conflicts)
}

func newResult(conflicts []model.Conflict) Result {
	if conflicts == nil {
		conflicts = []model.Conflict{}
	}
	res := Result{Conflicts: conflicts}
	for _, c := range conflicts {
		if c.Severity == model.SeverityCritical {
			res.HasCritical = true
			break
		}
	}
	res.Summary = Summarize(conflicts)
	return res
}

// Summarize renders the one-line summary of a conflict list.
func Summarize(conflicts []model.Conflict) string {
	if len(conflicts) == 0 {
		return "No conflicts detected. All assignments are valid."
	}
	counts := make(map[model.Severity]int)
	for _, c := range conflicts {
		counts[c.Severity]++
	}
	parts := make([]string, 0, len(model.Severities))
	for _, s := range model.Severities {
		if n := counts[s]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, s))
		}
	}
	return fmt.Sprintf("Found %d conflict(s): %s", len(conflicts), strings.Join(parts, ", "))
}
