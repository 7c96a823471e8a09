package crisis

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/kingdom-engine/pkg/conditionals"
	"github.com/jwebster45206/kingdom-engine/pkg/economy"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

var defaultCatalog = sync.OnceValues(func() (*Catalog, error) {
	return LoadCatalog(bytes.NewReader(defaultCatalogYAML))
})

// DefaultCatalog returns the built-in crisis catalog.
func DefaultCatalog() (*Catalog, error) {
	return defaultCatalog()
}

type rawFile struct {
	Crises []rawDefinition `yaml:"crises"`
}

type rawDefinition struct {
	ID          string        `yaml:"id"`
	Name        string        `yaml:"name"`
	TriggerType string        `yaml:"trigger_type"`
	Trigger     rawTrigger    `yaml:"trigger"`
	Resolution  rawResolution `yaml:"resolution"`
	Effects     []rawEffect   `yaml:"effects"`
	PromptText  string        `yaml:"prompt_text"`
	NotifyStart string        `yaml:"notify_start"`
	NotifyEnd   string        `yaml:"notify_end"`
	Critical    bool          `yaml:"critical"`
	Stages      []rawStage    `yaml:"stages"`
}

type rawPredicate struct {
	Type       string `yaml:"type,omitempty"`
	Resource   string `yaml:"resource,omitempty"`
	Faction    string `yaml:"faction,omitempty"`
	Threshold  *int   `yaml:"threshold,omitempty"`
	Comparison string `yaml:"comparison,omitempty"`
}

type rawTrigger struct {
	rawPredicate `yaml:",inline"`
	Conditions   []rawPredicate `yaml:"conditions,omitempty"`
}

type rawResolution struct {
	rawPredicate    `yaml:",inline"`
	Turns           int  `yaml:"turns,omitempty"`
	OrDurationTurns *int `yaml:"or_duration_turns,omitempty"`
}

type rawEffect struct {
	Type      string `yaml:"type"`
	Resource  string `yaml:"resource,omitempty"`
	Faction   string `yaml:"faction,omitempty"`
	Amount    int    `yaml:"amount"`
	Frequency string `yaml:"frequency"`
}

type rawStage struct {
	ID              string `yaml:"id"`
	Generator       string `yaml:"generator"`
	Guidance        string `yaml:"guidance"`
	TerminalSuccess bool   `yaml:"terminal_success,omitempty"`
}

// LoadCatalog decodes a YAML catalog and converts it into typed
// definitions. Unknown fields, names and comparisons are rejected here so
// that play never sees them. All issues are returned in a *ValidationError.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	defs, issues, err := compile(r)
	if err != nil {
		return nil, err
	}
	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}
	return NewCatalog(defs...)
}

// Validate decodes a YAML catalog and returns every issue it finds.
// A decode failure is returned as the error.
func Validate(r io.Reader) ([]*ConfigurationError, error) {
	defs, issues, err := compile(r)
	if err != nil {
		return nil, err
	}
	if _, err := NewCatalog(defs...); err != nil {
		var ce *ConfigurationError
		if errors.As(err, &ce) {
			issues = append(issues, ce)
		}
	}
	return issues, nil
}

func compile(r io.Reader) ([]*Definition, []*ConfigurationError, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f rawFile
	if err := dec.Decode(&f); err != nil {
		return nil, nil, fmt.Errorf("decode catalog: %w", err)
	}

	c := &compiler{}
	defs := make([]*Definition, 0, len(f.Crises))
	for i := range f.Crises {
		if d := c.definition(&f.Crises[i]); d != nil {
			defs = append(defs, d)
		}
	}
	return defs, c.issues, nil
}

type compiler struct {
	issues []*ConfigurationError
}

func (c *compiler) fail(subject, detail, suggestion string) {
	c.issues = append(c.issues, &ConfigurationError{Subject: subject, Detail: detail, Suggestion: suggestion})
}

func (c *compiler) definition(raw *rawDefinition) *Definition {
	before := len(c.issues)
	if raw.ID == "" {
		c.fail("crisis", "missing id", "")
		return nil
	}
	d := &Definition{
		ID:          raw.ID,
		Name:        raw.Name,
		TriggerType: TriggerType(raw.TriggerType),
		Critical:    raw.Critical,
		PromptText:  raw.PromptText,
		NotifyStart: raw.NotifyStart,
		NotifyEnd:   raw.NotifyEnd,
	}
	if d.Name == "" {
		d.Name = d.ID
	}

	switch d.TriggerType {
	case TriggerResource, TriggerFaction:
		p := c.predicate(raw.ID+".trigger", raw.Trigger.rawPredicate)
		if p != nil {
			if (p.Target.Kind == economy.KindFaction) != (d.TriggerType == TriggerFaction) {
				c.fail(raw.ID+".trigger", fmt.Sprintf("%s trigger must name a %s", d.TriggerType, d.TriggerType), "")
			}
			d.Trigger.Predicate = p
		}
		if len(raw.Trigger.Conditions) > 0 {
			c.fail(raw.ID+".trigger", "conditions are only allowed on random crises", "")
		}
	case TriggerRandom:
		for i, rc := range raw.Trigger.Conditions {
			if cl, ok := c.clause(fmt.Sprintf("%s.trigger.conditions[%d]", raw.ID, i), rc); ok {
				d.Trigger.Clauses = append(d.Trigger.Clauses, cl)
			}
		}
	default:
		c.fail(raw.ID+".trigger_type", fmt.Sprintf("unknown trigger type %q", raw.TriggerType),
			Suggest(raw.TriggerType, []string{string(TriggerResource), string(TriggerFaction), string(TriggerRandom)}))
	}

	d.Resolution = c.resolution(raw.ID+".resolution", raw.Resolution)

	for i, re := range raw.Effects {
		if e, ok := c.effect(fmt.Sprintf("%s.effects[%d]", raw.ID, i), re); ok {
			d.Effects = append(d.Effects, e)
		}
	}

	seen := make(map[string]bool, len(raw.Stages))
	for i, rs := range raw.Stages {
		subject := fmt.Sprintf("%s.stages[%d]", raw.ID, i)
		if rs.ID == "" {
			c.fail(subject, "missing stage id", "")
			continue
		}
		if seen[rs.ID] {
			c.fail(subject, fmt.Sprintf("duplicate stage id %q", rs.ID), "")
			continue
		}
		seen[rs.ID] = true
		d.Stages = append(d.Stages, Stage{
			ID:              rs.ID,
			GeneratorKey:    rs.Generator,
			Guidance:        rs.Guidance,
			TerminalSuccess: rs.TerminalSuccess,
		})
	}

	_, isChain := d.Resolution.(ChainResolution)
	if isChain && len(d.Stages) == 0 {
		c.fail(raw.ID+".stages", "eventChain resolution needs at least one stage", "")
	}
	if !isChain && len(d.Stages) > 0 {
		c.fail(raw.ID+".stages", "stages are only used with an eventChain resolution", "")
	}

	if len(c.issues) > before {
		return nil
	}
	return d
}

func (c *compiler) target(subject, resource, faction string) (economy.Target, bool) {
	switch {
	case resource != "" && faction != "":
		c.fail(subject, "name either a resource or a faction, not both", "")
	case resource != "":
		r, err := economy.ParseResource(resource)
		if err != nil {
			c.fail(subject, err.Error(), Suggest(resource, economy.Names()))
			return economy.Target{}, false
		}
		return economy.ResourceTarget(r), true
	case faction != "":
		f, err := economy.ParseFaction(faction)
		if err != nil {
			c.fail(subject, err.Error(), Suggest(faction, economy.Names()))
			return economy.Target{}, false
		}
		return economy.FactionTarget(f), true
	default:
		c.fail(subject, "missing resource or faction", "")
	}
	return economy.Target{}, false
}

func (c *compiler) condition(subject string, rp rawPredicate) (conditionals.Condition, bool) {
	cond := conditionals.Condition{Comparison: conditionals.Comparison(rp.Comparison)}
	ok := true
	if rp.Threshold == nil {
		c.fail(subject, "missing threshold", "")
		ok = false
	} else {
		cond.Threshold = *rp.Threshold
	}
	if !cond.Comparison.Valid() {
		names := make([]string, len(conditionals.Comparisons))
		for i, cmp := range conditionals.Comparisons {
			names[i] = string(cmp)
		}
		c.fail(subject, fmt.Sprintf("unknown comparison %q", rp.Comparison), Suggest(rp.Comparison, names))
		ok = false
	}
	return cond, ok
}

func (c *compiler) predicate(subject string, rp rawPredicate) *Predicate {
	if rp.Type != "" && rp.Type != "threshold" {
		c.fail(subject, fmt.Sprintf("unexpected type %q on a threshold predicate", rp.Type), "")
		return nil
	}
	t, tok := c.target(subject, rp.Resource, rp.Faction)
	cond, cok := c.condition(subject, rp)
	if !tok || !cok {
		return nil
	}
	return &Predicate{Target: t, Condition: cond}
}

func (c *compiler) clause(subject string, rp rawPredicate) (conditionals.Clause, bool) {
	cl := conditionals.Clause{Subject: conditionals.SubjectKind(rp.Type)}
	switch cl.Subject {
	case conditionals.SubjectYear:
	case conditionals.SubjectResource, conditionals.SubjectFaction:
		t, ok := c.target(subject, rp.Resource, rp.Faction)
		if !ok {
			return cl, false
		}
		if (t.Kind == economy.KindFaction) != (cl.Subject == conditionals.SubjectFaction) {
			c.fail(subject, fmt.Sprintf("%s clause names %s", cl.Subject, t), "")
			return cl, false
		}
		cl.Target = t
	default:
		c.fail(subject, fmt.Sprintf("unknown condition type %q", rp.Type), Suggest(rp.Type, []string{"resource", "faction", "year"}))
		return cl, false
	}
	cond, ok := c.condition(subject, rp)
	cl.Condition = cond
	return cl, ok
}

func (c *compiler) resolution(subject string, rr rawResolution) Resolution {
	switch rr.Type {
	case "durationTurns":
		if rr.Turns <= 0 {
			c.fail(subject, "durationTurns needs turns > 0", "")
		}
		return DurationResolution{Turns: rr.Turns}
	case "eventChain":
		res := ChainResolution{}
		if rr.OrDurationTurns != nil {
			if *rr.OrDurationTurns <= 0 {
				c.fail(subject, "or_duration_turns must be > 0", "")
			}
			res.FallbackTurns = *rr.OrDurationTurns
		}
		return res
	case "", "threshold":
		p := c.predicate(subject, rr.rawPredicate)
		if p == nil {
			return nil
		}
		return ThresholdResolution{Predicate: *p}
	default:
		c.fail(subject, fmt.Sprintf("unknown resolution type %q", rr.Type),
			Suggest(rr.Type, []string{"durationTurns", "eventChain", "threshold"}))
		return nil
	}
}

func (c *compiler) effect(subject string, re rawEffect) (Effect, bool) {
	e := Effect{Amount: re.Amount, Frequency: Frequency(re.Frequency)}
	ok := true
	switch re.Type {
	case "resourceChange":
		t, tok := c.target(subject, re.Resource, "")
		e.Target, ok = t, tok
	case "factionStandingChange":
		t, tok := c.target(subject, "", re.Faction)
		e.Target, ok = t, tok
	default:
		c.fail(subject, fmt.Sprintf("unknown effect type %q", re.Type),
			Suggest(re.Type, []string{"resourceChange", "factionStandingChange"}))
		ok = false
	}
	if e.Frequency != PerTurn && e.Frequency != OnTrigger {
		c.fail(subject, fmt.Sprintf("unknown frequency %q", re.Frequency),
			Suggest(re.Frequency, []string{string(PerTurn), string(OnTrigger)}))
		ok = false
	}
	if e.Amount == 0 {
		c.fail(subject, "effect amount must be non-zero", "")
		ok = false
	}
	return e, ok
}
