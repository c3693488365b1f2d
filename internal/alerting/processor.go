package alerting

import (
	"cmp"
	"slices"

	"github.com/threshgen/threshgen/internal/eventconf"
	"github.com/threshgen/threshgen/internal/graphs"
	"github.com/threshgen/threshgen/internal/logger"
	"github.com/threshgen/threshgen/internal/notifconf"
	"github.com/threshgen/threshgen/internal/threshd"
)

// Processor turns thresholding groups into event and notification definitions.
type Processor struct {
	cfg      *RoutingConfig
	log      logger.Logger
	recorder Recorder
}

// Option configures a Processor.
type Option func(*Processor)

// WithRecorder reports run statistics to r.
func WithRecorder(r Recorder) Option {
	return func(p *Processor) {
		if r != nil {
			p.recorder = r
		}
	}
}

// NewProcessor creates a Processor. A nil cfg uses DefaultRoutingConfig.
func NewProcessor(cfg *RoutingConfig, log logger.Logger, opts ...Option) *Processor {
	if cfg == nil {
		cfg = DefaultRoutingConfig()
	}
	p := &Processor{cfg: cfg, log: log, recorder: nopRecorder{}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// BuildEvents returns one event per distinct UEI, sorted by UEI.
func (p *Processor) BuildEvents(groups []threshd.Group, templates []graphs.Template) ([]eventconf.Event, error) {
	tes, err := p.ThresholdEvents(groups, templates)
	if err != nil {
		return nil, err
	}
	events := make([]eventconf.Event, len(tes))
	for i, te := range tes {
		events[i] = te.Event
	}
	return events, nil
}

// BuildNotifications returns one notification per distinct event UEI, sorted
// by notification name.
func (p *Processor) BuildNotifications(groups []threshd.Group) ([]notifconf.Notification, error) {
	tes, err := p.ThresholdEvents(groups, nil)
	if err != nil {
		return nil, err
	}
	return p.Notifications(tes), nil
}

// Notifications derives the notifications of already synthesized events,
// sorted by notification name.
func (p *Processor) Notifications(tes []*ThresholdEvent) []notifconf.Notification {
	notifications := make([]notifconf.Notification, len(tes))
	for i, te := range tes {
		notifications[i] = SynthesizeNotification(te, p.cfg.DestinationPath(te.Event.UEI))
	}
	slices.SortStableFunc(notifications, func(a, b notifconf.Notification) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return notifications
}

// ruleUEIs holds the identifiers resolved for one rule. The input rule is
// never modified.
type ruleUEIs struct {
	triggered string
	rearmed   string
	withRearm bool
}

// ThresholdEvents synthesizes the exceeded and rearmed events of every rule,
// keeping the first event seen for each UEI. The result is sorted by UEI.
func (p *Processor) ThresholdEvents(groups []threshd.Group, templates []graphs.Template) ([]*ThresholdEvent, error) {
	synth := NewEventSynthesizer(p.cfg.baseUEI(), p.cfg.UseComputedExpression, p.log, p.recorder)
	seen := make(map[string]struct{})
	var out []*ThresholdEvent

	add := func(te *ThresholdEvent) {
		if _, dup := seen[te.Event.UEI]; dup {
			p.log.Debug("dropping duplicate event", logger.String("uei", te.Event.UEI))
			p.recorder.DuplicateEventDropped()
			return
		}
		seen[te.Event.UEI] = struct{}{}
		out = append(out, te)
	}

	for gi := range groups {
		g := &groups[gi]
		for _, rule := range g.Rules() {
			wrap := func(err error) error {
				return &RuleError{Group: g.Name, Variant: rule.Variant, Subject: rule.Subject(), Err: err}
			}

			kind, err := ParseKind(rule.Type)
			if err != nil {
				return nil, wrap(err)
			}
			p.recorder.RuleProcessed(kind)

			ids, err := p.resolveUEIs(g.Name, rule, kind)
			if err != nil {
				return nil, wrap(err)
			}

			te, err := synth.Synthesize(rule, ids.triggered, Exceeded, p.cfg.InstanceInfo(ids.triggered), templates)
			if err != nil {
				return nil, wrap(err)
			}
			add(te)

			if !ids.withRearm {
				continue
			}
			te, err = synth.Synthesize(rule, ids.rearmed, Rearmed, p.cfg.InstanceInfo(ids.rearmed), templates)
			if err != nil {
				return nil, wrap(err)
			}
			add(te)
		}
	}

	slices.SortFunc(out, func(a, b *ThresholdEvent) int {
		return cmp.Compare(a.Event.UEI, b.Event.UEI)
	})
	return out, nil
}

// resolveUEIs returns the declared identifiers of rule, synthesizing the
// missing ones. One-shot kinds without a rearmed UEI get no rearm event.
func (p *Processor) resolveUEIs(group string, rule threshd.Rule, kind Kind) (ruleUEIs, error) {
	ids := ruleUEIs{triggered: rule.TriggeredUEI, rearmed: rule.RearmedUEI, withRearm: true}

	if isBlank(ids.triggered) {
		subject := rule.Metric
		if rule.Variant == threshd.ComputedMetric {
			subject = group
		}
		ids.triggered = TriggeredUEI(p.cfg.baseUEI(), kind, rule.DsType, subject)
		p.log.Warn("no triggered UEI defined, using a generated one",
			logger.String("group", group),
			logger.String("type", kind.String()),
			logger.String(rule.Variant.String(), rule.Subject()),
			logger.String("uei", ids.triggered))
		p.recorder.UEISynthesized(Exceeded)
	}

	if !isBlank(ids.rearmed) {
		return ids, nil
	}
	if kind.IsOneShot() {
		ids.withRearm = false
		p.recorder.RearmSuppressed()
		return ids, nil
	}
	rearmed, err := RearmedUEI(ids.triggered)
	if err != nil {
		return ruleUEIs{}, err
	}
	ids.rearmed = rearmed
	p.log.Warn("no rearmed UEI defined, using a generated one",
		logger.String("group", group),
		logger.String("type", kind.String()),
		logger.String(rule.Variant.String(), rule.Subject()),
		logger.String("uei", ids.rearmed))
	p.recorder.UEISynthesized(Rearmed)
	return ids, nil
}
