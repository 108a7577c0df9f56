package launcher

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"llmlauncher/internal/dispatch"
	"llmlauncher/internal/instances"
	"llmlauncher/internal/registry"
	"llmlauncher/pkg/types"
)

// Config holds the collaborators of a Launcher.
type Config struct {
	Registry   *registry.Registry
	Store      *instances.Store
	Dispatcher *dispatch.Dispatcher
	Events     EventPublisher
	Logger     *zerolog.Logger
	Version    string
}

// Launcher runs rounds against the configured instances.
type Launcher struct {
	reg   *registry.Registry
	store *instances.Store
	disp  *dispatch.Dispatcher
	pub   EventPublisher
	log   zerolog.Logger

	version   string
	startTime time.Time

	mu        sync.Mutex
	rounds    uint64
	lastRound string
	lastStart time.Time
}

// New constructs a Launcher. A nil store or dispatcher is replaced by an
// empty store and a default dispatcher.
func New(cfg Config) *Launcher {
	l := &Launcher{
		reg:       cfg.Registry,
		store:     cfg.Store,
		disp:      cfg.Dispatcher,
		pub:       cfg.Events,
		log:       zerolog.Nop(),
		version:   cfg.Version,
		startTime: time.Now(),
	}
	if l.reg == nil {
		l.reg, _ = registry.New()
	}
	if l.store == nil {
		l.store = instances.NewStore()
	}
	if cfg.Logger != nil {
		l.log = *cfg.Logger
	}
	if l.disp == nil {
		l.disp = dispatch.New(dispatch.Config{Logger: &l.log})
	}
	if l.pub == nil {
		l.pub = noopPublisher{}
	}
	if l.version == "" {
		l.version = "development"
	}
	return l
}

// Ready reports whether at least one family is registered.
func (l *Launcher) Ready() bool { return l.reg.Len() > 0 }

// Families returns the registered descriptors sorted by name.
func (l *Launcher) Families() []registry.Descriptor { return l.reg.List() }

// Family returns one descriptor.
func (l *Launcher) Family(name string) (registry.Descriptor, error) {
	d, ok := l.reg.Get(name)
	if !ok {
		return d, ErrUnknownFamily(name)
	}
	return d, nil
}

// Instances returns the configured instances in round order.
func (l *Launcher) Instances() []instances.Instance { return l.store.List() }

// Instance returns one configured instance.
func (l *Launcher) Instance(name string) (instances.Instance, error) { return l.store.Get(name) }

// AddInstance validates inst against its family and stores it.
func (l *Launcher) AddInstance(inst instances.Instance) error {
	if err := l.checkProperties(inst.Family, inst); err != nil {
		return err
	}
	if err := l.store.Add(inst); err != nil {
		return err
	}
	l.log.Info().Str("instance", inst.Name).Str("family", inst.Family).Msg("instance added")
	return nil
}

// UpdateInstance replaces the property values of an existing instance.
func (l *Launcher) UpdateInstance(name string, inst instances.Instance) error {
	cur, err := l.store.Get(name)
	if err != nil {
		return err
	}
	if err := l.checkProperties(cur.Family, inst); err != nil {
		return err
	}
	if err := l.store.Update(name, inst); err != nil {
		return err
	}
	l.log.Info().Str("instance", name).Msg("instance updated")
	return nil
}

// RemoveInstance deletes an instance; unknown names are ignored.
func (l *Launcher) RemoveInstance(name string) {
	l.store.Remove(name)
	l.log.Info().Str("instance", name).Msg("instance removed")
}

// Prompts returns the prompt pair of the latest round.
func (l *Launcher) Prompts() types.PromptPair { return l.store.Prompts() }

// ClearPrompts forgets the remembered prompt pair.
func (l *Launcher) ClearPrompts() {
	l.store.SetPrompts(types.PromptPair{})
	l.log.Info().Msg("prompts cleared")
}

// checkProperties requires every property declared by the family. Values
// may be empty, as an untouched form field would be.
func (l *Launcher) checkProperties(family string, inst instances.Instance) error {
	desc, err := l.Family(family)
	if err != nil {
		return err
	}
	for _, p := range desc.Properties {
		if _, ok := inst.Properties[p.Name]; !ok {
			return invalidError{msg: fmt.Sprintf("missing property %q for family %s", p.Name, family)}
		}
	}
	return nil
}
