// Package plugins replays a declarative marketplace/plugin/enabled manifest
// against the external plugin tool. Entries already present in the captured
// local state are skipped, so a second run with an up-to-date state issues no
// invocations at all.
package plugins

import (
	"context"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/smy-101/vibe-sync/internal/fsutil"
	"github.com/smy-101/vibe-sync/internal/logger"
	"github.com/smy-101/vibe-sync/internal/types"
)

// Phase orders the invocations. Phases run strictly in this order.
type Phase int

const (
	PhaseMarketplaces Phase = iota
	PhasePlugins
	PhaseEnable
)

func (p Phase) String() string {
	switch p {
	case PhaseMarketplaces:
		return "marketplaces"
	case PhasePlugins:
		return "plugins"
	case PhaseEnable:
		return "enable"
	default:
		return "unknown"
	}
}

// Action is one planned tool invocation.
type Action struct {
	Phase Phase
	Name  string
	Args  []string
}

// Skip is a manifest entry that needs no invocation.
type Skip struct {
	Phase  Phase
	Name   string
	Reason string
}

const (
	ReasonMarketplaceRegistered = "already registered"
	ReasonPluginInstalled       = "already installed"
	ReasonPluginEnabled         = "already enabled"
	ReasonUnresolvable          = "no repo or url in source"
)

// Plan is the ordered list of invocations a reinstall would make.
type Plan struct {
	Actions []Action
	Skipped []Skip
}

// PhaseStats counts outcomes within one phase.
type PhaseStats struct {
	Succeeded int
	Failed    int
	TimedOut  int
	Skipped   int
}

// Stats summarises a reinstall.
type Stats struct {
	Marketplaces PhaseStats
	Plugins      PhaseStats
	Enabled      PhaseStats
}

// Invocations is the number of tool invocations made.
func (s Stats) Invocations() int {
	total := 0
	for _, p := range []PhaseStats{s.Marketplaces, s.Plugins, s.Enabled} {
		total += p.Succeeded + p.Failed
	}
	return total
}

func (s *Stats) phase(p Phase) *PhaseStats {
	switch p {
	case PhaseMarketplaces:
		return &s.Marketplaces
	case PhasePlugins:
		return &s.Plugins
	default:
		return &s.Enabled
	}
}

// Reinstaller drives Tool from a manifest.
type Reinstaller struct {
	fs     afero.Fs
	tool   Tool
	logger logger.Logger
}

// NewReinstaller creates a Reinstaller. A nil log discards output.
func NewReinstaller(fs afero.Fs, tool Tool, log logger.Logger) *Reinstaller {
	if log == nil {
		log = logger.NoOp{}
	}
	return &Reinstaller{fs: fs, tool: tool, logger: log}
}

// Reinstall plans and executes the manifest held in the three files.
// existing may be nil, in which case nothing is considered present.
func (r *Reinstaller) Reinstall(ctx context.Context, marketplacesFile, pluginsFile, settingsFile string, existing *types.ExistingPluginState) (Stats, error) {
	plan := r.Plan(marketplacesFile, pluginsFile, settingsFile, existing)
	return r.Execute(ctx, plan)
}

// Plan computes the invocations needed to bring the local machine in line
// with the manifest. It never runs the tool.
func (r *Reinstaller) Plan(marketplacesFile, pluginsFile, settingsFile string, existing *types.ExistingPluginState) *Plan {
	plan := &Plan{}

	marketplaces := types.MarketplacesData{}
	r.decode(marketplacesFile, &marketplaces)
	for _, name := range sortedKeys(marketplaces) {
		if existing.HasMarketplace(name) {
			plan.skip(PhaseMarketplaces, name, ReasonMarketplaceRegistered)
			continue
		}
		arg := MarketplaceArg(marketplaces[name])
		if arg == "" {
			plan.skip(PhaseMarketplaces, name, ReasonUnresolvable)
			continue
		}
		plan.add(PhaseMarketplaces, name, "plugin", "marketplace", "add", "--", arg)
	}

	plugins := types.PluginsData{}
	r.decode(pluginsFile, &plugins)
	for _, key := range sortedKeys(plugins.Plugins) {
		if existing.IsPluginInstalled(key) {
			plan.skip(PhasePlugins, key, ReasonPluginInstalled)
			continue
		}
		plan.add(PhasePlugins, key, "plugin", "install", "--", key)
	}

	settings := types.SettingsData{}
	r.decode(settingsFile, &settings)
	for _, key := range sortedKeys(settings.EnabledPlugins) {
		if !settings.EnabledPlugins[key] {
			continue
		}
		if existing.IsPluginEnabled(key) {
			plan.skip(PhaseEnable, key, ReasonPluginEnabled)
			continue
		}
		plan.add(PhaseEnable, key, "plugin", "enable", "--", key)
	}

	return plan
}

// Execute runs plan. The tool is probed first unless the plan is empty; an
// unreachable tool is fatal. Individual invocation failures are logged and
// counted.
func (r *Reinstaller) Execute(ctx context.Context, plan *Plan) (Stats, error) {
	var stats Stats

	for _, s := range plan.Skipped {
		stats.phase(s.Phase).Skipped++
		if s.Reason == ReasonUnresolvable {
			r.logger.Warn("Cannot resolve marketplace source, skipping: " + s.Name)
			continue
		}
		r.logger.Debug("Skipping "+s.Name, "phase", s.Phase.String(), "reason", s.Reason)
	}

	if len(plan.Actions) == 0 {
		r.logger.OK("Plugins already up to date")
		return stats, nil
	}

	if !r.tool.Probe(ctx) {
		return stats, &PluginError{
			Type:    ErrorTypeToolUnavailable,
			Message: "plugin tool is not available; install it or set plugin_tool in config",
		}
	}

	for _, action := range plan.Actions {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		label := actionLabel(action)
		r.logger.Info(label + ": " + action.Name)

		result := r.tool.Run(ctx, action.Args)
		ps := stats.phase(action.Phase)
		switch {
		case result.TimedOut:
			ps.Failed++
			ps.TimedOut++
			r.logger.Warn("Timed out " + strings.ToLower(label) + ": " + action.Name)
		case result.Succeeded:
			ps.Succeeded++
			r.logger.OK(label + " done: " + action.Name)
		default:
			ps.Failed++
			r.logger.Warn(label + " failed: " + action.Name)
		}
	}

	r.logger.OK("Plugin sync finished",
		"marketplaces", stats.Marketplaces.Succeeded,
		"plugins", stats.Plugins.Succeeded,
		"enabled", stats.Enabled.Succeeded,
		"failed", stats.Marketplaces.Failed+stats.Plugins.Failed+stats.Enabled.Failed)
	return stats, nil
}

// MarketplaceArg derives the argument passed to "marketplace add": the repo
// for GitHub sources, the url otherwise. Empty means unresolvable.
func MarketplaceArg(entry types.MarketplaceEntry) string {
	if entry.Source == nil {
		return ""
	}
	if entry.Source.Source == "github" {
		return entry.Source.Repo
	}
	return entry.Source.URL
}

func (p *Plan) add(phase Phase, name string, args ...string) {
	p.Actions = append(p.Actions, Action{Phase: phase, Name: name, Args: args})
}

func (p *Plan) skip(phase Phase, name, reason string) {
	p.Skipped = append(p.Skipped, Skip{Phase: phase, Name: name, Reason: reason})
}

func (r *Reinstaller) decode(path string, v interface{}) {
	if path == "" || !fsutil.Exists(r.fs, path) {
		return
	}
	if err := fsutil.DecodeJSON(r.fs, path, v); err != nil {
		r.logger.Warn("Cannot read plugin manifest, ignoring it", "path", path, "error", err)
	}
}

func actionLabel(a Action) string {
	switch a.Phase {
	case PhaseMarketplaces:
		return "Adding marketplace"
	case PhasePlugins:
		return "Installing plugin"
	default:
		return "Enabling plugin"
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
