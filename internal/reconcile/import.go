package reconcile

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/smy-101/vibe-sync/internal/fsutil"
	"github.com/smy-101/vibe-sync/internal/plugins"
	"github.com/smy-101/vibe-sync/internal/types"
	"github.com/smy-101/vibe-sync/internal/validate"
)

const enabledPluginsKey = "enabledPlugins"

// ImportOptions controls Import.
type ImportOptions struct {
	// ReinstallPlugins replays the synced plugin manifest through the plugin tool.
	ReinstallPlugins bool
	// DryRun reports every action without performing any of them.
	DryRun bool
}

// action is one planned step of an import. lines describe it for a dry run.
type action struct {
	lines []string
	run   func(ctx context.Context) error
	// fatal aborts the import when run fails; otherwise the failure is logged.
	fatal bool
}

// Import copies the synced tree into the local configuration. Every step is
// first computed, then either described (dry run) or performed.
func (r *Reconciler) Import(ctx context.Context, opts ImportOptions) error {
	if !fsutil.IsDir(r.fs, r.paths.DataDir) {
		return &ReconcileError{
			Type:    ErrorTypeSyncedTreeMissing,
			Message: "synced data not found: " + r.paths.DataDir + " (run init or pull first)",
		}
	}

	// Captured before anything below can overwrite the local documents.
	existing := plugins.CaptureExistingState(r.fs,
		r.localPath(r.files.MarketplacesPath()),
		r.localPath(r.files.PluginsPath()),
		r.localPath(r.files.SettingsFile))

	var actions []action
	actions = append(actions, r.planBackup())
	actions = append(actions, r.planFiles(opts)...)
	actions = append(actions, r.planDirs()...)
	actions = append(actions, r.planSkills()...)
	actions = append(actions, r.planMCPMerge()...)
	actions = append(actions, r.planPlugins(opts, existing)...)

	if opts.DryRun {
		for _, a := range actions {
			for _, line := range a.lines {
				r.logger.Info("[dry-run] would " + line)
			}
		}
		r.logger.Info("Dry run complete, no changes made")
		return nil
	}

	for _, a := range actions {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := a.run(ctx); err != nil {
			if a.fatal {
				return err
			}
			r.logger.Warn("Import step failed: "+strings.Join(a.lines, "; "), "error", err)
		}
	}

	r.logger.OK("Import complete")
	return nil
}

func (r *Reconciler) planBackup() action {
	return action{
		lines: []string{"back up the local config to " + r.paths.BackupDir},
		fatal: true,
		run: func(context.Context) error {
			if _, err := r.backups.Create(); err != nil {
				return &ReconcileError{
					Type:    ErrorTypeBackup,
					Message: "failed to back up local config, import aborted",
					Err:     err,
				}
			}
			return nil
		},
	}
}

func (r *Reconciler) planFiles(opts ImportOptions) []action {
	var actions []action
	for _, f := range r.files.Files {
		f := f
		src := r.syncedPath(f)
		dst := r.localPath(f)

		if !fsutil.Exists(r.fs, src) {
			r.logger.Info("Not in synced tree, skipping: " + f)
			continue
		}

		if filepath.Ext(f) != ".json" {
			actions = append(actions, copyFileAction(r, f, src, dst))
			continue
		}

		var result validate.Result
		if f == r.files.SettingsFile {
			result = validate.ValidateSettings(r.fs, src)
		} else {
			result = validate.ValidateJSONFile(r.fs, src)
		}
		if !result.Valid {
			for _, msg := range result.Errors {
				r.logger.Warn(msg)
			}
			r.logger.Warn("Skipping invalid file: " + f)
			continue
		}

		if _, has := result.Data[enabledPluginsKey]; f == r.files.SettingsFile && has && !opts.ReinstallPlugins {
			doc := result.Data
			delete(doc, enabledPluginsKey)
			actions = append(actions, action{
				lines: []string{fmt.Sprintf("write %s without %s", f, enabledPluginsKey)},
				run: func(context.Context) error {
					if err := fsutil.WriteJSON(r.fs, dst, doc); err != nil {
						return err
					}
					r.logger.OK("Imported " + f + " (" + enabledPluginsKey + " removed)")
					return nil
				},
			})
			continue
		}

		actions = append(actions, copyFileAction(r, f, src, dst))
	}
	return actions
}

func copyFileAction(r *Reconciler, name, src, dst string) action {
	return action{
		lines: []string{"copy " + name},
		run: func(context.Context) error {
			if err := fsutil.CopyFile(r.fs, src, dst); err != nil {
				return err
			}
			r.logger.OK("Imported " + name)
			return nil
		},
	}
}

func (r *Reconciler) planDirs() []action {
	var actions []action
	for _, d := range r.files.Dirs {
		d := d
		src := r.syncedPath(d)
		if !fsutil.IsDir(r.fs, src) {
			r.logger.Info("Not in synced tree, skipping: " + d + "/")
			continue
		}
		actions = append(actions, action{
			lines: []string{"merge " + d + "/"},
			run: func(context.Context) error {
				if err := fsutil.CopyDir(r.fs, src, r.localPath(d)); err != nil {
					return err
				}
				r.logger.OK("Imported " + d + "/")
				return nil
			},
		})
	}
	return actions
}

func (r *Reconciler) planSkills() []action {
	src := r.syncedPath(r.files.SkillsDir)
	dst := r.localPath(r.files.SkillsDir)

	plan, err := r.ledger.PlanImport(src, dst, r.syncedPath(r.files.ExternalSkillsFile))
	if err != nil {
		r.logger.Warn("Cannot plan skills import, skipping", "error", err)
		return nil
	}
	if len(plan.Dirs) == 0 && len(plan.Links) == 0 && len(plan.Unresolved) == 0 &&
		len(plan.Shadowed) == 0 && len(plan.Invalid) == 0 {
		return nil
	}

	var lines []string
	for _, name := range plan.Dirs {
		lines = append(lines, "import skill "+name)
	}
	for _, link := range plan.Links {
		lines = append(lines, "link skill "+link.Name+" -> "+link.Target)
	}
	for _, link := range plan.Unresolved {
		lines = append(lines, "skip skill "+link.Name+" (target not found: "+link.Target+")")
	}

	return []action{{
		lines: lines,
		run: func(context.Context) error {
			return r.ledger.Apply(plan, src, dst)
		},
	}}
}

func (r *Reconciler) planPlugins(opts ImportOptions, existing *types.ExistingPluginState) []action {
	if !opts.ReinstallPlugins {
		r.logger.Info("Plugin sync skipped")
		return nil
	}

	marketplacesFile := r.syncedPath(r.files.MarketplacesPath())
	pluginsFile := r.syncedPath(r.files.PluginsPath())
	hasMarketplaces := fsutil.Exists(r.fs, marketplacesFile)
	hasPlugins := fsutil.Exists(r.fs, pluginsFile)
	if !hasMarketplaces && !hasPlugins {
		r.logger.Info("No plugin registries in synced tree, nothing to reinstall")
		return nil
	}

	failed := false
	if hasMarketplaces {
		if result := validate.ValidateMarketplaces(r.fs, marketplacesFile); !result.Valid {
			for _, msg := range result.Errors {
				r.logger.Warn(msg)
			}
			failed = true
		}
	}
	if hasPlugins {
		if result := validate.ValidatePlugins(r.fs, pluginsFile); !result.Valid {
			for _, msg := range result.Errors {
				r.logger.Warn(msg)
			}
			failed = true
		}
	}
	if failed {
		r.logger.Warn("Skipping plugin sync due to validation errors")
		return nil
	}

	plan := r.plugins.Plan(marketplacesFile, pluginsFile, r.syncedPath(r.files.SettingsFile), existing)

	lines := make([]string, 0, len(plan.Actions))
	for _, a := range plan.Actions {
		lines = append(lines, "run plugin tool: "+strings.Join(a.Args, " "))
	}
	if len(lines) == 0 {
		lines = append(lines, "leave plugins unchanged (already up to date)")
	}

	return []action{{
		lines: lines,
		fatal: true,
		run: func(ctx context.Context) error {
			_, err := r.plugins.Execute(ctx, plan)
			return err
		},
	}}
}
