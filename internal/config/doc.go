// Package config provides the configuration system for pagedit.
//
// Configuration is organized in layers with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  4. Command Line Arguments  │  ← Highest priority
//	├─────────────────────────────┤
//	│  3. Environment Variables   │  ← PAGEDIT_EDITOR_TRIGGER, ...
//	├─────────────────────────────┤
//	│  2. Configuration File      │  ← pagedit.toml or pagedit.yaml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// The merged layers decode into Settings, which is validated as a whole: a
// reload that produces invalid settings is rejected and the previous
// settings stay in effect.
//
// # Sections
//
//	[editor]   trigger, hit_zone, exempt
//	[history]  max_entries, group_delay
//	[log]      level, format, file
//	[store]    dsn, encoding, autosave_delay
//	[server]   listen
//	[plugins]  dir
//	[keymap]   document, palette, dialog: lists of {keys, action}
//
// # Sub-packages
//
//   - layer: layer stack and deep merge
//   - loader: TOML, YAML and environment loading
//   - watcher: fsnotify based live reload
//
// # Usage
//
//	cfg := config.New(config.WithPath("pagedit.toml"), config.WithWatcher(0))
//	if err := cfg.Load(ctx); err != nil {
//		return err
//	}
//	defer cfg.Close()
//	cfg.OnChange(func(ch config.Change) {
//		if ch.Changed("editor") {
//			ed.Configure(ch.New.TriggerRune(), ch.New.Editor.HitZone)
//		}
//	})
package config
