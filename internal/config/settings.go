package config

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/nahidnstu12/team-docs-sub001/internal/document"
	"github.com/nahidnstu12/team-docs-sub001/internal/editor"
	"github.com/nahidnstu12/team-docs-sub001/internal/input"
	"github.com/nahidnstu12/team-docs-sub001/internal/logging"
	"github.com/nahidnstu12/team-docs-sub001/internal/policy/marks"
	"github.com/nahidnstu12/team-docs-sub001/internal/toggle"
	"github.com/nahidnstu12/team-docs-sub001/internal/validate"
)

// Settings is the decoded configuration.
type Settings struct {
	Editor  EditorSettings  `yaml:"editor"`
	History HistorySettings `yaml:"history"`
	Log     LogSettings     `yaml:"log"`
	Store   StoreSettings   `yaml:"store"`
	Server  ServerSettings  `yaml:"server"`
	Plugins PluginSettings  `yaml:"plugins"`

	// Keymap holds extra bindings per focus mode ("document", "palette",
	// "dialog"). They take precedence over the defaults.
	Keymap map[string][]input.Binding `yaml:"keymap,omitempty"`
}

// EditorSettings is the [editor] section.
type EditorSettings struct {
	// Trigger is the single character opening the command palette.
	Trigger string `yaml:"trigger" validate:"required"`
	// HitZone is the width, in cells, of the toggle chevron.
	HitZone int `yaml:"hit_zone" validate:"min=1"`
	// Exempt lists the container kinds inside which Enter keeps formatting.
	Exempt []string `yaml:"exempt"`
}

// HistorySettings is the [history] section.
type HistorySettings struct {
	MaxEntries int           `yaml:"max_entries" validate:"min=1"`
	GroupDelay time.Duration `yaml:"group_delay" validate:"min=0"`
}

// LogSettings is the [log] section.
type LogSettings struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error disabled"`
	Format string `yaml:"format" validate:"oneof=console json"`
	File   string `yaml:"file"`
}

// StoreSettings is the [store] section.
type StoreSettings struct {
	DSN           string        `yaml:"dsn" validate:"required"`
	Encoding      string        `yaml:"encoding" validate:"oneof=json cbor"`
	AutosaveDelay time.Duration `yaml:"autosave_delay" validate:"min=0"`
}

// ServerSettings is the [server] section.
type ServerSettings struct {
	Listen string `yaml:"listen" validate:"required"`
}

// PluginSettings is the [plugins] section.
type PluginSettings struct {
	// Dir holds *.lua palette plugins. Empty disables plugins.
	Dir string `yaml:"dir"`
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	exempt := make([]string, len(marks.DefaultExempt))
	for i, k := range marks.DefaultExempt {
		exempt[i] = k.String()
	}
	return Settings{
		Editor: EditorSettings{
			Trigger: "/",
			HitZone: toggle.DefaultHitZone,
			Exempt:  exempt,
		},
		History: HistorySettings{
			MaxEntries: editor.DefaultMaxUndoEntries,
			GroupDelay: editor.DefaultGroupDelay,
		},
		Log:    LogSettings{Level: "info", Format: string(logging.FormatConsole)},
		Store:  StoreSettings{DSN: "pagedit.db", Encoding: "json", AutosaveDelay: 2 * time.Second},
		Server: ServerSettings{Listen: ":8080"},
	}
}

// fieldPaths maps validator field names to setting paths.
var fieldPaths = map[string]string{
	"Trigger":       "editor.trigger",
	"HitZone":       "editor.hit_zone",
	"MaxEntries":    "history.max_entries",
	"GroupDelay":    "history.group_delay",
	"Level":         "log.level",
	"Format":        "log.format",
	"DSN":           "store.dsn",
	"Encoding":      "store.encoding",
	"AutosaveDelay": "store.autosave_delay",
	"Listen":        "server.listen",
}

// Validate checks every section.
func (s Settings) Validate(v *validate.Validator) error {
	if err := v.Validate(s); err != nil {
		if verr, ok := err.(*validate.Error); ok && len(verr.Fields) > 0 {
			path := fieldPaths[verr.Fields[0]]
			value, _ := lookup(s, path)
			return &ValidationError{Path: path, Message: "invalid value", Value: value}
		}
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	if utf8.RuneCountInString(s.Editor.Trigger) != 1 {
		return &ValidationError{Path: "editor.trigger", Message: "must be a single character", Value: s.Editor.Trigger}
	}
	for _, name := range s.Editor.Exempt {
		if _, ok := document.KindByName(name); !ok {
			return &ValidationError{Path: "editor.exempt", Message: "unknown node kind", Value: name}
		}
	}
	if _, err := s.Keymaps(); err != nil {
		return err
	}
	return nil
}

// lookup returns the encoded value at path.
func lookup(s Settings, path string) (any, bool) {
	m, err := toMap(s)
	if err != nil {
		return nil, false
	}
	sec, key, _ := strings.Cut(path, ".")
	section, ok := m[sec].(map[string]any)
	if !ok {
		return nil, false
	}
	v, ok := section[key]
	return v, ok
}

// TriggerRune returns the palette trigger.
func (s Settings) TriggerRune() rune {
	r, _ := utf8.DecodeRuneInString(s.Editor.Trigger)
	return r
}

// ExemptKinds returns the exempt container kinds; unknown names are
// skipped.
func (s Settings) ExemptKinds() []document.Kind {
	out := make([]document.Kind, 0, len(s.Editor.Exempt))
	for _, name := range s.Editor.Exempt {
		if k, ok := document.KindByName(name); ok {
			out = append(out, k)
		}
	}
	return out
}

// Keymaps builds the user keymaps from the [keymap] tables.
func (s Settings) Keymaps() ([]*input.Keymap, error) {
	var out []*input.Keymap
	for _, name := range []string{"document", "palette", "dialog"} {
		bindings, ok := s.Keymap[name]
		if !ok {
			continue
		}
		focus, _ := input.FocusFromName(name)
		km := input.NewKeymap("user."+name, focus).WithSource("user")
		for _, b := range bindings {
			km.AddBinding(b)
		}
		if err := km.Validate(); err != nil {
			return nil, &ValidationError{Path: "keymap." + name, Message: err.Error(), Value: len(bindings)}
		}
		out = append(out, km)
	}
	for name := range s.Keymap {
		if _, ok := input.FocusFromName(name); !ok {
			return nil, &ValidationError{Path: "keymap." + name, Message: "unknown focus mode", Value: name}
		}
	}
	return out, nil
}

// LogConfig returns the logging configuration.
func (s Settings) LogConfig() logging.Config {
	return logging.Config{
		Level:  s.Log.Level,
		Format: logging.Format(s.Log.Format),
		Path:   s.Log.File,
	}
}

// EditorOptions returns the editor options the settings select.
func (s Settings) EditorOptions() []editor.Option {
	opts := []editor.Option{
		editor.WithTrigger(s.TriggerRune()),
		editor.WithHitZone(s.Editor.HitZone),
		editor.WithExempt(s.ExemptKinds()...),
		editor.WithHistory(s.History.MaxEntries, s.History.GroupDelay),
	}
	if kms, err := s.Keymaps(); err == nil && len(kms) > 0 {
		opts = append(opts, editor.WithKeymaps(kms...))
	}
	return opts
}

// toMap encodes s as a nested map in its YAML shape.
func toMap(s Settings) (map[string]any, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// normalize rewrites m through YAML so values decoded from different
// sources (TOML int64, env strings) compare equal.
func normalize(m map[string]any) (map[string]any, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any)
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// decode decodes a normalized map into Settings.
func decode(m map[string]any) (Settings, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return Settings{}, err
	}
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	return s, nil
}
