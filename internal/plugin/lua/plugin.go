package lua

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"

	"github.com/nahidnstu12/team-docs-sub001/internal/command"
	"github.com/nahidnstu12/team-docs-sub001/internal/palette"
	"github.com/nahidnstu12/team-docs-sub001/internal/state"
	"github.com/nahidnstu12/team-docs-sub001/internal/toggle"
)

// ModuleName is the module plugins require to register items.
const ModuleName = "pagedit"

// SourcePrefix prefixes palette.Item.Source for plugin items.
const SourcePrefix = "plugin:"

// Option configures plugin loading.
type Option func(*loader)

// WithLogger sets the logger plugins write to through pagedit.log and
// print.
func WithLogger(l zerolog.Logger) Option {
	return func(ld *loader) { ld.logger = l }
}

// WithCommands sets the registry pagedit exec resolves names in. It
// defaults to the built-in commands plus the toggle commands.
func WithCommands(r *command.Registry) Option {
	return func(ld *loader) { ld.commands = r }
}

// WithTimeout bounds each call into the plugin.
func WithTimeout(d time.Duration) Option {
	return func(ld *loader) { ld.stateOpts = append(ld.stateOpts, WithExecutionTimeout(d)) }
}

type loader struct {
	logger    zerolog.Logger
	commands  *command.Registry
	stateOpts []StateOption
}

func newLoader(opts []Option) *loader {
	ld := &loader{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(ld)
	}
	if ld.commands == nil {
		ld.commands = command.Builtin()
		toggle.New().Register(ld.commands)
	}
	return ld
}

// Plugin is one loaded Lua file and the palette items it registered.
type Plugin struct {
	name     string
	path     string
	state    *State
	commands *command.Registry
	logger   zerolog.Logger
	items    []palette.Item
}

// Load runs the plugin file at path. The plugin registers items by calling
// pagedit.item{...} from its top-level chunk.
func Load(ctx context.Context, path string, opts ...Option) (*Plugin, error) {
	return newLoader(opts).load(ctx, path)
}

func (ld *loader) load(ctx context.Context, path string) (*Plugin, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	p := &Plugin{
		name:     name,
		path:     path,
		state:    NewState(ld.stateOpts...),
		commands: ld.commands,
		logger:   ld.logger.With().Str("plugin", name).Logger(),
	}
	p.state.L.PreloadModule(ModuleName, p.module)
	p.state.L.SetGlobal("print", p.state.L.NewFunction(p.print))

	if err := p.state.DoFile(ctx, path); err != nil {
		_ = p.state.Close()
		return nil, &PluginError{Plugin: name, Err: err}
	}
	if len(p.items) == 0 {
		p.logger.Warn().Str("path", path).Msg("plugin registered no palette items")
	}
	return p, nil
}

// LoadDir loads every *.lua file in dir, in name order. Plugins that fail
// to load are skipped and their errors joined into the returned error.
func LoadDir(ctx context.Context, dir string, opts ...Option) ([]*Plugin, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.lua"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	ld := newLoader(opts)
	var (
		plugins []*Plugin
		errs    []error
	)
	for _, path := range paths {
		p, err := ld.load(ctx, path)
		if err != nil {
			ld.logger.Error().Err(err).Str("path", path).Msg("plugin not loaded")
			errs = append(errs, err)
			continue
		}
		ld.logger.Info().Str("plugin", p.name).Int("items", len(p.items)).Msg("plugin loaded")
		plugins = append(plugins, p)
	}
	return plugins, errors.Join(errs...)
}

// Items collects the palette items of plugins.
func Items(plugins []*Plugin) []palette.Item {
	var out []palette.Item
	for _, p := range plugins {
		out = append(out, p.Items()...)
	}
	return out
}

// Name returns the plugin name, the file name without extension.
func (p *Plugin) Name() string { return p.name }

// Path returns the plugin file.
func (p *Plugin) Path() string { return p.path }

// Items returns the registered palette items.
func (p *Plugin) Items() []palette.Item {
	return append([]palette.Item(nil), p.items...)
}

// Close releases the Lua state. Item commands fail afterwards.
func (p *Plugin) Close() error { return p.state.Close() }

func (p *Plugin) module(L *lua.LState) int {
	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"item": p.registerItem,
		"log":  p.print,
	})
	L.Push(mod)
	return 1
}

func (p *Plugin) print(L *lua.LState) int {
	parts := make([]string, L.GetTop())
	for i := range parts {
		parts[i] = L.ToStringMeta(L.Get(i + 1)).String()
	}
	p.logger.Info().Msg(strings.Join(parts, "\t"))
	return 0
}

// registerItem implements pagedit.item{id=..., title=..., keywords=...,
// group=..., subtitle=..., icon=..., run=function(ed) ... end}.
func (p *Plugin) registerItem(L *lua.LState) int {
	t := L.CheckTable(1)
	id, _ := tableString(L, t, "id")
	title, _ := tableString(L, t, "title")
	run, ok := tableFunc(L, t, "run")
	if id == "" || title == "" || !ok {
		L.RaiseError("%v: id, title and run are required", ErrBadItem)
		return 0
	}
	item := palette.Item{
		ID:       id,
		Title:    title,
		Keywords: tableStrings(L, t, "keywords"),
		Source:   SourcePrefix + p.name,
		Command:  p.command(id, run),
	}
	item.Subtitle, _ = tableString(L, t, "subtitle")
	item.Icon, _ = tableString(L, t, "icon")
	if item.Group, ok = tableString(L, t, "group"); !ok {
		item.Group = "Plugins"
	}
	if len(item.Keywords) == 0 {
		item.Keywords = []string{strings.ToLower(title)}
	}
	if err := item.Validate(); err != nil {
		L.RaiseError("%v", err)
		return 0
	}
	p.items = append(p.items, item)
	return 0
}

// command adapts a Lua run function. A dry run reports the item as
// applicable without calling into Lua. The function refuses by returning
// false or raising an error.
func (p *Plugin) command(id string, run *lua.LFunction) command.Command {
	return func(s *state.State, dispatch command.Dispatch) bool {
		if dispatch == nil {
			return true
		}
		inv := &invocation{plugin: p, state: s, dispatch: dispatch}
		var applied bool
		err := p.state.Run(context.Background(), func(L *lua.LState) error {
			if err := L.CallByParam(lua.P{Fn: run, NRet: 1, Protect: true}, inv.table(L)); err != nil {
				return err
			}
			ret := L.Get(-1)
			L.Pop(1)
			applied = ret == lua.LNil || truthy(ret)
			return nil
		})
		if err != nil {
			p.logger.Error().Err(err).Str("item", id).Msg("plugin item failed")
			return false
		}
		return applied
	}
}

// invocation is the editor handle passed to a run function. Each call
// dispatches immediately and later calls see the result.
type invocation struct {
	plugin   *Plugin
	state    *state.State
	dispatch command.Dispatch
}

func (inv *invocation) table(L *lua.LState) *lua.LTable {
	return L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"insert":    inv.insert,
		"exec":      inv.exec,
		"text":      inv.text,
		"block":     inv.block,
		"selection": inv.selection,
	})
}

func (inv *invocation) run(cmd command.Command) bool {
	applied := false
	cmd(inv.state, func(tr *state.Transaction) *state.State {
		applied = true
		next := inv.dispatch(tr)
		if next != nil {
			inv.state = next
		}
		return next
	})
	return applied
}

func (inv *invocation) insert(L *lua.LState) int {
	L.Push(lua.LBool(inv.run(command.InsertText(L.CheckString(1)))))
	return 1
}

func (inv *invocation) exec(L *lua.LState) int {
	name := L.CheckString(1)
	cmd, ok := inv.plugin.commands.Get(name)
	if !ok {
		L.RaiseError("unknown command %q", name)
		return 0
	}
	L.Push(lua.LBool(inv.run(cmd)))
	return 1
}

func (inv *invocation) text(L *lua.LState) int {
	doc := inv.state.Doc()
	rp, ok := command.Textblock(doc, inv.state.Selection().Head)
	if !ok {
		L.Push(lua.LString(""))
		return 1
	}
	L.Push(lua.LString(doc.TextContent(rp.Parent())))
	return 1
}

func (inv *invocation) block(L *lua.LState) int {
	doc := inv.state.Doc()
	rp, ok := command.Textblock(doc, inv.state.Selection().Head)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(doc.Kind(rp.Parent()).String()))
	return 1
}

func (inv *invocation) selection(L *lua.LState) int {
	sel := inv.state.Selection()
	L.Push(lua.LNumber(sel.From()))
	L.Push(lua.LNumber(sel.To()))
	return 2
}

// String describes the plugin for logs.
func (p *Plugin) String() string {
	return fmt.Sprintf("%s (%d items)", p.name, len(p.items))
}
