package scripting

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/dop251/goja"

	"github.com/MJE43/cognitive-gauntlet/internal/game"
)

//go:embed scripts/*.js
var builtinFS embed.FS

// Builtins lists the names of the embedded scripts.
func Builtins() []string {
	entries, _ := fs.ReadDir(builtinFS, "scripts")
	var out []string
	for _, e := range entries {
		out = append(out, strings.TrimSuffix(e.Name(), ".js"))
	}
	sort.Strings(out)
	return out
}

// Builtin returns the source of an embedded script.
func Builtin(name string) (string, error) {
	b, err := builtinFS.ReadFile(path.Join("scripts", name+".js"))
	if err != nil {
		return "", fmt.Errorf("scripting: no builtin script %q (have %s)", name, strings.Join(Builtins(), ", "))
	}
	return string(b), nil
}

// Agent is a scripted player usable wherever a model transport is.
type Agent struct {
	name string
	vm   *VM
}

var _ game.Transport = (*Agent)(nil)

// NewAgent compiles source and checks it defines respond(messages).
func NewAgent(ctx context.Context, name, source string) (*Agent, error) {
	vm := NewVM()
	if err := vm.Execute(ctx, source); err != nil {
		return nil, err
	}
	if !vm.HasFunc("respond") {
		return nil, fmt.Errorf("scripting: %s does not define respond(messages)", name)
	}
	return &Agent{name: name, vm: vm}, nil
}

// Name returns the label the agent was created with
func (a *Agent) Name() string { return a.name }

// Logs returns what the script has logged so far.
func (a *Agent) Logs() []LogEntry { return a.vm.Logs() }

// Send implements game.Transport. Strings are returned as-is; objects are
// JSON encoded. Scripts cost nothing and report no tokens.
func (a *Agent) Send(ctx context.Context, messages []game.Message) (game.Reply, error) {
	msgs := make([]map[string]any, len(messages))
	for i, m := range messages {
		msgs[i] = map[string]any{"role": string(m.Role), "content": m.Content}
	}

	start := time.Now()
	v, err := a.vm.Call(ctx, "respond", msgs)
	if err != nil {
		return game.Reply{}, fmt.Errorf("script %s: %w", a.name, err)
	}

	var text string
	switch {
	case v == nil || goja.IsUndefined(v) || goja.IsNull(v):
	case isObject(v):
		if text, err = a.vm.Stringify(v); err != nil {
			return game.Reply{}, fmt.Errorf("script %s: encode reply: %w", a.name, err)
		}
	default:
		text = v.String()
	}
	return game.Reply{Text: text, Latency: time.Since(start)}, nil
}

func isObject(v goja.Value) bool {
	_, ok := v.(*goja.Object)
	return ok
}
