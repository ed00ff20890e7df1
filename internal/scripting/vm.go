// Package scripting runs JavaScript players. A script defines
// respond(messages) and returns the reply text; the harness drives it exactly
// like a remote model, which makes offline baselines and rule tests cheap.
package scripting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"

	"github.com/MJE43/cognitive-gauntlet/internal/avatar"
	"github.com/MJE43/cognitive-gauntlet/internal/board"
)

// LogEntry represents a single log message from the script.
type LogEntry struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
}

// ErrTimeout is returned when a script call runs past its budget.
var ErrTimeout = errors.New("script timed out")

// VM wraps a goja runtime with sandbox restrictions and injected helpers.
type VM struct {
	runtime *goja.Runtime
	mu      sync.Mutex

	logs    []LogEntry
	logsMu  sync.Mutex
	maxLogs int
}

const (
	scriptInitTimeout = 2 * time.Second
	scriptCallTimeout = 1 * time.Second
)

// NewVM creates a sandboxed goja runtime with helpers injected.
func NewVM() *VM {
	vm := &VM{
		runtime: goja.New(),
		maxLogs: 500,
	}
	vm.injectGlobalFunctions()
	injectConstants(vm.runtime)
	return vm
}

// injectGlobalFunctions registers log, console.log and the reply builders.
func (vm *VM) injectGlobalFunctions() {
	vm.runtime.Set("log", func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}
		vm.appendLog(strings.Join(parts, " "))
		return goja.Undefined()
	})

	console := vm.runtime.NewObject()
	console.Set("log", vm.runtime.Get("log"))
	vm.runtime.Set("console", console)

	// moves(avatar, from) lists legal destinations ignoring voids, which
	// scripts cannot see.
	vm.runtime.Set("moves", func(call goja.FunctionCall) goja.Value {
		a, err := avatar.Parse(call.Argument(0).String())
		if err != nil {
			panic(vm.runtime.NewTypeError(err.Error()))
		}
		c, err := board.ParseCoordinate(call.Argument(1).String())
		if err != nil {
			panic(vm.runtime.NewTypeError(err.Error()))
		}
		out := []any{}
		for _, to := range a.Moves(c, openTerrain{}) {
			out = append(out, to.String())
		}
		return vm.runtime.NewArray(out...)
	})

	vm.runtime.Set("require", goja.Undefined())
	vm.runtime.Set("fetch", goja.Undefined())
	vm.runtime.Set("XMLHttpRequest", goja.Undefined())
	vm.runtime.Set("eval", goja.Undefined())
	vm.runtime.Set("Function", goja.Undefined())
}

type openTerrain struct{}

func (openTerrain) IsVoid(board.Coordinate) bool { return false }

// injectConstants exposes board geometry to scripts.
func injectConstants(rt *goja.Runtime) {
	rt.Set("START", board.Start.String())
	rt.Set("GOAL", board.Goal.String())
	rt.Set("AVATARS", avatar.Names(avatar.All))
}

func (vm *VM) appendLog(msg string) {
	vm.logsMu.Lock()
	defer vm.logsMu.Unlock()
	if len(vm.logs) >= vm.maxLogs {
		vm.logs = vm.logs[1:]
	}
	vm.logs = append(vm.logs, LogEntry{Time: time.Now(), Message: msg})
}

// Execute runs script source once to register respond().
func (vm *VM) Execute(ctx context.Context, source string) error {
	return vm.runWithTimeout(ctx, scriptInitTimeout, func() error {
		vm.mu.Lock()
		defer vm.mu.Unlock()
		if _, err := vm.runtime.RunString(source); err != nil {
			return fmt.Errorf("script execution error: %w", err)
		}
		return nil
	})
}

// Call invokes the global function name with args converted to JS values.
func (vm *VM) Call(ctx context.Context, name string, args ...any) (goja.Value, error) {
	var out goja.Value
	err := vm.runWithTimeout(ctx, scriptCallTimeout, func() error {
		vm.mu.Lock()
		defer vm.mu.Unlock()

		fn := vm.runtime.Get(name)
		if fn == nil || goja.IsUndefined(fn) || goja.IsNull(fn) {
			return fmt.Errorf("%s() function is not defined", name)
		}
		callable, ok := goja.AssertFunction(fn)
		if !ok {
			return fmt.Errorf("%s is not a function", name)
		}

		vals := make([]goja.Value, len(args))
		for i, a := range args {
			vals[i] = vm.runtime.ToValue(a)
		}
		result, err := callable(goja.Undefined(), vals...)
		if err != nil {
			return fmt.Errorf("%s() error: %w", name, err)
		}
		out = result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// HasFunc returns true if the script defined a global function name.
func (vm *VM) HasFunc(name string) bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	_, ok := goja.AssertFunction(vm.runtime.Get(name))
	return ok
}

// Stringify renders v as JSON using the runtime's own JSON.stringify.
func (vm *VM) Stringify(v goja.Value) (string, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	stringify, ok := goja.AssertFunction(vm.runtime.Get("JSON").ToObject(vm.runtime).Get("stringify"))
	if !ok {
		return "", errors.New("JSON.stringify unavailable")
	}
	out, err := stringify(goja.Undefined(), v)
	if err != nil {
		return "", err
	}
	return out.String(), nil
}

// Logs returns a copy of the current log buffer.
func (vm *VM) Logs() []LogEntry {
	vm.logsMu.Lock()
	defer vm.logsMu.Unlock()
	out := make([]LogEntry, len(vm.logs))
	copy(out, vm.logs)
	return out
}

func (vm *VM) runWithTimeout(ctx context.Context, timeout time.Duration, fn func() error) error {
	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var cause error
	select {
	case err := <-done:
		return err
	case <-timer.C:
		cause = ErrTimeout
	case <-ctx.Done():
		cause = ctx.Err()
	}

	// interrupt a runaway script
	vm.runtime.Interrupt(cause.Error())
	select {
	case <-done:
	case <-time.After(200 * time.Millisecond):
	}
	vm.runtime.ClearInterrupt()
	return cause
}
