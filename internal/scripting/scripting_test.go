package scripting

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/MJE43/cognitive-gauntlet/internal/board"
	"github.com/MJE43/cognitive-gauntlet/internal/game"
	"github.com/MJE43/cognitive-gauntlet/internal/prompt"
)

func TestNewAgentRequiresRespond(t *testing.T) {
	_, err := NewAgent(context.Background(), "empty", `var x = 1`)
	if err == nil || !strings.Contains(err.Error(), "respond") {
		t.Fatalf("expected missing respond error, got %v", err)
	}

	_, err = NewAgent(context.Background(), "broken", `function respond( {`)
	if err == nil || !strings.Contains(err.Error(), "script execution error") {
		t.Fatalf("expected syntax error, got %v", err)
	}
}

func TestAgentStringReply(t *testing.T) {
	a, err := NewAgent(context.Background(), "echo", `
		function respond(messages) {
			return "saw " + messages.length + " " + messages[messages.length - 1].role;
		}
	`)
	if err != nil {
		t.Fatalf("NewAgent: %v", err)
	}
	reply, err := a.Send(context.Background(), []game.Message{
		{Role: game.RoleSystem, Content: "rules"},
		{Role: game.RoleUser, Content: "TURN 1"},
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if reply.Text != "saw 2 user" {
		t.Errorf("got %q", reply.Text)
	}
	if !reply.Cost.IsZero() || reply.TotalTokens != 0 {
		t.Errorf("scripts should be free: %+v", reply)
	}
}

func TestAgentObjectReplyParsesAsMove(t *testing.T) {
	a, err := NewAgent(context.Background(), "obj", `
		function respond(messages) {
			return { reasoning: "up", avatar: "Epoch", target: moves("Epoch", START)[0] };
		}
	`)
	if err != nil {
		t.Fatalf("NewAgent: %v", err)
	}
	reply, err := a.Send(context.Background(), []game.Message{{Role: game.RoleUser, Content: "TURN 1"}})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	pm := game.ParseMove(reply.Text)
	if !pm.Valid || pm.Target.String() != "A4" {
		t.Errorf("unexpected move %+v from %q", pm, reply.Text)
	}
}

func TestSandboxBlocksGlobals(t *testing.T) {
	for _, name := range []string{"require", "fetch", "eval", "Function"} {
		a, err := NewAgent(context.Background(), name, `function respond() { return typeof `+name+`; }`)
		if err != nil {
			t.Fatalf("NewAgent: %v", err)
		}
		reply, err := a.Send(context.Background(), nil)
		if err != nil {
			t.Fatalf("Send: %v", err)
		}
		if reply.Text != "undefined" {
			t.Errorf("%s should be undefined, got %s", name, reply.Text)
		}
	}
}

func TestRunawayScriptInterrupted(t *testing.T) {
	a, err := NewAgent(context.Background(), "spin", `function respond() { while (true) {} }`)
	if err != nil {
		t.Fatalf("NewAgent: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = a.Send(ctx, nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	// the runtime is usable again after an interrupt
	if _, err := a.vm.Call(context.Background(), "moves", "Scalar", "A1"); err != nil {
		t.Errorf("runtime left interrupted: %v", err)
	}
}

func TestScriptLogs(t *testing.T) {
	a, err := NewAgent(context.Background(), "logger", `
		function respond() { console.log("hello", 42); return ""; }
	`)
	if err != nil {
		t.Fatalf("NewAgent: %v", err)
	}
	a.Send(context.Background(), nil)
	logs := a.Logs()
	if len(logs) != 1 || logs[0].Message != "hello 42" {
		t.Errorf("unexpected logs %+v", logs)
	}
}

func TestBuiltins(t *testing.T) {
	names := Builtins()
	if len(names) == 0 || names[0] != "baseline" {
		t.Fatalf("unexpected builtins %v", names)
	}
	if _, err := Builtin("nope"); err == nil {
		t.Error("expected error for unknown builtin")
	}
}

func TestBaselinePlaysAGame(t *testing.T) {
	src, err := Builtin("baseline")
	if err != nil {
		t.Fatal(err)
	}
	a, err := NewAgent(context.Background(), "baseline", src)
	if err != nil {
		t.Fatalf("NewAgent: %v", err)
	}

	e, err := game.New(game.Config{Transport: a, Prompts: prompt.Default, Model: "script/baseline"})
	if err != nil {
		t.Fatal(err)
	}
	res := e.PlaySingle(context.Background(), board.Generate(42))
	s := res.Single
	if !s.Complete || s.Aborted {
		t.Fatalf("expected a finished game, got %+v", s.Outcome())
	}
	if s.InvalidResponses != 0 {
		t.Errorf("baseline replies should always parse, got %d invalid", s.InvalidResponses)
	}
	if s.Moves[0].Avatar.String() == "" || s.Moves[0].To == nil {
		t.Errorf("first move not recorded: %+v", s.Moves[0])
	}
}
