package client

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func runShell(t *testing.T, input string) (string, *Session, *fakeServer) {
	t.Helper()
	api, session, f := newTestAPI(t)
	var out bytes.Buffer
	sh := NewShell(api, session, NewPrompter(strings.NewReader(input), &out), &out)
	if err := sh.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return out.String(), session, f
}

func TestShell_Help(t *testing.T) {
	out, _, _ := runShell(t, "help\nexit\n")

	for _, cmd := range []string{"register", "login", "logout", "list", "add", "done", "undo", "rename", "delete"} {
		if !strings.Contains(out, cmd) {
			t.Errorf("help output missing %q", cmd)
		}
	}
	if !strings.Contains(out, "Bye") {
		t.Error("exit should print Bye")
	}
}

func TestShell_TaskFlow(t *testing.T) {
	input := strings.Join([]string{
		"login", "alice", "pw",
		"add Buy milk",
		"done t-1",
		"rename t-1 Buy eggs",
		"list",
		"undo t-1",
		"delete t-1",
		"list",
		"exit",
	}, "\n") + "\n"

	out, session, _ := runShell(t, input)

	for _, want := range []string{
		"Logged in as alice",
		"Added t-1",
		"[x] t-1  Buy milk",
		"[x] t-1  Buy eggs",
		"[ ] t-1  Buy eggs",
		"Task deleted",
		"No tasks",
		"taskkeeper(alice)> ",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
	if _, tok := session.Current(); tok != "good-token" {
		t.Errorf("token = %q; want stored", tok)
	}
}

func TestShell_RequiresLogin(t *testing.T) {
	out, _, _ := runShell(t, "add something\nexit\n")

	if !strings.Contains(out, "Please log in first.") {
		t.Errorf("output = %q", out)
	}
}

func TestShell_RevokedTokenClearsSession(t *testing.T) {
	api, session, _ := newTestAPI(t)
	if err := session.Set("alice", "revoked-token"); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	sh := NewShell(api, session, NewPrompter(strings.NewReader(""), &out), &out)

	if !sh.Exec(context.Background(), "delete t-1") {
		t.Fatal("Exec should continue after an error")
	}
	if !strings.Contains(out.String(), "Please log in again.") {
		t.Errorf("output = %q", out.String())
	}
	if _, tok := session.Current(); tok != "" {
		t.Errorf("token = %q; want cleared", tok)
	}
}

func TestShell_LoginFailureAndUsage(t *testing.T) {
	out, _, _ := runShell(t, "login\nalice\nwrong\nrename t-1\ndone\nfrobnicate\nexit\n")

	for _, want := range []string{
		"invalid username or password",
		"Usage: rename <id> <name>",
		"Usage: done <id>",
		"Unknown command",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestShell_EndOfInputStops(t *testing.T) {
	out, _, _ := runShell(t, "list\n")

	if !strings.Contains(out, "No tasks") {
		t.Errorf("output = %q", out)
	}
}

func TestShell_RegisterAndLogout(t *testing.T) {
	out, session, _ := runShell(t, "register\nbob\npw\nlogin\nbob\npw\nlogout\nexit\n")

	if !strings.Contains(out, "Registered bob") || !strings.Contains(out, "Logged out") {
		t.Errorf("output = %q", out)
	}
	if _, tok := session.Current(); tok != "" {
		t.Errorf("token = %q after logout", tok)
	}
}
