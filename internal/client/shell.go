package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/atinyakov/TaskKeeper/internal/models"
)

const helpText = `Available commands:
  register            create an account
  login               log in and store the token
  logout              revoke the token and forget it
  list                show all tasks
  add <name>          create a task
  done <id>           mark a task complete
  undo <id>           mark a task incomplete
  rename <id> <name>  rename a task
  delete <id>         delete a task
  help                show this help
  exit                quit`

// Shell is the interactive task shell.
type Shell struct {
	api     *API
	session *Session
	prompt  *Prompter
	out     io.Writer
}

// NewShell builds a shell over api, reading commands through prompt.
func NewShell(api *API, session *Session, prompt *Prompter, out io.Writer) *Shell {
	return &Shell{api: api, session: session, prompt: prompt, out: out}
}

// Run reads and executes commands until exit, end of input or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := s.prompt.Line(s.promptText())
		if errors.Is(err, ErrInputClosed) {
			return nil
		}
		if err != nil {
			return err
		}
		if line == "" {
			continue
		}
		if !s.Exec(ctx, line) {
			return nil
		}
	}
}

// Exec runs one command line and reports whether the shell should continue.
func (s *Shell) Exec(ctx context.Context, line string) bool {
	cmd, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)

	var err error
	switch cmd {
	case "help":
		fmt.Fprintln(s.out, helpText)
	case "exit":
		fmt.Fprintln(s.out, "Bye")
		return false
	case "register":
		err = s.register(ctx)
	case "login":
		err = s.login(ctx)
	case "logout":
		if err = s.api.Logout(ctx); err == nil {
			fmt.Fprintln(s.out, "Logged out")
		}
	case "list":
		err = s.list(ctx)
	case "add":
		var task models.Task
		if task, err = s.api.CreateTask(ctx, rest); err == nil {
			fmt.Fprintf(s.out, "Added %s\n", task.ID)
		}
	case "done", "undo":
		if rest == "" {
			fmt.Fprintf(s.out, "Usage: %s <id>\n", cmd)
			return true
		}
		var task models.Task
		if task, err = s.api.UpdateTask(ctx, rest, cmd == "done", ""); err == nil {
			printTask(s.out, task)
		}
	case "rename":
		id, name, _ := strings.Cut(rest, " ")
		name = strings.TrimSpace(name)
		if id == "" || name == "" {
			fmt.Fprintln(s.out, "Usage: rename <id> <name>")
			return true
		}
		err = s.rename(ctx, id, name)
	case "delete":
		if rest == "" {
			fmt.Fprintln(s.out, "Usage: delete <id>")
			return true
		}
		if err = s.api.DeleteTask(ctx, rest); err == nil {
			fmt.Fprintln(s.out, "Task deleted")
		}
	default:
		fmt.Fprintln(s.out, "Unknown command. Type 'help' for a list of commands.")
	}

	if err != nil {
		s.report(err)
	}
	return true
}

func (s *Shell) register(ctx context.Context) error {
	username, password, err := s.prompt.Credentials()
	if err != nil {
		return err
	}
	user, err := s.api.Register(ctx, username, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Registered %s. Use 'login' to start a session.\n", user.Username)
	return nil
}

func (s *Shell) login(ctx context.Context) error {
	username, password, err := s.prompt.Credentials()
	if err != nil {
		return err
	}
	if err := s.api.Login(ctx, username, password); err != nil {
		if IsUnauthorized(err) {
			return errors.New("invalid username or password")
		}
		return err
	}
	fmt.Fprintf(s.out, "Logged in as %s\n", username)
	return nil
}

func (s *Shell) list(ctx context.Context) error {
	tasks, err := s.api.ListTasks(ctx)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Fprintln(s.out, "No tasks")
		return nil
	}
	for _, t := range tasks {
		printTask(s.out, t)
	}
	return nil
}

// rename keeps the task's completion state, which the update call overwrites.
func (s *Shell) rename(ctx context.Context, id, name string) error {
	tasks, err := s.api.ListTasks(ctx)
	if err != nil {
		return err
	}
	isComplete := false
	for _, t := range tasks {
		if strings.EqualFold(t.ID, id) {
			isComplete = t.IsComplete
			break
		}
	}
	task, err := s.api.UpdateTask(ctx, id, isComplete, name)
	if err != nil {
		return err
	}
	printTask(s.out, task)
	return nil
}

func (s *Shell) promptText() string {
	if username, _ := s.session.Current(); username != "" {
		return "taskkeeper(" + username + ")> "
	}
	return "taskkeeper> "
}

func (s *Shell) report(err error) {
	switch {
	case errors.Is(err, ErrNotLoggedIn):
		fmt.Fprintln(s.out, "Please log in first.")
	case IsUnauthorized(err):
		fmt.Fprintln(s.out, "Session expired or revoked. Please log in again.")
	default:
		fmt.Fprintln(s.out, "Error:", err)
	}
}

func printTask(w io.Writer, t models.Task) {
	mark := " "
	if t.IsComplete {
		mark = "x"
	}
	fmt.Fprintf(w, "[%s] %s  %s\n", mark, t.ID, t.Name)
}
