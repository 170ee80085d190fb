package cli

import (
	"bytes"
	"testing"
)

// executeCommand runs a command with the given args and captures output.
func executeCommand(args ...string) (string, error) {
	root := NewRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestRootHelp(t *testing.T) {
	_, err := executeCommand("--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGlobalFlags(t *testing.T) {
	root := NewRootCmd()

	formatFlag := root.PersistentFlags().Lookup("format")
	if formatFlag == nil {
		t.Fatal("expected --format flag to exist")
	}
	if formatFlag.DefValue != "text" {
		t.Errorf("expected --format default 'text', got %q", formatFlag.DefValue)
	}

	if root.PersistentFlags().Lookup("db") == nil {
		t.Fatal("expected --db flag to exist")
	}

	driverFlag := root.PersistentFlags().Lookup("driver")
	if driverFlag == nil {
		t.Fatal("expected --driver flag to exist")
	}
	if driverFlag.DefValue != "sqlite3" {
		t.Errorf("expected --driver default 'sqlite3', got %q", driverFlag.DefValue)
	}
}

func TestSubcommandsRegistered(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"serve", "import", "upload", "template", "history", "properties", "user", "login", "logout", "status", "version"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered", name)
		}
	}
}
