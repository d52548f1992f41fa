// Package cmdtest runs commands through a fresh root command in tests.
package cmdtest

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"fjacquet/sms-ledger/cmd/parse"
	"fjacquet/sms-ledger/cmd/root"
)

// Run executes args against a root command carrying sub. It returns
// standard output and the command error.
func Run(t *testing.T, sub *cobra.Command, args ...string) (string, error) {
	t.Helper()
	cmd := root.NewCommand()
	cmd.AddCommand(sub)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)
	err := root.Execute(context.Background(), cmd)
	return out.String(), err
}

// TempDB changes into a temporary directory and returns a database path in it.
func TempDB(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	Chdir(t, dir)
	return filepath.Join(dir, "ledger.db")
}

// Store parses and stores each message for userID in the database at db.
func Store(t *testing.T, db string, userID string, messages ...string) {
	t.Helper()
	for _, msg := range messages {
		if _, err := Run(t, parse.NewCommand(), "parse", "--db", db, "--user", userID, msg); err != nil {
			t.Fatalf("storing %q: %v", msg, err)
		}
	}
}

// Chdir changes the working directory to dir for the duration of the test,
// restoring the previous directory on cleanup.
func Chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
