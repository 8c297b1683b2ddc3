package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/insightdelivered/receipt-savings-parser/internal/api"
	"github.com/insightdelivered/receipt-savings-parser/internal/models"
)

const chickenReceipt = "イオン 東雲店\n2024年10月14日\n553 国産若鶏もも肉\n*800\n値引 10%\n-80\n合計 ¥720"

// resetFlags restores every flag to its default, since cobra keeps flag
// values between executions of the same command tree.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func executeCommand(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("RECEIPT_LOG_LEVEL", "error")
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeReceipt(t *testing.T, name, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatalf("write receipt: %v", err)
	}
	return path
}

func TestParseCommand_JSON(t *testing.T) {
	path := writeReceipt(t, "chicken.txt", chickenReceipt)

	stdout, _, err := executeCommand(t, "", "parse", "--discounts", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var out []parsedReceipt
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("failed to decode output %q: %v", stdout, err)
	}
	if len(out) != 1 || out[0].Result == nil {
		t.Fatalf("unexpected output: %+v", out)
	}
	res := out[0].Result
	if res.Method != models.StrategyDiscount {
		t.Errorf("method: got %q", res.Method)
	}
	if len(res.Items) != 1 || res.Items[0].Amount != 80 || res.Items[0].ProductName != "国産若鶏もも肉" {
		t.Errorf("items: got %+v", res.Items)
	}
}

func TestParseCommand_Stdin(t *testing.T) {
	stdout, _, err := executeCommand(t, "セブン-イレブン 渋谷2丁目店\n合計 ¥500", "parse", "-")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var out []parsedReceipt
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	if out[0].Source != "-" || out[0].Result.Method != models.StrategyFallback {
		t.Errorf("unexpected output: %+v", out[0])
	}
}

func TestParseCommand_CSVToFile(t *testing.T) {
	a := writeReceipt(t, "a.txt", chickenReceipt)
	b := writeReceipt(t, "b.txt", "お会計\nりんご 298\nバナナ 158円")
	outPath := filepath.Join(t.TempDir(), "out.csv")

	if _, _, err := executeCommand(t, "", "parse", "--format", "csv", "-o", outPath, a, b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	content := string(data)
	if !strings.HasPrefix(content, "# Receipts,2\n") {
		t.Errorf("expected receipt count row, got %q", content)
	}
	if !strings.Contains(content, "りんご,298") {
		t.Errorf("expected legacy items in output: %q", content)
	}
}

func TestParseCommand_Errors(t *testing.T) {
	good := writeReceipt(t, "good.txt", chickenReceipt)
	missing := filepath.Join(t.TempDir(), "missing.txt")

	tests := []struct {
		name       string
		args       []string
		wantErr    string
		wantStderr string
	}{
		{"no files", []string{"parse"}, "no receipts given", ""},
		{"bad format", []string{"parse", "--format", "pdf", good}, "unsupported output format", ""},
		{"xlsx to stdout", []string{"parse", "--format", "xlsx", good}, "needs --output", ""},
		{"missing file", []string{"parse", good, missing}, "1 of 2 receipts failed", "Error processing " + missing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, err := executeCommand(t, "", tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
			if tt.wantStderr != "" && !strings.Contains(stderr, tt.wantStderr) {
				t.Errorf("stderr %q does not contain %q", stderr, tt.wantStderr)
			}
		})
	}
}

func TestParseCommand_ImageWithoutOCR(t *testing.T) {
	// not a decodable image either way
	path := writeReceipt(t, "photo.jpg", "not really a jpeg")

	stdout, _, err := executeCommand(t, "", "parse", path)
	if err == nil {
		t.Fatal("expected an error")
	}
	var out []parsedReceipt
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	if out[0].Error == "" || out[0].Result != nil {
		t.Errorf("expected an error entry, got %+v", out[0])
	}
}

func TestConfigShow(t *testing.T) {
	t.Setenv("RECEIPT_SERVER_ADDR", ":7070")

	stdout, _, err := executeCommand(t, "", "config", "show")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"# no config file found", ":7070", "language: jpn+eng", "workers: 4"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := executeCommand(t, "", "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "receipt-savings v" + api.Version; !strings.Contains(stdout, want) {
		t.Errorf("got %q, want %q", stdout, want)
	}
}
