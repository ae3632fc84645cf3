package cli

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func TestParseArgs_ValidArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected Config
	}{
		{
			name:     "デフォルト設定",
			args:     []string{},
			expected: Config{LogLevel: DefaultLogLevel},
		},
		{
			name:     "スクリプト指定",
			args:     []string{"count.bna"},
			expected: Config{ScriptPath: "count.bna", LogLevel: DefaultLogLevel},
		},
		{
			name:     "上限指定",
			args:     []string{"--max-steps", "1000", "loop.bna"},
			expected: Config{ScriptPath: "loop.bna", MaxSteps: 1000, LogLevel: DefaultLogLevel},
		},
		{
			name:     "上限指定（短縮形）",
			args:     []string{"-s", "5"},
			expected: Config{MaxSteps: 5, LogLevel: DefaultLogLevel},
		},
		{
			name:     "フラグが位置引数の後ろ",
			args:     []string{"main.bna", "-l", "debug", "--trace"},
			expected: Config{ScriptPath: "main.bna", LogLevel: "debug", Trace: true},
		},
		{
			name:     "ログレベルの大文字",
			args:     []string{"--log-level", "ERROR"},
			expected: Config{LogLevel: "error"},
		},
		{
			name:     "文字コード指定",
			args:     []string{"-e", "shift_jis", "old.bna"},
			expected: Config{ScriptPath: "old.bna", Encoding: "shift_jis", LogLevel: DefaultLogLevel},
		},
		{
			name:     "設定ファイルとシード",
			args:     []string{"--config=run.yaml", "--seed", "42", "a.bna"},
			expected: Config{ScriptPath: "a.bna", ConfigPath: "run.yaml", Seed: 42, LogLevel: DefaultLogLevel},
		},
		{
			name:     "サンプル実行",
			args:     []string{"-x", "fizzbuzz", "-d"},
			expected: Config{Example: "fizzbuzz", DumpProgram: true, LogLevel: DefaultLogLevel},
		},
		{
			name:     "サンプル一覧",
			args:     []string{"--list-examples"},
			expected: Config{ListExamples: true, LogLevel: DefaultLogLevel},
		},
		{
			name:     "検査",
			args:     []string{"--check", "scripts"},
			expected: Config{CheckDir: "scripts", LogLevel: DefaultLogLevel},
		},
		{
			name:     "ヘルプ",
			args:     []string{"-h"},
			expected: Config{ShowHelp: true, LogLevel: DefaultLogLevel},
		},
		{
			name:     "ハイフンで始まるスクリプト名",
			args:     []string{"--", "-odd.bna"},
			expected: Config{ScriptPath: "-odd.bna", LogLevel: DefaultLogLevel},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvLogLevel, "")
			t.Setenv(EnvMaxSteps, "")
			t.Setenv(EnvEncoding, "")

			config, err := ParseArgs(tt.args)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			config.set = nil
			if !reflect.DeepEqual(*config, tt.expected) {
				t.Errorf("config = %+v, want %+v", *config, tt.expected)
			}
		})
	}
}

func TestParseArgs_Environment(t *testing.T) {
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvMaxSteps, "250")
	t.Setenv(EnvEncoding, "sjis")

	config, err := ParseArgs([]string{"a.bna"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.LogLevel != "debug" || config.MaxSteps != 250 || config.Encoding != "sjis" {
		t.Errorf("config = %+v", config)
	}
	for _, name := range []string{"log-level", "max-steps", "encoding"} {
		if !config.IsSet(name) {
			t.Errorf("IsSet(%q) = false", name)
		}
	}

	// フラグは環境変数より優先
	config, err = ParseArgs([]string{"-s", "10", "a.bna"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.MaxSteps != 10 {
		t.Errorf("MaxSteps = %d, want 10", config.MaxSteps)
	}
}

func TestParseArgs_IsSet(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvMaxSteps, "")
	t.Setenv(EnvEncoding, "")

	config, err := ParseArgs([]string{"-s", "3", "a.bna"})
	if err != nil {
		t.Fatal(err)
	}
	if !config.IsSet("max-steps") {
		t.Error("short flag not recorded under its long name")
	}
	if config.IsSet("log-level") || config.IsSet("encoding") {
		t.Error("defaults recorded as set")
	}
}

func TestParseArgs_InvalidArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  string
	}{
		{name: "負の上限", args: []string{"--max-steps", "-10"}},
		{name: "数値でない上限", args: []string{"-s", "many"}},
		{name: "無効なログレベル", args: []string{"--log-level", "invalid"}},
		{name: "無効なログレベル（短縮形）", args: []string{"-l", "trace"}},
		{name: "未知の文字コード", args: []string{"-e", "klingon"}},
		{name: "未知のフラグ", args: []string{"--headless"}},
		{name: "スクリプトが複数", args: []string{"a.bna", "b.bna"}},
		{name: "環境変数の上限が不正", args: []string{}, env: "lots"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvLogLevel, "")
			t.Setenv(EnvMaxSteps, tt.env)
			t.Setenv(EnvEncoding, "")

			_, err := ParseArgs(tt.args)
			if err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestReorderArgs(t *testing.T) {
	got := reorderArgs([]string{"a.bna", "--trace", "-s", "5", "--config=x.yaml"})
	want := "--trace -s 5 --config=x.yaml a.bna"
	if strings.Join(got, " ") != want {
		t.Errorf("reorderArgs = %q, want %q", strings.Join(got, " "), want)
	}
}

func TestPrintHelp(t *testing.T) {
	var buf bytes.Buffer
	PrintHelp(&buf)
	out := buf.String()
	for _, want := range []string{"Usage:", "--max-steps", EnvMaxSteps, "--example"} {
		if !strings.Contains(out, want) {
			t.Errorf("help does not mention %q", want)
		}
	}
}
