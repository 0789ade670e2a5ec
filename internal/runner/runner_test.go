package runner

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/devmeet/devmeet/internal/infrastructure/configs"
)

func newTestService() *Service {
	return NewService(configs.RunnerConfig{}, nil)
}

func TestRunRejectsUnsupportedLanguage(t *testing.T) {
	s := newTestService()

	_, err := s.Run(context.Background(), Request{Code: "print(1)", Language: "python"})
	if !errors.Is(err, ErrUnsupportedLanguage) {
		t.Errorf("expected ErrUnsupportedLanguage, got %v", err)
	}
}

func TestRunRejectsEmptyCode(t *testing.T) {
	s := newTestService()

	_, err := s.Run(context.Background(), Request{Code: "   ", Language: LanguageJavaScript})
	if err == nil {
		t.Error("expected an error for empty code")
	}
}

func TestRunJavaScript(t *testing.T) {
	if _, err := exec.LookPath("node"); err != nil {
		t.Skip("node not installed")
	}

	s := newTestService()

	result, err := s.Run(context.Background(), Request{
		Code:     `console.log("hello from js")`,
		Language: LanguageJavaScript,
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.ExitCode != 0 {
		t.Fatalf("exit code = %d, stderr = %s", result.ExitCode, result.Stderr)
	}
	if !strings.Contains(result.Stdout, "hello from js") {
		t.Errorf("unexpected stdout: %q", result.Stdout)
	}
}

func TestRunJavaScriptReportsFailure(t *testing.T) {
	if _, err := exec.LookPath("node"); err != nil {
		t.Skip("node not installed")
	}

	s := newTestService()

	result, err := s.Run(context.Background(), Request{
		Code:     `throw new Error("boom")`,
		Language: LanguageJavaScript,
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.ExitCode == 0 {
		t.Error("expected a non-zero exit code")
	}
	if !strings.Contains(result.Stderr, "boom") {
		t.Errorf("unexpected stderr: %q", result.Stderr)
	}
}

func TestRunCPPWithStdin(t *testing.T) {
	if _, err := exec.LookPath("g++"); err != nil {
		t.Skip("g++ not installed")
	}

	s := newTestService()

	code := `#include <iostream>
#include <string>
int main() {
    std::string name;
    std::cin >> name;
    std::cout << "hi " << name << std::endl;
    return 0;
}`

	result, err := s.Run(context.Background(), Request{
		Code:     code,
		Language: LanguageCPP,
		Stdin:    "interviewer",
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.ExitCode != 0 {
		t.Fatalf("exit code = %d, stderr = %s", result.ExitCode, result.Stderr)
	}
	if !strings.Contains(result.Stdout, "hi interviewer") {
		t.Errorf("unexpected stdout: %q", result.Stdout)
	}
}

func TestRunCPPSurfacesCompileErrors(t *testing.T) {
	if _, err := exec.LookPath("g++"); err != nil {
		t.Skip("g++ not installed")
	}

	s := newTestService()

	result, err := s.Run(context.Background(), Request{
		Code:     "int main( { return 0; }",
		Language: LanguageCPP,
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.ExitCode == 0 {
		t.Error("expected the compile failure to surface as a non-zero exit")
	}
	if result.Stderr == "" {
		t.Error("expected compile diagnostics on stderr")
	}
}
