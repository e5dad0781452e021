package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/windoze95/chefremy-api/internal/config"
	"github.com/windoze95/chefremy-api/internal/testutil"
)

// runCLI executes the root command with args and a config loader that never
// reads the environment.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommandWithConfig(func() (*config.Config, error) { return testutil.TestConfig(), nil })

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRecipesTable(t *testing.T) {
	out, err := runCLI(t, "recipes")
	if err != nil {
		t.Fatalf("recipes: %v", err)
	}
	for _, want := range []string{"ID", "TITLE", "CATEGORY", "Dinner"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRecipesFilterJSON(t *testing.T) {
	out, err := runCLI(t, "recipes", "--category", "Dinner", "--json")
	if err != nil {
		t.Fatalf("recipes: %v", err)
	}
	var recipes []struct {
		Category string `json:"category"`
	}
	if err := json.Unmarshal([]byte(out), &recipes); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(recipes) == 0 {
		t.Fatal("expected at least one Dinner recipe")
	}
	for _, r := range recipes {
		if r.Category != "Dinner" {
			t.Errorf("category = %q, want Dinner", r.Category)
		}
	}
}

func TestRecipesNoMatch(t *testing.T) {
	out, err := runCLI(t, "recipes", "--query", "zzz-no-such-dish")
	if err != nil {
		t.Fatalf("recipes: %v", err)
	}
	if !strings.Contains(out, "No recipes match") {
		t.Errorf("output = %q", out)
	}
}

func TestAskTimer(t *testing.T) {
	out, err := runCLI(t, "ask", "set", "timer", "for", "5", "minutes")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if !strings.Contains(out, "Remy: Setting a 5 minute timer for you!") {
		t.Errorf("missing reply:\n%s", out)
	}
	if !strings.Contains(out, `Action: timer {"minutes":5}`) {
		t.Errorf("missing action:\n%s", out)
	}
}

func TestAskCookingModeJSON(t *testing.T) {
	out, err := runCLI(t, "ask", "--page", "cooking-mode", "--step", "2", "--json", "I have the garlic")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	var result askResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if result.Intent != "ingredient_check" || result.Source != "basic" {
		t.Errorf("result = %+v", result)
	}
	if result.Action == nil || result.Action.Data["ingredient"] != "garlic" {
		t.Errorf("action = %+v", result.Action)
	}
}

func TestAskFallbackWithoutLLM(t *testing.T) {
	out, err := runCLI(t, "ask", "what wine goes with salmon")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if !strings.Contains(out, "I need an OpenAI API key") {
		t.Errorf("output = %q", out)
	}
}

func TestAskConfigError(t *testing.T) {
	cmd := newRootCommandWithConfig(func() (*config.Config, error) { return nil, errors.New("bad env") })
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"ask", "next step"})
	if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "bad env") {
		t.Errorf("err = %v, want config error", err)
	}
}

func TestAskRequiresCommand(t *testing.T) {
	if _, err := runCLI(t, "ask"); err == nil {
		t.Error("expected an error without a command")
	}
}
