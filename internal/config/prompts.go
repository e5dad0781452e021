package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// PromptPair holds a system and user prompt template.
type PromptPair struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

// SinglePrompt holds a single system prompt (no user template).
type SinglePrompt struct {
	System string `yaml:"system"`
}

// VoicePrompts holds the command router fallback templates.
type VoicePrompts struct {
	General          SinglePrompt `yaml:"general"`
	CookingHint      string       `yaml:"cooking_hint"`
	RecipeSuggestion PromptPair   `yaml:"recipe_suggestion"`
	NutritionExtract SinglePrompt `yaml:"nutrition_extract"`
}

// ConversationPrompts holds overrides sent to the conversational agent.
type ConversationPrompts struct {
	Agent        SinglePrompt `yaml:"agent"`
	FirstMessage string       `yaml:"first_message"`
}

// Prompts is the top-level prompt configuration loaded from YAML.
type Prompts struct {
	Voice        VoicePrompts        `yaml:"voice"`
	CookingQA    SinglePrompt        `yaml:"cooking_qa"`
	Conversation ConversationPrompts `yaml:"conversation"`
}

// LoadPrompts reads and parses a YAML prompt configuration file.
func LoadPrompts(path string) (*Prompts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}

	return ParsePrompts(data)
}

// ParsePrompts parses prompt YAML already held in memory.
func ParsePrompts(data []byte) (*Prompts, error) {
	var prompts Prompts
	if err := yaml.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("failed to parse prompts YAML: %w", err)
	}

	return &prompts, nil
}

// RenderPrompt executes Go template interpolation on a prompt string.
// The data map provides values for placeholders like {{.Context}} and
// {{.Command}}.
func RenderPrompt(tmpl string, data map[string]interface{}) (string, error) {
	t, err := template.New("prompt").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse prompt template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render prompt template: %w", err)
	}

	return strings.TrimSpace(buf.String()), nil
}
