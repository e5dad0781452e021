// Package voice turns spoken or typed cooking commands into replies and
// session actions, and bridges the hosted conversational agent.
package voice

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/windoze95/chefremy-api/internal/ai"
	"github.com/windoze95/chefremy-api/internal/config"
	"github.com/windoze95/chefremy-api/internal/logger"
	"github.com/windoze95/chefremy-api/internal/metrics"
	"github.com/windoze95/chefremy-api/internal/util"
	"go.uber.org/zap"
)

// TimerClarifyReply asks for a duration when a timer request has none.
const TimerClarifyReply = "How long would you like me to set the timer for? Please specify the number of minutes."

// Pages the client can report in CommandContext.CurrentPage.
const (
	PageHome        = "home"
	PageCookingMode = "cooking-mode"
)

// Action types.
const (
	ActionNavigate     = "navigate"
	ActionTimer        = "timer"
	ActionRead         = "read"
	ActionIngredient   = "ingredient"
	ActionRecipeSearch = "recipe_search"
	ActionStartCooking = "start_cooking"
)

// Replies used by more than one path.
const (
	ErrorReply        = "I'm sorry, I encountered an error. Please try again."
	NoLLMReply        = "I need an OpenAI API key to process complex commands. Please configure it in the environment."
	ThinkingFailReply = "I'm having trouble thinking right now. Please try your question again!"

	emptyRecipeReply   = "I found a great recipe! Would you like to start cooking?"
	emptyGeneralReply  = "I'm not sure how to help with that. Try asking about recipes, nutrition, or cooking techniques!"
	nutritionFailReply = "I had trouble analyzing the nutrition. Please try again with a specific ingredient and quantity."

	cookingHelp = "I'm Chef Remy! While cooking, I can help you navigate steps, set timers, check off ingredients, and answer cooking questions. Try saying 'I have the chicken' or 'next step'!"
	generalHelp = "I'm Chef Remy, your cooking assistant! I can help you search for recipes, get nutrition info, and guide you through cooking. Just ask me naturally!"
)

// ErrEmptyCommand is returned by Route when the command is blank.
var ErrEmptyCommand = errors.New("command is required")

// CommandContext describes where the user is in the app.
type CommandContext struct {
	CurrentPage          string   `json:"currentPage,omitempty"`
	CurrentRecipe        string   `json:"currentRecipe,omitempty"`
	CurrentStep          *int     `json:"currentStep,omitempty"`
	AvailableIngredients []string `json:"availableIngredients,omitempty"`
	CheckedIngredients   []string `json:"checkedIngredients,omitempty"`
}

// Request is one command to route.
type Request struct {
	Command string          `json:"command"`
	Context *CommandContext `json:"context,omitempty"`
}

// Action is a structured instruction for the client or cooking session.
type Action struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data,omitempty"`
}

// Response is the router's answer. Intent and Source are for metrics only.
type Response struct {
	Response string  `json:"response"`
	Action   *Action `json:"action,omitempty"`
	TTS      bool    `json:"tts"`

	Intent string `json:"-"`
	Source string `json:"-"`
}

// Deps holds the optional collaborators of a Router. A nil provider means
// that capability is not configured.
type Deps struct {
	Text      ai.TextProvider
	Recipes   ai.RecipeSearchProvider
	Nutrition ai.NutritionProvider
	Prompts   *config.Prompts
	Metrics   *metrics.Collector
}

// Router maps commands to responses. It is safe for concurrent use.
type Router struct {
	deps   Deps
	censor *ReplyFilter
}

// NewRouter creates a Router.
func NewRouter(deps Deps) *Router {
	return &Router{
		deps: deps,
		censor: NewReplyFilter(),
	}
}

var (
	ingredientPatterns = []*regexp.Regexp{
		regexp.MustCompile(`i have (?:the )?(.+)`),
		regexp.MustCompile(`got (?:the )?(.+)`),
		regexp.MustCompile(`found (?:the )?(.+)`),
		regexp.MustCompile(`check off (?:the )?(.+)`),
		regexp.MustCompile(`(?:mark )?(.+) (?:as )?(?:ready|done|complete)`),
	}
	minutesPattern = regexp.MustCompile(`(\d+)\s*(minute|minutes|min|mins)`)

	recipeKeywords    = []string{"recipe", "recipes", "find", "search", "look up", "cooking", "dish", "meal", "food"}
	nutritionKeywords = []string{"nutrition", "calories", "protein", "fat", "carbs", "nutrients", "nutritional", "analyze"}
)

func reply(text, intent string, action *Action) *Response {
	return &Response{Response: text, Action: action, TTS: true, Intent: intent, Source: "basic"}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// MatchBasic applies the fixed command rules in precedence order. It returns
// nil when no rule matches and the command should go to the AI fallback.
func MatchBasic(command string, cc *CommandContext) *Response {
	cmd := strings.ToLower(command)
	page := ""
	if cc != nil {
		page = cc.CurrentPage
	}

	if page == PageCookingMode {
		for _, p := range ingredientPatterns {
			if m := p.FindStringSubmatch(cmd); m != nil {
				name := strings.TrimSpace(m[1])
				return reply(fmt.Sprintf("Great! I'll mark %s as ready.", name), "ingredient_check",
					&Action{Type: ActionIngredient, Data: map[string]interface{}{"action": "check", "ingredient": name}})
			}
		}
		if containsAny(cmd, "what do i need", "next ingredient") {
			return reply("Let me tell you what ingredient you need next.", "ingredient_next",
				&Action{Type: ActionIngredient, Data: map[string]interface{}{"action": "next"}})
		}
	}

	if page == PageHome {
		if strings.Contains(cmd, "yes") && containsAny(cmd, "cook", "start") {
			return reply("Perfect! Let's start cooking. I'll take you to the cooking session.", "start_cooking",
				&Action{Type: ActionStartCooking, Data: map[string]interface{}{"confirmed": true}})
		}
	}

	if containsAny(cmd, "next step", "what's next") {
		return reply("Moving to the next step for you!", "navigate_next",
			&Action{Type: ActionNavigate, Data: map[string]interface{}{"direction": "next"}})
	}

	if containsAny(cmd, "previous step", "go back", "last step") {
		return reply("Going back to the previous step.", "navigate_previous",
			&Action{Type: ActionNavigate, Data: map[string]interface{}{"direction": "previous"}})
	}

	if strings.Contains(cmd, "timer") {
		if m := minutesPattern.FindStringSubmatch(cmd); m != nil {
			minutes, err := strconv.Atoi(m[1])
			if err == nil && minutes > 0 {
				return reply(fmt.Sprintf("Setting a %d minute timer for you!", minutes), "timer",
					&Action{Type: ActionTimer, Data: map[string]interface{}{"minutes": minutes}})
			}
		}
		return reply(TimerClarifyReply, "timer_clarify", nil)
	}

	if strings.Contains(cmd, "read") && strings.Contains(cmd, "ingredient") {
		return reply("Here are the ingredients for this recipe:", "read_ingredients",
			&Action{Type: ActionRead, Data: map[string]interface{}{"content": "ingredients"}})
	}

	if strings.Contains(cmd, "read") && strings.Contains(cmd, "step") {
		return reply("Let me read the current step for you:", "read_step",
			&Action{Type: ActionRead, Data: map[string]interface{}{"content": "current-step"}})
	}

	if containsAny(cmd, "repeat", "say that again") {
		return reply("Let me repeat the current step:", "repeat",
			&Action{Type: ActionRead, Data: map[string]interface{}{"content": "current-step"}})
	}

	if containsAny(cmd, "help", "what can you do") {
		if page == PageCookingMode {
			return reply(cookingHelp, "help", nil)
		}
		return reply(generalHelp, "help", nil)
	}

	return nil
}

// Route answers a command. The only error it returns is ErrEmptyCommand;
// provider failures become apology replies.
func (r *Router) Route(ctx context.Context, req Request) (*Response, error) {
	command := strings.TrimSpace(req.Command)
	if command == "" {
		return nil, ErrEmptyCommand
	}

	resp := MatchBasic(command, req.Context)
	if resp == nil {
		resp = r.routeAI(ctx, command, req.Context)
	}

	r.deps.Metrics.VoiceCommand(resp.Intent, resp.Source)
	return resp, nil
}

func aiReply(text, intent string, action *Action) *Response {
	return &Response{Response: text, Action: action, TTS: true, Intent: intent, Source: "ai"}
}

func (r *Router) routeAI(ctx context.Context, command string, cc *CommandContext) *Response {
	if r.deps.Text == nil {
		return aiReply(NoLLMReply, "ai_unavailable", nil)
	}

	lower := strings.ToLower(command)
	page := ""
	if cc != nil {
		page = cc.CurrentPage
	}

	if r.deps.Nutrition != nil && containsAny(lower, nutritionKeywords...) {
		return r.nutrition(ctx, command)
	}
	if page == PageHome && containsAny(lower, recipeKeywords...) {
		return r.recipeSuggestion(ctx, command)
	}
	return r.general(ctx, command, cc)
}

func (r *Router) prompts() *config.Prompts {
	if r.deps.Prompts != nil {
		return r.deps.Prompts
	}
	return &config.Prompts{}
}

func (r *Router) complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	out, err := r.deps.Text.Complete(ctx, ai.CompletionRequest{
		System:    system,
		Messages:  []ai.Message{{Role: "user", Content: user}},
		MaxTokens: maxTokens,
	})
	if err != nil {
		r.deps.Metrics.ExternalError("llm")
		return "", err
	}
	return r.censor.Clean(out), nil
}

func (r *Router) recipeSuggestion(ctx context.Context, command string) *Response {
	p := r.prompts().Voice.RecipeSuggestion
	user, err := config.RenderPrompt(p.User, map[string]interface{}{"Command": command})
	if err != nil || user == "" {
		user = command
	}

	text, err := r.complete(ctx, strings.TrimSpace(p.System), user, 150)
	if err != nil {
		logger.Get().Error("recipe suggestion failed", zap.Error(err))
		return aiReply(ThinkingFailReply, "ai_recipe", nil)
	}
	if text == "" {
		text = emptyRecipeReply
	}

	data := map[string]interface{}{"query": command, "needsConfirmation": true}
	if r.deps.Recipes != nil {
		hits, err := r.deps.Recipes.SearchRecipes(ctx, command, 3)
		if err != nil {
			if !errors.Is(err, ai.ErrNotConfigured) {
				r.deps.Metrics.ExternalError("edamam")
				logger.Get().Warn("recipe search failed", zap.Error(err))
			}
		} else if len(hits) > 0 {
			data["recipes"] = hits
		}
	}

	return aiReply(text, "ai_recipe", &Action{Type: ActionRecipeSearch, Data: data})
}

func (r *Router) nutrition(ctx context.Context, command string) *Response {
	system := strings.TrimSpace(r.prompts().Voice.NutritionExtract.System)
	ingredient, err := r.complete(ctx, system, command, 50)
	if err != nil {
		logger.Get().Error("nutrition extraction failed", zap.Error(err))
		return aiReply(nutritionFailReply, "ai_nutrition", nil)
	}
	ingredient = strings.TrimSpace(ingredient)
	if ingredient == "" {
		ingredient = command
	}

	facts, err := r.deps.Nutrition.AnalyzeNutrition(ctx, ingredient)
	if err != nil {
		r.deps.Metrics.ExternalError("edamam")
		logger.Get().Error("nutrition analysis failed", zap.Error(err))
		return aiReply(nutritionFailReply, "ai_nutrition", nil)
	}
	if facts.Calories == 0 {
		return aiReply(fmt.Sprintf("I couldn't analyze the nutrition for %q. Please try with a more specific ingredient and quantity, like \"1 cup rice\" or \"100g chicken breast\".", ingredient),
			"ai_nutrition", nil)
	}

	return aiReply(FormatNutrition(facts), "ai_nutrition", nil)
}

// FormatNutrition renders nutrition facts as a short spoken summary.
func FormatNutrition(f *ai.NutritionFacts) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Nutrition information for %s:\n\n", f.Ingredient)
	fmt.Fprintf(&b, "Calories: %d\n", int(math.Round(f.Calories)))
	fmt.Fprintf(&b, "Protein: %dg\n", int(math.Round(f.Protein)))
	fmt.Fprintf(&b, "Fat: %dg\n", int(math.Round(f.Fat)))
	fmt.Fprintf(&b, "Carbs: %dg\n", int(math.Round(f.Carbs)))
	fmt.Fprintf(&b, "Fiber: %dg\n", int(math.Round(f.Fiber)))
	return b.String()
}

func (r *Router) general(ctx context.Context, command string, cc *CommandContext) *Response {
	p := r.prompts().Voice

	contextJSON := "{}"
	if cc != nil {
		if s, err := util.SerializeToJSONString(cc); err == nil {
			contextJSON = s
		}
	}

	hint := ""
	if cc != nil && cc.CurrentPage == PageCookingMode {
		step := "in progress"
		if cc.CurrentStep != nil {
			step = strconv.Itoa(*cc.CurrentStep)
		}
		hint, _ = config.RenderPrompt(p.CookingHint, map[string]interface{}{"Step": step})
	}

	system, err := config.RenderPrompt(p.General.System, map[string]interface{}{
		"Context":     contextJSON,
		"CookingHint": hint,
	})
	if err != nil {
		logger.Get().Error("failed to render voice prompt", zap.Error(err))
		return aiReply(ThinkingFailReply, "ai_general", nil)
	}

	text, err := r.complete(ctx, system, command, 200)
	if err != nil {
		logger.Get().Error("general voice query failed", zap.Error(err))
		return aiReply(ThinkingFailReply, "ai_general", nil)
	}
	if text == "" {
		text = emptyGeneralReply
	}
	return aiReply(text, "ai_general", nil)
}
