package voice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/windoze95/chefremy-api/internal/ai"
	"github.com/windoze95/chefremy-api/internal/config"
	"github.com/windoze95/chefremy-api/internal/logger"
	"go.uber.org/zap"
)

const (
	ConnectedMessage = "🤖 Connected to Chef Remy AI - ready to help with cooking!"
	historyLimit     = 5
)

// ErrAssistantUnavailable is returned when no agent is configured.
var ErrAssistantUnavailable = errors.New("voice assistant is not configured")

// AgentContext is the cooking state shared with the agent.
type AgentContext struct {
	RecipeTitle string   `json:"recipeTitle"`
	StepNumber  int      `json:"stepNumber"`
	TotalSteps  int      `json:"totalSteps"`
	StepText    string   `json:"stepText"`
	Ingredients []string `json:"ingredients,omitempty"`
	Timers      []string `json:"timers,omitempty"`
}

// AssistantStatus mirrors the connection flags shown by clients.
type AssistantStatus struct {
	Connected  bool `json:"connected"`
	Connecting bool `json:"connecting"`
	Speaking   bool `json:"speaking"`
}

// AssistantEvents are called outside the assistant's lock. Any may be nil.
// OnAction applies an agent tool call and may return text for the agent.
type AssistantEvents struct {
	OnMessage func(line string, history []string)
	OnStatus  func(AssistantStatus)
	OnAudio   func(chunk []byte)
	OnError   func(msg string)
	OnAction  func(action *Action) (string, error)
}

// Assistant owns one conversation with the hosted voice agent.
type Assistant struct {
	client  ai.ConversationClient
	agentID string
	prompts *config.Prompts
	events  AssistantEvents

	mu      sync.Mutex
	session ai.ConversationSession
	status  AssistantStatus
	history []string
	gen     uint64
}

// NewAssistant creates an assistant. A nil client or empty agentID leaves it
// unavailable.
func NewAssistant(client ai.ConversationClient, agentID string, prompts *config.Prompts, events AssistantEvents) *Assistant {
	return &Assistant{
		client:  client,
		agentID: agentID,
		prompts: prompts,
		events:  events,
	}
}

// Available reports whether Connect can succeed.
func (a *Assistant) Available() bool {
	return a.client != nil && a.agentID != ""
}

// Connect opens the conversation and sends the cooking context. It is a no-op
// while already connected or connecting.
func (a *Assistant) Connect(ctx context.Context, ac AgentContext) error {
	if !a.Available() {
		return ErrAssistantUnavailable
	}

	a.mu.Lock()
	if a.status.Connected || a.status.Connecting {
		a.mu.Unlock()
		return nil
	}
	a.gen++
	gen := a.gen
	a.status.Connecting = true
	status := a.status
	a.mu.Unlock()
	a.emitStatus(status)

	cfg := ai.ConversationConfig{
		AgentID:   a.agentID,
		Variables: map[string]string{"recipe_title": ac.RecipeTitle},
	}
	if a.prompts != nil {
		prompt, err := config.RenderPrompt(a.prompts.Conversation.Agent.System, map[string]interface{}{
			"RecipeTitle": ac.RecipeTitle,
		})
		if err != nil {
			logger.Get().Warn("failed to render agent prompt", zap.Error(err))
		} else {
			cfg.Prompt = prompt
		}
		cfg.FirstMessage = a.prompts.Conversation.FirstMessage
	}

	session, err := a.client.StartSession(ctx, cfg, a.handlers(gen))
	if err != nil {
		a.mu.Lock()
		if a.gen == gen {
			a.status = AssistantStatus{}
		}
		status := a.status
		a.mu.Unlock()
		a.emitStatus(status)
		a.emitError(err.Error())
		return fmt.Errorf("start voice conversation: %w", err)
	}

	a.mu.Lock()
	if a.gen != gen {
		// Disconnected while dialing.
		a.mu.Unlock()
		session.End()
		return nil
	}
	a.session = session
	a.mu.Unlock()

	return a.UpdateContext(ac)
}

// Disconnect ends the conversation and clears the flags.
func (a *Assistant) Disconnect() error {
	a.mu.Lock()
	session := a.session
	a.session = nil
	a.gen++
	a.status = AssistantStatus{}
	status := a.status
	a.mu.Unlock()

	var err error
	if session != nil {
		err = session.End()
	}
	a.emitStatus(status)
	return err
}

func (a *Assistant) current() (ai.ConversationSession, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return nil, errors.New("voice assistant is not connected")
	}
	return a.session, nil
}

// UpdateContext tells the agent where the cook is.
func (a *Assistant) UpdateContext(ac AgentContext) error {
	session, err := a.current()
	if err != nil {
		return err
	}
	b, err := json.Marshal(ac)
	if err != nil {
		return err
	}
	return session.SendContextualUpdate("Context: " + string(b))
}

// SendText sends a typed user turn.
func (a *Assistant) SendText(text string) error {
	session, err := a.current()
	if err != nil {
		return err
	}
	return session.SendUserMessage(text)
}

// SendAudio forwards a microphone chunk.
func (a *Assistant) SendAudio(chunk []byte) error {
	session, err := a.current()
	if err != nil {
		return err
	}
	return session.SendUserAudio(chunk)
}

// Messages returns the recent conversation lines, oldest first.
func (a *Assistant) Messages() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.history...)
}

func (a *Assistant) Status() AssistantStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

func (a *Assistant) addMessage(gen uint64, line string) {
	a.mu.Lock()
	if a.gen != gen {
		a.mu.Unlock()
		return
	}
	a.history = append(a.history, line)
	if len(a.history) > historyLimit {
		a.history = append([]string(nil), a.history[len(a.history)-historyLimit:]...)
	}
	history := append([]string(nil), a.history...)
	a.mu.Unlock()

	if a.events.OnMessage != nil {
		a.events.OnMessage(line, history)
	}
}

// updateStatus applies fn to the status of the live generation.
func (a *Assistant) updateStatus(gen uint64, fn func(s *AssistantStatus)) {
	a.mu.Lock()
	if a.gen != gen {
		a.mu.Unlock()
		return
	}
	before := a.status
	fn(&a.status)
	after := a.status
	a.mu.Unlock()

	if before != after {
		a.emitStatus(after)
	}
}

func (a *Assistant) emitStatus(s AssistantStatus) {
	if a.events.OnStatus != nil {
		a.events.OnStatus(s)
	}
}

func (a *Assistant) emitError(msg string) {
	if a.events.OnError != nil {
		a.events.OnError(msg)
	}
}

func (a *Assistant) handlers(gen uint64) ai.ConversationHandlers {
	return ai.ConversationHandlers{
		OnConnect: func(conversationID string) {
			logger.Get().Info("voice conversation connected", zap.String("conversation_id", conversationID))
			a.updateStatus(gen, func(s *AssistantStatus) {
				s.Connected = true
				s.Connecting = false
			})
			a.addMessage(gen, ConnectedMessage)
		},
		OnUserText: func(text string) {
			a.addMessage(gen, "You: "+text)
		},
		OnAgentText: func(text string) {
			a.addMessage(gen, "Chef Remy: "+text)
		},
		OnAudio: func(chunk []byte) {
			if a.events.OnAudio != nil {
				a.events.OnAudio(chunk)
			}
		},
		OnModeChanged: func(speaking bool) {
			a.updateStatus(gen, func(s *AssistantStatus) { s.Speaking = speaking })
		},
		OnError: func(err error) {
			logger.Get().Warn("voice conversation error", zap.Error(err))
			a.emitError(err.Error())
		},
		OnDisconnect: func() {
			a.mu.Lock()
			if a.gen == gen {
				a.session = nil
			}
			a.mu.Unlock()
			a.updateStatus(gen, func(s *AssistantStatus) { *s = AssistantStatus{} })
		},
		OnToolCall: a.toolCall,
	}
}

// ToolAction maps an agent client tool onto a router action.
func ToolAction(name string, params map[string]interface{}) (*Action, string, error) {
	switch name {
	case "nextStep":
		return &Action{Type: ActionNavigate, Data: map[string]interface{}{"direction": "next"}}, "Moving to next step", nil
	case "previousStep":
		return &Action{Type: ActionNavigate, Data: map[string]interface{}{"direction": "previous"}}, "Moving to previous step", nil
	case "setTimer":
		minutes, ok := numberParam(params, "minutes")
		if !ok || minutes <= 0 {
			return nil, "", errors.New("setTimer needs a positive number of minutes")
		}
		return &Action{Type: ActionTimer, Data: map[string]interface{}{"minutes": minutes}},
			fmt.Sprintf("Timer set for %d minutes", minutes), nil
	case "repeatStep":
		return &Action{Type: ActionRead, Data: map[string]interface{}{"content": "current-step"}}, "Repeating current step", nil
	}
	return nil, "", fmt.Errorf("unknown tool %q", name)
}

func numberParam(params map[string]interface{}, key string) (int, bool) {
	switch v := params[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	}
	return 0, false
}

func (a *Assistant) toolCall(name string, params map[string]interface{}) (string, error) {
	action, result, err := ToolAction(name, params)
	if err != nil {
		return "", err
	}
	if a.events.OnAction != nil {
		text, err := a.events.OnAction(action)
		if err != nil {
			return "", err
		}
		if text != "" {
			result = text
		}
	}
	return result, nil
}
