package conversation

import (
	"time"

	"github.com/qcoder/qcoder/internal/core"
)

// State holds the ordered message history for a single conversation together
// with its identity, timestamps and token budget. A State is owned by exactly
// one caller at a time; it does no internal locking.
type State struct {
	id          core.ConversationID
	messages    []core.Message
	budgetLimit int
	createdAt   time.Time
	updatedAt   time.Time
	cost        CostModel
}

// Params configures a new State. Zero values fall back to generated/default
// settings: a fresh time-sortable ID, no initial system prompt, the
// DefaultBudgetLimit and a character-based cost model.
type Params struct {
	ID           core.ConversationID
	SystemPrompt string
	BudgetLimit  int
	Cost         CostModel
}

// DefaultBudgetLimit is the context budget used when none is configured.
const DefaultBudgetLimit = 8000

// New creates a conversation state. If a system prompt is given it is appended
// immediately as the first message. New never fails.
func New(params Params) *State {
	id := params.ID
	if id == "" {
		id = core.NewConversationID()
	}

	budget := params.BudgetLimit
	if budget <= 0 {
		budget = DefaultBudgetLimit
	}

	cost := params.Cost
	if cost == nil {
		cost = CharCost{}
	}

	now := time.Now().UTC()
	state := &State{
		id:          id,
		budgetLimit: budget,
		createdAt:   now,
		updatedAt:   now,
		cost:        cost,
	}

	if params.SystemPrompt != "" {
		_, _ = state.AddMessage(core.RoleSystem, params.SystemPrompt, nil)
	}

	return state
}

func (s *State) ID() core.ConversationID { return s.id }
func (s *State) BudgetLimit() int        { return s.budgetLimit }
func (s *State) CreatedAt() time.Time    { return s.createdAt }
func (s *State) UpdatedAt() time.Time    { return s.updatedAt }

// Messages returns a copy of the message sequence in insertion order.
func (s *State) Messages() []core.Message {
	out := make([]core.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// AddMessage appends a message and refreshes the modification timestamp. The
// only failure mode is an invalid role.
func (s *State) AddMessage(role core.Role, content string, metadata map[string]any) (core.Message, error) {
	msg, err := core.NewMessage(role, content, metadata)
	if err != nil {
		return core.Message{}, err
	}

	s.messages = append(s.messages, msg)
	s.updatedAt = time.Now().UTC()

	return msg, nil
}

// ForAPI returns the history stripped to role and content, oldest first. A
// positive maxCount limits the result to the most recent maxCount messages;
// system messages get no special treatment here, budget protection is Trim's
// job.
func (s *State) ForAPI(maxCount int) []core.APIMessage {
	messages := s.messages
	if maxCount > 0 && len(messages) > maxCount {
		messages = messages[len(messages)-maxCount:]
	}

	out := make([]core.APIMessage, len(messages))
	for i, msg := range messages {
		out[i] = msg.ToAPI()
	}

	return out
}

// Trim drops the oldest non-system messages until the total cost of the
// conversation fits within target, or only one non-system message remains.
// System messages are never removed and lead the rebuilt sequence. A target
// of zero or less means the state's budget limit. Trimming twice with the
// same target changes nothing on the second call.
func (s *State) Trim(target int) {
	if target <= 0 {
		target = s.budgetLimit
	}

	var protected, other []core.Message
	for _, msg := range s.messages {
		if msg.Role == core.RoleSystem {
			protected = append(protected, msg)
		} else {
			other = append(other, msg)
		}
	}

	total := 0
	for _, msg := range s.messages {
		total += s.cost.Cost(msg)
	}

	for total > target && len(other) > 1 {
		total -= s.cost.Cost(other[0])
		other = other[1:]
	}

	s.messages = append(protected, other...)
}

// Clear removes conversation history. With keepSystem set, system messages
// survive in order; otherwise the sequence is emptied.
func (s *State) Clear(keepSystem bool) {
	if keepSystem {
		var kept []core.Message
		for _, msg := range s.messages {
			if msg.Role == core.RoleSystem {
				kept = append(kept, msg)
			}
		}
		s.messages = kept
	} else {
		s.messages = nil
	}

	s.updatedAt = time.Now().UTC()
}

// TotalCost reports the budget cost of the full message sequence.
func (s *State) TotalCost() int {
	total := 0
	for _, msg := range s.messages {
		total += s.cost.Cost(msg)
	}
	return total
}

// Summary describes a conversation without exposing its messages.
type Summary struct {
	ID            core.ConversationID `json:"conversation_id"`
	TotalMessages int                 `json:"total_messages"`
	CountsByRole  map[core.Role]int   `json:"message_counts"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// Summary returns per-role message counts and the conversation timestamps.
func (s *State) Summary() Summary {
	counts := make(map[core.Role]int)
	for _, msg := range s.messages {
		counts[msg.Role]++
	}

	return Summary{
		ID:            s.id,
		TotalMessages: len(s.messages),
		CountsByRole:  counts,
		CreatedAt:     s.createdAt,
		UpdatedAt:     s.updatedAt,
	}
}
