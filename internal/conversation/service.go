package conversation

import (
	"github.com/qcoder/qcoder/internal/checkpoint"
	"github.com/qcoder/qcoder/internal/core"
)

// Store is the persistence surface the service needs; checkpoint.FileStore
// satisfies it.
type Store interface {
	Save(cp checkpoint.Checkpoint, name string) (string, error)
	Load(name string) (checkpoint.Checkpoint, error)
	List() ([]checkpoint.Entry, int, error)
	Delete(name string) error
}

// Service wires a cost model, a default budget and a checkpoint store
// together so callers assemble conversations without reaching for any global
// state.
type Service struct {
	store       Store
	cost        CostModel
	budgetLimit int
}

// NewService builds a service from its dependencies. A nil cost model means
// the character estimate; a non-positive budget means DefaultBudgetLimit.
func NewService(store Store, cost CostModel, budgetLimit int) *Service {
	if cost == nil {
		cost = CharCost{}
	}
	if budgetLimit <= 0 {
		budgetLimit = DefaultBudgetLimit
	}

	return &Service{store: store, cost: cost, budgetLimit: budgetLimit}
}

// NewConversation starts a conversation with the service's cost model and
// budget, seeded with the given system prompt when non-empty.
func (svc *Service) NewConversation(systemPrompt string) *State {
	return New(Params{
		SystemPrompt: systemPrompt,
		BudgetLimit:  svc.budgetLimit,
		Cost:         svc.cost,
	})
}

// PrepareForAPI trims the conversation to its budget and returns the wire
// payload for a completion call.
func (svc *Service) PrepareForAPI(state *State) []core.APIMessage {
	state.Trim(0)
	return state.ForAPI(0)
}

// Save checkpoints the state under name, defaulting to the conversation ID,
// and returns the checkpoint location.
func (svc *Service) Save(state *State, name string) (string, error) {
	return svc.store.Save(state.Checkpoint(), name)
}

// Resume loads the named checkpoint and rebuilds its conversation state with
// the service's cost model.
func (svc *Service) Resume(name string) (*State, error) {
	cp, err := svc.store.Load(name)
	if err != nil {
		return nil, err
	}

	budget := cp.MaxContextLength
	if budget <= 0 {
		budget = svc.budgetLimit
	}

	return Restore(cp, svc.cost, budget), nil
}

// List enumerates stored checkpoints, newest first, along with the number of
// unreadable files skipped.
func (svc *Service) List() ([]checkpoint.Entry, int, error) {
	return svc.store.List()
}

// Delete removes the named checkpoint.
func (svc *Service) Delete(name string) error {
	return svc.store.Delete(name)
}

// Checkpoint snapshots the state into its persisted form.
func (s *State) Checkpoint() checkpoint.Checkpoint {
	return checkpoint.Checkpoint{
		ConversationID: s.id,
		Messages:       s.Messages(),
		Metadata: checkpoint.Metadata{
			CreatedAt: s.createdAt,
			UpdatedAt: s.updatedAt,
		},
		MaxContextLength: s.budgetLimit,
	}
}

// Restore rebuilds a conversation state from a checkpoint. The message
// sequence, ID and timestamps come back exactly as saved; only the cost model
// is supplied fresh since it is not part of the persisted form.
func Restore(cp checkpoint.Checkpoint, cost CostModel, budgetLimit int) *State {
	state := New(Params{
		ID:          cp.ConversationID,
		BudgetLimit: budgetLimit,
		Cost:        cost,
	})

	state.messages = make([]core.Message, len(cp.Messages))
	copy(state.messages, cp.Messages)

	if !cp.Metadata.CreatedAt.IsZero() {
		state.createdAt = cp.Metadata.CreatedAt
	}
	if !cp.Metadata.UpdatedAt.IsZero() {
		state.updatedAt = cp.Metadata.UpdatedAt
	}

	return state
}
