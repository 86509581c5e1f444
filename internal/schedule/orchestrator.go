package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"example.com/schedule/internal/domain"
	"example.com/schedule/internal/observability"
)

// ErrMutationInFlight is returned when the same command is submitted while a
// previous submission has not settled.
var ErrMutationInFlight = errors.New("mutation already in flight")

// TrainingsPath is where the client is sent after a completed add or delete.
const TrainingsPath = "/trainings"

// Notifier receives user-facing outcome messages. Calls are fire-and-forget.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// Navigator receives navigation side effects after a settled mutation.
type Navigator interface {
	NavigateTo(path string)
}

// Invalidator marks an owner's cached session list stale after a mutation.
type Invalidator interface {
	Invalidate(ownerID string)
}

// Outcome describes a settled mutation.
type Outcome struct {
	Kind     domain.CommandKind
	Session  *domain.Session
	Redirect string
}

// Orchestrator runs one mutation command to a terminal outcome: the store
// call, then on success cache invalidation, the success notification and the
// optional navigation. On failure the cache is left untouched so reads keep
// serving the last-known-good list.
type Orchestrator struct {
	store     domain.Store
	cache     Invalidator
	notifier  Notifier
	navigator Navigator

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewOrchestrator constructs an Orchestrator.
func NewOrchestrator(store domain.Store, cache Invalidator, notifier Notifier, navigator Navigator) *Orchestrator {
	return &Orchestrator{
		store:     store,
		cache:     cache,
		notifier:  notifier,
		navigator: navigator,
		inFlight:  make(map[string]struct{}),
	}
}

// Apply executes the command. At most one mutation per distinct command is in
// flight at a time; concurrent different commands against the same record are
// not queued and resolve last-write-wins at the store.
func (o *Orchestrator) Apply(ctx context.Context, cmd domain.Command) (*Outcome, error) {
	fingerprint := cmd.Fingerprint()
	o.mu.Lock()
	if _, busy := o.inFlight[fingerprint]; busy {
		o.mu.Unlock()
		return nil, ErrMutationInFlight
	}
	o.inFlight[fingerprint] = struct{}{}
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		delete(o.inFlight, fingerprint)
		o.mu.Unlock()
	}()

	var (
		session    *domain.Session
		err        error
		successMsg string
		redirect   string
	)

	switch cmd.Kind {
	case domain.CommandAdd:
		session, err = o.store.CreateSession(ctx, *cmd.Fields)
		successMsg = "Successfully added new training."
		redirect = TrainingsPath
	case domain.CommandUpdate:
		session, err = o.store.UpdateSession(ctx, cmd.ID, *cmd.Patch)
		successMsg = "Successfully updated training!"
	case domain.CommandDelete:
		err = o.store.DeleteSession(ctx, cmd.ID)
		successMsg = "Successfully deleted training."
		redirect = TrainingsPath
	default:
		return nil, fmt.Errorf("unknown command kind %q", cmd.Kind)
	}

	if err != nil {
		recordMutation(string(cmd.Kind), "error")
		o.notifier.Error(userMessage(err))
		return nil, err
	}

	recordMutation(string(cmd.Kind), "success")
	observability.RecordMutationApplied(time.Now().UTC())

	o.cache.Invalidate(cmd.OwnerID)
	o.notifier.Success(successMsg)
	if redirect != "" {
		o.navigator.NavigateTo(redirect)
	}

	return &Outcome{Kind: cmd.Kind, Session: session, Redirect: redirect}, nil
}

// userMessage extracts the user-facing text from a store failure.
func userMessage(err error) string {
	var storeErr *domain.StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Message
	}
	return err.Error()
}
