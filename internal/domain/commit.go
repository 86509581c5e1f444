package domain

import (
	"encoding/json"
	"sort"
)

// CommitEvent is the calendar widget's batched edit notification. A single
// commit carries at most one of the three members.
type CommitEvent struct {
	Added   *SessionFields          `json:"added,omitempty"`
	Changed map[string]SessionPatch `json:"changed,omitempty"`
	Deleted *string                 `json:"deleted,omitempty"`
}

// CommandKind tags a translated mutation command.
type CommandKind string

const (
	CommandAdd    CommandKind = "add"
	CommandUpdate CommandKind = "update"
	CommandDelete CommandKind = "delete"
)

// Command is the normalized mutation produced from a commit event. OwnerID is
// the cache key to invalidate once the mutation settles. Fields is set for
// add, ID for update and delete, Patch for update.
type Command struct {
	Kind    CommandKind    `json:"kind"`
	OwnerID string         `json:"ownerId"`
	ID      string         `json:"id,omitempty"`
	Fields  *SessionFields `json:"fields,omitempty"`
	Patch   *SessionPatch  `json:"patch,omitempty"`
}

// Fingerprint identifies a distinct command for in-flight deduplication.
func (c Command) Fingerprint() string {
	body, err := json.Marshal(c)
	if err != nil {
		return string(c.Kind) + ":" + c.OwnerID + ":" + c.ID
	}
	return string(body)
}

// TranslateCommit maps a commit event onto exactly one command, or none.
// An add whose title is empty is a cancelled add and is dropped; a change
// that clears the title is a cancelled edit, dropped rather than treated as
// an update or a deletion. A delete with an identifier always forwards.
// ownerID is the exerciser whose calendar produced the event.
func TranslateCommit(ownerID string, ev CommitEvent) (*Command, bool) {
	if ev.Added != nil {
		if ev.Added.Title == "" {
			return nil, false
		}
		fields := *ev.Added
		fields.OwnerID = ownerID
		return &Command{Kind: CommandAdd, OwnerID: ownerID, Fields: &fields}, true
	}

	if len(ev.Changed) > 0 {
		ids := make([]string, 0, len(ev.Changed))
		for id := range ev.Changed {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		id := ids[0]
		patch := ev.Changed[id]
		if patch.Title != nil && *patch.Title == "" {
			return nil, false
		}
		return &Command{Kind: CommandUpdate, OwnerID: ownerID, ID: id, Patch: &patch}, true
	}

	if ev.Deleted != nil && *ev.Deleted != "" {
		return &Command{Kind: CommandDelete, OwnerID: ownerID, ID: *ev.Deleted}, true
	}

	return nil, false
}
