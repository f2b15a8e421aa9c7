// Package editor owns the in-memory character list and the working draft
// being created or edited, and mediates all character CRUD against the
// remote service.
//
// Draft state is an explicit three-way mode (idle / creating / editing)
// instead of the boolean trio the web form used, so invalid combinations
// cannot be represented. The character list is only ever swapped wholesale
// or patched by copy, never mutated element-by-element under a reader.
package editor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/dmitrijs2005/runnervault/internal/client/api"
	"github.com/dmitrijs2005/runnervault/internal/client/models"
	"github.com/dmitrijs2005/runnervault/internal/common"
	"github.com/dmitrijs2005/runnervault/internal/logging"
)

// ErrNoDraft is returned by draft operations when no form is active.
var ErrNoDraft = errors.New("no active draft")

// AuthClientSource yields a transport client authorized with the current
// session credential, or common.ErrAuthorization when no session exists.
// session.Manager satisfies it.
type AuthClientSource interface {
	AuthClient() (api.AuthClient, error)
}

type Mode int

const (
	ModeIdle Mode = iota
	ModeCreating
	ModeEditing
)

func (m Mode) String() string {
	switch m {
	case ModeCreating:
		return "creating"
	case ModeEditing:
		return "editing"
	default:
		return "idle"
	}
}

type Editor struct {
	session AuthClientSource
	log     logging.Logger

	mu         sync.Mutex
	characters []models.Character
	mode       Mode
	target     string
	draft      models.Character
	submitting bool
	gen        uint64
}

func New(session AuthClientSource, log logging.Logger) *Editor {
	return &Editor{session: session, log: log}
}

// Characters returns the current list. The returned slice is never mutated
// afterwards; refreshes and patches install a new slice.
func (e *Editor) Characters() []models.Character {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.characters
}

func (e *Editor) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// Target returns the id of the record being edited, or "" outside editing.
func (e *Editor) Target() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.target
}

// Draft returns a copy of the working draft.
func (e *Editor) Draft() models.Character {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft.Clone()
}

// FetchAll replaces the character list with the server's. Must only be
// called once the session restore has fully resolved. On failure the
// previous list is kept.
func (e *Editor) FetchAll(ctx context.Context) error {
	client, err := e.session.AuthClient()
	if err != nil {
		return err
	}

	e.mu.Lock()
	gen := e.gen
	e.mu.Unlock()

	list, err := client.ListCharacters(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrFetch, err)
	}
	if list == nil {
		list = []models.Character{}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gen != gen {
		e.log.Debug(ctx, "dropping stale character list")
		return nil
	}
	e.characters = list
	return nil
}

// StartCreate opens a fresh, identifier-less draft.
func (e *Editor) StartCreate() error {
	if _, err := e.session.AuthClient(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.draft = emptyDraft()
	e.mode = ModeCreating
	e.target = ""
	return nil
}

// StartEdit loads the record with the given id into the draft. Selecting a
// different record while already editing simply reloads the draft.
func (e *Editor) StartEdit(id string) error {
	if _, err := e.session.AuthClient(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, c := range e.characters {
		if c.ID == id {
			draft := c.Clone()
			draft.Normalize()
			e.draft = draft
			e.mode = ModeEditing
			e.target = id
			return nil
		}
	}
	return fmt.Errorf("character %q: %w", id, common.ErrNotFound)
}

// Deselect discards the draft and returns to idle. The character list is
// untouched.
func (e *Editor) Deselect() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.draft = models.Character{}
	e.mode = ModeIdle
	e.target = ""
}

// Reset clears all editor state and invalidates any in-flight call, so a
// response that arrives later is dropped instead of being applied. Called on
// logout.
func (e *Editor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.characters = nil
	e.draft = models.Character{}
	e.mode = ModeIdle
	e.target = ""
	e.submitting = false
	e.gen++
}

// SetField assigns one scalar draft field from its string form value.
// Numeric fields are parsed; an empty value clears them to null.
func (e *Editor) SetField(name, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.mode == ModeIdle {
		return ErrNoDraft
	}

	switch name {
	case "name":
		e.draft.Name = value
	case "race":
		e.draft.Race = value
	case "archetype":
		e.draft.Archetype = value
	case "essence":
		if value == "" {
			e.draft.Essence = nil
			return nil
		}
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
		e.draft.Essence = &parsed
	default:
		target, err := e.intField(name)
		if err != nil {
			return err
		}
		if value == "" {
			*target = nil
			return nil
		}
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
		*target = &parsed
	}
	return nil
}

func (e *Editor) intField(name string) (**int, error) {
	switch name {
	case "strength":
		return &e.draft.Strength, nil
	case "body":
		return &e.draft.Body, nil
	case "quickness":
		return &e.draft.Quickness, nil
	case "intelligence":
		return &e.draft.Intelligence, nil
	case "willpower":
		return &e.draft.Willpower, nil
	case "charisma":
		return &e.draft.Charisma, nil
	case "reaction":
		return &e.draft.Reaction, nil
	case "initiative":
		return &e.draft.Initiative, nil
	case "magic":
		return &e.draft.Magic, nil
	case "edge":
		return &e.draft.Edge, nil
	default:
		return nil, fmt.Errorf("unknown field %q", name)
	}
}

// AddItem appends an empty rated item to the named draft list.
func (e *Editor) AddItem(list string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.mode == ModeIdle {
		return ErrNoDraft
	}
	items, err := e.draft.ItemList(list)
	if err != nil {
		return err
	}
	*items = append(*items, models.RatedItem{})
	return nil
}

// RemoveItem deletes the item at index from the named draft list.
func (e *Editor) RemoveItem(list string, index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.mode == ModeIdle {
		return ErrNoDraft
	}
	items, err := e.draft.ItemList(list)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(*items) {
		return fmt.Errorf("item %d in %q: %w", index, list, common.ErrNotFound)
	}
	*items = append((*items)[:index], (*items)[index+1:]...)
	return nil
}

// SetItemField assigns the name or rating of one item in the named draft
// list from its string form value.
func (e *Editor) SetItemField(list string, index int, key, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.mode == ModeIdle {
		return ErrNoDraft
	}
	items, err := e.draft.ItemList(list)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(*items) {
		return fmt.Errorf("item %d in %q: %w", index, list, common.ErrNotFound)
	}

	switch key {
	case "name":
		(*items)[index].Name = value
	case "rating":
		rating, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("rating: %w", err)
		}
		(*items)[index].Rating = rating
	default:
		return fmt.Errorf("unknown item field %q", key)
	}
	return nil
}

// Submit sends the draft to the server: an update when editing, a create
// when creating. On success the list is patched with the server's returned
// representation and the editor returns to idle. On failure the draft is
// preserved so the user can retry. At most one submit may be in flight;
// further attempts fail with common.ErrBusy.
func (e *Editor) Submit(ctx context.Context) error {
	client, err := e.session.AuthClient()
	if err != nil {
		return err
	}

	e.mu.Lock()
	if e.mode == ModeIdle {
		e.mu.Unlock()
		return ErrNoDraft
	}
	if e.submitting {
		e.mu.Unlock()
		return common.ErrBusy
	}
	e.submitting = true
	mode := e.mode
	target := e.target
	payload := e.draft.Clone()
	gen := e.gen
	e.mu.Unlock()

	var stored models.Character
	if mode == ModeEditing {
		stored, err = client.UpdateCharacter(ctx, target, payload)
	} else {
		stored, err = client.CreateCharacter(ctx, payload)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.gen != gen {
		// The editor was reset while the call was in flight; the result no
		// longer has a home.
		e.log.Debug(ctx, "dropping stale submit result")
		return nil
	}
	e.submitting = false

	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrSubmit, err)
	}

	if mode == ModeEditing {
		e.characters = replaceByID(e.characters, target, stored)
	} else {
		e.characters = appendCopy(e.characters, stored)
	}
	e.draft = models.Character{}
	e.mode = ModeIdle
	e.target = ""
	return nil
}

func emptyDraft() models.Character {
	draft := models.Character{}
	draft.Normalize()
	return draft
}

// replaceByID returns a new slice with the element matching id swapped for
// the stored record; all other elements keep their content and order.
func replaceByID(list []models.Character, id string, stored models.Character) []models.Character {
	out := make([]models.Character, len(list))
	copy(out, list)
	for i := range out {
		if out[i].ID == id {
			out[i] = stored
			break
		}
	}
	return out
}

func appendCopy(list []models.Character, stored models.Character) []models.Character {
	out := make([]models.Character, 0, len(list)+1)
	out = append(out, list...)
	return append(out, stored)
}
