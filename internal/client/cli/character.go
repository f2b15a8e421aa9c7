package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/runnervault/internal/client/editor"
	"github.com/dmitrijs2005/runnervault/internal/client/models"
)

var errUsage = errors.New("usage error")

// List prints the known characters, one per line.
func (a *App) List(ctx context.Context) error {
	characters := a.editor.Characters()
	if len(characters) == 0 {
		printlnFn("No characters yet. Use 'new' to create one.")
		return nil
	}
	for _, c := range characters {
		printlnFn(fmt.Sprintf("%s  %s (%s, %s)", c.ID, c.Name, c.Race, c.Archetype))
	}
	return nil
}

// Select loads a character into the draft for editing. With no argument it
// behaves like choosing the empty placeholder option: the draft is discarded
// and the editor goes idle.
func (a *App) Select(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.editor.Deselect()
		printlnFn("Selection cleared.")
		return nil
	}
	if err := a.editor.StartEdit(args[0]); err != nil {
		a.log.Error(ctx, "select failed", "error", err)
		return err
	}
	printlnFn("Editing " + args[0] + ". Use 'show', 'set', 'additem', 'submit'.")
	return nil
}

// New opens a fresh draft for a character that does not exist yet.
func (a *App) New(ctx context.Context) error {
	if err := a.editor.StartCreate(); err != nil {
		a.log.Error(ctx, "new character failed", "error", err)
		return err
	}
	printlnFn("Creating a new character. Use 'set', 'additem', 'submit'.")
	return nil
}

// Cancel discards the draft without submitting.
func (a *App) Cancel(ctx context.Context) error {
	a.editor.Deselect()
	printlnFn("Draft discarded.")
	return nil
}

// Show prints the working draft in the layout of the web client's details
// panel.
func (a *App) Show(ctx context.Context) error {
	if a.editor.Mode() == editor.ModeIdle {
		printlnFn("Nothing selected. Use 'select <id>' or 'new'.")
		return editor.ErrNoDraft
	}
	draft := a.editor.Draft()

	printlnFn(draft.Name)
	printlnFn("Race: " + draft.Race)
	printlnFn("Archetype: " + draft.Archetype)
	printlnFn("Strength: " + formatInt(draft.Strength))
	printlnFn("Body: " + formatInt(draft.Body))
	printlnFn("Quickness: " + formatInt(draft.Quickness))
	printlnFn("Intelligence: " + formatInt(draft.Intelligence))
	printlnFn("Willpower: " + formatInt(draft.Willpower))
	printlnFn("Charisma: " + formatInt(draft.Charisma))
	printlnFn("Reaction: " + formatInt(draft.Reaction))
	printlnFn("Initiative: " + formatInt(draft.Initiative))
	printlnFn("Essence: " + formatFloat(draft.Essence))
	printlnFn("Magic: " + formatInt(draft.Magic))
	printlnFn("Edge: " + formatInt(draft.Edge))
	printlnFn("Skills: " + formatItems(draft.Skills))
	printlnFn("Gear: " + formatItems(draft.Gear))
	printlnFn("Cyberware: " + formatItems(draft.Cyberware))
	printlnFn("Bioware: " + formatItems(draft.Bioware))
	printlnFn("Ranged weapons: " + formatItems(draft.RangedWeapons))
	printlnFn("Melee weapons: " + formatItems(draft.MeleeWeapons))
	return nil
}

// Set assigns a scalar draft field: set <field> <value>. A missing value
// clears the field.
func (a *App) Set(ctx context.Context, args []string) error {
	if len(args) < 1 {
		printlnFn("Usage: set <field> <value>")
		return errUsage
	}
	value := strings.Join(args[1:], " ")
	if err := a.editor.SetField(args[0], value); err != nil {
		a.log.Error(ctx, "set failed", "error", err)
		return err
	}
	return nil
}

// AddItem appends an empty item to a draft list: additem <list>.
func (a *App) AddItem(ctx context.Context, args []string) error {
	if len(args) != 1 {
		printlnFn("Usage: additem <list>")
		return errUsage
	}
	if err := a.editor.AddItem(args[0]); err != nil {
		a.log.Error(ctx, "additem failed", "error", err)
		return err
	}
	return nil
}

// DelItem removes an item from a draft list: delitem <list> <index>.
func (a *App) DelItem(ctx context.Context, args []string) error {
	if len(args) != 2 {
		printlnFn("Usage: delitem <list> <index>")
		return errUsage
	}
	index, err := strconv.Atoi(args[1])
	if err != nil {
		printlnFn("Usage: delitem <list> <index>")
		return errUsage
	}
	if err := a.editor.RemoveItem(args[0], index); err != nil {
		a.log.Error(ctx, "delitem failed", "error", err)
		return err
	}
	return nil
}

// SetItem assigns one field of a draft list item:
// setitem <list> <index> <name|rating> <value>.
func (a *App) SetItem(ctx context.Context, args []string) error {
	if len(args) < 4 {
		printlnFn("Usage: setitem <list> <index> <name|rating> <value>")
		return errUsage
	}
	index, err := strconv.Atoi(args[1])
	if err != nil {
		printlnFn("Usage: setitem <list> <index> <name|rating> <value>")
		return errUsage
	}
	value := strings.Join(args[3:], " ")
	if err := a.editor.SetItemField(args[0], index, args[2], value); err != nil {
		a.log.Error(ctx, "setitem failed", "error", err)
		return err
	}
	return nil
}

// Submit sends the draft to the server.
func (a *App) Submit(ctx context.Context) error {
	wasCreating := a.editor.Mode() == editor.ModeCreating
	if err := a.editor.Submit(ctx); err != nil {
		a.log.Error(ctx, "submit failed", "error", err)
		return err
	}
	if wasCreating {
		printlnFn("Character created.")
	} else {
		printlnFn("Character updated.")
	}
	return nil
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatItems(items []models.RatedItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%s (Rating: %d)", item.Name, item.Rating))
	}
	return strings.Join(parts, ", ")
}
