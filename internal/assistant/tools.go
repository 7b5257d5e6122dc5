package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/javiermolinar/lifecoach/internal/agenda"
	"github.com/javiermolinar/lifecoach/internal/calendar"
	"github.com/javiermolinar/lifecoach/internal/dateutil"
	"github.com/javiermolinar/lifecoach/internal/logger"
	"github.com/javiermolinar/lifecoach/internal/plan"
	"github.com/javiermolinar/lifecoach/internal/timeofday"
)

// Tool names.
const (
	ToolCreate = "create_calendar_entry"
	ToolUpdate = "update_calendar_entry"
	ToolDelete = "delete_calendar_entry"
	ToolList   = "list_calendar_entries"
)

// Error kinds reported to the model.
const (
	KindValidation   = "validation"
	KindHardConflict = "hard_conflict"
	KindUnplaceable  = "unplaceable"
	KindNotFound     = "not_found"
	KindNoFields     = "no_fields"
	KindPersistence  = "persistence"
	KindUnknownTool  = "unknown_tool"
	KindInternal     = "internal"
)

var categoryEnum = []string{"work", "meeting", "appointment", "workout", "meal", "reading", "sleep", "free_time"}

func stringProp(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

// Tools returns the calendar tools offered to the model.
func Tools() []Tool {
	entryProps := func() map[string]any {
		return map[string]any{
			"title":    stringProp("Short title"),
			"date":     stringProp("Date as YYYY-MM-DD"),
			"start":    stringProp("Start time as HH:MM (24h)"),
			"end":      stringProp("End time as HH:MM (24h), after start"),
			"category": map[string]any{"type": "string", "enum": categoryEnum},
			"flexible": map[string]any{
				"type":        "boolean",
				"description": "false pins the entry so it is never moved; defaults to true",
			},
			"priority": map[string]any{"type": "integer", "minimum": 1, "maximum": 10},
		}
	}

	updateProps := entryProps()
	updateProps["id"] = stringProp("ID of the entry to change")

	return []Tool{
		{
			Name: ToolCreate,
			Description: "Create a one-off calendar entry. Flexible meals, workouts, reading and free time " +
				"that overlap it are moved to the next free slot. Work, meetings, appointments, sleep and " +
				"non-flexible entries block it.",
			Parameters: map[string]any{
				"type":       "object",
				"properties": entryProps(),
				"required":   []string{"title", "start", "end", "category"},
			},
		},
		{
			Name:        ToolUpdate,
			Description: "Change fields of an existing calendar entry. Only the given fields change.",
			Parameters: map[string]any{
				"type":       "object",
				"properties": updateProps,
				"required":   []string{"id"},
			},
		},
		{
			Name:        ToolDelete,
			Description: "Delete a calendar entry.",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{"id": stringProp("ID of the entry to delete")},
				"required":   []string{"id"},
			},
		},
		{
			Name:        ToolList,
			Description: "List calendar entries between two dates (inclusive). Defaults to the next 7 days.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"from":  stringProp("First date as YYYY-MM-DD"),
					"to":    stringProp("Last date as YYYY-MM-DD"),
					"limit": map[string]any{"type": "integer", "minimum": 1, "maximum": 1000},
				},
			},
		},
	}
}

// Toolbox executes tool calls for one owner.
type Toolbox struct {
	agenda  *agenda.Service
	ownerID string
}

// NewToolbox creates a toolbox acting on ownerID's calendar.
func NewToolbox(svc *agenda.Service, ownerID string) *Toolbox {
	return &Toolbox{agenda: svc, ownerID: ownerID}
}

// ToolResult is the JSON payload returned to the model.
type ToolResult struct {
	OK    bool       `json:"ok"`
	Data  any        `json:"data,omitempty"`
	Error *ToolError `json:"error,omitempty"`
}

// ToolError describes a failed call.
type ToolError struct {
	Kind     string   `json:"kind"`
	Message  string   `json:"message"`
	Field    string   `json:"field,omitempty"`
	Blocking []string `json:"blocking,omitempty"` // titles of blocking entries on hard conflicts
}

type relocationJSON struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	From  string `json:"from"`
	To    string `json:"to"`
}

type moveJSON struct {
	ID    string `json:"id"`
	Kind  string `json:"kind"`
	Title string `json:"title"`
	From  string `json:"from"`
	To    string `json:"to"`
}

type mutationJSON struct {
	EntryID     string           `json:"entry_id"`
	Date        string           `json:"date,omitempty"`
	Relocations []relocationJSON `json:"relocated,omitempty"`
	Moves       []moveJSON       `json:"plan_moves,omitempty"`
	Unplaced    []string         `json:"plan_unplaced,omitempty"`
}

type occurrenceJSON struct {
	Date     string `json:"date"`
	ID       string `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Kind     string `json:"kind"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Flexible bool   `json:"flexible"`
}

type updateArgs struct {
	ID string `json:"id"`
	agenda.Patch
}

type deleteArgs struct {
	ID string `json:"id"`
}

// Call runs one tool call and returns its JSON result. Failures are reported
// in the result, never as Go errors, so the model can react to them.
func (tb *Toolbox) Call(ctx context.Context, call ToolCall) string {
	res := tb.run(ctx, call)
	out, err := json.Marshal(res)
	if err != nil {
		return fmt.Sprintf(`{"ok":false,"error":{"kind":%q,"message":%q}}`, KindInternal, err.Error())
	}
	logger.Debug("tool call", "tool", call.Name, "args", call.Arguments, "ok", res.OK)
	return string(out)
}

func (tb *Toolbox) run(ctx context.Context, call ToolCall) ToolResult {
	args := []byte(call.Arguments)
	if len(args) == 0 {
		args = []byte("{}")
	}

	switch call.Name {
	case ToolCreate:
		var req agenda.CreateRequest
		if err := json.Unmarshal(args, &req); err != nil {
			return badArguments(err)
		}
		r, err := tb.agenda.Create(ctx, tb.ownerID, req)
		if err != nil {
			return failure(err)
		}
		return ToolResult{OK: true, Data: mutationData(r)}

	case ToolUpdate:
		var req updateArgs
		if err := json.Unmarshal(args, &req); err != nil {
			return badArguments(err)
		}
		if req.ID == "" {
			return ToolResult{Error: &ToolError{Kind: KindValidation, Field: "id", Message: "id is required"}}
		}
		r, err := tb.agenda.Update(ctx, tb.ownerID, req.ID, req.Patch)
		if err != nil {
			return failure(err)
		}
		return ToolResult{OK: true, Data: mutationData(r)}

	case ToolDelete:
		var req deleteArgs
		if err := json.Unmarshal(args, &req); err != nil {
			return badArguments(err)
		}
		if req.ID == "" {
			return ToolResult{Error: &ToolError{Kind: KindValidation, Field: "id", Message: "id is required"}}
		}
		if err := tb.agenda.Delete(ctx, tb.ownerID, req.ID); err != nil {
			return failure(err)
		}
		return ToolResult{OK: true, Data: map[string]string{"deleted": req.ID}}

	case ToolList:
		var req agenda.ListRequest
		if err := json.Unmarshal(args, &req); err != nil {
			return badArguments(err)
		}
		occ, err := tb.agenda.List(ctx, tb.ownerID, req)
		if err != nil {
			return failure(err)
		}
		items := make([]occurrenceJSON, len(occ))
		for i, o := range occ {
			items[i] = occurrenceJSON{
				Date:     dateutil.Format(o.Date),
				ID:       o.Entry.ID,
				Title:    o.Entry.Title,
				Category: string(o.Entry.Category),
				Kind:     string(o.Entry.Kind),
				Start:    timeofday.Format(o.Entry.Start),
				End:      timeofday.Format(o.Entry.End),
				Flexible: o.Entry.Flexible,
			}
		}
		return ToolResult{OK: true, Data: map[string]any{"entries": items}}
	}

	return ToolResult{Error: &ToolError{Kind: KindUnknownTool, Message: fmt.Sprintf("unknown tool %q", call.Name)}}
}

func mutationData(r *agenda.Result) mutationJSON {
	out := mutationJSON{EntryID: r.EntryID}
	if !r.Date.IsZero() {
		out.Date = dateutil.Format(r.Date)
	}
	for _, rel := range r.Relocations {
		out.Relocations = append(out.Relocations, relocationJSON{
			ID:    rel.Entry.ID,
			Title: rel.Entry.Title,
			From:  rel.From.String(),
			To:    rel.To.String(),
		})
	}
	for _, m := range r.Moves {
		out.Moves = append(out.Moves, moveJSON{
			ID:    m.ItemID,
			Kind:  string(m.Kind),
			Title: m.Title,
			From:  timeofday.Format(m.From),
			To:    timeofday.Format(m.To),
		})
	}
	for _, it := range r.Unplaced {
		out.Unplaced = append(out.Unplaced, it.Title)
	}
	return out
}

func badArguments(err error) ToolResult {
	return ToolResult{Error: &ToolError{Kind: KindValidation, Message: "invalid arguments: " + err.Error()}}
}

// failure maps an agenda error to its kind.
func failure(err error) ToolResult {
	te := &ToolError{Kind: ErrorKind(err), Message: err.Error()}

	var verr *calendar.ValidationError
	if errors.As(err, &verr) {
		te.Field = verr.Field
	}
	var cerr *calendar.ConflictError
	if errors.As(err, &cerr) {
		for _, b := range cerr.Blocking {
			te.Blocking = append(te.Blocking, b.Title)
		}
	}
	return ToolResult{Error: te}
}

// ErrorKind classifies an agenda error.
func ErrorKind(err error) string {
	var (
		verr *calendar.ValidationError
		perr *agenda.PersistenceError
	)
	switch {
	case errors.Is(err, calendar.ErrNoFields):
		return KindNoFields
	case errors.As(err, &verr),
		errors.Is(err, plan.ErrDuplicateItem),
		errors.Is(err, plan.ErrInvalidDuration):
		return KindValidation
	case errors.Is(err, calendar.ErrHardConflict):
		return KindHardConflict
	case errors.Is(err, calendar.ErrUnplaceable):
		return KindUnplaceable
	case errors.Is(err, calendar.ErrEntryNotFound),
		errors.Is(err, plan.ErrPlanNotFound),
		errors.Is(err, plan.ErrItemNotFound):
		return KindNotFound
	case errors.As(err, &perr):
		return KindPersistence
	default:
		return KindInternal
	}
}
