package models

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

type ChangeKind string

const (
	ChangeInsert ChangeKind = "INSERT"
	ChangeUpdate ChangeKind = "UPDATE"
	ChangeDelete ChangeKind = "DELETE"
)

// ChangeEvent - уведомление об изменении таблицы инцидентов.
// INSERT может нести неполную строку, UPDATE - только изменённые поля, DELETE - только ID.
type ChangeEvent struct {
	Kind  ChangeKind
	ID    uuid.UUID
	Row   *Incident
	Patch *IncidentPatch
}

// changeEnvelope - формат полезной нагрузки в транспорте
type changeEnvelope struct {
	Kind ChangeKind      `json:"kind"`
	ID   uuid.UUID       `json:"id"`
	Row  json.RawMessage `json:"row,omitempty"`
}

func (e ChangeEvent) MarshalJSON() ([]byte, error) {
	env := changeEnvelope{Kind: e.Kind, ID: e.ID}
	var (
		row []byte
		err error
	)
	switch {
	case e.Kind == ChangeUpdate && e.Patch != nil:
		row, err = json.Marshal(e.Patch)
	case e.Row != nil:
		row, err = json.Marshal(e.Row)
	}
	if err != nil {
		return nil, err
	}
	env.Row = row
	return json.Marshal(env)
}

func (e *ChangeEvent) UnmarshalJSON(data []byte) error {
	var env changeEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	e.Kind = env.Kind
	e.ID = env.ID
	e.Row = nil
	e.Patch = nil

	switch env.Kind {
	case ChangeInsert:
		if len(env.Row) > 0 {
			row := &Incident{}
			if err := json.Unmarshal(env.Row, row); err != nil {
				return fmt.Errorf("decode insert row: %w", err)
			}
			e.Row = row
			if e.ID == uuid.Nil {
				e.ID = row.ID
			}
		}
	case ChangeUpdate:
		if len(env.Row) > 0 {
			patch := &IncidentPatch{}
			if err := json.Unmarshal(env.Row, patch); err != nil {
				return fmt.Errorf("decode update row: %w", err)
			}
			e.Patch = patch
			if e.ID == uuid.Nil {
				var ident struct {
					ID uuid.UUID `json:"id"`
				}
				_ = json.Unmarshal(env.Row, &ident)
				e.ID = ident.ID
			}
		}
	case ChangeDelete:
		if e.ID == uuid.Nil && len(env.Row) > 0 {
			var ident struct {
				ID uuid.UUID `json:"id"`
			}
			if err := json.Unmarshal(env.Row, &ident); err != nil {
				return fmt.Errorf("decode delete row: %w", err)
			}
			e.ID = ident.ID
		}
	default:
		return fmt.Errorf("unknown change kind %q", env.Kind)
	}
	if e.ID == uuid.Nil {
		return fmt.Errorf("change event without id")
	}
	return nil
}
