package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// WorkshopStatus is the lifecycle label derived from the current time.
type WorkshopStatus string

const (
	WorkshopUpcoming WorkshopStatus = "upcoming"
	WorkshopRunning  WorkshopStatus = "running"
	WorkshopPassed   WorkshopStatus = "passed"
)

// Workshop is one read-only catalogue record.
//
// Only date (YYYY-MM-DD) and time (HH:MM or HH:MM:SS) are interpreted. Every
// key of the source object, including id and title, is kept verbatim in
// Fields and written back unchanged.
type Workshop struct {
	Date   string
	Time   string
	Fields map[string]json.RawMessage
}

func (w *Workshop) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	if fields == nil {
		return errors.New("workshop must be a JSON object")
	}

	var date, clock string
	if err := stringField(fields, "date", &date); err != nil {
		return err
	}
	if err := stringField(fields, "time", &clock); err != nil {
		return err
	}

	*w = Workshop{Date: date, Time: clock, Fields: fields}
	return nil
}

func stringField(fields map[string]json.RawMessage, key string, dst *string) error {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("workshop %s must be a string: %w", key, err)
	}
	return nil
}

func (w Workshop) MarshalJSON() ([]byte, error) {
	obj, err := w.object()
	if err != nil {
		return nil, err
	}
	return json.Marshal(obj)
}

// Label names the record in error messages: its raw id when present.
func (w Workshop) Label() string {
	if id, ok := w.Fields["id"]; ok {
		return string(id)
	}
	return "without id"
}

// object merges the raw fields with Date and Time set in code.
func (w Workshop) object() (map[string]json.RawMessage, error) {
	obj := make(map[string]json.RawMessage, len(w.Fields)+3)
	for k, v := range w.Fields {
		obj[k] = v
	}
	for key, value := range map[string]string{"date": w.Date, "time": w.Time} {
		if _, ok := obj[key]; ok || value == "" {
			continue
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		obj[key] = raw
	}
	return obj, nil
}

// WorkshopView is a workshop with its computed status added.
type WorkshopView struct {
	Workshop
	Status WorkshopStatus
}

func (v WorkshopView) MarshalJSON() ([]byte, error) {
	obj, err := v.Workshop.object()
	if err != nil {
		return nil, err
	}
	status, err := json.Marshal(v.Status)
	if err != nil {
		return nil, err
	}
	obj["status"] = status
	return json.Marshal(obj)
}
