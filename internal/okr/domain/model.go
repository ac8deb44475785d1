package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Okr is an objective record as served by the OKR API.
// The server is the source of truth; values here are per-view copies.
type Okr struct {
	ID           string   `json:"_id,omitempty"`
	Objective    string   `json:"objective"`
	Company      string   `json:"company,omitempty"`
	KeyResultIDs []string `json:"keyResults,omitempty"`
	ParentID     string   `json:"parent,omitempty"`
}

// KeyResult is a measurable sub-record of an Okr.
type KeyResult struct {
	ID          string  `json:"_id,omitempty"`
	Description string  `json:"description"`
	Progress    float64 `json:"progress"`
	Target      float64 `json:"target"`
	Unit        string  `json:"unit,omitempty"`
}

// Percent returns progress against target, clamped to [0, 100].
func (k KeyResult) Percent() float64 {
	if k.Target <= 0 {
		return 0
	}
	p := k.Progress / k.Target * 100
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

// OkrList decodes either a JSON array of OKRs or an object keyed by id.
// Object members are ordered by key.
type OkrList []Okr

func (l *OkrList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = OkrList{}
		return nil
	}

	if data[0] == '[' {
		var items []Okr
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}

	var byID map[string]Okr
	if err := json.Unmarshal(data, &byID); err != nil {
		return fmt.Errorf("okr list: %w", err)
	}
	keys := make([]string, 0, len(byID))
	for k := range byID {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(OkrList, 0, len(keys))
	for _, k := range keys {
		o := byID[k]
		if o.ID == "" {
			o.ID = k
		}
		out = append(out, o)
	}
	*l = out
	return nil
}

// KeyResultSet maps key result id to key result. It decodes from either an
// object keyed by id or a JSON array.
type KeyResultSet map[string]KeyResult

func (s *KeyResultSet) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = KeyResultSet{}
		return nil
	}

	out := KeyResultSet{}
	if data[0] == '[' {
		var items []KeyResult
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		for i, kr := range items {
			id := kr.ID
			if id == "" {
				id = fmt.Sprintf("%d", i)
			}
			out[id] = kr
		}
		*s = out
		return nil
	}

	var byID map[string]KeyResult
	if err := json.Unmarshal(data, &byID); err != nil {
		return fmt.Errorf("key result set: %w", err)
	}
	for k, kr := range byID {
		if kr.ID == "" {
			kr.ID = k
		}
		out[k] = kr
	}
	*s = out
	return nil
}

// Sorted returns the key results ordered by id.
func (s KeyResultSet) Sorted() []KeyResult {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]KeyResult, 0, len(keys))
	for _, k := range keys {
		out = append(out, s[k])
	}
	return out
}

// UpdateAck is whatever the server returns for a PUT.
type UpdateAck map[string]any
