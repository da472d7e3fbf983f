package storage

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// The loose types decode whatever a previous client version (or a hand
// edited store) left behind without ever failing. Normalization then
// turns them into the typed records.

// looseString accepts strings, numbers, booleans, null and nested JSON.
// Present reports whether the value was non-null. Falsy marks "", 0 and false.
type looseString struct {
	Value   string
	Present bool
	Falsy   bool
}

func (s *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = looseString{}
		return nil
	}

	switch data[0] {
	case '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return nil
		}
		*s = looseString{Value: v, Present: true, Falsy: v == ""}
	case 't', 'f':
		*s = looseString{Value: string(data), Present: true, Falsy: data[0] == 'f'}
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, data); err != nil {
			*s = looseString{Value: string(data), Present: true}
			return nil
		}
		*s = looseString{Value: buf.String(), Present: true}
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			*s = looseString{Value: string(data), Present: true}
			return nil
		}
		f, _ := n.Float64()
		*s = looseString{Value: n.String(), Present: true, Falsy: f == 0}
	}
	return nil
}

// truthy mirrors the "value || default" rule: empty strings, zero and
// false count as missing.
func (s looseString) truthy() bool {
	return s.Present && !s.Falsy
}

// looseTime accepts RFC 3339 strings and epoch milliseconds.
type looseTime struct {
	Value time.Time
	Valid bool
}

func (t *looseTime) UnmarshalJSON(data []byte) error {
	*t = looseTime{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	switch data[0] {
	case '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return nil
		}
		v = strings.TrimSpace(v)
		if parsed, err := time.Parse(time.RFC3339Nano, v); err == nil {
			*t = looseTime{Value: parsed, Valid: true}
			return nil
		}
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil && ms > 0 {
			*t = looseTime{Value: time.UnixMilli(ms), Valid: true}
		}
	default:
		var f float64
		if err := json.Unmarshal(data, &f); err == nil && f > 0 {
			*t = looseTime{Value: time.UnixMilli(int64(f)), Valid: true}
		}
	}
	return nil
}

// looseMessages decodes an array of message records; anything that is
// not an array is treated as absent.
type looseMessages []rawMessage

func (m *looseMessages) UnmarshalJSON(data []byte) error {
	*m = nil
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}

	out := make(looseMessages, 0, len(items))
	for _, item := range items {
		var msg rawMessage
		// rawMessage never fails on objects; scalars fall through as empty records
		_ = json.Unmarshal(item, &msg)
		out = append(out, msg)
	}
	*m = out
	return nil
}

type rawMessage struct {
	ID        looseString `json:"id"`
	Role      looseString `json:"role"`
	Content   looseString `json:"content"`
	CreatedAt looseTime   `json:"createdAt"`
	Type      looseString `json:"type"`
}

type rawChat struct {
	ID        looseString   `json:"id"`
	Title     looseString   `json:"title"`
	Model     looseString   `json:"model"`
	CreatedAt looseTime     `json:"createdAt"`
	UpdatedAt looseTime     `json:"updatedAt"`
	Messages  looseMessages `json:"messages"`
}

// decodeRawChats parses a stored conversation list. ok is false when data
// is not a JSON array.
func decodeRawChats(data []byte) (chats []rawChat, ok bool, err error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		var probe any
		if jsonErr := json.Unmarshal(data, &probe); jsonErr != nil {
			return nil, false, jsonErr
		}
		return nil, false, nil
	}

	chats = make([]rawChat, 0, len(items))
	for _, item := range items {
		var c rawChat
		_ = json.Unmarshal(item, &c)
		chats = append(chats, c)
	}
	return chats, true, nil
}
