package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Envelope wraps a report view with its status. On the wire the payload fields
// follow "status" at the top level of a single JSON object.
type Envelope[T any] struct {
	Status  Status
	Payload T
}

func Success[T any](payload T) Envelope[T] {
	return Envelope[T]{Status: StatusSuccess, Payload: payload}
}

func Failure[T any](empty T) Envelope[T] {
	return Envelope[T]{Status: StatusError, Payload: empty}
}

func (e Envelope[T]) OK() bool {
	return e.Status == StatusSuccess
}

func (e Envelope[T]) MarshalJSON() ([]byte, error) {
	body, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, err
	}
	if len(body) < 2 || body[0] != '{' {
		return nil, fmt.Errorf("envelope payload %T must encode as a JSON object", e.Payload)
	}

	status, err := json.Marshal(e.Status)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(len(body) + len(status) + 12)
	buf.WriteString(`{"status":`)
	buf.Write(status)
	if len(body) > 2 {
		buf.WriteByte(',')
		buf.Write(body[1:])
	} else {
		buf.WriteByte('}')
	}
	return buf.Bytes(), nil
}

func (e *Envelope[T]) UnmarshalJSON(data []byte) error {
	var head struct {
		Status Status `json:"status"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	var payload T
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	e.Status = head.Status
	e.Payload = payload
	return nil
}
