// Package audit records every network configuration push.
package audit

import (
	"fmt"
	"time"
)

// OpPush is the operation recorded for a netcfg push.
const OpPush = "netcfg.push"

// Event is one auditable push of a configuration document
type Event struct {
	ID         string        `json:"id"`
	Timestamp  time.Time     `json:"timestamp"`
	User       string        `json:"user"`
	Controller string        `json:"controller"`
	Operation  string        `json:"operation"`
	Sink       string        `json:"sink,omitempty"`
	Devices    int           `json:"devices"`
	Ports      int           `json:"ports"`
	Hosts      int           `json:"hosts"`
	Links      int           `json:"links,omitempty"`
	Success    bool          `json:"success"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// Filter defines criteria for querying audit events
type Filter struct {
	Controller  string
	User        string
	Operation   string
	Since       time.Time
	Until       time.Time
	SuccessOnly bool
	FailureOnly bool
	Limit       int
}

// NewEvent creates a new audit event
func NewEvent(user, controller, operation string) *Event {
	return &Event{
		ID:         generateID(),
		Timestamp:  time.Now(),
		User:       user,
		Controller: controller,
		Operation:  operation,
	}
}

// WithSink names the delivery mechanism
func (e *Event) WithSink(kind string) *Event {
	e.Sink = kind
	return e
}

// WithCounts records the size of the pushed document
func (e *Event) WithCounts(devices, ports, hosts, links int) *Event {
	e.Devices, e.Ports, e.Hosts, e.Links = devices, ports, hosts, links
	return e
}

// WithSuccess marks the event as successful
func (e *Event) WithSuccess() *Event {
	e.Success = true
	return e
}

// WithError marks the event as failed
func (e *Event) WithError(err error) *Event {
	e.Success = false
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// WithDuration sets the push duration
func (e *Event) WithDuration(d time.Duration) *Event {
	e.Duration = d
	return e
}

func (e *Event) matches(f Filter) bool {
	switch {
	case f.Controller != "" && e.Controller != f.Controller:
		return false
	case f.User != "" && e.User != f.User:
		return false
	case f.Operation != "" && e.Operation != f.Operation:
		return false
	case !f.Since.IsZero() && e.Timestamp.Before(f.Since):
		return false
	case !f.Until.IsZero() && e.Timestamp.After(f.Until):
		return false
	case f.SuccessOnly && !e.Success:
		return false
	case f.FailureOnly && e.Success:
		return false
	}
	return true
}

func generateID() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}
