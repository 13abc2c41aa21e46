package framework

import (
	"sync"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Names of the lifecycle events dispatched by a test run.
const (
	EventTestStart      = "test.start"
	EventStepAfter      = "step.after"
	EventTestFail       = "test.fail"
	EventTestError      = "test.error"
	EventTestIncomplete = "test.incomplete"
	EventTestSkipped    = "test.skipped"
	EventTestEnd        = "test.end"
)

// TestInfo describes the test that an event refers to.
type TestInfo struct {
	ID   TestID
	Name string
	// File is the source of the test, such as a suite file. It is inherited from the
	// parent test unless the test calls SetFile.
	File string
	// Env is the execution environment selected for the run, if any.
	Env ldvalue.OptionalString
}

// Event is delivered to every Handler subscribed to its Name.
//
// Step is set for step.after. Failure is the failure message for test.fail and
// test.error, or the reason for test.skipped and test.incomplete. Status is set for
// test.end.
type Event struct {
	Name    string
	Test    TestInfo
	Step    string
	Failure string
	Status  Status
}

type Handler func(Event)

// Subscriber is the part of EventBus that extensions need in order to observe a run.
type Subscriber interface {
	Subscribe(name string, handler Handler)
}

// EventBus delivers lifecycle events to handlers registered by name. A nil *EventBus
// is valid and drops all events.
type EventBus struct {
	handlers map[string][]Handler
	lock     sync.Mutex
}

func NewEventBus() *EventBus {
	return &EventBus{handlers: make(map[string][]Handler)}
}

// Subscribe registers a handler for the named event. Handlers for the same event are
// called in the order they were registered.
func (b *EventBus) Subscribe(name string, handler Handler) {
	if b == nil || handler == nil {
		return
	}
	b.lock.Lock()
	if b.handlers == nil {
		b.handlers = make(map[string][]Handler)
	}
	b.handlers[name] = append(b.handlers[name], handler)
	b.lock.Unlock()
}

// Dispatch calls the handlers for e.Name synchronously.
func (b *EventBus) Dispatch(e Event) {
	if b == nil {
		return
	}
	b.lock.Lock()
	handlers := append([]Handler(nil), b.handlers[e.Name]...)
	b.lock.Unlock()
	for _, h := range handlers {
		h(e)
	}
}

var outcomeEvents = map[Status]string{
	StatusFailed:     EventTestFail,
	StatusError:      EventTestError,
	StatusIncomplete: EventTestIncomplete,
	StatusSkipped:    EventTestSkipped,
}
