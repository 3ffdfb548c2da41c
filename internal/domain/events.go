package domain

import "time"

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventSearchDispatched   EventType = "SearchDispatched"
	EventSearchCompleted    EventType = "SearchCompleted"
	EventSearchFailed       EventType = "SearchFailed"
	EventResponseDiscarded  EventType = "ResponseDiscarded"
	EventImageFetchFailed   EventType = "ImageFetchFailed"
	EventItemSelected       EventType = "ItemSelected"
	EventTransitionFinished EventType = "TransitionFinished"
	EventConfigLoaded       EventType = "ConfigLoaded"
	EventConfigSaved        EventType = "ConfigSaved"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// SearchDispatchedEvent is emitted when a query leaves the debounce stage
type SearchDispatchedEvent struct {
	Query SearchQuery
}

func (e SearchDispatchedEvent) Type() EventType { return EventSearchDispatched }

// SearchCompletedEvent is emitted when a response passes the sequence gate
type SearchCompletedEvent struct {
	Query   SearchQuery
	Count   int
	Elapsed time.Duration
}

func (e SearchCompletedEvent) Type() EventType { return EventSearchCompleted }

// SearchFailedEvent is emitted when the live query's backend call fails
type SearchFailedEvent struct {
	Query SearchQuery
	Err   error
}

func (e SearchFailedEvent) Type() EventType { return EventSearchFailed }

// ResponseDiscardedEvent is emitted when a superseded response arrives
type ResponseDiscardedEvent struct {
	Query  SearchQuery
	Latest uint64
}

func (e ResponseDiscardedEvent) Type() EventType { return EventResponseDiscarded }

// ImageFetchFailedEvent is emitted when a cell's artwork could not be loaded
type ImageFetchFailedEvent struct {
	ImageID string
	Err     error
}

func (e ImageFetchFailedEvent) Type() EventType { return EventImageFetchFailed }

// ItemSelectedEvent is emitted after a grid cell has been activated
type ItemSelectedEvent struct {
	Selection SelectionEvent
}

func (e ItemSelectedEvent) Type() EventType { return EventItemSelected }

// TransitionFinishedEvent is emitted when a transition driver reaches a terminal state
type TransitionFinishedEvent struct {
	ID        string
	Direction string
	State     string
	Degraded  bool
}

func (e TransitionFinishedEvent) Type() EventType { return EventTransitionFinished }

// ConfigLoadedEvent is emitted when configuration is loaded
type ConfigLoadedEvent struct {
	Path    string
	Backend string
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// ConfigSavedEvent is emitted when configuration is saved
type ConfigSavedEvent struct {
	Path string
}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }
