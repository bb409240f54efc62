package resource

// Handle is an opaque reference to a payload in a table. It is one machine
// word so it fits the payload slot of a heap literal.
// Handle 0 is reserved and always invalid.
type Handle uintptr

// TypeID tags what kind of payload a handle refers to.
type TypeID uint32

// Payload kinds stored by this module.
const (
	TypeClosure TypeID = iota + 1
	TypeGuestClosure
)

// Event types for payload lifecycle notifications.
type EventType uint8

const (
	EventCreated EventType = iota
	EventDropped
)

func (e EventType) String() string {
	switch e {
	case EventCreated:
		return "created"
	case EventDropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// Event represents a payload lifecycle event.
type Event struct {
	Value  any
	Handle Handle
	TypeID TypeID
	Type   EventType
}

// Observer receives notifications about payload lifecycle events.
type Observer interface {
	OnResourceEvent(Event)
}

// ObserverFunc adapts a func to Observer.
type ObserverFunc func(Event)

// OnResourceEvent calls f(e).
func (f ObserverFunc) OnResourceEvent(e Event) { f(e) }

// Backend provides the underlying storage mechanism for payloads.
type Backend interface {
	// Create stores a value and returns a handle.
	Create(typeID TypeID, value any) (Handle, error)

	// Get retrieves a value by handle.
	Get(handle Handle) (any, bool)

	// Drop removes a payload and returns (value, true) if it was live.
	Drop(handle Handle) (any, bool)

	// Close releases all payloads held by the backend.
	Close() error
}

// Table manages payloads with type information and observer support.
type Table interface {
	// Insert adds a value and returns its handle.
	Insert(typeID TypeID, value any) Handle

	// Get retrieves a value by handle.
	Get(handle Handle) (any, bool)

	// GetTyped retrieves a value only if it matches the expected type.
	GetTyped(handle Handle, typeID TypeID) (any, bool)

	// Remove drops a payload and returns (value, true) if found.
	Remove(handle Handle) (any, bool)

	// Subscribe adds an observer for lifecycle events.
	Subscribe(Observer)

	// Unsubscribe removes an observer.
	Unsubscribe(Observer)

	// Len returns the number of live payloads.
	Len() int

	// Clear drops all payloads.
	Clear()

	// Close releases all payloads and stops accepting operations.
	Close() error
}

// TypedTable provides type-safe access to payloads of a specific type.
type TypedTable[T any] interface {
	// Insert adds a value and returns its handle.
	Insert(value T) Handle

	// Get retrieves a value by handle.
	Get(handle Handle) (T, bool)

	// Remove drops a payload and returns (value, true) if found.
	Remove(handle Handle) (T, bool)

	// Len returns the number of live payloads.
	Len() int

	// Each iterates over all live payloads.
	Each(func(Handle, T) bool)
}

// Dropper is optionally implemented by payloads that need cleanup. Drop runs
// once, when the payload leaves the table.
type Dropper interface {
	Drop()
}
