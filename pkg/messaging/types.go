package messaging

import (
	"time"

	"github.com/boristopalov/riverswim/pkg/core"
)

// Message carries one step of an episode to its observers.
type Message struct {
	From       string   // episode ID of the publisher
	To         []string // subscriber IDs (empty means broadcast)
	Transition core.Transition
	Timestamp  time.Time
}

// Broker fans step messages out to observers
type Broker interface {
	// Publish sends a message to specified recipients
	Publish(msg Message) error
	// Subscribe registers an observer to receive messages
	Subscribe(id string, ch chan<- Message) error
	// Unsubscribe removes an observer's subscription
	Unsubscribe(id string) error
}
