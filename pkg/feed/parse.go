package feed

import (
	"fmt"

	tmerrors "github.com/skalidindi/taskmill/pkg/common/errors"
	"github.com/skalidindi/taskmill/pkg/common/validation"
	"github.com/skalidindi/taskmill/pkg/task"
)

// EventType discriminates producer events.
type EventType int

const (
	// EventSubmit enqueues one task of the event's kind.
	EventSubmit EventType = iota

	// EventPause delays the producer by the event's unit count before it
	// continues with the next event.
	EventPause
)

// Event is one discrete producer instruction, consumed strictly in order.
type Event struct {
	Type  EventType
	Kind  task.Kind // set for EventSubmit
	Units int       // set for EventPause
}

// Parse decodes a producer input string where letters denote task kinds and
// digits denote delay units, e.g. "ABCD5AB5CD5A9B9CDABCD". Any other byte
// is a ValidationError naming its position; malformed input is rejected
// rather than silently skipped.
func Parse(input string) ([]Event, error) {
	if err := validation.ValidateNotEmpty("feed", "input", input); err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(input))
	for i := 0; i < len(input); i++ {
		b := input[i]
		switch {
		case b >= '0' && b <= '9':
			events = append(events, Event{Type: EventPause, Units: int(b - '0')})
		default:
			kind, ok := task.ParseKind(b)
			if !ok {
				return nil, tmerrors.NewValidationError("feed", "input", string(b),
					fmt.Sprintf("unknown event at position %d", i)).
					WithHint("valid bytes are task kinds A-D and digits 0-9")
			}
			events = append(events, Event{Type: EventSubmit, Kind: kind})
		}
	}
	return events, nil
}
