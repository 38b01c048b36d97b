package habit

import (
	"encoding/json"
	"fmt"
)

// Marshal encodes c as a JSON array of {id, title, completedDates} objects.
//
// Empty collections and empty day sets encode as [] rather than null.
func Marshal(c Collection) ([]byte, error) {
	return json.Marshal(c.Clone())
}

// Unmarshal decodes a document produced by [Marshal].
//
// A null document decodes to an empty collection and null day sets to empty
// ones. Errors wrap [ErrCorruptState].
func Unmarshal(data []byte) (Collection, error) {
	var c Collection
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	c = c.Clone()

	if err := validate(c); err != nil {
		return nil, err
	}
	return c, nil
}

// validate checks id uniqueness and day-set uniqueness.
func validate(c Collection) error {
	ids := make(map[string]struct{}, len(c))
	for i, h := range c {
		if h.ID == "" {
			return fmt.Errorf("%w: habits[%d]: missing id", ErrCorruptState, i)
		}
		if _, dup := ids[h.ID]; dup {
			return fmt.Errorf("%w: habits[%d]: duplicate id %q", ErrCorruptState, i, h.ID)
		}
		ids[h.ID] = struct{}{}

		days := make(map[string]struct{}, len(h.CompletedDates))
		for _, d := range h.CompletedDates {
			if _, dup := days[d]; dup {
				return fmt.Errorf("%w: habits[%d] (%s): duplicate day %q", ErrCorruptState, i, h.ID, d)
			}
			days[d] = struct{}{}
		}
	}
	return nil
}
