package catalog

import (
	"encoding/json"
	"fmt"
)

// LogoChoice is the tri-state logo selection for a campaign:
//
//   - Unset: the user has not touched the logo area; the active logo applies.
//   - Removed: the user explicitly removed the logo area from the brochure.
//   - Selected: a specific logo was chosen.
//
// The zero value is Unset.
type LogoChoice struct {
	state logoState
	id    string
}

type logoState int

const (
	logoUnset logoState = iota
	logoRemoved
	logoSelected
)

// LogoUnset returns the "not chosen yet" state.
func LogoUnset() LogoChoice { return LogoChoice{} }

// LogoRemoved returns the "explicitly no logo" state.
func LogoRemoved() LogoChoice { return LogoChoice{state: logoRemoved} }

// LogoSelected returns the state selecting the logo with the given id.
func LogoSelected(id string) LogoChoice {
	return LogoChoice{state: logoSelected, id: id}
}

// IsUnset reports whether no choice has been made.
func (c LogoChoice) IsUnset() bool { return c.state == logoUnset }

// IsRemoved reports whether the logo area was explicitly removed.
func (c LogoChoice) IsRemoved() bool { return c.state == logoRemoved }

// SelectedID returns the chosen logo id and whether one is selected.
func (c LogoChoice) SelectedID() (string, bool) {
	return c.id, c.state == logoSelected
}

// logoChoiceJSON is the wire form of LogoChoice.
type logoChoiceJSON struct {
	State string `json:"state"`
	ID    string `json:"id,omitempty"`
}

// MarshalJSON encodes the choice as {"state": ..., "id": ...}.
func (c LogoChoice) MarshalJSON() ([]byte, error) {
	out := logoChoiceJSON{}
	switch c.state {
	case logoUnset:
		out.State = "unset"
	case logoRemoved:
		out.State = "removed"
	case logoSelected:
		out.State = "selected"
		out.ID = c.id
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the wire form. An empty or null value is Unset.
func (c *LogoChoice) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = LogoChoice{}
		return nil
	}
	var in logoChoiceJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	switch in.State {
	case "", "unset":
		*c = LogoChoice{}
	case "removed":
		*c = LogoRemoved()
	case "selected":
		if in.ID == "" {
			return fmt.Errorf("logo choice: selected state requires an id")
		}
		*c = LogoSelected(in.ID)
	default:
		return fmt.Errorf("logo choice: unknown state %q", in.State)
	}
	return nil
}
