package types

import (
	"bytes"

	"github.com/goccy/go-json"
)

// TriviaRequest is the category and question extracted from a trivia bot message.
type TriviaRequest struct {
	Category string
	Question string
}

// TriviaRecord is one entry returned by the trivia API. Fields the bot does
// not use are ignored when decoding.
type TriviaRecord struct {
	ID       TriviaID       `json:"id,omitempty"`
	Question string         `json:"question"`
	Answer   string         `json:"answer"`
	Category TriviaCategory `json:"category"`
	Hint1    string         `json:"hint1,omitempty"`
	Hint2    string         `json:"hint2,omitempty"`
}

// TriviaID identifies a record. The API may send it as a string or a number.
type TriviaID string

// UnmarshalJSON accepts a string, a number, or null.
func (id *TriviaID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = TriviaID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = TriviaID(n.String())
	return nil
}

// TriviaCategory is the category name of a record. The API has served it both
// as a plain string and as an object with a name field.
type TriviaCategory string

// UnmarshalJSON accepts a string, an object with a "name" field, or null.
func (c *TriviaCategory) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = TriviaCategory(s)
		return nil
	}

	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*c = TriviaCategory(obj.Name)
	return nil
}
