package engine

import "fmt"

// State copia serializable del estado de una sesión, para guardarla fuera del proceso
type State struct {
	Items        []Item     `json:"items"`
	CurrentIndex int        `json:"currentIndex"`
	Answered     bool       `json:"answered"`
	Responses    []Response `json:"responses"`
	Score        int        `json:"score"`
}

// Snapshot devuelve una copia independiente del estado actual
func (e *Engine) Snapshot() State {
	items := make([]Item, len(e.items))
	for i, it := range e.items {
		items[i] = it.clone()
	}
	responses := make([]Response, len(e.responses))
	copy(responses, e.responses)
	return State{
		Items:        items,
		CurrentIndex: e.index,
		Answered:     e.answered,
		Responses:    responses,
		Score:        e.score,
	}
}

// Restore reconstruye un motor desde un State, validando que sea coherente:
// una respuesta por ítem completado y score igual a las respuestas correctas.
func Restore(s State) (*Engine, error) {
	if err := ValidateItems(s.Items); err != nil {
		return nil, err
	}
	total := len(s.Items)
	if s.CurrentIndex < 0 || s.CurrentIndex > total {
		return nil, fmt.Errorf("%w: index %d out of range", ErrInvalidState, s.CurrentIndex)
	}
	if s.CurrentIndex == total && s.Answered {
		return nil, fmt.Errorf("%w: complete session marked as answered", ErrInvalidState)
	}

	want := s.CurrentIndex
	if s.Answered {
		want++
	}
	if len(s.Responses) != want {
		return nil, fmt.Errorf("%w: %d responses for %d answered items", ErrInvalidState, len(s.Responses), want)
	}

	correct := 0
	for i, r := range s.Responses {
		if r.ItemID != s.Items[i].ID {
			return nil, fmt.Errorf("%w: response %d is for item %q, want %q", ErrInvalidState, i, r.ItemID, s.Items[i].ID)
		}
		if r.Correct {
			correct++
		}
	}
	if correct != s.Score {
		return nil, fmt.Errorf("%w: score %d but %d correct responses", ErrInvalidState, s.Score, correct)
	}

	e := &Engine{items: make([]Item, total)}
	for i, it := range s.Items {
		e.items[i] = it.clone()
	}
	e.responses = make([]Response, len(s.Responses))
	copy(e.responses, s.Responses)
	e.index = s.CurrentIndex
	e.answered = s.Answered
	e.score = s.Score
	return e, nil
}
