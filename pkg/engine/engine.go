// Package engine implementa la progresión de una sesión de mini-juego:
// ítem actual -> respuesta -> feedback -> siguiente ítem -> resumen.
//
// El motor es síncrono y sin E/S. El llamador decide cuánto esperar entre
// Submit y Advance, qué feedback mostrar y qué umbral de aprobado aplicar.
// Una instancia sirve a una sola sesión de un jugador y no es segura para
// uso concurrente.
package engine

// Phase estado de la máquina de la sesión
type Phase int

const (
	NotStarted Phase = iota
	Presenting
	Answered
	Complete
)

func (p Phase) String() string {
	switch p {
	case Presenting:
		return "presenting"
	case Answered:
		return "answered"
	case Complete:
		return "complete"
	default:
		return "not_started"
	}
}

// Response registro inmutable de cómo se respondió un ítem
type Response struct {
	ItemID   string `json:"itemId"`
	OptionID string `json:"optionId,omitempty"`
	Text     string `json:"text,omitempty"`
	Correct  bool   `json:"correct"`
}

// Summary resultado terminal de una sesión. Total es el denominador de cualquier umbral.
type Summary struct {
	Score     int        `json:"score"`
	Total     int        `json:"total"`
	Responses []Response `json:"responses"`
}

// Result lo que devuelve un envío
type Result struct {
	Correct bool `json:"correct"`
	Score   int  `json:"score"`
}

// Step lo que devuelve Advance: el siguiente ítem o el resumen final
type Step struct {
	Item    *Item    `json:"item,omitempty"`
	Summary *Summary `json:"summary,omitempty"`
}

// Done indica que la sesión terminó
func (s Step) Done() bool { return s.Summary != nil }

// Engine el estado mutable de una sesión. El valor cero está en NotStarted.
type Engine struct {
	items     []Item
	index     int
	answered  bool
	responses []Response
	score     int
}

// New crea un motor y lo inicia con items
func New(items []Item) (*Engine, error) {
	e := &Engine{}
	if _, err := e.Start(items); err != nil {
		return nil, err
	}
	return e, nil
}

// Start valida items e inicializa la sesión. Devuelve el primer ítem.
func (e *Engine) Start(items []Item) (Item, error) {
	if err := ValidateItems(items); err != nil {
		return Item{}, err
	}
	copied := make([]Item, len(items))
	for i, it := range items {
		copied[i] = it.clone()
	}
	e.items = copied
	e.init()
	return e.items[0].clone(), nil
}

func (e *Engine) init() {
	e.index = 0
	e.answered = false
	e.responses = []Response{}
	e.score = 0
}

// Reset reinicia la sesión con los mismos ítems. No hay reanudación parcial.
func (e *Engine) Reset() (Item, error) {
	if e.items == nil {
		return Item{}, ErrNotStarted
	}
	e.init()
	return e.items[0].clone(), nil
}

func (e *Engine) Phase() Phase {
	switch {
	case e.items == nil:
		return NotStarted
	case e.index >= len(e.items):
		return Complete
	case e.answered:
		return Answered
	default:
		return Presenting
	}
}

// Current devuelve el ítem actual; false si no hay sesión o ya terminó
func (e *Engine) Current() (Item, bool) {
	if e.items == nil || e.index >= len(e.items) {
		return Item{}, false
	}
	return e.items[e.index].clone(), true
}

func (e *Engine) Score() int { return e.score }
func (e *Engine) Index() int { return e.index }
func (e *Engine) Total() int { return len(e.items) }

// Submit registra la opción elegida para un ítem de elección o clasificación.
//
// Un itemID que no es el actual, o un segundo envío antes de Advance, se
// ignora con ErrIgnoredDuplicateSubmission y el estado no cambia.
func (e *Engine) Submit(itemID, optionID string) (Result, error) {
	it, err := e.presenting(itemID)
	if err != nil {
		return Result{Score: e.score}, err
	}
	if it.Kind == KindReflection {
		return Result{Score: e.score}, ErrWrongItemKind
	}
	opt, ok := it.option(optionID)
	if !ok {
		return Result{Score: e.score}, ErrUnknownOption
	}
	return e.record(Response{ItemID: it.ID, OptionID: opt.ID, Correct: it.grade(opt)}), nil
}

// SubmitText registra una reflexión. Cuenta como correcta si cumple la longitud mínima;
// si no la cumple devuelve ErrReflectionTooShort y no registra nada.
func (e *Engine) SubmitText(itemID, text string) (Result, error) {
	it, err := e.presenting(itemID)
	if err != nil {
		return Result{Score: e.score}, err
	}
	if it.Kind != KindReflection {
		return Result{Score: e.score}, ErrWrongItemKind
	}
	if !it.meetsLength(text) {
		return Result{Score: e.score}, ErrReflectionTooShort
	}
	return e.record(Response{ItemID: it.ID, Text: text, Correct: true}), nil
}

func (e *Engine) presenting(itemID string) (Item, error) {
	if e.Phase() != Presenting {
		return Item{}, ErrIgnoredDuplicateSubmission
	}
	it := e.items[e.index]
	if it.ID != itemID {
		return Item{}, ErrIgnoredDuplicateSubmission
	}
	return it, nil
}

func (e *Engine) record(r Response) Result {
	e.responses = append(e.responses, r)
	if r.Correct {
		e.score++
	}
	e.answered = true
	return Result{Correct: r.Correct, Score: e.score}
}

// Advance pasa al siguiente ítem. Llamarlo antes de responder es un error del llamador.
// En Complete no cambia nada y devuelve el resumen otra vez.
func (e *Engine) Advance() (Step, error) {
	switch e.Phase() {
	case NotStarted:
		return Step{}, ErrNotStarted
	case Presenting:
		return Step{}, ErrOutOfSequenceAdvance
	case Complete:
		s := e.summary()
		return Step{Summary: &s}, nil
	}

	e.index++
	e.answered = false
	if e.index == len(e.items) {
		s := e.summary()
		return Step{Summary: &s}, nil
	}
	next := e.items[e.index].clone()
	return Step{Item: &next}, nil
}

// Summary solo es válido en Complete
func (e *Engine) Summary() (Summary, error) {
	if e.Phase() != Complete {
		return Summary{}, ErrSessionIncomplete
	}
	return e.summary(), nil
}

func (e *Engine) summary() Summary {
	responses := make([]Response, len(e.responses))
	copy(responses, e.responses)
	return Summary{Score: e.score, Total: len(e.items), Responses: responses}
}
