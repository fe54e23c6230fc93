package wizard

type EffectKind string

const (
	// EffectScrollToStage asks the view to bring the active stage content
	// into view.
	EffectScrollToStage EffectKind = "scroll_to_stage"
	// EffectFocusQuestion asks the view to focus a question's input.
	EffectFocusQuestion EffectKind = "focus_question"
	// EffectAlert shows a blocking message.
	EffectAlert EffectKind = "alert"
	// EffectClose tells the parent view to leave the form.
	EffectClose EffectKind = "close"
)

// Effect is a side effect for the rendering layer, queued by state
// transitions and consumed with DrainEffects.
type Effect struct {
	Kind       EffectKind `json:"kind"`
	StageID    string     `json:"stageId,omitempty"`
	QuestionID string     `json:"questionId,omitempty"`
	Message    string     `json:"message,omitempty"`
}

func (s *Session) push(e Effect) {
	s.effects = append(s.effects, e)
}

func (s *Session) alert(msg string) {
	s.push(Effect{Kind: EffectAlert, Message: msg})
}

// DrainEffects returns the queued effects in order and clears the queue.
func (s *Session) DrainEffects() []Effect {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.effects
	s.effects = nil
	if out == nil {
		out = []Effect{}
	}
	return out
}
