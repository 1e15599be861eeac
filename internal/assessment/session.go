package assessment

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PointSelection is the recorded outcome of a pointing question.
type PointSelection string

const (
	SelectedPass PointSelection = "pass"
	SelectedFail PointSelection = "fail"
)

// Stage1Answer is the answer record for one discovery question.
// Point questions fill Selected/IsCorrect; open questions fill
// Text/Tier, with IsCorrect always true once any text is entered.
type Stage1Answer struct {
	Selected  PointSelection `json:"selected,omitempty"`
	IsCorrect bool           `json:"isCorrect"`
	Text      string         `json:"text,omitempty"`
	Tier      Tier           `json:"tier,omitempty"`
}

// Scale is the coarse outcome of the S2_L1 letter-pointing question.
type Scale string

const (
	ScaleNeedsHelp Scale = "help"
	ScaleOK        Scale = "ok"
)

// Stage2Answer is the variant payload stored for a literacy question.
// Each sub-type owns its own field set; the concrete type is keyed by
// the question id it is stored under.
type Stage2Answer interface {
	stage2Type() Stage2Type
}

// ScaleAnswer is the S2_L1 payload.
type ScaleAnswer struct {
	Scale Scale  `json:"scale,omitempty"`
	Note  string `json:"note,omitempty"`
}

func (ScaleAnswer) stage2Type() Stage2Type { return Stage2PointScale }

// CVCChecklist is the S2_L2 payload: one toggle per CVC word. Any
// toggle pattern is valid state; no per-word correctness is enforced.
type CVCChecklist struct {
	Checked map[string]bool `json:"checked"`
}

func (CVCChecklist) stage2Type() Stage2Type { return Stage2CVCList }

// SightWordChecklist is the S2_L3_SightWords payload: one toggle per
// sight word. The count of true toggles is the entire stage-2 score.
type SightWordChecklist struct {
	Checked map[string]bool `json:"checked"`
}

func (SightWordChecklist) stage2Type() Stage2Type { return Stage2SightWords }

// ReadingAwareness is the S2_L4 payload: per country, the set of
// reading dimensions the student demonstrated.
type ReadingAwareness struct {
	Dimensions map[string][]string `json:"dimensions"`
}

func (ReadingAwareness) stage2Type() Stage2Type { return Stage2ReadingAware }

// WritingAnswer is the S2_L5 payload. IsCorrect is stored
// unconditionally true on recording but read by nothing; it is kept
// for export fidelity with stored records.
type WritingAnswer struct {
	Tier      Tier `json:"tier"`
	IsCorrect bool `json:"isCorrect"`
}

func (WritingAnswer) stage2Type() Stage2Type { return Stage2WritingTier }

// Stage2Answers maps literacy question ids to their variant payloads.
// It marshals each payload in a type-tagged envelope so stored
// sessions round-trip without losing the concrete type.
type Stage2Answers map[string]Stage2Answer

type stage2Envelope struct {
	Type Stage2Type      `json:"type"`
	Data json.RawMessage `json:"data"`
}

// MarshalJSON implements json.Marshaler.
func (m Stage2Answers) MarshalJSON() ([]byte, error) {
	out := make(map[string]stage2Envelope, len(m))
	for id, a := range m {
		data, err := json.Marshal(a)
		if err != nil {
			return nil, fmt.Errorf("marshal stage2 answer %s: %w", id, err)
		}
		out[id] = stage2Envelope{Type: a.stage2Type(), Data: data}
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Stage2Answers) UnmarshalJSON(data []byte) error {
	var raw map[string]stage2Envelope
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Stage2Answers, len(raw))
	for id, env := range raw {
		var (
			a   Stage2Answer
			err error
		)
		switch env.Type {
		case Stage2PointScale:
			var v ScaleAnswer
			err = json.Unmarshal(env.Data, &v)
			a = v
		case Stage2CVCList:
			var v CVCChecklist
			err = json.Unmarshal(env.Data, &v)
			a = v
		case Stage2SightWords:
			var v SightWordChecklist
			err = json.Unmarshal(env.Data, &v)
			a = v
		case Stage2ReadingAware:
			var v ReadingAwareness
			err = json.Unmarshal(env.Data, &v)
			a = v
		case Stage2WritingTier:
			var v WritingAnswer
			err = json.Unmarshal(env.Data, &v)
			a = v
		default:
			return fmt.Errorf("unknown stage2 answer type %q for %s", env.Type, id)
		}
		if err != nil {
			return fmt.Errorf("unmarshal stage2 answer %s: %w", id, err)
		}
		out[id] = a
	}
	*m = out
	return nil
}

// Session is the mutable working record for one student's assessment.
type Session struct {
	ID             string                  `json:"id"`
	StudentName    string                  `json:"studentName"`
	Stage1Answers  map[string]Stage1Answer `json:"stage1Answers"`
	Stage2Answers  Stage2Answers           `json:"stage2Answers"`
	SpeakingScores map[string]Tier         `json:"speakingScores"`
	Notes          string                  `json:"notes"`
	PhotoURL       string                  `json:"photoUrl,omitempty"`
	AudioURL       string                  `json:"audioBlobUrl,omitempty"`
	ReportDraft    string                  `json:"reportDraft"`
	IsSynced       bool                    `json:"isSynced"`
	CreatedAt      time.Time               `json:"timestamp"`
}

// NewSession creates an empty session with a fresh id and timestamp.
func NewSession() Session {
	return Session{
		ID:             uuid.NewString(),
		Stage1Answers:  map[string]Stage1Answer{},
		Stage2Answers:  Stage2Answers{},
		SpeakingScores: map[string]Tier{},
		CreatedAt:      time.Now(),
	}
}

// Clone returns a deep copy of the session. The flow reducer never
// mutates its input; every transition works on a clone.
func (s Session) Clone() Session {
	out := s
	out.Stage1Answers = make(map[string]Stage1Answer, len(s.Stage1Answers))
	for k, v := range s.Stage1Answers {
		out.Stage1Answers[k] = v
	}
	out.Stage2Answers = make(Stage2Answers, len(s.Stage2Answers))
	for k, v := range s.Stage2Answers {
		out.Stage2Answers[k] = cloneStage2(v)
	}
	out.SpeakingScores = make(map[string]Tier, len(s.SpeakingScores))
	for k, v := range s.SpeakingScores {
		out.SpeakingScores[k] = v
	}
	return out
}

func cloneStage2(a Stage2Answer) Stage2Answer {
	switch v := a.(type) {
	case CVCChecklist:
		return CVCChecklist{Checked: cloneBoolMap(v.Checked)}
	case SightWordChecklist:
		return SightWordChecklist{Checked: cloneBoolMap(v.Checked)}
	case ReadingAwareness:
		dims := make(map[string][]string, len(v.Dimensions))
		for c, ds := range v.Dimensions {
			dims[c] = append([]string(nil), ds...)
		}
		return ReadingAwareness{Dimensions: dims}
	default:
		// ScaleAnswer and WritingAnswer are value types.
		return a
	}
}

func cloneBoolMap(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Result is a finalized placement: the session frozen together with
// its computed score, level, and team name. Created once and treated
// as immutable thereafter.
type Result struct {
	Session
	TotalScore int    `json:"totalScore"`
	Level      int    `json:"level"`
	Team       string `json:"team"`
}
