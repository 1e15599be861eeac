package handler

import (
	"fmt"

	"github.com/worldexplorers/placement/internal/assessment"
)

// actionEnvelope is the flat wire form of a flow action. The type tag
// selects which fields matter; the rest are ignored.
type actionEnvelope struct {
	Type      string           `json:"type"`
	Name      string           `json:"name,omitempty"`
	Pass      bool             `json:"pass,omitempty"`
	Text      string           `json:"text,omitempty"`
	Tier      assessment.Tier  `json:"tier,omitempty"`
	Scale     assessment.Scale `json:"scale,omitempty"`
	Note      string           `json:"note,omitempty"`
	Word      string           `json:"word,omitempty"`
	Country   string           `json:"country,omitempty"`
	Dimension string           `json:"dimension,omitempty"`
	Task      string           `json:"task,omitempty"`
	Ref       string           `json:"ref,omitempty"`
}

func decodeAction(env actionEnvelope) (assessment.Action, error) {
	switch env.Type {
	case "set_student_name":
		return assessment.SetStudentName{Name: env.Name}, nil
	case "begin":
		return assessment.BeginAssessment{}, nil
	case "continue_to_discovery":
		return assessment.ContinueToDiscovery{}, nil
	case "attach_photo":
		return assessment.AttachPhoto{Ref: env.Ref}, nil
	case "clear_photo":
		return assessment.ClearPhoto{}, nil
	case "attach_audio":
		return assessment.AttachAudio{Ref: env.Ref}, nil
	case "record_point":
		return assessment.RecordPoint{Pass: env.Pass}, nil
	case "set_open_text":
		return assessment.SetOpenText{Text: env.Text}, nil
	case "choose_open_tier":
		return assessment.ChooseOpenTier{Tier: env.Tier}, nil
	case "set_scale":
		return assessment.SetScale{Scale: env.Scale}, nil
	case "set_scale_note":
		return assessment.SetScaleNote{Note: env.Note}, nil
	case "toggle_cvc_word":
		return assessment.ToggleCVCWord{Word: env.Word}, nil
	case "toggle_sight_word":
		return assessment.ToggleSightWord{Word: env.Word}, nil
	case "toggle_reading_dimension":
		return assessment.ToggleReadingDimension{Country: env.Country, Dimension: env.Dimension}, nil
	case "continue_literacy":
		return assessment.ContinueLiteracy{}, nil
	case "choose_writing_tier":
		return assessment.ChooseWritingTier{Tier: env.Tier}, nil
	case "score_speaking":
		return assessment.ScoreSpeaking{Task: env.Task, Tier: env.Tier}, nil
	case "set_notes":
		return assessment.SetNotes{Text: env.Text}, nil
	case "draft_report":
		return assessment.DraftReport{}, nil
	case "edit_draft":
		return assessment.EditDraft{Text: env.Text}, nil
	case "back":
		return assessment.Back{}, nil
	default:
		return nil, fmt.Errorf("unknown action type %q", env.Type)
	}
}
