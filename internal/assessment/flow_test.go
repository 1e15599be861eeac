package assessment

import (
	"strings"
	"testing"
)

func apply(t *testing.T, a Assessment, act Action) Assessment {
	t.Helper()
	next, err := Apply(a, act)
	if err != nil {
		t.Fatalf("Apply(%T) at %s[%d]: %v", act, a.Step, a.Cursor, err)
	}
	return next
}

// atStage2 drives a fresh assessment up to the first literacy question.
func atStage2(t *testing.T) Assessment {
	t.Helper()
	a := Start()
	a = apply(t, a, SetStudentName{Name: "Mei"})
	a = apply(t, a, BeginAssessment{})
	a = apply(t, a, ContinueToDiscovery{})
	for i := 0; i < 4; i++ {
		a = apply(t, a, RecordPoint{Pass: true})
	}
	a = apply(t, a, SetOpenText{Text: "reads CVC"})
	a = apply(t, a, ChooseOpenTier{Tier: TierMeeting})
	a = apply(t, a, ChooseOpenTier{Tier: TierEmerging})
	return a
}

// atStage3 drives further: through all five literacy questions.
func atStage3(t *testing.T) Assessment {
	t.Helper()
	a := atStage2(t)
	a = apply(t, a, SetScale{Scale: ScaleOK})
	a = apply(t, a, ContinueLiteracy{})
	a = apply(t, a, ToggleCVCWord{Word: "cat"})
	a = apply(t, a, ContinueLiteracy{})
	a = apply(t, a, ToggleSightWord{Word: "my"})
	a = apply(t, a, ContinueLiteracy{})
	a = apply(t, a, ToggleReadingDimension{Country: "China", Dimension: "Meaning"})
	a = apply(t, a, ContinueLiteracy{})
	a = apply(t, a, ChooseWritingTier{Tier: TierMeeting})
	return a
}

func TestFlowHappyPath(t *testing.T) {
	a := Start()
	if a.Step != StepIntro {
		t.Fatalf("new assessment starts at %s, want intro", a.Step)
	}

	a = apply(t, a, SetStudentName{Name: "Mei"})
	a = apply(t, a, BeginAssessment{})
	if a.Step != StepPhoto {
		t.Fatalf("after begin: step %s, want photo", a.Step)
	}
	a = apply(t, a, AttachPhoto{Ref: "blob:abc123"})
	a = apply(t, a, ContinueToDiscovery{})
	if a.Step != StepStage1 || a.Cursor != 0 {
		t.Fatalf("after continue: %s[%d], want stage1[0]", a.Step, a.Cursor)
	}

	// Point answers auto-advance; the two open questions need a tier
	// choice to advance, and the last one rolls into stage 2.
	for i := 0; i < 4; i++ {
		a = apply(t, a, RecordPoint{Pass: i%2 == 0})
	}
	if a.Cursor != 4 {
		t.Fatalf("after 4 point answers: cursor %d, want 4", a.Cursor)
	}
	a = apply(t, a, SetOpenText{Text: "decodes simple words"})
	if a.Cursor != 4 {
		t.Fatal("text entry must not advance")
	}
	a = apply(t, a, ChooseOpenTier{Tier: TierMeeting})
	a = apply(t, a, ChooseOpenTier{Tier: TierEmerging})
	if a.Step != StepStage2 || a.Cursor != 0 {
		t.Fatalf("after stage1: %s[%d], want stage2[0]", a.Step, a.Cursor)
	}

	a = apply(t, a, SetScale{Scale: ScaleNeedsHelp})
	a = apply(t, a, SetScaleNote{Note: "mixed D and P"})
	if a.Cursor != 0 {
		t.Fatal("scale recording must not advance without explicit continue")
	}
	a = apply(t, a, ContinueLiteracy{})
	a = apply(t, a, ToggleCVCWord{Word: "kite"})
	a = apply(t, a, ContinueLiteracy{})
	a = apply(t, a, ToggleSightWord{Word: "which"})
	a = apply(t, a, ToggleSightWord{Word: "these"})
	a = apply(t, a, ContinueLiteracy{})
	a = apply(t, a, ToggleReadingDimension{Country: "Mexico", Dimension: "Match"})
	a = apply(t, a, ContinueLiteracy{})
	if a.Cursor != 4 {
		t.Fatalf("cursor %d, want 4 (writing question)", a.Cursor)
	}
	a = apply(t, a, ChooseWritingTier{Tier: TierExceeding})
	if a.Step != StepStage3 {
		t.Fatalf("writing tier must move to stage3, got %s", a.Step)
	}

	a = apply(t, a, ScoreSpeaking{Task: "spk_1", Tier: TierMeeting})
	a = apply(t, a, ScoreSpeaking{Task: "spk_1", Tier: TierExceeding}) // overwrite allowed
	a = apply(t, a, SetNotes{Text: "confident speaker"})
	a = apply(t, a, AttachAudio{Ref: "blob:audio9"})
	a = apply(t, a, DraftReport{})
	if a.Step != StepReport {
		t.Fatalf("draft report must move to report, got %s", a.Step)
	}
	if !strings.Contains(a.Session.ReportDraft, "Explorer: Mei") {
		t.Errorf("draft not generated: %q", a.Session.ReportDraft)
	}

	a = apply(t, a, EditDraft{Text: a.Session.ReportDraft + "\nGreat first day."})
	res, err := Complete(a)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !res.IsSynced {
		t.Error("completed result must be synced")
	}
	if !strings.HasSuffix(res.ReportDraft, "Great first day.") {
		t.Error("completion must keep the edited draft")
	}
	if res.Session.SpeakingScores["spk_1"] != TierExceeding {
		t.Error("speaking overwrite lost")
	}
}

func TestFlowBackWithinStages(t *testing.T) {
	a := Start()
	a = apply(t, a, BeginAssessment{})
	a = apply(t, a, Back{})
	if a.Step != StepIntro {
		t.Fatalf("back from photo: %s, want intro", a.Step)
	}

	a = apply(t, a, BeginAssessment{})
	a = apply(t, a, ContinueToDiscovery{})
	a = apply(t, a, RecordPoint{Pass: true})
	a = apply(t, a, RecordPoint{Pass: false})
	a = apply(t, a, Back{})
	if a.Step != StepStage1 || a.Cursor != 1 {
		t.Fatalf("back within stage1: %s[%d], want stage1[1]", a.Step, a.Cursor)
	}
	a = apply(t, a, Back{})
	a = apply(t, a, Back{})
	if a.Step != StepPhoto {
		t.Fatalf("back from stage1[0]: %s, want photo", a.Step)
	}
}

func TestFlowBackFromStage2LandsOnLastDiscovery(t *testing.T) {
	a := atStage2(t)
	if a.Step != StepStage2 || a.Cursor != 0 {
		t.Fatalf("setup: %s[%d], want stage2[0]", a.Step, a.Cursor)
	}
	a = apply(t, a, Back{})
	if a.Step != StepStage1 || a.Cursor != 5 {
		t.Errorf("back from stage2[0]: %s[%d], want stage1[5]", a.Step, a.Cursor)
	}
	// Answers recorded earlier are preserved across back navigation.
	if len(a.Session.Stage1Answers) != 6 {
		t.Errorf("expected 6 preserved stage1 answers, got %d", len(a.Session.Stage1Answers))
	}
}

func TestFlowBackFromStage3KeepsLiteracyCursor(t *testing.T) {
	a := atStage3(t)
	if a.Step != StepStage3 {
		t.Fatalf("setup: step %s, want stage3", a.Step)
	}
	// Stage 3 was entered from the writing question (cursor 4); the
	// cursor must come back exactly there, not reset.
	a = apply(t, a, Back{})
	if a.Step != StepStage2 || a.Cursor != 4 {
		t.Errorf("back from stage3: %s[%d], want stage2[4]", a.Step, a.Cursor)
	}

	// Walk back to the sight-word question and re-enter stage 3 from
	// there via the writing tier is impossible (type mismatch), so
	// re-advance; the invariant is about the cursor value on exit.
	a = apply(t, a, Back{})
	if a.Cursor != 3 {
		t.Fatalf("cursor %d, want 3", a.Cursor)
	}
	a = apply(t, a, ContinueLiteracy{})
	a = apply(t, a, ChooseWritingTier{Tier: TierEmerging})
	a = apply(t, a, Back{})
	if a.Step != StepStage2 || a.Cursor != 4 {
		t.Errorf("second exit: %s[%d], want stage2[4]", a.Step, a.Cursor)
	}
}

func TestFlowBackFromReport(t *testing.T) {
	a := atStage3(t)
	a = apply(t, a, DraftReport{})
	a = apply(t, a, Back{})
	if a.Step != StepStage3 {
		t.Errorf("back from report: %s, want stage3", a.Step)
	}
}

func TestFlowBackFromIntroFails(t *testing.T) {
	if _, err := Apply(Start(), Back{}); err == nil {
		t.Error("back from intro should fail")
	}
}

func TestFlowOpenTierWithoutTextStaysIncorrect(t *testing.T) {
	a := atStage2(t)
	// Walk back to S1_D5 (answered with only a tier in atStage2).
	ans := a.Session.Stage1Answers["S1_D5"]
	if ans.IsCorrect {
		t.Error("tier choice without text must not mark the answer correct")
	}
	if ans.Tier != TierEmerging {
		t.Errorf("tier = %q, want Emerging", ans.Tier)
	}

	withText := a.Session.Stage1Answers["S1_D4"]
	if !withText.IsCorrect || withText.Text != "reads CVC" || withText.Tier != TierMeeting {
		t.Errorf("open answer with text lost fields: %+v", withText)
	}
}

func TestFlowTogglesFlip(t *testing.T) {
	a := atStage2(t)
	a = apply(t, a, ContinueLiteracy{})
	a = apply(t, a, ToggleCVCWord{Word: "dog"})
	a = apply(t, a, ToggleCVCWord{Word: "dog"})
	cvc := a.Session.Stage2Answers["S2_L2"].(CVCChecklist)
	if cvc.Checked["dog"] {
		t.Error("double toggle should leave the word unchecked")
	}

	a = apply(t, a, ContinueLiteracy{})
	a = apply(t, a, ContinueLiteracy{})
	a = apply(t, a, ToggleReadingDimension{Country: "India", Dimension: "Decoding"})
	a = apply(t, a, ToggleReadingDimension{Country: "India", Dimension: "Meaning"})
	a = apply(t, a, ToggleReadingDimension{Country: "India", Dimension: "Decoding"})
	ra := a.Session.Stage2Answers["S2_L4_ReadingAwareness"].(ReadingAwareness)
	if len(ra.Dimensions["India"]) != 1 || ra.Dimensions["India"][0] != "Meaning" {
		t.Errorf("India dimensions = %v, want [Meaning]", ra.Dimensions["India"])
	}
}

func TestFlowRejectsInvalidActions(t *testing.T) {
	s2 := atStage2(t)
	s3 := atStage3(t)

	tests := []struct {
		name string
		a    Assessment
		act  Action
	}{
		{"point answer at scale question", s2, RecordPoint{Pass: true}},
		{"continue at writing question", func() Assessment {
			a := s2
			for i := 0; i < 4; i++ {
				a = apply(t, a, ContinueLiteracy{})
			}
			return a
		}(), ContinueLiteracy{}},
		{"speaking score outside stage3", s2, ScoreSpeaking{Task: "spk_1", Tier: TierMeeting}},
		{"unknown speaking task", s3, ScoreSpeaking{Task: "spk_4", Tier: TierMeeting}},
		{"unknown sight word", func() Assessment {
			a := s2
			a = apply(t, a, ContinueLiteracy{})
			a = apply(t, a, ContinueLiteracy{})
			return a
		}(), ToggleSightWord{Word: "banana"}},
		{"invalid tier", s3, ScoreSpeaking{Task: "spk_1", Tier: Tier("Good")}},
		{"name edit after stages started", s3, SetStudentName{Name: "Other"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Apply(tt.a, tt.act); err == nil {
				t.Errorf("Apply(%T) should fail", tt.act)
			}
		})
	}
}

func TestFlowApplyDoesNotMutateInput(t *testing.T) {
	a := atStage2(t)
	before := len(a.Session.Stage2Answers)
	next := apply(t, a, SetScale{Scale: ScaleOK})
	if len(a.Session.Stage2Answers) != before {
		t.Error("Apply mutated its input session")
	}
	if _, ok := next.Session.Stage2Answers["S2_L1"]; !ok {
		t.Error("result missing recorded answer")
	}
}

func TestCompleteOnlyFromReport(t *testing.T) {
	if _, err := Complete(atStage3(t)); err == nil {
		t.Error("complete from stage3 should fail")
	}
	a := apply(t, atStage3(t), DraftReport{})
	if _, err := Complete(a); err != nil {
		t.Errorf("complete from report: %v", err)
	}
}
