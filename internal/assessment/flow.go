package assessment

import "fmt"

// Step is a state of the assessment flow.
type Step string

const (
	StepIntro  Step = "intro"
	StepPhoto  Step = "photo"
	StepStage1 Step = "stage1"
	StepStage2 Step = "stage2"
	StepStage3 Step = "stage3"
	StepReport Step = "report"
)

// Assessment is the full working state of one in-progress assessment:
// the session plus the flow position. Values are immutable between
// transitions; Apply returns a new Assessment and never mutates its
// input.
type Assessment struct {
	Session Session `json:"session"`
	Step    Step    `json:"step"`
	Cursor  int     `json:"cursor"`
}

// Start creates a fresh assessment at the intro step.
func Start() Assessment {
	return Assessment{Session: NewSession(), Step: StepIntro}
}

// Action is a discrete evaluator command applied to an assessment.
// One action type exists per recording operation, plus navigation.
type Action interface {
	isAction()
}

// SetStudentName records or edits the student's name. Valid at the
// intro and photo steps only.
type SetStudentName struct{ Name string }

// BeginAssessment moves from intro to evidence collection.
type BeginAssessment struct{}

// ContinueToDiscovery moves from evidence collection to stage 1.
type ContinueToDiscovery struct{}

// AttachPhoto stores an opaque photo reference delivered by the
// capture or file-import collaborator. Valid at any step: captures
// complete asynchronously and the flow never blocks on them.
type AttachPhoto struct{ Ref string }

// ClearPhoto discards the stored photo reference (retake).
type ClearPhoto struct{}

// AttachAudio stores an opaque audio-recording reference.
type AttachAudio struct{ Ref string }

// RecordPoint records a pass/fail outcome for the current stage-1
// pointing question and advances the cursor.
type RecordPoint struct{ Pass bool }

// SetOpenText records free text for the current stage-1 open question.
// Does not advance; entering text always marks the answer correct.
type SetOpenText struct{ Text string }

// ChooseOpenTier records the tier for the current stage-1 open
// question and advances the cursor.
type ChooseOpenTier struct{ Tier Tier }

// SetScale records the coarse outcome of the S2_L1 question.
type SetScale struct{ Scale Scale }

// SetScaleNote records the free-text note of the S2_L1 question.
type SetScaleNote struct{ Note string }

// ToggleCVCWord flips one word's toggle on the S2_L2 checklist.
type ToggleCVCWord struct{ Word string }

// ToggleSightWord flips one word's toggle on the sight-word checklist.
type ToggleSightWord struct{ Word string }

// ToggleReadingDimension flips one country/dimension membership on the
// S2_L4 grid.
type ToggleReadingDimension struct{ Country, Dimension string }

// ContinueLiteracy is the explicit continue trigger for the first four
// stage-2 questions. The last one (writing tier) exits the stage via
// ChooseWritingTier instead.
type ContinueLiteracy struct{}

// ChooseWritingTier records the S2_L5 tier and moves to stage 3.
type ChooseWritingTier struct{ Tier Tier }

// ScoreSpeaking records a tier for one speaking task. Overwritable;
// never advances.
type ScoreSpeaking struct {
	Task string
	Tier Tier
}

// SetNotes records the evaluator's final observations.
type SetNotes struct{ Text string }

// DraftReport generates the report draft from the current answers and
// moves to the report step.
type DraftReport struct{}

// EditDraft overwrites the report draft at the report step.
type EditDraft struct{ Text string }

// Back undoes one navigation step. Answers are preserved.
type Back struct{}

func (SetStudentName) isAction()         {}
func (BeginAssessment) isAction()        {}
func (ContinueToDiscovery) isAction()    {}
func (AttachPhoto) isAction()            {}
func (ClearPhoto) isAction()             {}
func (AttachAudio) isAction()            {}
func (RecordPoint) isAction()            {}
func (SetOpenText) isAction()            {}
func (ChooseOpenTier) isAction()         {}
func (SetScale) isAction()               {}
func (SetScaleNote) isAction()           {}
func (ToggleCVCWord) isAction()          {}
func (ToggleSightWord) isAction()        {}
func (ToggleReadingDimension) isAction() {}
func (ContinueLiteracy) isAction()       {}
func (ChooseWritingTier) isAction()      {}
func (ScoreSpeaking) isAction()          {}
func (SetNotes) isAction()               {}
func (DraftReport) isAction()            {}
func (EditDraft) isAction()              {}
func (Back) isAction()                   {}

// Apply is the flow reducer: it validates the action against the
// current step, records the answer, and advances navigation where the
// action calls for it. The input is never mutated.
func Apply(a Assessment, act Action) (Assessment, error) {
	next := a
	next.Session = a.Session.Clone()

	switch act := act.(type) {
	case SetStudentName:
		if a.Step != StepIntro && a.Step != StepPhoto {
			return a, stepError(act, a.Step)
		}
		next.Session.StudentName = act.Name
		return next, nil

	case BeginAssessment:
		if a.Step != StepIntro {
			return a, stepError(act, a.Step)
		}
		next.Step = StepPhoto
		return next, nil

	case ContinueToDiscovery:
		if a.Step != StepPhoto {
			return a, stepError(act, a.Step)
		}
		next.Step = StepStage1
		next.Cursor = 0
		return next, nil

	case AttachPhoto:
		next.Session.PhotoURL = act.Ref
		return next, nil

	case ClearPhoto:
		next.Session.PhotoURL = ""
		return next, nil

	case AttachAudio:
		next.Session.AudioURL = act.Ref
		return next, nil

	case RecordPoint:
		q, err := currentStage1(a, Stage1Point)
		if err != nil {
			return a, err
		}
		ans := Stage1Answer{Selected: SelectedFail}
		if act.Pass {
			ans = Stage1Answer{Selected: SelectedPass, IsCorrect: true}
		}
		next.Session.Stage1Answers[q.ID] = ans
		advanceStage1(&next)
		return next, nil

	case SetOpenText:
		q, err := currentStage1(a, Stage1Open)
		if err != nil {
			return a, err
		}
		ans := next.Session.Stage1Answers[q.ID]
		ans.Text = act.Text
		ans.IsCorrect = true
		next.Session.Stage1Answers[q.ID] = ans
		return next, nil

	case ChooseOpenTier:
		q, err := currentStage1(a, Stage1Open)
		if err != nil {
			return a, err
		}
		if !act.Tier.Valid() {
			return a, fmt.Errorf("invalid tier %q", act.Tier)
		}
		ans := next.Session.Stage1Answers[q.ID]
		ans.Tier = act.Tier
		next.Session.Stage1Answers[q.ID] = ans
		advanceStage1(&next)
		return next, nil

	case SetScale:
		q, err := currentStage2(a, Stage2PointScale)
		if err != nil {
			return a, err
		}
		if act.Scale != ScaleNeedsHelp && act.Scale != ScaleOK {
			return a, fmt.Errorf("invalid scale %q", act.Scale)
		}
		ans, _ := next.Session.Stage2Answers[q.ID].(ScaleAnswer)
		ans.Scale = act.Scale
		next.Session.Stage2Answers[q.ID] = ans
		return next, nil

	case SetScaleNote:
		q, err := currentStage2(a, Stage2PointScale)
		if err != nil {
			return a, err
		}
		ans, _ := next.Session.Stage2Answers[q.ID].(ScaleAnswer)
		ans.Note = act.Note
		next.Session.Stage2Answers[q.ID] = ans
		return next, nil

	case ToggleCVCWord:
		q, err := currentStage2(a, Stage2CVCList)
		if err != nil {
			return a, err
		}
		if !containsWord(CVCWords, act.Word) {
			return a, fmt.Errorf("unknown CVC word %q", act.Word)
		}
		ans, ok := next.Session.Stage2Answers[q.ID].(CVCChecklist)
		if !ok {
			ans = CVCChecklist{Checked: map[string]bool{}}
		}
		ans.Checked[act.Word] = !ans.Checked[act.Word]
		next.Session.Stage2Answers[q.ID] = ans
		return next, nil

	case ToggleSightWord:
		q, err := currentStage2(a, Stage2SightWords)
		if err != nil {
			return a, err
		}
		if !containsWord(SightWords, act.Word) {
			return a, fmt.Errorf("unknown sight word %q", act.Word)
		}
		ans, ok := next.Session.Stage2Answers[q.ID].(SightWordChecklist)
		if !ok {
			ans = SightWordChecklist{Checked: map[string]bool{}}
		}
		ans.Checked[act.Word] = !ans.Checked[act.Word]
		next.Session.Stage2Answers[q.ID] = ans
		return next, nil

	case ToggleReadingDimension:
		q, err := currentStage2(a, Stage2ReadingAware)
		if err != nil {
			return a, err
		}
		if !containsWord(Countries, act.Country) {
			return a, fmt.Errorf("unknown country %q", act.Country)
		}
		if !containsWord(ReadingDimensions, act.Dimension) {
			return a, fmt.Errorf("unknown reading dimension %q", act.Dimension)
		}
		ans, ok := next.Session.Stage2Answers[q.ID].(ReadingAwareness)
		if !ok {
			ans = ReadingAwareness{Dimensions: map[string][]string{}}
		}
		ans.Dimensions[act.Country] = toggleMembership(ans.Dimensions[act.Country], act.Dimension)
		next.Session.Stage2Answers[q.ID] = ans
		return next, nil

	case ContinueLiteracy:
		if a.Step != StepStage2 {
			return a, stepError(act, a.Step)
		}
		if a.Cursor >= len(Stage2Questions)-1 {
			return a, fmt.Errorf("the writing question exits via its tier choice, not continue")
		}
		next.Cursor = a.Cursor + 1
		return next, nil

	case ChooseWritingTier:
		q, err := currentStage2(a, Stage2WritingTier)
		if err != nil {
			return a, err
		}
		if !act.Tier.Valid() {
			return a, fmt.Errorf("invalid tier %q", act.Tier)
		}
		// Replaces any previous payload wholesale; IsCorrect is
		// recorded unconditionally true and feeds nothing.
		next.Session.Stage2Answers[q.ID] = WritingAnswer{Tier: act.Tier, IsCorrect: true}
		next.Step = StepStage3
		// Cursor intentionally left alone: backing out of stage 3
		// must land on whatever literacy question was active here.
		return next, nil

	case ScoreSpeaking:
		if a.Step != StepStage3 {
			return a, stepError(act, a.Step)
		}
		if _, ok := SpeakingTaskByID(act.Task); !ok {
			return a, fmt.Errorf("unknown speaking task %q", act.Task)
		}
		if !act.Tier.Valid() {
			return a, fmt.Errorf("invalid tier %q", act.Tier)
		}
		next.Session.SpeakingScores[act.Task] = act.Tier
		return next, nil

	case SetNotes:
		if a.Step != StepStage3 && a.Step != StepReport {
			return a, stepError(act, a.Step)
		}
		next.Session.Notes = act.Text
		return next, nil

	case DraftReport:
		if a.Step != StepStage3 {
			return a, stepError(act, a.Step)
		}
		b := Score(next.Session)
		next.Session.ReportDraft = GenerateReport(next.Session.StudentName, b.Level)
		next.Step = StepReport
		return next, nil

	case EditDraft:
		if a.Step != StepReport {
			return a, stepError(act, a.Step)
		}
		next.Session.ReportDraft = act.Text
		return next, nil

	case Back:
		return back(next)

	default:
		return a, fmt.Errorf("unknown action %T", act)
	}
}

// back undoes a single navigation step. The stage-2 → stage-1 jump
// forces the last discovery question; the stage-3 → stage-2 return
// keeps the cursor exactly as it was when stage 3 was entered.
func back(a Assessment) (Assessment, error) {
	switch a.Step {
	case StepPhoto:
		a.Step = StepIntro
	case StepStage1:
		if a.Cursor > 0 {
			a.Cursor--
		} else {
			a.Step = StepPhoto
		}
	case StepStage2:
		if a.Cursor > 0 {
			a.Cursor--
		} else {
			a.Step = StepStage1
			a.Cursor = len(Stage1Questions) - 1
		}
	case StepStage3:
		a.Step = StepStage2
	case StepReport:
		a.Step = StepStage3
	default:
		return a, fmt.Errorf("cannot go back from %s", a.Step)
	}
	return a, nil
}

// Complete finalizes an assessment at the report step into an
// immutable placement result. The edited report draft is kept as-is.
func Complete(a Assessment) (Result, error) {
	if a.Step != StepReport {
		return Result{}, fmt.Errorf("complete is only reachable from the report step, not %s", a.Step)
	}
	return Finalize(a.Session), nil
}

func currentStage1(a Assessment, want Stage1Type) (Stage1Question, error) {
	if a.Step != StepStage1 {
		return Stage1Question{}, fmt.Errorf("not at a discovery question (step %s)", a.Step)
	}
	q, ok := Stage1QuestionAt(a.Cursor)
	if !ok {
		return Stage1Question{}, fmt.Errorf("discovery cursor %d out of range", a.Cursor)
	}
	if q.Type != want {
		return Stage1Question{}, fmt.Errorf("question %s is %s, not %s", q.ID, q.Type, want)
	}
	return q, nil
}

func currentStage2(a Assessment, want Stage2Type) (Stage2Question, error) {
	if a.Step != StepStage2 {
		return Stage2Question{}, fmt.Errorf("not at a literacy question (step %s)", a.Step)
	}
	q, ok := Stage2QuestionAt(a.Cursor)
	if !ok {
		return Stage2Question{}, fmt.Errorf("literacy cursor %d out of range", a.Cursor)
	}
	if q.Type != want {
		return Stage2Question{}, fmt.Errorf("question %s is %s, not %s", q.ID, q.Type, want)
	}
	return q, nil
}

// advanceStage1 moves to the next discovery question, or into stage 2
// after the last one.
func advanceStage1(a *Assessment) {
	if a.Cursor < len(Stage1Questions)-1 {
		a.Cursor++
		return
	}
	a.Step = StepStage2
	a.Cursor = 0
}

func stepError(act Action, step Step) error {
	return fmt.Errorf("%T not valid at step %s", act, step)
}

func toggleMembership(list []string, item string) []string {
	for i, v := range list {
		if v == item {
			return append(append([]string(nil), list[:i]...), list[i+1:]...)
		}
	}
	return append(append([]string(nil), list...), item)
}
