package assessment

// Stage1Type selects which pair of recording operations a discovery
// question accepts.
type Stage1Type string

const (
	// Stage1Point questions record a pass/fail pointing attempt.
	Stage1Point Stage1Type = "point"
	// Stage1Open questions record free text plus a tier choice.
	Stage1Open Stage1Type = "open"
)

// Stage2Type selects the answer payload shape of a literacy question.
type Stage2Type string

const (
	Stage2PointScale   Stage2Type = "point_scale"
	Stage2CVCList      Stage2Type = "cvc_list"
	Stage2SightWords   Stage2Type = "sight_words"
	Stage2ReadingAware Stage2Type = "reading_aware"
	Stage2WritingTier  Stage2Type = "writing_tier"
)

// Stage1Question is one fixed discovery-phase question.
type Stage1Question struct {
	ID          string
	Prompt      string
	Instruction string
	Type        Stage1Type
}

// Stage2Question is one fixed literacy-phase question.
type Stage2Question struct {
	ID     string
	Prompt string
	Type   Stage2Type
}

// SpeakingTask is one fixed speaking-phase prompt.
type SpeakingTask struct {
	ID     string
	Prompt string
}

// The question set is fixed. IDs are the canonical answer-map keys;
// changing them breaks stored sessions.
var (
	Stage1Questions = []Stage1Question{
		{ID: "S1_D1_Panda", Prompt: "Point to the panda. 🐼", Instruction: "Observe listening & pointing", Type: Stage1Point},
		{ID: "S1_D1_Fan", Prompt: "Point to the fan. 🪭", Instruction: "Observe listening & pointing", Type: Stage1Point},
		{ID: "S1_D1_SpellFan", Prompt: "How do you spell 'fan'?", Instruction: "Observe attempt", Type: Stage1Point},
		{ID: "S1_D1_SpellPanda", Prompt: "How do you spell 'panda'?", Instruction: "Observe attempt", Type: Stage1Point},
		{ID: "S1_D4", Prompt: "Observation Field", Instruction: "Record (e.g. Can read CVC, can decode a word)", Type: Stage1Open},
		{ID: "S1_D5", Prompt: "Other Behavior", Instruction: "Extra observations", Type: Stage1Open},
	}

	Stage2Questions = []Stage2Question{
		{ID: "S2_L1", Prompt: "Literacy 1: Listen and point to S, D, P, W", Type: Stage2PointScale},
		{ID: "S2_L2", Prompt: "Listen & Spell CVC: cat, dog, sit, kite, sape, rain", Type: Stage2CVCList},
		{ID: "S2_L3_SightWords", Prompt: "Sight Words Recognition (指讀)", Type: Stage2SightWords},
		{ID: "S2_L4_ReadingAwareness", Prompt: "Reading & Meaning (Countries)", Type: Stage2ReadingAware},
		{ID: "S2_L5", Prompt: "Write name & sentence", Type: Stage2WritingTier},
	}

	SpeakingTasks = []SpeakingTask{
		{ID: "spk_1", Prompt: "How are you?"},
		{ID: "spk_2", Prompt: "What is this / that?"},
		{ID: "spk_3", Prompt: "What do you like to do?"},
		{ID: "spk_5", Prompt: "Why do you like it?"},
	}

	// SightWords is the checklist for S2_L3_SightWords. Only this
	// list contributes to the stage-2 score.
	SightWords = []string{"my", "is", "this", "and", "what", "buy", "which", "can", "that", "these"}

	// CVCWords is the checklist for S2_L2.
	CVCWords = []string{"cat", "dog", "sit", "kite", "sape", "rain"}

	// Countries and ReadingDimensions span the S2_L4 grid.
	Countries         = []string{"Mexico", "Australia", "China", "India", "The UK"}
	ReadingDimensions = []string{"Read Aloud", "Decoding", "Meaning", "Match"}
)

// SightWordsID is the only stage-2 question whose answer feeds s2.
const SightWordsID = "S2_L3_SightWords"

// OrientationPrompt is the scripted intro read to the student before
// the assessment begins, with its English gloss.
const (
	OrientationPrompt   = "如果不會可以說我不知道～這個遊戲是讓老師更好的幫助你英文變進步，接下來我會用英文跟你做對話，如果聽不懂你可以說這些詞或者你不會說的話可以指圖給我看。"
	OrientationPromptEN = "It’s okay to say 'I don’t know'. This is to help me learn how to support you best."
)

// Stage1QuestionAt returns the stage-1 question at the given cursor.
func Stage1QuestionAt(idx int) (Stage1Question, bool) {
	if idx < 0 || idx >= len(Stage1Questions) {
		return Stage1Question{}, false
	}
	return Stage1Questions[idx], true
}

// Stage2QuestionAt returns the stage-2 question at the given cursor.
func Stage2QuestionAt(idx int) (Stage2Question, bool) {
	if idx < 0 || idx >= len(Stage2Questions) {
		return Stage2Question{}, false
	}
	return Stage2Questions[idx], true
}

// SpeakingTaskByID finds a speaking task by its canonical id.
func SpeakingTaskByID(id string) (SpeakingTask, bool) {
	for _, t := range SpeakingTasks {
		if t.ID == id {
			return t, true
		}
	}
	return SpeakingTask{}, false
}

func containsWord(list []string, word string) bool {
	for _, w := range list {
		if w == word {
			return true
		}
	}
	return false
}
