package assessment

// Tier is one of three ordered proficiency labels used for open-ended
// and speaking assessments.
type Tier string

const (
	TierEmerging  Tier = "Emerging"
	TierMeeting   Tier = "Meeting"
	TierExceeding Tier = "Exceeding"
)

// AllTiers returns all tiers in order from lowest to highest.
func AllTiers() []Tier {
	return []Tier{TierEmerging, TierMeeting, TierExceeding}
}

// Valid reports whether t is one of the three known tiers.
func (t Tier) Valid() bool {
	switch t {
	case TierEmerging, TierMeeting, TierExceeding:
		return true
	}
	return false
}

// DisplayHint returns the short descriptor shown under a speaking tier.
func (t Tier) DisplayHint() string {
	switch t {
	case TierEmerging:
		return "Words"
	case TierMeeting:
		return "Sentences"
	case TierExceeding:
		return "Fluent"
	default:
		return string(t)
	}
}

// AppName is the shared identity banner of the placement tool.
const AppName = "World Explorers｜Try your best"

// Version identifies the placement engine in startup logs.
const Version = "1.0"

// Team is one placement-catalog entry: the static metadata for a
// single tier, including the bilingual guidance text interpolated into
// reports. All fields are fixed data; nothing here is computed.
type Team struct {
	Name        string
	LevelName   string
	Mapping     string
	Icon        string
	Reason      string
	ReasonCN    string
	Strengths   []string
	StrengthsCN []string
	NextSteps   []string
	NextStepsCN []string
}

var teams = map[int]Team{
	1: {
		Name:      "Happy Seed",
		LevelName: "Seed",
		Mapping:   "Pre-A1 Starters",
		Icon:      "🌱",
		Reason:    "For curious beginners ready to sprout and build foundational confidence.",
		ReasonCN:  "适合准备开始探索、建立基础自信的初学者。",
		Strengths: []string{
			"Shows curiosity in pointing tasks.",
			"Can identify high-frequency objects.",
		},
		StrengthsCN: []string{
			"在指认任务中表现出好奇心。",
			"能识别高频生活物品。",
		},
		NextSteps: []string{
			"Listen to simple English nursery rhymes at home.",
			"Practice pointing to and naming household items in English.",
		},
		NextStepsCN: []string{
			"在家听简单的英文童谣。",
			"练习用英文指认并命名家里的物品。",
		},
	},
	2: {
		Name:      "Growing Sprout",
		LevelName: "Sprout",
		Mapping:   "A1 Movers",
		Icon:      "🌿",
		Reason:    "For flexible thinkers ready to sway and grow into complete sentences.",
		ReasonCN:  "适合准备迎接挑战、尝试完整短句表达的灵活思考者。",
		Strengths: []string{
			"Can recognize familiar sight words.",
			"Able to answer simple 'What' questions.",
		},
		StrengthsCN: []string{
			"能识别熟悉的常用词汇。",
			"能回答简单的 What 问题。",
		},
		NextSteps: []string{
			"Read picture books with 1-2 sentences per page.",
			"Practice asking 'What is this?' in daily routines.",
		},
		NextStepsCN: []string{
			"阅读每页有1-2个句子的绘本。",
			"在日常生活中练习用 'What is this?' 进行提问。",
		},
	},
	3: {
		Name:      "Blooming Flowers",
		LevelName: "Flower",
		Mapping:   "A2 Flyers",
		Icon:      "🌸",
		Reason:    "For confident thinkers ready to explain their world with details.",
		ReasonCN:  "适合准备展现自我风采、能用细节描述世界的自信探索者。",
		Strengths: []string{
			"Can construct simple complete sentences.",
			"Shows awareness of phonetic decoding.",
		},
		StrengthsCN: []string{
			"能构建简单的完整句子。",
			"表现出初步的自然拼读解码意识。",
		},
		NextSteps: []string{
			"Listen to short English stories and retell key parts.",
			"Encourage explaining 'Why' using simple because-phrases.",
		},
		NextStepsCN: []string{
			"听英文短篇故事并复述关键部分。",
			"鼓励使用 simple because-phrases 解释 'Why'。",
		},
	},
}

// TeamForLevel returns the catalog entry for a placement level.
// Levels outside 1..3 fall back to level 1 so report rendering stays
// total over any well-formed input.
func TeamForLevel(level int) Team {
	if t, ok := teams[level]; ok {
		return t
	}
	return teams[1]
}

// LevelForTotal maps a total score to a placement level.
// Thresholds are closed lower bounds: 70 and above is level 3,
// 40 and above is level 2, everything below is level 1.
func LevelForTotal(total int) int {
	switch {
	case total >= 70:
		return 3
	case total >= 40:
		return 2
	default:
		return 1
	}
}
