package assessment

// SpeakingPoints maps a speaking tier to its point value. An
// unrecorded task contributes nothing: absent keys are never iterated.
func SpeakingPoints(t Tier) int {
	switch t {
	case TierExceeding:
		return 12
	case TierMeeting:
		return 8
	default:
		return 4
	}
}

// Breakdown is the score triple for a session together with the
// derived placement.
type Breakdown struct {
	S1    int    `json:"s1"`
	S2    int    `json:"s2"`
	S3    int    `json:"s3"`
	Total int    `json:"total"`
	Level int    `json:"level"`
	Team  string `json:"team"`
}

// Score reduces a session to its score breakdown. It is pure and
// total: any well-formed session scores, including a freshly created
// empty one (0,0,0 → level 1). Callable repeatedly, e.g. for draft
// previews.
//
// The formula reproduces the original tool exactly, including its
// known quirks: open answers count as correct once any text was
// entered regardless of tier, and of the five literacy questions only
// the sight-word checklist feeds s2.
func Score(s Session) Breakdown {
	var b Breakdown

	for _, a := range s.Stage1Answers {
		if a.IsCorrect {
			b.S1 += 5
		}
	}

	if sw, ok := s.Stage2Answers[SightWordsID].(SightWordChecklist); ok {
		for _, checked := range sw.Checked {
			if checked {
				b.S2++
			}
		}
	}

	for _, t := range s.SpeakingScores {
		b.S3 += SpeakingPoints(t)
	}

	b.Total = b.S1 + b.S2 + b.S3
	b.Level = LevelForTotal(b.Total)
	b.Team = TeamForLevel(b.Level).Name
	return b
}

// Finalize freezes a session into a placement result. The session's
// report draft is preserved, edits included; IsSynced flips on here
// and nowhere else.
func Finalize(s Session) Result {
	b := Score(s)
	frozen := s.Clone()
	frozen.IsSynced = true
	return Result{
		Session:    frozen,
		TotalScore: b.Total,
		Level:      b.Level,
		Team:       b.Team,
	}
}
