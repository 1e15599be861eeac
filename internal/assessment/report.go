package assessment

import "fmt"

// GenerateReport renders the bilingual placement report for a student
// at the given level. The catalog entry and the name are the only
// inputs: the same arguments always produce byte-identical text.
// Exactly the first two strengths and next steps appear, Chinese
// first with the English gloss in parentheses.
func GenerateReport(studentName string, level int) string {
	team := TeamForLevel(level)
	return fmt.Sprintf(`World Explorers Assessment Report 评估报告

Explorer: %s
Placement: %s (%s)
Mapping: %s

Reason for Grouping / 分组原因:
%s
(%s)

Strengths / 亮点:
1. %s (%s)
2. %s (%s)

Next Steps / 下一步建议:
1. %s (%s)
2. %s (%s)

Try your best! 尽力而為，享受探索！`,
		studentName,
		team.Name, team.LevelName,
		team.Mapping,
		team.ReasonCN,
		team.Reason,
		team.StrengthsCN[0], team.Strengths[0],
		team.StrengthsCN[1], team.Strengths[1],
		team.NextStepsCN[0], team.NextSteps[0],
		team.NextStepsCN[1], team.NextSteps[1],
	)
}
