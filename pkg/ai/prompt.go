package ai

import (
	"fmt"
	"strings"
)

// SystemPrompt returns the grading persona instruction sent with every request.
func SystemPrompt() string {
	return "You are an expert music professor grading student listening journals. " +
		"Provide detailed, constructive feedback on student work and detect AI-generated writing."
}

// BuildPrompt renders the grading request for a submission. The output is a
// pure function of the input so regrading the same submission produces the
// same request.
func BuildPrompt(input GradingInput) string {
	total := TotalPossible(input.Criteria)

	builder := strings.Builder{}
	builder.WriteString("Grade the following listening journal entry against the assignment prompt and rubric.\n")
	builder.WriteString("Score each criterion independently, up to its maximum. ")
	builder.WriteString("Report an overall score, a letter grade, and overall constructive feedback. ")
	builder.WriteString("Also analyze whether the submission was likely written by AI rather than the student, ")
	builder.WriteString("with a confidence value and a brief justification.\n")

	builder.WriteString("\n# Assignment\n")
	builder.WriteString(input.AssignmentTitle)
	builder.WriteString("\n\n## Prompt\n")
	builder.WriteString(input.Prompt)
	builder.WriteString("\n\n## Student Submission\n")
	builder.WriteString(input.Content)
	builder.WriteString(fmt.Sprintf("\n\nWord Count: %d\n", input.WordCount))

	builder.WriteString(fmt.Sprintf("\n## Rubric Criteria (total %s points)\n", formatPoints(total)))
	for _, criterion := range input.Criteria {
		builder.WriteString(fmt.Sprintf("- %s: %s points", criterion.Name, formatPoints(criterion.MaxPoints)))
		if criterion.Description != "" {
			builder.WriteString(" - ")
			builder.WriteString(criterion.Description)
		}
		builder.WriteString("\n")
	}

	builder.WriteString("\nRespond in JSON format:\n")
	builder.WriteString("{\n")
	builder.WriteString("  \"criteria\": [{\"criterion\": \"<name>\", \"score\": <number>, \"max_points\": <number>, \"feedback\": \"<specific feedback>\"}],\n")
	builder.WriteString(fmt.Sprintf("  \"overall_score\": <total points out of %s>,\n", formatPoints(total)))
	builder.WriteString("  \"letter_grade\": \"<A+ through F>\",\n")
	builder.WriteString("  \"ai_feedback\": \"<overall constructive feedback>\",\n")
	builder.WriteString("  \"ai_detection\": {\"likely_ai_generated\": <boolean>, \"confidence\": <number 0-100>, \"reasoning\": \"<brief explanation>\"}\n")
	builder.WriteString("}\n")

	return builder.String()
}

func formatPoints(value float64) string {
	formatted := strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", value), "0"), ".")
	if formatted == "" {
		return "0"
	}
	return formatted
}
