package ai

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ParseError reports a model reply that could not be reduced to a usable
// grade. Raw keeps the full reply for manual review.
type ParseError struct {
	Reason string
	Raw    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unusable model reply: %s", e.Reason)
}

// replySchema describes the structured reply shape. A usable reply carries
// either per-criterion scores or an explicit overall score.
var replySchema = jsonschema.MustCompileString("grading_reply.json", `{
	"type": "object",
	"anyOf": [
		{"required": ["criteria"]},
		{"required": ["overall_score"]}
	],
	"properties": {
		"criteria": {
			"type": "array",
			"items": {"type": "object"}
		},
		"overall_score": {"type": "number"},
		"letter_grade": {"type": "string"},
		"ai_feedback": {"type": "string"},
		"ai_detection": {"type": "object"}
	}
}`)

var (
	totalLinePattern      = regexp.MustCompile(`(?i)\btotal\s*[:\-]?\s*(\d+(?:\.\d+)?)\s*/\s*(\d+(?:\.\d+)?)`)
	detectionFlagPattern  = regexp.MustCompile(`(?i)\bai[\s-]generated\s*[:\-]?\s*(yes|no|true|false)\b`)
	detectionScorePattern = regexp.MustCompile(`(?i)\bconfidence\s*[:\-]?\s*(\d+(?:\.\d+)?)\s*%?`)
	codeFencePattern      = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")
)

// Parse reduces a raw model reply, structured JSON or free text, into a
// GradeResult scored against the configured rubric. Criteria the reply never
// scored are reported as warnings rather than zeroed. The result is a pure
// function of the inputs.
func Parse(raw string, criteria []RubricCriterion) (GradeResult, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return GradeResult{}, &ParseError{Reason: "empty reply", Raw: raw}
	}

	content := stripCodeFence(trimmed)

	if strings.HasPrefix(content, "{") {
		var document interface{}
		if err := json.Unmarshal([]byte(content), &document); err == nil {
			result, err := parseStructured(content, document, criteria)
			if err != nil {
				return GradeResult{}, err
			}
			result.Raw = raw
			return result, nil
		}
	}

	result, err := parseText(content, criteria)
	if err != nil {
		return GradeResult{}, err
	}
	result.Raw = raw
	return result, nil
}

type structuredReply struct {
	Criteria []struct {
		Criterion     string   `json:"criterion"`
		CriterionName string   `json:"criterion_name"`
		Name          string   `json:"name"`
		Score         *float64 `json:"score"`
		MaxPoints     float64  `json:"max_points"`
		Feedback      string   `json:"feedback"`
	} `json:"criteria"`
	OverallScore *float64 `json:"overall_score"`
	LetterGrade  string   `json:"letter_grade"`
	AIFeedback   string   `json:"ai_feedback"`
	Feedback     string   `json:"feedback"`
	AIDetection  *struct {
		LikelyAIGenerated *bool           `json:"likely_ai_generated"`
		Detected          *bool           `json:"detected"`
		IsFlagged         *bool           `json:"is_flagged"`
		Confidence        json.RawMessage `json:"confidence"`
		Reasoning         string          `json:"reasoning"`
	} `json:"ai_detection"`
}

func parseStructured(content string, document interface{}, criteria []RubricCriterion) (GradeResult, error) {
	if err := replySchema.Validate(document); err != nil {
		return GradeResult{}, &ParseError{Reason: fmt.Sprintf("reply does not match grading schema: %v", err), Raw: content}
	}

	var reply structuredReply
	if err := json.Unmarshal([]byte(content), &reply); err != nil {
		return GradeResult{}, &ParseError{Reason: fmt.Sprintf("decode reply: %v", err), Raw: content}
	}

	matched := make(map[string]CriterionScore)
	for _, entry := range reply.Criteria {
		if entry.Score == nil {
			continue
		}
		name := firstNonEmpty(entry.CriterionName, entry.Criterion, entry.Name)
		criterion, ok := matchCriterion(name, criteria)
		if !ok {
			continue
		}
		matched[normalizeName(criterion.Name)] = CriterionScore{
			Criterion: criterion.Name,
			Score:     clamp(*entry.Score, 0, criterion.MaxPoints),
			MaxPoints: criterion.MaxPoints,
			Feedback:  entry.Feedback,
		}
	}

	scores, warnings, sum := collectScores(matched, criteria)

	result := GradeResult{
		CriterionScores: scores,
		Feedback:        firstNonEmpty(reply.AIFeedback, reply.Feedback),
		Warnings:        warnings,
	}

	switch {
	case reply.OverallScore != nil:
		// The explicit overall wins over the criterion sum when both exist.
		result.OverallScore = *reply.OverallScore
	case len(scores) > 0:
		result.OverallScore = sum
	default:
		return GradeResult{}, &ParseError{Reason: "no overall score and no recognizable criterion scores", Raw: content}
	}

	if reply.AIDetection != nil {
		detected := false
		for _, flag := range []*bool{reply.AIDetection.LikelyAIGenerated, reply.AIDetection.Detected, reply.AIDetection.IsFlagged} {
			if flag != nil && *flag {
				detected = true
			}
		}
		result.Detection = Detection{
			Detected:   detected,
			Confidence: parseConfidence(reply.AIDetection.Confidence),
			Reasoning:  reply.AIDetection.Reasoning,
		}
	}

	finalizeResult(&result, criteria)
	return result, nil
}

func parseText(content string, criteria []RubricCriterion) (GradeResult, error) {
	matched := make(map[string]CriterionScore)
	for _, criterion := range criteria {
		pattern := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(criterion.Name) + `\s*[:\-]?\s*(\d+(?:\.\d+)?)\s*/\s*(\d+(?:\.\d+)?)`)
		match := pattern.FindStringSubmatch(content)
		if match == nil {
			continue
		}
		score := parseNumber(match[1])
		matched[normalizeName(criterion.Name)] = CriterionScore{
			Criterion: criterion.Name,
			Score:     clamp(score, 0, criterion.MaxPoints),
			MaxPoints: criterion.MaxPoints,
		}
	}

	scores, warnings, sum := collectScores(matched, criteria)

	result := GradeResult{
		CriterionScores: scores,
		Warnings:        warnings,
	}

	if match := totalLinePattern.FindStringSubmatch(content); match != nil {
		result.OverallScore = parseNumber(match[1])
	} else if len(scores) > 0 {
		result.OverallScore = sum
	} else {
		return GradeResult{}, &ParseError{Reason: "no TOTAL line and no recognizable criterion scores", Raw: content}
	}

	if match := detectionFlagPattern.FindStringSubmatch(content); match != nil {
		flag := strings.ToLower(match[1])
		result.Detection.Detected = flag == "yes" || flag == "true"
		if confidence := detectionScorePattern.FindStringSubmatch(content); confidence != nil {
			result.Detection.Confidence = normalizeConfidence(parseNumber(confidence[1]))
		}
	}

	finalizeResult(&result, criteria)
	return result, nil
}

// collectScores orders the matched scores by rubric position and reports a
// warning per configured criterion the reply never scored.
func collectScores(matched map[string]CriterionScore, criteria []RubricCriterion) ([]CriterionScore, []string, float64) {
	scores := make([]CriterionScore, 0, len(matched))
	var warnings []string
	sum := 0.0

	for _, criterion := range criteria {
		entry, ok := matched[normalizeName(criterion.Name)]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("criterion %q was not scored by the model", criterion.Name))
			continue
		}
		scores = append(scores, entry)
		sum += entry.Score
	}

	return scores, warnings, sum
}

// finalizeResult clamps the overall score into the rubric range, rounds it to
// the nearest point, and derives the letter grade from the banding table.
func finalizeResult(result *GradeResult, criteria []RubricCriterion) {
	total := TotalPossible(criteria)
	result.OverallScore = math.Round(clamp(result.OverallScore, 0, total))
	result.LetterGrade = LetterGrade(result.OverallScore, total)
}

func matchCriterion(name string, criteria []RubricCriterion) (RubricCriterion, bool) {
	key := normalizeName(name)
	if key == "" {
		return RubricCriterion{}, false
	}

	for _, criterion := range criteria {
		if normalizeName(criterion.Name) == key {
			return criterion, true
		}
	}

	// Containment fallback tolerates shortened or expanded names.
	for _, criterion := range criteria {
		normalized := normalizeName(criterion.Name)
		if strings.Contains(normalized, key) || strings.Contains(key, normalized) {
			return criterion, true
		}
	}

	return RubricCriterion{}, false
}

func parseConfidence(raw json.RawMessage) *float64 {
	if len(raw) == 0 {
		return nil
	}

	var numeric float64
	if err := json.Unmarshal(raw, &numeric); err == nil {
		return normalizeConfidence(numeric)
	}

	var label string
	if err := json.Unmarshal(raw, &label); err == nil {
		switch strings.ToLower(strings.TrimSpace(label)) {
		case "low":
			return floatPtr(0.25)
		case "medium":
			return floatPtr(0.5)
		case "high":
			return floatPtr(0.85)
		}
	}

	return nil
}

// normalizeConfidence maps percentages onto [0,1]; values already in range
// pass through.
func normalizeConfidence(value float64) *float64 {
	if value > 1 {
		value = value / 100
	}
	return floatPtr(clamp(value, 0, 1))
}

func stripCodeFence(content string) string {
	if match := codeFencePattern.FindStringSubmatch(content); match != nil {
		return strings.TrimSpace(match[1])
	}
	return content
}

func normalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

func parseNumber(value string) float64 {
	var parsed float64
	_, _ = fmt.Sscanf(value, "%f", &parsed)
	return parsed
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func floatPtr(value float64) *float64 {
	return &value
}
