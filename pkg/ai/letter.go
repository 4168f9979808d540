package ai

// letterBand maps a minimum score on the reference scale to a letter grade.
type letterBand struct {
	Min    float64
	Letter string
}

// referenceTotal is the rubric total the band thresholds are expressed
// against. The course rubric awards 17 points across its criteria.
const referenceTotal = 17.0

// letterBands holds the boundaries in descending order. Boundaries sit on
// half points so a rounded score never lands exactly on one.
var letterBands = []letterBand{
	{Min: 16.5, Letter: "A+"},
	{Min: 15.5, Letter: "A"},
	{Min: 14.5, Letter: "A-"},
	{Min: 13.5, Letter: "B+"},
	{Min: 12.5, Letter: "B"},
	{Min: 11.5, Letter: "B-"},
	{Min: 10.5, Letter: "C+"},
	{Min: 9.5, Letter: "C"},
	{Min: 8.5, Letter: "C-"},
	{Min: 7.5, Letter: "D+"},
	{Min: 6.5, Letter: "D"},
	{Min: 5.5, Letter: "D-"},
}

// LetterGrade maps a numeric score to its letter on a rubric worth total
// points. Totals other than the reference scale proportionally, so the same
// percentage always yields the same letter.
func LetterGrade(score, total float64) string {
	if total <= 0 {
		return "F"
	}

	scaled := score * referenceTotal / total
	for _, band := range letterBands {
		if scaled >= band.Min {
			return band.Letter
		}
	}

	return "F"
}
