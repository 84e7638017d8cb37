package domain

// FailureDecoration marks a failing assertion found in a test's output
type FailureDecoration struct {
	File         string `json:"file"`
	Line         int    `json:"line"` // zero-based
	HoverMessage string `json:"message"`
}
