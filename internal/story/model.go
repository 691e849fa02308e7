// Package story runs the turn pipeline: take the player's action,
// refresh the running summary, pull grounding context from the
// original tale, and generate the next narrated scene with choices.
package story

// Action is the player's input for one turn. Exactly one field is set;
// a choice is one of the options offered last turn, custom input is
// free text.
type Action struct {
	Choice      string `json:"choice,omitempty"`
	CustomInput string `json:"customInput,omitempty"`
}

// DebugConfig lets clients override models, prompts, and sampling per
// request. Intended for the authoring UI; absent in normal play.
type DebugConfig struct {
	StoryModel          string   `json:"storyModel,omitempty"`
	SummaryModel        string   `json:"summaryModel,omitempty"`
	SystemPrompt        string   `json:"systemPrompt,omitempty"`
	SummarySystemPrompt string   `json:"summarySystemPrompt,omitempty"`
	Temperature         *float64 `json:"temperature,omitempty"`
}

// TurnRequest is the client's state for one turn. The server is
// stateless: the full history and running summary travel with every
// request.
type TurnRequest struct {
	TaleID            string       `json:"taleId"`
	StoryHistory      []string     `json:"storyHistory"`
	CurrentSummary    string       `json:"currentSummary"`
	CurrentTurnNumber int          `json:"currentTurnNumber"`
	Action            Action       `json:"action"`
	DebugConfig       *DebugConfig `json:"debugConfig,omitempty"`
}

// TurnResponse is the generated turn. RawResponse carries the
// unsanitized model output and is only populated for debug requests.
type TurnResponse struct {
	StorySegment   string   `json:"storySegment"`
	Choices        []string `json:"choices"`
	UpdatedSummary string   `json:"updatedSummary"`
	NextTurnNumber int      `json:"nextTurnNumber"`
	RawResponse    string   `json:"rawResponse,omitempty"`
}
