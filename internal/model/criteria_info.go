package model

// Information is the static description of a criteria: the statement of the
// accessibility reference, where to read it, and how to test it by hand.
type Information struct {
	// Criteria is the statement of the criteria.
	Criteria string `json:"criteria"`

	// Links point to the reference documentation.
	Links []string `json:"links"`

	// Advices are manual verification hints.
	Advices []string `json:"advices,omitempty"`
}

// OptionInfo documents one execute option accepted by a criteria.
type OptionInfo struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Optional    bool   `json:"optional"`
	Description string `json:"description"`
}

// Help is everything printed for a criteria when help is requested.
type Help struct {
	Tag         string       `json:"tag"`
	Title       string       `json:"title"`
	Information Information  `json:"information"`
	Options     []OptionInfo `json:"options"`
}

// ChildResult is the result of one criteria run by an aggregate criteria.
type ChildResult struct {
	Tag    string  `json:"tag"`
	Title  string  `json:"title"`
	Result *Result `json:"result"`
}
