package domain

type Transcript struct {
	Text       string             `json:"transcript" yaml:"text"`
	Confidence float64            `json:"confidence" yaml:"confidence"`
	Locale     string             `json:"language" yaml:"locale"`
	Intent     *RecognizedIntent  `json:"intent,omitempty" yaml:"intent,omitempty"`
	Entities   []RecognizedEntity `json:"entities,omitempty" yaml:"entities,omitempty"`
}

type RecognizedIntent struct {
	Name       string  `json:"name" yaml:"name"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// RecognizedEntity is an entity span reported by a remote recognizer.
// Start and End are offsets into the transcript text.
type RecognizedEntity struct {
	Entity     string  `json:"entity" yaml:"entity"`
	Value      string  `json:"value" yaml:"value"`
	Start      int     `json:"start" yaml:"start"`
	End        int     `json:"end" yaml:"end"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// Utterance is one unit of user input. Text is set when the source already
// knows what was said, in which case Audio is ignored.
type Utterance struct {
	Audio    []byte
	Text     string
	Language Language
}

func (u *Utterance) IsText() bool {
	return u.Text != ""
}
