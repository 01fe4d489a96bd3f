package entities

// InspectReport describes the content of an existing .pptx file
type InspectReport struct {
	Path       string           `json:"path"`
	Title      string           `json:"title,omitempty"`
	Author     string           `json:"author,omitempty"`
	SlideCount int              `json:"slide_count"`
	Slides     []InspectedSlide `json:"slides"`
}

// InspectedSlide is one slide of an InspectReport
type InspectedSlide struct {
	Index  int              `json:"index"`
	Title  string           `json:"title,omitempty"`
	Blocks []InspectedBlock `json:"blocks"`
	Tables []InspectedTable `json:"tables,omitempty"`
	Notes  string           `json:"notes,omitempty"`
}

// InspectedBlock is a positioned text block
type InspectedBlock struct {
	Text    string `json:"text"`
	Rect    Rect   `json:"rect"`
	IsTitle bool   `json:"is_title,omitempty"`
}

// InspectedTable holds the cell texts of a table, row by row
type InspectedTable struct {
	Rows [][]string `json:"rows"`
}

// Texts returns the text of every block on the slide in reading order
func (s InspectedSlide) Texts() []string {
	out := make([]string, 0, len(s.Blocks))
	for _, b := range s.Blocks {
		out = append(out, b.Text)
	}
	return out
}
