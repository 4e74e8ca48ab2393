package diag

// Typed event payloads for the load and render phases. Keeping these as
// plain structs lets the pretty sink format them without reflection
// gymnastics and keeps the JSON shape stable.

// FontLoadedData is emitted after a font stream parses successfully.
type FontLoadedData struct {
	Name        string `json:"name,omitempty"`
	Height      int    `json:"height"`
	Hardblank   string `json:"hardblank"`
	GlyphCount  int    `json:"glyph_count"`
	CommentRows int    `json:"comment_rows"`
}

// ControlParsedData is emitted after a control file parses.
type ControlParsedData struct {
	Name        string `json:"name,omitempty"`
	Stages      int    `json:"stages"`
	Diagnostics int    `json:"diagnostics"`
}

// DirectiveData is emitted for each non-fatal control-file diagnostic.
type DirectiveData struct {
	Kind string `json:"kind"`
	Line int    `json:"line"`
	Text string `json:"text"`
}

// RenderStartData is emitted when a render call begins.
type RenderStartData struct {
	Text       string `json:"text"`
	TextLength int    `json:"text_length"`
	Height     int    `json:"height"`
	Stages     int    `json:"stages"`
}

// GlyphData is emitted per input character during rendering.
type GlyphData struct {
	Index    int    `json:"index"`
	Cluster  string `json:"cluster"`
	Code     rune   `json:"code"`
	Mapped   rune   `json:"mapped"`
	Fallback bool   `json:"fallback"`
	Skipped  bool   `json:"skipped"`
}

// TrimDecisionData is emitted once per render, after the first character
// settles the leading-margin policy.
type TrimDecisionData struct {
	TrimRow bool `json:"trim_row"`
}

// RenderEndData is emitted when a render call completes.
type RenderEndData struct {
	Rows         int   `json:"rows"`
	Clusters     int   `json:"clusters"`
	ElapsedMs    int64 `json:"elapsed_ms"`
	BytesWritten int   `json:"bytes_written"`
}
