package driven

// TextSplitter splits document text into byte-bounded chunks.
// Joining the returned chunks in order must reproduce the input.
type TextSplitter interface {
	// Name returns the splitter name for logging.
	Name() string

	// Split returns at least one chunk, even for empty text.
	Split(text string) []string
}
