package gateway

// Test exports.
var (
	ParseAnswer = parseAnswer
	ErrorStatus = errorStatus
)

// VersePrompts exposes the prompt selection for a request type.
func VersePrompts(typ string, history, bookmarks []string, current string) (string, string) {
	return verseRequest{ReadingHistory: history, BookmarkedBooks: bookmarks, CurrentBook: current, Type: typ}.prompts()
}
