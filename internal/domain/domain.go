package domain

// RewriteLog is the audit record of one successful generation. Timestamp is
// an RFC 3339 string carrying its zone offset.
type RewriteLog struct {
	ID               string
	SessionID        string
	UserPrompt       string
	TranslatedText   string
	WritingPrompt    string
	GeneratedArticle string
	Timestamp        string
}
