package locale

// Pick returns the text matching the request language, defaulting to Chinese.
func Pick(language, english, chinese string) string {
	if NormalizeLanguage(language) == LanguageEnglish {
		if english != "" {
			return english
		}
		return chinese
	}
	if chinese != "" {
		return chinese
	}
	return english
}

// Message is a user-facing text in both languages.
type Message struct {
	En string
	Zh string
}

// In returns the message text for language.
func (m Message) In(language string) string {
	return Pick(language, m.En, m.Zh)
}
