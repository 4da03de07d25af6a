package utils

import "strings"

// LangFR is the only language with its own labels; every other code falls back to English
const LangFR = "fr"

// ComputeCivility turns a user's sex into the courtesy title used in exports and mails
func ComputeCivility(sex, lang string) string {
	switch strings.ToLower(strings.TrimSpace(sex)) {
	case "male", "m", "mr":
		return TranslateCivility("mr", lang)
	case "female", "f", "mrs":
		return TranslateCivility("mrs", lang)
	}
	return ""
}

// TranslateCivility maps a stored civility ("mr"/"mrs") to its label in lang
func TranslateCivility(civility, lang string) string {
	switch strings.ToLower(strings.TrimSpace(civility)) {
	case "mr":
		if lang == LangFR {
			return "M"
		}
		return "Mr"
	case "mrs":
		if lang == LangFR {
			return "Mme"
		}
		return "Mrs"
	}
	return ""
}
