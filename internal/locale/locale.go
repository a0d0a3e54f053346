package locale

import "strings"

// Messages holds the user-facing strings that depend on the configured
// description language.
type Messages struct {
	LoadingDescription string
	AddFailed          string
	SimilarFailed      string
}

var messages = map[string]Messages{
	"arabic": {
		LoadingDescription: "جاري تحميل تفاصيل الفيلم...",
		AddFailed:          "حدث خطأ أثناء جلب بيانات الفيلم.",
		SimilarFailed:      "خطأ في جلب الأفلام المشابهة",
	},
	"english": {
		LoadingDescription: "Movie details are loading...",
		AddFailed:          "Something went wrong while fetching the movie details.",
		SimilarFailed:      "Could not fetch similar movies",
	},
}

// For falls back to English for languages without a translation.
func For(language string) Messages {
	if m, ok := messages[strings.ToLower(strings.TrimSpace(language))]; ok {
		return m
	}
	return messages["english"]
}
