package domain

import "time"

// Urgency enumerates how quickly a ticket needs attention.
type Urgency string

const (
	UrgencyLow      Urgency = "Low"
	UrgencyMedium   Urgency = "Medium"
	UrgencyHigh     Urgency = "High"
	UrgencyCritical Urgency = "Critical"
)

// Sentiment enumerates the detected tone of the user message.
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNeutral  Sentiment = "Neutral"
	SentimentNegative Sentiment = "Negative"
)

// CategoryGeneralInquiry is the fallback category when nothing else matches.
const CategoryGeneralInquiry = "General Inquiry"

// ValidCategories is the label set the remote classifier is prompted with.
// The heuristic classifier happens to produce the same labels but is not
// structurally bound to this set.
var ValidCategories = []string{
	"Technical Issue",
	"Billing",
	"Feature Request",
	"Account",
	"Bug Report",
	CategoryGeneralInquiry,
}

// IsValidCategory reports whether c belongs to the prompted label set.
func IsValidCategory(c string) bool {
	for _, valid := range ValidCategories {
		if c == valid {
			return true
		}
	}
	return false
}

// IsValid reports whether the urgency is one of the four allowed levels.
func (u Urgency) IsValid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical:
		return true
	}
	return false
}

// IsValid reports whether the sentiment is one of the three allowed values.
func (s Sentiment) IsValid() bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	}
	return false
}

// Classification is the value object every classifier must produce.
// Invariants: non-empty category, valid urgency and sentiment enums,
// confidence within [0,1] rounded to 3 decimals.
type Classification struct {
	Category   string
	Urgency    Urgency
	Sentiment  Sentiment
	Confidence float64
}

// Ticket pairs a user's raw problem description with its classification
// outcome. Created exactly once; classification fields never change after
// insertion.
type Ticket struct {
	ID            int64
	UserMessage   string
	Category      string
	Urgency       Urgency
	Sentiment     Sentiment
	Confidence    float64
	AIRawResponse *string
	ModelVersion  string
	CreatedAt     time.Time
}
