package app

import (
	"fmt"
	"strings"

	"review_radar/internal/domain"
)

// NegativeCap bounds how many negative reviews per entity reach the prompt;
// enough material for 10 pain points without blowing the context window.
const NegativeCap = 50

const noNegativesPlaceholder = "(No negative reviews found)"

const singlePromptTemplate = `You are a CX Analyst. Analyze these negative customer reviews.
%s
Identify the Top 5 to 10 distinct customer pain points.
Do not list fewer than 5 unless the data is extremely sparse.

For each pain point, provide:
1. **Title**: Short and punchy.
2. **Frequency**: Estimate if this is High, Medium, or Low frequency based on the text.
3. **Explanation**: A brief explanation of the issue.
4. **Quote**: A direct quote from one of the reviews.

Answer in %s.`

const comparePromptTemplate = `You are a Strategic Analyst. I have customer reviews for two companies.
%s
Please provide a comparison report in Markdown.

1. **Top 5-10 Pain Points for %s:** List the most critical recurring issues.
2. **Top 5-10 Pain Points for %s:** List the most critical recurring issues.
3. **Comparison Verdict:** One paragraph on the main difference in why customers are unhappy.

Answer in %s.`

// NegativeSubset filters records with rating <= 3, keeping source order.
// Records without a rating are excluded.
func NegativeSubset(recs []domain.ReviewRecord) []domain.ReviewRecord {
	var out []domain.ReviewRecord
	for _, r := range recs {
		if r.Negative() {
			out = append(out, r)
		}
	}
	return out
}

// AssemblePrompt renders the summarization request for one or two entities.
// Every entity gets a section even with no negative reviews; subsets larger
// than NegativeCap are truncated in order.
func AssemblePrompt(set *domain.EntitySet, languageName string) (string, error) {
	labels := set.Labels()
	if len(labels) == 0 {
		return "", fmt.Errorf("no entities to assemble")
	}
	if languageName == "" {
		languageName = "English"
	}

	var ctxB strings.Builder
	for _, label := range labels {
		res, _ := set.Get(label)
		neg := NegativeSubset(res.Records)
		if len(neg) > NegativeCap {
			neg = neg[:NegativeCap]
		}

		fmt.Fprintf(&ctxB, "\n--- REVIEWS FOR %s ---\n", strings.ToUpper(label))
		if len(neg) == 0 {
			ctxB.WriteString(noNegativesPlaceholder + "\n")
			continue
		}
		for _, r := range neg {
			fmt.Fprintf(&ctxB, "- %s\n", r.Text)
		}
	}

	if len(labels) == 1 {
		return fmt.Sprintf(singlePromptTemplate, ctxB.String(), languageName), nil
	}
	return fmt.Sprintf(comparePromptTemplate, ctxB.String(), labels[0], labels[1], languageName), nil
}

// languageNames covers the response languages the form offers; unknown codes
// fall back to the code itself, which the model handles fine.
var languageNames = map[string]string{
	"en": "English",
	"fr": "French",
	"es": "Spanish",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
	"nl": "Dutch",
	"ja": "Japanese",
}

func languageName(code string) string {
	if n, ok := languageNames[strings.ToLower(code)]; ok {
		return n
	}
	if code == "" {
		return "English"
	}
	return code
}
