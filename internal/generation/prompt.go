package generation

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"trip-itinerary-ai/internal/domain/model"
)

const dateLayout = "2006-01-02"

// BuildPrompt renders the base prompt for a draft. A non-empty targetDays
// restricts the dates the provider is asked for; indices outside the draft
// range are ignored. The output is a pure function of its inputs.
func BuildPrompt(d *model.Draft, targetDays []int) string {
	dates := d.Dates()
	hint := make([]string, 0, len(dates))
	if len(targetDays) == 0 {
		for i, day := range dates {
			hint = append(hint, fmt.Sprintf("dayIndex %d = %s", i, day.Format(dateLayout)))
		}
	} else {
		for _, i := range model.NormalizeDays(targetDays) {
			if i < 0 || i >= len(dates) {
				continue
			}
			hint = append(hint, fmt.Sprintf("dayIndex %d = %s", i, dates[i].Format(dateLayout)))
		}
	}

	var b strings.Builder
	b.WriteString("You are an expert travel planner. Create a day-by-day travel itinerary for the trip below.\n\n")
	b.WriteString("Trip:\n")
	fmt.Fprintf(&b, "- Origin: %s\n", d.Origin)
	fmt.Fprintf(&b, "- Destinations: %s\n", strings.Join(d.Destinations, ", "))
	fmt.Fprintf(&b, "- Start date: %s\n", d.StartDate.Format(dateLayout))
	fmt.Fprintf(&b, "- End date: %s\n", d.EndDate.Format(dateLayout))
	if d.Currency != "" {
		fmt.Fprintf(&b, "- Budget: %d %s\n", d.Budget, d.Currency)
	} else {
		fmt.Fprintf(&b, "- Budget: %d\n", d.Budget)
	}
	fmt.Fprintf(&b, "- Purposes: %s\n", strings.Join(d.Purposes, ", "))
	fmt.Fprintf(&b, "- Companions: adults %d, children %d, infants %d, seniors %d\n",
		d.Companions.Adults, d.Companions.Children, d.Companions.Infants, d.Companions.Seniors)
	fmt.Fprintf(&b, "\nDates: %s\n", strings.Join(hint, "; "))

	b.WriteString("\nRespond with a JSON object matching this JSON Schema:\n")
	b.WriteString(ItinerarySchema)
	b.WriteString("\n\nRules:\n")
	b.WriteString("- Generate only the dates listed above.\n")
	b.WriteString("- dayIndex must equal the chronological rank of date within the trip, starting at 0.\n")
	b.WriteString("- List activities in chronological order; the first activity starts at 09:00 or later.\n")
	b.WriteString("- orderIndex starts at 0 and increases with each activity of the day.\n")
	b.WriteString("- time uses 24-hour HH:mm.\n")
	b.WriteString("- Output plain JSON only. No markdown, no code fences, no commentary.\n")
	return b.String()
}

// BuildRepairPrompt asks the provider to regenerate after a rejected output.
func BuildRepairPrompt(base, lastError string) string {
	return fmt.Sprintf("%s\nPrevious output failed because: %s. Regenerate valid JSON matching: %s\n",
		base, lastError, ItinerarySchema)
}

// PromptHash is the hex SHA-256 of the prompt, recorded on the job.
func PromptHash(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}
