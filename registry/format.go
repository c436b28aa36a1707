package registry

import (
	"fmt"
	"strings"
)

// NoPatientsFound is rendered when a fetch matched nothing.
const NoPatientsFound = "No patients found matching the specified criteria."

// FormatPatientList renders records as the human-readable block the chat
// layer feeds back to the model. Name, ID and Age always print, with
// "Unknown"/"N/A" placeholders; the remaining lines print only when the
// record carries a value.
func FormatPatientList(records []PatientRecord) string {
	if len(records) == 0 {
		return NoPatientsFound
	}

	lines := []string{fmt.Sprintf("Found %d patient(s):\n", len(records))}
	for i, r := range records {
		lines = append(lines, fmt.Sprintf("📋 Patient #%d", i+1))
		lines = append(lines, "   👤 Name: "+orDefault(r.Name, "Unknown"))
		lines = append(lines, "   🆔 ID: "+orDefault(r.ID, "N/A"))
		lines = append(lines, "   🎂 Age: "+orDefault(r.Age, "N/A"))
		if r.Diagnosis != "" {
			lines = append(lines, "   🏥 Diagnosis: "+r.Diagnosis)
		}
		if len(r.Medications) > 0 {
			lines = append(lines, "   💊 Medications: "+strings.Join(r.Medications, ", "))
		}
		if len(r.Allergies) > 0 {
			lines = append(lines, "   ⚠️  Allergies: "+strings.Join(r.Allergies, ", "))
		}
		if r.LastUpdated != "" {
			lines = append(lines, "   📅 Last Updated: "+r.LastUpdated)
		}
		if r.Department != "" {
			lines = append(lines, "   🏢 Department: "+titleWords(r.Department))
		}
		if r.Status != "" {
			lines = append(lines, "   📊 Status: "+titleWords(r.Status))
		}
		if r.AdmissionDate != "" {
			lines = append(lines, "   📆 Admitted: "+r.AdmissionDate)
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(w)
		head := strings.ToUpper(string(runes[0]))
		tail := strings.ToLower(string(runes[1:]))
		words[i] = head + tail
	}
	return strings.Join(words, " ")
}
