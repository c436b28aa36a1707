package registry

import "github.com/tidwall/gjson"

// PatientRecord is the normalized shape of one registry entry. Upstream
// deployments disagree on field naming, so decoding folds every known
// variant into these fields. Empty means the upstream carried no value.
type PatientRecord struct {
	ID            string   `json:"id,omitempty"`
	Name          string   `json:"name,omitempty"`
	Age           string   `json:"age,omitempty"`
	Diagnosis     string   `json:"diagnosis,omitempty"`
	Medications   []string `json:"medications,omitempty"`
	Allergies     []string `json:"allergies,omitempty"`
	LastUpdated   string   `json:"last_updated,omitempty"`
	Department    string   `json:"department,omitempty"`
	Status        string   `json:"status,omitempty"`
	AdmissionDate string   `json:"admission_date,omitempty"`
}

// Known key spellings per logical field, checked in order.
var (
	idKeys         = []string{"id", "patient_id", "patientId", "PatientId", "ID"}
	nameKeys       = []string{"name", "patient_name", "fullName", "full_name", "Name"}
	ageKeys        = []string{"age", "patient_age", "Age"}
	diagnosisKeys  = []string{"diagnosis", "Diagnosis", "condition", "medical_condition"}
	medicationKeys = []string{"medications", "Medications", "meds", "drugs", "prescriptions"}
	allergyKeys    = []string{"allergies", "Allergies", "allergy_list", "medical_allergies"}
	updatedKeys    = []string{"last_updated", "LastUpdated", "lastUpdated", "updated_at", "modified_date"}
	departmentKeys = []string{"department", "dept", "department_name"}
	statusKeys     = []string{"status", "patient_status", "state"}
	admissionKeys  = []string{"admission_date", "admissionDate", "admitted", "date_admitted"}
)

// DecodePatients interprets a registry response body. Accepted shapes: a
// bare array, {"patients": [...]}, {"data": [...]}, or a single object.
// Anything else decodes to no records.
func DecodePatients(body []byte) []PatientRecord {
	parsed := gjson.ParseBytes(body)

	var items []gjson.Result
	switch {
	case parsed.IsArray():
		items = parsed.Array()
	case parsed.IsObject():
		if p := parsed.Get("patients"); p.Exists() && p.IsArray() {
			items = p.Array()
		} else if d := parsed.Get("data"); d.Exists() && d.IsArray() {
			items = d.Array()
		} else if len(parsed.Map()) > 0 {
			items = []gjson.Result{parsed}
		}
	}

	records := make([]PatientRecord, 0, len(items))
	for _, item := range items {
		if !item.IsObject() {
			continue
		}
		records = append(records, normalizeRecord(item))
	}
	return records
}

func normalizeRecord(item gjson.Result) PatientRecord {
	return PatientRecord{
		ID:            firstScalar(item, idKeys),
		Name:          firstScalar(item, nameKeys),
		Age:           firstScalar(item, ageKeys),
		Diagnosis:     firstScalar(item, diagnosisKeys),
		Medications:   firstList(item, medicationKeys),
		Allergies:     firstList(item, allergyKeys),
		LastUpdated:   firstScalar(item, updatedKeys),
		Department:    firstScalar(item, departmentKeys),
		Status:        firstScalar(item, statusKeys),
		AdmissionDate: firstScalar(item, admissionKeys),
	}
}

func firstScalar(item gjson.Result, keys []string) string {
	for _, key := range keys {
		if v := item.Get(key); v.Exists() && v.Type != gjson.Null {
			return v.String()
		}
	}
	return ""
}

// firstList reads array-valued fields. A scalar upstream value becomes a
// single-element list so the formatter renders it unchanged.
func firstList(item gjson.Result, keys []string) []string {
	for _, key := range keys {
		v := item.Get(key)
		if !v.Exists() || v.Type == gjson.Null {
			continue
		}
		if v.IsArray() {
			elems := v.Array()
			out := make([]string, 0, len(elems))
			for _, e := range elems {
				out = append(out, e.String())
			}
			return out
		}
		return []string{v.String()}
	}
	return nil
}
