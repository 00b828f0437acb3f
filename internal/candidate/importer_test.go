package candidate_test

import (
	"errors"
	"testing"

	"github.com/varsharamanujam/HR-Candidate-Review-Tool/internal/candidate"
)

const importJSON = `[
  {"name": "Ada Lovelace", "email": "ada@example.com", "phone": "+100", "applied_role": "Engineer",
   "experience": "10 years", "rating": 4.5, "resume_url": "https://example.com/ada.pdf",
   "project_url": "https://example.com/engine"},
  {"name": "Alan Turing", "email": "alan@example.com", "phone": "+200", "applied_role": "Engineer",
   "experience": "8 years", "status": "In Process", "stage": "Interview", "location": "London"}
]`

const importCSV = "name,email,phone,applied_role,experience,rating,resume_url,project_url,status,stage,location\n" +
	"Ada Lovelace,ada@example.com,+100,Engineer,10 years,4.5,https://example.com/ada.pdf,https://example.com/engine,,,\n" +
	"Alan Turing,alan@example.com,+200,Engineer,8 years,,,,In Process,Interview,London\n"

const importYAML = `
- name: Ada Lovelace
  email: ada@example.com
  phone: "+100"
  applied_role: Engineer
  experience: 10 years
  rating: 4.5
  resume_url: https://example.com/ada.pdf
  project_url: https://example.com/engine
- name: Alan Turing
  email: alan@example.com
  phone: "+200"
  applied_role: Engineer
  experience: 8 years
  status: In Process
  stage: Interview
  location: London
`

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		filename, contentType, body string
		want                        candidate.Format
	}{
		{"people.json", "", "", candidate.FormatJSON},
		{"people.CSV", "", "", candidate.FormatCSV},
		{"people.yml", "", "", candidate.FormatYAML},
		{"upload", "application/json", "", candidate.FormatJSON},
		{"upload", "text/csv", "", candidate.FormatCSV},
		{"upload", "application/x-yaml", "", candidate.FormatYAML},
		{"upload", "", "  [{}]", candidate.FormatJSON},
		{"upload", "", "- name: x", candidate.FormatYAML},
		{"upload", "", "name,email", candidate.FormatCSV},
	}
	for _, tc := range cases {
		if got := candidate.DetectFormat(tc.filename, tc.contentType, []byte(tc.body)); got != tc.want {
			t.Errorf("DetectFormat(%q, %q, %q) = %q, want %q", tc.filename, tc.contentType, tc.body, got, tc.want)
		}
	}
}

func TestDecodeInputs_FormatsAgree(t *testing.T) {
	payloads := map[candidate.Format]string{
		candidate.FormatJSON: importJSON,
		candidate.FormatCSV:  importCSV,
		candidate.FormatYAML: importYAML,
	}
	for f, body := range payloads {
		t.Run(string(f), func(t *testing.T) {
			inputs, err := candidate.DecodeInputs(f, []byte(body))
			if err != nil {
				t.Fatalf("DecodeInputs() returned unexpected error: %v", err)
			}
			cs, err := candidate.BuildAll(inputs, now)
			if err != nil {
				t.Fatalf("BuildAll() returned unexpected error: %v", err)
			}
			if len(cs) != 2 {
				t.Fatalf("got %d candidates, want 2", len(cs))
			}

			ada, alan := cs[0], cs[1]
			if ada.Rating != 4.5 || ada.Attachments != 2 || ada.Status != "Pending" || ada.Stage != "Screening" {
				t.Errorf("ada = rating %v, attachments %d, %s/%s", ada.Rating, ada.Attachments, ada.Status, ada.Stage)
			}
			if alan.Status != "In Process" || alan.Stage != "Interview" || alan.Attachments != 0 {
				t.Errorf("alan = %s/%s, attachments %d", alan.Status, alan.Stage, alan.Attachments)
			}
			if alan.Location == nil || *alan.Location != "London" {
				t.Errorf("alan location = %v, want London", alan.Location)
			}
		})
	}
}

func TestDecodeInputs_Malformed(t *testing.T) {
	cases := []struct {
		name string
		f    candidate.Format
		body string
	}{
		{"json object", candidate.FormatJSON, `{"name": "x"}`},
		{"json syntax", candidate.FormatJSON, `[{"name": }]`},
		{"yaml", candidate.FormatYAML, "- name: [unclosed"},
		{"csv header", candidate.FormatCSV, "name,email\nx,y\n"},
		{"csv rating", candidate.FormatCSV, "name,email,phone,applied_role,experience,rating\na,b,c,d,e,high\n"},
		{"csv ragged", candidate.FormatCSV, "name,email,phone,applied_role,experience\na,b\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := candidate.DecodeInputs(tc.f, []byte(tc.body))
			var ve *candidate.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("DecodeInputs() error = %v, want *ValidationError", err)
			}
			if ve.Field != "file" {
				t.Errorf("field = %q, want file", ve.Field)
			}
		})
	}
}

func TestBuildAll_AbortsOnFirstInvalidRow(t *testing.T) {
	inputs := []candidate.Input{validInput(), {Name: "No Email"}}
	_, err := candidate.BuildAll(inputs, now)
	var ve *candidate.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("BuildAll() error = %v, want *ValidationError", err)
	}
	if ve.Field != "email" {
		t.Errorf("field = %q, want email", ve.Field)
	}
}

func TestSeedCandidates(t *testing.T) {
	cs, err := candidate.SeedCandidates(now)
	if err != nil {
		t.Fatalf("SeedCandidates() returned unexpected error: %v", err)
	}
	if len(cs) != 6 {
		t.Fatalf("SeedCandidates() returned %d candidates, want 6", len(cs))
	}
	for _, c := range cs {
		if !candidate.IsKnownStatus(c.Status) || !candidate.IsKnownStage(c.Stage) {
			t.Errorf("%s has status/stage %q/%q outside the enumerations", c.Name, c.Status, c.Stage)
		}
		if !c.ApplicationDate.Before(now) {
			t.Errorf("%s applied on %v, want before %v", c.Name, c.ApplicationDate, now)
		}
		if got := len(candidate.ParseProfile(&c).Links); got != c.Attachments {
			t.Errorf("%s attachments = %d, want %d", c.Name, c.Attachments, got)
		}
	}
	if cs[0].Name != "Charlie Kristen" || cs[0].Attachments != 3 || len(candidate.ParseProfile(&cs[0]).Skills) == 0 {
		t.Errorf("first seed candidate = %+v, want Charlie with a full profile", cs[0])
	}
}
