package review

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Shape identifies which of the known result payload layouts applies.
// Exactly one shape is authoritative per payload; detection checks field
// presence in a fixed order and the first match wins.
type Shape int

const (
	ShapeUnknown Shape = iota
	ShapeMaterials
	ShapeEvaluation
	ShapeRules
)

func (s Shape) String() string {
	switch s {
	case ShapeMaterials:
		return "materials"
	case ShapeEvaluation:
		return "evaluation"
	case ShapeRules:
		return "rules"
	default:
		return "unknown"
	}
}

// flexString accepts both JSON strings and numbers. Backend identifiers
// switched types between versions without notice. Any other value decodes
// as empty rather than failing the surrounding payload.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		*f = flexString(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return nil
	}
	*f = flexString(num.String())
	return nil
}

func (f flexString) String() string { return string(f) }

// RawMaterial is one entry of the flat-materials payload shape.
type RawMaterial struct {
	ID      flexString        `json:"id"`
	Name    string            `json:"name"`
	Code    string            `json:"code"`
	Status  string            `json:"status"`
	Items   []json.RawMessage `json:"items"`
	Preview *RawPreview       `json:"preview"`
}

// RawItem is one inline item of a flat material. The raw form is also fed
// to the page extractor, so only the stable fields are declared here.
type RawItem struct {
	ID          flexString `json:"id"`
	Name        string     `json:"name"`
	Status      string     `json:"status"`
	DownloadURL string     `json:"download_url"`
	URL         string     `json:"url"`
	Content     string     `json:"content"`
	MimeType    string     `json:"mime_type"`
	PageCount   int        `json:"page_count"`
	FileSize    int64      `json:"file_size"`
	Annotation  string     `json:"annotation"`
	Message     string     `json:"message"`
}

// RawPreview is an inline preview-image reference.
type RawPreview struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
}

// RawEvaluation is the evaluation-result payload shape.
type RawEvaluation struct {
	MaterialResults []RawMaterialResult `json:"material_results"`
	Summary         *RawSummary         `json:"evaluation_summary"`
}

// RawMaterialResult is one material entry of the evaluation-result shape.
type RawMaterialResult struct {
	ID               flexString         `json:"material_id"`
	Name             string             `json:"material_name"`
	Code             string             `json:"material_code"`
	Attachments      []json.RawMessage  `json:"attachments"`
	RuleEvaluation   *RawRuleEvaluation `json:"rule_evaluation"`
	OCRContent       string             `json:"ocr_content"`
	ProcessingStatus json.RawMessage    `json:"processing_status"`
}

// RawRuleEvaluation carries the rule engine's verdict for one material.
type RawRuleEvaluation struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}

// RawSummary carries pre-computed aggregate counters from the backend.
type RawSummary struct {
	OverallResult    string `json:"overall_result"`
	PassedMaterials  int    `json:"passed_materials"`
	TotalMaterials   int    `json:"total_materials"`
	FailedMaterials  int    `json:"failed_materials"`
	WarningMaterials int    `json:"warning_materials"`
}

// RawRule is one entry of the legacy flat rules payload shape.
type RawRule struct {
	Field       string `json:"field"`
	Description string `json:"description"`
	Result      string `json:"result"`
}

// Payload is the tagged decode of a raw result payload.
type Payload struct {
	Shape      Shape
	Materials  []RawMaterial
	Evaluation *RawEvaluation
	Rules      []RawRule
	ErrMessage string
}

// payloadProbe detects shape by field presence without committing to a
// full decode.
type payloadProbe struct {
	Materials         json.RawMessage `json:"materials"`
	EvaluationResult  json.RawMessage `json:"evaluation_result"`
	EvaluationSummary json.RawMessage `json:"evaluation_summary"`
	Error             string          `json:"error"`
	ErrorMessage      string          `json:"error_message"`
	Message           string          `json:"message"`
}

func fieldPresent(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && string(raw) != "null"
}

// DecodePayload classifies and decodes a raw result payload. It never
// returns an error: payloads matching no known shape come back as
// ShapeUnknown, carrying whatever error message the payload offered, and
// the normalizer degrades from there.
func DecodePayload(raw json.RawMessage) *Payload {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return &Payload{Shape: ShapeUnknown}
	}

	// The legacy rules shape is a bare top-level array.
	if raw[0] == '[' {
		var rules []RawRule
		if err := json.Unmarshal(raw, &rules); err == nil {
			return &Payload{Shape: ShapeRules, Rules: rules}
		}
		return &Payload{Shape: ShapeUnknown, ErrMessage: "unrecognized array payload"}
	}

	var probe payloadProbe
	if err := json.Unmarshal(raw, &probe); err != nil {
		return &Payload{Shape: ShapeUnknown, ErrMessage: "unparseable payload"}
	}

	if fieldPresent(probe.Materials) {
		var materials []RawMaterial
		if err := json.Unmarshal(probe.Materials, &materials); err != nil {
			return &Payload{Shape: ShapeUnknown, ErrMessage: "malformed materials list: " + err.Error()}
		}
		return &Payload{Shape: ShapeMaterials, Materials: materials}
	}

	if fieldPresent(probe.EvaluationResult) || fieldPresent(probe.EvaluationSummary) {
		eval := &RawEvaluation{}
		if fieldPresent(probe.EvaluationResult) {
			if err := json.Unmarshal(probe.EvaluationResult, eval); err != nil {
				return &Payload{Shape: ShapeUnknown, ErrMessage: "malformed evaluation result: " + err.Error()}
			}
		}
		// Some backend versions put the summary beside evaluation_result
		// instead of inside it.
		if eval.Summary == nil && fieldPresent(probe.EvaluationSummary) {
			var summary RawSummary
			if err := json.Unmarshal(probe.EvaluationSummary, &summary); err == nil {
				eval.Summary = &summary
			}
		}
		return &Payload{Shape: ShapeEvaluation, Evaluation: eval}
	}

	return &Payload{
		Shape:      ShapeUnknown,
		ErrMessage: firstNonEmpty(probe.Error, probe.ErrorMessage, probe.Message),
	}
}

// HasRedirectMarker reports whether a payload carries an authentication
// redirect marker. The upstream SSO layer answers some unauthenticated
// requests with 200 plus a redirect envelope instead of a 401.
func HasRedirectMarker(raw json.RawMessage) bool {
	var probe struct {
		Redirect    string `json:"redirect"`
		RedirectURL string `json:"redirect_url"`
		Code        any    `json:"code"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return false
	}
	if probe.Redirect != "" || probe.RedirectURL != "" {
		return true
	}
	if code, ok := probe.Code.(string); ok && strings.EqualFold(code, "login_required") {
		return true
	}
	if code, ok := probe.Code.(float64); ok && int(code) == 401 {
		return true
	}
	return false
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
