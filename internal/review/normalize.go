package review

import (
	"encoding/json"
	"fmt"
	"strings"

	"reviewd/internal/domain"
	"reviewd/internal/urlcanon"
)

const (
	// partialMarker downgrades a passed evaluation material to hasIssues
	// when it appears anywhere in the processing-status value.
	partialMarker = "partial"

	ocrItemName           = "OCR result"
	placeholderAnnotation = "No reviewable content was returned for this material"
	unavailableName       = "Review data unavailable"
	unavailableAnnotation = "The review backend returned data in an unrecognized format"
)

// Normalizer turns raw result payloads into canonical materials. It holds
// no mutable state: normalization is a pure function of the payload, so
// duplicate or late payloads re-normalize to identical output.
type Normalizer struct {
	canon    *urlcanon.Canonicalizer
	synonyms SynonymTable
}

// NewNormalizer creates a Normalizer. A nil synonym table uses the
// compiled-in defaults.
func NewNormalizer(canon *urlcanon.Canonicalizer, synonyms SynonymTable) *Normalizer {
	if synonyms == nil {
		synonyms = DefaultSynonyms()
	}
	return &Normalizer{canon: canon, synonyms: synonyms}
}

// Normalize builds canonical materials from a raw result payload,
// dispatching on the detected shape. It never fails: unrecognized payloads
// degrade to a single sentinel material so callers always have something
// to render.
func (n *Normalizer) Normalize(raw json.RawMessage) []domain.Material {
	return n.materialize(DecodePayload(raw))
}

// NormalizeResult builds the full canonical result: materials plus their
// aggregate. When the payload carries backend summary counters those are
// trusted over recomputation.
func (n *Normalizer) NormalizeResult(raw json.RawMessage) domain.ReviewResult {
	payload := DecodePayload(raw)
	materials := n.materialize(payload)

	var summary *RawSummary
	if payload.Shape == ShapeEvaluation && payload.Evaluation != nil {
		summary = payload.Evaluation.Summary
	}
	return domain.ReviewResult{
		Materials: materials,
		Aggregate: Aggregate(materials, summary),
	}
}

func (n *Normalizer) materialize(payload *Payload) []domain.Material {
	switch payload.Shape {
	case ShapeMaterials:
		return n.fromMaterials(payload.Materials)
	case ShapeEvaluation:
		return n.fromEvaluation(payload.Evaluation)
	case ShapeRules:
		return n.fromRules(payload.Rules)
	default:
		return n.unrecognized(payload.ErrMessage)
	}
}

// fromMaterials handles the flat-materials shape. Material status is
// derived from the items when any exist; a material is passed iff every
// item is passed.
func (n *Normalizer) fromMaterials(rawMaterials []RawMaterial) []domain.Material {
	materials := make([]domain.Material, 0, len(rawMaterials))
	for i, rm := range rawMaterials {
		materialID := firstNonEmpty(rm.ID.String(), fmt.Sprintf("material-%d", i+1))

		items := make([]domain.Item, 0, len(rm.Items))
		for j, rawItem := range rm.Items {
			var ri RawItem
			// Tolerate partial decode; unknown fields are the norm.
			_ = json.Unmarshal(rawItem, &ri)
			items = append(items, domain.Item{
				ID:         firstNonEmpty(ri.ID.String(), fmt.Sprintf("%s-item-%d", materialID, j+1)),
				Name:       firstNonEmpty(ri.Name, fmt.Sprintf("Item %d", j+1)),
				Status:     n.synonyms.Map(ri.Status),
				Doc:        n.docInfo(&ri, rawItem),
				Annotation: firstNonEmpty(ri.Annotation, ri.Message),
			})
		}

		status := n.synonyms.Map(rm.Status)
		if len(items) > 0 {
			status = worstStatus(items)
		}

		materials = append(materials, domain.Material{
			ID:        materialID,
			Name:      firstNonEmpty(rm.Name, fmt.Sprintf("Material %d", i+1)),
			Code:      rm.Code,
			PageCount: totalPages(items),
			Status:    status,
			Items:     items,
			Preview:   n.preview(rm.Preview),
		})
	}
	return materials
}

// rawAttachment covers the stable fields of an evaluation attachment. The
// raw form is also fed to the page extractor for everything else.
type rawAttachment struct {
	ID          flexString `json:"id"`
	Name        string     `json:"name"`
	FileName    string     `json:"file_name"`
	URL         string     `json:"url"`
	FileURL     string     `json:"file_url"`
	DownloadURL string     `json:"download_url"`
	MimeType    string     `json:"mime_type"`
	PageCount   int        `json:"page_count"`
	FileSize    int64      `json:"file_size"`
}

// fromEvaluation handles the evaluation-result shape. Material status comes
// from the rule evaluation status code, downgraded by the partial-success
// marker; items inherit their material's status.
func (n *Normalizer) fromEvaluation(eval *RawEvaluation) []domain.Material {
	if eval == nil {
		return nil
	}
	materials := make([]domain.Material, 0, len(eval.MaterialResults))
	for i, mr := range eval.MaterialResults {
		status := statusFromCode(mr.RuleEvaluation)
		if status == domain.StatusPassed && hasPartialMarker(mr.ProcessingStatus) {
			status = domain.StatusHasIssues
		}

		materialID := firstNonEmpty(mr.ID.String(), fmt.Sprintf("material-%d", i+1))
		name := firstNonEmpty(mr.Name, fmt.Sprintf("Material %d", i+1))

		var items []domain.Item
		for j, rawAtt := range mr.Attachments {
			items = append(items, n.attachmentItem(rawAtt, materialID, j, status))
		}
		if mr.OCRContent != "" {
			items = append(items, domain.Item{
				ID:     materialID + "-ocr",
				Name:   ocrItemName,
				Status: status,
				Doc: domain.DocInfo{
					Type:        domain.DocTypeText,
					TextContent: mr.OCRContent,
				},
			})
		}
		if len(items) == 0 {
			annotation := placeholderAnnotation
			if mr.RuleEvaluation != nil && mr.RuleEvaluation.Message != "" {
				annotation = mr.RuleEvaluation.Message
			}
			items = append(items, domain.Item{
				ID:         materialID + "-placeholder",
				Name:       name,
				Status:     status,
				Doc:        domain.DocInfo{Type: domain.DocTypeNone},
				Annotation: annotation,
			})
		}

		materials = append(materials, domain.Material{
			ID:        materialID,
			Name:      name,
			Code:      mr.Code,
			PageCount: totalPages(items),
			Status:    status,
			Items:     items,
		})
	}
	return materials
}

func (n *Normalizer) attachmentItem(raw json.RawMessage, materialID string, idx int, status domain.Status) domain.Item {
	var att rawAttachment
	_ = json.Unmarshal(raw, &att)

	pages := n.ExtractPages(raw)
	download := n.canon.Canonicalize(firstNonEmpty(att.DownloadURL, att.FileURL, att.URL))
	pageCount := att.PageCount
	if pageCount == 0 {
		pageCount = len(pages)
	}

	return domain.Item{
		ID:     firstNonEmpty(att.ID.String(), fmt.Sprintf("%s-att-%d", materialID, idx+1)),
		Name:   firstNonEmpty(att.Name, att.FileName, fmt.Sprintf("Attachment %d", idx+1)),
		Status: status,
		Doc: domain.DocInfo{
			Type:        docTypeFor(att.MimeType, firstNonEmpty(download, firstOf(pages)), len(pages) > 0, false),
			PageURLs:    pages,
			DownloadURL: download,
			MimeType:    att.MimeType,
			PageCount:   pageCount,
			FileSize:    att.FileSize,
		},
	}
}

// fromRules handles the legacy rules shape: one rule becomes one
// pseudo-material with a single check item.
func (n *Normalizer) fromRules(rules []RawRule) []domain.Material {
	materials := make([]domain.Material, 0, len(rules))
	for i, rule := range rules {
		status := ruleResultStatus(rule.Result)
		materialID := fmt.Sprintf("rule-%d", i+1)
		name := firstNonEmpty(rule.Field, fmt.Sprintf("Rule %d", i+1))

		item := domain.Item{
			ID:     materialID + "-check",
			Name:   name,
			Status: status,
			Doc: domain.DocInfo{
				Type:        domain.DocTypeNone,
				TextContent: rule.Description,
			},
			Annotation: firstNonEmpty(rule.Result, rule.Description),
		}

		materials = append(materials, domain.Material{
			ID:     materialID,
			Name:   name,
			Status: status,
			Items:  []domain.Item{item},
		})
	}
	return materials
}

// unrecognized degrades a shape mismatch into a single sentinel material
// carrying whatever error message the payload offered.
func (n *Normalizer) unrecognized(errMessage string) []domain.Material {
	annotation := firstNonEmpty(errMessage, unavailableAnnotation)
	return []domain.Material{{
		ID:     "unavailable",
		Name:   unavailableName,
		Status: domain.StatusError,
		Items: []domain.Item{{
			ID:         "unavailable-detail",
			Name:       unavailableName,
			Status:     domain.StatusError,
			Doc:        domain.DocInfo{Type: domain.DocTypeNone},
			Annotation: annotation,
		}},
	}}
}

func (n *Normalizer) docInfo(ri *RawItem, raw json.RawMessage) domain.DocInfo {
	pages := n.ExtractPages(raw)
	download := n.canon.Canonicalize(firstNonEmpty(ri.DownloadURL, ri.URL))
	hasText := ri.Content != ""

	pageCount := ri.PageCount
	if pageCount == 0 {
		pageCount = len(pages)
	}

	return domain.DocInfo{
		Type:        docTypeFor(ri.MimeType, firstNonEmpty(download, firstOf(pages)), len(pages) > 0, hasText),
		PageURLs:    pages,
		DownloadURL: download,
		TextContent: ri.Content,
		MimeType:    ri.MimeType,
		PageCount:   pageCount,
		FileSize:    ri.FileSize,
	}
}

func (n *Normalizer) preview(p *RawPreview) *domain.DocPreview {
	if p == nil || p.URL == "" {
		return nil
	}
	return &domain.DocPreview{
		URL:      n.canon.Canonicalize(p.URL),
		MimeType: p.MimeType,
	}
}

// statusFromCode maps a rule evaluation status code onto the taxonomy:
// server-side failures are errors, client-visible deviations are issues.
func statusFromCode(re *RawRuleEvaluation) domain.Status {
	if re == nil {
		return domain.StatusPassed
	}
	switch {
	case re.StatusCode >= 500:
		return domain.StatusError
	case re.StatusCode >= 300:
		return domain.StatusHasIssues
	default:
		return domain.StatusPassed
	}
}

// hasPartialMarker searches a processing-status value for the partial
// success marker: a substring match on string values, or on any object key.
func hasPartialMarker(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return false
	}
	return searchPartial(value)
}

func searchPartial(value any) bool {
	switch v := value.(type) {
	case string:
		return strings.Contains(strings.ToLower(v), partialMarker)
	case map[string]any:
		for key, inner := range v {
			if strings.Contains(strings.ToLower(key), partialMarker) {
				return true
			}
			if searchPartial(inner) {
				return true
			}
		}
	case []any:
		for _, inner := range v {
			if searchPartial(inner) {
				return true
			}
		}
	}
	return false
}

// ruleResultStatus derives a status from a legacy rule's free-text result.
func ruleResultStatus(result string) domain.Status {
	lower := strings.ToLower(result)
	switch {
	case strings.Contains(lower, "fail"), strings.Contains(lower, "error"):
		return domain.StatusError
	case strings.Contains(lower, "warn"):
		return domain.StatusHasIssues
	default:
		return domain.StatusPassed
	}
}

func worstStatus(items []domain.Item) domain.Status {
	status := domain.StatusPassed
	for _, item := range items {
		if item.Status.Worse(status) {
			status = item.Status
		}
	}
	return status
}

func totalPages(items []domain.Item) int {
	total := 0
	for _, item := range items {
		total += item.Doc.PageCount
	}
	return total
}

func docTypeFor(mime, refURL string, hasPages, hasText bool) domain.DocType {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return domain.DocTypeImage
	case mime == "application/pdf":
		return domain.DocTypePDF
	case strings.HasPrefix(mime, "text/"):
		return domain.DocTypeText
	}
	if refURL == "" {
		if hasPages {
			return domain.DocTypeImage
		}
		if hasText {
			return domain.DocTypeText
		}
		return domain.DocTypeNone
	}
	ext := urlExtension(refURL)
	if ext == "" {
		if hasPages {
			return domain.DocTypeImage
		}
		return domain.DocTypeFile
	}
	return domain.DocTypeForExtension(ext)
}

// urlExtension extracts the lowercased file extension of a URL path,
// ignoring query and fragment.
func urlExtension(u string) string {
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	if i := strings.LastIndex(u, "/"); i >= 0 {
		u = u[i+1:]
	}
	if i := strings.LastIndex(u, "."); i >= 0 {
		return strings.ToLower(u[i+1:])
	}
	return ""
}

func firstOf(list []string) string {
	if len(list) == 0 {
		return ""
	}
	return list[0]
}
