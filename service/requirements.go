package service

import (
	"fmt"
	"sort"

	"github.com/doclegal/rechtstreeks-sub002/models"
)

// extractorFunc derives requirements from one known analysis payload shape.
// It returns an empty slice when the shape is absent from the payload.
type extractorFunc func(models.AnalysisJSON) []models.Requirement

// requirementExtractors is tried in priority order; the first extractor that
// yields a non-empty list wins and the rest are skipped. Sources are never
// merged. The order follows the age of the payload shapes: the current
// structured form first, bare legacy string arrays last.
var requirementExtractors = []extractorFunc{
	extractStructuredMissingInfo,
	extractEssentialsAndQuestions,
	extractAssessmentList,
	extractNeededFlags,
	extractMissingEvidence,
	extractLegacyMissingDocs,
}

// ExtractRequirements derives the ordered list of missing-information
// requirements from a case's AI analysis payload. A nil or unrecognized
// payload yields an empty list; extraction never fails.
func ExtractRequirements(analysis models.AnalysisJSON) []models.Requirement {
	if analysis == nil {
		return nil
	}
	for _, extract := range requirementExtractors {
		if reqs := extract(analysis); len(reqs) > 0 {
			return reqs
		}
	}
	return nil
}

// extractStructuredMissingInfo handles the current payload shape:
// missing_info_struct.sections[].items[].
func extractStructuredMissingInfo(analysis models.AnalysisJSON) []models.Requirement {
	root, ok := asMap(analysis["missing_info_struct"])
	if !ok {
		return nil
	}

	var reqs []models.Requirement
	for si, rawSection := range asSlice(root["sections"]) {
		section, ok := asMap(rawSection)
		if !ok {
			continue
		}
		sectionKey := asString(section["key"])
		if sectionKey == "" {
			sectionKey = fmt.Sprintf("section-%d", si)
		}

		for ii, rawItem := range asSlice(section["items"]) {
			item, ok := asMap(rawItem)
			if !ok {
				continue
			}

			id := asString(item["id"])
			if id == "" {
				id = fmt.Sprintf("%s-%d", sectionKey, ii)
			}

			question := firstString(item, "question", "label", "description")
			required := true
			if v, ok := item["required"].(bool); ok {
				required = v
			}

			req := models.Requirement{
				ID:       id,
				Question: question,
				Required: required,
			}
			applyAnswerShape(&req, item)
			reqs = append(reqs, req)
		}
	}

	return reqs
}

// applyAnswerShape sets the input kind and options from an item's
// answer_type/expected fields. file_upload expects a document, an
// array-valued expected becomes an enumerated choice list, everything
// else is free text.
func applyAnswerShape(req *models.Requirement, item map[string]interface{}) {
	if asString(item["answer_type"]) == "file_upload" {
		req.InputKind = models.InputKindDocument
		return
	}

	if expected, ok := item["expected"].([]interface{}); ok && len(expected) > 0 {
		options := make([]string, 0, len(expected))
		for _, opt := range expected {
			if s := asString(opt); s != "" {
				options = append(options, s)
			}
		}
		if len(options) > 0 {
			req.InputKind = models.InputKindText
			req.Options = options
			return
		}
	}

	req.InputKind = models.InputKindText
}

// extractEssentialsAndQuestions handles the flat missing_essentials and
// clarifying_questions arrays. The two arrays form a single source.
// Clarifying questions are optional; essentials block completion.
func extractEssentialsAndQuestions(analysis models.AnalysisJSON) []models.Requirement {
	var reqs []models.Requirement

	for i, raw := range asSlice(analysis["missing_essentials"]) {
		question := itemQuestion(raw)
		if question == "" {
			continue
		}
		reqs = append(reqs, models.Requirement{
			ID:        fmt.Sprintf("essential-%d", i),
			Question:  question,
			Required:  true,
			InputKind: models.InputKindText,
		})
	}

	for i, raw := range asSlice(analysis["clarifying_questions"]) {
		question := itemQuestion(raw)
		if question == "" {
			continue
		}
		reqs = append(reqs, models.Requirement{
			ID:        fmt.Sprintf("question-%d", i),
			Question:  question,
			Required:  false,
			InputKind: models.InputKindText,
		})
	}

	return reqs
}

// extractAssessmentList handles the missing_info_for_assessment array.
func extractAssessmentList(analysis models.AnalysisJSON) []models.Requirement {
	var reqs []models.Requirement
	for i, raw := range asSlice(analysis["missing_info_for_assessment"]) {
		question := itemQuestion(raw)
		if question == "" {
			continue
		}
		req := models.Requirement{
			ID:       fmt.Sprintf("assessment-%d", i),
			Question: question,
			Required: true,
		}
		if item, ok := asMap(raw); ok {
			if id := asString(item["id"]); id != "" {
				req.ID = id
			}
			if v, ok := item["required"].(bool); ok {
				req.Required = v
			}
			applyAnswerShape(&req, item)
		}
		reqs = append(reqs, req)
	}
	return reqs
}

// extractNeededFlags handles payloads that flag missing data inline:
// claims[] entries carrying needed:true become claim-<index>, and any other
// top-level object with needed:true becomes a requirement named after its
// key. Top-level keys are visited in sorted order so the result is stable.
func extractNeededFlags(analysis models.AnalysisJSON) []models.Requirement {
	var reqs []models.Requirement

	for i, raw := range asSlice(analysis["claims"]) {
		claim, ok := asMap(raw)
		if !ok {
			continue
		}
		if needed, _ := claim["needed"].(bool); !needed {
			continue
		}

		question := firstString(claim, "question", "label", "description")
		if question == "" {
			if claimType := asString(claim["type"]); claimType != "" {
				question = fmt.Sprintf("Aanvullende informatie over de vordering (%s)", claimType)
			} else {
				question = "Aanvullende informatie over de vordering"
			}
		}

		reqs = append(reqs, models.Requirement{
			ID:       fmt.Sprintf("claim-%d", i),
			Question: question,
			Required: true,
		})
	}

	keys := make([]string, 0, len(analysis))
	for key := range analysis {
		if key == "claims" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		obj, ok := asMap(analysis[key])
		if !ok {
			continue
		}
		if needed, _ := obj["needed"].(bool); !needed {
			continue
		}

		question := firstString(obj, "question", "label", "description")
		if question == "" {
			question = fmt.Sprintf("Aanvullende informatie over %s", key)
		}

		reqs = append(reqs, models.Requirement{
			ID:       key,
			Question: question,
			Required: true,
		})
	}

	return reqs
}

// extractMissingEvidence handles the evidence.missing string array.
func extractMissingEvidence(analysis models.AnalysisJSON) []models.Requirement {
	evidence, ok := asMap(analysis["evidence"])
	if !ok {
		return nil
	}

	var reqs []models.Requirement
	for i, raw := range asSlice(evidence["missing"]) {
		question := asString(raw)
		if question == "" {
			continue
		}
		reqs = append(reqs, models.Requirement{
			ID:        fmt.Sprintf("evidence-%d", i),
			Question:  question,
			Required:  true,
			InputKind: models.InputKindDocument,
		})
	}
	return reqs
}

// extractLegacyMissingDocs handles the oldest shape, missingDocsJson.
func extractLegacyMissingDocs(analysis models.AnalysisJSON) []models.Requirement {
	var reqs []models.Requirement
	for i, raw := range asSlice(analysis["missingDocsJson"]) {
		question := asString(raw)
		if question == "" {
			continue
		}
		reqs = append(reqs, models.Requirement{
			ID:        fmt.Sprintf("doc-%d", i),
			Question:  question,
			Required:  true,
			InputKind: models.InputKindDocument,
		})
	}
	return reqs
}

// ComputeCompletion counts required requirements against saved responses.
// Drafts never count; a not_available response satisfies a requirement.
func ComputeCompletion(reqs []models.Requirement, saved []*models.MissingInfoResponse) models.CompletionSummary {
	answered := make(map[string]bool, len(saved))
	for _, resp := range saved {
		answered[resp.RequirementID] = true
	}

	var summary models.CompletionSummary
	for _, req := range reqs {
		if !req.Required {
			continue
		}
		summary.RequiredCount++
		if answered[req.ID] {
			summary.AnsweredRequiredCount++
		}
	}
	summary.Complete = summary.AnsweredRequiredCount == summary.RequiredCount
	return summary
}

func asMap(v interface{}) (map[string]interface{}, bool) {
	m, ok := v.(map[string]interface{})
	return m, ok
}

func asSlice(v interface{}) []interface{} {
	s, _ := v.([]interface{})
	return s
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

// firstString returns the first non-empty string among the named fields
func firstString(m map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if s := asString(m[key]); s != "" {
			return s
		}
	}
	return ""
}

// itemQuestion extracts a prompt from either a bare string or an object
func itemQuestion(raw interface{}) string {
	if s := asString(raw); s != "" {
		return s
	}
	if m, ok := asMap(raw); ok {
		return firstString(m, "question", "label", "description")
	}
	return ""
}
