package service

import (
	"testing"

	"github.com/doclegal/rechtstreeks-sub002/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractRequirementsNilAnalysis(t *testing.T) {
	assert.Empty(t, ExtractRequirements(nil))
	assert.Empty(t, ExtractRequirements(models.AnalysisJSON{}))
}

func TestExtractStructuredMissingInfo(t *testing.T) {
	analysis := models.AnalysisJSON{
		"missing_info_struct": map[string]interface{}{
			"sections": []interface{}{
				map[string]interface{}{
					"key": "contract",
					"items": []interface{}{
						map[string]interface{}{
							"id":       "contract-date",
							"question": "Wanneer is de overeenkomst gesloten?",
							"required": true,
						},
						map[string]interface{}{
							"question":    "Upload de huurovereenkomst",
							"answer_type": "file_upload",
						},
						map[string]interface{}{
							"id":       "payment-method",
							"question": "Hoe werd betaald?",
							"required": false,
							"expected": []interface{}{"bank", "contant"},
						},
					},
				},
			},
		},
	}

	reqs := ExtractRequirements(analysis)
	require.Len(t, reqs, 3)

	assert.Equal(t, "contract-date", reqs[0].ID)
	assert.Equal(t, "Wanneer is de overeenkomst gesloten?", reqs[0].Question)
	assert.True(t, reqs[0].Required)
	assert.Equal(t, models.InputKindText, reqs[0].InputKind)

	// missing id falls back to section key plus index
	assert.Equal(t, "contract-1", reqs[1].ID)
	assert.Equal(t, models.InputKindDocument, reqs[1].InputKind)
	assert.True(t, reqs[1].Required)

	assert.False(t, reqs[2].Required)
	assert.Equal(t, []string{"bank", "contant"}, reqs[2].Options)
}

func TestExtractEssentialsAndQuestions(t *testing.T) {
	analysis := models.AnalysisJSON{
		"missing_essentials": []interface{}{
			"Naam en adres van gedaagde",
			map[string]interface{}{"question": "Hoogte van de hoofdsom"},
		},
		"clarifying_questions": []interface{}{
			"Is er eerder aangemaand?",
		},
	}

	reqs := ExtractRequirements(analysis)
	require.Len(t, reqs, 3)

	assert.Equal(t, "essential-0", reqs[0].ID)
	assert.True(t, reqs[0].Required)
	assert.Equal(t, "essential-1", reqs[1].ID)
	assert.Equal(t, "Hoogte van de hoofdsom", reqs[1].Question)

	assert.Equal(t, "question-0", reqs[2].ID)
	assert.False(t, reqs[2].Required)
}

func TestExtractNeededFlags(t *testing.T) {
	analysis := models.AnalysisJSON{
		"claims": []interface{}{
			map[string]interface{}{"type": "hoofdsom", "needed": false},
			map[string]interface{}{"type": "rente", "needed": true},
			map[string]interface{}{"needed": true, "question": "Wat is de contractuele boete?"},
		},
		"parties": map[string]interface{}{
			"needed": true,
		},
		"assessment": map[string]interface{}{
			"needed": false,
		},
	}

	reqs := ExtractRequirements(analysis)
	require.Len(t, reqs, 3)

	// flagged claims keep their array index
	assert.Equal(t, "claim-1", reqs[0].ID)
	assert.Equal(t, "Aanvullende informatie over de vordering (rente)", reqs[0].Question)
	assert.Equal(t, "claim-2", reqs[1].ID)
	assert.Equal(t, "Wat is de contractuele boete?", reqs[1].Question)

	assert.Equal(t, "parties", reqs[2].ID)
	assert.True(t, reqs[2].Required)
}

func TestExtractMissingEvidence(t *testing.T) {
	analysis := models.AnalysisJSON{
		"evidence": map[string]interface{}{
			"missing": []interface{}{"Huurovereenkomst", "Aanmaningsbrief"},
		},
	}

	reqs := ExtractRequirements(analysis)
	require.Len(t, reqs, 2)
	assert.Equal(t, "evidence-0", reqs[0].ID)
	assert.Equal(t, models.InputKindDocument, reqs[0].InputKind)
	assert.Equal(t, "Aanmaningsbrief", reqs[1].Question)
}

func TestExtractLegacyMissingDocs(t *testing.T) {
	analysis := models.AnalysisJSON{
		"missingDocsJson": []interface{}{"Loonstrook", "Arbeidsovereenkomst"},
	}

	reqs := ExtractRequirements(analysis)
	require.Len(t, reqs, 2)
	assert.Equal(t, "doc-0", reqs[0].ID)
	assert.Equal(t, models.InputKindDocument, reqs[1].InputKind)
}

func TestExtractFirstNonEmptySourceWins(t *testing.T) {
	// A payload carrying both the structured form and legacy arrays must use
	// only the structured form; sources are never merged.
	analysis := models.AnalysisJSON{
		"missing_info_struct": map[string]interface{}{
			"sections": []interface{}{
				map[string]interface{}{
					"key": "s",
					"items": []interface{}{
						map[string]interface{}{"id": "only-one", "question": "Vraag?"},
					},
				},
			},
		},
		"missing_essentials": []interface{}{"Moet genegeerd worden"},
		"missingDocsJson":    []interface{}{"Ook genegeerd"},
	}

	reqs := ExtractRequirements(analysis)
	require.Len(t, reqs, 1)
	assert.Equal(t, "only-one", reqs[0].ID)
}

func TestExtractEmptyStructuredFallsThrough(t *testing.T) {
	// An empty structured block must not shadow a later source.
	analysis := models.AnalysisJSON{
		"missing_info_struct": map[string]interface{}{
			"sections": []interface{}{},
		},
		"missing_essentials": []interface{}{"Naam gedaagde"},
	}

	reqs := ExtractRequirements(analysis)
	require.Len(t, reqs, 1)
	assert.Equal(t, "essential-0", reqs[0].ID)
}

func TestComputeCompletion(t *testing.T) {
	caseID := uuid.New()
	reqs := []models.Requirement{
		{ID: "a", Required: true},
		{ID: "b", Required: true},
		{ID: "c", Required: false},
	}

	val := "antwoord"
	saved := []*models.MissingInfoResponse{
		{CaseID: caseID, RequirementID: "a", Kind: models.ResponseKindText, Value: &val},
	}

	summary := ComputeCompletion(reqs, saved)
	assert.Equal(t, 2, summary.RequiredCount)
	assert.Equal(t, 1, summary.AnsweredRequiredCount)
	assert.False(t, summary.Complete)

	// not_available satisfies a requirement just like a real answer
	saved = append(saved, &models.MissingInfoResponse{
		CaseID: caseID, RequirementID: "b", Kind: models.ResponseKindNotAvailable,
	})
	summary = ComputeCompletion(reqs, saved)
	assert.Equal(t, 2, summary.AnsweredRequiredCount)
	assert.True(t, summary.Complete)
}

func TestComputeCompletionNoRequirements(t *testing.T) {
	summary := ComputeCompletion(nil, nil)
	assert.Zero(t, summary.RequiredCount)
	assert.True(t, summary.Complete)
}
