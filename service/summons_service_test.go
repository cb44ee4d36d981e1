package service

import (
	"strings"
	"testing"

	"github.com/doclegal/rechtstreeks-sub002/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSummonsSections(t *testing.T) {
	sections := newSummonsSections()
	require.Len(t, sections, len(models.SectionOrder))

	for i, section := range sections {
		assert.Equal(t, models.SectionOrder[i], section.Key)
		assert.Equal(t, i+1, section.StepOrder)
	}

	// aanzegging carries the statutory text and never needs generation
	aanzegging := sections[0]
	assert.Equal(t, models.SectionAanzegging, aanzegging.Key)
	assert.Equal(t, models.SectionStatusApproved, aanzegging.Status)
	require.NotNil(t, aanzegging.GeneratedText)
	assert.Equal(t, models.AanzeggingText, *aanzegging.GeneratedText)

	for _, section := range sections[1:] {
		assert.Equal(t, models.SectionStatusPending, section.Status)
		assert.Nil(t, section.GeneratedText)
	}
}

func TestBuildSectionPrompt(t *testing.T) {
	kase := &models.Case{
		Title:       "Huurachterstand Jansen",
		Description: "Drie maanden huur onbetaald.",
	}
	factsText := "Gedaagde huurt sinds 1 januari 2024."
	approved := map[models.SectionKey]string{
		models.SectionFacts: factsText,
	}
	feedback := "Noem het exacte bedrag van de achterstand."

	prompt := buildSectionPrompt(kase, models.SectionClaims, approved, map[string]interface{}{
		"hoofdsom": "EUR 3.450,00",
	}, &feedback)

	assert.Contains(t, prompt, "Huurachterstand Jansen")
	assert.Contains(t, prompt, "Drie maanden huur onbetaald.")
	assert.Contains(t, prompt, "hoofdsom: EUR 3.450,00")
	assert.Contains(t, prompt, factsText)
	assert.Contains(t, prompt, feedback)
	assert.Contains(t, prompt, sectionTitles[models.SectionClaims])
	assert.Contains(t, prompt, sectionInstructions[models.SectionClaims])
}

func TestBuildSectionPromptOmitsEmptyBlocks(t *testing.T) {
	kase := &models.Case{Title: "Zaak"}

	prompt := buildSectionPrompt(kase, models.SectionFacts, nil, nil, nil)

	assert.NotContains(t, prompt, "AANVULLENDE GEGEVENS")
	assert.NotContains(t, prompt, "REEDS GOEDGEKEURDE ONDERDELEN")
	assert.NotContains(t, prompt, "FEEDBACK OP DE VORIGE VERSIE")
}

func TestExtractWarnings(t *testing.T) {
	text := strings.Join([]string{
		"De vordering bedraagt EUR 3.450,00.",
		"LET OP: de exacte ingangsdatum van de huurovereenkomst ontbreekt.",
		"Gedaagde is meermaals aangemaand.",
		"  LET OP: het rentepercentage is niet opgegeven.",
	}, "\n")

	warnings := extractWarnings(text)
	require.Len(t, warnings, 2)
	assert.Equal(t, "de exacte ingangsdatum van de huurovereenkomst ontbreekt.", warnings[0])
	assert.Equal(t, "het rentepercentage is niet opgegeven.", warnings[1])

	assert.Empty(t, extractWarnings("Tekst zonder waarschuwingen."))
}

func TestParseGenerationResponse(t *testing.T) {
	body := []byte(`{"candidates":[{"content":{"parts":[{"text":"Deel een. "},{"text":"Deel twee."}]}}]}`)
	text, err := parseGenerationResponse(body)
	require.NoError(t, err)
	assert.Equal(t, "Deel een. Deel twee.", text)
}

func TestParseGenerationResponseErrors(t *testing.T) {
	_, err := parseGenerationResponse([]byte(`{"error":{"code":429,"message":"quota exceeded"}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")

	_, err = parseGenerationResponse([]byte(`{"promptFeedback":{"blockReason":"SAFETY"}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SAFETY")

	_, err = parseGenerationResponse([]byte(`{"candidates":[]}`))
	assert.Error(t, err)

	_, err = parseGenerationResponse([]byte(`{"candidates":[{"content":{"parts":[{"text":""}]}}]}`))
	assert.Error(t, err)
}

func TestApprovedTexts(t *testing.T) {
	facts := "De feiten."
	draft := "Concepttekst."
	sections := []*models.SummonsSection{
		{Key: models.SectionFacts, Status: models.SectionStatusApproved, GeneratedText: &facts},
		{Key: models.SectionClaims, Status: models.SectionStatusDraft, GeneratedText: &draft},
		{Key: models.SectionJurisdiction, Status: models.SectionStatusPending},
	}

	out := approvedTexts(sections)
	require.Len(t, out, 1)
	assert.Equal(t, facts, out[models.SectionFacts])
}
