package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/doclegal/rechtstreeks-sub002/models"
	"github.com/doclegal/rechtstreeks-sub002/repository"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrSummonsNotFound       = errors.New("summons not found")
	ErrSectionNotFound       = errors.New("summons section not found")
	ErrSectionNotGeneratable = errors.New("section cannot be generated in its current status")
	ErrSectionLocked         = errors.New("section prerequisites not approved")
	ErrInvalidSectionState   = errors.New("invalid section state for this operation")
	ErrFeedbackRequired      = errors.New("feedback is required to reject a section")
	ErrSummonsIncomplete     = errors.New("not all sections are approved")
	ErrGenerationFailed      = errors.New("failed to generate section content")
)

const (
	generationAPI  = "https://generativelanguage.googleapis.com/v1beta/models/gemini-3-pro-preview:generateContent"
	maxRetries     = 3
	initialBackoff = time.Second
)

// SummonsService drives the section-by-section assembly of a summons
type SummonsService struct {
	summonsRepo  *repository.SummonsRepository
	caseRepo     *repository.CaseRepository
	geminiClient *genai.Client
	httpClient   *http.Client
}

// SummonsServiceOption is a functional option for SummonsService
type SummonsServiceOption func(*SummonsService)

// SummonsWithRepository sets the summons repository
func SummonsWithRepository(repo *repository.SummonsRepository) SummonsServiceOption {
	return func(s *SummonsService) {
		s.summonsRepo = repo
	}
}

// SummonsWithCaseRepository sets the case repository
func SummonsWithCaseRepository(repo *repository.CaseRepository) SummonsServiceOption {
	return func(s *SummonsService) {
		s.caseRepo = repo
	}
}

// SummonsWithGeminiClient sets the Gemini client
func SummonsWithGeminiClient(client *genai.Client) SummonsServiceOption {
	return func(s *SummonsService) {
		s.geminiClient = client
	}
}

// NewSummonsService creates a new summons service
func NewSummonsService(opts ...SummonsServiceOption) *SummonsService {
	s := &SummonsService{
		// A hung generation call must not leave a section generating forever.
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// sectionTitles are the Dutch display names used in prompts and assembly
var sectionTitles = map[models.SectionKey]string{
	models.SectionAanzegging:   "Aanzegging",
	models.SectionJurisdiction: "Bevoegdheid en relatieve competentie",
	models.SectionFacts:        "De feiten",
	models.SectionLegalGrounds: "Juridische gronden",
	models.SectionDefenses:     "Bekende verweren van gedaagde",
	models.SectionEvidence:     "Bewijsmiddelen",
	models.SectionClaims:       "De vordering",
	models.SectionExhibits:     "Producties",
}

// newSummonsSections builds the eight fixed sections for a fresh summons.
// The aanzegging carries fixed statutory text and starts approved.
func newSummonsSections() []*models.SummonsSection {
	sections := make([]*models.SummonsSection, 0, len(models.SectionOrder))
	for _, key := range models.SectionOrder {
		section := &models.SummonsSection{
			Key:       key,
			StepOrder: key.StepOrder(),
			Status:    models.SectionStatusPending,
		}
		if key == models.SectionAanzegging {
			text := models.AanzeggingText
			section.Status = models.SectionStatusApproved
			section.GeneratedText = &text
		}
		sections = append(sections, section)
	}
	return sections
}

// CreateSummonsRequest represents a request to open the summons editor
type CreateSummonsRequest struct {
	CaseID uuid.UUID
}

// CreateSummonsResult represents the created (or existing) summons
type CreateSummonsResult struct {
	Summons  *models.Summons
	Sections []*models.SummonsSection
}

// CreateSummons creates the summons and its eight sections the first time the
// editor is opened for a case. Subsequent calls return the existing summons.
func (s *SummonsService) CreateSummons(ctx context.Context, req CreateSummonsRequest) (*CreateSummonsResult, error) {
	if s.summonsRepo == nil {
		return nil, errors.New("summons repository not set")
	}
	if s.caseRepo == nil {
		return nil, errors.New("case repository not set")
	}

	if _, err := s.caseRepo.GetByID(ctx, req.CaseID); err != nil {
		return nil, ErrCaseNotFound
	}

	existing, err := s.summonsRepo.GetByCaseID(ctx, req.CaseID)
	if err == nil {
		sections, err := s.summonsRepo.ListSections(ctx, existing.ID)
		if err != nil {
			return nil, err
		}
		return &CreateSummonsResult{Summons: existing, Sections: sections}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	summons := &models.Summons{CaseID: req.CaseID}
	sections := newSummonsSections()
	if err := s.summonsRepo.Create(ctx, summons, sections); err != nil {
		return nil, err
	}

	return &CreateSummonsResult{Summons: summons, Sections: sections}, nil
}

// ListSectionsRequest represents a request to list summons sections
type ListSectionsRequest struct {
	SummonsID uuid.UUID
}

// ListSectionsResult represents the sections of a summons
type ListSectionsResult struct {
	Sections []*models.SummonsSection
}

// ListSections returns all sections of a summons in step order
func (s *SummonsService) ListSections(ctx context.Context, req ListSectionsRequest) (*ListSectionsResult, error) {
	if s.summonsRepo == nil {
		return nil, errors.New("summons repository not set")
	}

	if _, err := s.summonsRepo.GetByID(ctx, req.SummonsID); err != nil {
		return nil, ErrSummonsNotFound
	}

	sections, err := s.summonsRepo.ListSections(ctx, req.SummonsID)
	if err != nil {
		return nil, err
	}

	return &ListSectionsResult{Sections: sections}, nil
}

// GenerateSectionRequest represents a request to generate one section
type GenerateSectionRequest struct {
	SummonsID    uuid.UUID
	Key          models.SectionKey
	UserFields   map[string]interface{}
	UserFeedback *string
}

// GenerateSectionResult represents a generated section
type GenerateSectionResult struct {
	Section *models.SummonsSection
}

// GenerateSection generates the text of a section, provided the section
// gate passes and the section is awaiting (re)generation. A failed call
// restores the section to the status it had before the attempt.
func (s *SummonsService) GenerateSection(ctx context.Context, req GenerateSectionRequest) (*GenerateSectionResult, error) {
	if s.summonsRepo == nil {
		return nil, errors.New("summons repository not set")
	}
	if s.caseRepo == nil {
		return nil, errors.New("case repository not set")
	}
	if s.geminiClient == nil {
		return nil, errors.New("gemini client not set")
	}
	if !models.IsValidSectionKey(req.Key) {
		return nil, ErrSectionNotFound
	}

	summons, err := s.summonsRepo.GetByID(ctx, req.SummonsID)
	if err != nil {
		return nil, ErrSummonsNotFound
	}

	kase, err := s.caseRepo.GetByID(ctx, summons.CaseID)
	if err != nil {
		return nil, ErrCaseNotFound
	}

	sections, err := s.summonsRepo.ListSections(ctx, req.SummonsID)
	if err != nil {
		return nil, err
	}

	var section *models.SummonsSection
	statuses := make(models.SectionStatuses, len(sections))
	for _, sec := range sections {
		statuses[sec.Key] = sec.Status
		if sec.Key == req.Key {
			section = sec
		}
	}
	if section == nil {
		return nil, ErrSectionNotFound
	}

	if section.Status != models.SectionStatusPending && section.Status != models.SectionStatusNeedsChanges {
		return nil, ErrSectionNotGeneratable
	}
	if !models.GateOpen(req.Key, statuses) {
		return nil, ErrSectionLocked
	}

	// Regeneration carries the stored rejection feedback unless the caller
	// supplies fresh feedback.
	feedback := section.UserFeedback
	if req.UserFeedback != nil && strings.TrimSpace(*req.UserFeedback) != "" {
		feedback = req.UserFeedback
	}

	prior := section.Status
	if err := s.summonsRepo.UpdateSectionStatus(ctx, section.ID, models.SectionStatusGenerating); err != nil {
		return nil, err
	}
	section.Status = models.SectionStatusGenerating

	prompt := buildSectionPrompt(kase, req.Key, approvedTexts(sections), req.UserFields, feedback)

	text, err := s.callGenerationAPI(ctx, prompt, 0.2)
	if err != nil {
		// Restore the prior status so a failed call never corrupts the
		// state machine.
		if restoreErr := s.summonsRepo.UpdateSectionStatus(ctx, section.ID, prior); restoreErr != nil {
			return nil, fmt.Errorf("failed to restore section status after generation error: %w", restoreErr)
		}
		section.Status = prior
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	section.Status = models.SectionStatusDraft
	section.GeneratedText = &text
	section.UserFeedback = feedback
	section.GenerationCount++
	section.Warnings = extractWarnings(text)

	if err := s.summonsRepo.UpdateSection(ctx, section); err != nil {
		return nil, err
	}

	return &GenerateSectionResult{Section: section}, nil
}

// ApproveSectionRequest represents a request to approve a section
type ApproveSectionRequest struct {
	SummonsID uuid.UUID
	Key       models.SectionKey
}

// ApproveSectionResult represents an approved section
type ApproveSectionResult struct {
	Section *models.SummonsSection
}

// ApproveSection moves a drafted section to approved
func (s *SummonsService) ApproveSection(ctx context.Context, req ApproveSectionRequest) (*ApproveSectionResult, error) {
	if s.summonsRepo == nil {
		return nil, errors.New("summons repository not set")
	}

	section, err := s.summonsRepo.GetSection(ctx, req.SummonsID, req.Key)
	if err != nil {
		return nil, ErrSectionNotFound
	}

	if !models.CanTransition(section.Status, models.SectionStatusApproved) {
		return nil, ErrInvalidSectionState
	}

	if err := s.summonsRepo.UpdateSectionStatus(ctx, section.ID, models.SectionStatusApproved); err != nil {
		return nil, err
	}
	section.Status = models.SectionStatusApproved

	return &ApproveSectionResult{Section: section}, nil
}

// RejectSectionRequest represents a request to reject a drafted section
type RejectSectionRequest struct {
	SummonsID uuid.UUID
	Key       models.SectionKey
	Feedback  string
}

// RejectSectionResult represents a rejected section
type RejectSectionResult struct {
	Section *models.SummonsSection
}

// RejectSection moves a drafted section to needs_changes with the user's
// feedback attached for the next generation round.
func (s *SummonsService) RejectSection(ctx context.Context, req RejectSectionRequest) (*RejectSectionResult, error) {
	if s.summonsRepo == nil {
		return nil, errors.New("summons repository not set")
	}

	feedback := strings.TrimSpace(req.Feedback)
	if feedback == "" {
		return nil, ErrFeedbackRequired
	}

	section, err := s.summonsRepo.GetSection(ctx, req.SummonsID, req.Key)
	if err != nil {
		return nil, ErrSectionNotFound
	}

	if !models.CanTransition(section.Status, models.SectionStatusNeedsChanges) {
		return nil, ErrInvalidSectionState
	}

	section.Status = models.SectionStatusNeedsChanges
	section.UserFeedback = &feedback

	if err := s.summonsRepo.UpdateSection(ctx, section); err != nil {
		return nil, err
	}

	return &RejectSectionResult{Section: section}, nil
}

// AssembleSummonsRequest represents a request for the assembled document
type AssembleSummonsRequest struct {
	SummonsID uuid.UUID
}

// AssembleSummonsResult represents the assembled summons text
type AssembleSummonsResult struct {
	Content string
}

// AssembleSummons concatenates all approved sections into the final summons
// text. Every section must be approved first.
func (s *SummonsService) AssembleSummons(ctx context.Context, req AssembleSummonsRequest) (*AssembleSummonsResult, error) {
	if s.summonsRepo == nil {
		return nil, errors.New("summons repository not set")
	}

	if _, err := s.summonsRepo.GetByID(ctx, req.SummonsID); err != nil {
		return nil, ErrSummonsNotFound
	}

	sections, err := s.summonsRepo.ListSections(ctx, req.SummonsID)
	if err != nil {
		return nil, err
	}

	var builder strings.Builder
	builder.WriteString("DAGVAARDING\n\n")
	for _, section := range sections {
		if section.Status != models.SectionStatusApproved {
			return nil, ErrSummonsIncomplete
		}
		builder.WriteString(fmt.Sprintf("%d. %s\n", section.StepOrder, sectionTitles[section.Key]))
		if section.GeneratedText != nil {
			builder.WriteString(*section.GeneratedText)
		}
		builder.WriteString("\n\n")
	}

	return &AssembleSummonsResult{Content: builder.String()}, nil
}

// approvedTexts collects the text of every approved section keyed by section
// name, in step order. This is the causal context for later generations.
func approvedTexts(sections []*models.SummonsSection) map[models.SectionKey]string {
	out := make(map[models.SectionKey]string)
	for _, section := range sections {
		if section.Status == models.SectionStatusApproved && section.GeneratedText != nil {
			out[section.Key] = *section.GeneratedText
		}
	}
	return out
}

// sectionInstructions describe what each generated section must contain
var sectionInstructions = map[models.SectionKey]string{
	models.SectionJurisdiction: "Motiveer waarom de kantonrechter bevoegd is (aard en waarde van de vordering, art. 93 Rv) en welke rechtbank relatief bevoegd is (woonplaats gedaagde, art. 99 Rv).",
	models.SectionFacts:        "Zet de feiten chronologisch en zakelijk uiteen. Gebruik uitsluitend feiten uit de zaakgegevens; verzin niets en noem exacte data en bedragen.",
	models.SectionLegalGrounds: "Onderbouw de vordering juridisch. Verwijs naar de relevante wetsartikelen (BW) en koppel elk artikel aan de vastgestelde feiten en de geformuleerde vordering.",
	models.SectionDefenses:     "Beschrijf de bekende of te verwachten verweren van gedaagde en weerleg deze onderbouwd (art. 111 lid 3 Rv, substantieringsplicht).",
	models.SectionEvidence:     "Som de bewijsmiddelen op waarover eiser beschikt en geef per bewijsmiddel aan welk feit het onderbouwt (art. 111 lid 3 Rv, bewijsaandraagplicht).",
	models.SectionClaims:       "Formuleer het petitum: wat wordt gevorderd, met hoofdsom, rente en kosten. Wees exact met bedragen en formuleer toewijsbaar.",
	models.SectionExhibits:     "Stel de productielijst op: nummer elke productie, geef een korte omschrijving en verwijs naar de passage in de dagvaarding waar deze wordt genoemd.",
}

// buildSectionPrompt builds the generation prompt for a section from the
// case data, the user's supplemental fields, all earlier approved section
// texts and any rejection feedback.
func buildSectionPrompt(
	kase *models.Case,
	key models.SectionKey,
	approved map[models.SectionKey]string,
	userFields map[string]interface{},
	feedback *string,
) string {
	var builder strings.Builder

	builder.WriteString("Je bent een ervaren Nederlandse procesjurist en stelt een dagvaarding op voor een kantonzaak.\n\n")

	builder.WriteString("ZAAKGEGEVENS:\n")
	builder.WriteString(fmt.Sprintf("Zaak: %s\n", kase.Title))
	if kase.Description != "" {
		builder.WriteString(fmt.Sprintf("Omschrijving: %s\n", kase.Description))
	}
	builder.WriteString("\n")

	if len(userFields) > 0 {
		builder.WriteString("AANVULLENDE GEGEVENS VAN EISER:\n")
		keys := make([]string, 0, len(userFields))
		for k := range userFields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			builder.WriteString(fmt.Sprintf("%s: %v\n", k, userFields[k]))
		}
		builder.WriteString("\n")
	}

	if len(approved) > 0 {
		builder.WriteString("REEDS GOEDGEKEURDE ONDERDELEN:\n")
		for _, sectionKey := range models.SectionOrder {
			text, ok := approved[sectionKey]
			if !ok {
				continue
			}
			builder.WriteString(fmt.Sprintf("[%s]\n%s\n\n", sectionTitles[sectionKey], text))
		}
	}

	if feedback != nil && *feedback != "" {
		builder.WriteString("FEEDBACK OP DE VORIGE VERSIE:\n")
		builder.WriteString(*feedback)
		builder.WriteString("\n\n")
	}

	builder.WriteString(fmt.Sprintf("OPDRACHT:\nSchrijf het onderdeel \"%s\".\n", sectionTitles[key]))
	if instruction, ok := sectionInstructions[key]; ok {
		builder.WriteString(instruction)
		builder.WriteString("\n")
	}
	builder.WriteString(`
EISEN AAN DE OUTPUT:
- Formeel juridisch Nederlands, geen markdown
- Sluit aan op de reeds goedgekeurde onderdelen en spreek ze niet tegen
- Gebruik uitsluitend gegevens uit de zaakgegevens hierboven; verzin geen feiten, namen of bedragen
- Neem geen kopje of titel op; de tekst wordt onder een bestaand kopje geplaatst
- Ontbreekt essentiele informatie, begin die regel dan met "LET OP:" zodat de behandelaar het ziet

Schrijf het onderdeel nu:`)

	return builder.String()
}

// extractWarnings pulls the "LET OP:" lines the model was instructed to emit
// for missing information out of the generated text.
func extractWarnings(text string) models.SectionWarnings {
	var warnings models.SectionWarnings
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "LET OP:") {
			warnings = append(warnings, strings.TrimSpace(strings.TrimPrefix(line, "LET OP:")))
		}
	}
	return warnings
}

// callGenerationAPI calls the Gemini generation API directly via HTTP,
// retrying transient failures with exponential backoff.
func (s *SummonsService) callGenerationAPI(ctx context.Context, prompt string, temperature float64) (string, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY not set")
	}

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]interface{}{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"temperature": temperature,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	backoff := initialBackoff
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(backoff)
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, "POST", generationAPI, bytes.NewBuffer(jsonData))
		if err != nil {
			return "", fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", apiKey)

		resp, err := s.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		bodyBytes, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			// Don't retry on 400 or 401 errors
			if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
				return "", fmt.Errorf("API error: %d - %s", resp.StatusCode, string(bodyBytes))
			}
			lastErr = fmt.Errorf("API error: %d", resp.StatusCode)
			continue
		}

		text, err := parseGenerationResponse(bodyBytes)
		if err != nil {
			lastErr = err
			continue
		}
		return text, nil
	}

	return "", fmt.Errorf("generation failed after %d attempts: %w", maxRetries, lastErr)
}

// parseGenerationResponse extracts the generated text from a Gemini response
func parseGenerationResponse(body []byte) (string, error) {
	var apiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
			FinishReason string `json:"finishReason,omitempty"`
		} `json:"candidates"`
		PromptFeedback struct {
			BlockReason string `json:"blockReason,omitempty"`
		} `json:"promptFeedback,omitempty"`
		Error struct {
			Code    int    `json:"code,omitempty"`
			Message string `json:"message,omitempty"`
		} `json:"error,omitempty"`
	}

	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if apiResp.Error.Message != "" {
		return "", fmt.Errorf("API error: %s (code: %d)", apiResp.Error.Message, apiResp.Error.Code)
	}
	if apiResp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("API blocked prompt: %s", apiResp.PromptFeedback.BlockReason)
	}
	if len(apiResp.Candidates) == 0 {
		return "", fmt.Errorf("API returned no candidates")
	}

	var responseText strings.Builder
	for _, candidate := range apiResp.Candidates {
		for _, part := range candidate.Content.Parts {
			responseText.WriteString(part.Text)
		}
	}

	result := responseText.String()
	if result == "" {
		return "", fmt.Errorf("API returned empty content")
	}

	return result, nil
}
