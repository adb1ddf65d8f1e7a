package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/rostrum/internal/core/domain"
	"github.com/custodia-labs/rostrum/internal/core/ports/driving"
)

var errMock = errors.New("mock failure")

type mockSimilarityService struct {
	err        error
	lastFilter domain.DocumentFilter
	lastK      int
	lastText   string
	lastThresh float64
}

func (m *mockSimilarityService) SimilarSegments(
	_ context.Context, segmentID string, k int, threshold float64,
) ([]domain.ScoredSegment, error) {
	m.lastK, m.lastThresh = k, threshold
	if m.err != nil {
		return nil, m.err
	}
	if segmentID == "seg-empty" {
		return nil, nil
	}
	return []domain.ScoredSegment{{SegmentID: "seg-2", Score: 0.93}, {SegmentID: "seg-3", Score: 0.81}}, nil
}

func (m *mockSimilarityService) SimilarToText(
	_ context.Context, text string, k int, threshold float64,
) ([]domain.ScoredSegment, error) {
	m.lastText, m.lastK, m.lastThresh = text, k, threshold
	if m.err != nil {
		return nil, m.err
	}
	return []domain.ScoredSegment{{SegmentID: "seg-9", Score: 0.77}}, nil
}

func (m *mockSimilarityService) Pairs(
	_ context.Context, filter domain.DocumentFilter, threshold float64,
) ([]domain.SimilarityPair, error) {
	m.lastFilter, m.lastThresh = filter, threshold
	if m.err != nil {
		return nil, m.err
	}
	return []domain.SimilarityPair{
		{SegmentA: "seg-1", SegmentB: "seg-2", Score: 0.95},
		{SegmentA: "seg-1", SegmentB: "seg-3", Score: 0.88},
		{SegmentA: "seg-2", SegmentB: "seg-3", Score: 0.84},
	}, nil
}

func (m *mockSimilarityService) Matrix(
	_ context.Context, filter domain.DocumentFilter, threshold float64,
) (*domain.SimilarityMatrix, error) {
	m.lastFilter, m.lastThresh = filter, threshold
	if m.err != nil {
		return nil, m.err
	}
	return &domain.SimilarityMatrix{
		SegmentIDs: []string{"seg-aaaaaaaa", "seg-bbbbbbbb"},
		Threshold:  threshold,
		Cells:      [][]float64{{1, 0.5}, {0.5, 1}},
	}, nil
}

type mockSearchService struct {
	lastOpts domain.SearchOptions
}

func (m *mockSearchService) Search(_ context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	m.lastOpts = opts
	if query == "nothing" {
		return nil, nil
	}
	return []domain.SearchResult{{
		Document:  testDocument(),
		Segment:   domain.Segment{ID: "seg-1", DocumentID: "doc-1", Content: "climate change threatens small island states"},
		Score:     3.2,
		Highlight: "[climate] change threatens small island states",
	}}, nil
}

func testDocument() domain.Document {
	return domain.Document{
		ID:      "doc-1",
		URI:     "/speeches/FRA_78_2023.txt",
		Title:   "France, 78th session (2023)",
		Content: "Mr President, climate change threatens us all.",
		Metadata: map[string]any{
			domain.MetaCountryCode: "FRA",
			domain.MetaCountryName: "France",
			domain.MetaYear:        2023,
		},
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

type mockDocumentService struct {
	lastFilter domain.DocumentFilter
	deleted    []string
	opened     []string
}

func (m *mockDocumentService) List(_ context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	m.lastFilter = filter
	if len(filter.CountryCodes) == 1 && filter.CountryCodes[0] == "XXX" {
		return nil, nil
	}
	return []domain.Document{testDocument()}, nil
}

func (m *mockDocumentService) Get(_ context.Context, id string) (*domain.Document, error) {
	if id != "doc-1" {
		return nil, domain.ErrNotFound
	}
	doc := testDocument()
	return &doc, nil
}

func (m *mockDocumentService) GetDetails(_ context.Context, id string) (*driving.DocumentDetails, error) {
	if id != "doc-1" {
		return nil, domain.ErrNotFound
	}
	return &driving.DocumentDetails{
		ID:            "doc-1",
		Title:         "France, 78th session (2023)",
		URI:           "/speeches/FRA_78_2023.txt",
		SegmentCount:  4,
		EmbeddedCount: 4,
		Metadata:      map[string]string{"country_code": "FRA", "year": "2023"},
	}, nil
}

func (m *mockDocumentService) Delete(_ context.Context, id string) error {
	if id != "doc-1" {
		return domain.ErrNotFound
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockDocumentService) Open(_ context.Context, id string) error {
	m.opened = append(m.opened, id)
	return nil
}

type mockIndexService struct {
	calls [][]string
	limit int
	err   error
}

func (m *mockIndexService) Index(_ context.Context, ids []string, limit int) (*domain.IndexReport, error) {
	m.calls = append(m.calls, ids)
	m.limit = limit
	if m.err != nil {
		return nil, m.err
	}
	return &domain.IndexReport{
		DocumentsProcessed: 2,
		DocumentsFailed:    1,
		SegmentsCreated:    10,
		EmbeddingsCreated:  10,
		EmbeddingsSkipped:  3,
		Failures:           []domain.IndexFailure{{DocumentID: "doc-bad", Err: errMock}},
	}, nil
}

type mockIngestService struct {
	mu    sync.Mutex
	files []string
	dirs  []string
}

func (m *mockIngestService) IngestFile(_ context.Context, path string) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files = append(m.files, path)
	if strings.HasSuffix(path, ".bin") {
		return nil, domain.ErrUnsupportedType
	}
	return &domain.Document{ID: "doc-" + strings.TrimSuffix(pathBase(path), ".txt"), Title: pathBase(path)}, nil
}

func (m *mockIngestService) IngestDir(_ context.Context, dir string) (*driving.IngestReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs = append(m.dirs, dir)
	return &driving.IngestReport{Ingested: 3, Skipped: 1}, nil
}

func (m *mockIngestService) ingestedFiles() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.files...)
}

func pathBase(p string) string {
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}

type mockConceptService struct {
	lastCodes []string
}

func (m *mockConceptService) Tag(context.Context) (int, error) { return 42, nil }

func (m *mockConceptService) Trends(_ context.Context, concept string, codes []string) ([]domain.ConceptTrend, error) {
	m.lastCodes = codes
	if concept != "climate" {
		return nil, nil
	}
	return []domain.ConceptTrend{
		{Concept: "climate", CountryCode: "FRA", Decade: 2010, Mentions: 12, Speeches: 5},
		{Concept: "climate", CountryCode: "FRA", Decade: 2020, Mentions: 20, Speeches: 4},
	}, nil
}

func (m *mockConceptService) Concepts(context.Context) ([]domain.Concept, error) {
	return []domain.Concept{{
		Name:        "climate",
		Description: "Climate change and the environment",
		Category:    "environment",
		Terms:       []domain.ConceptTerm{{Term: "climate", Weight: 0.5}, {Term: "emissions", Weight: 0.4}},
	}}, nil
}

var parisAgreement = domain.WorldEvent{
	Name: "Paris Climate Agreement", Year: 2015, Category: "treaty", Concepts: []string{"climate"},
}

func (m *mockConceptService) Events(context.Context, string) ([]domain.WorldEvent, error) {
	return []domain.WorldEvent{
		{Name: "Kyoto Protocol adopted", Year: 1997, Category: "treaty", Concepts: []string{"climate"}},
		parisAgreement,
	}, nil
}

func (m *mockConceptService) EventImpacts(_ context.Context, concept string) ([]domain.EventImpact, error) {
	if concept != "climate" {
		return nil, nil
	}
	return []domain.EventImpact{{Event: parisAgreement, Concept: "climate", Before: 30, During: 45, After: 41}}, nil
}

func (m *mockConceptService) RegionalTrends(_ context.Context, concept string) ([]domain.RegionalTrend, error) {
	return []domain.RegionalTrend{
		{Concept: concept, Region: "Europe", Year: 2015, Speeches: 40, Mentioning: 30, Percent: 75},
	}, nil
}

type mockQuotationService struct {
	extractIDs []string
	filter     domain.QuotationFilter
	topLimit   int
}

func (m *mockQuotationService) Extract(_ context.Context, ids []string) (int, error) {
	m.extractIDs = ids
	return 7, nil
}

func (m *mockQuotationService) Search(_ context.Context, filter domain.QuotationFilter) ([]domain.Quotation, error) {
	m.filter = filter
	return []domain.Quotation{{
		DocumentID: "IND_50_1995", Figure: "Mahatma Gandhi", Text: "an eye for an eye makes the whole world blind",
		Year: 1995, CountryCode: "IND", Direct: true, Confidence: 0.95,
	}}, nil
}

func (m *mockQuotationService) MostQuoted(_ context.Context, limit int) ([]domain.QuotationGroup, error) {
	m.topLimit = limit
	return []domain.QuotationGroup{{
		Text: "to save succeeding generations from the scourge of war", Source: "UN Charter Preamble",
		Count: 12, FirstYear: 1960, LastYear: 2020, Countries: []string{"BRA", "FRA"},
	}}, nil
}

type mockSettingsService struct {
	settings      domain.AppSettings
	validateErr   error
	embedProvider domain.AIProvider
	embedModel    string
	embedKey      string
	llmProvider   domain.AIProvider
	llmModel      string
}

func newMockSettingsService() *mockSettingsService {
	s := domain.DefaultAppSettings()
	s.Embedding = domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI, Model: "text-embedding-3-small", APIKey: "sk-1234567890abcdef"}
	s.LLM = domain.LLMSettings{Provider: domain.AIProviderOllama, Model: "llama3.1", BaseURL: "http://localhost:11434"}
	s.Storage.PgvectorDSN = "postgres://rostrum:hunter2@db:5432/rostrum"
	return &mockSettingsService{settings: s}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(s *domain.AppSettings) error {
	m.settings = *s
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(p domain.AIProvider, model, key string) error {
	m.embedProvider, m.embedModel, m.embedKey = p, model, key
	return nil
}

func (m *mockSettingsService) SetLLMProvider(p domain.AIProvider, model, _ string) error {
	m.llmProvider, m.llmModel = p, model
	return nil
}

func (m *mockSettingsService) Validate() error                          { return m.validateErr }
func (m *mockSettingsService) GetDefaults() domain.AppSettings          { return domain.DefaultAppSettings() }
func (m *mockSettingsService) GetPipelineConfig() domain.PipelineConfig { return domain.DefaultPipelineConfig() }
func (m *mockSettingsService) ValidateEmbeddingConfig() error           { return nil }
func (m *mockSettingsService) ValidateLLMConfig() error                 { return nil }

type mockNoteStore struct {
	notes []domain.Note
}

func (m *mockNoteStore) SaveNote(_ context.Context, n *domain.Note) error {
	m.notes = append(m.notes, *n)
	return nil
}

func (m *mockNoteStore) ListNotes(_ context.Context, limit int) ([]domain.Note, error) {
	if limit < len(m.notes) {
		return m.notes[:limit], nil
	}
	return m.notes, nil
}

type mockConfigStore struct {
	values map[string]any
}

func newMockConfigStore() *mockConfigStore {
	return &mockConfigStore{values: map[string]any{
		"chunker.size":        int64(2000),
		"embedding.api_key":   "sk-abcdefghijklmnop",
		"pipeline.processors": []any{"chunker", "concepts"},
	}}
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *mockConfigStore) GetString(key string) string {
	s, _ := m.values[key].(string)
	return s
}

func (m *mockConfigStore) GetInt(key string) int {
	i, _ := m.values[key].(int64)
	return int(i)
}

func (m *mockConfigStore) GetFloat(key string) float64 {
	f, _ := m.values[key].(float64)
	return f
}

func (m *mockConfigStore) GetBool(key string) bool {
	b, _ := m.values[key].(bool)
	return b
}

func (m *mockConfigStore) GetStringSlice(key string) []string {
	s, _ := m.values[key].([]string)
	return s
}

func (m *mockConfigStore) Set(key string, value any) error {
	m.values[key] = value
	return nil
}

func (m *mockConfigStore) Save() error { return nil }
func (m *mockConfigStore) Load() error { return nil }
func (m *mockConfigStore) Path() string {
	return "/home/test/.rostrum/config.toml"
}

type mockAgent struct {
	mu        sync.Mutex
	questions []string
	resets    int
	outcome   *domain.AgentOutcome
}

func (m *mockAgent) Ask(_ context.Context, question string) (*domain.AgentOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.questions = append(m.questions, question)
	if m.outcome != nil {
		return m.outcome, nil
	}
	return &domain.AgentOutcome{
		State:     domain.AgentDone,
		Answer:    "France raised climate in 2023.",
		Steps:     2,
		ToolCalls: 1,
	}, nil
}

func (m *mockAgent) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets++
}

// testMocks exposes the mocks installed by setupTestServices.
type testMocks struct {
	similarity *mockSimilarityService
	search     *mockSearchService
	documents  *mockDocumentService
	index      *mockIndexService
	ingest     *mockIngestService
	concepts   *mockConceptService
	quotations *mockQuotationService
	settings   *mockSettingsService
	notes      *mockNoteStore
	config     *mockConfigStore
	agent      *mockAgent
	agentNames []string
}

var currentMocks *testMocks

// setupTestServices installs mocks for every service and returns a
// cleanup function that restores the previous state.
func setupTestServices() func() {
	m := &testMocks{
		similarity: &mockSimilarityService{},
		search:     &mockSearchService{},
		documents:  &mockDocumentService{},
		index:      &mockIndexService{},
		ingest:     &mockIngestService{},
		concepts:   &mockConceptService{},
		quotations: &mockQuotationService{},
		settings:   newMockSettingsService(),
		notes:      &mockNoteStore{},
		config:     newMockConfigStore(),
		agent:      &mockAgent{},
	}
	currentMocks = m

	SetServices(&Services{
		Similarity: m.similarity,
		Search:     m.search,
		Documents:  m.documents,
		Index:      m.index,
		Ingest:     m.ingest,
		Concepts:   m.concepts,
		Quotations: m.quotations,
		Settings:   m.settings,
		Notes:      m.notes,
		Config:     m.config,
		Agents: func(name string) (driving.AgentService, error) {
			m.agentNames = append(m.agentNames, name)
			if name == "missing" {
				return nil, domain.ErrNotFound
			}
			return m.agent, nil
		},
		AgentNames: func() ([]string, error) { return []string{"researcher", "skeptic"}, nil },
	})

	oldStdin, oldIsTerminal := stdin, stdinIsTerminal
	stdin = strings.NewReader("")
	stdinIsTerminal = func() bool { return false }

	return func() {
		SetServices(nil)
		servicesReady = false
		stdin, stdinIsTerminal = oldStdin, oldIsTerminal
		currentMocks = nil
		resetFlags(rootCmd)
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}
}

// resetFlags restores every flag in the tree to its default so one test's
// flags do not leak into the next.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// runCommand executes the root command with args and returns its output.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

// syncBuffer is a bytes.Buffer safe for a command running in another
// goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
