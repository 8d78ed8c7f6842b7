package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paper-miner/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for the collection stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// Backend selects the result cursor: scholar, openalex, arxiv, or semantic.
	Backend string `json:"backend" yaml:"backend"`

	// PageSize is the number of results requested per page where the
	// backend lets the caller choose (default 25).
	PageSize int `json:"page_size" yaml:"page_size"`

	// PageDelay is the minimum interval between consecutive page fetches.
	PageDelay time.Duration `json:"page_delay" yaml:"page_delay"`

	// Email is sent to OpenAlex as the mailto parameter for polite pool access.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`

	// APIKey is an optional Semantic Scholar API key for higher rate limits.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// RenderEngine selects the Text Renderer implementation.
type RenderEngine string

const (
	EngineHTTP    RenderEngine = "http"
	EngineBrowser RenderEngine = "browser"
)

// RenderConfig holds settings for page rendering.
type RenderConfig struct {
	// Engine selects plain HTTP fetching or a headless browser.
	Engine RenderEngine `json:"engine" yaml:"engine"`

	// Headless runs the browser without a window. Solving a captcha by hand
	// requires a visible window.
	Headless bool `json:"headless" yaml:"headless"`

	// ChromePath overrides the browser executable (default: auto-detect).
	ChromePath string `json:"chrome_path,omitempty" yaml:"chrome_path,omitempty"`

	// Timeout bounds a single page render.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// SolveCaptcha waits for a captcha to be cleared instead of failing.
	SolveCaptcha bool `json:"solve_captcha" yaml:"solve_captcha"`

	// CaptchaTimeout bounds the wait for a captcha to be cleared.
	CaptchaTimeout time.Duration `json:"captcha_timeout" yaml:"captcha_timeout"`

	// UserAgent is sent by both engines.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ExtractionMode selects how a paper reference is turned into text.
type ExtractionMode string

const (
	// ModeLegacy renders the main URL only and ignores the source descriptor.
	ModeLegacy ExtractionMode = "legacy"
	// ModeSourceAware tries the source descriptor first and falls back to the main URL.
	ModeSourceAware ExtractionMode = "source-aware"
)

// PDFBackend identifies the PDF-to-text tool.
type PDFBackend string

const (
	PDFNative     PDFBackend = "native"
	PDFMarkitdown PDFBackend = "markitdown"
)

// ExtractionConfig holds settings for the content stage.
type ExtractionConfig struct {
	Mode ExtractionMode `json:"mode" yaml:"mode"`

	// PDFBackend selects the PDF extractor.
	PDFBackend PDFBackend `json:"pdf_backend" yaml:"pdf_backend"`
}

// DownloadConfig holds settings for PDF downloads.
type DownloadConfig struct {
	HTTPConfig `yaml:",inline"`

	// OutputDir is the directory downloaded PDFs are written to.
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// SummaryConfig holds settings for LLM summaries.
type SummaryConfig struct {
	AIConfig `yaml:",inline"`

	// MaxChars truncates the paper text sent to the model.
	MaxChars int `json:"max_chars" yaml:"max_chars"`

	// MaxTokens bounds the length of the summary.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`
}

// AccessionConfig holds settings for accession extraction during collection.
type AccessionConfig struct {
	// Engine renders result pages for accession scanning. Accessions are
	// often injected by page scripts, so the default is the browser.
	Engine RenderEngine `json:"engine" yaml:"engine"`
}

// StoreConfig holds settings for the run database.
type StoreConfig struct {
	// Path is the SQLite database file.
	Path string `json:"path" yaml:"path"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Search     SearchConfig     `json:"search" yaml:"search"`
	Render     RenderConfig     `json:"render" yaml:"render"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
	Accession  AccessionConfig  `json:"accession" yaml:"accession"`
	Download   DownloadConfig   `json:"download" yaml:"download"`
	Summary    SummaryConfig    `json:"summary" yaml:"summary"`
	Store      StoreConfig      `json:"store" yaml:"store"`
}
